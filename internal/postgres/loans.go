package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
)

const loanColumns = `id::text, user_id::text, name, principal::text, interest_rate::text, interest_type, term_months, monthly_payment::text, balance::text, next_payment_date, icon, color`

func (r *Repository) CreateLoan(ctx context.Context, l core.Loan) (core.Loan, error) {
	if err := l.Validate(); err != nil {
		return core.Loan{}, err
	}

	payment, err := core.MonthlyPayment(l.Principal, l.InterestRate, l.TermMonths)
	if err != nil {
		return core.Loan{}, err
	}
	l.MonthlyPayment = payment
	if l.Balance.IsZero() {
		l.Balance = l.Principal
	}

	l.ID = uuid.New()
	var nextPayment any
	if !l.NextPaymentDate.IsZero() {
		nextPayment = l.NextPaymentDate.Time
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO loans (id, user_id, name, principal, interest_rate, interest_type, term_months, monthly_payment, balance, next_payment_date, icon, color)
		VALUES ($1, $2, $3, $4::numeric, $5::numeric, $6, $7, $8::numeric, $9::numeric, $10, $11, $12)`,
		l.ID.String(), l.UserID.String(), l.Name, l.Principal.String(),
		l.InterestRate.String(), string(l.InterestType), l.TermMonths,
		l.MonthlyPayment.String(), l.Balance.String(), nextPayment, l.Icon, l.Color)
	if err != nil {
		return core.Loan{}, fmt.Errorf("insert loan: %w", err)
	}

	slog.InfoContext(ctx, "Loan saved",
		"id", l.ID,
		"user_id", l.UserID,
		"principal", l.Principal,
		"monthly_payment", l.MonthlyPayment)

	return l, nil
}

func (r *Repository) GetLoan(ctx context.Context, userID, id uuid.UUID) (core.Loan, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+loanColumns+` FROM loans WHERE id = $1 AND user_id = $2`,
		id.String(), userID.String())
	return scanLoan(row)
}

func (r *Repository) UpdateLoan(ctx context.Context, userID, id uuid.UUID, patch ledger.LoanPatch) (core.Loan, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return core.Loan{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		SELECT `+loanColumns+` FROM loans WHERE id = $1 AND user_id = $2 FOR UPDATE`,
		id.String(), userID.String())
	l, err := scanLoan(row)
	if err != nil {
		return core.Loan{}, err
	}

	patch.Apply(&l)
	if err := l.Validate(); err != nil {
		return core.Loan{}, err
	}

	if patch.ChangesTerms() {
		payment, err := core.MonthlyPayment(l.Principal, l.InterestRate, l.TermMonths)
		if err != nil {
			return core.Loan{}, err
		}
		l.MonthlyPayment = payment
	}

	var nextPayment any
	if !l.NextPaymentDate.IsZero() {
		nextPayment = l.NextPaymentDate.Time
	}
	_, err = tx.Exec(ctx, `
		UPDATE loans
		SET name = $1, principal = $2::numeric, interest_rate = $3::numeric, interest_type = $4,
		    term_months = $5, monthly_payment = $6::numeric, balance = $7::numeric,
		    next_payment_date = $8, icon = $9, color = $10
		WHERE id = $11 AND user_id = $12`,
		l.Name, l.Principal.String(), l.InterestRate.String(), string(l.InterestType),
		l.TermMonths, l.MonthlyPayment.String(), l.Balance.String(), nextPayment,
		l.Icon, l.Color, id.String(), userID.String())
	if err != nil {
		return core.Loan{}, fmt.Errorf("update loan: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return core.Loan{}, fmt.Errorf("commit transaction: %w", err)
	}
	return l, nil
}

func (r *Repository) DeleteLoan(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM loans WHERE id = $1 AND user_id = $2`,
		id.String(), userID.String())
	if err != nil {
		return fmt.Errorf("delete loan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *Repository) ListLoans(ctx context.Context, userID uuid.UUID) ([]core.Loan, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+loanColumns+` FROM loans WHERE user_id = $1 ORDER BY name`,
		userID.String())
	if err != nil {
		return nil, fmt.Errorf("list loans: %w", err)
	}
	defer rows.Close()

	out := make([]core.Loan, 0)
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func scanLoan(row rowScanner) (core.Loan, error) {
	var (
		l                      core.Loan
		idStr, userStr         string
		principalStr, rateStr  string
		typeStr                string
		paymentStr, balanceStr string
		nextPayment            *time.Time
	)
	err := row.Scan(&idStr, &userStr, &l.Name, &principalStr, &rateStr, &typeStr,
		&l.TermMonths, &paymentStr, &balanceStr, &nextPayment, &l.Icon, &l.Color)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Loan{}, core.ErrNotFound
	}
	if err != nil {
		return core.Loan{}, fmt.Errorf("scan loan: %w", err)
	}

	if l.ID, err = uuid.Parse(idStr); err != nil {
		return core.Loan{}, fmt.Errorf("parse loan id: %w", err)
	}
	if l.UserID, err = uuid.Parse(userStr); err != nil {
		return core.Loan{}, fmt.Errorf("parse loan owner: %w", err)
	}
	if l.Principal, err = parseNumeric(principalStr); err != nil {
		return core.Loan{}, err
	}
	if l.InterestRate, err = parseNumeric(rateStr); err != nil {
		return core.Loan{}, err
	}
	l.InterestType = core.InterestType(typeStr)
	if l.MonthlyPayment, err = parseNumeric(paymentStr); err != nil {
		return core.Loan{}, err
	}
	if l.Balance, err = parseNumeric(balanceStr); err != nil {
		return core.Loan{}, err
	}
	if nextPayment != nil {
		l.NextPaymentDate = core.DateOf(*nextPayment)
	}
	return l, nil
}
