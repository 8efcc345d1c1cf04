package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
)

const loanColumns = `id, user_id, name, principal_cents, interest_rate, interest_type, term_months, monthly_payment_cents, balance_cents, next_payment_date, icon, color`

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
		nextPayment = l.NextPaymentDate.String()
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO loans (`+loanColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID.String(), l.UserID.String(), l.Name, toCents(l.Principal),
		l.InterestRate.String(), string(l.InterestType), l.TermMonths,
		toCents(l.MonthlyPayment), toCents(l.Balance), nextPayment, l.Icon, l.Color)
	if err != nil {
		return core.Loan{}, fmt.Errorf("insert loan: %w", err)
	}

	slog.InfoContext(ctx, "Loan saved",
		"id", l.ID,
		"principal", l.Principal,
		"monthly_payment", l.MonthlyPayment)

	return l, nil
}

func (r *Repository) GetLoan(ctx context.Context, userID, id uuid.UUID) (core.Loan, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+loanColumns+` FROM loans WHERE id = ? AND user_id = ?`,
		id.String(), userID.String())
	return scanLoan(row)
}

func (r *Repository) UpdateLoan(ctx context.Context, userID, id uuid.UUID, patch ledger.LoanPatch) (core.Loan, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Loan{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		SELECT `+loanColumns+` FROM loans WHERE id = ? AND user_id = ?`,
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
		nextPayment = l.NextPaymentDate.String()
	}
	_, err = tx.ExecContext(ctx, `
		UPDATE loans
		SET name = ?, principal_cents = ?, interest_rate = ?, interest_type = ?,
		    term_months = ?, monthly_payment_cents = ?, balance_cents = ?,
		    next_payment_date = ?, icon = ?, color = ?
		WHERE id = ? AND user_id = ?`,
		l.Name, toCents(l.Principal), l.InterestRate.String(), string(l.InterestType),
		l.TermMonths, toCents(l.MonthlyPayment), toCents(l.Balance), nextPayment,
		l.Icon, l.Color, id.String(), userID.String())
	if err != nil {
		return core.Loan{}, fmt.Errorf("update loan: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return core.Loan{}, fmt.Errorf("commit transaction: %w", err)
	}
	return l, nil
}

func (r *Repository) DeleteLoan(ctx context.Context, userID, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM loans WHERE id = ? AND user_id = ?`,
		id.String(), userID.String())
	if err != nil {
		return fmt.Errorf("delete loan: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *Repository) ListLoans(ctx context.Context, userID uuid.UUID) ([]core.Loan, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+loanColumns+` FROM loans WHERE user_id = ? ORDER BY name`,
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
		l                          core.Loan
		idStr, userStr             string
		principalCents             int64
		rateStr, typeStr           string
		paymentCents, balanceCents int64
		nextPayment                sql.NullString
	)
	err := row.Scan(&idStr, &userStr, &l.Name, &principalCents, &rateStr, &typeStr,
		&l.TermMonths, &paymentCents, &balanceCents, &nextPayment, &l.Icon, &l.Color)
	if errors.Is(err, sql.ErrNoRows) {
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
	l.Principal = fromCents(principalCents)
	if l.InterestRate, err = decimal.NewFromString(rateStr); err != nil {
		return core.Loan{}, fmt.Errorf("parse loan interest rate: %w", err)
	}
	l.InterestType = core.InterestType(typeStr)
	l.MonthlyPayment = fromCents(paymentCents)
	l.Balance = fromCents(balanceCents)
	if nextPayment.Valid && nextPayment.String != "" {
		if l.NextPaymentDate, err = core.ParseDate(nextPayment.String); err != nil {
			return core.Loan{}, fmt.Errorf("parse loan next payment date: %w", err)
		}
	}
	return l, nil
}
