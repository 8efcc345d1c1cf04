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

const transactionColumns = `id::text, user_id::text, amount::text, description, category, type, tx_date, time_of_day, goal_id::text, loan_id::text, created_at`

// accumulate adjusts spent on every budget the transaction contributes to.
// GREATEST keeps the total clamped at zero when a contribution is reversed,
// and the row-level increment serializes concurrent adjustments. Must run on
// the same database transaction as the triggering row mutation.
func accumulate(ctx context.Context, tx pgx.Tx, t core.Transaction, delta string) error {
	if !core.AffectsBudget(t.Type) {
		return nil
	}
	_, err := tx.Exec(ctx, `
		UPDATE budgets
		SET spent = GREATEST(spent + $1::numeric, 0)
		WHERE user_id = $2 AND category = $3 AND start_date <= $4 AND end_date >= $4`,
		delta, t.UserID.String(), t.Category, t.Date.Time)
	if err != nil {
		return fmt.Errorf("accumulate budget spent: %w", err)
	}
	return nil
}

func (r *Repository) CreateTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	t.ID = uuid.New()
	t.CreatedAt = time.Now().UTC()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO transactions (id, user_id, amount, description, category, type, tx_date, time_of_day, goal_id, loan_id, created_at)
		VALUES ($1, $2, $3::numeric, $4, $5, $6, $7, $8, $9, $10, $11)`,
		t.ID.String(), t.UserID.String(), t.Amount.String(), t.Description, t.Category,
		string(t.Type), t.Date.Time, t.TimeOfDay, uuidParam(t.GoalID), uuidParam(t.LoanID), t.CreatedAt)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	if err := accumulate(ctx, tx, t, t.Amount.String()); err != nil {
		return core.Transaction{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return core.Transaction{}, fmt.Errorf("commit transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", t.ID,
		"user_id", t.UserID,
		"type", t.Type,
		"category", t.Category,
		"amount", t.Amount)

	return t, nil
}

func (r *Repository) GetTransaction(ctx context.Context, userID, id uuid.UUID) (core.Transaction, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+transactionColumns+` FROM transactions WHERE id = $1 AND user_id = $2`,
		id.String(), userID.String())
	return scanTransaction(row)
}

func (r *Repository) UpdateTransaction(ctx context.Context, userID, id uuid.UUID, patch ledger.TransactionPatch) (core.Transaction, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// FOR UPDATE pins the pre-update snapshot so the reverse step cannot race
	// a concurrent mutation of the same transaction row.
	row := tx.QueryRow(ctx, `
		SELECT `+transactionColumns+` FROM transactions WHERE id = $1 AND user_id = $2 FOR UPDATE`,
		id.String(), userID.String())
	old, err := scanTransaction(row)
	if err != nil {
		return core.Transaction{}, err
	}

	updated := old
	patch.Apply(&updated)
	if err := updated.Validate(); err != nil {
		return core.Transaction{}, err
	}

	if err := accumulate(ctx, tx, old, "-"+old.Amount.String()); err != nil {
		return core.Transaction{}, err
	}
	if err := accumulate(ctx, tx, updated, updated.Amount.String()); err != nil {
		return core.Transaction{}, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE transactions
		SET amount = $1::numeric, description = $2, category = $3, type = $4, tx_date = $5,
		    time_of_day = $6, goal_id = $7, loan_id = $8
		WHERE id = $9 AND user_id = $10`,
		updated.Amount.String(), updated.Description, updated.Category, string(updated.Type),
		updated.Date.Time, updated.TimeOfDay, uuidParam(updated.GoalID), uuidParam(updated.LoanID),
		id.String(), userID.String())
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return core.Transaction{}, fmt.Errorf("commit transaction: %w", err)
	}

	return updated, nil
}

func (r *Repository) DeleteTransaction(ctx context.Context, userID, id uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		SELECT `+transactionColumns+` FROM transactions WHERE id = $1 AND user_id = $2 FOR UPDATE`,
		id.String(), userID.String())
	t, err := scanTransaction(row)
	if err != nil {
		return err
	}

	if err := accumulate(ctx, tx, t, "-"+t.Amount.String()); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM transactions WHERE id = $1`, id.String()); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction deleted", "id", id, "user_id", userID)
	return nil
}

func (r *Repository) ListTransactions(ctx context.Context, userID uuid.UUID, filter ledger.TransactionFilter) ([]core.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE user_id = $1`
	args := []any{userID.String()}
	if filter.Category != "" {
		args = append(args, filter.Category)
		query += fmt.Sprintf(` AND category = $%d`, len(args))
	}
	if filter.Type != "" {
		args = append(args, string(filter.Type))
		query += fmt.Sprintf(` AND type = $%d`, len(args))
	}
	query += ` ORDER BY tx_date DESC, created_at DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer rows.Close()

	out := make([]core.Transaction, 0)
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func uuidParam(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return id.String()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t              core.Transaction
		idStr, userStr string
		amountStr      string
		typeStr        string
		txDate         time.Time
		goalID, loanID *string
	)
	err := row.Scan(&idStr, &userStr, &amountStr, &t.Description, &t.Category,
		&typeStr, &txDate, &t.TimeOfDay, &goalID, &loanID, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Transaction{}, core.ErrNotFound
	}
	if err != nil {
		return core.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}

	if t.ID, err = uuid.Parse(idStr); err != nil {
		return core.Transaction{}, fmt.Errorf("parse transaction id: %w", err)
	}
	if t.UserID, err = uuid.Parse(userStr); err != nil {
		return core.Transaction{}, fmt.Errorf("parse transaction owner: %w", err)
	}
	if t.Amount, err = parseNumeric(amountStr); err != nil {
		return core.Transaction{}, err
	}
	t.Type = core.TransactionType(typeStr)
	t.Date = core.DateOf(txDate)
	if goalID != nil {
		id, err := uuid.Parse(*goalID)
		if err != nil {
			return core.Transaction{}, fmt.Errorf("parse goal reference: %w", err)
		}
		t.GoalID = &id
	}
	if loanID != nil {
		id, err := uuid.Parse(*loanID)
		if err != nil {
			return core.Transaction{}, fmt.Errorf("parse loan reference: %w", err)
		}
		t.LoanID = &id
	}
	return t, nil
}
