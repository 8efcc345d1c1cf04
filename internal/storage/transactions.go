package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
)

const transactionColumns = `id, user_id, amount_cents, description, category, type, tx_date, time_of_day, goal_id, loan_id, created_at`

// accumulateTx adjusts spent on every budget the transaction contributes to,
// clamped at zero. Must run on the same database transaction as the row
// mutation that triggered it.
func accumulateTx(ctx context.Context, tx *sql.Tx, t core.Transaction, deltaCents int64) error {
	if !core.AffectsBudget(t.Type) {
		return nil
	}
	_, err := tx.ExecContext(ctx, `
		UPDATE budgets
		SET spent_cents = MAX(spent_cents + ?, 0)
		WHERE user_id = ? AND category = ? AND start_date <= ? AND end_date >= ?`,
		deltaCents, t.UserID.String(), t.Category, t.Date.String(), t.Date.String())
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

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO transactions (`+transactionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID.String(), t.UserID.String(), toCents(t.Amount), t.Description, t.Category,
		string(t.Type), t.Date.String(), t.TimeOfDay, nullUUID(t.GoalID), nullUUID(t.LoanID),
		t.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", err)
	}

	if err := accumulateTx(ctx, tx, t, toCents(t.Amount)); err != nil {
		return core.Transaction{}, err
	}

	if err := tx.Commit(); err != nil {
		return core.Transaction{}, fmt.Errorf("commit transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction saved",
		"id", t.ID,
		"type", t.Type,
		"category", t.Category,
		"amount", t.Amount)

	return t, nil
}

func (r *Repository) GetTransaction(ctx context.Context, userID, id uuid.UUID) (core.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+transactionColumns+` FROM transactions WHERE id = ? AND user_id = ?`,
		id.String(), userID.String())
	return scanTransaction(row)
}

func (r *Repository) UpdateTransaction(ctx context.Context, userID, id uuid.UUID, patch ledger.TransactionPatch) (core.Transaction, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		SELECT `+transactionColumns+` FROM transactions WHERE id = ? AND user_id = ?`,
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

	// Reverse the contribution recorded under the pre-update snapshot, then
	// apply the contribution under the new values.
	if err := accumulateTx(ctx, tx, old, -toCents(old.Amount)); err != nil {
		return core.Transaction{}, err
	}
	if err := accumulateTx(ctx, tx, updated, toCents(updated.Amount)); err != nil {
		return core.Transaction{}, err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE transactions
		SET amount_cents = ?, description = ?, category = ?, type = ?, tx_date = ?,
		    time_of_day = ?, goal_id = ?, loan_id = ?
		WHERE id = ? AND user_id = ?`,
		toCents(updated.Amount), updated.Description, updated.Category, string(updated.Type),
		updated.Date.String(), updated.TimeOfDay, nullUUID(updated.GoalID), nullUUID(updated.LoanID),
		id.String(), userID.String())
	if err != nil {
		return core.Transaction{}, fmt.Errorf("update transaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return core.Transaction{}, fmt.Errorf("commit transaction: %w", err)
	}

	return updated, nil
}

func (r *Repository) DeleteTransaction(ctx context.Context, userID, id uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		SELECT `+transactionColumns+` FROM transactions WHERE id = ? AND user_id = ?`,
		id.String(), userID.String())
	t, err := scanTransaction(row)
	if err != nil {
		return err
	}

	if err := accumulateTx(ctx, tx, t, -toCents(t.Amount)); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM transactions WHERE id = ?`, id.String()); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction deleted", "id", id)
	return nil
}

func (r *Repository) ListTransactions(ctx context.Context, userID uuid.UUID, filter ledger.TransactionFilter) ([]core.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE user_id = ?`
	args := []any{userID.String()}
	if filter.Category != "" {
		query += ` AND category = ?`
		args = append(args, filter.Category)
	}
	if filter.Type != "" {
		query += ` AND type = ?`
		args = append(args, string(filter.Type))
	}
	query += ` ORDER BY tx_date DESC, created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, args...)
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (core.Transaction, error) {
	var (
		t                core.Transaction
		idStr, userStr   string
		amountCents      int64
		typeStr, dateStr string
		goalID, loanID   sql.NullString
		createdAt        string
	)
	err := row.Scan(&idStr, &userStr, &amountCents, &t.Description, &t.Category,
		&typeStr, &dateStr, &t.TimeOfDay, &goalID, &loanID, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
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
	t.Amount = fromCents(amountCents)
	t.Type = core.TransactionType(typeStr)
	if t.Date, err = core.ParseDate(dateStr); err != nil {
		return core.Transaction{}, fmt.Errorf("parse transaction date: %w", err)
	}
	if t.GoalID, err = scanUUID(goalID); err != nil {
		return core.Transaction{}, err
	}
	if t.LoanID, err = scanUUID(loanID); err != nil {
		return core.Transaction{}, err
	}
	if t.CreatedAt, err = parseStoredTime(createdAt); err != nil {
		return core.Transaction{}, err
	}
	return t, nil
}
