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

const budgetColumns = `id, user_id, category, amount_cents, spent_cents, period, start_date, end_date, icon`

func (r *Repository) CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	b.Spent = decimal.Zero // derived total always starts at zero
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}

	b.ID = uuid.New()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO budgets (`+budgetColumns+`)
		VALUES (?, ?, ?, ?, 0, ?, ?, ?, ?)`,
		b.ID.String(), b.UserID.String(), b.Category, toCents(b.Amount),
		string(b.Period), b.StartDate.String(), b.EndDate.String(), b.Icon)
	if err != nil {
		return core.Budget{}, fmt.Errorf("insert budget: %w", err)
	}

	slog.InfoContext(ctx, "Budget saved",
		"id", b.ID,
		"category", b.Category,
		"window", b.StartDate.String()+".."+b.EndDate.String())

	return b, nil
}

func (r *Repository) GetBudget(ctx context.Context, userID, id uuid.UUID) (core.Budget, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+budgetColumns+` FROM budgets WHERE id = ? AND user_id = ?`,
		id.String(), userID.String())
	return scanBudget(row)
}

func (r *Repository) UpdateBudget(ctx context.Context, userID, id uuid.UUID, patch ledger.BudgetPatch) (core.Budget, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.Budget{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		SELECT `+budgetColumns+` FROM budgets WHERE id = ? AND user_id = ?`,
		id.String(), userID.String())
	b, err := scanBudget(row)
	if err != nil {
		return core.Budget{}, err
	}

	patch.Apply(&b)
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}

	// Spent is never written here: the accumulation step owns it.
	_, err = tx.ExecContext(ctx, `
		UPDATE budgets
		SET category = ?, amount_cents = ?, period = ?, start_date = ?, end_date = ?, icon = ?
		WHERE id = ? AND user_id = ?`,
		b.Category, toCents(b.Amount), string(b.Period), b.StartDate.String(),
		b.EndDate.String(), b.Icon, id.String(), userID.String())
	if err != nil {
		return core.Budget{}, fmt.Errorf("update budget: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return core.Budget{}, fmt.Errorf("commit transaction: %w", err)
	}
	return b, nil
}

func (r *Repository) DeleteBudget(ctx context.Context, userID, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM budgets WHERE id = ? AND user_id = ?`,
		id.String(), userID.String())
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *Repository) ListBudgets(ctx context.Context, userID uuid.UUID) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+budgetColumns+` FROM budgets WHERE user_id = ?
		ORDER BY category, start_date`, userID.String())
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	out := make([]core.Budget, 0)
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func scanBudget(row rowScanner) (core.Budget, error) {
	var (
		b                        core.Budget
		idStr, userStr           string
		amountCents, spentCents  int64
		periodStr, startStr, end string
	)
	err := row.Scan(&idStr, &userStr, &b.Category, &amountCents, &spentCents,
		&periodStr, &startStr, &end, &b.Icon)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Budget{}, core.ErrNotFound
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("scan budget: %w", err)
	}

	if b.ID, err = uuid.Parse(idStr); err != nil {
		return core.Budget{}, fmt.Errorf("parse budget id: %w", err)
	}
	if b.UserID, err = uuid.Parse(userStr); err != nil {
		return core.Budget{}, fmt.Errorf("parse budget owner: %w", err)
	}
	b.Amount = fromCents(amountCents)
	b.Spent = fromCents(spentCents)
	b.Period = core.BudgetPeriod(periodStr)
	if b.StartDate, err = core.ParseDate(startStr); err != nil {
		return core.Budget{}, fmt.Errorf("parse budget start date: %w", err)
	}
	if b.EndDate, err = core.ParseDate(end); err != nil {
		return core.Budget{}, fmt.Errorf("parse budget end date: %w", err)
	}
	return b, nil
}
