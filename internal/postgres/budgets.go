package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
)

const budgetColumns = `id::text, user_id::text, category, amount::text, spent::text, period, start_date, end_date, icon`

func (r *Repository) CreateBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	b.Spent = decimal.Zero // derived total always starts at zero
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}

	b.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO budgets (id, user_id, category, amount, spent, period, start_date, end_date, icon)
		VALUES ($1, $2, $3, $4::numeric, 0, $5, $6, $7, $8)`,
		b.ID.String(), b.UserID.String(), b.Category, b.Amount.String(),
		string(b.Period), b.StartDate.Time, b.EndDate.Time, b.Icon)
	if err != nil {
		return core.Budget{}, fmt.Errorf("insert budget: %w", err)
	}

	slog.InfoContext(ctx, "Budget saved",
		"id", b.ID,
		"user_id", b.UserID,
		"category", b.Category)

	return b, nil
}

func (r *Repository) GetBudget(ctx context.Context, userID, id uuid.UUID) (core.Budget, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+budgetColumns+` FROM budgets WHERE id = $1 AND user_id = $2`,
		id.String(), userID.String())
	return scanBudget(row)
}

func (r *Repository) UpdateBudget(ctx context.Context, userID, id uuid.UUID, patch ledger.BudgetPatch) (core.Budget, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return core.Budget{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		SELECT `+budgetColumns+` FROM budgets WHERE id = $1 AND user_id = $2 FOR UPDATE`,
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
	_, err = tx.Exec(ctx, `
		UPDATE budgets
		SET category = $1, amount = $2::numeric, period = $3, start_date = $4, end_date = $5, icon = $6
		WHERE id = $7 AND user_id = $8`,
		b.Category, b.Amount.String(), string(b.Period), b.StartDate.Time, b.EndDate.Time,
		b.Icon, id.String(), userID.String())
	if err != nil {
		return core.Budget{}, fmt.Errorf("update budget: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return core.Budget{}, fmt.Errorf("commit transaction: %w", err)
	}
	return b, nil
}

func (r *Repository) DeleteBudget(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM budgets WHERE id = $1 AND user_id = $2`,
		id.String(), userID.String())
	if err != nil {
		return fmt.Errorf("delete budget: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *Repository) ListBudgets(ctx context.Context, userID uuid.UUID) ([]core.Budget, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+budgetColumns+` FROM budgets WHERE user_id = $1
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
		b                   core.Budget
		idStr, userStr      string
		amountStr, spentStr string
		periodStr           string
		start, end          time.Time
	)
	err := row.Scan(&idStr, &userStr, &b.Category, &amountStr, &spentStr,
		&periodStr, &start, &end, &b.Icon)
	if errors.Is(err, pgx.ErrNoRows) {
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
	if b.Amount, err = parseNumeric(amountStr); err != nil {
		return core.Budget{}, err
	}
	if b.Spent, err = parseNumeric(spentStr); err != nil {
		return core.Budget{}, err
	}
	b.Period = core.BudgetPeriod(periodStr)
	b.StartDate = core.DateOf(start)
	b.EndDate = core.DateOf(end)
	return b, nil
}
