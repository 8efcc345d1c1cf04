package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
)

const goalColumns = `id, user_id, name, target_cents, current_cents, deadline, icon, color`

func (r *Repository) CreateSavingsGoal(ctx context.Context, g core.SavingsGoal) (core.SavingsGoal, error) {
	if err := g.Validate(); err != nil {
		return core.SavingsGoal{}, err
	}

	g.ID = uuid.New()
	var deadline any
	if g.Deadline != nil {
		deadline = g.Deadline.String()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO savings_goals (`+goalColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		g.ID.String(), g.UserID.String(), g.Name, toCents(g.Target), toCents(g.Current),
		deadline, g.Icon, g.Color)
	if err != nil {
		return core.SavingsGoal{}, fmt.Errorf("insert savings goal: %w", err)
	}
	return g, nil
}

func (r *Repository) GetSavingsGoal(ctx context.Context, userID, id uuid.UUID) (core.SavingsGoal, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+goalColumns+` FROM savings_goals WHERE id = ? AND user_id = ?`,
		id.String(), userID.String())
	return scanGoal(row)
}

func (r *Repository) UpdateSavingsGoal(ctx context.Context, userID, id uuid.UUID, patch ledger.SavingsGoalPatch) (core.SavingsGoal, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return core.SavingsGoal{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		SELECT `+goalColumns+` FROM savings_goals WHERE id = ? AND user_id = ?`,
		id.String(), userID.String())
	g, err := scanGoal(row)
	if err != nil {
		return core.SavingsGoal{}, err
	}

	patch.Apply(&g)
	if err := g.Validate(); err != nil {
		return core.SavingsGoal{}, err
	}

	var deadline any
	if g.Deadline != nil {
		deadline = g.Deadline.String()
	}
	_, err = tx.ExecContext(ctx, `
		UPDATE savings_goals
		SET name = ?, target_cents = ?, current_cents = ?, deadline = ?, icon = ?, color = ?
		WHERE id = ? AND user_id = ?`,
		g.Name, toCents(g.Target), toCents(g.Current), deadline, g.Icon, g.Color,
		id.String(), userID.String())
	if err != nil {
		return core.SavingsGoal{}, fmt.Errorf("update savings goal: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return core.SavingsGoal{}, fmt.Errorf("commit transaction: %w", err)
	}
	return g, nil
}

func (r *Repository) DeleteSavingsGoal(ctx context.Context, userID, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM savings_goals WHERE id = ? AND user_id = ?`,
		id.String(), userID.String())
	if err != nil {
		return fmt.Errorf("delete savings goal: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *Repository) ListSavingsGoals(ctx context.Context, userID uuid.UUID) ([]core.SavingsGoal, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+goalColumns+` FROM savings_goals WHERE user_id = ? ORDER BY name`,
		userID.String())
	if err != nil {
		return nil, fmt.Errorf("list savings goals: %w", err)
	}
	defer rows.Close()

	out := make([]core.SavingsGoal, 0)
	for rows.Next() {
		g, err := scanGoal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func scanGoal(row rowScanner) (core.SavingsGoal, error) {
	var (
		g                         core.SavingsGoal
		idStr, userStr            string
		targetCents, currentCents int64
		deadline                  sql.NullString
	)
	err := row.Scan(&idStr, &userStr, &g.Name, &targetCents, &currentCents,
		&deadline, &g.Icon, &g.Color)
	if errors.Is(err, sql.ErrNoRows) {
		return core.SavingsGoal{}, core.ErrNotFound
	}
	if err != nil {
		return core.SavingsGoal{}, fmt.Errorf("scan savings goal: %w", err)
	}

	if g.ID, err = uuid.Parse(idStr); err != nil {
		return core.SavingsGoal{}, fmt.Errorf("parse goal id: %w", err)
	}
	if g.UserID, err = uuid.Parse(userStr); err != nil {
		return core.SavingsGoal{}, fmt.Errorf("parse goal owner: %w", err)
	}
	g.Target = fromCents(targetCents)
	g.Current = fromCents(currentCents)
	if deadline.Valid && deadline.String != "" {
		d, err := core.ParseDate(deadline.String)
		if err != nil {
			return core.SavingsGoal{}, fmt.Errorf("parse goal deadline: %w", err)
		}
		g.Deadline = &d
	}
	return g, nil
}
