package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
)

const goalColumns = `id::text, user_id::text, name, target::text, current::text, deadline, icon, color`

func (r *Repository) CreateSavingsGoal(ctx context.Context, g core.SavingsGoal) (core.SavingsGoal, error) {
	if err := g.Validate(); err != nil {
		return core.SavingsGoal{}, err
	}

	g.ID = uuid.New()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO savings_goals (id, user_id, name, target, current, deadline, icon, color)
		VALUES ($1, $2, $3, $4::numeric, $5::numeric, $6, $7, $8)`,
		g.ID.String(), g.UserID.String(), g.Name, g.Target.String(), g.Current.String(),
		dateParam(g.Deadline), g.Icon, g.Color)
	if err != nil {
		return core.SavingsGoal{}, fmt.Errorf("insert savings goal: %w", err)
	}
	return g, nil
}

func (r *Repository) GetSavingsGoal(ctx context.Context, userID, id uuid.UUID) (core.SavingsGoal, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+goalColumns+` FROM savings_goals WHERE id = $1 AND user_id = $2`,
		id.String(), userID.String())
	return scanGoal(row)
}

func (r *Repository) UpdateSavingsGoal(ctx context.Context, userID, id uuid.UUID, patch ledger.SavingsGoalPatch) (core.SavingsGoal, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return core.SavingsGoal{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		SELECT `+goalColumns+` FROM savings_goals WHERE id = $1 AND user_id = $2 FOR UPDATE`,
		id.String(), userID.String())
	g, err := scanGoal(row)
	if err != nil {
		return core.SavingsGoal{}, err
	}

	patch.Apply(&g)
	if err := g.Validate(); err != nil {
		return core.SavingsGoal{}, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE savings_goals
		SET name = $1, target = $2::numeric, current = $3::numeric, deadline = $4, icon = $5, color = $6
		WHERE id = $7 AND user_id = $8`,
		g.Name, g.Target.String(), g.Current.String(), dateParam(g.Deadline),
		g.Icon, g.Color, id.String(), userID.String())
	if err != nil {
		return core.SavingsGoal{}, fmt.Errorf("update savings goal: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return core.SavingsGoal{}, fmt.Errorf("commit transaction: %w", err)
	}
	return g, nil
}

func (r *Repository) DeleteSavingsGoal(ctx context.Context, userID, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM savings_goals WHERE id = $1 AND user_id = $2`,
		id.String(), userID.String())
	if err != nil {
		return fmt.Errorf("delete savings goal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return core.ErrNotFound
	}
	return nil
}

func (r *Repository) ListSavingsGoals(ctx context.Context, userID uuid.UUID) ([]core.SavingsGoal, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+goalColumns+` FROM savings_goals WHERE user_id = $1 ORDER BY name`,
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

func dateParam(d *core.Date) any {
	if d == nil || d.IsZero() {
		return nil
	}
	return d.Time
}

func scanGoal(row rowScanner) (core.SavingsGoal, error) {
	var (
		g                     core.SavingsGoal
		idStr, userStr        string
		targetStr, currentStr string
		deadline              *time.Time
	)
	err := row.Scan(&idStr, &userStr, &g.Name, &targetStr, &currentStr,
		&deadline, &g.Icon, &g.Color)
	if errors.Is(err, pgx.ErrNoRows) {
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
	if g.Target, err = parseNumeric(targetStr); err != nil {
		return core.SavingsGoal{}, err
	}
	if g.Current, err = parseNumeric(currentStr); err != nil {
		return core.SavingsGoal{}, err
	}
	if deadline != nil {
		d := core.DateOf(*deadline)
		g.Deadline = &d
	}
	return g, nil
}
