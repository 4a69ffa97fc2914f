package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"tankhah/internal/core"
)

// GetBudget returns the budget stored for a Jalali "YYYY/MM" month key, or
// ErrNotFound when the month has no budget yet.
func (r *SQLiteRepository) GetBudget(ctx context.Context, month string) (core.Budget, error) {
	var b core.Budget
	err := r.db.QueryRowContext(ctx, `
		SELECT id, month, monthly_target, current_balance FROM budgets WHERE month = ?`, month).
		Scan(&b.ID, &b.Month, &b.MonthlyTarget.Tomans, &b.CurrentBalance.Tomans)
	if err == sql.ErrNoRows {
		return core.Budget{}, ErrNotFound
	}
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget: %w", err)
	}
	return b, nil
}

// UpsertBudget writes the month's budget, replacing any existing row for
// the same month.
func (r *SQLiteRepository) UpsertBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO budgets (id, month, monthly_target, current_balance)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(month) DO UPDATE SET
			monthly_target = excluded.monthly_target,
			current_balance = excluded.current_balance`,
		b.ID, b.Month, b.MonthlyTarget.Tomans, b.CurrentBalance.Tomans)
	if err != nil {
		return core.Budget{}, fmt.Errorf("upsert budget: %w", err)
	}
	return r.GetBudget(ctx, b.Month)
}

func (r *SQLiteRepository) ListBudgets(ctx context.Context) ([]core.Budget, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, month, monthly_target, current_balance FROM budgets ORDER BY month DESC`)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}
	defer rows.Close()

	var out []core.Budget
	for rows.Next() {
		var b core.Budget
		if err := rows.Scan(&b.ID, &b.Month, &b.MonthlyTarget.Tomans, &b.CurrentBalance.Tomans); err != nil {
			return nil, fmt.Errorf("list budgets: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
