package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tankhah/internal/core"
	"tankhah/internal/jalali"
)

func (r *SQLiteRepository) CreateIncome(ctx context.Context, in core.Income) (core.Income, error) {
	if err := in.Validate(); err != nil {
		return core.Income{}, err
	}

	in.ID = uuid.NewString()
	in.JalaliDate = jalali.FormatShort(in.Date)
	in.CreatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO incomes (id, title, amount, date, jalali_date, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		in.ID, in.Title, in.Amount.Tomans, fmtTime(in.Date), in.JalaliDate,
		in.Description, fmtTime(in.CreatedAt))
	if err != nil {
		return core.Income{}, fmt.Errorf("create income: %w", err)
	}
	return in, nil
}

func (r *SQLiteRepository) DeleteIncome(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM incomes WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete income: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete income: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) ListIncomes(ctx context.Context) ([]core.Income, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, amount, date, jalali_date, description, created_at
		FROM incomes ORDER BY date DESC, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list incomes: %w", err)
	}
	defer rows.Close()

	var out []core.Income
	for rows.Next() {
		var (
			in              core.Income
			date, createdAt string
		)
		if err := rows.Scan(&in.ID, &in.Title, &in.Amount.Tomans, &date,
			&in.JalaliDate, &in.Description, &createdAt); err != nil {
			return nil, fmt.Errorf("list incomes: %w", err)
		}
		if in.Date, err = parseTime(date); err != nil {
			return nil, err
		}
		if in.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	return out, rows.Err()
}

// TotalIncomes sums all income amounts.
func (r *SQLiteRepository) TotalIncomes(ctx context.Context) (core.Money, error) {
	var total int64
	err := r.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(amount), 0) FROM incomes`).Scan(&total)
	if err != nil {
		return core.Money{}, fmt.Errorf("total incomes: %w", err)
	}
	return core.Money{Tomans: total}, nil
}
