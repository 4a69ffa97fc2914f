package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tankhah/internal/core"
	"tankhah/internal/jalali"
)

// CreateExpense persists a validated expense, assigning its id, timestamps
// and the denormalized Jalali date string.
func (r *SQLiteRepository) CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}

	now := time.Now()
	e.ID = uuid.NewString()
	e.JalaliDate = jalali.FormatShort(e.Date)
	e.CreatedAt = now
	e.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO expenses (id, title, amount, category_id, date, jalali_date, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Title, e.Amount.Tomans, e.CategoryID, fmtTime(e.Date), e.JalaliDate,
		e.Description, fmtTime(e.CreatedAt), fmtTime(e.UpdatedAt))
	if err != nil {
		return core.Expense{}, fmt.Errorf("create expense: %w", err)
	}
	return e, nil
}

// UpdateExpense rewrites a stored expense's mutable fields. The Jalali date
// is recomputed from the Gregorian date; it is a cache, never an input.
func (r *SQLiteRepository) UpdateExpense(ctx context.Context, e core.Expense) (core.Expense, error) {
	if err := e.Validate(); err != nil {
		return core.Expense{}, err
	}

	e.JalaliDate = jalali.FormatShort(e.Date)
	e.UpdatedAt = time.Now()

	res, err := r.db.ExecContext(ctx, `
		UPDATE expenses
		SET title = ?, amount = ?, category_id = ?, date = ?, jalali_date = ?, description = ?, updated_at = ?
		WHERE id = ?`,
		e.Title, e.Amount.Tomans, e.CategoryID, fmtTime(e.Date), e.JalaliDate,
		e.Description, fmtTime(e.UpdatedAt), e.ID)
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense: %w", err)
	}
	if n == 0 {
		return core.Expense{}, ErrNotFound
	}
	return r.GetExpense(ctx, e.ID)
}

func (r *SQLiteRepository) DeleteExpense(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) GetExpense(ctx context.Context, id string) (core.Expense, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, title, amount, category_id, date, jalali_date, description, created_at, updated_at
		FROM expenses WHERE id = ?`, id)
	e, err := scanExpense(row)
	if err == sql.ErrNoRows {
		return core.Expense{}, ErrNotFound
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("get expense: %w", err)
	}
	return e, nil
}

// ListExpenses returns every expense, newest first.
func (r *SQLiteRepository) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, title, amount, category_id, date, jalali_date, description, created_at, updated_at
		FROM expenses ORDER BY date DESC, created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("list expenses: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// TotalExpenses sums all expense amounts.
func (r *SQLiteRepository) TotalExpenses(ctx context.Context) (core.Money, error) {
	var total int64
	err := r.db.QueryRowContext(ctx, `SELECT COALESCE(SUM(amount), 0) FROM expenses`).Scan(&total)
	if err != nil {
		return core.Money{}, fmt.Errorf("total expenses: %w", err)
	}
	return core.Money{Tomans: total}, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExpense(row rowScanner) (core.Expense, error) {
	var (
		e                          core.Expense
		date, createdAt, updatedAt string
	)
	if err := row.Scan(&e.ID, &e.Title, &e.Amount.Tomans, &e.CategoryID, &date,
		&e.JalaliDate, &e.Description, &createdAt, &updatedAt); err != nil {
		return core.Expense{}, err
	}
	var err error
	if e.Date, err = parseTime(date); err != nil {
		return core.Expense{}, err
	}
	if e.CreatedAt, err = parseTime(createdAt); err != nil {
		return core.Expense{}, err
	}
	if e.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return core.Expense{}, err
	}
	return e, nil
}
