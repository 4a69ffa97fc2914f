package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"tankhah/internal/core"
)

func (r *SQLiteRepository) ListCategories(ctx context.Context) ([]core.Category, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, icon, color, ord FROM categories ORDER BY ord, name`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var out []core.Category
	for rows.Next() {
		var c core.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Icon, &c.Color, &c.Order); err != nil {
			return nil, fmt.Errorf("list categories: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CreateCategory appends a category at the end of the order.
func (r *SQLiteRepository) CreateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}

	c.ID = uuid.NewString()
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories`).Scan(&c.Order)
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO categories (id, name, icon, color, ord) VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.Name, c.Icon, c.Color, c.Order)
	if err != nil {
		return core.Category{}, fmt.Errorf("create category: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) UpdateCategory(ctx context.Context, c core.Category) (core.Category, error) {
	if err := c.Validate(); err != nil {
		return core.Category{}, err
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE categories SET name = ?, icon = ?, color = ?, ord = ? WHERE id = ?`,
		c.Name, c.Icon, c.Color, c.Order, c.ID)
	if err != nil {
		return core.Category{}, fmt.Errorf("update category: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return core.Category{}, fmt.Errorf("update category: %w", err)
	}
	if n == 0 {
		return core.Category{}, ErrNotFound
	}
	return c, nil
}

func (r *SQLiteRepository) DeleteCategory(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ReorderCategories rewrites the order column for the given ids, first to last.
func (r *SQLiteRepository) ReorderCategories(ctx context.Context, ids []string) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("reorder categories: %w", err)
	}
	defer tx.Rollback()

	for i, id := range ids {
		if _, err := tx.ExecContext(ctx, `UPDATE categories SET ord = ? WHERE id = ?`, i, id); err != nil {
			return fmt.Errorf("reorder categories: %w", err)
		}
	}
	return tx.Commit()
}
