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

func (r *SQLiteRepository) CreateCheck(ctx context.Context, c core.Check) (core.Check, error) {
	if err := c.Validate(); err != nil {
		return core.Check{}, err
	}

	now := time.Now()
	c.ID = uuid.NewString()
	c.JalaliDueDate = jalali.FormatShort(c.DueDate)
	c.JalaliIssueDate = jalali.FormatShort(c.IssueDate)
	c.CreatedAt = now
	c.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO checks (id, type, check_number, amount, issuer, receiver, bank, account_number,
			due_date, jalali_due_date, issue_date, jalali_issue_date, status, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.Type, c.CheckNumber, c.Amount.Tomans, c.Issuer, c.Receiver, c.Bank, c.AccountNumber,
		fmtTime(c.DueDate), c.JalaliDueDate, fmtTime(c.IssueDate), c.JalaliIssueDate,
		c.Status, c.Description, fmtTime(c.CreatedAt), fmtTime(c.UpdatedAt))
	if err != nil {
		return core.Check{}, fmt.Errorf("create check: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) UpdateCheck(ctx context.Context, c core.Check) (core.Check, error) {
	if err := c.Validate(); err != nil {
		return core.Check{}, err
	}

	c.JalaliDueDate = jalali.FormatShort(c.DueDate)
	c.JalaliIssueDate = jalali.FormatShort(c.IssueDate)
	c.UpdatedAt = time.Now()

	res, err := r.db.ExecContext(ctx, `
		UPDATE checks
		SET type = ?, check_number = ?, amount = ?, issuer = ?, receiver = ?, bank = ?, account_number = ?,
			due_date = ?, jalali_due_date = ?, issue_date = ?, jalali_issue_date = ?, status = ?, description = ?, updated_at = ?
		WHERE id = ?`,
		c.Type, c.CheckNumber, c.Amount.Tomans, c.Issuer, c.Receiver, c.Bank, c.AccountNumber,
		fmtTime(c.DueDate), c.JalaliDueDate, fmtTime(c.IssueDate), c.JalaliIssueDate,
		c.Status, c.Description, fmtTime(c.UpdatedAt), c.ID)
	if err != nil {
		return core.Check{}, fmt.Errorf("update check: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return core.Check{}, fmt.Errorf("update check: %w", err)
	}
	if n == 0 {
		return core.Check{}, ErrNotFound
	}
	return r.GetCheck(ctx, c.ID)
}

func (r *SQLiteRepository) DeleteCheck(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM checks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete check: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete check: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) GetCheck(ctx context.Context, id string) (core.Check, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, type, check_number, amount, issuer, receiver, bank, account_number,
			due_date, jalali_due_date, issue_date, jalali_issue_date, status, description, created_at, updated_at
		FROM checks WHERE id = ?`, id)
	c, err := scanCheck(row)
	if err == sql.ErrNoRows {
		return core.Check{}, ErrNotFound
	}
	if err != nil {
		return core.Check{}, fmt.Errorf("get check: %w", err)
	}
	return c, nil
}

// ListChecks returns every check ordered by due date, soonest first.
func (r *SQLiteRepository) ListChecks(ctx context.Context) ([]core.Check, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, type, check_number, amount, issuer, receiver, bank, account_number,
			due_date, jalali_due_date, issue_date, jalali_issue_date, status, description, created_at, updated_at
		FROM checks ORDER BY due_date`)
	if err != nil {
		return nil, fmt.Errorf("list checks: %w", err)
	}
	defer rows.Close()

	var out []core.Check
	for rows.Next() {
		c, err := scanCheck(rows)
		if err != nil {
			return nil, fmt.Errorf("list checks: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanCheck(row rowScanner) (core.Check, error) {
	var (
		c                                        core.Check
		dueDate, issueDate, createdAt, updatedAt string
	)
	if err := row.Scan(&c.ID, &c.Type, &c.CheckNumber, &c.Amount.Tomans, &c.Issuer, &c.Receiver,
		&c.Bank, &c.AccountNumber, &dueDate, &c.JalaliDueDate, &issueDate, &c.JalaliIssueDate,
		&c.Status, &c.Description, &createdAt, &updatedAt); err != nil {
		return core.Check{}, err
	}
	var err error
	if c.DueDate, err = parseTime(dueDate); err != nil {
		return core.Check{}, err
	}
	if c.IssueDate, err = parseTime(issueDate); err != nil {
		return core.Check{}, err
	}
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return core.Check{}, err
	}
	if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return core.Check{}, err
	}
	return c, nil
}
