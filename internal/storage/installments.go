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

// CreateInstallment persists a loan together with its generated payment
// schedule in one transaction.
func (r *SQLiteRepository) CreateInstallment(ctx context.Context, ins core.Installment, payments []core.InstallmentPayment) (core.Installment, error) {
	if err := ins.Validate(); err != nil {
		return core.Installment{}, err
	}

	now := time.Now()
	ins.ID = uuid.NewString()
	ins.JalaliStartDate = jalali.FormatShort(ins.StartDate)
	ins.CreatedAt = now
	ins.UpdatedAt = now

	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return core.Installment{}, fmt.Errorf("create installment: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO installments (id, type, title, principal_amount, interest_rate, interest_amount,
			total_amount, paid_amount, remaining_amount, installment_count, paid_count, installment_amount,
			duration_months, start_date, jalali_start_date, description, creditor, debtor, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ins.ID, ins.Type, ins.Title, ins.PrincipalAmount.Tomans, ins.InterestRate, ins.InterestAmount.Tomans,
		ins.TotalAmount.Tomans, ins.PaidAmount.Tomans, ins.RemainingAmount.Tomans,
		ins.InstallmentCount, ins.PaidCount, ins.InstallmentAmount.Tomans,
		ins.DurationMonths, fmtTime(ins.StartDate), ins.JalaliStartDate,
		ins.Description, ins.Creditor, ins.Debtor, fmtTime(ins.CreatedAt), fmtTime(ins.UpdatedAt))
	if err != nil {
		return core.Installment{}, fmt.Errorf("create installment: %w", err)
	}

	for _, p := range payments {
		p.ID = uuid.NewString()
		p.InstallmentID = ins.ID
		p.JalaliDueDate = jalali.FormatShort(p.DueDate)
		p.CreatedAt = now
		_, err = tx.ExecContext(ctx, `
			INSERT INTO installment_payments (id, installment_id, amount, due_date, jalali_due_date,
				payment_date, jalali_payment_date, status, installment_number, description, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			p.ID, p.InstallmentID, p.Amount.Tomans, fmtTime(p.DueDate), p.JalaliDueDate,
			fmtTimePtr(p.PaymentDate), nullString(p.JalaliPaymentDate), p.Status,
			p.InstallmentNumber, p.Description, fmtTime(p.CreatedAt))
		if err != nil {
			return core.Installment{}, fmt.Errorf("create installment payment: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return core.Installment{}, fmt.Errorf("create installment: %w", err)
	}
	return ins, nil
}

func (r *SQLiteRepository) GetInstallment(ctx context.Context, id string) (core.Installment, error) {
	row := r.db.QueryRowContext(ctx, installmentColumns+` FROM installments WHERE id = ?`, id)
	ins, err := scanInstallment(row)
	if err == sql.ErrNoRows {
		return core.Installment{}, ErrNotFound
	}
	if err != nil {
		return core.Installment{}, fmt.Errorf("get installment: %w", err)
	}
	return ins, nil
}

func (r *SQLiteRepository) ListInstallments(ctx context.Context) ([]core.Installment, error) {
	rows, err := r.db.QueryContext(ctx, installmentColumns+` FROM installments ORDER BY start_date DESC`)
	if err != nil {
		return nil, fmt.Errorf("list installments: %w", err)
	}
	defer rows.Close()

	var out []core.Installment
	for rows.Next() {
		ins, err := scanInstallment(rows)
		if err != nil {
			return nil, fmt.Errorf("list installments: %w", err)
		}
		out = append(out, ins)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) DeleteInstallment(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM installments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete installment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete installment: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SQLiteRepository) ListPayments(ctx context.Context, installmentID string) ([]core.InstallmentPayment, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, installment_id, amount, due_date, jalali_due_date, payment_date, jalali_payment_date,
			status, installment_number, description, created_at
		FROM installment_payments WHERE installment_id = ? ORDER BY installment_number`, installmentID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var out []core.InstallmentPayment
	for rows.Next() {
		var (
			p                              core.InstallmentPayment
			dueDate, createdAt             string
			paymentDate, jalaliPaymentDate sql.NullString
		)
		if err := rows.Scan(&p.ID, &p.InstallmentID, &p.Amount.Tomans, &dueDate, &p.JalaliDueDate,
			&paymentDate, &jalaliPaymentDate, &p.Status, &p.InstallmentNumber, &p.Description, &createdAt); err != nil {
			return nil, fmt.Errorf("list payments: %w", err)
		}
		if p.DueDate, err = parseTime(dueDate); err != nil {
			return nil, err
		}
		if p.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		if p.PaymentDate, err = parseTimePtr(paymentDate); err != nil {
			return nil, err
		}
		p.JalaliPaymentDate = jalaliPaymentDate.String
		out = append(out, p)
	}
	return out, rows.Err()
}

// SettlePayment marks one scheduled payment paid and rolls the paid
// amount and count up into the parent installment, in one transaction.
func (r *SQLiteRepository) SettlePayment(ctx context.Context, paymentID string, paidAt time.Time) error {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("settle payment: %w", err)
	}
	defer tx.Rollback()

	var (
		installmentID string
		amount        int64
	)
	err = tx.QueryRowContext(ctx, `
		SELECT installment_id, amount FROM installment_payments
		WHERE id = ? AND status IN (?, ?)`,
		paymentID, core.PaymentPending, core.PaymentOverdue).Scan(&installmentID, &amount)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("settle payment: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE installment_payments
		SET status = ?, payment_date = ?, jalali_payment_date = ?
		WHERE id = ?`,
		core.PaymentPaid, fmtTime(paidAt), jalali.FormatShort(paidAt), paymentID)
	if err != nil {
		return fmt.Errorf("settle payment: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE installments
		SET paid_amount = paid_amount + ?,
			remaining_amount = remaining_amount - ?,
			paid_count = paid_count + 1,
			updated_at = ?
		WHERE id = ?`,
		amount, amount, fmtTime(time.Now()), installmentID)
	if err != nil {
		return fmt.Errorf("settle payment: %w", err)
	}

	return tx.Commit()
}

// MarkOverduePayments flips pending payments whose due date has passed.
func (r *SQLiteRepository) MarkOverduePayments(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE installment_payments SET status = ? WHERE status = ? AND due_date < ?`,
		core.PaymentOverdue, core.PaymentPending, fmtTime(now))
	if err != nil {
		return 0, fmt.Errorf("mark overdue payments: %w", err)
	}
	return res.RowsAffected()
}

const installmentColumns = `
	SELECT id, type, title, principal_amount, interest_rate, interest_amount, total_amount,
		paid_amount, remaining_amount, installment_count, paid_count, installment_amount,
		duration_months, start_date, jalali_start_date, description, creditor, debtor, created_at, updated_at`

func scanInstallment(row rowScanner) (core.Installment, error) {
	var (
		ins                             core.Installment
		startDate, createdAt, updatedAt string
	)
	if err := row.Scan(&ins.ID, &ins.Type, &ins.Title, &ins.PrincipalAmount.Tomans, &ins.InterestRate,
		&ins.InterestAmount.Tomans, &ins.TotalAmount.Tomans, &ins.PaidAmount.Tomans,
		&ins.RemainingAmount.Tomans, &ins.InstallmentCount, &ins.PaidCount, &ins.InstallmentAmount.Tomans,
		&ins.DurationMonths, &startDate, &ins.JalaliStartDate, &ins.Description,
		&ins.Creditor, &ins.Debtor, &createdAt, &updatedAt); err != nil {
		return core.Installment{}, err
	}
	var err error
	if ins.StartDate, err = parseTime(startDate); err != nil {
		return core.Installment{}, err
	}
	if ins.CreatedAt, err = parseTime(createdAt); err != nil {
		return core.Installment{}, err
	}
	if ins.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return core.Installment{}, err
	}
	return ins, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
