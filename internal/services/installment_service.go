package services

import (
	"context"
	"fmt"
	"time"

	"tankhah/internal/core"
	"tankhah/internal/jalali"
)

// InstallmentStore is the persistence surface for loans and their
// payment schedules.
type InstallmentStore interface {
	CreateInstallment(ctx context.Context, ins core.Installment, payments []core.InstallmentPayment) (core.Installment, error)
	GetInstallment(ctx context.Context, id string) (core.Installment, error)
	ListInstallments(ctx context.Context) ([]core.Installment, error)
	DeleteInstallment(ctx context.Context, id string) error
	ListPayments(ctx context.Context, installmentID string) ([]core.InstallmentPayment, error)
	SettlePayment(ctx context.Context, paymentID string, paidAt time.Time) error
	MarkOverduePayments(ctx context.Context, now time.Time) (int64, error)
}

// InstallmentService derives the financial figures of a loan and generates
// its monthly payment schedule by stepping the start date through the
// Jalali calendar.
type InstallmentService struct {
	store InstallmentStore
	now   func() time.Time
}

func NewInstallmentService(store InstallmentStore) *InstallmentService {
	return &InstallmentService{store: store, now: time.Now}
}

// NewInstallmentInput is the user-supplied part of a loan.
type NewInstallmentInput struct {
	Type            core.InstallmentType
	Title           string
	PrincipalAmount core.Money
	InterestRate    float64 // annual, percent
	DurationMonths  int
	StartDate       time.Time
	Description     string
	Creditor        string
	Debtor          string
}

// Create computes interest and per-payment amounts, builds the monthly
// due-date schedule, and persists everything in one transaction.
func (s *InstallmentService) Create(ctx context.Context, in NewInstallmentInput) (core.Installment, error) {
	ins := core.Installment{
		Type:             in.Type,
		Title:            in.Title,
		PrincipalAmount:  in.PrincipalAmount,
		InterestRate:     in.InterestRate,
		DurationMonths:   in.DurationMonths,
		InstallmentCount: in.DurationMonths,
		StartDate:        in.StartDate,
		Description:      in.Description,
		Creditor:         in.Creditor,
		Debtor:           in.Debtor,
	}
	if err := ins.Validate(); err != nil {
		return core.Installment{}, err
	}

	// Simple interest over the loan duration: principal * rate * years.
	interest := int64(float64(ins.PrincipalAmount.Tomans)*ins.InterestRate/100*
		float64(ins.DurationMonths)/12 + 0.5)
	total := ins.PrincipalAmount.Tomans + interest

	// Every payment carries the rounded-up share; the last one absorbs
	// the rounding difference so the schedule sums exactly to the total.
	count := int64(ins.InstallmentCount)
	per := (total + count - 1) / count
	last := total - per*(count-1)

	ins.InterestAmount = core.Money{Tomans: interest}
	ins.TotalAmount = core.Money{Tomans: total}
	ins.RemainingAmount = core.Money{Tomans: total}
	ins.InstallmentAmount = core.Money{Tomans: per}

	payments := make([]core.InstallmentPayment, ins.InstallmentCount)
	for i := range payments {
		amount := per
		if i == len(payments)-1 {
			amount = last
		}
		payments[i] = core.InstallmentPayment{
			Amount:            core.Money{Tomans: amount},
			DueDate:           addJalaliMonths(ins.StartDate, i+1),
			Status:            core.PaymentPending,
			InstallmentNumber: i + 1,
		}
	}

	saved, err := s.store.CreateInstallment(ctx, ins, payments)
	if err != nil {
		return core.Installment{}, fmt.Errorf("create installment: %w", err)
	}
	return saved, nil
}

func (s *InstallmentService) Get(ctx context.Context, id string) (core.Installment, []core.InstallmentPayment, error) {
	ins, err := s.store.GetInstallment(ctx, id)
	if err != nil {
		return core.Installment{}, nil, err
	}
	payments, err := s.store.ListPayments(ctx, id)
	if err != nil {
		return core.Installment{}, nil, fmt.Errorf("list payments: %w", err)
	}
	return ins, payments, nil
}

func (s *InstallmentService) List(ctx context.Context) ([]core.Installment, error) {
	return s.store.ListInstallments(ctx)
}

func (s *InstallmentService) Delete(ctx context.Context, id string) error {
	return s.store.DeleteInstallment(ctx, id)
}

// Settle marks one scheduled payment as paid now.
func (s *InstallmentService) Settle(ctx context.Context, paymentID string) error {
	return s.store.SettlePayment(ctx, paymentID, s.now())
}

// RefreshOverdue flips pending payments whose due date has passed.
func (s *InstallmentService) RefreshOverdue(ctx context.Context) (int64, error) {
	return s.store.MarkOverduePayments(ctx, s.now())
}

// addJalaliMonths moves the date forward by whole Jalali months, keeping
// the day of month and clamping to shorter months (31st of Farvardin plus
// one month lands on the 31st of Ordibehesht, plus six on the 30th of Mehr).
func addJalaliMonths(t time.Time, months int) time.Time {
	d := jalali.ToJalali(t)

	month := d.Month - 1 + months
	year := d.Year + month/12
	month = month%12 + 1

	day := d.Day
	if max := jalali.DaysInMonth(year, month); day > max {
		day = max
	}
	return jalali.ToGregorian(year, month, day)
}
