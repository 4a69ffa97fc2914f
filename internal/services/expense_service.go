// Package services wires the storage layer to the outbound adapters:
// expense writes fan out to the AMQP sync queue, dashboard figures are
// aggregated (and cached) from stored expenses, and installment schedules
// are generated by Jalali month stepping.
package services

import (
	"context"
	"fmt"
	"log/slog"

	"tankhah/internal/amqp"
	"tankhah/internal/core"
)

// ExpenseStore is the persistence surface the expense service needs.
type ExpenseStore interface {
	CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error)
	UpdateExpense(ctx context.Context, e core.Expense) (core.Expense, error)
	DeleteExpense(ctx context.Context, id string) error
	GetExpense(ctx context.Context, id string) (core.Expense, error)
	ListExpenses(ctx context.Context) ([]core.Expense, error)
	TotalExpenses(ctx context.Context) (core.Money, error)
}

// SyncPublisher publishes expense sync messages. A nil publisher disables
// the export path without affecting local writes.
type SyncPublisher interface {
	PublishExpenseSync(ctx context.Context, id, action string) error
}

// Invalidator drops derived data after a write.
type Invalidator interface {
	Clear()
}

// ExpenseService orchestrates expense operations across SQLite and AMQP
type ExpenseService struct {
	store     ExpenseStore
	publisher SyncPublisher
	cache     Invalidator
}

func NewExpenseService(store ExpenseStore, publisher SyncPublisher, cache Invalidator) *ExpenseService {
	return &ExpenseService{
		store:     store,
		publisher: publisher,
		cache:     cache,
	}
}

// Create saves an expense locally and publishes a sync message.
func (s *ExpenseService) Create(ctx context.Context, e core.Expense) (core.Expense, error) {
	saved, err := s.store.CreateExpense(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("save expense: %w", err)
	}
	s.invalidate()
	s.publish(ctx, saved.ID, amqp.ActionUpsert)
	return saved, nil
}

// Update rewrites an existing expense and re-publishes it.
func (s *ExpenseService) Update(ctx context.Context, e core.Expense) (core.Expense, error) {
	saved, err := s.store.UpdateExpense(ctx, e)
	if err != nil {
		return core.Expense{}, fmt.Errorf("update expense: %w", err)
	}
	s.invalidate()
	s.publish(ctx, saved.ID, amqp.ActionUpsert)
	return saved, nil
}

// Delete removes an expense locally and publishes a delete message.
func (s *ExpenseService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteExpense(ctx, id); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	s.invalidate()
	s.publish(ctx, id, amqp.ActionDelete)
	return nil
}

func (s *ExpenseService) Get(ctx context.Context, id string) (core.Expense, error) {
	return s.store.GetExpense(ctx, id)
}

// List returns expenses newest first, narrowed by the filter.
func (s *ExpenseService) List(ctx context.Context, filter core.ExpenseFilter) ([]core.Expense, error) {
	all, err := s.store.ListExpenses(ctx)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}

	out := make([]core.Expense, 0, len(all))
	for _, e := range all {
		if filter.Matches(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

// Total sums every stored expense amount.
func (s *ExpenseService) Total(ctx context.Context) (core.Money, error) {
	total, err := s.store.TotalExpenses(ctx)
	if err != nil {
		return core.Money{}, fmt.Errorf("total expenses: %w", err)
	}
	return total, nil
}

// publish is best effort: the expense is already durable locally, so a
// broker failure only delays the sheet export.
func (s *ExpenseService) publish(ctx context.Context, id, action string) {
	if s.publisher == nil {
		slog.DebugContext(ctx, "Sync publisher not available, skipping message", "id", id)
		return
	}
	if err := s.publisher.PublishExpenseSync(ctx, id, action); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"id", id, "action", action, "error", err)
	}
}

func (s *ExpenseService) invalidate() {
	if s.cache != nil {
		s.cache.Clear()
	}
}
