// Package memory is an in-process stand-in for the Google Sheets adapter,
// used in tests and when the export is disabled.
package memory

import (
	"context"
	"fmt"
	"sync"

	"tankhah/internal/core"
	ports "tankhah/internal/sheets"
)

type Store struct {
	mu    sync.Mutex
	items map[string]core.Expense
	order []string
}

var (
	_ ports.ExpenseWriter  = (*Store)(nil)
	_ ports.ExpenseDeleter = (*Store)(nil)
)

func New() *Store {
	return &Store{items: make(map[string]core.Expense)}
}

// Append stores the expense and returns a synthetic row reference.
func (s *Store) Append(_ context.Context, e core.Expense) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.items[e.ID]; !exists {
		s.order = append(s.order, e.ID)
	}
	s.items[e.ID] = e

	for i, id := range s.order {
		if id == e.ID {
			return fmt.Sprintf("mem:%d", i+1), nil
		}
	}
	return "", fmt.Errorf("row for %s lost", e.ID)
}

func (s *Store) DeleteExpense(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.items, id)
	for i, got := range s.order {
		if got == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// List returns the stored expenses in insertion order.
func (s *Store) List() []core.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]core.Expense, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.items[id])
	}
	return out
}
