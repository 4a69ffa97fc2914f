package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"tankhah/internal/core"
	"tankhah/internal/jalali"
	"tankhah/internal/storage"
)

type budgetRequest struct {
	Month          string `json:"month"` // Jalali YYYY/MM, defaults to the current month
	MonthlyTarget  string `json:"monthlyTarget"`
	CurrentBalance string `json:"currentBalance"`
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	month, err := monthKeyOrCurrent(r.URL.Query().Get("month"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	b, err := s.budgets.GetBudget(r.Context(), month)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// No budget set yet for this month; hand back an unsaved zero
			// budget so the client can render the form.
			writeJSON(w, http.StatusOK, core.Budget{Month: month})
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load budget")
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleUpsertBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	month, err := monthKeyOrCurrent(req.Month)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	target, err := core.ParseAmount(req.MonthlyTarget)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("monthly target: %s", err))
		return
	}

	// The balance may legitimately be zero, which ParseAmount rejects for
	// expense amounts. An empty balance snapshots income minus spending.
	var balance core.Money
	if strings.TrimSpace(req.CurrentBalance) != "" {
		balance, err = core.ParseAmount(req.CurrentBalance)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("current balance: %s", err))
			return
		}
	} else {
		balance, err = s.balanceSnapshot(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to compute balance")
			return
		}
	}

	b, err := s.budgets.UpsertBudget(r.Context(), core.Budget{
		Month:          month,
		MonthlyTarget:  target,
		CurrentBalance: balance,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to save budget")
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	budgets, err := s.budgets.ListBudgets(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list budgets")
		return
	}
	if budgets == nil {
		budgets = []core.Budget{}
	}
	writeJSON(w, http.StatusOK, budgets)
}

// balanceSnapshot is all recorded income minus all recorded spending.
func (s *Server) balanceSnapshot(ctx context.Context) (core.Money, error) {
	income, err := s.incomes.TotalIncomes(ctx)
	if err != nil {
		return core.Money{}, err
	}
	spent, err := s.expenses.Total(ctx)
	if err != nil {
		return core.Money{}, err
	}
	return core.Money{Tomans: income.Tomans - spent.Tomans}, nil
}

// monthKeyOrCurrent validates a "YYYY/MM" Jalali month key, defaulting to
// the current Jalali month when the input is empty.
func monthKeyOrCurrent(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return jalali.FormatMonth(time.Now()), nil
	}

	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		return "", fmt.Errorf("invalid month %q, want YYYY/MM", s)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return "", fmt.Errorf("invalid month %q, want YYYY/MM", s)
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return "", fmt.Errorf("invalid month %q, want YYYY/MM", s)
	}
	return fmt.Sprintf("%d/%02d", year, month), nil
}
