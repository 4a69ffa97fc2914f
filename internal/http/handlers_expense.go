package http

import (
	"errors"
	"net/http"
	"strings"

	"tankhah/internal/core"
	"tankhah/internal/storage"
)

// expenseRequest is the write payload. Amount arrives as a string so the
// client can send Persian digits and separators verbatim.
type expenseRequest struct {
	Title       string `json:"title"`
	Amount      string `json:"amount"`
	CategoryID  string `json:"categoryId"`
	Date        string `json:"date"` // Jalali YYYY/MM/DD
	Description string `json:"description"`
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	filter, err := expenseFilterFromQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	expenses, err := s.expenses.List(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list expenses")
		return
	}
	if expenses == nil {
		expenses = []core.Expense{}
	}
	writeJSON(w, http.StatusOK, expenses)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	e, ok := s.expenseFromRequest(w, r)
	if !ok {
		return
	}

	created, err := s.expenses.Create(r.Context(), e)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.audit.LogExpenseCreated(r.Context(), created.ID, created.Title, created.Amount.Tomans, created.CategoryID)
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	e, err := s.expenses.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "expense not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load expense")
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	e, ok := s.expenseFromRequest(w, r)
	if !ok {
		return
	}
	e.ID = r.PathValue("id")

	updated, err := s.expenses.Update(r.Context(), e)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "expense not found")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := s.expenses.Delete(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "expense not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete expense")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) expenseFromRequest(w http.ResponseWriter, r *http.Request) (core.Expense, bool) {
	var req expenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return core.Expense{}, false
	}

	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return core.Expense{}, false
	}
	date, err := parseJalaliDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return core.Expense{}, false
	}

	return core.Expense{
		Title:       strings.TrimSpace(req.Title),
		Amount:      amount,
		CategoryID:  strings.TrimSpace(req.CategoryID),
		Date:        date,
		Description: strings.TrimSpace(req.Description),
	}, true
}

// expenseFilterFromQuery reads the optional from/to Jalali bounds, the
// comma-separated category list and the free-text query.
func expenseFilterFromQuery(r *http.Request) (core.ExpenseFilter, error) {
	var filter core.ExpenseFilter
	q := r.URL.Query()

	if v := strings.TrimSpace(q.Get("from")); v != "" {
		t, err := parseJalaliDate(v)
		if err != nil {
			return filter, err
		}
		filter.StartDate = t
	}
	if v := strings.TrimSpace(q.Get("to")); v != "" {
		t, err := parseJalaliDate(v)
		if err != nil {
			return filter, err
		}
		filter.EndDate = t
	}
	if v := strings.TrimSpace(q.Get("category")); v != "" {
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				filter.CategoryIDs = append(filter.CategoryIDs, id)
			}
		}
	}
	filter.SearchQuery = strings.TrimSpace(q.Get("q"))
	return filter, nil
}
