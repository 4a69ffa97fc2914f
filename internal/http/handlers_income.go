package http

import (
	"errors"
	"net/http"
	"strings"

	"tankhah/internal/core"
	"tankhah/internal/storage"
)

type incomeRequest struct {
	Title       string `json:"title"`
	Amount      string `json:"amount"`
	Date        string `json:"date"` // Jalali YYYY/MM/DD
	Description string `json:"description"`
}

func (s *Server) handleListIncomes(w http.ResponseWriter, r *http.Request) {
	incomes, err := s.incomes.ListIncomes(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list incomes")
		return
	}
	if incomes == nil {
		incomes = []core.Income{}
	}
	writeJSON(w, http.StatusOK, incomes)
}

func (s *Server) handleCreateIncome(w http.ResponseWriter, r *http.Request) {
	var req incomeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	date, err := parseJalaliDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	in := core.Income{
		Title:       strings.TrimSpace(req.Title),
		Amount:      amount,
		Date:        date,
		Description: strings.TrimSpace(req.Description),
	}
	if err := in.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := s.incomes.CreateIncome(r.Context(), in)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create income")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleDeleteIncome(w http.ResponseWriter, r *http.Request) {
	if err := s.incomes.DeleteIncome(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "income not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete income")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
