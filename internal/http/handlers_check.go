package http

import (
	"errors"
	"net/http"
	"strings"

	"tankhah/internal/core"
	"tankhah/internal/storage"
)

type checkRequest struct {
	Type          string `json:"type"` // received | issued
	CheckNumber   string `json:"checkNumber"`
	Amount        string `json:"amount"`
	Issuer        string `json:"issuer"`
	Receiver      string `json:"receiver"`
	Bank          string `json:"bank"`
	AccountNumber string `json:"accountNumber"`
	DueDate       string `json:"dueDate"`   // Jalali YYYY/MM/DD
	IssueDate     string `json:"issueDate"` // Jalali YYYY/MM/DD
	Status        string `json:"status"`    // defaults to pending
	Description   string `json:"description"`
}

func (s *Server) handleListChecks(w http.ResponseWriter, r *http.Request) {
	checks, err := s.checks.ListChecks(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list checks")
		return
	}

	filter := checkFilterFromQuery(r)
	filtered := make([]core.Check, 0, len(checks))
	for _, c := range checks {
		if filter.Matches(c) {
			filtered = append(filtered, c)
		}
	}
	writeJSON(w, http.StatusOK, filtered)
}

func (s *Server) handleCreateCheck(w http.ResponseWriter, r *http.Request) {
	c, ok := checkFromRequest(w, r)
	if !ok {
		return
	}

	created, err := s.checks.CreateCheck(r.Context(), c)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create check")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetCheck(w http.ResponseWriter, r *http.Request) {
	c, err := s.checks.GetCheck(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "check not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load check")
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleUpdateCheck(w http.ResponseWriter, r *http.Request) {
	c, ok := checkFromRequest(w, r)
	if !ok {
		return
	}
	c.ID = r.PathValue("id")

	updated, err := s.checks.UpdateCheck(r.Context(), c)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "check not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update check")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteCheck(w http.ResponseWriter, r *http.Request) {
	if err := s.checks.DeleteCheck(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "check not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete check")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func checkFromRequest(w http.ResponseWriter, r *http.Request) (core.Check, bool) {
	var req checkRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return core.Check{}, false
	}

	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return core.Check{}, false
	}
	dueDate, err := parseJalaliDate(req.DueDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return core.Check{}, false
	}
	issueDate, err := parseJalaliDate(req.IssueDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return core.Check{}, false
	}

	status := core.CheckStatus(strings.TrimSpace(req.Status))
	if status == "" {
		status = core.CheckPending
	}

	c := core.Check{
		Type:          core.CheckType(strings.TrimSpace(req.Type)),
		CheckNumber:   strings.TrimSpace(req.CheckNumber),
		Amount:        amount,
		Issuer:        strings.TrimSpace(req.Issuer),
		Receiver:      strings.TrimSpace(req.Receiver),
		Bank:          strings.TrimSpace(req.Bank),
		AccountNumber: strings.TrimSpace(req.AccountNumber),
		DueDate:       dueDate,
		IssueDate:     issueDate,
		Status:        status,
		Description:   strings.TrimSpace(req.Description),
	}
	if err := c.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return core.Check{}, false
	}
	return c, true
}

func checkFilterFromQuery(r *http.Request) core.CheckFilter {
	q := r.URL.Query()
	return core.CheckFilter{
		Type:        core.CheckType(strings.TrimSpace(q.Get("type"))),
		Status:      core.CheckStatus(strings.TrimSpace(q.Get("status"))),
		SearchQuery: strings.TrimSpace(q.Get("q")),
	}
}
