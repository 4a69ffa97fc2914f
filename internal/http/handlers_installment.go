package http

import (
	"errors"
	"net/http"
	"strings"

	"tankhah/internal/core"
	"tankhah/internal/services"
	"tankhah/internal/storage"
)

type installmentRequest struct {
	Type            string  `json:"type"` // receivable | payable
	Title           string  `json:"title"`
	PrincipalAmount string  `json:"principalAmount"`
	InterestRate    float64 `json:"interestRate"` // annual, percent
	DurationMonths  int     `json:"durationMonths"`
	StartDate       string  `json:"startDate"` // Jalali YYYY/MM/DD
	Description     string  `json:"description"`
	Creditor        string  `json:"creditor"`
	Debtor          string  `json:"debtor"`
}

// installmentResponse bundles a loan with its payment schedule.
type installmentResponse struct {
	Installment core.Installment          `json:"installment"`
	Payments    []core.InstallmentPayment `json:"payments"`
}

func (s *Server) handleListInstallments(w http.ResponseWriter, r *http.Request) {
	installments, err := s.installments.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list installments")
		return
	}
	if installments == nil {
		installments = []core.Installment{}
	}
	writeJSON(w, http.StatusOK, installments)
}

func (s *Server) handleCreateInstallment(w http.ResponseWriter, r *http.Request) {
	var req installmentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	principal, err := core.ParseAmount(req.PrincipalAmount)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	startDate, err := parseJalaliDate(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := s.installments.Create(r.Context(), services.NewInstallmentInput{
		Type:            core.InstallmentType(strings.TrimSpace(req.Type)),
		Title:           strings.TrimSpace(req.Title),
		PrincipalAmount: principal,
		InterestRate:    req.InterestRate,
		DurationMonths:  req.DurationMonths,
		StartDate:       startDate,
		Description:     strings.TrimSpace(req.Description),
		Creditor:        strings.TrimSpace(req.Creditor),
		Debtor:          strings.TrimSpace(req.Debtor),
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleGetInstallment(w http.ResponseWriter, r *http.Request) {
	ins, payments, err := s.installments.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "installment not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load installment")
		return
	}
	if payments == nil {
		payments = []core.InstallmentPayment{}
	}
	writeJSON(w, http.StatusOK, installmentResponse{Installment: ins, Payments: payments})
}

func (s *Server) handleDeleteInstallment(w http.ResponseWriter, r *http.Request) {
	if err := s.installments.Delete(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "installment not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete installment")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSettlePayment(w http.ResponseWriter, r *http.Request) {
	if err := s.installments.Settle(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "payment not found or already paid")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to settle payment")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
