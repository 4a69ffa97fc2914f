package http

import (
	"net/http"
	"strings"
)

type activateRequest struct {
	LicenseKey string `json:"licenseKey"`
	Email      string `json:"email"`
}

func (s *Server) handleLicenseStatus(w http.ResponseWriter, r *http.Request) {
	status := s.licenses.Check(r.Context(), userID(r))
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleLicenseActivate(w http.ResponseWriter, r *http.Request) {
	var req activateRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.LicenseKey) == "" {
		writeError(w, http.StatusBadRequest, "empty license key")
		return
	}

	result := s.licenses.Activate(r.Context(), userID(r), req.Email, req.LicenseKey)
	status := http.StatusOK
	if !result.Success {
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, result)
}
