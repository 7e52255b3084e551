package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"clearance-backend/internal/domain"
	"clearance-backend/internal/logger"
)

type errorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			logger.Error("Failed to encode response", "error", err)
		}
	}
}

// writeError maps the workflow error taxonomy onto HTTP status codes.
// Guard refusals get 422 with the machine-readable reason so clients can
// distinguish "not yet your turn" from "already decided".
func writeError(w http.ResponseWriter, err error) {
	var elig *domain.EligibilityError
	switch {
	case errors.As(err, &elig):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: elig.Message, Reason: string(elig.Reason)})
	case errors.Is(err, domain.ErrValidation):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrActiveApplication),
		errors.Is(err, domain.ErrApplicationApproved),
		errors.Is(err, domain.ErrConflict):
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	default:
		logger.Error("Request failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}
