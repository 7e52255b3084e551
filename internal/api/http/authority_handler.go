package http

import (
	"encoding/json"
	"net/http"

	"clearance-backend/internal/domain"
	"clearance-backend/internal/service"
)

// AuthorityHandler serves the decision-maker endpoints: the worklist
// and the verdict itself.
type AuthorityHandler struct {
	workflow service.WorkflowService
}

func NewAuthorityHandler(workflow service.WorkflowService) *AuthorityHandler {
	return &AuthorityHandler{workflow: workflow}
}

func (h *AuthorityHandler) Worklist(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFrom(r.Context())
	work, err := h.workflow.ListAssignableWork(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	if work == nil {
		work = []domain.StageDecision{}
	}
	writeJSON(w, http.StatusOK, work)
}

type decisionRequest struct {
	Verdict domain.Verdict `json:"verdict"`
	Note    string         `json:"note"`
}

func (h *AuthorityHandler) Decide(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid application id"})
		return
	}
	var req decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	claims := ClaimsFrom(r.Context())
	app, err := h.workflow.DecideStage(r.Context(), id, claims.UserID, req.Verdict, req.Note)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

func (h *AuthorityHandler) MyStats(w http.ResponseWriter, r *http.Request) {
	claims := ClaimsFrom(r.Context())
	stats, err := h.workflow.AuthorityStats(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
