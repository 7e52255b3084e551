package http

import (
	"encoding/json"
	"net/http"

	"clearance-backend/internal/domain"
	"clearance-backend/internal/service"
)

// AdminHandler serves registration review, stage catalog management,
// the revert escape hatch and the dashboard stats.
type AdminHandler struct {
	admin    service.AdminService
	workflow service.WorkflowService
}

func NewAdminHandler(admin service.AdminService, workflow service.WorkflowService) *AdminHandler {
	return &AdminHandler{admin: admin, workflow: workflow}
}

func (h *AdminHandler) ListPendingAuthorities(w http.ResponseWriter, r *http.Request) {
	authorities, err := h.admin.ListPendingAuthorities(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if authorities == nil {
		authorities = []domain.Authority{}
	}
	writeJSON(w, http.StatusOK, authorities)
}

type reviewRequest struct {
	Verdict domain.Verdict `json:"verdict"`
	Reason  string         `json:"reason"`
}

func (h *AdminHandler) ReviewAuthority(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid authority id"})
		return
	}
	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	claims := ClaimsFrom(r.Context())
	if err := h.admin.ReviewAuthority(r.Context(), claims.UserID, id, req.Verdict, req.Reason); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type bulkReviewRequest struct {
	AuthorityIDs []int32        `json:"authority_ids"`
	Verdict      domain.Verdict `json:"verdict"`
	Reason       string         `json:"reason"`
}

func (h *AdminHandler) BulkReviewAuthorities(w http.ResponseWriter, r *http.Request) {
	var req bulkReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	claims := ClaimsFrom(r.Context())
	results, err := h.admin.BulkReviewAuthorities(r.Context(), claims.UserID, req.AuthorityIDs, req.Verdict, req.Reason)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

type activeRequest struct {
	Active bool `json:"active"`
}

func (h *AdminHandler) SetAuthorityActive(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid authority id"})
		return
	}
	var req activeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if err := h.admin.SetAuthorityActive(r.Context(), id, req.Active); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *AdminHandler) ListStages(w http.ResponseWriter, r *http.Request) {
	stages, err := h.admin.ListStages(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if stages == nil {
		stages = []domain.StageDefinition{}
	}
	writeJSON(w, http.StatusOK, stages)
}

func (h *AdminHandler) CreateStage(w http.ResponseWriter, r *http.Request) {
	var stage domain.StageDefinition
	if err := json.NewDecoder(r.Body).Decode(&stage); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if err := h.admin.CreateStage(r.Context(), &stage); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, stage)
}

func (h *AdminHandler) DeactivateStage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid stage id"})
		return
	}
	if err := h.admin.DeactivateStage(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type revertRequest struct {
	TargetStage int32 `json:"target_stage"`
}

func (h *AdminHandler) RevertApplication(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid application id"})
		return
	}
	var req revertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}
	if err := h.workflow.RevertStage(r.Context(), id, req.TargetStage); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.workflow.Stats(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
