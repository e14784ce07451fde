package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/goyal-sidhant/Combinational-Sum/internal/api"
	"github.com/goyal-sidhant/Combinational-Sum/internal/api/middleware"
	"github.com/goyal-sidhant/Combinational-Sum/internal/domain"
	"github.com/go-chi/chi/v5"
)

type MarkService interface {
	MarkResult(ctx context.Context, workspaceID, runID string, ordinal int) ([]*domain.Mark, error)
	ListMarks(ctx context.Context, workspaceID, datasetID string) ([]*domain.Mark, error)
	ClearMarks(ctx context.Context, workspaceID, datasetID string) (int64, error)
}

type MarkHandler struct {
	svc MarkService
}

func NewMarkHandler(svc MarkService) *MarkHandler {
	return &MarkHandler{svc: svc}
}

type MarkResponse struct {
	CellID   string `json:"cell_id"`
	RunID    string `json:"run_id,omitempty"`
	MarkedAt string `json:"marked_at"`
}

func markToResponse(m *domain.Mark) MarkResponse {
	return MarkResponse{
		CellID:   m.CellID,
		RunID:    m.RunID,
		MarkedAt: m.MarkedAt.Format("2006-01-02T15:04:05Z"),
	}
}

// MarkResult marks the cells of one stored combination as used.
func (h *MarkHandler) MarkResult(w http.ResponseWriter, r *http.Request) {
	workspaceID := middleware.GetWorkspaceID(r.Context())
	if workspaceID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	ordinal, err := strconv.Atoi(chi.URLParam(r, "ordinal"))
	if err != nil || ordinal < 0 {
		api.Error(w, http.StatusBadRequest, "invalid ordinal")
		return
	}

	marks, err := h.svc.MarkResult(r.Context(), workspaceID, chi.URLParam(r, "id"), ordinal)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	out := make([]MarkResponse, len(marks))
	for i, m := range marks {
		out[i] = markToResponse(m)
	}

	api.Success(w, http.StatusCreated, out)
}

func (h *MarkHandler) List(w http.ResponseWriter, r *http.Request) {
	workspaceID := middleware.GetWorkspaceID(r.Context())
	if workspaceID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	marks, err := h.svc.ListMarks(r.Context(), workspaceID, chi.URLParam(r, "id"))
	if err != nil {
		api.HandleError(w, err)
		return
	}

	out := make([]MarkResponse, len(marks))
	for i, m := range marks {
		out[i] = markToResponse(m)
	}

	api.Success(w, http.StatusOK, out)
}

type ClearMarksResponse struct {
	Removed int64 `json:"removed"`
}

func (h *MarkHandler) Clear(w http.ResponseWriter, r *http.Request) {
	workspaceID := middleware.GetWorkspaceID(r.Context())
	if workspaceID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	removed, err := h.svc.ClearMarks(r.Context(), workspaceID, chi.URLParam(r, "id"))
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, ClearMarksResponse{Removed: removed})
}
