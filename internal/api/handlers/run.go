package handlers

import (
	"net/http"
	"strconv"

	"github.com/goyal-sidhant/Combinational-Sum/internal/api"
	"github.com/goyal-sidhant/Combinational-Sum/internal/api/middleware"
	"github.com/goyal-sidhant/Combinational-Sum/internal/domain"
	"github.com/goyal-sidhant/Combinational-Sum/internal/service"
	"github.com/go-chi/chi/v5"
)

type RunHandler struct {
	svc SearchService
}

func NewRunHandler(svc SearchService) *RunHandler {
	return &RunHandler{svc: svc}
}

func (h *RunHandler) Get(w http.ResponseWriter, r *http.Request) {
	workspaceID := middleware.GetWorkspaceID(r.Context())
	if workspaceID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	run, err := h.svc.GetRun(r.Context(), workspaceID, chi.URLParam(r, "id"))
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, runToResponse(run))
}

func (h *RunHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	workspaceID := middleware.GetWorkspaceID(r.Context())
	if workspaceID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	run, err := h.svc.Cancel(r.Context(), workspaceID, chi.URLParam(r, "id"))
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, runToResponse(run))
}

type StoredResultResponse struct {
	Ordinal int      `json:"ordinal"`
	Sum     float64  `json:"sum"`
	Exact   bool     `json:"exact"`
	CellIDs []string `json:"cell_ids"`
	Refs    []string `json:"refs"`
}

type ListResultsResponse struct {
	Run     RunResponse            `json:"run"`
	Results []StoredResultResponse `json:"results"`
	HasMore bool                   `json:"has_more"`
}

func storedResultToResponse(res *domain.RunResult) StoredResultResponse {
	return StoredResultResponse{
		Ordinal: res.Ordinal,
		Sum:     res.Sum,
		Exact:   res.Exact,
		CellIDs: res.CellIDs,
		Refs:    res.Refs,
	}
}

func (h *RunHandler) ListResults(w http.ResponseWriter, r *http.Request) {
	workspaceID := middleware.GetWorkspaceID(r.Context())
	if workspaceID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	fromOrdinal := 0
	if v := r.URL.Query().Get("from"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			api.Error(w, http.StatusBadRequest, "invalid from ordinal")
			return
		}
		fromOrdinal = parsed
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			api.Error(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	out, err := h.svc.ListResults(r.Context(), service.ListResultsInput{
		WorkspaceID: workspaceID,
		RunID:       chi.URLParam(r, "id"),
		FromOrdinal: fromOrdinal,
		Limit:       limit,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	results := make([]StoredResultResponse, len(out.Results))
	for i, res := range out.Results {
		results[i] = storedResultToResponse(res)
	}

	api.Success(w, http.StatusOK, ListResultsResponse{
		Run:     runToResponse(out.Run),
		Results: results,
		HasMore: out.HasMore,
	})
}
