package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/goyal-sidhant/Combinational-Sum/internal/api"
	"github.com/goyal-sidhant/Combinational-Sum/internal/api/middleware"
	"github.com/goyal-sidhant/Combinational-Sum/internal/domain"
	"github.com/goyal-sidhant/Combinational-Sum/internal/service"
	"github.com/go-chi/chi/v5"
)

type DatasetService interface {
	Create(ctx context.Context, input service.CreateDatasetInput) (*domain.Dataset, error)
	ImportPasted(ctx context.Context, workspaceID, name, text string) (*domain.Dataset, error)
	GetByID(ctx context.Context, workspaceID, datasetID string) (*domain.Dataset, error)
	GetCells(ctx context.Context, workspaceID, datasetID string) ([]*domain.Cell, error)
	List(ctx context.Context, input service.ListDatasetsInput) (*service.ListDatasetsOutput, error)
}

type DatasetHandler struct {
	svc DatasetService
}

func NewDatasetHandler(svc DatasetService) *DatasetHandler {
	return &DatasetHandler{svc: svc}
}

type CellRequest struct {
	Ref   string  `json:"ref"`
	Value float64 `json:"value"`
}

// CreateDatasetRequest accepts either explicit cells or pasted spreadsheet text,
// but not both.
type CreateDatasetRequest struct {
	Name   string        `json:"name"`
	Cells  []CellRequest `json:"cells,omitempty"`
	Pasted string        `json:"pasted,omitempty"`
}

type DatasetResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Source    string `json:"source"`
	CellCount int    `json:"cell_count"`
	CreatedAt string `json:"created_at"`
}

type CellResponse struct {
	ID       string  `json:"id"`
	Ref      string  `json:"ref"`
	Value    float64 `json:"value"`
	Position int     `json:"position"`
}

func datasetToResponse(d *domain.Dataset) DatasetResponse {
	return DatasetResponse{
		ID:        d.ID,
		Name:      d.Name,
		Source:    string(d.Source),
		CellCount: d.CellCount,
		CreatedAt: d.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

func (h *DatasetHandler) Create(w http.ResponseWriter, r *http.Request) {
	workspaceID := middleware.GetWorkspaceID(r.Context())
	if workspaceID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateDatasetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Name == "" {
		api.Error(w, http.StatusBadRequest, "name is required")
		return
	}
	if len(req.Cells) > 0 && req.Pasted != "" {
		api.Error(w, http.StatusBadRequest, "provide either cells or pasted, not both")
		return
	}
	if len(req.Cells) == 0 && req.Pasted == "" {
		api.Error(w, http.StatusBadRequest, "cells or pasted is required")
		return
	}

	var dataset *domain.Dataset
	var err error
	if req.Pasted != "" {
		dataset, err = h.svc.ImportPasted(r.Context(), workspaceID, req.Name, req.Pasted)
	} else {
		cells := make([]service.CellInput, len(req.Cells))
		for i, c := range req.Cells {
			cells[i] = service.CellInput{Ref: c.Ref, Value: c.Value}
		}
		dataset, err = h.svc.Create(r.Context(), service.CreateDatasetInput{
			WorkspaceID: workspaceID,
			Name:        req.Name,
			Source:      domain.DatasetSourceManual,
			Cells:       cells,
		})
	}
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, datasetToResponse(dataset))
}

func (h *DatasetHandler) Get(w http.ResponseWriter, r *http.Request) {
	workspaceID := middleware.GetWorkspaceID(r.Context())
	if workspaceID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	datasetID := chi.URLParam(r, "id")
	dataset, err := h.svc.GetByID(r.Context(), workspaceID, datasetID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusOK, datasetToResponse(dataset))
}

func (h *DatasetHandler) GetCells(w http.ResponseWriter, r *http.Request) {
	workspaceID := middleware.GetWorkspaceID(r.Context())
	if workspaceID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	datasetID := chi.URLParam(r, "id")
	cells, err := h.svc.GetCells(r.Context(), workspaceID, datasetID)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	out := make([]CellResponse, len(cells))
	for i, c := range cells {
		out[i] = CellResponse{ID: c.ID, Ref: c.Ref, Value: c.Value, Position: c.Position}
	}

	api.Success(w, http.StatusOK, out)
}

type ListDatasetsResponse struct {
	Items   []DatasetResponse `json:"items"`
	Cursor  string            `json:"cursor,omitempty"`
	HasMore bool              `json:"has_more"`
}

func (h *DatasetHandler) List(w http.ResponseWriter, r *http.Request) {
	workspaceID := middleware.GetWorkspaceID(r.Context())
	if workspaceID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
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

	out, err := h.svc.List(r.Context(), service.ListDatasetsInput{
		WorkspaceID: workspaceID,
		Cursor:      r.URL.Query().Get("cursor"),
		Limit:       limit,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	items := make([]DatasetResponse, len(out.Items))
	for i, d := range out.Items {
		items[i] = datasetToResponse(d)
	}

	api.Success(w, http.StatusOK, ListDatasetsResponse{
		Items:   items,
		Cursor:  out.Cursor,
		HasMore: out.HasMore,
	})
}
