package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/goyal-sidhant/Combinational-Sum/internal/api"
	"github.com/goyal-sidhant/Combinational-Sum/internal/api/middleware"
	"github.com/goyal-sidhant/Combinational-Sum/internal/domain"
	"github.com/goyal-sidhant/Combinational-Sum/internal/service"
)

type UploadService interface {
	InitUpload(ctx context.Context, workspaceID, contentType string) (*service.InitUploadResult, error)
	CompleteUpload(ctx context.Context, input service.CompleteUploadInput) (*domain.Dataset, error)
}

type UploadHandler struct {
	svc UploadService
}

func NewUploadHandler(svc UploadService) *UploadHandler {
	return &UploadHandler{svc: svc}
}

type InitUploadRequest struct {
	ContentType string `json:"content_type"`
}

type InitUploadResponse struct {
	Key       string `json:"key"`
	UploadURL string `json:"upload_url"`
}

type CompleteUploadRequest struct {
	Key         string `json:"key"`
	DatasetName string `json:"dataset_name"`
	Column      int    `json:"column"`
}

func (h *UploadHandler) Init(w http.ResponseWriter, r *http.Request) {
	workspaceID := middleware.GetWorkspaceID(r.Context())
	if workspaceID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req InitUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.svc.InitUpload(r.Context(), workspaceID, req.ContentType)
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, InitUploadResponse{
		Key:       result.Key,
		UploadURL: result.UploadURL,
	})
}

func (h *UploadHandler) Complete(w http.ResponseWriter, r *http.Request) {
	workspaceID := middleware.GetWorkspaceID(r.Context())
	if workspaceID == "" {
		api.Error(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CompleteUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Key == "" {
		api.Error(w, http.StatusBadRequest, "key is required")
		return
	}
	if req.DatasetName == "" {
		api.Error(w, http.StatusBadRequest, "dataset_name is required")
		return
	}

	dataset, err := h.svc.CompleteUpload(r.Context(), service.CompleteUploadInput{
		WorkspaceID: workspaceID,
		Key:         req.Key,
		DatasetName: req.DatasetName,
		Column:      req.Column,
	})
	if err != nil {
		api.HandleError(w, err)
		return
	}

	api.Success(w, http.StatusCreated, datasetToResponse(dataset))
}
