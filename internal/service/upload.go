package service

import (
	"context"
	"fmt"
	"io"

	"github.com/goyal-sidhant/Combinational-Sum/internal/domain"
	"github.com/goyal-sidhant/Combinational-Sum/internal/parser"
	"github.com/goyal-sidhant/Combinational-Sum/internal/telemetry"
)

// StorageClientInterface is the object-storage surface the upload flow needs.
type StorageClientInterface interface {
	GenerateUploadURL(ctx context.Context, key string, contentType string) (string, error)
	GetObject(ctx context.Context, key string) (io.ReadCloser, error)
	DeleteObject(ctx context.Context, key string) error
}

// UploadService handles dataset file uploads: the client PUTs a CSV to a presigned
// URL, then completes the upload and the chosen column becomes a dataset.
type UploadService struct {
	storage    StorageClientInterface
	datasetSvc *DatasetService
	uuidGen    UUIDGenerator
}

// NewUploadService creates a new UploadService instance
func NewUploadService(storage StorageClientInterface, datasetSvc *DatasetService) *UploadService {
	return &UploadService{
		storage:    storage,
		datasetSvc: datasetSvc,
		uuidGen:    &DefaultUUIDGenerator{},
	}
}

// InitUploadResult carries the presigned upload target.
type InitUploadResult struct {
	Key       string
	UploadURL string
}

// InitUpload issues a presigned PUT URL for a new upload key.
func (s *UploadService) InitUpload(ctx context.Context, workspaceID, contentType string) (*InitUploadResult, error) {
	if contentType == "" {
		contentType = "text/csv"
	}

	key := fmt.Sprintf("uploads/%s/%s.csv", workspaceID, s.uuidGen.NewString())
	url, err := s.storage.GenerateUploadURL(ctx, key, contentType)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "failed to generate upload URL", err)
	}

	return &InitUploadResult{Key: key, UploadURL: url}, nil
}

// CompleteUploadInput finishes an upload: the object at Key is parsed and its
// Column (1-based) becomes the cells of a new dataset.
type CompleteUploadInput struct {
	WorkspaceID string
	Key         string
	DatasetName string
	Column      int
}

// CompleteUpload reads the uploaded CSV from storage and creates the dataset. The
// uploaded object is deleted once imported.
func (s *UploadService) CompleteUpload(ctx context.Context, input CompleteUploadInput) (*domain.Dataset, error) {
	ctx, span := telemetry.StartSpan(ctx, "UploadService.CompleteUpload", telemetry.SpanAttributes{
		WorkspaceID: input.WorkspaceID,
		Operation:   "complete_upload",
	})
	defer span.End()

	if input.Key == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "upload key is required")
	}
	if input.DatasetName == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "dataset name is required")
	}

	column := input.Column
	if column == 0 {
		column = 1
	}

	body, err := s.storage.GetObject(ctx, input.Key)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeInternalError, "failed to fetch uploaded file", err)
	}
	defer body.Close()

	parsed, err := parser.ParseCSV(body, column)
	if err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "failed to parse uploaded file", err)
	}
	if len(parsed) == 0 {
		return nil, domain.ErrEmptyDataset
	}

	cells := make([]CellInput, len(parsed))
	for i, p := range parsed {
		cells[i] = CellInput{Ref: p.Ref, Value: p.Value}
	}

	dataset, err := s.datasetSvc.Create(ctx, CreateDatasetInput{
		WorkspaceID: input.WorkspaceID,
		Name:        input.DatasetName,
		Source:      domain.DatasetSourceUpload,
		Cells:       cells,
	})
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	if err := s.storage.DeleteObject(ctx, input.Key); err != nil {
		// The dataset exists; a leaked upload object is only worth a breadcrumb.
		telemetry.CaptureError(ctx, err)
	}

	return dataset, nil
}
