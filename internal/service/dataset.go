package service

import (
	"context"
	"fmt"
	"time"

	"github.com/goyal-sidhant/Combinational-Sum/internal/domain"
	"github.com/goyal-sidhant/Combinational-Sum/internal/pagination"
	"github.com/goyal-sidhant/Combinational-Sum/internal/parser"
	"github.com/goyal-sidhant/Combinational-Sum/internal/telemetry"
)

// DatasetRepositoryInterface defines the repository interface for dataset persistence
type DatasetRepositoryInterface interface {
	CreateWithCells(ctx context.Context, d *domain.Dataset, cells []*domain.Cell) error
	GetByID(ctx context.Context, id string) (*domain.Dataset, error)
	GetCells(ctx context.Context, datasetID string) ([]*domain.Cell, error)
	ListByWorkspaceWithCursor(ctx context.Context, workspaceID string, cursor *pagination.Cursor, limit int) (*DatasetPageResult, error)
}

type DatasetPageResult struct {
	Items      []*domain.Dataset
	NextCursor string
	HasMore    bool
}

// CellInput is one cell supplied by the caller when creating a dataset directly.
type CellInput struct {
	Ref   string
	Value float64
}

// CreateDatasetInput represents the input for creating a dataset
type CreateDatasetInput struct {
	WorkspaceID string
	Name        string
	Source      domain.DatasetSource
	Cells       []CellInput
}

// DatasetService handles business logic for datasets
type DatasetService struct {
	datasetRepo DatasetRepositoryInterface
	uuidGen     UUIDGenerator
}

// NewDatasetService creates a new DatasetService instance
func NewDatasetService(datasetRepo DatasetRepositoryInterface) *DatasetService {
	return &DatasetService{
		datasetRepo: datasetRepo,
		uuidGen:     &DefaultUUIDGenerator{},
	}
}

// NewDatasetServiceWithUUIDGen creates a new DatasetService with custom UUID generator (for testing)
func NewDatasetServiceWithUUIDGen(datasetRepo DatasetRepositoryInterface, uuidGen UUIDGenerator) *DatasetService {
	return &DatasetService{
		datasetRepo: datasetRepo,
		uuidGen:     uuidGen,
	}
}

// Create creates a dataset from explicit cells. Cell order is preserved as supplied.
func (s *DatasetService) Create(ctx context.Context, input CreateDatasetInput) (*domain.Dataset, error) {
	ctx, span := telemetry.StartSpan(ctx, "DatasetService.Create", telemetry.SpanAttributes{
		WorkspaceID: input.WorkspaceID,
		Operation:   "create",
	})
	defer span.End()

	if input.Name == "" {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "dataset name is required")
	}
	if len(input.Cells) == 0 {
		return nil, domain.ErrEmptyDataset
	}

	source := input.Source
	if source == "" {
		source = domain.DatasetSourceManual
	}

	now := time.Now().UTC()
	dataset := domain.NewDataset(s.uuidGen.NewString(), input.WorkspaceID, input.Name, source, now)
	dataset.CellCount = len(input.Cells)

	if err := domain.ValidateDataset(dataset); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid dataset", err)
	}

	cells := make([]*domain.Cell, len(input.Cells))
	for i, in := range input.Cells {
		ref := in.Ref
		if ref == "" {
			ref = fmt.Sprintf("c%d", i+1)
		}
		cells[i] = &domain.Cell{
			ID:        s.uuidGen.NewString(),
			DatasetID: dataset.ID,
			Ref:       ref,
			Value:     in.Value,
			Position:  i,
		}
	}

	if err := s.datasetRepo.CreateWithCells(ctx, dataset, cells); err != nil {
		span.SetError(err)
		return nil, err
	}

	return dataset, nil
}

// ImportPasted creates a dataset from pasted spreadsheet text.
func (s *DatasetService) ImportPasted(ctx context.Context, workspaceID, name, text string) (*domain.Dataset, error) {
	parsed := parser.ParsePasted(text)
	if len(parsed) == 0 {
		return nil, domain.ErrEmptyDataset
	}

	cells := make([]CellInput, len(parsed))
	for i, p := range parsed {
		cells[i] = CellInput{Ref: p.Ref, Value: p.Value}
	}

	return s.Create(ctx, CreateDatasetInput{
		WorkspaceID: workspaceID,
		Name:        name,
		Source:      domain.DatasetSourcePaste,
		Cells:       cells,
	})
}

// GetByID returns a dataset owned by the workspace.
func (s *DatasetService) GetByID(ctx context.Context, workspaceID, datasetID string) (*domain.Dataset, error) {
	dataset, err := s.datasetRepo.GetByID(ctx, datasetID)
	if err != nil {
		return nil, err
	}
	if dataset.WorkspaceID != workspaceID {
		return nil, domain.ErrDatasetNotFound
	}
	return dataset, nil
}

// GetCells returns the dataset's cells in their original order.
func (s *DatasetService) GetCells(ctx context.Context, workspaceID, datasetID string) ([]*domain.Cell, error) {
	if _, err := s.GetByID(ctx, workspaceID, datasetID); err != nil {
		return nil, err
	}
	return s.datasetRepo.GetCells(ctx, datasetID)
}

type ListDatasetsInput struct {
	WorkspaceID string
	Cursor      string
	Limit       int
}

type ListDatasetsOutput struct {
	Items   []*domain.Dataset
	Cursor  string
	HasMore bool
}

// List returns the workspace's datasets, newest first, cursor paginated.
func (s *DatasetService) List(ctx context.Context, input ListDatasetsInput) (*ListDatasetsOutput, error) {
	cursor, err := pagination.DecodeCursor(input.Cursor)
	if err != nil {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "invalid cursor")
	}

	page, err := s.datasetRepo.ListByWorkspaceWithCursor(ctx, input.WorkspaceID, cursor, input.Limit)
	if err != nil {
		return nil, err
	}

	return &ListDatasetsOutput{
		Items:   page.Items,
		Cursor:  page.NextCursor,
		HasMore: page.HasMore,
	}, nil
}
