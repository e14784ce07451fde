package service

import (
	"context"
	"time"

	"github.com/goyal-sidhant/Combinational-Sum/internal/domain"
	"github.com/goyal-sidhant/Combinational-Sum/internal/telemetry"
)

// MarkService flags the cells of a chosen combination as used, the analog of the
// original workflow's permanent cell coloring. Marked cells are excluded from
// subsequent searches that request the exclusion.
type MarkService struct {
	datasetRepo DatasetRepositoryInterface
	runRepo     RunRepositoryInterface
	markRepo    MarkRepositoryInterface
}

// NewMarkService creates a new MarkService instance
func NewMarkService(
	datasetRepo DatasetRepositoryInterface,
	runRepo RunRepositoryInterface,
	markRepo MarkRepositoryInterface,
) *MarkService {
	return &MarkService{
		datasetRepo: datasetRepo,
		runRepo:     runRepo,
		markRepo:    markRepo,
	}
}

// MarkResult marks every cell of one stored combination as used. Marking is
// idempotent: re-marking an already marked cell is not an error.
func (s *MarkService) MarkResult(ctx context.Context, workspaceID, runID string, ordinal int) ([]*domain.Mark, error) {
	ctx, span := telemetry.StartSpan(ctx, "MarkService.MarkResult", telemetry.SpanAttributes{
		WorkspaceID: workspaceID,
		RunID:       runID,
		Operation:   "mark",
	})
	defer span.End()

	run, err := s.runRepo.GetByID(ctx, runID)
	if err != nil {
		return nil, err
	}
	if run.WorkspaceID != workspaceID {
		return nil, domain.ErrRunNotFound
	}

	result, err := s.runRepo.GetResult(ctx, runID, ordinal)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	marks := make([]*domain.Mark, len(result.CellIDs))
	for i, cellID := range result.CellIDs {
		marks[i] = &domain.Mark{
			DatasetID: run.DatasetID,
			CellID:    cellID,
			RunID:     runID,
			MarkedAt:  now,
		}
		if err := domain.ValidateMark(marks[i]); err != nil {
			return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid mark", err)
		}
	}

	if err := s.markRepo.Create(ctx, marks); err != nil {
		span.SetError(err)
		return nil, err
	}

	return marks, nil
}

// ListMarks returns a dataset's marks.
func (s *MarkService) ListMarks(ctx context.Context, workspaceID, datasetID string) ([]*domain.Mark, error) {
	if err := s.checkDataset(ctx, workspaceID, datasetID); err != nil {
		return nil, err
	}
	return s.markRepo.ListByDataset(ctx, datasetID)
}

// ClearMarks removes every mark from a dataset and reports how many were removed,
// the analog of clearing all highlighting.
func (s *MarkService) ClearMarks(ctx context.Context, workspaceID, datasetID string) (int64, error) {
	if err := s.checkDataset(ctx, workspaceID, datasetID); err != nil {
		return 0, err
	}
	return s.markRepo.DeleteByDataset(ctx, datasetID)
}

func (s *MarkService) checkDataset(ctx context.Context, workspaceID, datasetID string) error {
	dataset, err := s.datasetRepo.GetByID(ctx, datasetID)
	if err != nil {
		return err
	}
	if dataset.WorkspaceID != workspaceID {
		return domain.ErrDatasetNotFound
	}
	return nil
}
