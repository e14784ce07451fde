package service

import (
	"context"
	"errors"
	"time"

	"github.com/goyal-sidhant/Combinational-Sum/internal/domain"
	"github.com/goyal-sidhant/Combinational-Sum/internal/engine"
	"github.com/goyal-sidhant/Combinational-Sum/internal/telemetry"
)

// RunRepositoryInterface defines the repository interface for search run persistence
type RunRepositoryInterface interface {
	Create(ctx context.Context, run *domain.SearchRun) error
	GetByID(ctx context.Context, id string) (*domain.SearchRun, error)
	GetStatus(ctx context.Context, id string) (domain.RunStatus, error)
	ClaimPending(ctx context.Context) (*domain.SearchRun, error)
	UpdateOutcome(ctx context.Context, id string, status domain.RunStatus, errMsg string, foundCount int, durationMs int64) error
	RequestCancel(ctx context.Context, id string) (domain.RunStatus, error)
	StoreResults(ctx context.Context, runID string, results []*domain.RunResult) error
	ListResults(ctx context.Context, runID string, fromOrdinal, limit int) ([]*domain.RunResult, error)
	GetResult(ctx context.Context, runID string, ordinal int) (*domain.RunResult, error)
}

// MarkRepositoryInterface defines the repository interface for mark persistence
type MarkRepositoryInterface interface {
	Create(ctx context.Context, marks []*domain.Mark) error
	ListByDataset(ctx context.Context, datasetID string) ([]*domain.Mark, error)
	DeleteByDataset(ctx context.Context, datasetID string) (int64, error)
	CellIDsByDataset(ctx context.Context, datasetID string) (map[string]struct{}, error)
}

// SearchInput carries the caller's search parameters. Zero MaxLength/MaxResults mean
// unbounded, matching the engine contract.
type SearchInput struct {
	WorkspaceID   string
	DatasetID     string
	Target        float64
	Tolerance     float64
	MaxLength     int
	MaxResults    int
	ExcludeMarked bool
}

// CellResult is one resolved cell of a returned combination.
type CellResult struct {
	CellID string
	Ref    string
	Value  float64
}

// CombinationResult is one combination with its cells resolved for presentation.
type CombinationResult struct {
	Ordinal int
	Sum     float64
	Exact   bool
	Cells   []CellResult
}

// SearchOutput is the synchronous search response: the recorded run plus its
// combinations in discovery order.
type SearchOutput struct {
	Run          *domain.SearchRun
	Combinations []CombinationResult
}

// SearchService orchestrates the search engine: it loads the dataset pool, applies
// the marked-cell exclusion, sorts a copy of the pool descending by value (the
// engine's documented fast path; the engine itself never reorders anything) and
// records every run with its results.
type SearchService struct {
	datasetRepo DatasetRepositoryInterface
	runRepo     RunRepositoryInterface
	markRepo    MarkRepositoryInterface
	uuidGen     UUIDGenerator

	// searchTimeout is a hard ceiling on a single engine invocation; zero disables it.
	searchTimeout time.Duration
}

// NewSearchService creates a new SearchService instance
func NewSearchService(
	datasetRepo DatasetRepositoryInterface,
	runRepo RunRepositoryInterface,
	markRepo MarkRepositoryInterface,
	searchTimeout time.Duration,
) *SearchService {
	return &SearchService{
		datasetRepo:   datasetRepo,
		runRepo:       runRepo,
		markRepo:      markRepo,
		uuidGen:       &DefaultUUIDGenerator{},
		searchTimeout: searchTimeout,
	}
}

// NewSearchServiceWithUUIDGen creates a new SearchService with custom UUID generator (for testing)
func NewSearchServiceWithUUIDGen(
	datasetRepo DatasetRepositoryInterface,
	runRepo RunRepositoryInterface,
	markRepo MarkRepositoryInterface,
	searchTimeout time.Duration,
	uuidGen UUIDGenerator,
) *SearchService {
	svc := NewSearchService(datasetRepo, runRepo, markRepo, searchTimeout)
	svc.uuidGen = uuidGen
	return svc
}

// newRun validates the input and builds the run record. Invalid parameters fail here,
// before anything is persisted or searched.
func (s *SearchService) newRun(ctx context.Context, input SearchInput, status domain.RunStatus) (*domain.SearchRun, error) {
	if input.Tolerance < 0 {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "tolerance must not be negative")
	}
	if input.MaxLength < 0 {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "max_length must be positive when set")
	}
	if input.MaxResults < 0 {
		return nil, domain.NewDomainError(domain.ErrCodeValidation, "max_results must be positive when set")
	}

	dataset, err := s.datasetRepo.GetByID(ctx, input.DatasetID)
	if err != nil {
		return nil, err
	}
	if dataset.WorkspaceID != input.WorkspaceID {
		return nil, domain.ErrDatasetNotFound
	}

	now := time.Now().UTC()
	run := &domain.SearchRun{
		ID:            s.uuidGen.NewString(),
		WorkspaceID:   input.WorkspaceID,
		DatasetID:     input.DatasetID,
		Target:        input.Target,
		Tolerance:     input.Tolerance,
		MaxLength:     input.MaxLength,
		MaxResults:    input.MaxResults,
		ExcludeMarked: input.ExcludeMarked,
		Status:        status,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := domain.ValidateSearchRun(run); err != nil {
		return nil, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid search run", err)
	}

	return run, nil
}

// SearchNow runs a search synchronously. The caller's context drives cooperative
// cancellation: when the client disconnects mid-search, the combinations found so
// far are persisted and the run is recorded as cancelled.
func (s *SearchService) SearchNow(ctx context.Context, input SearchInput) (*SearchOutput, error) {
	ctx, span := telemetry.StartSpan(ctx, "SearchService.SearchNow", telemetry.SpanAttributes{
		WorkspaceID: input.WorkspaceID,
		DatasetID:   input.DatasetID,
		Operation:   "search",
	})
	defer span.End()

	run, err := s.newRun(ctx, input, domain.RunStatusRunning)
	if err != nil {
		return nil, err
	}

	if err := s.runRepo.Create(ctx, run); err != nil {
		return nil, err
	}

	results, err := s.Execute(ctx, run)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	return &SearchOutput{Run: run, Combinations: results}, nil
}

// Enqueue records a pending run for the background worker to pick up.
func (s *SearchService) Enqueue(ctx context.Context, input SearchInput) (*domain.SearchRun, error) {
	run, err := s.newRun(ctx, input, domain.RunStatusPending)
	if err != nil {
		return nil, err
	}

	if err := s.runRepo.Create(ctx, run); err != nil {
		return nil, err
	}

	return run, nil
}

// ClaimPending hands the oldest pending run to the worker, flipping it to running.
func (s *SearchService) ClaimPending(ctx context.Context) (*domain.SearchRun, error) {
	return s.runRepo.ClaimPending(ctx)
}

// RunStatus reports the current status of a run; the worker's cancellation watcher
// polls this.
func (s *SearchService) RunStatus(ctx context.Context, runID string) (domain.RunStatus, error) {
	return s.runRepo.GetStatus(ctx, runID)
}

// Execute performs the engine search for an already-persisted run and records the
// outcome. Cancellation of ctx is a normal stop: partial results are kept and the
// run finishes as cancelled. The found combinations are returned for synchronous
// callers; the async worker discards them.
func (s *SearchService) Execute(ctx context.Context, run *domain.SearchRun) ([]CombinationResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "SearchService.Execute", telemetry.SpanAttributes{
		WorkspaceID: run.WorkspaceID,
		DatasetID:   run.DatasetID,
		RunID:       run.ID,
		Operation:   "execute",
	})
	defer span.End()

	cells, err := s.datasetRepo.GetCells(ctx, run.DatasetID)
	if err != nil {
		return nil, s.fail(ctx, run, err)
	}

	excluded := map[string]struct{}{}
	if run.ExcludeMarked {
		excluded, err = s.markRepo.CellIDsByDataset(ctx, run.DatasetID)
		if err != nil {
			return nil, s.fail(ctx, run, err)
		}
	}

	// Descending order makes the engine's pruning effective; a stable sort of a
	// copy keeps both the stored dataset order and determinism intact.
	pool := make([]engine.Item, len(cells))
	byID := make(map[string]*domain.Cell, len(cells))
	for i, c := range cells {
		pool[i] = engine.Item{Value: c.Value, ID: c.ID}
		byID[c.ID] = c
	}
	engine.SortDescending(pool)

	searchCtx := ctx
	if s.searchTimeout > 0 {
		var cancel context.CancelFunc
		searchCtx, cancel = context.WithTimeout(ctx, s.searchTimeout)
		defer cancel()
	}

	started := time.Now()
	combos, searchErr := engine.Search(searchCtx, engine.Request{
		Items:      pool,
		Target:     run.Target,
		Tolerance:  run.Tolerance,
		MaxLength:  run.MaxLength,
		MaxResults: run.MaxResults,
	}, excluded)
	elapsed := time.Since(started).Milliseconds()

	cancelled := errors.Is(searchErr, context.Canceled) || errors.Is(searchErr, context.DeadlineExceeded)
	if searchErr != nil && !cancelled {
		var invalid *engine.InvalidParameterError
		if errors.As(searchErr, &invalid) {
			return nil, s.fail(ctx, run, domain.NewDomainErrorWithCause(domain.ErrCodeValidation, "invalid search parameters", searchErr))
		}
		return nil, s.fail(ctx, run, searchErr)
	}

	results := make([]CombinationResult, len(combos))
	stored := make([]*domain.RunResult, len(combos))
	for i, combo := range combos {
		cellResults := make([]CellResult, len(combo.Items))
		cellIDs := make([]string, len(combo.Items))
		refs := make([]string, len(combo.Items))
		for j, item := range combo.Items {
			cell := byID[item.ID]
			cellResults[j] = CellResult{CellID: cell.ID, Ref: cell.Ref, Value: cell.Value}
			cellIDs[j] = cell.ID
			refs[j] = cell.Ref
		}
		results[i] = CombinationResult{Ordinal: i, Sum: combo.Sum, Exact: combo.Exact, Cells: cellResults}
		stored[i] = &domain.RunResult{RunID: run.ID, Ordinal: i, Sum: combo.Sum, Exact: combo.Exact, CellIDs: cellIDs, Refs: refs}
	}

	// A cancelled run still keeps the combinations found before the stop, so
	// persistence must survive the context that was just cancelled.
	persistCtx := ctx
	if cancelled {
		persistCtx = context.WithoutCancel(ctx)
	}

	if len(stored) > 0 {
		if err := s.runRepo.StoreResults(persistCtx, run.ID, stored); err != nil {
			return nil, s.fail(persistCtx, run, err)
		}
	}

	status := domain.RunStatusCompleted
	if cancelled {
		status = domain.RunStatusCancelled
	}
	if err := s.runRepo.UpdateOutcome(persistCtx, run.ID, status, "", len(stored), elapsed); err != nil {
		return nil, err
	}

	run.Status = status
	run.FoundCount = len(stored)
	run.DurationMs = elapsed

	return results, nil
}

// fail records a failed run outcome and returns the original error.
func (s *SearchService) fail(ctx context.Context, run *domain.SearchRun, cause error) error {
	ctx = context.WithoutCancel(ctx)
	if err := s.runRepo.UpdateOutcome(ctx, run.ID, domain.RunStatusFailed, cause.Error(), 0, 0); err != nil {
		telemetry.CaptureError(ctx, err)
	}
	run.Status = domain.RunStatusFailed
	return cause
}

// GetRun returns a run owned by the workspace.
func (s *SearchService) GetRun(ctx context.Context, workspaceID, runID string) (*domain.SearchRun, error) {
	run, err := s.runRepo.GetByID(ctx, runID)
	if err != nil {
		return nil, err
	}
	if run.WorkspaceID != workspaceID {
		return nil, domain.ErrRunNotFound
	}
	return run, nil
}

// Cancel requests cooperative cancellation of a pending or running search. A pending
// run is cancelled outright; a running run is flipped to cancelling and the worker
// stops it at the next cancellation poll. Terminal runs cannot be cancelled.
func (s *SearchService) Cancel(ctx context.Context, workspaceID, runID string) (*domain.SearchRun, error) {
	run, err := s.GetRun(ctx, workspaceID, runID)
	if err != nil {
		return nil, err
	}
	if run.IsTerminal() {
		return nil, domain.ErrRunNotCancellable
	}

	status, err := s.runRepo.RequestCancel(ctx, runID)
	if err != nil {
		return nil, err
	}

	run.Status = status
	return run, nil
}

// ListResultsInput pages through a run's stored combinations by discovery ordinal.
// FromOrdinal is inclusive; zero starts at the first combination.
type ListResultsInput struct {
	WorkspaceID string
	RunID       string
	FromOrdinal int
	Limit       int
}

type ListResultsOutput struct {
	Run     *domain.SearchRun
	Results []*domain.RunResult
	HasMore bool
}

// ListResults returns a page of a run's combinations in discovery order.
func (s *SearchService) ListResults(ctx context.Context, input ListResultsInput) (*ListResultsOutput, error) {
	run, err := s.GetRun(ctx, input.WorkspaceID, input.RunID)
	if err != nil {
		return nil, err
	}

	limit := input.Limit
	if limit <= 0 {
		limit = 50
	}

	results, err := s.runRepo.ListResults(ctx, input.RunID, input.FromOrdinal, limit+1)
	if err != nil {
		return nil, err
	}

	hasMore := len(results) > limit
	if hasMore {
		results = results[:limit]
	}

	return &ListResultsOutput{Run: run, Results: results, HasMore: hasMore}, nil
}
