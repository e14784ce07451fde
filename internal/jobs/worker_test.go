package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/goyal-sidhant/Combinational-Sum/internal/domain"
	"github.com/goyal-sidhant/Combinational-Sum/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockJobProcessor is a mock implementation of JobProcessor
type MockJobProcessor struct {
	mock.Mock
}

func (m *MockJobProcessor) ProcessJobs(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockSearchExecutor is a mock implementation of SearchExecutor
type MockSearchExecutor struct {
	mock.Mock
}

func (m *MockSearchExecutor) ClaimPending(ctx context.Context) (*domain.SearchRun, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SearchRun), args.Error(1)
}

func (m *MockSearchExecutor) Execute(ctx context.Context, run *domain.SearchRun) ([]service.CombinationResult, error) {
	args := m.Called(ctx, run)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.CombinationResult), args.Error(1)
}

func (m *MockSearchExecutor) RunStatus(ctx context.Context, runID string) (domain.RunStatus, error) {
	args := m.Called(ctx, runID)
	return args.Get(0).(domain.RunStatus), args.Error(1)
}

// TestWorker_StartStop tests the worker start and stop functionality
func TestWorker_StartStop(t *testing.T) {
	mockProcessor := new(MockJobProcessor)
	mockProcessor.On("ProcessJobs", mock.Anything).Return(nil)

	worker := NewWorker(mockProcessor, 100*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Start(ctx)
	}()

	time.Sleep(250 * time.Millisecond)

	worker.Stop()
	wg.Wait()

	mockProcessor.AssertCalled(t, "ProcessJobs", mock.Anything)
}

// TestWorker_ContextCancellation tests worker stops on context cancellation
func TestWorker_ContextCancellation(t *testing.T) {
	mockProcessor := new(MockJobProcessor)
	mockProcessor.On("ProcessJobs", mock.Anything).Return(nil)

	worker := NewWorker(mockProcessor, 100*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		worker.Start(ctx)
	}()

	time.Sleep(150 * time.Millisecond)

	cancel()
	wg.Wait()

	mockProcessor.AssertCalled(t, "ProcessJobs", mock.Anything)
}

// TestSearchWorker_ProcessJobs_NoPendingRuns tests an empty queue
func TestSearchWorker_ProcessJobs_NoPendingRuns(t *testing.T) {
	mockExecutor := new(MockSearchExecutor)
	mockExecutor.On("ClaimPending", mock.Anything).Return(nil, nil)

	worker := NewSearchWorker(mockExecutor)
	err := worker.ProcessJobs(context.Background())

	assert.NoError(t, err)
	mockExecutor.AssertExpectations(t)
	mockExecutor.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}

// TestSearchWorker_ProcessJobs_DrainsQueue tests that all pending runs are
// executed in one tick
func TestSearchWorker_ProcessJobs_DrainsQueue(t *testing.T) {
	mockExecutor := new(MockSearchExecutor)

	run1 := &domain.SearchRun{ID: "run-1", DatasetID: "ds-1", Status: domain.RunStatusRunning}
	run2 := &domain.SearchRun{ID: "run-2", DatasetID: "ds-1", Status: domain.RunStatusRunning}

	mockExecutor.On("ClaimPending", mock.Anything).Return(run1, nil).Once()
	mockExecutor.On("ClaimPending", mock.Anything).Return(run2, nil).Once()
	mockExecutor.On("ClaimPending", mock.Anything).Return(nil, nil).Once()
	mockExecutor.On("Execute", mock.Anything, run1).Return([]service.CombinationResult{}, nil)
	mockExecutor.On("Execute", mock.Anything, run2).Return([]service.CombinationResult{}, nil)

	worker := NewSearchWorker(mockExecutor)
	err := worker.ProcessJobs(context.Background())

	assert.NoError(t, err)
	mockExecutor.AssertExpectations(t)
}

// TestSearchWorker_ProcessJobs_ExecuteFailureContinues tests that a failed run
// does not stop the drain loop
func TestSearchWorker_ProcessJobs_ExecuteFailureContinues(t *testing.T) {
	mockExecutor := new(MockSearchExecutor)

	run1 := &domain.SearchRun{ID: "run-1", DatasetID: "ds-1", Status: domain.RunStatusRunning}
	run2 := &domain.SearchRun{ID: "run-2", DatasetID: "ds-1", Status: domain.RunStatusRunning}

	mockExecutor.On("ClaimPending", mock.Anything).Return(run1, nil).Once()
	mockExecutor.On("ClaimPending", mock.Anything).Return(run2, nil).Once()
	mockExecutor.On("ClaimPending", mock.Anything).Return(nil, nil).Once()
	mockExecutor.On("Execute", mock.Anything, run1).Return(nil, errors.New("dataset vanished"))
	mockExecutor.On("Execute", mock.Anything, run2).Return([]service.CombinationResult{}, nil)

	worker := NewSearchWorker(mockExecutor)
	err := worker.ProcessJobs(context.Background())

	assert.NoError(t, err)
	mockExecutor.AssertExpectations(t)
}

// TestSearchWorker_ProcessJobs_ClaimError tests claim failure propagation
func TestSearchWorker_ProcessJobs_ClaimError(t *testing.T) {
	mockExecutor := new(MockSearchExecutor)
	mockExecutor.On("ClaimPending", mock.Anything).Return(nil, errors.New("database error"))

	worker := NewSearchWorker(mockExecutor)
	err := worker.ProcessJobs(context.Background())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to claim pending run")
	mockExecutor.AssertExpectations(t)
}

// TestSearchWorker_CancellationWatcher tests that a run whose status flips to
// cancelling gets its context cancelled
func TestSearchWorker_CancellationWatcher(t *testing.T) {
	mockExecutor := new(MockSearchExecutor)

	run := &domain.SearchRun{ID: "run-1", DatasetID: "ds-1", Status: domain.RunStatusRunning}

	mockExecutor.On("ClaimPending", mock.Anything).Return(run, nil).Once()
	mockExecutor.On("ClaimPending", mock.Anything).Return(nil, nil).Once()
	mockExecutor.On("RunStatus", mock.Anything, "run-1").Return(domain.RunStatusCancelling, nil)

	// Execute blocks until its context is cancelled by the watcher.
	mockExecutor.On("Execute", mock.Anything, run).Run(func(args mock.Arguments) {
		ctx := args.Get(0).(context.Context)
		select {
		case <-ctx.Done():
		case <-time.After(5 * time.Second):
			t.Error("watcher never cancelled the run context")
		}
	}).Return(nil, context.Canceled)

	worker := NewSearchWorker(mockExecutor)
	err := worker.ProcessJobs(context.Background())

	assert.NoError(t, err)
	mockExecutor.AssertExpectations(t)
}
