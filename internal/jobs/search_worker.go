package jobs

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/goyal-sidhant/Combinational-Sum/internal/domain"
	"github.com/goyal-sidhant/Combinational-Sum/internal/service"
)

// cancelPollInterval is how often a running search checks whether cancellation was
// requested through the API.
const cancelPollInterval = 500 * time.Millisecond

// SearchExecutor is the slice of SearchService the worker needs.
type SearchExecutor interface {
	ClaimPending(ctx context.Context) (*domain.SearchRun, error)
	Execute(ctx context.Context, run *domain.SearchRun) ([]service.CombinationResult, error)
	RunStatus(ctx context.Context, runID string) (domain.RunStatus, error)
}

// SearchWorker drains pending search runs. Each claimed run executes under a
// cancellable context; a watcher goroutine polls the run's status and cancels the
// context once the API flips it to cancelling, which stops the engine at its next
// cancellation check with partial results intact.
type SearchWorker struct {
	executor SearchExecutor
}

// NewSearchWorker creates a new SearchWorker instance
func NewSearchWorker(executor SearchExecutor) *SearchWorker {
	return &SearchWorker{executor: executor}
}

// ProcessJobs implements the JobProcessor interface
func (w *SearchWorker) ProcessJobs(ctx context.Context) error {
	for {
		run, err := w.executor.ClaimPending(ctx)
		if err != nil {
			return fmt.Errorf("failed to claim pending run: %w", err)
		}
		if run == nil {
			return nil
		}

		if err := w.processRun(ctx, run); err != nil {
			log.Printf("Error processing run %s: %v", run.ID, err)
		}
	}
}

func (w *SearchWorker) processRun(ctx context.Context, run *domain.SearchRun) error {
	log.Printf("Processing search run %s (dataset %s)", run.ID, run.DatasetID)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	watcherDone := make(chan struct{})
	go func() {
		defer close(watcherDone)
		w.watchForCancel(runCtx, run.ID, cancel)
	}()

	_, err := w.executor.Execute(runCtx, run)

	cancel()
	<-watcherDone

	if err != nil {
		return err
	}

	log.Printf("Search run %s finished: %s (%d found)", run.ID, run.Status, run.FoundCount)
	return nil
}

// watchForCancel polls the run's status and cancels the run context once a
// cancellation request is observed. It returns when ctx is cancelled, which also
// covers normal run completion.
func (w *SearchWorker) watchForCancel(ctx context.Context, runID string, cancel context.CancelFunc) {
	ticker := time.NewTicker(cancelPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			status, err := w.executor.RunStatus(ctx, runID)
			if err != nil {
				// Transient lookup failure; the next tick retries.
				continue
			}
			if status == domain.RunStatusCancelling {
				log.Printf("Cancellation requested for run %s", runID)
				cancel()
				return
			}
		}
	}
}
