package domain

import (
	"fmt"
	"time"
)

// RunStatus represents the lifecycle state of a search run.
type RunStatus string

const (
	RunStatusPending    RunStatus = "pending"
	RunStatusRunning    RunStatus = "running"
	RunStatusCompleted  RunStatus = "completed"
	RunStatusCancelling RunStatus = "cancelling"
	RunStatusCancelled  RunStatus = "cancelled"
	RunStatusFailed     RunStatus = "failed"
)

// SearchRun records one search invocation against a dataset: its parameters, its
// lifecycle status and, once finished, how many combinations it found. A cancelled
// run keeps the combinations found before the stop; cancellation is a normal
// outcome, not a failure.
type SearchRun struct {
	ID            string
	WorkspaceID   string
	DatasetID     string
	Target        float64
	Tolerance     float64
	MaxLength     int
	MaxResults    int
	ExcludeMarked bool
	Status        RunStatus
	FoundCount    int
	ErrorMessage  string
	DurationMs    int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// RunResult is one persisted combination of a finished run. Ordinal is the discovery
// order, which is deterministic for identical inputs.
type RunResult struct {
	RunID   string
	Ordinal int
	Sum     float64
	Exact   bool
	CellIDs []string
	Refs    []string
}

// IsTerminal returns true once the run can no longer change state.
func (r *SearchRun) IsTerminal() bool {
	switch r.Status {
	case RunStatusCompleted, RunStatusCancelled, RunStatusFailed:
		return true
	}
	return false
}

// ValidateSearchRun validates a SearchRun instance
func ValidateSearchRun(r *SearchRun) error {
	if r == nil {
		return fmt.Errorf("search run cannot be nil")
	}

	if r.ID == "" {
		return fmt.Errorf("search run ID is required")
	}

	if r.WorkspaceID == "" {
		return fmt.Errorf("search run WorkspaceID is required")
	}

	if r.DatasetID == "" {
		return fmt.Errorf("search run DatasetID is required")
	}

	if r.Tolerance < 0 {
		return fmt.Errorf("search run Tolerance must not be negative")
	}

	if r.MaxLength < 0 {
		return fmt.Errorf("search run MaxLength must not be negative")
	}

	if r.MaxResults < 0 {
		return fmt.Errorf("search run MaxResults must not be negative")
	}

	if !isValidRunStatus(r.Status) {
		return ErrInvalidRunStatus
	}

	return nil
}

// isValidRunStatus checks if a RunStatus is valid
func isValidRunStatus(s RunStatus) bool {
	switch s {
	case RunStatusPending, RunStatusRunning, RunStatusCompleted,
		RunStatusCancelling, RunStatusCancelled, RunStatusFailed:
		return true
	}
	return false
}
