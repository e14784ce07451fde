package domain

import (
	"fmt"
	"time"
)

// Mark flags a cell as used. Marked cells are excluded from subsequent searches that
// opt in to the exclusion, mirroring the "permanently colored" cells of the original
// spreadsheet workflow. RunID records which search run's result produced the mark,
// empty for manual marks.
type Mark struct {
	DatasetID string
	CellID    string
	RunID     string
	MarkedAt  time.Time
}

// ValidateMark validates a Mark instance
func ValidateMark(m *Mark) error {
	if m == nil {
		return fmt.Errorf("mark cannot be nil")
	}

	if m.DatasetID == "" {
		return fmt.Errorf("mark DatasetID is required")
	}

	if m.CellID == "" {
		return fmt.Errorf("mark CellID is required")
	}

	return nil
}
