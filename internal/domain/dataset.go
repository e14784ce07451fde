package domain

import (
	"fmt"
	"time"
)

// DatasetSource records how a dataset's cells were obtained.
type DatasetSource string

const (
	DatasetSourceManual DatasetSource = "manual"
	DatasetSourcePaste  DatasetSource = "paste"
	DatasetSourceUpload DatasetSource = "upload"
)

// Dataset is a named, ordered pool of numeric cells. Cell order is the order the
// caller supplied them in; the search engine preserves it.
type Dataset struct {
	ID          string
	WorkspaceID string
	Name        string
	Source      DatasetSource
	CellCount   int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Cell is one numeric value inside a dataset. Ref is the caller's opaque label for
// the source cell (a spreadsheet address, a row number, anything) and is never
// interpreted by the search engine.
type Cell struct {
	ID        string
	DatasetID string
	Ref       string
	Value     float64
	Position  int
}

// NewDataset creates a new Dataset instance
func NewDataset(id, workspaceID, name string, source DatasetSource, createdAt time.Time) *Dataset {
	return &Dataset{
		ID:          id,
		WorkspaceID: workspaceID,
		Name:        name,
		Source:      source,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
}

// ValidateDataset validates a Dataset instance
func ValidateDataset(d *Dataset) error {
	if d == nil {
		return fmt.Errorf("dataset cannot be nil")
	}

	if d.ID == "" {
		return fmt.Errorf("dataset ID is required")
	}

	if d.WorkspaceID == "" {
		return fmt.Errorf("dataset WorkspaceID is required")
	}

	if d.Name == "" {
		return fmt.Errorf("dataset Name is required")
	}

	if !isValidDatasetSource(d.Source) {
		return fmt.Errorf("dataset Source is invalid: %s", d.Source)
	}

	return nil
}

// ValidateCell validates a Cell instance
func ValidateCell(c *Cell) error {
	if c == nil {
		return fmt.Errorf("cell cannot be nil")
	}

	if c.ID == "" {
		return fmt.Errorf("cell ID is required")
	}

	if c.DatasetID == "" {
		return fmt.Errorf("cell DatasetID is required")
	}

	if c.Position < 0 {
		return fmt.Errorf("cell Position must not be negative")
	}

	return nil
}

// isValidDatasetSource checks if a DatasetSource is valid
func isValidDatasetSource(s DatasetSource) bool {
	switch s {
	case DatasetSourceManual, DatasetSourcePaste, DatasetSourceUpload:
		return true
	}
	return false
}
