package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validRun() *SearchRun {
	now := time.Now().UTC()
	return &SearchRun{
		ID:          "run-1",
		WorkspaceID: "ws-1",
		DatasetID:   "ds-1",
		Target:      100,
		Tolerance:   0.5,
		MaxLength:   15,
		MaxResults:  1000,
		Status:      RunStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func TestValidateSearchRun(t *testing.T) {
	t.Run("valid run passes", func(t *testing.T) {
		assert.NoError(t, ValidateSearchRun(validRun()))
	})

	t.Run("nil run fails", func(t *testing.T) {
		assert.Error(t, ValidateSearchRun(nil))
	})

	t.Run("missing ids fail", func(t *testing.T) {
		r := validRun()
		r.WorkspaceID = ""
		assert.Error(t, ValidateSearchRun(r))

		r = validRun()
		r.DatasetID = ""
		assert.Error(t, ValidateSearchRun(r))
	})

	t.Run("negative bounds fail", func(t *testing.T) {
		r := validRun()
		r.Tolerance = -0.1
		assert.Error(t, ValidateSearchRun(r))

		r = validRun()
		r.MaxLength = -1
		assert.Error(t, ValidateSearchRun(r))

		r = validRun()
		r.MaxResults = -1
		assert.Error(t, ValidateSearchRun(r))
	})

	t.Run("unknown status fails", func(t *testing.T) {
		r := validRun()
		r.Status = "paused"
		assert.ErrorIs(t, ValidateSearchRun(r), ErrInvalidRunStatus)
	})
}

func TestSearchRun_IsTerminal(t *testing.T) {
	cases := map[RunStatus]bool{
		RunStatusPending:    false,
		RunStatusRunning:    false,
		RunStatusCancelling: false,
		RunStatusCompleted:  true,
		RunStatusCancelled:  true,
		RunStatusFailed:     true,
	}

	for status, want := range cases {
		r := validRun()
		r.Status = status
		assert.Equal(t, want, r.IsTerminal(), "status %s", status)
	}
}

func TestValidateDataset(t *testing.T) {
	now := time.Now().UTC()

	t.Run("valid dataset passes", func(t *testing.T) {
		d := NewDataset("ds-1", "ws-1", "Q3 invoices", DatasetSourcePaste, now)
		assert.NoError(t, ValidateDataset(d))
	})

	t.Run("unknown source fails", func(t *testing.T) {
		d := NewDataset("ds-1", "ws-1", "Q3 invoices", "telepathy", now)
		assert.Error(t, ValidateDataset(d))
	})

	t.Run("missing name fails", func(t *testing.T) {
		d := NewDataset("ds-1", "ws-1", "", DatasetSourceManual, now)
		assert.Error(t, ValidateDataset(d))
	})
}
