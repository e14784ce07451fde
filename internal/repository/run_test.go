//go:build integration

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/goyal-sidhant/Combinational-Sum/internal/domain"
	"github.com/goyal-sidhant/Combinational-Sum/internal/testutil"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedRun(ctx context.Context, t *testing.T, pool *pgxpool.Pool, workspaceID, datasetID string, status domain.RunStatus, createdAt time.Time) *domain.SearchRun {
	t.Helper()
	run := &domain.SearchRun{
		ID:          uuid.NewString(),
		WorkspaceID: workspaceID,
		DatasetID:   datasetID,
		Target:      60,
		Tolerance:   0.5,
		Status:      status,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}
	require.NoError(t, NewRunRepository(pool).Create(ctx, run))
	return run
}

func TestRunRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewRunRepository(pool)
	ws := seedWorkspace(ctx, t, pool)
	d, _ := seedDataset(ctx, t, pool, ws.ID, []float64{30, 20, 10})

	run := seedRun(ctx, t, pool, ws.ID, d.ID, domain.RunStatusPending, time.Now().UTC().Truncate(time.Microsecond))

	retrieved, err := repo.GetByID(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, retrieved.ID)
	assert.Equal(t, 60.0, retrieved.Target)
	assert.Equal(t, 0.5, retrieved.Tolerance)
	assert.Equal(t, domain.RunStatusPending, retrieved.Status)
	assert.Empty(t, retrieved.ErrorMessage)

	status, err := repo.GetStatus(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RunStatusPending, status)
}

func TestRunRepository_GetByID_NotFound(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewRunRepository(pool)

	_, err := repo.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrRunNotFound)
}

func TestRunRepository_ClaimPending(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewRunRepository(pool)
	ws := seedWorkspace(ctx, t, pool)
	d, _ := seedDataset(ctx, t, pool, ws.ID, []float64{30})

	base := time.Now().UTC().Truncate(time.Microsecond)
	older := seedRun(ctx, t, pool, ws.ID, d.ID, domain.RunStatusPending, base)
	newer := seedRun(ctx, t, pool, ws.ID, d.ID, domain.RunStatusPending, base.Add(time.Second))

	claimed, err := repo.ClaimPending(ctx)
	require.NoError(t, err)
	require.NotNil(t, claimed)
	assert.Equal(t, older.ID, claimed.ID)
	assert.Equal(t, domain.RunStatusRunning, claimed.Status)

	claimed2, err := repo.ClaimPending(ctx)
	require.NoError(t, err)
	require.NotNil(t, claimed2)
	assert.Equal(t, newer.ID, claimed2.ID)

	claimed3, err := repo.ClaimPending(ctx)
	require.NoError(t, err)
	assert.Nil(t, claimed3)
}

func TestRunRepository_UpdateOutcome(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewRunRepository(pool)
	ws := seedWorkspace(ctx, t, pool)
	d, _ := seedDataset(ctx, t, pool, ws.ID, []float64{30})

	run := seedRun(ctx, t, pool, ws.ID, d.ID, domain.RunStatusRunning, time.Now().UTC())

	err := repo.UpdateOutcome(ctx, run.ID, domain.RunStatusCompleted, "", 7, 125)
	require.NoError(t, err)

	retrieved, err := repo.GetByID(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RunStatusCompleted, retrieved.Status)
	assert.Equal(t, 7, retrieved.FoundCount)
	assert.Equal(t, int64(125), retrieved.DurationMs)
	assert.Empty(t, retrieved.ErrorMessage)

	err = repo.UpdateOutcome(ctx, run.ID, domain.RunStatusFailed, "dataset vanished", 0, 10)
	require.NoError(t, err)

	retrieved, err = repo.GetByID(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, "dataset vanished", retrieved.ErrorMessage)

	err = repo.UpdateOutcome(ctx, uuid.NewString(), domain.RunStatusCompleted, "", 0, 0)
	assert.ErrorIs(t, err, domain.ErrRunNotFound)
}

func TestRunRepository_RequestCancel(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewRunRepository(pool)
	ws := seedWorkspace(ctx, t, pool)
	d, _ := seedDataset(ctx, t, pool, ws.ID, []float64{30})

	pending := seedRun(ctx, t, pool, ws.ID, d.ID, domain.RunStatusPending, time.Now().UTC())
	running := seedRun(ctx, t, pool, ws.ID, d.ID, domain.RunStatusRunning, time.Now().UTC())
	completed := seedRun(ctx, t, pool, ws.ID, d.ID, domain.RunStatusCompleted, time.Now().UTC())

	status, err := repo.RequestCancel(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RunStatusCancelled, status)

	status, err = repo.RequestCancel(ctx, running.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RunStatusCancelling, status)

	status, err = repo.RequestCancel(ctx, completed.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RunStatusCompleted, status)

	_, err = repo.RequestCancel(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrRunNotFound)
}

func TestRunRepository_StoreAndListResults(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewRunRepository(pool)
	ws := seedWorkspace(ctx, t, pool)
	d, cells := seedDataset(ctx, t, pool, ws.ID, []float64{30, 20, 10})

	run := seedRun(ctx, t, pool, ws.ID, d.ID, domain.RunStatusCompleted, time.Now().UTC())

	results := []*domain.RunResult{
		{RunID: run.ID, Ordinal: 0, Sum: 30, Exact: true, CellIDs: []string{cells[0].ID}, Refs: []string{"A1"}},
		{RunID: run.ID, Ordinal: 1, Sum: 30, Exact: true, CellIDs: []string{cells[1].ID, cells[2].ID}, Refs: []string{"A2", "A3"}},
		{RunID: run.ID, Ordinal: 2, Sum: 29.5, Exact: false, CellIDs: []string{cells[2].ID}, Refs: []string{"A3"}},
	}
	require.NoError(t, repo.StoreResults(ctx, run.ID, results))

	listed, err := repo.ListResults(ctx, run.ID, 0, 10)
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, []string{"A2", "A3"}, listed[1].Refs)
	assert.True(t, listed[0].Exact)
	assert.False(t, listed[2].Exact)

	// fromOrdinal is inclusive
	listed, err = repo.ListResults(ctx, run.ID, 1, 10)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, 1, listed[0].Ordinal)

	res, err := repo.GetResult(ctx, run.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, 29.5, res.Sum)

	_, err = repo.GetResult(ctx, run.ID, 99)
	assert.ErrorIs(t, err, domain.ErrResultNotFound)
}
