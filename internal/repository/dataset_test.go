//go:build integration

package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/goyal-sidhant/Combinational-Sum/internal/domain"
	"github.com/goyal-sidhant/Combinational-Sum/internal/pagination"
	"github.com/goyal-sidhant/Combinational-Sum/internal/testutil"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedWorkspace(ctx context.Context, t *testing.T, pool *pgxpool.Pool) *domain.Workspace {
	t.Helper()
	ws := &domain.Workspace{
		ID:        uuid.NewString(),
		Name:      "ws-" + uuid.NewString(),
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, NewWorkspaceRepository(pool).Create(ctx, ws))
	return ws
}

func seedDataset(ctx context.Context, t *testing.T, pool *pgxpool.Pool, workspaceID string, values []float64) (*domain.Dataset, []*domain.Cell) {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	d := &domain.Dataset{
		ID:          uuid.NewString(),
		WorkspaceID: workspaceID,
		Name:        "ds-" + uuid.NewString(),
		Source:      domain.DatasetSourceManual,
		CellCount:   len(values),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	cells := make([]*domain.Cell, len(values))
	for i, v := range values {
		cells[i] = &domain.Cell{
			ID:        uuid.NewString(),
			DatasetID: d.ID,
			Ref:       fmt.Sprintf("A%d", i+1),
			Value:     v,
			Position:  i,
		}
	}
	require.NoError(t, NewDatasetRepository(pool).CreateWithCells(ctx, d, cells))
	return d, cells
}

func TestDatasetRepository_CreateWithCells(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewDatasetRepository(pool)
	ws := seedWorkspace(ctx, t, pool)

	d, _ := seedDataset(ctx, t, pool, ws.ID, []float64{30, 20, 10})

	retrieved, err := repo.GetByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, d.Name, retrieved.Name)
	assert.Equal(t, 3, retrieved.CellCount)

	cells, err := repo.GetCells(ctx, d.ID)
	require.NoError(t, err)
	require.Len(t, cells, 3)
	assert.Equal(t, "A1", cells[0].Ref)
	assert.Equal(t, 30.0, cells[0].Value)
	assert.Equal(t, 2, cells[2].Position)
}

func TestDatasetRepository_GetByID_NotFound(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewDatasetRepository(pool)

	_, err := repo.GetByID(ctx, uuid.NewString())
	assert.ErrorIs(t, err, domain.ErrDatasetNotFound)
}

func TestDatasetRepository_ListByWorkspaceWithCursor(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewDatasetRepository(pool)
	ws := seedWorkspace(ctx, t, pool)

	for i := 0; i < 5; i++ {
		now := time.Now().UTC().Add(time.Duration(i) * time.Second).Truncate(time.Microsecond)
		d := &domain.Dataset{
			ID:          uuid.NewString(),
			WorkspaceID: ws.ID,
			Name:        fmt.Sprintf("ds-%d", i),
			Source:      domain.DatasetSourceManual,
			CellCount:   1,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		cells := []*domain.Cell{{ID: uuid.NewString(), DatasetID: d.ID, Ref: "A1", Value: 1, Position: 0}}
		require.NoError(t, repo.CreateWithCells(ctx, d, cells))
	}

	page1, err := repo.ListByWorkspaceWithCursor(ctx, ws.ID, nil, 2)
	require.NoError(t, err)
	require.Len(t, page1.Items, 2)
	assert.True(t, page1.HasMore)
	assert.Equal(t, "ds-4", page1.Items[0].Name)
	assert.Equal(t, "ds-3", page1.Items[1].Name)

	cursor, err := pagination.DecodeCursor(page1.NextCursor)
	require.NoError(t, err)

	page2, err := repo.ListByWorkspaceWithCursor(ctx, ws.ID, cursor, 2)
	require.NoError(t, err)
	require.Len(t, page2.Items, 2)
	assert.Equal(t, "ds-2", page2.Items[0].Name)
	assert.Equal(t, "ds-1", page2.Items[1].Name)

	cursor2, err := pagination.DecodeCursor(page2.NextCursor)
	require.NoError(t, err)

	page3, err := repo.ListByWorkspaceWithCursor(ctx, ws.ID, cursor2, 2)
	require.NoError(t, err)
	require.Len(t, page3.Items, 1)
	assert.False(t, page3.HasMore)
	assert.Equal(t, "ds-0", page3.Items[0].Name)
}

func TestDatasetRepository_ListByWorkspace_ScopedToWorkspace(t *testing.T) {
	ctx := context.Background()
	pc := testutil.NewPostgresContainer(ctx, t)
	defer pc.Terminate(ctx)

	pool := testutil.NewTestPool(ctx, t, pc, "../../migrations")
	defer pool.Close()

	repo := NewDatasetRepository(pool)
	ws1 := seedWorkspace(ctx, t, pool)
	ws2 := seedWorkspace(ctx, t, pool)

	seedDataset(ctx, t, pool, ws1.ID, []float64{1})
	seedDataset(ctx, t, pool, ws2.ID, []float64{2})

	page, err := repo.ListByWorkspaceWithCursor(ctx, ws1.ID, nil, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, ws1.ID, page.Items[0].WorkspaceID)
}
