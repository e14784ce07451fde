package repository

import (
	"context"
	"errors"

	"github.com/goyal-sidhant/Combinational-Sum/internal/domain"
	"github.com/goyal-sidhant/Combinational-Sum/internal/pagination"
	"github.com/goyal-sidhant/Combinational-Sum/internal/service"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type DatasetRepository struct {
	pool *pgxpool.Pool
}

func NewDatasetRepository(pool *pgxpool.Pool) *DatasetRepository {
	return &DatasetRepository{pool: pool}
}

// CreateWithCells inserts the dataset and its cells in one transaction so a dataset
// is never visible without its pool.
func (r *DatasetRepository) CreateWithCells(ctx context.Context, d *domain.Dataset, cells []*domain.Cell) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO datasets (id, workspace_id, name, source, cell_count, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		d.ID, d.WorkspaceID, d.Name, d.Source, d.CellCount, d.CreatedAt, d.UpdatedAt,
	)
	if err != nil {
		return err
	}

	rows := make([][]interface{}, len(cells))
	for i, c := range cells {
		rows[i] = []interface{}{c.ID, c.DatasetID, c.Ref, c.Value, c.Position}
	}
	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"cells"},
		[]string{"id", "dataset_id", "ref", "value", "position"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *DatasetRepository) GetByID(ctx context.Context, id string) (*domain.Dataset, error) {
	var d domain.Dataset
	err := r.pool.QueryRow(ctx,
		`SELECT id, workspace_id, name, source, cell_count, created_at, updated_at
		 FROM datasets WHERE id = $1`,
		id,
	).Scan(&d.ID, &d.WorkspaceID, &d.Name, &d.Source, &d.CellCount, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrDatasetNotFound
		}
		return nil, err
	}
	return &d, nil
}

// GetCells returns the dataset's cells in their supplied order.
func (r *DatasetRepository) GetCells(ctx context.Context, datasetID string) ([]*domain.Cell, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, dataset_id, ref, value, position
		 FROM cells WHERE dataset_id = $1 ORDER BY position ASC`,
		datasetID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cells []*domain.Cell
	for rows.Next() {
		var c domain.Cell
		if err := rows.Scan(&c.ID, &c.DatasetID, &c.Ref, &c.Value, &c.Position); err != nil {
			return nil, err
		}
		cells = append(cells, &c)
	}
	return cells, rows.Err()
}

func (r *DatasetRepository) ListByWorkspaceWithCursor(ctx context.Context, workspaceID string, cursor *pagination.Cursor, limit int) (*service.DatasetPageResult, error) {
	if limit <= 0 {
		limit = 20
	}

	var rows pgx.Rows
	var err error

	if cursor != nil {
		rows, err = r.pool.Query(ctx,
			`SELECT id, workspace_id, name, source, cell_count, created_at, updated_at
			 FROM datasets
			 WHERE workspace_id = $1 AND (created_at, id) < ($2, $3)
			 ORDER BY created_at DESC, id DESC
			 LIMIT $4`,
			workspaceID, cursor.Timestamp, cursor.LastID, limit+1,
		)
	} else {
		rows, err = r.pool.Query(ctx,
			`SELECT id, workspace_id, name, source, cell_count, created_at, updated_at
			 FROM datasets
			 WHERE workspace_id = $1
			 ORDER BY created_at DESC, id DESC
			 LIMIT $2`,
			workspaceID, limit+1,
		)
	}

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var datasets []*domain.Dataset
	for rows.Next() {
		var d domain.Dataset
		if err := rows.Scan(&d.ID, &d.WorkspaceID, &d.Name, &d.Source, &d.CellCount, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		datasets = append(datasets, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	hasMore := len(datasets) > limit
	if hasMore {
		datasets = datasets[:limit]
	}

	var nextCursor string
	if hasMore && len(datasets) > 0 {
		last := datasets[len(datasets)-1]
		nextCursor = pagination.EncodeCursor(last.ID, last.CreatedAt)
	}

	return &service.DatasetPageResult{
		Items:      datasets,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}
