package repository

import (
	"context"

	"github.com/goyal-sidhant/Combinational-Sum/internal/domain"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MarkRepository struct {
	pool *pgxpool.Pool
}

func NewMarkRepository(pool *pgxpool.Pool) *MarkRepository {
	return &MarkRepository{pool: pool}
}

// Create inserts the marks; re-marking an already marked cell is a no-op, which
// makes marking idempotent.
func (r *MarkRepository) Create(ctx context.Context, marks []*domain.Mark) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, m := range marks {
		var runID *string
		if m.RunID != "" {
			runID = &m.RunID
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO marks (dataset_id, cell_id, run_id, marked_at)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (dataset_id, cell_id) DO NOTHING`,
			m.DatasetID, m.CellID, runID, m.MarkedAt,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *MarkRepository) ListByDataset(ctx context.Context, datasetID string) ([]*domain.Mark, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT dataset_id, cell_id, run_id, marked_at
		 FROM marks WHERE dataset_id = $1 ORDER BY marked_at ASC, cell_id ASC`,
		datasetID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var marks []*domain.Mark
	for rows.Next() {
		var m domain.Mark
		var runID pgtype.Text
		if err := rows.Scan(&m.DatasetID, &m.CellID, &runID, &m.MarkedAt); err != nil {
			return nil, err
		}
		if runID.Valid {
			m.RunID = runID.String
		}
		marks = append(marks, &m)
	}
	return marks, rows.Err()
}

func (r *MarkRepository) DeleteByDataset(ctx context.Context, datasetID string) (int64, error) {
	cmdTag, err := r.pool.Exec(ctx,
		`DELETE FROM marks WHERE dataset_id = $1`,
		datasetID,
	)
	if err != nil {
		return 0, err
	}
	return cmdTag.RowsAffected(), nil
}

// CellIDsByDataset returns the marked cell IDs as a set, the shape the search
// exclusion filter consumes.
func (r *MarkRepository) CellIDsByDataset(ctx context.Context, datasetID string) (map[string]struct{}, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT cell_id FROM marks WHERE dataset_id = $1`,
		datasetID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = struct{}{}
	}
	return ids, rows.Err()
}
