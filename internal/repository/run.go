package repository

import (
	"context"
	"errors"
	"time"

	"github.com/goyal-sidhant/Combinational-Sum/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

const runColumns = `id, workspace_id, dataset_id, target, tolerance, max_length, max_results,
	exclude_marked, status, found_count, error_message, duration_ms, created_at, updated_at`

type RunRepository struct {
	pool *pgxpool.Pool
}

func NewRunRepository(pool *pgxpool.Pool) *RunRepository {
	return &RunRepository{pool: pool}
}

func (r *RunRepository) Create(ctx context.Context, run *domain.SearchRun) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO search_runs (id, workspace_id, dataset_id, target, tolerance, max_length, max_results,
		                          exclude_marked, status, found_count, duration_ms, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		run.ID, run.WorkspaceID, run.DatasetID, run.Target, run.Tolerance, run.MaxLength, run.MaxResults,
		run.ExcludeMarked, run.Status, run.FoundCount, run.DurationMs, run.CreatedAt, run.UpdatedAt,
	)
	return err
}

func scanRun(row pgx.Row) (*domain.SearchRun, error) {
	var run domain.SearchRun
	var errMsg pgtype.Text
	err := row.Scan(&run.ID, &run.WorkspaceID, &run.DatasetID, &run.Target, &run.Tolerance,
		&run.MaxLength, &run.MaxResults, &run.ExcludeMarked, &run.Status, &run.FoundCount,
		&errMsg, &run.DurationMs, &run.CreatedAt, &run.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if errMsg.Valid {
		run.ErrorMessage = errMsg.String
	}
	return &run, nil
}

func (r *RunRepository) GetByID(ctx context.Context, id string) (*domain.SearchRun, error) {
	run, err := scanRun(r.pool.QueryRow(ctx,
		`SELECT `+runColumns+` FROM search_runs WHERE id = $1`,
		id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRunNotFound
		}
		return nil, err
	}
	return run, nil
}

func (r *RunRepository) GetStatus(ctx context.Context, id string) (domain.RunStatus, error) {
	var status domain.RunStatus
	err := r.pool.QueryRow(ctx,
		`SELECT status FROM search_runs WHERE id = $1`,
		id,
	).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrRunNotFound
		}
		return "", err
	}
	return status, nil
}

// ClaimPending atomically flips the oldest pending run to running and returns it.
// SKIP LOCKED keeps concurrent workers from claiming the same run. No pending run
// yields (nil, nil).
func (r *RunRepository) ClaimPending(ctx context.Context) (*domain.SearchRun, error) {
	run, err := scanRun(r.pool.QueryRow(ctx,
		`WITH cte AS (
			 SELECT id
			 FROM search_runs
			 WHERE status = $1
			 ORDER BY created_at ASC
			 FOR UPDATE SKIP LOCKED
			 LIMIT 1
		 )
		 UPDATE search_runs
		 SET status = $2, updated_at = now()
		 FROM cte
		 WHERE search_runs.id = cte.id
		 RETURNING search_runs.id, search_runs.workspace_id, search_runs.dataset_id, search_runs.target,
		           search_runs.tolerance, search_runs.max_length, search_runs.max_results,
		           search_runs.exclude_marked, search_runs.status, search_runs.found_count,
		           search_runs.error_message, search_runs.duration_ms, search_runs.created_at,
		           search_runs.updated_at`,
		domain.RunStatusPending, domain.RunStatusRunning,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return run, nil
}

func (r *RunRepository) UpdateOutcome(ctx context.Context, id string, status domain.RunStatus, errMsg string, foundCount int, durationMs int64) error {
	var errPtr *string
	if errMsg != "" {
		errPtr = &errMsg
	}

	cmdTag, err := r.pool.Exec(ctx,
		`UPDATE search_runs
		 SET status = $1, error_message = $2, found_count = $3, duration_ms = $4, updated_at = $5
		 WHERE id = $6`,
		status, errPtr, foundCount, durationMs, time.Now().UTC(), id,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrRunNotFound
	}
	return nil
}

// RequestCancel moves a pending run straight to cancelled and a running run to
// cancelling; the worker's cancellation watcher picks up the latter. The resulting
// status is returned.
func (r *RunRepository) RequestCancel(ctx context.Context, id string) (domain.RunStatus, error) {
	var status domain.RunStatus
	err := r.pool.QueryRow(ctx,
		`UPDATE search_runs
		 SET status = CASE status
		                WHEN $1 THEN $2::text
		                WHEN $3 THEN $4::text
		                ELSE status
		              END,
		     updated_at = now()
		 WHERE id = $5
		 RETURNING status`,
		domain.RunStatusPending, domain.RunStatusCancelled,
		domain.RunStatusRunning, domain.RunStatusCancelling,
		id,
	).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrRunNotFound
		}
		return "", err
	}
	return status, nil
}

func (r *RunRepository) StoreResults(ctx context.Context, runID string, results []*domain.RunResult) error {
	rows := make([][]interface{}, len(results))
	for i, res := range results {
		rows[i] = []interface{}{res.RunID, res.Ordinal, res.Sum, res.Exact, res.CellIDs, res.Refs}
	}
	_, err := r.pool.CopyFrom(ctx,
		pgx.Identifier{"run_results"},
		[]string{"run_id", "ordinal", "sum", "exact", "cell_ids", "refs"},
		pgx.CopyFromRows(rows),
	)
	return err
}

// ListResults pages a run's combinations by discovery ordinal; fromOrdinal is
// inclusive.
func (r *RunRepository) ListResults(ctx context.Context, runID string, fromOrdinal, limit int) ([]*domain.RunResult, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT run_id, ordinal, sum, exact, cell_ids, refs
		 FROM run_results
		 WHERE run_id = $1 AND ordinal >= $2
		 ORDER BY ordinal ASC
		 LIMIT $3`,
		runID, fromOrdinal, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*domain.RunResult
	for rows.Next() {
		var res domain.RunResult
		if err := rows.Scan(&res.RunID, &res.Ordinal, &res.Sum, &res.Exact, &res.CellIDs, &res.Refs); err != nil {
			return nil, err
		}
		results = append(results, &res)
	}
	return results, rows.Err()
}

func (r *RunRepository) GetResult(ctx context.Context, runID string, ordinal int) (*domain.RunResult, error) {
	var res domain.RunResult
	err := r.pool.QueryRow(ctx,
		`SELECT run_id, ordinal, sum, exact, cell_ids, refs
		 FROM run_results WHERE run_id = $1 AND ordinal = $2`,
		runID, ordinal,
	).Scan(&res.RunID, &res.Ordinal, &res.Sum, &res.Exact, &res.CellIDs, &res.Refs)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrResultNotFound
		}
		return nil, err
	}
	return &res, nil
}
