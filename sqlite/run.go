package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fwojciec/siteindex"
)

// Compile-time interface verification.
var _ siteindex.RunService = (*RunService)(nil)

// RunService implements siteindex.RunService using the index_runs table.
type RunService struct {
	db *DB
}

// NewRunService creates a new RunService.
func NewRunService(db *DB) *RunService {
	return &RunService{db: db}
}

// CreateRun records a completed run.
func (s *RunService) CreateRun(ctx context.Context, run *siteindex.RunResult) error {
	if err := siteindex.ValidateSourceName(run.SourceName); err != nil {
		return err
	}

	failures := run.Failures
	if failures == nil {
		failures = []siteindex.Failure{}
	}
	failuresJSON, err := json.Marshal(failures)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO index_runs (plan_id, source_name, started_at, finished_at, urls_planned, urls_fetched,
			pages_stored, chunks_stored, failure_count, failures_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, run.PlanID, run.SourceName, formatTime(run.StartedAt), formatTime(run.FinishedAt),
		run.URLsPlanned, run.URLsFetched, run.PagesStored, run.ChunksStored, run.FailureCount, string(failuresJSON))
	if err != nil {
		return err
	}

	run.ID, err = result.LastInsertId()
	return err
}

// FindRuns retrieves recorded runs, newest first.
func (s *RunService) FindRuns(ctx context.Context, filter siteindex.RunFilter) ([]*siteindex.RunResult, error) {
	var query strings.Builder
	var args []any

	query.WriteString(`SELECT id, plan_id, source_name, started_at, finished_at, urls_planned, urls_fetched,
		pages_stored, chunks_stored, failure_count, failures_json FROM index_runs WHERE 1=1`)

	if filter.SourceName != nil {
		query.WriteString(" AND source_name = ?")
		args = append(args, *filter.SourceName)
	}

	query.WriteString(" ORDER BY id DESC")
	appendPagination(&query, &args, filter.Limit, 0)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*siteindex.RunResult
	for rows.Next() {
		var run siteindex.RunResult
		var startedAt, finishedAt, failuresJSON string

		if err := rows.Scan(&run.ID, &run.PlanID, &run.SourceName, &startedAt, &finishedAt,
			&run.URLsPlanned, &run.URLsFetched, &run.PagesStored, &run.ChunksStored,
			&run.FailureCount, &failuresJSON); err != nil {
			return nil, err
		}

		if run.StartedAt, err = parseRFC3339(startedAt, "started_at"); err != nil {
			return nil, err
		}
		if run.FinishedAt, err = parseRFC3339(finishedAt, "finished_at"); err != nil {
			return nil, err
		}
		run.Duration = run.FinishedAt.Sub(run.StartedAt)
		if err := json.Unmarshal([]byte(failuresJSON), &run.Failures); err != nil {
			return nil, fmt.Errorf("failed to parse failures_json: %w", err)
		}

		runs = append(runs, &run)
	}

	return runs, rows.Err()
}
