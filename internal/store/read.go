package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrRunNotFound is returned by ReadRun for an unknown ID.
var ErrRunNotFound = errors.New("run not found")

const selectRuns = `
	SELECT id, seq, log_path, log_digest, engine, limit_value, total,
	       unclassified, remainder, tally_valid, ok, report, tool_version
	FROM runs
`

// ListRuns returns every recorded run in logical order, counts included.
// Returns an empty slice (not nil) when nothing has been recorded.
func (s *Store) ListRuns(ctx context.Context) ([]Run, error) {
	return s.queryRuns(ctx, selectRuns+`ORDER BY seq ASC, id COLLATE BINARY ASC`)
}

// RunsForDigest returns every run recorded for a log with the given digest.
func (s *Store) RunsForDigest(ctx context.Context, digest string) ([]Run, error) {
	return s.queryRuns(ctx, selectRuns+`
		WHERE log_digest = ?
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`, digest)
}

// ReadRun returns a single run by ID.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, error) {
	runs, err := s.queryRuns(ctx, selectRuns+`WHERE id = ?`, id)
	if err != nil {
		return Run{}, err
	}
	if len(runs) == 0 {
		return Run{}, fmt.Errorf("read run %s: %w", id, ErrRunNotFound)
	}
	return runs[0], nil
}

func (s *Store) queryRuns(ctx context.Context, query string, args ...any) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	// Counts are read after the run rows are closed; the pool has one connection.
	rows.Close()
	for i := range runs {
		if err := s.readCounts(ctx, &runs[i]); err != nil {
			return nil, err
		}
	}
	return runs, nil
}

func scanRun(rows *sql.Rows) (Run, error) {
	var run Run
	var tallyValid, ok int
	err := rows.Scan(
		&run.ID,
		&run.Seq,
		&run.LogPath,
		&run.LogDigest,
		&run.Engine,
		&run.Limit,
		&run.Total,
		&run.Unclassified,
		&run.Remainder,
		&tallyValid,
		&ok,
		&run.Report,
		&run.ToolVersion,
	)
	if err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	run.TallyValid = tallyValid != 0
	run.OK = ok != 0
	return run, nil
}

func (s *Store) readCounts(ctx context.Context, run *Run) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT source, key, count
		FROM run_counts
		WHERE run_id = ?
		ORDER BY source ASC, key COLLATE BINARY ASC
	`, run.ID)
	if err != nil {
		return fmt.Errorf("query run counts %s: %w", run.ID, err)
	}
	defer rows.Close()

	run.Extraction = map[string]int{}
	run.Tally = map[string]int{}
	for rows.Next() {
		var source, key string
		var count int
		if err := rows.Scan(&source, &key, &count); err != nil {
			return fmt.Errorf("scan run count: %w", err)
		}
		switch source {
		case SourceExtraction:
			run.Extraction[key] = count
		case SourceTally:
			run.Tally[key] = count
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate run counts: %w", err)
	}
	return nil
}
