package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/tinv/internal/ir"
)

// Count sources stored in run_counts.
const (
	SourceExtraction = "extraction"
	SourceTally      = "tally"
)

// WriteRun records a run and its per-key counts in one transaction.
// The run's seq is assigned from the logical clock (max seq + 1) and
// returned. Duplicate IDs are rejected.
func (s *Store) WriteRun(ctx context.Context, run Run) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("write run: begin tx: %w", err)
	}
	defer tx.Rollback()

	var seq int64
	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM runs`).Scan(&seq); err != nil {
		return 0, fmt.Errorf("write run: next seq: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, seq, log_path, log_digest, engine, limit_value, total, unclassified,
		 remainder, tally_valid, ok, report, tool_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID,
		seq,
		run.LogPath,
		run.LogDigest,
		run.Engine,
		run.Limit,
		run.Total,
		run.Unclassified,
		run.Remainder,
		boolToInt(run.TallyValid),
		boolToInt(run.OK),
		run.Report,
		run.ToolVersion,
	)
	if err != nil {
		return 0, fmt.Errorf("write run %s: %w", run.ID, err)
	}

	if err := writeCounts(ctx, tx, run.ID, SourceExtraction, run.Extraction); err != nil {
		return 0, err
	}
	if err := writeCounts(ctx, tx, run.ID, SourceTally, run.Tally); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("write run: commit: %w", err)
	}
	return seq, nil
}

func writeCounts(ctx context.Context, tx *sql.Tx, runID, source string, counts map[string]int) error {
	for _, key := range ir.SortedKeys(counts) {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO run_counts (run_id, source, key, count)
			VALUES (?, ?, ?, ?)
		`, runID, source, key, counts[key])
		if err != nil {
			return fmt.Errorf("write run counts %s/%s: %w", source, key, err)
		}
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
