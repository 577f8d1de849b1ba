package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/roach88/tango/internal/engine"
	"github.com/roach88/tango/internal/timestamp"
)

var _ engine.Recorder = (*Journal)(nil)

// BeginRun inserts a run in the running state.
// Uses ON CONFLICT(id) DO NOTHING so a retried call is harmless.
func (j *Journal) BeginRun(ctx context.Context, run engine.RunInfo) error {
	sec, nsec := stateColumns(run.Stamp)
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO runs (id, root, started_at, stamp_before_sec, stamp_before_nsec)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, run.ID, run.Root, formatTime(run.StartedAt), sec, nsec)
	if err != nil {
		return fmt.Errorf("begin run: %w", err)
	}
	return nil
}

// RecordTransform inserts a generated file and its warnings in one
// transaction.
func (j *Journal) RecordTransform(ctx context.Context, runID string, rec engine.TransformRecord) error {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("record transform: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO transforms
		(run_id, seq, direction, original, original_key, generated, original_sec, original_nsec, digest, lines)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id, seq) DO NOTHING
	`,
		runID,
		rec.Seq,
		rec.Direction.String(),
		rec.Original,
		pathKey(rec.Original),
		rec.Generated,
		int64(rec.OriginalTime.Seconds),
		int64(rec.OriginalTime.Nanoseconds),
		rec.Digest,
		rec.Lines,
	)
	if err != nil {
		return fmt.Errorf("record transform: %w", err)
	}

	for i, w := range rec.Warnings {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO warnings (run_id, seq, idx, kind, line, name, expected, actual, kept)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(run_id, seq, idx) DO NOTHING
		`, runID, rec.Seq, i, string(w.Kind), w.Line, w.Name, w.Expected, w.Actual, w.Kept)
		if err != nil {
			return fmt.Errorf("record warning: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("record transform: %w", err)
	}
	return nil
}

// FinishRun stores the outcome of a run.
func (j *Journal) FinishRun(ctx context.Context, runID string, o engine.Outcome) error {
	sec, nsec := stateColumns(o.Stamp)
	res, err := j.db.ExecContext(ctx, `
		UPDATE runs
		SET finished_at = ?, status = ?, error = ?, generated = ?,
		    stamp_after_sec = ?, stamp_after_nsec = ?
		WHERE id = ?
	`, formatTime(o.FinishedAt), string(o.Status), o.Error, o.Generated, sec, nsec, runID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finish run: unknown run %q", runID)
	}
	return nil
}

// stateColumns maps a missing timestamp to NULLs.
func stateColumns(s timestamp.State) (sql.NullInt64, sql.NullInt64) {
	t, ok := s.Time()
	if !ok {
		return sql.NullInt64{}, sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(t.Seconds), Valid: true},
		sql.NullInt64{Int64: int64(t.Nanoseconds), Valid: true}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}
