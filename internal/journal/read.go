package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/roach88/tango/internal/convert"
	"github.com/roach88/tango/internal/engine"
	"github.com/roach88/tango/internal/timestamp"
)

// RunStatusRunning marks a run that has not finished (or crashed).
const RunStatusRunning engine.Status = "running"

// Run is a journal entry for one pass.
type Run struct {
	ID         string
	Root       string
	StartedAt  time.Time
	FinishedAt time.Time // zero while running
	Status     engine.Status
	Error      string
	Generated  int

	StampBefore timestamp.State
	StampAfter  timestamp.State
}

// Transform is a generated file as recorded, with the run it belongs to.
type Transform struct {
	RunID string
	engine.TransformRecord
}

// Warning is a recorded converter warning and the file that produced it.
type Warning struct {
	Seq      int64
	Original string
	convert.Warning
}

// RecentRuns returns up to limit runs, newest first.
func (j *Journal) RecentRuns(ctx context.Context, limit int) ([]Run, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, root, started_at, finished_at, status, error, generated,
		       stamp_before_sec, stamp_before_nsec, stamp_after_sec, stamp_after_nsec
		FROM runs
		ORDER BY started_at DESC, id COLLATE BINARY DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var (
			r           Run
			started     string
			finished    sql.NullString
			status      string
			bSec, bNsec sql.NullInt64
			aSec, aNsec sql.NullInt64
		)
		if err := rows.Scan(&r.ID, &r.Root, &started, &finished, &status, &r.Error, &r.Generated,
			&bSec, &bNsec, &aSec, &aNsec); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if r.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
			return nil, fmt.Errorf("parse started_at of run %s: %w", r.ID, err)
		}
		if finished.Valid {
			if r.FinishedAt, err = time.Parse(time.RFC3339Nano, finished.String); err != nil {
				return nil, fmt.Errorf("parse finished_at of run %s: %w", r.ID, err)
			}
		}
		r.Status = engine.Status(status)
		r.StampBefore = stateFromColumns(bSec, bNsec)
		r.StampAfter = stateFromColumns(aSec, aNsec)
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// RunTransforms returns the files generated by a run in generation order.
func (j *Journal) RunTransforms(ctx context.Context, runID string) ([]Transform, error) {
	return j.queryTransforms(ctx, `
		SELECT run_id, seq, direction, original, generated, original_sec, original_nsec, digest, lines
		FROM transforms
		WHERE run_id = ?
		ORDER BY seq ASC
	`, runID)
}

// History returns every recorded generation from path, oldest run first.
func (j *Journal) History(ctx context.Context, path string) ([]Transform, error) {
	return j.queryTransforms(ctx, `
		SELECT t.run_id, t.seq, t.direction, t.original, t.generated, t.original_sec, t.original_nsec, t.digest, t.lines
		FROM transforms t
		JOIN runs r ON r.id = t.run_id
		WHERE t.original_key = ?
		ORDER BY r.started_at ASC, t.seq ASC
	`, pathKey(path))
}

func (j *Journal) queryTransforms(ctx context.Context, query string, args ...any) ([]Transform, error) {
	rows, err := j.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transforms: %w", err)
	}
	defer rows.Close()

	out := []Transform{}
	for rows.Next() {
		var (
			t         Transform
			direction string
			sec, nsec int64
		)
		if err := rows.Scan(&t.RunID, &t.Seq, &direction, &t.Original, &t.Generated,
			&sec, &nsec, &t.Digest, &t.Lines); err != nil {
			return nil, fmt.Errorf("scan transform: %w", err)
		}
		if t.Direction, err = parseDirection(direction); err != nil {
			return nil, err
		}
		t.OriginalTime = timestamp.New(uint64(sec), uint64(nsec))
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transforms: %w", err)
	}
	return out, nil
}

// RunWarnings returns the converter warnings of a run, in file order.
func (j *Journal) RunWarnings(ctx context.Context, runID string) ([]Warning, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT w.seq, t.original, w.kind, w.line, w.name, w.expected, w.actual, w.kept
		FROM warnings w
		JOIN transforms t ON t.run_id = w.run_id AND t.seq = w.seq
		WHERE w.run_id = ?
		ORDER BY w.seq ASC, w.idx ASC
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("query warnings: %w", err)
	}
	defer rows.Close()

	out := []Warning{}
	for rows.Next() {
		var (
			w    Warning
			kind string
		)
		if err := rows.Scan(&w.Seq, &w.Original, &kind, &w.Line, &w.Name, &w.Expected, &w.Actual, &w.Kept); err != nil {
			return nil, fmt.Errorf("scan warning: %w", err)
		}
		w.Kind = convert.WarningKind(kind)
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate warnings: %w", err)
	}
	return out, nil
}

func stateFromColumns(sec, nsec sql.NullInt64) timestamp.State {
	if !sec.Valid {
		return timestamp.Missing()
	}
	return timestamp.Present(timestamp.New(uint64(sec.Int64), uint64(nsec.Int64)))
}

func parseDirection(s string) (convert.Direction, error) {
	for _, d := range []convert.Direction{convert.SourceToLiterate, convert.LiterateToSource} {
		if d.String() == s {
			return d, nil
		}
	}
	return 0, fmt.Errorf("unknown direction %q", s)
}
