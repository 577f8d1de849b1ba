package engine

import (
	"context"
	"time"

	"github.com/roach88/tango/internal/convert"
	"github.com/roach88/tango/internal/timestamp"
)

// Recorder receives an audit trail of each pass. Reconciliation never
// consults it: the stamp file stays the only watermark.
type Recorder interface {
	BeginRun(ctx context.Context, run RunInfo) error
	RecordTransform(ctx context.Context, runID string, rec TransformRecord) error
	FinishRun(ctx context.Context, runID string, outcome Outcome) error
}

// RunInfo describes a pass as it starts.
type RunInfo struct {
	ID        string
	Root      string
	StartedAt time.Time

	// Stamp is the stamp file's time before the pass.
	Stamp timestamp.State
}

// TransformRecord describes one generated file.
type TransformRecord struct {
	Seq          int64
	Direction    convert.Direction
	Original     string
	Generated    string
	OriginalTime timestamp.Timestamp
	Digest       string
	Lines        int
	Warnings     []convert.Warning
}

// Status is the final state of a pass.
type Status string

const (
	StatusOK     Status = "ok"
	StatusFailed Status = "failed"
)

// Outcome describes a pass as it ends.
type Outcome struct {
	Status     Status
	Error      string
	Generated  int
	Stamp      timestamp.State
	FinishedAt time.Time
}

// nopRecorder is used when no Recorder is configured.
type nopRecorder struct{}

func (nopRecorder) BeginRun(context.Context, RunInfo) error                        { return nil }
func (nopRecorder) RecordTransform(context.Context, string, TransformRecord) error { return nil }
func (nopRecorder) FinishRun(context.Context, string, Outcome) error               { return nil }
