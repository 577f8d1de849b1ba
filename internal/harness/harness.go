package harness

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/tango/internal/config"
	"github.com/roach88/tango/internal/engine"
	"github.com/roach88/tango/internal/journal"
	"github.com/roach88/tango/internal/timestamp"
)

// JournalPath is where scenarios with a journal keep it, relative to the
// scenario directory.
const JournalPath = ".tango/journal.db"

// Harness executes one scenario in one directory.
type Harness struct {
	dir     string
	cfg     config.Config
	journal *journal.Journal
	ids     *engine.FixedGenerator
	logs    *bytes.Buffer
	logger  *slog.Logger
}

// Run executes scenario inside dir, which should be empty, and returns the
// result. An error means the scenario itself could not be carried out;
// failed expectations are reported in the result.
func Run(scenario *Scenario, dir string) (*Result, error) {
	cfg, err := scenarioConfig(scenario.Config)
	if err != nil {
		return nil, err
	}

	logs := &bytes.Buffer{}
	h := &Harness{
		dir:    dir,
		cfg:    cfg,
		ids:    engine.NewFixedGenerator(runIDs(scenario)...),
		logs:   logs,
		logger: slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug})),
	}
	if scenario.Journal {
		j, err := journal.Open(filepath.Join(dir, JournalPath))
		if err != nil {
			return nil, err
		}
		defer j.Close()
		h.journal = j
	}

	ctx := context.Background()
	result := NewResult()
	for i, step := range scenario.Steps {
		if err := h.execute(ctx, i, step, result); err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
	}

	for _, msg := range h.evaluate(ctx, scenario.Assertions) {
		result.AddError(msg)
	}
	result.Logs = logs.String()
	return result, nil
}

// scenarioConfig applies overrides to the default config through the same
// strict YAML decoding a config file gets.
func scenarioConfig(overrides map[string]string) (config.Config, error) {
	cfg := config.Default()
	if len(overrides) > 0 {
		data, err := yaml.Marshal(overrides)
		if err != nil {
			return cfg, err
		}
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil {
			return cfg, fmt.Errorf("config overrides: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config overrides: %w", err)
	}
	return cfg, nil
}

func runIDs(s *Scenario) []string {
	var ids []string
	for _, step := range s.Steps {
		if step.Run != nil {
			ids = append(ids, fmt.Sprintf("run-%d", len(ids)+1))
		}
	}
	return ids
}

func (h *Harness) path(rel string) string {
	return filepath.Join(h.dir, filepath.FromSlash(rel))
}

func (h *Harness) execute(ctx context.Context, i int, step Step, result *Result) error {
	switch {
	case step.Write != nil:
		p := h.path(step.Write.Path)
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(p, []byte(step.Write.Content), 0o644); err != nil {
			return err
		}
		return step.Write.MTime.Apply(p)
	case step.Touch != nil:
		return step.Touch.MTime.Apply(h.path(step.Touch.Path))
	case step.Remove != nil:
		return os.Remove(h.path(step.Remove.Path))
	case step.Run != nil:
		h.run(ctx, i, step.Run, result)
	}
	return nil
}

func (h *Harness) run(ctx context.Context, i int, step *RunStep, result *Result) {
	var recorder engine.Recorder
	if h.journal != nil {
		recorder = h.journal
	}
	if step.Interfere != nil {
		recorder = &interferer{next: recorder, path: h.path(step.Interfere.Path), mtime: step.Interfere.MTime.Timestamp}
	}

	e := engine.New(engine.Options{
		Root:      h.dir,
		Layout:    h.cfg.Layout(),
		Syntax:    h.cfg.Syntax(),
		StampPath: h.cfg.Stamp,
		Logger:    h.logger,
		IDs:       h.ids,
		Recorder:  recorder,
	})
	report, err := e.Run(ctx)
	result.Reports = append(result.Reports, report)

	if got := engine.ErrorCode(err); got != step.ExpectError {
		result.AddError(fmt.Sprintf("step %d: expected error %q, got %q (%v)", i, step.ExpectError, got, err))
	}
	if step.ExpectGenerated != nil {
		var got []string
		for _, g := range report.Generated {
			got = append(got, filepath.ToSlash(g.Generated))
		}
		if fmt.Sprint(got) != fmt.Sprint(step.ExpectGenerated) {
			result.AddError(fmt.Sprintf("step %d: expected generated %v, got %v", i, step.ExpectGenerated, got))
		}
	}
	if step.ExpectWarnings != nil && report.WarningCount() != *step.ExpectWarnings {
		result.AddError(fmt.Sprintf("step %d: expected %d warnings, got %d", i, *step.ExpectWarnings, report.WarningCount()))
	}
}

// interferer touches a file once the first transform is recorded.
type interferer struct {
	next  engine.Recorder
	path  string
	mtime timestamp.Timestamp
	done  bool
}

func (r *interferer) BeginRun(ctx context.Context, run engine.RunInfo) error {
	if r.next == nil {
		return nil
	}
	return r.next.BeginRun(ctx, run)
}

func (r *interferer) RecordTransform(ctx context.Context, runID string, rec engine.TransformRecord) error {
	if !r.done {
		r.done = true
		if err := r.mtime.Apply(r.path); err != nil {
			return err
		}
	}
	if r.next == nil {
		return nil
	}
	return r.next.RecordTransform(ctx, runID, rec)
}

func (r *interferer) FinishRun(ctx context.Context, runID string, o engine.Outcome) error {
	if r.next == nil {
		return nil
	}
	return r.next.FinishRun(ctx, runID, o)
}
