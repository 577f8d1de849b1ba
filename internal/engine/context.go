package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/roach88/tango/internal/convert"
	"github.com/roach88/tango/internal/reconcile"
	"github.com/roach88/tango/internal/timestamp"
)

// Options configure a Context. Zero values fall back to sensible defaults
// where noted.
type Options struct {
	// Root is the project directory. Relative layout directories and
	// StampPath resolve against it. Defaults to ".".
	Root string

	Layout Layout
	Syntax convert.Syntax

	// StampPath names the stamp file. Defaults to "tango.stamp".
	StampPath string

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// IDs defaults to UUIDv7Generator.
	IDs IDGenerator

	// Recorder is optional.
	Recorder Recorder

	// Now defaults to time.Now.
	Now func() time.Time
}

// DefaultStampPath is the stamp file name used when none is configured.
const DefaultStampPath = "tango.stamp"

// Job is a transform scheduled for generation.
type Job struct {
	reconcile.Transform
	Direction convert.Direction
}

// Plan is the result of gathering.
type Plan struct {
	// Stamp is the stamp file's time when the plan was made.
	Stamp timestamp.State

	Jobs []Job

	// Skipped lists originals that vanished between listing and reading
	// (typically dangling editor lock symlinks).
	Skipped []string

	// Notes are precision-tolerance diagnostics from reconciliation.
	Notes []string
}

// Generated describes a file written by a pass.
type Generated struct {
	Job
	Digest   string
	Lines    int
	Warnings []convert.Warning
}

// Report summarizes a pass.
type Report struct {
	RunID string
	Plan

	Generated []Generated

	// StampCreated is true when the pass created the stamp file.
	StampCreated bool

	// FinalStamp is the stamp file's time after the pass.
	FinalStamp timestamp.State
}

// WarningCount returns the number of converter warnings across all files.
func (r *Report) WarningCount() int {
	n := 0
	for _, g := range r.Generated {
		n += len(g.Warnings)
	}
	return n
}

// Context runs synchronization passes over one project tree. Configuration
// is fixed at construction; a Context holds no state between passes.
type Context struct {
	root      string
	layout    Layout
	syntax    convert.Syntax
	stampPath string
	logger    *slog.Logger
	ids       IDGenerator
	recorder  Recorder
	now       func() time.Time
}

// New creates a Context.
func New(opts Options) *Context {
	c := &Context{
		root:      opts.Root,
		layout:    opts.Layout,
		syntax:    opts.Syntax,
		stampPath: opts.StampPath,
		logger:    opts.Logger,
		ids:       opts.IDs,
		recorder:  opts.Recorder,
		now:       opts.Now,
	}
	if c.root == "" {
		c.root = "."
	}
	if c.stampPath == "" {
		c.stampPath = DefaultStampPath
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.ids == nil {
		c.ids = UUIDv7Generator{}
	}
	if c.recorder == nil {
		c.recorder = nopRecorder{}
	}
	if c.now == nil {
		c.now = time.Now
	}
	return c
}

// abs resolves a root-relative path. Absolute paths are returned as is.
func (c *Context) abs(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.root, p)
}

// Plan gathers the transforms a pass would generate without writing
// anything.
func (c *Context) Plan(ctx context.Context) (*Plan, error) {
	stamp, err := timestamp.StatState(c.abs(c.stampPath))
	if err != nil {
		return nil, mtimeError(c.stampPath, err)
	}
	plan := &Plan{Stamp: stamp}
	if err := c.gather(ctx, plan); err != nil {
		return plan, err
	}
	return plan, nil
}

// Run performs a full pass: gather, generate, verify and stamp.
//
// The returned report is never nil and describes whatever happened before
// a failure.
func (c *Context) Run(ctx context.Context) (*Report, error) {
	report := &Report{RunID: c.ids.Generate()}
	log := c.logger.With("run", report.RunID)

	stamp, err := timestamp.StatState(c.abs(c.stampPath))
	if err != nil {
		return report, mtimeError(c.stampPath, err)
	}
	report.Stamp = stamp

	if err := c.recorder.BeginRun(ctx, RunInfo{
		ID:        report.RunID,
		Root:      c.root,
		StartedAt: c.now(),
		Stamp:     stamp,
	}); err != nil {
		return report, fmt.Errorf("record run start: %w", err)
	}

	err = c.run(ctx, log, report)

	outcome := Outcome{
		Status:     StatusOK,
		Generated:  len(report.Generated),
		Stamp:      report.FinalStamp,
		FinishedAt: c.now(),
	}
	if err != nil {
		outcome.Status = StatusFailed
		outcome.Error = err.Error()
	}
	// Use a context that survives cancellation so the failure is recorded.
	if rerr := c.recorder.FinishRun(context.WithoutCancel(ctx), report.RunID, outcome); rerr != nil {
		if err == nil {
			return report, fmt.Errorf("record run finish: %w", rerr)
		}
		log.Warn("failed to record run outcome", "error", rerr)
	}
	if err != nil {
		log.Debug("run failed", "error", err)
		return report, err
	}

	log.Info("run complete",
		"generated", len(report.Generated),
		"warnings", report.WarningCount(),
		"stamp", report.FinalStamp.String())
	return report, nil
}

func (c *Context) run(ctx context.Context, log *slog.Logger, report *Report) error {
	if err := c.gather(ctx, &report.Plan); err != nil {
		return err
	}

	var seq int64
	for _, job := range report.Jobs {
		if err := ctx.Err(); err != nil {
			return err
		}
		g, err := c.generate(job)
		if err != nil {
			return err
		}
		report.Generated = append(report.Generated, g)
		for _, w := range g.Warnings {
			log.Warn("conversion warning", "file", job.Original, "warning", w.String())
		}
		log.Debug("generated", "from", job.Original, "to", job.Generated, "direction", job.Direction.String())

		seq++
		if err := c.recorder.RecordTransform(ctx, report.RunID, TransformRecord{
			Seq:          seq,
			Direction:    job.Direction,
			Original:     job.Original,
			Generated:    job.Generated,
			OriginalTime: job.OriginalTime,
			Digest:       g.Digest,
			Lines:        g.Lines,
			Warnings:     g.Warnings,
		}); err != nil {
			return fmt.Errorf("record transform: %w", err)
		}
	}

	if err := c.CheckInputs(report.Jobs); err != nil {
		return err
	}

	created, err := c.stamp(report.Stamp, report.Jobs)
	if err != nil {
		return err
	}
	report.StampCreated = created
	final, err := timestamp.StatState(c.abs(c.stampPath))
	if err != nil {
		return mtimeError(c.stampPath, err)
	}
	report.FinalStamp = final
	return nil
}

// gather walks both roots and fills plan with the needed transforms.
// Sources come before literate files; within a root the walk is lexical.
func (c *Context) gather(ctx context.Context, plan *Plan) error {
	var stamp *timestamp.Timestamp
	if t, ok := plan.Stamp.Time(); ok {
		stamp = &t
	}

	passes := []struct {
		dir       string
		ext       string
		direction convert.Direction
	}{
		{c.layout.SourceDir, c.layout.SourceExt, convert.SourceToLiterate},
		{c.layout.LiterateDir, c.layout.LiterateExt, convert.LiterateToSource},
	}
	for _, pass := range passes {
		files, err := c.list(pass.dir, pass.ext)
		if err != nil {
			return err
		}
		for _, original := range files {
			if err := ctx.Err(); err != nil {
				return err
			}
			job, ok, err := c.transform(original, pass.direction)
			if err != nil {
				return err
			}
			if !ok {
				c.logger.Warn("skipping non-existent source", "path", original)
				plan.Skipped = append(plan.Skipped, original)
				continue
			}

			d, err := reconcile.Check(job.Transform, stamp)
			if err != nil {
				return &Error{Kind: ErrKindCheckInput, Path: original, Err: err}
			}
			for _, note := range d.Notes {
				c.logger.Warn(note)
			}
			plan.Notes = append(plan.Notes, d.Notes...)
			if d.Need == reconcile.Needed {
				plan.Jobs = append(plan.Jobs, job)
			}
		}
	}
	return nil
}

// list returns the non-hidden files under dir with extension ext. Paths are
// dir joined with the path below it, so they stay root-relative when dir is
// and map through the layout either way.
func (c *Context) list(dir, ext string) ([]string, error) {
	var files []string
	top := c.abs(dir)
	err := filepath.WalkDir(top, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != top && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			c.logger.Debug("skipping hidden file", "path", path)
			return nil
		}
		if d.IsDir() || filepath.Ext(path) != "."+ext {
			return nil
		}
		rel, err := filepath.Rel(top, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.Join(dir, rel))
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		c.logger.Debug("directory does not exist", "path", dir)
		return nil, nil
	}
	if err != nil {
		return nil, ioError(dir, err)
	}
	return files, nil
}

// transform reads the clocks for original and its target. ok is false when
// the original does not exist, e.g. a dangling symlink.
func (c *Context) transform(original string, d convert.Direction) (Job, bool, error) {
	src, err := timestamp.StatState(c.abs(original))
	if err != nil {
		return Job{}, false, mtimeError(original, err)
	}
	srcTime, ok := src.Time()
	if !ok {
		return Job{}, false, nil
	}
	target := c.layout.Target(original, d)
	tgt, err := timestamp.StatState(c.abs(target))
	if err != nil {
		return Job{}, false, mtimeError(target, err)
	}
	return Job{
		Transform: reconcile.Transform{
			Original:      original,
			Generated:     target,
			OriginalTime:  srcTime,
			GeneratedTime: tgt,
		},
		Direction: d,
	}, true, nil
}

// generate converts one file and gives the result its original's mtime.
func (c *Context) generate(job Job) (Generated, error) {
	g := Generated{Job: job}

	in, err := os.Open(c.abs(job.Original))
	if err != nil {
		return g, ioError(job.Original, err)
	}
	defer in.Close()

	target := c.abs(job.Generated)
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return g, ioError(job.Generated, err)
	}
	out, err := os.Create(target)
	if err != nil {
		return g, ioError(job.Generated, err)
	}

	digest := newDigest(DomainGenerated)
	res, err := job.Direction.Convert(in, io.MultiWriter(out, digest), c.syntax)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return g, ioError(job.Generated, err)
	}
	g.Digest = sumHex(digest)
	g.Lines = res.Lines
	g.Warnings = res.Warnings

	if err := job.OriginalTime.Apply(target); err != nil {
		return g, mtimeError(job.Generated, err)
	}
	return g, nil
}

// CheckInputs fails if any original's modification time differs from the
// one captured when jobs were gathered.
func (c *Context) CheckInputs(jobs []Job) error {
	for _, job := range jobs {
		now, err := timestamp.StatState(c.abs(job.Original))
		if err != nil {
			return mtimeError(job.Original, err)
		}
		if t, ok := now.Time(); !ok || !t.Equal(job.OriginalTime) {
			return &Error{
				Kind:    ErrKindConcurrentUpdate,
				Path:    job.Original,
				OldTime: job.OriginalTime,
				NewTime: now,
			}
		}
	}
	return nil
}

// stamp creates the stamp file if the pass started without one and moves
// its mtime to the newest original among jobs.
func (c *Context) stamp(before timestamp.State, jobs []Job) (created bool, err error) {
	path := c.abs(c.stampPath)
	if !before.Exists() {
		f, err := os.Create(path)
		if err != nil {
			return false, ioError(c.stampPath, err)
		}
		if err := f.Close(); err != nil {
			return false, ioError(c.stampPath, err)
		}
		created = true
	}
	if len(jobs) == 0 {
		return created, nil
	}

	newest := jobs[0].OriginalTime
	for _, job := range jobs[1:] {
		if job.OriginalTime.After(newest) {
			newest = job.OriginalTime
		}
	}
	if err := newest.Apply(path); err != nil {
		return created, mtimeError(c.stampPath, err)
	}
	return created, nil
}
