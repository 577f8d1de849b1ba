package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/tango/internal/journal"
)

// LogOptions holds flags for the log command.
type LogOptions struct {
	*RootOptions
	Limit int
	File  string // show the generation history of one original
}

// RunEntry is a journal run as printed by log.
type RunEntry struct {
	ID          string `json:"id"`
	StartedAt   string `json:"started_at"`
	FinishedAt  string `json:"finished_at,omitempty"`
	Status      string `json:"status"`
	Error       string `json:"error,omitempty"`
	Generated   int    `json:"generated"`
	StampBefore string `json:"stamp_before"`
	StampAfter  string `json:"stamp_after"`
}

// RunList is the output of log without arguments.
type RunList struct {
	Runs []RunEntry `json:"runs"`
}

func (l RunList) String() string {
	if len(l.Runs) == 0 {
		return "No runs recorded."
	}
	var b strings.Builder
	for i, r := range l.Runs {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s  %s  %-7s %d generated", r.ID, r.StartedAt, r.Status, r.Generated)
		if r.Error != "" {
			fmt.Fprintf(&b, "  %s", r.Error)
		}
	}
	return b.String()
}

// TransformEntry is a recorded generation.
type TransformEntry struct {
	RunID        string `json:"run_id"`
	Seq          int64  `json:"seq"`
	Direction    string `json:"direction"`
	Original     string `json:"original"`
	Generated    string `json:"generated"`
	OriginalTime string `json:"original_time"`
	Digest       string `json:"digest"`
	Lines        int    `json:"lines"`
}

// WarningEntry is a recorded converter warning.
type WarningEntry struct {
	Original string `json:"original"`
	Kind     string `json:"kind"`
	Message  string `json:"message"`
}

// RunDetail is the output of log with a run id.
type RunDetail struct {
	Transforms []TransformEntry `json:"transforms"`
	Warnings   []WarningEntry   `json:"warnings"`
}

func (d RunDetail) String() string {
	var b strings.Builder
	for _, t := range d.Transforms {
		fmt.Fprintf(&b, "%3d %s -> %s (%d lines, %s)\n", t.Seq, t.Original, t.Generated, t.Lines, shortDigest(t.Digest))
	}
	for _, w := range d.Warnings {
		fmt.Fprintf(&b, "    %s: warning: %s\n", w.Original, w.Message)
	}
	fmt.Fprintf(&b, "%d file(s), %d warning(s)", len(d.Transforms), len(d.Warnings))
	return b.String()
}

// FileHistory is the output of log --file.
type FileHistory struct {
	Path       string           `json:"path"`
	Transforms []TransformEntry `json:"transforms"`
}

func (h FileHistory) String() string {
	if len(h.Transforms) == 0 {
		return fmt.Sprintf("No generations recorded for %s.", h.Path)
	}
	var b strings.Builder
	for i, t := range h.Transforms {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s  %s  %s -> %s (%s)", t.RunID, t.OriginalTime, t.Original, t.Generated, shortDigest(t.Digest))
	}
	return b.String()
}

func shortDigest(d string) string {
	if len(d) > 12 {
		return d[:12]
	}
	return d
}

// NewLogCommand creates the log command.
func NewLogCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LogOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "log [run-id]",
		Short: "Show the run journal",
		Long: `Show recorded sync passes. Requires a journal in the project config.

Without arguments, lists the most recent runs. With a run id, lists the
files that run generated and the warnings it reported. With --file, lists
every recorded generation from one original.

Examples:
  tango log
  tango log --limit 50
  tango log 01928c2e-...
  tango log --file src/lib.rs`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			runID := ""
			if len(args) == 1 {
				runID = args[0]
			}
			return runLog(opts, runID, cmd)
		},
	}

	cmd.Flags().IntVarP(&opts.Limit, "limit", "n", 10, "number of runs to list")
	cmd.Flags().StringVar(&opts.File, "file", "", "show the history of one original file")

	return cmd
}

func runLog(opts *LogOptions, runID string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	if runID != "" && opts.File != "" {
		return NewExitError(ExitCommandError, "a run id and --file are mutually exclusive")
	}
	if opts.Limit <= 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid --limit %d: must be positive", opts.Limit))
	}

	p, err := loadProject(opts.RootOptions)
	if err != nil {
		return err
	}
	if p.cfg.Journal == "" {
		return NewExitError(ExitCommandError, "no journal configured (set journal in the project config)")
	}
	j, err := p.openJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	ctx := cmd.Context()
	var out any
	switch {
	case opts.File != "":
		transforms, err := j.History(ctx, opts.File)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read journal", err)
		}
		out = FileHistory{Path: opts.File, Transforms: transformEntries(transforms)}
	case runID != "":
		transforms, err := j.RunTransforms(ctx, runID)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read journal", err)
		}
		warnings, err := j.RunWarnings(ctx, runID)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read journal", err)
		}
		detail := RunDetail{Transforms: transformEntries(transforms), Warnings: []WarningEntry{}}
		for _, w := range warnings {
			detail.Warnings = append(detail.Warnings, WarningEntry{
				Original: w.Original,
				Kind:     string(w.Kind),
				Message:  w.Warning.String(),
			})
		}
		out = detail
	default:
		runs, err := j.RecentRuns(ctx, opts.Limit)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to read journal", err)
		}
		list := RunList{Runs: []RunEntry{}}
		for _, r := range runs {
			list.Runs = append(list.Runs, runEntry(r))
		}
		out = list
	}

	if err := formatter.Success(out); err != nil {
		return WrapExitError(ExitCommandError, "failed to write output", err)
	}
	return nil
}

func runEntry(r journal.Run) RunEntry {
	e := RunEntry{
		ID:          r.ID,
		StartedAt:   r.StartedAt.Format(time.RFC3339),
		Status:      string(r.Status),
		Error:       r.Error,
		Generated:   r.Generated,
		StampBefore: r.StampBefore.String(),
		StampAfter:  r.StampAfter.String(),
	}
	if !r.FinishedAt.IsZero() {
		e.FinishedAt = r.FinishedAt.Format(time.RFC3339)
	}
	return e
}

func transformEntries(ts []journal.Transform) []TransformEntry {
	out := make([]TransformEntry, 0, len(ts))
	for _, t := range ts {
		out = append(out, TransformEntry{
			RunID:        t.RunID,
			Seq:          t.Seq,
			Direction:    t.Direction.String(),
			Original:     t.Original,
			Generated:    t.Generated,
			OriginalTime: t.OriginalTime.String(),
			Digest:       t.Digest,
			Lines:        t.Lines,
		})
	}
	return out
}
