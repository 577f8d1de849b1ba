package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/tango/internal/convert"
	"github.com/roach88/tango/internal/engine"
)

// SyncOptions holds flags for the sync command.
type SyncOptions struct {
	*RootOptions

	// Strict turns conversion warnings into a failing exit code.
	Strict bool
}

// SyncResult is the outcome of a sync pass.
type SyncResult struct {
	RunID        string          `json:"run_id"`
	Generated    []GeneratedFile `json:"generated"`
	Skipped      []string        `json:"skipped,omitempty"`
	Notes        []string        `json:"notes,omitempty"`
	Warnings     int             `json:"warnings"`
	Stamp        string          `json:"stamp"`
	StampCreated bool            `json:"stamp_created"`
}

// GeneratedFile is one file written by a pass.
type GeneratedFile struct {
	Direction string            `json:"direction"`
	Original  string            `json:"original"`
	Generated string            `json:"generated"`
	Lines     int               `json:"lines"`
	Digest    string            `json:"digest"`
	Warnings  []convert.Warning `json:"warnings,omitempty"`
}

func newSyncResult(r *engine.Report) SyncResult {
	res := SyncResult{
		RunID:        r.RunID,
		Generated:    make([]GeneratedFile, 0, len(r.Generated)),
		Skipped:      r.Skipped,
		Notes:        r.Notes,
		Warnings:     r.WarningCount(),
		Stamp:        r.FinalStamp.String(),
		StampCreated: r.StampCreated,
	}
	for _, g := range r.Generated {
		res.Generated = append(res.Generated, GeneratedFile{
			Direction: g.Direction.String(),
			Original:  g.Original,
			Generated: g.Generated,
			Lines:     g.Lines,
			Digest:    g.Digest,
			Warnings:  g.Warnings,
		})
	}
	return res
}

func (r SyncResult) String() string {
	var b strings.Builder
	for _, g := range r.Generated {
		fmt.Fprintf(&b, "%s -> %s (%d lines)\n", g.Original, g.Generated, g.Lines)
		for _, w := range g.Warnings {
			fmt.Fprintf(&b, "  warning: %s\n", w)
		}
	}
	for _, s := range r.Skipped {
		fmt.Fprintf(&b, "skipped %s\n", s)
	}
	if len(r.Generated) == 0 {
		b.WriteString("Everything is up to date.")
	} else {
		fmt.Fprintf(&b, "✓ %d file(s) generated, %d warning(s)", len(r.Generated), r.Warnings)
	}
	if r.StampCreated {
		b.WriteString(" (stamp created)")
	}
	return b.String()
}

// NewSyncCommand creates the sync command.
func NewSyncCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SyncOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Regenerate whichever side of each file pair is out of date",
		Long: `Synchronize the project tree.

Every source file is compared with its literate counterpart and vice versa.
The newer side is converted into the older one, the target is backdated to
the original's modification time, and the stamp file records the pass.

A target modified since the last pass is never overwritten: the pass stops
with a conflict (NO_STAMP or STAMP_OLDER_THAN_TARGET) before writing anything.

Exit codes:
  0 - Synchronized
  1 - Conflict, concurrent update, or warnings with --strict
  2 - Command error (invalid config, I/O failure)

Examples:
  tango sync
  tango sync -C ./my-crate --strict
  tango sync --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "exit with status 1 if any conversion warning was reported")

	return cmd
}

func runSync(opts *SyncOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	p, err := openProject(opts.RootOptions, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer p.Close()
	formatter.VerboseLog("config: %s", p.describeConfig())

	j, err := p.openJournal()
	if err != nil {
		return err
	}
	var rec engine.Recorder
	if j != nil {
		defer j.Close()
		rec = j
	}

	report, err := p.engine(rec).Run(cmd.Context())
	formatter.RunID = report.RunID
	formatter.VerboseLog("run %s, stamp %s", report.RunID, report.Stamp)
	if err != nil {
		return formatter.Fail("sync failed", err)
	}

	result := newSyncResult(report)
	if err := formatter.Success(result); err != nil {
		return WrapExitError(ExitCommandError, "failed to write output", err)
	}

	if opts.Strict && result.Warnings > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d conversion warning(s) with --strict", result.Warnings))
	}
	return nil
}
