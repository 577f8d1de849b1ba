package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/tango/internal/engine"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions

	// ExitCode makes pending transforms fail the command.
	ExitCode bool
}

// CheckResult lists what a sync pass would do.
type CheckResult struct {
	Stamp   string        `json:"stamp"`
	Pending []PendingFile `json:"pending"`
	Skipped []string      `json:"skipped,omitempty"`
	Notes   []string      `json:"notes,omitempty"`
}

// PendingFile is a transform a sync pass would run.
type PendingFile struct {
	Direction     string `json:"direction"`
	Original      string `json:"original"`
	Generated     string `json:"generated"`
	OriginalTime  string `json:"original_time"`
	GeneratedTime string `json:"generated_time"`
}

func newCheckResult(plan *engine.Plan) CheckResult {
	res := CheckResult{
		Stamp:   plan.Stamp.String(),
		Pending: make([]PendingFile, 0, len(plan.Jobs)),
		Skipped: plan.Skipped,
		Notes:   plan.Notes,
	}
	for _, job := range plan.Jobs {
		res.Pending = append(res.Pending, PendingFile{
			Direction:     job.Direction.String(),
			Original:      job.Original,
			Generated:     job.Generated,
			OriginalTime:  job.OriginalTime.String(),
			GeneratedTime: job.GeneratedTime.String(),
		})
	}
	return res
}

func (r CheckResult) String() string {
	if len(r.Pending) == 0 {
		return "Everything is up to date."
	}
	var b strings.Builder
	for _, p := range r.Pending {
		fmt.Fprintf(&b, "%s -> %s (%s)\n", p.Original, p.Generated, p.Direction)
	}
	fmt.Fprintf(&b, "%d file(s) would be generated", len(r.Pending))
	return b.String()
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Show what sync would regenerate without writing anything",
		Long: `Reconcile the project tree without writing anything.

Lists the transforms a sync pass would run. Conflicts are reported exactly
as sync would report them.

Examples:
  tango check
  tango check --exit-code   # fail when anything is out of date`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.ExitCode, "exit-code", false, "exit with status 1 if any file is out of date")

	return cmd
}

func runCheck(opts *CheckOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	p, err := openProject(opts.RootOptions, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer p.Close()
	formatter.VerboseLog("config: %s", p.describeConfig())

	plan, err := p.engine(nil).Plan(cmd.Context())
	if err != nil {
		return formatter.Fail("check failed", err)
	}

	result := newCheckResult(plan)
	if err := formatter.Success(result); err != nil {
		return WrapExitError(ExitCommandError, "failed to write output", err)
	}

	if opts.ExitCode && len(result.Pending) > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d file(s) out of date", len(result.Pending)))
	}
	return nil
}
