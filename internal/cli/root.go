package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	// Root is the project directory.
	Root string

	// Config is an explicit config file; empty means look for one in Root.
	Config string

	// Overrides for the corresponding config keys; empty keeps the file value.
	SourceDir   string
	LiterateDir string
	Lang        string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the tango CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "tango",
		Short: "tango - keep commented sources and literate markdown in step",
		Long: `tango keeps two views of the same code in sync: source files whose prose
lives in //@ comments, and markdown files whose code lives in fenced blocks.
Whichever side was edited last is regenerated into the other.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVarP(&opts.Root, "root", "C", ".", "project directory")
	cmd.PersistentFlags().StringVar(&opts.Config, "config", "", "config file (default: tango.yaml, tango.yml or tango.toml in the project directory)")
	cmd.PersistentFlags().StringVar(&opts.SourceDir, "source-dir", "", "override source_dir")
	cmd.PersistentFlags().StringVar(&opts.LiterateDir, "literate-dir", "", "override literate_dir")
	cmd.PersistentFlags().StringVar(&opts.Lang, "lang", "", "override the fence language")

	// Add subcommands
	cmd.AddCommand(NewSyncCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewConvertCommand(opts))
	cmd.AddCommand(NewLogCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// Execute runs the CLI with args and returns the process exit code. Errors
// not already reported by a command are written to stderr.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCommand()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}

	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		// Flag and argument errors from cobra.
		err = WrapExitError(ExitCommandError, "invalid usage", err)
	} else if exitErr.reported {
		return exitErr.Code
	}
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return GetExitCode(err)
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Diagnostics go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}
}
