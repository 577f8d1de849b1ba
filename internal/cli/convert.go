package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/tango/internal/convert"
)

// ConvertOptions holds flags for the convert command.
type ConvertOptions struct {
	*RootOptions

	// To is "literate" or "source"; empty infers it from the file extension.
	To string
}

// NewConvertCommand creates the convert command.
func NewConvertCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ConvertOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "convert <file>",
		Short: "Convert one file and print the result",
		Long: `Convert a single file to the other representation and write it to stdout.

The direction follows the file extension (source_ext converts to literate,
literate_ext to source) unless --to is given. Use "-" to read stdin, which
requires --to. Conversion warnings go to stderr.

Nothing on disk is modified and no stamp is involved.

Examples:
  tango convert src/lib.rs
  tango convert --to source README.md > lib.rs
  cat lib.rs | tango convert --to literate -`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.To, "to", "", "target representation (literate|source)")

	return cmd
}

func runConvert(opts *ConvertOptions, file string, cmd *cobra.Command) error {
	p, err := loadProject(opts.RootOptions)
	if err != nil {
		return err
	}

	dir, err := convertDirection(opts.To, file, p.cfg.SourceExt, p.cfg.LiterateExt)
	if err != nil {
		return WrapExitError(ExitCommandError, "cannot choose a direction", err)
	}

	var in io.Reader = cmd.InOrStdin()
	if file != "-" {
		f, err := os.Open(file)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open input", err)
		}
		defer f.Close()
		in = f
	}

	result, err := dir.Convert(in, cmd.OutOrStdout(), p.cfg.Syntax())
	if err != nil {
		return WrapExitError(ExitCommandError, "conversion failed", err)
	}
	for _, w := range result.Warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "%s: warning: %s\n", file, w)
	}
	return nil
}

func convertDirection(to, file, sourceExt, literateExt string) (convert.Direction, error) {
	switch to {
	case "literate":
		return convert.SourceToLiterate, nil
	case "source":
		return convert.LiterateToSource, nil
	case "":
	default:
		return 0, fmt.Errorf("invalid --to %q: must be literate or source", to)
	}

	ext := strings.TrimPrefix(filepath.Ext(file), ".")
	switch {
	case file == "-":
		return 0, fmt.Errorf("--to is required when reading stdin")
	case ext == sourceExt:
		return convert.SourceToLiterate, nil
	case ext == literateExt:
		return convert.LiterateToSource, nil
	}
	return 0, fmt.Errorf("%s is neither .%s nor .%s; pass --to", file, sourceExt, literateExt)
}
