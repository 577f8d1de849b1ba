package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/roach88/tango/internal/engine"
	"github.com/roach88/tango/internal/reconcile"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Sync failure (conflict, concurrent update, warnings under --strict, failed scenarios)
	ExitCommandError = 2 // Command error (bad flags, invalid config, unreadable files)
)

// ExitError represents an error with a specific exit code.
// Use this to return errors with meaningful exit codes from CLI commands.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)

	reported bool // already written by an OutputFormatter
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitSuccess for nil and ExitFailure if the error is not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer // Separate writer for diagnostic output (defaults to Writer)
	Verbose   bool
	RunID     string // set once a sync pass has started
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`           // "ok" or "error"
	Data   any       `json:"data,omitempty"`   // success payload
	Error  *CLIError `json:"error,omitempty"`  // error details
	RunID  string    `json:"run_id,omitempty"` // journal run of a sync pass
}

// CLIError is the error structure for CLI responses.
type CLIError struct {
	Code    string `json:"code"`              // "NO_STAMP", "CONCURRENT_UPDATE", "CONFIG", ...
	Message string `json:"message"`           // human-readable message
	Details any    `json:"details,omitempty"` // additional context
}

// Success outputs a successful result in the configured format.
func (f *OutputFormatter) Success(data any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "ok",
			Data:   data,
			RunID:  f.RunID,
		})
	}

	// Human-readable text output
	_, err := fmt.Fprintln(f.Writer, data)
	return err
}

// Error outputs an error in the configured format.
func (f *OutputFormatter) Error(code, message string, details any) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error: &CLIError{
				Code:    code,
				Message: message,
				Details: details,
			},
			RunID: f.RunID,
		})
	}

	// Human-readable error
	fmt.Fprintf(f.GetErrWriter(), "Error [%s]: %s\n", code, message)
	if f.RunID != "" {
		fmt.Fprintf(f.GetErrWriter(), "Run: %s\n", f.RunID)
	}
	if f.Verbose && details != nil {
		fmt.Fprintf(f.GetErrWriter(), "Details: %v\n", details)
	}
	return nil
}

// VerboseLog outputs a message only if verbose mode is enabled.
// Uses ErrWriter if set, otherwise falls back to Writer.
// When format is JSON, verbose logs go to ErrWriter to avoid corrupting JSON output.
func (f *OutputFormatter) VerboseLog(format string, args ...any) {
	if !f.Verbose {
		return
	}
	fmt.Fprintf(f.GetErrWriter(), format+"\n", args...)
}

// GetErrWriter returns the appropriate writer for diagnostic output.
// Returns ErrWriter if set, otherwise Writer.
func (f *OutputFormatter) GetErrWriter() io.Writer {
	if f.ErrWriter != nil {
		return f.ErrWriter
	}
	return f.Writer
}

// Fail reports a pass failure and returns the matching ExitError. Conflicts
// and concurrent updates exit with ExitFailure; anything else the engine
// reports (I/O, mtimes) is a command error.
func (f *OutputFormatter) Fail(message string, err error) error {
	code := engine.ErrorCode(err)
	_ = f.Error(code, fmt.Sprintf("%s: %v", message, err), failureDetails(err))

	exit := ExitCommandError
	if reconcile.IsConflict(err) || engine.IsConcurrentUpdate(err) {
		exit = ExitFailure
	}
	e := WrapExitError(exit, message, err)
	e.reported = true
	return e
}

// ConflictDetails is the JSON shape of a refused transform.
type ConflictDetails struct {
	Original      string `json:"original"`
	Generated     string `json:"generated"`
	OriginalTime  string `json:"original_time"`
	GeneratedTime string `json:"generated_time"`
	StampTime     string `json:"stamp_time,omitempty"`
}

// ConcurrentUpdateDetails is the JSON shape of an original that changed
// during the pass.
type ConcurrentUpdateDetails struct {
	Path    string `json:"path"`
	OldTime string `json:"old_time"`
	NewTime string `json:"new_time"`
}

func failureDetails(err error) any {
	var ce *reconcile.ConflictError
	if errors.As(err, &ce) {
		d := ConflictDetails{
			Original:      ce.Original,
			Generated:     ce.Generated,
			OriginalTime:  ce.OriginalTime.String(),
			GeneratedTime: ce.GeneratedTime.String(),
		}
		if ce.Code == reconcile.ErrCodeStampOlderThanTarget {
			d.StampTime = ce.StampTime.String()
		}
		return d
	}
	var ee *engine.Error
	if errors.As(err, &ee) && ee.Kind == engine.ErrKindConcurrentUpdate {
		return ConcurrentUpdateDetails{
			Path:    ee.Path,
			OldTime: ee.OldTime.String(),
			NewTime: ee.NewTime.String(),
		}
	}
	return nil
}
