package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/tango/internal/reconcile"
	"github.com/roach88/tango/internal/timestamp"
)

// ErrorKind categorizes pass failures.
type ErrorKind string

const (
	// ErrKindIO: a file could not be opened, read, created or written.
	ErrKindIO ErrorKind = "IO"

	// ErrKindCheckInput: reconciliation refused a transform. Err is a
	// *reconcile.ConflictError.
	ErrKindCheckInput ErrorKind = "CHECK_INPUT"

	// ErrKindMtime: a modification time could not be read or set.
	ErrKindMtime ErrorKind = "MTIME"

	// ErrKindConcurrentUpdate: an original changed while the pass ran.
	ErrKindConcurrentUpdate ErrorKind = "CONCURRENT_UPDATE"
)

// Error is the single error type returned by Context. The underlying cause,
// when there is one, is available through Unwrap.
type Error struct {
	Kind ErrorKind

	// Path is the file involved.
	Path string

	// OldTime and NewTime are set for ErrKindConcurrentUpdate. NewTime is
	// missing when the original disappeared.
	OldTime timestamp.Timestamp
	NewTime timestamp.State

	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch e.Kind {
	case ErrKindConcurrentUpdate:
		return fmt.Sprintf("%s: %s changed during the run (was %s, now %s)",
			e.Kind, e.Path, e.OldTime, e.NewTime)
	case ErrKindCheckInput:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error { return e.Err }

func ioError(path string, err error) *Error {
	return &Error{Kind: ErrKindIO, Path: path, Err: err}
}

func mtimeError(path string, err error) *Error {
	return &Error{Kind: ErrKindMtime, Path: path, Err: err}
}

// IsConcurrentUpdate returns true if err is a concurrent update error.
// Uses errors.As to handle wrapped errors.
func IsConcurrentUpdate(err error) bool {
	return hasKind(err, ErrKindConcurrentUpdate)
}

// IsCheckInput returns true if reconciliation refused a transform.
func IsCheckInput(err error) bool {
	return hasKind(err, ErrKindCheckInput)
}

// IsIO returns true if err is a file I/O failure.
func IsIO(err error) bool {
	return hasKind(err, ErrKindIO)
}

func hasKind(err error, kind ErrorKind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// ErrorCode names the failure of a pass: the conflict code for refused
// transforms, otherwise the error kind. Nil maps to "" and errors from
// outside the engine to "UNKNOWN".
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var ce *reconcile.ConflictError
	if errors.As(err, &ce) {
		return string(ce.Code)
	}
	var e *Error
	if errors.As(err, &e) {
		return string(e.Kind)
	}
	return "UNKNOWN"
}
