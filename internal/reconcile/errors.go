package reconcile

import (
	"errors"
	"fmt"

	"github.com/roach88/tango/internal/timestamp"
)

// ConflictCode categorizes reconciliation conflicts.
type ConflictCode string

const (
	// ErrCodeNoStamp: a stale target exists but no previous run left a stamp,
	// so there is no way to tell which side is authoritative.
	ErrCodeNoStamp ConflictCode = "NO_STAMP"

	// ErrCodeStampOlderThanTarget: the target was modified after the last
	// synchronized run.
	ErrCodeStampOlderThanTarget ConflictCode = "STAMP_OLDER_THAN_TARGET"
)

// ConflictError reports a transform whose target cannot be overwritten
// without losing edits. Resolving it needs a human.
type ConflictError struct {
	Code ConflictCode

	// Original and Generated are the paths of the transform.
	Original  string
	Generated string

	OriginalTime  timestamp.Timestamp
	GeneratedTime timestamp.Timestamp

	// StampTime is set for ErrCodeStampOlderThanTarget.
	StampTime timestamp.Timestamp
}

// Error implements the error interface.
func (e *ConflictError) Error() string {
	switch e.Code {
	case ErrCodeNoStamp:
		return fmt.Sprintf("%s: %s (%s) is older than %s (%s) and no stamp exists",
			e.Code, e.Generated, e.GeneratedTime, e.Original, e.OriginalTime)
	case ErrCodeStampOlderThanTarget:
		return fmt.Sprintf("%s: %s (%s) was modified after the last run at %s",
			e.Code, e.Generated, e.GeneratedTime, e.StampTime)
	}
	return fmt.Sprintf("%s: %s <- %s", e.Code, e.Generated, e.Original)
}

// IsConflict returns true if err is or wraps a ConflictError.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// IsNoStamp returns true if err is a NO_STAMP conflict.
// Uses errors.As to handle wrapped errors.
func IsNoStamp(err error) bool {
	var ce *ConflictError
	if errors.As(err, &ce) {
		return ce.Code == ErrCodeNoStamp
	}
	return false
}

// IsStampOlderThanTarget returns true if err is a STAMP_OLDER_THAN_TARGET conflict.
func IsStampOlderThanTarget(err error) bool {
	var ce *ConflictError
	if errors.As(err, &ce) {
		return ce.Code == ErrCodeStampOlderThanTarget
	}
	return false
}
