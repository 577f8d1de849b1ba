package reconcile

import (
	"fmt"

	"github.com/roach88/tango/internal/timestamp"
)

// Transform pairs an original file with the file generated from it.
type Transform struct {
	Original  string
	Generated string

	// OriginalTime is the mtime of Original when the transform was gathered.
	OriginalTime timestamp.Timestamp

	// GeneratedTime is the mtime of Generated, or missing.
	GeneratedTime timestamp.State
}

func (t Transform) String() string {
	return fmt.Sprintf("%s -> %s", t.Original, t.Generated)
}

// Need is the outcome of a successful check.
type Need int

const (
	Unneeded Need = iota
	Needed
)

func (n Need) String() string {
	if n == Needed {
		return "needed"
	}
	return "unneeded"
}

// Decision is a Need plus any precision-tolerance diagnostics that were
// applied on the way. Notes never change the outcome.
type Decision struct {
	Need  Need
	Notes []string
}

// Check decides whether t must be regenerated, given the stamp left by the
// previous run (nil when there is none).
func Check(t Transform, stamp *timestamp.Timestamp) (Decision, error) {
	target, ok := t.GeneratedTime.Time()
	if !ok {
		return Decision{Need: Needed}, nil
	}
	source := t.OriginalTime

	if target.LowPrecisionEqual(source) {
		d := Decision{Need: Unneeded}
		if !target.Equal(source) {
			d.Notes = append(d.Notes, fmt.Sprintf(
				"%s (%s) and %s (%s) differ only below millisecond precision; treating as up to date",
				t.Generated, target, t.Original, source))
		}
		return d, nil
	}
	if target.After(source) {
		return Decision{Need: Unneeded}, nil
	}

	// The target is older than the original. Overwriting it is safe only if
	// the last run saw it.
	if stamp == nil {
		return Decision{}, &ConflictError{
			Code:          ErrCodeNoStamp,
			Original:      t.Original,
			Generated:     t.Generated,
			OriginalTime:  source,
			GeneratedTime: target,
		}
	}
	if stamp.Millis() < target.Millis() {
		return Decision{}, &ConflictError{
			Code:          ErrCodeStampOlderThanTarget,
			Original:      t.Original,
			Generated:     t.Generated,
			OriginalTime:  source,
			GeneratedTime: target,
			StampTime:     *stamp,
		}
	}

	d := Decision{Need: Needed}
	if stamp.Before(target) {
		d.Notes = append(d.Notes, fmt.Sprintf(
			"stamp (%s) is older than %s (%s) only below millisecond precision; proceeding",
			stamp, t.Generated, target))
	}
	return d, nil
}
