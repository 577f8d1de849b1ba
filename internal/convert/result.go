package convert

import "fmt"

// WarningKind categorises non-fatal conversion findings.
type WarningKind string

const (
	// WarnEncodingMismatch: a named link's URL does not encode the block above it.
	WarnEncodingMismatch WarningKind = "ENCODING_MISMATCH"

	// WarnDiscardedBlockName: a second block name arrived while one was pending.
	WarnDiscardedBlockName WarningKind = "DISCARDED_BLOCK_NAME"

	// WarnDiscardedMetaNote: a second meta note arrived while one was pending.
	WarnDiscardedMetaNote WarningKind = "DISCARDED_META_NOTE"

	// WarnUnusedAnnotation: input ended with a block name or meta note pending.
	WarnUnusedAnnotation WarningKind = "UNUSED_ANNOTATION"
)

// Warning is a non-fatal finding. Conversion output is still complete.
type Warning struct {
	Kind WarningKind `json:"kind"`

	// Line is the 1-based input line that triggered the warning (0 at end of input).
	Line int `json:"line"`

	// Name is the block name or meta note involved, if any.
	Name string `json:"name,omitempty"`

	// Expected and Actual are set for encoding mismatches.
	Expected string `json:"expected,omitempty"`
	Actual   string `json:"actual,omitempty"`

	// Kept is the annotation that stayed in effect for discards.
	Kept string `json:"kept,omitempty"`
}

func (w Warning) String() string {
	switch w.Kind {
	case WarnEncodingMismatch:
		return fmt.Sprintf("line %d: link %q does not match its code block: expected %s, found %s",
			w.Line, w.Name, w.Expected, w.Actual)
	case WarnDiscardedBlockName:
		return fmt.Sprintf("line %d: discarding block name %q, keeping %q", w.Line, w.Name, w.Kept)
	case WarnDiscardedMetaNote:
		return fmt.Sprintf("line %d: discarding meta note %q, keeping %q", w.Line, w.Name, w.Kept)
	case WarnUnusedAnnotation:
		return fmt.Sprintf("annotation %q is not followed by a code block", w.Name)
	}
	return fmt.Sprintf("line %d: %s", w.Line, w.Kind)
}

// Result reports what a conversion found besides its output.
type Result struct {
	Warnings []Warning
	Lines    int
}

func (r *Result) warn(w Warning) {
	r.Warnings = append(r.Warnings, w)
}

// TransitionError reports an illegal state change. The converters only move
// between states along legal edges, so seeing one means a bug.
type TransitionError struct {
	From string
	To   string
	Line int
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid transition %s -> %s at line %d", e.From, e.To, e.Line)
}
