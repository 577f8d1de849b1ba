package harness

import "github.com/roach88/tango/internal/engine"

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass is true if every expectation and assertion held.
	Pass bool

	// Errors describes each failed expectation.
	Errors []string

	// Reports holds one report per run step.
	Reports []*engine.Report

	// Logs is everything the engine logged.
	Logs string
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{Pass: true, Errors: []string{}}
}

// AddError adds a failure and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
