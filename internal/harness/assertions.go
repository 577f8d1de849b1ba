package harness

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/roach88/tango/internal/timestamp"
)

// evaluate checks every assertion and returns failure messages.
func (h *Harness) evaluate(ctx context.Context, assertions []Assertion) []string {
	var failures []string
	for i, a := range assertions {
		if err := h.check(ctx, a); err != nil {
			failures = append(failures, fmt.Sprintf("assertion %d (%s %s): %v", i, a.Type, a.Path, err))
		}
	}
	return failures
}

func (h *Harness) check(ctx context.Context, a Assertion) error {
	switch a.Type {
	case AssertExists:
		_, err := os.Stat(h.path(a.Path))
		return err

	case AssertMissing:
		_, err := os.Stat(h.path(a.Path))
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		if err != nil {
			return err
		}
		return fmt.Errorf("file exists")

	case AssertContent:
		data, err := os.ReadFile(h.path(a.Path))
		if err != nil {
			return err
		}
		if string(data) != a.Content {
			return fmt.Errorf("expected content %q, got %q", a.Content, string(data))
		}
		return nil

	case AssertMTime:
		got, err := timestamp.Stat(h.path(a.Path))
		if err != nil {
			return err
		}
		if !got.Equal(a.MTime.Timestamp) {
			return fmt.Errorf("expected mtime %s, got %s", a.MTime.Timestamp, got)
		}
		return nil

	case AssertSameMTime:
		got, err := timestamp.Stat(h.path(a.Path))
		if err != nil {
			return err
		}
		want, err := timestamp.Stat(h.path(a.Other))
		if err != nil {
			return err
		}
		if !got.Equal(want) {
			return fmt.Errorf("expected mtime of %s (%s), got %s", a.Other, want, got)
		}
		return nil

	case AssertJournalRuns:
		if h.journal == nil {
			return fmt.Errorf("no journal")
		}
		runs, err := h.journal.RecentRuns(ctx, a.Count+1)
		if err != nil {
			return err
		}
		if len(runs) != a.Count {
			return fmt.Errorf("expected %d runs, got %d", a.Count, len(runs))
		}
		return nil
	}
	return fmt.Errorf("unknown assertion type %q", a.Type)
}
