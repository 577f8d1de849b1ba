package harness

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/tango/internal/timestamp"
)

// Snapshot renders every non-hidden file under dir, sorted by path, as
//
//	== path @ mtime
//	content
//
// The stamp file is included, so its final time is pinned too.
func Snapshot(dir string) ([]byte, error) {
	var b strings.Builder
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path != dir && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		ts, err := timestamp.Stat(path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		fmt.Fprintf(&b, "== %s @ %d.%09d\n", filepath.ToSlash(rel), ts.Seconds, ts.Nanoseconds)
		b.Write(data)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return []byte(b.String()), nil
}

// RunWithGolden executes a scenario in a temporary directory, fails the test
// if any expectation failed, and compares the final tree against
// testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) *Result {
	t.Helper()

	dir := t.TempDir()
	result, err := Run(scenario, dir)
	if err != nil {
		t.Fatalf("scenario %s: %v", scenario.Name, err)
	}
	if !result.Pass {
		t.Fatalf("scenario %s failed:\n%s\nlogs:\n%s", scenario.Name, strings.Join(result.Errors, "\n"), result.Logs)
	}

	snapshot, err := Snapshot(dir)
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, snapshot)
	return result
}
