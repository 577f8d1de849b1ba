package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const passingScenario = `name: lone_source
description: a lone source file is converted
steps:
  - write:
      path: src/lib.rs
      mtime: "1000000"
      content: "//@ Hi.\n"
  - run:
      expect_generated: [src/lib.md]
assertions:
  - type: content
    path: src/lib.md
    content: "Hi.\n"
`

const failingScenario = `name: wrong_expectation
description: expects a conflict that never happens
steps:
  - write:
      path: src/lib.rs
      mtime: "1000000"
      content: "//@ Hi.\n"
  - run:
      expect_error: NO_STAMP
`

func writeScenario(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestTestCommandMissingArgs(t *testing.T) {
	buf := &bytes.Buffer{}
	rootOpts := &RootOptions{Format: "text"}
	cmd := NewTestCommand(rootOpts)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestTestCommandNonExistentScenariosDir(t *testing.T) {
	code, _, stderr := execute(t, "test", "/nonexistent/scenarios")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, "scenarios directory not found")
}

func TestTestCommandEmptyScenariosDir(t *testing.T) {
	code, stdout, _ := execute(t, "test", t.TempDir())
	assert.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout, "No scenarios found")
}

func TestTestCommandEmptyScenariosDirJSON(t *testing.T) {
	code, stdout, _ := execute(t, "test", t.TempDir(), "--format", "json")
	assert.Equal(t, ExitSuccess, code)

	var response CLIResponse
	require.NoError(t, json.Unmarshal([]byte(stdout), &response))
	assert.Equal(t, "ok", response.Status)
}

func TestTestCommandRunsScenarios(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "lone_source.yaml", passingScenario)
	writeScenario(t, dir, "wrong_expectation.yaml", failingScenario)

	code, stdout, _ := execute(t, "test", dir)
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stdout, "✓ lone_source")
	assert.Contains(t, stdout, "✗ wrong_expectation")
	assert.Contains(t, stdout, `expected error "NO_STAMP"`)
	assert.Contains(t, stdout, "1 passed, 1 failed, 2 total")

	code, stdout, _ = execute(t, "test", dir, "--filter", "lone_*", "--format", "json")
	assert.Equal(t, ExitSuccess, code)
	var resp response[TestResult]
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, 1, resp.Data.Total)
	assert.Equal(t, 1, resp.Data.Passed)
}

func TestTestCommandGoldenUpdateAndCompare(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "lone_source.yaml", passingScenario)

	code, stdout, _ := execute(t, "test", dir, "--update")
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout, "golden updated")

	golden, err := os.ReadFile(filepath.Join(dir, "golden", "lone_source.golden"))
	require.NoError(t, err)
	assert.Contains(t, string(golden), "== src/lib.md @ 1000000.000000000\nHi.\n")

	code, _, _ = execute(t, "test", dir)
	assert.Equal(t, ExitSuccess, code)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "golden", "lone_source.golden"), []byte("stale\n"), 0o644))
	code, stdout, _ = execute(t, "test", dir)
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stdout, "does not match golden file")
}

func TestTestCommandLoadError(t *testing.T) {
	dir := t.TempDir()
	writeScenario(t, dir, "broken.yaml", "name: [\n")

	code, stdout, _ := execute(t, "test", dir)
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stdout, "✗ broken.yaml")
	assert.Contains(t, stdout, "failed to load scenario")
}

func TestTestCommandHarnessScenarios(t *testing.T) {
	code, stdout, _ := execute(t, "test", filepath.Join("..", "harness", "testdata", "scenarios"))
	assert.Equal(t, ExitSuccess, code, stdout)
	assert.Contains(t, stdout, "0 failed")
}

func TestFindScenarioFiles(t *testing.T) {
	tmpDir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "test1.yaml"), []byte(""), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "test2.yml"), []byte(""), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "ignore.txt"), []byte(""), 0o644))

	files, err := findScenarioFiles(tmpDir, "")
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestFindScenarioFilesWithFilter(t *testing.T) {
	tmpDir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "stamp-older.yaml"), []byte(""), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "stamp-missing.yaml"), []byte(""), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "first-run.yaml"), []byte(""), 0o644))

	files, err := findScenarioFiles(tmpDir, "stamp-*")
	require.NoError(t, err)
	assert.Len(t, files, 2)

	_, err = findScenarioFiles(tmpDir, "[")
	assert.Error(t, err)
}

func TestFindScenarioFilesSkipsGolden(t *testing.T) {
	tmpDir := t.TempDir()
	subDir := filepath.Join(tmpDir, "subdir")
	goldenDir := filepath.Join(tmpDir, "golden")
	require.NoError(t, os.MkdirAll(subDir, 0o755))
	require.NoError(t, os.MkdirAll(goldenDir, 0o755))

	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "root.yaml"), []byte(""), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(subDir, "sub.yaml"), []byte(""), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(goldenDir, "x.yaml"), []byte(""), 0o644))

	files, err := findScenarioFiles(tmpDir, "")
	require.NoError(t, err)
	assert.Len(t, files, 2)
}

func TestGoldenFilePath(t *testing.T) {
	assert.Equal(t, filepath.Join("scenarios", "golden", "first_run.golden"),
		goldenFilePath(filepath.Join("scenarios", "first.yaml"), "first_run"))
}
