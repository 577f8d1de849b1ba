package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/tango/internal/testutil"
	"github.com/roach88/tango/internal/timestamp"
)

var (
	time1 = timestamp.FromMillis(1_000_000_000)
	time2 = timestamp.FromMillis(1_000_100_000)
)

const (
	demoSource   = "//@ A demo.\nfn main() {}\n"
	demoLiterate = "A demo.\n```rust\nfn main() {}\n```\n"
)

func execute(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	code = Execute(context.Background(), args, out, errOut)
	return code, out.String(), errOut.String()
}

type response[T any] struct {
	Status string    `json:"status"`
	Data   T         `json:"data"`
	Error  *CLIError `json:"error"`
	RunID  string    `json:"run_id"`
}

func decode[T any](t *testing.T, stdout string) response[T] {
	t.Helper()
	var resp response[T]
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp), stdout)
	return resp
}

func TestSync_FirstRunThenUpToDate(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, filepath.Join(root, "src", "lib.rs"), demoSource, time1)

	code, stdout, stderr := execute(t, "sync", "-C", root)
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Contains(t, stdout, "src/lib.rs -> src/lib.md (2 lines)")
	assert.Contains(t, stdout, "1 file(s) generated, 0 warning(s) (stamp created)")
	assert.Equal(t, demoLiterate, testutil.ReadFile(t, filepath.Join(root, "src", "lib.md")))
	assert.Equal(t, time1, testutil.Mtime(t, filepath.Join(root, "src", "lib.md")))
	assert.Equal(t, time1, testutil.Mtime(t, filepath.Join(root, "tango.stamp")))

	code, stdout, _ = execute(t, "sync", "-C", root)
	require.Equal(t, ExitSuccess, code)
	assert.Equal(t, "Everything is up to date.\n", stdout)
}

func TestSync_JSON(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, filepath.Join(root, "src", "lib.rs"), demoSource, time1)

	code, stdout, _ := execute(t, "sync", "-C", root, "--format", "json")
	require.Equal(t, ExitSuccess, code)

	resp := decode[SyncResult](t, stdout)
	assert.Equal(t, "ok", resp.Status)
	assert.NotEmpty(t, resp.Data.RunID)
	assert.Equal(t, resp.Data.RunID, resp.RunID)
	require.Len(t, resp.Data.Generated, 1)
	g := resp.Data.Generated[0]
	assert.Equal(t, "source->literate", g.Direction)
	assert.Equal(t, filepath.Join("src", "lib.md"), g.Generated)
	assert.Len(t, g.Digest, 64)
	assert.True(t, resp.Data.StampCreated)
	assert.Equal(t, time1.String(), resp.Data.Stamp)
}

func TestSync_ConflictExitsWithFailure(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, filepath.Join(root, "src", "lib.rs"), demoSource, time2)
	testutil.WriteFile(t, filepath.Join(root, "src", "lib.md"), "hand written\n", time1)

	code, stdout, stderr := execute(t, "sync", "-C", root)
	assert.Equal(t, ExitFailure, code)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "Error [NO_STAMP]")
	// Reported once, by the command.
	assert.Equal(t, 1, strings.Count(stderr, "NO_STAMP: "))
	assert.Equal(t, "hand written\n", testutil.ReadFile(t, filepath.Join(root, "src", "lib.md")))
}

func TestSync_ConflictJSON(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, filepath.Join(root, "src", "lib.rs"), demoSource, time2)
	testutil.WriteFile(t, filepath.Join(root, "src", "lib.md"), "hand written\n", time1)

	code, stdout, _ := execute(t, "sync", "-C", root, "--format", "json")
	assert.Equal(t, ExitFailure, code)

	var resp struct {
		Status string `json:"status"`
		Error  struct {
			Code    string          `json:"code"`
			Details ConflictDetails `json:"details"`
		} `json:"error"`
		RunID string `json:"run_id"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.NotEmpty(t, resp.RunID, "the failed run is identified")
	assert.Equal(t, "NO_STAMP", resp.Error.Code)
	assert.Equal(t, filepath.Join("src", "lib.rs"), resp.Error.Details.Original)
	assert.Empty(t, resp.Error.Details.StampTime)
}

func TestSync_VerboseNamesConfigAndRun(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, filepath.Join(root, "src", "lib.rs"), demoSource, time1)

	code, _, stderr := execute(t, "sync", "-C", root, "-v")
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Contains(t, stderr, "config: defaults\n")
	assert.Contains(t, stderr, "run ")
	assert.Contains(t, stderr, ", stamp missing\n")

	_, _, stderr = execute(t, "sync", "-C", root)
	assert.NotContains(t, stderr, "config: defaults")
}

func TestSync_StrictTurnsWarningsIntoFailure(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, filepath.Join(root, "src", "lib.rs"), "//@ text\n//@@@ orphan\n", time1)

	code, stdout, stderr := execute(t, "sync", "-C", root, "--strict")
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stdout, `warning: annotation "orphan" is not followed by a code block`)
	assert.Contains(t, stderr, "1 conversion warning(s) with --strict")
	// The pass itself completed.
	assert.Equal(t, "text\n", testutil.ReadFile(t, filepath.Join(root, "src", "lib.md")))

	// Without --strict the same warnings are not fatal.
	root = t.TempDir()
	testutil.WriteFile(t, filepath.Join(root, "src", "lib.rs"), "//@ text\n//@@@ orphan\n", time1)
	code, _, _ = execute(t, "sync", "-C", root)
	assert.Equal(t, ExitSuccess, code)
}

func TestSync_ConfigFileAndOverrides(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, filepath.Join(root, "tango.toml"), "literate_dir = \"docs\"\n", time1)
	testutil.WriteFile(t, filepath.Join(root, "src", "lib.rs"), demoSource, time1)

	code, _, stderr := execute(t, "sync", "-C", root)
	require.Equal(t, ExitSuccess, code, stderr)
	assert.FileExists(t, filepath.Join(root, "docs", "lib.md"))

	// Flags win over the file.
	code, _, stderr = execute(t, "sync", "-C", root, "--literate-dir", "book", "--lang", "rs")
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Equal(t, "A demo.\n```rs\nfn main() {}\n```\n", testutil.ReadFile(t, filepath.Join(root, "book", "lib.md")))
}

func TestSync_InvalidConfigIsCommandError(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, filepath.Join(root, "tango.yaml"), "colour: blue\n", time1)

	code, _, stderr := execute(t, "sync", "-C", root)
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, "failed to load config")

	code, _, stderr = execute(t, "sync", "-C", t.TempDir(), "--lang", "not a lang")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, "invalid flag override")

	code, _, stderr = execute(t, "sync", "-C", t.TempDir(), "--config", "missing.yaml")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, "failed to load config")
}

func TestSync_LogFile(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, filepath.Join(root, "tango.yaml"), "log_file: .tango/tango.log\n", time1)
	testutil.WriteFile(t, filepath.Join(root, "src", "lib.rs"), demoSource, time1)

	code, _, stderr := execute(t, "sync", "-C", root)
	require.Equal(t, ExitSuccess, code, stderr)
	assert.Contains(t, stderr, "run complete")

	logs := testutil.ReadFile(t, filepath.Join(root, ".tango", "tango.log"))
	assert.Contains(t, logs, `"msg":"run complete"`)
	assert.Contains(t, logs, `"msg":"generated"`)
}

func TestCheck_ListsPendingWithoutWriting(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, filepath.Join(root, "src", "lib.rs"), demoSource, time1)

	code, stdout, _ := execute(t, "check", "-C", root)
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout, "src/lib.rs -> src/lib.md (source->literate)")
	assert.Contains(t, stdout, "1 file(s) would be generated")
	assert.NoFileExists(t, filepath.Join(root, "src", "lib.md"))
	assert.NoFileExists(t, filepath.Join(root, "tango.stamp"))

	code, _, stderr := execute(t, "check", "-C", root, "--exit-code")
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stderr, "1 file(s) out of date")
}

func TestCheck_JSON(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, filepath.Join(root, "src", "lib.rs"), demoSource, time1)

	code, stdout, _ := execute(t, "check", "-C", root, "--format", "json")
	require.Equal(t, ExitSuccess, code)

	resp := decode[CheckResult](t, stdout)
	assert.Equal(t, "missing", resp.Data.Stamp)
	require.Len(t, resp.Data.Pending, 1)
	assert.Equal(t, "missing", resp.Data.Pending[0].GeneratedTime)
	assert.Equal(t, time1.String(), resp.Data.Pending[0].OriginalTime)
}

func TestCheck_ReportsConflicts(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, filepath.Join(root, "src", "lib.rs"), demoSource, time2)
	testutil.WriteFile(t, filepath.Join(root, "src", "lib.md"), "hand written\n", time1)

	code, _, stderr := execute(t, "check", "-C", root)
	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, stderr, "Error [NO_STAMP]")
}

func TestConvert_InfersDirection(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "lib.rs")
	testutil.WriteFile(t, src, demoSource, time1)
	lit := filepath.Join(root, "lib.md")
	testutil.WriteFile(t, lit, demoLiterate, time1)

	code, stdout, _ := execute(t, "convert", "-C", root, src)
	require.Equal(t, ExitSuccess, code)
	assert.Equal(t, demoLiterate, stdout)

	code, stdout, _ = execute(t, "convert", "-C", root, lit)
	require.Equal(t, ExitSuccess, code)
	assert.Equal(t, demoSource, stdout)

	// Nothing is written or stamped.
	assert.NoFileExists(t, filepath.Join(root, "tango.stamp"))
}

func TestConvert_Stdin(t *testing.T) {
	cmd := NewRootCommand()
	out := &bytes.Buffer{}
	cmd.SetIn(strings.NewReader(demoLiterate))
	cmd.SetOut(out)
	cmd.SetArgs([]string{"convert", "-C", t.TempDir(), "--to", "source", "-"})

	require.NoError(t, cmd.Execute())
	assert.Equal(t, demoSource, out.String())
}

func TestConvert_WarningsGoToStderr(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "lib.rs")
	testutil.WriteFile(t, src, "//@ text\n//@@@ orphan\n", time1)

	code, stdout, stderr := execute(t, "convert", "-C", root, src)
	require.Equal(t, ExitSuccess, code)
	assert.Equal(t, "text\n", stdout)
	assert.Contains(t, stderr, `warning: annotation "orphan"`)
}

func TestConvert_Errors(t *testing.T) {
	root := t.TempDir()
	txt := filepath.Join(root, "notes.txt")
	testutil.WriteFile(t, txt, "hello\n", time1)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown extension", []string{txt}, "pass --to"},
		{"stdin without --to", []string{"-"}, "--to is required"},
		{"bad --to", []string{"--to", "html", txt}, `invalid --to "html"`},
		{"missing file", []string{"--to", "source", filepath.Join(root, "nope.md")}, "failed to open input"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"convert", "-C", root}, tt.args...)
			code, _, stderr := execute(t, args...)
			assert.Equal(t, ExitCommandError, code)
			assert.Contains(t, stderr, tt.want)
		})
	}
}

func TestLog_RequiresJournal(t *testing.T) {
	code, _, stderr := execute(t, "log", "-C", t.TempDir())
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, "no journal configured")
}

func TestLog_ShowsRecordedRuns(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, filepath.Join(root, "tango.yaml"), "journal: .tango/journal.db\n", time1)
	testutil.WriteFile(t, filepath.Join(root, "src", "lib.rs"), "//@ text\n//@@@ orphan\n", time1)

	code, stdout, stderr := execute(t, "sync", "-C", root, "--format", "json")
	require.Equal(t, ExitSuccess, code, stderr)
	runID := decode[SyncResult](t, stdout).Data.RunID

	code, stdout, _ = execute(t, "log", "-C", root, "--format", "json")
	require.Equal(t, ExitSuccess, code)
	runs := decode[RunList](t, stdout).Data.Runs
	require.Len(t, runs, 1)
	assert.Equal(t, runID, runs[0].ID)
	assert.Equal(t, "ok", runs[0].Status)
	assert.Equal(t, 1, runs[0].Generated)
	assert.Equal(t, "missing", runs[0].StampBefore)
	assert.Equal(t, time1.String(), runs[0].StampAfter)

	code, stdout, _ = execute(t, "log", "-C", root, runID, "--format", "json")
	require.Equal(t, ExitSuccess, code)
	detail := decode[RunDetail](t, stdout).Data
	require.Len(t, detail.Transforms, 1)
	assert.Equal(t, filepath.Join("src", "lib.md"), detail.Transforms[0].Generated)
	require.Len(t, detail.Warnings, 1)
	assert.Equal(t, "UNUSED_ANNOTATION", detail.Warnings[0].Kind)

	code, stdout, _ = execute(t, "log", "-C", root, "--file", "src/lib.rs")
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout, runID)

	code, stdout, _ = execute(t, "log", "-C", root)
	require.Equal(t, ExitSuccess, code)
	assert.Contains(t, stdout, runID)
	assert.Contains(t, stdout, "1 generated")
}

func TestLog_RecordsFailedRuns(t *testing.T) {
	root := t.TempDir()
	testutil.WriteFile(t, filepath.Join(root, "tango.yaml"), "journal: .tango/journal.db\n", time1)
	testutil.WriteFile(t, filepath.Join(root, "src", "lib.rs"), demoSource, time2)
	testutil.WriteFile(t, filepath.Join(root, "src", "lib.md"), "hand written\n", time1)

	code, _, _ := execute(t, "sync", "-C", root)
	require.Equal(t, ExitFailure, code)

	code, stdout, _ := execute(t, "log", "-C", root, "--format", "json")
	require.Equal(t, ExitSuccess, code)
	runs := decode[RunList](t, stdout).Data.Runs
	require.Len(t, runs, 1)
	assert.Equal(t, "failed", runs[0].Status)
	assert.Contains(t, runs[0].Error, "NO_STAMP")
}

func TestLog_ArgumentErrors(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "tango.yaml"), []byte("journal: j.db\n"), 0o644))

	code, _, stderr := execute(t, "log", "-C", root, "run-1", "--file", "src/lib.rs")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, "mutually exclusive")

	code, _, stderr = execute(t, "log", "-C", root, "--limit", "0")
	assert.Equal(t, ExitCommandError, code)
	assert.Contains(t, stderr, "invalid --limit")
}
