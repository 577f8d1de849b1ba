package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/tango/internal/timestamp"
)

// WriteFile creates path (and its parents) with content and mtime ts.
func WriteFile(t testing.TB, path, content string, ts timestamp.Timestamp) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	Touch(t, path, ts)
}

// Touch sets the mtime of an existing file.
func Touch(t testing.TB, path string, ts timestamp.Timestamp) {
	t.Helper()
	require.NoError(t, ts.Apply(path))
}

// Mtime returns the mtime of path, failing the test if it is missing.
func Mtime(t testing.TB, path string) timestamp.Timestamp {
	t.Helper()
	ts, err := timestamp.Stat(path)
	require.NoError(t, err)
	return ts
}

// ReadFile returns the content of path as a string.
func ReadFile(t testing.TB, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}
