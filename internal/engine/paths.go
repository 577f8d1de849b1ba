package engine

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/roach88/tango/internal/convert"
)

// Layout maps commented-source files to literate files: same relative path
// under each directory, extension swapped. Directories may coincide.
type Layout struct {
	SourceDir   string
	LiterateDir string

	// Extensions without the leading dot.
	SourceExt   string
	LiterateExt string
}

// LiteratePath maps a source file to its literate counterpart.
func (l Layout) LiteratePath(source string) (string, error) {
	return swap(source, l.SourceDir, l.SourceExt, l.LiterateDir, l.LiterateExt)
}

// SourcePath maps a literate file to its source counterpart.
func (l Layout) SourcePath(literate string) (string, error) {
	return swap(literate, l.LiterateDir, l.LiterateExt, l.SourceDir, l.SourceExt)
}

// MustLiteratePath is like LiteratePath but panics on a malformed path.
func (l Layout) MustLiteratePath(source string) string {
	p, err := l.LiteratePath(source)
	if err != nil {
		panic(err)
	}
	return p
}

// MustSourcePath is like SourcePath but panics on a malformed path.
func (l Layout) MustSourcePath(literate string) string {
	p, err := l.SourcePath(literate)
	if err != nil {
		panic(err)
	}
	return p
}

// Target returns the file generated from original when converting in d.
// It panics on a malformed path.
func (l Layout) Target(original string, d convert.Direction) string {
	if d == convert.LiterateToSource {
		return l.MustSourcePath(original)
	}
	return l.MustLiteratePath(original)
}

func swap(path, fromDir, fromExt, toDir, toExt string) (string, error) {
	ext := "." + fromExt
	if filepath.Ext(path) != ext {
		return "", fmt.Errorf("path %q does not have extension %q", path, ext)
	}
	rel, err := filepath.Rel(filepath.Clean(fromDir), filepath.Clean(path))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path %q is not under %q", path, fromDir)
	}
	return filepath.Join(toDir, strings.TrimSuffix(rel, ext)+"."+toExt), nil
}
