package convert

import (
	"bufio"
	"io"
	"strings"
)

// maxLineLength bounds a single input line.
const maxLineLength = 16 * 1024 * 1024

// scanLines calls fn for every line of r with its 1-based number.
// Line terminators (\n or \r\n) are stripped.
func scanLines(r io.Reader, fn func(n int, line string) error) (int, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineLength)
	n := 0
	for sc.Scan() {
		n++
		if err := fn(n, sc.Text()); err != nil {
			return n, err
		}
	}
	return n, sc.Err()
}

// lineWriter writes newline terminated lines. The first write error sticks
// and is returned by every later call.
type lineWriter struct {
	w *bufio.Writer
}

func newLineWriter(w io.Writer) *lineWriter {
	return &lineWriter{w: bufio.NewWriter(w)}
}

func (lw *lineWriter) emit(parts ...string) error {
	for _, p := range parts {
		if _, err := lw.w.WriteString(p); err != nil {
			return err
		}
	}
	return lw.w.WriteByte('\n')
}

func (lw *lineWriter) flush() error {
	return lw.w.Flush()
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
