package convert

import "io"

// Direction selects a converter.
type Direction int

const (
	// SourceToLiterate runs ToLiterate.
	SourceToLiterate Direction = iota
	// LiterateToSource runs ToSource.
	LiterateToSource
)

func (d Direction) String() string {
	if d == LiterateToSource {
		return "literate->source"
	}
	return "source->literate"
}

// Convert runs the converter for d.
func (d Direction) Convert(r io.Reader, w io.Writer, syntax Syntax) (*Result, error) {
	if d == LiterateToSource {
		return ToSource(r, w, syntax)
	}
	return ToLiterate(r, w, syntax)
}
