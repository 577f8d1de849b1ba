package convert

import (
	"io"
	"strings"
	"unicode"
)

// literateState is the mode of the source-to-literate transducer.
type literateState int

const (
	// litFirstLine: no prose emitted since the last code block (or start).
	litFirstLine literateState = iota
	// litLines: inside a run of prose.
	litLines
	// litCode: inside a fenced block.
	litCode
)

func (s literateState) String() string {
	switch s {
	case litFirstLine:
		return "MarkdownFirstLine"
	case litLines:
		return "MarkdownLines"
	case litCode:
		return "Code"
	}
	return "unknown"
}

// literateConverter turns commented source into literate markdown.
type literateConverter struct {
	syntax Syntax
	out    *lineWriter
	result *Result

	state  literateState
	blanks int
	lineNo int

	// Pending annotations, attached to the next fence open / close.
	metaNote  string
	blockName string

	// code accumulates the current block for its permalink.
	code strings.Builder
}

// ToLiterate reads commented source from r and writes literate markdown to w.
func ToLiterate(r io.Reader, w io.Writer, syntax Syntax) (*Result, error) {
	c := &literateConverter{
		syntax: syntax,
		out:    newLineWriter(w),
		result: &Result{},
		state:  litFirstLine,
	}
	n, err := scanLines(r, func(n int, line string) error {
		c.lineNo = n
		return c.handle(line)
	})
	c.result.Lines = n
	if err != nil {
		return c.result, err
	}
	if err := c.finalize(); err != nil {
		return c.result, err
	}
	return c.result, c.out.flush()
}

func (c *literateConverter) handle(line string) error {
	trimmed := strings.TrimLeftFunc(line, unicode.IsSpace)
	switch {
	case trimmed == "":
		c.blank()
		return nil

	case strings.HasPrefix(trimmed, prosePrefix):
		return c.prose(trimmed[len(prosePrefix):])

	case strings.HasPrefix(trimmed, BlockNameMarker):
		if name := strings.TrimSpace(trimmed[len(BlockNameMarker):]); name != "" {
			c.setBlockName(name)
		}
		return nil

	case strings.HasPrefix(trimmed, MetaMarker):
		if note := strings.TrimSpace(trimmed[len(MetaMarker):]); note != "" {
			c.setMetaNote(note)
		}
		return nil

	case strings.HasPrefix(trimmed, ProseMarker):
		return c.prose(trimmed[len(ProseMarker):])
	}

	if c.state != litCode {
		if err := c.transition(litCode); err != nil {
			return err
		}
	}
	return c.nonblank(line)
}

// prose handles the text after a prose marker.
func (c *literateConverter) prose(text string) error {
	switch c.state {
	case litCode:
		if err := c.transition(litFirstLine); err != nil {
			return err
		}
	case litFirstLine:
		if err := c.transition(litLines); err != nil {
			return err
		}
	}
	if isBlank(text) {
		c.blank()
		return nil
	}
	return c.nonblank(text)
}

// First annotation wins; later ones are reported and dropped.
func (c *literateConverter) setBlockName(name string) {
	if c.blockName != "" {
		c.result.warn(Warning{Kind: WarnDiscardedBlockName, Line: c.lineNo, Name: name, Kept: c.blockName})
		return
	}
	c.blockName = name
}

func (c *literateConverter) setMetaNote(note string) {
	if c.metaNote != "" {
		c.result.warn(Warning{Kind: WarnDiscardedMetaNote, Line: c.lineNo, Name: note, Kept: c.metaNote})
		return
	}
	c.metaNote = note
}

func (c *literateConverter) blank() {
	c.blanks++
	if c.state == litCode {
		c.code.WriteByte('\n')
	}
}

func (c *literateConverter) nonblank(text string) error {
	if err := c.flushBlanks(); err != nil {
		return err
	}
	if c.state == litCode {
		c.code.WriteByte('\n')
		c.code.WriteString(text)
	}
	return c.out.emit(text)
}

// Blank lines are bare in markdown whatever section they belong to.
func (c *literateConverter) flushBlanks() error {
	for ; c.blanks > 0; c.blanks-- {
		if err := c.out.emit(); err != nil {
			return err
		}
	}
	return nil
}

func (c *literateConverter) transition(to literateState) error {
	from := c.state
	switch to {
	case litFirstLine:
		if from != litCode {
			return c.invalid(from, to)
		}
		if err := c.closeFence(); err != nil {
			return err
		}
		if err := c.flushBlanks(); err != nil {
			return err
		}
	case litLines:
		if from != litFirstLine {
			return c.invalid(from, to)
		}
		if err := c.flushBlanks(); err != nil {
			return err
		}
	case litCode:
		if from == litCode {
			return c.invalid(from, to)
		}
		if err := c.flushBlanks(); err != nil {
			return err
		}
		if err := c.openFence(); err != nil {
			return err
		}
	}
	c.state = to
	return nil
}

func (c *literateConverter) openFence() error {
	var err error
	if c.metaNote != "" {
		err = c.out.emit(c.syntax.fenceOpen(), " ", c.metaNote)
	} else {
		err = c.out.emit(c.syntax.fenceOpen())
	}
	c.metaNote = ""
	c.code.Reset()
	return err
}

func (c *literateConverter) closeFence() error {
	if err := c.out.emit(fence); err != nil {
		return err
	}
	if c.blockName != "" {
		if err := c.out.emit("[", c.blockName, "]: ", c.syntax.Permalink(c.code.String())); err != nil {
			return err
		}
	}
	c.blockName = ""
	c.code.Reset()
	return nil
}

func (c *literateConverter) finalize() error {
	c.lineNo = 0
	if c.state == litCode {
		if err := c.transition(litFirstLine); err != nil {
			return err
		}
	}
	if err := c.flushBlanks(); err != nil {
		return err
	}
	for _, pending := range []string{c.blockName, c.metaNote} {
		if pending != "" {
			c.result.warn(Warning{Kind: WarnUnusedAnnotation, Name: pending})
		}
	}
	return nil
}

func (c *literateConverter) invalid(from, to literateState) error {
	return &TransitionError{From: from.String(), To: to.String(), Line: c.lineNo}
}
