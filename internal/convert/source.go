package convert

import (
	"io"
	"regexp"
	"strings"
)

// sourceState is the mode of the literate-to-source transducer.
type sourceState int

const (
	// srcBlank: between blocks, nothing pending.
	srcBlank sourceState = iota
	// srcText: inside a run of prose.
	srcText
	// srcMeta: writing fence attributes (transient, directly followed by srcCode).
	srcMeta
	// srcCode: inside a fenced block.
	srcCode
)

func (s sourceState) String() string {
	switch s {
	case srcBlank:
		return "Blank"
	case srcText:
		return "Text"
	case srcMeta:
		return "Meta"
	case srcCode:
		return "Code"
	}
	return "unknown"
}

// namedLinkPattern matches "[name]: url".
var namedLinkPattern = regexp.MustCompile(`^\[([^\]]+)\]: (\S+)\s*$`)

func parseNamedLink(line string) (name, link string, ok bool) {
	m := namedLinkPattern.FindStringSubmatch(line)
	if m == nil {
		return "", "", false
	}
	return strings.TrimSpace(m[1]), m[2], true
}

// sourceConverter turns literate markdown into commented source.
//
// The source lines of a code block are held back until the line after its
// closing fence has been seen: a named link there puts the block name
// marker in front of the block.
type sourceConverter struct {
	syntax Syntax
	out    *lineWriter
	result *Result

	state  sourceState
	blanks int
	lineNo int

	holding bool
	held    []string

	// code accumulates the current block for the permalink check.
	code strings.Builder
}

// ToSource reads literate markdown from r and writes commented source to w.
func ToSource(r io.Reader, w io.Writer, syntax Syntax) (*Result, error) {
	c := &sourceConverter{
		syntax: syntax,
		out:    newLineWriter(w),
		result: &Result{},
		state:  srcBlank,
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

func (c *sourceConverter) handle(line string) error {
	if c.holding && c.state != srcCode {
		if name, link, ok := parseNamedLink(line); ok {
			return c.nameBlock(name, link)
		}
		if err := c.release(); err != nil {
			return err
		}
	}

	if c.state == srcCode {
		if isFenceClose(line) {
			return c.transition(srcBlank)
		}
	} else if meta, ok := c.syntax.isFenceOpen(line); ok {
		return c.openFence(meta)
	}

	if line == "" {
		c.blank()
		return nil
	}
	return c.nonblank(line)
}

func (c *sourceConverter) openFence(meta string) error {
	if err := c.flushBlanks(""); err != nil {
		return err
	}
	c.holding = true
	c.held = c.held[:0]
	c.code.Reset()
	if meta != "" {
		if err := c.transition(srcMeta); err != nil {
			return err
		}
		if err := c.write(MetaMarker + meta); err != nil {
			return err
		}
	}
	return c.transition(srcCode)
}

// nameBlock emits the block name marker, then the held block.
func (c *sourceConverter) nameBlock(name, link string) error {
	if expected := c.syntax.Permalink(c.code.String()); expected != link {
		c.result.warn(Warning{
			Kind:     WarnEncodingMismatch,
			Line:     c.lineNo,
			Name:     name,
			Expected: expected,
			Actual:   link,
		})
	}
	if err := c.out.emit(BlockNameMarker, " ", name); err != nil {
		return err
	}
	return c.release()
}

func (c *sourceConverter) release() error {
	c.holding = false
	for _, line := range c.held {
		if err := c.out.emit(line); err != nil {
			return err
		}
	}
	c.held = c.held[:0]
	return nil
}

func (c *sourceConverter) write(line string) error {
	if c.holding {
		c.held = append(c.held, line)
		return nil
	}
	return c.out.emit(line)
}

func (c *sourceConverter) blank() {
	c.blanks++
	if c.state == srcCode {
		c.code.WriteByte('\n')
	}
}

func (c *sourceConverter) nonblank(line string) error {
	var blankPrefix, linePrefix string
	switch c.state {
	case srcBlank:
		blankPrefix, linePrefix = "", prosePrefix
	case srcText:
		blankPrefix, linePrefix = ProseMarker, prosePrefix
	case srcMeta:
		blankPrefix, linePrefix = ProseMarker, MetaMarker
	case srcCode:
		c.code.WriteByte('\n')
		c.code.WriteString(line)
	}
	if err := c.flushBlanks(blankPrefix); err != nil {
		return err
	}
	if c.state == srcBlank {
		if err := c.transition(srcText); err != nil {
			return err
		}
	}
	return c.write(linePrefix + line)
}

func (c *sourceConverter) flushBlanks(prefix string) error {
	for ; c.blanks > 0; c.blanks-- {
		if err := c.write(prefix); err != nil {
			return err
		}
	}
	return nil
}

func (c *sourceConverter) transition(to sourceState) error {
	from := c.state
	switch to {
	case srcText:
		if from != srcBlank {
			return c.invalid(from, to)
		}
	case srcMeta:
		if from != srcBlank && from != srcText {
			return c.invalid(from, to)
		}
	case srcCode:
		if from == srcCode {
			return c.invalid(from, to)
		}
	case srcBlank:
		if from != srcCode {
			return c.invalid(from, to)
		}
		// Blank lines before the closing fence belong to the code.
		if err := c.flushBlanks(""); err != nil {
			return err
		}
	}
	c.state = to
	return nil
}

// finalize closes a dangling fence and writes whatever is still pending.
func (c *sourceConverter) finalize() error {
	c.lineNo = 0
	if c.state == srcCode {
		if err := c.transition(srcBlank); err != nil {
			return err
		}
	}
	if c.holding {
		if err := c.release(); err != nil {
			return err
		}
	}
	prefix := ""
	if c.state == srcText {
		prefix = ProseMarker
	}
	return c.flushBlanks(prefix)
}

func (c *sourceConverter) invalid(from, to sourceState) error {
	return &TransitionError{From: from.String(), To: to.String(), Line: c.lineNo}
}
