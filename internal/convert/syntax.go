package convert

import (
	"fmt"
	"net/url"
	"strings"
)

// Line markers recognised in commented-source form.
const (
	ProseMarker     = "//@"
	prosePrefix     = ProseMarker + " "
	MetaMarker      = "//@@"
	BlockNameMarker = "//@@@"
)

const fence = "```"

// CodePlaceholder marks where the encoded code goes in a playground URL template.
const CodePlaceholder = "{code}"

// Syntax carries the per-project parts of the literate format.
type Syntax struct {
	// Lang is the tag following the opening backticks, e.g. "rust".
	Lang string

	// Playground is a URL template containing CodePlaceholder.
	Playground string
}

// DefaultSyntax returns the Rust playground flavour tango started with.
func DefaultSyntax() Syntax {
	return Syntax{
		Lang:       "rust",
		Playground: "https://play.rust-lang.org/?code=" + CodePlaceholder + "&version=nightly",
	}
}

func (s Syntax) fenceOpen() string {
	return fence + s.Lang
}

// isFenceOpen reports whether line opens a code fence for this language and
// returns whatever follows the tag.
func (s Syntax) isFenceOpen(line string) (meta string, ok bool) {
	open := s.fenceOpen()
	if !strings.HasPrefix(line, open) {
		return "", false
	}
	rest := line[len(open):]
	if rest == "" || rest[0] == ' ' || rest[0] == '\t' || rest[0] == '{' {
		return rest, true
	}
	// "```rustdoc" and friends are some other language.
	return "", false
}

func isFenceClose(line string) bool {
	return strings.TrimRight(line, " \t") == fence
}

// Permalink embeds code in the playground URL. The code is trimmed and
// form-encoded, so the result is deterministic and contains no raw '&',
// '=', '%', space or control characters from the code.
func (s Syntax) Permalink(code string) string {
	return EncodeURL(code, s.Playground)
}

// EncodeURL form-encodes the trimmed code into the playground template.
func EncodeURL(code, playground string) string {
	return strings.Replace(playground, CodePlaceholder, url.QueryEscape(strings.TrimSpace(code)), 1)
}

// DecodeURL reverses EncodeURL, returning the trimmed code.
func DecodeURL(link, playground string) (string, error) {
	prefix, suffix, ok := strings.Cut(playground, CodePlaceholder)
	if !ok {
		return "", fmt.Errorf("playground template %q has no %s placeholder", playground, CodePlaceholder)
	}
	if len(link) < len(prefix)+len(suffix) || !strings.HasPrefix(link, prefix) || !strings.HasSuffix(link, suffix) {
		return "", fmt.Errorf("link %q does not match playground template %q", link, playground)
	}
	return url.QueryUnescape(link[len(prefix) : len(link)-len(suffix)])
}
