// Package convert implements the two line-oriented transducers that move
// content between commented-source form and literate-markdown form.
//
// Commented-source form is ordinary source code where prose lives in
// comment lines carrying a fixed marker:
//
//	//@ prose line                (content follows a single space)
//	//@prose line                 (content follows immediately)
//	//@@ { .class }               (attributes for the next code fence)
//	//@@@ name                    (names the next code block)
//	anything else                 (code, copied verbatim)
//
// Literate form is markdown where code lives in fences opened by three
// backticks and the configured language tag. A named block is followed,
// directly after its closing fence, by a link definition whose URL embeds
// the block's code (see Syntax.Permalink).
//
// ToLiterate and ToSource are inverses for well formed input:
// converting one form to the other and back reproduces the input byte for
// byte. Both are single pass, keep only a small amount of pending state
// (a count of buffered blank lines, the pending annotations, the text of
// the current code block) and never fail on content. Recoverable
// irregularities are reported as Warnings in the returned Result.
package convert
