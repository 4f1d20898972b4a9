// Package textnorm turns scraped text fragments into a single canonical form:
// entities decoded, control characters removed, whitespace collapsed per line.
package textnorm

import (
	"log/slog"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

// maxPasses bounds the decode rounds left after ampersand chains have been
// collapsed. Real pages need two at most.
const maxPasses = 8

// ampChain matches an ampersand followed by any run of escaped ampersands,
// as in "&amp;amp;amp;lt;". Repeated unescaping reduces the whole run to a
// single '&', so each pass collapses it in one linear step instead of
// peeling one level per round.
var ampChain = regexp.MustCompile(`&(?:(?:amp|AMP);?|#0*38(?:;|\b)|#[xX]0*26(?:;|\b))+`)

// Normalize decodes HTML entities, strips control characters below U+0020
// (newline, carriage return and tab survive), collapses whitespace runs inside
// each line, trims lines and drops the empty ones.
//
// The steps repeat until the output stops changing, which makes Normalize
// idempotent even for double-escaped input such as "&amp;amp;".
// Normalize never panics; on an internal failure it returns the input as is.
func Normalize(text string) (out string) {
	if text == "" {
		return ""
	}

	defer func() {
		if r := recover(); r != nil {
			slog.Warn("textnorm: normalize failed, keeping original text", "panic", r)
			out = text
		}
	}()

	cur := text
	for i := 0; i < maxPasses; i++ {
		next := pass(cur)
		if next == cur {
			return next
		}
		cur = next
		if !strings.Contains(cur, "&") {
			return cur
		}
	}
	return cur
}

// pass runs one decode/strip/collapse round.
func pass(s string) string {
	if strings.Contains(s, "&") {
		s = html.UnescapeString(ampChain.ReplaceAllLiteralString(s, "&"))
	}
	s = StripControl(s)
	return collapseLines(s)
}

// StripControl removes every rune below U+0020 except '\n', '\r' and '\t'.
func StripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 && r != '\n' && r != '\r' && r != '\t' {
			return -1
		}
		return r
	}, s)
}

// collapseLines splits on newlines, collapses whitespace runs inside each
// line to one space, trims, drops empty lines and joins with '\n'.
func collapseLines(s string) string {
	lines := strings.Split(s, "\n")
	out := lines[:0]
	for _, line := range lines {
		if collapsed := strings.Join(strings.Fields(line), " "); collapsed != "" {
			out = append(out, collapsed)
		}
	}
	return strings.Join(out, "\n")
}

// Line normalizes text and folds it onto a single line. Metadata fields such
// as titles and author names use it; multi-line values would only come from
// markup noise.
func Line(text string) string {
	return strings.ReplaceAll(Normalize(text), "\n", " ")
}
