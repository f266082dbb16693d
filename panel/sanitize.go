package panel

import (
	"html"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/microcosm-cc/bluemonday"
)

var strictPolicy = bluemonday.StrictPolicy()

// CleanSnippet turns a backend snippet, which may carry HTML, into one line
// of plain text.
func CleanSnippet(s string) string {
	if s == "" {
		return ""
	}
	s = html.UnescapeString(strictPolicy.Sanitize(s))
	return strings.Join(strings.Fields(DisplayText(s)), " ")
}

// DisplayText removes terminal escape sequences and control characters from
// backend-supplied text. Newlines and tabs survive.
func DisplayText(s string) string {
	s = ansi.Strip(s)
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\t':
			return r
		case r == '\r':
			return -1
		case r < 0x20 || r == 0x7f:
			return -1
		case r >= 0x80 && r <= 0x9f:
			return -1
		}
		return r
	}, s)
}
