package sanitizer

import (
	"regexp"
	"strings"
	"unicode"
)

var blankLines = regexp.MustCompile(`\n{3,}`)

func TrimSpace(s string) string {
	return strings.TrimSpace(s)
}

// StripControl drops control characters except newline and tab. Carriage
// returns are normalized to newlines.
func StripControl(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\r':
			return '\n'
		case r == '\n', r == '\t':
			return r
		case unicode.IsControl(r), r == '\u200b', r == '\ufeff':
			return -1
		}
		return r
	}, s)
}

// SingleLine joins lines and collapses runs of whitespace to one space.
func SingleLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// CollapseBlankLines keeps at most one empty line between paragraphs and
// trims trailing spaces on every line.
func CollapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRightFunc(line, unicode.IsSpace)
	}
	return blankLines.ReplaceAllString(strings.Join(lines, "\n"), "\n\n")
}
