// Package text implements the text primitives shared by the overlay passes:
// greedy word wrapping, outlined ("stroked") text drawing and measurement.
package text

import (
	"strings"
	"unicode/utf8"
)

// Wrap splits s into lines of at most maxChars characters, breaking only at
// ASCII whitespace. Other spaces such as U+00A0 stay inside their word. Words longer than maxChars are kept whole on a line of their
// own; words are never hyphenated. Runs of whitespace collapse to a single
// space. Empty or all-whitespace input yields no lines. maxChars below 1 is
// treated as 1.
func Wrap(s string, maxChars int) []string {
	maxChars = max(1, maxChars)
	words := strings.FieldsFunc(s, isBreak)
	if len(words) == 0 {
		return nil
	}

	var (
		lines []string
		line  strings.Builder
		n     int // characters in line
	)
	for _, w := range words {
		wn := utf8.RuneCountInString(w)
		if n > 0 && n+1+wn <= maxChars {
			line.WriteByte(' ')
			line.WriteString(w)
			n += 1 + wn
			continue
		}
		if n > 0 {
			lines = append(lines, line.String())
			line.Reset()
		}
		line.WriteString(w)
		n = wn
	}
	return append(lines, line.String())
}

func isBreak(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}
