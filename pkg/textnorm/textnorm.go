// Package textnorm produces the canonical strings and overlapping character
// chunks that figure titles and surrounding texts are embedded from.
package textnorm

import (
	"regexp"
	"strings"
)

var (
	blankRun   = regexp.MustCompile(`[ \t]+`)
	newlineRun = regexp.MustCompile(`\n{3,}`)
)

// Normalize replaces ideographic spaces, collapses runs of spaces and tabs to a
// single space, collapses three or more newlines to two and trims both ends.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(s, "\u3000", " ")
	s = blankRun.ReplaceAllString(s, " ")
	s = newlineRun.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// Chunk slides a window of size characters over text, advancing by
// max(1, size-overlap) characters. Windows are trimmed and dropped when empty.
// Boundaries are character offsets, never word boundaries.
func Chunk(text string, size, overlap int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if size < 1 {
		size = 1
	}
	step := max(1, size-overlap)

	runes := []rune(text)
	chunks := []string{}
	for start := 0; start < len(runes); start += step {
		end := min(start+size, len(runes))
		if c := strings.TrimSpace(string(runes[start:end])); c != "" {
			chunks = append(chunks, c)
		}
	}
	return chunks
}
