package textnorm

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	defaultMinLength      = 5
	defaultValidThreshold = 0.6
)

// GarbledOptions tunes IsGarbled. Zero values select the defaults.
type GarbledOptions struct {
	// MinLength is the minimum trimmed rune count of a usable text.
	MinLength int

	// ValidThreshold is the minimum ratio of readable runes.
	ValidThreshold float64
}

// IsGarbled reports whether text looks like OCR or font-mapping debris:
// too short, containing private-use runes, or with too few readable runes.
func IsGarbled(text string, opts GarbledOptions) bool {
	if opts.MinLength <= 0 {
		opts.MinLength = defaultMinLength
	}
	if opts.ValidThreshold <= 0 {
		opts.ValidThreshold = defaultValidThreshold
	}

	if utf8.RuneCountInString(strings.TrimSpace(text)) < opts.MinLength {
		return true
	}
	if HasPrivateUse(text) {
		return true
	}
	return ReadableRatio(text) < opts.ValidThreshold
}

// HasPrivateUse reports whether text contains runes from the Unicode private
// use areas, the usual sign of a broken PDF font mapping.
func HasPrivateUse(text string) bool {
	for _, r := range text {
		switch {
		case r >= 0xE000 && r <= 0xF8FF,
			r >= 0xF0000 && r <= 0xFFFFD,
			r >= 0x100000 && r <= 0x10FFFD:
			return true
		}
	}
	return false
}

// ReadableRatio returns the fraction of runes that are CJK ideographs, ASCII
// letters or digits, or common punctuation.
func ReadableRatio(text string) float64 {
	total := utf8.RuneCountInString(text)
	if total == 0 {
		return 0
	}
	readable := 0
	for _, r := range text {
		if isReadable(r) {
			readable++
		}
	}
	return float64(readable) / float64(total)
}

func isReadable(r rune) bool {
	switch {
	case r >= 0x4E00 && r <= 0x9FFF:
		return true
	case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
		return true
	}
	return strings.ContainsRune("，。！？,.()[]:-/%", r)
}
