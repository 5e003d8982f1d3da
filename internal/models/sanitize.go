package models

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// SanitizeContent normalizes user-submitted text before storage.
// Browsers occasionally submit Latin-1 bytes from legacy form pages;
// anything that still fails UTF-8 validation after conversion is
// replaced rather than stored raw.
func SanitizeContent(text string) string {
	text = toUTF8(text)
	text = stripControlChars(text)
	return strings.TrimSpace(text)
}

// toUTF8 converts text from Latin-1 to UTF-8 if needed
func toUTF8(text string) string {
	if utf8.ValidString(text) {
		return text
	}

	// Try Latin-1 (ISO-8859-1) to UTF-8 conversion
	decoder := charmap.ISO8859_1.NewDecoder()
	result, _, err := transform.String(decoder, text)
	if err != nil {
		// Fallback: replace invalid UTF-8 sequences with replacement character
		return strings.ToValidUTF8(text, "�")
	}
	return result
}

// stripControlChars removes control characters except newline and tab
func stripControlChars(text string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, text)
}
