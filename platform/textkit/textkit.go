// Package textkit provides text normalization utilities.
// This is part of the platform layer and contains no business logic.
package textkit

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// Normalize applies NFKC normalization, collapses whitespace runs into single
// spaces and trims the result. Customer messages arrive from several chat
// transports with inconsistent unicode forms, so every extractor starts here.
func Normalize(s string) string {
	s = norm.NFKC.String(s)
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}

// HasDigit reports whether s contains at least one ASCII digit.
func HasDigit(s string) bool {
	return strings.ContainsAny(s, "0123456789")
}

// IsDigits reports whether s is non-empty and consists of ASCII digits only.
func IsDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
