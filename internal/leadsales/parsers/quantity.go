package parsers

import (
	"regexp"
	"strconv"
	"strings"
)

const (
	minQuantity = 1
	maxQuantity = 99
)

var (
	// "2 шт" / "2шт" / "2 штуки" / "2pcs". Longest alternatives first: RE2
	// needs the trailing guard to succeed on the same branch.
	quantityPhraseRe = regexp.MustCompile(`(?i)\b(\d{1,3})\s*(?:штуки|штук|шт\.?|pieces|piece|pcs|pc)(?:[^\p{L}]|$)`)

	// x2 / 2x, latin and cyrillic х.
	quantityXRe = regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}])(?:[xх]\s*(\d{1,3})|(\d{1,3})\s*[xх])(?:[^\p{L}\p{N}]|$)`)
)

// ExtractQuantity pulls a requested item count ("2 шт", "x3") out of the
// message, clamped to [1, 99]. Returns 0 when no quantity is present.
func ExtractQuantity(text string) int {
	if strings.TrimSpace(text) == "" {
		return 0
	}

	if m := quantityPhraseRe.FindStringSubmatch(text); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return clampQuantity(n)
		}
	}

	if m := quantityXRe.FindStringSubmatch(text); m != nil {
		raw := m[1]
		if raw == "" {
			raw = m[2]
		}
		if n, err := strconv.Atoi(raw); err == nil {
			return clampQuantity(n)
		}
	}

	return 0
}

func clampQuantity(n int) int {
	if n < minQuantity {
		return minQuantity
	}
	if n > maxQuantity {
		return maxQuantity
	}
	return n
}
