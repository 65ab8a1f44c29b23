// Package phone provides phone number utilities.
// This is part of the platform layer and contains no business logic.
package phone

import (
	"regexp"

	"github.com/nyaruka/phonenumbers"
)

const defaultRegion = "RU"

var (
	candidateRe = regexp.MustCompile(`\+?\d[\d\-\s()]{8,}\d`)
	nonDigitRe  = regexp.MustCompile(`\D+`)
)

// Normalize converts a raw phone candidate to +7XXXXXXXXXX.
//
// Russian shapes are handled deterministically: a leading 8 becomes 7, an
// 11-digit number starting with 7 gets a plus, a bare 10-digit number gets
// +7. Anything else is handed to libphonenumber with the RU region, and
// only Russian numbers (country code 7) survive; everything else yields
// the empty string.
func Normalize(raw string) string {
	digits := nonDigitRe.ReplaceAllString(raw, "")

	switch {
	case len(digits) == 11 && digits[0] == '8':
		return "+7" + digits[1:]
	case len(digits) == 11 && digits[0] == '7':
		return "+" + digits
	case len(digits) == 10:
		return "+7" + digits
	}

	number, err := phonenumbers.Parse(raw, defaultRegion)
	if err != nil || !phonenumbers.IsValidNumber(number) {
		return ""
	}
	if number.GetCountryCode() != 7 {
		return ""
	}
	return phonenumbers.Format(number, phonenumbers.E164)
}

// Extract finds the first phone number in free-form text and returns it
// normalized, or the empty string when no usable number is present.
func Extract(text string) string {
	for _, cand := range candidateRe.FindAllString(text, -1) {
		if normalized := Normalize(cand); normalized != "" {
			return normalized
		}
	}
	return ""
}
