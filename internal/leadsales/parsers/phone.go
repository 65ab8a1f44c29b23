package parsers

import (
	"hf_cortex_backend/platform/phone"
	"hf_cortex_backend/platform/textkit"
)

// ExtractPhone finds the customer's phone number in free-form text and
// returns it in +7XXXXXXXXXX form, or the empty string when absent.
func ExtractPhone(text string) string {
	t := textkit.Normalize(text)
	if t == "" {
		return ""
	}
	return phone.Extract(t)
}
