package parsers

import (
	"regexp"
	"sort"
	"strings"

	"hf_cortex_backend/platform/textkit"
)

var (
	vinRe      = regexp.MustCompile(`^[A-Z0-9]{17}$`)
	alnumToken = regexp.MustCompile(`[A-Za-z0-9]{6,25}`)
	urlRe      = regexp.MustCompile(`(?i)https?://\S+|www\.\S+`)

	// Campaign and tracking tokens that leak into chat from ad links.
	trackingTokenRe = regexp.MustCompile(`^(?:UTM|CHAT|CLID|GCLID|YCLID|FBCLID)[A-Z0-9_]*$`)

	orderContextRe = regexp.MustCompile(`(?i)(номер\s+заказа|заказ\s*№|статус\s+заказа|где\s+заказ|по\s+заказу|order\s*#|order\s+number)`)
)

// LooksLikeVIN reports whether token is a VIN: exactly 17 chars A-Z0-9,
// never containing I, O or Q.
func LooksLikeVIN(token string) bool {
	t := strings.ToUpper(strings.TrimSpace(token))
	if !vinRe.MatchString(t) {
		return false
	}
	return !strings.ContainsAny(t, "IOQ")
}

// HasOrderContext reports whether text mentions an order number.
func HasOrderContext(text string) bool {
	return orderContextRe.MatchString(text)
}

// HasVINToken reports whether any alphanumeric token in text is a VIN.
func HasVINToken(text string) bool {
	for _, tok := range alnumToken.FindAllString(strings.ToUpper(text), -1) {
		if LooksLikeVIN(tok) {
			return true
		}
	}
	return false
}

// HasOEMLikeToken reports whether text carries a part-number-looking token:
// mixed letters and digits, not a VIN.
func HasOEMLikeToken(text string) bool {
	for _, tok := range alnumToken.FindAllString(strings.ToUpper(text), -1) {
		if textkit.IsDigits(tok) {
			continue
		}
		if !textkit.HasDigit(tok) {
			continue
		}
		if LooksLikeVIN(tok) {
			continue
		}
		return true
	}
	return false
}

// ExtractOEM detects the requested part number in free-form text.
//
// Tokens are alphanumeric runs of 6-25 chars. VINs, URLs, tracking tags,
// digit-only runs sitting in an order-number context and tokens without a
// single digit are all discarded. Among the remaining candidates a length of
// 6-20 is preferred, then the longest token, then lexicographic order.
func ExtractOEM(text string) string {
	t := textkit.Normalize(text)
	if t == "" {
		return ""
	}

	t = urlRe.ReplaceAllString(t, " ")
	upper := strings.ToUpper(t)
	orderContext := HasOrderContext(upper)

	var candidates []string
	for _, tok := range alnumToken.FindAllString(upper, -1) {
		if LooksLikeVIN(tok) {
			continue
		}
		if trackingTokenRe.MatchString(tok) {
			continue
		}
		if textkit.IsDigits(tok) {
			if orderContext && len(tok) >= 7 && len(tok) <= 12 {
				continue
			}
		} else if !textkit.HasDigit(tok) {
			continue
		}
		candidates = append(candidates, tok)
	}

	if len(candidates) == 0 {
		return ""
	}

	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		pa, pb := oemLengthPenalty(a), oemLengthPenalty(b)
		if pa != pb {
			return pa < pb
		}
		if len(a) != len(b) {
			return len(a) > len(b)
		}
		return a < b
	})
	return candidates[0]
}

func oemLengthPenalty(tok string) int {
	if len(tok) >= 6 && len(tok) <= 20 {
		return 0
	}
	return 1
}
