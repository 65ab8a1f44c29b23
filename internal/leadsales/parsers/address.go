package parsers

import (
	"regexp"
	"strings"

	"hf_cortex_backend/platform/textkit"
)

// PickupSentinel is what the CRM receives when the customer picks the goods
// up themselves.
const PickupSentinel = "Самовывоз"

var (
	// Street/house/building words. RE2's \b is ASCII-only, so Cyrillic word
	// boundaries are spelled out as non-letter guards.
	addressMarkerRe = regexp.MustCompile(`(?i)(?:^|[^\p{L}])(ул|улица|дом|д|кв|квартира|корп|корпус|проспект|пр-т|шоссе|пер|переулок|проезд|г\.|город)(?:[^\p{L}]|$)`)

	// "Need more of X" / "can you get" availability questions that carry
	// digits but are not addresses.
	availabilityIntentRe = regexp.MustCompile(`(?i)(нужн[а-яё]*\s+(?:еще|ещё)|еще\s+нужн|ещё\s+нужн|можно\s+ли|есть\s+ли|можете\s+ли|сможете\s+ли|привезт[иь]|привезете|под\s+заказ)`)
)

// LooksLikeAddress reports whether text plausibly is a delivery address.
//
// Digits are required, plus a positive signal: an address-noun marker, or
// at least a comma when a phone number is present. A bare "name + phone"
// message must never be read as an address, and availability questions are
// rejected outright.
func LooksLikeAddress(text string) bool {
	t := strings.ToLower(textkit.Normalize(text))
	if t == "" {
		return false
	}
	if strings.Contains(t, "самовывоз") {
		return true
	}

	hasMarkers := addressMarkerRe.MatchString(t)
	hasComma := strings.Contains(t, ",")

	if ExtractPhone(t) != "" && !hasMarkers && !hasComma {
		return false
	}
	if !textkit.HasDigit(t) {
		return false
	}
	if !hasMarkers {
		if strings.Contains(t, "?") {
			return false
		}
		if availabilityIntentRe.MatchString(t) {
			return false
		}
	}
	if hasMarkers {
		return true
	}

	// Loose fallback: comma-separated multi-word text with digits.
	return hasComma && len(strings.Fields(t)) >= 4
}

// ExtractAddressOrPickup returns the raw address text, the pickup sentinel,
// or the empty string when the message is not an address.
func ExtractAddressOrPickup(text string) string {
	t := textkit.Normalize(text)
	if t == "" {
		return ""
	}
	if strings.Contains(strings.ToLower(t), "самовывоз") {
		return PickupSentinel
	}
	if LooksLikeAddress(t) {
		return t
	}
	return ""
}
