// Package offers turns raw offer rows from the parts feed or the bot
// payload into the canonical numbered list the customer picks from, and
// keeps chosen ids consistent with that list.
package offers

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"hf_cortex_backend/internal/leadsales/domain"
)

// UnknownOEMKey groups offers whose OEM number is missing. These rows are
// kept for the payload echo but never shown in the pricing reply.
const UnknownOEMKey = "UNKNOWN_OEM"

const choosePrompt = "Выберите, пожалуйста, подходящий вариант (можно несколько)."

// FormatPriceRUB renders a price with thin thousands grouping and no
// kopecks, the way the managers quote it: 10600.4 becomes "10 600".
func FormatPriceRUB(price float64) string {
	n := int64(math.Round(price))
	if n < 0 {
		n = 0
	}
	s := fmt.Sprintf("%d", n)
	var b strings.Builder
	for i, digit := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(digit)
	}
	return b.String()
}

// GroupByOEM buckets offers by their normalized OEM number. Rows without
// an OEM land under UnknownOEMKey. Each bucket is sorted by price
// ascending, then by delivery days with unknown delivery last.
func GroupByOEM(list []domain.Offer) map[string][]domain.Offer {
	groups := map[string][]domain.Offer{}
	for _, offer := range list {
		key := strings.ToUpper(strings.TrimSpace(offer.OEM))
		if key == "" {
			key = UnknownOEMKey
		}
		groups[key] = append(groups[key], offer)
	}
	for key := range groups {
		group := groups[key]
		sort.SliceStable(group, func(i, j int) bool {
			if group[i].Price != group[j].Price {
				return group[i].Price < group[j].Price
			}
			return deliveryRank(group[i]) < deliveryRank(group[j])
		})
	}
	return groups
}

func deliveryRank(o domain.Offer) float64 {
	if o.DeliveryDays == nil {
		return math.Inf(1)
	}
	return float64(*o.DeliveryDays)
}

// OrderOEMs returns the display order of OEM groups: the requested number
// first if it is present, the rest lexicographic. The unknown-OEM bucket
// is excluded.
func OrderOEMs(groups map[string][]domain.Offer, requestedOEM string) []string {
	requested := strings.ToUpper(strings.TrimSpace(requestedOEM))
	keys := make([]string, 0, len(groups))
	for key := range groups {
		if key == UnknownOEMKey {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	if requested == "" {
		return keys
	}
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		if key == requested {
			out = append(out, key)
		}
	}
	for _, key := range keys {
		if key != requested {
			out = append(out, key)
		}
	}
	return out
}

// ReassignIDs flattens the ordered groups into a single list with ids
// renumbered 1..N. The customer's "вариант 2" always refers to these ids,
// never to the feed's own row ids.
func ReassignIDs(groups map[string][]domain.Offer, order []string) []domain.Offer {
	var out []domain.Offer
	next := 1
	for _, key := range order {
		for _, offer := range groups[key] {
			offer.ID = next
			next++
			out = append(out, offer)
		}
	}
	return out
}

// BuildPricingReply renders the numbered variant list shown to the
// customer. The requested OEM group comes under a greeting, every other
// number is introduced as an original replacement. Each line is labeled
// with the brand (literally "OEM" when the feed has none) and the
// group's part number.
func BuildPricingReply(canonical []domain.Offer, order []string, requestedOEM string) string {
	if len(canonical) == 0 {
		return ""
	}
	requested := strings.ToUpper(strings.TrimSpace(requestedOEM))
	byOEM := map[string][]domain.Offer{}
	for _, offer := range canonical {
		key := strings.ToUpper(strings.TrimSpace(offer.OEM))
		byOEM[key] = append(byOEM[key], offer)
	}

	var lines []string
	for _, key := range order {
		group := byOEM[key]
		if len(group) == 0 {
			continue
		}
		if requested != "" && key == requested {
			lines = append(lines, fmt.Sprintf("Добрый день! По номеру %s есть варианты:", key))
		} else {
			lines = append(lines, fmt.Sprintf("Есть оригинальная замена %s:", key))
		}
		for _, offer := range group {
			delivery := "срок уточним"
			if offer.DeliveryDays != nil && *offer.DeliveryDays > 0 {
				delivery = fmt.Sprintf("срок до %d раб. дней", *offer.DeliveryDays)
			}
			lines = append(lines, fmt.Sprintf("Вариант %d — %s %s за %s ₽, %s.", offer.ID, DisplayBrand(offer), key, FormatPriceRUB(offer.Price), delivery))
		}
	}
	if len(lines) == 0 {
		return ""
	}
	lines = append(lines, choosePrompt)
	return strings.Join(lines, "\n")
}

// DisplayBrand is the brand shown next to a part number, with the
// literal "OEM" standing in when the feed row has no brand.
func DisplayBrand(offer domain.Offer) string {
	brand := strings.TrimSpace(offer.Brand)
	if brand == "" {
		return "OEM"
	}
	return brand
}

// Canonicalize runs the full grouping, ordering and renumbering pass and
// returns the canonical list with its pricing reply.
func Canonicalize(list []domain.Offer, requestedOEM string) ([]domain.Offer, string) {
	if len(list) == 0 {
		return nil, ""
	}
	groups := GroupByOEM(list)
	order := OrderOEMs(groups, requestedOEM)
	canonical := ReassignIDs(groups, order)
	reply := BuildPricingReply(canonical, order, requestedOEM)
	return canonical, reply
}

// ValidIDs returns the set of ids present in the canonical list.
func ValidIDs(list []domain.Offer) map[int]bool {
	valid := make(map[int]bool, len(list))
	for _, offer := range list {
		valid[offer.ID] = true
	}
	return valid
}

// SanitizeChoice drops chosen ids that do not exist in the canonical list
// and reports what was dropped through a debug patch. The choice itself
// never carries garbage forward: an entirely invalid value collapses to
// none.
func SanitizeChoice(choice domain.OfferChoice, valid map[int]bool) (domain.OfferChoice, map[string]any) {
	switch choice.Kind() {
	case domain.ChoiceNone:
		return choice, nil

	case domain.ChoiceInvalid:
		return domain.NoChoice(), map[string]any{
			"chosen_offer_id_invalid_type": choice.InvalidType(),
		}

	case domain.ChoiceSingle:
		id := choice.IDs()[0]
		if id > 0 && valid[id] {
			return choice, nil
		}
		return domain.NoChoice(), map[string]any{
			"chosen_offer_id_invalid": id,
		}

	case domain.ChoiceMultiple:
		kept := make([]int, 0, len(choice.IDs()))
		seen := map[int]bool{}
		for _, id := range choice.IDs() {
			if id > 0 && valid[id] && !seen[id] {
				seen[id] = true
				kept = append(kept, id)
			}
		}
		var dropped []any
		for _, item := range choice.RawItems() {
			if id, ok := item.(int); ok && id > 0 && valid[id] {
				continue
			}
			dropped = append(dropped, item)
		}
		var patch map[string]any
		if len(dropped) > 0 {
			patch = map[string]any{"chosen_offer_id_invalid_items": dropped}
		}
		if len(kept) == 0 {
			return domain.NoChoice(), patch
		}
		sort.Ints(kept)
		return domain.MultipleChoice(kept), patch
	}
	return choice, nil
}
