package offers

import (
	"math"
	"sort"
	"strings"

	"hf_cortex_backend/internal/leadsales/domain"
)

// Feed is the normalized parts-feed block injected by the bot: a map of
// OEM number to {"offers": [...]} with rows as decoded JSON objects.
type Feed map[string]any

// FeedHasOffers reports whether at least one OEM carries a non-empty
// offers list.
func FeedHasOffers(feed Feed) bool {
	for _, pack := range feed {
		m, ok := pack.(map[string]any)
		if !ok {
			continue
		}
		if list, ok := m["offers"].([]any); ok && len(list) > 0 {
			return true
		}
	}
	return false
}

// BuildFromFeed converts the feed into offer rows. Rows without a numeric
// price are dropped. Delivery takes minDays when present, maxDays
// otherwise. Ids run as a deterministic global counter in alphabetical OEM
// order; the canonical pass renumbers them requested-first afterwards.
func BuildFromFeed(feed Feed) []domain.Offer {
	oems := make([]string, 0, len(feed))
	for oem := range feed {
		oems = append(oems, oem)
	}
	sort.Strings(oems)

	var out []domain.Offer
	nextID := 1
	for _, oem := range oems {
		pack, ok := feed[oem].(map[string]any)
		if !ok {
			continue
		}
		rawList, ok := pack["offers"].([]any)
		if !ok {
			continue
		}

		type scored struct {
			price float64
			days  float64
			offer domain.Offer
		}
		rows := make([]scored, 0, len(rawList))
		for _, raw := range rawList {
			row, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			price, ok := asFloat(row["price"])
			if !ok {
				continue
			}

			delivery := feedDeliveryDays(row)
			daysRank := math.Inf(1)
			if delivery != nil {
				daysRank = float64(*delivery)
			}

			brand, _ := row["brand"].(string)
			name, _ := row["name"].(string)
			if strings.TrimSpace(name) == "" {
				if strings.TrimSpace(brand) != "" {
					name = brand + " " + oem
				} else {
					name = oem
				}
			}
			source := ""
			if supplier, ok := row["supplier"].(string); ok {
				source = supplier
			}

			rows = append(rows, scored{price: price, days: daysRank, offer: domain.Offer{
				OEM:          oem,
				Brand:        brand,
				Name:         name,
				Price:        price,
				Currency:     "RUB",
				Quantity:     1,
				DeliveryDays: delivery,
				Source:       source,
			}})
		}

		sort.SliceStable(rows, func(i, j int) bool {
			if rows[i].price != rows[j].price {
				return rows[i].price < rows[j].price
			}
			return rows[i].days < rows[j].days
		})
		for _, r := range rows {
			offer := r.offer
			offer.ID = nextID
			nextID++
			out = append(out, offer)
		}
	}
	return out
}

// Summarize builds the compact per-OEM digest that goes into the advisory
// model's base context: row count, price and delivery ranges, the fastest
// row as variant_1 and the cheapest as variant_2.
func Summarize(feed Feed) map[string]any {
	summary := map[string]any{}
	for oem, pack := range feed {
		m, ok := pack.(map[string]any)
		if !ok {
			continue
		}
		rawList, _ := m["offers"].([]any)

		var prices []float64
		var days []int
		rows := make([]map[string]any, 0, len(rawList))
		for _, raw := range rawList {
			row, ok := raw.(map[string]any)
			if !ok {
				continue
			}
			rows = append(rows, row)
			if price, ok := asFloat(row["price"]); ok {
				prices = append(prices, price)
			}
			if md, ok := asFloat(row["minDays"]); ok {
				days = append(days, int(md))
			}
			if xd, ok := asFloat(row["maxDays"]); ok {
				days = append(days, int(xd))
			}
		}

		entry := map[string]any{
			"offers":    len(rows),
			"min_price": nil,
			"max_price": nil,
			"min_days":  nil,
			"max_days":  nil,
			"variant_1": pickFastest(rows),
			"variant_2": pickCheapest(rows),
		}
		if len(prices) > 0 {
			sort.Float64s(prices)
			entry["min_price"] = prices[0]
			entry["max_price"] = prices[len(prices)-1]
		}
		if len(days) > 0 {
			sort.Ints(days)
			entry["min_days"] = days[0]
			entry["max_days"] = days[len(days)-1]
		}
		summary[oem] = entry
	}
	return summary
}

func pickFastest(rows []map[string]any) map[string]any {
	var best map[string]any
	bestDays, bestPrice := math.Inf(1), math.Inf(1)
	for _, row := range rows {
		delivery := feedDeliveryDays(row)
		if delivery == nil {
			continue
		}
		d := float64(*delivery)
		p := math.Inf(1)
		if price, ok := asFloat(row["price"]); ok {
			p = price
		}
		if d < bestDays || (d == bestDays && p < bestPrice) {
			bestDays, bestPrice, best = d, p, row
		}
	}
	return compactRow(best)
}

func pickCheapest(rows []map[string]any) map[string]any {
	var best map[string]any
	bestPrice, bestDays := math.Inf(1), math.Inf(1)
	for _, row := range rows {
		price, ok := asFloat(row["price"])
		if !ok {
			continue
		}
		d := math.Inf(1)
		if delivery := feedDeliveryDays(row); delivery != nil {
			d = float64(*delivery)
		}
		if price < bestPrice || (price == bestPrice && d < bestDays) {
			bestPrice, bestDays, best = price, d, row
		}
	}
	return compactRow(best)
}

func compactRow(row map[string]any) map[string]any {
	if row == nil {
		return nil
	}
	out := map[string]any{}
	if price, ok := asFloat(row["price"]); ok {
		out["price"] = price
	}
	if md, ok := asFloat(row["minDays"]); ok {
		out["minDays"] = int(md)
	}
	if xd, ok := asFloat(row["maxDays"]); ok {
		out["maxDays"] = int(xd)
	}
	for _, key := range []string{"brand", "name", "article", "supplier", "isOriginal", "isOem"} {
		if v, ok := row[key]; ok {
			out[key] = v
		}
	}
	return out
}

func feedDeliveryDays(row map[string]any) *int {
	if md, ok := asFloat(row["minDays"]); ok {
		d := int(md)
		return &d
	}
	if xd, ok := asFloat(row["maxDays"]); ok {
		d := int(xd)
		return &d
	}
	return nil
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// BuildFromPayload converts offer rows echoed back in the request payload
// into domain offers. Rows need a positive integer id and a numeric price;
// duplicate ids keep the first row.
func BuildFromPayload(rows []map[string]any) []domain.Offer {
	var out []domain.Offer
	seen := map[int]bool{}
	for _, row := range rows {
		idF, ok := asFloat(row["id"])
		if !ok || idF != math.Trunc(idF) {
			continue
		}
		id := int(idF)
		if id <= 0 || seen[id] {
			continue
		}
		price, ok := asFloat(row["price"])
		if !ok {
			continue
		}
		seen[id] = true

		offer := domain.Offer{ID: id, Price: price, Currency: "RUB", Quantity: 1}
		if v, ok := row["oem"].(string); ok {
			offer.OEM = v
		}
		if v, ok := row["brand"].(string); ok {
			offer.Brand = v
		}
		if v, ok := row["name"].(string); ok {
			offer.Name = v
		}
		if v, ok := row["currency"].(string); ok && strings.TrimSpace(v) != "" {
			offer.Currency = v
		}
		if v, ok := asFloat(row["quantity"]); ok && v >= 1 {
			offer.Quantity = int(v)
		}
		if v, ok := asFloat(row["delivery_days"]); ok {
			d := int(v)
			offer.DeliveryDays = &d
		}
		if v, ok := row["source"].(string); ok {
			offer.Source = v
		}
		if v, ok := row["comment"].(string); ok {
			offer.Comment = v
		}
		out = append(out, offer)
	}
	return out
}
