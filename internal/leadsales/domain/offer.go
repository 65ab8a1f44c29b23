package domain

// Offer is one purchasable line item shown to the customer. The id is a
// turn-scoped human-facing number ("вариант 1", "вариант 2"); the Offer
// Canonicalizer is the only component allowed to assign it.
type Offer struct {
	ID           int     `json:"id"`
	OEM          string  `json:"oem,omitempty"`
	Brand        string  `json:"brand,omitempty"`
	Name         string  `json:"name,omitempty"`
	Price        float64 `json:"price"`
	Currency     string  `json:"currency"`
	Quantity     int     `json:"quantity"`
	DeliveryDays *int    `json:"delivery_days,omitempty"`
	Source       string  `json:"source,omitempty"`
	Comment      string  `json:"comment,omitempty"`
}

// CloneOffers returns a shallow copy of the slice so a stage can adjust
// per-offer fields without aliasing the previous stage's record.
func CloneOffers(offers []Offer) []Offer {
	if offers == nil {
		return nil
	}
	out := make([]Offer, len(offers))
	copy(out, offers)
	return out
}
