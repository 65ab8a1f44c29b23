// Package hardening enforces the strict CONTACT -> ADDRESS -> FINAL funnel
// on top of whatever the advisory model proposed. It reconciles the chosen
// offer with the message and the session, strips unconfirmed CRM writes
// and replaces the model's stage and reply when required contact data is
// still missing.
package hardening

import (
	"strings"

	"hf_cortex_backend/internal/leadsales/domain"
	"hf_cortex_backend/internal/leadsales/offers"
	"hf_cortex_backend/internal/leadsales/parsers"
	"hf_cortex_backend/internal/leadsales/session"
)

const (
	contactBothReply  = "Спасибо! Для оформления напишите, пожалуйста, полное ФИО (Фамилия Имя Отчество) и номер телефона."
	contactNameReply  = "Спасибо! Напишите, пожалуйста, полное ФИО (Фамилия Имя Отчество)."
	contactPhoneReply = "Спасибо! Напишите, пожалуйста, номер телефона для связи."
	addressReply      = "Спасибо! Укажите адрес доставки (город, улица, дом, квартира) или напишите «Самовывоз»."
	finalReply        = "Отлично, всё получил. Сейчас оформлю заказ и передам менеджеру для подтверждения."
)

// Intents whose verdict was fixed upstream and must not be replaced by
// funnel stage enforcement.
var enforcementExemptIntents = map[domain.Intent]struct{}{
	domain.IntentServiceNotice:     {},
	domain.IntentOrderStatus:       {},
	domain.IntentClarifyNumberType: {},
}

// ApplyStrictFunnel runs the governor over the draft result. It never
// fails the turn: any panic inside returns the draft unchanged.
func ApplyStrictFunnel(
	r domain.QualificationResult,
	stageIn domain.FunnelStage,
	msgText string,
	snap session.Snapshot,
) (out domain.QualificationResult) {
	out = r
	defer func() {
		if recover() != nil {
			out = r
		}
	}()
	out = apply(r, stageIn, msgText, snap)
	return out
}

func apply(
	r domain.QualificationResult,
	stageIn domain.FunnelStage,
	msgText string,
	snap session.Snapshot,
) domain.QualificationResult {
	r.EnsureCollections()

	// Chosen offer: the deterministic detector wins over the model, the
	// session's sticky value backs up a choice the model lost.
	valid := map[int]bool{}
	for _, offer := range r.Offers {
		valid[offer.ID] = true
	}
	if detected := detectChoice(msgText, valid); detected.IsSet() {
		r.ChosenOfferID = detected
	} else if !r.ChosenOfferID.IsSet() {
		if sticky := snap.Choice("chosen_offer_id"); len(sticky) > 0 {
			if len(sticky) == 1 {
				r.ChosenOfferID = domain.SingleChoice(sticky[0])
			} else {
				r.ChosenOfferID = domain.MultipleChoice(sticky)
			}
		}
	}

	// Requested quantity goes onto the chosen offers; the Node core copies
	// it into product_rows.
	if qty := parsers.ExtractQuantity(msgText); qty > 0 && r.ChosenOfferID.IsSet() && len(r.Offers) > 0 {
		r.Offers = domain.CloneOffers(r.Offers)
		for i := range r.Offers {
			if r.ChosenOfferID.Contains(r.Offers[i].ID) {
				r.Offers[i].Quantity = qty
			}
		}
		r.Meta["requested_qty"] = qty
	}

	// Truth sources: the current message first, the session as backup.
	fioMsg := parsers.ExtractFullName(msgText)
	phoneMsg := parsers.ExtractPhone(msgText)
	addrMsg := parsers.ExtractAddressOrPickup(msgText)

	var fioSess *parsers.FullName
	if name := snap.Str("client_name"); name != "" {
		fioSess = parsers.ExtractFullName(name)
	}
	sessPhone := snap.Str("phone")
	sessAddress := firstNonEmpty(
		snap.Str("address"),
		snap.Str("client_address"),
		snap.Str("CLIENT_ADDRESS"),
		snap.Str("DELIVERY_ADDRESS"),
		snap.Str("delivery_address"),
	)

	effectiveFIO := fioMsg
	if effectiveFIO == nil {
		effectiveFIO = fioSess
	}
	effectivePhone := firstNonEmpty(phoneMsg, sessPhone)
	effectiveAddress := firstNonEmpty(addrMsg, sessAddress)

	// Anti-hallucination: data the model proposed but neither the message
	// nor the session confirms never reaches the CRM.
	if effectiveFIO == nil {
		delete(r.UpdateLeadFields, domain.FieldName)
		delete(r.UpdateLeadFields, domain.FieldLastName)
		delete(r.UpdateLeadFields, domain.FieldSecondName)
	}
	if effectivePhone == "" {
		delete(r.UpdateLeadFields, domain.FieldPhone)
	}
	if effectiveAddress == "" {
		delete(r.UpdateLeadFields, "CLIENT_ADDRESS")
		delete(r.UpdateLeadFields, domain.FieldDeliveryAddress)
	}
	for key := range r.UpdateLeadFields {
		if _, ok := domain.AllowedLeadFields[key]; !ok {
			delete(r.UpdateLeadFields, key)
		}
	}

	cu := domain.ContactUpdate{}
	if r.ContactUpdate != nil {
		cu = *r.ContactUpdate
	}
	if effectiveFIO != nil {
		r.UpdateLeadFields[domain.FieldLastName] = effectiveFIO.Last
		r.UpdateLeadFields[domain.FieldName] = effectiveFIO.First
		r.UpdateLeadFields[domain.FieldSecondName] = effectiveFIO.Middle
		r.ClientName = effectiveFIO.Raw
		cu.FullNameRaw = effectiveFIO.Raw
		cu.LastName = effectiveFIO.Last
		cu.Name = effectiveFIO.First
		cu.SecondName = effectiveFIO.Middle
	}
	if effectivePhone != "" {
		r.UpdateLeadFields[domain.FieldPhone] = effectivePhone
		cu.Phone = effectivePhone
	}
	if effectiveAddress != "" {
		// Delivery address goes to the lead only, never to the contact card.
		r.UpdateLeadFields[domain.FieldDeliveryAddress] = effectiveAddress
	}
	if cu.IsZero() {
		r.ContactUpdate = nil
	} else {
		r.ContactUpdate = &cu
	}

	if exemptFromEnforcement(r) {
		return r
	}

	enforce := stageIn == domain.StageContact || stageIn == domain.StageAddress ||
		(r.ChosenOfferID.IsSet() && stageIn != domain.StageFinal)
	if !enforce {
		return r
	}

	hasFIO := effectiveFIO != nil
	hasPhone := effectivePhone != ""
	hasAddress := effectiveAddress != ""

	switch {
	case !hasFIO || !hasPhone:
		r.Stage = domain.StageContact
		r.Action = domain.ActionReply
		r.ProductRows = []any{}
		switch {
		case !hasFIO && !hasPhone:
			r.Reply = contactBothReply
		case !hasFIO:
			r.Reply = contactNameReply
		default:
			r.Reply = contactPhoneReply
		}

	case !hasAddress:
		r.Stage = domain.StageAddress
		r.Action = domain.ActionReply
		r.ProductRows = []any{}
		r.Reply = addressReply

	default:
		r.Stage = domain.StageFinal
		if strings.TrimSpace(r.Reply) == "" {
			r.Reply = finalReply
		}
		if len(r.ProductRows) == 0 && r.ChosenOfferID.IsSet() {
			for _, offer := range r.Offers {
				if r.ChosenOfferID.Contains(offer.ID) {
					r.ProductRows = append(r.ProductRows, map[string]any{
						"PRODUCT_NAME": strings.TrimSpace(offers.DisplayBrand(offer) + " " + strings.ToUpper(strings.TrimSpace(offer.OEM))),
						"PRICE":        offer.Price,
						"QUANTITY":     offer.Quantity,
					})
				}
			}
		}
	}
	return r
}

// detectChoice reads a pick out of the message and keeps only ids that
// exist in the canonical list. An all-invalid pick counts as no pick, so
// the sticky session value can still apply.
func detectChoice(msgText string, valid map[int]bool) domain.OfferChoice {
	if len(valid) == 0 {
		return domain.NoChoice()
	}
	detected := parsers.ExtractOfferChoice(msgText)
	if !detected.IsSet() {
		return domain.NoChoice()
	}
	kept := make([]int, 0, len(detected.IDs()))
	for _, id := range detected.IDs() {
		if valid[id] {
			kept = append(kept, id)
		}
	}
	switch len(kept) {
	case 0:
		return domain.NoChoice()
	case 1:
		return domain.SingleChoice(kept[0])
	default:
		return domain.MultipleChoice(kept)
	}
}

func exemptFromEnforcement(r domain.QualificationResult) bool {
	stage := domain.NormalizeStage(string(r.Stage))
	if stage == domain.StageLost || stage == domain.StageHardPick {
		return true
	}
	if strings.ToLower(strings.TrimSpace(r.Action)) == domain.ActionHandoverOperator {
		return true
	}
	_, exempt := enforcementExemptIntents[r.Intent]
	return exempt
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
