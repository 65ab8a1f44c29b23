package advisory

import (
	"encoding/json"
	"strings"

	"hf_cortex_backend/internal/leadsales/domain"
	"hf_cortex_backend/internal/leadsales/parsers"
)

// resultFromPayload coerces the model's decoded JSON into a result,
// field by field. The model's output is untrusted: wrong types drop to
// safe defaults instead of aborting the turn.
func resultFromPayload(m map[string]any) domain.QualificationResult {
	r := domain.NewResult()

	if v := asString(m["action"]); v != "" {
		r.Action = strings.ToLower(v)
	}
	if v := asString(m["stage"]); v != "" {
		r.Stage = domain.NormalizeStage(v)
	}
	r.Reply = asString(m["reply"])
	r.Intent = domain.Intent(strings.ToUpper(asString(m["intent"])))
	r.AmbiguityReason = asString(m["ambiguity_reason"])
	r.RequiresClarification = asBool(m["requires_clarification"])
	r.ClientName = asString(m["client_name"])
	r.NeedOperator = asBool(m["need_operator"])

	if v, ok := m["confidence"].(float64); ok {
		if v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		r.Confidence = &v
	}

	if list, ok := m["oems"].([]any); ok {
		for _, item := range list {
			if s := asString(item); s != "" {
				r.OEMs = append(r.OEMs, s)
			}
		}
	}
	if fields, ok := m["update_lead_fields"].(map[string]any); ok {
		r.UpdateLeadFields = fields
	}
	if rows, ok := m["product_rows"].([]any); ok {
		r.ProductRows = rows
	}
	if picks, ok := m["product_picks"].([]any); ok {
		r.ProductPicks = picks
	}
	if meta, ok := m["meta"].(map[string]any); ok {
		r.Meta = meta
	}
	if debug, ok := m["debug"].(map[string]any); ok {
		r.Debug = debug
	}

	if raw, ok := m["offers"]; ok {
		if encoded, err := json.Marshal(raw); err == nil {
			var offers []domain.Offer
			if json.Unmarshal(encoded, &offers) == nil && offers != nil {
				r.Offers = offers
			}
		}
	}

	if raw, ok := m["chosen_offer_id"]; ok {
		if encoded, err := json.Marshal(raw); err == nil {
			var choice domain.OfferChoice
			_ = choice.UnmarshalJSON(encoded)
			r.ChosenOfferID = choice
		}
	}

	if cu, ok := m["contact_update"].(map[string]any); ok {
		contact := domain.ContactUpdate{
			FullNameRaw: asString(cu["full_name_raw"]),
			Name:        asString(cu["name"]),
			LastName:    asString(cu["last_name"]),
			SecondName:  asString(cu["second_name"]),
			Phone:       asString(cu["phone"]),
			Address:     asString(cu["address"]),
		}
		if !contact.IsZero() {
			r.ContactUpdate = &contact
		}
	}

	r.EnsureCollections()
	return r
}

// supplementName backfills structured name fields on the contact stages.
// The only allowed sources are the explicit name fields the model set;
// the reply text is never mined for names.
func supplementName(r *domain.QualificationResult, m map[string]any) {
	if r.Stage != domain.StageContact && r.Stage != domain.StageFinal {
		return
	}

	source := r.ClientName
	if source == "" {
		source = asString(r.UpdateLeadFields["client_name"])
	}
	if source == "" {
		if cu, ok := m["contact_update"].(map[string]any); ok {
			source = asString(cu["full_name"])
			if source == "" {
				source = asString(cu["fio"])
			}
		}
	}
	if strings.TrimSpace(source) == "" {
		return
	}

	parsed := parsers.ExtractFullName(source)
	if parsed == nil {
		return
	}

	if asString(r.UpdateLeadFields[domain.FieldLastName]) == "" {
		r.UpdateLeadFields[domain.FieldLastName] = parsed.Last
	}
	if asString(r.UpdateLeadFields[domain.FieldName]) == "" {
		r.UpdateLeadFields[domain.FieldName] = parsed.First
	}
	if asString(r.UpdateLeadFields[domain.FieldSecondName]) == "" {
		r.UpdateLeadFields[domain.FieldSecondName] = parsed.Middle
	}

	cu := domain.ContactUpdate{}
	if r.ContactUpdate != nil {
		cu = *r.ContactUpdate
	}
	if cu.LastName == "" {
		cu.LastName = parsed.Last
	}
	if cu.Name == "" {
		cu.Name = parsed.First
	}
	if cu.SecondName == "" {
		cu.SecondName = parsed.Middle
	}
	if cu.FullNameRaw == "" {
		cu.FullNameRaw = parsed.Raw
	}
	r.ContactUpdate = &cu
}

func asString(v any) string {
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}
