package advisory

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"hf_cortex_backend/internal/leadsales/domain"
	"hf_cortex_backend/platform/logger"
)

func TestResultFromPayloadDefaults(t *testing.T) {
	r := resultFromPayload(map[string]any{})

	if r.Action != domain.ActionReply {
		t.Errorf("action = %q", r.Action)
	}
	if r.Stage != domain.StageNew {
		t.Errorf("stage = %v", r.Stage)
	}
	if r.Confidence != nil {
		t.Errorf("confidence = %v, want nil", *r.Confidence)
	}
	if r.OEMs == nil || r.Offers == nil || r.Debug == nil {
		t.Error("collections must be initialized")
	}
	if r.ChosenOfferID.IsSet() {
		t.Error("chosen must be empty")
	}
}

func TestResultFromPayloadCoercion(t *testing.T) {
	r := resultFromPayload(map[string]any{
		"action":                 "Reply",
		"stage":                  " pricing ",
		"reply":                  "  ок  ",
		"intent":                 "oem_query",
		"confidence":             float64(1.7),
		"requires_clarification": true,
		"need_operator":          "yes",
		"oems":                   []any{"5QM411105R", float64(42), ""},
		"update_lead_fields":     map[string]any{"NAME": "Иван"},
		"product_rows":           "not a list",
		"meta":                   map[string]any{"k": "v"},
	})

	if r.Action != "reply" {
		t.Errorf("action = %q", r.Action)
	}
	if r.Stage != domain.StagePricing {
		t.Errorf("stage = %v", r.Stage)
	}
	if r.Reply != "ок" {
		t.Errorf("reply = %q", r.Reply)
	}
	if r.Intent != domain.IntentOEMQuery {
		t.Errorf("intent = %v", r.Intent)
	}
	if r.Confidence == nil || *r.Confidence != 1.0 {
		t.Errorf("confidence = %v, want clamp to 1.0", r.Confidence)
	}
	if !r.RequiresClarification {
		t.Error("requires_clarification lost")
	}
	if r.NeedOperator {
		t.Error("need_operator must drop non-bool values")
	}
	if !reflect.DeepEqual(r.OEMs, []string{"5QM411105R"}) {
		t.Errorf("oems = %v", r.OEMs)
	}
	if r.UpdateLeadFields["NAME"] != "Иван" {
		t.Errorf("lead fields = %v", r.UpdateLeadFields)
	}
	if len(r.ProductRows) != 0 {
		t.Errorf("product_rows = %v, want empty on wrong type", r.ProductRows)
	}
	if r.Meta["k"] != "v" {
		t.Errorf("meta = %v", r.Meta)
	}
}

func TestResultFromPayloadChosenShapes(t *testing.T) {
	cases := []struct {
		name     string
		value    any
		wantKind domain.ChoiceKind
		wantIDs  []int
	}{
		{"scalar", float64(2), domain.ChoiceSingle, []int{2}},
		{"list", []any{float64(3), float64(1)}, domain.ChoiceMultiple, []int{3, 1}},
		{"null", nil, domain.ChoiceNone, []int{}},
		{"string", "два", domain.ChoiceInvalid, []int{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := resultFromPayload(map[string]any{"chosen_offer_id": tc.value})
			if r.ChosenOfferID.Kind() != tc.wantKind {
				t.Fatalf("kind = %v, want %v", r.ChosenOfferID.Kind(), tc.wantKind)
			}
			if got := r.ChosenOfferID.IDs(); !reflect.DeepEqual(got, tc.wantIDs) {
				t.Errorf("ids = %v, want %v", got, tc.wantIDs)
			}
		})
	}
}

func TestSupplementNameOnContactStage(t *testing.T) {
	payload := map[string]any{
		"stage":       "CONTACT",
		"reply":       "ок",
		"client_name": "Иванов Иван Иванович",
	}
	r := resultFromPayload(payload)
	supplementName(&r, payload)

	if r.UpdateLeadFields[domain.FieldLastName] != "Иванов" {
		t.Errorf("LAST_NAME = %v", r.UpdateLeadFields[domain.FieldLastName])
	}
	if r.UpdateLeadFields[domain.FieldName] != "Иван" {
		t.Errorf("NAME = %v", r.UpdateLeadFields[domain.FieldName])
	}
	if r.UpdateLeadFields[domain.FieldSecondName] != "Иванович" {
		t.Errorf("SECOND_NAME = %v", r.UpdateLeadFields[domain.FieldSecondName])
	}
	if r.ContactUpdate == nil || r.ContactUpdate.FullNameRaw != "Иванов Иван Иванович" {
		t.Errorf("contact_update = %+v", r.ContactUpdate)
	}
}

func TestSupplementNameFromContactUpdate(t *testing.T) {
	payload := map[string]any{
		"stage":          "FINAL",
		"reply":          "ок",
		"contact_update": map[string]any{"full_name": "Петров Петр Петрович"},
	}
	r := resultFromPayload(payload)
	supplementName(&r, payload)

	if r.UpdateLeadFields[domain.FieldLastName] != "Петров" {
		t.Errorf("LAST_NAME = %v", r.UpdateLeadFields[domain.FieldLastName])
	}
	if r.ContactUpdate == nil || r.ContactUpdate.Name != "Петр" {
		t.Errorf("contact_update = %+v", r.ContactUpdate)
	}
}

func TestSupplementNameSkippedOutsideContactStages(t *testing.T) {
	payload := map[string]any{
		"stage":       "PRICING",
		"reply":       "ок",
		"client_name": "Иванов Иван Иванович",
	}
	r := resultFromPayload(payload)
	supplementName(&r, payload)

	if len(r.UpdateLeadFields) != 0 {
		t.Errorf("lead fields = %v, want empty", r.UpdateLeadFields)
	}
}

type fakeModel struct {
	raw string
	err error
}

func (f *fakeModel) GenerateJSON(context.Context, string, string) (string, error) {
	return f.raw, f.err
}

func TestQualifyWithoutModel(t *testing.T) {
	svc := NewService(nil, logger.New("development"))

	r := svc.Qualify(context.Background(), Input{})

	if r.Reply != fallbackReply {
		t.Errorf("reply = %q", r.Reply)
	}
	if r.Debug["advisory_disabled"] != true {
		t.Errorf("debug = %v", r.Debug)
	}
}

func TestQualifyModelError(t *testing.T) {
	svc := NewService(&fakeModel{err: errors.New("quota exceeded")}, logger.New("development"))

	r := svc.Qualify(context.Background(), Input{Msg: map[string]any{"text": "привет"}})

	if r.Reply != fallbackReply {
		t.Errorf("reply = %q", r.Reply)
	}
	if r.Debug["advisory_error"] != "quota exceeded" {
		t.Errorf("debug = %v", r.Debug)
	}
}

func TestQualifyBrokenJSON(t *testing.T) {
	svc := NewService(&fakeModel{raw: "Здравствуйте! Чем могу помочь?"}, logger.New("development"))

	r := svc.Qualify(context.Background(), Input{Msg: map[string]any{"text": "привет"}})

	if r.Reply != fallbackReply {
		t.Errorf("reply = %q, the model's raw text must not leak", r.Reply)
	}
	if r.Debug["advisory_parse_error"] != true {
		t.Errorf("debug = %v", r.Debug)
	}
}

func TestQualifyValidDraft(t *testing.T) {
	svc := NewService(&fakeModel{raw: `{"action":"reply","stage":"PRICING","reply":"варианты ниже","oems":["5QM411105R"],"chosen_offer_id":null}`}, logger.New("development"))

	r := svc.Qualify(context.Background(), Input{Msg: map[string]any{"text": "что по цене?"}})

	if r.Stage != domain.StagePricing {
		t.Errorf("stage = %v", r.Stage)
	}
	if r.Reply != "варианты ниже" {
		t.Errorf("reply = %q", r.Reply)
	}
	if !reflect.DeepEqual(r.OEMs, []string{"5QM411105R"}) {
		t.Errorf("oems = %v", r.OEMs)
	}
}
