package service

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"hf_cortex_backend/internal/leadsales/advisory"
	"hf_cortex_backend/internal/leadsales/domain"
	"hf_cortex_backend/platform/logger"
)

type stubAdvisory struct {
	calls  int
	lastIn advisory.Input
	result domain.QualificationResult
}

func (s *stubAdvisory) Qualify(_ context.Context, in advisory.Input) domain.QualificationResult {
	s.calls++
	s.lastIn = in
	return s.result
}

func newTestService(stub *stubAdvisory) *Service {
	return New(stub, logger.New("development"))
}

func feedFixture() map[string]any {
	return map[string]any{
		"5QM411105R": map[string]any{
			"offers": []any{
				map[string]any{"brand": "VAG", "price": float64(21800), "minDays": float64(217), "maxDays": float64(217)},
				map[string]any{"brand": "VAG", "price": float64(17700), "minDays": float64(337), "maxDays": float64(337)},
			},
		},
	}
}

func payloadOffersFixture() []map[string]any {
	return []map[string]any{
		{"id": float64(1), "oem": "5QM411105R", "brand": "VAG", "name": "VAG 5QM411105R", "price": float64(17700), "currency": "RUB", "quantity": float64(1), "delivery_days": float64(12)},
		{"id": float64(2), "oem": "5QM411105R", "brand": "VAG", "name": "VAG 5QM411105R", "price": float64(21800), "currency": "RUB", "quantity": float64(1), "delivery_days": float64(7)},
	}
}

func TestFreshFeedOnNewStageSkipsAdvisory(t *testing.T) {
	stub := &stubAdvisory{}
	svc := newTestService(stub)

	result := svc.Qualify(context.Background(), TurnRequest{
		Msg:          map[string]any{"text": "нужно 5QM411105R"},
		InjectedABCP: feedFixture(),
	})

	if stub.calls != 0 {
		t.Errorf("advisory calls = %d, want 0", stub.calls)
	}
	if result.Stage != domain.StagePricing {
		t.Errorf("stage = %v, want PRICING", result.Stage)
	}
	if result.Debug["short_path"] != "abcp_injected_new" {
		t.Errorf("debug = %v", result.Debug)
	}
	if result.Debug["requested_oem"] != "5QM411105R" {
		t.Errorf("requested_oem = %v", result.Debug["requested_oem"])
	}
	if len(result.Offers) != 2 || result.Offers[0].ID != 1 || result.Offers[0].Price != 17700 {
		t.Errorf("offers = %v", result.Offers)
	}
	if !reflect.DeepEqual(result.OEMs, []string{"5QM411105R"}) {
		t.Errorf("oems = %v", result.OEMs)
	}
	if !strings.Contains(result.Reply, "Вариант 1") {
		t.Errorf("reply = %q", result.Reply)
	}
}

func TestInvalidModelChoiceIsSanitized(t *testing.T) {
	draft := domain.NewResult()
	draft.Stage = domain.StageContact
	draft.Reply = "ok"
	draft.ChosenOfferID = domain.SingleChoice(999)
	stub := &stubAdvisory{result: draft}
	svc := newTestService(stub)

	result := svc.Qualify(context.Background(), TurnRequest{
		Msg:             map[string]any{"text": "оформляем"},
		SessionSnapshot: map[string]any{"state": map[string]any{"stage": "CONTACT", "oems": []any{"5QM411105R"}}},
		InjectedABCP:    feedFixture(),
	})

	if result.ChosenOfferID.IsSet() {
		t.Errorf("chosen = %v, want none", result.ChosenOfferID.IDs())
	}
	if result.Debug["chosen_offer_id_invalid"] != 999 {
		t.Errorf("debug = %v", result.Debug)
	}
}

func TestStickyChoiceSurvivesModelForgetting(t *testing.T) {
	draft := domain.NewResult()
	draft.Stage = domain.StageContact
	draft.Reply = "ok"
	stub := &stubAdvisory{result: draft}
	svc := newTestService(stub)

	result := svc.Qualify(context.Background(), TurnRequest{
		Msg: map[string]any{"text": "готов оформить"},
		SessionSnapshot: map[string]any{"state": map[string]any{
			"stage":           "CONTACT",
			"oems":            []any{"5QM411105R"},
			"chosen_offer_id": float64(2),
		}},
		InjectedABCP: feedFixture(),
	})

	if !reflect.DeepEqual(result.ChosenOfferID.IDs(), []int{2}) {
		t.Errorf("chosen = %v, want [2]", result.ChosenOfferID.IDs())
	}
}

func TestPayloadOffersFallback(t *testing.T) {
	draft := domain.NewResult()
	draft.Stage = domain.StagePricing
	draft.Reply = "ok"
	draft.ChosenOfferID = domain.SingleChoice(2)
	stub := &stubAdvisory{result: draft}
	svc := newTestService(stub)

	result := svc.Qualify(context.Background(), TurnRequest{
		Msg:             map[string]any{"text": "беру вариант 2"},
		SessionSnapshot: map[string]any{"state": map[string]any{"stage": "PRICING"}},
		PayloadOffers:   payloadOffersFixture(),
	})

	if stub.calls != 1 {
		t.Fatalf("advisory calls = %d, want 1", stub.calls)
	}
	if len(stub.lastIn.Offers) != 2 {
		t.Errorf("advisory saw %d offers", len(stub.lastIn.Offers))
	}
	ids := []int{result.Offers[0].ID, result.Offers[1].ID}
	if !reflect.DeepEqual(ids, []int{1, 2}) {
		t.Errorf("offer ids = %v, want [1 2]", ids)
	}
	if !reflect.DeepEqual(result.ChosenOfferID.IDs(), []int{2}) {
		t.Errorf("chosen = %v, want [2]", result.ChosenOfferID.IDs())
	}
	if result.Debug["offers_source"] != "payload" {
		t.Errorf("offers_source = %v", result.Debug["offers_source"])
	}
}

func TestPolicyClarificationSurvivesHardening(t *testing.T) {
	draft := domain.NewResult()
	draft.Stage = domain.StageContact
	draft.Reply = "ok"
	stub := &stubAdvisory{result: draft}
	svc := newTestService(stub)

	result := svc.Qualify(context.Background(), TurnRequest{
		Msg:             map[string]any{"text": "102123458"},
		SessionSnapshot: map[string]any{"state": map[string]any{"stage": "CONTACT"}},
	})

	if result.Intent != domain.IntentClarifyNumberType {
		t.Errorf("intent = %v", result.Intent)
	}
	if !result.RequiresClarification {
		t.Error("requires_clarification must be true")
	}
	if result.Stage != domain.StageNew {
		t.Errorf("stage = %v, want NEW", result.Stage)
	}
	if result.Action != domain.ActionReply {
		t.Errorf("action = %v", result.Action)
	}
	if !strings.Contains(strings.ToLower(result.Reply), "номер заказа или oem") {
		t.Errorf("reply = %q", result.Reply)
	}
}

func TestServiceNoticeSurvivesHardening(t *testing.T) {
	draft := domain.NewResult()
	draft.Stage = domain.StageContact
	draft.Reply = "Напишите ФИО и телефон"
	stub := &stubAdvisory{result: draft}
	svc := newTestService(stub)

	result := svc.Qualify(context.Background(), TurnRequest{
		Msg:             map[string]any{"text": "Ваш прайс давно не обновлялся на farpost, проверьте packetdated"},
		SessionSnapshot: map[string]any{"state": map[string]any{"stage": "CONTACT"}},
	})

	if result.Intent != domain.IntentServiceNotice {
		t.Errorf("intent = %v", result.Intent)
	}
	if result.Stage != domain.StageInWork {
		t.Errorf("stage = %v, want IN_WORK", result.Stage)
	}
	if !strings.Contains(strings.ToLower(result.Reply), "проверим обновление прайса") {
		t.Errorf("reply = %q", result.Reply)
	}
}

func TestDebugDefaultsAreStamped(t *testing.T) {
	draft := domain.NewResult()
	draft.Reply = "ok"
	stub := &stubAdvisory{result: draft}
	svc := newTestService(stub)

	result := svc.Qualify(context.Background(), TurnRequest{
		Msg:             map[string]any{"text": "привет"},
		SessionSnapshot: map[string]any{"state": map[string]any{"stage": "PRICING"}},
	})

	if result.Debug["stage_in"] != "PRICING" {
		t.Errorf("stage_in = %v", result.Debug["stage_in"])
	}
	if result.Debug["has_abcp"] != false {
		t.Errorf("has_abcp = %v", result.Debug["has_abcp"])
	}
	if _, ok := result.Debug["requested_oem"]; !ok {
		t.Error("requested_oem must be stamped")
	}
}

func TestRequestedOEMFromSessionAfterNewStage(t *testing.T) {
	draft := domain.NewResult()
	draft.Reply = "ok"
	stub := &stubAdvisory{result: draft}
	svc := newTestService(stub)

	result := svc.Qualify(context.Background(), TurnRequest{
		Msg: map[string]any{"text": "что по срокам?"},
		SessionSnapshot: map[string]any{"state": map[string]any{
			"stage": "PRICING",
			"oems":  []any{"5QM411105R"},
		}},
	})

	if result.Debug["requested_oem"] != "5QM411105R" {
		t.Errorf("requested_oem = %v", result.Debug["requested_oem"])
	}
}
