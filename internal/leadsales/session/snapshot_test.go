package session

import (
	"reflect"
	"testing"

	"hf_cortex_backend/internal/leadsales/domain"
)

func TestStageResolution(t *testing.T) {
	tests := []struct {
		name string
		snap Snapshot
		want domain.FunnelStage
	}{
		{"empty snapshot", Snapshot{}, domain.StageNew},
		{"top level stage", Snapshot{"stage": "PRICING"}, domain.StagePricing},
		{"state stage wins over top when advanced", Snapshot{
			"stage": "NEW",
			"state": map[string]any{"stage": "CONTACT"},
		}, domain.StageContact},
		{"state stage wins over stale top", Snapshot{
			"stage": "PRICING",
			"state": map[string]any{"stage": "ADDRESS"},
		}, domain.StageAddress},
		{"top wins when state is NEW", Snapshot{
			"stage": "PRICING",
			"state": map[string]any{"stage": "NEW"},
		}, domain.StagePricing},
		{"lowercase normalized", Snapshot{"stage": " contact "}, domain.StageContact},
		{"unknown falls back to NEW", Snapshot{"stage": "BOGUS"}, domain.StageNew},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.snap.Stage(); got != tt.want {
				t.Errorf("Stage() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStrProbesAllLevels(t *testing.T) {
	snap := Snapshot{
		"phone":   "+79990001122",
		"comment": "   ",
		"state": map[string]any{
			"client_name": "Иванов Иван Иванович",
			"lead": map[string]any{
				"address": "Москва, Тверская 1",
			},
		},
		"lead": map[string]any{
			"client_address": "Самовывоз",
		},
	}

	if got := snap.Str("phone"); got != "+79990001122" {
		t.Errorf("top-level phone = %q", got)
	}
	if got := snap.Str("client_name"); got != "Иванов Иван Иванович" {
		t.Errorf("state client_name = %q", got)
	}
	if got := snap.Str("address"); got != "Москва, Тверская 1" {
		t.Errorf("state.lead address = %q", got)
	}
	if got := snap.Str("client_address"); got != "Самовывоз" {
		t.Errorf("legacy lead client_address = %q", got)
	}
	if got := snap.Str("missing"); got != "" {
		t.Errorf("missing key = %q", got)
	}
	if got := snap.Str("comment"); got != "" {
		t.Errorf("blank-only values must be skipped, got %q", got)
	}
}

func TestChoiceNormalization(t *testing.T) {
	tests := []struct {
		name string
		snap Snapshot
		want []int
	}{
		{"scalar", Snapshot{"chosen_offer_id": float64(2)}, []int{2}},
		{"digit string", Snapshot{"chosen_offer_id": "3"}, []int{3}},
		{"list with junk", Snapshot{
			"chosen_offer_id": []any{float64(3), float64(3), float64(1), "x", float64(0)},
		}, []int{1, 3}},
		{"in state", Snapshot{
			"state": map[string]any{"chosen_offer_id": float64(2)},
		}, []int{2}},
		{"absent", Snapshot{}, nil},
		{"non positive", Snapshot{"chosen_offer_id": float64(0)}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.snap.Choice("chosen_offer_id")
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Choice = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStateOEMs(t *testing.T) {
	snap := Snapshot{
		"state": map[string]any{"oems": []any{"5QM411105R", "", "4N0907998"}},
	}
	got := snap.StateOEMs()
	want := []string{"5QM411105R", "4N0907998"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("StateOEMs = %v, want %v", got, want)
	}

	if got := (Snapshot{}).StateOEMs(); got != nil {
		t.Errorf("empty snapshot StateOEMs = %v, want nil", got)
	}
}

func TestAsSnapshot(t *testing.T) {
	if got := AsSnapshot(nil); len(got) != 0 {
		t.Errorf("AsSnapshot(nil) = %v", got)
	}
	if got := AsSnapshot("not a map"); len(got) != 0 {
		t.Errorf("AsSnapshot(string) = %v", got)
	}
	m := map[string]any{"stage": "NEW"}
	if got := AsSnapshot(m); got.Stage() != domain.StageNew {
		t.Error("expected map to pass through")
	}
}
