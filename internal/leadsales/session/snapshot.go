// Package session reads values out of the dialogue snapshot the bot sends
// with every turn. Snapshots arrive in several historical shapes (top-level
// keys, a nested state map, a lead map inside state, a legacy lead map at
// the top), so lookups probe all of them in a fixed order.
package session

import (
	"sort"
	"strconv"
	"strings"

	"hf_cortex_backend/internal/leadsales/domain"
)

// Snapshot is the raw session state as decoded from the request payload.
type Snapshot map[string]any

// AsSnapshot coerces an arbitrary decoded JSON value into a Snapshot.
// Anything that is not a JSON object yields an empty snapshot.
func AsSnapshot(v any) Snapshot {
	if m, ok := v.(map[string]any); ok {
		return Snapshot(m)
	}
	return Snapshot{}
}

func (s Snapshot) state() map[string]any {
	if m, ok := s["state"].(map[string]any); ok {
		return m
	}
	return nil
}

func (s Snapshot) stateLead() map[string]any {
	if st := s.state(); st != nil {
		if m, ok := st["lead"].(map[string]any); ok {
			return m
		}
	}
	return nil
}

func (s Snapshot) legacyLead() map[string]any {
	if m, ok := s["lead"].(map[string]any); ok {
		return m
	}
	return nil
}

// Stage resolves the funnel stage recorded in the snapshot. A non-NEW
// stage inside state wins over the top-level one; unknown values fall
// back to NEW.
func (s Snapshot) Stage() domain.FunnelStage {
	stateStage := ""
	if st := s.state(); st != nil {
		if v, ok := st["stage"].(string); ok {
			stateStage = v
		}
	}
	topStage := ""
	if v, ok := s["stage"].(string); ok {
		topStage = v
	}

	if st := domain.NormalizeStage(stateStage); domain.IsKnownStage(st) && st != domain.StageNew {
		return st
	}
	if st := domain.NormalizeStage(topStage); domain.IsKnownStage(st) {
		return st
	}
	if st := domain.NormalizeStage(stateStage); domain.IsKnownStage(st) {
		return st
	}
	return domain.StageNew
}

// Str looks up a string value by key, probing the top level, state,
// state.lead and the legacy top-level lead map in that order.
func (s Snapshot) Str(key string) string {
	for _, m := range []map[string]any{s, s.state(), s.stateLead(), s.legacyLead()} {
		if m == nil {
			continue
		}
		if v, ok := m[key]; ok {
			if str, ok := v.(string); ok {
				if trimmed := strings.TrimSpace(str); trimmed != "" {
					return trimmed
				}
			}
		}
	}
	return ""
}

// Int looks up an integer value the same way Str does, coercing numeric
// JSON types and digit strings.
func (s Snapshot) Int(key string) int {
	for _, m := range []map[string]any{s, s.state(), s.stateLead(), s.legacyLead()} {
		if m == nil {
			continue
		}
		if v, ok := m[key]; ok {
			if n, ok := asInt(v); ok {
				return n
			}
		}
	}
	return 0
}

// Choice reads a previously stored offer choice. Scalars, digit strings
// and lists all normalize to a sorted set of positive ids.
func (s Snapshot) Choice(key string) []int {
	for _, m := range []map[string]any{s, s.state(), s.stateLead(), s.legacyLead()} {
		if m == nil {
			continue
		}
		v, ok := m[key]
		if !ok || v == nil {
			continue
		}
		ids := normalizeChoiceValue(v)
		if len(ids) > 0 {
			return ids
		}
	}
	return nil
}

// StateOEMs returns the OEM numbers the session already holds.
func (s Snapshot) StateOEMs() []string {
	var raw any
	if st := s.state(); st != nil {
		raw = st["oems"]
	}
	if raw == nil {
		raw = s["oems"]
	}
	list, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if str, ok := item.(string); ok {
			if trimmed := strings.TrimSpace(str); trimmed != "" {
				out = append(out, trimmed)
			}
		}
	}
	return out
}

func normalizeChoiceValue(v any) []int {
	seen := map[int]bool{}
	switch val := v.(type) {
	case []any:
		for _, item := range val {
			if n, ok := asInt(item); ok && n > 0 {
				seen[n] = true
			}
		}
	default:
		if n, ok := asInt(v); ok && n > 0 {
			seen[n] = true
		}
	}
	if len(seen) == 0 {
		return nil
	}
	ids := make([]int, 0, len(seen))
	for n := range seen {
		ids = append(ids, n)
	}
	sort.Ints(ids)
	return ids
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
	case string:
		trimmed := strings.TrimSpace(n)
		if trimmed == "" {
			return 0, false
		}
		if parsed, err := strconv.Atoi(trimmed); err == nil {
			return parsed, true
		}
	}
	return 0, false
}
