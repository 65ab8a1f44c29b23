package domain

import (
	"encoding/json"
	"sort"
)

// ChoiceKind tags the shape of a chosen_offer_id value.
type ChoiceKind int

const (
	// ChoiceNone means no offer has been chosen.
	ChoiceNone ChoiceKind = iota
	// ChoiceSingle is exactly one chosen offer id.
	ChoiceSingle
	// ChoiceMultiple is a list of chosen offer ids.
	ChoiceMultiple
	// ChoiceInvalid is a value of an unsupported JSON shape, kept so the
	// sanitizer can report it in debug before dropping it.
	ChoiceInvalid
)

// OfferChoice is the tagged representation of the wire value
// null | int | []int. The Node bot core historically stores the customer's
// selection as either a scalar or an array, so both shapes must round-trip.
type OfferChoice struct {
	kind     ChoiceKind
	ids      []int
	rawItems []any
	rawType  string
}

// NoChoice returns the empty choice.
func NoChoice() OfferChoice {
	return OfferChoice{kind: ChoiceNone}
}

// SingleChoice returns a scalar choice. Non-positive ids collapse to none.
func SingleChoice(id int) OfferChoice {
	if id <= 0 {
		return NoChoice()
	}
	return OfferChoice{kind: ChoiceSingle, ids: []int{id}}
}

// MultipleChoice returns a list choice from the given ids, de-duplicated,
// filtered to positive values and sorted ascending. An empty result collapses
// to none; a one-element list stays a list, preserving the caller's shape.
func MultipleChoice(ids []int) OfferChoice {
	seen := make(map[int]struct{}, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	if len(out) == 0 {
		return NoChoice()
	}
	sort.Ints(out)
	items := make([]any, len(out))
	for i, id := range out {
		items[i] = id
	}
	return OfferChoice{kind: ChoiceMultiple, ids: out, rawItems: items}
}

// InvalidChoice marks a value of an unsupported shape.
func InvalidChoice(typeName string) OfferChoice {
	return OfferChoice{kind: ChoiceInvalid, rawType: typeName}
}

// Kind returns the choice's tag.
func (c OfferChoice) Kind() ChoiceKind { return c.kind }

// IsSet reports whether at least one offer id has been chosen.
func (c OfferChoice) IsSet() bool {
	switch c.kind {
	case ChoiceSingle:
		return true
	case ChoiceMultiple:
		return len(c.ids) > 0
	}
	return false
}

// IDs returns a copy of the chosen ids.
func (c OfferChoice) IDs() []int {
	out := make([]int, len(c.ids))
	copy(out, c.ids)
	return out
}

// Contains reports whether id is among the chosen ids.
func (c OfferChoice) Contains(id int) bool {
	for _, got := range c.ids {
		if got == id {
			return true
		}
	}
	return false
}

// RawItems returns the original list entries for a ChoiceMultiple value,
// including entries that failed integer coercion.
func (c OfferChoice) RawItems() []any { return c.rawItems }

// InvalidType names the JSON shape of a ChoiceInvalid value.
func (c OfferChoice) InvalidType() string { return c.rawType }

// MarshalJSON emits null for none/invalid, a bare integer for a single
// choice and a sorted array for a multiple choice.
func (c OfferChoice) MarshalJSON() ([]byte, error) {
	switch c.kind {
	case ChoiceSingle:
		return json.Marshal(c.ids[0])
	case ChoiceMultiple:
		if len(c.ids) > 0 {
			return json.Marshal(c.ids)
		}
	}
	return []byte("null"), nil
}

// UnmarshalJSON accepts null, an integer or an array. Any other shape is
// recorded as invalid rather than rejected: the advisory model's output must
// never abort decoding.
func (c *OfferChoice) UnmarshalJSON(data []byte) error {
	var value any
	if err := json.Unmarshal(data, &value); err != nil {
		*c = InvalidChoice("unparsable")
		return nil
	}

	switch v := value.(type) {
	case nil:
		*c = NoChoice()
	case float64:
		if v == float64(int(v)) {
			// Keep non-positive scalars so the sanitizer can report them.
			*c = OfferChoice{kind: ChoiceSingle, ids: []int{int(v)}}
		} else {
			*c = InvalidChoice("float")
		}
	case []any:
		ids := make([]int, 0, len(v))
		items := make([]any, 0, len(v))
		for _, item := range v {
			if n, ok := item.(float64); ok && n == float64(int(n)) {
				ids = append(ids, int(n))
				items = append(items, int(n))
				continue
			}
			items = append(items, item)
		}
		*c = OfferChoice{kind: ChoiceMultiple, ids: ids, rawItems: items}
	case bool:
		*c = InvalidChoice("bool")
	case string:
		*c = InvalidChoice("string")
	default:
		*c = InvalidChoice("object")
	}
	return nil
}
