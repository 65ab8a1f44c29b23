package domain

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestChoiceConstructorsCollapse(t *testing.T) {
	if SingleChoice(0).IsSet() {
		t.Error("non-positive scalar must collapse to none")
	}
	c := MultipleChoice([]int{3, 3, 0, 1})
	if got := c.IDs(); !reflect.DeepEqual(got, []int{1, 3}) {
		t.Errorf("ids = %v, want [1 3]", got)
	}
	if MultipleChoice(nil).IsSet() {
		t.Error("empty list must collapse to none")
	}
	one := MultipleChoice([]int{2})
	if one.Kind() != ChoiceMultiple {
		t.Error("one-element list must keep its list shape")
	}
}

func TestChoiceWireShapes(t *testing.T) {
	single, _ := json.Marshal(SingleChoice(2))
	if string(single) != "2" {
		t.Errorf("single = %s", single)
	}
	multi, _ := json.Marshal(MultipleChoice([]int{3, 1}))
	if string(multi) != "[1,3]" {
		t.Errorf("multi = %s", multi)
	}
	none, _ := json.Marshal(NoChoice())
	if string(none) != "null" {
		t.Errorf("none = %s", none)
	}
	invalid, _ := json.Marshal(InvalidChoice("string"))
	if string(invalid) != "null" {
		t.Errorf("invalid = %s", invalid)
	}
}

func TestChoiceUnmarshalNeverErrors(t *testing.T) {
	for _, raw := range []string{`null`, `2`, `[1,"x",3]`, `"два"`, `2.5`, `{"id":1}`, `true`} {
		var c OfferChoice
		if err := json.Unmarshal([]byte(raw), &c); err != nil {
			t.Errorf("unmarshal %s: %v", raw, err)
		}
	}

	var mixed OfferChoice
	_ = json.Unmarshal([]byte(`[1,"x",3]`), &mixed)
	if got := mixed.IDs(); !reflect.DeepEqual(got, []int{1, 3}) {
		t.Errorf("ids = %v, want [1 3]", got)
	}
	if len(mixed.RawItems()) != 3 {
		t.Errorf("raw items = %v, want all three kept", mixed.RawItems())
	}

	var bad OfferChoice
	_ = json.Unmarshal([]byte(`"два"`), &bad)
	if bad.Kind() != ChoiceInvalid || bad.InvalidType() != "string" {
		t.Errorf("kind = %v type = %q", bad.Kind(), bad.InvalidType())
	}
}
