package layering

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

type applyTarget struct {
	Name    string   `json:"name"`
	Revenue *float64 `json:"revenue"`
	Tags    []string `json:"tags"`
	Note    string   `json:"note"`
}

type applyPatch struct {
	Name    Optional[string]   `json:"name"`
	Revenue Optional[*float64] `json:"revenue"`
	Tags    Optional[[]string] `json:"tags"`
}

func TestApplyOnlyTouchesProvidedFields(t *testing.T) {
	revenue := 100.0
	base := applyTarget{Name: "old", Revenue: &revenue, Tags: []string{"x"}, Note: "keep"}

	got, applied, err := Apply(base, applyPatch{Name: Some("new")})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got.Name != "new" {
		t.Fatalf("expected name to be patched, got %q", got.Name)
	}
	if got.Revenue == nil || *got.Revenue != 100 || got.Note != "keep" || !reflect.DeepEqual(got.Tags, []string{"x"}) {
		t.Fatalf("unpatched fields changed: %+v", got)
	}
	if !reflect.DeepEqual(applied, []string{"name"}) {
		t.Fatalf("unexpected applied fields %v", applied)
	}
	if base.Name != "old" {
		t.Fatalf("base mutated")
	}
}

func TestApplyClearsWithExplicitZero(t *testing.T) {
	revenue := 100.0
	base := applyTarget{Revenue: &revenue}

	got, _, err := Apply(base, applyPatch{Revenue: Some[*float64](nil)})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got.Revenue != nil {
		t.Fatalf("expected revenue to be cleared, got %v", *got.Revenue)
	}
}

func TestApplyDetachesPatchedSlices(t *testing.T) {
	tags := []string{"a", "b"}
	got, _, err := Apply(applyTarget{}, applyPatch{Tags: Some(tags)})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	tags[0] = "mutated"
	if got.Tags[0] != "a" {
		t.Fatalf("applied slice still shares caller backing array")
	}
}

func TestApplyRejectsUnknownField(t *testing.T) {
	type badPatch struct {
		Missing Optional[string]
	}
	_, _, err := Apply(applyTarget{}, badPatch{Missing: Some("x")})
	if err == nil || !strings.Contains(err.Error(), "Missing") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
}

func TestApplyRejectsTypeMismatch(t *testing.T) {
	type badPatch struct {
		Name Optional[int]
	}
	_, _, err := Apply(applyTarget{}, badPatch{Name: Some(3)})
	if err == nil {
		t.Fatalf("expected type mismatch error")
	}
}

func TestOptionalJSONPresence(t *testing.T) {
	var patch applyPatch
	if err := json.Unmarshal([]byte(`{"name":"x","revenue":null}`), &patch); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if v, ok := patch.Name.Get(); !ok || v != "x" {
		t.Fatalf("expected name to be set, got %q %v", v, ok)
	}
	if v, ok := patch.Revenue.Get(); !ok || v != nil {
		t.Fatalf("expected explicit null to mark revenue provided")
	}
	if patch.Tags.IsSet() {
		t.Fatalf("absent key must stay unset")
	}
}

func TestOptionalSetAny(t *testing.T) {
	var opt Optional[string]
	if err := opt.SetAny(42); err == nil {
		t.Fatalf("expected type error")
	}
	if err := opt.SetAny("ok"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if opt.OrElse("fallback") != "ok" {
		t.Fatalf("unexpected value")
	}
	if None[string]().OrElse("fallback") != "fallback" {
		t.Fatalf("expected fallback for unset optional")
	}
}
