package resolve

import (
	"errors"
	"strings"
	"testing"

	"github.com/ppiankov/tagc/internal/cache"
	"github.com/ppiankov/tagc/internal/diag"
	"github.com/ppiankov/tagc/internal/model"
)

// variant builds a variant from name/expression pairs
func variant(name string, pairs ...string) *model.VariantDecl {
	v := &model.VariantDecl{Name: name}
	for i := 0; i+1 < len(pairs); i += 2 {
		v.Facts = append(v.Facts, &model.Fact{
			Name:    pairs[i],
			Variant: name,
			Expr:    pairs[i+1],
			Pos:     model.Pos{File: "test.yaml", Line: i/2 + 1, Column: 1},
		})
	}
	return v
}

func value(t *testing.T, v *model.VariantDecl, name string) model.Value {
	t.Helper()
	f, ok := v.Fact(name)
	if !ok {
		t.Fatalf("Expected fact %s on %s", name, v.Name)
	}
	if !f.Resolved() {
		t.Fatalf("Expected fact %s to be resolved", name)
	}
	return *f.Value
}

func TestResolver_ChainedDependency(t *testing.T) {
	r := NewResolver(cache.NewPrograms(cache.NewMemoryCache()))
	col := diag.NewCollector(false)

	v := variant("AFG", "id", "1", "index", "id - 1", "name", `"Afghanistan"`)
	r.Resolve("Country", v, col)

	if err := col.Err(); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if got := value(t, v, "id"); !got.Equal(model.IntValue(1)) {
		t.Errorf("Expected id=1, got %s", got)
	}
	if got := value(t, v, "index"); !got.Equal(model.IntValue(0)) {
		t.Errorf("Expected index=0, got %s", got)
	}
	if got := value(t, v, "name"); !got.Equal(model.StringValue("Afghanistan")) {
		t.Errorf("Expected name=\"Afghanistan\", got %s", got)
	}
}

func TestResolver_OrderIndependent(t *testing.T) {
	tests := []struct {
		facts []string
		desc  string
	}{
		{facts: []string{"padding", "10", "height", "100", "full_height", "height + (padding * 2)"}, desc: "declared before use"},
		{facts: []string{"full_height", "height + (padding * 2)", "height", "100", "padding", "10"}, desc: "declared after use"},
		{facts: []string{"height", "100", "full_height", "height + (padding * 2)", "padding", "10"}, desc: "mixed"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			col := diag.NewCollector(false)
			v := variant("Small", tt.facts...)
			NewResolver(nil).Resolve("Style", v, col)

			if err := col.Err(); err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if got := value(t, v, "full_height"); !got.Equal(model.IntValue(120)) {
				t.Errorf("Expected full_height=120, got %s", got)
			}
		})
	}
}

func TestResolver_Passes(t *testing.T) {
	col := diag.NewCollector(false)
	v := variant("V", "c", "b + 1", "b", "a + 1", "a", "1")
	passes := NewResolver(nil).Resolve("T", v, col)

	if err := col.Err(); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if passes != 3 {
		t.Errorf("Expected 3 passes for a reversed chain, got %d", passes)
	}
	if got := value(t, v, "c"); !got.Equal(model.IntValue(3)) {
		t.Errorf("Expected c=3, got %s", got)
	}
}

func TestResolver_NoFacts(t *testing.T) {
	col := diag.NewCollector(false)
	if passes := NewResolver(nil).Resolve("T", variant("Empty"), col); passes != 0 {
		t.Errorf("Expected 0 passes, got %d", passes)
	}
	if col.Len() != 0 {
		t.Errorf("Expected no diagnostics, got %d", col.Len())
	}
}

func TestResolver_Unresolvable(t *testing.T) {
	tests := []struct {
		facts    []string
		fact     string
		reason   diag.Reason
		contains string
		desc     string
	}{
		{
			facts:    []string{"value", "other + 7"},
			fact:     "value",
			reason:   diag.ReasonMissing,
			contains: "'other' is not declared",
			desc:     "missing variable",
		},
		{
			facts:    []string{"a", "b + 1", "b", "a + 1"},
			fact:     "a",
			reason:   diag.ReasonCircular,
			contains: "a -> b -> a",
			desc:     "two-fact cycle",
		},
		{
			facts:    []string{"a", "a + 1"},
			fact:     "a",
			reason:   diag.ReasonCircular,
			contains: "a -> a",
			desc:     "self reference",
		},
		{
			facts:    []string{"label", `"x" + 1`},
			fact:     "label",
			reason:   diag.ReasonInvalid,
			contains: "type error",
			desc:     "type error",
		},
		{
			facts:    []string{"ratio", "1 / 0"},
			fact:     "ratio",
			reason:   diag.ReasonInvalid,
			contains: "division by zero",
			desc:     "arithmetic error",
		},
		{
			facts:    []string{"broken", "1 +"},
			fact:     "broken",
			reason:   diag.ReasonInvalid,
			contains: "parse error",
			desc:     "parse error",
		},
		{
			facts:    []string{"total", "part * 2", "part", "missing + 1"},
			fact:     "total",
			reason:   diag.ReasonBlocked,
			contains: "'part'",
			desc:     "blocked by a missing dependency",
		},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			col := diag.NewCollector(false)
			NewResolver(nil).Resolve("T", variant("V", tt.facts...), col)

			var d *diag.Diagnostic
			if !errors.As(col.Err(), &d) {
				t.Fatalf("Expected a diagnostic, got %v", col.Err())
			}
			if d.Category != diag.UnresolvableExpression {
				t.Errorf("Expected UnresolvableExpression, got %s", d.Category)
			}
			if d.Fact != tt.fact {
				t.Errorf("Expected fact '%s', got '%s'", tt.fact, d.Fact)
			}
			if d.Reason != tt.reason {
				t.Errorf("Expected reason %s, got %s", tt.reason, d.Reason)
			}
			if !strings.Contains(d.Error(), tt.contains) {
				t.Errorf("Expected message to contain %q, got %q", tt.contains, d.Error())
			}
		})
	}
}

func TestResolver_NoCrossVariantVisibility(t *testing.T) {
	r := NewResolver(cache.NewPrograms(cache.NewMemoryCache()))
	col := diag.NewCollector(false)

	first := variant("First", "other", "1", "value", "other + 7")
	second := variant("Second", "value", "other + 7")

	r.Resolve("T", first, col)
	if err := col.Err(); err != nil {
		t.Fatalf("Expected first variant to resolve, got %v", err)
	}

	r.Resolve("T", second, col)
	var d *diag.Diagnostic
	if !errors.As(col.Err(), &d) {
		t.Fatal("Expected an error for the second variant")
	}
	if d.Variant != "Second" || d.Reason != diag.ReasonMissing {
		t.Errorf("Expected missing 'other' on Second, got %v", d)
	}
}

func TestResolver_AggregateReportsEveryStuckFact(t *testing.T) {
	col := diag.NewCollector(true)
	v := variant("V", "ok", "1", "a", "b", "b", "a", "c", "nope")
	NewResolver(nil).Resolve("T", v, col)

	list := diag.Diagnostics(col.Err())
	if len(list) != 3 {
		t.Fatalf("Expected 3 diagnostics, got %d: %v", len(list), col.Err())
	}
	reasons := map[string]diag.Reason{}
	for _, d := range list {
		reasons[d.Fact] = d.Reason
	}
	if reasons["a"] != diag.ReasonCircular || reasons["b"] != diag.ReasonCircular {
		t.Errorf("Expected a and b circular, got %v", reasons)
	}
	if reasons["c"] != diag.ReasonMissing {
		t.Errorf("Expected c missing, got %v", reasons["c"])
	}
	if !value(t, v, "ok").Equal(model.IntValue(1)) {
		t.Error("Expected ok=1 to still resolve")
	}
}

func TestResolver_CacheHits(t *testing.T) {
	programs := cache.NewPrograms(cache.NewMemoryCache())
	r := NewResolver(programs)
	col := diag.NewCollector(false)

	for _, name := range []string{"A", "B", "C"} {
		r.Resolve("T", variant(name, "index", "id - 1", "id", "1"), col)
	}
	if err := col.Err(); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if programs.Misses() != 2 {
		t.Errorf("Expected 2 distinct parses, got %d", programs.Misses())
	}
	if programs.Hits() == 0 {
		t.Error("Expected cache hits across passes and variants")
	}
}
