package check

import (
	"errors"
	"testing"

	"github.com/ppiankov/tagc/internal/diag"
	"github.com/ppiankov/tagc/internal/model"
)

type fact struct {
	name  string
	value model.Value
}

func decl(variants map[string][]fact, order ...string) *model.TypeDecl {
	d := &model.TypeDecl{Name: "TestEnum"}
	line := 0
	for _, name := range order {
		v := &model.VariantDecl{Name: name}
		for _, f := range variants[name] {
			line++
			val := f.value
			v.Facts = append(v.Facts, &model.Fact{
				Name:    f.name,
				Variant: name,
				Pos:     model.Pos{File: "test.yaml", Line: line},
				Value:   &val,
			})
		}
		d.Variants = append(d.Variants, v)
	}
	return d
}

func TestChecker_GroupsSortedByName(t *testing.T) {
	d := decl(map[string][]fact{
		"AFG": {{"name", model.StringValue("Afghanistan")}, {"id", model.IntValue(1)}},
		"ALB": {{"id", model.IntValue(2)}, {"name", model.StringValue("Albania")}, {"extra", model.IntValue(5)}},
	}, "AFG", "ALB")

	col := diag.NewCollector(false)
	groups := NewChecker().Check(d, col)
	if err := col.Err(); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	expected := []struct {
		name    string
		kind    model.Kind
		members int
	}{
		{"extra", model.KindInteger, 1},
		{"id", model.KindInteger, 2},
		{"name", model.KindString, 2},
	}
	if len(groups) != len(expected) {
		t.Fatalf("Expected %d groups, got %d", len(expected), len(groups))
	}
	for i, e := range expected {
		g := groups[i]
		if g.Name != e.name || g.Kind != e.kind || len(g.Members) != e.members {
			t.Errorf("Expected group %s/%s/%d, got %s/%s/%d", e.name, e.kind, e.members, g.Name, g.Kind, len(g.Members))
		}
	}

	// Members follow variant declaration order
	if groups[1].Members[0].Variant != "AFG" || groups[1].Members[1].Variant != "ALB" {
		t.Errorf("Expected id members in variant order, got %s, %s", groups[1].Members[0].Variant, groups[1].Members[1].Variant)
	}
	if groups[0].Covers(2) {
		t.Error("Expected extra to be partial")
	}
	if !groups[1].Covers(2) {
		t.Error("Expected id to cover every variant")
	}
}

func TestChecker_TypeMismatch(t *testing.T) {
	d := decl(map[string][]fact{
		"Variant1": {{"x", model.IntValue(1)}},
		"Variant2": {{"x", model.FloatValue(3.5)}},
	}, "Variant1", "Variant2")

	col := diag.NewCollector(false)
	NewChecker().Check(d, col)

	var diagnostic *diag.Diagnostic
	if !errors.As(col.Err(), &diagnostic) {
		t.Fatalf("Expected a diagnostic, got %v", col.Err())
	}
	if diagnostic.Category != diag.TypeMismatch {
		t.Errorf("Expected TypeMismatch, got %s", diagnostic.Category)
	}
	if diagnostic.Fact != "x" || diagnostic.Variant != "Variant2" {
		t.Errorf("Expected x on Variant2, got %s on %s", diagnostic.Fact, diagnostic.Variant)
	}
	if diagnostic.Expected != model.KindInteger || diagnostic.Found != model.KindFloat {
		t.Errorf("Expected integer/float, got %s/%s", diagnostic.Expected, diagnostic.Found)
	}
}

func TestChecker_BooleanVersusFloat(t *testing.T) {
	d := decl(map[string][]fact{
		"Variant1": {{"tagname", model.BoolValue(true)}},
		"Variant2": {{"tagname", model.FloatValue(3.5)}},
	}, "Variant1", "Variant2")

	col := diag.NewCollector(false)
	NewChecker().Check(d, col)

	var diagnostic *diag.Diagnostic
	if !errors.As(col.Err(), &diagnostic) {
		t.Fatalf("Expected a diagnostic, got %v", col.Err())
	}
	if diagnostic.Expected != model.KindBoolean || diagnostic.Found != model.KindFloat {
		t.Errorf("Expected boolean/float, got %s/%s", diagnostic.Expected, diagnostic.Found)
	}
}

func TestChecker_UnsupportedValueKind(t *testing.T) {
	pair := model.TupleValue([]model.Value{model.IntValue(1), model.IntValue(2)})
	d := decl(map[string][]fact{
		"A": {{"pair", model.IntValue(1)}},
		"B": {{"pair", pair}},
	}, "A", "B")

	col := diag.NewCollector(true)
	groups := NewChecker().Check(d, col)

	list := diag.Diagnostics(col.Err())
	if len(list) != 1 {
		t.Fatalf("Expected exactly 1 diagnostic, got %d: %v", len(list), col.Err())
	}
	if list[0].Category != diag.UnsupportedValueKind {
		t.Errorf("Expected UnsupportedValueKind, got %s", list[0].Category)
	}
	if list[0].Found != model.KindTuple {
		t.Errorf("Expected tuple kind, got %s", list[0].Found)
	}
	if len(groups) != 1 || len(groups[0].Members) != 1 {
		t.Errorf("Expected the tuple to be left out of its group")
	}
}

func TestChecker_AggregateCollectsAllMismatches(t *testing.T) {
	d := decl(map[string][]fact{
		"A": {{"a", model.IntValue(1)}, {"b", model.StringValue("x")}},
		"B": {{"a", model.StringValue("y")}, {"b", model.BoolValue(true)}},
		"C": {{"a", model.IntValue(3)}, {"b", model.StringValue("z")}},
	}, "A", "B", "C")

	col := diag.NewCollector(true)
	groups := NewChecker().Check(d, col)

	if col.Len() != 2 {
		t.Fatalf("Expected 2 diagnostics, got %d", col.Len())
	}
	for _, g := range groups {
		if len(g.Members) != 2 {
			t.Errorf("Expected group %s to keep 2 members, got %d", g.Name, len(g.Members))
		}
	}
}

func TestChecker_SkipsUnresolved(t *testing.T) {
	d := &model.TypeDecl{Name: "T", Variants: []*model.VariantDecl{{
		Name:  "V",
		Facts: []*model.Fact{{Name: "a", Variant: "V", Expr: "b"}},
	}}}

	col := diag.NewCollector(false)
	groups := NewChecker().Check(d, col)
	if len(groups) != 0 || col.Len() != 0 {
		t.Errorf("Expected no groups and no diagnostics, got %d and %d", len(groups), col.Len())
	}
}
