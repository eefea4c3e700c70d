package check

import (
	"fmt"
	"sort"

	"github.com/ppiankov/tagc/internal/diag"
	"github.com/ppiankov/tagc/internal/model"
)

// Checker groups resolved facts by name and enforces one value kind per group
type Checker struct{}

// NewChecker creates a new type consistency checker
func NewChecker() *Checker {
	return &Checker{}
}

// Check builds the fact groups of decl sorted by name, with members in variant
// declaration order. Members that fail a check are reported to col and left out.
func (c *Checker) Check(decl *model.TypeDecl, col *diag.Collector) []*model.FactGroup {
	groups := make(map[string]*model.FactGroup)

	for _, v := range decl.Variants {
		for _, f := range v.Facts {
			if !f.Resolved() {
				continue
			}
			if !f.Kind().Supported() {
				col.Add(&diag.Diagnostic{
					Pos:      f.Pos,
					Category: diag.UnsupportedValueKind,
					Type:     decl.Name,
					Variant:  v.Name,
					Fact:     f.Name,
					Found:    f.Kind(),
					Msg:      fmt.Sprintf("unsupported value %s of kind %s", f.Value, f.Kind()),
				})
				if col.Stop() {
					return nil
				}
				continue
			}

			g, ok := groups[f.Name]
			if !ok {
				g = &model.FactGroup{Name: f.Name}
				groups[f.Name] = g
			}
			g.Members = append(g.Members, f)
		}
	}

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]*model.FactGroup, 0, len(names))
	for _, name := range names {
		g := groups[name]
		g.Kind = g.Members[0].Kind()

		kept := g.Members[:1]
		for _, f := range g.Members[1:] {
			if f.Kind() == g.Kind {
				kept = append(kept, f)
				continue
			}
			col.Add(&diag.Diagnostic{
				Pos:      f.Pos,
				Category: diag.TypeMismatch,
				Type:     decl.Name,
				Variant:  f.Variant,
				Fact:     f.Name,
				Expected: g.Kind,
				Found:    f.Kind(),
				Msg:      fmt.Sprintf("mismatched value kind: expected %s, found %s", g.Kind, f.Kind()),
			})
			if col.Stop() {
				return nil
			}
		}
		g.Members = kept
		out = append(out, g)
	}

	return out
}
