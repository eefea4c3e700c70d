package resolve

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ppiankov/tagc/internal/cache"
	"github.com/ppiankov/tagc/internal/diag"
	"github.com/ppiankov/tagc/internal/expr"
	"github.com/ppiankov/tagc/internal/model"
)

// Resolver computes fact values by fixpoint iteration over one variant at a time
type Resolver struct {
	programs *cache.Programs
}

// NewResolver creates a resolver that compiles expressions through programs
func NewResolver(programs *cache.Programs) *Resolver {
	if programs == nil {
		programs = cache.NewPrograms(nil)
	}
	return &Resolver{programs: programs}
}

// Resolve evaluates every fact of v against a scope holding only v's own facts.
// Facts left unresolved are reported to col. It returns the number of passes made.
func (r *Resolver) Resolve(typeName string, v *model.VariantDecl, col *diag.Collector) int {
	scope := expr.Scope{}
	var pending []*model.Fact
	for _, f := range v.Facts {
		if f.Resolved() {
			scope.Set(f.Name, *f.Value)
			continue
		}
		pending = append(pending, f)
	}

	// Last failure of each pending fact, used to explain it if resolution gets stuck
	failures := make(map[*model.Fact]error)

	passes := 0
	for len(pending) > 0 {
		passes++
		progress := false
		var next []*model.Fact
		for _, f := range pending {
			val, err := r.eval(f.Expr, scope)
			if err != nil {
				failures[f] = err
				next = append(next, f)
				continue
			}
			f.Resolve(val)
			scope.Set(f.Name, val)
			progress = true
		}
		pending = next
		if !progress {
			break
		}
	}

	if len(pending) > 0 {
		r.explain(typeName, v, pending, failures, scope, col)
	}
	return passes
}

func (r *Resolver) eval(src string, scope expr.Scope) (model.Value, error) {
	prog, err := r.programs.Parse(src)
	if err != nil {
		return model.Value{}, err
	}
	return prog.Eval(scope)
}

// explain reports each stuck fact with the reason it could not be resolved
func (r *Resolver) explain(typeName string, v *model.VariantDecl, stuck []*model.Fact, failures map[*model.Fact]error, scope expr.Scope, col *diag.Collector) {
	stuckByName := make(map[string]*model.Fact, len(stuck))
	for _, f := range stuck {
		stuckByName[f.Name] = f
	}

	// Unresolved names each stuck fact refers to, in first-use order
	deps := make(map[string][]string, len(stuck))
	for _, f := range stuck {
		var e *expr.Error
		if !errors.As(failures[f], &e) || e.Kind != expr.UnknownIdentifier {
			continue
		}
		prog, err := r.programs.Parse(f.Expr)
		if err != nil {
			continue
		}
		for _, name := range prog.Identifiers() {
			if _, ok := scope.Lookup(name); !ok {
				deps[f.Name] = append(deps[f.Name], name)
			}
		}
	}

	for _, f := range stuck {
		d := &diag.Diagnostic{
			Pos:      f.Pos,
			Category: diag.UnresolvableExpression,
			Type:     typeName,
			Variant:  v.Name,
			Fact:     f.Name,
			Err:      failures[f],
		}

		switch names := deps[f.Name]; {
		case len(names) == 0:
			d.Reason = diag.ReasonInvalid
			d.Msg = fmt.Sprintf("cannot evaluate '%s': %v", f.Expr, failures[f])
		case firstMissing(names, stuckByName) != "":
			d.Reason = diag.ReasonMissing
			d.Msg = fmt.Sprintf("cannot evaluate '%s': '%s' is not declared on this variant", f.Expr, firstMissing(names, stuckByName))
		default:
			if cycle := findCycle(f.Name, deps); cycle != nil {
				d.Reason = diag.ReasonCircular
				d.Msg = fmt.Sprintf("circular reference %s", strings.Join(cycle, " -> "))
			} else {
				d.Reason = diag.ReasonBlocked
				d.Msg = fmt.Sprintf("cannot evaluate '%s': depends on unresolved fact '%s'", f.Expr, names[0])
			}
		}

		col.Add(d)
		if col.Stop() {
			return
		}
	}
}

func firstMissing(names []string, declared map[string]*model.Fact) string {
	for _, name := range names {
		if _, ok := declared[name]; !ok {
			return name
		}
	}
	return ""
}

// findCycle returns the shortest reference path from start back to itself, or nil
func findCycle(start string, edges map[string][]string) []string {
	parent := make(map[string]string)
	queue := []string{start}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, d := range edges[n] {
			if d == start {
				var back []string
				for x := n; x != start; x = parent[x] {
					back = append(back, x)
				}
				path := []string{start}
				for i := len(back) - 1; i >= 0; i-- {
					path = append(path, back[i])
				}
				return append(path, start)
			}
			if _, seen := parent[d]; !seen {
				parent[d] = n
				queue = append(queue, d)
			}
		}
	}
	return nil
}
