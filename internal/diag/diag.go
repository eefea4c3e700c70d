// Package diag defines the positioned errors reported by the tag compiler.
package diag

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/ppiankov/tagc/internal/model"
)

// Category classifies a diagnostic
type Category string

const (
	InvalidFactName        Category = "InvalidFactName"
	MalformedDeclaration   Category = "MalformedDeclaration"
	DuplicateFact          Category = "DuplicateFact"
	UnresolvableExpression Category = "UnresolvableExpression"
	TypeMismatch           Category = "TypeMismatch"
	UnsupportedValueKind   Category = "UnsupportedValueKind"
	InvalidManifest        Category = "InvalidManifest"
	AccessorCollision      Category = "AccessorCollision"
)

// Reason refines UnresolvableExpression
type Reason string

const (
	ReasonMissing  Reason = "missing"  // References a name not declared on the variant
	ReasonCircular Reason = "circular" // Part of a reference cycle
	ReasonBlocked  Reason = "blocked"  // Depends on a fact that is itself stuck
	ReasonInvalid  Reason = "invalid"  // Parse, type, or arithmetic failure
)

// Diagnostic is one error tied to a declaration
type Diagnostic struct {
	Pos      model.Pos
	Category Category
	Type     string
	Variant  string
	Fact     string
	Msg      string
	Reason   Reason     // Set for UnresolvableExpression
	Expected model.Kind // Set for TypeMismatch
	Found    model.Kind // Set for TypeMismatch and UnsupportedValueKind
	Err      error      // Underlying cause, if any
}

func (d *Diagnostic) Error() string {
	var b strings.Builder
	b.WriteString(d.Pos.String())
	b.WriteString(": ")
	b.WriteString(string(d.Category))
	b.WriteString(": ")
	b.WriteString(d.Msg)

	var where []string
	if d.Variant != "" {
		where = append(where, "variant "+d.Variant)
	}
	if d.Fact != "" {
		where = append(where, "fact "+d.Fact)
	}
	if len(where) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(where, ", "))
	}
	return b.String()
}

func (d *Diagnostic) Unwrap() error {
	return d.Err
}

// List is a set of diagnostics reported together
type List []*Diagnostic

func (l List) Error() string {
	lines := make([]string, len(l))
	for i, d := range l {
		lines[i] = d.Error()
	}
	return strings.Join(lines, "\n")
}

// Sort orders the list by source position, keeping report order for ties
func (l List) Sort() {
	sort.SliceStable(l, func(i, j int) bool {
		return l[i].Pos.Before(l[j].Pos)
	})
}

// Err returns nil for an empty list, the diagnostic itself for a single entry,
// and the list otherwise.
func (l List) Err() error {
	switch len(l) {
	case 0:
		return nil
	case 1:
		return l[0]
	default:
		return l
	}
}

// Categories returns the category of every entry in order
func (l List) Categories() []Category {
	out := make([]Category, len(l))
	for i, d := range l {
		out[i] = d.Category
	}
	return out
}

// Collector gathers diagnostics under either the fail-fast or the aggregate policy
type Collector struct {
	aggregate bool
	list      List
}

// NewCollector creates a collector; aggregate=false stops at the first diagnostic
func NewCollector(aggregate bool) *Collector {
	return &Collector{aggregate: aggregate}
}

// Add records a diagnostic. In fail-fast mode only the first one is kept.
func (c *Collector) Add(d *Diagnostic) {
	if !c.aggregate && len(c.list) > 0 {
		return
	}
	c.list = append(c.list, d)
}

// Stop reports whether the caller must abort now
func (c *Collector) Stop() bool {
	return !c.aggregate && len(c.list) > 0
}

// Len returns the number of recorded diagnostics
func (c *Collector) Len() int {
	return len(c.list)
}

// Err returns the recorded diagnostics as an error, sorted by position
func (c *Collector) Err() error {
	if len(c.list) == 0 {
		return nil
	}
	out := make(List, len(c.list))
	copy(out, c.list)
	out.Sort()
	return out.Err()
}

// Diagnostics returns every diagnostic carried by err
func Diagnostics(err error) List {
	switch e := err.(type) {
	case nil:
		return nil
	case *Diagnostic:
		return List{e}
	case List:
		return e
	}
	var l List
	if errors.As(err, &l) {
		return l
	}
	var d *Diagnostic
	if errors.As(err, &d) {
		return List{d}
	}
	return nil
}
