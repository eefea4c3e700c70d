package model

import "fmt"

// Pos is a source location inside a manifest
type Pos struct {
	File   string `json:"file,omitempty"`
	Line   int    `json:"line,omitempty"`
	Column int    `json:"column,omitempty"`
}

func (p Pos) String() string {
	switch {
	case p.File == "" && p.Line == 0:
		return "-"
	case p.Line == 0:
		return p.File
	case p.Column == 0:
		return fmt.Sprintf("%s:%d", p.File, p.Line)
	default:
		return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
	}
}

// Before orders positions by file, line, then column
func (p Pos) Before(o Pos) bool {
	if p.File != o.File {
		return p.File < o.File
	}
	if p.Line != o.Line {
		return p.Line < o.Line
	}
	return p.Column < o.Column
}

// Annotation is one raw `tag(...)` entry on a variant
type Annotation struct {
	Text   string   // Entry text as written, without the tag(...) wrapper
	Tokens []string // Lexemes of Text
	Pos    Pos
}

// Fact is a named value declared on one variant
type Fact struct {
	Name    string
	Variant string
	Expr    string
	Pos     Pos
	Value   *Value // nil until resolved
}

// Resolved reports whether the fact has a value
func (f *Fact) Resolved() bool {
	return f.Value != nil
}

// Kind returns the kind of the resolved value, or KindInvalid
func (f *Fact) Kind() Kind {
	if f.Value == nil {
		return KindInvalid
	}
	return f.Value.Kind
}

// Resolve records the fact's value. A fact resolves exactly once.
func (f *Fact) Resolve(v Value) {
	if f.Value != nil {
		panic(fmt.Sprintf("fact %s on %s resolved twice", f.Name, f.Variant))
	}
	f.Value = &v
}

// VariantDecl is one case of the subject type
type VariantDecl struct {
	Name         string
	Discriminant string // Go literal for the const declaration; empty when not given
	Pos          Pos
	Annotations  []Annotation
	Facts        []*Fact // Filled by extraction, in declaration order
}

// Fact returns the variant's fact with the given name
func (v *VariantDecl) Fact(name string) (*Fact, bool) {
	for _, f := range v.Facts {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// TypeDecl is the subject type and its variants
type TypeDecl struct {
	Name       string
	Underlying string
	EmitType   bool
	Receiver   string
	Pos        Pos
	Variants   []*VariantDecl
}

// Manifest is a parsed input file holding one or more type declarations
type Manifest struct {
	Path    string
	Package string
	Types   []*TypeDecl
}

// FactGroup is every fact sharing one name across the variants of a type
type FactGroup struct {
	Name    string
	Kind    Kind    // Canonical kind, set by the first member
	Members []*Fact // Variant declaration order
}

// Covers reports whether the group has a member for each of n variants
func (g *FactGroup) Covers(n int) bool {
	return len(g.Members) == n
}
