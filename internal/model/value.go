package model

import (
	"strconv"
	"strings"
)

// Kind classifies a resolved fact value
type Kind int

const (
	KindInvalid Kind = iota // No value (unresolved or absent)
	KindString
	KindFloat
	KindInteger
	KindBoolean
	KindTuple // Composite result of a comma expression, never accepted as a fact value
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindFloat:
		return "float"
	case KindInteger:
		return "integer"
	case KindBoolean:
		return "boolean"
	case KindTuple:
		return "tuple"
	default:
		return "absent"
	}
}

// Supported reports whether facts of this kind can be emitted as accessors
func (k Kind) Supported() bool {
	switch k {
	case KindString, KindFloat, KindInteger, KindBoolean:
		return true
	}
	return false
}

// GoType returns the Go type an accessor of this kind returns
func (k Kind) GoType() string {
	switch k {
	case KindString:
		return "string"
	case KindFloat:
		return "float64"
	case KindInteger:
		return "int64"
	case KindBoolean:
		return "bool"
	}
	return ""
}

// GoZero returns the zero value literal of GoType
func (k Kind) GoZero() string {
	switch k {
	case KindString:
		return `""`
	case KindFloat, KindInteger:
		return "0"
	case KindBoolean:
		return "false"
	}
	return ""
}

// Value is a tagged union over the value universe of the expression language
type Value struct {
	Kind  Kind
	Str   string
	Float float64
	Int   int64
	Bool  bool
	Elems []Value
}

func StringValue(s string) Value { return Value{Kind: KindString, Str: s} }
func FloatValue(f float64) Value { return Value{Kind: KindFloat, Float: f} }
func IntValue(i int64) Value { return Value{Kind: KindInteger, Int: i} }
func BoolValue(b bool) Value { return Value{Kind: KindBoolean, Bool: b} }
func TupleValue(e []Value) Value { return Value{Kind: KindTuple, Elems: e} }

// IsNumeric reports whether the value is an integer or a float
func (v Value) IsNumeric() bool {
	return v.Kind == KindInteger || v.Kind == KindFloat
}

// AsFloat widens a numeric value to float64
func (v Value) AsFloat() float64 {
	if v.Kind == KindInteger {
		return float64(v.Int)
	}
	return v.Float
}

// Interface returns the value as a plain Go value (used by reports)
func (v Value) Interface() interface{} {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindFloat:
		return v.Float
	case KindInteger:
		return v.Int
	case KindBoolean:
		return v.Bool
	case KindTuple:
		elems := make([]interface{}, len(v.Elems))
		for i, e := range v.Elems {
			elems[i] = e.Interface()
		}
		return elems
	}
	return nil
}

// String renders the value in expression syntax, which is also valid Go literal syntax
// for the four supported kinds.
func (v Value) String() string {
	switch v.Kind {
	case KindString:
		return strconv.Quote(v.Str)
	case KindFloat:
		return FormatFloat(v.Float)
	case KindInteger:
		return strconv.FormatInt(v.Int, 10)
	case KindBoolean:
		return strconv.FormatBool(v.Bool)
	case KindTuple:
		parts := make([]string, len(v.Elems))
		for i, e := range v.Elems {
			parts[i] = e.String()
		}
		return "(" + strings.Join(parts, ", ") + ")"
	}
	return "<absent>"
}

// Equal reports deep equality of kind and payload
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindString:
		return v.Str == o.Str
	case KindFloat:
		return v.Float == o.Float
	case KindInteger:
		return v.Int == o.Int
	case KindBoolean:
		return v.Bool == o.Bool
	case KindTuple:
		if len(v.Elems) != len(o.Elems) {
			return false
		}
		for i := range v.Elems {
			if !v.Elems[i].Equal(o.Elems[i]) {
				return false
			}
		}
		return true
	}
	return true
}

// FormatFloat formats f in shortest round-trip form, always keeping a float literal shape
func FormatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eEnN") {
		s += ".0"
	}
	return s
}
