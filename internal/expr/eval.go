package expr

import (
	"math"

	"github.com/ppiankov/tagc/internal/model"
)

// Context resolves free identifiers during evaluation
type Context interface {
	Lookup(name string) (model.Value, bool)
}

// Scope is a map-backed Context holding the resolved facts of one variant
type Scope map[string]model.Value

// Lookup implements Context
func (s Scope) Lookup(name string) (model.Value, bool) {
	v, ok := s[name]
	return v, ok
}

// Set binds name to v
func (s Scope) Set(name string, v model.Value) {
	s[name] = v
}

// Evaluate parses and evaluates src against ctx
func Evaluate(src string, ctx Context) (model.Value, error) {
	prog, err := Parse(src)
	if err != nil {
		return model.Value{}, err
	}
	return prog.Eval(ctx)
}

// Eval evaluates the program against ctx. It never modifies ctx.
func (p *Program) Eval(ctx Context) (model.Value, error) {
	v, err := eval(p.root, ctx)
	if err != nil {
		return model.Value{}, err
	}
	return v, nil
}

func eval(n Node, ctx Context) (model.Value, *Error) {
	switch n := n.(type) {
	case *Literal:
		return n.Value, nil
	case *Ident:
		if ctx != nil {
			if v, ok := ctx.Lookup(n.Name); ok {
				return v, nil
			}
		}
		err := errorf(UnknownIdentifier, n.At, "%q is not defined", n.Name)
		err.Name = n.Name
		return model.Value{}, err
	case *Unary:
		x, err := eval(n.X, ctx)
		if err != nil {
			return model.Value{}, err
		}
		return unary(n, x)
	case *Binary:
		// Both sides are always evaluated: && and || do not short-circuit.
		x, err := eval(n.X, ctx)
		if err != nil {
			return model.Value{}, err
		}
		y, err := eval(n.Y, ctx)
		if err != nil {
			return model.Value{}, err
		}
		return binary(n, x, y)
	case *Tuple:
		elems := make([]model.Value, 0, len(n.Elems))
		for _, e := range n.Elems {
			v, err := eval(e, ctx)
			if err != nil {
				return model.Value{}, err
			}
			elems = append(elems, v)
		}
		return model.TupleValue(elems), nil
	}
	return model.Value{}, errorf(ParseError, n.Pos(), "unsupported expression node")
}

func unary(n *Unary, x model.Value) (model.Value, *Error) {
	switch n.Op {
	case MINUS:
		switch x.Kind {
		case model.KindInteger:
			if x.Int == math.MinInt64 {
				return model.Value{}, errorf(ArithmeticError, n.At, "integer overflow negating %d", x.Int)
			}
			return model.IntValue(-x.Int), nil
		case model.KindFloat:
			return model.FloatValue(-x.Float), nil
		}
	case BANG:
		if x.Kind == model.KindBoolean {
			return model.BoolValue(!x.Bool), nil
		}
	}
	return model.Value{}, errorf(TypeError, n.At, "operator %s not defined on %s", n.Op, x.Kind)
}

func binary(n *Binary, x, y model.Value) (model.Value, *Error) {
	switch n.Op {
	case PLUS:
		if x.Kind == model.KindString && y.Kind == model.KindString {
			return model.StringValue(x.Str + y.Str), nil
		}
		return arith(n, x, y)
	case MINUS, STAR, SLASH, PERCENT:
		return arith(n, x, y)
	case EQ, NEQ:
		eq, err := equal(n, x, y)
		if err != nil {
			return model.Value{}, err
		}
		return model.BoolValue(eq == (n.Op == EQ)), nil
	case LESS, LESS_EQ, GREATER, GREATER_EQ:
		return compare(n, x, y)
	case AND, OR:
		if x.Kind != model.KindBoolean || y.Kind != model.KindBoolean {
			return model.Value{}, mismatch(n, x, y)
		}
		if n.Op == AND {
			return model.BoolValue(x.Bool && y.Bool), nil
		}
		return model.BoolValue(x.Bool || y.Bool), nil
	}
	return model.Value{}, errorf(ParseError, n.At, "unknown operator %s", n.Op)
}

func arith(n *Binary, x, y model.Value) (model.Value, *Error) {
	if !x.IsNumeric() || !y.IsNumeric() {
		return model.Value{}, mismatch(n, x, y)
	}
	if x.Kind == model.KindInteger && y.Kind == model.KindInteger {
		return intArith(n, x.Int, y.Int)
	}
	if n.Op == PERCENT {
		return model.Value{}, mismatch(n, x, y)
	}

	a, b := x.AsFloat(), y.AsFloat()
	var r float64
	switch n.Op {
	case PLUS:
		r = a + b
	case MINUS:
		r = a - b
	case STAR:
		r = a * b
	case SLASH:
		if b == 0 {
			return model.Value{}, errorf(ArithmeticError, n.At, "division by zero")
		}
		r = a / b
	}
	if math.IsInf(r, 0) || math.IsNaN(r) {
		return model.Value{}, errorf(ArithmeticError, n.At, "float result %v is not finite", r)
	}
	return model.FloatValue(r), nil
}

func intArith(n *Binary, a, b int64) (model.Value, *Error) {
	overflow := func() (model.Value, *Error) {
		return model.Value{}, errorf(ArithmeticError, n.At, "integer overflow in %d %s %d", a, n.Op, b)
	}
	switch n.Op {
	case PLUS:
		if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
			return overflow()
		}
		return model.IntValue(a + b), nil
	case MINUS:
		if (b < 0 && a > math.MaxInt64+b) || (b > 0 && a < math.MinInt64+b) {
			return overflow()
		}
		return model.IntValue(a - b), nil
	case STAR:
		if a == 0 || b == 0 {
			return model.IntValue(0), nil
		}
		r := a * b
		if r/b != a || (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
			return overflow()
		}
		return model.IntValue(r), nil
	case SLASH, PERCENT:
		if b == 0 {
			return model.Value{}, errorf(ArithmeticError, n.At, "division by zero")
		}
		if n.Op == PERCENT {
			return model.IntValue(a % b), nil
		}
		if a == math.MinInt64 && b == -1 {
			return overflow()
		}
		return model.IntValue(a / b), nil
	}
	return model.Value{}, errorf(ParseError, n.At, "unknown operator %s", n.Op)
}

func equal(n *Binary, x, y model.Value) (bool, *Error) {
	switch {
	case x.IsNumeric() && y.IsNumeric():
		if x.Kind == model.KindInteger && y.Kind == model.KindInteger {
			return x.Int == y.Int, nil
		}
		return x.AsFloat() == y.AsFloat(), nil
	case x.Kind != y.Kind:
		return false, mismatch(n, x, y)
	}
	return x.Equal(y), nil
}

func compare(n *Binary, x, y model.Value) (model.Value, *Error) {
	var c int
	switch {
	case x.Kind == model.KindInteger && y.Kind == model.KindInteger:
		c = cmp3(x.Int < y.Int, x.Int > y.Int)
	case x.IsNumeric() && y.IsNumeric():
		a, b := x.AsFloat(), y.AsFloat()
		c = cmp3(a < b, a > b)
	case x.Kind == model.KindString && y.Kind == model.KindString:
		c = cmp3(x.Str < y.Str, x.Str > y.Str)
	default:
		return model.Value{}, mismatch(n, x, y)
	}

	var r bool
	switch n.Op {
	case LESS:
		r = c < 0
	case LESS_EQ:
		r = c <= 0
	case GREATER:
		r = c > 0
	case GREATER_EQ:
		r = c >= 0
	}
	return model.BoolValue(r), nil
}

func cmp3(less, greater bool) int {
	switch {
	case less:
		return -1
	case greater:
		return 1
	}
	return 0
}

func mismatch(n *Binary, x, y model.Value) *Error {
	return errorf(TypeError, n.At, "operator %s not defined on %s and %s", n.Op, x.Kind, y.Kind)
}
