package expr

import "fmt"

// ErrorKind classifies evaluation failures. None of them is fatal to the caller:
// the resolver retries facts whose evaluation failed on a later pass.
type ErrorKind int

const (
	UnknownIdentifier ErrorKind = iota + 1 // Name absent from the context (possibly not yet resolved)
	TypeError                              // Operator applied to incompatible operand kinds
	ParseError                             // Malformed syntax
	ArithmeticError                        // Division by zero, overflow, non-finite result
)

func (k ErrorKind) String() string {
	switch k {
	case UnknownIdentifier:
		return "unknown identifier"
	case TypeError:
		return "type error"
	case ParseError:
		return "parse error"
	case ArithmeticError:
		return "arithmetic error"
	}
	return "error"
}

// Error is returned by Parse and Eval
type Error struct {
	Kind ErrorKind
	Pos  int    // 1-based column in the expression, 0 when unknown
	Name string // Identifier for UnknownIdentifier
	Msg  string
}

func (e *Error) Error() string {
	if e.Pos > 0 {
		return fmt.Sprintf("%s at column %d: %s", e.Kind, e.Pos, e.Msg)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func errorf(kind ErrorKind, pos int, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Pos: pos, Msg: fmt.Sprintf(format, args...)}
}
