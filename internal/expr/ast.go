package expr

import "github.com/ppiankov/tagc/internal/model"

// Node is an expression tree node
type Node interface {
	Pos() int
}

// Literal is a constant value
type Literal struct {
	At    int
	Value model.Value
}

// Ident is a reference to another fact of the same variant
type Ident struct {
	At   int
	Name string
}

// Unary is a prefix operator application
type Unary struct {
	At int
	Op TokenType
	X  Node
}

// Binary is an infix operator application
type Binary struct {
	At   int
	Op   TokenType
	X, Y Node
}

// Tuple is a parenthesized or top-level comma list
type Tuple struct {
	At    int
	Elems []Node
}

func (n *Literal) Pos() int { return n.At }
func (n *Ident) Pos() int   { return n.At }
func (n *Unary) Pos() int   { return n.At }
func (n *Binary) Pos() int  { return n.At }
func (n *Tuple) Pos() int   { return n.At }

// walk visits n and its children depth-first, left to right
func walk(n Node, visit func(Node)) {
	visit(n)
	switch n := n.(type) {
	case *Unary:
		walk(n.X, visit)
	case *Binary:
		walk(n.X, visit)
		walk(n.Y, visit)
	case *Tuple:
		for _, e := range n.Elems {
			walk(e, visit)
		}
	}
}
