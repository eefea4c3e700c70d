package expr

import (
	"strconv"
	"strings"

	"github.com/ppiankov/tagc/internal/model"
)

// Binding power of infix operators; higher binds tighter
var precedence = map[TokenType]int{
	OR:         1,
	AND:        2,
	EQ:         3,
	NEQ:        3,
	LESS:       4,
	LESS_EQ:    4,
	GREATER:    4,
	GREATER_EQ: 4,
	PLUS:       5,
	MINUS:      5,
	STAR:       6,
	SLASH:      6,
	PERCENT:    6,
}

// Program is a parsed expression, safe to evaluate any number of times
type Program struct {
	root   Node
	idents []string
}

// Identifiers returns the distinct free identifiers in first-use order
func (p *Program) Identifiers() []string {
	out := make([]string, len(p.idents))
	copy(out, p.idents)
	return out
}

// Parse parses src into a Program
func Parse(src string) (*Program, error) {
	if strings.TrimSpace(src) == "" {
		return nil, errorf(ParseError, 0, "empty expression")
	}
	p := &parser{toks: Lex(src)}
	root, err := p.parseTuple()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.Type != EOF {
		return nil, p.unexpected(tok, "after expression")
	}

	prog := &Program{root: root}
	seen := make(map[string]bool)
	walk(root, func(n Node) {
		if id, ok := n.(*Ident); ok && !seen[id.Name] {
			seen[id.Name] = true
			prog.idents = append(prog.idents, id.Name)
		}
	})
	return prog, nil
}

type parser struct {
	toks []Token
	pos  int
}

func (p *parser) peek() Token {
	return p.toks[p.pos]
}

func (p *parser) next() Token {
	tok := p.toks[p.pos]
	if tok.Type != EOF {
		p.pos++
	}
	return tok
}

// parseTuple parses a comma list; a single element is returned unwrapped
func (p *parser) parseTuple() (Node, error) {
	first, err := p.parseBinary(1)
	if err != nil {
		return nil, err
	}
	if p.peek().Type != COMMA {
		return first, nil
	}
	tuple := &Tuple{At: first.Pos(), Elems: []Node{first}}
	for p.peek().Type == COMMA {
		p.next()
		elem, err := p.parseBinary(1)
		if err != nil {
			return nil, err
		}
		tuple.Elems = append(tuple.Elems, elem)
	}
	return tuple, nil
}

func (p *parser) parseBinary(minPrec int) (Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		op := p.peek()
		prec, ok := precedence[op.Type]
		if !ok || prec < minPrec {
			return left, nil
		}
		p.next()
		right, err := p.parseBinary(prec + 1)
		if err != nil {
			return nil, err
		}
		left = &Binary{At: op.Pos, Op: op.Type, X: left, Y: right}
	}
}

func (p *parser) parseUnary() (Node, error) {
	switch tok := p.peek(); tok.Type {
	case MINUS, BANG:
		p.next()
		x, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &Unary{At: tok.Pos, Op: tok.Type, X: x}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (Node, error) {
	tok := p.next()
	switch tok.Type {
	case INT:
		n, err := strconv.ParseInt(tok.Lexeme, 10, 64)
		if err != nil {
			return nil, errorf(ParseError, tok.Pos, "integer literal %s out of range", tok.Lexeme)
		}
		return &Literal{At: tok.Pos, Value: model.IntValue(n)}, nil
	case FLOAT:
		f, err := strconv.ParseFloat(tok.Lexeme, 64)
		if err != nil {
			return nil, errorf(ParseError, tok.Pos, "float literal %s out of range", tok.Lexeme)
		}
		return &Literal{At: tok.Pos, Value: model.FloatValue(f)}, nil
	case STRING:
		s, err := strconv.Unquote(tok.Lexeme)
		if err != nil {
			return nil, errorf(ParseError, tok.Pos, "invalid string literal %s", tok.Lexeme)
		}
		return &Literal{At: tok.Pos, Value: model.StringValue(s)}, nil
	case TRUE, FALSE:
		return &Literal{At: tok.Pos, Value: model.BoolValue(tok.Type == TRUE)}, nil
	case IDENT:
		return &Ident{At: tok.Pos, Name: tok.Lexeme}, nil
	case LPAREN:
		if p.peek().Type == RPAREN {
			p.next()
			return &Tuple{At: tok.Pos}, nil
		}
		inner, err := p.parseTuple()
		if err != nil {
			return nil, err
		}
		if closing := p.next(); closing.Type != RPAREN {
			return nil, p.unexpected(closing, "expecting )")
		}
		return inner, nil
	}
	return nil, p.unexpected(tok, "")
}

func (p *parser) unexpected(tok Token, context string) *Error {
	var msg string
	switch tok.Type {
	case ILLEGAL:
		return errorf(ParseError, tok.Pos, "%s", tok.Err)
	case EOF:
		msg = "unexpected end of expression"
	default:
		msg = "unexpected " + strconv.Quote(tok.Lexeme)
	}
	if context != "" {
		msg += " " + context
	}
	return errorf(ParseError, tok.Pos, "%s", msg)
}
