package expr

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// TokenType represents the kind of token.
type TokenType int

const (
	EOF TokenType = iota
	ILLEGAL

	// Literals & identifiers
	IDENT
	INT
	FLOAT
	STRING
	TRUE
	FALSE

	// Punctuation
	COMMA  // ","
	LPAREN // "("
	RPAREN // ")"

	// Operators
	PLUS    // "+"
	MINUS   // "-"
	STAR    // "*"
	SLASH   // "/"
	PERCENT // "%"
	EQ      // "=="
	NEQ     // "!="
	LESS    // "<"
	LESS_EQ
	GREATER
	GREATER_EQ
	AND  // "&&"
	OR   // "||"
	BANG // "!"
)

var tokenNames = map[TokenType]string{
	EOF: "end of expression", ILLEGAL: "illegal token",
	IDENT: "identifier", INT: "integer", FLOAT: "float", STRING: "string",
	TRUE: "true", FALSE: "false",
	COMMA: ",", LPAREN: "(", RPAREN: ")",
	PLUS: "+", MINUS: "-", STAR: "*", SLASH: "/", PERCENT: "%",
	EQ: "==", NEQ: "!=", LESS: "<", LESS_EQ: "<=", GREATER: ">", GREATER_EQ: ">=",
	AND: "&&", OR: "||", BANG: "!",
}

func (t TokenType) String() string {
	if s, ok := tokenNames[t]; ok {
		return s
	}
	return fmt.Sprintf("token(%d)", int(t))
}

// Token is a lexical token. Pos is the 1-based byte column in the source.
type Token struct {
	Type   TokenType
	Lexeme string
	Pos    int
	Err    string // Set on ILLEGAL tokens
}

var keywords = map[string]TokenType{
	"true":  TRUE,
	"false": FALSE,
}

// IsKeyword reports whether name always lexes as a literal rather than an identifier
func IsKeyword(name string) bool {
	_, ok := keywords[name]
	return ok
}

// Lexer scans an expression into tokens.
// Illegal input becomes an ILLEGAL token and scanning continues after it, so callers
// that only need raw lexemes (declaration splitting) still see the whole input.
type Lexer struct {
	src   string
	start int
	cur   int
}

// NewLexer creates a lexer over src
func NewLexer(src string) *Lexer {
	return &Lexer{src: src}
}

// Lex returns every token of src, ending with EOF
func Lex(src string) []Token {
	l := NewLexer(src)
	var out []Token
	for {
		tok := l.Next()
		out = append(out, tok)
		if tok.Type == EOF {
			return out
		}
	}
}

// Next returns the next token
func (l *Lexer) Next() Token {
	l.skipSpace()
	l.start = l.cur
	if l.cur >= len(l.src) {
		return l.emit(EOF)
	}

	r := l.advance()
	switch {
	case r == '_' || unicode.IsLetter(r):
		return l.ident()
	case r >= '0' && r <= '9':
		return l.number()
	}

	switch r {
	case '"':
		return l.str()
	case ',':
		return l.emit(COMMA)
	case '(':
		return l.emit(LPAREN)
	case ')':
		return l.emit(RPAREN)
	case '+':
		return l.emit(PLUS)
	case '-':
		return l.emit(MINUS)
	case '*':
		return l.emit(STAR)
	case '/':
		return l.emit(SLASH)
	case '%':
		return l.emit(PERCENT)
	case '=':
		if l.match('=') {
			return l.emit(EQ)
		}
		return l.illegal("unexpected '=' (use == for comparison)")
	case '!':
		if l.match('=') {
			return l.emit(NEQ)
		}
		return l.emit(BANG)
	case '<':
		if l.match('=') {
			return l.emit(LESS_EQ)
		}
		return l.emit(LESS)
	case '>':
		if l.match('=') {
			return l.emit(GREATER_EQ)
		}
		return l.emit(GREATER)
	case '&':
		if l.match('&') {
			return l.emit(AND)
		}
		return l.illegal("unexpected '&' (use && for logical and)")
	case '|':
		if l.match('|') {
			return l.emit(OR)
		}
		return l.illegal("unexpected '|' (use || for logical or)")
	}
	return l.illegal(fmt.Sprintf("unexpected character %q", r))
}

func (l *Lexer) ident() Token {
	for l.cur < len(l.src) {
		r, size := utf8.DecodeRuneInString(l.src[l.cur:])
		if r != '_' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}
		l.cur += size
	}
	if tt, ok := keywords[l.src[l.start:l.cur]]; ok {
		return l.emit(tt)
	}
	return l.emit(IDENT)
}

// number scans digits, an optional fraction and an optional exponent.
// A numeric literal running straight into identifier characters (1padding) is one
// ILLEGAL token.
func (l *Lexer) number() Token {
	tt := INT
	l.digits()
	if l.peek() == '.' && isDigit(l.peekAt(1)) {
		tt = FLOAT
		l.cur++
		l.digits()
	}
	if c := l.peek(); c == 'e' || c == 'E' {
		n := 1
		if s := l.peekAt(1); s == '+' || s == '-' {
			n = 2
		}
		if isDigit(l.peekAt(n)) {
			tt = FLOAT
			l.cur += n
			l.digits()
		}
	}
	if c := l.peek(); c == '_' || isLetter(c) {
		for c := l.peek(); c == '_' || isLetter(c) || isDigit(c); c = l.peek() {
			l.cur++
		}
		return l.illegal(fmt.Sprintf("invalid numeric literal %q", l.src[l.start:l.cur]))
	}
	return l.emit(tt)
}

func (l *Lexer) str() Token {
	for l.cur < len(l.src) {
		switch l.src[l.cur] {
		case '\\':
			l.cur += 2
			continue
		case '"':
			l.cur++
			return l.emit(STRING)
		case '\n':
			return l.illegal("newline in string literal")
		}
		l.cur++
	}
	if l.cur > len(l.src) {
		l.cur = len(l.src)
	}
	return l.illegal("unterminated string literal")
}

func (l *Lexer) digits() {
	for isDigit(l.peek()) {
		l.cur++
	}
}

func (l *Lexer) skipSpace() {
	for l.cur < len(l.src) {
		switch l.src[l.cur] {
		case ' ', '\t', '\n', '\r':
			l.cur++
		default:
			return
		}
	}
}

func (l *Lexer) advance() rune {
	r, size := utf8.DecodeRuneInString(l.src[l.cur:])
	l.cur += size
	return r
}

func (l *Lexer) match(c byte) bool {
	if l.peek() == c {
		l.cur++
		return true
	}
	return false
}

func (l *Lexer) peek() byte {
	return l.peekAt(0)
}

func (l *Lexer) peekAt(n int) byte {
	if l.cur+n >= len(l.src) {
		return 0
	}
	return l.src[l.cur+n]
}

func (l *Lexer) emit(tt TokenType) Token {
	return Token{Type: tt, Lexeme: l.src[l.start:l.cur], Pos: l.start + 1}
}

func (l *Lexer) illegal(msg string) Token {
	tok := l.emit(ILLEGAL)
	tok.Err = msg
	return tok
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}
