package expr

import (
	"errors"
	"math"
	"strconv"
	"testing"

	"github.com/ppiankov/tagc/internal/model"
)

func TestEvaluate_Literals(t *testing.T) {
	tests := []struct {
		src      string
		expected model.Value
		desc     string
	}{
		{src: "1", expected: model.IntValue(1), desc: "integer"},
		{src: "3.5", expected: model.FloatValue(3.5), desc: "float"},
		{src: "1e3", expected: model.FloatValue(1000), desc: "exponent makes a float"},
		{src: `"Afghanistan"`, expected: model.StringValue("Afghanistan"), desc: "string"},
		{src: `"Palestine, State of"`, expected: model.StringValue("Palestine, State of"), desc: "string with comma"},
		{src: `"tab\tquote\""`, expected: model.StringValue("tab\tquote\""), desc: "escapes"},
		{src: "true", expected: model.BoolValue(true), desc: "true"},
		{src: "false", expected: model.BoolValue(false), desc: "false"},
		{src: "(7)", expected: model.IntValue(7), desc: "parenthesized"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			v, err := Evaluate(tt.src, nil)
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if !v.Equal(tt.expected) {
				t.Errorf("Expected %s, got %s", tt.expected, v)
			}
		})
	}
}

func TestEvaluate_Arithmetic(t *testing.T) {
	scope := Scope{
		"height":  model.IntValue(100),
		"padding": model.IntValue(10),
		"id":      model.IntValue(1),
		"ratio":   model.FloatValue(0.5),
	}

	tests := []struct {
		src      string
		expected model.Value
		desc     string
	}{
		{src: "id - 1", expected: model.IntValue(0), desc: "subtraction"},
		{src: "height + (padding * 2)", expected: model.IntValue(120), desc: "grouping"},
		{src: "height + padding * 2", expected: model.IntValue(120), desc: "precedence"},
		{src: "7 / 2", expected: model.IntValue(3), desc: "integer division truncates"},
		{src: "-7 / 2", expected: model.IntValue(-3), desc: "truncates toward zero"},
		{src: "7 % 3", expected: model.IntValue(1), desc: "modulo"},
		{src: "height * ratio", expected: model.FloatValue(50), desc: "mixed widens to float"},
		{src: "1 + 2.5", expected: model.FloatValue(3.5), desc: "int plus float"},
		{src: "7.0 / 2", expected: model.FloatValue(3.5), desc: "float division"},
		{src: "--5", expected: model.IntValue(5), desc: "double negation"},
		{src: `"Afghanistan" + " (AFG)"`, expected: model.StringValue("Afghanistan (AFG)"), desc: "string concatenation"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			v, err := Evaluate(tt.src, scope)
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if !v.Equal(tt.expected) {
				t.Errorf("Expected %s, got %s", tt.expected, v)
			}
		})
	}
}

func TestEvaluate_ComparisonAndLogic(t *testing.T) {
	scope := Scope{"n": model.IntValue(3), "name": model.StringValue("b")}

	tests := []struct {
		src      string
		expected bool
	}{
		{src: "n == 3", expected: true},
		{src: "n != 3", expected: false},
		{src: "n == 3.0", expected: true},
		{src: "n < 4 && n > 2", expected: true},
		{src: "n <= 2 || n >= 3", expected: true},
		{src: `name < "c"`, expected: true},
		{src: `name == "b"`, expected: true},
		{src: "!(n == 3)", expected: false},
		{src: "true == false", expected: false},
		{src: "1 + 1 == 2 && !false", expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			v, err := Evaluate(tt.src, scope)
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if v.Kind != model.KindBoolean || v.Bool != tt.expected {
				t.Errorf("Expected %v, got %s", tt.expected, v)
			}
		})
	}
}

func TestEvaluate_Tuple(t *testing.T) {
	v, err := Evaluate("1, 2", nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if v.Kind != model.KindTuple || len(v.Elems) != 2 {
		t.Fatalf("Expected 2-element tuple, got %s", v)
	}

	v, err = Evaluate("()", nil)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if v.Kind != model.KindTuple || len(v.Elems) != 0 {
		t.Errorf("Expected empty tuple, got %s", v)
	}
}

func TestEvaluate_Errors(t *testing.T) {
	scope := Scope{"s": model.StringValue("x"), "b": model.BoolValue(true)}
	maxInt := strconv.FormatInt(math.MaxInt64, 10)

	tests := []struct {
		src  string
		kind ErrorKind
		desc string
	}{
		{src: "other + 7", kind: UnknownIdentifier, desc: "unknown identifier"},
		{src: "s + 1", kind: TypeError, desc: "string plus integer"},
		{src: "b && 1", kind: TypeError, desc: "logic on integer"},
		{src: "-s", kind: TypeError, desc: "negate string"},
		{src: "!1", kind: TypeError, desc: "not on integer"},
		{src: "true < false", kind: TypeError, desc: "ordering booleans"},
		{src: "1.5 % 2", kind: TypeError, desc: "float modulo"},
		{src: "s == 1", kind: TypeError, desc: "equality across kinds"},
		{src: "1 +", kind: ParseError, desc: "dangling operator"},
		{src: "(1 + 2", kind: ParseError, desc: "unclosed paren"},
		{src: "1 2", kind: ParseError, desc: "juxtaposition"},
		{src: "a = 1", kind: ParseError, desc: "single equals"},
		{src: `"open`, kind: ParseError, desc: "unterminated string"},
		{src: "1padding", kind: ParseError, desc: "identifier starting with digit"},
		{src: "", kind: ParseError, desc: "empty"},
		{src: "99999999999999999999", kind: ParseError, desc: "integer literal out of range"},
		{src: "1 / 0", kind: ArithmeticError, desc: "integer division by zero"},
		{src: "1 % 0", kind: ArithmeticError, desc: "modulo by zero"},
		{src: "1.0 / 0", kind: ArithmeticError, desc: "float division by zero"},
		{src: maxInt + " + 1", kind: ArithmeticError, desc: "integer overflow"},
		{src: maxInt + " * 2", kind: ArithmeticError, desc: "multiplication overflow"},
		{src: "1e308 * 10", kind: ArithmeticError, desc: "float overflow"},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			_, err := Evaluate(tt.src, scope)
			if err == nil {
				t.Fatalf("Expected error for %q", tt.src)
			}
			var e *Error
			if !errors.As(err, &e) {
				t.Fatalf("Expected *Error, got %T", err)
			}
			if e.Kind != tt.kind {
				t.Errorf("Expected %v, got %v (%v)", tt.kind, e.Kind, err)
			}
		})
	}
}

func TestEvaluate_UnknownIdentifierName(t *testing.T) {
	_, err := Evaluate("a + other", Scope{"a": model.IntValue(1)})
	var e *Error
	if !errors.As(err, &e) {
		t.Fatalf("Expected *Error, got %v", err)
	}
	if e.Name != "other" {
		t.Errorf("Expected name 'other', got '%s'", e.Name)
	}
	if e.Pos != 5 {
		t.Errorf("Expected column 5, got %d", e.Pos)
	}
}

func TestEvaluate_DoesNotMutateContext(t *testing.T) {
	scope := Scope{"a": model.IntValue(1)}
	for i := 0; i < 3; i++ {
		v, err := Evaluate("a + 1", scope)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if v.Int != 2 {
			t.Errorf("Expected 2, got %s", v)
		}
	}
	if len(scope) != 1 || scope["a"].Int != 1 {
		t.Errorf("Expected scope untouched, got %v", scope)
	}
}

func TestProgram_Identifiers(t *testing.T) {
	prog, err := Parse("width + (padding * 2) + padding - height")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	got := prog.Identifiers()
	expected := []string{"width", "padding", "height"}
	if len(got) != len(expected) {
		t.Fatalf("Expected %v, got %v", expected, got)
	}
	for i := range expected {
		if got[i] != expected[i] {
			t.Errorf("Expected %v, got %v", expected, got)
		}
	}
}

func TestLex_KeepsIllegalLexemes(t *testing.T) {
	toks := Lex(`1padding, "a, b" & x`)
	var lexemes []string
	for _, tok := range toks {
		if tok.Type == EOF {
			break
		}
		lexemes = append(lexemes, tok.Lexeme)
	}
	expected := []string{"1padding", ",", `"a, b"`, "&", "x"}
	if len(lexemes) != len(expected) {
		t.Fatalf("Expected %v, got %v", expected, lexemes)
	}
	for i := range expected {
		if lexemes[i] != expected[i] {
			t.Errorf("Expected lexeme %q at %d, got %q", expected[i], i, lexemes[i])
		}
	}
	if toks[0].Type != ILLEGAL {
		t.Errorf("Expected 1padding to be ILLEGAL, got %v", toks[0].Type)
	}
}
