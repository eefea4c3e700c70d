package extract

import (
	"fmt"
	"go/token"
	"strings"

	"github.com/ppiankov/tagc/internal/diag"
	"github.com/ppiankov/tagc/internal/expr"
	"github.com/ppiankov/tagc/internal/model"
)

// DefaultExpression is used when a tag declares no expression
const DefaultExpression = "true"

// Extractor turns raw tag annotations into unresolved facts
type Extractor struct {
	separator string
}

// NewExtractor creates a new declaration extractor
func NewExtractor() *Extractor {
	return &Extractor{separator: ","}
}

// Extract builds the facts of one variant in declaration order.
// Failing annotations are reported to col and skipped.
func (e *Extractor) Extract(typeName string, v *model.VariantDecl, col *diag.Collector) []*model.Fact {
	// Names seen so far on this variant, for duplicate detection
	seen := make(map[string]bool)

	var facts []*model.Fact
	for _, a := range v.Annotations {
		fact, d := e.parse(v.Name, a)
		if d == nil && seen[fact.Name] {
			d = &diag.Diagnostic{
				Pos:      a.Pos,
				Category: diag.DuplicateFact,
				Variant:  v.Name,
				Fact:     fact.Name,
				Msg:      fmt.Sprintf("duplicate tag '%s'", fact.Name),
			}
		}
		if d != nil {
			d.Type = typeName
			col.Add(d)
			if col.Stop() {
				return facts
			}
			continue
		}

		seen[fact.Name] = true
		facts = append(facts, fact)
	}

	return facts
}

// parse applies the declaration contract to one annotation
func (e *Extractor) parse(variant string, a model.Annotation) (*model.Fact, *diag.Diagnostic) {
	tokens := a.Tokens
	if tokens == nil {
		tokens = Tokenize(a.Text)
	}

	fail := func(cat diag.Category, name, format string, args ...interface{}) (*model.Fact, *diag.Diagnostic) {
		return nil, &diag.Diagnostic{
			Pos:      a.Pos,
			Category: cat,
			Variant:  variant,
			Fact:     name,
			Msg:      fmt.Sprintf(format, args...),
		}
	}

	if len(tokens) == 0 {
		return fail(diag.InvalidFactName, "", "no name for tag")
	}

	name := tokens[0]
	if !ValidName(name) {
		return fail(diag.InvalidFactName, "", "invalid tag name '%s'", name)
	}

	// The first token must be followed by the separator or nothing at all
	if len(tokens) > 1 && tokens[1] != e.separator {
		return fail(diag.MalformedDeclaration, name, "malformed tag '%s'", strings.TrimSpace(a.Text))
	}

	expression := ""
	if len(tokens) > 2 {
		expression = strings.TrimSpace(strings.Join(tokens[2:], " "))
	}
	if expression == "" {
		expression = DefaultExpression
	}

	return &model.Fact{
		Name:    name,
		Variant: variant,
		Expr:    expression,
		Pos:     a.Pos,
	}, nil
}

// ValidName reports whether name can be used as a fact name: a Go identifier that
// is neither a keyword nor the blank identifier. true and false are rejected too,
// since an expression could never reference them.
func ValidName(name string) bool {
	return name != "_" && token.IsIdentifier(name) && !expr.IsKeyword(name)
}

// Tokenize splits annotation text into lexemes using the expression lexer, so string
// literals containing the separator stay whole. Illegal input is kept verbatim.
func Tokenize(text string) []string {
	var out []string
	for _, tok := range expr.Lex(text) {
		if tok.Type == expr.EOF {
			break
		}
		out = append(out, tok.Lexeme)
	}
	return out
}
