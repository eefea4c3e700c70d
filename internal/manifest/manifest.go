// Package manifest decodes the YAML description of tagged types.
package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"go/token"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/tagc/internal/diag"
	"github.com/ppiankov/tagc/internal/extract"
	"github.com/ppiankov/tagc/internal/model"
)

// Underlying types a generated type may be declared with
var underlyingTypes = map[string]bool{
	"int": true, "int8": true, "int16": true, "int32": true, "int64": true,
	"uint": true, "uint8": true, "uint16": true, "uint32": true, "uint64": true,
	"string": true,
}

// Bit sizes of the integer underlying types
var intBits = map[string]int{
	"int": strconv.IntSize, "int8": 8, "int16": 16, "int32": 32, "int64": 64,
	"uint": strconv.IntSize, "uint8": 8, "uint16": 16, "uint32": 32, "uint64": 64,
}

var (
	fileKeys    = []string{"package", "types"}
	typeKeys    = []string{"type", "underlying", "emit_type", "receiver", "variants"}
	variantKeys = []string{"name", "value", "tags"}
)

// Decoder turns manifest bytes into type declarations
type Decoder struct {
	aggregate bool
}

// NewDecoder creates a decoder; aggregate=true reports every problem instead of the first
func NewDecoder(aggregate bool) *Decoder {
	return &Decoder{aggregate: aggregate}
}

// Decode parses data read from path. Problems are returned as InvalidManifest diagnostics.
func (d *Decoder) Decode(path string, data []byte) (*model.Manifest, error) {
	s := &state{path: path, col: diag.NewCollector(d.aggregate)}
	m := &model.Manifest{Path: path}

	var doc yaml.Node
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil {
		msg := fmt.Sprintf("failed to parse YAML: %v", err)
		if errors.Is(err, io.EOF) {
			msg = "manifest is empty"
		}
		s.col.Add(&diag.Diagnostic{
			Pos:      model.Pos{File: path},
			Category: diag.InvalidManifest,
			Msg:      msg,
			Err:      err,
		})
		return nil, s.col.Err()
	}

	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		s.fail(root, "manifest must be a mapping")
		return nil, s.col.Err()
	}

	if pkg := lookup(root, "package"); pkg != nil {
		m.Package = s.identifier(pkg, "package")
	}

	if types := lookup(root, "types"); types != nil {
		s.checkKeys(root, fileKeys)
		if types.Kind != yaml.SequenceNode {
			s.fail(types, "types must be a list")
			return nil, s.col.Err()
		}
		for _, node := range types.Content {
			if s.col.Stop() {
				break
			}
			if decl := s.typeDecl(node, typeKeys); decl != nil {
				m.Types = append(m.Types, decl)
			}
		}
	} else {
		if decl := s.typeDecl(root, append([]string{"package"}, typeKeys...)); decl != nil {
			m.Types = append(m.Types, decl)
		}
	}

	seen := make(map[string]bool)
	for _, decl := range m.Types {
		if seen[decl.Name] {
			s.failAt(decl.Pos, decl.Name, "", "duplicate type %s", decl.Name)
		}
		seen[decl.Name] = true
	}
	s.checkScope(m)

	if err := s.col.Err(); err != nil {
		return nil, err
	}
	return m, nil
}

// state carries the diagnostics of one Decode call
type state struct {
	path string
	col  *diag.Collector
}

func (s *state) pos(n *yaml.Node) model.Pos {
	return model.Pos{File: s.path, Line: n.Line, Column: n.Column}
}

func (s *state) fail(n *yaml.Node, format string, args ...interface{}) {
	s.failAt(s.pos(n), "", "", format, args...)
}

func (s *state) failAt(pos model.Pos, typeName, variant, format string, args ...interface{}) {
	s.col.Add(&diag.Diagnostic{
		Pos:      pos,
		Category: diag.InvalidManifest,
		Type:     typeName,
		Variant:  variant,
		Msg:      fmt.Sprintf(format, args...),
	})
}

func (s *state) checkKeys(n *yaml.Node, allowed []string) {
	for i := 0; i+1 < len(n.Content); i += 2 {
		key := n.Content[i]
		ok := false
		for _, a := range allowed {
			if key.Value == a {
				ok = true
				break
			}
		}
		if !ok {
			s.fail(key, "unknown key %q", key.Value)
		}
	}
}

// identifier validates a scalar holding a Go identifier
func (s *state) identifier(n *yaml.Node, what string) string {
	if n.Kind != yaml.ScalarNode {
		s.fail(n, "%s must be a string", what)
		return ""
	}
	if n.Value == "_" || !token.IsIdentifier(n.Value) {
		s.fail(n, "%s %q is not a valid Go identifier", what, n.Value)
		return ""
	}
	return n.Value
}

func (s *state) typeDecl(n *yaml.Node, allowed []string) *model.TypeDecl {
	if n.Kind != yaml.MappingNode {
		s.fail(n, "type entry must be a mapping")
		return nil
	}
	s.checkKeys(n, allowed)

	decl := &model.TypeDecl{Pos: s.pos(n)}

	nameNode := lookup(n, "type")
	if nameNode == nil {
		s.fail(n, "missing required key \"type\"")
		return nil
	}
	decl.Name = s.identifier(nameNode, "type")
	if decl.Name == "" {
		return nil
	}
	decl.Pos = s.pos(nameNode)

	if u := lookup(n, "underlying"); u != nil {
		if !underlyingTypes[u.Value] {
			s.fail(u, "underlying type %q must be an integer type or string", u.Value)
		}
		decl.Underlying = u.Value
	}
	if e := lookup(n, "emit_type"); e != nil {
		if err := e.Decode(&decl.EmitType); err != nil {
			s.fail(e, "emit_type must be a boolean")
		}
	}
	if r := lookup(n, "receiver"); r != nil {
		decl.Receiver = s.identifier(r, "receiver")
	}

	variants := lookup(n, "variants")
	if variants == nil {
		s.fail(n, "type %s has no variants", decl.Name)
		return nil
	}
	if variants.Kind != yaml.SequenceNode {
		s.fail(variants, "variants must be a list")
		return nil
	}

	seen := make(map[string]bool)
	for _, vn := range variants.Content {
		if s.col.Stop() {
			return nil
		}
		v := s.variant(decl, vn)
		if v == nil {
			continue
		}
		if seen[v.Name] {
			s.failAt(v.Pos, decl.Name, v.Name, "duplicate variant %s", v.Name)
			continue
		}
		seen[v.Name] = true
		decl.Variants = append(decl.Variants, v)
	}

	s.checkDiscriminants(decl)
	return decl
}

func (s *state) variant(decl *model.TypeDecl, n *yaml.Node) *model.VariantDecl {
	// A bare string is a variant without tags
	if n.Kind == yaml.ScalarNode {
		name := s.identifier(n, "variant")
		if name == "" {
			return nil
		}
		return &model.VariantDecl{Name: name, Pos: s.pos(n)}
	}
	if n.Kind != yaml.MappingNode {
		s.fail(n, "variant must be a mapping or a name")
		return nil
	}
	s.checkKeys(n, variantKeys)

	nameNode := lookup(n, "name")
	if nameNode == nil {
		s.fail(n, "variant without name")
		return nil
	}
	name := s.identifier(nameNode, "variant")
	if name == "" {
		return nil
	}
	v := &model.VariantDecl{Name: name, Pos: s.pos(nameNode)}

	if vn := lookup(n, "value"); vn != nil {
		v.Discriminant = s.discriminant(decl, v, vn)
	}

	if tags := lookup(n, "tags"); tags != nil {
		if tags.Kind != yaml.SequenceNode {
			s.failAt(s.pos(tags), decl.Name, name, "tags must be a list")
			return v
		}
		for _, tn := range tags.Content {
			if tn.Kind != yaml.ScalarNode {
				s.failAt(s.pos(tn), decl.Name, name, "tag must be a string")
				continue
			}
			text := Unwrap(tn.Value)
			v.Annotations = append(v.Annotations, model.Annotation{
				Text:   text,
				Tokens: extract.Tokenize(text),
				Pos:    s.pos(tn),
			})
		}
	}
	return v
}

// discriminant renders a variant value as a Go constant literal. Integers are
// normalized to decimal so 1, 01 and 0x1 compare equal.
func (s *state) discriminant(decl *model.TypeDecl, v *model.VariantDecl, n *yaml.Node) string {
	if n.Kind != yaml.ScalarNode {
		s.failAt(s.pos(n), decl.Name, v.Name, "value must be a scalar")
		return ""
	}
	if decl.Underlying == "string" {
		return strconv.Quote(n.Value)
	}
	if n.ShortTag() != "!!int" {
		s.failAt(s.pos(n), decl.Name, v.Name, "value %q must be an integer", n.Value)
		return n.Value
	}

	underlying := decl.Underlying
	if underlying == "" {
		underlying = "int"
	}
	bits, ok := intBits[underlying]
	if !ok {
		// Unknown underlying type was already reported
		return n.Value
	}

	if strings.HasPrefix(underlying, "uint") {
		var u uint64
		if err := n.Decode(&u); err != nil || (bits < 64 && u >= uint64(1)<<bits) {
			s.failAt(s.pos(n), decl.Name, v.Name, "value %s overflows %s", n.Value, underlying)
			return n.Value
		}
		return strconv.FormatUint(u, 10)
	}

	var i int64
	limit := int64(1) << (bits - 1)
	if err := n.Decode(&i); err != nil || (bits < 64 && (i < -limit || i >= limit)) {
		s.failAt(s.pos(n), decl.Name, v.Name, "value %s overflows %s", n.Value, underlying)
		return n.Value
	}
	return strconv.FormatInt(i, 10)
}

// checkDiscriminants requires values on all variants or none, without repeats
func (s *state) checkDiscriminants(decl *model.TypeDecl) {
	var with, without []*model.VariantDecl
	for _, v := range decl.Variants {
		if v.Discriminant != "" {
			with = append(with, v)
		} else {
			without = append(without, v)
		}
	}
	if len(with) > 0 && len(without) > 0 {
		v := without[0]
		s.failAt(v.Pos, decl.Name, v.Name, "variant %s has no value while others do", v.Name)
		return
	}

	seen := make(map[string]string)
	for _, v := range with {
		if prev, ok := seen[v.Discriminant]; ok {
			s.failAt(v.Pos, decl.Name, v.Name, "value %s already used by %s", v.Discriminant, prev)
			continue
		}
		seen[v.Discriminant] = v.Name
	}
}

// checkScope rejects names that would be declared twice in the generated package:
// a variant sharing its name with a type or with a variant of another type.
func (s *state) checkScope(m *model.Manifest) {
	owner := make(map[string]string)
	for _, decl := range m.Types {
		owner[decl.Name] = "type " + decl.Name
	}
	for _, decl := range m.Types {
		for _, v := range decl.Variants {
			if s.col.Stop() {
				return
			}
			if prev, ok := owner[v.Name]; ok {
				s.failAt(v.Pos, decl.Name, v.Name, "variant %s clashes with %s", v.Name, prev)
				continue
			}
			owner[v.Name] = fmt.Sprintf("variant %s of %s", v.Name, decl.Name)
		}
	}
}

// Unwrap strips an optional tag(...) wrapper from a tag entry
func Unwrap(text string) string {
	t := strings.TrimSpace(text)
	if strings.HasPrefix(t, "tag(") && strings.HasSuffix(t, ")") {
		return strings.TrimSpace(t[len("tag(") : len(t)-1])
	}
	return t
}

// lookup returns the value node of key in a mapping node
func lookup(n *yaml.Node, key string) *yaml.Node {
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}
