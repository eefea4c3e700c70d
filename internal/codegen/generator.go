package codegen

import (
	"bytes"
	"fmt"
	"go/format"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ppiankov/tagc/internal/diag"
	"github.com/ppiankov/tagc/internal/model"
)

// Options controls the generated file
type Options struct {
	Package  string // Package clause of the generated file
	Source   string // Manifest path, named in the header
	Naming   string // model.NamingExported or model.NamingRaw
	Header   bool   // Emit the "Code generated" header
	Receiver string // Receiver name used when a type does not set its own
}

// Accessor is one method to be emitted for a fact group
type Accessor struct {
	Method   string
	Group    *model.FactGroup
	Complete bool // Declared on every variant
}

// Unit is one type with its planned accessors
type Unit struct {
	Decl      *model.TypeDecl
	Receiver  string
	Accessors []Accessor
}

// Generator renders accessor methods as Go source
type Generator struct {
	opts Options
}

// NewGenerator creates a new generator
func NewGenerator(opts Options) *Generator {
	if opts.Naming == "" {
		opts.Naming = model.NamingExported
	}
	return &Generator{opts: opts}
}

// Plan names the accessor of every group and checks the names are usable.
// Groups must already be sorted by name.
func (g *Generator) Plan(decl *model.TypeDecl, groups []*model.FactGroup, col *diag.Collector) Unit {
	unit := Unit{Decl: decl, Receiver: receiverName(decl, g.opts.Receiver)}

	if shadowed := shadows(unit.Receiver, decl); shadowed != "" {
		col.Add(&diag.Diagnostic{
			Pos:      decl.Pos,
			Category: diag.InvalidManifest,
			Type:     decl.Name,
			Msg:      fmt.Sprintf("receiver '%s' shadows %s", unit.Receiver, shadowed),
		})
		return unit
	}

	// Fact that claimed each method name
	claimed := make(map[string]string)
	for _, group := range groups {
		if len(group.Members) == 0 {
			continue
		}
		method := MethodName(group.Name, g.opts.Naming)
		if prev, ok := claimed[method]; ok {
			col.Add(&diag.Diagnostic{
				Pos:      group.Members[0].Pos,
				Category: diag.AccessorCollision,
				Type:     decl.Name,
				Variant:  group.Members[0].Variant,
				Fact:     group.Name,
				Msg:      fmt.Sprintf("accessor %s for '%s' collides with '%s'", method, group.Name, prev),
			})
			if col.Stop() {
				return unit
			}
			continue
		}
		claimed[method] = group.Name

		unit.Accessors = append(unit.Accessors, Accessor{
			Method:   method,
			Group:    group,
			Complete: group.Covers(len(decl.Variants)),
		})
	}

	return unit
}

// CheckImports reports package-level names that collide with the fmt import.
// fmt is only imported when some accessor covers every variant and can panic.
func (g *Generator) CheckImports(units []Unit, col *diag.Collector) {
	if !needsFmt(units) {
		return
	}
	for _, unit := range units {
		if unit.Decl.Name == "fmt" {
			col.Add(&diag.Diagnostic{
				Pos:      unit.Decl.Pos,
				Category: diag.InvalidManifest,
				Type:     unit.Decl.Name,
				Msg:      "type 'fmt' clashes with the fmt import of the generated file",
			})
		}
		for _, v := range unit.Decl.Variants {
			if v.Name != "fmt" {
				continue
			}
			col.Add(&diag.Diagnostic{
				Pos:      v.Pos,
				Category: diag.InvalidManifest,
				Type:     unit.Decl.Name,
				Variant:  v.Name,
				Msg:      "variant 'fmt' clashes with the fmt import of the generated file",
			})
		}
	}
}

// Generate renders one Go file holding the accessors of every unit
func (g *Generator) Generate(units []Unit) ([]byte, error) {
	var buf bytes.Buffer

	if g.opts.Header {
		source := "manifest"
		if g.opts.Source != "" {
			source = filepath.Base(g.opts.Source)
		}
		fmt.Fprintf(&buf, "// Code generated by tagc from %s. DO NOT EDIT.\n\n", source)
	}
	fmt.Fprintf(&buf, "package %s\n\n", g.opts.Package)

	if needsFmt(units) {
		fmt.Fprintf(&buf, "import \"fmt\"\n\n")
	}

	for _, unit := range units {
		if unit.Decl.EmitType {
			g.renderType(&buf, unit.Decl)
		}
		for _, acc := range unit.Accessors {
			g.renderAccessor(&buf, unit, acc)
		}
	}

	return formatSource(buf.Bytes())
}

func shadows(recv string, decl *model.TypeDecl) string {
	if recv == "fmt" {
		return "the fmt package"
	}
	for _, v := range decl.Variants {
		if v.Name == recv {
			return "variant " + v.Name
		}
	}
	return ""
}

func needsFmt(units []Unit) bool {
	for _, unit := range units {
		for _, acc := range unit.Accessors {
			if acc.Complete {
				return true
			}
		}
	}
	return false
}

func (g *Generator) renderType(buf *bytes.Buffer, decl *model.TypeDecl) {
	underlying := decl.Underlying
	if underlying == "" {
		underlying = "int"
	}
	fmt.Fprintf(buf, "type %s %s\n\n", decl.Name, underlying)
	if len(decl.Variants) == 0 {
		return
	}

	explicit := decl.Variants[0].Discriminant != ""
	fmt.Fprintf(buf, "const (\n")
	for i, v := range decl.Variants {
		switch {
		case explicit:
			fmt.Fprintf(buf, "\t%s %s = %s\n", v.Name, decl.Name, v.Discriminant)
		case underlying == "string":
			fmt.Fprintf(buf, "\t%s %s = %s\n", v.Name, decl.Name, strconv.Quote(v.Name))
		case i == 0:
			fmt.Fprintf(buf, "\t%s %s = iota\n", v.Name, decl.Name)
		default:
			fmt.Fprintf(buf, "\t%s\n", v.Name)
		}
	}
	fmt.Fprintf(buf, ")\n\n")
}

func (g *Generator) renderAccessor(buf *bytes.Buffer, unit Unit, acc Accessor) {
	recv := unit.Receiver
	kind := acc.Group.Kind

	if acc.Complete {
		fmt.Fprintf(buf, "// %s returns the %s tag of %s.\n", acc.Method, acc.Group.Name, recv)
	} else {
		fmt.Fprintf(buf, "// %s returns the %s tag of %s and false for variants that do not declare it.\n",
			acc.Method, acc.Group.Name, recv)
	}
	fmt.Fprintf(buf, "func (%s %s) %s() (%s, bool) {\n", recv, unit.Decl.Name, acc.Method, kind.GoType())
	fmt.Fprintf(buf, "\tswitch %s {\n", recv)
	for _, f := range acc.Group.Members {
		fmt.Fprintf(buf, "\tcase %s:\n", f.Variant)
		fmt.Fprintf(buf, "\t\treturn %s, true\n", Literal(*f.Value))
	}
	if !acc.Complete {
		fmt.Fprintf(buf, "\tdefault:\n")
		fmt.Fprintf(buf, "\t\treturn %s, false\n", kind.GoZero())
		fmt.Fprintf(buf, "\t}\n")
		fmt.Fprintf(buf, "}\n\n")
		return
	}
	fmt.Fprintf(buf, "\t}\n")
	msg := fmt.Sprintf("%s: %%v is not a declared %s variant", g.opts.Package, unit.Decl.Name)
	fmt.Fprintf(buf, "\tpanic(fmt.Sprintf(%s, %s))\n", strconv.Quote(msg), recv)
	fmt.Fprintf(buf, "}\n\n")
}

// Literal encodes a supported value as a Go literal
func Literal(v model.Value) string {
	switch v.Kind {
	case model.KindString:
		return strconv.Quote(v.Str)
	case model.KindFloat:
		return model.FormatFloat(v.Float)
	case model.KindInteger:
		return strconv.FormatInt(v.Int, 10)
	case model.KindBoolean:
		return strconv.FormatBool(v.Bool)
	}
	panic(fmt.Sprintf("codegen: no Go literal for %s value", v.Kind))
}

func formatSource(src []byte) ([]byte, error) {
	formatted, err := format.Source(src)
	if err != nil {
		return src, fmt.Errorf("failed to format generated source: %w", err)
	}
	return formatted, nil
}

// Filename returns the default output path for a manifest
func Filename(manifest, suffix string) string {
	ext := filepath.Ext(manifest)
	return strings.TrimSuffix(manifest, ext) + suffix
}
