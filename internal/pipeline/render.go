package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/tagc/internal/model"
)

// Renderer writes generated code and fact reports
type Renderer struct{}

// NewRenderer creates a new renderer
func NewRenderer() *Renderer {
	return &Renderer{}
}

// RenderGo writes the generated Go file
func (r *Renderer) RenderGo(src []byte, path string) error {
	return writeFile(path, src)
}

// RenderJSON writes the report as indented JSON
func (r *Renderer) RenderJSON(report *model.Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	return writeFile(path, append(data, '\n'))
}

// RenderMarkdown writes the report as a Markdown document
func (r *Renderer) RenderMarkdown(report *model.Report, path string) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# Tag report: %s\n\n", report.Source)
	fmt.Fprintf(&b, "Package `%s`", report.Package)
	if report.Output != "" {
		fmt.Fprintf(&b, ", generated file `%s`", report.Output)
	}
	b.WriteString("\n\n")

	for _, t := range report.Types {
		fmt.Fprintf(&b, "## %s\n\n", t.Name)
		fmt.Fprintf(&b, "Variants: %s\n\n", strings.Join(t.Variants, ", "))
		if len(t.Accessors) == 0 {
			b.WriteString("No tags declared.\n\n")
			continue
		}

		b.WriteString("| Accessor | Kind | Coverage |\n")
		b.WriteString("|---|---|---|\n")
		for _, acc := range t.Accessors {
			coverage := "all variants"
			if !acc.Complete {
				coverage = fmt.Sprintf("%d of %d", len(acc.Values), len(t.Variants))
			}
			fmt.Fprintf(&b, "| `%s()` | %s | %s |\n", acc.Method, acc.Kind, coverage)
		}
		b.WriteString("\n")

		for _, acc := range t.Accessors {
			fmt.Fprintf(&b, "### %s\n\n", acc.Fact)
			b.WriteString("| Variant | Expression | Value |\n")
			b.WriteString("|---|---|---|\n")
			for _, v := range acc.Values {
				fmt.Fprintf(&b, "| %s | `%s` | `%v` |\n", v.Variant, escapePipes(v.Expr), escapePipes(fmt.Sprintf("%v", v.Value)))
			}
			b.WriteString("\n")
		}
	}

	fmt.Fprintf(&b, "---\n%d type(s), %d variant(s), %d fact(s), %d accessor(s)\n",
		report.Stats.Types, report.Stats.Variants, report.Stats.Facts, report.Stats.Groups)

	return writeFile(path, []byte(b.String()))
}

// RenderSummary prints a short human-readable summary
func (r *Renderer) RenderSummary(w io.Writer, report *model.Report) {
	fmt.Fprintf(w, "%s (package %s)\n", report.Source, report.Package)
	for _, t := range report.Types {
		fmt.Fprintf(w, "  %s: %d variant(s), %d accessor(s)\n", t.Name, len(t.Variants), len(t.Accessors))
		for _, acc := range t.Accessors {
			mark := "✓"
			if !acc.Complete {
				mark = "~"
			}
			fmt.Fprintf(w, "    %s %s() %s [%d/%d]\n", mark, acc.Method, acc.Kind, len(acc.Values), len(t.Variants))
		}
	}
	if report.Output != "" {
		fmt.Fprintf(w, "  → %s\n", report.Output)
	}
}

func escapePipes(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
