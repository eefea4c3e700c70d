package pipeline

import (
	"fmt"
	"io"
	"os"

	"github.com/ppiankov/tagc/internal/model"
)

// Report builds the fact report of a result; output is the generated file path, if any
func (p *Pipeline) Report(res *Result, output string) *model.Report {
	report := &model.Report{
		Source:  res.Manifest.Path,
		Package: res.Package,
		Output:  output,
		Stats:   res.Stats,
		Types:   make([]model.TypeReport, 0, len(res.Units)),
	}

	for _, unit := range res.Units {
		tr := model.TypeReport{
			Name:      unit.Decl.Name,
			Variants:  make([]string, 0, len(unit.Decl.Variants)),
			Accessors: make([]model.AccessorInfo, 0, len(unit.Accessors)),
		}
		for _, v := range unit.Decl.Variants {
			tr.Variants = append(tr.Variants, v.Name)
		}
		for _, acc := range unit.Accessors {
			info := model.AccessorInfo{
				Fact:     acc.Group.Name,
				Method:   acc.Method,
				Kind:     acc.Group.Kind.String(),
				Complete: acc.Complete,
			}
			for _, f := range acc.Group.Members {
				info.Values = append(info.Values, model.VariantValue{
					Variant: f.Variant,
					Expr:    f.Expr,
					Value:   f.Value.Interface(),
				})
			}
			tr.Accessors = append(tr.Accessors, info)
		}
		report.Types = append(report.Types, tr)
	}

	return report
}

// WriteGo writes the generated source of res to path
func (p *Pipeline) WriteGo(res *Result, path string) error {
	if err := p.renderer.RenderGo(res.Source, path); err != nil {
		return fmt.Errorf("render Go: %w", err)
	}
	p.logf("✓ Wrote Go: %s\n", path)
	return nil
}

// RenderReport renders the report to the specified outputs and prints a summary to w
func (p *Pipeline) RenderReport(report *model.Report, jsonPath, mdPath string, w io.Writer) error {
	// Render JSON
	if jsonPath != "" {
		if err := p.renderer.RenderJSON(report, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		p.logf("✓ Wrote JSON: %s\n", jsonPath)
	}

	// Render Markdown
	if mdPath != "" {
		if err := p.renderer.RenderMarkdown(report, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		p.logf("✓ Wrote Markdown: %s\n", mdPath)
	}

	if w == nil {
		w = os.Stdout
	}
	p.renderer.RenderSummary(w, report)
	return nil
}
