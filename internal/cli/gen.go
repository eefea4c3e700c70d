package cli

import (
	"fmt"
	"io"

	"github.com/ppiankov/tagc/internal/codegen"
	"github.com/ppiankov/tagc/internal/diag"
	"github.com/ppiankov/tagc/internal/model"
	"github.com/ppiankov/tagc/internal/pipeline"
	"github.com/spf13/cobra"
)

var genOutput string

// genCmd represents the gen command
var genCmd = &cobra.Command{
	Use:   "gen <manifest>",
	Short: "Generate Go accessors from a tag manifest",
	Long: `Gen compiles one manifest:
- Extract tag(name, expression) declarations from every variant
- Evaluate expressions against the variant's other tags, in any order
- Check that each tag name has one value kind across variants
- Emit one accessor method per tag name into a formatted Go file

Nothing is written when any diagnostic is reported.

Example:
  tagc gen sizes.yaml
  tagc gen sizes.yaml -o sizes_gen.go --all-errors
  cat sizes.yaml | tagc gen - --package sizes`,
	Args: cobra.ExactArgs(1),
	RunE: runGen,
}

func init() {
	rootCmd.AddCommand(genCmd)

	genCmd.Flags().StringVarP(&genOutput, "output", "o", "", "output Go file (default: <manifest>_tags.go, '-' for stdout)")
	addCompileFlags(genCmd)
}

func runGen(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	path := args[0]

	p := pipeline.NewPipeline(cfg)
	res, err := p.CompileManifest(path)
	if err != nil {
		return printDiagnostics(cmd.ErrOrStderr(), err)
	}

	out := outputPath(path, genOutput, cfg)
	if out == pipeline.StdinPath {
		if _, err := cmd.OutOrStdout().Write(res.Source); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		return nil
	}
	return p.WriteGo(res, out)
}

// outputPath picks the generated file path; "-" means stdout
func outputPath(manifest, flag string, cfg *model.Config) string {
	switch {
	case flag != "":
		return flag
	case manifest == pipeline.StdinPath:
		return pipeline.StdinPath
	}
	return codegen.Filename(manifest, cfg.Output.Suffix)
}

// printDiagnostics writes one line per diagnostic and returns a summary error.
// Errors that carry no diagnostic are returned unchanged.
func printDiagnostics(w io.Writer, err error) error {
	list := diag.Diagnostics(err)
	if len(list) == 0 {
		return err
	}
	for _, line := range diagnosticLines(err) {
		fmt.Fprintln(w, line)
	}
	return fmt.Errorf("compilation failed with %d diagnostic(s)", len(list))
}

// diagnosticLines renders err as one line per diagnostic
func diagnosticLines(err error) []string {
	list := diag.Diagnostics(err)
	if len(list) == 0 {
		return []string{err.Error()}
	}
	lines := make([]string, len(list))
	for i, d := range list {
		lines[i] = d.Error()
	}
	return lines
}
