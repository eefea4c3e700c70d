package cli

import (
	"fmt"

	"github.com/ppiankov/tagc/internal/pipeline"
	"github.com/spf13/cobra"
)

var (
	outJSON string
	outMD   string
)

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check <manifest>",
	Short: "Validate a manifest and report resolved tag values",
	Long: `Check runs the full compilation without writing Go code and prints
a summary of every type, its variants and the accessors that would be generated.

Example:
  tagc check sizes.yaml
  tagc check sizes.yaml --json report.json --md report.md --all-errors`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	// Output flags
	checkCmd.Flags().StringVar(&outJSON, "json", "", "output JSON report path (optional)")
	checkCmd.Flags().StringVar(&outMD, "md", "", "output Markdown report path (optional)")
	addCompileFlags(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	p := pipeline.NewPipeline(cfg)
	res, err := p.CompileManifest(args[0])
	if err != nil {
		return printDiagnostics(cmd.ErrOrStderr(), err)
	}

	report := p.Report(res, "")
	if err := p.RenderReport(report, outJSON, outMD, cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("render failed: %w", err)
	}
	return nil
}
