package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/ppiankov/tagc/internal/codegen"
	"github.com/ppiankov/tagc/internal/model"
	"github.com/ppiankov/tagc/internal/pipeline"
	"github.com/ppiankov/tagc/internal/worker"
	"github.com/spf13/cobra"
)

var (
	batchFrom    string
	outputDir    string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch [manifest...]",
	Short: "Compile multiple manifests in parallel",
	Long: `Batch compiles several manifests concurrently:
- Read manifest paths from arguments and/or a file (one per line)
- Compile each manifest in its own pipeline with configurable worker count
- Write one generated Go file per manifest that compiled cleanly

Example:
  tagc batch a.yaml b.yaml
  tagc batch --from manifests.txt --concurrency 8 --output-dir ./gen`,
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVar(&batchFrom, "from", "", "file listing manifest paths, one per line")
	batchCmd.Flags().Int("concurrency", model.DefaultConfig().Concurrency.Workers, "number of concurrent workers")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "", "directory for generated files (default: next to each manifest)")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 5*time.Minute, "total timeout for batch processing")
	addCompileFlags(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	paths := append([]string(nil), args...)
	if batchFrom != "" {
		listed, err := worker.ReadPathsFromFile(batchFrom)
		if err != nil {
			return fmt.Errorf("read manifest list: %w", err)
		}
		paths = append(paths, listed...)
	}
	// A manifest named in both places would collide with its own output
	paths = worker.UniquePaths(paths)
	if len(paths) == 0 {
		return fmt.Errorf("no manifests given: pass paths or --from <file>")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	w := cmd.ErrOrStderr()
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(w, "  tagc Batch Compilation\n")
	fmt.Fprintf(w, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "  Manifests:    %d\n", len(paths))
	fmt.Fprintf(w, "  Workers:      %d\n", cfg.Concurrency.Workers)
	if outputDir != "" {
		fmt.Fprintf(w, "  Output dir:   %s\n", outputDir)
	}
	fmt.Fprintf(w, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(w, "\n")

	// Each job gets its own pipeline and parse cache
	processor := worker.NewBatchProcessor(func() worker.Compiler {
		return pipeline.NewPipeline(cfg)
	}, cfg.Concurrency.Workers)

	results := processor.ProcessPaths(ctx, paths)
	failed := writeBatch(w, results, cfg, outputDir)

	// Jobs skipped by cancellation never report
	if missing := len(paths) - len(results); missing > 0 {
		failed += missing
		fmt.Fprintf(w, "✗ %d manifest(s) not compiled before timeout\n", missing)
	}

	// Summary
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(w, "  Batch Complete\n")
	fmt.Fprintf(w, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(w, "\n")
	fmt.Fprintf(w, "  Total:     %d manifests\n", len(paths))
	fmt.Fprintf(w, "  Success:   %d\n", len(paths)-failed)
	fmt.Fprintf(w, "  Failures:  %d\n", failed)
	fmt.Fprintf(w, "\n")

	if failed > 0 {
		return fmt.Errorf("%d of %d manifest(s) failed", failed, len(paths))
	}
	return nil
}

// writeBatch writes the generated file of every successful result and returns the failure count
func writeBatch(w io.Writer, results []*worker.CompileResult, cfg *model.Config, dir string) int {
	renderer := pipeline.NewRenderer()
	written := make(map[string]string)
	failed := 0

	for _, result := range results {
		if result.Error != nil {
			failed++
			fmt.Fprintf(w, "✗ %s\n", result.Path)
			for _, d := range diagnosticLines(result.Error) {
				fmt.Fprintf(w, "    %s\n", d)
			}
			continue
		}

		out := batchOutputPath(result.Path, dir, cfg.Output.Suffix)
		if prev, ok := written[out]; ok {
			failed++
			fmt.Fprintf(w, "✗ %s: output %s already written for %s\n", result.Path, out, prev)
			continue
		}
		if err := renderer.RenderGo(result.Result.Source, out); err != nil {
			failed++
			fmt.Fprintf(w, "✗ %s: %v\n", result.Path, err)
			continue
		}
		written[out] = result.Path

		fmt.Fprintf(w, "✓ %s → %s (%d type(s), %d accessor(s))\n",
			result.Path, out, result.Result.Stats.Types, result.Result.Stats.Groups)
	}
	return failed
}

// batchOutputPath places the generated file next to the manifest, or in dir when set
func batchOutputPath(manifest, dir, suffix string) string {
	out := codegen.Filename(manifest, suffix)
	if dir == "" {
		return out
	}
	return filepath.Join(dir, filepath.Base(out))
}
