package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/ppiankov/tagc/internal/codegen"
	"github.com/ppiankov/tagc/internal/model"
	"github.com/ppiankov/tagc/internal/pipeline"
	"github.com/ppiankov/tagc/internal/worker"
	"github.com/spf13/cobra"
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch <manifest>...",
	Short: "Regenerate accessors whenever a manifest changes",
	Long: `Watch compiles every manifest once, then recompiles a manifest each time
it is written or recreated. Reruns of one file are spaced by at least watch.interval.
Diagnostics are printed and the previous generated file is left in place.

Example:
  tagc watch sizes.yaml countries.yaml
  tagc watch sizes.yaml --interval 2s`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().Duration("interval", model.DefaultConfig().Watch.Interval, "minimum time between reruns of one manifest")
	addCompileFlags(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return watchManifests(ctx, cfg, args, cmd.ErrOrStderr())
}

// watchManifests blocks until ctx is done, regenerating each manifest on change
func watchManifests(ctx context.Context, cfg *model.Config, paths []string, w io.Writer) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Editors often replace files, so watch directories and filter by name
	targets := make(map[string]string)
	dirs := make(map[string]bool)
	for _, path := range paths {
		abs, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", path, err)
		}
		targets[abs] = path

		dir := filepath.Dir(abs)
		if dirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		dirs[dir] = true
	}

	for _, path := range paths {
		regenerate(cfg, path, w)
	}
	fmt.Fprintf(w, "Watching %d manifest(s), Ctrl+C to stop\n", len(paths))

	limiter := worker.NewLimiter(cfg.Watch.Interval, cfg.Watch.Burst)
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			path, ok := targets[filepath.Clean(event.Name)]
			if !ok {
				continue
			}
			if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				// A recreated file starts with a fresh budget
				limiter.Forget(path)
				fmt.Fprintf(w, "✗ %s removed, waiting for it to reappear\n", path)
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := limiter.Wait(ctx, path); err != nil {
				return nil
			}
			regenerate(cfg, path, w)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(w, "✗ watch: %v\n", err)
		}
	}
}

// regenerate compiles path in a fresh pipeline and writes the result next to it
func regenerate(cfg *model.Config, path string, w io.Writer) {
	p := pipeline.NewPipeline(cfg)
	res, err := p.CompileManifest(path)
	if err != nil {
		fmt.Fprintf(w, "✗ %s\n", path)
		for _, line := range diagnosticLines(err) {
			fmt.Fprintf(w, "    %s\n", line)
		}
		return
	}

	out := codegen.Filename(path, cfg.Output.Suffix)
	if err := p.WriteGo(res, out); err != nil {
		fmt.Fprintf(w, "✗ %s: %v\n", path, err)
		return
	}
	fmt.Fprintf(w, "✓ %s → %s\n", path, out)
}
