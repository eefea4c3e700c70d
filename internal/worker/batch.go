package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ppiankov/tagc/internal/pipeline"
)

// Compiler compiles one manifest
type Compiler interface {
	CompileManifest(path string) (*pipeline.Result, error)
}

// CompilerFactory creates a fresh compiler for every job so runs share no state
type CompilerFactory func() Compiler

// CompileJob represents a manifest compilation job
type CompileJob struct {
	Path       string
	NewCompile CompilerFactory
}

// Execute executes the compile job
func (j *CompileJob) Execute(ctx context.Context) Result {
	if err := ctx.Err(); err != nil {
		return &CompileResult{Path: j.Path, Error: err}
	}

	result, err := j.NewCompile().CompileManifest(j.Path)
	if err != nil {
		return &CompileResult{
			Path:  j.Path,
			Error: err,
		}
	}
	return &CompileResult{
		Path:   j.Path,
		Result: result,
	}
}

// CompileResult represents the result of a compile job
type CompileResult struct {
	Path   string
	Result *pipeline.Result
	Error  error
}

// GetError returns the error from the compile result
func (r *CompileResult) GetError() error {
	return r.Error
}

// BatchProcessor compiles multiple manifests concurrently
type BatchProcessor struct {
	factory     CompilerFactory
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(factory CompilerFactory, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		factory:     factory,
		concurrency: concurrency,
	}
}

// ProcessPaths compiles every manifest and returns the results sorted by path.
// Paths whose job never ran because ctx was cancelled are absent.
func (b *BatchProcessor) ProcessPaths(ctx context.Context, paths []string) []*CompileResult {
	if len(paths) == 0 {
		return []*CompileResult{}
	}

	// Create worker pool
	pool := NewPool(ctx, b.concurrency)
	pool.Start()
	defer pool.Shutdown()

	// Submit jobs
	for _, path := range paths {
		pool.Submit(&CompileJob{
			Path:       path,
			NewCompile: b.factory,
		})
	}

	// Wait for all jobs to complete
	results := pool.Wait()

	compiled := make([]*CompileResult, len(results))
	for i, result := range results {
		compiled[i] = result.(*CompileResult)
	}
	sort.Slice(compiled, func(i, j int) bool {
		return compiled[i].Path < compiled[j].Path
	})

	return compiled
}

// ReadPathsFromFile reads manifest paths from a file (one per line)
func ReadPathsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return ReadPaths(bufio.NewScanner(file))
}

// ReadPaths collects non-empty, non-comment lines from s, dropping repeats
func ReadPaths(s *bufio.Scanner) ([]string, error) {
	var paths []string

	for s.Scan() {
		line := strings.TrimSpace(s.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		paths = append(paths, line)
	}

	if err := s.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return UniquePaths(paths), nil
}

// UniquePaths drops repeated paths, keeping the first occurrence.
// Paths naming the same file through different spellings count as one.
func UniquePaths(paths []string) []string {
	out := make([]string, 0, len(paths))
	seen := make(map[string]bool)
	for _, path := range paths {
		key := filepath.Clean(path)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, path)
	}
	return out
}
