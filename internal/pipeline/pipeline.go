package pipeline

import (
	"fmt"
	"os"

	"github.com/ppiankov/tagc/internal/cache"
	"github.com/ppiankov/tagc/internal/check"
	"github.com/ppiankov/tagc/internal/codegen"
	"github.com/ppiankov/tagc/internal/diag"
	"github.com/ppiankov/tagc/internal/extract"
	"github.com/ppiankov/tagc/internal/manifest"
	"github.com/ppiankov/tagc/internal/model"
	"github.com/ppiankov/tagc/internal/resolve"
)

// Pipeline orchestrates one compilation run. It is not safe for concurrent use;
// concurrent runs each create their own Pipeline.
type Pipeline struct {
	loader    *Loader
	decoder   *manifest.Decoder
	extractor *extract.Extractor
	programs  *cache.Programs
	resolver  *resolve.Resolver
	checker   *check.Checker
	renderer  *Renderer
	config    *model.Config
}

// NewPipeline creates a new pipeline with the given configuration
func NewPipeline(cfg *model.Config) *Pipeline {
	// Parse cache lives exactly as long as the pipeline
	var store cache.Cache
	if cfg.Cache.Enabled {
		store = cache.NewMemoryCache()
	}
	programs := cache.NewPrograms(store)

	return &Pipeline{
		loader:    NewLoader(cfg.Input.MaxBytes),
		decoder:   manifest.NewDecoder(cfg.Errors.Aggregate),
		extractor: extract.NewExtractor(),
		programs:  programs,
		resolver:  resolve.NewResolver(programs),
		checker:   check.NewChecker(),
		renderer:  NewRenderer(),
		config:    cfg,
	}
}

// Result contains the outcome of a successful compilation
type Result struct {
	Manifest *model.Manifest
	Package  string
	Units    []codegen.Unit
	Source   []byte // Generated Go file
	Stats    model.Stats
}

// CompileManifest loads the manifest at path and compiles every type in it
func (p *Pipeline) CompileManifest(path string) (*Result, error) {
	data, err := p.loader.Load(path)
	if err != nil {
		return nil, err
	}
	return p.CompileSource(path, data)
}

// CompileSource compiles manifest bytes; path is used for positions and the header
func (p *Pipeline) CompileSource(path string, data []byte) (*Result, error) {
	p.logf("Loaded %s (%d bytes)\n", path, len(data))

	m, err := p.decoder.Decode(path, data)
	if err != nil {
		return nil, err
	}
	return p.Compile(m)
}

// Compile runs extract -> resolve -> check -> generate over every type of m.
// Nothing is generated when any diagnostic was reported.
func (p *Pipeline) Compile(m *model.Manifest) (*Result, error) {
	pkg := m.Package
	if pkg == "" {
		pkg = p.config.Output.Package
	}
	if pkg == "" {
		return nil, &diag.Diagnostic{
			Pos:      model.Pos{File: m.Path},
			Category: diag.InvalidManifest,
			Msg:      "no package name: set 'package' in the manifest or pass --package",
		}
	}

	gen := codegen.NewGenerator(codegen.Options{
		Package:  pkg,
		Source:   m.Path,
		Naming:   p.config.Codegen.Naming,
		Header:   p.config.Output.Header,
		Receiver: p.config.Codegen.Receiver,
	})

	col := diag.NewCollector(p.config.Errors.Aggregate)
	res := &Result{Manifest: m, Package: pkg}

	for _, decl := range m.Types {
		unit := p.compileType(decl, gen, col, &res.Stats)
		if col.Stop() {
			break
		}
		res.Units = append(res.Units, unit)
	}
	if !col.Stop() {
		gen.CheckImports(res.Units, col)
	}
	res.Stats.CacheHits = p.programs.Hits()

	if err := col.Err(); err != nil {
		p.logf("✗ %d diagnostic(s)\n", col.Len())
		return nil, err
	}

	src, err := gen.Generate(res.Units)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	res.Source = src

	p.logf("✓ Generated %d accessor(s) for %d type(s)\n", res.Stats.Groups, res.Stats.Types)
	return res, nil
}

// compileType runs every stage for one type; in fail-fast mode it returns
// as soon as a diagnostic is recorded.
func (p *Pipeline) compileType(decl *model.TypeDecl, gen *codegen.Generator, col *diag.Collector, stats *model.Stats) codegen.Unit {
	stats.Types++
	stats.Variants += len(decl.Variants)

	// 1. Extract facts
	facts := 0
	for _, v := range decl.Variants {
		v.Facts = p.extractor.Extract(decl.Name, v, col)
		facts += len(v.Facts)
		if col.Stop() {
			return codegen.Unit{Decl: decl}
		}
	}
	stats.Facts += facts
	p.logf("✓ %s: extracted %d fact(s) from %d variant(s)\n", decl.Name, facts, len(decl.Variants))

	// 2. Resolve values per variant
	for _, v := range decl.Variants {
		stats.Passes += p.resolver.Resolve(decl.Name, v, col)
		if col.Stop() {
			return codegen.Unit{Decl: decl}
		}
	}

	// 3. Check kinds
	groups := p.checker.Check(decl, col)
	if col.Stop() {
		return codegen.Unit{Decl: decl}
	}
	stats.Groups += len(groups)

	// 4. Name accessors
	return gen.Plan(decl, groups, col)
}

// logf writes progress to stderr when verbose output is enabled
func (p *Pipeline) logf(format string, args ...interface{}) {
	if p.config.Verbose {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}
