package model

import "time"

// Config holds all tagc settings
type Config struct {
	Input       InputConfig       `yaml:"input" mapstructure:"input"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
	Codegen     CodegenConfig     `yaml:"codegen" mapstructure:"codegen"`
	Errors      ErrorsConfig      `yaml:"errors" mapstructure:"errors"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Watch       WatchConfig       `yaml:"watch" mapstructure:"watch"`
	Verbose     bool              `yaml:"verbose" mapstructure:"verbose"`
}

// InputConfig limits what the manifest loader accepts
type InputConfig struct {
	MaxBytes int64 `yaml:"max_bytes" mapstructure:"max_bytes"` // Manifests larger than this are rejected
}

// OutputConfig controls the generated file
type OutputConfig struct {
	Package string `yaml:"package" mapstructure:"package"` // Fallback when the manifest has none
	Suffix  string `yaml:"suffix" mapstructure:"suffix"`   // Appended to the manifest base name
	Header  bool   `yaml:"header" mapstructure:"header"`   // Emit the "Code generated" header
}

// Naming modes for accessor methods
const (
	NamingExported = "exported" // full_height -> FullHeight, id -> ID
	NamingRaw      = "raw"      // fact name used verbatim
)

// CodegenConfig controls accessor synthesis
type CodegenConfig struct {
	Naming   string `yaml:"naming" mapstructure:"naming"`
	Receiver string `yaml:"receiver" mapstructure:"receiver"`
}

// ErrorsConfig selects the failure policy
type ErrorsConfig struct {
	Aggregate bool `yaml:"aggregate" mapstructure:"aggregate"` // Report every diagnostic instead of the first
}

// CacheConfig controls the per-run expression cache
type CacheConfig struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
}

// ConcurrencyConfig controls batch parallelism
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// WatchConfig throttles regeneration in watch mode
type WatchConfig struct {
	Interval time.Duration `yaml:"interval" mapstructure:"interval"` // Minimum spacing between reruns of one file
	Burst    int           `yaml:"burst" mapstructure:"burst"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Input: InputConfig{
			MaxBytes: 4 << 20,
		},
		Output: OutputConfig{
			Suffix: "_tags.go",
			Header: true,
		},
		Codegen: CodegenConfig{
			Naming: NamingExported,
		},
		Cache: CacheConfig{
			Enabled: true,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		Watch: WatchConfig{
			Interval: 500 * time.Millisecond,
			Burst:    1,
		},
	}
}
