package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/tagc/internal/model"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "tagc",
	Short: "tagc - compile variant tags into Go accessor methods",
	Long: `tagc reads a manifest of enumeration-like types whose variants carry
tag(name, expression) declarations, and generates one Go accessor method
per tag name.

Expressions are evaluated at generation time against the other tags of the
same variant, in any declaration order. Every variant that declares a tag
must produce the same value kind; the generated code contains only literals.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number of tagc.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "tagc v0.1.0")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.tagc/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Bind flags to viper
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	registerDefaults()

	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(home + "/.tagc")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match TAGC_*, e.g. TAGC_CODEGEN_NAMING
	viper.SetEnvPrefix("TAGC")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// registerDefaults makes every config key known to viper so env overrides apply on Unmarshal
func registerDefaults() {
	def := model.DefaultConfig()
	viper.SetDefault("input.max_bytes", def.Input.MaxBytes)
	viper.SetDefault("output.package", def.Output.Package)
	viper.SetDefault("output.suffix", def.Output.Suffix)
	viper.SetDefault("output.header", def.Output.Header)
	viper.SetDefault("codegen.naming", def.Codegen.Naming)
	viper.SetDefault("codegen.receiver", def.Codegen.Receiver)
	viper.SetDefault("errors.aggregate", def.Errors.Aggregate)
	viper.SetDefault("cache.enabled", def.Cache.Enabled)
	viper.SetDefault("concurrency.workers", def.Concurrency.Workers)
	viper.SetDefault("watch.interval", def.Watch.Interval)
	viper.SetDefault("watch.burst", def.Watch.Burst)
	viper.SetDefault("verbose", def.Verbose)
}

// loadConfig merges defaults, config file, env and the command's flags
func loadConfig(cmd *cobra.Command) (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return nil, err
	}
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// addCompileFlags registers the flags shared by every command that compiles manifests
func addCompileFlags(cmd *cobra.Command) {
	cmd.Flags().String("package", "", "package name when the manifest declares none")
	cmd.Flags().Bool("all-errors", false, "report every diagnostic instead of stopping at the first")
	cmd.Flags().Bool("no-cache", false, "disable the expression cache")
	cmd.Flags().String("naming", model.NamingExported, "accessor naming: exported or raw")
	cmd.Flags().String("receiver", "", "receiver name for generated methods")
}

// applyFlags copies explicitly set flags over the loaded configuration
func applyFlags(cmd *cobra.Command, cfg *model.Config) error {
	flags := cmd.Flags()
	var err error
	set := func(name string, apply func() error) {
		if err == nil && flags.Lookup(name) != nil && flags.Changed(name) {
			err = apply()
		}
	}

	set("package", func() (e error) { cfg.Output.Package, e = flags.GetString("package"); return })
	set("naming", func() (e error) { cfg.Codegen.Naming, e = flags.GetString("naming"); return })
	set("receiver", func() (e error) { cfg.Codegen.Receiver, e = flags.GetString("receiver"); return })
	set("all-errors", func() (e error) { cfg.Errors.Aggregate, e = flags.GetBool("all-errors"); return })
	set("concurrency", func() (e error) { cfg.Concurrency.Workers, e = flags.GetInt("concurrency"); return })
	set("interval", func() (e error) { cfg.Watch.Interval, e = flags.GetDuration("interval"); return })
	set("no-cache", func() error {
		off, e := flags.GetBool("no-cache")
		cfg.Cache.Enabled = !off
		return e
	})

	if err != nil {
		return fmt.Errorf("read flags: %w", err)
	}
	cfg.Verbose = cfg.Verbose || verbose
	return nil
}

func validateConfig(cfg *model.Config) error {
	switch cfg.Codegen.Naming {
	case model.NamingExported, model.NamingRaw:
	default:
		return fmt.Errorf("invalid naming %q: must be %s or %s", cfg.Codegen.Naming, model.NamingExported, model.NamingRaw)
	}
	if cfg.Input.MaxBytes <= 0 {
		return fmt.Errorf("input.max_bytes must be positive, got %d", cfg.Input.MaxBytes)
	}
	if cfg.Concurrency.Workers < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", cfg.Concurrency.Workers)
	}
	if cfg.Watch.Interval < 0 {
		return fmt.Errorf("watch interval must not be negative, got %v", cfg.Watch.Interval)
	}
	return nil
}
