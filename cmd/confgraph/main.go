// Package main provides the confgraph CLI entry point.
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/avila/confgraph/internal/config"
)

// Version is set at build time via ldflags
var Version = "dev"

// humanOutput controls whether to use human-readable output
var humanOutput bool

// verbose raises log output from warnings to full progress detail
var verbose bool

// configPath locates the run configuration file
var configPath string

func main() {
	// A .env next to the binary may carry CONFGRAPH_DB and friends.
	// Missing file is the normal case.
	godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "confgraph",
	Short: "Conference publication catalog builder",
	Long: `confgraph ingests BibTeX exports of conference proceedings into a
SQLite catalog of editorials, conferences, editions, papers and authors.

Author names are reconciled against the DBLP publication index so the
same person lands in one row regardless of how each export spells the
name. Imports are idempotent: re-running over the same files changes
nothing. All commands output JSON by default.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log progress detail to stderr")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultFile, "Path to the run configuration file")
	rootCmd.Version = Version
}

// loadConfig reads the run configuration, exiting on a malformed file.
func loadConfig() *config.Config {
	cfg, err := config.Load(configPath)
	if err != nil {
		exitWithError(ExitConfigError, "%v", err)
	}
	return cfg
}

// newLogger builds the stderr logger. Quiet by default so JSON output
// on stdout stays machine-readable.
func newLogger() *zap.Logger {
	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stderr"}
	if humanOutput {
		cfg = zap.NewDevelopmentConfig()
		cfg.Level = zap.NewAtomicLevelAt(level)
	}
	logger, err := cfg.Build()
	if err != nil {
		exitWithError(ExitError, "building logger: %v", err)
	}
	return logger
}
