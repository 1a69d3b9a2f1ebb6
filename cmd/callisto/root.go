package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/callisto/pkg/config"
	"mercator-hq/callisto/pkg/telemetry/logging"
)

var (
	// Global flags
	cfgFile    string
	cfgFileSet bool
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "callisto",
	Short: "Callisto - policy rule engine for structured documents",
	Long: `Callisto is a policy rule engine that validates structured documents
(YAML or JSON) against rules written in the Callisto rule language.

Rules describe conditions a document must satisfy - path expressions,
comparators, and logical composition - and evaluating them produces a
report with per-clause pass/fail/skip outcomes and diagnostics.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		cfgFileSet = cmd.Flags().Changed("config")
	},
}

// errChecksFailed signals that validation ran to completion and found
// failures: not a CLI error, but a distinct exit code for CI pipelines.
var errChecksFailed = errors.New("checks failed")

// Execute runs the root command. Exit codes: 0 when checks pass, 2 when
// checks fail, 1 for everything else (bad input, parse errors, IO).
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, errChecksFailed) {
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "callisto.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig loads the config file, treating its absence as fatal only
// when the user pointed at one explicitly.
func loadConfig() (*config.Config, error) {
	return config.Load(cfgFile, cfgFileSet)
}

// newLogger builds the process logger from configuration, raising the
// level to debug under --verbose.
func newLogger(cfg *config.Config) (*slog.Logger, error) {
	level := cfg.Logging.Level
	if verbose {
		level = "debug"
	}
	return logging.New(logging.Config{
		Level:  level,
		Format: cfg.Logging.Format,
	})
}
