package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/callisto/pkg/config"
	"mercator-hq/callisto/pkg/engine"
	"mercator-hq/callisto/pkg/history"
	"mercator-hq/callisto/pkg/rules/report"
)

var checkFlags struct {
	data      []string
	rules     []string
	strict    bool
	format    string
	noHistory bool
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate a document against rules",
	Long: `Validate a structured document (YAML or JSON) against rule files.

Every rule in the rule files is evaluated against each document and the
outcomes are aggregated into one report per document. The command exits
0 when all rules pass, 2 when any rule fails, and 1 on errors
(unreadable input, parse errors, circular rule references).

Examples:
  # Validate a document against one rule file
  callisto check --data template.yaml --rules checks.rules

  # Validate several documents in one run
  callisto check --data web.yaml --data worker.yaml --rules checks.rules

  # Combine rules from several files
  callisto check --data template.yaml --rules base.rules --rules prod.rules

  # Fail the run when rules are skipped
  callisto check --data template.yaml --rules checks.rules --strict

  # Full report as JSON for CI/CD
  callisto check --data template.yaml --rules checks.rules --format json`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().StringArrayVarP(&checkFlags.data, "data", "d", nil, "document file to validate (repeatable)")
	checkCmd.Flags().StringArrayVarP(&checkFlags.rules, "rules", "r", nil, "rule file (repeatable)")
	checkCmd.Flags().BoolVar(&checkFlags.strict, "strict", false, "treat skipped rules as failures")
	checkCmd.Flags().StringVar(&checkFlags.format, "format", "text", "output format: text, json")
	checkCmd.Flags().BoolVar(&checkFlags.noHistory, "no-history", false, "do not record this run in history")
	checkCmd.MarkFlagRequired("data")
	checkCmd.MarkFlagRequired("rules")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	anyFailed := false
	for _, dataFile := range checkFlags.data {
		rep, err := evaluateFiles(cfg, logger, dataFile, checkFlags.rules,
			checkFlags.strict || cfg.Check.Strict, nil)
		if err != nil {
			return err
		}

		if cfg.History.Enabled && !checkFlags.noHistory {
			if err := recordRun(cfg, rep); err != nil {
				// History is a convenience; a broken store must not mask the
				// validation outcome.
				logger.Warn("failed to record run in history", "error", err)
			}
		}

		if err := renderReport(os.Stdout, rep, checkFlags.format); err != nil {
			return err
		}
		if rep.Status == report.StatusFail {
			anyFailed = true
		}
	}

	if anyFailed {
		return errChecksFailed
	}
	return nil
}

// evaluateFiles reads the document and rule files and runs the engine.
// Extra options (metrics in watch mode) are appended after the defaults.
func evaluateFiles(cfg *config.Config, logger *slog.Logger, dataFile string, ruleFiles []string, strict bool, opts []engine.Option) (*report.ValidationReport, error) {
	data, err := os.ReadFile(dataFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read document %s: %w", dataFile, err)
	}

	rulesInputs := make([]engine.Input, 0, len(ruleFiles))
	for _, file := range ruleFiles {
		content, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read rules %s: %w", file, err)
		}
		rulesInputs = append(rulesInputs, engine.Input{Content: string(content), Name: file})
	}

	all := append([]engine.Option{
		engine.WithStrict(strict),
		engine.WithVerbose(verbose || cfg.Check.Verbose),
		engine.WithLogger(logger),
	}, opts...)

	return engine.EvaluateAll(engine.Input{Content: string(data), Name: dataFile}, rulesInputs, all...)
}

// recordRun appends the run to the configured history store.
func recordRun(cfg *config.Config, rep *report.ValidationReport) error {
	store, err := history.NewSQLiteStore(history.SQLiteConfig{Path: cfg.History.Path})
	if err != nil {
		return err
	}
	defer store.Close()
	return saveRun(context.Background(), store, rep)
}

func saveRun(ctx context.Context, store history.Store, rep *report.ValidationReport) error {
	raw, err := rep.ToJSON()
	if err != nil {
		return err
	}
	return store.Save(ctx, &history.RunRecord{
		ID:           rep.RunID,
		DocumentName: rep.DocumentName,
		RulesName:    rep.RulesName,
		Status:       string(rep.Status),
		Passed:       rep.Passed(),
		Failed:       rep.Failed(),
		Skipped:      rep.Skipped(),
		Report:       raw,
		CreatedAt:    time.Now().UTC(),
	})
}
