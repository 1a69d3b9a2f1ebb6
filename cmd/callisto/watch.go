package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"mercator-hq/callisto/pkg/engine"
	"mercator-hq/callisto/pkg/history"
	"mercator-hq/callisto/pkg/telemetry/metrics"
	"mercator-hq/callisto/pkg/watch"
)

var watchFlags struct {
	data     string
	rules    []string
	strict   bool
	format   string
	debounce time.Duration
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-validate whenever inputs change",
	Long: `Watch the document and rule files and re-run validation on every
change.

Each run prints a fresh report. When metrics are enabled in the config
file, a prometheus /metrics endpoint is served for the lifetime of the
watch; when history is enabled, every run is recorded and expired
records are pruned on the configured schedule.

The watch runs until interrupted (Ctrl-C).

Examples:
  # Re-check on every save
  callisto watch --data template.yaml --rules checks.rules

  # Several rule files, longer quiet period
  callisto watch --data template.yaml --rules base.rules --rules prod.rules --debounce 1s`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVarP(&watchFlags.data, "data", "d", "", "document file to validate")
	watchCmd.Flags().StringArrayVarP(&watchFlags.rules, "rules", "r", nil, "rule file (repeatable)")
	watchCmd.Flags().BoolVar(&watchFlags.strict, "strict", false, "treat skipped rules as failures")
	watchCmd.Flags().StringVar(&watchFlags.format, "format", "text", "output format: text, json")
	watchCmd.Flags().DurationVar(&watchFlags.debounce, "debounce", 200*time.Millisecond, "quiet period before re-checking")
	watchCmd.MarkFlagRequired("data")
	watchCmd.MarkFlagRequired("rules")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Optional metrics endpoint for the lifetime of the watch.
	var engineOpts []engine.Option
	if cfg.Metrics.Enabled {
		registry := prometheus.NewRegistry()
		checkMetrics := metrics.NewCheckMetrics(cfg.Metrics.Namespace, registry)
		engineOpts = append(engineOpts, engine.WithMetrics(checkMetrics))

		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler(registry))
		server := &http.Server{Addr: cfg.Metrics.Listen, Handler: mux}
		go func() {
			logger.Info("metrics endpoint listening", "addr", cfg.Metrics.Listen)
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics endpoint failed", "error", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			server.Shutdown(shutdownCtx)
		}()
	}

	// Optional run history with scheduled retention pruning.
	var store history.Store
	if cfg.History.Enabled {
		sqliteStore, err := history.NewSQLiteStore(history.SQLiteConfig{Path: cfg.History.Path})
		if err != nil {
			return err
		}
		defer sqliteStore.Close()
		store = sqliteStore

		retention := time.Duration(cfg.History.RetentionDays) * 24 * time.Hour
		pruner := history.NewPruner(store, retention, logger)
		scheduler := history.NewScheduler(pruner, cfg.History.PruneSchedule, logger)
		if err := scheduler.Start(ctx); err != nil {
			return err
		}
		defer scheduler.Stop()
	}

	strict := watchFlags.strict || cfg.Check.Strict
	runOnce := func() error {
		rep, err := evaluateFiles(cfg, logger, watchFlags.data, watchFlags.rules, strict, engineOpts)
		if err != nil {
			// Report and keep watching; the next save may fix the input.
			fmt.Fprintln(os.Stderr, err)
			return nil
		}
		if store != nil {
			if err := saveRun(ctx, store, rep); err != nil {
				logger.Warn("failed to record run in history", "error", err)
			}
		}
		return renderReport(os.Stdout, rep, watchFlags.format)
	}

	// Validate once up front so the watch starts from a known state.
	if err := runOnce(); err != nil {
		return err
	}

	files := append([]string{watchFlags.data}, watchFlags.rules...)
	watcher, err := watch.New(watch.Config{
		Files:            files,
		DebounceInterval: watchFlags.debounce,
	}, logger)
	if err != nil {
		return err
	}
	defer watcher.Stop()

	return watcher.Watch(ctx, runOnce)
}
