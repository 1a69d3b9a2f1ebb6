package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"mercator-hq/callisto/pkg/history"
)

var historyFlags struct {
	id       string
	status   string
	document string
	since    string
	until    string
	limit    int
	format   string
	report   bool
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Query past validation runs",
	Long: `Query validation runs recorded by the check and watch commands.

History must be enabled in the config file:

  history:
    enabled: true
    path: callisto-history.db

Examples:
  # Last ten runs
  callisto history --limit 10

  # Failed runs for one document since a date
  callisto history --status FAIL --document template.yaml --since 2026-08-01T00:00:00Z

  # Full report of a single run
  callisto history --id 6f1c2a9e-... --report`,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().StringVar(&historyFlags.id, "id", "", "show a single run by ID")
	historyCmd.Flags().StringVar(&historyFlags.status, "status", "", "filter by overall status: PASS, FAIL")
	historyCmd.Flags().StringVar(&historyFlags.document, "document", "", "filter by document name")
	historyCmd.Flags().StringVar(&historyFlags.since, "since", "", "runs at or after this time (RFC3339)")
	historyCmd.Flags().StringVar(&historyFlags.until, "until", "", "runs before this time (RFC3339)")
	historyCmd.Flags().IntVar(&historyFlags.limit, "limit", 20, "maximum number of runs (0 for all)")
	historyCmd.Flags().StringVar(&historyFlags.format, "format", "text", "output format: text, json")
	historyCmd.Flags().BoolVar(&historyFlags.report, "report", false, "include the full report JSON per run")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.History.Path == "" {
		return fmt.Errorf("history.path is not configured")
	}

	store, err := history.NewSQLiteStore(history.SQLiteConfig{Path: cfg.History.Path})
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()

	if historyFlags.id != "" {
		record, err := store.Get(ctx, historyFlags.id)
		if err != nil {
			return err
		}
		if record == nil {
			return fmt.Errorf("no run with ID %s", historyFlags.id)
		}
		return printRuns([]*history.RunRecord{record})
	}

	query := &history.Query{
		Status:       historyFlags.status,
		DocumentName: historyFlags.document,
		Limit:        historyFlags.limit,
	}
	if historyFlags.since != "" {
		since, err := time.Parse(time.RFC3339, historyFlags.since)
		if err != nil {
			return fmt.Errorf("invalid --since: %w", err)
		}
		query.Since = &since
	}
	if historyFlags.until != "" {
		until, err := time.Parse(time.RFC3339, historyFlags.until)
		if err != nil {
			return fmt.Errorf("invalid --until: %w", err)
		}
		query.Until = &until
	}

	records, err := store.Query(ctx, query)
	if err != nil {
		return err
	}
	return printRuns(records)
}

func printRuns(records []*history.RunRecord) error {
	if historyFlags.format == "json" {
		type runJSON struct {
			ID           string          `json:"id"`
			DocumentName string          `json:"document_name"`
			RulesName    string          `json:"rules_name"`
			Status       string          `json:"status"`
			Passed       int             `json:"passed"`
			Failed       int             `json:"failed"`
			Skipped      int             `json:"skipped"`
			CreatedAt    time.Time       `json:"created_at"`
			Report       json.RawMessage `json:"report,omitempty"`
		}
		out := make([]runJSON, 0, len(records))
		for _, r := range records {
			row := runJSON{
				ID:           r.ID,
				DocumentName: r.DocumentName,
				RulesName:    r.RulesName,
				Status:       r.Status,
				Passed:       r.Passed,
				Failed:       r.Failed,
				Skipped:      r.Skipped,
				CreatedAt:    r.CreatedAt,
			}
			if historyFlags.report {
				row.Report = json.RawMessage(r.Report)
			}
			out = append(out, row)
		}
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(out)
	}

	if len(records) == 0 {
		fmt.Println("No runs recorded.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "CREATED\tSTATUS\tPASSED\tFAILED\tSKIPPED\tDOCUMENT\tID")
	for _, r := range records {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%s\t%s\n",
			r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			r.Status, r.Passed, r.Failed, r.Skipped, r.DocumentName, r.ID)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if historyFlags.report {
		for _, r := range records {
			fmt.Println()
			fmt.Printf("Run %s:\n", r.ID)
			fmt.Println(r.Report)
		}
	}
	return nil
}
