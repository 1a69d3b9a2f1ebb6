package main

import (
	"fmt"
	"io"

	"mercator-hq/callisto/pkg/rules/report"
)

// renderReport writes the validation report in the requested format.
func renderReport(w io.Writer, rep *report.ValidationReport, format string) error {
	switch format {
	case "json":
		raw, err := rep.ToJSON()
		if err != nil {
			return err
		}
		fmt.Fprintln(w, raw)
		return nil
	case "text", "":
		renderText(w, rep)
		return nil
	default:
		return fmt.Errorf("unknown output format %q (expected text or json)", format)
	}
}

func renderText(w io.Writer, rep *report.ValidationReport) {
	fmt.Fprintf(w, "Validating %s against %s\n\n", rep.DocumentName, rep.RulesName)

	for _, rule := range rep.Rules {
		fmt.Fprintf(w, "%s %s: %s", statusGlyph(rule.Status), rule.Name, rule.Status)
		if rule.Message != "" {
			fmt.Fprintf(w, " (%s)", rule.Message)
		}
		fmt.Fprintln(w)

		for _, clause := range rule.Clauses {
			fmt.Fprintf(w, "    %s %s %s", statusGlyph(clause.Status), clause.Path, clause.Operator)
			if clause.Expected != "" {
				fmt.Fprintf(w, " %s", clause.Expected)
			}
			if clause.Status == report.StatusFail && clause.Actual != "" {
				fmt.Fprintf(w, " (found %s)", clause.Actual)
			}
			if clause.Message != "" {
				fmt.Fprintf(w, "\n        %s", clause.Message)
			}
			if clause.Location != "" {
				fmt.Fprintf(w, "\n        at %s", clause.Location)
			}
			fmt.Fprintln(w)
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Result: %s (%d passed, %d failed, %d skipped)\n",
		rep.Status, rep.Passed(), rep.Failed(), rep.Skipped())
}

func statusGlyph(status report.Status) string {
	switch status {
	case report.StatusPass:
		return "✓"
	case report.StatusFail:
		return "✗"
	default:
		return "-"
	}
}
