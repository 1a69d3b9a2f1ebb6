package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/callisto/pkg/rules/ast"
	rulesErrors "mercator-hq/callisto/pkg/rules/errors"
	"mercator-hq/callisto/pkg/rules/eval"
	"mercator-hq/callisto/pkg/rules/parser"
)

var lintFlags struct {
	format string
}

var lintCmd = &cobra.Command{
	Use:   "lint <rules-file> [rules-file...]",
	Short: "Check rule files for errors",
	Long: `Parse rule files and report syntax and structural errors without
evaluating anything.

The lint command checks:
  - Rule language syntax
  - Duplicate rule names (within and across files)
  - Circular rule references

Examples:
  # Lint a single rule file
  callisto lint checks.rules

  # Lint several files that are used together
  callisto lint base.rules prod.rules

  # JSON output for CI/CD
  callisto lint checks.rules --format json`,
	Args: cobra.MinimumNArgs(1),
	RunE: lintRules,
}

func init() {
	rootCmd.AddCommand(lintCmd)

	lintCmd.Flags().StringVar(&lintFlags.format, "format", "text", "output format: text, json")
}

// lintResult is the lint outcome for a single rule file.
type lintResult struct {
	File   string      `json:"file"`
	Valid  bool        `json:"valid"`
	Rules  int         `json:"rules"`
	Errors []lintError `json:"errors,omitempty"`
}

// lintError is one diagnostic.
type lintError struct {
	Line       int    `json:"line,omitempty"`
	Column     int    `json:"column,omitempty"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion,omitempty"`
}

func lintRules(cmd *cobra.Command, args []string) error {
	results := make([]lintResult, 0, len(args))
	sets := make([]*ast.RuleSet, 0, len(args))
	allValid := true

	for _, file := range args {
		result, set := lintFile(file)
		if result.Valid {
			// Only syntactically valid files take part in the cross-file
			// checks below.
			sets = append(sets, set)
		} else {
			allValid = false
		}
		results = append(results, result)
	}

	// Cross-file diagnostics: duplicate names across files and circular
	// references in the combined rule set.
	var crossErrors []lintError
	if len(sets) > 0 {
		merged, err := ast.Merge("lint", sets...)
		if err != nil {
			allValid = false
			crossErrors = append(crossErrors, lintError{Message: err.Error()})
		} else if err := eval.CheckReferences(merged); err != nil {
			allValid = false
			crossErrors = append(crossErrors, lintError{Message: err.Error()})
		}
	}

	if lintFlags.format == "json" {
		out := struct {
			Files  []lintResult `json:"files"`
			Errors []lintError  `json:"errors,omitempty"`
			Valid  bool         `json:"valid"`
		}{Files: results, Errors: crossErrors, Valid: allValid}
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(out); err != nil {
			return err
		}
	} else {
		printLintText(results, crossErrors)
	}

	if !allValid {
		return fmt.Errorf("lint found errors")
	}
	return nil
}

func parseFile(path string) (*ast.RuleSet, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return parser.Parse(content, path)
}

func lintFile(path string) (lintResult, *ast.RuleSet) {
	result := lintResult{File: path, Valid: true}

	set, err := parseFile(path)
	if err != nil {
		result.Valid = false
		result.Errors = collectLintErrors(err)
		return result, nil
	}

	result.Rules = set.Len()
	return result, set
}

// collectLintErrors flattens parser errors into diagnostics, preserving
// positions where the error carries them.
func collectLintErrors(err error) []lintError {
	switch e := err.(type) {
	case *rulesErrors.ErrorList:
		var out []lintError
		for _, inner := range e.Errors {
			out = append(out, collectLintErrors(inner)...)
		}
		return out
	case *rulesErrors.ParseError:
		return []lintError{{
			Line:       e.Location.Line,
			Column:     e.Location.Column,
			Message:    e.Message,
			Suggestion: e.Suggestion,
		}}
	default:
		return []lintError{{Message: err.Error()}}
	}
}

func printLintText(results []lintResult, crossErrors []lintError) {
	totalErrors := 0

	for _, result := range results {
		fmt.Printf("Linting %s...\n", result.File)

		if result.Valid {
			fmt.Printf("✓ %d rule(s), no errors\n", result.Rules)
		}
		for _, err := range result.Errors {
			fmt.Printf("✗ Error: %s", err.Message)
			if err.Line > 0 {
				fmt.Printf(" (line %d", err.Line)
				if err.Column > 0 {
					fmt.Printf(", col %d", err.Column)
				}
				fmt.Print(")")
			}
			fmt.Println()
			if err.Suggestion != "" {
				fmt.Printf("  suggestion: %s\n", err.Suggestion)
			}
			totalErrors++
		}
		fmt.Println()
	}

	for _, err := range crossErrors {
		fmt.Printf("✗ Error: %s\n", err.Message)
		totalErrors++
	}
	if len(crossErrors) > 0 {
		fmt.Println()
	}

	fmt.Println("Summary:")
	fmt.Printf("  %d file(s), %d error(s)\n", len(results), totalErrors)
}
