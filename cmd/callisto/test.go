package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"mercator-hq/callisto/pkg/rules/ast"
	"mercator-hq/callisto/pkg/ruletest"
)

var testFlags struct {
	rules []string
}

var testCmd = &cobra.Command{
	Use:   "test <test-file> [test-file...]",
	Short: "Run expectation files against rules",
	Long: `Run test cases against rule files.

A test file is a YAML sequence of cases, each with an input document and
the status (PASS, FAIL, or SKIP) every rule of interest must produce:

  - name: hardened container passes
    input:
      spec:
        containers:
          - securityContext: {privileged: false}
    expectations:
      container_hardening: PASS

Examples:
  # Run one test file
  callisto test --rules checks.rules cases.yaml

  # Rules split across files
  callisto test --rules base.rules --rules prod.rules cases.yaml`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTests,
}

func init() {
	rootCmd.AddCommand(testCmd)

	testCmd.Flags().StringArrayVarP(&testFlags.rules, "rules", "r", nil, "rule file (repeatable)")
	testCmd.MarkFlagRequired("rules")
}

func runTests(cmd *cobra.Command, args []string) error {
	sets := make([]*ast.RuleSet, 0, len(testFlags.rules))
	for _, file := range testFlags.rules {
		set, err := parseFile(file)
		if err != nil {
			return err
		}
		sets = append(sets, set)
	}
	rs, err := ast.Merge("test", sets...)
	if err != nil {
		return err
	}

	totalPassed := 0
	totalFailed := 0

	for _, file := range args {
		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read test file %s: %w", file, err)
		}
		cases, err := ruletest.ParseCases(data, file)
		if err != nil {
			return err
		}

		summary, err := ruletest.Run(cases, rs)
		if err != nil {
			return err
		}

		fmt.Printf("%s:\n", file)
		for _, result := range summary.Cases {
			if result.Passed {
				fmt.Printf("  ✓ %s\n", result.Name)
				continue
			}
			fmt.Printf("  ✗ %s\n", result.Name)
			for _, failure := range result.Failures {
				fmt.Printf("      %s\n", failure)
			}
		}
		fmt.Println()

		totalPassed += summary.Passed
		totalFailed += summary.Failed
	}

	fmt.Printf("Summary: %d passed, %d failed\n", totalPassed, totalFailed)

	if totalFailed > 0 {
		return errChecksFailed
	}
	return nil
}
