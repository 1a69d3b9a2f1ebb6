package ruletest

import (
	"fmt"
	"sort"

	"mercator-hq/callisto/pkg/rules/ast"
	"mercator-hq/callisto/pkg/rules/eval"
	"mercator-hq/callisto/pkg/rules/report"
)

// CaseResult is the outcome of running one test case.
type CaseResult struct {
	Name     string
	Passed   bool
	Failures []string // one message per unmet expectation
}

// Summary aggregates a whole test run.
type Summary struct {
	Cases  []CaseResult
	Passed int
	Failed int
}

// Run evaluates every case against the rule set and checks expectations.
// An error is returned only for unusable inputs (malformed case document,
// structurally broken rules); unmet expectations are reported per case.
func Run(cases []*TestCase, rs *ast.RuleSet) (*Summary, error) {
	summary := &Summary{}
	for _, tc := range cases {
		result, err := runCase(tc, rs)
		if err != nil {
			return nil, err
		}
		summary.Cases = append(summary.Cases, result)
		if result.Passed {
			summary.Passed++
		} else {
			summary.Failed++
		}
	}
	return summary, nil
}

func runCase(tc *TestCase, rs *ast.RuleSet) (CaseResult, error) {
	result := CaseResult{Name: tc.Name}

	doc, err := tc.Document()
	if err != nil {
		return result, err
	}

	rep, err := eval.NewEvaluator().Evaluate(rs, doc)
	if err != nil {
		return result, fmt.Errorf("test case %q: %w", tc.Name, err)
	}

	byName := make(map[string]report.Status, len(rep.Rules))
	for _, rule := range rep.Rules {
		byName[rule.Name] = rule.Status
	}

	// Deterministic failure ordering regardless of map iteration.
	rules := make([]string, 0, len(tc.Expectations))
	for rule := range tc.Expectations {
		rules = append(rules, rule)
	}
	sort.Strings(rules)

	for _, rule := range rules {
		expected := report.Status(tc.Expectations[rule])
		got, ok := byName[rule]
		if !ok {
			result.Failures = append(result.Failures,
				fmt.Sprintf("rule %q is not declared in the rule set", rule))
			continue
		}
		if got != expected {
			result.Failures = append(result.Failures,
				fmt.Sprintf("rule %q: expected %s, got %s", rule, expected, got))
		}
	}

	result.Passed = len(result.Failures) == 0
	return result, nil
}
