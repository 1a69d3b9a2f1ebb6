// Package ruletest runs expectation files against a rule set.
//
// A test file is a YAML sequence of cases, each naming an input document
// and the status every rule of interest must produce for it:
//
//	- name: hardened container passes
//	  input:
//	    spec:
//	      containers:
//	        - securityContext: {privileged: false}
//	  expectations:
//	    container_hardening: PASS
//
// The test command evaluates each case's input against the rule set and
// compares per-rule outcomes to the expectations.
package ruletest

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"mercator-hq/callisto/pkg/rules/document"
	"mercator-hq/callisto/pkg/rules/report"
)

// TestCase is one scenario from a test file.
type TestCase struct {
	// Name identifies the case in output.
	Name string `yaml:"name"`

	// Input is the document the rules are evaluated against.
	Input yaml.Node `yaml:"input"`

	// Expectations maps rule names to the status each must produce:
	// PASS, FAIL, or SKIP.
	Expectations map[string]string `yaml:"expectations"`
}

// ParseCases parses a test file. The name labels the source in
// diagnostics.
func ParseCases(data []byte, name string) ([]*TestCase, error) {
	var cases []*TestCase
	if err := yaml.Unmarshal(data, &cases); err != nil {
		return nil, fmt.Errorf("failed to parse test file %s: %w", name, err)
	}
	for i, tc := range cases {
		if tc.Name == "" {
			return nil, fmt.Errorf("%s: test case %d has no name", name, i+1)
		}
		if len(tc.Expectations) == 0 {
			return nil, fmt.Errorf("%s: test case %q has no expectations", name, tc.Name)
		}
		for rule, status := range tc.Expectations {
			switch report.Status(status) {
			case report.StatusPass, report.StatusFail, report.StatusSkip:
			default:
				return nil, fmt.Errorf("%s: test case %q: invalid expectation %q for rule %q (expected PASS, FAIL, or SKIP)",
					name, tc.Name, status, rule)
			}
		}
	}
	return cases, nil
}

// Document converts the case's input into a document tree.
func (tc *TestCase) Document() (*document.Node, error) {
	if tc.Input.IsZero() {
		return document.Parse(nil, tc.Name)
	}
	raw, err := yaml.Marshal(&tc.Input)
	if err != nil {
		return nil, fmt.Errorf("test case %q: failed to render input: %w", tc.Name, err)
	}
	return document.Parse(raw, tc.Name)
}
