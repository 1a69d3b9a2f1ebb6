package ruletest

import (
	"strings"
	"testing"

	"mercator-hq/callisto/pkg/rules/parser"
)

const casesYAML = `
- name: hardened container passes
  input:
    spec:
      containers:
        - securityContext:
            privileged: false
  expectations:
    container_hardening: PASS

- name: privileged container fails
  input:
    spec:
      containers:
        - securityContext:
            privileged: true
  expectations:
    container_hardening: FAIL

- name: unrelated document skips
  input:
    metadata:
      name: web
  expectations:
    container_hardening: SKIP
`

const hardeningRules = `
rule container_hardening {
    spec.containers[*].securityContext.privileged == false
}
`

func TestParseCases(t *testing.T) {
	cases, err := ParseCases([]byte(casesYAML), "cases.yaml")
	if err != nil {
		t.Fatalf("ParseCases() failed: %v", err)
	}
	if len(cases) != 3 {
		t.Fatalf("len(cases) = %d, want 3", len(cases))
	}
	if cases[0].Name != "hardened container passes" {
		t.Errorf("cases[0].Name = %q", cases[0].Name)
	}
	if cases[1].Expectations["container_hardening"] != "FAIL" {
		t.Errorf("cases[1] expectation = %q, want FAIL", cases[1].Expectations["container_hardening"])
	}
}

func TestParseCases_Validation(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			"missing name",
			"- input: {a: 1}\n  expectations: {r: PASS}\n",
			"has no name",
		},
		{
			"missing expectations",
			"- name: x\n  input: {a: 1}\n",
			"has no expectations",
		},
		{
			"invalid status",
			"- name: x\n  input: {a: 1}\n  expectations: {r: MAYBE}\n",
			"invalid expectation",
		},
		{
			"not a sequence",
			"name: x\n",
			"failed to parse",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCases([]byte(tt.src), "cases.yaml")
			if err == nil {
				t.Fatal("ParseCases() succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestRun(t *testing.T) {
	cases, err := ParseCases([]byte(casesYAML), "cases.yaml")
	if err != nil {
		t.Fatalf("ParseCases() failed: %v", err)
	}
	rs, err := parser.Parse([]byte(hardeningRules), "checks.rules")
	if err != nil {
		t.Fatalf("parse rules: %v", err)
	}

	summary, err := Run(cases, rs)
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if summary.Passed != 3 || summary.Failed != 0 {
		t.Errorf("summary = %d/%d, want 3 passed", summary.Passed, summary.Failed)
	}
}

func TestRun_ReportsMismatch(t *testing.T) {
	src := `
- name: wrong expectation
  input:
    spec:
      containers:
        - securityContext:
            privileged: true
  expectations:
    container_hardening: PASS
`
	cases, err := ParseCases([]byte(src), "cases.yaml")
	if err != nil {
		t.Fatalf("ParseCases() failed: %v", err)
	}
	rs, err := parser.Parse([]byte(hardeningRules), "checks.rules")
	if err != nil {
		t.Fatalf("parse rules: %v", err)
	}

	summary, err := Run(cases, rs)
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if summary.Failed != 1 {
		t.Fatalf("Failed = %d, want 1", summary.Failed)
	}
	failure := summary.Cases[0].Failures[0]
	if !strings.Contains(failure, "expected PASS, got FAIL") {
		t.Errorf("failure = %q, want status mismatch message", failure)
	}
}

func TestRun_UndeclaredRule(t *testing.T) {
	src := `
- name: references a missing rule
  input: {a: 1}
  expectations:
    no_such_rule: PASS
`
	cases, err := ParseCases([]byte(src), "cases.yaml")
	if err != nil {
		t.Fatalf("ParseCases() failed: %v", err)
	}
	rs, err := parser.Parse([]byte(hardeningRules), "checks.rules")
	if err != nil {
		t.Fatalf("parse rules: %v", err)
	}

	summary, err := Run(cases, rs)
	if err != nil {
		t.Fatalf("Run() failed: %v", err)
	}
	if summary.Failed != 1 {
		t.Fatalf("Failed = %d, want 1", summary.Failed)
	}
	if !strings.Contains(summary.Cases[0].Failures[0], "not declared") {
		t.Errorf("failure = %q, want undeclared rule message", summary.Cases[0].Failures[0])
	}
}
