package main

import (
	"testing"

	"mercator-hq/callisto/pkg/rules/ast"
	rulesErrors "mercator-hq/callisto/pkg/rules/errors"
)

func TestLintFileValid(t *testing.T) {
	result, set := lintFile("testdata/valid.rules")
	if !result.Valid {
		t.Errorf("lintFile() of valid file reported errors: %v", result.Errors)
	}
	if result.Rules != 2 {
		t.Errorf("Rules = %d, want 2", result.Rules)
	}
	if set == nil {
		t.Error("lintFile() of valid file returned no rule set")
	}
}

func TestLintFileInvalid(t *testing.T) {
	result, set := lintFile("testdata/invalid.rules")
	if result.Valid {
		t.Error("lintFile() of invalid file reported valid")
	}
	if len(result.Errors) == 0 {
		t.Fatal("lintFile() of invalid file reported no errors")
	}
	if result.Errors[0].Line == 0 {
		t.Error("diagnostic carries no line number")
	}
	if set != nil {
		t.Error("lintFile() of invalid file returned a rule set")
	}
}

func TestLintFileNonexistent(t *testing.T) {
	result, _ := lintFile("testdata/nonexistent.rules")
	if result.Valid {
		t.Error("lintFile() of missing file reported valid")
	}
}

func TestLintRulesValid(t *testing.T) {
	lintFlags.format = "text"
	if err := lintRules(nil, []string{"testdata/valid.rules"}); err != nil {
		t.Errorf("lintRules() with valid file returned error: %v", err)
	}
}

func TestLintRulesInvalid(t *testing.T) {
	lintFlags.format = "text"
	if err := lintRules(nil, []string{"testdata/invalid.rules"}); err == nil {
		t.Error("lintRules() with invalid file should return error")
	}
}

func TestLintRulesJSONFormat(t *testing.T) {
	lintFlags.format = "json"
	defer func() { lintFlags.format = "text" }()
	if err := lintRules(nil, []string{"testdata/valid.rules"}); err != nil {
		t.Errorf("lintRules() with JSON format returned error: %v", err)
	}
}

func TestCollectLintErrors(t *testing.T) {
	list := rulesErrors.NewErrorList()
	list.Add(&rulesErrors.ParseError{
		Location:   ast.Location{File: "x.rules", Line: 2, Column: 5},
		Message:    "expected '==', found '='",
		Suggestion: "comparison uses '=='",
	})
	list.Add(&rulesErrors.ParseError{
		Location: ast.Location{File: "x.rules", Line: 7, Column: 1},
		Message:  "duplicate rule name",
	})

	diags := collectLintErrors(list)
	if len(diags) != 2 {
		t.Fatalf("len(diags) = %d, want 2", len(diags))
	}
	if diags[0].Line != 2 || diags[0].Column != 5 {
		t.Errorf("diags[0] position = %d:%d, want 2:5", diags[0].Line, diags[0].Column)
	}
	if diags[0].Suggestion != "comparison uses '=='" {
		t.Errorf("diags[0].Suggestion = %q", diags[0].Suggestion)
	}
	if diags[1].Line != 7 {
		t.Errorf("diags[1].Line = %d, want 7", diags[1].Line)
	}
}
