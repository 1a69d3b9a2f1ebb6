package eval

import (
	"strings"
	"testing"

	"mercator-hq/callisto/pkg/rules/ast"
	rerrors "mercator-hq/callisto/pkg/rules/errors"
	"mercator-hq/callisto/pkg/rules/report"
)

func refRule(name string, refs ...string) *ast.Rule {
	rule := &ast.Rule{Name: name}
	for _, ref := range refs {
		rule.Statements = append(rule.Statements, &ast.Expr{Kind: ast.ExprRef, RefName: ref})
	}
	return rule
}

func TestCheckReferences_Acyclic(t *testing.T) {
	rs := ast.NewRuleSet("test.rules", []*ast.Rule{
		refRule("a", "b", "c"),
		refRule("b", "c"),
		refRule("c"),
	})
	if err := CheckReferences(rs); err != nil {
		t.Errorf("CheckReferences() = %v, want nil for a DAG", err)
	}
}

func TestCheckReferences_DirectCycle(t *testing.T) {
	rs := ast.NewRuleSet("test.rules", []*ast.Rule{
		refRule("a", "b"),
		refRule("b", "a"),
	})
	err := CheckReferences(rs)
	if err == nil {
		t.Fatal("CheckReferences() = nil, want cycle error")
	}
	refErr, ok := err.(*rerrors.ReferenceError)
	if !ok {
		t.Fatalf("error type = %T, want *errors.ReferenceError", err)
	}
	chain := strings.Join(refErr.Chain, " -> ")
	if !strings.Contains(chain, "a") || !strings.Contains(chain, "b") {
		t.Errorf("Chain = %q, want it to include both rules", chain)
	}
}

func TestCheckReferences_SelfCycle(t *testing.T) {
	rs := ast.NewRuleSet("test.rules", []*ast.Rule{refRule("loop", "loop")})
	if err := CheckReferences(rs); err == nil {
		t.Error("CheckReferences() = nil, want self-cycle error")
	}
}

func TestCheckReferences_LongCycle(t *testing.T) {
	rs := ast.NewRuleSet("test.rules", []*ast.Rule{
		refRule("a", "b"),
		refRule("b", "c"),
		refRule("c", "d"),
		refRule("d", "a"),
	})
	if err := CheckReferences(rs); err == nil {
		t.Error("CheckReferences() = nil, want cycle error")
	}
}

func TestCheckReferences_UndefinedIgnored(t *testing.T) {
	rs := ast.NewRuleSet("test.rules", []*ast.Rule{refRule("a", "ghost")})
	if err := CheckReferences(rs); err != nil {
		t.Errorf("CheckReferences() = %v, want nil for undefined refs", err)
	}
}

func TestCheckReferences_SharedDiamondIsNotACycle(t *testing.T) {
	rs := ast.NewRuleSet("test.rules", []*ast.Rule{
		refRule("top", "left", "right"),
		refRule("left", "bottom"),
		refRule("right", "bottom"),
		refRule("bottom"),
	})
	if err := CheckReferences(rs); err != nil {
		t.Errorf("CheckReferences() = %v, want nil for a diamond", err)
	}
}

func TestCheckReferences_GuardReferences(t *testing.T) {
	guarded := &ast.Rule{
		Name: "guarded",
		When: &ast.Expr{Kind: ast.ExprRef, RefName: "guarded"},
	}
	rs := ast.NewRuleSet("test.rules", []*ast.Rule{guarded})
	if err := CheckReferences(rs); err == nil {
		t.Error("CheckReferences() = nil, want cycle through the when guard")
	}
}

func TestCombineAll(t *testing.T) {
	p, f, s := report.StatusPass, report.StatusFail, report.StatusSkip
	tests := []struct {
		statuses []report.Status
		want     report.Status
	}{
		{[]report.Status{p, p}, p},
		{[]report.Status{p, f}, f},
		{[]report.Status{s, s}, s},
		{[]report.Status{s, p}, p},
		{[]report.Status{s, f}, f},
		{nil, s},
	}
	for _, tt := range tests {
		if got := combineAll(tt.statuses); got != tt.want {
			t.Errorf("combineAll(%v) = %s, want %s", tt.statuses, got, tt.want)
		}
	}
}

func TestCombineAny(t *testing.T) {
	p, f, s := report.StatusPass, report.StatusFail, report.StatusSkip
	tests := []struct {
		statuses []report.Status
		want     report.Status
	}{
		{[]report.Status{f, p}, p},
		{[]report.Status{f, f}, f},
		{[]report.Status{s, f}, f},
		{[]report.Status{s, s}, s},
		{nil, s},
	}
	for _, tt := range tests {
		if got := combineAny(tt.statuses); got != tt.want {
			t.Errorf("combineAny(%v) = %s, want %s", tt.statuses, got, tt.want)
		}
	}
}

func TestInvert(t *testing.T) {
	if got := invert(report.StatusPass); got != report.StatusFail {
		t.Errorf("invert(PASS) = %s, want FAIL", got)
	}
	if got := invert(report.StatusFail); got != report.StatusPass {
		t.Errorf("invert(FAIL) = %s, want PASS", got)
	}
	if got := invert(report.StatusSkip); got != report.StatusSkip {
		t.Errorf("invert(SKIP) = %s, want SKIP", got)
	}
}
