package parser

import (
	"strings"
	"testing"

	"mercator-hq/callisto/pkg/rules/ast"
	rerrors "mercator-hq/callisto/pkg/rules/errors"
)

func mustParse(t *testing.T, src string) *ast.RuleSet {
	t.Helper()
	rs, err := Parse([]byte(src), "test.rules")
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	return rs
}

func TestParse_SimpleRule(t *testing.T) {
	rs := mustParse(t, `
rule container_hardening {
    spec.privileged == false
}
`)
	if rs.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", rs.Len())
	}
	rule := rs.Rules[0]
	if rule.Name != "container_hardening" {
		t.Errorf("Name = %q, want container_hardening", rule.Name)
	}
	if rule.When != nil {
		t.Error("rule has a when guard, want none")
	}
	if len(rule.Statements) != 1 {
		t.Fatalf("len(Statements) = %d, want 1", len(rule.Statements))
	}
	stmt := rule.Statements[0]
	if stmt.Kind != ast.ExprClause {
		t.Fatalf("statement kind = %q, want clause", stmt.Kind)
	}
	clause := stmt.Clause
	if clause.Path.String() != "spec.privileged" {
		t.Errorf("path = %q, want spec.privileged", clause.Path.String())
	}
	if clause.Op != ast.OpEqual {
		t.Errorf("op = %q, want ==", clause.Op)
	}
	if clause.Expected.Type != ast.ValueTypeBool || clause.Expected.Bool {
		t.Errorf("expected = %v, want false", clause.Expected)
	}
}

func TestParse_StatementsAreConjoined(t *testing.T) {
	rs := mustParse(t, `
rule production_ready {
    replicas >= 2
    image matches /^registry\.internal\//
    env exists
}
`)
	rule := rs.Rules[0]
	if len(rule.Statements) != 3 {
		t.Fatalf("len(Statements) = %d, want 3", len(rule.Statements))
	}
	if rule.Statements[1].Clause.Op != ast.OpMatches {
		t.Errorf("second statement op = %q, want matches", rule.Statements[1].Clause.Op)
	}
	if rule.Statements[2].Clause.Op != ast.OpExists {
		t.Errorf("third statement op = %q, want exists", rule.Statements[2].Clause.Op)
	}
}

func TestParse_WhenGuard(t *testing.T) {
	rs := mustParse(t, `
rule prod_only when env == "production" {
    replicas >= 3
}
`)
	rule := rs.Rules[0]
	if rule.When == nil {
		t.Fatal("When = nil, want guard expression")
	}
	if rule.When.Clause.Path.String() != "env" {
		t.Errorf("guard path = %q, want env", rule.When.Clause.Path.String())
	}
}

func TestParse_Precedence(t *testing.T) {
	// not binds tighter than and, and tighter than or:
	// (a exists and b exists) or not c exists
	rs := mustParse(t, `
rule precedence {
    a exists and b exists or not c exists
}
`)
	stmt := rs.Rules[0].Statements[0]
	if stmt.Kind != ast.ExprOr {
		t.Fatalf("top kind = %q, want or", stmt.Kind)
	}
	if len(stmt.Children) != 2 {
		t.Fatalf("or arity = %d, want 2", len(stmt.Children))
	}
	if stmt.Children[0].Kind != ast.ExprAnd {
		t.Errorf("left kind = %q, want and", stmt.Children[0].Kind)
	}
	if stmt.Children[1].Kind != ast.ExprNot {
		t.Errorf("right kind = %q, want not", stmt.Children[1].Kind)
	}
}

func TestParse_ParensOverridePrecedence(t *testing.T) {
	rs := mustParse(t, `
rule grouped {
    a exists and (b exists or c exists)
}
`)
	stmt := rs.Rules[0].Statements[0]
	if stmt.Kind != ast.ExprAnd {
		t.Fatalf("top kind = %q, want and", stmt.Kind)
	}
	if stmt.Children[1].Kind != ast.ExprOr {
		t.Errorf("right kind = %q, want or", stmt.Children[1].Kind)
	}
}

func TestParse_ChainedOpsFlatten(t *testing.T) {
	rs := mustParse(t, `
rule flat {
    a exists and b exists and c exists
}
`)
	stmt := rs.Rules[0].Statements[0]
	if stmt.Kind != ast.ExprAnd || len(stmt.Children) != 3 {
		t.Errorf("got %s with %d children, want and with 3", stmt.Kind, len(stmt.Children))
	}
}

func TestParse_RuleReference(t *testing.T) {
	rs := mustParse(t, `
rule base {
    foo exists
}

rule derived {
    base
    bar exists
}
`)
	derived := rs.Rule("derived")
	if derived.Statements[0].Kind != ast.ExprRef || derived.Statements[0].RefName != "base" {
		t.Errorf("first statement = %v, want ref to base", derived.Statements[0])
	}
}

func TestParse_IdentHeadedClauseIsNotARef(t *testing.T) {
	// A bare identifier followed by a comparator is a single-segment path.
	rs := mustParse(t, `
rule single_key {
    replicas >= 2
    tags in ["a", "b"]
    name is_string
}
`)
	for i, stmt := range rs.Rules[0].Statements {
		if stmt.Kind != ast.ExprClause {
			t.Errorf("statement %d kind = %q, want clause", i, stmt.Kind)
		}
	}
}

func TestParse_SomeQuantifier(t *testing.T) {
	rs := mustParse(t, `
rule any_open_port {
    some spec.ports[*] == 443
}
`)
	clause := rs.Rules[0].Statements[0].Clause
	if !clause.Some {
		t.Error("Some = false, want true")
	}
	if clause.Path.String() != "spec.ports[*]" {
		t.Errorf("path = %q, want spec.ports[*]", clause.Path.String())
	}
}

func TestParse_NegatedUnary(t *testing.T) {
	rs := mustParse(t, `
rule no_debug {
    spec.debug !exists
    name !empty
}
`)
	first := rs.Rules[0].Statements[0].Clause
	if first.Op != ast.OpExists || !first.Negated {
		t.Errorf("first clause = %s negated=%v, want !exists", first.Op, first.Negated)
	}
	second := rs.Rules[0].Statements[1].Clause
	if second.Op != ast.OpEmpty || !second.Negated {
		t.Errorf("second clause = %s negated=%v, want !empty", second.Op, second.Negated)
	}
}

func TestParse_PathForms(t *testing.T) {
	rs := mustParse(t, `
rule paths {
    spec.containers[0].name exists
    spec.containers[-1].name exists
    spec.containers[*].privileged == false
    metadata.* exists
    spec..privileged == false
    metadata."app.kubernetes.io/name" exists
    metadata["quoted key"] exists
}
`)
	want := []string{
		"spec.containers[0].name",
		"spec.containers[-1].name",
		"spec.containers[*].privileged",
		"metadata.*",
		"spec..privileged",
		`metadata."app.kubernetes.io/name"`,
		`metadata."quoted key"`,
	}
	stmts := rs.Rules[0].Statements
	if len(stmts) != len(want) {
		t.Fatalf("len(Statements) = %d, want %d", len(stmts), len(want))
	}
	for i, w := range want {
		if got := stmts[i].Clause.Path.String(); got != w {
			t.Errorf("path %d = %q, want %q", i, got, w)
		}
	}
}

func TestParse_Values(t *testing.T) {
	rs := mustParse(t, `
rule values {
    a == "text"
    b == 42
    c == -1.5
    d == true
    e == null
    f in [1, 2.5, "three", [4]]
    g matches /^v[0-9]+/
}
`)
	stmts := rs.Rules[0].Statements
	types := []ast.ValueType{
		ast.ValueTypeString, ast.ValueTypeInt, ast.ValueTypeFloat,
		ast.ValueTypeBool, ast.ValueTypeNull, ast.ValueTypeList, ast.ValueTypeRegex,
	}
	for i, want := range types {
		if got := stmts[i].Clause.Expected.Type; got != want {
			t.Errorf("value %d type = %q, want %q", i, got, want)
		}
	}
	list := stmts[5].Clause.Expected
	if len(list.List) != 4 || list.List[3].Type != ast.ValueTypeList {
		t.Errorf("list value = %v, want nested list at [3]", list)
	}
	if stmts[6].Clause.Expected.Regex.String() != "^v[0-9]+" {
		t.Errorf("regex = %q, want ^v[0-9]+", stmts[6].Clause.Expected.Regex.String())
	}
}

func TestParse_CustomMessage(t *testing.T) {
	rs := mustParse(t, `
rule documented {
    spec.privileged == false << containers must not run privileged >>
}
`)
	clause := rs.Rules[0].Statements[0].Clause
	if clause.Message != "containers must not run privileged" {
		t.Errorf("Message = %q, want custom message", clause.Message)
	}
}

func TestParse_DuplicateRuleName(t *testing.T) {
	_, err := Parse([]byte(`
rule twice { a exists }
rule twice { b exists }
`), "test.rules")
	if err == nil {
		t.Fatal("Parse() succeeded, want duplicate rule error")
	}
	if !strings.Contains(err.Error(), `"twice"`) {
		t.Errorf("error %q should name the duplicate rule", err)
	}
}

func TestParse_InvalidRegex(t *testing.T) {
	_, err := Parse([]byte(`
rule bad {
    name matches /[unclosed/
}
`), "test.rules")
	if err == nil {
		t.Fatal("Parse() succeeded, want regex compile error")
	}
}

func TestParse_ErrorRecovery(t *testing.T) {
	// Both problems are reported in one pass.
	_, err := Parse([]byte(`
rule first {
    a ==
    b exists
}

rule second {
    c >
}
`), "test.rules")
	if err == nil {
		t.Fatal("Parse() succeeded, want errors")
	}
	list, ok := err.(*rerrors.ErrorList)
	if !ok {
		t.Fatalf("error type = %T, want *errors.ErrorList", err)
	}
	if list.Count() != 2 {
		t.Errorf("Count() = %d, want 2 independent errors", list.Count())
	}
}

func TestParse_MissingComparator(t *testing.T) {
	_, err := Parse([]byte(`
rule broken {
    spec.name
}
`), "test.rules")
	if err == nil {
		t.Fatal("Parse() succeeded, want missing comparator error")
	}
	perr, ok := err.(*rerrors.ParseError)
	if !ok {
		t.Fatalf("error type = %T, want *errors.ParseError", err)
	}
	if perr.Location.Line == 0 {
		t.Error("error carries no line position")
	}
}

func TestParse_MissingBrace(t *testing.T) {
	_, err := Parse([]byte(`
rule unclosed {
    a exists
`), "test.rules")
	if err == nil {
		t.Fatal("Parse() succeeded, want missing brace error")
	}
	if !strings.Contains(err.Error(), "closing '}'") {
		t.Errorf("error %q should mention the missing brace", err)
	}
}

func TestParse_NestingLimit(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("rule deep {\n    ")
	for i := 0; i < 60; i++ {
		sb.WriteString("not ")
	}
	sb.WriteString("a exists\n}\n")
	_, err := Parse([]byte(sb.String()), "test.rules")
	if err == nil {
		t.Fatal("Parse() succeeded, want nesting limit error")
	}
	if !strings.Contains(err.Error(), "nesting") {
		t.Errorf("error %q should mention nesting", err)
	}
}

func TestParse_EmptyRuleBody(t *testing.T) {
	rs := mustParse(t, `rule empty { }`)
	if len(rs.Rules[0].Statements) != 0 {
		t.Errorf("len(Statements) = %d, want 0", len(rs.Rules[0].Statements))
	}
}

func TestParse_MultilineGuardAndOr(t *testing.T) {
	// or may continue on the next line after the keyword.
	rs := mustParse(t, `
rule spread {
    a exists or
    b exists
}
`)
	stmt := rs.Rules[0].Statements[0]
	if stmt.Kind != ast.ExprOr || len(stmt.Children) != 2 {
		t.Errorf("got %s with %d children, want or with 2", stmt.Kind, len(stmt.Children))
	}
}
