package errors

import (
	"strings"
	"testing"

	"mercator-hq/callisto/pkg/rules/ast"
)

func TestParseError_Rendering(t *testing.T) {
	err := &ParseError{
		Location:   ast.Location{File: "checks.rules", Line: 3, Column: 7},
		Message:    "expected '==', found '='",
		Suggestion: "comparison uses '=='",
	}
	msg := err.Error()
	if !strings.Contains(msg, "[parse] expected '==', found '='") {
		t.Errorf("message missing the diagnostic: %q", msg)
	}
	if !strings.Contains(msg, "--> checks.rules:3:7") {
		t.Errorf("message missing the location arrow: %q", msg)
	}
	if !strings.Contains(msg, "suggestion: comparison uses '=='") {
		t.Errorf("message missing the suggestion: %q", msg)
	}
}

func TestParseError_NoLocation(t *testing.T) {
	err := &ParseError{Message: "something went wrong"}
	if strings.Contains(err.Error(), "-->") {
		t.Errorf("invalid location should not render an arrow: %q", err.Error())
	}
}

func TestReferenceError_Rendering(t *testing.T) {
	err := &ReferenceError{
		Rule:    "a",
		Chain:   []string{"a", "b", "a"},
		Message: `circular rule reference involving "a"`,
	}
	msg := err.Error()
	if !strings.Contains(msg, "a -> b -> a") {
		t.Errorf("message missing the chain: %q", msg)
	}

	bare := &ReferenceError{Rule: "x", Message: "exceeded recursion depth"}
	if strings.Contains(bare.Error(), "chain") {
		t.Errorf("chainless error should not render a chain: %q", bare.Error())
	}
}

func TestEvaluationError_Rendering(t *testing.T) {
	err := &EvaluationError{Op: ast.OpGreaterThan, Path: "spec.replicas", Message: "cannot compare string with int"}
	msg := err.Error()
	if !strings.Contains(msg, "spec.replicas") || !strings.Contains(msg, ">") {
		t.Errorf("message missing op or path: %q", msg)
	}
}

func TestErrorList(t *testing.T) {
	list := NewErrorList()
	if list.HasErrors() {
		t.Error("fresh list reports errors")
	}
	if list.ToError() != nil {
		t.Error("empty list ToError() != nil")
	}

	first := &ParseError{Message: "first"}
	list.Add(first)
	list.Add(nil) // ignored
	if list.Count() != 1 {
		t.Errorf("Count() = %d, want 1", list.Count())
	}
	if list.ToError() != first {
		t.Error("single-error list should unwrap to the sole error")
	}

	list.Add(&ParseError{Message: "second"})
	err := list.ToError()
	if err != list {
		t.Error("multi-error list should return itself")
	}
	msg := err.Error()
	if !strings.Contains(msg, "found 2 error(s)") {
		t.Errorf("message missing the count: %q", msg)
	}
	if !strings.Contains(msg, "first") || !strings.Contains(msg, "second") {
		t.Errorf("message missing individual errors: %q", msg)
	}
}

func TestExtractContext(t *testing.T) {
	source := []byte("rule a {\n    foo = 1\n}\n")
	ctx := ExtractContext(source, ast.Location{File: "t.rules", Line: 2, Column: 9}, 2)
	if !strings.Contains(ctx, "-> 2 |     foo = 1") {
		t.Errorf("context missing the marked error line:\n%s", ctx)
	}
	if !strings.Contains(ctx, "^") {
		t.Errorf("context missing the column caret:\n%s", ctx)
	}
	if !strings.Contains(ctx, "   1 | rule a {") && !strings.Contains(ctx, " 1 | rule a {") {
		t.Errorf("context missing the preceding line:\n%s", ctx)
	}
}

func TestExtractContext_OutOfRange(t *testing.T) {
	if got := ExtractContext([]byte("one line"), ast.Location{Line: 10}, 2); got != "" {
		t.Errorf("out-of-range context = %q, want empty", got)
	}
	if got := ExtractContext(nil, ast.Location{Line: 1}, 2); got != "" {
		t.Errorf("empty source context = %q, want empty", got)
	}
}

func TestWithContext_PreservesExisting(t *testing.T) {
	err := &ParseError{
		Location: ast.Location{Line: 1, Column: 1},
		Message:  "m",
		Context:  "already set",
	}
	if got := WithContext(err, []byte("source")).Context; got != "already set" {
		t.Errorf("Context = %q, want the existing excerpt kept", got)
	}
}
