package errors

import (
	"fmt"
	"strings"

	"mercator-hq/callisto/pkg/rules/ast"
)

// ParseError reports malformed rule or document source. It aborts the
// validation run: no partial report is produced.
type ParseError struct {
	Location   ast.Location // position of the offending token or YAML node
	Message    string
	Context    string // surrounding source lines, may be empty
	Suggestion string // suggested fix, may be empty
}

// Error implements the error interface. The rendering mirrors the CLI
// diagnostic format: message, location arrow, excerpt, suggestion.
func (e *ParseError) Error() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[parse] %s\n", e.Message))
	if e.Location.IsValid() {
		sb.WriteString(fmt.Sprintf("  --> %s\n", e.Location.String()))
	}
	if e.Context != "" {
		sb.WriteString("  |\n")
		sb.WriteString(e.Context)
		sb.WriteString("  |\n")
	}
	if e.Suggestion != "" {
		sb.WriteString(fmt.Sprintf("  = suggestion: %s\n", e.Suggestion))
	}
	return sb.String()
}

// ReferenceError reports a structurally unsound rule reference, such as a
// circular chain (A -> B -> A) or a resolution that exceeded the recursion
// guard.
type ReferenceError struct {
	Rule    string   // rule where resolution started
	Chain   []string // reference chain that triggered the error
	Message string
}

// Error implements the error interface.
func (e *ReferenceError) Error() string {
	if len(e.Chain) > 0 {
		return fmt.Sprintf("[reference] %s: %s (chain: %s)",
			e.Rule, e.Message, strings.Join(e.Chain, " -> "))
	}
	return fmt.Sprintf("[reference] %s: %s", e.Rule, e.Message)
}

// EvaluationError reports a type incompatibility during clause comparison.
// It degrades the clause to Fail; the run continues.
type EvaluationError struct {
	Op      ast.Operator
	Path    string // document path of the value under comparison
	Message string
}

// Error implements the error interface.
func (e *EvaluationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("[evaluation] %s at %s: %s", e.Op, e.Path, e.Message)
	}
	return fmt.Sprintf("[evaluation] %s: %s", e.Op, e.Message)
}

// ErrorList accumulates multiple errors so parsing can report everything
// wrong with a source instead of stopping at the first problem.
type ErrorList struct {
	Errors []error
}

// NewErrorList creates a new empty error list.
func NewErrorList() *ErrorList {
	return &ErrorList{}
}

// Add appends an error to the list. Nil errors are ignored.
func (el *ErrorList) Add(err error) {
	if err != nil {
		el.Errors = append(el.Errors, err)
	}
}

// HasErrors returns true if the list contains any errors.
func (el *ErrorList) HasErrors() bool { return len(el.Errors) > 0 }

// Count returns the number of accumulated errors.
func (el *ErrorList) Count() int { return len(el.Errors) }

// Error implements the error interface, rendering all accumulated errors.
func (el *ErrorList) Error() string {
	if !el.HasErrors() {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("found %d error(s):\n\n", el.Count()))
	for i, err := range el.Errors {
		sb.WriteString(fmt.Sprintf("error %d:\n", i+1))
		sb.WriteString(err.Error())
		sb.WriteString("\n")
	}
	return sb.String()
}

// ToError returns nil when the list is empty, the sole error when it holds
// exactly one, and the list itself otherwise.
func (el *ErrorList) ToError() error {
	switch len(el.Errors) {
	case 0:
		return nil
	case 1:
		return el.Errors[0]
	default:
		return el
	}
}
