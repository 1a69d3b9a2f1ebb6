// Package report defines the validation report: the aggregated outcome of
// evaluating a rule set against a document.
//
// Reports are created fresh per validation run, filled by the evaluator in
// rule declaration order, and immutable once returned. The JSON form
// round-trips: re-parsing a serialized report reproduces the same overall
// status and ordered outcome list.
package report

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Status is the outcome of a rule, clause, or whole run.
type Status string

const (
	// StatusPass indicates every checked condition held.
	StatusPass Status = "PASS"
	// StatusFail indicates at least one condition did not hold.
	StatusFail Status = "FAIL"
	// StatusSkip indicates the condition did not apply to the document
	// (for example a path that resolved to nothing).
	StatusSkip Status = "SKIP"
)

// ClauseResult is the outcome of one clause instantiation. A clause that
// matches multiple document locations produces one result per location.
type ClauseResult struct {
	Path     string `json:"path"`               // concrete document path checked
	Operator string `json:"operator"`           // comparator applied
	Expected string `json:"expected,omitempty"` // expected value, rule-source syntax
	Actual   string `json:"actual,omitempty"`   // value found in the document
	Location string `json:"location,omitempty"` // rule source location of the clause
	Status   Status `json:"status"`
	Message  string `json:"message,omitempty"` // diagnostic or custom message
}

// RuleResult is the aggregated outcome of one named rule.
type RuleResult struct {
	Name    string         `json:"name"`
	Status  Status         `json:"status"`
	Message string         `json:"message,omitempty"`
	Clauses []ClauseResult `json:"clauses,omitempty"`
}

// ValidationReport is the top-level result of one validation run.
// Rules appear in the order they were declared in the rule source.
type ValidationReport struct {
	RunID        string       `json:"run_id"`
	DocumentName string       `json:"document_name"`
	RulesName    string       `json:"rules_name"`
	Timestamp    time.Time    `json:"timestamp"`
	Status       Status       `json:"status"`
	Rules        []RuleResult `json:"rules"`
}

// New creates an empty report for a validation run with a fresh run ID.
func New(documentName, rulesName string) *ValidationReport {
	return &ValidationReport{
		RunID:        uuid.NewString(),
		DocumentName: documentName,
		RulesName:    rulesName,
		Timestamp:    time.Now().UTC(),
	}
}

// Add appends a rule result, preserving declaration order.
func (r *ValidationReport) Add(result RuleResult) {
	r.Rules = append(r.Rules, result)
}

// Finalize computes the overall status: Fail if any rule failed, Pass
// otherwise. Skipped rules do not affect the overall status unless strict
// is set, in which case any Skip also fails the run.
func (r *ValidationReport) Finalize(strict bool) {
	r.Status = StatusPass
	for _, rule := range r.Rules {
		switch rule.Status {
		case StatusFail:
			r.Status = StatusFail
			return
		case StatusSkip:
			if strict {
				r.Status = StatusFail
				return
			}
		}
	}
}

// Passed returns the number of rules with status Pass.
func (r *ValidationReport) Passed() int { return r.count(StatusPass) }

// Failed returns the number of rules with status Fail.
func (r *ValidationReport) Failed() int { return r.count(StatusFail) }

// Skipped returns the number of rules with status Skip.
func (r *ValidationReport) Skipped() int { return r.count(StatusSkip) }

func (r *ValidationReport) count(status Status) int {
	n := 0
	for _, rule := range r.Rules {
		if rule.Status == status {
			n++
		}
	}
	return n
}

// ToJSON serializes the report. The output is stable for identical
// evaluation outcomes apart from RunID and Timestamp.
func (r *ValidationReport) ToJSON() (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize report: %w", err)
	}
	return string(data), nil
}

// FromJSON parses a serialized report back into its structured form.
func FromJSON(data []byte) (*ValidationReport, error) {
	var r ValidationReport
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}
	return &r, nil
}
