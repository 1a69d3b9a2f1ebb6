// Package engine is the boundary API of the validation engine: the
// single entry point callers (CLI, embedding applications, glue layers)
// use to run checks without touching the pipeline packages directly.
package engine

import (
	"log/slog"
	"strings"
	"time"

	"mercator-hq/callisto/pkg/rules/ast"
	"mercator-hq/callisto/pkg/rules/document"
	"mercator-hq/callisto/pkg/rules/eval"
	"mercator-hq/callisto/pkg/rules/parser"
	"mercator-hq/callisto/pkg/rules/report"
	"mercator-hq/callisto/pkg/telemetry/metrics"
)

// version is the engine's semantic version. Overridable at build time
// through the CLI's ldflags; the engine constant is the source of truth
// for embedders.
var version = "0.1.0"

// Version returns the engine's semantic version identifier.
func Version() string { return version }

// Input is one named source handed to the engine: document or rule text
// plus the name used in locations and diagnostics.
type Input struct {
	Content string
	Name    string
}

// Option configures a RunChecks call.
type Option func(*options)

type options struct {
	verbose bool
	strict  bool
	metrics *metrics.CheckMetrics
	logger  *slog.Logger
}

// WithVerbose includes passing and skipped clause detail in the report.
func WithVerbose(verbose bool) Option {
	return func(o *options) { o.verbose = verbose }
}

// WithStrict makes skipped rules fail the overall run status.
func WithStrict(strict bool) Option {
	return func(o *options) { o.strict = strict }
}

// WithMetrics records run activity to the given metrics. Nil is allowed.
func WithMetrics(m *metrics.CheckMetrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithLogger sets the logger for run diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// RunChecks parses the document and rules, evaluates, and returns the
// validation report serialized as JSON.
//
// Errors are returned for malformed inputs (parse errors) and structural
// rule problems (circular references); evaluation-time errors on
// individual clauses degrade those clauses to Fail inside the report and
// do not error the call. Each call constructs its own document tree and
// rule set, so concurrent calls need no synchronization.
func RunChecks(data Input, rulesInput Input, opts ...Option) (string, error) {
	rep, err := Evaluate(data, rulesInput, opts...)
	if err != nil {
		return "", err
	}
	return rep.ToJSON()
}

// Evaluate is RunChecks without serialization, for callers that want the
// structured report.
func Evaluate(data Input, rulesInput Input, opts ...Option) (*report.ValidationReport, error) {
	return EvaluateAll(data, []Input{rulesInput}, opts...)
}

// EvaluateAll evaluates rules drawn from several sources against one
// document. Rule files are parsed independently and merged into a single
// rule set, so a rule in one file may reference a rule in another; rule
// names must be unique across all sources.
func EvaluateAll(data Input, rulesInputs []Input, opts ...Option) (*report.ValidationReport, error) {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	started := time.Now()

	doc, err := document.Parse([]byte(data.Content), data.Name)
	if err != nil {
		o.metrics.RecordParseError("document")
		return nil, err
	}

	sets := make([]*ast.RuleSet, 0, len(rulesInputs))
	names := make([]string, 0, len(rulesInputs))
	for _, in := range rulesInputs {
		set, err := parser.Parse([]byte(in.Content), in.Name)
		if err != nil {
			o.metrics.RecordParseError("rules")
			return nil, err
		}
		sets = append(sets, set)
		names = append(names, in.Name)
	}
	rs, err := ast.Merge(strings.Join(names, ","), sets...)
	if err != nil {
		return nil, err
	}

	rep, err := eval.NewEvaluator().
		WithStrict(o.strict).
		WithVerbose(o.verbose).
		Evaluate(rs, doc)
	if err != nil {
		return nil, err
	}

	duration := time.Since(started)
	o.metrics.RecordCheck(string(rep.Status), duration)
	for _, rule := range rep.Rules {
		o.metrics.RecordRuleOutcome(rule.Name, string(rule.Status))
	}

	o.logger.Debug("validation run complete",
		"document", data.Name,
		"rules", rs.Source,
		"status", rep.Status,
		"rules_evaluated", len(rep.Rules),
		"duration_ms", duration.Milliseconds(),
	)

	return rep, nil
}
