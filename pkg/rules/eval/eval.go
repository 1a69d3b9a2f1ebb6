package eval

import (
	"fmt"

	"mercator-hq/callisto/pkg/rules/ast"
	"mercator-hq/callisto/pkg/rules/document"
	rerrors "mercator-hq/callisto/pkg/rules/errors"
	"mercator-hq/callisto/pkg/rules/report"
)

// defaultMaxDepth bounds nested rule-reference evaluation. Cycles are
// rejected statically by CheckReferences; this guard is the backstop for
// internal invariant violations, surfaced as a structured error rather
// than a stack overflow.
const defaultMaxDepth = 1000

// Evaluator evaluates rule sets against documents.
type Evaluator struct {
	strict   bool // Skip outcomes fail the overall run
	verbose  bool // include Pass/Skip clause detail in the report
	maxDepth int
}

// NewEvaluator creates an evaluator with default configuration.
func NewEvaluator() *Evaluator {
	return &Evaluator{maxDepth: defaultMaxDepth}
}

// WithStrict makes skipped rules fail the overall run status.
func (e *Evaluator) WithStrict(strict bool) *Evaluator {
	e.strict = strict
	return e
}

// WithVerbose includes passing and skipped clause detail in the report.
// Without it only failing clauses are reported per rule.
func (e *Evaluator) WithVerbose(verbose bool) *Evaluator {
	e.verbose = verbose
	return e
}

// WithMaxDepth overrides the nested-reference recursion guard.
func (e *Evaluator) WithMaxDepth(depth int) *Evaluator {
	e.maxDepth = depth
	return e
}

// Evaluate runs every rule in the set against the document and returns
// the aggregated report. The error return is reserved for structural
// problems (circular references, recursion guard); per-clause evaluation
// errors degrade the affected clause to Fail inside the report.
func (e *Evaluator) Evaluate(rs *ast.RuleSet, doc *document.Node) (*report.ValidationReport, error) {
	if err := CheckReferences(rs); err != nil {
		return nil, err
	}

	r := &run{
		rs:       rs,
		doc:      doc,
		memo:     make(map[string]*report.RuleResult),
		maxDepth: e.maxDepth,
	}

	rep := report.New(doc.Location.File, rs.Source)
	for _, rule := range rs.Rules {
		result, err := r.evalRule(rule, 0)
		if err != nil {
			return nil, err
		}
		rep.Add(e.trim(*result))
	}
	rep.Finalize(e.strict)
	return rep, nil
}

// trim drops non-failing clause detail unless verbose reporting is on.
func (e *Evaluator) trim(result report.RuleResult) report.RuleResult {
	if e.verbose {
		return result
	}
	var kept []report.ClauseResult
	for _, c := range result.Clauses {
		if c.Status == report.StatusFail {
			kept = append(kept, c)
		}
	}
	result.Clauses = kept
	return result
}

// run holds the per-evaluation state: the inputs, a memo of rule results
// so shared references evaluate once, and the recursion guard.
type run struct {
	rs       *ast.RuleSet
	doc      *document.Node
	memo     map[string]*report.RuleResult
	maxDepth int
}

func (r *run) evalRule(rule *ast.Rule, depth int) (*report.RuleResult, error) {
	if cached, ok := r.memo[rule.Name]; ok {
		return cached, nil
	}
	if depth > r.maxDepth {
		return nil, &rerrors.ReferenceError{
			Rule:    rule.Name,
			Message: fmt.Sprintf("rule evaluation exceeded recursion depth %d", r.maxDepth),
		}
	}

	result := &report.RuleResult{Name: rule.Name, Status: report.StatusSkip}

	if rule.When != nil {
		guard, err := r.evalExpr(rule.When, depth)
		if err != nil {
			return nil, err
		}
		if guard.status != report.StatusPass {
			result.Message = "when guard did not pass"
			r.memo[rule.Name] = result
			return result, nil
		}
	}

	if len(rule.Statements) == 0 {
		result.Message = "rule has no statements"
		r.memo[rule.Name] = result
		return result, nil
	}

	statuses := make([]report.Status, 0, len(rule.Statements))
	for _, stmt := range rule.Statements {
		out, err := r.evalExpr(stmt, depth)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, out.status)
		result.Clauses = append(result.Clauses, out.clauses...)
	}
	result.Status = combineAll(statuses)

	r.memo[rule.Name] = result
	return result, nil
}

func (r *run) evalExpr(expr *ast.Expr, depth int) (outcome, error) {
	switch expr.Kind {
	case ast.ExprClause:
		return r.evalClause(expr.Clause), nil

	case ast.ExprAnd, ast.ExprOr:
		statuses := make([]report.Status, 0, len(expr.Children))
		var clauses []report.ClauseResult
		for _, child := range expr.Children {
			out, err := r.evalExpr(child, depth)
			if err != nil {
				return outcome{}, err
			}
			statuses = append(statuses, out.status)
			clauses = append(clauses, out.clauses...)
		}
		status := combineAll(statuses)
		if expr.Kind == ast.ExprOr {
			status = combineAny(statuses)
		}
		return outcome{status: status, clauses: clauses}, nil

	case ast.ExprNot:
		out, err := r.evalExpr(expr.Children[0], depth)
		if err != nil {
			return outcome{}, err
		}
		return outcome{status: invert(out.status), clauses: out.clauses}, nil

	case ast.ExprRef:
		return r.evalRef(expr, depth)
	}

	return outcome{}, &rerrors.ReferenceError{
		Message: fmt.Sprintf("internal: unknown expression kind %q", expr.Kind),
	}
}

func (r *run) evalRef(expr *ast.Expr, depth int) (outcome, error) {
	rule := r.rs.Rule(expr.RefName)
	if rule == nil {
		// Undefined reference: a Fail with a diagnostic, never a crash.
		return outcome{
			status: report.StatusFail,
			clauses: []report.ClauseResult{{
				Path:     expr.RefName,
				Operator: "rule",
				Location: expr.Location.String(),
				Status:   report.StatusFail,
				Message:  fmt.Sprintf("reference to undefined rule %q", expr.RefName),
			}},
		}, nil
	}
	result, err := r.evalRule(rule, depth+1)
	if err != nil {
		return outcome{}, err
	}
	return outcome{
		status: result.Status,
		clauses: []report.ClauseResult{{
			Path:     expr.RefName,
			Operator: "rule",
			Location: expr.Location.String(),
			Status:   result.Status,
			Message:  fmt.Sprintf("rule %q evaluated to %s", expr.RefName, result.Status),
		}},
	}, nil
}

// evalClause resolves the clause path and applies the comparator to every
// located node. All located nodes must pass unless the clause carries the
// "some" quantifier.
func (r *run) evalClause(clause *ast.Clause) outcome {
	matches := document.Resolve(r.doc, clause.Path)

	if len(matches) == 0 {
		return r.emptyResolution(clause)
	}

	statuses := make([]report.Status, 0, len(matches))
	clauses := make([]report.ClauseResult, 0, len(matches))
	for _, m := range matches {
		cr := r.evalMatch(clause, m)
		statuses = append(statuses, cr.Status)
		clauses = append(clauses, cr)
	}

	status := combineAll(statuses)
	if clause.Some {
		status = combineAny(statuses)
	}
	return outcome{status: status, clauses: clauses}
}

// emptyResolution handles a path that located no nodes: Skip, unless the
// clause checks existence, which turns absence into a definite outcome.
func (r *run) emptyResolution(clause *ast.Clause) outcome {
	cr := report.ClauseResult{
		Path:     clause.Path.String(),
		Operator: operatorString(clause),
		Expected: clause.Expected.String(),
		Location: clause.Location.String(),
	}

	if clause.Op == ast.OpExists {
		if clause.Negated {
			cr.Status = report.StatusPass
			cr.Message = fmt.Sprintf("path %s does not exist", clause.Path)
		} else {
			cr.Status = report.StatusFail
			cr.Message = failMessage(clause, fmt.Sprintf("path %s does not exist", clause.Path))
		}
	} else {
		cr.Status = report.StatusSkip
		cr.Message = fmt.Sprintf("path %s matched no nodes", clause.Path)
	}

	return outcome{status: cr.Status, clauses: []report.ClauseResult{cr}}
}

func (r *run) evalMatch(clause *ast.Clause, m document.Match) report.ClauseResult {
	cr := report.ClauseResult{
		Path:     m.Path,
		Operator: operatorString(clause),
		Expected: clause.Expected.String(),
		Actual:   m.Node.String(),
		Location: clause.Location.String(),
	}
	if cr.Path == "" {
		cr.Path = clause.Path.String()
	}

	var ok bool
	var err error
	switch {
	case clause.Op == ast.OpExists:
		ok = !clause.Negated
	case clause.Op.IsUnary():
		ok, err = document.Check(m.Node, clause.Op, cr.Path)
		if err == nil && clause.Negated {
			ok = !ok
		}
	default:
		ok, err = document.Compare(m.Node, clause.Op, clause.Expected, cr.Path)
	}

	switch {
	case err != nil:
		// Type mismatch: degrade this clause to Fail, keep evaluating.
		cr.Status = report.StatusFail
		cr.Message = failMessage(clause, err.Error())
	case ok:
		cr.Status = report.StatusPass
	default:
		cr.Status = report.StatusFail
		cr.Message = failMessage(clause, defaultFailMessage(clause, cr))
	}
	return cr
}

func operatorString(clause *ast.Clause) string {
	if clause.Negated {
		return "!" + string(clause.Op)
	}
	return string(clause.Op)
}

func defaultFailMessage(clause *ast.Clause, cr report.ClauseResult) string {
	if clause.Op.IsBinary() {
		return fmt.Sprintf("expected %s %s %s, found %s",
			cr.Path, operatorString(clause), cr.Expected, cr.Actual)
	}
	return fmt.Sprintf("expected %s %s, found %s", cr.Path, operatorString(clause), cr.Actual)
}

// failMessage prefers the clause's custom << message >> when present.
func failMessage(clause *ast.Clause, fallback string) string {
	if clause.Message != "" {
		return clause.Message
	}
	return fallback
}
