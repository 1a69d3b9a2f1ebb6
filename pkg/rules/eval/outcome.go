package eval

import "mercator-hq/callisto/pkg/rules/report"

// outcome is the intermediate result of evaluating one expression node:
// an aggregate status plus every clause instantiation seen beneath it.
type outcome struct {
	status  report.Status
	clauses []report.ClauseResult
}

// combineAll aggregates child statuses under all-must-pass semantics:
// Fail if any child failed, Skip only when every child skipped.
func combineAll(statuses []report.Status) report.Status {
	if len(statuses) == 0 {
		return report.StatusSkip
	}
	sawPass := false
	for _, s := range statuses {
		switch s {
		case report.StatusFail:
			return report.StatusFail
		case report.StatusPass:
			sawPass = true
		}
	}
	if sawPass {
		return report.StatusPass
	}
	return report.StatusSkip
}

// combineAny aggregates child statuses under any-must-pass semantics:
// Pass if any child passed, Skip only when every child skipped.
func combineAny(statuses []report.Status) report.Status {
	if len(statuses) == 0 {
		return report.StatusSkip
	}
	sawFail := false
	for _, s := range statuses {
		switch s {
		case report.StatusPass:
			return report.StatusPass
		case report.StatusFail:
			sawFail = true
		}
	}
	if sawFail {
		return report.StatusFail
	}
	return report.StatusSkip
}

// invert flips Pass and Fail; Skip propagates unchanged through "not".
func invert(s report.Status) report.Status {
	switch s {
	case report.StatusPass:
		return report.StatusFail
	case report.StatusFail:
		return report.StatusPass
	}
	return report.StatusSkip
}
