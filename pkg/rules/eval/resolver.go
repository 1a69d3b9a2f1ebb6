package eval

import (
	"fmt"

	"mercator-hq/callisto/pkg/rules/ast"
	rerrors "mercator-hq/callisto/pkg/rules/errors"
)

// CheckReferences verifies that rule references within the set are
// structurally sound: every reference chain must be acyclic. Forward
// references are fine; references to undefined rules are not flagged here
// (they degrade to a Fail outcome at evaluation time).
//
// Detection is a depth-first walk with tricolor marking over the
// reference graph, so a cycle is found in one pass without unbounded
// recursion.
func CheckReferences(rs *ast.RuleSet) error {
	const (
		white = iota // unvisited
		gray         // on the current path
		black        // fully explored
	)
	color := make(map[string]int, rs.Len())

	var visit func(name string, chain []string) error
	visit = func(name string, chain []string) error {
		rule := rs.Rule(name)
		if rule == nil {
			return nil // undefined: evaluation-time concern
		}
		switch color[name] {
		case gray:
			return &rerrors.ReferenceError{
				Rule:    chain[0],
				Chain:   append(chain, name),
				Message: fmt.Sprintf("circular rule reference involving %q", name),
			}
		case black:
			return nil
		}
		color[name] = gray
		for _, ref := range rule.References() {
			if err := visit(ref, append(chain, name)); err != nil {
				return err
			}
		}
		color[name] = black
		return nil
	}

	for _, rule := range rs.Rules {
		if err := visit(rule.Name, nil); err != nil {
			return err
		}
	}
	return nil
}
