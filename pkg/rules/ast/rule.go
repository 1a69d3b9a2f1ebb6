package ast

import "fmt"

// Rule is a named rule block. Its statements are evaluated in order and
// combined with all-must-pass semantics; an optional When guard skips the
// whole block when it does not pass.
type Rule struct {
	Name       string
	When       *Expr // optional guard; nil means always evaluate
	Statements []*Expr
	Location   Location
}

// References returns the names of all rules this rule refers to, in
// source order, including references inside the When guard.
func (r *Rule) References() []string {
	var refs []string
	visit := func(e *Expr) bool {
		if e.Kind == ExprRef {
			refs = append(refs, e.RefName)
		}
		return true
	}
	r.When.Walk(visit)
	for _, stmt := range r.Statements {
		stmt.Walk(visit)
	}
	return refs
}

// RuleSet is the parsed form of one or more rule sources: an ordered list
// of named rules plus a name index. It is immutable after parsing and is
// consumed read-only by the evaluator.
type RuleSet struct {
	Rules  []*Rule
	Source string // name of the source the rules were parsed from

	byName map[string]*Rule
}

// NewRuleSet builds a RuleSet from rules in declaration order.
// Duplicate names are rejected by the parser before this point; if one
// slips through, the first declaration wins.
func NewRuleSet(source string, rules []*Rule) *RuleSet {
	rs := &RuleSet{
		Rules:  rules,
		Source: source,
		byName: make(map[string]*Rule, len(rules)),
	}
	for _, r := range rules {
		if _, ok := rs.byName[r.Name]; !ok {
			rs.byName[r.Name] = r
		}
	}
	return rs
}

// Merge combines rule sets from several sources into one, preserving
// declaration order across sources. Rule names must stay unique; a
// duplicate across sources is an error since references would become
// ambiguous.
func Merge(source string, sets ...*RuleSet) (*RuleSet, error) {
	var rules []*Rule
	declared := make(map[string]string) // name -> source
	for _, set := range sets {
		for _, r := range set.Rules {
			if prev, ok := declared[r.Name]; ok {
				return nil, fmt.Errorf("rule %q declared in both %s and %s", r.Name, prev, set.Source)
			}
			declared[r.Name] = set.Source
			rules = append(rules, r)
		}
	}
	return NewRuleSet(source, rules), nil
}

// Rule returns the rule with the given name, or nil if not declared.
func (rs *RuleSet) Rule(name string) *Rule {
	return rs.byName[name]
}

// HasRule returns true if a rule with the given name is declared.
func (rs *RuleSet) HasRule(name string) bool {
	_, ok := rs.byName[name]
	return ok
}

// Len returns the number of declared rules.
func (rs *RuleSet) Len() int { return len(rs.Rules) }
