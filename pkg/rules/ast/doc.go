// Package ast defines the abstract syntax tree for the Callisto rule
// language.
//
// A rule file parses into a RuleSet: an ordered list of named rule blocks.
// Each block holds an optional "when" guard and a sequence of statements.
// Statements are expression trees built from clauses (path, comparator,
// expected value), logical combinators (and/or/not), and references to
// other rules by name.
//
// The AST is a plain value tree with no behavior beyond accessors. Parsing
// lives in pkg/rules/parser, path resolution and comparison in
// pkg/rules/document, and evaluation in pkg/rules/eval. Every node carries
// a Location pointing back into the rule source for diagnostics.
//
// The tree is immutable after parsing: the evaluator reads it but never
// mutates it, so a single RuleSet may be shared across concurrent
// evaluations.
package ast
