// Package parser converts Callisto rule source into an ast.RuleSet.
//
// Parsing is a single pass: a hand-written lexer produces a token stream
// with source locations, and a recursive-descent parser builds the
// expression trees. Newlines separate statements inside a rule block;
// within a statement, "or" binds loosest, "and" binds tighter, and
// "not"/"!" tightest, with parentheses for explicit grouping. Ties break
// left-to-right.
//
// Rule references are symbolic at parse time: a reference to a rule
// declared later in the source (or not at all) parses fine. Binding and
// cycle detection happen in pkg/rules/eval before evaluation.
//
// The parser accumulates errors where it can recover (per statement, per
// rule block) so a single pass reports everything wrong with a source.
package parser
