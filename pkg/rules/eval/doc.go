// Package eval evaluates a parsed rule set against a parsed document.
//
// Evaluation is a pure function of (rules, document): no state persists
// across calls and concurrent evaluations with independent inputs need no
// synchronization. Each top-level rule resolves its clause paths against
// the document, applies comparators to every located node, and aggregates
// outcomes bottom-up through the expression tree.
//
// Aggregation semantics:
//
//   - Clause: all located nodes must pass; the "some" quantifier switches
//     to any-must-pass. An empty resolution is Skip, except for "exists"
//     clauses, which fail (or pass when negated).
//   - and: Fail if any child fails; Skip only when every child skipped.
//   - or: Pass if any child passes; Skip only when every child skipped.
//   - not: inverts Pass/Fail of its single child; Skip passes through.
//   - when guards: a guard that does not pass skips the whole rule.
//
// Rule references are bound by name within the same rule set before
// evaluation. Circular reference chains are a structural error for the
// run; references to undefined rules degrade to a Fail outcome on the
// referencing clause. Type mismatches during comparison degrade the
// affected clause to Fail with the error as its diagnostic; one malformed
// clause never prevents reporting on the rest.
package eval
