// Package errors defines the typed error values shared across the rule
// engine.
//
// The taxonomy follows the engine's failure modes:
//
//   - ParseError: malformed rule or document source. Carries the source
//     location, an optional excerpt of the offending lines, and an
//     optional suggestion. Parse errors abort a validation run entirely.
//   - ReferenceError: a rule reference problem that makes the rule set
//     structurally unsound, such as a circular reference chain. Undefined
//     references degrade a single clause to Fail instead and are reported
//     through the clause diagnostic, not through this type.
//   - EvaluationError: a type mismatch while comparing values, such as
//     applying a numeric comparator to a string. These degrade the
//     affected clause to Fail with the error text as diagnostic; they
//     never abort the run.
//
// All errors are returned as values. Nothing in the engine panics on bad
// input.
package errors
