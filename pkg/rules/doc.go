// Package rules provides parsing and evaluation for the Callisto rule
// language.
//
// The rule language is a declarative grammar for validating structured
// documents (YAML or JSON). Rules describe conditions a document must
// satisfy; evaluating a rule set against a document produces a validation
// report with per-clause pass/fail/skip outcomes and diagnostics.
//
// # Architecture
//
// The package is organized into subpackages:
//
//   - document: normalized document tree, YAML/JSON parsing, path
//     resolution, typed comparison
//   - ast: abstract syntax tree for parsed rule sets
//   - parser: lexer and recursive-descent parser for rule source
//   - eval: evaluator with reference binding and cycle detection
//   - report: validation report types and JSON serialization
//   - errors: typed error values with location and suggestions
//
// # Basic Usage
//
// Parse a document and a rule set, then evaluate:
//
//	doc, err := rules.ParseDocument(documentText, "config.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	rs, err := rules.ParseRules(rulesText, "checks.rules")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	rep, err := rules.Evaluate(rs, doc)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println("Status:", rep.Status)
//
// # Rule Language
//
// A rule source is a sequence of named rule blocks. Statements inside a
// block are separated by newlines and all must pass:
//
//	# Containers must not run privileged and must set a memory limit.
//	rule container_hardening {
//	    spec.containers[*].securityContext.privileged != true
//	    spec.containers[*].resources.limits.memory exists
//	}
//
//	rule approved_region when metadata.region exists {
//	    metadata.region in ["eu-west-1", "eu-central-1"]
//	}
//
//	rule production_ready {
//	    container_hardening          # reference to another rule
//	    approved_region or metadata.exempt == true
//	}
//
// Paths are dotted with optional brackets: "a.b", "items[0].name",
// "items[*].ok", "spec.*.image", and ".." for recursive descent
// ("spec..image" checks every image anywhere under spec). Comparators:
// ==, !=, <, <=, >, >=, in, matches, and the unary exists, empty,
// is_string, is_int, is_bool, is_list, is_map (each negatable with "!").
// "some path == value" passes when any located node matches instead of
// requiring all. A clause may carry a custom failure message:
//
//	spec.replicas >= 2 << production deployments need at least two replicas >>
//
// Within a statement "or" binds loosest, "and" tighter, "not" tightest;
// parentheses group explicitly and ties break left-to-right.
package rules
