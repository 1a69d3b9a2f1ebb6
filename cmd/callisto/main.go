// Callisto validates structured documents (YAML/JSON) against rule files
// written in the Callisto rule language.
//
// Usage:
//
//	# Validate a document against rules
//	callisto check --data template.yaml --rules checks.rules
//
//	# Parse rules and report diagnostics without evaluating
//	callisto lint checks.rules
//
//	# Run expectation files against rules
//	callisto test --rules checks.rules cases.yaml
//
//	# Re-validate whenever inputs change
//	callisto watch --data template.yaml --rules checks.rules
//
//	# Query past validation runs
//	callisto history --status FAIL --limit 10
//
//	# Show version information
//	callisto version
package main

func main() {
	Execute()
}
