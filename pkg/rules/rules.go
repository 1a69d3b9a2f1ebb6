package rules

import (
	"mercator-hq/callisto/pkg/rules/ast"
	"mercator-hq/callisto/pkg/rules/document"
	"mercator-hq/callisto/pkg/rules/eval"
	"mercator-hq/callisto/pkg/rules/parser"
	"mercator-hq/callisto/pkg/rules/report"
)

// ParseRules parses rule source into a RuleSet. The name labels the
// source in locations and diagnostics.
func ParseRules(content []byte, name string) (*ast.RuleSet, error) {
	return parser.Parse(content, name)
}

// ParseDocument parses a YAML or JSON document into a Node tree.
func ParseDocument(content []byte, name string) (*document.Node, error) {
	return document.Parse(content, name)
}

// Evaluate runs a parsed rule set against a parsed document with default
// evaluator settings.
func Evaluate(rs *ast.RuleSet, doc *document.Node) (*report.ValidationReport, error) {
	return eval.NewEvaluator().Evaluate(rs, doc)
}

// ParseAndEvaluate is a convenience function covering the whole pipeline:
// parse the document, parse the rules, evaluate, and return the report.
func ParseAndEvaluate(documentText []byte, documentName string, rulesText []byte, rulesName string) (*report.ValidationReport, error) {
	doc, err := ParseDocument(documentText, documentName)
	if err != nil {
		return nil, err
	}
	rs, err := ParseRules(rulesText, rulesName)
	if err != nil {
		return nil, err
	}
	return Evaluate(rs, doc)
}
