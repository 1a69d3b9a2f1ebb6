package document

import (
	"fmt"
	"regexp"

	"mercator-hq/callisto/pkg/rules/ast"
	rerrors "mercator-hq/callisto/pkg/rules/errors"
)

// Compare applies a binary comparator to a located node and the clause's
// expected value. Comparison is explicitly tagged: values of incompatible
// kinds produce an *errors.EvaluationError instead of coercing. The one
// deliberate widening is int/float, which compare numerically.
//
// The path parameter labels the node in error diagnostics.
func Compare(node *Node, op ast.Operator, expected *ast.Value, path string) (bool, error) {
	switch op {
	case ast.OpEqual:
		return equal(node, expected, op, path)
	case ast.OpNotEqual:
		ok, err := equal(node, expected, ast.OpEqual, path)
		if err != nil {
			return false, &rerrors.EvaluationError{Op: op, Path: path, Message: evalMessage(err)}
		}
		return !ok, nil
	case ast.OpGreaterThan, ast.OpGreaterEqual, ast.OpLessThan, ast.OpLessEqual:
		return order(node, expected, op, path)
	case ast.OpIn:
		return contains(node, expected, op, path)
	case ast.OpMatches:
		return matches(node, expected, op, path)
	default:
		return false, &rerrors.EvaluationError{
			Op: op, Path: path,
			Message: "operator requires no expected value",
		}
	}
}

// Check applies a unary comparator to a located node. Exists is handled
// at resolution level by the evaluator and is not accepted here.
func Check(node *Node, op ast.Operator, path string) (bool, error) {
	switch op {
	case ast.OpEmpty:
		switch node.Kind {
		case KindMapping, KindSequence:
			return node.Len() == 0, nil
		case KindScalar:
			if node.Scalar == ScalarString {
				return node.Str == "", nil
			}
			if node.Scalar == ScalarNull {
				return true, nil
			}
		}
		return false, &rerrors.EvaluationError{
			Op: op, Path: path,
			Message: fmt.Sprintf("empty is not defined for %s values", scalarName(node)),
		}
	case ast.OpIsString:
		return node.Kind == KindScalar && node.Scalar == ScalarString, nil
	case ast.OpIsInt:
		return node.Kind == KindScalar && node.Scalar == ScalarInt, nil
	case ast.OpIsBool:
		return node.Kind == KindScalar && node.Scalar == ScalarBool, nil
	case ast.OpIsList:
		return node.Kind == KindSequence, nil
	case ast.OpIsMap:
		return node.Kind == KindMapping, nil
	default:
		return false, &rerrors.EvaluationError{
			Op: op, Path: path,
			Message: "operator requires an expected value",
		}
	}
}

func equal(node *Node, expected *ast.Value, op ast.Operator, path string) (bool, error) {
	switch expected.Type {
	case ast.ValueTypeString:
		if isScalar(node, ScalarString) {
			return node.Str == expected.Str, nil
		}
	case ast.ValueTypeBool:
		if isScalar(node, ScalarBool) {
			return node.Bool == expected.Bool, nil
		}
	case ast.ValueTypeNull:
		if node.Kind == KindScalar {
			return node.Scalar == ScalarNull, nil
		}
	case ast.ValueTypeInt, ast.ValueTypeFloat:
		if got, ok := numeric(node); ok {
			return got == numericValue(expected), nil
		}
	case ast.ValueTypeList:
		if node.Kind == KindSequence {
			items := node.Items()
			if len(items) != len(expected.List) {
				return false, nil
			}
			for i, item := range items {
				ok, err := equal(item, expected.List[i], op, path)
				if err != nil || !ok {
					return false, err
				}
			}
			return true, nil
		}
	}
	return false, incompatible(node, expected, op, path)
}

func order(node *Node, expected *ast.Value, op ast.Operator, path string) (bool, error) {
	// Numeric ordering.
	if got, ok := numeric(node); ok && (expected.Type == ast.ValueTypeInt || expected.Type == ast.ValueTypeFloat) {
		want := numericValue(expected)
		switch op {
		case ast.OpGreaterThan:
			return got > want, nil
		case ast.OpGreaterEqual:
			return got >= want, nil
		case ast.OpLessThan:
			return got < want, nil
		case ast.OpLessEqual:
			return got <= want, nil
		}
	}
	// Lexicographic ordering for strings.
	if isScalar(node, ScalarString) && expected.Type == ast.ValueTypeString {
		switch op {
		case ast.OpGreaterThan:
			return node.Str > expected.Str, nil
		case ast.OpGreaterEqual:
			return node.Str >= expected.Str, nil
		case ast.OpLessThan:
			return node.Str < expected.Str, nil
		case ast.OpLessEqual:
			return node.Str <= expected.Str, nil
		}
	}
	return false, incompatible(node, expected, op, path)
}

func contains(node *Node, expected *ast.Value, op ast.Operator, path string) (bool, error) {
	if expected.Type != ast.ValueTypeList {
		return false, &rerrors.EvaluationError{
			Op: op, Path: path,
			Message: fmt.Sprintf("in requires a list, got %s", expected.Type),
		}
	}
	for _, candidate := range expected.List {
		// Kind mismatches against individual list members are non-matches,
		// not errors: a mixed list is a legitimate membership set.
		ok, err := equal(node, candidate, op, path)
		if err == nil && ok {
			return true, nil
		}
	}
	return false, nil
}

func matches(node *Node, expected *ast.Value, op ast.Operator, path string) (bool, error) {
	if !isScalar(node, ScalarString) {
		return false, incompatible(node, expected, op, path)
	}
	var re *regexp.Regexp
	switch expected.Type {
	case ast.ValueTypeRegex:
		re = expected.Regex
	case ast.ValueTypeString:
		compiled, err := regexp.Compile(expected.Str)
		if err != nil {
			return false, &rerrors.EvaluationError{
				Op: op, Path: path,
				Message: fmt.Sprintf("invalid pattern %q: %v", expected.Str, err),
			}
		}
		re = compiled
	default:
		return false, &rerrors.EvaluationError{
			Op: op, Path: path,
			Message: fmt.Sprintf("matches requires a pattern, got %s", expected.Type),
		}
	}
	return re.MatchString(node.Str), nil
}

// numeric returns the node's value as float64 when the node is an int or
// float scalar.
func numeric(node *Node) (float64, bool) {
	if node.Kind != KindScalar {
		return 0, false
	}
	switch node.Scalar {
	case ScalarInt:
		return float64(node.Int), true
	case ScalarFloat:
		return node.Float, true
	}
	return 0, false
}

func numericValue(v *ast.Value) float64 {
	if v.Type == ast.ValueTypeInt {
		return float64(v.Int)
	}
	return v.Float
}

func isScalar(node *Node, kind ScalarKind) bool {
	return node.Kind == KindScalar && node.Scalar == kind
}

func scalarName(node *Node) string {
	if node.Kind == KindScalar {
		return string(node.Scalar)
	}
	return string(node.Kind)
}

func incompatible(node *Node, expected *ast.Value, op ast.Operator, path string) error {
	return &rerrors.EvaluationError{
		Op: op, Path: path,
		Message: fmt.Sprintf("cannot compare %s value %s with %s %s",
			scalarName(node), node.String(), expected.Type, expected.String()),
	}
}

func evalMessage(err error) string {
	if ee, ok := err.(*rerrors.EvaluationError); ok {
		return ee.Message
	}
	return err.Error()
}
