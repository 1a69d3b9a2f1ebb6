package document

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"mercator-hq/callisto/pkg/rules/ast"
	rerrors "mercator-hq/callisto/pkg/rules/errors"
)

// yaml.v3 reports syntax errors as strings like "yaml: line 3: ...".
var yamlLineRe = regexp.MustCompile(`yaml: line (\d+):\s*(.*)`)

// Parse converts YAML or JSON source into a Node tree. The name labels the
// source in locations and diagnostics. Errors are *errors.ParseError with
// position information where the YAML parser provides it.
//
// An empty document parses to a null node. Duplicate mapping keys are
// rejected: diagnostics depend on a key resolving to exactly one node.
func Parse(content []byte, name string) (*Node, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(content, &root); err != nil {
		return nil, rerrors.WithContext(yamlParseError(err, name), content)
	}

	if root.Kind == 0 || len(root.Content) == 0 {
		// Empty input is a valid (null) document.
		node := NewNull()
		node.Location = ast.Location{File: name, Line: 1, Column: 1}
		return node, nil
	}

	node, err := convertYAML(root.Content[0], name, 0)
	if err != nil {
		if perr, ok := err.(*rerrors.ParseError); ok {
			return nil, rerrors.WithContext(perr, content)
		}
		return nil, err
	}
	return node, nil
}

func yamlParseError(err error, name string) *rerrors.ParseError {
	perr := &rerrors.ParseError{
		Location:   ast.Location{File: name},
		Message:    err.Error(),
		Suggestion: "check YAML syntax (indentation, colons, quotes)",
	}
	if m := yamlLineRe.FindStringSubmatch(err.Error()); m != nil {
		line, _ := strconv.Atoi(m[1])
		perr.Location.Line = line
		perr.Location.Column = 1
		perr.Message = m[2]
	}
	return perr
}

// maxYAMLDepth bounds alias/nesting recursion during conversion.
const maxYAMLDepth = 200

func convertYAML(yn *yaml.Node, name string, depth int) (*Node, error) {
	if depth > maxYAMLDepth {
		return nil, &rerrors.ParseError{
			Location: location(yn, name),
			Message:  fmt.Sprintf("document nesting exceeds %d levels", maxYAMLDepth),
		}
	}

	switch yn.Kind {
	case yaml.AliasNode:
		return convertYAML(yn.Alias, name, depth+1)

	case yaml.ScalarNode:
		return convertScalar(yn, name)

	case yaml.MappingNode:
		node := NewMapping()
		node.Location = location(yn, name)
		for i := 0; i+1 < len(yn.Content); i += 2 {
			keyNode, valNode := yn.Content[i], yn.Content[i+1]
			key := keyNode.Value
			if node.HasKey(key) {
				return nil, &rerrors.ParseError{
					Location:   location(keyNode, name),
					Message:    fmt.Sprintf("duplicate mapping key %q", key),
					Suggestion: "remove or rename the duplicate key",
				}
			}
			child, err := convertYAML(valNode, name, depth+1)
			if err != nil {
				return nil, err
			}
			node.Set(key, child)
		}
		return node, nil

	case yaml.SequenceNode:
		node := NewSequence()
		node.Location = location(yn, name)
		for _, itemNode := range yn.Content {
			item, err := convertYAML(itemNode, name, depth+1)
			if err != nil {
				return nil, err
			}
			node.Append(item)
		}
		return node, nil

	default:
		return nil, &rerrors.ParseError{
			Location: location(yn, name),
			Message:  fmt.Sprintf("unsupported YAML node kind %d", yn.Kind),
		}
	}
}

func convertScalar(yn *yaml.Node, name string) (*Node, error) {
	loc := location(yn, name)
	var node *Node

	switch yn.Tag {
	case "!!null", "":
		node = NewNull()
	case "!!bool":
		b, err := strconv.ParseBool(strings.ToLower(yn.Value))
		if err != nil {
			return nil, &rerrors.ParseError{
				Location: loc,
				Message:  fmt.Sprintf("invalid boolean %q", yn.Value),
			}
		}
		node = NewBool(b)
	case "!!int":
		i, err := strconv.ParseInt(yn.Value, 0, 64)
		if err != nil {
			// Out-of-range integers degrade to float rather than failing.
			f, ferr := strconv.ParseFloat(yn.Value, 64)
			if ferr != nil {
				return nil, &rerrors.ParseError{
					Location: loc,
					Message:  fmt.Sprintf("invalid integer %q", yn.Value),
				}
			}
			node = NewFloat(f)
		} else {
			node = NewInt(i)
		}
	case "!!float":
		f, err := strconv.ParseFloat(yn.Value, 64)
		if err != nil {
			return nil, &rerrors.ParseError{
				Location: loc,
				Message:  fmt.Sprintf("invalid float %q", yn.Value),
			}
		}
		node = NewFloat(f)
	default:
		// !!str and any custom tags are kept as strings.
		node = NewString(yn.Value)
	}

	node.Location = loc
	return node, nil
}

func location(yn *yaml.Node, name string) ast.Location {
	return ast.Location{File: name, Line: yn.Line, Column: yn.Column}
}
