package document

import (
	"strconv"
	"strings"

	"mercator-hq/callisto/pkg/rules/ast"
)

// Kind tags the structural variant of a Node.
type Kind string

const (
	KindScalar   Kind = "scalar"
	KindMapping  Kind = "mapping"
	KindSequence Kind = "sequence"
)

// ScalarKind tags the concrete type of a scalar Node.
type ScalarKind string

const (
	ScalarString ScalarKind = "string"
	ScalarInt    ScalarKind = "int"
	ScalarFloat  ScalarKind = "float"
	ScalarBool   ScalarKind = "bool"
	ScalarNull   ScalarKind = "null"
)

// Node is one node of a parsed document tree. A Node owns its children
// exclusively and is immutable after parsing.
type Node struct {
	Kind   Kind
	Scalar ScalarKind // set when Kind == KindScalar

	// Scalar payload; exactly one is meaningful, selected by Scalar.
	Str   string
	Int   int64
	Float float64
	Bool  bool

	// Mapping payload: insertion-ordered keys with a lookup index.
	keys     []string
	children map[string]*Node

	// Sequence payload.
	items []*Node

	Location ast.Location
}

// NewString returns a string scalar node.
func NewString(s string) *Node { return &Node{Kind: KindScalar, Scalar: ScalarString, Str: s} }

// NewInt returns an integer scalar node.
func NewInt(i int64) *Node { return &Node{Kind: KindScalar, Scalar: ScalarInt, Int: i} }

// NewFloat returns a float scalar node.
func NewFloat(f float64) *Node { return &Node{Kind: KindScalar, Scalar: ScalarFloat, Float: f} }

// NewBool returns a boolean scalar node.
func NewBool(b bool) *Node { return &Node{Kind: KindScalar, Scalar: ScalarBool, Bool: b} }

// NewNull returns a null scalar node.
func NewNull() *Node { return &Node{Kind: KindScalar, Scalar: ScalarNull} }

// NewMapping returns an empty mapping node. Keys are retained in
// insertion order.
func NewMapping() *Node {
	return &Node{Kind: KindMapping, children: make(map[string]*Node)}
}

// NewSequence returns a sequence node holding the given items.
func NewSequence(items ...*Node) *Node {
	return &Node{Kind: KindSequence, items: items}
}

// Set adds or replaces a mapping entry. Insertion order is preserved for
// new keys. Set is used during construction only; parsed trees are never
// mutated.
func (n *Node) Set(key string, child *Node) *Node {
	if _, ok := n.children[key]; !ok {
		n.keys = append(n.keys, key)
	}
	n.children[key] = child
	return n
}

// Append adds an item to a sequence node during construction.
func (n *Node) Append(item *Node) *Node {
	n.items = append(n.items, item)
	return n
}

// Keys returns the mapping keys in insertion order. Nil for non-mappings.
func (n *Node) Keys() []string { return n.keys }

// Child returns the mapping value for key, or nil if absent.
func (n *Node) Child(key string) *Node {
	if n.Kind != KindMapping {
		return nil
	}
	return n.children[key]
}

// HasKey returns true if the mapping contains key.
func (n *Node) HasKey(key string) bool {
	_, ok := n.children[key]
	return ok
}

// Items returns the sequence items. Nil for non-sequences.
func (n *Node) Items() []*Node { return n.items }

// Len returns the number of entries for mappings and sequences, and the
// string length for string scalars. Other scalars report zero.
func (n *Node) Len() int {
	switch n.Kind {
	case KindMapping:
		return len(n.keys)
	case KindSequence:
		return len(n.items)
	case KindScalar:
		if n.Scalar == ScalarString {
			return len(n.Str)
		}
	}
	return 0
}

// IsNull returns true for the null scalar.
func (n *Node) IsNull() bool {
	return n.Kind == KindScalar && n.Scalar == ScalarNull
}

// String renders the node for diagnostics. Scalars render their value;
// containers render a compact structural summary.
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	switch n.Kind {
	case KindScalar:
		switch n.Scalar {
		case ScalarString:
			return strconv.Quote(n.Str)
		case ScalarInt:
			return strconv.FormatInt(n.Int, 10)
		case ScalarFloat:
			return strconv.FormatFloat(n.Float, 'g', -1, 64)
		case ScalarBool:
			return strconv.FormatBool(n.Bool)
		case ScalarNull:
			return "null"
		}
	case KindMapping:
		return "{" + strings.Join(n.keys, ", ") + "}"
	case KindSequence:
		return "[" + strconv.Itoa(len(n.items)) + " items]"
	}
	return "<invalid>"
}

// Equal reports deep structural equality of two trees. Locations are
// ignored; mapping key order is significant.
func (n *Node) Equal(other *Node) bool {
	if n == nil || other == nil {
		return n == other
	}
	if n.Kind != other.Kind {
		return false
	}
	switch n.Kind {
	case KindScalar:
		if n.Scalar != other.Scalar {
			return false
		}
		switch n.Scalar {
		case ScalarString:
			return n.Str == other.Str
		case ScalarInt:
			return n.Int == other.Int
		case ScalarFloat:
			return n.Float == other.Float
		case ScalarBool:
			return n.Bool == other.Bool
		case ScalarNull:
			return true
		}
	case KindMapping:
		if len(n.keys) != len(other.keys) {
			return false
		}
		for i, key := range n.keys {
			if other.keys[i] != key {
				return false
			}
			if !n.children[key].Equal(other.children[key]) {
				return false
			}
		}
		return true
	case KindSequence:
		if len(n.items) != len(other.items) {
			return false
		}
		for i, item := range n.items {
			if !item.Equal(other.items[i]) {
				return false
			}
		}
		return true
	}
	return false
}
