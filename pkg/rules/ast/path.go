package ast

import (
	"strconv"
	"strings"
)

// SegmentKind tags one step of a path expression.
type SegmentKind string

const (
	SegmentKey      SegmentKind = "key"       // exact mapping key
	SegmentIndex    SegmentKind = "index"     // sequence index, negative counts from the end
	SegmentAnyValue SegmentKind = "any_value" // "*": every value of a mapping or sequence
	SegmentAnyIndex SegmentKind = "any_index" // "[*]": every element of a sequence
	SegmentDescend  SegmentKind = "descend"   // "..": this node and every descendant
)

// Segment is a single step in a Path.
type Segment struct {
	Kind  SegmentKind
	Key   string // set for SegmentKey
	Index int    // set for SegmentIndex
}

// Path locates nodes within a document tree. A path resolves to a set of
// zero or more nodes; wildcard and descend segments may match any number
// of them, including none. Paths never own the nodes they find.
type Path struct {
	Segments []Segment
	Location Location
}

// KeyPath builds a Path from plain key segments. Test and API convenience.
func KeyPath(keys ...string) *Path {
	p := &Path{Segments: make([]Segment, len(keys))}
	for i, k := range keys {
		p.Segments[i] = Segment{Kind: SegmentKey, Key: k}
	}
	return p
}

// HasWildcard returns true if any segment can match more than one node.
func (p *Path) HasWildcard() bool {
	for _, s := range p.Segments {
		switch s.Kind {
		case SegmentAnyValue, SegmentAnyIndex, SegmentDescend:
			return true
		}
	}
	return false
}

// String renders the path in rule-source syntax, e.g. "items[*].ok" or
// "foo..bar".
func (p *Path) String() string {
	var sb strings.Builder
	afterDescend := false
	for i, s := range p.Segments {
		dotted := i > 0 && !afterDescend
		afterDescend = false
		switch s.Kind {
		case SegmentKey:
			if dotted {
				sb.WriteByte('.')
			}
			if needsQuoting(s.Key) {
				sb.WriteString(strconv.Quote(s.Key))
			} else {
				sb.WriteString(s.Key)
			}
		case SegmentIndex:
			sb.WriteByte('[')
			sb.WriteString(strconv.Itoa(s.Index))
			sb.WriteByte(']')
		case SegmentAnyValue:
			if dotted {
				sb.WriteByte('.')
			}
			sb.WriteByte('*')
		case SegmentAnyIndex:
			sb.WriteString("[*]")
		case SegmentDescend:
			sb.WriteString("..")
			afterDescend = true
		}
	}
	return sb.String()
}

func needsQuoting(key string) bool {
	if key == "" {
		return true
	}
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return true
		}
	}
	return false
}
