package document

import (
	"strconv"

	"mercator-hq/callisto/pkg/rules/ast"
)

// Match is one node located by path resolution, together with the
// concrete path that reached it (wildcards replaced by the keys and
// indices actually taken). Matches hold weak references: the document
// tree keeps ownership.
type Match struct {
	Node *Node
	Path string
}

// Resolve walks a path expression against a document tree and returns
// every node it locates, in document order. An empty result is a valid
// outcome: wildcard segments may match zero nodes and missing keys simply
// produce no matches.
func Resolve(root *Node, path *ast.Path) []Match {
	if root == nil || path == nil {
		return nil
	}
	current := []Match{{Node: root, Path: ""}}
	for _, seg := range path.Segments {
		if len(current) == 0 {
			return nil
		}
		var next []Match
		for _, m := range current {
			next = append(next, resolveSegment(m, seg)...)
		}
		current = next
	}
	return current
}

func resolveSegment(m Match, seg ast.Segment) []Match {
	switch seg.Kind {
	case ast.SegmentKey:
		if m.Node.Kind != KindMapping {
			return nil
		}
		child := m.Node.Child(seg.Key)
		if child == nil {
			return nil
		}
		return []Match{{Node: child, Path: joinKey(m.Path, seg.Key)}}

	case ast.SegmentIndex:
		if m.Node.Kind != KindSequence {
			return nil
		}
		items := m.Node.Items()
		idx := seg.Index
		if idx < 0 {
			idx += len(items)
		}
		if idx < 0 || idx >= len(items) {
			return nil
		}
		return []Match{{Node: items[idx], Path: m.Path + "[" + strconv.Itoa(idx) + "]"}}

	case ast.SegmentAnyValue:
		switch m.Node.Kind {
		case KindMapping:
			matches := make([]Match, 0, m.Node.Len())
			for _, key := range m.Node.Keys() {
				matches = append(matches, Match{Node: m.Node.Child(key), Path: joinKey(m.Path, key)})
			}
			return matches
		case KindSequence:
			return indexAll(m)
		}
		return nil

	case ast.SegmentAnyIndex:
		if m.Node.Kind != KindSequence {
			return nil
		}
		return indexAll(m)

	case ast.SegmentDescend:
		var matches []Match
		descend(m, &matches)
		return matches
	}
	return nil
}

func indexAll(m Match) []Match {
	items := m.Node.Items()
	matches := make([]Match, len(items))
	for i, item := range items {
		matches[i] = Match{Node: item, Path: m.Path + "[" + strconv.Itoa(i) + "]"}
	}
	return matches
}

// descend collects m and every node beneath it, pre-order.
func descend(m Match, out *[]Match) {
	*out = append(*out, m)
	switch m.Node.Kind {
	case KindMapping:
		for _, key := range m.Node.Keys() {
			descend(Match{Node: m.Node.Child(key), Path: joinKey(m.Path, key)}, out)
		}
	case KindSequence:
		for i, item := range m.Node.Items() {
			descend(Match{Node: item, Path: m.Path + "[" + strconv.Itoa(i) + "]"}, out)
		}
	}
}

func joinKey(base, key string) string {
	if base == "" {
		return key
	}
	return base + "." + key
}
