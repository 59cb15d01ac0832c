package pattern

import (
	"fmt"

	"github.com/roach88/loom/internal/graph"
	"github.com/roach88/loom/internal/ir"
)

// Shape is the detected local topology of a node: which control-flow
// markers it declares. Detection is bounded to the node's own triples,
// never a global traversal. An empty Shape is the plain sequence node.
type Shape struct {
	// Split is the node's splitKind marker, empty if none.
	Split string
	// Join is the node's joinKind marker, empty if none.
	Join string
	// Cancel is the node's cancelScope marker, empty if none.
	Cancel string
}

// DetectShape inspects a node's markers. Nodes carrying no markers
// detect as the zero Shape.
func DetectShape(g *graph.Store, node ir.NodeID) Shape {
	var s Shape
	if v, ok := g.StrProp(node, ir.PropSplitKind); ok {
		s.Split = v
	}
	if v, ok := g.StrProp(node, ir.PropJoinKind); ok {
		s.Join = v
	}
	if v, ok := g.StrProp(node, ir.PropCancelScope); ok {
		s.Cancel = v
	}
	return s
}

// Key returns the canonical lookup string for the shape. Composite
// shapes (a node declaring both a join and a split marker) produce a
// composite key; they resolve only if the mapping data declares an entry
// for that exact combination.
func (s Shape) Key() string {
	return fmt.Sprintf("split=%s,join=%s,cancel=%s", s.Split, s.Join, s.Cancel)
}

// IsZero reports whether the node carries no control-flow markers.
func (s Shape) IsZero() bool {
	return s == Shape{}
}
