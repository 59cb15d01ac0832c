package pattern

import (
	"errors"
	"fmt"
	"sort"

	"github.com/roach88/loom/internal/graph"
	"github.com/roach88/loom/internal/ir"
)

// Binding is the resolved (verb, parameters) pair for a shape. Params
// records are frozen at mapping construction and shared across
// resolutions; they are never mutated.
type Binding struct {
	Verb   ir.Verb
	Params ir.Params
}

// Mapping is the loaded pattern-mapping dataset: shape key -> Binding.
// It is immutable after construction; the engine only queries it.
type Mapping struct {
	entries map[string]Binding
}

// NewMapping copies entries into a frozen Mapping.
func NewMapping(entries map[string]Binding) Mapping {
	m := make(map[string]Binding, len(entries))
	for k, v := range entries {
		m[k] = v
	}
	return Mapping{entries: m}
}

// Get returns the binding for a shape key.
func (m Mapping) Get(key string) (Binding, bool) {
	b, ok := m.entries[key]
	return b, ok
}

// Len returns the number of mapping entries.
func (m Mapping) Len() int {
	return len(m.entries)
}

// Keys returns all shape keys in sorted order, for listing tools.
func (m Mapping) Keys() []string {
	out := make([]string, 0, len(m.entries))
	for k := range m.entries {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// UnmappedPatternError reports that a node's detected shape has no entry
// in the mapping data. The transaction is aborted with no graph mutation.
type UnmappedPatternError struct {
	Node ir.NodeID
	Key  string
}

func (e *UnmappedPatternError) Error() string {
	return fmt.Sprintf("no mapping for node %q with shape %s", e.Node, e.Key)
}

// IsUnmappedPattern reports whether err is an UnmappedPatternError.
func IsUnmappedPattern(err error) bool {
	var e *UnmappedPatternError
	return errors.As(err, &e)
}

// Resolver performs the per-node lookup against a frozen Mapping.
type Resolver struct {
	mapping Mapping
}

// NewResolver creates a resolver over the given mapping.
func NewResolver(m Mapping) *Resolver {
	return &Resolver{mapping: m}
}

// Resolve detects the node's shape and returns its binding. Fails with
// UnmappedPatternError when the shape has no entry.
func (r *Resolver) Resolve(g *graph.Store, node ir.NodeID) (Binding, error) {
	shape := DetectShape(g, node)
	key := shape.Key()
	b, ok := r.mapping.Get(key)
	if !ok {
		return Binding{}, &UnmappedPatternError{Node: node, Key: key}
	}
	return b, nil
}

// Mapping returns the resolver's underlying mapping.
func (r *Resolver) Mapping() Mapping {
	return r.mapping
}
