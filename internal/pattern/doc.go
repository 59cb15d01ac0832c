// Package pattern resolves a graph node to a verb and its parameters
// through declarative mapping data.
//
// The pipeline is a pure lookup: DetectShape reads the node's local
// markers (split kind, join kind, cancellation scope), Shape.Key turns
// them into a canonical string, and the Mapping associates that key with
// a Binding. No code anywhere branches on a pattern's name; adding a
// control-flow pattern is a mapping entry, not an engine change.
package pattern
