// Package kernel implements the five primitive graph-rewrite verbs:
// Transmute, Copy, Filter, Await, Void.
//
// Every verb is a pure function over (graph, node, transaction context,
// parameters) producing an ir.Delta. Verbs perform no I/O, never mutate
// the graph, and are total: malformed shape (missing required edges,
// absent markers, bad parameters) degrades to an empty Delta so the
// driver surfaces a no-op instead of crashing mid-transaction.
//
// Dispatch is the closed five-entry table returned by Table. There is no
// branching on pattern names anywhere in this package; the parameters
// carry everything a verb needs beyond the node's local topology.
package kernel
