// Package graph provides the mutable triple store holding workflow
// topology, token markers, and execution metadata.
//
// The store is a shared mutable resource with single-writer,
// multiple-reader discipline:
//   - Reads take a shared lock and may run concurrently.
//   - Mutation happens ONLY through Apply(ir.Delta) under the exclusive
//     lock: all removals, then all additions, atomic with respect to any
//     concurrent reader.
//
// State change is always remove-old-triple/add-new-triple; triples are
// never updated in place. The execution driver is the only component that
// calls Apply during execution; Seed exists for design-time topology
// loading before the first transaction.
//
// Topology inspection (successors, predecessors, guards, markers) is a
// bounded local walk over a node's own triples and its immediate flow
// edges, never a global traversal.
package graph
