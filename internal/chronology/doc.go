// Package chronology enforces time-based safety: timer expiry, zombie
// token detection, and deadlock detection for joins that can never
// satisfy their threshold.
//
// The guard is a separate logical actor but never mutates the graph
// itself. Every action it takes is a Void transaction pushed through
// the execution driver's override path, so guard-initiated receipts are
// indistinguishable from externally requested ones apart from their
// terminatedReason.
package chronology
