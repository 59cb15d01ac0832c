// Package driver owns the per-transaction execution lifecycle: resolve
// a node's verb, dispatch to the kernel, apply the resulting delta, and
// append the receipt to the lockchain.
//
// The driver is the ONLY component that mutates the graph during
// execution. All mutation happens inside one exclusive critical section
// per transaction, so receipts form a strict total order; two logically
// concurrent events serialize into a deterministic tick order,
// tie-broken lexicographically by node id.
//
// Verb evaluation is pure and read-only; a transaction whose delta is
// empty still produces a receipt (the no-op is auditable) but does not
// touch the graph.
package driver
