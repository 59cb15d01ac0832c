// Package harness provides a conformance testing framework for the
// execution driver.
//
// Scenarios are YAML documents that declare a workflow graph, a script
// of steps (fire a node, run a cooperative tick pass, advance the timer
// clock, run a chronology sweep), and expectations over the final
// marker state and receipt chain. Every scenario runs against a fresh
// in-memory graph and ledger with deterministic transaction ids, so the
// receipt trace is reproducible and can be compared against golden
// files.
package harness
