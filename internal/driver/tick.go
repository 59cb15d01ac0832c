package driver

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/roach88/loom/internal/ir"
	"github.com/roach88/loom/internal/pattern"
)

// Tick runs one cooperative pass: every token-holding node plus every
// join candidate is evaluated once, in lexicographic node order. Nodes
// whose conditions are not met produce no-op receipts and are retried
// on a later tick - nothing ever blocks.
//
// Returns the receipts of transactions that changed the graph.
// Unmapped-pattern nodes are logged and skipped so one bad node cannot
// stop the pass; step-budget exhaustion aborts the pass.
func (d *Driver) Tick(ctx context.Context, data ir.Map) ([]ir.Receipt, error) {
	var fired []ir.Receipt
	for _, node := range d.tickCandidates() {
		select {
		case <-ctx.Done():
			return fired, ctx.Err()
		default:
		}

		tctx := ir.TxContext{
			TxID:  d.txGen.Generate(),
			Actor: "tick",
			Data:  data,
		}
		receipt, err := d.Execute(ctx, node, tctx)
		if err != nil {
			if pattern.IsUnmappedPattern(err) {
				continue
			}
			return fired, fmt.Errorf("tick %s: %w", node, err)
		}
		if !receipt.Delta.IsEmpty() {
			fired = append(fired, receipt)
		}
	}
	slog.Debug("tick pass complete", "fired", len(fired))
	return fired, nil
}

// tickCandidates returns the pass work list: token holders, plus join
// nodes that have not fired yet (joins hold no token until their
// threshold is met, so they would otherwise never be evaluated).
// Sorted lexicographically for deterministic tie-breaking.
func (d *Driver) tickCandidates() []ir.NodeID {
	candidates := d.graph.TokenHolders()
	seen := make(map[ir.NodeID]bool, len(candidates))
	for _, n := range candidates {
		seen[n] = true
	}
	for _, n := range d.graph.Nodes() {
		if seen[n] || !d.graph.Has(n, ir.PropJoinKind) {
			continue
		}
		if d.graph.Has(n, ir.PropCompletedAt) || d.graph.Has(n, ir.PropVoidedAt) {
			continue
		}
		candidates = append(candidates, n)
	}
	slices.Sort(candidates)
	return candidates
}
