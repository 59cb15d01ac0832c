package harness

import (
	"context"
	"fmt"

	"github.com/roach88/loom/internal/graph"
	"github.com/roach88/loom/internal/ir"
	"github.com/roach88/loom/internal/lockchain"
)

// evaluateExpect checks every expectation against the final graph and
// chain, returning one message per failure. All checks run even after
// a failure so the result reports everything at once.
func evaluateExpect(g *graph.Store, chain *lockchain.Chain, expect Expect) []string {
	var failures []string

	for _, node := range expect.Tokens {
		if !g.HasToken(ir.NodeID(node)) {
			failures = append(failures, fmt.Sprintf("expected token on %s, none held", node))
		}
	}
	for _, node := range expect.NoTokens {
		if g.HasToken(ir.NodeID(node)) {
			failures = append(failures, fmt.Sprintf("expected no token on %s, one is held", node))
		}
	}
	for _, node := range expect.Completed {
		if !g.Has(ir.NodeID(node), ir.PropCompletedAt) {
			failures = append(failures, fmt.Sprintf("expected %s completed, no completion marker", node))
		}
	}
	for _, node := range expect.Voided {
		if !g.Has(ir.NodeID(node), ir.PropVoidedAt) {
			failures = append(failures, fmt.Sprintf("expected %s voided, no void marker", node))
		}
	}

	ctx := context.Background()
	if expect.ChainLength != nil {
		n, err := chain.Len(ctx)
		if err != nil {
			failures = append(failures, fmt.Sprintf("chain length: %v", err))
		} else if n != *expect.ChainLength {
			failures = append(failures, fmt.Sprintf("expected chain length %d, got %d", *expect.ChainLength, n))
		}
	}
	if expect.VerifyChain {
		if err := chain.VerifyChain(ctx); err != nil {
			failures = append(failures, fmt.Sprintf("chain verification failed: %v", err))
		}
	}
	return failures
}
