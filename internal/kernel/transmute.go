package kernel

import (
	"github.com/roach88/loom/internal/graph"
	"github.com/roach88/loom/internal/ir"
)

// Transmute moves the subject's token along its unique outgoing flow and
// stamps the subject completed. Terminal nodes (no outgoing flow), nodes
// with ambiguous fan-out, and nodes not holding a token all yield an
// empty Delta.
func Transmute(g *graph.Store, node ir.NodeID, tctx ir.TxContext, p ir.Params) ir.Delta {
	if _, ok := p.(ir.TransmuteParams); !ok {
		return ir.EmptyDelta()
	}
	if !g.HasToken(node) {
		return ir.EmptyDelta()
	}
	succ := g.Successors(node)
	if len(succ) != 1 {
		return ir.EmptyDelta()
	}
	return ir.Delta{
		Removals: []ir.Triple{tokenRemove(node)},
		Additions: []ir.Triple{
			tokenAdd(succ[0]),
			completedStamp(node, tctx),
		},
	}
}
