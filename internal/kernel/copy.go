package kernel

import (
	"fmt"

	"github.com/roach88/loom/internal/graph"
	"github.com/roach88/loom/internal/ir"
)

// Copy clones the subject's token across a parameterized target set. The
// subject's token is removed exactly once and the subject is stamped
// completed; each target gets exactly one new token.
//
// Topology cardinality targets the actual graph successors. Every other
// mode spawns instance children of the unique successor task, with node
// ids synthesized as "target#index" and a parentTask back-reference to
// the subject for cascade cancellation.
func Copy(g *graph.Store, node ir.NodeID, tctx ir.TxContext, p ir.Params) ir.Delta {
	params, ok := p.(ir.CopyParams)
	if !ok {
		return ir.EmptyDelta()
	}
	if !g.HasToken(node) {
		return ir.EmptyDelta()
	}

	var additions []ir.Triple
	switch params.Cardinality {
	case ir.CardinalityTopology:
		succ := g.Successors(node)
		if len(succ) == 0 {
			return ir.EmptyDelta()
		}
		for _, target := range succ {
			additions = append(additions, tokenAdd(target))
		}

	case ir.CardinalityStatic:
		n, ok := g.IntProp(node, ir.PropInstanceCount)
		if !ok || n <= 0 {
			return ir.EmptyDelta()
		}
		additions = spawnInstances(g, node, n, 0)

	case ir.CardinalityDynamic:
		v, ok := tctx.Data[ir.DataDynamicTargets]
		if !ok {
			return ir.EmptyDelta()
		}
		list, ok := v.(ir.List)
		if !ok || len(list) == 0 {
			return ir.EmptyDelta()
		}
		additions = spawnInstances(g, node, int64(len(list)), 0)

	case ir.CardinalityIncremental:
		next := int64(len(g.ChildrenOf(node)))
		additions = spawnInstances(g, node, 1, next)

	case ir.CardinalityExplicit:
		if params.Count <= 0 {
			return ir.EmptyDelta()
		}
		additions = spawnInstances(g, node, params.Count, 0)

	default:
		return ir.EmptyDelta()
	}
	if additions == nil {
		return ir.EmptyDelta()
	}

	additions = append(additions, completedStamp(node, tctx))
	return ir.Delta{
		Removals:  []ir.Triple{tokenRemove(node)},
		Additions: additions,
	}
}

// spawnInstances synthesizes n instance children of the subject's unique
// successor task, numbered from first. Returns nil when the subject does
// not have exactly one successor.
func spawnInstances(g *graph.Store, node ir.NodeID, n, first int64) []ir.Triple {
	succ := g.Successors(node)
	if len(succ) != 1 {
		return nil
	}
	task := succ[0]
	out := make([]ir.Triple, 0, 2*n)
	for i := int64(0); i < n; i++ {
		child := ir.NodeID(fmt.Sprintf("%s#%d", task, first+i))
		out = append(out,
			tokenAdd(child),
			ir.T(child, ir.PropParentTask, ir.Str(string(node))),
		)
	}
	return out
}
