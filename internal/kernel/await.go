package kernel

import (
	"github.com/roach88/loom/internal/graph"
	"github.com/roach88/loom/internal/ir"
)

// Await synchronizes predecessor branches against a threshold. On fire
// it adds a token to the subject and stamps it completed; predecessor
// completion markers are left in place for audit. Await is idempotent: a
// subject that already holds a token or is already stamped completed
// yields an empty Delta no matter how often it is re-evaluated.
func Await(g *graph.Store, node ir.NodeID, tctx ir.TxContext, p ir.Params) ir.Delta {
	params, ok := p.(ir.AwaitParams)
	if !ok {
		return ir.EmptyDelta()
	}
	if g.HasToken(node) || g.Has(node, ir.PropCompletedAt) {
		return ir.EmptyDelta()
	}

	preds := g.Predecessors(node)
	total := int64(len(preds))
	if total == 0 {
		return ir.EmptyDelta()
	}
	var completed, voided int64
	for _, pred := range preds {
		if g.Has(pred, ir.PropCompletedAt) {
			completed++
		}
		if g.Has(pred, ir.PropVoidedAt) {
			voided++
		}
	}

	var fires bool
	switch params.Threshold {
	case ir.ThresholdAll:
		fires = completed == total
	case ir.ThresholdActive:
		fires = completed >= total-voided
	case ir.ThresholdDynamic:
		v, ok := tctx.Data[ir.DataDynamicThreshold]
		if !ok {
			return ir.EmptyDelta()
		}
		n, ok := v.(ir.Int)
		if !ok || int64(n) <= 0 {
			return ir.EmptyDelta()
		}
		fires = completed >= int64(n)
	case ir.ThresholdCount:
		n := params.Count
		if n == 0 {
			// Partial joins declare their N on the node itself.
			declared, ok := g.IntProp(node, ir.PropJoinThreshold)
			if !ok {
				return ir.EmptyDelta()
			}
			n = declared
		}
		if n <= 0 {
			return ir.EmptyDelta()
		}
		fires = completed >= n
	default:
		return ir.EmptyDelta()
	}

	if !fires {
		return ir.EmptyDelta()
	}
	return ir.Delta{
		Additions: []ir.Triple{
			tokenAdd(node),
			completedStamp(node, tctx),
		},
	}
}
