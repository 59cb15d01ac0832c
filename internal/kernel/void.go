package kernel

import (
	"slices"

	"github.com/roach88/loom/internal/graph"
	"github.com/roach88/loom/internal/ir"
)

// Void terminates a parameterized node set. Every voided node loses its
// token (when it holds one) and gains voidedAt plus terminatedReason.
// Nodes already voided are skipped, so re-voiding is a no-op. The set is
// closed over live parentTask children: voiding a node cascades to its
// spawned instances transitively.
func Void(g *graph.Store, node ir.NodeID, tctx ir.TxContext, p ir.Params) ir.Delta {
	params, ok := p.(ir.VoidParams)
	if !ok {
		return ir.EmptyDelta()
	}
	reason := params.Reason
	if reason == "" {
		reason = ir.ReasonCancelled
	}

	var seeds []ir.NodeID
	handlerToken := false
	switch params.Scope {
	case ir.ScopeSelf:
		seeds = []ir.NodeID{node}

	case ir.ScopeRegion:
		region, ok := g.StrProp(node, ir.PropCancelRegion)
		if !ok {
			return ir.EmptyDelta()
		}
		seeds = g.RegionMembers(region)

	case ir.ScopeCase:
		caseID, ok := g.StrProp(node, ir.PropCaseID)
		if !ok {
			return ir.EmptyDelta()
		}
		for _, member := range g.CaseMembers(caseID) {
			if g.HasToken(member) {
				seeds = append(seeds, member)
			}
		}

	case ir.ScopeInstances:
		seeds = g.ChildrenOf(node)

	case ir.ScopeTask:
		seeds = []ir.NodeID{node}
		if _, ok := g.ExceptionHandler(node); ok {
			handlerToken = true
		}

	default:
		return ir.EmptyDelta()
	}

	targets := cascadeClosure(g, seeds)
	if len(targets) == 0 {
		return ir.EmptyDelta()
	}

	var d ir.Delta
	for _, target := range targets {
		if g.Has(target, ir.PropVoidedAt) {
			continue
		}
		if g.HasToken(target) {
			d.Removals = append(d.Removals, tokenRemove(target))
		}
		d.Additions = append(d.Additions,
			ir.T(target, ir.PropVoidedAt, ir.Str(tctx.TxID)),
			ir.T(target, ir.PropTerminatedReason, ir.Str(reason)),
		)
	}
	if handlerToken {
		handler, _ := g.ExceptionHandler(node)
		d.Additions = append(d.Additions, tokenAdd(handler))
	}
	if d.IsEmpty() {
		return ir.EmptyDelta()
	}
	return d
}

// cascadeClosure expands the seed set over parentTask children,
// transitively, and returns the closure sorted lexicographically for
// deterministic delta ordering.
func cascadeClosure(g *graph.Store, seeds []ir.NodeID) []ir.NodeID {
	seen := make(map[ir.NodeID]bool, len(seeds))
	queue := append([]ir.NodeID(nil), seeds...)
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if seen[n] {
			continue
		}
		seen[n] = true
		queue = append(queue, g.ChildrenOf(n)...)
	}
	out := make([]ir.NodeID, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}
