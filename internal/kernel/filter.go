package kernel

import (
	"strings"

	"github.com/roach88/loom/internal/graph"
	"github.com/roach88/loom/internal/ir"
)

// Filter routes the subject's token through guarded outgoing flows.
// Guard evaluation is restricted to eq/ne/lt/gt/contains over keys of
// TxContext.Data named by the flow's guard. A guard whose key is absent
// from the data evaluates false, including for ne.
func Filter(g *graph.Store, node ir.NodeID, tctx ir.TxContext, p ir.Params) ir.Delta {
	params, ok := p.(ir.FilterParams)
	if !ok {
		return ir.EmptyDelta()
	}
	if !g.HasToken(node) {
		return ir.EmptyDelta()
	}

	switch params.SelectionMode {
	case ir.SelectExactlyOne:
		return filterExactlyOne(g, node, tctx)
	case ir.SelectOneOrMore:
		return filterOneOrMore(g, node, tctx)
	case ir.SelectDeferred:
		return filterDeferred(g, node)
	case ir.SelectMutex:
		return filterMutex(g, node, tctx)
	default:
		return ir.EmptyDelta()
	}
}

// filterExactlyOne fires the first true guard in declared priority
// order; ties break by target id, never nondeterministically. The
// declared default flow fires when no guard matches.
func filterExactlyOne(g *graph.Store, node ir.NodeID, tctx ir.TxContext) ir.Delta {
	for _, guard := range g.Guards(node) {
		if evalGuard(guard, tctx.Data) {
			return shedAwaiting(g, node, moveToken(node, guard.Target, tctx))
		}
	}
	if fallback, ok := g.DefaultFlow(node); ok {
		return shedAwaiting(g, node, moveToken(node, fallback, tctx))
	}
	return ir.EmptyDelta()
}

// filterOneOrMore fires every flow whose guard is true.
func filterOneOrMore(g *graph.Store, node ir.NodeID, tctx ir.TxContext) ir.Delta {
	var additions []ir.Triple
	for _, guard := range g.Guards(node) {
		if evalGuard(guard, tctx.Data) {
			additions = append(additions, tokenAdd(guard.Target))
		}
	}
	if additions == nil {
		return ir.EmptyDelta()
	}
	additions = append(additions, completedStamp(node, tctx))
	return shedAwaiting(g, node, ir.Delta{
		Removals:  []ir.Triple{tokenRemove(node)},
		Additions: additions,
	})
}

// filterDeferred marks the subject awaiting an external selection; the
// token stays put. Already-marked subjects yield an empty Delta.
func filterDeferred(g *graph.Store, node ir.NodeID) ir.Delta {
	if g.HasValue(node, ir.PropAwaitingSelection, ir.Bool(true)) {
		return ir.EmptyDelta()
	}
	return ir.Delta{
		Additions: []ir.Triple{
			ir.T(node, ir.PropAwaitingSelection, ir.Bool(true)),
		},
	}
}

// filterMutex proceeds along the unique outgoing flow only when no
// sibling in the subject's mutex group holds a token. Otherwise empty
// Delta, retried on a later tick.
func filterMutex(g *graph.Store, node ir.NodeID, tctx ir.TxContext) ir.Delta {
	group, ok := g.StrProp(node, ir.PropMutexGroup)
	if !ok {
		return ir.EmptyDelta()
	}
	for _, sibling := range g.MutexSiblings(group) {
		if sibling != node && g.HasToken(sibling) {
			return ir.EmptyDelta()
		}
	}
	succ := g.Successors(node)
	if len(succ) != 1 {
		return ir.EmptyDelta()
	}
	return shedAwaiting(g, node, moveToken(node, succ[0], tctx))
}

// shedAwaiting extends a firing delta with the removal of the subject's
// awaitingSelection marker when one is present. Resolving a deferred
// choice means re-firing the node with a concrete selection mode, and
// the marker must not survive the resolution.
func shedAwaiting(g *graph.Store, node ir.NodeID, d ir.Delta) ir.Delta {
	if g.HasValue(node, ir.PropAwaitingSelection, ir.Bool(true)) {
		d.Removals = append(d.Removals, ir.T(node, ir.PropAwaitingSelection, ir.Bool(true)))
	}
	return d
}

func moveToken(from, to ir.NodeID, tctx ir.TxContext) ir.Delta {
	return ir.Delta{
		Removals: []ir.Triple{tokenRemove(from)},
		Additions: []ir.Triple{
			tokenAdd(to),
			completedStamp(from, tctx),
		},
	}
}

// evalGuard evaluates one restricted predicate over the transaction
// data. lt/gt compare Ints with Ints and Strs with Strs; contains means
// list membership for List data and substring for Str data.
func evalGuard(guard graph.Guard, data ir.Map) bool {
	v, ok := data[guard.Key]
	if !ok {
		return false
	}
	switch guard.Op {
	case "eq":
		return ir.Equal(v, guard.Value)
	case "ne":
		return !ir.Equal(v, guard.Value)
	case "lt":
		return compareOrdered(v, guard.Value) < 0
	case "gt":
		return compareOrdered(v, guard.Value) > 0
	case "contains":
		switch hay := v.(type) {
		case ir.List:
			for _, item := range hay {
				if ir.Equal(item, guard.Value) {
					return true
				}
			}
			return false
		case ir.Str:
			needle, ok := guard.Value.(ir.Str)
			return ok && strings.Contains(string(hay), string(needle))
		default:
			return false
		}
	default:
		return false
	}
}

// compareOrdered returns -1/0/1 for comparable pairs and 0 for
// mismatched or unordered types, which makes lt and gt both false.
func compareOrdered(a, b ir.Value) int {
	switch av := a.(type) {
	case ir.Int:
		if bv, ok := b.(ir.Int); ok {
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			}
		}
	case ir.Str:
		if bv, ok := b.(ir.Str); ok {
			return strings.Compare(string(av), string(bv))
		}
	}
	return 0
}
