package kernel

import (
	"github.com/roach88/loom/internal/graph"
	"github.com/roach88/loom/internal/ir"
)

// Func is the signature shared by all five verbs.
type Func func(g *graph.Store, node ir.NodeID, tctx ir.TxContext, p ir.Params) ir.Delta

// Table returns the verb dispatch table. Exactly five entries, one per
// enum member; the driver looks up by ir.Verb and never falls back to
// string matching.
func Table() map[ir.Verb]Func {
	return map[ir.Verb]Func{
		ir.VerbTransmute: Transmute,
		ir.VerbCopy:      Copy,
		ir.VerbFilter:    Filter,
		ir.VerbAwait:     Await,
		ir.VerbVoid:      Void,
	}
}

// completedStamp is the marker every firing verb adds on its subject.
func completedStamp(node ir.NodeID, tctx ir.TxContext) ir.Triple {
	return ir.T(node, ir.PropCompletedAt, ir.Str(tctx.TxID))
}

func tokenAdd(node ir.NodeID) ir.Triple {
	return ir.T(node, ir.PropHasToken, ir.Bool(true))
}

// tokenRemove matches tokenAdd byte for byte: the store removes by
// exact triple equality, so the removal triple is the token triple
// itself.
func tokenRemove(node ir.NodeID) ir.Triple {
	return ir.T(node, ir.PropHasToken, ir.Bool(true))
}
