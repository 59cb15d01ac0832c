package pattern

import "github.com/roach88/loom/internal/ir"

// DefaultMapping encodes the standard control-flow catalogue. Loaded
// mapping datasets replace or extend it; the engine treats both the same
// way. Node-local attributes (instanceCount, joinThreshold) are read by
// the kernel at execution time, so one entry covers every node of a
// given shape regardless of its declared counts.
func DefaultMapping() Mapping {
	entries := map[string]Binding{
		// Plain sequence node: move the token along the unique flow.
		Shape{}.Key(): {
			Verb:   ir.VerbTransmute,
			Params: ir.TransmuteParams{},
		},

		// Splits.
		Shape{Split: ir.SplitAnd}.Key(): {
			Verb:   ir.VerbCopy,
			Params: ir.CopyParams{Cardinality: ir.CardinalityTopology},
		},
		Shape{Split: ir.SplitXor}.Key(): {
			Verb:   ir.VerbFilter,
			Params: ir.FilterParams{SelectionMode: ir.SelectExactlyOne},
		},
		Shape{Split: ir.SplitOr}.Key(): {
			Verb:   ir.VerbFilter,
			Params: ir.FilterParams{SelectionMode: ir.SelectOneOrMore},
		},
		Shape{Split: ir.SplitDeferred}.Key(): {
			Verb:   ir.VerbFilter,
			Params: ir.FilterParams{SelectionMode: ir.SelectDeferred},
		},
		Shape{Split: ir.SplitMutex}.Key(): {
			Verb:   ir.VerbFilter,
			Params: ir.FilterParams{SelectionMode: ir.SelectMutex},
		},

		// Multiple instances.
		Shape{Split: ir.SplitMIStatic}.Key(): {
			Verb:   ir.VerbCopy,
			Params: ir.CopyParams{Cardinality: ir.CardinalityStatic},
		},
		Shape{Split: ir.SplitMIDynamic}.Key(): {
			Verb:   ir.VerbCopy,
			Params: ir.CopyParams{Cardinality: ir.CardinalityDynamic},
		},
		Shape{Split: ir.SplitMIIncremental}.Key(): {
			Verb:   ir.VerbCopy,
			Params: ir.CopyParams{Cardinality: ir.CardinalityIncremental},
		},

		// Joins.
		Shape{Join: ir.JoinAnd}.Key(): {
			Verb:   ir.VerbAwait,
			Params: ir.AwaitParams{Threshold: ir.ThresholdAll},
		},
		Shape{Join: ir.JoinFirst}.Key(): {
			Verb:   ir.VerbAwait,
			Params: ir.AwaitParams{Threshold: ir.ThresholdCount, Count: 1},
		},
		Shape{Join: ir.JoinPartial}.Key(): {
			// Count 0 defers to the node's joinThreshold attribute.
			Verb:   ir.VerbAwait,
			Params: ir.AwaitParams{Threshold: ir.ThresholdCount},
		},
		Shape{Join: ir.JoinActive}.Key(): {
			Verb:   ir.VerbAwait,
			Params: ir.AwaitParams{Threshold: ir.ThresholdActive},
		},
		Shape{Join: ir.JoinDynamic}.Key(): {
			Verb:   ir.VerbAwait,
			Params: ir.AwaitParams{Threshold: ir.ThresholdDynamic},
		},

		// Cancellation.
		Shape{Cancel: string(ir.ScopeSelf)}.Key(): {
			Verb:   ir.VerbVoid,
			Params: ir.VoidParams{Scope: ir.ScopeSelf},
		},
		Shape{Cancel: string(ir.ScopeRegion)}.Key(): {
			Verb:   ir.VerbVoid,
			Params: ir.VoidParams{Scope: ir.ScopeRegion},
		},
		Shape{Cancel: string(ir.ScopeCase)}.Key(): {
			Verb:   ir.VerbVoid,
			Params: ir.VoidParams{Scope: ir.ScopeCase},
		},
		Shape{Cancel: string(ir.ScopeInstances)}.Key(): {
			Verb:   ir.VerbVoid,
			Params: ir.VoidParams{Scope: ir.ScopeInstances},
		},
		Shape{Cancel: string(ir.ScopeTask)}.Key(): {
			Verb:   ir.VerbVoid,
			Params: ir.VoidParams{Scope: ir.ScopeTask},
		},
	}
	return NewMapping(entries)
}
