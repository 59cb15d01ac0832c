package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/loom/internal/graph"
	"github.com/roach88/loom/internal/ir"
)

func guardTriple(target, key, op string, value ir.Value, priority int64) ir.Triple {
	return ir.Triple{S: "A", P: ir.PropFlowGuard, O: ir.Map{
		"target":   ir.Str(target),
		"key":      ir.Str(key),
		"op":       ir.Str(op),
		"value":    value,
		"priority": ir.Int(priority),
	}}
}

func xorSplit() *graph.Store {
	g := graph.NewStore()
	g.Seed(
		ir.T("A", ir.PropFlowsTo, ir.Str("B")),
		ir.T("A", ir.PropFlowsTo, ir.Str("C")),
		ir.T("A", ir.PropHasToken, ir.Bool(true)),
		guardTriple("B", "route", "eq", ir.Str("fast"), 1),
		guardTriple("C", "route", "eq", ir.Str("slow"), 2),
	)
	return g
}

func TestFilter_ExactlyOne_PriorityWins(t *testing.T) {
	g := xorSplit()
	// Both guards true: priority 1 wins, deterministically.
	g.Apply(ir.Delta{Additions: []ir.Triple{
		guardTriple("C", "route", "ne", ir.Str("never"), 3),
	}})

	d := Filter(g, "A", tx("tx1", ir.Map{"route": ir.Str("fast")}),
		ir.FilterParams{SelectionMode: ir.SelectExactlyOne})

	require.Len(t, d.Additions, 2)
	assert.Contains(t, d.Additions, ir.T("B", ir.PropHasToken, ir.Bool(true)))
}

func TestFilter_ExactlyOne_DefaultFlow(t *testing.T) {
	g := xorSplit()
	g.Apply(ir.Delta{Additions: []ir.Triple{
		ir.T("A", ir.PropDefaultFlow, ir.Str("C")),
	}})

	d := Filter(g, "A", tx("tx1", ir.Map{"route": ir.Str("unknown")}),
		ir.FilterParams{SelectionMode: ir.SelectExactlyOne})

	assert.Contains(t, d.Additions, ir.T("C", ir.PropHasToken, ir.Bool(true)))
}

func TestFilter_ExactlyOne_NoMatchNoDefault(t *testing.T) {
	g := xorSplit()
	d := Filter(g, "A", tx("tx1", ir.Map{"route": ir.Str("unknown")}),
		ir.FilterParams{SelectionMode: ir.SelectExactlyOne})
	assert.True(t, d.IsEmpty())
}

func TestFilter_OneOrMore(t *testing.T) {
	g := graph.NewStore()
	g.Seed(
		ir.T("A", ir.PropHasToken, ir.Bool(true)),
		guardTriple("B", "amount", "gt", ir.Int(10), 1),
		guardTriple("C", "amount", "lt", ir.Int(100), 2),
		guardTriple("D", "amount", "gt", ir.Int(1000), 3),
	)

	d := Filter(g, "A", tx("tx1", ir.Map{"amount": ir.Int(50)}),
		ir.FilterParams{SelectionMode: ir.SelectOneOrMore})

	assert.Equal(t, 2, countTokenAdds(d))
	assert.Contains(t, d.Additions, ir.T("B", ir.PropHasToken, ir.Bool(true)))
	assert.Contains(t, d.Additions, ir.T("C", ir.PropHasToken, ir.Bool(true)))
}

func TestFilter_Deferred(t *testing.T) {
	g := graph.NewStore()
	g.Seed(
		ir.T("A", ir.PropFlowsTo, ir.Str("B")),
		ir.T("A", ir.PropHasToken, ir.Bool(true)),
	)
	p := ir.FilterParams{SelectionMode: ir.SelectDeferred}

	d := Filter(g, "A", tx("tx1", nil), p)
	require.Equal(t, []ir.Triple{
		ir.T("A", ir.PropAwaitingSelection, ir.Bool(true)),
	}, d.Additions)
	assert.Empty(t, d.Removals, "token stays until the external selection")

	g.Apply(d)
	assert.True(t, Filter(g, "A", tx("tx2", nil), p).IsEmpty(), "marking is idempotent")
}

func TestFilter_ResolutionClearsDeferredMarker(t *testing.T) {
	g := xorSplit()
	g.Apply(Filter(g, "A", tx("tx1", nil),
		ir.FilterParams{SelectionMode: ir.SelectDeferred}))
	require.True(t, g.HasValue("A", ir.PropAwaitingSelection, ir.Bool(true)))

	d := Filter(g, "A", tx("tx2", ir.Map{"route": ir.Str("fast")}),
		ir.FilterParams{SelectionMode: ir.SelectExactlyOne})

	assert.Contains(t, d.Removals, ir.T("A", ir.PropAwaitingSelection, ir.Bool(true)))
	assert.Contains(t, d.Removals, ir.T("A", ir.PropHasToken, ir.Bool(true)))
	assert.Contains(t, d.Additions, ir.T("B", ir.PropHasToken, ir.Bool(true)))
}

func TestFilter_Mutex_Exclusion(t *testing.T) {
	g := graph.NewStore()
	g.Seed(
		ir.T("A", ir.PropMutexGroup, ir.Str("g")),
		ir.T("A", ir.PropFlowsTo, ir.Str("B")),
		ir.T("A", ir.PropHasToken, ir.Bool(true)),
		ir.T("S", ir.PropMutexGroup, ir.Str("g")),
		ir.T("S", ir.PropHasToken, ir.Bool(true)),
	)
	p := ir.FilterParams{SelectionMode: ir.SelectMutex}

	assert.True(t, Filter(g, "A", tx("tx1", nil), p).IsEmpty(),
		"sibling holds a token")

	g.Apply(ir.Delta{Removals: []ir.Triple{ir.T("S", ir.PropHasToken, ir.Bool(true))}})
	d := Filter(g, "A", tx("tx2", nil), p)
	assert.Contains(t, d.Additions, ir.T("B", ir.PropHasToken, ir.Bool(true)))
}

func TestFilter_Mutex_NoGroup(t *testing.T) {
	g := graph.NewStore()
	g.Seed(
		ir.T("A", ir.PropFlowsTo, ir.Str("B")),
		ir.T("A", ir.PropHasToken, ir.Bool(true)),
	)
	d := Filter(g, "A", tx("tx1", nil), ir.FilterParams{SelectionMode: ir.SelectMutex})
	assert.True(t, d.IsEmpty())
}

func TestEvalGuard_Ops(t *testing.T) {
	data := ir.Map{
		"s":    ir.Str("hello world"),
		"n":    ir.Int(5),
		"list": ir.List{ir.Str("a"), ir.Int(2)},
	}
	tests := []struct {
		name  string
		guard graph.Guard
		want  bool
	}{
		{"eq str", graph.Guard{Key: "s", Op: "eq", Value: ir.Str("hello world")}, true},
		{"ne int", graph.Guard{Key: "n", Op: "ne", Value: ir.Int(6)}, true},
		{"ne missing key is false", graph.Guard{Key: "x", Op: "ne", Value: ir.Int(6)}, false},
		{"lt", graph.Guard{Key: "n", Op: "lt", Value: ir.Int(10)}, true},
		{"gt false", graph.Guard{Key: "n", Op: "gt", Value: ir.Int(10)}, false},
		{"lt mismatched types", graph.Guard{Key: "s", Op: "lt", Value: ir.Int(10)}, false},
		{"contains substring", graph.Guard{Key: "s", Op: "contains", Value: ir.Str("lo wo")}, true},
		{"contains list member", graph.Guard{Key: "list", Op: "contains", Value: ir.Int(2)}, true},
		{"contains list miss", graph.Guard{Key: "list", Op: "contains", Value: ir.Int(3)}, false},
		{"unknown op", graph.Guard{Key: "n", Op: "regex", Value: ir.Str(".*")}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, evalGuard(tt.guard, data))
		})
	}
}
