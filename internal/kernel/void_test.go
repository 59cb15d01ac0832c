package kernel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/loom/internal/graph"
	"github.com/roach88/loom/internal/ir"
)

func TestVoid_Self(t *testing.T) {
	g := graph.NewStore()
	g.Seed(ir.T("A", ir.PropHasToken, ir.Bool(true)))

	d := Void(g, "A", tx("tx1", nil), ir.VoidParams{Scope: ir.ScopeSelf, Reason: ir.ReasonTimeout})

	require.Equal(t, []ir.Triple{ir.T("A", ir.PropHasToken, ir.Bool(true))}, d.Removals)
	assert.Equal(t, []ir.Triple{
		ir.T("A", ir.PropVoidedAt, ir.Str("tx1")),
		ir.T("A", ir.PropTerminatedReason, ir.Str(ir.ReasonTimeout)),
	}, d.Additions)
}

func TestVoid_DefaultReason(t *testing.T) {
	g := graph.NewStore()
	g.Seed(ir.T("A", ir.PropHasToken, ir.Bool(true)))

	d := Void(g, "A", tx("tx1", nil), ir.VoidParams{Scope: ir.ScopeSelf})
	assert.Contains(t, d.Additions,
		ir.T("A", ir.PropTerminatedReason, ir.Str(ir.ReasonCancelled)))
}

func TestVoid_Revoid_Noop(t *testing.T) {
	g := graph.NewStore()
	g.Seed(ir.T("A", ir.PropHasToken, ir.Bool(true)))
	p := ir.VoidParams{Scope: ir.ScopeSelf}

	g.Apply(Void(g, "A", tx("tx1", nil), p))
	assert.True(t, Void(g, "A", tx("tx2", nil), p).IsEmpty())
}

func TestVoid_Region(t *testing.T) {
	g := graph.NewStore()
	g.Seed(
		ir.T("A", ir.PropCancelRegion, ir.Str("r")),
		ir.T("B", ir.PropCancelRegion, ir.Str("r")),
		ir.T("B", ir.PropHasToken, ir.Bool(true)),
		ir.T("C", ir.PropCancelRegion, ir.Str("other")),
		ir.T("C", ir.PropHasToken, ir.Bool(true)),
	)

	d := Void(g, "A", tx("tx1", nil), ir.VoidParams{Scope: ir.ScopeRegion})

	assert.Contains(t, d.Additions, ir.T("A", ir.PropVoidedAt, ir.Str("tx1")))
	assert.Contains(t, d.Additions, ir.T("B", ir.PropVoidedAt, ir.Str("tx1")))
	assert.NotContains(t, d.Additions, ir.T("C", ir.PropVoidedAt, ir.Str("tx1")))
	assert.Contains(t, d.Removals, ir.T("B", ir.PropHasToken, ir.Bool(true)))
}

func TestVoid_Region_Undeclared(t *testing.T) {
	g := graph.NewStore()
	g.Seed(ir.T("A", ir.PropHasToken, ir.Bool(true)))
	d := Void(g, "A", tx("tx1", nil), ir.VoidParams{Scope: ir.ScopeRegion})
	assert.True(t, d.IsEmpty())
}

func TestVoid_Case_LiveTokensOnly(t *testing.T) {
	g := graph.NewStore()
	g.Seed(
		ir.T("A", ir.PropCaseID, ir.Str("case-1")),
		ir.T("A", ir.PropHasToken, ir.Bool(true)),
		ir.T("B", ir.PropCaseID, ir.Str("case-1")),
		ir.T("B", ir.PropHasToken, ir.Bool(true)),
		ir.T("done", ir.PropCaseID, ir.Str("case-1")),
		ir.T("done", ir.PropCompletedAt, ir.Str("tx0")),
	)

	d := Void(g, "A", tx("tx1", nil), ir.VoidParams{Scope: ir.ScopeCase})

	assert.Len(t, d.Removals, 2)
	assert.NotContains(t, d.Additions, ir.T("done", ir.PropVoidedAt, ir.Str("tx1")))
}

func TestVoid_Instances_TransitiveCascade(t *testing.T) {
	g := graph.NewStore()
	g.Seed(
		ir.T("A", ir.PropHasToken, ir.Bool(true)),
		ir.T("task#0", ir.PropParentTask, ir.Str("A")),
		ir.T("task#0", ir.PropHasToken, ir.Bool(true)),
		ir.T("task#1", ir.PropParentTask, ir.Str("A")),
		ir.T("sub#0", ir.PropParentTask, ir.Str("task#1")),
		ir.T("sub#0", ir.PropHasToken, ir.Bool(true)),
	)

	d := Void(g, "A", tx("tx1", nil), ir.VoidParams{Scope: ir.ScopeInstances})

	assert.Contains(t, d.Additions, ir.T("task#0", ir.PropVoidedAt, ir.Str("tx1")))
	assert.Contains(t, d.Additions, ir.T("task#1", ir.PropVoidedAt, ir.Str("tx1")))
	assert.Contains(t, d.Additions, ir.T("sub#0", ir.PropVoidedAt, ir.Str("tx1")),
		"grandchildren voided transitively")
	assert.NotContains(t, d.Additions, ir.T("A", ir.PropVoidedAt, ir.Str("tx1")),
		"instances scope keeps the parent alive")
}

func TestVoid_SelfCascadesToChildren(t *testing.T) {
	g := graph.NewStore()
	g.Seed(
		ir.T("A", ir.PropHasToken, ir.Bool(true)),
		ir.T("task#0", ir.PropParentTask, ir.Str("A")),
		ir.T("task#0", ir.PropHasToken, ir.Bool(true)),
	)

	d := Void(g, "A", tx("tx1", nil), ir.VoidParams{Scope: ir.ScopeSelf})

	assert.Contains(t, d.Additions, ir.T("A", ir.PropVoidedAt, ir.Str("tx1")))
	assert.Contains(t, d.Additions, ir.T("task#0", ir.PropVoidedAt, ir.Str("tx1")))
}

func TestVoid_Task_RoutesToHandler(t *testing.T) {
	g := graph.NewStore()
	g.Seed(
		ir.T("A", ir.PropHasToken, ir.Bool(true)),
		ir.T("A", ir.PropExceptionHandler, ir.Str("H")),
	)

	d := Void(g, "A", tx("tx1", nil), ir.VoidParams{
		Scope: ir.ScopeTask, Reason: ir.ReasonException,
	})

	assert.Contains(t, d.Additions, ir.T("A", ir.PropVoidedAt, ir.Str("tx1")))
	assert.Contains(t, d.Additions, ir.T("H", ir.PropHasToken, ir.Bool(true)))
}

func TestVoid_Task_NoHandlerDegradesToSelf(t *testing.T) {
	g := graph.NewStore()
	g.Seed(ir.T("A", ir.PropHasToken, ir.Bool(true)))

	d := Void(g, "A", tx("tx1", nil), ir.VoidParams{Scope: ir.ScopeTask})

	assert.Contains(t, d.Additions, ir.T("A", ir.PropVoidedAt, ir.Str("tx1")))
	assert.Equal(t, 0, countTokenAdds(d), "no handler token")
}
