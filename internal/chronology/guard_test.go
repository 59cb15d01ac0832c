package chronology

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/loom/internal/driver"
	"github.com/roach88/loom/internal/graph"
	"github.com/roach88/loom/internal/ir"
	"github.com/roach88/loom/internal/lockchain"
	"github.com/roach88/loom/internal/pattern"
)

func newTestGuard(t *testing.T, g *graph.Store, clock Clock, policy Policy, opts ...driver.Option) (*Guard, *driver.Driver) {
	t.Helper()
	base := []driver.Option{
		driver.WithTxIDGenerator(driver.NewFixedGenerator(
			"guard-tx-1", "guard-tx-2", "guard-tx-3", "guard-tx-4",
		)),
	}
	d := driver.New(g,
		pattern.NewResolver(pattern.DefaultMapping()),
		lockchain.NewChain(lockchain.NewMemoryLedger()),
		append(base, opts...)...)
	return NewGuard(d, clock, policy), d
}

func TestSweep_CleanGraphIsQuiet(t *testing.T) {
	g := graph.NewStore()
	g.Seed(
		ir.T("A", ir.PropFlowsTo, ir.Str("B")),
		ir.T("A", ir.PropHasToken, ir.Bool(true)),
	)
	guard, d := newTestGuard(t, g, NewTickClock(), DefaultPolicy())

	receipts, err := guard.Sweep(context.Background())
	require.NoError(t, err)
	assert.Empty(t, receipts)

	n, err := d.Chain().Len(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSweep_TimerExpiry(t *testing.T) {
	g := graph.NewStore()
	g.Seed(
		ir.T("A", ir.PropFlowsTo, ir.Str("B")),
		ir.T("A", ir.PropHasToken, ir.Bool(true)),
		ir.T("A", ir.PropTimerExpiresAt, ir.Int(10)),
	)
	clock := NewTickClock()
	guard, _ := newTestGuard(t, g, clock, DefaultPolicy())
	ctx := context.Background()

	receipts, err := guard.Sweep(ctx)
	require.NoError(t, err)
	assert.Empty(t, receipts, "deadline not reached")

	clock.Advance(10)
	receipts, err = guard.Sweep(ctx)
	require.NoError(t, err)
	require.Len(t, receipts, 1)

	assert.Equal(t, ir.ReasonTimeout, receipts[0].Reason)
	assert.Equal(t, GuardActor, receipts[0].Actor)
	assert.False(t, g.HasToken("A"))
	assert.True(t, g.HasValue("A", ir.PropTerminatedReason, ir.Str(ir.ReasonTimeout)))
}

func TestSweep_ZombieToken(t *testing.T) {
	g := graph.NewStore()
	g.Seed(
		ir.T("A", ir.PropFlowsTo, ir.Str("B")),
		ir.T("A", ir.PropHasToken, ir.Bool(true)),
		ir.T("A", ir.PropActivatedAt, ir.Int(1)),
	)
	policy := Policy{ZombieTTL: 10, SweepInterval: DefaultPolicy().SweepInterval}
	guard, _ := newTestGuard(t, g, NewTickClock(), policy,
		driver.WithClock(driver.NewClockAt(100)))

	receipts, err := guard.Sweep(context.Background())
	require.NoError(t, err)
	require.Len(t, receipts, 1)

	assert.Equal(t, ir.ReasonVoid, receipts[0].Reason)
	assert.False(t, g.HasToken("A"))
}

func TestSweep_FreshTokenIsNotZombie(t *testing.T) {
	g := graph.NewStore()
	g.Seed(
		ir.T("A", ir.PropFlowsTo, ir.Str("B")),
		ir.T("A", ir.PropHasToken, ir.Bool(true)),
		ir.T("A", ir.PropActivatedAt, ir.Int(95)),
	)
	policy := Policy{ZombieTTL: 10, SweepInterval: DefaultPolicy().SweepInterval}
	guard, _ := newTestGuard(t, g, NewTickClock(), policy,
		driver.WithClock(driver.NewClockAt(100)))

	receipts, err := guard.Sweep(context.Background())
	require.NoError(t, err)
	assert.Empty(t, receipts)
}

func TestSweep_DeadlockedJoin_VoidedWithinOneSweep(t *testing.T) {
	g := graph.NewStore()
	g.Seed(
		ir.T("X", ir.PropFlowsTo, ir.Str("J")),
		ir.T("Y", ir.PropFlowsTo, ir.Str("J")),
		ir.T("J", ir.PropJoinKind, ir.Str(ir.JoinAnd)),
		ir.T("X", ir.PropCompletedAt, ir.Str("tx0")),
		ir.T("Y", ir.PropVoidedAt, ir.Str("tx0")),
	)
	guard, d := newTestGuard(t, g, NewTickClock(), DefaultPolicy())
	ctx := context.Background()

	receipts, err := guard.Sweep(ctx)
	require.NoError(t, err)
	require.Len(t, receipts, 1, "join voided within one sweep cycle")

	assert.Equal(t, ir.ReasonDeadlock, receipts[0].Reason)
	assert.True(t, g.HasValue("J", ir.PropTerminatedReason, ir.Str(ir.ReasonDeadlock)))
	assert.NoError(t, d.Chain().VerifyChain(ctx), "guard action is chained")
}

func TestSweep_IncompleteJoinIsNotDeadlocked(t *testing.T) {
	g := graph.NewStore()
	g.Seed(
		ir.T("X", ir.PropFlowsTo, ir.Str("J")),
		ir.T("Y", ir.PropFlowsTo, ir.Str("J")),
		ir.T("J", ir.PropJoinKind, ir.Str(ir.JoinAnd)),
		ir.T("X", ir.PropCompletedAt, ir.Str("tx0")),
	)
	guard, _ := newTestGuard(t, g, NewTickClock(), DefaultPolicy())

	receipts, err := guard.Sweep(context.Background())
	require.NoError(t, err)
	assert.Empty(t, receipts, "merely incomplete is not a deadlock")
}

func TestSweep_CascadesToSpawnedInstances(t *testing.T) {
	g := graph.NewStore()
	g.Seed(
		ir.T("A", ir.PropFlowsTo, ir.Str("B")),
		ir.T("A", ir.PropHasToken, ir.Bool(true)),
		ir.T("A", ir.PropTimerExpiresAt, ir.Int(5)),
		ir.T("task#0", ir.PropParentTask, ir.Str("A")),
		ir.T("task#0", ir.PropHasToken, ir.Bool(true)),
	)
	clock := NewTickClock()
	clock.Advance(5)
	guard, _ := newTestGuard(t, g, clock, DefaultPolicy())

	receipts, err := guard.Sweep(context.Background())
	require.NoError(t, err)
	require.Len(t, receipts, 1)

	assert.False(t, g.HasToken("task#0"), "child token removed by cascade")
	assert.True(t, g.HasValue("task#0", ir.PropTerminatedReason, ir.Str(ir.ReasonTimeout)))
}

func TestSweep_SkipsAlreadyVoided(t *testing.T) {
	g := graph.NewStore()
	g.Seed(
		ir.T("A", ir.PropFlowsTo, ir.Str("B")),
		ir.T("A", ir.PropTimerExpiresAt, ir.Int(1)),
		ir.T("A", ir.PropVoidedAt, ir.Str("tx0")),
	)
	clock := NewTickClock()
	clock.Advance(10)
	guard, _ := newTestGuard(t, g, clock, DefaultPolicy())

	receipts, err := guard.Sweep(context.Background())
	require.NoError(t, err)
	assert.Empty(t, receipts)
}
