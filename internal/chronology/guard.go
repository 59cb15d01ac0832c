package chronology

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/roach88/loom/internal/driver"
	"github.com/roach88/loom/internal/ir"
	"github.com/roach88/loom/internal/pattern"
)

// GuardActor is the actor recorded on guard-initiated receipts.
const GuardActor = "chronology"

// Policy holds the guard's tunables. TTL and interval defaults are
// deployment policy, not derived from the engine.
type Policy struct {
	// ZombieTTL is the number of logical ticks a token may sit on a node
	// without completing before the zombie sweep voids it.
	ZombieTTL int64

	// SweepInterval is the period of the Run loop.
	SweepInterval time.Duration
}

// DefaultPolicy returns the standard guard policy.
func DefaultPolicy() Policy {
	return Policy{
		ZombieTTL:     1000,
		SweepInterval: time.Second,
	}
}

// DeadlockDetected reports an AND-join that can never fire because a
// predecessor was voided. Resolved by auto-Void inside the sweep; never
// propagated to callers.
type DeadlockDetected struct {
	Join        ir.NodeID
	Predecessor ir.NodeID
}

func (e *DeadlockDetected) Error() string {
	return fmt.Sprintf("join %q can never fire: predecessor %q is voided", e.Join, e.Predecessor)
}

// IsDeadlockDetected reports whether err is a DeadlockDetected.
func IsDeadlockDetected(err error) bool {
	var e *DeadlockDetected
	return errors.As(err, &e)
}

// Guard periodically scans the graph and synthesizes Void transactions
// through the driver for every violation it finds.
type Guard struct {
	driver *driver.Driver
	clock  Clock
	policy Policy
}

// NewGuard creates a guard over a driver. The clock serves timer
// deadlines; zombie ages are measured on the driver's logical clock.
func NewGuard(d *driver.Driver, clock Clock, policy Policy) *Guard {
	return &Guard{driver: d, clock: clock, policy: policy}
}

// Sweep runs one full scan in deterministic node order and returns the
// receipts of every synthesized Void. Checks per node:
//
//	(a) expired timer          -> Void self, reason timeout
//	(b) zombie token past TTL  -> Void self, reason void
//	(c) dead AND-join          -> Void join, reason deadlock
//
// Cascade to spawned instances is the Void verb's own closure. A failed
// synthesis aborts the sweep; receipts already produced are returned.
func (g *Guard) Sweep(ctx context.Context) ([]ir.Receipt, error) {
	graph := g.driver.Graph()
	now := g.clock.Now()
	age := g.driver.Clock().Current()

	var receipts []ir.Receipt
	for _, node := range graph.Nodes() {
		select {
		case <-ctx.Done():
			return receipts, ctx.Err()
		default:
		}
		if graph.Has(node, ir.PropVoidedAt) {
			continue
		}

		var reason string
		switch {
		case g.timerExpired(node, now):
			reason = ir.ReasonTimeout

		case g.isZombie(node, age):
			reason = ir.ReasonVoid

		case g.isDeadJoin(node):
			reason = ir.ReasonDeadlock

		default:
			continue
		}

		receipt, err := g.voidNode(ctx, node, reason)
		if err != nil {
			return receipts, fmt.Errorf("sweep %s: %w", node, err)
		}
		receipts = append(receipts, receipt)
	}
	return receipts, nil
}

// Run executes Sweep on every policy interval until ctx is cancelled.
// Sweep failures are logged; the loop keeps running.
func (g *Guard) Run(ctx context.Context) error {
	ticker := time.NewTicker(g.policy.SweepInterval)
	defer ticker.Stop()

	slog.Info("chronology guard starting",
		"zombie_ttl", g.policy.ZombieTTL,
		"sweep_interval", g.policy.SweepInterval,
	)
	for {
		select {
		case <-ctx.Done():
			slog.Info("chronology guard stopping")
			return ctx.Err()
		case <-ticker.C:
			receipts, err := g.Sweep(ctx)
			if err != nil {
				slog.Error("guard sweep failed", "error", err)
				continue
			}
			if len(receipts) > 0 {
				slog.Info("guard sweep enforced", "voided", len(receipts))
			}
		}
	}
}

func (g *Guard) timerExpired(node ir.NodeID, now int64) bool {
	graph := g.driver.Graph()
	deadline, ok := graph.IntProp(node, ir.PropTimerExpiresAt)
	if !ok {
		return false
	}
	return graph.HasToken(node) && deadline <= now
}

func (g *Guard) isZombie(node ir.NodeID, age int64) bool {
	graph := g.driver.Graph()
	if !graph.HasToken(node) || graph.Has(node, ir.PropCompletedAt) {
		return false
	}
	activated, ok := graph.IntProp(node, ir.PropActivatedAt)
	if !ok {
		return false
	}
	return activated+g.policy.ZombieTTL < age
}

// isDeadJoin detects an unfired all-threshold join with a voided
// predecessor: completed can never reach total.
func (g *Guard) isDeadJoin(node ir.NodeID) bool {
	graph := g.driver.Graph()
	kind, ok := graph.StrProp(node, ir.PropJoinKind)
	if !ok || kind != ir.JoinAnd {
		return false
	}
	if graph.HasToken(node) || graph.Has(node, ir.PropCompletedAt) {
		return false
	}
	for _, pred := range graph.Predecessors(node) {
		if graph.Has(pred, ir.PropVoidedAt) {
			err := &DeadlockDetected{Join: node, Predecessor: pred}
			slog.Warn("deadlock detected", "error", err)
			return true
		}
	}
	return false
}

func (g *Guard) voidNode(ctx context.Context, node ir.NodeID, reason string) (ir.Receipt, error) {
	return g.driver.ExecuteOverride(ctx, node, pattern.Binding{
		Verb:   ir.VerbVoid,
		Params: ir.VoidParams{Scope: ir.ScopeSelf, Reason: reason},
	}, ir.TxContext{
		TxID:  g.driver.NewTxID(),
		Actor: GuardActor,
	})
}
