package driver

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/roach88/loom/internal/graph"
	"github.com/roach88/loom/internal/ir"
	"github.com/roach88/loom/internal/kernel"
	"github.com/roach88/loom/internal/lockchain"
	"github.com/roach88/loom/internal/pattern"
)

// DefaultMaxSteps is the default step budget per case.
const DefaultMaxSteps = 1000

// Driver executes transactions against the graph and chains their
// receipts. See the package comment for the concurrency discipline.
type Driver struct {
	mu       sync.Mutex
	graph    *graph.Store
	resolver *pattern.Resolver
	table    map[ir.Verb]kernel.Func
	chain    *lockchain.Chain
	clock    *Clock
	txGen    TxIDGenerator

	maxSteps int
	budgets  map[string]*StepBudget
}

// Option configures a Driver.
type Option func(*Driver)

// WithMaxSteps sets the step budget per case.
func WithMaxSteps(maxSteps int) Option {
	return func(d *Driver) {
		d.maxSteps = maxSteps
	}
}

// WithClock installs a pre-positioned clock, for resuming against an
// existing chain.
func WithClock(c *Clock) Option {
	return func(d *Driver) {
		d.clock = c
	}
}

// WithTxIDGenerator installs the generator used when a caller supplies
// no transaction id. Tests install a FixedGenerator.
func WithTxIDGenerator(gen TxIDGenerator) Option {
	return func(d *Driver) {
		d.txGen = gen
	}
}

// New creates a Driver over a graph, a resolver, and a chain.
func New(g *graph.Store, r *pattern.Resolver, chain *lockchain.Chain, opts ...Option) *Driver {
	d := &Driver{
		graph:    g,
		resolver: r,
		table:    kernel.Table(),
		chain:    chain,
		clock:    NewClock(),
		txGen:    UUIDv7Generator{},
		maxSteps: DefaultMaxSteps,
		budgets:  make(map[string]*StepBudget),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Execute runs one transaction: resolve the node's verb from mapping
// data, dispatch, apply, receipt. Callers receive either a Receipt or a
// typed error; there is no partial application.
func (d *Driver) Execute(ctx context.Context, node ir.NodeID, tctx ir.TxContext) (ir.Receipt, error) {
	if !d.graph.NodeExists(node) {
		return ir.Receipt{}, &MalformedGraphError{Node: node}
	}
	binding, err := d.resolver.Resolve(d.graph, node)
	if err != nil {
		slog.Warn("transaction aborted: unmapped pattern",
			"node", node,
			"error", err,
		)
		return ir.Receipt{}, err
	}
	return d.run(ctx, node, binding, tctx)
}

// ExecuteOverride runs one transaction with a forced binding, skipping
// resolution. The chronology guard's entry point, also used to resolve
// a deferred selection from outside. Same lifecycle, same receipts.
func (d *Driver) ExecuteOverride(ctx context.Context, node ir.NodeID, binding pattern.Binding, tctx ir.TxContext) (ir.Receipt, error) {
	if !d.graph.NodeExists(node) {
		return ir.Receipt{}, &MalformedGraphError{Node: node}
	}
	return d.run(ctx, node, binding, tctx)
}

// Graph returns the driver's graph store for read-only inspection.
func (d *Driver) Graph() *graph.Store {
	return d.graph
}

// Chain returns the driver's lockchain.
func (d *Driver) Chain() *lockchain.Chain {
	return d.chain
}

// Clock returns the driver's logical clock.
func (d *Driver) Clock() *Clock {
	return d.clock
}

// NewTxID generates a fresh transaction id.
func (d *Driver) NewTxID() string {
	return d.txGen.Generate()
}

// run is the exclusive write section: evaluate, budget-check, apply,
// hash, append. Exactly one run executes at a time.
func (d *Driver) run(ctx context.Context, node ir.NodeID, binding pattern.Binding, tctx ir.TxContext) (ir.Receipt, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.chain.Halted() {
		return ir.Receipt{}, fmt.Errorf("execute %s: %w", node,
			&lockchain.ChainIntegrityError{Seq: -1, Reason: "chain is halted"})
	}

	fn, ok := d.table[binding.Verb]
	if !ok {
		return ir.Receipt{}, fmt.Errorf("no kernel function for verb %s", binding.Verb)
	}
	if tctx.TxID == "" {
		tctx.TxID = d.txGen.Generate()
	}

	prevHash, err := d.chain.TipHash(ctx)
	if err != nil {
		return ir.Receipt{}, fmt.Errorf("execute %s: %w", node, err)
	}
	tctx.PrevHash = prevHash

	stateBefore, err := d.graph.StateHash()
	if err != nil {
		return ir.Receipt{}, fmt.Errorf("execute %s: state hash: %w", node, err)
	}

	seq := d.clock.Next()
	delta := fn(d.graph, node, tctx, binding.Params)

	stateAfter := stateBefore
	if !delta.IsEmpty() {
		if err := d.budgetFor(node).Check(d.caseOf(node)); err != nil {
			slog.Error("step budget exceeded",
				"node", node,
				"tx_id", tctx.TxID,
				"error", err,
			)
			return ir.Receipt{}, err
		}
		delta = d.stampActivations(delta, seq)
		d.graph.Apply(delta)
		stateAfter, err = d.graph.StateHash()
		if err != nil {
			return ir.Receipt{}, fmt.Errorf("execute %s: state hash after apply: %w", node, err)
		}
	}

	paramsJSON, err := ir.MarshalCanonical(binding.Params.CanonicalMap())
	if err != nil {
		return ir.Receipt{}, fmt.Errorf("execute %s: marshal params: %w", node, err)
	}

	receipt := ir.Receipt{
		PrevHash:    prevHash,
		TxID:        tctx.TxID,
		Actor:       tctx.Actor,
		Seq:         seq,
		Verb:        binding.Verb,
		VerbName:    binding.Verb.String(),
		ParamsJSON:  string(paramsJSON),
		Delta:       delta,
		StateBefore: stateBefore,
		StateAfter:  stateAfter,
		Reason:      voidReason(binding.Params),
	}
	receipt.Hash, err = ir.ReceiptHash(receipt)
	if err != nil {
		return ir.Receipt{}, fmt.Errorf("execute %s: receipt hash: %w", node, err)
	}

	if err := d.chain.Append(ctx, receipt); err != nil {
		if !delta.IsEmpty() {
			// Unpublish: the audit trail never recorded this delta.
			d.graph.Apply(ir.Delta{Removals: delta.Additions, Additions: delta.Removals})
			slog.Warn("transaction rolled back: receipt refused",
				"node", node,
				"tx_id", tctx.TxID,
				"seq", seq,
			)
		}
		return ir.Receipt{}, fmt.Errorf("execute %s: %w", node, err)
	}

	if delta.IsEmpty() {
		slog.Debug("transaction applied as no-op",
			"node", node,
			"verb", receipt.VerbName,
			"tx_id", tctx.TxID,
			"seq", seq,
		)
	} else {
		slog.Info("transaction applied",
			"node", node,
			"verb", receipt.VerbName,
			"tx_id", tctx.TxID,
			"seq", seq,
			"additions", receipt.Additions(),
			"removals", receipt.Removals(),
		)
	}
	return receipt, nil
}

// stampActivations augments a delta with activatedAt bookkeeping: every
// token addition gets an activation tick, every token removal sheds the
// node's stale activation marker. Kernel verbs stay clock-free.
func (d *Driver) stampActivations(delta ir.Delta, seq int64) ir.Delta {
	for _, t := range delta.Additions {
		if t.P == ir.PropHasToken {
			delta.Additions = append(delta.Additions,
				ir.T(t.S, ir.PropActivatedAt, ir.Int(seq)))
		}
	}
	for _, t := range delta.Removals {
		if t.P != ir.PropHasToken {
			continue
		}
		if current, ok := d.graph.First(t.S, ir.PropActivatedAt); ok {
			delta.Removals = append(delta.Removals,
				ir.T(t.S, ir.PropActivatedAt, current))
		}
	}
	return delta
}

func (d *Driver) caseOf(node ir.NodeID) string {
	if caseID, ok := d.graph.StrProp(node, ir.PropCaseID); ok {
		return caseID
	}
	return "default"
}

func (d *Driver) budgetFor(node ir.NodeID) *StepBudget {
	caseID := d.caseOf(node)
	b, ok := d.budgets[caseID]
	if !ok {
		b = NewStepBudget(d.maxSteps)
		d.budgets[caseID] = b
	}
	return b
}

// voidReason surfaces the Void reason on the receipt so guard actions
// are distinguishable in the audit stream without parsing params.
func voidReason(p ir.Params) string {
	if vp, ok := p.(ir.VoidParams); ok {
		if vp.Reason != "" {
			return vp.Reason
		}
		return ir.ReasonCancelled
	}
	return ""
}
