package harness

import (
	"context"
	"fmt"

	"github.com/roach88/loom/internal/chronology"
	"github.com/roach88/loom/internal/driver"
	"github.com/roach88/loom/internal/graph"
	"github.com/roach88/loom/internal/ir"
	"github.com/roach88/loom/internal/lockchain"
	"github.com/roach88/loom/internal/pattern"
	"github.com/roach88/loom/internal/testutil"
)

// StepActor is the actor recorded on receipts produced by fire steps.
const StepActor = "harness"

// Harness executes one scenario against an isolated engine stack.
type Harness struct {
	graph  *graph.Store
	driver *driver.Driver
	guard  *chronology.Guard
	timer  *chronology.TickClock
}

// Run executes a scenario and returns the result.
//
// Each scenario runs against a fresh in-memory graph and ledger with
// sequential transaction ids, so repeated runs produce byte-identical
// traces. A step that fails to execute aborts the run with an error;
// expectation failures are collected on the result instead.
func Run(scenario *Scenario) (*Result, error) {
	g := graph.NewStore()
	if err := seedGraph(g, scenario.Graph); err != nil {
		return nil, fmt.Errorf("scenario %q: %w", scenario.Name, err)
	}

	chain := lockchain.NewChain(lockchain.NewMemoryLedger())
	d := driver.New(g,
		pattern.NewResolver(pattern.DefaultMapping()),
		chain,
		driver.WithTxIDGenerator(testutil.NewTxSequence("tx")),
	)
	timer := chronology.NewTickClock()
	h := &Harness{
		graph:  g,
		driver: d,
		guard:  chronology.NewGuard(d, timer, chronology.DefaultPolicy()),
		timer:  timer,
	}

	result := NewResult()
	if err := h.executeSteps(context.Background(), scenario.Steps, result); err != nil {
		return nil, fmt.Errorf("scenario %q: %w", scenario.Name, err)
	}

	for _, msg := range evaluateExpect(g, chain, scenario.Expect) {
		result.AddError(msg)
	}
	return result, nil
}

// executeSteps runs the script in order, collecting every receipt into
// the trace.
func (h *Harness) executeSteps(ctx context.Context, steps []Step, result *Result) error {
	for i, step := range steps {
		switch {
		case step.Fire != "":
			data, err := convertData(step.Data)
			if err != nil {
				return fmt.Errorf("step %d: %w", i, err)
			}
			receipt, err := h.driver.Execute(ctx, ir.NodeID(step.Fire), ir.TxContext{
				Actor: StepActor,
				Data:  data,
			})
			if err != nil {
				return fmt.Errorf("step %d: fire %s: %w", i, step.Fire, err)
			}
			result.AddReceipt(receipt)

		case step.Tick:
			receipts, err := h.driver.Tick(ctx, nil)
			if err != nil {
				return fmt.Errorf("step %d: tick: %w", i, err)
			}
			for _, r := range receipts {
				result.AddReceipt(r)
			}

		case step.Sweep:
			receipts, err := h.guard.Sweep(ctx)
			if err != nil {
				return fmt.Errorf("step %d: sweep: %w", i, err)
			}
			for _, r := range receipts {
				result.AddReceipt(r)
			}

		case step.Advance != 0:
			h.timer.Advance(step.Advance)
		}
	}
	return nil
}

// seedGraph translates node declarations into topology triples.
func seedGraph(g *graph.Store, defs []NodeDef) error {
	for _, def := range defs {
		node := ir.NodeID(def.Node)
		for _, target := range def.FlowsTo {
			g.Seed(ir.T(node, ir.PropFlowsTo, ir.Str(target)))
		}
		if def.Token {
			g.Seed(ir.T(node, ir.PropHasToken, ir.Bool(true)))
		}
		if def.Split != "" {
			g.Seed(ir.T(node, ir.PropSplitKind, ir.Str(def.Split)))
		}
		if def.Join != "" {
			g.Seed(ir.T(node, ir.PropJoinKind, ir.Str(def.Join)))
		}
		if def.Threshold != 0 {
			g.Seed(ir.T(node, ir.PropJoinThreshold, ir.Int(def.Threshold)))
		}
		if def.Instances != 0 {
			g.Seed(ir.T(node, ir.PropInstanceCount, ir.Int(def.Instances)))
		}
		if def.MutexGroup != "" {
			g.Seed(ir.T(node, ir.PropMutexGroup, ir.Str(def.MutexGroup)))
		}
		if def.Region != "" {
			g.Seed(ir.T(node, ir.PropCancelRegion, ir.Str(def.Region)))
		}
		if def.Case != "" {
			g.Seed(ir.T(node, ir.PropCaseID, ir.Str(def.Case)))
		}
		if def.Cancel != "" {
			g.Seed(ir.T(node, ir.PropCancelScope, ir.Str(def.Cancel)))
		}
		if def.Handler != "" {
			g.Seed(ir.T(node, ir.PropExceptionHandler, ir.Str(def.Handler)))
		}
		if def.Timer != 0 {
			g.Seed(ir.T(node, ir.PropTimerExpiresAt, ir.Int(def.Timer)))
		}
		if def.DefaultFlow != "" {
			g.Seed(ir.T(node, ir.PropDefaultFlow, ir.Str(def.DefaultFlow)))
		}
		for _, guard := range def.Guards {
			value, err := ir.FromAny(guard.Value)
			if err != nil {
				return fmt.Errorf("node %s: guard value: %w", def.Node, err)
			}
			g.Seed(ir.T(node, ir.PropFlowGuard, ir.Map{
				"target":   ir.Str(guard.Target),
				"key":      ir.Str(guard.Key),
				"op":       ir.Str(guard.Op),
				"value":    value,
				"priority": ir.Int(guard.Priority),
			}))
		}
	}
	return nil
}

// convertData converts YAML-parsed step data into transaction data.
// Null values are rejected early; they would fail later during
// canonical serialization anyway, with a worse error.
func convertData(data map[string]any) (ir.Map, error) {
	if data == nil {
		return nil, nil
	}
	out := make(ir.Map, len(data))
	for key, val := range data {
		v, err := ir.FromAny(val)
		if err != nil {
			return nil, fmt.Errorf("data field %q: %w", key, err)
		}
		out[key] = v
	}
	return out, nil
}
