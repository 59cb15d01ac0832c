package harness

import (
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/loom/internal/ir"
)

// TraceSnapshot captures the trace of a scenario execution for golden
// comparison. Serialized as canonical JSON so the byte output is fully
// deterministic.
type TraceSnapshot struct {
	ScenarioName string       `json:"scenario_name"`
	Trace        []TraceEvent `json:"trace"`
}

// toCanonicalMap converts the snapshot to the value types the canonical
// serializer accepts.
func (s *TraceSnapshot) toCanonicalMap() ir.Map {
	trace := make(ir.List, len(s.Trace))
	for i, event := range s.Trace {
		m := ir.Map{
			"seq":     ir.Int(event.Seq),
			"verb":    ir.Str(event.Verb),
			"adds":    ir.Int(event.Adds),
			"removes": ir.Int(event.Removes),
		}
		if event.Reason != "" {
			m["reason"] = ir.Str(event.Reason)
		}
		trace[i] = m
	}
	return ir.Map{
		"scenario_name": ir.Str(s.ScenarioName),
		"trace":         trace,
	}
}

// RunWithGolden executes a scenario and compares its trace against
// testdata/golden/{scenario.Name}.golden. Regenerate with:
//
//	go test ./internal/harness -update
//
// Returns an error if execution fails or an expectation does not hold;
// trace mismatches fail the test through goldie.
func RunWithGolden(t *testing.T, scenario *Scenario) error {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return err
	}
	if !result.Pass {
		return fmt.Errorf("scenario %q failed: %v", scenario.Name, result.Errors)
	}

	snapshot := TraceSnapshot{
		ScenarioName: scenario.Name,
		Trace:        result.Trace,
	}
	traceJSON, err := ir.MarshalCanonical(snapshot.toCanonicalMap())
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, traceJSON)
	return nil
}
