package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario defines a conformance test scenario: a graph, a script of
// steps, and expectations over the outcome.
type Scenario struct {
	// Name uniquely identifies this scenario. It is also the golden
	// file name.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Graph declares the workflow topology and initial token placement.
	Graph []NodeDef `yaml:"graph"`

	// Steps is the execution script, run in order.
	Steps []Step `yaml:"steps"`

	// Expect validates the final marker state and receipt chain.
	Expect Expect `yaml:"expect"`
}

// NodeDef declares one node's topology triples. Zero-valued fields emit
// no triples, so a plain task is just a name and its flow targets.
type NodeDef struct {
	Node        string     `yaml:"node"`
	FlowsTo     []string   `yaml:"flows_to,omitempty"`
	Token       bool       `yaml:"token,omitempty"`
	Split       string     `yaml:"split,omitempty"`
	Join        string     `yaml:"join,omitempty"`
	Threshold   int64      `yaml:"threshold,omitempty"`
	Instances   int64      `yaml:"instances,omitempty"`
	MutexGroup  string     `yaml:"mutex_group,omitempty"`
	Region      string     `yaml:"region,omitempty"`
	Case        string     `yaml:"case,omitempty"`
	Cancel      string     `yaml:"cancel,omitempty"`
	Handler     string     `yaml:"handler,omitempty"`
	Timer       int64      `yaml:"timer,omitempty"`
	Guards      []GuardDef `yaml:"guards,omitempty"`
	DefaultFlow string     `yaml:"default_flow,omitempty"`
}

// GuardDef declares one flow guard on the node it appears under.
type GuardDef struct {
	Target   string `yaml:"target"`
	Key      string `yaml:"key"`
	Op       string `yaml:"op"`
	Value    any    `yaml:"value"`
	Priority int64  `yaml:"priority,omitempty"`
}

// Step is one scripted action. Exactly one of the fields must be set:
//
//   - fire: execute the named node through pattern resolution
//   - tick: run one cooperative tick pass
//   - sweep: run one chronology guard sweep
//   - advance: move the timer clock forward by N ticks
type Step struct {
	Fire    string         `yaml:"fire,omitempty"`
	Data    map[string]any `yaml:"data,omitempty"`
	Tick    bool           `yaml:"tick,omitempty"`
	Sweep   bool           `yaml:"sweep,omitempty"`
	Advance int64          `yaml:"advance,omitempty"`
}

// Expect validates the final state. All listed checks must hold.
type Expect struct {
	// Tokens lists nodes that must hold a live token.
	Tokens []string `yaml:"tokens,omitempty"`

	// NoTokens lists nodes that must not hold a token.
	NoTokens []string `yaml:"no_tokens,omitempty"`

	// Completed lists nodes that must carry a completedAt marker.
	Completed []string `yaml:"completed,omitempty"`

	// Voided lists nodes that must carry a voidedAt marker.
	Voided []string `yaml:"voided,omitempty"`

	// ChainLength, if set, is the required receipt count.
	ChainLength *int64 `yaml:"chain_length,omitempty"`

	// VerifyChain requires full chain verification to pass.
	VerifyChain bool `yaml:"verify_chain,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file. Returns an error
// if the file is missing, malformed, contains unknown fields (typos),
// or fails validation.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}
	return &scenario, nil
}

// validateScenario checks that required fields are present and each
// step declares exactly one action.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}
	if len(s.Graph) == 0 {
		return fmt.Errorf("graph list is required and must be non-empty")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, def := range s.Graph {
		if def.Node == "" {
			return fmt.Errorf("graph[%d]: node is required", i)
		}
		for j, g := range def.Guards {
			if g.Target == "" || g.Key == "" || g.Op == "" {
				return fmt.Errorf("graph[%d].guards[%d]: target, key, and op are required", i, j)
			}
			if g.Value == nil {
				return fmt.Errorf("graph[%d].guards[%d]: value is required", i, j)
			}
		}
	}

	for i, step := range s.Steps {
		actions := 0
		if step.Fire != "" {
			actions++
		}
		if step.Tick {
			actions++
		}
		if step.Sweep {
			actions++
		}
		if step.Advance != 0 {
			actions++
		}
		if actions != 1 {
			return fmt.Errorf("steps[%d]: exactly one of fire, tick, sweep, advance is required", i)
		}
		if step.Data != nil && step.Fire == "" {
			return fmt.Errorf("steps[%d]: data requires fire", i)
		}
		if step.Advance < 0 {
			return fmt.Errorf("steps[%d]: advance must be positive", i)
		}
	}
	return nil
}
