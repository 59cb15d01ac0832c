package ir

import "fmt"

// Verb is the closed enum of the five primitive graph-rewrite operations.
// Exhaustive switches over Verb are the only dispatch mechanism - there is
// no string-keyed or per-pattern dispatch anywhere in the engine.
type Verb int

const (
	// VerbTransmute moves a token along the unique outgoing flow.
	VerbTransmute Verb = iota + 1
	// VerbCopy clones a token across a parameterized target set.
	VerbCopy
	// VerbFilter routes a token through guarded outgoing flows.
	VerbFilter
	// VerbAwait synchronizes predecessor branches against a threshold.
	VerbAwait
	// VerbVoid terminates a parameterized node set.
	VerbVoid
)

// String implements fmt.Stringer for Verb.
func (v Verb) String() string {
	switch v {
	case VerbTransmute:
		return "transmute"
	case VerbCopy:
		return "copy"
	case VerbFilter:
		return "filter"
	case VerbAwait:
		return "await"
	case VerbVoid:
		return "void"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(v))
	}
}

// ParseVerb converts a verb name from declarative mapping data.
func ParseVerb(s string) (Verb, error) {
	switch s {
	case "transmute":
		return VerbTransmute, nil
	case "copy":
		return VerbCopy, nil
	case "filter":
		return VerbFilter, nil
	case "await":
		return VerbAwait, nil
	case "void":
		return VerbVoid, nil
	default:
		return 0, fmt.Errorf("unknown verb %q", s)
	}
}

// Params is the sealed interface over per-verb parameter records. Exactly
// one concrete type exists per verb; records are frozen after construction
// and never mutated. A sum type is used instead of one catch-all struct
// with mostly-unset optional fields.
type Params interface {
	params()
	Verb() Verb
	// CanonicalMap returns the record for canonical serialization, used in
	// receipt hashing so parameter identity is part of the audit trail.
	CanonicalMap() Map
}

// TransmuteParams carries no parameters.
type TransmuteParams struct{}

func (TransmuteParams) params()    {}
func (TransmuteParams) Verb() Verb { return VerbTransmute }

// CanonicalMap implements Params.
func (TransmuteParams) CanonicalMap() Map {
	return Map{"verb": Str("transmute")}
}

// CardinalityMode selects how Copy computes its target set.
type CardinalityMode string

const (
	// CardinalityTopology targets all graph-adjacent successors.
	CardinalityTopology CardinalityMode = "topology"
	// CardinalityStatic targets N successors, N from the instanceCount
	// design-time attribute.
	CardinalityStatic CardinalityMode = "static"
	// CardinalityDynamic targets N instances, N = length of the runtime
	// targets list in TxContext.Data.
	CardinalityDynamic CardinalityMode = "dynamic"
	// CardinalityIncremental adds exactly one new instance, numbered by
	// counting existing parentTask-linked children.
	CardinalityIncremental CardinalityMode = "incremental"
	// CardinalityExplicit targets exactly Count instances.
	CardinalityExplicit CardinalityMode = "explicit"
)

// CopyParams parameterizes Copy.
type CopyParams struct {
	Cardinality CardinalityMode
	// Count is meaningful only for CardinalityExplicit.
	Count int64
}

func (CopyParams) params()    {}
func (CopyParams) Verb() Verb { return VerbCopy }

// CanonicalMap implements Params.
func (p CopyParams) CanonicalMap() Map {
	m := Map{
		"verb":        Str("copy"),
		"cardinality": Str(string(p.Cardinality)),
	}
	if p.Cardinality == CardinalityExplicit {
		m["count"] = Int(p.Count)
	}
	return m
}

// SelectionMode selects how Filter evaluates outgoing guards.
type SelectionMode string

const (
	// SelectExactlyOne fires the first true guard in declared priority
	// order; the declared default flow fires when none match.
	SelectExactlyOne SelectionMode = "exactlyOne"
	// SelectOneOrMore fires every flow whose guard is true.
	SelectOneOrMore SelectionMode = "oneOrMore"
	// SelectDeferred marks the subject awaitingSelection for an external
	// actor; no activation.
	SelectDeferred SelectionMode = "deferred"
	// SelectMutex proceeds only when no sibling in the mutex group holds a
	// token; otherwise empty delta, retried on a later tick.
	SelectMutex SelectionMode = "mutex"
)

// FilterParams parameterizes Filter.
type FilterParams struct {
	SelectionMode SelectionMode
}

func (FilterParams) params()    {}
func (FilterParams) Verb() Verb { return VerbFilter }

// CanonicalMap implements Params.
func (p FilterParams) CanonicalMap() Map {
	return Map{
		"verb":           Str("filter"),
		"selection_mode": Str(string(p.SelectionMode)),
	}
}

// ThresholdMode selects how Await counts completed predecessors.
type ThresholdMode string

const (
	// ThresholdAll fires when completed == total.
	ThresholdAll ThresholdMode = "all"
	// ThresholdActive fires when completed >= total - voided.
	ThresholdActive ThresholdMode = "active"
	// ThresholdDynamic fires when completed >= the Int read from
	// TxContext.Data.
	ThresholdDynamic ThresholdMode = "dynamic"
	// ThresholdCount fires when completed >= Count. Count=1 is the
	// discriminator (first arrival wins).
	ThresholdCount ThresholdMode = "count"
)

// AwaitParams parameterizes Await.
type AwaitParams struct {
	Threshold ThresholdMode
	// Count is meaningful only for ThresholdCount.
	Count int64
}

func (AwaitParams) params()    {}
func (AwaitParams) Verb() Verb { return VerbAwait }

// CanonicalMap implements Params.
func (p AwaitParams) CanonicalMap() Map {
	m := Map{
		"verb":      Str("await"),
		"threshold": Str(string(p.Threshold)),
	}
	if p.Threshold == ThresholdCount {
		m["count"] = Int(p.Count)
	}
	return m
}

// CancelScope selects the node set Void terminates.
type CancelScope string

const (
	// ScopeSelf voids just the subject.
	ScopeSelf CancelScope = "self"
	// ScopeRegion voids all nodes in the subject's cancellation region.
	ScopeRegion CancelScope = "region"
	// ScopeCase voids every token-holding node in the subject's case.
	ScopeCase CancelScope = "case"
	// ScopeInstances voids all live multiple-instance children,
	// transitively via parentTask.
	ScopeInstances CancelScope = "instances"
	// ScopeTask voids the subject and routes a token to its declared
	// exception handler.
	ScopeTask CancelScope = "task"
)

// VoidParams parameterizes Void.
type VoidParams struct {
	Scope CancelScope
	// Reason is stamped as terminatedReason on every voided node.
	// Empty defaults to ReasonCancelled.
	Reason string
}

func (VoidParams) params()    {}
func (VoidParams) Verb() Verb { return VerbVoid }

// CanonicalMap implements Params.
func (p VoidParams) CanonicalMap() Map {
	m := Map{
		"verb":               Str("void"),
		"cancellation_scope": Str(string(p.Scope)),
	}
	if p.Reason != "" {
		m["reason"] = Str(p.Reason)
	}
	return m
}
