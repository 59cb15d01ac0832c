package ir

import (
	"encoding/json"
	"fmt"
)

// NodeID identifies a workflow graph node. Multiple-instance children are
// synthesized as "<parent-target>#<index>" and are ordinary nodes.
type NodeID string

// PropID identifies a triple predicate. The engine's vocabulary is the
// constant set in ontology.go; stores accept arbitrary predicates so that
// callers can attach their own metadata.
type PropID string

// Triple is one (subject, predicate, object) statement.
type Triple struct {
	S NodeID `json:"s"`
	P PropID `json:"p"`
	O Value  `json:"o"`
}

// T is a shorthand constructor for Triple.
func T(s NodeID, p PropID, o Value) Triple {
	return Triple{S: s, P: p, O: o}
}

// UnmarshalJSON implements json.Unmarshaler, decoding the object through
// UnmarshalValue so stored triples keep the sealed value constraints.
func (t *Triple) UnmarshalJSON(data []byte) error {
	var raw struct {
		S string          `json:"s"`
		P string          `json:"p"`
		O json.RawMessage `json:"o"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	obj, err := UnmarshalValue(raw.O)
	if err != nil {
		return fmt.Errorf("triple (%s,%s): %w", raw.S, raw.P, err)
	}
	t.S = NodeID(raw.S)
	t.P = PropID(raw.P)
	t.O = obj
	return nil
}

// CanonicalMap returns the triple as a Map for canonical serialization.
func (t Triple) CanonicalMap() Map {
	return Map{
		"s": Str(t.S),
		"p": Str(t.P),
		"o": t.O,
	}
}

// Delta is the immutable effect of one transaction: ordered removals and
// additions. It is never partially applied - the driver applies all
// removals then all additions atomically with respect to readers.
type Delta struct {
	Additions []Triple `json:"additions"`
	Removals  []Triple `json:"removals"`
}

// EmptyDelta is the no-op delta returned by verbs on malformed input.
func EmptyDelta() Delta {
	return Delta{}
}

// IsEmpty reports whether the delta has no effect.
func (d Delta) IsEmpty() bool {
	return len(d.Additions) == 0 && len(d.Removals) == 0
}

// CanonicalMap returns the delta as a Map for canonical serialization.
// Addition/removal order is preserved - it is part of the delta's identity.
func (d Delta) CanonicalMap() Map {
	adds := make(List, len(d.Additions))
	for i, t := range d.Additions {
		adds[i] = t.CanonicalMap()
	}
	rems := make(List, len(d.Removals))
	for i, t := range d.Removals {
		rems[i] = t.CanonicalMap()
	}
	return Map{
		"additions": adds,
		"removals":  rems,
	}
}
