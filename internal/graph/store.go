package graph

import (
	"sync"

	"github.com/roach88/loom/internal/ir"
)

// Store is the triple multiset behind an explicit handle. Uniqueness of
// (s,p,o) is not enforced - verbs are responsible for avoiding duplicate
// token/marker insertion - but Apply drops exact-duplicate hasToken
// additions defensively so a buggy caller cannot double-activate a node.
type Store struct {
	mu        sync.RWMutex
	bySubject map[ir.NodeID][]ir.Triple
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		bySubject: make(map[ir.NodeID][]ir.Triple),
	}
}

// Seed inserts design-time topology triples. Intended for graph loading
// before execution starts; execution-time mutation goes through Apply.
func (s *Store) Seed(triples ...ir.Triple) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range triples {
		s.bySubject[t.S] = append(s.bySubject[t.S], t)
	}
}

// Apply applies a delta: all removals, then all additions, atomically with
// respect to readers. Removing an absent triple is a no-op (removals are
// idempotent so replayed deltas cannot fail). Exact-duplicate hasToken
// additions are dropped.
func (s *Store) Apply(d ir.Delta) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range d.Removals {
		s.removeLocked(t)
	}
	for _, t := range d.Additions {
		if t.P == ir.PropHasToken && s.hasValueLocked(t.S, t.P, t.O) {
			continue
		}
		s.bySubject[t.S] = append(s.bySubject[t.S], t)
	}
}

// removeLocked removes the first triple equal to t. Must hold the write lock.
func (s *Store) removeLocked(t ir.Triple) {
	triples := s.bySubject[t.S]
	for i, existing := range triples {
		if existing.P == t.P && ir.Equal(existing.O, t.O) {
			s.bySubject[t.S] = append(triples[:i:i], triples[i+1:]...)
			if len(s.bySubject[t.S]) == 0 {
				delete(s.bySubject, t.S)
			}
			return
		}
	}
}

func (s *Store) hasValueLocked(subject ir.NodeID, pred ir.PropID, obj ir.Value) bool {
	for _, t := range s.bySubject[subject] {
		if t.P == pred && ir.Equal(t.O, obj) {
			return true
		}
	}
	return false
}

// Has reports whether the subject carries any triple with the predicate.
func (s *Store) Has(subject ir.NodeID, pred ir.PropID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.bySubject[subject] {
		if t.P == pred {
			return true
		}
	}
	return false
}

// HasValue reports whether the exact triple exists.
func (s *Store) HasValue(subject ir.NodeID, pred ir.PropID, obj ir.Value) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.hasValueLocked(subject, pred, obj)
}

// First returns the first object for (subject, pred).
func (s *Store) First(subject ir.NodeID, pred ir.PropID) (ir.Value, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.bySubject[subject] {
		if t.P == pred {
			return t.O, true
		}
	}
	return nil, false
}

// Objects returns all objects for (subject, pred) in insertion order.
func (s *Store) Objects(subject ir.NodeID, pred ir.PropID) []ir.Value {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []ir.Value
	for _, t := range s.bySubject[subject] {
		if t.P == pred {
			out = append(out, t.O)
		}
	}
	return out
}

// StrProp returns the string object for (subject, pred), if present and a Str.
func (s *Store) StrProp(subject ir.NodeID, pred ir.PropID) (string, bool) {
	v, ok := s.First(subject, pred)
	if !ok {
		return "", false
	}
	str, ok := v.(ir.Str)
	if !ok {
		return "", false
	}
	return string(str), true
}

// IntProp returns the integer object for (subject, pred), if present and an Int.
func (s *Store) IntProp(subject ir.NodeID, pred ir.PropID) (int64, bool) {
	v, ok := s.First(subject, pred)
	if !ok {
		return 0, false
	}
	n, ok := v.(ir.Int)
	if !ok {
		return 0, false
	}
	return int64(n), true
}

// NodeExists reports whether the node appears anywhere in the graph, as a
// subject or as a flow target.
func (s *Store) NodeExists(node ir.NodeID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.bySubject[node]) > 0 {
		return true
	}
	for _, triples := range s.bySubject {
		for _, t := range triples {
			if t.P != ir.PropFlowsTo && t.P != ir.PropExceptionHandler {
				continue
			}
			if target, ok := t.O.(ir.Str); ok && ir.NodeID(target) == node {
				return true
			}
		}
	}
	return false
}

// HasToken reports whether the node currently holds a live token.
func (s *Store) HasToken(node ir.NodeID) bool {
	return s.HasValue(node, ir.PropHasToken, ir.Bool(true))
}
