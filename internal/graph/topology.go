package graph

import (
	"slices"

	"github.com/roach88/loom/internal/ir"
)

// Guard is one parsed flowGuard marker: a restricted predicate over a
// single TxContext.Data key, attached to the flow subject -> Target.
// Supported ops: eq, ne, lt, gt, contains. No arbitrary expressions.
type Guard struct {
	Target   ir.NodeID
	Key      string
	Op       string
	Value    ir.Value
	Priority int64
}

// Successors returns the flow targets of a node, sorted lexicographically.
// Sorting gives deterministic tie-breaking everywhere a target set is
// enumerated.
func (s *Store) Successors(node ir.NodeID) []ir.NodeID {
	var out []ir.NodeID
	for _, v := range s.Objects(node, ir.PropFlowsTo) {
		if target, ok := v.(ir.Str); ok {
			out = append(out, ir.NodeID(target))
		}
	}
	slices.Sort(out)
	return out
}

// Predecessors returns all nodes with a flow into node, sorted
// lexicographically.
func (s *Store) Predecessors(node ir.NodeID) []ir.NodeID {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []ir.NodeID
	for subject, triples := range s.bySubject {
		for _, t := range triples {
			if t.P != ir.PropFlowsTo {
				continue
			}
			if target, ok := t.O.(ir.Str); ok && ir.NodeID(target) == node {
				out = append(out, subject)
				break
			}
		}
	}
	slices.Sort(out)
	return out
}

// Guards returns the parsed flow guards of a node ordered by declared
// priority, ties broken by target id. Malformed guard markers are skipped.
func (s *Store) Guards(node ir.NodeID) []Guard {
	var out []Guard
	for _, v := range s.Objects(node, ir.PropFlowGuard) {
		m, ok := v.(ir.Map)
		if !ok {
			continue
		}
		g, ok := parseGuard(m)
		if !ok {
			continue
		}
		out = append(out, g)
	}
	slices.SortFunc(out, func(a, b Guard) int {
		if a.Priority != b.Priority {
			if a.Priority < b.Priority {
				return -1
			}
			return 1
		}
		if a.Target < b.Target {
			return -1
		}
		if a.Target > b.Target {
			return 1
		}
		return 0
	})
	return out
}

func parseGuard(m ir.Map) (Guard, bool) {
	target, ok := m["target"].(ir.Str)
	if !ok {
		return Guard{}, false
	}
	key, ok := m["key"].(ir.Str)
	if !ok {
		return Guard{}, false
	}
	op, ok := m["op"].(ir.Str)
	if !ok {
		return Guard{}, false
	}
	val, ok := m["value"]
	if !ok {
		return Guard{}, false
	}
	g := Guard{
		Target: ir.NodeID(target),
		Key:    string(key),
		Op:     string(op),
		Value:  val,
	}
	if p, ok := m["priority"].(ir.Int); ok {
		g.Priority = int64(p)
	}
	return g, true
}

// DefaultFlow returns the declared XOR-split fallback target.
func (s *Store) DefaultFlow(node ir.NodeID) (ir.NodeID, bool) {
	target, ok := s.StrProp(node, ir.PropDefaultFlow)
	if !ok {
		return "", false
	}
	return ir.NodeID(target), true
}

// ExceptionHandler returns the node's declared exception handler.
func (s *Store) ExceptionHandler(node ir.NodeID) (ir.NodeID, bool) {
	target, ok := s.StrProp(node, ir.PropExceptionHandler)
	if !ok {
		return "", false
	}
	return ir.NodeID(target), true
}

// TokenHolders returns every node holding a live token, sorted
// lexicographically. This is the tick loop's work list and the basis of
// deterministic tie-breaking between logically concurrent events.
func (s *Store) TokenHolders() []ir.NodeID {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []ir.NodeID
	for subject, triples := range s.bySubject {
		for _, t := range triples {
			if t.P == ir.PropHasToken {
				if b, ok := t.O.(ir.Bool); ok && bool(b) {
					out = append(out, subject)
					break
				}
			}
		}
	}
	slices.Sort(out)
	return out
}

// ChildrenOf returns the multiple-instance children linked to parent via
// parentTask, sorted lexicographically.
func (s *Store) ChildrenOf(parent ir.NodeID) []ir.NodeID {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []ir.NodeID
	for subject, triples := range s.bySubject {
		for _, t := range triples {
			if t.P != ir.PropParentTask {
				continue
			}
			if p, ok := t.O.(ir.Str); ok && ir.NodeID(p) == parent {
				out = append(out, subject)
				break
			}
		}
	}
	slices.Sort(out)
	return out
}

// RegionMembers returns every node declared in the named cancellation
// region, sorted lexicographically.
func (s *Store) RegionMembers(region string) []ir.NodeID {
	return s.subjectsWithStr(ir.PropCancelRegion, region)
}

// CaseMembers returns every node declared in the named case, sorted
// lexicographically.
func (s *Store) CaseMembers(caseID string) []ir.NodeID {
	return s.subjectsWithStr(ir.PropCaseID, caseID)
}

// MutexSiblings returns every node declared in the named mutex group,
// sorted lexicographically.
func (s *Store) MutexSiblings(group string) []ir.NodeID {
	return s.subjectsWithStr(ir.PropMutexGroup, group)
}

func (s *Store) subjectsWithStr(pred ir.PropID, value string) []ir.NodeID {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []ir.NodeID
	for subject, triples := range s.bySubject {
		for _, t := range triples {
			if t.P != pred {
				continue
			}
			if v, ok := t.O.(ir.Str); ok && string(v) == value {
				out = append(out, subject)
				break
			}
		}
	}
	slices.Sort(out)
	return out
}

// Nodes returns every subject in the store, sorted lexicographically.
// Used by the chronology guard's sweep.
func (s *Store) Nodes() []ir.NodeID {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]ir.NodeID, 0, len(s.bySubject))
	for subject := range s.bySubject {
		out = append(out, subject)
	}
	slices.Sort(out)
	return out
}
