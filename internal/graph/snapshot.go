package graph

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/loom/internal/ir"
)

// Snapshot returns a deterministic canonical serialization of the full
// triple set: a JSON list of {o,p,s} maps sorted by subject, then
// predicate, then canonical object form. The same graph content always
// produces the same bytes, independent of insertion order.
func (s *Store) Snapshot() ([]byte, error) {
	s.mu.RLock()
	triples := make([]ir.Triple, 0, len(s.bySubject)*4)
	for _, ts := range s.bySubject {
		triples = append(triples, ts...)
	}
	s.mu.RUnlock()

	type entry struct {
		key       string
		canonical []byte
	}
	entries := make([]entry, 0, len(triples))
	for _, t := range triples {
		c, err := ir.MarshalCanonical(t.CanonicalMap())
		if err != nil {
			return nil, fmt.Errorf("snapshot triple (%s,%s): %w", t.S, t.P, err)
		}
		entries = append(entries, entry{
			key:       string(t.S) + "\x00" + string(t.P) + "\x00" + string(c),
			canonical: c,
		})
	}
	slices.SortFunc(entries, func(a, b entry) int {
		return strings.Compare(a.key, b.key)
	})

	var b strings.Builder
	b.WriteByte('[')
	for i, e := range entries {
		if i > 0 {
			b.WriteByte(',')
		}
		b.Write(e.canonical)
	}
	b.WriteByte(']')
	return []byte(b.String()), nil
}

// StateHash returns the content hash of the current snapshot, used by the
// lockchain for state-before/state-after composition checks.
func (s *Store) StateHash() (string, error) {
	snapshot, err := s.Snapshot()
	if err != nil {
		return "", err
	}
	return ir.StateHash(snapshot), nil
}
