// Package testutil provides deterministic helpers for tests.
package testutil

import (
	"fmt"
	"sync"
)

// TxSequence generates sequential transaction ids ("tx-001", "tx-002",
// ...) for deterministic test execution and golden comparison. The same
// scenario run twice against fresh sequences produces byte-identical
// receipt streams, hashes aside.
//
// Unlike the production UUIDv7 generator it never exhausts and can be
// reset for test reuse.
type TxSequence struct {
	mu     sync.Mutex
	prefix string
	n      int64
}

// NewTxSequence creates a generator with the given id prefix. An empty
// prefix defaults to "tx".
func NewTxSequence(prefix string) *TxSequence {
	if prefix == "" {
		prefix = "tx"
	}
	return &TxSequence{prefix: prefix}
}

// Generate returns the next id in the sequence.
func (s *TxSequence) Generate() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("%s-%03d", s.prefix, s.n)
}

// Reset restarts the sequence. The next Generate returns "-001" again.
func (s *TxSequence) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n = 0
}
