package lockchain

import (
	"context"
	"sync"

	"github.com/roach88/loom/internal/ir"
)

// MemoryLedger is the in-process backend: a slice in append order plus a
// hash index. Used by tests and ephemeral runs.
type MemoryLedger struct {
	mu       sync.RWMutex
	receipts []ir.Receipt
	byHash   map[string]int
}

// NewMemoryLedger creates an empty in-memory ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{byHash: make(map[string]int)}
}

// Append implements Ledger. Idempotent on hash.
func (m *MemoryLedger) Append(ctx context.Context, r ir.Receipt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byHash[r.Hash]; ok {
		return nil
	}
	m.byHash[r.Hash] = len(m.receipts)
	m.receipts = append(m.receipts, r)
	return nil
}

// Get implements Ledger.
func (m *MemoryLedger) Get(ctx context.Context, hash string) (ir.Receipt, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	i, ok := m.byHash[hash]
	if !ok {
		return ir.Receipt{}, false, nil
	}
	return m.receipts[i], true, nil
}

// Tip implements Ledger.
func (m *MemoryLedger) Tip(ctx context.Context) (ir.Receipt, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.receipts) == 0 {
		return ir.Receipt{}, false, nil
	}
	return m.receipts[len(m.receipts)-1], true, nil
}

// Len implements Ledger.
func (m *MemoryLedger) Len(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.receipts)), nil
}

// All implements Ledger, returning receipts in append order.
func (m *MemoryLedger) All(ctx context.Context) ([]ir.Receipt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]ir.Receipt, len(m.receipts))
	copy(out, m.receipts)
	return out, nil
}

// Tamper overwrites a stored receipt in place, bypassing all chain
// validation. Exists so integrity tests can corrupt the ledger.
func (m *MemoryLedger) Tamper(i int, mutate func(*ir.Receipt)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	mutate(&m.receipts[i])
}
