package lockchain

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/roach88/loom/internal/ir"
)

// GenesisPrevHash is the prev hash carried by the first receipt.
const GenesisPrevHash = ""

// Ledger is the pluggable storage backend behind a Chain. Implementations
// only persist and retrieve; all chain validation lives in Chain.
// Append must be idempotent on hash: re-appending an already stored
// receipt is a no-op.
type Ledger interface {
	Append(ctx context.Context, r ir.Receipt) error
	Get(ctx context.Context, hash string) (ir.Receipt, bool, error)
	Tip(ctx context.Context) (ir.Receipt, bool, error)
	Len(ctx context.Context) (int64, error)
	All(ctx context.Context) ([]ir.Receipt, error)
}

// Chain enforces the hash-chain discipline over a Ledger.
type Chain struct {
	mu     sync.Mutex
	ledger Ledger
	halted bool
}

// NewChain wraps a ledger.
func NewChain(l Ledger) *Chain {
	return &Chain{ledger: l}
}

// Append validates and stores a receipt. The receipt's prev hash must
// equal the current tip's hash (or GenesisPrevHash on an empty chain)
// and its stored hash must match its recomputed content hash. Any
// violation returns ChainIntegrityError and halts the chain.
func (c *Chain) Append(ctx context.Context, r ir.Receipt) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.halted {
		return &ChainIntegrityError{Seq: -1, Hash: r.Hash, Reason: "chain is halted"}
	}

	expected, err := ir.ReceiptHash(r)
	if err != nil {
		return fmt.Errorf("append receipt: %w", err)
	}
	if r.Hash != expected {
		c.halt("receipt hash does not match content", r)
		return &ChainIntegrityError{Seq: -1, Hash: r.Hash,
			Reason: "receipt hash does not match content"}
	}

	tip, exists, err := c.ledger.Tip(ctx)
	if err != nil {
		return fmt.Errorf("append receipt: read tip: %w", err)
	}
	tipHash := GenesisPrevHash
	if exists {
		tipHash = tip.Hash
	}
	if r.PrevHash != tipHash {
		// Two receipts claiming the same predecessor, or a stale prev
		// hash. Either way the total order is broken.
		c.halt("fork: prev_hash is not the current tip", r)
		return &ChainIntegrityError{Seq: -1, Hash: r.Hash,
			Reason: fmt.Sprintf("fork: prev_hash %q is not the current tip %q", r.PrevHash, tipHash)}
	}

	if err := c.ledger.Append(ctx, r); err != nil {
		return fmt.Errorf("append receipt: %w", err)
	}
	return nil
}

// TipHash returns the current tip's hash, GenesisPrevHash on an empty
// chain.
func (c *Chain) TipHash(ctx context.Context) (string, error) {
	tip, exists, err := c.ledger.Tip(ctx)
	if err != nil {
		return "", fmt.Errorf("read tip: %w", err)
	}
	if !exists {
		return GenesisPrevHash, nil
	}
	return tip.Hash, nil
}

// Get returns a stored receipt by hash.
func (c *Chain) Get(ctx context.Context, hash string) (ir.Receipt, bool, error) {
	return c.ledger.Get(ctx, hash)
}

// Len returns the number of stored receipts.
func (c *Chain) Len(ctx context.Context) (int64, error) {
	return c.ledger.Len(ctx)
}

// All returns every stored receipt in chain order.
func (c *Chain) All(ctx context.Context) ([]ir.Receipt, error) {
	return c.ledger.All(ctx)
}

// Halted reports whether the chain has refused writes after a detected
// integrity violation.
func (c *Chain) Halted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.halted
}

// Reset clears the halted state. For external repair tooling only; it
// does not fix stored receipts.
func (c *Chain) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.halted = false
}

// VerifyChain walks the full ledger and checks, per receipt: prev-hash
// linkage to the previous entry, stored hash against the recomputed
// content hash, and state-hash composition (each receipt's state-before
// must equal its predecessor's state-after). The first violation halts
// the chain and is returned as ChainIntegrityError.
func (c *Chain) VerifyChain(ctx context.Context) error {
	receipts, err := c.ledger.All(ctx)
	if err != nil {
		return fmt.Errorf("verify chain: %w", err)
	}

	prevHash := GenesisPrevHash
	prevStateAfter := ""
	for i, r := range receipts {
		if r.PrevHash != prevHash {
			return c.violation(r, "prev_hash does not match previous receipt hash")
		}
		expected, err := ir.ReceiptHash(r)
		if err != nil {
			return fmt.Errorf("verify chain: seq %d: %w", r.Seq, err)
		}
		if r.Hash != expected {
			return c.violation(r, "stored hash does not match receipt content")
		}
		if i > 0 && r.StateBefore != prevStateAfter {
			return c.violation(r, "state_before does not compose with previous state_after")
		}
		prevHash = r.Hash
		prevStateAfter = r.StateAfter
	}
	return nil
}

func (c *Chain) violation(r ir.Receipt, reason string) error {
	c.mu.Lock()
	c.halted = true
	c.mu.Unlock()
	slog.Error("chain integrity violation",
		"seq", r.Seq,
		"hash", r.Hash,
		"reason", reason,
	)
	return &ChainIntegrityError{Seq: r.Seq, Hash: r.Hash, Reason: reason}
}

func (c *Chain) halt(reason string, r ir.Receipt) {
	c.halted = true
	slog.Error("chain halted",
		"reason", reason,
		"hash", r.Hash,
		"prev_hash", r.PrevHash,
	)
}
