package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainReceipt = "loom/receipt/v1"
	DomainState   = "loom/state/v1"
	DomainParams  = "loom/params/v1"
)

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ReceiptHash computes the content-addressed hash of a receipt over its
// canonical map (prev_hash, tx_id, verb, params, delta, state hashes).
// The same receipt content always produces the same hash, so the chain can
// be re-verified from storage alone.
func ReceiptHash(r Receipt) (string, error) {
	canonical, err := MarshalCanonical(r.CanonicalMap())
	if err != nil {
		return "", fmt.Errorf("ReceiptHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainReceipt, canonical), nil
}

// StateHash computes the content hash of a deterministic graph snapshot.
// Callers must pass the snapshot's canonical serialization (see
// graph.Store.Snapshot).
func StateHash(snapshot []byte) string {
	return hashWithDomain(DomainState, snapshot)
}

// ParamsHash computes the content-addressed hash of a parameter record.
// Two configs differing in any meaningful field hash differently.
func ParamsHash(p Params) (string, error) {
	canonical, err := MarshalCanonical(p.CanonicalMap())
	if err != nil {
		return "", fmt.Errorf("ParamsHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainParams, canonical), nil
}

// MustReceiptHash is like ReceiptHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustReceiptHash(r Receipt) string {
	h, err := ReceiptHash(r)
	if err != nil {
		panic(err)
	}
	return h
}
