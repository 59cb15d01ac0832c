// Package lockchain is the hash-chained, append-only receipt ledger.
//
// Chain wraps a storage backend (Ledger) and enforces the chain
// discipline: the genesis receipt carries an empty prev hash, every
// later receipt's prev hash must equal the current tip's hash, and no
// fork is ever accepted. VerifyChain re-derives every receipt hash from
// stored content and checks that state hashes compose, so tampering
// with any persisted receipt is detectable.
//
// Integrity violations are fatal to the whole chain: once detected, the
// chain refuses further appends until Reset, because the audit trail
// itself is untrustworthy.
//
// Two backends exist: MemoryLedger for tests and ephemeral runs, and
// SQLiteLedger for durable storage.
package lockchain
