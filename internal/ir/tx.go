package ir

// TxContext carries per-transaction inputs supplied by the caller (or
// synthesized by the chronology guard). Data is an opaque key/value map
// used for dynamic cardinality, dynamic thresholds, and guard predicate
// evaluation - the engine never interprets values beyond equality,
// containment, and comparison.
type TxContext struct {
	TxID     string `json:"tx_id"`
	Actor    string `json:"actor"`
	PrevHash string `json:"prev_hash"`
	Data     Map    `json:"data,omitempty"`
}

// Receipt is the immutable audit record of one executed transaction.
// Created exactly once by the execution driver, appended to the lockchain,
// never mutated or deleted.
type Receipt struct {
	Hash        string `json:"hash"`
	PrevHash    string `json:"prev_hash"`
	TxID        string `json:"tx_id"`
	Actor       string `json:"actor"`
	Seq         int64  `json:"seq"`
	Verb        Verb   `json:"-"`
	VerbName    string `json:"verb_executed"`
	ParamsJSON  string `json:"params_used"` // canonical JSON of the param record
	Delta       Delta  `json:"delta"`
	StateBefore string `json:"state_before"` // graph content hash before apply
	StateAfter  string `json:"state_after"`  // graph content hash after apply
	Reason      string `json:"reason,omitempty"`
}

// Additions returns the addition count exposed on the receipt stream.
func (r Receipt) Additions() int { return len(r.Delta.Additions) }

// Removals returns the removal count exposed on the receipt stream.
func (r Receipt) Removals() int { return len(r.Delta.Removals) }

// CanonicalMap returns every hash-covered field of the receipt. The stored
// Hash field is excluded, obviously. VerifyChain recomputes the hash from
// exactly this map.
func (r Receipt) CanonicalMap() Map {
	m := Map{
		"prev_hash":    Str(r.PrevHash),
		"tx_id":        Str(r.TxID),
		"actor":        Str(r.Actor),
		"seq":          Int(r.Seq),
		"verb":         Str(r.VerbName),
		"params":       Str(r.ParamsJSON),
		"delta":        r.Delta.CanonicalMap(),
		"state_before": Str(r.StateBefore),
		"state_after":  Str(r.StateAfter),
	}
	if r.Reason != "" {
		m["reason"] = Str(r.Reason)
	}
	return m
}
