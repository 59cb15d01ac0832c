package harness

import "github.com/roach88/loom/internal/ir"

// TraceEvent is one receipt projected onto its structural fields. Hashes
// and transaction ids are deliberately excluded so traces stay stable
// across unrelated changes and golden files can be authored by hand.
type TraceEvent struct {
	Seq     int64  `json:"seq"`
	Verb    string `json:"verb"`
	Adds    int    `json:"adds"`
	Removes int    `json:"removes"`
	Reason  string `json:"reason,omitempty"`
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall success: every step executed and every
	// expectation held.
	Pass bool `json:"pass"`

	// Trace contains one event per receipted transaction, in chain
	// order. No-op receipts are included; they are part of the audit
	// stream.
	Trace []TraceEvent `json:"trace"`

	// Errors contains expectation failures. Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError records an expectation failure and marks the result failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddReceipt appends the receipt's trace projection.
func (r *Result) AddReceipt(receipt ir.Receipt) {
	r.Trace = append(r.Trace, TraceEvent{
		Seq:     receipt.Seq,
		Verb:    receipt.VerbName,
		Adds:    receipt.Additions(),
		Removes: receipt.Removals(),
		Reason:  receipt.Reason,
	})
}
