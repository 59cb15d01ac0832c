package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReceipt() Receipt {
	return Receipt{
		PrevHash: "",
		TxID:     "tx-1",
		Actor:    "tester",
		Seq:      1,
		Verb:     VerbTransmute,
		VerbName: "transmute",
		ParamsJSON: `{"verb":"transmute"}`,
		Delta: Delta{
			Removals:  []Triple{T("A", PropHasToken, Bool(true))},
			Additions: []Triple{T("B", PropHasToken, Bool(true))},
		},
		StateBefore: "before",
		StateAfter:  "after",
	}
}

func TestReceiptHash_Deterministic(t *testing.T) {
	r := sampleReceipt()

	h1, err := ReceiptHash(r)
	require.NoError(t, err)
	h2, err := ReceiptHash(r)
	require.NoError(t, err)

	assert.Equal(t, h1, h2, "same receipt content must hash identically")
	assert.Len(t, h1, 64, "SHA-256 hex digest")
}

func TestReceiptHash_SensitiveToEveryField(t *testing.T) {
	base := MustReceiptHash(sampleReceipt())

	mutations := map[string]func(*Receipt){
		"prev_hash": func(r *Receipt) { r.PrevHash = "x" },
		"tx_id":     func(r *Receipt) { r.TxID = "tx-2" },
		"verb":      func(r *Receipt) { r.VerbName = "copy" },
		"params":    func(r *Receipt) { r.ParamsJSON = `{"verb":"copy"}` },
		"delta":     func(r *Receipt) { r.Delta.Additions = nil },
		"state":     func(r *Receipt) { r.StateAfter = "tampered" },
		"reason":    func(r *Receipt) { r.Reason = ReasonTimeout },
	}

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			r := sampleReceipt()
			mutate(&r)
			assert.NotEqual(t, base, MustReceiptHash(r), "mutating %s must change the hash", name)
		})
	}
}

func TestStateHash_DomainSeparation(t *testing.T) {
	snapshot := []byte(`[{"o":true,"p":"hasToken","s":"A"}]`)

	sh := StateHash(snapshot)
	assert.Len(t, sh, 64)
	assert.Equal(t, sh, StateHash(snapshot))

	// The same bytes under a different domain must not collide.
	r := sampleReceipt()
	rh := MustReceiptHash(r)
	assert.NotEqual(t, sh, rh)
}

func TestParamsHash_DistinguishesConfigs(t *testing.T) {
	a, err := ParamsHash(CopyParams{Cardinality: CardinalityTopology})
	require.NoError(t, err)
	b, err := ParamsHash(CopyParams{Cardinality: CardinalityExplicit, Count: 3})
	require.NoError(t, err)
	c, err := ParamsHash(CopyParams{Cardinality: CardinalityExplicit, Count: 4})
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.NotEqual(t, b, c)
}
