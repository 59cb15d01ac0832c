package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTxSequence_SequentialIDs(t *testing.T) {
	seq := NewTxSequence("tx")
	assert.Equal(t, "tx-001", seq.Generate())
	assert.Equal(t, "tx-002", seq.Generate())
	assert.Equal(t, "tx-003", seq.Generate())
}

func TestTxSequence_Reset(t *testing.T) {
	seq := NewTxSequence("guard")
	seq.Generate()
	seq.Generate()
	seq.Reset()
	assert.Equal(t, "guard-001", seq.Generate())
}

func TestTxSequence_EmptyPrefixDefaults(t *testing.T) {
	seq := NewTxSequence("")
	assert.Equal(t, "tx-001", seq.Generate())
}
