package lockchain

import (
	"errors"
	"fmt"
)

// ChainIntegrityError reports a broken chain: a prev-hash mismatch, a
// fork attempt, a receipt whose stored hash does not match its content,
// or state hashes that do not compose. Fatal to the chain - writes halt
// until Reset.
type ChainIntegrityError struct {
	// Seq locates the offending receipt, -1 when the failure is not tied
	// to a stored position (e.g. a refused append).
	Seq    int64
	Hash   string
	Reason string
}

func (e *ChainIntegrityError) Error() string {
	if e.Seq >= 0 {
		return fmt.Sprintf("chain integrity violation at seq %d: %s", e.Seq, e.Reason)
	}
	return fmt.Sprintf("chain integrity violation: %s", e.Reason)
}

// IsChainIntegrity reports whether err is a ChainIntegrityError.
func IsChainIntegrity(err error) bool {
	var e *ChainIntegrityError
	return errors.As(err, &e)
}
