package driver

import (
	"errors"
	"fmt"

	"github.com/roach88/loom/internal/ir"
)

// MalformedGraphError reports a transaction against a node the graph
// does not contain. Fatal to that transaction only; the graph is not
// mutated.
type MalformedGraphError struct {
	Node ir.NodeID
}

func (e *MalformedGraphError) Error() string {
	return fmt.Sprintf("node %q does not exist in the graph", e.Node)
}

// IsMalformedGraph reports whether err is a MalformedGraphError.
func IsMalformedGraph(err error) bool {
	var e *MalformedGraphError
	return errors.As(err, &e)
}
