package compiler

import (
	"fmt"
	"strings"

	"github.com/roach88/loom/internal/ir"
	"github.com/roach88/loom/internal/pattern"
)

// Bind validates raw entries and constructs the frozen Mapping. All
// validation errors are reported together; binding only runs on a
// clean dataset.
func Bind(entries []Entry) (pattern.Mapping, error) {
	if errs := Validate(entries); len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		return pattern.Mapping{}, fmt.Errorf("invalid mapping:\n%s", strings.Join(msgs, "\n"))
	}

	bindings := make(map[string]pattern.Binding, len(entries))
	for _, entry := range entries {
		verb, err := ir.ParseVerb(entry.Verb)
		if err != nil {
			return pattern.Mapping{}, err
		}
		bindings[entry.ShapeKey] = pattern.Binding{
			Verb:   verb,
			Params: bindParams(verb, entry),
		}
	}
	return pattern.NewMapping(bindings), nil
}

func bindParams(verb ir.Verb, entry Entry) ir.Params {
	switch verb {
	case ir.VerbCopy:
		return ir.CopyParams{
			Cardinality: ir.CardinalityMode(entry.Cardinality),
			Count:       entry.Count,
		}
	case ir.VerbFilter:
		return ir.FilterParams{
			SelectionMode: ir.SelectionMode(entry.Selection),
		}
	case ir.VerbAwait:
		return ir.AwaitParams{
			Threshold: ir.ThresholdMode(entry.Threshold),
			Count:     entry.Count,
		}
	case ir.VerbVoid:
		return ir.VoidParams{
			Scope:  ir.CancelScope(entry.Scope),
			Reason: entry.Reason,
		}
	default:
		return ir.TransmuteParams{}
	}
}
