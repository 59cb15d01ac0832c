package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/loom/internal/pattern"
)

// Entry is one raw mapping entry as declared in CUE, before binding.
// All fields are strings or optional scalars; Validate decides which
// combinations are meaningful.
type Entry struct {
	ShapeKey string

	Verb string

	// Copy.
	Cardinality string

	// Copy (explicit) and Await (count). HasCount distinguishes an
	// omitted count from a declared zero, which Await uses to defer to
	// the node's own threshold attribute.
	Count    int64
	HasCount bool

	// Filter.
	Selection string

	// Await.
	Threshold string

	// Void.
	Scope  string
	Reason string
}

// ParseMapping extracts raw entries from a CUE value. The value should
// be the struct under the "mapping" field, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(src)
//	entries, err := ParseMapping(v.LookupPath(cue.ParsePath("mapping")))
//
// Parsing stops at the first structural error; semantic problems are
// left for Validate.
func ParseMapping(v cue.Value) ([]Entry, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	if !v.Exists() {
		return nil, &CompileError{
			Field:   "mapping",
			Message: "mapping struct is required",
		}
	}

	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var entries []Entry
	for iter.Next() {
		entry, err := parseEntry(iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func parseEntry(shapeKey string, v cue.Value) (Entry, error) {
	entry := Entry{ShapeKey: shapeKey}

	verbVal := v.LookupPath(cue.ParsePath("verb"))
	if !verbVal.Exists() {
		return Entry{}, &CompileError{
			Field:   shapeKey,
			Message: "verb is required",
			Pos:     v.Pos(),
		}
	}
	verb, err := verbVal.String()
	if err != nil {
		return Entry{}, formatCUEError(err)
	}
	entry.Verb = verb

	for field, dst := range map[string]*string{
		"cardinality": &entry.Cardinality,
		"selection":   &entry.Selection,
		"threshold":   &entry.Threshold,
		"scope":       &entry.Scope,
		"reason":      &entry.Reason,
	} {
		fv := v.LookupPath(cue.ParsePath(field))
		if !fv.Exists() {
			continue
		}
		s, err := fv.String()
		if err != nil {
			return Entry{}, formatCUEError(err)
		}
		*dst = s
	}

	countVal := v.LookupPath(cue.ParsePath("count"))
	if countVal.Exists() {
		n, err := countVal.Int64()
		if err != nil {
			return Entry{}, formatCUEError(err)
		}
		entry.Count = n
		entry.HasCount = true
	}

	return entry, nil
}

// CompileMapping parses, validates, and binds a CUE mapping value.
// Validation failures are reported together in one error.
func CompileMapping(v cue.Value) (pattern.Mapping, error) {
	entries, err := ParseMapping(v)
	if err != nil {
		return pattern.Mapping{}, err
	}
	return Bind(entries)
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
