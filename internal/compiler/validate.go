package compiler

import (
	"fmt"
	"regexp"

	"github.com/roach88/loom/internal/ir"
)

// Validation error codes (E120-E129)
const (
	ErrUnknownVerb        = "E120" // verb is not one of the five primitives
	ErrBadShapeKey        = "E121" // shape key does not match the canonical form
	ErrDuplicateShapeKey  = "E122" // two entries share a shape key
	ErrMissingParam       = "E123" // verb requires a parameter that is absent
	ErrInvalidParamValue  = "E124" // parameter value outside its mode enum
	ErrParamNotMeaningful = "E125" // parameter declared for a verb that ignores it
)

// ValidationError represents a mapping validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// shapeKeyPattern matches the canonical shape key form produced by
// Shape.Key(). Kind values are lowercase words, optionally hyphenated
// (mi-static), and any of the three positions may be empty.
var shapeKeyPattern = regexp.MustCompile(`^split=[a-z]*(-[a-z]+)*,join=[a-z]*,cancel=[a-z]*$`)

// Validate checks raw mapping entries against schema rules. Returns all
// errors found (does not fail-fast).
func Validate(entries []Entry) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]bool)

	for _, entry := range entries {
		field := entry.ShapeKey

		// E121: shape key format
		if !shapeKeyPattern.MatchString(entry.ShapeKey) {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("shape key %q does not match \"split=<kind>,join=<kind>,cancel=<scope>\"", entry.ShapeKey),
				Code:    ErrBadShapeKey,
			})
		}

		// E122: duplicate shape key
		if seen[entry.ShapeKey] {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("duplicate shape key %q", entry.ShapeKey),
				Code:    ErrDuplicateShapeKey,
			})
		}
		seen[entry.ShapeKey] = true

		// E120: verb must parse
		verb, err := ir.ParseVerb(entry.Verb)
		if err != nil {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("unknown verb %q, must be transmute, copy, filter, await, or void", entry.Verb),
				Code:    ErrUnknownVerb,
			})
			continue
		}

		errs = append(errs, validateParams(field, verb, entry)...)
	}
	return errs
}

// validateParams checks that exactly the parameters the verb consumes
// are declared, and that their values are inside the mode enums.
func validateParams(field string, verb ir.Verb, entry Entry) []ValidationError {
	var errs []ValidationError

	meaningless := func(name string) {
		errs = append(errs, ValidationError{
			Field:   field,
			Message: fmt.Sprintf("parameter %q is not meaningful for verb %q", name, entry.Verb),
			Code:    ErrParamNotMeaningful,
		})
	}
	missing := func(name string) {
		errs = append(errs, ValidationError{
			Field:   field,
			Message: fmt.Sprintf("verb %q requires parameter %q", entry.Verb, name),
			Code:    ErrMissingParam,
		})
	}
	invalid := func(name, value string, allowed string) {
		errs = append(errs, ValidationError{
			Field:   field,
			Message: fmt.Sprintf("invalid %s %q, must be one of %s", name, value, allowed),
			Code:    ErrInvalidParamValue,
		})
	}

	if entry.Cardinality != "" && verb != ir.VerbCopy {
		meaningless("cardinality")
	}
	if entry.Selection != "" && verb != ir.VerbFilter {
		meaningless("selection")
	}
	if entry.Threshold != "" && verb != ir.VerbAwait {
		meaningless("threshold")
	}
	if entry.Scope != "" && verb != ir.VerbVoid {
		meaningless("scope")
	}
	if entry.Reason != "" && verb != ir.VerbVoid {
		meaningless("reason")
	}

	switch verb {
	case ir.VerbTransmute:
		if entry.HasCount {
			meaningless("count")
		}

	case ir.VerbCopy:
		switch ir.CardinalityMode(entry.Cardinality) {
		case ir.CardinalityTopology, ir.CardinalityStatic, ir.CardinalityDynamic, ir.CardinalityIncremental:
			if entry.HasCount {
				meaningless("count")
			}
		case ir.CardinalityExplicit:
			if !entry.HasCount {
				missing("count")
			} else if entry.Count < 1 {
				invalid("count", fmt.Sprintf("%d", entry.Count), "positive integers")
			}
		case "":
			missing("cardinality")
		default:
			invalid("cardinality", entry.Cardinality, "topology, static, dynamic, incremental, explicit")
		}

	case ir.VerbFilter:
		switch ir.SelectionMode(entry.Selection) {
		case ir.SelectExactlyOne, ir.SelectOneOrMore, ir.SelectDeferred, ir.SelectMutex:
		case "":
			missing("selection")
		default:
			invalid("selection", entry.Selection, "exactlyOne, oneOrMore, deferred, mutex")
		}
		if entry.HasCount {
			meaningless("count")
		}

	case ir.VerbAwait:
		switch ir.ThresholdMode(entry.Threshold) {
		case ir.ThresholdAll, ir.ThresholdActive, ir.ThresholdDynamic:
			if entry.HasCount {
				meaningless("count")
			}
		case ir.ThresholdCount:
			// count=0 defers to the node's own joinThreshold attribute,
			// so an omitted count is allowed here.
			if entry.HasCount && entry.Count < 0 {
				invalid("count", fmt.Sprintf("%d", entry.Count), "non-negative integers")
			}
		case "":
			missing("threshold")
		default:
			invalid("threshold", entry.Threshold, "all, active, dynamic, count")
		}

	case ir.VerbVoid:
		switch ir.CancelScope(entry.Scope) {
		case ir.ScopeSelf, ir.ScopeRegion, ir.ScopeCase, ir.ScopeInstances, ir.ScopeTask:
		case "":
			missing("scope")
		default:
			invalid("scope", entry.Scope, "self, region, case, instances, task")
		}
		if entry.HasCount {
			meaningless("count")
		}
	}

	return errs
}
