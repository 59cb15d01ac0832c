package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func codes(errs []ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Code
	}
	return out
}

func TestValidate_CleanCatalogue(t *testing.T) {
	errs := Validate([]Entry{
		{ShapeKey: "split=,join=,cancel=", Verb: "transmute"},
		{ShapeKey: "split=and,join=,cancel=", Verb: "copy", Cardinality: "topology"},
		{ShapeKey: "split=mi-static,join=,cancel=", Verb: "copy", Cardinality: "static"},
		{ShapeKey: "split=xor,join=,cancel=", Verb: "filter", Selection: "exactlyOne"},
		{ShapeKey: "split=,join=and,cancel=", Verb: "await", Threshold: "all"},
		{ShapeKey: "split=,join=partial,cancel=", Verb: "await", Threshold: "count"},
		{ShapeKey: "split=,join=,cancel=task", Verb: "void", Scope: "task", Reason: "exception"},
	})
	assert.Empty(t, errs)
}

func TestValidate_UnknownVerb(t *testing.T) {
	errs := Validate([]Entry{
		{ShapeKey: "split=,join=,cancel=", Verb: "teleport"},
	})
	require.Len(t, errs, 1)
	assert.Equal(t, ErrUnknownVerb, errs[0].Code)
}

func TestValidate_BadShapeKey(t *testing.T) {
	errs := Validate([]Entry{
		{ShapeKey: "and-split", Verb: "transmute"},
	})
	require.Len(t, errs, 1)
	assert.Equal(t, ErrBadShapeKey, errs[0].Code)
}

func TestValidate_DuplicateShapeKey(t *testing.T) {
	errs := Validate([]Entry{
		{ShapeKey: "split=,join=,cancel=", Verb: "transmute"},
		{ShapeKey: "split=,join=,cancel=", Verb: "transmute"},
	})
	require.Len(t, errs, 1)
	assert.Equal(t, ErrDuplicateShapeKey, errs[0].Code)
}

func TestValidate_MissingRequiredParam(t *testing.T) {
	errs := Validate([]Entry{
		{ShapeKey: "split=and,join=,cancel=", Verb: "copy"},
		{ShapeKey: "split=xor,join=,cancel=", Verb: "filter"},
		{ShapeKey: "split=,join=and,cancel=", Verb: "await"},
		{ShapeKey: "split=,join=,cancel=self", Verb: "void"},
	})
	require.Len(t, errs, 4)
	for _, e := range errs {
		assert.Equal(t, ErrMissingParam, e.Code)
	}
}

func TestValidate_ParamNotMeaningfulForVerb(t *testing.T) {
	errs := Validate([]Entry{
		{ShapeKey: "split=,join=,cancel=", Verb: "transmute", Cardinality: "topology"},
		{ShapeKey: "split=,join=and,cancel=", Verb: "await", Threshold: "all", Scope: "self"},
	})
	assert.Equal(t, []string{ErrParamNotMeaningful, ErrParamNotMeaningful}, codes(errs))
}

func TestValidate_InvalidModeValue(t *testing.T) {
	errs := Validate([]Entry{
		{ShapeKey: "split=and,join=,cancel=", Verb: "copy", Cardinality: "broadcast"},
		{ShapeKey: "split=xor,join=,cancel=", Verb: "filter", Selection: "maybe"},
		{ShapeKey: "split=,join=and,cancel=", Verb: "await", Threshold: "most"},
		{ShapeKey: "split=,join=,cancel=self", Verb: "void", Scope: "everything"},
	})
	require.Len(t, errs, 4)
	for _, e := range errs {
		assert.Equal(t, ErrInvalidParamValue, e.Code)
	}
}

func TestValidate_ExplicitCopyRequiresCount(t *testing.T) {
	errs := Validate([]Entry{
		{ShapeKey: "split=and,join=,cancel=", Verb: "copy", Cardinality: "explicit"},
	})
	require.Len(t, errs, 1)
	assert.Equal(t, ErrMissingParam, errs[0].Code)

	errs = Validate([]Entry{
		{ShapeKey: "split=and,join=,cancel=", Verb: "copy", Cardinality: "explicit", Count: 3, HasCount: true},
	})
	assert.Empty(t, errs)
}

func TestValidate_CountOnlyWhereMeaningful(t *testing.T) {
	errs := Validate([]Entry{
		{ShapeKey: "split=,join=,cancel=", Verb: "transmute", Count: 2, HasCount: true},
		{ShapeKey: "split=and,join=,cancel=", Verb: "copy", Cardinality: "topology", Count: 2, HasCount: true},
	})
	assert.Equal(t, []string{ErrParamNotMeaningful, ErrParamNotMeaningful}, codes(errs))
}

func TestValidate_AwaitCountZeroDefersToNode(t *testing.T) {
	errs := Validate([]Entry{
		{ShapeKey: "split=,join=partial,cancel=", Verb: "await", Threshold: "count", Count: 0, HasCount: true},
	})
	assert.Empty(t, errs)
}
