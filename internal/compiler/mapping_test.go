package compiler

import (
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/loom/internal/graph"
	"github.com/roach88/loom/internal/ir"
	"github.com/roach88/loom/internal/pattern"
)

func mappingValue(t *testing.T, src string) cue.Value {
	t.Helper()
	v := cuecontext.New().CompileString(src)
	require.NoError(t, v.Err())
	return v.LookupPath(cue.ParsePath("mapping"))
}

const sampleMapping = `
mapping: {
	"split=,join=,cancel=": {
		verb: "transmute"
	}
	"split=and,join=,cancel=": {
		verb:        "copy"
		cardinality: "topology"
	}
	"split=xor,join=,cancel=": {
		verb:      "filter"
		selection: "exactlyOne"
	}
	"split=,join=first,cancel=": {
		verb:      "await"
		threshold: "count"
		count:     1
	}
	"split=,join=,cancel=region": {
		verb:  "void"
		scope: "region"
	}
}
`

func TestParseMapping(t *testing.T) {
	entries, err := ParseMapping(mappingValue(t, sampleMapping))
	require.NoError(t, err)
	require.Len(t, entries, 5)

	byKey := make(map[string]Entry)
	for _, e := range entries {
		byKey[e.ShapeKey] = e
	}

	assert.Equal(t, "transmute", byKey["split=,join=,cancel="].Verb)
	assert.Equal(t, "topology", byKey["split=and,join=,cancel="].Cardinality)
	assert.Equal(t, "exactlyOne", byKey["split=xor,join=,cancel="].Selection)

	first := byKey["split=,join=first,cancel="]
	assert.Equal(t, "count", first.Threshold)
	assert.True(t, first.HasCount)
	assert.Equal(t, int64(1), first.Count)

	assert.Equal(t, "region", byKey["split=,join=,cancel=region"].Scope)
}

func TestParseMapping_MissingVerb(t *testing.T) {
	_, err := ParseMapping(mappingValue(t, `
mapping: {
	"split=,join=,cancel=": {
		cardinality: "topology"
	}
}
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "verb is required")
}

func TestParseMapping_MissingMappingStruct(t *testing.T) {
	_, err := ParseMapping(mappingValue(t, `other: {}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mapping struct is required")
}

func TestCompileMapping_BindsTypedParams(t *testing.T) {
	m, err := CompileMapping(mappingValue(t, sampleMapping))
	require.NoError(t, err)
	assert.Equal(t, 5, m.Len())

	b, ok := m.Get("split=and,join=,cancel=")
	require.True(t, ok)
	assert.Equal(t, ir.VerbCopy, b.Verb)
	assert.Equal(t, ir.CopyParams{Cardinality: ir.CardinalityTopology}, b.Params)

	b, ok = m.Get("split=,join=first,cancel=")
	require.True(t, ok)
	assert.Equal(t, ir.VerbAwait, b.Verb)
	assert.Equal(t, ir.AwaitParams{Threshold: ir.ThresholdCount, Count: 1}, b.Params)
}

func TestCompileMapping_ResolvesAgainstGraph(t *testing.T) {
	m, err := CompileMapping(mappingValue(t, sampleMapping))
	require.NoError(t, err)

	g := graph.NewStore()
	g.Seed(
		ir.T("A", ir.PropFlowsTo, ir.Str("B")),
		ir.T("A", ir.PropFlowsTo, ir.Str("C")),
		ir.T("A", ir.PropSplitKind, ir.Str(ir.SplitAnd)),
	)

	b, err := pattern.NewResolver(m).Resolve(g, "A")
	require.NoError(t, err)
	assert.Equal(t, ir.VerbCopy, b.Verb)
}

func TestCompileMapping_ValidationFailureListsAllErrors(t *testing.T) {
	_, err := CompileMapping(mappingValue(t, `
mapping: {
	"split=,join=,cancel=": {
		verb: "teleport"
	}
	"split=xor,join=,cancel=": {
		verb: "filter"
	}
}
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), ErrUnknownVerb)
	assert.Contains(t, err.Error(), ErrMissingParam)
}
