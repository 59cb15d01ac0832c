package ir

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromAny_Scalars(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want Value
	}{
		{"string", "hello", Str("hello")},
		{"int", 42, Int(42)},
		{"int64", int64(7), Int(7)},
		{"bool", true, Bool(true)},
		{"json number", json.Number("99"), Int(99)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromAny(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFromAny_RejectsFloats(t *testing.T) {
	_, err := FromAny(3.14)
	assert.Error(t, err, "float64 must be rejected")

	_, err = FromAny(json.Number("3.14"))
	assert.Error(t, err, "fractional json.Number must be rejected")

	_, err = FromAny(json.Number("1e10"))
	assert.Error(t, err, "exponent json.Number must be rejected")
}

func TestFromAny_RejectsNull(t *testing.T) {
	_, err := FromAny(nil)
	assert.Error(t, err)

	_, err = FromAny([]any{"a", nil})
	assert.Error(t, err, "null inside a list must be rejected")
}

func TestFromAny_Containers(t *testing.T) {
	got, err := FromAny(map[string]any{
		"name":  "cart",
		"count": 5,
		"tags":  []any{"a", "b"},
	})
	require.NoError(t, err)

	want := Map{
		"name":  Str("cart"),
		"count": Int(5),
		"tags":  List{Str("a"), Str("b")},
	}
	assert.Equal(t, want, got)
}

func TestMap_SortedKeys_UTF16Order(t *testing.T) {
	// RFC 8785 orders by UTF-16 code units. U+FF01 (FULLWIDTH EXCLAMATION)
	// is a single code unit 0xFF01; U+1F600 (emoji) encodes as a surrogate
	// pair starting 0xD83D, which sorts BEFORE 0xFF01.
	m := Map{
		"！":     Str("fullwidth"),
		"\U0001F600": Str("emoji"),
		"a":          Str("ascii"),
	}

	keys := m.SortedKeys()
	assert.Equal(t, []string{"a", "\U0001F600", "！"}, keys)
}

func TestUnmarshalValue_StrictRejection(t *testing.T) {
	_, err := UnmarshalValue([]byte(`{"x": 1.5}`))
	assert.Error(t, err, "floats rejected")

	_, err = UnmarshalValue([]byte(`{"x": null}`))
	assert.Error(t, err, "null rejected")

	v, err := UnmarshalValue([]byte(`{"x": [1, "two", true]}`))
	require.NoError(t, err)
	assert.Equal(t, Map{"x": List{Int(1), Str("two"), Bool(true)}}, v)
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"equal strings", Str("x"), Str("x"), true},
		{"different strings", Str("x"), Str("y"), false},
		{"cross type", Str("1"), Int(1), false},
		{"equal lists", List{Int(1), Int(2)}, List{Int(1), Int(2)}, true},
		{"list order matters", List{Int(1), Int(2)}, List{Int(2), Int(1)}, false},
		{"equal maps", Map{"a": Int(1)}, Map{"a": Int(1)}, true},
		{"map size differs", Map{"a": Int(1)}, Map{"a": Int(1), "b": Int(2)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Equal(tt.a, tt.b))
		})
	}
}

func TestMap_MarshalJSON_RoundTrip(t *testing.T) {
	m := Map{"b": Int(2), "a": Str("one"), "c": List{Bool(true)}}

	data, err := json.Marshal(m)
	require.NoError(t, err)
	// Keys must appear in sorted order.
	assert.JSONEq(t, `{"a":"one","b":2,"c":[true]}`, string(data))

	var back Map
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, Equal(m, back))
}
