package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitTags(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want TagList
	}{
		{"plain", "a,b,c", TagList{"a", "b", "c"}},
		{"spaced", "a, b ,c", TagList{"a", "b", "c"}},
		{"empty entries", "a,,c,", TagList{"a", "c"}},
		{"all empty", " , ,", TagList{}},
		{"single", "balcony", TagList{"balcony"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitTags(tt.in))
		})
	}
}

func TestNormalizeTags(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want TagList
	}{
		{"nil", nil, TagList{}},
		{"string", "a, b ,c", TagList{"a", "b", "c"}},
		{"string slice", []string{" a ", "", "b"}, TagList{"a", "b"}},
		{"any slice mixed", []any{"a", 3.0, true, "", nil}, TagList{"a", "3", "true"}},
		{"number", 42, TagList{}},
		{"already normalized", TagList{"a", "b"}, TagList{"a", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeTags(tt.in))
		})
	}
}

func TestNormalizeTagsIdempotent(t *testing.T) {
	once := NormalizeTags("parking, elevator , renovated")
	twice := NormalizeTags(once)
	assert.Equal(t, once, twice)
}

func TestTagListUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want TagList
	}{
		{"array", `["a","b"]`, TagList{"a", "b"}},
		{"comma string", `"a, b ,c"`, TagList{"a", "b", "c"}},
		{"object", `{"x":1}`, TagList{}},
		{"number", `7`, TagList{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got TagList
			require.NoError(t, json.Unmarshal([]byte(tt.in), &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestListingKey(t *testing.T) {
	assert.Equal(t, "12345", Listing{ID: 12345}.Key())
	assert.Equal(t, "0", Listing{}.Key())
}

func TestMinimalListingExplicitNulls(t *testing.T) {
	data, err := json.Marshal(MinimalListing{ID: 1, Tags: TagList{}})
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))

	// Every projection field must be present even when empty so repeated
	// serializations stay byte-identical.
	for _, key := range []string{"city", "price", "rooms", "floor", "tags"} {
		_, ok := m[key]
		assert.True(t, ok, "missing key %q", key)
	}
	assert.Nil(t, m["city"])
}
