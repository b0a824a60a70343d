package catalog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw string) any {
	t.Helper()
	var payload any
	require.NoError(t, json.Unmarshal([]byte(raw), &payload))
	return payload
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []Entry
	}{
		{
			name: "top level array",
			raw:  `[{"id":"a"},{"id":"b"}]`,
			want: []Entry{{"id": "a"}, {"id": "b"}},
		},
		{
			name: "wrapped data array",
			raw:  `{"data":[{"id":"a"}]}`,
			want: []Entry{{"id": "a"}},
		},
		{
			name: "wrapped models array",
			raw:  `{"models":[{"id":"m"}]}`,
			want: []Entry{{"id": "m"}},
		},
		{
			name: "keyed object of entries",
			raw:  `{"models":{"image":{"x":{"id":"x"}}}}`,
			want: []Entry{{"id": "x"}},
		},
		{
			name: "keyed object single level",
			raw:  `{"models":{"x":{"id":"x"}}}`,
			want: []Entry{{"id": "x"}},
		},
		{
			name: "unrecognized shape",
			raw:  `{"status":"ok"}`,
			want: []Entry{},
		},
		{
			name: "scalar payload",
			raw:  `"plain text"`,
			want: []Entry{},
		},
		{
			name: "array of scalars",
			raw:  `[1,2,3]`,
			want: []Entry{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(decode(t, tt.raw))
			assert.ElementsMatch(t, tt.want, got)
		})
	}
}

func TestExtractPriorityOrder(t *testing.T) {
	// A data array outranks a keyed models object when both are present.
	payload := decode(t, `{"data":[{"id":"a"}],"models":{"image":{"x":{"id":"x"}}}}`)
	got := Extract(payload)
	assert.Equal(t, []Entry{{"id": "a"}}, got)
}
