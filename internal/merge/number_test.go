package merge_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shipmerge/internal/merge"
)

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{in: "1200.50", want: 1200.5},
		{in: "1 200,50", want: 1200.5},
		{in: "1 200,50", want: 1200.5},
		{in: "1,200.50", want: 1200.5},
		{in: "1,200,300", want: 1200300},
		{in: "0,5", want: 0.5},
		{in: "", want: 0},
		{in: "abc", want: 0},
		{in: "NaN", want: 0},
		{in: "-3", want: -3},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, merge.ParseNumber(tt.in))
		})
	}
}

func TestNumber_UnmarshalJSON(t *testing.T) {
	var v struct {
		A, B, C, D, E merge.Number
	}
	err := json.Unmarshal([]byte(`{"A": 12.5, "B": "7,25", "C": null, "D": "n/a", "E": true}`), &v)

	require.NoError(t, err)
	assert.Equal(t, merge.Number(12.5), v.A)
	assert.Equal(t, merge.Number(7.25), v.B)
	assert.Zero(t, v.C)
	assert.Zero(t, v.D)
	assert.Zero(t, v.E)
}

func TestCode_UnmarshalJSON(t *testing.T) {
	var v struct {
		A, B, C, D merge.Code
	}
	err := json.Unmarshal([]byte(`{"A": 8471300000, "B": "7308.90", "C": null, "D": {"x": 1}}`), &v)

	require.NoError(t, err)
	assert.Equal(t, merge.Code("8471300000"), v.A)
	assert.Equal(t, merge.Code("7308.90"), v.B)
	assert.Empty(t, v.C)
	assert.Empty(t, v.D)
}
