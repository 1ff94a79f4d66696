package types

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToNumberOrZero(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want float64
	}{
		{"nil", nil, 0},
		{"float", 12.5, 12.5},
		{"int", 7, 7},
		{"int64", int64(-3), -3},
		{"numeric string", "42.10", 42.1},
		{"padded string", "  3 ", 3},
		{"empty string", "", 0},
		{"garbage", "abc", 0},
		{"partial number", "12abc", 0},
		{"true", true, 1},
		{"false", false, 0},
		{"NaN", math.NaN(), 0},
		{"Inf", math.Inf(1), 0},
		{"NaN string", "NaN", 0},
		{"json number", json.Number("2.25"), 2.25},
		{"decimal", decimal.RequireFromString("9.99"), 9.99},
		{"slice", []int{1}, 0},
		{"map", map[string]any{"a": 1}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToNumberOrZero(tt.in))
		})
	}
}

func TestRound2(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{2.675, 2.68},
		{1.005, 1.01},
		{-1.005, -1.01},
		{0.125, 0.13},
		{10, 10},
		{99.994, 99.99},
		{math.NaN(), 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Round2(tt.in), "Round2(%v)", tt.in)
	}
}

func TestOrOneAndNonNegative(t *testing.T) {
	assert.Equal(t, 1.0, OrOne(0))
	assert.Equal(t, 3.0, OrOne(3))
	assert.Equal(t, -2.0, OrOne(-2))

	assert.Equal(t, 0.0, NonNegative(-5))
	assert.Equal(t, 5.0, NonNegative(5))
}

func TestNumber_UnmarshalJSON(t *testing.T) {
	var row struct {
		A Number `json:"a"`
		B Number `json:"b"`
		C Number `json:"c"`
		D Number `json:"d"`
		E Number `json:"e"`
		F Number `json:"f"`
	}
	err := json.Unmarshal([]byte(`{"a": 3, "b": "2.5", "c": "", "d": null, "e": "x1", "f": {"nested": true}}`), &row)
	require.NoError(t, err)

	assert.Equal(t, Number(3), row.A)
	assert.Equal(t, Number(2.5), row.B)
	assert.Equal(t, Number(0), row.C)
	assert.Equal(t, Number(0), row.D)
	assert.Equal(t, Number(0), row.E)
	assert.Equal(t, Number(0), row.F)
}

func TestNumber_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(struct {
		V Number `json:"v"`
	}{V: 12.5})
	require.NoError(t, err)
	assert.JSONEq(t, `{"v": 12.5}`, string(b))
}
