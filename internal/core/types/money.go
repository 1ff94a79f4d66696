// Package types provides the numeric primitives shared by every document computation.
package types

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// MoneyScale is the number of fractional digits kept on stored amounts.
const MoneyScale int32 = 2

// ToNumberOrZero coerces an arbitrary decoded value to a finite float64.
// Anything that is not a number (nil, empty or garbage strings, NaN, Inf,
// structures) becomes 0. It never fails.
func ToNumberOrZero(v any) float64 {
	var f float64
	switch n := v.(type) {
	case nil:
		return 0
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int32:
		f = float64(n)
	case int64:
		f = float64(n)
	case uint:
		f = float64(n)
	case uint32:
		f = float64(n)
	case uint64:
		f = float64(n)
	case Number:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	case decimal.Decimal:
		f = n.InexactFloat64()
	case bool:
		if n {
			return 1
		}
		return 0
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// Round2 rounds half away from zero to two decimals using decimal arithmetic,
// so 2.675 becomes 2.68 rather than the binary-float 2.67.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return decimal.NewFromFloat(v).Round(MoneyScale).InexactFloat64()
}

// OrOne returns v unless it is zero, in which case it returns 1.
func OrOne(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}

// NonNegative clamps negative values to zero.
func NonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

// Number is a JSON-decoded numeric field that tolerates partially filled forms.
// Numbers, numeric strings, booleans, null and garbage all decode without error;
// anything non-numeric decodes as 0.
type Number float64

// Float64 returns the value as float64.
func (n Number) Float64() float64 { return float64(n) }

// MarshalJSON encodes the value as a plain JSON number.
func (n Number) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(float64(n), 'f', -1, 64)), nil
}

// UnmarshalJSON never returns an error.
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*n = 0
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		*n = 0
		return nil
	}
	*n = Number(ToNumberOrZero(raw))
	return nil
}
