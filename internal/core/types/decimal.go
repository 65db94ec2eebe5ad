// Package types provides numeric conversion helpers shared by the counter
// packages.
package types

import (
	"encoding/json"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Number is the numeric type of every counter value, bound and delta.
// Uses decimal.Decimal so that percentage math keeps full precision.
type Number = decimal.Decimal

// PercentSign terminates a percentage literal ("50%").
const PercentSign = "%"

// ToDecimal converts a Go numeric value to a Number.
// Strings are not numbers here; see ParsePercent.
func ToDecimal(v any) (Number, bool) {
	switch n := v.(type) {
	case decimal.Decimal:
		return n, true
	case *decimal.Decimal:
		if n == nil {
			return decimal.Zero, false
		}
		return *n, true
	case decimal.NullDecimal:
		return n.Decimal, n.Valid
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int8:
		return decimal.NewFromInt(int64(n)), true
	case int16:
		return decimal.NewFromInt(int64(n)), true
	case int32:
		return decimal.NewFromInt32(n), true
	case int64:
		return decimal.NewFromInt(n), true
	case uint:
		return decimal.NewFromUint64(uint64(n)), true
	case uint8:
		return decimal.NewFromUint64(uint64(n)), true
	case uint16:
		return decimal.NewFromUint64(uint64(n)), true
	case uint32:
		return decimal.NewFromUint64(uint64(n)), true
	case uint64:
		return decimal.NewFromUint64(n), true
	case float32:
		return fromFloat(float64(n))
	case float64:
		return fromFloat(n)
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		if err != nil {
			return decimal.Zero, false
		}
		return d, true
	}
	return decimal.Zero, false
}

func fromFloat(f float64) (Number, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(f), true
}

// ParsePercent parses "<number>%" and returns the fraction (50% → 0.5).
func ParsePercent(s string) (Number, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasSuffix(s, PercentSign) {
		return decimal.Zero, false
	}
	prefix := strings.TrimSpace(strings.TrimSuffix(s, PercentSign))
	if prefix == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(prefix)
	if err != nil {
		return decimal.Zero, false
	}
	return d.Shift(-2), true
}

// FormatPercent renders a fraction as a percentage with places decimals
// (0.2041 with 0 places → "20%").
func FormatPercent(fraction Number, places int32) string {
	return fraction.Shift(2).StringFixed(places) + PercentSign
}

// ToInt converts a Number to int when it holds an integral value that fits.
func ToInt(d Number) (int, bool) {
	if !d.IsInteger() {
		return 0, false
	}
	if d.GreaterThan(decimal.NewFromInt(math.MaxInt32)) || d.LessThan(decimal.NewFromInt(math.MinInt32)) {
		return 0, false
	}
	return int(d.IntPart()), true
}

// Optional wraps d as a set NullDecimal.
func Optional(d Number) decimal.NullDecimal {
	return decimal.NewNullDecimal(d)
}
