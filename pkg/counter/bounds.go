package counter

import (
	"github.com/shopspring/decimal"

	"advcounter/pkg/apperror"
)

// Clamp applies the bounds policy to v.
//
// With no bounds v is returned unchanged; with one bound v is clamped against
// it. With both bounds v is clamped into [min, max], or, when rollover is set,
// wrapped by whole range widths (max - min + 1) until it falls inside.
// A fractional result left between max and max + 1 settles on max.
func Clamp(v decimal.Decimal, min, max decimal.NullDecimal, rollover bool) decimal.Decimal {
	switch {
	case !min.Valid && !max.Valid:
		return v
	case !min.Valid:
		return decimal.Min(v, max.Decimal)
	case !max.Valid:
		return decimal.Max(v, min.Decimal)
	case rollover:
		return wrap(v, min.Decimal, max.Decimal)
	default:
		return decimal.Min(max.Decimal, decimal.Max(v, min.Decimal))
	}
}

// wrap reduces v modulo the range width into [lo, hi+1). The fractional
// gap (hi, hi+1) left by the whole-number width settles on hi.
func wrap(v, lo, hi decimal.Decimal) decimal.Decimal {
	width := hi.Sub(lo).Add(decimal.NewFromInt(1))

	offset := v.Sub(lo).Mod(width)
	if offset.IsNegative() {
		offset = offset.Add(width)
	}
	v = lo.Add(offset)
	if v.GreaterThan(hi) {
		return hi
	}
	return v
}

func validateBounds(min, max decimal.NullDecimal, rollover bool) error {
	if min.Valid && max.Valid && min.Decimal.GreaterThan(max.Decimal) {
		return apperror.NewInvalidConfiguration("min counter is larger than max counter").
			WithDetail("min", min.Decimal.String()).
			WithDetail("max", max.Decimal.String())
	}
	if rollover && (!min.Valid || !max.Valid) {
		return apperror.NewInvalidConfiguration("rollover only works if both min and max counters are set")
	}
	return nil
}
