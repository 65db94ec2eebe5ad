package increment

import (
	"github.com/shopspring/decimal"

	"advcounter/internal/core/types"
	"advcounter/pkg/apperror"
)

// Kind tells a plain number from a percentage.
type Kind uint8

const (
	// KindNumber is an absolute amount.
	KindNumber Kind = iota
	// KindPercent is a fraction of the counter's maximum.
	KindPercent
)

func (k Kind) String() string {
	if k == KindPercent {
		return "percent"
	}
	return "number"
}

// Value is what a strategy resolves to: either a plain number or a
// percentage, already stripped of its "%" marker and stored as a fraction.
// The zero Value is the number 0.
type Value struct {
	kind Kind
	n    decimal.Decimal
}

// Number returns a plain Value.
func Number(d decimal.Decimal) Value {
	return Value{kind: KindNumber, n: d}
}

// Int returns a plain Value holding n.
func Int(n int64) Value {
	return Number(decimal.NewFromInt(n))
}

// Percent returns a percentage Value; fraction 0.5 means "50%".
func Percent(fraction decimal.Decimal) Value {
	return Value{kind: KindPercent, n: fraction}
}

// Parse classifies v once: Go numbers and decimals become plain Values,
// "<number>%" strings become percentages, anything else is rejected.
func Parse(v any) (Value, error) {
	switch x := v.(type) {
	case Value:
		return x, nil
	case *Value:
		if x != nil {
			return *x, nil
		}
	case string:
		if frac, ok := types.ParsePercent(x); ok {
			return Percent(frac), nil
		}
		return Value{}, apperror.NewInvalidIncrementType(v)
	}
	if d, ok := types.ToDecimal(v); ok {
		return Number(d), nil
	}
	return Value{}, apperror.NewInvalidIncrementType(v)
}

// MustParse is Parse for literals known to be valid; it panics otherwise.
func MustParse(v any) Value {
	val, err := Parse(v)
	if err != nil {
		panic(err)
	}
	return val
}

// Kind returns the value kind.
func (v Value) Kind() Kind { return v.kind }

// IsPercent reports whether v is a percentage.
func (v Value) IsPercent() bool { return v.kind == KindPercent }

// Decimal returns the number, or the fraction for percentages.
func (v Value) Decimal() decimal.Decimal { return v.n }

// IsZero reports whether the numeric part is zero.
func (v Value) IsZero() bool { return v.n.IsZero() }

// Equal compares kind and numeric value.
func (v Value) Equal(o Value) bool {
	return v.kind == o.kind && v.n.Equal(o.n)
}

// String renders numbers as decimals and percentages as "50%".
func (v Value) String() string {
	if v.kind == KindPercent {
		return v.n.Shift(2).String() + types.PercentSign
	}
	return v.n.String()
}
