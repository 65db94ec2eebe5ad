package counter

import (
	"github.com/shopspring/decimal"

	"advcounter/internal/core/types"
	"advcounter/pkg/increment"
	"advcounter/pkg/logger"
)

// ReturnMode selects what an operation hands back.
type ReturnMode uint8

const (
	// ReturnValue mutates the counter and returns only the new value.
	ReturnValue ReturnMode = iota
	// ReturnSelf mutates the counter and returns it.
	ReturnSelf
	// ReturnCopy leaves the counter untouched and returns a mutated copy.
	ReturnCopy
)

func (m ReturnMode) String() string {
	switch m {
	case ReturnSelf:
		return "self"
	case ReturnCopy:
		return "copy"
	default:
		return "value"
	}
}

// Config holds counter configuration.
type Config struct {
	// Initial value; defaults to Min, or 0 when Min is unset
	Initial decimal.NullDecimal

	// Min and Max are inclusive bounds; either may be unset
	Min decimal.NullDecimal
	Max decimal.NullDecimal

	// Rollover wraps values around [Min, Max] instead of clamping.
	// Requires both bounds.
	Rollover bool

	// Increment resolves the operand of every operation; nil means Constant(1)
	Increment increment.Strategy

	// OnEvery is called every CallEvery operations.
	OnEvery func(*Counter)

	// CallEvery is the trigger period: a positive integer, a percentage of
	// Max ("5%"), or zero to derive it from Max.
	CallEvery increment.Value

	// PercentPlaces is the number of decimals in PercentString
	PercentPlaces int32

	// Return is the return mode of Call
	Return ReturnMode

	// Logger receives debug output; nil disables logging
	Logger *logger.Logger
}

// DefaultConfig returns an unbounded counter counting by 1.
func DefaultConfig() Config {
	return Config{
		Increment: increment.MustConstant(1),
	}
}

// Int returns a set bound or initial value.
func Int(n int64) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.NewFromInt(n))
}

// Float returns a set bound or initial value.
func Float(f float64) decimal.NullDecimal {
	return decimal.NewNullDecimal(decimal.NewFromFloat(f))
}

// Dec returns a set bound or initial value.
func Dec(d decimal.Decimal) decimal.NullDecimal {
	return types.Optional(d)
}
