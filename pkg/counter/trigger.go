package counter

import (
	"github.com/shopspring/decimal"

	"advcounter/pkg/apperror"
	"advcounter/pkg/increment"
)

// DefaultPeriod is the trigger period of counters without a maximum.
const DefaultPeriod int64 = 100

// periodTiers maps the counter maximum to a trigger period.
var periodTiers = []struct {
	upTo  int64
	every int64
}{
	{10, 1},
	{100, 10},
	{500, 20},
	{1000, 100},
	{5000, 500},
}

const topTierPeriod int64 = 1000

// trigger calls fn every `every` operations.
type trigger struct {
	every     int64
	countdown int64
	fn        func(*Counter)
}

func newTrigger(fn func(*Counter), callEvery increment.Value, max decimal.NullDecimal) (*trigger, error) {
	if fn == nil {
		return nil, nil
	}
	every, err := derivePeriod(callEvery, max)
	if err != nil {
		return nil, err
	}
	return &trigger{every: every, countdown: every, fn: fn}, nil
}

// tick counts one operation and reports whether the callback is due.
func (t *trigger) tick() bool {
	t.countdown--
	if t.countdown <= 0 {
		t.countdown = t.every
		return true
	}
	return false
}

func (t *trigger) reset() {
	t.countdown = t.every
}

func derivePeriod(callEvery increment.Value, max decimal.NullDecimal) (int64, error) {
	if callEvery.IsPercent() {
		if !max.Valid {
			return 0, apperror.NewBoundsRequired("a percentage call period requires a max counter")
		}
		every := max.Decimal.Mul(callEvery.Decimal()).Round(0).IntPart()
		if every < 1 {
			every = 1
		}
		return every, nil
	}

	if !callEvery.IsZero() {
		n := callEvery.Decimal()
		if !n.IsInteger() || !n.IsPositive() {
			return 0, apperror.NewInvalidConfiguration("call period must be a positive integer").
				WithDetail("call_every", n.String())
		}
		return n.IntPart(), nil
	}

	if !max.Valid {
		return DefaultPeriod, nil
	}
	for _, tier := range periodTiers {
		if max.Decimal.LessThanOrEqual(decimal.NewFromInt(tier.upTo)) {
			return tier.every, nil
		}
	}
	return topTierPeriod, nil
}
