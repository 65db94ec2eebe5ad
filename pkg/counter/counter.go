// Package counter implements a bounded numeric counter.
//
// A Counter holds a decimal value, optionally confined to [Min, Max] by
// clamping or rollover, and changes it through add, sub, mult, div and set
// operations whose operand comes from an increment.Strategy. A callback can
// be registered to run every N operations.
package counter

import (
	"iter"

	"github.com/shopspring/decimal"

	"advcounter/internal/core/types"
	"advcounter/pkg/apperror"
	"advcounter/pkg/increment"
	"advcounter/pkg/logger"
)

// Op is a counter operation.
type Op uint8

const (
	OpAdd Op = iota + 1
	OpSub
	OpMult
	OpDiv
	OpSet
)

func (op Op) String() string {
	switch op {
	case OpAdd:
		return "add"
	case OpSub:
		return "sub"
	case OpMult:
		return "mult"
	case OpDiv:
		return "div"
	case OpSet:
		return "set"
	default:
		return "unknown"
	}
}

func (op Op) valid() bool {
	return op >= OpAdd && op <= OpSet
}

// CallOptions tune a single Do call.
type CallOptions struct {
	// Mode selects what is returned, see ReturnMode
	Mode ReturnMode

	// Force uses the argument directly instead of resolving it through the
	// increment strategy
	Force bool

	// Quiet counts the operation but does not fire the callback
	Quiet bool
}

// Result is the outcome of Do and Call.
type Result struct {
	// Value is the counter value after the operation
	Value decimal.Decimal

	// Counter is the mutated counter: the receiver for ReturnSelf, a copy
	// for ReturnCopy, nil for ReturnValue
	Counter *Counter
}

// Counter is a bounded decimal counter.
//
// A Counter is owned by a single goroutine; it is not safe for concurrent use
// and callers sharing one must serialise access themselves.
type Counter struct {
	value    decimal.Decimal
	min      decimal.NullDecimal
	max      decimal.NullDecimal
	rollover bool

	inc increment.Strategy

	operations int64
	trigger    *trigger
	onEvery    func(*Counter)
	callEvery  increment.Value

	places int32
	ret    ReturnMode
	log    *logger.Logger
}

// New creates a counter from cfg.
func New(cfg Config) (*Counter, error) {
	if err := validateBounds(cfg.Min, cfg.Max, cfg.Rollover); err != nil {
		return nil, err
	}

	inc := cfg.Increment
	if inc == nil {
		inc = increment.MustConstant(1)
	}

	trg, err := newTrigger(cfg.OnEvery, cfg.CallEvery, cfg.Max)
	if err != nil {
		return nil, err
	}

	c := &Counter{
		min:       cfg.Min,
		max:       cfg.Max,
		rollover:  cfg.Rollover,
		inc:       inc,
		trigger:   trg,
		onEvery:   cfg.OnEvery,
		callEvery: cfg.CallEvery,
		places:    cfg.PercentPlaces,
		ret:       cfg.Return,
		log:       logger.OrNop(cfg.Logger).WithComponent("counter"),
	}

	initial := c.zero()
	if cfg.Initial.Valid {
		initial = cfg.Initial.Decimal
	}
	c.value = Clamp(initial, c.min, c.max, c.rollover)

	c.log.Debugw("counter configured",
		"value", c.value.String(),
		"min", nullString(c.min),
		"max", nullString(c.max),
		"rollover", c.rollover,
		"increment", c.inc.String(),
		"every", c.Every(),
	)
	return c, nil
}

// MustNew is New for static configurations; it panics on error.
func MustNew(cfg Config) *Counter {
	c, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return c
}

func (c *Counter) zero() decimal.Decimal {
	if c.min.Valid {
		return c.min.Decimal
	}
	return decimal.Zero
}

// --- Operations ---

// Add adds the resolved operand. A percentage operand adds that share of Max.
func (c *Counter) Add(x any) (decimal.Decimal, error) {
	return c.do(OpAdd, x)
}

// Sub subtracts the resolved operand. A percentage operand subtracts that
// share of Max.
func (c *Counter) Sub(x any) (decimal.Decimal, error) {
	return c.do(OpSub, x)
}

// Mult multiplies by the resolved operand. A percentage operand multiplies by
// its fraction ("50%" halves the value).
func (c *Counter) Mult(x any) (decimal.Decimal, error) {
	return c.do(OpMult, x)
}

// Div divides by the resolved operand. A percentage operand divides by its
// fraction ("50%" doubles the value).
func (c *Counter) Div(x any) (decimal.Decimal, error) {
	return c.do(OpDiv, x)
}

// Set replaces the value with the resolved operand. A percentage operand sets
// that share of Max.
func (c *Counter) Set(x any) (decimal.Decimal, error) {
	return c.do(OpSet, x)
}

// ForceSet sets x without consulting the increment strategy.
func (c *Counter) ForceSet(x any) (decimal.Decimal, error) {
	res, err := c.Do(OpSet, x, CallOptions{Force: true})
	return res.Value, err
}

func (c *Counter) do(op Op, x any) (decimal.Decimal, error) {
	if err := c.apply(op, x, false, false); err != nil {
		return c.value, err
	}
	return c.value, nil
}

// Do runs op with explicit call options.
func (c *Counter) Do(op Op, x any, opts CallOptions) (Result, error) {
	target := c
	if opts.Mode == ReturnCopy {
		target = c.Copy()
	}
	if err := target.apply(op, x, opts.Force, opts.Quiet); err != nil {
		return Result{Value: c.value}, err
	}
	return target.result(opts.Mode), nil
}

func (c *Counter) result(mode ReturnMode) Result {
	if mode == ReturnValue {
		return Result{Value: c.value}
	}
	return Result{Value: c.value, Counter: c}
}

// apply resolves, computes and commits one operation. Nothing is changed
// unless every step succeeds. A *Counter operand stands for its value.
func (c *Counter) apply(op Op, x any, force, quiet bool) error {
	if !op.valid() {
		return apperror.NewInvalidOperation(op)
	}
	if o, ok := x.(*Counter); ok && o != nil {
		x = o.value
	}

	var (
		operand increment.Value
		inc     = c.inc
		err     error
	)
	if force {
		operand, err = increment.Parse(x)
	} else {
		inc = c.inc.Clone()
		operand, err = inc.Resolve(x)
	}
	if err != nil {
		return err
	}

	raw, err := c.compute(op, operand)
	if err != nil {
		return err
	}

	c.inc = inc
	c.commit(raw, quiet)
	return nil
}

func (c *Counter) compute(op Op, operand increment.Value) (decimal.Decimal, error) {
	d := operand.Decimal()
	if operand.IsPercent() && (op == OpAdd || op == OpSub || op == OpSet) {
		if !c.max.Valid {
			return decimal.Zero, apperror.NewBoundsRequired("percentage increments require a max counter").
				WithDetail("operation", op.String())
		}
		d = d.Mul(c.max.Decimal)
	}

	switch op {
	case OpAdd:
		return c.value.Add(d), nil
	case OpSub:
		return c.value.Sub(d), nil
	case OpMult:
		return c.value.Mul(d), nil
	case OpDiv:
		if d.IsZero() {
			return decimal.Zero, apperror.NewDivisionByZero()
		}
		return c.value.Div(d), nil
	default:
		return d, nil
	}
}

func (c *Counter) commit(raw decimal.Decimal, quiet bool) {
	c.value = Clamp(raw, c.min, c.max, c.rollover)
	c.operations++

	if c.trigger == nil || !c.trigger.tick() || quiet {
		return
	}
	c.log.Debugw("trigger fired", "operations", c.operations, "value", c.value.String())
	c.trigger.fn(c)
}

// Clear resets the value to Min (or 0) and the operation count and trigger
// countdown to their initial state. Bounds and strategy are kept.
func (c *Counter) Clear() {
	c.value = Clamp(c.zero(), c.min, c.max, c.rollover)
	c.operations = 0
	if c.trigger != nil {
		c.trigger.reset()
	}
}

// SetBounds replaces both bounds, re-derives the trigger period, restarts the
// countdown and clamps the current value without counting an operation.
func (c *Counter) SetBounds(min, max decimal.NullDecimal) error {
	if err := validateBounds(min, max, c.rollover); err != nil {
		return err
	}
	trg, err := newTrigger(c.onEvery, c.callEvery, max)
	if err != nil {
		return err
	}

	c.min, c.max, c.trigger = min, max, trg
	c.value = Clamp(c.value, c.min, c.max, c.rollover)
	return nil
}

// Copy returns an independent counter with the same configuration, value,
// operation count and countdown. Sequence cursors are cloned, not shared.
func (c *Counter) Copy() *Counter {
	cp := *c
	cp.inc = c.inc.Clone()
	if c.trigger != nil {
		t := *c.trigger
		cp.trigger = &t
	}
	return &cp
}

// All yields the value after each Add(nil), endlessly. Iteration stops at
// the first failing Add; callers must break out themselves otherwise.
func (c *Counter) All() iter.Seq[decimal.Decimal] {
	return func(yield func(decimal.Decimal) bool) {
		for {
			v, err := c.Add(nil)
			if err != nil {
				c.log.Debugw("iteration stopped", "error", err)
				return
			}
			if !yield(v) {
				return
			}
		}
	}
}

// --- Accessors ---

// Value returns the current value.
func (c *Counter) Value() decimal.Decimal { return c.value }

// Int returns the integer part of the value.
func (c *Counter) Int() int64 { return c.value.IntPart() }

// Float64 returns the value as a float64.
func (c *Counter) Float64() float64 {
	f, _ := c.value.Float64()
	return f
}

// IsZero reports whether the value is zero.
func (c *Counter) IsZero() bool { return c.value.IsZero() }

// Min returns the lower bound.
func (c *Counter) Min() decimal.NullDecimal { return c.min }

// Max returns the upper bound.
func (c *Counter) Max() decimal.NullDecimal { return c.max }

// HasBounds reports whether both bounds are set.
func (c *Counter) HasBounds() bool { return c.min.Valid && c.max.Valid }

// Rollover reports whether the counter wraps at its bounds.
func (c *Counter) Rollover() bool { return c.rollover }

// Increment returns the increment strategy.
func (c *Counter) Increment() increment.Strategy { return c.inc }

// Operations returns the number of operations since creation or Clear.
func (c *Counter) Operations() int64 { return c.operations }

// Every returns the trigger period, 0 without a callback.
func (c *Counter) Every() int64 {
	if c.trigger == nil {
		return 0
	}
	return c.trigger.every
}

// Countdown returns the operations left until the next callback, 0 without
// a callback.
func (c *Counter) Countdown() int64 {
	if c.trigger == nil {
		return 0
	}
	return c.trigger.countdown
}

// Percentage returns where the value sits between Min and Max as a fraction
// (0.2 for 20%).
func (c *Counter) Percentage() (decimal.Decimal, error) {
	if !c.HasBounds() {
		return decimal.Zero, apperror.NewBoundsRequired("percentage is only valid for counters with min and max counter set")
	}
	span := c.max.Decimal.Sub(c.min.Decimal)
	if span.IsZero() {
		return decimal.Zero, nil
	}
	return c.value.Sub(c.min.Decimal).Div(span), nil
}

// PercentString returns Percentage formatted with the configured number of
// decimals ("20%").
func (c *Counter) PercentString() (string, error) {
	p, err := c.Percentage()
	if err != nil {
		return "", err
	}
	return types.FormatPercent(p, c.places), nil
}

// --- Comparison ---

// Compare compares the value with other, which may be a *Counter or a
// number. It returns -1, 0 or +1.
func (c *Counter) Compare(other any) (int, error) {
	if o, ok := other.(*Counter); ok {
		return c.value.Cmp(o.value), nil
	}
	d, ok := types.ToDecimal(other)
	if !ok {
		return 0, apperror.NewInvalidIncrementType(other).
			WithDetail("reason", "counters compare only with counters and numbers")
	}
	return c.value.Cmp(d), nil
}

// Equal reports whether other holds the same value.
func (c *Counter) Equal(other any) bool {
	n, err := c.Compare(other)
	return err == nil && n == 0
}

// LessThan reports whether the value is below other.
func (c *Counter) LessThan(other any) bool {
	n, err := c.Compare(other)
	return err == nil && n < 0
}

// GreaterThan reports whether the value is above other.
func (c *Counter) GreaterThan(other any) bool {
	n, err := c.Compare(other)
	return err == nil && n > 0
}

// --- Formatting ---

// String returns the value.
func (c *Counter) String() string {
	return c.value.String()
}

// Describe returns the value with its bounds, e.g. "10 (5 <-> 20) [rollover]".
func (c *Counter) Describe() string {
	s := c.value.String()
	switch {
	case c.HasBounds():
		s += " (" + c.min.Decimal.String() + " <-> " + c.max.Decimal.String() + ")"
	case c.min.Valid:
		s += " (" + c.min.Decimal.String() + " <-> [any])"
	case c.max.Valid:
		s += " ([any] <-> " + c.max.Decimal.String() + ")"
	}
	if c.rollover {
		s += " [rollover]"
	}
	return s
}

func nullString(d decimal.NullDecimal) string {
	if !d.Valid {
		return "none"
	}
	return d.Decimal.String()
}
