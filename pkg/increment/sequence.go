package increment

import (
	"fmt"

	"github.com/shopspring/decimal"

	"advcounter/internal/core/types"
	"advcounter/pkg/apperror"
)

// IndexPolicy governs the cursor when Resolve gets an explicit index.
type IndexPolicy uint8

const (
	// IndexAdvance moves the cursor forward as if no index was passed.
	IndexAdvance IndexPolicy = iota
	// IndexReset moves the cursor back before the first element.
	IndexReset
	// IndexJump moves the cursor to the passed index.
	IndexJump
	// IndexHold leaves the cursor where it is.
	IndexHold
)

func (p IndexPolicy) String() string {
	switch p {
	case IndexReset:
		return "reset"
	case IndexJump:
		return "jump"
	case IndexHold:
		return "hold"
	default:
		return "advance"
	}
}

// SequenceOptions configures a Sequence strategy.
type SequenceOptions struct {
	// Repeat wraps the cursor to the first element after the last one.
	// Without it the cursor saturates at the last element.
	Repeat bool

	// OnIndex is applied when an explicit index is resolved.
	OnIndex IndexPolicy

	// OutOfRange handles explicit indexes outside the list.
	// FallbackEcho is not allowed.
	OutOfRange Fallback

	// SkipValidation defers the type check of the values to Resolve.
	SkipValidation bool
}

// DefaultSequenceOptions returns standard options (no repeat, advance on
// index, fail out of range).
func DefaultSequenceOptions() *SequenceOptions {
	return &SequenceOptions{
		OnIndex:    IndexAdvance,
		OutOfRange: NoFallback(),
	}
}

type sequenceConfig struct {
	values     []entry
	repeat     bool
	onIndex    IndexPolicy
	outOfRange fallback
}

// Sequence resolves successive values from an ordered list.
type Sequence struct {
	cfg *sequenceConfig
	// cursor is -1 before the first resolve
	cursor int
}

// NewSequence creates a Sequence over values. opts may be nil.
func NewSequence(values []any, opts *SequenceOptions) (*Sequence, error) {
	if opts == nil {
		opts = DefaultSequenceOptions()
	}
	if len(values) == 0 {
		return nil, apperror.NewInvalidConfiguration("sequence increment needs at least one value")
	}
	if opts.OutOfRange.Kind == FallbackEcho {
		return nil, apperror.NewInvalidConfiguration("sequence increment cannot echo an out of range index")
	}

	cfg := &sequenceConfig{
		values:  make([]entry, len(values)),
		repeat:  opts.Repeat,
		onIndex: opts.OnIndex,
	}
	for i, raw := range values {
		e, err := newEntry(raw, opts.SkipValidation)
		if err != nil {
			return nil, err
		}
		cfg.values[i] = e
	}
	fb, err := newFallback(opts.OutOfRange, opts.SkipValidation)
	if err != nil {
		return nil, err
	}
	cfg.outOfRange = fb

	return &Sequence{cfg: cfg, cursor: -1}, nil
}

// Len returns the number of values.
func (s *Sequence) Len() int { return len(s.cfg.values) }

// Cursor returns the index of the last resolved value, -1 before the first.
func (s *Sequence) Cursor() int { return s.cursor }

func (s *Sequence) maxIndex() int { return len(s.cfg.values) - 1 }

func (s *Sequence) next() int {
	s.cursor++
	if s.cursor > s.maxIndex() {
		if s.cfg.repeat {
			s.cursor = 0
		} else {
			s.cursor = s.maxIndex()
		}
	}
	return s.cursor
}

// Resolve returns the next value when x is nil, or the value at index x.
func (s *Sequence) Resolve(x any) (Value, error) {
	if x == nil {
		return s.cfg.values[s.next()].value()
	}

	idx, err := indexOf(x)
	if err != nil {
		return Value{}, err
	}
	i, fits := types.ToInt(idx)
	if !fits || i < 0 || i > s.maxIndex() {
		if s.cfg.outOfRange.kind == FallbackValue {
			return s.cfg.outOfRange.e.value()
		}
		return Value{}, apperror.NewIndexOutOfRange(x, s.maxIndex())
	}

	switch s.cfg.onIndex {
	case IndexAdvance:
		s.next()
	case IndexReset:
		s.cursor = -1
	case IndexJump:
		s.cursor = i
	case IndexHold:
	}
	return s.cfg.values[i].value()
}

func indexOf(x any) (decimal.Decimal, error) {
	d, ok := types.ToDecimal(x)
	if v, isValue := x.(Value); isValue && !v.IsPercent() {
		d, ok = v.Decimal(), true
	}
	if !ok || !d.IsInteger() {
		return decimal.Zero, apperror.NewInvalidIncrementType(x).
			WithDetail("reason", "sequence index must be an integer")
	}
	return d, nil
}

// Clone implements Strategy. The copy keeps the current cursor position but
// moves independently afterwards.
func (s *Sequence) Clone() Strategy {
	return &Sequence{cfg: s.cfg, cursor: s.cursor}
}

func (s *Sequence) String() string {
	raw := make([]any, len(s.cfg.values))
	for i, e := range s.cfg.values {
		raw[i] = e.raw
	}
	return fmt.Sprintf("Sequence(values=%v repeat=%t on_index=%s out_of_range=%s cursor=%d)",
		raw, s.cfg.repeat, s.cfg.onIndex, s.cfg.outOfRange.kind, s.cursor)
}
