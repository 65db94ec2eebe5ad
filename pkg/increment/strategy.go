// Package increment provides the increment strategies a counter consults on
// every operation: a constant, an ordered sequence, or a keyed lookup table.
//
// Strategies hold static configuration plus, for Sequence, a cursor. They are
// not safe for concurrent use; Clone gives every counter its own cursor.
package increment

import (
	"fmt"
	"reflect"
)

// Strategy produces the delta (or target) value of a counter operation.
type Strategy interface {
	// Resolve returns the value for an explicit argument x, or the
	// strategy's own next value when x is nil.
	Resolve(x any) (Value, error)

	// Clone returns a strategy sharing the static configuration but with
	// its own runtime state.
	Clone() Strategy

	// String describes the strategy for dumps.
	String() string
}

// FallbackKind selects what happens when a key or index has no value.
type FallbackKind uint8

const (
	// FallbackFail raises MissingKey / IndexOutOfRange.
	FallbackFail FallbackKind = iota
	// FallbackValue returns Fallback.Value.
	FallbackValue
	// FallbackEcho returns the requested key itself (Lookup only).
	FallbackEcho
)

func (k FallbackKind) String() string {
	switch k {
	case FallbackValue:
		return "value"
	case FallbackEcho:
		return "echo"
	default:
		return "fail"
	}
}

// Fallback is an explicit policy for unresolvable keys and indexes.
type Fallback struct {
	Kind  FallbackKind
	Value any
}

// NoFallback fails on unresolvable input.
func NoFallback() Fallback { return Fallback{Kind: FallbackFail} }

// FallbackTo returns v for unresolvable input.
func FallbackTo(v any) Fallback { return Fallback{Kind: FallbackValue, Value: v} }

// EchoKey returns the requested key unchanged.
func EchoKey() Fallback { return Fallback{Kind: FallbackEcho} }

func (f Fallback) String() string {
	if f.Kind == FallbackValue {
		return fmt.Sprintf("value(%v)", f.Value)
	}
	return f.Kind.String()
}

// entry is one payload value. Validated entries are parsed once; entries
// built with validation skipped are parsed on every resolve.
type entry struct {
	raw    any
	val    Value
	parsed bool
}

func newEntry(raw any, skipValidation bool) (entry, error) {
	if skipValidation {
		return entry{raw: raw}, nil
	}
	v, err := Parse(raw)
	if err != nil {
		return entry{}, err
	}
	return entry{raw: raw, val: v, parsed: true}, nil
}

func (e entry) value() (Value, error) {
	if e.parsed {
		return e.val, nil
	}
	return Parse(e.raw)
}

// fallback is a compiled Fallback.
type fallback struct {
	kind FallbackKind
	e    entry
}

func newFallback(f Fallback, skipValidation bool) (fallback, error) {
	if f.Kind != FallbackValue {
		return fallback{kind: f.Kind}, nil
	}
	e, err := newEntry(f.Value, skipValidation)
	if err != nil {
		return fallback{}, err
	}
	return fallback{kind: FallbackValue, e: e}, nil
}

// FromSpec classifies a loosely typed increment definition once:
// nil → Constant(1), a Strategy is used as is, slices become a Sequence,
// string-keyed maps become a Lookup and anything else a Constant.
// Sequence and Lookup get their default options.
func FromSpec(spec any) (Strategy, error) {
	if s, ok := spec.(Strategy); ok {
		return s, nil
	}

	var (
		s   Strategy
		err error
	)
	rv := reflect.ValueOf(spec)
	switch {
	case spec == nil:
		s, err = NewConstant(1, nil)
	case rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array:
		values := make([]any, rv.Len())
		for i := range values {
			values[i] = rv.Index(i).Interface()
		}
		s, err = NewSequence(values, nil)
	case rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String:
		values := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			values[iter.Key().String()] = iter.Value().Interface()
		}
		s, err = NewLookup(values, nil)
	default:
		s, err = NewConstant(spec, nil)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}
