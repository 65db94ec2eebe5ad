package increment

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"advcounter/pkg/apperror"
)

var (
	testLookup   = map[string]any{"t1": 1, "t2": 2, "t10": 10}
	testSequence = []any{1, 2, 10, 20}
)

func requireValue(t *testing.T, want any, got Value, err error) {
	t.Helper()
	require.NoError(t, err)
	assert.True(t, MustParse(want).Equal(got), "want %v, got %v", want, got)
}

func TestParse(t *testing.T) {
	v, err := Parse("50%")
	require.NoError(t, err)
	assert.True(t, v.IsPercent())
	assert.True(t, v.Decimal().Equal(decimal.RequireFromString("0.5")))
	assert.Equal(t, "50%", v.String())

	v, err = Parse(2.5)
	require.NoError(t, err)
	assert.Equal(t, KindNumber, v.Kind())
	assert.Equal(t, "2.5", v.String())

	for _, bad := range []any{"foobar", "12", nil, struct{}{}, []int{1}} {
		_, err := Parse(bad)
		assert.ErrorIs(t, err, apperror.ErrInvalidIncrementType, "%#v", bad)
	}
}

func TestConstant(t *testing.T) {
	c, err := NewConstant(1, nil)
	require.NoError(t, err)

	v, err := c.Resolve(nil)
	requireValue(t, 1, v, err)

	v, err = c.Resolve(20)
	requireValue(t, 20, v, err)

	v, err = c.Resolve("25%")
	requireValue(t, "25%", v, err)
}

func TestConstant_InvalidType(t *testing.T) {
	_, err := NewConstant("foobar", nil)
	assert.ErrorIs(t, err, apperror.ErrInvalidIncrementType)
}

func TestConstant_SkipValidation(t *testing.T) {
	c, err := NewConstant("foobar", &ConstantOptions{SkipValidation: true})
	require.NoError(t, err)

	_, err = c.Resolve(nil)
	assert.ErrorIs(t, err, apperror.ErrInvalidIncrementType)

	v, err := c.Resolve(20)
	requireValue(t, 20, v, err)
}

func TestLookup_Defaults(t *testing.T) {
	l, err := NewLookup(testLookup, nil)
	require.NoError(t, err)

	v, err := l.Resolve(nil)
	requireValue(t, 1, v, err)

	v, err = l.Resolve("t10")
	requireValue(t, 10, v, err)

	// unknown numeric keys are echoed back
	v, err = l.Resolve(222)
	requireValue(t, 222, v, err)

	// echoed keys still have to be numbers
	_, err = l.Resolve("foobar")
	assert.ErrorIs(t, err, apperror.ErrInvalidIncrementType)
}

func TestLookup_NoAbsentDefault(t *testing.T) {
	l, err := NewLookup(testLookup, &LookupOptions{Absent: NoFallback(), Missing: EchoKey()})
	require.NoError(t, err)

	v, err := l.Resolve("t10")
	requireValue(t, 10, v, err)

	_, err = l.Resolve(nil)
	assert.ErrorIs(t, err, apperror.ErrMissingKey)

	v, err = l.Resolve(222)
	requireValue(t, 222, v, err)
}

func TestLookup_NoMissingDefault(t *testing.T) {
	l, err := NewLookup(testLookup, &LookupOptions{Absent: FallbackTo(1), Missing: NoFallback()})
	require.NoError(t, err)

	v, err := l.Resolve("t10")
	requireValue(t, 10, v, err)

	v, err = l.Resolve(nil)
	requireValue(t, 1, v, err)

	_, err = l.Resolve(222)
	assert.ErrorIs(t, err, apperror.ErrMissingKey)
}

func TestLookup_MissingFallbackValue(t *testing.T) {
	l, err := NewLookup(testLookup, &LookupOptions{Absent: NoFallback(), Missing: FallbackTo("10%")})
	require.NoError(t, err)

	v, err := l.Resolve("nope")
	requireValue(t, "10%", v, err)
	assert.True(t, l.Has("t2"))
	assert.False(t, l.Has("nope"))
}

func TestLookup_InvalidConfiguration(t *testing.T) {
	_, err := NewLookup(testLookup, &LookupOptions{Absent: EchoKey()})
	assert.ErrorIs(t, err, apperror.ErrInvalidConfiguration)

	_, err = NewLookup(map[string]any{"bad": "x"}, nil)
	require.ErrorIs(t, err, apperror.ErrInvalidIncrementType)
	appErr, _ := apperror.AsAppError(err)
	assert.Equal(t, "bad", appErr.Details["key"])

	_, err = NewLookup(map[string]any{"bad": "x"}, &LookupOptions{Missing: EchoKey(), SkipValidation: true})
	assert.NoError(t, err)
}

func TestSequence_Standard(t *testing.T) {
	s, err := NewSequence(testSequence, nil)
	require.NoError(t, err)

	for _, want := range []int{1, 2, 10, 20, 20} {
		v, err := s.Resolve(nil)
		requireValue(t, want, v, err)
	}

	_, err = s.Resolve(22)
	assert.ErrorIs(t, err, apperror.ErrIndexOutOfRange)

	for idx, want := range map[int]int{1: 2, 2: 10, 0: 1} {
		v, err := s.Resolve(idx)
		requireValue(t, want, v, err)
	}
}

func TestSequence_OutOfRangeFallback(t *testing.T) {
	s, err := NewSequence(testSequence, &SequenceOptions{OutOfRange: FallbackTo(100)})
	require.NoError(t, err)

	v, err := s.Resolve(nil)
	requireValue(t, 1, v, err)

	v, err = s.Resolve(222)
	requireValue(t, 100, v, err)

	v, err = s.Resolve(-1)
	requireValue(t, 100, v, err)
	assert.Equal(t, 0, s.Cursor())
}

func TestSequence_IndexPolicies(t *testing.T) {
	tests := []struct {
		name   string
		policy IndexPolicy
		calls  []any
		want   []int
	}{
		{"advance", IndexAdvance, []any{nil, 3, nil}, []int{1, 20, 10}},
		{"reset", IndexReset, []any{nil, nil, 3, nil}, []int{1, 2, 20, 1}},
		{"jump", IndexJump, []any{nil, nil, 0, nil}, []int{1, 2, 1, 2}},
		{"hold", IndexHold, []any{nil, nil, 0, nil}, []int{1, 2, 1, 10}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewSequence(testSequence, &SequenceOptions{OnIndex: tt.policy})
			require.NoError(t, err)
			for i, x := range tt.calls {
				v, err := s.Resolve(x)
				requireValue(t, tt.want[i], v, err)
			}
		})
	}
}

func TestSequence_Repeat(t *testing.T) {
	s, err := NewSequence(testSequence, &SequenceOptions{Repeat: true})
	require.NoError(t, err)

	for _, want := range []int{1, 2, 10, 20, 1, 2} {
		v, err := s.Resolve(nil)
		requireValue(t, want, v, err)
	}
}

func TestSequence_Saturates(t *testing.T) {
	s, err := NewSequence(testSequence, nil)
	require.NoError(t, err)

	var last Value
	for range 2 * s.Len() {
		last, err = s.Resolve(nil)
		require.NoError(t, err)
	}
	requireValue(t, 20, last, err)
	assert.Equal(t, 3, s.Cursor())
}

func TestSequence_InvalidIndex(t *testing.T) {
	s, err := NewSequence(testSequence, nil)
	require.NoError(t, err)

	_, err = s.Resolve(1.5)
	assert.ErrorIs(t, err, apperror.ErrInvalidIncrementType)
	_, err = s.Resolve("t1")
	assert.ErrorIs(t, err, apperror.ErrInvalidIncrementType)
	assert.Equal(t, -1, s.Cursor())
}

func TestSequence_Construction(t *testing.T) {
	_, err := NewSequence(nil, nil)
	assert.ErrorIs(t, err, apperror.ErrInvalidConfiguration)

	_, err = NewSequence(testSequence, &SequenceOptions{OutOfRange: EchoKey()})
	assert.ErrorIs(t, err, apperror.ErrInvalidConfiguration)

	_, err = NewSequence([]any{1, "nope"}, nil)
	assert.ErrorIs(t, err, apperror.ErrInvalidIncrementType)
}

func TestSequence_CloneHasOwnCursor(t *testing.T) {
	s, err := NewSequence(testSequence, nil)
	require.NoError(t, err)
	_, _ = s.Resolve(nil)

	c := s.Clone().(*Sequence)
	v, err := c.Resolve(nil)
	requireValue(t, 2, v, err)
	v, err = c.Resolve(nil)
	requireValue(t, 10, v, err)

	assert.Equal(t, 0, s.Cursor())
	v, err = s.Resolve(nil)
	requireValue(t, 2, v, err)
}

func TestFromSpec(t *testing.T) {
	s, err := FromSpec(nil)
	require.NoError(t, err)
	assert.IsType(t, &Constant{}, s)

	s, err = FromSpec([]int{1, 2})
	require.NoError(t, err)
	assert.IsType(t, &Sequence{}, s)

	s, err = FromSpec(map[string]int{"a": 1})
	require.NoError(t, err)
	assert.IsType(t, &Lookup{}, s)

	s, err = FromSpec("5%")
	require.NoError(t, err)
	assert.IsType(t, &Constant{}, s)

	given := MustConstant(3)
	s, err = FromSpec(given)
	require.NoError(t, err)
	assert.Same(t, given, s)

	_, err = FromSpec(map[int]int{1: 1})
	assert.ErrorIs(t, err, apperror.ErrInvalidIncrementType)
}

func TestStrings(t *testing.T) {
	l, err := NewLookup(map[string]any{"b": 2, "a": 1}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Lookup(values={a:1 b:2} absent=value missing=echo)", l.String())

	s, err := NewSequence([]any{1, 2}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Sequence(values=[1 2] repeat=false on_index=advance out_of_range=fail cursor=-1)", s.String())

	assert.Equal(t, "Constant(5%)", MustConstant("5%").String())
}
