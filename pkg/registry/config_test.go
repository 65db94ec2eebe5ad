package registry

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"advcounter/pkg/apperror"
	"advcounter/pkg/increment"
	"advcounter/pkg/logger"
)

const descriptionDoc = `
name: my counters
defaults:
  max: 30
counters:
  - key: t1
  - key: t5
    name: test2
    description: this is a test
    initial: 5
    max: 10
`

func TestLoad_Report(t *testing.T) {
	r, err := Load([]byte(descriptionDoc), logger.Nop())
	require.NoError(t, err)
	assert.True(t, r.Locked())
	assert.Equal(t, "my counters", r.Name())

	want := "my counters\n" +
		"       t1 : 0\n" +
		"    test2 : 5\n" +
		"        this is a test"
	assert.Empty(t, cmp.Diff(want, r.String()))

	_, err = r.Get("t9")
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestLoad_Increments(t *testing.T) {
	doc := `
locked: false
counters:
  - key: constant
    increment: 2.5
  - key: percent
    max: 200
    increment: "5%"
  - key: list
    increment: [1, 2, 10]
  - key: table
    increment: {t1: 1, t10: 10}
  - key: repeat
    increment:
      sequence: [1, 2]
      repeat: true
      on_index: jump
      out_of_range: 7
  - key: strict
    increment:
      lookup: {a: 3}
      absent: fail
      missing: 0
  - key: bounded
    min: 1
    max: 3
    rollover: true
    percent_places: 1
`
	r, err := Load([]byte(doc), nil)
	require.NoError(t, err)
	assert.False(t, r.Locked())

	steps := []struct {
		key  string
		x    any
		want string
	}{
		{"constant", nil, "2.5"},
		{"percent", nil, "10"},
		{"list", nil, "1"},
		{"list", nil, "3"},
		{"list", nil, "13"},
		{"table", nil, "1"},
		{"table", "t10", "11"},
		{"table", 5, "16"},
		{"repeat", nil, "1"},
		{"repeat", nil, "3"},
		{"repeat", nil, "4"},
		{"repeat", 9, "11"},
		{"strict", "a", "3"},
		{"strict", "b", "3"},
		{"bounded", 3, "1"},
	}
	for i, s := range steps {
		v, err := r.Add(s.key, s.x)
		require.NoError(t, err, "step %d", i)
		assert.Equal(t, s.want, v.String(), "step %d (%s)", i, s.key)
	}

	_, err = r.Add("strict", nil)
	assert.ErrorIs(t, err, apperror.ErrMissingKey)

	c, err := r.Get("bounded")
	require.NoError(t, err)
	assert.True(t, c.Rollover())
	s, err := c.PercentString()
	require.NoError(t, err)
	assert.Equal(t, "0.0%", s)
}

func TestLoad_DefaultIncrement(t *testing.T) {
	doc := `
defaults:
  increment: [5, 1]
counters:
  - key: a
  - key: b
`
	r, err := Load([]byte(doc), nil)
	require.NoError(t, err)

	_, err = r.Add("a", nil)
	require.NoError(t, err)
	_, err = r.Add("a", nil)
	require.NoError(t, err)
	_, err = r.Add("b", nil)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff([]int64{6, 5}, ints(r)))

	c, err := r.Get("a")
	require.NoError(t, err)
	_, ok := c.Increment().(*increment.Sequence)
	assert.True(t, ok)
}

func TestParseConfig_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{"syntax", "counters: [", apperror.ErrInvalidConfiguration},
		{"bad number", "defaults:\n  max: lots\n", apperror.ErrInvalidConfiguration},
		{"bad increment", "defaults:\n  increment: foobar\n", apperror.ErrInvalidIncrementType},
		{"nested increment", "defaults:\n  increment: [[1]]\n", apperror.ErrInvalidConfiguration},
		{"bad policy", "defaults:\n  increment:\n    sequence: [1]\n    on_index: sideways\n", apperror.ErrInvalidConfiguration},
		{"echo sequence", "defaults:\n  increment:\n    sequence: [1]\n    out_of_range: echo\n", apperror.ErrInvalidConfiguration},
		{"empty sequence", "defaults:\n  increment: []\n", apperror.ErrInvalidConfiguration},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.doc))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestConfig_BuildErrors(t *testing.T) {
	cfg, err := ParseConfig([]byte("counters:\n  - name: nameless\n"))
	require.NoError(t, err)
	_, err = cfg.Build(nil)
	assert.ErrorIs(t, err, apperror.ErrInvalidConfiguration)

	cfg, err = ParseConfig([]byte("counters:\n  - key: a\n  - key: a\n"))
	require.NoError(t, err)
	_, err = cfg.Build(nil)
	assert.ErrorIs(t, err, apperror.ErrDuplicate)

	cfg, err = ParseConfig([]byte("counters:\n  - key: a\n    min: 5\n    max: 1\n"))
	require.NoError(t, err)
	_, err = cfg.Build(nil)
	assert.ErrorIs(t, err, apperror.ErrInvalidConfiguration)
}
