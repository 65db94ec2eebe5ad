package indent

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"advcounter/pkg/apperror"
)

func at(level int, names map[string]int) *Indent {
	opts := DefaultOptions()
	opts.Initial = level
	opts.Names = names
	return MustNew(opts)
}

func TestIndent_Normal(t *testing.T) {
	ih := MustNew(nil)
	assert.Equal(t, "", ih.String())
	assert.Zero(t, ih.Len())
}

func TestIndent_Add(t *testing.T) {
	ih := MustNew(nil)
	ih.Add(1)
	assert.Equal(t, "    ", ih.String())
	assert.Equal(t, "            ", ih.Add(2).String())
	assert.Equal(t, 12, ih.Len())
}

func TestIndent_Sub(t *testing.T) {
	ih := at(4, nil)
	ih.Sub(1)
	assert.Equal(t, 3, ih.Level())
	assert.Equal(t, "            ", ih.String())
	ih.Decr()
	assert.Equal(t, 2, ih.Level())
}

func TestIndent_Chain(t *testing.T) {
	ih := MustNew(nil)
	ih.Add(10).Add(5).Sub(3)
	assert.Equal(t, 12, ih.Level())
	ih.Set(10).Add(5)
	assert.Equal(t, 15, ih.Level())
}

func TestIndent_Set(t *testing.T) {
	ih := MustNew(nil)
	ih.Add(10)
	assert.Equal(t, 10, ih.Level())
	assert.Equal(t, 5, ih.Set(5).Level())
	ih.Set(2)
	assert.Equal(t, "        ", ih.String())
}

func TestIndent_Bounds(t *testing.T) {
	ih := at(4, nil)
	assert.Equal(t, 20, ih.Set(10000).Level())
	assert.Equal(t, 0, ih.Sub(100).Level())

	_, err := New(&Options{MaxSize: -1})
	assert.ErrorIs(t, err, apperror.ErrInvalidConfiguration)
}

func TestIndent_Scope(t *testing.T) {
	ih := at(4, nil)
	func() {
		defer ih.Scope()()
		assert.Equal(t, 5, ih.Level())
	}()
	assert.Equal(t, 4, ih.Level())
}

func TestIndent_NestedScopes(t *testing.T) {
	ih := at(4, nil)

	ih.Enter()
	assert.Equal(t, 5, ih.Level())
	ih.Set(10)
	assert.Equal(t, 10, ih.Level())

	ih.Enter()
	assert.Equal(t, 11, ih.Level())
	ih.Exit()
	assert.Equal(t, 10, ih.Level())

	ih.Set(10000)
	assert.Equal(t, 20, ih.Level())

	ih.Enter()
	assert.Equal(t, 20, ih.Level())
	ih.Set(1)
	ih.Enter()
	assert.Equal(t, 2, ih.Level())
	ih.Exit()
	assert.Equal(t, 1, ih.Level())
	ih.Exit()

	assert.Equal(t, 20, ih.Level())
	ih.Exit()
	assert.Equal(t, 4, ih.Level())

	// unbalanced exits are ignored
	ih.Exit()
	assert.Equal(t, 4, ih.Level())
}

func TestIndent_ScopeRestoresOnError(t *testing.T) {
	ih := at(4, nil)
	err := func() (err error) {
		defer ih.Scope()()
		assert.Equal(t, 5, ih.Level())
		return errors.New("test")
	}()
	require.Error(t, err)
	assert.Equal(t, 4, ih.Level())
}

func TestIndent_SaveName(t *testing.T) {
	ih := at(4, nil)
	ih.Save("foo")
	assert.Equal(t, 4, ih.Level())
	ih.Add(2)
	assert.Equal(t, 6, ih.Level())
	require.NoError(t, ih.SetNamed("foo"))
	assert.Equal(t, 4, ih.Level())
	assert.True(t, ih.Has("foo"))

	require.NoError(t, ih.AddNamed("foo"))
	assert.Equal(t, 8, ih.Level())
}

func TestIndent_PopName(t *testing.T) {
	ih := at(4, nil)
	ih.Save("foo").Add(2)
	assert.Equal(t, 6, ih.Level())
	require.NoError(t, ih.PopNamed("foo"))
	assert.Equal(t, 4, ih.Level())
	assert.False(t, ih.Has("foo"))

	assert.ErrorIs(t, ih.PopNamed("foo"), apperror.ErrMissingKey)
	assert.ErrorIs(t, ih.SetNamed("bar"), apperror.ErrMissingKey)
}

func TestIndent_ForgetName(t *testing.T) {
	ih := at(4, map[string]int{"foo": 6})
	require.NoError(t, ih.SetNamed("foo"))
	assert.Equal(t, 6, ih.Level())
	ih.Sub(10)
	assert.Equal(t, 0, ih.Level())
	require.NoError(t, ih.Forget("foo"))
	assert.Equal(t, 0, ih.Level())
	assert.False(t, ih.Has("foo"))
	assert.ErrorIs(t, ih.Forget("foo"), apperror.ErrMissingKey)
}

func TestIndent_Stack(t *testing.T) {
	ih := at(2, nil)
	ih.Push().Add(3).Push().Set(9)
	assert.Equal(t, 9, ih.Level())
	assert.Equal(t, 5, ih.Pop().Level())
	assert.Equal(t, 2, ih.Pop().Level())
	assert.Equal(t, 2, ih.Pop().Level())

	ih.PushLevel(7).SaveLevel("deep", 12)
	assert.Equal(t, 7, ih.Pop().Level())
	require.NoError(t, ih.SetNamed("deep"))
	assert.Equal(t, 12, ih.Level())
}

func TestIndent_Clear(t *testing.T) {
	ih := at(4, map[string]int{"foo": 6})
	assert.True(t, ih.Has("foo"))
	ih.Clear()
	assert.Equal(t, 0, ih.Level())
	assert.False(t, ih.Has("foo"))
}

func TestIndent_Char(t *testing.T) {
	opts := DefaultOptions()
	opts.Char = "."
	ih := MustNew(opts)
	ih.Incr()
	assert.Equal(t, 1, ih.Level())
	assert.Equal(t, "....", ih.String())
}

func TestIndent_Prefix(t *testing.T) {
	ih := at(1, nil)
	assert.Equal(t, "    foobar", ih.Prefix("foobar"))
}

func TestIndent_IndentText(t *testing.T) {
	ih := at(1, map[string]int{"foo": 6})
	assert.Equal(t, "    foobar\n    blah", ih.IndentText("foobar\nblah", false))
	assert.Equal(t, "foobar\n    blah", ih.IndentText("foobar\nblah", true))

	deferred := ih.Text("a\nb\n", false)
	ih.Add(1)
	assert.Equal(t, "    a\n    b", deferred.String())
	assert.Equal(t, []string{"    a", "    b"}, deferred.Lines())
}

func TestIndentText(t *testing.T) {
	assert.Equal(t, "--x\n--y", IndentText("x\ny", 2, 1, "-"))
	assert.Equal(t, "x", IndentText("x", 0, 4, " "))
}
