// Package indent tracks an indentation level for nested text output.
//
// An Indent is a counter bounded to [0, MaxSize] whose value is the number of
// indent steps. Levels can be remembered by name or on a stack and restored
// later, and Scope gives enter/exit nesting for use with defer.
package indent

import (
	"strings"

	"advcounter/pkg/apperror"
	"advcounter/pkg/counter"
	"advcounter/pkg/increment"
	"advcounter/pkg/logger"
)

// Options configures an Indent.
type Options struct {
	// Initial is the starting level
	Initial int

	// Spaces is the number of Char repetitions per level
	Spaces int

	// MaxSize is the deepest level; deeper settings are clamped
	MaxSize int

	Char string

	// Names are remembered levels available to SetNamed and AddNamed
	Names map[string]int

	Logger *logger.Logger
}

// DefaultOptions returns 4-space indents up to 20 levels.
func DefaultOptions() *Options {
	return &Options{
		Spaces:  4,
		MaxSize: 20,
		Char:    " ",
	}
}

// Indent is a bounded indentation level. It is not safe for concurrent use.
type Indent struct {
	c      *counter.Counter
	spaces int
	char   string

	names  levels
	stack  []int
	scopes []int
}

// New creates an Indent. opts may be nil.
func New(opts *Options) (*Indent, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.MaxSize < 0 || opts.Spaces < 0 {
		return nil, apperror.NewInvalidConfiguration("indent size and spaces must not be negative")
	}

	names := make(levels, len(opts.Names))
	for k, v := range opts.Names {
		names[k] = v
	}

	c, err := counter.New(counter.Config{
		Initial:   counter.Int(int64(opts.Initial)),
		Min:       counter.Int(0),
		Max:       counter.Int(int64(opts.MaxSize)),
		Increment: names,
		Logger:    opts.Logger,
	})
	if err != nil {
		return nil, err
	}

	return &Indent{
		c:      c,
		spaces: opts.Spaces,
		char:   opts.Char,
		names:  names,
	}, nil
}

// MustNew is New for static options; it panics on error.
func MustNew(opts *Options) *Indent {
	ih, err := New(opts)
	if err != nil {
		panic(err)
	}
	return ih
}

// levels resolves named indent levels for the underlying counter: no
// argument means one level, a string is a remembered level and numbers are
// used as is.
type levels map[string]int

func (l levels) Resolve(x any) (increment.Value, error) {
	switch v := x.(type) {
	case nil:
		return increment.Int(1), nil
	case string:
		n, ok := l[v]
		if !ok {
			return increment.Value{}, apperror.NewMissingKey(v).WithDetail("kind", "indent name")
		}
		return increment.Int(int64(n)), nil
	}
	return increment.Parse(x)
}

func (l levels) Clone() increment.Strategy { return l }

func (l levels) String() string { return "IndentLevels" }

// do applies an operation whose operand is always valid.
func (ih *Indent) do(op counter.Op, x any) *Indent {
	if _, err := ih.c.Do(op, x, counter.CallOptions{}); err != nil {
		panic(err)
	}
	return ih
}

// Add indents n levels deeper.
func (ih *Indent) Add(n int) *Indent { return ih.do(counter.OpAdd, n) }

// Sub outdents n levels.
func (ih *Indent) Sub(n int) *Indent { return ih.do(counter.OpSub, n) }

// Set moves to level n.
func (ih *Indent) Set(n int) *Indent { return ih.do(counter.OpSet, n) }

// Incr indents one level deeper.
func (ih *Indent) Incr() *Indent { return ih.do(counter.OpAdd, nil) }

// Decr outdents one level.
func (ih *Indent) Decr() *Indent { return ih.do(counter.OpSub, nil) }

// SetNamed moves to the level remembered as name.
func (ih *Indent) SetNamed(name string) error {
	_, err := ih.c.Set(name)
	return err
}

// AddNamed indents by the level remembered as name.
func (ih *Indent) AddNamed(name string) error {
	_, err := ih.c.Add(name)
	return err
}

// Level returns the current level.
func (ih *Indent) Level() int { return int(ih.c.Int()) }

// Len returns the width of the indent in characters.
func (ih *Indent) Len() int { return ih.spaces * ih.Level() * len([]rune(ih.char)) }

// String returns the indent text for the current level.
func (ih *Indent) String() string { return ih.text(ih.Level()) }

func (ih *Indent) text(level int) string {
	if level <= 0 || ih.spaces <= 0 {
		return ""
	}
	return strings.Repeat(ih.char, ih.spaces*level)
}

// Prefix returns s indented to the current level.
func (ih *Indent) Prefix(s string) string { return ih.String() + s }

// --- Remembered levels ---

// Save remembers the current level as name.
func (ih *Indent) Save(name string) *Indent {
	ih.names[name] = ih.Level()
	return ih
}

// SaveLevel remembers level as name.
func (ih *Indent) SaveLevel(name string, level int) *Indent {
	ih.names[name] = level
	return ih
}

// Has reports whether name is remembered.
func (ih *Indent) Has(name string) bool {
	_, ok := ih.names[name]
	return ok
}

// PopNamed moves to the level remembered as name and forgets it.
func (ih *Indent) PopNamed(name string) error {
	if err := ih.SetNamed(name); err != nil {
		return err
	}
	delete(ih.names, name)
	return nil
}

// Forget drops the level remembered as name without moving.
func (ih *Indent) Forget(name string) error {
	if !ih.Has(name) {
		return apperror.NewMissingKey(name).WithDetail("kind", "indent name")
	}
	delete(ih.names, name)
	return nil
}

// Push saves the current level on the stack.
func (ih *Indent) Push() *Indent {
	return ih.PushLevel(ih.Level())
}

// PushLevel saves level on the stack.
func (ih *Indent) PushLevel(level int) *Indent {
	ih.stack = append(ih.stack, level)
	return ih
}

// Pop moves to the last pushed level. An empty stack leaves the level alone.
func (ih *Indent) Pop() *Indent {
	if len(ih.stack) == 0 {
		return ih
	}
	level := ih.stack[len(ih.stack)-1]
	ih.stack = ih.stack[:len(ih.stack)-1]
	return ih.Set(level)
}

// Enter indents one level and remembers where it came from.
func (ih *Indent) Enter() *Indent {
	ih.scopes = append(ih.scopes, ih.Level())
	return ih.Incr()
}

// Exit returns to the level before the matching Enter.
func (ih *Indent) Exit() *Indent {
	if len(ih.scopes) == 0 {
		return ih
	}
	level := ih.scopes[len(ih.scopes)-1]
	ih.scopes = ih.scopes[:len(ih.scopes)-1]
	return ih.Set(level)
}

// Scope enters a nested level and returns the matching exit:
//
//	defer ih.Scope()()
func (ih *Indent) Scope() func() {
	ih.Enter()
	return func() { ih.Exit() }
}

// Clear returns to level 0 and forgets every remembered level.
func (ih *Indent) Clear() {
	clear(ih.names)
	ih.stack = ih.stack[:0]
	ih.scopes = ih.scopes[:0]
	ih.c.Clear()
}

// --- Text ---

// IndentText indents every line of text to the current level.
func (ih *Indent) IndentText(text string, skipFirstLine bool) string {
	return ih.Text(text, skipFirstLine).String()
}

// Text is IndentText evaluated lazily, for log fields.
func (ih *Indent) Text(text string, skipFirstLine bool) Text {
	return Text{
		Body:          text,
		Level:         ih.Level(),
		Size:          ih.spaces,
		Char:          ih.char,
		SkipFirstLine: skipFirstLine,
	}
}
