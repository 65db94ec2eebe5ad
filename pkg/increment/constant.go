package increment

import "fmt"

// ConstantOptions configures a Constant strategy.
type ConstantOptions struct {
	// SkipValidation defers the type check of the value to Resolve.
	SkipValidation bool
}

// Constant always resolves to the same value unless the caller passes one.
type Constant struct {
	e entry
}

// NewConstant creates a Constant strategy. opts may be nil.
func NewConstant(v any, opts *ConstantOptions) (*Constant, error) {
	if opts == nil {
		opts = &ConstantOptions{}
	}
	e, err := newEntry(v, opts.SkipValidation)
	if err != nil {
		return nil, err
	}
	return &Constant{e: e}, nil
}

// MustConstant is NewConstant for literals; it panics on invalid values.
func MustConstant(v any) *Constant {
	c, err := NewConstant(v, nil)
	if err != nil {
		panic(err)
	}
	return c
}

// Resolve returns x parsed as a Value, or the configured value when x is nil.
func (c *Constant) Resolve(x any) (Value, error) {
	if x != nil {
		return Parse(x)
	}
	return c.e.value()
}

// Clone implements Strategy. Constants have no runtime state.
func (c *Constant) Clone() Strategy {
	return c
}

func (c *Constant) String() string {
	return fmt.Sprintf("Constant(%v)", c.e.raw)
}
