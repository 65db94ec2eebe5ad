package counter

import (
	"slices"
)

// Step is one operation of a Call.
type Step struct {
	Op    Op
	Value any
}

// priority orders the steps of a Call: set, mult, div, add, sub.
func (op Op) priority() int {
	switch op {
	case OpSet:
		return 0
	case OpMult:
		return 1
	case OpDiv:
		return 2
	case OpAdd:
		return 3
	case OpSub:
		return 4
	default:
		return 5
	}
}

// Call applies several operations in priority order (set, mult, div, add,
// sub; ties keep their given order). Without steps it is Add(nil). The result
// follows the configured ReturnMode.
//
// Steps are applied one by one; a failing step stops the call and leaves the
// earlier steps applied.
func (c *Counter) Call(steps ...Step) (Result, error) {
	if len(steps) == 0 {
		steps = []Step{{Op: OpAdd}}
	}

	ordered := slices.Clone(steps)
	slices.SortStableFunc(ordered, func(a, b Step) int {
		return a.Op.priority() - b.Op.priority()
	})

	target := c
	if c.ret == ReturnCopy {
		target = c.Copy()
	}
	for _, s := range ordered {
		if err := target.apply(s.Op, s.Value, false, false); err != nil {
			return Result{Value: c.value}, err
		}
	}
	return target.result(c.ret), nil
}
