package increment

import (
	"fmt"
	"sort"
	"strings"

	"advcounter/pkg/apperror"
)

// LookupOptions configures a Lookup strategy.
type LookupOptions struct {
	// Absent is used when Resolve is called without a key.
	// FallbackEcho is not allowed.
	Absent Fallback

	// Missing is used when the key is not in the table.
	Missing Fallback

	// SkipValidation defers the type check of the values to Resolve.
	SkipValidation bool
}

// DefaultLookupOptions returns standard options: no key resolves to 1 and
// unknown keys are echoed back.
func DefaultLookupOptions() *LookupOptions {
	return &LookupOptions{
		Absent:  FallbackTo(1),
		Missing: EchoKey(),
	}
}

type lookupConfig struct {
	values  map[string]entry
	absent  fallback
	missing fallback
}

// Lookup resolves values by key from a table.
// Keys that are not strings are looked up by their fmt text form.
type Lookup struct {
	cfg *lookupConfig
}

// NewLookup creates a Lookup over values. opts may be nil.
func NewLookup(values map[string]any, opts *LookupOptions) (*Lookup, error) {
	if opts == nil {
		opts = DefaultLookupOptions()
	}
	if opts.Absent.Kind == FallbackEcho {
		return nil, apperror.NewInvalidConfiguration("lookup increment cannot echo an absent key")
	}

	cfg := &lookupConfig{values: make(map[string]entry, len(values))}
	for k, raw := range values {
		e, err := newEntry(raw, opts.SkipValidation)
		if err != nil {
			if appErr, ok := apperror.AsAppError(err); ok {
				appErr.WithDetail("key", k)
			}
			return nil, err
		}
		cfg.values[k] = e
	}

	var err error
	if cfg.absent, err = newFallback(opts.Absent, opts.SkipValidation); err != nil {
		return nil, err
	}
	if cfg.missing, err = newFallback(opts.Missing, opts.SkipValidation); err != nil {
		return nil, err
	}
	return &Lookup{cfg: cfg}, nil
}

// Resolve returns the value mapped to key x.
func (l *Lookup) Resolve(x any) (Value, error) {
	if x == nil {
		if l.cfg.absent.kind == FallbackValue {
			return l.cfg.absent.e.value()
		}
		return Value{}, apperror.NewMissingKey(nil)
	}

	if e, ok := l.cfg.values[keyOf(x)]; ok {
		return e.value()
	}

	switch l.cfg.missing.kind {
	case FallbackValue:
		return l.cfg.missing.e.value()
	case FallbackEcho:
		return Parse(x)
	}
	return Value{}, apperror.NewMissingKey(x)
}

// Has reports whether key is in the table.
func (l *Lookup) Has(key any) bool {
	_, ok := l.cfg.values[keyOf(key)]
	return ok
}

func keyOf(x any) string {
	if s, ok := x.(string); ok {
		return s
	}
	return fmt.Sprint(x)
}

// Clone implements Strategy. Lookups have no runtime state.
func (l *Lookup) Clone() Strategy {
	return l
}

func (l *Lookup) String() string {
	keys := make([]string, 0, len(l.cfg.values))
	for k := range l.cfg.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = fmt.Sprintf("%s:%v", k, l.cfg.values[k].raw)
	}
	return fmt.Sprintf("Lookup(values={%s} absent=%s missing=%s)",
		strings.Join(pairs, " "), l.cfg.absent.kind, l.cfg.missing.kind)
}
