// Package registry keeps an ordered, keyed collection of counters that share
// default settings and can be reported on together.
//
// A Registry is not safe for concurrent use.
package registry

import (
	"iter"
	"slices"

	"github.com/shopspring/decimal"

	"advcounter/pkg/apperror"
	"advcounter/pkg/counter"
	"advcounter/pkg/increment"
	"advcounter/pkg/logger"
)

// AllKeys selects every counter in fan-out operations.
const AllKeys = "*"

// Options configures a Registry.
type Options struct {
	// Name is used as the default report header
	Name string

	// Defaults is the configuration of counters created without one.
	// Its increment strategy is cloned for every counter.
	Defaults counter.Config

	// Locked forbids creating counters on Get
	Locked bool

	Logger *logger.Logger
}

// DefaultOptions returns an unlocked registry of unbounded counters.
func DefaultOptions() *Options {
	return &Options{
		Defaults: counter.DefaultConfig(),
	}
}

// Spec describes one counter to register.
type Spec struct {
	// Key identifies the counter; it is slugified before use
	Key string

	// Name is shown in reports; defaults to Key
	Name string

	Description string

	// Counter is registered as is when set; the fields below are ignored
	Counter *counter.Counter

	// Initial, Min and Max override the registry defaults when set.
	// Without Initial the counter starts at its minimum.
	Initial decimal.NullDecimal
	Min     decimal.NullDecimal
	Max     decimal.NullDecimal

	// Increment overrides the default increment strategy
	Increment increment.Strategy

	// Rollover and PercentPlaces override the defaults when set
	Rollover      bool
	PercentPlaces int32

	// Overwrite replaces an existing counter with the same key
	Overwrite bool
}

// Entry is a registered counter.
type Entry struct {
	Key         string
	Name        string
	Description string
	Counter     *counter.Counter
}

// Registry is an ordered set of named counters.
type Registry struct {
	name     string
	defaults counter.Config
	locked   bool

	entries []*Entry
	byKey   map[string]*Entry
	byName  map[string]*Entry

	log *logger.Logger
}

// New creates a registry and registers specs in order. opts may be nil.
func New(opts *Options, specs ...Spec) (*Registry, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	r := &Registry{
		name:     opts.Name,
		defaults: opts.Defaults,
		byKey:    make(map[string]*Entry),
		byName:   make(map[string]*Entry),
		log:      logger.OrNop(opts.Logger).WithComponent("registry"),
	}
	for _, s := range specs {
		if _, err := r.Register(s); err != nil {
			return nil, err
		}
	}
	r.locked = opts.Locked
	return r, nil
}

// Name returns the registry name.
func (r *Registry) Name() string { return r.name }

// Locked reports whether Get refuses to create counters.
func (r *Registry) Locked() bool { return r.locked }

// SetLocked changes the locked flag.
func (r *Registry) SetLocked(locked bool) { r.locked = locked }

// Register adds a counter. A key already in use fails with DUPLICATE_ENTRY
// unless s.Overwrite is set. Display names are unique too: a name held by
// another counter fails with DUPLICATE_ENTRY even when overwriting.
func (r *Registry) Register(s Spec) (*counter.Counter, error) {
	key := Slug(s.Key)
	if key == "" {
		return nil, apperror.NewInvalidConfiguration("counter key must not be empty")
	}
	name := s.Name
	if name == "" {
		name = s.Key
	}

	old, exists := r.byKey[key]
	if exists && !s.Overwrite {
		return nil, apperror.NewDuplicate("counter", "key", key)
	}
	if owner, taken := r.byName[name]; taken && owner != old {
		return nil, apperror.NewDuplicate("counter", "name", name).
			WithDetail("key", owner.Key)
	}

	c := s.Counter
	if c == nil {
		var err error
		if c, err = counter.New(r.configFor(s)); err != nil {
			return nil, err
		}
	}

	e := &Entry{Key: key, Name: name, Description: s.Description, Counter: c}
	if exists {
		r.entries[slices.Index(r.entries, old)] = e
		r.dropName(old)
	} else {
		r.entries = append(r.entries, e)
	}
	r.byKey[key] = e
	r.byName[name] = e

	r.log.Debugw("counter registered", "key", key, "name", name, "overwrite", exists)
	return c, nil
}

func (r *Registry) configFor(s Spec) counter.Config {
	cfg := r.defaults
	if cfg.Increment != nil {
		cfg.Increment = cfg.Increment.Clone()
	}
	if s.Min.Valid {
		cfg.Min = s.Min
	}
	if s.Max.Valid {
		cfg.Max = s.Max
	}
	if s.Increment != nil {
		cfg.Increment = s.Increment
	}
	if s.Rollover {
		cfg.Rollover = true
	}
	if s.PercentPlaces > 0 {
		cfg.PercentPlaces = s.PercentPlaces
	}
	if s.Initial.Valid {
		cfg.Initial = s.Initial
	}
	return cfg
}

func (r *Registry) lookup(key string) (*Entry, bool) {
	if e, ok := r.byKey[key]; ok {
		return e, true
	}
	if e, ok := r.byName[key]; ok {
		return e, true
	}
	e, ok := r.byKey[Slug(key)]
	return e, ok
}

// Has reports whether key names a counter, by key, name or slug.
func (r *Registry) Has(key string) bool {
	_, ok := r.lookup(key)
	return ok
}

// Get returns the counter for key. Unknown keys create a counter from the
// defaults, or fail with NOT_FOUND when the registry is locked.
func (r *Registry) Get(key string) (*counter.Counter, error) {
	e, err := r.entry(key)
	if err != nil {
		return nil, err
	}
	return e.Counter, nil
}

// Entry returns the entry for key; see Get.
func (r *Registry) Entry(key string) (*Entry, error) {
	return r.entry(key)
}

func (r *Registry) entry(key string) (*Entry, error) {
	if e, ok := r.lookup(key); ok {
		return e, nil
	}
	if r.locked {
		return nil, apperror.NewNotFound("counter", key).
			WithDetail("keys", r.Keys())
	}
	if _, err := r.Register(Spec{Key: key}); err != nil {
		return nil, err
	}
	return r.byKey[Slug(key)], nil
}

// Remove deletes the named counters, or every counter when no key is given.
func (r *Registry) Remove(keys ...string) error {
	if len(keys) == 0 {
		keys = r.Keys()
	}
	for _, k := range keys {
		e, ok := r.lookup(k)
		if !ok {
			return apperror.NewNotFound("counter", k)
		}
		r.entries = slices.DeleteFunc(r.entries, func(x *Entry) bool { return x == e })
		delete(r.byKey, e.Key)
		r.dropName(e)
		r.log.Debugw("counter removed", "key", e.Key)
	}
	return nil
}

func (r *Registry) dropName(e *Entry) {
	if r.byName[e.Name] == e {
		delete(r.byName, e.Name)
	}
}

// Len returns the number of counters.
func (r *Registry) Len() int { return len(r.entries) }

// Keys returns the counter keys in registration order.
func (r *Registry) Keys() []string {
	keys := make([]string, len(r.entries))
	for i, e := range r.entries {
		keys[i] = e.Key
	}
	return keys
}

// Values returns the counter values in registration order.
func (r *Registry) Values() []decimal.Decimal {
	values := make([]decimal.Decimal, len(r.entries))
	for i, e := range r.entries {
		values[i] = e.Counter.Value()
	}
	return values
}

// All yields key and counter pairs in registration order.
func (r *Registry) All() iter.Seq2[string, *counter.Counter] {
	return func(yield func(string, *counter.Counter) bool) {
		for _, e := range r.entries {
			if !yield(e.Key, e.Counter) {
				return
			}
		}
	}
}

// --- Fan-out operations ---

// Apply runs op with x on every counter named in keys ("*" for all) and
// returns the resulting values by key. It stops at the first error.
func (r *Registry) Apply(op counter.Op, keys []string, x any) (map[string]decimal.Decimal, error) {
	entries, err := r.resolve(keys)
	if err != nil {
		return nil, err
	}
	out := make(map[string]decimal.Decimal, len(entries))
	for _, e := range entries {
		res, err := e.Counter.Do(op, x, counter.CallOptions{})
		if err != nil {
			if appErr, ok := apperror.AsAppError(err); ok {
				appErr.WithDetail("counter", e.Key)
			}
			return out, err
		}
		out[e.Key] = res.Value
	}
	return out, nil
}

func (r *Registry) resolve(keys []string) ([]*Entry, error) {
	if len(keys) == 1 && keys[0] == AllKeys {
		return slices.Clone(r.entries), nil
	}
	entries := make([]*Entry, 0, len(keys))
	for _, k := range keys {
		e, err := r.entry(k)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func (r *Registry) single(op counter.Op, key string, x any) (decimal.Decimal, error) {
	e, err := r.entry(key)
	if err != nil {
		return decimal.Zero, err
	}
	res, err := e.Counter.Do(op, x, counter.CallOptions{})
	return res.Value, err
}

// Add adds x to the counter for key.
func (r *Registry) Add(key string, x any) (decimal.Decimal, error) {
	return r.single(counter.OpAdd, key, x)
}

// Sub subtracts x from the counter for key.
func (r *Registry) Sub(key string, x any) (decimal.Decimal, error) {
	return r.single(counter.OpSub, key, x)
}

// Mult multiplies the counter for key by x.
func (r *Registry) Mult(key string, x any) (decimal.Decimal, error) {
	return r.single(counter.OpMult, key, x)
}

// Div divides the counter for key by x.
func (r *Registry) Div(key string, x any) (decimal.Decimal, error) {
	return r.single(counter.OpDiv, key, x)
}

// Set sets the counter for key to x.
func (r *Registry) Set(key string, x any) (decimal.Decimal, error) {
	return r.single(counter.OpSet, key, x)
}

// Clear resets the named counters ("*" or nothing for all).
func (r *Registry) Clear(keys ...string) error {
	if len(keys) == 0 {
		keys = []string{AllKeys}
	}
	entries, err := r.resolve(keys)
	if err != nil {
		return err
	}
	for _, e := range entries {
		e.Counter.Clear()
	}
	return nil
}

// SetBounds changes the bounds of the named counters ("*" for all).
func (r *Registry) SetBounds(keys []string, min, max decimal.NullDecimal) error {
	entries, err := r.resolve(keys)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if err := e.Counter.SetBounds(min, max); err != nil {
			return err
		}
	}
	return nil
}
