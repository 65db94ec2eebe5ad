package registry

import (
	"fmt"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"advcounter/pkg/apperror"
	"advcounter/pkg/counter"
	"advcounter/pkg/increment"
	"advcounter/pkg/logger"
)

// Config is the declarative form of a registry:
//
//	name: my counters
//	defaults:
//	  min: 0
//	  max: 50
//	  increment: 1
//	counters:
//	  - key: t1
//	  - key: t5
//	    name: test2
//	    description: this is a test
//	    initial: 5
//	    max: 10
//	    increment: [1, 2, 10]
//
// An increment is a number or percentage, a list (sequence), a mapping
// (lookup), or a mapping with a "sequence" or "lookup" key plus options.
type Config struct {
	Name     string          `yaml:"name"`
	Locked   *bool           `yaml:"locked"`
	Defaults CounterConfig   `yaml:"defaults"`
	Counters []CounterConfig `yaml:"counters"`
}

// CounterConfig configures one counter, or the registry defaults.
type CounterConfig struct {
	Key           string        `yaml:"key"`
	Name          string        `yaml:"name"`
	Description   string        `yaml:"description"`
	Initial       Number        `yaml:"initial"`
	Min           Number        `yaml:"min"`
	Max           Number        `yaml:"max"`
	Rollover      bool          `yaml:"rollover"`
	PercentPlaces int32         `yaml:"percent_places"`
	Increment     IncrementSpec `yaml:"increment"`
}

// Number is an optional decimal scalar.
type Number struct {
	decimal.NullDecimal
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (n *Number) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return nodeError(node, "expected a number")
	}
	if node.ShortTag() == "!!null" {
		n.NullDecimal = decimal.NullDecimal{}
		return nil
	}
	d, err := decimal.NewFromString(node.Value)
	if err != nil {
		return apperror.NewInvalidConfiguration("invalid number").
			WithDetail("value", node.Value).
			WithDetail("line", node.Line).
			WithCause(err)
	}
	n.NullDecimal = decimal.NewNullDecimal(d)
	return nil
}

// IncrementSpec is a parsed increment definition.
type IncrementSpec struct {
	strategy increment.Strategy
}

// Strategy returns the strategy, nil when the spec was omitted.
func (s IncrementSpec) Strategy() increment.Strategy {
	return s.strategy
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *IncrementSpec) UnmarshalYAML(node *yaml.Node) error {
	var err error
	switch node.Kind {
	case yaml.ScalarNode:
		if node.ShortTag() == "!!null" {
			s.strategy = nil
			return nil
		}
		var v any
		if v, err = scalarValue(node); err != nil {
			return err
		}
		s.strategy, err = increment.NewConstant(v, nil)
	case yaml.SequenceNode:
		s.strategy, err = sequenceFromNode(node, nil)
	case yaml.MappingNode:
		s.strategy, err = strategyFromMapping(node)
	default:
		return nodeError(node, "unsupported increment")
	}
	return err
}

func strategyFromMapping(node *yaml.Node) (increment.Strategy, error) {
	var probe map[string]yaml.Node
	if err := node.Decode(&probe); err != nil {
		return nil, err
	}

	if seq, ok := probe["sequence"]; ok {
		var raw struct {
			Repeat     bool      `yaml:"repeat"`
			OnIndex    string    `yaml:"on_index"`
			OutOfRange yaml.Node `yaml:"out_of_range"`
		}
		if err := node.Decode(&raw); err != nil {
			return nil, err
		}
		opts := increment.DefaultSequenceOptions()
		opts.Repeat = raw.Repeat
		policy, err := indexPolicy(raw.OnIndex)
		if err != nil {
			return nil, err
		}
		opts.OnIndex = policy
		if opts.OutOfRange, err = fallbackFromNode(&raw.OutOfRange, increment.NoFallback()); err != nil {
			return nil, err
		}
		return sequenceFromNode(&seq, opts)
	}

	if table, ok := probe["lookup"]; ok {
		var raw struct {
			Absent  yaml.Node `yaml:"absent"`
			Missing yaml.Node `yaml:"missing"`
		}
		if err := node.Decode(&raw); err != nil {
			return nil, err
		}
		opts := increment.DefaultLookupOptions()
		var err error
		if opts.Absent, err = fallbackFromNode(&raw.Absent, opts.Absent); err != nil {
			return nil, err
		}
		if opts.Missing, err = fallbackFromNode(&raw.Missing, opts.Missing); err != nil {
			return nil, err
		}
		return lookupFromNode(&table, opts)
	}

	return lookupFromNode(node, nil)
}

func sequenceFromNode(node *yaml.Node, opts *increment.SequenceOptions) (increment.Strategy, error) {
	if node.Kind != yaml.SequenceNode {
		return nil, nodeError(node, "sequence increment must be a list")
	}
	values := make([]any, len(node.Content))
	for i, item := range node.Content {
		v, err := scalarValue(item)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return increment.NewSequence(values, opts)
}

func lookupFromNode(node *yaml.Node, opts *increment.LookupOptions) (increment.Strategy, error) {
	if node.Kind != yaml.MappingNode {
		return nil, nodeError(node, "lookup increment must be a mapping")
	}
	values := make(map[string]any, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		v, err := scalarValue(node.Content[i+1])
		if err != nil {
			return nil, err
		}
		values[node.Content[i].Value] = v
	}
	return increment.NewLookup(values, opts)
}

// fallbackFromNode reads "fail", "echo" or a value; an absent node keeps def.
func fallbackFromNode(node *yaml.Node, def increment.Fallback) (increment.Fallback, error) {
	if node.Kind == 0 {
		return def, nil
	}
	if node.Kind == yaml.ScalarNode && node.ShortTag() == "!!str" {
		switch node.Value {
		case "fail":
			return increment.NoFallback(), nil
		case "echo":
			return increment.EchoKey(), nil
		}
	}
	v, err := scalarValue(node)
	if err != nil {
		return increment.Fallback{}, err
	}
	return increment.FallbackTo(v), nil
}

func indexPolicy(s string) (increment.IndexPolicy, error) {
	for _, p := range []increment.IndexPolicy{
		increment.IndexAdvance, increment.IndexReset, increment.IndexJump, increment.IndexHold,
	} {
		if s == p.String() {
			return p, nil
		}
	}
	if s == "" {
		return increment.IndexAdvance, nil
	}
	return 0, apperror.NewInvalidConfiguration("unknown index policy").WithDetail("on_index", s)
}

// scalarValue converts numbers to decimals and keeps strings for percentage
// parsing.
func scalarValue(node *yaml.Node) (any, error) {
	if node.Kind != yaml.ScalarNode {
		return nil, nodeError(node, "expected a scalar increment value")
	}
	switch node.ShortTag() {
	case "!!int", "!!float":
		d, err := decimal.NewFromString(node.Value)
		if err != nil {
			return nil, apperror.NewInvalidIncrementType(node.Value).WithCause(err)
		}
		return d, nil
	case "!!str":
		return node.Value, nil
	default:
		return nil, apperror.NewInvalidIncrementType(node.Value).
			WithDetail("line", node.Line)
	}
}

func nodeError(node *yaml.Node, msg string) error {
	return apperror.NewInvalidConfiguration(msg).
		WithDetail("line", node.Line).
		WithDetail("column", node.Column)
}

// ParseConfig decodes a YAML registry document.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		if _, ok := apperror.AsAppError(err); ok {
			return nil, err
		}
		return nil, apperror.NewInvalidConfiguration("invalid registry document").WithCause(err)
	}
	return &cfg, nil
}

// Build creates the registry. Without an explicit locked flag the registry
// is locked whenever counters are listed.
func (c *Config) Build(log *logger.Logger) (*Registry, error) {
	defaults := counter.DefaultConfig()
	defaults.Min = c.Defaults.Min.NullDecimal
	defaults.Max = c.Defaults.Max.NullDecimal
	defaults.Initial = c.Defaults.Initial.NullDecimal
	defaults.Rollover = c.Defaults.Rollover
	defaults.PercentPlaces = c.Defaults.PercentPlaces
	if s := c.Defaults.Increment.Strategy(); s != nil {
		defaults.Increment = s
	}
	defaults.Logger = log

	locked := len(c.Counters) > 0
	if c.Locked != nil {
		locked = *c.Locked
	}

	specs := make([]Spec, len(c.Counters))
	for i, cc := range c.Counters {
		if cc.Key == "" {
			return nil, apperror.NewInvalidConfiguration(fmt.Sprintf("counter %d has no key", i+1))
		}
		specs[i] = Spec{
			Key:           cc.Key,
			Name:          cc.Name,
			Description:   cc.Description,
			Initial:       cc.Initial.NullDecimal,
			Min:           cc.Min.NullDecimal,
			Max:           cc.Max.NullDecimal,
			Increment:     cc.Increment.Strategy(),
			Rollover:      cc.Rollover,
			PercentPlaces: cc.PercentPlaces,
		}
	}

	return New(&Options{
		Name:     c.Name,
		Defaults: defaults,
		Locked:   locked,
		Logger:   log,
	}, specs...)
}

// Load parses and builds a registry from a YAML document.
func Load(data []byte, log *logger.Logger) (*Registry, error) {
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, err
	}
	return cfg.Build(log)
}
