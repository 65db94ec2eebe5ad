package registry

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/montanaflynn/stats"
	"github.com/shopspring/decimal"

	"advcounter/pkg/apperror"
)

// Justify aligns counter names in a report.
type Justify uint8

const (
	// JustifyRight pads names on the left to the longest name.
	JustifyRight Justify = iota
	// JustifyLeft pads names on the right to the longest name.
	JustifyLeft
	// JustifyNone leaves names as they are.
	JustifyNone
)

// AutoIndent indents lines by 4 spaces when a header or footer is printed.
const AutoIndent = -1

const (
	defaultBoundedLine = "{indent}{name} : {value} ({perc})"
	defaultLine        = "{indent}{name} : {value}"
	defaultDescLine    = "    {indent}{description}"
)

// ReportOptions configures Report.
//
// Header and footer may use {name}, {num_counters}, {sum}, {min}, {max},
// {mean}, {median}, {indent}, any Vars key and {<key>.<field>} for a single
// counter. Lines may use {indent}, {name}, {key}, {description}, {value},
// {min}, {max}, {perc}, {operations} and Vars keys.
type ReportOptions struct {
	// Header defaults to "{name}" when the registry has a name
	Header string
	Footer string

	Justify Justify

	// LineIndent is the width of {indent}; AutoIndent picks 4 with a
	// header or footer and 0 otherwise
	LineIndent int

	// Counters limits and orders the report; empty means all
	Counters []string

	// LineFormat overrides the per-counter line; the default includes the
	// percentage for counters with both bounds
	LineFormat string

	// DescFormat is printed under counters with a description; empty
	// disables description lines
	DescFormat string

	// Vars are extra placeholders
	Vars map[string]any
}

// DefaultReportOptions returns the options used by String.
func DefaultReportOptions() *ReportOptions {
	return &ReportOptions{
		Justify:    JustifyRight,
		LineIndent: AutoIndent,
		DescFormat: defaultDescLine,
	}
}

var placeholderRe = regexp.MustCompile(`\{([^{}]+)\}`)

// Report renders the counters as text, one line per counter. opts may be nil.
func (r *Registry) Report(opts *ReportOptions) (string, error) {
	lines, err := r.ReportLines(opts)
	if err != nil {
		return "", err
	}
	return strings.Join(lines, "\n"), nil
}

// ReportLines is Report without joining the lines.
func (r *Registry) ReportLines(opts *ReportOptions) ([]string, error) {
	if opts == nil {
		opts = DefaultReportOptions()
	}

	entries := r.entries
	if len(opts.Counters) > 0 {
		entries = make([]*Entry, 0, len(opts.Counters))
		for _, k := range opts.Counters {
			e, ok := r.lookup(k)
			if !ok {
				return nil, apperror.NewNotFound("counter", k)
			}
			entries = append(entries, e)
		}
	}

	header := opts.Header
	if header == "" && r.name != "" {
		header = "{name}"
	}

	lineIndent := opts.LineIndent
	if lineIndent < 0 {
		lineIndent = 0
		if header != "" || opts.Footer != "" {
			lineIndent = 4
		}
	}
	indent := strings.Repeat(" ", lineIndent)

	width := 0
	for _, e := range entries {
		width = max(width, utf8.RuneCountInString(e.Name))
	}

	scope := r.headerFields(entries, indent, opts.Vars)

	var out []string
	if header != "" {
		line, err := expand(header, scope.lookup)
		if err != nil {
			return nil, err
		}
		out = append(out, line)
	}

	for _, e := range entries {
		lf, err := lineFields(e, indent, pad(e.Name, width, opts.Justify), opts.Vars)
		if err != nil {
			return nil, err
		}

		format := opts.LineFormat
		if format == "" {
			format = defaultLine
			if e.Counter.HasBounds() {
				format = defaultBoundedLine
			}
		}
		line, err := expand(format, lf.lookup)
		if err != nil {
			return nil, err
		}
		out = append(out, line)

		if e.Description != "" && opts.DescFormat != "" {
			line, err := expand(opts.DescFormat, lf.lookup)
			if err != nil {
				return nil, err
			}
			out = append(out, line)
		}
	}

	if opts.Footer != "" {
		line, err := expand(opts.Footer, scope.lookup)
		if err != nil {
			return nil, err
		}
		out = append(out, line)
	}
	return out, nil
}

// String returns the default report.
func (r *Registry) String() string {
	s, err := r.Report(nil)
	if err != nil {
		return fmt.Sprintf("registry %q: %d counters", r.name, r.Len())
	}
	return s
}

// Dump describes every counter with its bounds, one per line.
func (r *Registry) Dump() string {
	lines := make([]string, len(r.entries))
	for i, e := range r.entries {
		lines[i] = e.Key + ": " + e.Counter.Describe()
	}
	return strings.Join(lines, "\n")
}

func pad(name string, width int, j Justify) string {
	gap := width - utf8.RuneCountInString(name)
	if gap <= 0 {
		return name
	}
	switch j {
	case JustifyRight:
		return strings.Repeat(" ", gap) + name
	case JustifyLeft:
		return name + strings.Repeat(" ", gap)
	default:
		return name
	}
}

type fields map[string]any

func (f fields) lookup(key string) (any, bool) {
	v, ok := f[key]
	return v, ok
}

// headerFields resolve header and footer placeholders, including
// {<key>.<field>} references to single counters.
type headerFields struct {
	fields
	registry *Registry
}

func (s headerFields) lookup(key string) (any, bool) {
	if v, ok := s.fields[key]; ok {
		return v, true
	}
	counterKey, field, ok := strings.Cut(key, ".")
	if !ok {
		return nil, false
	}
	e, found := s.registry.lookup(counterKey)
	if !found {
		return nil, false
	}
	f, err := lineFields(e, "", e.Name, nil)
	if err != nil {
		return nil, false
	}
	return f.lookup(field)
}

func (r *Registry) headerFields(entries []*Entry, indent string, vars map[string]any) headerFields {
	f := fields{
		"name":         r.name,
		"num_counters": len(entries),
		"indent":       indent,
	}

	data := make(stats.Float64Data, len(entries))
	for i, e := range entries {
		data[i] = e.Counter.Float64()
	}
	f["sum"] = aggregate(data.Sum)
	f["min"] = aggregate(data.Min)
	f["max"] = aggregate(data.Max)
	f["mean"] = aggregate(data.Mean)
	f["median"] = aggregate(data.Median)

	for k, v := range vars {
		f[k] = v
	}
	return headerFields{fields: f, registry: r}
}

// aggregate formats a stats result; empty input reports 0.
func aggregate(fn func() (float64, error)) string {
	v, err := fn()
	if err != nil {
		return "0"
	}
	return decimal.NewFromFloat(v).String()
}

func lineFields(e *Entry, indent, name string, vars map[string]any) (fields, error) {
	c := e.Counter
	f := fields{
		"indent":      indent,
		"name":        name,
		"key":         e.Key,
		"description": e.Description,
		"value":       c.Value().String(),
		"min":         nullString(c.Min()),
		"max":         nullString(c.Max()),
		"perc":        "",
		"operations":  c.Operations(),
	}
	if c.HasBounds() {
		p, err := c.PercentString()
		if err != nil {
			return nil, err
		}
		f["perc"] = p
	}
	for k, v := range vars {
		f[k] = v
	}
	return f, nil
}

func nullString(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}

// expand replaces {placeholder} markers using lookup. Unknown placeholders
// fail with INVALID_CONFIGURATION.
func expand(format string, lookup func(string) (any, bool)) (string, error) {
	var missing string
	out := placeholderRe.ReplaceAllStringFunc(format, func(m string) string {
		key := m[1 : len(m)-1]
		v, ok := lookup(key)
		if !ok {
			if missing == "" {
				missing = key
			}
			return m
		}
		return fmt.Sprint(v)
	})
	if missing != "" {
		return "", apperror.NewInvalidConfiguration("unknown report placeholder").
			WithDetail("placeholder", missing).
			WithDetail("format", format)
	}
	return out, nil
}
