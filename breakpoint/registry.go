package breakpoint

import (
	"errors"
	"fmt"
	"slices"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var (
	// ErrMissingBreakpoint is reported for every required alias absent after merge.
	ErrMissingBreakpoint = errors.New("required breakpoint is missing")
	// ErrInvalidBreakpoint is reported for definitions which cannot be used.
	ErrInvalidBreakpoint = errors.New("invalid breakpoint")
)

// Registry is an immutable, priority ordered catalogue of breakpoints. It is
// safe to share between goroutines.
type Registry struct {
	items   []BreakPoint
	byAlias map[string]int
	byQuery map[string]int
}

type options struct {
	noDefaults   bool
	orientations bool
	log          *zap.Logger
}

// Option changes how New builds the registry.
type Option func(*options)

// WithoutDefaults starts merge from an empty list instead of Defaults.
func WithoutDefaults() Option {
	return func(o *options) { o.noDefaults = true }
}

// WithOrientations adds Orientations to the defaults.
func WithOrientations() Option {
	return func(o *options) { o.orientations = true }
}

func WithLogger(log *zap.Logger) Option {
	return func(o *options) { o.log = log }
}

// New merges custom breakpoints over the defaults and validates the result.
// Custom entries replace defaults with the same alias (an empty MediaQuery
// keeps the replaced one), unknown aliases are appended and the last of
// duplicated custom aliases wins.
func New(custom []BreakPoint, opts ...Option) (*Registry, error) {
	o := options{}
	for _, set := range opts {
		set(&o)
	}
	if o.log == nil {
		o.log = zap.NewNop()
	}
	log := o.log.Named("breakpoints")

	var merged []BreakPoint
	if !o.noDefaults {
		merged = append(merged, Defaults()...)
	}
	if o.orientations {
		merged = append(merged, Orientations()...)
	}
	merged = append(merged, Base())

	merged = Merge(merged, custom)
	for i := range merged {
		if merged[i].Suffix == "" {
			merged[i].Suffix = SuffixOf(merged[i].Alias)
		}
	}

	if err := validate(merged); err != nil {
		return nil, fmt.Errorf("unable to prepare breakpoints: %w", err)
	}

	slices.SortStableFunc(merged, func(a, b BreakPoint) int {
		switch {
		case a.Priority < b.Priority:
			return -1
		case a.Priority > b.Priority:
			return 1
		}
		return 0
	})

	r := &Registry{
		items:   merged,
		byAlias: make(map[string]int, len(merged)),
		byQuery: make(map[string]int, len(merged)),
	}
	for i, bp := range merged {
		r.byAlias[bp.Alias] = i
		if _, ok := r.byQuery[bp.MediaQuery]; !ok {
			r.byQuery[bp.MediaQuery] = i
		}
	}

	log.Debug("Breakpoints registered", zap.Int("count", len(merged)), zap.Int("custom", len(custom)))
	return r, nil
}

// MustNew is New for tests and built-in configurations, it panics on error.
func MustNew(custom []BreakPoint, opts ...Option) *Registry {
	r, err := New(custom, opts...)
	if err != nil {
		panic(err)
	}
	return r
}

// Merge overlays custom on top of base de-duplicating by alias. Order of
// first appearance is preserved.
func Merge(base, custom []BreakPoint) []BreakPoint {
	out := slices.Clone(base)
	index := make(map[string]int, len(out)+len(custom))
	for i, bp := range out {
		index[bp.Alias] = i
	}
	for _, bp := range custom {
		if i, ok := index[bp.Alias]; ok {
			if bp.MediaQuery == "" {
				bp.MediaQuery = out[i].MediaQuery
			}
			out[i] = bp
			continue
		}
		index[bp.Alias] = len(out)
		out = append(out, bp)
	}
	return out
}

func validate(items []BreakPoint) (err error) {
	present := make(map[string]bool, len(items))
	for _, bp := range items {
		present[bp.Alias] = true
	}
	for _, alias := range Required() {
		if !present[alias] {
			err = multierr.Append(err, fmt.Errorf("%w: %q", ErrMissingBreakpoint, alias))
		}
	}

	for _, bp := range items {
		if bp.IsBase() {
			if bp.Priority != BasePriority {
				err = multierr.Append(err, fmt.Errorf("%w: base breakpoint priority cannot be changed", ErrInvalidBreakpoint))
			}
			continue
		}
		if bp.MediaQuery == "" {
			err = multierr.Append(err, fmt.Errorf("%w: %q has no media query", ErrInvalidBreakpoint, bp.Alias))
		}
		if bp.Priority <= BasePriority {
			err = multierr.Append(err, fmt.Errorf("%w: %q priority must be above base", ErrInvalidBreakpoint, bp.Alias))
		}
	}
	return err
}

// Items returns all breakpoints ordered by ascending priority.
func (r *Registry) Items() []BreakPoint {
	return slices.Clone(r.items)
}

// Overlapping returns breakpoints flagged as overlapping, base excluded.
func (r *Registry) Overlapping() []BreakPoint {
	var out []BreakPoint
	for _, bp := range r.items {
		if bp.Overlapping && !bp.IsBase() {
			out = append(out, bp)
		}
	}
	return out
}

// Aliases returns aliases in registry order, base excluded.
func (r *Registry) Aliases() []string {
	out := make([]string, 0, len(r.items))
	for _, bp := range r.items {
		if !bp.IsBase() {
			out = append(out, bp.Alias)
		}
	}
	return out
}

func (r *Registry) Len() int {
	return len(r.items)
}

func (r *Registry) FindByAlias(alias string) (BreakPoint, bool) {
	if i, ok := r.byAlias[alias]; ok {
		return r.items[i], true
	}
	return BreakPoint{}, false
}

// FindByQuery returns the lowest priority breakpoint registered for query.
func (r *Registry) FindByQuery(query string) (BreakPoint, bool) {
	if i, ok := r.byQuery[query]; ok {
		return r.items[i], true
	}
	return BreakPoint{}, false
}

// FindBySuffix resolves "GtMd" back to its breakpoint.
func (r *Registry) FindBySuffix(suffix string) (BreakPoint, bool) {
	for _, bp := range r.items {
		if bp.Suffix == suffix {
			return bp, true
		}
	}
	return BreakPoint{}, false
}
