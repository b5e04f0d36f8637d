// Package marshal resolves, for every (element, key) pair, which of the values
// declared per breakpoint alias applies at the moment and notifies the key
// owner when that changes.
package marshal

import (
	"cmp"
	"slices"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"fxl/breakpoint"
	"fxl/dom"
	"fxl/matchmedia"
)

// DefaultMaxPasses bounds replays of resolution requested from inside update
// callbacks.
const DefaultMaxPasses = 10

type (
	// UpdateFunc receives newly resolved value of a key.
	UpdateFunc func(value string)
	// ClearFunc is called when a key which had applied value no longer
	// resolves to anything.
	ClearFunc func()
	// WatchFunc observes resolved value changes, empty value means cleared.
	WatchFunc func(value string)
)

// Marshaller owns per element value tables. It is not safe for concurrent
// use, all calls and all platform notifications must come from the same
// goroutine.
type Marshaller struct {
	reg       *breakpoint.Registry
	obs       *matchmedia.Observer
	log       *zap.Logger
	maxPasses int

	subs   []*matchmedia.Subscription
	subErr error

	seq    uint64
	active map[string]uint64 // alias -> activation sequence

	elements map[*dom.Element]*elementState
	order    []*dom.Element

	busy   map[keyRef]struct{}
	replay []replayItem
}

type elementState struct {
	el    *dom.Element
	keys  map[string]*keyState
	order []string
	setup bool
}

type keyState struct {
	values  map[string]string
	update  UpdateFunc
	clear   ClearFunc
	applied string
	has     bool
	watch   []*watcher
}

type watcher struct {
	fn WatchFunc
}

type keyRef struct {
	el  *dom.Element
	key string
}

type replayItem struct {
	ref   keyRef
	force bool
}

type options struct {
	log       *zap.Logger
	maxPasses int
}

// Option configures Marshaller.
type Option func(*options)

func WithLogger(log *zap.Logger) Option {
	return func(o *options) { o.log = log }
}

// WithMaxPasses changes re-entrant resolution limit.
func WithMaxPasses(n int) Option {
	return func(o *options) { o.maxPasses = n }
}

// New creates marshaller and subscribes to every registry breakpoint in
// registry order. Breakpoints whose query cannot be observed are logged and
// never become active, see SubscriptionErr.
func New(reg *breakpoint.Registry, obs *matchmedia.Observer, opts ...Option) *Marshaller {
	o := options{maxPasses: DefaultMaxPasses}
	for _, set := range opts {
		set(&o)
	}
	if o.log == nil {
		o.log = zap.NewNop()
	}
	if o.maxPasses < 1 {
		o.maxPasses = 1
	}

	m := &Marshaller{
		reg:       reg,
		obs:       obs,
		log:       o.log.Named("marshaller"),
		maxPasses: o.maxPasses,
		active:    make(map[string]uint64),
		elements:  make(map[*dom.Element]*elementState),
		busy:      make(map[keyRef]struct{}),
	}

	for _, bp := range reg.Items() {
		sub, err := obs.Observe(bp.MediaQuery, func(c matchmedia.Change) {
			m.onChange(bp, c.Matches)
		})
		if err != nil {
			m.log.Warn("Unable to observe breakpoint", zap.String("alias", bp.Alias), zap.String("query", bp.MediaQuery), zap.Error(err))
			m.subErr = multierr.Append(m.subErr, err)
			continue
		}
		m.subs = append(m.subs, sub)
	}
	return m
}

// SubscriptionErr returns accumulated breakpoint subscription failures.
func (m *Marshaller) SubscriptionErr() error {
	return m.subErr
}

// Registry returns breakpoints marshaller works with.
func (m *Marshaller) Registry() *breakpoint.Registry {
	return m.reg
}

// IsServer reports whether active breakpoints are frozen.
func (m *Marshaller) IsServer() bool {
	return m.obs.IsServer()
}

// Close releases all breakpoint subscriptions. Values stay in place but will
// not be re-resolved anymore.
func (m *Marshaller) Close() {
	for _, s := range m.subs {
		s.Unsubscribe()
	}
	m.subs = nil
}

// IsActive reports whether breakpoint with alias is currently active.
func (m *Marshaller) IsActive(alias string) bool {
	_, ok := m.active[alias]
	return ok
}

// ActiveBreakpoints returns active breakpoints, the one winning resolution
// first: priority descending, equal priorities most recently activated
// first.
func (m *Marshaller) ActiveBreakpoints() []breakpoint.BreakPoint {
	out := make([]breakpoint.BreakPoint, 0, len(m.active))
	for alias := range m.active {
		if bp, ok := m.reg.FindByAlias(alias); ok {
			out = append(out, bp)
		}
	}
	slices.SortFunc(out, func(a, b breakpoint.BreakPoint) int {
		if c := cmp.Compare(b.Priority, a.Priority); c != 0 {
			return c
		}
		return cmp.Compare(m.active[b.Alias], m.active[a.Alias])
	})
	return out
}

func (m *Marshaller) onChange(bp breakpoint.BreakPoint, matches bool) {
	_, was := m.active[bp.Alias]
	if was == matches {
		return
	}
	if matches {
		m.seq++
		m.active[bp.Alias] = m.seq
	} else {
		delete(m.active, bp.Alias)
	}
	m.log.Debug("Breakpoint changed", zap.String("alias", bp.Alias), zap.Bool("active", matches))

	for _, el := range slices.Clone(m.order) {
		es, ok := m.elements[el]
		if !ok || es.setup {
			continue
		}
		for _, key := range slices.Clone(es.order) {
			ks, ok := es.keys[key]
			if !ok {
				continue
			}
			_, own := ks.values[bp.Alias]
			_, base := ks.values[""]
			if own || base {
				m.resolve(keyRef{el: el, key: key}, false)
			}
		}
	}
}

func (m *Marshaller) element(el *dom.Element) *elementState {
	es, ok := m.elements[el]
	if !ok {
		es = &elementState{el: el, keys: make(map[string]*keyState)}
		m.elements[el] = es
		m.order = append(m.order, el)
	}
	return es
}

func (es *elementState) key(key string) *keyState {
	ks, ok := es.keys[key]
	if !ok {
		ks = &keyState{values: make(map[string]string)}
		es.keys[key] = ks
		es.order = append(es.order, key)
	}
	return ks
}

func (m *Marshaller) lookup(el *dom.Element, key string) (*keyState, bool) {
	es, ok := m.elements[el]
	if !ok {
		return nil, false
	}
	ks, ok := es.keys[key]
	return ks, ok
}

// Init registers update and clear callbacks of a key. Values already present
// are resolved right away unless element is in setup.
func (m *Marshaller) Init(el *dom.Element, key string, update UpdateFunc, clear ClearFunc) {
	es := m.element(el)
	ks := es.key(key)
	ks.update, ks.clear = update, clear
	if !es.setup && len(ks.values) > 0 {
		m.resolve(keyRef{el: el, key: key}, false)
	}
}

// SetValue stores raw value of key for breakpoint alias, empty alias is the
// base value. Key entry is created on first use.
func (m *Marshaller) SetValue(el *dom.Element, key, alias, value string) {
	es := m.element(el)
	m.store(es, key, alias, value)
	if !es.setup {
		m.resolve(keyRef{el: el, key: key}, false)
	}
}

func (m *Marshaller) store(es *elementState, key, alias, value string) {
	if _, ok := m.reg.FindByAlias(alias); !ok {
		m.log.Debug("Value for unknown breakpoint is never active", zap.String("alias", alias), zap.String("key", key), zap.String("element", es.el.Path()))
	}
	es.key(key).values[alias] = value
}

// Value returns raw value declared for alias.
func (m *Marshaller) Value(el *dom.Element, key, alias string) (string, bool) {
	ks, ok := m.lookup(el, key)
	if !ok {
		return "", false
	}
	v, ok := ks.values[alias]
	return v, ok
}

// HasValue reports whether key has value for any alias.
func (m *Marshaller) HasValue(el *dom.Element, key string) bool {
	ks, ok := m.lookup(el, key)
	return ok && len(ks.values) > 0
}

// Resolved returns value key resolves to with the current set of active
// breakpoints, independent of what was applied last.
func (m *Marshaller) Resolved(el *dom.Element, key string) (string, bool) {
	ks, ok := m.lookup(el, key)
	if !ok {
		return "", false
	}
	return m.winner(ks)
}

// Keys returns keys registered for element in registration order.
func (m *Marshaller) Keys(el *dom.Element) []string {
	es, ok := m.elements[el]
	if !ok {
		return nil
	}
	return slices.Clone(es.order)
}

// winner implements precedence: the highest priority active alias holding a
// value, most recently activated on ties, otherwise the base value.
func (m *Marshaller) winner(ks *keyState) (string, bool) {
	var (
		best    breakpoint.BreakPoint
		bestSeq uint64
		found   bool
		value   string
	)
	for alias, v := range ks.values {
		if alias == "" {
			continue
		}
		seq, ok := m.active[alias]
		if !ok {
			continue
		}
		bp, ok := m.reg.FindByAlias(alias)
		if !ok {
			continue
		}
		if !found || bp.Priority > best.Priority || (bp.Priority == best.Priority && seq > bestSeq) {
			best, bestSeq, found, value = bp, seq, true, v
		}
	}
	if found {
		return value, true
	}
	v, ok := ks.values[""]
	return v, ok
}

// Watch registers fn to be called after every change of key's applied value.
// Returned function cancels the watch.
func (m *Marshaller) Watch(el *dom.Element, key string, fn WatchFunc) func() {
	ks := m.element(el).key(key)
	w := &watcher{fn: fn}
	ks.watch = append(ks.watch, w)
	return func() {
		if i := slices.Index(ks.watch, w); i >= 0 {
			ks.watch = slices.Delete(ks.watch, i, i+1)
		}
	}
}

// Trigger re-applies current values of keys (all element keys when none
// given) even if they did not change.
func (m *Marshaller) Trigger(el *dom.Element, keys ...string) {
	es, ok := m.elements[el]
	if !ok || es.setup {
		return
	}
	if len(keys) == 0 {
		keys = slices.Clone(es.order)
	}
	for _, key := range keys {
		if _, ok := es.keys[key]; ok {
			m.resolve(keyRef{el: el, key: key}, true)
		}
	}
}

// ReleaseElement forgets everything registered for el. No callbacks are
// invoked.
func (m *Marshaller) ReleaseElement(el *dom.Element) {
	if _, ok := m.elements[el]; !ok {
		return
	}
	delete(m.elements, el)
	if i := slices.Index(m.order, el); i >= 0 {
		m.order = slices.Delete(m.order, i, i+1)
	}
	m.log.Debug("Element released", zap.String("element", el.Path()))
}

// Elements returns the number of tracked elements.
func (m *Marshaller) Elements() int {
	return len(m.elements)
}

// resolve applies key's winning value. Requests for a key which is being
// resolved already are replayed after the outermost resolution finishes.
func (m *Marshaller) resolve(ref keyRef, force bool) {
	if _, busy := m.busy[ref]; busy {
		m.replay = append(m.replay, replayItem{ref: ref, force: force})
		return
	}

	m.busy[ref] = struct{}{}
	m.apply(ref, force)
	delete(m.busy, ref)
	if len(m.busy) > 0 {
		return
	}

	for pass := 0; len(m.replay) > 0; pass++ {
		if pass >= m.maxPasses {
			m.log.Warn("Resolution did not converge, dropping requests", zap.Int("passes", pass), zap.Int("pending", len(m.replay)))
			m.replay = nil
			break
		}
		items := m.replay
		m.replay = nil
		for _, it := range items {
			m.busy[it.ref] = struct{}{}
			m.apply(it.ref, it.force)
			delete(m.busy, it.ref)
		}
	}
}

func (m *Marshaller) apply(ref keyRef, force bool) {
	ks, ok := m.lookup(ref.el, ref.key)
	if !ok {
		return
	}

	value, ok := m.winner(ks)
	switch {
	case ok:
		if ks.has && ks.applied == value && !force {
			return
		}
		ks.applied, ks.has = value, true
		m.log.Debug("Value resolved", zap.String("key", ref.key), zap.String("value", value), zap.String("element", ref.el.Path()))
		if ks.update != nil {
			ks.update(value)
		}
	case ks.has:
		ks.applied, ks.has = "", false
		m.log.Debug("Value cleared", zap.String("key", ref.key), zap.String("element", ref.el.Path()))
		if ks.clear != nil {
			ks.clear()
		}
	default:
		return
	}

	for _, w := range slices.Clone(ks.watch) {
		if slices.Contains(ks.watch, w) {
			w.fn(ks.applied)
		}
	}
}
