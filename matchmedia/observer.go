package matchmedia

import (
	"fmt"
	"slices"

	"go.uber.org/zap"
)

// Observer keeps a reference counted table of platform listeners keyed by
// query text.
type Observer struct {
	platform Platform
	server   bool
	log      *zap.Logger
	entries  map[string]*entry
}

type entry struct {
	query   string
	list    QueryList
	matches bool
	subs    []*Subscription
	remove  func()
}

// Subscription is a single logical subscriber of a query.
type Subscription struct {
	o     *Observer
	e     *entry
	fn    func(Change)
	done  bool
	query string
}

// NewObserver creates observer on top of platform.
func NewObserver(platform Platform, log *zap.Logger) *Observer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Observer{
		platform: platform,
		server:   platform.IsServer(),
		log:      log.Named("match-media"),
		entries:  make(map[string]*entry),
	}
}

// IsServer reports whether observer runs on a frozen platform.
func (o *Observer) IsServer() bool {
	return o.server
}

// Observe subscribes fn to query. fn receives the current state before
// Observe returns and then every subsequent transition. Query text the
// platform rejects fails the subscription.
func (o *Observer) Observe(query string, fn func(Change)) (*Subscription, error) {
	e, ok := o.entries[query]
	if !ok {
		list, err := o.platform.MatchMedia(query)
		if err != nil {
			return nil, fmt.Errorf("unable to observe media query: %w", err)
		}
		e = &entry{query: query, list: list, matches: list.Matches()}
		if o.server {
			o.log.Debug("Server platform, listener is not registered", zap.String("query", query))
		} else {
			e.remove = list.AddListener(func(matches bool) {
				o.dispatch(e, matches)
			})
		}
		o.entries[query] = e
		o.log.Debug("Media query registered", zap.String("query", query), zap.Bool("matches", e.matches))
	}

	sub := &Subscription{o: o, e: e, fn: fn, query: query}
	e.subs = append(e.subs, sub)

	fn(Change{Matches: e.matches, MediaQuery: query})
	return sub, nil
}

func (o *Observer) dispatch(e *entry, matches bool) {
	if e.matches == matches {
		return
	}
	e.matches = matches
	o.log.Debug("Media query changed", zap.String("query", e.query), zap.Bool("matches", matches), zap.Int("subscribers", len(e.subs)))

	change := Change{Matches: matches, MediaQuery: e.query}
	for _, sub := range slices.Clone(e.subs) {
		if sub.done {
			continue
		}
		sub.fn(change)
	}
}

// IsActive returns current match state for query. Queries without
// subscribers are evaluated through the platform, invalid ones never match.
func (o *Observer) IsActive(query string) bool {
	if e, ok := o.entries[query]; ok {
		return e.matches
	}
	list, err := o.platform.MatchMedia(query)
	if err != nil {
		o.log.Debug("Unable to evaluate media query", zap.String("query", query), zap.Error(err))
		return false
	}
	return list.Matches()
}

// Refs returns the number of live subscriptions sharing query listener.
func (o *Observer) Refs(query string) int {
	if e, ok := o.entries[query]; ok {
		return len(e.subs)
	}
	return 0
}

// Queries returns registered query strings.
func (o *Observer) Queries() []string {
	out := make([]string, 0, len(o.entries))
	for q := range o.entries {
		out = append(out, q)
	}
	slices.Sort(out)
	return out
}

// Query returns the query text subscription was created for.
func (s *Subscription) Query() string {
	return s.query
}

// Unsubscribe detaches subscriber. Platform listener is released together
// with the last subscriber. Calling it again is a no-op.
func (s *Subscription) Unsubscribe() {
	if s == nil || s.done {
		return
	}
	s.done = true

	e := s.e
	if i := slices.Index(e.subs, s); i >= 0 {
		e.subs = slices.Delete(e.subs, i, i+1)
	}
	if len(e.subs) > 0 {
		return
	}
	if e.remove != nil {
		e.remove()
		e.remove = nil
	}
	if cur, ok := s.o.entries[e.query]; ok && cur == e {
		delete(s.o.entries, e.query)
	}
	s.o.log.Debug("Media query released", zap.String("query", e.query))
}
