// Package matchmedia tracks live media query matches.
//
// A Platform plays the role of the browser's window.matchMedia. Two are
// provided: Viewport, a simulated screen which may be resized, and Server, a
// frozen set of active breakpoints for rendering without a viewport. Observer
// multiplexes any number of logical subscribers over one platform listener per
// distinct query string.
//
// Nothing in this package is safe for concurrent use, all calls are expected
// to come from a single event loop goroutine.
package matchmedia

// Change is delivered to subscribers on subscribe and on every transition.
type Change struct {
	Matches    bool
	MediaQuery string
}

// QueryList is the platform object for a single media query.
type QueryList interface {
	// Media returns the query text the list was created for.
	Media() string
	// Matches evaluates the query right now.
	Matches() bool
	// AddListener registers fn for match transitions and returns its remover.
	AddListener(fn func(matches bool)) (remove func())
}

// Platform creates query lists.
type Platform interface {
	// MatchMedia fails for query text the platform cannot parse.
	MatchMedia(query string) (QueryList, error)
	// IsServer reports that there is no live viewport. Match state never
	// changes and listeners must not be registered.
	IsServer() bool
}
