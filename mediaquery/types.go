// Package mediaquery parses CSS media query lists and evaluates them against a
// viewport environment.
//
// Supported subset: media types (all, screen, print), "not" and "only"
// modifiers, width/height/aspect-ratio features with min-/max- prefixes and
// level 4 range syntax, orientation, and px/em/rem lengths. Queries with
// features outside of this subset never match, which is what a browser does
// with unknown features.
package mediaquery

import (
	"errors"
	"strings"
)

// ErrSyntax is wrapped by every error returned from Parse.
var ErrSyntax = errors.New("media query syntax error")

// remPixels is the length of 1em/1rem in media queries, which always refers to
// the initial font size.
const remPixels = 16.0

// Op is the comparison applied by a Condition.
type Op int

const (
	OpBool Op = iota // (feature) - non zero
	OpEq             // feature: value
	OpGE             // min-feature: value, feature >= value
	OpLE             // max-feature: value, feature <= value
	OpGT             // feature > value
	OpLT             // feature < value
)

func (o Op) String() string {
	switch o {
	case OpEq:
		return "="
	case OpGE:
		return ">="
	case OpLE:
		return "<="
	case OpGT:
		return ">"
	case OpLT:
		return "<"
	default:
		return "?"
	}
}

// Condition is a single parenthesized media feature test.
type Condition struct {
	Feature string  // width, height, aspect-ratio, orientation, ...
	Op      Op      // comparison
	Value   float64 // pixels for lengths, ratio for aspect-ratio
	Keyword string  // portrait, landscape
}

// Query is one comma separated member of a media query list.
type Query struct {
	Raw        string
	Not        bool
	Only       bool
	Type       string // empty means "all"
	Conditions []Condition
}

// List is a parsed media query list, it matches when any of its queries
// matches.
type List struct {
	Raw     string
	Queries []Query
}

// Environment describes the rendering surface queries are evaluated against.
type Environment struct {
	Width     float64
	Height    float64
	MediaType string // screen when empty
}

func (e Environment) mediaType() string {
	if e.MediaType == "" {
		return "screen"
	}
	return strings.ToLower(e.MediaType)
}

// Matches reports whether any query of the list matches env. An empty list
// matches everything.
func (l List) Matches(env Environment) bool {
	if len(l.Queries) == 0 {
		return true
	}
	for _, q := range l.Queries {
		if q.Matches(env) {
			return true
		}
	}
	return false
}

// Matches evaluates a single query.
func (q Query) Matches(env Environment) bool {
	ok := q.typeMatches(env)
	if ok {
		for _, c := range q.Conditions {
			if !c.Matches(env) {
				ok = false
				break
			}
		}
	}
	if q.Not {
		return !ok
	}
	return ok
}

func (q Query) typeMatches(env Environment) bool {
	switch q.Type {
	case "", "all":
		return true
	case "screen", "print":
		return q.Type == env.mediaType()
	default:
		return false
	}
}

// Matches evaluates the condition, unknown features never match.
func (c Condition) Matches(env Environment) bool {
	var actual float64
	switch c.Feature {
	case "width":
		actual = env.Width
	case "height":
		actual = env.Height
	case "aspect-ratio":
		if env.Height == 0 {
			return false
		}
		actual = env.Width / env.Height
	case "orientation":
		orientation := "landscape"
		if env.Height >= env.Width {
			orientation = "portrait"
		}
		return c.Keyword == orientation
	default:
		return false
	}

	switch c.Op {
	case OpBool:
		return actual != 0
	case OpEq:
		return actual == c.Value
	case OpGE:
		return actual >= c.Value
	case OpLE:
		return actual <= c.Value
	case OpGT:
		return actual > c.Value
	case OpLT:
		return actual < c.Value
	}
	return false
}
