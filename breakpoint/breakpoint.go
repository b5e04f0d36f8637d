// Package breakpoint defines named viewport ranges and the immutable registry
// the rest of the engine resolves aliases and media queries against.
package breakpoint

import (
	"math"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// BasePriority is the priority of the base ("all sizes") breakpoint. Nothing
// may be registered below it.
const BasePriority = math.MinInt32

// BaseQuery is the media query of the base breakpoint.
const BaseQuery = "all"

// BreakPoint is a named media query range.
type BreakPoint struct {
	Alias       string
	Suffix      string
	MediaQuery  string
	Priority    int
	Overlapping bool
}

// IsBase reports whether bp is the fallback breakpoint holding base values.
func (bp BreakPoint) IsBase() bool {
	return bp.Alias == ""
}

func (bp BreakPoint) String() string {
	if bp.IsBase() {
		return "<base>"
	}
	return bp.Alias
}

// SuffixOf converts alias to its PascalCase form: "gt-md" -> "GtMd".
func SuffixOf(alias string) string {
	// casers are stateful, do not share
	titler := cases.Title(language.Und)
	var sb strings.Builder
	for part := range strings.SplitSeq(alias, "-") {
		sb.WriteString(titler.String(part))
	}
	return sb.String()
}

// Base returns the base breakpoint.
func Base() BreakPoint {
	return BreakPoint{MediaQuery: BaseQuery, Priority: BasePriority, Overlapping: true}
}

// Required lists aliases every registry must define.
func Required() []string {
	return []string{"xs", "gt-xs", "sm", "gt-sm", "md", "gt-md", "lg", "gt-lg", "xl"}
}

// Defaults returns the built-in breakpoints.
func Defaults() []BreakPoint {
	return []BreakPoint{
		{Alias: "xs", MediaQuery: "screen and (min-width: 0px) and (max-width: 599.98px)", Priority: 1000},
		{Alias: "sm", MediaQuery: "screen and (min-width: 600px) and (max-width: 959.98px)", Priority: 900},
		{Alias: "md", MediaQuery: "screen and (min-width: 960px) and (max-width: 1279.98px)", Priority: 800},
		{Alias: "lg", MediaQuery: "screen and (min-width: 1280px) and (max-width: 1919.98px)", Priority: 700},
		{Alias: "xl", MediaQuery: "screen and (min-width: 1920px) and (max-width: 4999.98px)", Priority: 600},
		{Alias: "lt-sm", MediaQuery: "screen and (max-width: 599.98px)", Priority: 950, Overlapping: true},
		{Alias: "lt-md", MediaQuery: "screen and (max-width: 959.98px)", Priority: 850, Overlapping: true},
		{Alias: "lt-lg", MediaQuery: "screen and (max-width: 1279.98px)", Priority: 750, Overlapping: true},
		{Alias: "lt-xl", MediaQuery: "screen and (max-width: 1919.98px)", Priority: 650, Overlapping: true},
		{Alias: "gt-xs", MediaQuery: "screen and (min-width: 600px)", Priority: -950, Overlapping: true},
		{Alias: "gt-sm", MediaQuery: "screen and (min-width: 960px)", Priority: -850, Overlapping: true},
		{Alias: "gt-md", MediaQuery: "screen and (min-width: 1280px)", Priority: -750, Overlapping: true},
		{Alias: "gt-lg", MediaQuery: "screen and (min-width: 1920px)", Priority: -650, Overlapping: true},
	}
}

const (
	handsetPortrait  = "(orientation: portrait) and (max-width: 599.98px)"
	handsetLandscape = "(orientation: landscape) and (max-width: 959.98px)"
	tabletPortrait   = "(orientation: portrait) and (min-width: 600px) and (max-width: 839.98px)"
	tabletLandscape  = "(orientation: landscape) and (min-width: 960px) and (max-width: 1279.98px)"
	webPortrait      = "(orientation: portrait) and (min-width: 840px)"
	webLandscape     = "(orientation: landscape) and (min-width: 1280px)"
)

// Orientations returns device class breakpoints which may be added on top of
// the defaults.
func Orientations() []BreakPoint {
	return []BreakPoint{
		{Alias: "handset", MediaQuery: handsetPortrait + ", " + handsetLandscape, Priority: 2000},
		{Alias: "handset-landscape", MediaQuery: handsetLandscape, Priority: 2000},
		{Alias: "handset-portrait", MediaQuery: handsetPortrait, Priority: 2000},
		{Alias: "tablet", MediaQuery: tabletPortrait + ", " + tabletLandscape, Priority: 2100},
		{Alias: "tablet-landscape", MediaQuery: tabletLandscape, Priority: 2100},
		{Alias: "tablet-portrait", MediaQuery: tabletPortrait, Priority: 2100},
		{Alias: "web", MediaQuery: webPortrait + ", " + webLandscape, Priority: 2200, Overlapping: true},
		{Alias: "web-landscape", MediaQuery: webLandscape, Priority: 2200, Overlapping: true},
		{Alias: "web-portrait", MediaQuery: webPortrait, Priority: 2200, Overlapping: true},
	}
}
