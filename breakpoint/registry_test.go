package breakpoint_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"go.uber.org/zap/zaptest"

	"fxl/breakpoint"
)

func TestNew_Defaults(t *testing.T) {
	r, err := breakpoint.New(nil, breakpoint.WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)

	assert.Equal(t, len(breakpoint.Defaults())+1, r.Len())

	items := r.Items()
	require.NotEmpty(t, items)
	assert.True(t, items[0].IsBase(), "base breakpoint must come first")
	for i := 1; i < len(items); i++ {
		assert.LessOrEqual(t, items[i-1].Priority, items[i].Priority, "items must be sorted by priority")
	}

	md, ok := r.FindByAlias("md")
	require.True(t, ok)
	assert.Equal(t, "Md", md.Suffix)
	assert.Equal(t, 800, md.Priority)

	gt, ok := r.FindByQuery("screen and (min-width: 1280px)")
	require.True(t, ok)
	assert.Equal(t, "gt-md", gt.Alias)
	assert.Equal(t, "GtMd", gt.Suffix)

	_, ok = r.FindByAlias("tv")
	assert.False(t, ok)
}

func TestNew_MergeCustom(t *testing.T) {
	custom := []breakpoint.BreakPoint{
		{Alias: "md", MediaQuery: "screen and (min-width: 1000px) and (max-width: 1299.98px)", Priority: 810},
		{Alias: "tv", MediaQuery: "screen and (min-width: 5000px)", Priority: 500},
		{Alias: "tv", MediaQuery: "screen and (min-width: 6000px)", Priority: 550},
		{Alias: "sm", Priority: 905},
	}
	r, err := breakpoint.New(custom)
	require.NoError(t, err)

	md, _ := r.FindByAlias("md")
	assert.Equal(t, 810, md.Priority)
	assert.Equal(t, "screen and (min-width: 1000px) and (max-width: 1299.98px)", md.MediaQuery)

	tv, ok := r.FindByAlias("tv")
	require.True(t, ok)
	assert.Equal(t, "screen and (min-width: 6000px)", tv.MediaQuery, "last duplicate wins")
	assert.Equal(t, "Tv", tv.Suffix)

	sm, _ := r.FindByAlias("sm")
	assert.Equal(t, "screen and (min-width: 600px) and (max-width: 959.98px)", sm.MediaQuery, "empty query inherits default")

	seen := map[string]bool{}
	for _, bp := range r.Items() {
		assert.False(t, seen[bp.Alias], "duplicate alias %q", bp.Alias)
		seen[bp.Alias] = true
	}
	for _, alias := range breakpoint.Required() {
		assert.True(t, seen[alias], "required alias %q lost in merge", alias)
	}
}

func TestNew_MissingRequired(t *testing.T) {
	custom := []breakpoint.BreakPoint{
		{Alias: "xs", MediaQuery: "screen and (max-width: 599.98px)", Priority: 1000},
		{Alias: "sm", MediaQuery: "screen and (min-width: 600px)", Priority: 900},
	}
	_, err := breakpoint.New(custom, breakpoint.WithoutDefaults())
	require.Error(t, err)
	assert.True(t, errors.Is(err, breakpoint.ErrMissingBreakpoint))
	// gt-xs, gt-sm, md, gt-md, lg, gt-lg, xl
	assert.Len(t, multierr.Errors(errors.Unwrap(err)), 7)
}

func TestNew_InvalidBase(t *testing.T) {
	_, err := breakpoint.New([]breakpoint.BreakPoint{{Alias: "", MediaQuery: "all", Priority: 10}})
	require.Error(t, err)
	assert.ErrorIs(t, err, breakpoint.ErrInvalidBreakpoint)
}

func TestNew_Orientations(t *testing.T) {
	r, err := breakpoint.New(nil, breakpoint.WithOrientations())
	require.NoError(t, err)

	hp, ok := r.FindByAlias("handset-portrait")
	require.True(t, ok)
	assert.Equal(t, "HandsetPortrait", hp.Suffix)

	bp, ok := r.FindBySuffix("TabletLandscape")
	require.True(t, ok)
	assert.Equal(t, "tablet-landscape", bp.Alias)
}

func TestSuffixOf(t *testing.T) {
	assert.Equal(t, "", breakpoint.SuffixOf(""))
	assert.Equal(t, "Xs", breakpoint.SuffixOf("xs"))
	assert.Equal(t, "LtXl", breakpoint.SuffixOf("lt-xl"))
}
