package ssr_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"fxl/breakpoint"
	"fxl/css"
	"fxl/dom"
	"fxl/ssr"
)

const page = `<html><head/><body>
<div id="p" fxLayout="row" fxLayout.md="column"><div id="c" fxFlex="30" style="color: red"/></div>
<div id="n"/>
<div id="h" fxHide.xs=""/>
</body></html>`

func prop(t *testing.T, r css.Rule, name string) string {
	t.Helper()
	v, ok := r.GetProperty(name)
	require.True(t, ok, "%s: missing %s", r.Selector.Raw, name)
	return v.Raw
}

func TestGenerate(t *testing.T) {
	doc, err := dom.ParseString(page, nil)
	require.NoError(t, err)
	before := doc.FindByID("c").InlineStyle()

	g := ssr.New(breakpoint.MustNew(nil), ssr.Options{}, zaptest.NewLogger(t))
	res, err := g.Generate(doc)
	require.NoError(t, err)

	assert.True(t, doc.FindByID("p").HasClass("fxl-ssr-1"))
	assert.True(t, doc.FindByID("c").HasClass("fxl-ssr-2"))
	assert.True(t, doc.FindByID("h").HasClass("fxl-ssr-3"))
	assert.Empty(t, doc.FindByID("n").Classes())
	assert.Equal(t, []string{"fxl-ssr-1", "fxl-ssr-2", "fxl-ssr-3"}, res.ClassNames())
	assert.Equal(t, before, doc.FindByID("c").InlineStyle(), "source styles untouched")

	items := res.Sheet.Items
	require.Len(t, items, 5)
	for _, it := range items[:3] {
		require.NotNil(t, it.Rule)
	}

	p, c, h := *items[0].Rule, *items[1].Rule, *items[2].Rule
	assert.Equal(t, ".fxl-ssr-1", p.Selector.Raw)
	assert.Equal(t, "flex", prop(t, p, "display"))
	assert.Equal(t, "row", prop(t, p, "flex-direction"))
	assert.Equal(t, "row", prop(t, p, "-webkit-flex-direction"))

	assert.Equal(t, "1 1 100%", prop(t, c, "flex"))
	assert.Equal(t, "30%", prop(t, c, "max-width"))
	_, ok := c.GetProperty("color")
	assert.False(t, ok, "author styles are not repeated")

	assert.Equal(t, "initial", prop(t, h, "display"))

	// ascending priority: md (800) before xs (1000)
	md, xs := items[3].MediaBlock, items[4].MediaBlock
	require.NotNil(t, md)
	require.NotNil(t, xs)
	assert.Contains(t, md.Media, "min-width: 960px")
	assert.Contains(t, xs.Media, "max-width: 599.98px")
	assert.True(t, md.Valid)

	require.Len(t, md.Rules, 2)
	assert.Equal(t, ".fxl-ssr-1", md.Rules[0].Selector.Raw)
	assert.Equal(t, "column", prop(t, md.Rules[0], "flex-direction"))
	_, ok = md.Rules[0].GetProperty("display")
	assert.False(t, ok, "only differences from base")
	assert.Equal(t, "30%", prop(t, md.Rules[1], "max-height"))
	assert.Equal(t, "initial", prop(t, md.Rules[1], "max-width"))

	require.Len(t, xs.Rules, 1)
	assert.Equal(t, ".fxl-ssr-3", xs.Rules[0].Selector.Raw)
	assert.Equal(t, "none", prop(t, xs.Rules[0], "display"))
}

func TestGenerate_SelectedAliases(t *testing.T) {
	doc, err := dom.ParseString(page, nil)
	require.NoError(t, err)

	g := ssr.New(breakpoint.MustNew(nil), ssr.Options{Aliases: []string{"xs"}, ClassPrefix: "l"}, nil)
	res, err := g.Generate(doc)
	require.NoError(t, err)
	require.Len(t, res.Sheet.Items, 4)
	assert.NotNil(t, res.Sheet.Items[3].MediaBlock)
	assert.True(t, doc.FindByID("h").HasClass("l3"))

	_, err = ssr.New(breakpoint.MustNew(nil), ssr.Options{Aliases: []string{"xs", "nope", "bad"}}, nil).Generate(doc)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"nope"`)
	assert.Contains(t, err.Error(), `"bad"`)
}

func TestInject(t *testing.T) {
	doc, err := dom.ParseString(page, nil)
	require.NoError(t, err)

	_, err = ssr.New(breakpoint.MustNew(nil), ssr.Options{}, nil).Inject(doc)
	require.NoError(t, err)

	sheets := doc.Stylesheets()
	require.NotEmpty(t, sheets)
	out := doc.String()
	assert.True(t, strings.Contains(out, ".fxl-ssr-1 {"), out)
	assert.Contains(t, out, "@media screen and (min-width: 960px) and (max-width: 1279.98px)")
	assert.Contains(t, out, `class="fxl-ssr-2"`)
}
