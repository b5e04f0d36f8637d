package directive_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"fxl/breakpoint"
	"fxl/directive"
	"fxl/dom"
	"fxl/marshal"
	"fxl/matchmedia"
)

const page = `<html><body>
<div id="p" fxLayout="row" fxLayout.md="column" fxLayoutAlign="center">
  <div id="c" fxFlex="30" fxFlexOffset="10" fxFlexOrder.md="2"/>
  <div id="h" fxHide.gt-sm="" fxLayout="column" fxLayout.tv="row"/>
</div>
<section id="s"><p id="f" fxFlex=""/></section>
<div id="g" gdColumns="repeat(3, 1fr)" gdInline=""/>
<div id="r" dir="rtl" fxLayout="row"><span id="o" fxFlexOffset="5"/></div>
</body></html>`

type fixture struct {
	doc *dom.Document
	vp  *matchmedia.Viewport
	m   *marshal.Marshaller
	b   *directive.Binder
}

func newFixture(t *testing.T, width float64, opts directive.Options) *fixture {
	t.Helper()
	doc, err := dom.ParseString(page, nil)
	require.NoError(t, err)

	log := zaptest.NewLogger(t)
	vp := matchmedia.NewViewport(width, 800, "", log)
	m := marshal.New(breakpoint.MustNew(nil), matchmedia.NewObserver(vp, log), marshal.WithLogger(log))
	t.Cleanup(m.Close)
	b := directive.New(m, opts, log)
	return &fixture{doc: doc, vp: vp, m: m, b: b}
}

func (f *fixture) style(id, prop string) string {
	return f.b.Styler().Lookup(f.doc.FindByID(id), prop, true)
}

func TestBind_LayoutAndChildren(t *testing.T) {
	f := newFixture(t, 500, directive.Options{AddFlexToParent: true})
	n := f.b.Bind(f.doc)
	assert.Equal(t, 7, n)
	assert.Equal(t, 7, f.b.Bound())

	assert.Equal(t, "flex", f.style("p", "display"))
	assert.Equal(t, "row", f.style("p", "flex-direction"))
	assert.Equal(t, "row", f.style("p", "-webkit-flex-direction"))
	assert.Equal(t, "center", f.style("p", "justify-content"))
	assert.Equal(t, "100%", f.style("p", "max-height"))

	assert.Equal(t, "1 1 100%", f.style("c", "flex"))
	assert.Equal(t, "30%", f.style("c", "max-width"))
	assert.Equal(t, "10%", f.style("c", "margin-left"))
	assert.Empty(t, f.style("c", "order"))

	f.vp.Resize(1000, 800)
	assert.Equal(t, "column", f.style("p", "flex-direction"))
	assert.Equal(t, "100%", f.style("p", "max-width"), "alignment follows own layout")
	assert.Empty(t, f.style("p", "max-height"))

	assert.Equal(t, "30%", f.style("c", "max-height"), "flex follows parent layout")
	assert.Empty(t, f.style("c", "max-width"))
	assert.Equal(t, "10%", f.style("c", "margin-top"))
	assert.Empty(t, f.style("c", "margin-left"))
	assert.Equal(t, "2", f.style("c", "order"))

	f.vp.Resize(500, 800)
	assert.Equal(t, "row", f.style("p", "flex-direction"))
	assert.Equal(t, "30%", f.style("c", "max-width"))
	assert.Empty(t, f.style("c", "order"), "cleared when no value applies")
	assert.Empty(t, f.style("c", "-webkit-order"))
}

func TestBind_ShowHide(t *testing.T) {
	f := newFixture(t, 500, directive.Options{})
	f.b.Bind(f.doc)

	assert.Equal(t, "flex", f.style("h", "display"))
	assert.Equal(t, "column", f.style("h", "flex-direction"), "unknown alias is ignored")

	f.vp.Resize(1000, 800)
	assert.Equal(t, "none", f.style("h", "display"))

	f.vp.Resize(700, 800)
	assert.Equal(t, "flex", f.style("h", "display"), "shown again with layout display")
}

func TestBind_AddFlexToParent(t *testing.T) {
	f := newFixture(t, 500, directive.Options{AddFlexToParent: true})
	f.b.Bind(f.doc)
	assert.Equal(t, "flex", f.style("s", "display"))
	assert.Equal(t, "row", f.style("s", "flex-direction"))
	assert.Equal(t, "1 1 0%", f.style("f", "flex"))

	g := newFixture(t, 500, directive.Options{})
	g.b.Bind(g.doc)
	assert.Empty(t, g.style("s", "display"))
	assert.Equal(t, "1 1 0%", g.style("f", "flex"))
}

func TestBind_GridAndOffsetRTL(t *testing.T) {
	f := newFixture(t, 500, directive.Options{})
	f.b.Bind(f.doc)

	assert.Equal(t, "inline-grid", f.style("g", "display"))
	assert.Equal(t, "repeat(3, 1fr)", f.style("g", "grid-template-columns"))

	assert.Equal(t, "5%", f.style("o", "margin-right"))
	assert.Empty(t, f.style("o", "margin-left"))
}

func TestRelease(t *testing.T) {
	f := newFixture(t, 500, directive.Options{})
	f.b.Bind(f.doc)
	require.Equal(t, 0, f.b.Bind(f.doc), "second bind is a no-op")

	f.b.Release(f.doc.FindByID("p"))
	assert.Equal(t, 4, f.b.Bound())

	f.vp.Resize(1000, 800)
	assert.Equal(t, "row", f.style("p", "flex-direction"), "released element is not updated")
	assert.Equal(t, "30%", f.style("c", "max-width"))
	assert.Nil(t, f.b.Applied(f.doc.FindByID("c"), directive.KeyFlex))
}

func TestApplied(t *testing.T) {
	f := newFixture(t, 500, directive.Options{})
	f.b.Bind(f.doc)
	assert.Equal(t, []string{"margin-left: 10%"}, f.b.Applied(f.doc.FindByID("c"), directive.KeyFlexOffset))
}

func TestParseAttr(t *testing.T) {
	d, ok := directive.ParseAttr("fxLayout.gt-sm", " column ")
	require.True(t, ok)
	assert.Equal(t, directive.Declaration{Attr: "fxLayout.gt-sm", Key: directive.KeyLayout, Alias: "gt-sm", Value: "column"}, d)

	d, ok = directive.ParseAttr("fxHide", "")
	require.True(t, ok)
	assert.Equal(t, "false", d.Value)
	d, _ = directive.ParseAttr("fxShow.xs", "false")
	assert.Equal(t, "false", d.Value)
	d, _ = directive.ParseAttr("fxHide.xs", "false")
	assert.Equal(t, "true", d.Value)

	_, ok = directive.ParseAttr("fxUnknown", "1")
	assert.False(t, ok)
	assert.True(t, directive.IsDirective("fxUnknown"))
	assert.False(t, directive.IsDirective("class"))
}
