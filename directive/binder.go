package directive

import (
	"maps"
	"slices"
	"strings"

	"go.uber.org/zap"

	"fxl/builder"
	"fxl/dom"
	"fxl/marshal"
	"fxl/style"
)

// Options mirror layout configuration.
type Options struct {
	// AddFlexToParent makes flex items turn parent without explicit
	// flex-direction into a row flex container.
	AddFlexToParent bool
	// DetectLayoutDisplay makes layout keep pre-existing display other than
	// block, inline or flex.
	DetectLayoutDisplay bool
	// ColumnBasisAuto uses "auto" basis for empty fxFlex in columns.
	ColumnBasisAuto bool
	// RTL forces right-to-left offsets regardless of dir attributes.
	RTL bool
}

// Binder connects document elements with marshaller.
type Binder struct {
	m      *marshal.Marshaller
	styler *style.Styler
	opts   Options
	log    *zap.Logger

	layouts *builder.Caches
	aligns  *builder.Caches
	flexes  *builder.Caches
	offsets *builder.Caches
	shows   *builder.Caches
	grids   *builder.Caches
	orders  *builder.Cache
	fills   *builder.Cache

	bound map[*dom.Element]*binding
}

type binding struct {
	el         *dom.Element
	directives map[string]*directive
	cancels    []func()
	display    string // display before any directive touched element
}

// directive keeps styles it applied last so they can be cleared.
type directive struct {
	b   *Binder
	bd  *binding
	key string
	mru builder.StyleMap
	// build computes styles for resolved value
	build func(value string) builder.StyleMap
}

// New creates binder over marshaller.
func New(m *marshal.Marshaller, opts Options, log *zap.Logger) *Binder {
	if log == nil {
		log = zap.NewNop()
	}
	return &Binder{
		m:       m,
		styler:  style.New(m.IsServer(), log),
		opts:    opts,
		log:     log.Named("binder"),
		layouts: builder.NewCaches(KeyLayout),
		aligns:  builder.NewCaches(KeyLayoutAlign),
		flexes:  builder.NewCaches(KeyFlex),
		offsets: builder.NewCaches(KeyFlexOffset),
		shows:   builder.NewCaches(KeyShowHide),
		grids:   builder.NewCaches(KeyGridColumns),
		orders:  builder.NewCache(KeyFlexOrder),
		fills:   builder.NewCache(KeyFlexFill),
		bound:   make(map[*dom.Element]*binding),
	}
}

// Styler returns style utility used by binder.
func (b *Binder) Styler() *style.Styler {
	return b.styler
}

// Bound returns number of elements carrying directives.
func (b *Binder) Bound() int {
	return len(b.bound)
}

// Bind walks document in order and registers directive attributes of every
// element. Each element is registered in two phases: all its keys first,
// then a single resolution. Parents are always committed before children.
func (b *Binder) Bind(doc *dom.Document) int {
	count := 0
	doc.Walk(func(el *dom.Element) bool {
		if b.BindElement(el) {
			count++
		}
		return true
	})
	b.log.Debug("Document bound", zap.Int("elements", count))
	return count
}

// BindElement registers directives of a single element, returns false when
// element has none or is bound already.
func (b *Binder) BindElement(el *dom.Element) bool {
	if _, ok := b.bound[el]; ok {
		return false
	}

	decls := b.declarations(el)
	if len(decls) == 0 {
		return false
	}

	bd := &binding{
		el:         el,
		directives: make(map[string]*directive),
		display:    b.styler.Lookup(el, "display", false),
	}
	if bd.display == "none" {
		bd.display = ""
	}
	b.bound[el] = bd

	s := b.m.Setup(el)
	for _, key := range keyOrder {
		values, ok := decls[key]
		if !ok {
			continue
		}
		d := b.newDirective(bd, key)
		bd.directives[key] = d
		s.Init(key, d.update, d.clear)
		base := false
		for _, decl := range values {
			s.SetValue(key, decl.Alias, decl.Value)
			base = base || decl.Alias == ""
		}
		if key == KeyShowHide && !base {
			// visible unless some breakpoint says otherwise
			s.SetValue(key, "", "true")
		}
	}
	b.watch(bd)
	s.Commit()
	return true
}

func (b *Binder) declarations(el *dom.Element) map[string][]Declaration {
	reg := b.m.Registry()
	out := make(map[string][]Declaration)
	for _, a := range el.Attrs() {
		decl, ok := ParseAttr(a.Name, a.Value)
		if !ok {
			if IsDirective(a.Name) {
				b.log.Debug("Unknown directive ignored", zap.String("attr", a.Name), zap.String("element", el.Path()))
			}
			continue
		}
		if _, ok := reg.FindByAlias(decl.Alias); !ok {
			b.log.Warn("Unknown breakpoint alias, directive ignored", zap.String("attr", a.Name), zap.String("alias", decl.Alias), zap.String("element", el.Path()))
			continue
		}
		out[decl.Key] = append(out[decl.Key], decl)
	}
	return out
}

// watch makes dependent keys follow layout of the element and of its parent.
func (b *Binder) watch(bd *binding) {
	el := bd.el
	var own []string
	for _, key := range []string{KeyLayoutAlign, KeyShowHide} {
		if _, ok := bd.directives[key]; ok {
			own = append(own, key)
		}
	}
	if len(own) > 0 {
		bd.cancels = append(bd.cancels, b.m.Watch(el, KeyLayout, func(string) {
			b.m.Trigger(el, own...)
		}))
	}

	parent := el.Parent()
	if parent == nil {
		return
	}
	var child []string
	for _, key := range []string{KeyFlex, KeyFlexOffset} {
		if _, ok := bd.directives[key]; ok {
			child = append(child, key)
		}
	}
	if len(child) > 0 {
		bd.cancels = append(bd.cancels, b.m.Watch(parent, KeyLayout, func(string) {
			b.m.Trigger(el, child...)
		}))
	}
}

// Release forgets el and its whole subtree. Applied styles stay in place.
func (b *Binder) Release(el *dom.Element) {
	var walk func(*dom.Element)
	walk = func(e *dom.Element) {
		if bd, ok := b.bound[e]; ok {
			for _, cancel := range bd.cancels {
				cancel()
			}
			delete(b.bound, e)
		}
		b.m.ReleaseElement(e)
		for _, c := range e.Children() {
			walk(c)
		}
	}
	walk(el)
}

func (d *directive) update(value string) {
	styles := d.build(value)
	out := maps.Clone(styles)
	for prop := range d.mru {
		if _, ok := out[prop]; !ok {
			out[prop] = ""
		}
	}
	d.b.styler.Apply(d.bd.el, out)

	d.mru = make(builder.StyleMap, len(styles))
	for prop, v := range styles {
		if v != "" {
			d.mru[prop] = v
		}
	}
}

func (d *directive) clear() {
	if len(d.mru) == 0 {
		return
	}
	out := make(builder.StyleMap, len(d.mru))
	for prop := range d.mru {
		out[prop] = ""
	}
	d.b.styler.Apply(d.bd.el, out)
	d.mru = nil
}

// Applied returns styles directive with key applied last, sorted by
// property.
func (b *Binder) Applied(el *dom.Element, key string) []string {
	bd, ok := b.bound[el]
	if !ok {
		return nil
	}
	d, ok := bd.directives[key]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(d.mru))
	for _, prop := range slices.Sorted(maps.Keys(d.mru)) {
		out = append(out, prop+": "+d.mru[prop])
	}
	return out
}

func (b *Binder) newDirective(bd *binding, key string) *directive {
	d := &directive{b: b, bd: bd, key: key}
	el := bd.el

	switch key {
	case KeyLayout:
		d.build = func(value string) builder.StyleMap {
			parent := builder.LayoutParent{}
			if b.opts.DetectLayoutDisplay {
				parent.Display = bd.display
			}
			return builder.Compute(builder.Layout{}, b.layouts.For(parent.Display), value, parent)
		}

	case KeyLayoutAlign:
		d.build = func(value string) builder.StyleMap {
			flow := b.ownFlow(el)
			return builder.Compute(builder.LayoutAlign{}, b.aligns.For(flowContext(flow)), value, flow)
		}

	case KeyFlex:
		f := builder.Flex{ColumnBasisAuto: b.opts.ColumnBasisAuto}
		d.build = func(value string) builder.StyleMap {
			parent := b.parentFlow(el)
			fp := builder.FlexParent{Direction: parent.Direction, Wrap: parent.Wrap != "" && parent.Wrap != "nowrap"}
			return builder.Compute(f, b.flexes.For(flowContext(parent)), value, fp)
		}

	case KeyFlexOrder:
		d.build = func(value string) builder.StyleMap {
			return builder.Compute(builder.Order{}, b.orders, value, struct{}{})
		}

	case KeyFlexOffset:
		d.build = func(value string) builder.StyleMap {
			parent := builder.OffsetParent{Direction: b.parentFlow(el).Direction, RTL: b.isRTL(el)}
			ctx := parent.Direction
			if parent.RTL {
				ctx += "-rtl"
			}
			return builder.Compute(builder.Offset{}, b.offsets.For(ctx), value, parent)
		}

	case KeyFlexFill:
		d.build = func(value string) builder.StyleMap {
			return builder.Compute(builder.Fill{}, b.fills, value, struct{}{})
		}

	case KeyShowHide:
		d.build = func(value string) builder.StyleMap {
			parent := builder.ShowHideParent{Display: bd.display, Server: b.m.IsServer()}
			if v, ok := b.m.Resolved(el, KeyLayout); ok {
				parent.Display = builder.FlowStyles(v)["display"]
			}
			return builder.Compute(builder.ShowHide{}, b.shows.For(parent.Display), value, parent)
		}

	case KeyGridColumns:
		d.build = func(value string) builder.StyleMap {
			_, inline := el.Attr("gdInline")
			parent := builder.GridParent{Inline: inline}
			return builder.Compute(builder.GridColumns{}, b.grids.For(builder.GridContext(parent)), value, parent)
		}
	}
	return d
}

func flowContext(f builder.Flow) string {
	ctx := f.Direction
	if f.Wrap != "" {
		ctx += " " + f.Wrap
	}
	if f.Inline {
		ctx += " inline"
	}
	return ctx
}

// ownFlow returns layout of element: marshalled value when present, inline
// or computed styles otherwise.
func (b *Binder) ownFlow(el *dom.Element) builder.Flow {
	if v, ok := b.m.Resolved(el, KeyLayout); ok {
		return builder.ParseFlow(v)
	}
	dir, _ := b.styler.FlowDirection(el)
	return builder.Flow{Direction: dir, Wrap: b.styler.Lookup(el, "flex-wrap", false)}
}

// parentFlow returns layout of element's parent. Parent without explicit
// direction becomes a row flex container when AddFlexToParent is set.
func (b *Binder) parentFlow(el *dom.Element) builder.Flow {
	parent := el.Parent()
	if parent == nil {
		return builder.Flow{Direction: "row"}
	}
	if v, ok := b.m.Resolved(parent, KeyLayout); ok {
		return builder.ParseFlow(v)
	}

	dir, inline := b.styler.FlowDirection(parent)
	if !inline && b.opts.AddFlexToParent {
		b.log.Debug("Adding flex to parent", zap.String("element", parent.Path()), zap.String("direction", dir))
		b.styler.Apply(parent, builder.FlowStyles(dir))
	}
	return builder.Flow{Direction: strings.TrimSpace(dir), Wrap: b.styler.Lookup(parent, "flex-wrap", false)}
}

func (b *Binder) isRTL(el *dom.Element) bool {
	if b.opts.RTL {
		return true
	}
	for e := el; e != nil; e = e.Parent() {
		if dir, ok := e.Attr("dir"); ok {
			return strings.EqualFold(strings.TrimSpace(dir), "rtl")
		}
	}
	return false
}
