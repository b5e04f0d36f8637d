// Package ssr renders layout directives of a document into a static
// stylesheet. Every element carrying directive styles gets a generated class,
// base styles become top-level rules and breakpoint specific differences go
// into @media blocks.
package ssr

import (
	"fmt"
	"sort"

	"github.com/maruel/natural"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"fxl/breakpoint"
	"fxl/css"
	"fxl/directive"
	"fxl/dom"
	"fxl/marshal"
	"fxl/matchmedia"
	"fxl/mediaquery"
)

// DefaultClassPrefix is used when Options.ClassPrefix is empty.
const DefaultClassPrefix = "fxl-ssr-"

type Options struct {
	// Aliases limits breakpoints rendered into @media blocks, all
	// breakpoints of registry are rendered when empty.
	Aliases     []string
	ClassPrefix string
	Directive   directive.Options
}

// Generator produces static stylesheets. It never modifies the source
// document while rendering, each breakpoint is bound on a fresh copy.
type Generator struct {
	reg  *breakpoint.Registry
	opts Options
	log  *zap.Logger
}

func New(reg *breakpoint.Registry, opts Options, log *zap.Logger) *Generator {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.ClassPrefix == "" {
		opts.ClassPrefix = DefaultClassPrefix
	}
	return &Generator{reg: reg, opts: opts, log: log.Named("ssr")}
}

// styles produced by directives for every element, indexed by document order
type snapshot []map[string]string

// Result of generation.
type Result struct {
	Sheet *css.Stylesheet
	// Classes maps element position in document order to assigned class.
	Classes map[int]string
}

// Generate renders doc at base and at every selected breakpoint, assigns
// classes to styled elements of doc and returns stylesheet carrying their
// styles. doc itself receives classes only, use Inject to also add the
// stylesheet.
func (g *Generator) Generate(doc *dom.Document) (*Result, error) {
	bps, err := g.breakpoints()
	if err != nil {
		return nil, err
	}

	original := inlineStyles(doc)
	base, err := g.render(doc, original)
	if err != nil {
		return nil, err
	}

	type rendered struct {
		bp   breakpoint.BreakPoint
		snap snapshot
	}
	var all []rendered
	for _, bp := range bps {
		snap, err := g.render(doc, original, bp.Alias)
		if err != nil {
			return nil, fmt.Errorf("breakpoint %s: %w", bp.Alias, err)
		}
		all = append(all, rendered{bp: bp, snap: snap})
	}

	res := &Result{Sheet: &css.Stylesheet{}, Classes: make(map[int]string)}
	els := doc.Elements()
	styled := func(i int) bool {
		if len(base[i]) > 0 {
			return true
		}
		for _, r := range all {
			if len(diff(base[i], r.snap[i])) > 0 {
				return true
			}
		}
		return false
	}
	var order []int
	for i, el := range els {
		if !styled(i) {
			continue
		}
		class := fmt.Sprintf("%s%d", g.opts.ClassPrefix, len(order)+1)
		res.Classes[i] = class
		order = append(order, i)
		el.AddClass(class)
	}

	for _, i := range order {
		if len(base[i]) > 0 {
			res.Sheet.AddRule(rule(res.Classes[i], base[i]))
		}
	}
	for _, r := range all {
		mb := css.MediaBlock{Media: r.bp.MediaQuery, Valid: true}
		if q, err := mediaquery.Parse(r.bp.MediaQuery); err == nil {
			mb.Query = q
		} else {
			mb.Valid = false
		}
		for _, i := range order {
			if d := diff(base[i], r.snap[i]); len(d) > 0 {
				mb.Rules = append(mb.Rules, rule(res.Classes[i], d))
			}
		}
		if len(mb.Rules) > 0 {
			res.Sheet.AddMediaBlock(mb)
		}
	}

	g.log.Debug("Static styles generated",
		zap.Int("classes", len(res.Classes)),
		zap.Int("breakpoints", len(all)),
		zap.Int("items", len(res.Sheet.Items)))
	return res, nil
}

// Inject generates styles and adds resulting stylesheet to doc head.
func (g *Generator) Inject(doc *dom.Document) (*Result, error) {
	res, err := g.Generate(doc)
	if err != nil {
		return nil, err
	}
	if len(res.Sheet.Items) > 0 {
		doc.AddStylesheet(res.Sheet)
	}
	return res, nil
}

// breakpoints returns non base breakpoints to render in ascending priority,
// so that with equal specificity the higher priority block comes later.
func (g *Generator) breakpoints() ([]breakpoint.BreakPoint, error) {
	var out []breakpoint.BreakPoint
	if len(g.opts.Aliases) == 0 {
		for _, bp := range g.reg.Items() {
			if !bp.IsBase() {
				out = append(out, bp)
			}
		}
	} else {
		var errs error
		for _, alias := range g.opts.Aliases {
			bp, ok := g.reg.FindByAlias(alias)
			if !ok {
				errs = multierr.Append(errs, fmt.Errorf("unknown breakpoint alias %q", alias))
				continue
			}
			if !bp.IsBase() {
				out = append(out, bp)
			}
		}
		if errs != nil {
			return nil, errs
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
	return out, nil
}

// render binds a copy of doc with the breakpoints named by aliases frozen
// active and collects styles directives produced.
func (g *Generator) render(doc *dom.Document, original snapshot, aliases ...string) (snapshot, error) {
	srv, err := matchmedia.NewServer(g.reg, aliases...)
	if err != nil {
		return nil, err
	}
	log := g.log
	if len(aliases) > 0 {
		log = log.With(zap.Strings("active", aliases))
	}

	cp := doc.Copy()
	m := marshal.New(g.reg, matchmedia.NewObserver(srv, log), marshal.WithLogger(log))
	defer m.Close()
	if err := m.SubscriptionErr(); err != nil {
		log.Warn("Some breakpoints could not be observed", zap.Error(err))
	}
	directive.New(m, g.opts.Directive, log).Bind(cp)

	out := inlineStyles(cp)
	for i := range out {
		if i >= len(original) {
			break
		}
		for prop, v := range original[i] {
			if out[i][prop] == v {
				delete(out[i], prop)
			}
		}
	}
	return out, nil
}

func inlineStyles(doc *dom.Document) snapshot {
	els := doc.Elements()
	out := make(snapshot, len(els))
	for i, el := range els {
		out[i] = make(map[string]string)
		for _, d := range el.InlineStyle() {
			out[i][d.Name] = d.Value.Raw
		}
	}
	return out
}

// diff returns properties of at which differ from base. Properties missing
// from at are reset to initial.
func diff(base, at map[string]string) map[string]string {
	out := make(map[string]string)
	for prop, v := range at {
		if base[prop] != v {
			out[prop] = v
		}
	}
	for prop := range base {
		if _, ok := at[prop]; !ok {
			out[prop] = "initial"
		}
	}
	return out
}

func rule(class string, props map[string]string) css.Rule {
	r := css.Rule{
		Selector:   css.Selector{Raw: "." + class, Classes: []string{class}},
		Properties: make(map[string]css.Value, len(props)),
	}
	for prop, v := range props {
		r.Properties[prop] = css.Value{Raw: v}
	}
	return r
}

// ClassNames returns assigned classes in natural order.
func (r *Result) ClassNames() []string {
	out := make([]string, 0, len(r.Classes))
	for _, c := range r.Classes {
		out = append(out, c)
	}
	sort.Sort(natural.StringSlice(out))
	return out
}
