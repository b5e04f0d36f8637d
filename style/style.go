// Package style applies computed style maps to document elements and reads
// styles back.
package style

import (
	"strings"

	"go.uber.org/zap"

	"fxl/builder"
	"fxl/dom"
)

const webkit = "-webkit-"

// properties which get vendor prefixed copy, the table is fixed
var prefixed = map[string]bool{
	"flex":            true,
	"flex-direction":  true,
	"flex-wrap":       true,
	"flex-grow":       true,
	"flex-shrink":     true,
	"flex-basis":      true,
	"flex-flow":       true,
	"order":           true,
	"justify-content": true,
	"align-items":     true,
	"align-content":   true,
	"align-self":      true,
}

// Variants returns property names written for prop, prefixed ones first.
func Variants(prop string) []string {
	prop = strings.ToLower(prop)
	if prefixed[prop] {
		return []string{webkit + prop, prop}
	}
	return []string{prop}
}

// Styler writes and looks up element styles. On server every flow direction
// is treated as explicitly set.
type Styler struct {
	server bool
	log    *zap.Logger
}

func New(server bool, log *zap.Logger) *Styler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Styler{server: server, log: log.Named("styler")}
}

// Apply writes styles into element inline style. Properties are processed in
// sorted order, empty value removes property with all its variants.
func (s *Styler) Apply(el *dom.Element, styles builder.StyleMap) {
	for _, prop := range styles.Properties() {
		value := strings.TrimSpace(styles[prop])
		for _, name := range Variants(prop) {
			if value == "" {
				el.RemoveStyle(name)
			} else {
				el.SetStyle(name, value)
			}
		}
	}
	if ce := s.log.Check(zap.DebugLevel, "Styles applied"); ce != nil {
		ce.Write(zap.String("element", el.Path()), zap.Int("properties", len(styles)))
	}
}

// ApplyAll applies the same styles to every element.
func (s *Styler) ApplyAll(els []*dom.Element, styles builder.StyleMap) {
	for _, el := range els {
		s.Apply(el, styles)
	}
}

// Lookup returns property value from inline style, and unless inlineOnly is
// set, from element's computed style when inline one is missing.
func (s *Styler) Lookup(el *dom.Element, prop string, inlineOnly bool) string {
	if el == nil {
		return ""
	}
	if v, ok := el.Style(prop); ok {
		return strings.TrimSpace(v)
	}
	if inlineOnly {
		return ""
	}
	return strings.TrimSpace(el.Computed(prop))
}

// LookupAttribute returns attribute value or empty string.
func (s *Styler) LookupAttribute(el *dom.Element, attr string) string {
	if el == nil {
		return ""
	}
	v, _ := el.Attr(attr)
	return strings.TrimSpace(v)
}

// FlowDirection returns flex-direction of el ("row" when none) and whether
// it was set inline.
func (s *Styler) FlowDirection(el *dom.Element) (string, bool) {
	value := s.Lookup(el, "flex-direction", false)
	inline := s.server || s.Lookup(el, "flex-direction", true) != ""
	if value == "" {
		value = "row"
	}
	return value, inline
}
