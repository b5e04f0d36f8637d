// Package debug renders engine state in human readable form for logs and
// debug reports.
package debug

import (
	"fmt"
	"strconv"
	"strings"

	"fxl/dom"
	"fxl/marshal"
)

// TreeWriter accumulates indented lines.
type TreeWriter struct {
	w      strings.Builder
	indent string
}

func NewTreeWriter() *TreeWriter {
	return &TreeWriter{indent: "  "}
}

func (tw *TreeWriter) String() string {
	return tw.w.String()
}

func (tw *TreeWriter) Line(depth int, format string, args ...any) {
	tw.w.WriteString(strings.Repeat(tw.indent, depth))
	fmt.Fprintf(&tw.w, format, args...)
	tw.w.WriteByte('\n')
}

// Value writes label with quoted value, empty values are left bare.
func (tw *TreeWriter) Value(depth int, label, value string) {
	if value != "" {
		value = strconv.Quote(value)
	}
	tw.Line(depth, "%s: %s", label, value)
}

// LayoutTree dumps elements of doc tracked by m: active breakpoints first,
// then for every element its resolved directive values and inline style.
// Subtrees without tracked elements are collapsed.
func LayoutTree(doc *dom.Document, m *marshal.Marshaller) string {
	tw := NewTreeWriter()

	active := m.ActiveBreakpoints()
	aliases := make([]string, 0, len(active))
	for _, bp := range active {
		aliases = append(aliases, bp.String())
	}
	tw.Line(0, "active: [%s]", strings.Join(aliases, " "))

	var walk func(el *dom.Element, depth int) (string, bool)
	walk = func(el *dom.Element, depth int) (string, bool) {
		sub := NewTreeWriter()
		sub.Line(depth, "%s", describe(el))
		keys := m.Keys(el)
		for _, key := range keys {
			if v, ok := m.Resolved(el, key); ok {
				sub.Value(depth+1, key, v)
			} else {
				sub.Line(depth+1, "%s: <none>", key)
			}
		}
		if style, ok := el.Attr("style"); ok && len(keys) > 0 {
			sub.Value(depth+1, "style", style)
		}
		tracked := len(keys) > 0
		for _, c := range el.Children() {
			if text, ok := walk(c, depth+1); ok {
				sub.w.WriteString(text)
				tracked = true
			}
		}
		return sub.String(), tracked
	}
	if text, ok := walk(doc.Root(), 0); ok {
		tw.w.WriteString(text)
	}
	return tw.String()
}

func describe(el *dom.Element) string {
	var sb strings.Builder
	sb.WriteString(el.Tag())
	if id, ok := el.Attr("id"); ok {
		sb.WriteString("#" + id)
	}
	for _, c := range el.Classes() {
		sb.WriteString("." + c)
	}
	return sb.String()
}
