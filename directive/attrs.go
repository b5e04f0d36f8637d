// Package directive discovers layout attributes on document elements and
// wires their values through the marshaller into element styles.
//
// Attribute syntax is <name>[.<alias>]="<value>", e.g. fxLayout="row" and
// fxLayout.gt-sm="column".
package directive

import (
	"strings"

	"fxl/builder"
)

// Directive keys known to the marshaller.
const (
	KeyLayout      = "layout"
	KeyLayoutAlign = "layout-align"
	KeyFlex        = "flex"
	KeyFlexOrder   = "flex-order"
	KeyFlexOffset  = "flex-offset"
	KeyFlexFill    = "flex-fill"
	KeyShowHide    = "show-hide"
	KeyGridColumns = "grid-columns"
)

// keyOrder is the order keys are registered in for a single element, layout
// goes first so that dependent keys see it applied.
var keyOrder = []string{
	KeyLayout,
	KeyLayoutAlign,
	KeyGridColumns,
	KeyFlex,
	KeyFlexOrder,
	KeyFlexOffset,
	KeyFlexFill,
	KeyShowHide,
}

type attrSpec struct {
	key string
	// value converts attribute text into marshaller value
	value func(string) string
}

func same(v string) string { return strings.TrimSpace(v) }

func show(v string) string {
	if builder.IsFalsy(v) {
		return "false"
	}
	return "true"
}

func hide(v string) string {
	if builder.IsFalsy(v) {
		return "true"
	}
	return "false"
}

var attrs = map[string]attrSpec{
	"fxLayout":      {KeyLayout, same},
	"fxLayoutAlign": {KeyLayoutAlign, same},
	"fxFlex":        {KeyFlex, same},
	"fxFlexOrder":   {KeyFlexOrder, same},
	"fxFlexOffset":  {KeyFlexOffset, same},
	"fxFlexFill":    {KeyFlexFill, same},
	"fxFill":        {KeyFlexFill, same},
	"fxShow":        {KeyShowHide, show},
	"fxHide":        {KeyShowHide, hide},
	"gdColumns":     {KeyGridColumns, same},
}

// Declaration is a single directive attribute.
type Declaration struct {
	Attr  string // full attribute name
	Key   string
	Alias string
	Value string
}

// ParseAttr splits attribute name into directive name and breakpoint alias.
// ok is false for attributes which are not directives.
func ParseAttr(name, value string) (Declaration, bool) {
	base, alias, _ := strings.Cut(name, ".")
	spec, ok := attrs[base]
	if !ok {
		return Declaration{}, false
	}
	return Declaration{Attr: name, Key: spec.key, Alias: alias, Value: spec.value(value)}, true
}

// IsDirective reports whether attribute name looks like a layout directive.
func IsDirective(name string) bool {
	return strings.HasPrefix(name, "fx") || strings.HasPrefix(name, "gd")
}
