package dom

import (
	"strings"

	"fxl/css"
)

type candidate struct {
	value       css.Value
	specificity int
	order       int
}

// wins reports whether c overrides other according to cascade rules:
// importance, then specificity, then source order.
func (c candidate) wins(other candidate) bool {
	if c.value.Important != other.value.Important {
		return c.value.Important
	}
	if c.specificity != other.specificity {
		return c.specificity > other.specificity
	}
	return c.order > other.order
}

// Computed returns cascaded value of the property: inline style and every
// rule of the document stylesheets whose selector matches the element,
// @media blocks included when the document media matcher accepts them.
// Properties are not inherited. Empty string means no declaration applies.
func (el *Element) Computed(prop string) string {
	prop = strings.ToLower(prop)

	var best *candidate
	consider := func(c candidate) {
		if best == nil || c.wins(*best) {
			best = &c
		}
	}

	order := 0
	check := func(r *css.Rule) {
		order++
		v, ok := r.GetProperty(prop)
		if !ok || !el.Matches(r.Selector) {
			return
		}
		consider(candidate{value: v, specificity: r.Selector.Specificity(), order: order})
	}

	for _, sheet := range el.doc.sheets {
		for _, item := range sheet.Items {
			switch {
			case item.Rule != nil:
				check(item.Rule)
			case item.MediaBlock != nil:
				mb := item.MediaBlock
				if !mb.Valid || !el.doc.matcher(mb.Query) {
					continue
				}
				for i := range mb.Rules {
					check(&mb.Rules[i])
				}
			}
		}
	}

	for _, d := range el.inline() {
		if d.Name == prop {
			// inline style beats any selector
			consider(candidate{value: d.Value, specificity: 1 << 30, order: order + 1})
		}
	}

	if best == nil {
		return ""
	}
	return best.value.Raw
}

// Matches reports whether selector applies to the element.
func (el *Element) Matches(sel css.Selector) bool {
	if !el.matchesCompound(sel) {
		return false
	}
	if sel.Ancestor == nil {
		return true
	}
	for p := el.Parent(); p != nil; p = p.Parent() {
		if p.Matches(*sel.Ancestor) {
			return true
		}
	}
	return false
}

func (el *Element) matchesCompound(sel css.Selector) bool {
	if !sel.IsSimple() {
		return false
	}
	if sel.Element != "" && sel.Element != "*" && sel.Element != el.Tag() {
		return false
	}
	if sel.ID != "" {
		if id, _ := el.Attr("id"); id != sel.ID {
			return false
		}
	}
	for _, c := range sel.Classes {
		if !el.HasClass(c) {
			return false
		}
	}
	return true
}
