package builder

import (
	"slices"
	"strings"
)

// Directions lists accepted flex-direction values, the first is default.
var Directions = []string{"row", "column", "row-reverse", "column-reverse"}

const inlineKeyword = "inline"

// Flow is a parsed layout value: "<direction> [<wrap>] [inline]".
type Flow struct {
	Direction string
	Wrap      string // "", "wrap", "nowrap" or "wrap-reverse"
	Inline    bool
}

// Horizontal reports whether main axis is horizontal.
func (f Flow) Horizontal() bool {
	return isFlowHorizontal(f.Direction)
}

// ParseFlow validates layout value. Unknown direction becomes "row",
// unknown non empty wrap becomes "wrap".
func ParseFlow(value string) Flow {
	parts := strings.Fields(strings.ToLower(value))
	for len(parts) < 3 {
		parts = append(parts, "")
	}
	direction, wrap, inline := parts[0], parts[1], parts[2]

	if !slices.Contains(Directions, direction) {
		direction = Directions[0]
	}
	if wrap == inlineKeyword {
		if inline != inlineKeyword {
			wrap = inline
		} else {
			wrap = ""
		}
		inline = inlineKeyword
	}
	return Flow{Direction: direction, Wrap: wrapValue(wrap), Inline: inline == inlineKeyword}
}

func wrapValue(v string) string {
	switch v {
	case "":
		return ""
	case "reverse", "wrap-reverse", "reverse-wrap":
		return "wrap-reverse"
	case "no", "none", "nowrap":
		return "nowrap"
	}
	return "wrap"
}

// FlowStyles returns flex container styles for layout value.
func FlowStyles(value string) StyleMap {
	f := ParseFlow(value)
	display := "flex"
	if f.Inline {
		display = "inline-flex"
	}
	return StyleMap{
		"display":        display,
		"box-sizing":     "border-box",
		"flex-direction": f.Direction,
		"flex-wrap":      f.Wrap,
	}
}

// LayoutParent carries display of the element before layout is applied.
type LayoutParent struct {
	Display string
}

// Layout builds flex container styles. Pre-existing display other than
// block, inline or flex variants is preserved (e.g. "none" or "grid").
type Layout struct {
	NoSideEffect[LayoutParent]
}

func (Layout) Build(value string, parent LayoutParent) StyleMap {
	styles := FlowStyles(value)
	switch parent.Display {
	case "", "block", "inline", "flex", "inline-flex":
	default:
		styles["display"] = parent.Display
	}
	return styles
}
