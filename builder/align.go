package builder

import "strings"

// LayoutAlign builds alignment of container children for
// "<main-axis> <cross-axis>" values, parent is the element's own layout.
type LayoutAlign struct {
	NoSideEffect[Flow]
}

func (LayoutAlign) Build(value string, layout Flow) StyleMap {
	parts := strings.Fields(value)
	for len(parts) < 2 {
		parts = append(parts, "")
	}
	mainAxis, crossAxis := parts[0], parts[1]

	styles := StyleMap{}
	switch mainAxis {
	case "center", "space-around", "space-between", "space-evenly":
		styles["justify-content"] = mainAxis
	case "end", "flex-end":
		styles["justify-content"] = "flex-end"
	default:
		styles["justify-content"] = "flex-start"
	}

	switch crossAxis {
	case "start", "flex-start":
		styles["align-items"], styles["align-content"] = "flex-start", "flex-start"
	case "center":
		styles["align-items"], styles["align-content"] = "center", "center"
	case "end", "flex-end":
		styles["align-items"], styles["align-content"] = "flex-end", "flex-end"
	case "space-between", "space-around":
		styles["align-items"], styles["align-content"] = "stretch", crossAxis
	case "baseline":
		styles["align-items"], styles["align-content"] = "baseline", "stretch"
	default:
		crossAxis = "stretch"
		styles["align-items"], styles["align-content"] = "stretch", "stretch"
	}

	display := "flex"
	if layout.Inline {
		display = "inline-flex"
	}
	direction := layout.Direction
	if direction == "" {
		direction = "row"
	}
	styles["display"] = display
	styles["flex-direction"] = direction
	styles["box-sizing"] = "border-box"
	styles["max-width"], styles["max-height"] = "", ""
	if crossAxis == "stretch" {
		if layout.Horizontal() {
			styles["max-height"] = "100%"
		} else {
			styles["max-width"] = "100%"
		}
	}
	return styles
}
