package builder

import "strings"

const (
	gridDefault = "none"
	// trailing marker switching value to implicit (auto) tracks
	autoSpecifier = "!"
)

// GridParent tells whether grid container is inline.
type GridParent struct {
	Inline bool
}

// GridColumns builds grid container column template. Values ending with "!"
// define implicit columns instead.
type GridColumns struct {
	NoSideEffect[GridParent]
}

func (GridColumns) Build(value string, parent GridParent) StyleMap {
	value = strings.TrimSpace(value)
	if value == "" {
		value = gridDefault
	}
	auto := false
	if strings.HasSuffix(value, autoSpecifier) {
		value = strings.TrimSpace(strings.TrimSuffix(value, autoSpecifier))
		auto = true
	}

	display := "grid"
	if parent.Inline {
		display = "inline-grid"
	}
	styles := StyleMap{
		"display":               display,
		"grid-auto-columns":     "",
		"grid-template-columns": "",
	}
	if auto {
		styles["grid-auto-columns"] = value
	} else {
		styles["grid-template-columns"] = value
	}
	return styles
}

// GridContext returns cache partition name for parent.
func GridContext(parent GridParent) string {
	if parent.Inline {
		return "inline"
	}
	return "block"
}
