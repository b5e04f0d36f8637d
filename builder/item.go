package builder

import (
	"strconv"
	"strings"
)

// Order builds "order" of a flex item, non integer values become 0.
type Order struct {
	NoSideEffect[struct{}]
}

func (Order) Build(value string, _ struct{}) StyleMap {
	value = strings.TrimSpace(value)
	if _, err := strconv.Atoi(value); err != nil {
		value = "0"
	}
	return StyleMap{"order": value}
}

// OffsetParent is the layout of the element's parent and the text direction.
type OffsetParent struct {
	Direction string
	RTL       bool
}

// Offset builds leading margin of a flex item. Unitless numbers are
// percentages.
type Offset struct {
	NoSideEffect[OffsetParent]
}

func (Offset) Build(value string, parent OffsetParent) StyleMap {
	offset := strings.TrimSpace(value)
	if offset == "" {
		offset = "0"
	}
	if !strings.Contains(offset, " ") {
		if _, err := strconv.ParseFloat(offset, 64); err == nil {
			offset += "%"
		}
	}

	prop := "margin-top"
	if isFlowHorizontal(parent.Direction) {
		prop = "margin-left"
		if parent.RTL {
			prop = "margin-right"
		}
	}
	return StyleMap{prop: offset}
}

// Fill makes element fill all available space of its container.
type Fill struct {
	NoSideEffect[struct{}]
}

func (Fill) Build(string, struct{}) StyleMap {
	return StyleMap{
		"margin":     "0",
		"width":      "100%",
		"height":     "100%",
		"min-width":  "100%",
		"min-height": "100%",
	}
}

// ShowHideParent carries display the element had before it was hidden.
type ShowHideParent struct {
	Display string
	Server  bool
}

// ShowHide builds display for "true"/"false" visibility values.
type ShowHide struct {
	NoSideEffect[ShowHideParent]
}

func (ShowHide) Build(value string, parent ShowHideParent) StyleMap {
	if value != "true" {
		return StyleMap{"display": "none"}
	}
	display := parent.Display
	if display == "" && parent.Server {
		display = "initial"
	}
	return StyleMap{"display": display}
}

// IsFalsy reports whether attribute value switches a boolean directive off.
func IsFalsy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "false", "0", "off", "no":
		return true
	}
	return false
}
