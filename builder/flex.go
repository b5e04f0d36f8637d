package builder

import (
	"regexp"
	"strconv"
	"strings"
)

// Smallest non zero basis, keeps column items from collapsing in some
// engines while behaving as zero.
const columnBasisZero = "0.000000001px"

var (
	reSpace    = regexp.MustCompile(`\s`)
	reOperator = regexp.MustCompile(`[/*+\-]`)
)

// ValidateBasis splits flex value into grow, shrink and basis. Whitespace
// inside calc() is normalized so every operator is surrounded by single
// spaces. grow and shrink are used when value does not carry them.
func ValidateBasis(value, grow, shrink string) (string, string, string) {
	parts := [3]string{grow, shrink, value}

	switch j := strings.Index(value, "calc"); {
	case j > 0:
		parts[2] = validateCalc(strings.TrimSpace(value[j:]))
		if m := strings.Split(strings.TrimSpace(value[:j]), " "); len(m) == 2 {
			parts[0], parts[1] = m[0], m[1]
		}
	case j == 0:
		parts[2] = validateCalc(strings.TrimSpace(value))
	default:
		if m := strings.Split(value, " "); len(m) == 3 {
			parts = [3]string{m[0], m[1], m[2]}
		}
	}
	return parts[0], parts[1], parts[2]
}

func validateCalc(calc string) string {
	calc = reSpace.ReplaceAllString(calc, "")
	return reOperator.ReplaceAllString(calc, " $0 ")
}

// NormalizeFlex returns value in "grow shrink basis" form.
func NormalizeFlex(value string) string {
	g, s, b := ValidateBasis(strings.ReplaceAll(value, ";", ""), "1", "1")
	return g + " " + s + " " + b
}

// FlexParent is the layout of the element's parent.
type FlexParent struct {
	Direction string
	Wrap      bool
}

// Flex builds flex item styles for "grow shrink basis" values or a single
// basis keyword (grow, nogrow, noshrink, initial, auto, none) or size.
type Flex struct {
	NoSideEffect[FlexParent]
	// ColumnBasisAuto uses "auto" instead of near zero basis for empty
	// value in column layouts.
	ColumnBasisAuto bool
}

func (f Flex) Build(value string, parent FlexParent) StyleMap {
	grow, shrink, basis := ValidateBasis(strings.ReplaceAll(value, ";", ""), "1", "1")

	direction := "row"
	if strings.Contains(parent.Direction, "column") {
		direction = "column"
	}
	horizontal := isFlowHorizontal(direction)
	maxProp, minProp := "max-height", "min-height"
	if horizontal {
		maxProp, minProp = "max-width", "min-width"
	}

	hasCalc := strings.Contains(basis, "calc")
	usingCalc := hasCalc || basis == "auto"
	isPercent := strings.Contains(basis, "%") && !hasCalc
	hasUnits := false
	for _, u := range []string{"px", "rem", "em", "vw", "vh"} {
		if strings.Contains(basis, u) {
			hasUnits = true
			break
		}
	}
	isValue := hasCalc || hasUnits
	if grow == "" {
		grow = "0"
	}
	if shrink == "" {
		shrink = "0"
	}
	isFixed := grow == "0" && shrink == "0"

	styles := StyleMap{}
	clean := func(extra StyleMap) StyleMap {
		out := StyleMap{"max-width": "", "max-height": "", "min-width": "", "min-height": ""}
		for k, v := range extra {
			out[k] = v
		}
		return out
	}
	shorthand := func(b string) StyleMap {
		if hasCalc {
			return clean(StyleMap{"flex-grow": grow, "flex-shrink": shrink, "flex-basis": b})
		}
		return clean(StyleMap{"flex": grow + " " + shrink + " " + b})
	}

	switch basis {
	case "":
		switch {
		case direction == "row":
			basis = "0%"
		case f.ColumnBasisAuto:
			basis = "auto"
		default:
			basis = columnBasisZero
		}
	case "initial", "nogrow":
		grow, basis = "0", "auto"
	case "grow":
		basis = "100%"
	case "noshrink":
		shrink, basis = "0", "auto"
	case "auto":
	case "none":
		grow, shrink, basis = "0", "0", "auto"
	default:
		if !isValue && !isPercent {
			if _, err := strconv.ParseFloat(basis, 64); err == nil {
				basis += "%"
			}
		}
		if basis == "0%" {
			isValue = true
		}
		if basis == "0px" {
			basis = "0%"
		}
		b := "100%"
		if isValue {
			b = basis
		}
		styles = shorthand(b)
	}

	if styles["flex"] == "" && styles["flex-grow"] == "" {
		styles = shorthand(basis)
	}

	// fixed and sized items get explicit limits along the main axis
	switch basis {
	case "0%", "0px", columnBasisZero, "auto":
	default:
		if isFixed || (isValue && grow != "0") {
			styles[minProp] = basis
		}
		if isFixed || (!usingCalc && shrink != "0") {
			styles[maxProp] = basis
		}
	}

	if styles[minProp] == "" && styles[maxProp] == "" {
		styles = shorthand(basis)
	} else if parent.Wrap {
		// wrapping containers size items by their limit, not by growing
		limit := styles[maxProp]
		if limit == "" {
			limit = styles[minProp]
		}
		if hasCalc {
			styles["flex-basis"] = limit
		} else {
			styles["flex"] = grow + " " + shrink + " " + limit
		}
	}

	styles["box-sizing"] = "border-box"
	return styles
}
