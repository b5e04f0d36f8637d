package css

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"fxl/mediaquery"
)

// Value is a parsed property value.
type Value struct {
	Raw       string // value text with normalized whitespace, "!important" removed
	Important bool
}

// Selector is a compound selector with an optional descendant chain.
type Selector struct {
	Raw      string    // original selector string
	Element  string    // element name or empty
	ID       string    // id without '#' or empty
	Classes  []string  // class names without '.'
	Ancestor *Selector // for descendant selectors: "div .row" -> Ancestor is "div"
}

// IsSimple returns true if selector names at least one of element, id or class.
func (s Selector) IsSimple() bool {
	return s.Element != "" || s.ID != "" || len(s.Classes) > 0
}

// IsDescendant returns true if this is a descendant selector.
func (s Selector) IsDescendant() bool {
	return s.Ancestor != nil
}

// Specificity returns (ids, classes, elements) packed into a single
// comparable number.
func (s Selector) Specificity() int {
	spec := 0
	for cur := &s; cur != nil; cur = cur.Ancestor {
		if cur.ID != "" {
			spec += 10000
		}
		spec += 100 * len(cur.Classes)
		if cur.Element != "" && cur.Element != "*" {
			spec++
		}
	}
	return spec
}

// Rule is a single selector with its declarations.
type Rule struct {
	Selector   Selector
	Properties map[string]Value
}

// GetProperty returns the value for a property, or empty Value if not found.
func (r Rule) GetProperty(name string) (Value, bool) {
	v, ok := r.Properties[name]
	return v, ok
}

// MediaBlock is a @media block with its query and nested rules. Query is
// empty (never matches) when the media text could not be parsed.
type MediaBlock struct {
	Media string
	Query mediaquery.List
	Valid bool
	Rules []Rule
}

// StylesheetItem is a single top-level item of a stylesheet, exactly one
// field is non-nil.
type StylesheetItem struct {
	Rule       *Rule
	MediaBlock *MediaBlock
}

// Stylesheet is a parsed or generated style sheet.
type Stylesheet struct {
	Items    []StylesheetItem // all top-level items in source order
	Warnings []string         // unsupported constructs skipped by the parser
}

// AddRule appends a top-level rule.
func (s *Stylesheet) AddRule(r Rule) {
	s.Items = append(s.Items, StylesheetItem{Rule: &r})
}

// AddMediaBlock appends a @media block.
func (s *Stylesheet) AddMediaBlock(mb MediaBlock) {
	s.Items = append(s.Items, StylesheetItem{MediaBlock: &mb})
}

// RulesBySelector returns all top-level rules matching the given selector string.
func (s *Stylesheet) RulesBySelector(selector string) []Rule {
	var matches []Rule
	for _, item := range s.Items {
		if item.Rule != nil && item.Rule.Selector.Raw == selector {
			matches = append(matches, *item.Rule)
		}
	}
	return matches
}

// WriteTo writes the stylesheet to w in source order, implementing io.WriterTo.
// Property order within a rule is sorted alphabetically for deterministic output.
func (s *Stylesheet) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for i, item := range s.Items {
		var n int
		var err error

		switch {
		case item.MediaBlock != nil:
			n, err = writeMediaBlock(w, item.MediaBlock)
		case item.Rule != nil:
			n, err = writeRule(w, item.Rule, "")
		}

		total += int64(n)
		if err != nil {
			return total, err
		}

		// blank line between items (except after last)
		if i < len(s.Items)-1 {
			n, err = fmt.Fprint(w, "\n")
			total += int64(n)
			if err != nil {
				return total, err
			}
		}
	}
	return total, nil
}

// String returns the CSS text of the stylesheet.
func (s *Stylesheet) String() string {
	var sb strings.Builder
	s.WriteTo(&sb) //nolint:errcheck
	return sb.String()
}

func writeRule(w io.Writer, rule *Rule, indent string) (int, error) {
	var total int
	n, err := fmt.Fprintf(w, "%s%s {\n", indent, rule.Selector.Raw)
	total += n
	if err != nil {
		return total, err
	}

	names := make([]string, 0, len(rule.Properties))
	for name := range rule.Properties {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		val := rule.Properties[name]
		important := ""
		if val.Important {
			important = " !important"
		}
		n, err = fmt.Fprintf(w, "%s  %s: %s%s;\n", indent, name, val.Raw, important)
		total += n
		if err != nil {
			return total, err
		}
	}

	n, err = fmt.Fprintf(w, "%s}\n", indent)
	total += n
	return total, err
}

func writeMediaBlock(w io.Writer, mb *MediaBlock) (int, error) {
	var total int
	n, err := fmt.Fprintf(w, "@media %s {\n", mb.Media)
	total += n
	if err != nil {
		return total, err
	}

	for i := range mb.Rules {
		n, err = writeRule(w, &mb.Rules[i], "  ")
		total += n
		if err != nil {
			return total, err
		}
		// blank line between rules in a media block (except after last)
		if i < len(mb.Rules)-1 {
			n, err = fmt.Fprint(w, "\n")
			total += n
			if err != nil {
				return total, err
			}
		}
	}

	n, err = fmt.Fprint(w, "}\n")
	total += n
	return total, err
}
