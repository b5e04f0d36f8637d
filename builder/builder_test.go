package builder_test

import (
	"maps"
	"testing"

	"fxl/builder"
)

func TestValidateBasis(t *testing.T) {
	tests := []struct {
		in                   string
		grow, shrink, basis string
	}{
		{"3 3 calc(15em+20px)", "3", "3", "calc(15em + 20px)"},
		{"calc(100% -  10px)", "1", "1", "calc(100% - 10px)"},
		{"calc(100%*3/4)", "1", "1", "calc(100% * 3 / 4)"},
		{"1 0 auto", "1", "0", "auto"},
		{"30", "1", "1", "30"},
		{"", "1", "1", ""},
	}
	for _, tt := range tests {
		g, s, b := builder.ValidateBasis(tt.in, "1", "1")
		if g != tt.grow || s != tt.shrink || b != tt.basis {
			t.Errorf("ValidateBasis(%q) = %q %q %q, want %q %q %q", tt.in, g, s, b, tt.grow, tt.shrink, tt.basis)
		}
	}

	if got := builder.NormalizeFlex("3 3 calc(15em+20px)"); got != "3 3 calc(15em + 20px)" {
		t.Errorf("NormalizeFlex = %q", got)
	}
}

func TestFlex_Build(t *testing.T) {
	row := builder.FlexParent{Direction: "row"}
	column := builder.FlexParent{Direction: "column"}

	tests := []struct {
		name   string
		value  string
		parent builder.FlexParent
		want   map[string]string
	}{
		{"empty row", "", row, map[string]string{"flex": "1 1 0%"}},
		{"empty column", "", column, map[string]string{"flex": "1 1 0.000000001px"}},
		{"percent", "30", row, map[string]string{"flex": "1 1 100%", "max-width": "30%"}},
		{"percent column", "30", column, map[string]string{"flex": "1 1 100%", "max-height": "30%"}},
		{"pixels", "200px", row, map[string]string{"flex": "1 1 200px", "max-width": "200px", "min-width": "200px"}},
		{"nogrow", "nogrow", row, map[string]string{"flex": "0 1 auto"}},
		{"none", "none", row, map[string]string{"flex": "0 0 auto"}},
		{"fixed", "0 0 120px", row, map[string]string{"flex": "0 0 120px", "max-width": "120px", "min-width": "120px"}},
		{"calc", "3 3 calc(15em+20px)", row, map[string]string{
			"flex-grow": "3", "flex-shrink": "3", "flex-basis": "calc(15em + 20px)", "min-width": "calc(15em + 20px)",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := builder.Flex{}.Build(tt.value, tt.parent)
			if got["box-sizing"] != "border-box" {
				t.Errorf("box-sizing = %q", got["box-sizing"])
			}
			for prop, v := range tt.want {
				if got[prop] != v {
					t.Errorf("%s = %q, want %q (all: %v)", prop, got[prop], v, got)
				}
			}
			for _, prop := range []string{"max-width", "max-height", "min-width", "min-height"} {
				if _, ok := tt.want[prop]; !ok && got[prop] != "" {
					t.Errorf("%s = %q, want cleared", prop, got[prop])
				}
			}
		})
	}
}

func TestLayout_Build(t *testing.T) {
	got := builder.Layout{}.Build("column wrap inline", builder.LayoutParent{})
	want := builder.StyleMap{
		"display":        "inline-flex",
		"box-sizing":     "border-box",
		"flex-direction": "column",
		"flex-wrap":      "wrap",
	}
	if !maps.Equal(got, want) {
		t.Errorf("Build = %v, want %v", got, want)
	}

	got = builder.Layout{}.Build("diagonal", builder.LayoutParent{Display: "block"})
	if got["flex-direction"] != "row" || got["display"] != "flex" || got["flex-wrap"] != "" {
		t.Errorf("unknown direction: %v", got)
	}

	got = builder.Layout{}.Build("row", builder.LayoutParent{Display: "none"})
	if got["display"] != "none" {
		t.Errorf("display none must be preserved, got %q", got["display"])
	}

	f := builder.ParseFlow("row-reverse inline reverse")
	if f.Direction != "row-reverse" || !f.Inline || f.Wrap != "wrap-reverse" || !f.Horizontal() {
		t.Errorf("ParseFlow = %+v", f)
	}
	if f := builder.ParseFlow("column nowrap"); f.Wrap != "nowrap" || f.Horizontal() {
		t.Errorf("ParseFlow = %+v", f)
	}
}

func TestLayoutAlign_Build(t *testing.T) {
	got := builder.LayoutAlign{}.Build("center", builder.ParseFlow("row"))
	if got["justify-content"] != "center" || got["align-items"] != "stretch" || got["max-height"] != "100%" || got["max-width"] != "" {
		t.Errorf("Build = %v", got)
	}
	got = builder.LayoutAlign{}.Build("end space-between", builder.ParseFlow("column inline"))
	if got["justify-content"] != "flex-end" || got["align-content"] != "space-between" || got["display"] != "inline-flex" || got["flex-direction"] != "column" {
		t.Errorf("Build = %v", got)
	}
}

func TestItemBuilders(t *testing.T) {
	if got := (builder.Order{}).Build("3", struct{}{}); got["order"] != "3" {
		t.Errorf("order = %v", got)
	}
	if got := (builder.Order{}).Build("first", struct{}{}); got["order"] != "0" {
		t.Errorf("order = %v", got)
	}

	if got := (builder.Offset{}).Build("20", builder.OffsetParent{Direction: "row"}); got["margin-left"] != "20%" {
		t.Errorf("offset = %v", got)
	}
	if got := (builder.Offset{}).Build("10px", builder.OffsetParent{Direction: "row", RTL: true}); got["margin-right"] != "10px" {
		t.Errorf("offset rtl = %v", got)
	}
	if got := (builder.Offset{}).Build("5", builder.OffsetParent{Direction: "column"}); got["margin-top"] != "5%" {
		t.Errorf("offset column = %v", got)
	}

	if got := (builder.ShowHide{}).Build("false", builder.ShowHideParent{Display: "flex"}); got["display"] != "none" {
		t.Errorf("hide = %v", got)
	}
	if got := (builder.ShowHide{}).Build("true", builder.ShowHideParent{Display: "flex"}); got["display"] != "flex" {
		t.Errorf("show = %v", got)
	}
	if got := (builder.ShowHide{}).Build("true", builder.ShowHideParent{Server: true}); got["display"] != "initial" {
		t.Errorf("show on server = %v", got)
	}

	if got := (builder.Fill{}).Build("", struct{}{}); got["width"] != "100%" || got["margin"] != "0" {
		t.Errorf("fill = %v", got)
	}
}

func TestGridColumns_Partitions(t *testing.T) {
	caches := builder.NewCaches("grid-columns")
	b := builder.GridColumns{}

	inline := builder.GridParent{Inline: true}
	block := builder.GridParent{}

	a := builder.Compute(b, caches.For(builder.GridContext(inline)), "repeat(3, 1fr)", inline)
	c := builder.Compute(b, caches.For(builder.GridContext(block)), "repeat(3, 1fr)", block)
	if a["display"] != "inline-grid" || c["display"] != "grid" {
		t.Errorf("same value must build differently per context: %v %v", a, c)
	}
	if got := caches.Partitions(); len(got) != 2 || got[0] != "block" || got[1] != "inline" {
		t.Errorf("partitions = %v", got)
	}

	auto := b.Build("50px!", block)
	if auto["grid-auto-columns"] != "50px" || auto["grid-template-columns"] != "" {
		t.Errorf("auto columns = %v", auto)
	}
	if none := b.Build("", block); none["grid-template-columns"] != "none" {
		t.Errorf("default = %v", none)
	}
}

type counting struct {
	builds  int
	effects []string
}

func (c *counting) Build(value string, _ string) builder.StyleMap {
	c.builds++
	return builder.StyleMap{"order": value}
}

func (c *counting) SideEffect(value string, styles builder.StyleMap, parent string) {
	c.effects = append(c.effects, parent+":"+styles["order"])
}

func TestCompute_Cache(t *testing.T) {
	b := &counting{}
	cache := builder.NewCache("order")

	s1 := builder.Compute[string](b, cache, "1", "p")
	s1["order"] = "mutated"
	s2 := builder.Compute[string](b, cache, "1", "q")

	if b.builds != 1 {
		t.Errorf("builds = %d, want 1", b.builds)
	}
	if s2["order"] != "1" {
		t.Errorf("cached map must not be shared with callers, got %v", s2)
	}
	if len(b.effects) != 2 || b.effects[1] != "q:1" {
		t.Errorf("side effect must run on every compute, got %v", b.effects)
	}
	if hits, misses := cache.Stats(); hits != 1 || misses != 1 {
		t.Errorf("stats = %d/%d", hits, misses)
	}
	if cache.Len() != 1 {
		t.Errorf("len = %d", cache.Len())
	}

	// no cache
	builder.Compute[string](b, nil, "2", "p")
	if b.builds != 2 {
		t.Errorf("builds = %d, want 2", b.builds)
	}

	// default side effect is a no-op
	var o builder.Order
	o.SideEffect("1", builder.StyleMap{}, struct{}{})
}
