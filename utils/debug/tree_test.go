package debug

import (
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"fxl/breakpoint"
	"fxl/directive"
	"fxl/dom"
	"fxl/marshal"
	"fxl/matchmedia"
)

func TestTreeWriter(t *testing.T) {
	tw := NewTreeWriter()
	if tw.String() != "" {
		t.Error("Expected empty string from new TreeWriter")
	}
	tw.Line(0, "root")
	tw.Line(2, "n=%d", 5)
	tw.Value(1, "label", "a b")
	tw.Value(1, "empty", "")

	want := "root\n    n=5\n  label: \"a b\"\n  empty: \n"
	if got := tw.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestLayoutTree(t *testing.T) {
	doc, err := dom.ParseString(`<html><body>
<div id="p" fxLayout="row" fxLayout.md="column"><span/><p id="c" class="x" fxFlex="50"/></div>
<div id="none"/>
</body></html>`, nil)
	if err != nil {
		t.Fatal(err)
	}

	log := zaptest.NewLogger(t)
	reg := breakpoint.MustNew(nil)
	srv, err := matchmedia.NewServer(reg, "md")
	if err != nil {
		t.Fatal(err)
	}
	m := marshal.New(reg, matchmedia.NewObserver(srv, log), marshal.WithLogger(log))
	defer m.Close()
	directive.New(m, directive.Options{}, log).Bind(doc)

	out := LayoutTree(doc, m)
	lines := strings.Split(out, "\n")
	if !strings.HasPrefix(lines[0], "active: [md") {
		t.Errorf("unexpected first line %q", lines[0])
	}
	for _, want := range []string{
		"\nhtml\n  body\n    div#p\n      layout: \"column\"\n",
		"      p#c.x\n        flex: \"50\"\n        style: ",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output misses %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "span") || strings.Contains(out, "#none") {
		t.Errorf("untracked elements dumped:\n%s", out)
	}
}
