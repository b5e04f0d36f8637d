package dom

import (
	"slices"
	"strings"

	"github.com/beevik/etree"
	"github.com/google/uuid"

	"fxl/css"
)

// Element is a document element. Pointers are stable for the document
// lifetime and may be used as map keys.
type Element struct {
	doc   *Document
	e     *etree.Element
	id    uuid.UUID
	style []css.Declaration // parsed inline style, nil until first access
	ready bool
}

// Attr is a single element attribute.
type Attr struct {
	Name  string
	Value string
}

func newElement(d *Document, e *etree.Element) *Element {
	return &Element{doc: d, e: e, id: uuid.New()}
}

// ID is a process unique identity of the element, unrelated to the "id"
// attribute.
func (el *Element) ID() string {
	return el.id.String()
}

// Tag returns local element name in lower case.
func (el *Element) Tag() string {
	return strings.ToLower(el.e.Tag)
}

// Document returns owning document.
func (el *Element) Document() *Document {
	return el.doc
}

// Path returns element path from the document root, handy for logging.
func (el *Element) Path() string {
	return el.e.GetPath()
}

func (el *Element) Parent() *Element {
	p := el.e.Parent()
	if p == nil || p == &el.doc.doc.Element {
		return nil
	}
	return el.doc.wrap(p)
}

func (el *Element) Children() []*Element {
	kids := el.e.ChildElements()
	out := make([]*Element, 0, len(kids))
	for _, k := range kids {
		out = append(out, el.doc.wrap(k))
	}
	return out
}

// Attr returns attribute value. Attribute names are case sensitive.
func (el *Element) Attr(name string) (string, bool) {
	a := el.e.SelectAttr(name)
	if a == nil {
		return "", false
	}
	return a.Value, true
}

// Attrs returns all attributes in document order.
func (el *Element) Attrs() []Attr {
	out := make([]Attr, 0, len(el.e.Attr))
	for _, a := range el.e.Attr {
		out = append(out, Attr{Name: a.FullKey(), Value: a.Value})
	}
	return out
}

func (el *Element) SetAttr(name, value string) {
	el.e.CreateAttr(name, value)
	if name == "style" {
		el.ready = false
	}
}

func (el *Element) RemoveAttr(name string) {
	el.e.RemoveAttr(name)
	if name == "style" {
		el.ready = false
	}
}

// Classes returns class list.
func (el *Element) Classes() []string {
	v, _ := el.Attr("class")
	return strings.Fields(v)
}

func (el *Element) HasClass(name string) bool {
	return slices.Contains(el.Classes(), name)
}

func (el *Element) AddClass(name string) {
	classes := el.Classes()
	if slices.Contains(classes, name) {
		return
	}
	el.SetAttr("class", strings.Join(append(classes, name), " "))
}

func (el *Element) RemoveClass(name string) {
	classes := slices.DeleteFunc(el.Classes(), func(c string) bool { return c == name })
	if len(classes) == 0 {
		el.RemoveAttr("class")
		return
	}
	el.SetAttr("class", strings.Join(classes, " "))
}

func (el *Element) inline() []css.Declaration {
	if !el.ready {
		v, _ := el.Attr("style")
		el.style = el.doc.parser.ParseDeclarations(v)
		el.ready = true
	}
	return el.style
}

// Style returns inline style property value.
func (el *Element) Style(prop string) (string, bool) {
	prop = strings.ToLower(prop)
	for _, d := range el.inline() {
		if d.Name == prop {
			return d.Value.Raw, true
		}
	}
	return "", false
}

// InlineStyle returns copy of inline declarations in order.
func (el *Element) InlineStyle() []css.Declaration {
	return slices.Clone(el.inline())
}

// SetStyle sets inline style property, keeping its position if it already
// exists. Empty value removes the property.
func (el *Element) SetStyle(prop, value string) {
	prop = strings.ToLower(prop)
	if value == "" {
		el.RemoveStyle(prop)
		return
	}
	decls := el.inline()
	for i := range decls {
		if decls[i].Name == prop {
			decls[i].Value = css.Value{Raw: value}
			el.flush()
			return
		}
	}
	el.style = append(decls, css.Declaration{Name: prop, Value: css.Value{Raw: value}})
	el.flush()
}

func (el *Element) RemoveStyle(prop string) {
	prop = strings.ToLower(prop)
	decls := el.inline()
	n := len(decls)
	el.style = slices.DeleteFunc(decls, func(d css.Declaration) bool { return d.Name == prop })
	if len(el.style) != n {
		el.flush()
	}
}

// flush writes parsed declarations back to the style attribute.
func (el *Element) flush() {
	if len(el.style) == 0 {
		el.e.RemoveAttr("style")
		return
	}
	var sb strings.Builder
	for i, d := range el.style {
		if i > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(d.Name)
		sb.WriteString(": ")
		sb.WriteString(d.Value.Raw)
		if d.Value.Important {
			sb.WriteString(" !important")
		}
		sb.WriteString(";")
	}
	el.e.CreateAttr("style", sb.String())
}
