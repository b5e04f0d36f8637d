// Package dom is a small XHTML document model used as the target of style
// application. It wraps etree and adds element identity, inline style editing
// and cascaded (computed) style lookup against the document's own <style>
// sheets.
package dom

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/beevik/etree"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"

	"fxl/css"
	"fxl/mediaquery"
)

// MediaMatcher decides whether @media block of the document stylesheet
// currently applies.
type MediaMatcher func(mediaquery.List) bool

// Document is a parsed XHTML document.
type Document struct {
	doc      *etree.Document
	log      *zap.Logger
	parser   *css.Parser
	elements map[*etree.Element]*Element
	sheets   []*css.Stylesheet
	matcher  MediaMatcher
}

// Parse reads XHTML document from r.
func Parse(r io.Reader, log *zap.Logger) (*Document, error) {
	if log == nil {
		log = zap.NewNop()
	}

	doc := etree.NewDocument()
	doc.ReadSettings = etree.ReadSettings{
		CharsetReader: charset.NewReaderLabel,
		Entity:        xml.HTMLEntity,
		Permissive:    true,
	}
	doc.WriteSettings = etree.WriteSettings{
		CanonicalText:    true,
		CanonicalAttrVal: true,
	}
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("unable to read document: %w", err)
	}
	if doc.Root() == nil {
		return nil, fmt.Errorf("document has no root element")
	}

	d := &Document{
		doc:      doc,
		log:      log.Named("dom"),
		parser:   css.NewParser(log),
		elements: make(map[*etree.Element]*Element),
		matcher:  func(mediaquery.List) bool { return false },
	}
	d.loadStylesheets()
	return d, nil
}

// ParseString is a convenience wrapper for Parse.
func ParseString(s string, log *zap.Logger) (*Document, error) {
	return Parse(strings.NewReader(s), log)
}

// ReadFile parses document stored in file.
func ReadFile(path string, log *zap.Logger) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open document: %w", err)
	}
	defer f.Close()
	return Parse(f, log)
}

func (d *Document) loadStylesheets() {
	for _, se := range d.doc.FindElements("//style") {
		text := se.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		sheet := d.parser.Parse([]byte(text), "<style>")
		for _, w := range sheet.Warnings {
			d.log.Debug("Stylesheet", zap.String("warning", w))
		}
		d.sheets = append(d.sheets, sheet)
	}
}

// SetMediaMatcher replaces the function used to evaluate @media blocks of
// document stylesheets. By default no @media block applies.
func (d *Document) SetMediaMatcher(m MediaMatcher) {
	if m == nil {
		m = func(mediaquery.List) bool { return false }
	}
	d.matcher = m
}

// MatchEnvironment makes @media blocks apply according to env.
func (d *Document) MatchEnvironment(env mediaquery.Environment) {
	d.SetMediaMatcher(func(l mediaquery.List) bool { return l.Matches(env) })
}

// Stylesheets returns sheets collected from <style> elements.
func (d *Document) Stylesheets() []*css.Stylesheet {
	return d.sheets
}

// AddStylesheet adds sheet to the document head as <style> element.
func (d *Document) AddStylesheet(sheet *css.Stylesheet) {
	root := d.doc.Root()
	head := root.SelectElement("head")
	if head == nil {
		head = etree.NewElement("head")
		root.InsertChildAt(0, head)
	}
	se := head.CreateElement("style")
	se.CreateAttr("type", "text/css")
	se.SetText("\n" + sheet.String())
	d.sheets = append(d.sheets, sheet)
}

// Root returns document root element.
func (d *Document) Root() *Element {
	return d.wrap(d.doc.Root())
}

// Walk visits elements in document order. Returning false from fn skips
// element's subtree.
func (d *Document) Walk(fn func(*Element) bool) {
	var walk func(*etree.Element)
	walk = func(e *etree.Element) {
		if !fn(d.wrap(e)) {
			return
		}
		for _, c := range e.ChildElements() {
			walk(c)
		}
	}
	walk(d.doc.Root())
}

// Elements returns all elements in document order.
func (d *Document) Elements() []*Element {
	var out []*Element
	d.Walk(func(el *Element) bool {
		out = append(out, el)
		return true
	})
	return out
}

// FindByID returns element with given id attribute.
func (d *Document) FindByID(id string) *Element {
	var found *Element
	d.Walk(func(el *Element) bool {
		if found != nil {
			return false
		}
		if v, ok := el.Attr("id"); ok && v == id {
			found = el
			return false
		}
		return true
	})
	return found
}

// WriteTo serializes document, implementing io.WriterTo.
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	return d.doc.WriteTo(w)
}

// String returns serialized document.
func (d *Document) String() string {
	s, err := d.doc.WriteToString()
	if err != nil {
		return ""
	}
	return s
}

// Copy returns independent deep copy of the document.
func (d *Document) Copy() *Document {
	c := &Document{
		doc:      d.doc.Copy(),
		log:      d.log,
		parser:   d.parser,
		elements: make(map[*etree.Element]*Element),
		matcher:  d.matcher,
	}
	c.loadStylesheets()
	return c
}

func (d *Document) wrap(e *etree.Element) *Element {
	if e == nil {
		return nil
	}
	if el, ok := d.elements[e]; ok {
		return el
	}
	el := newElement(d, e)
	d.elements[e] = el
	return el
}
