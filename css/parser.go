// Package css parses author style sheets and inline style declarations and
// writes generated style sheets back as text.
package css

import (
	"bytes"
	"errors"
	"io"
	"maps"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"

	"fxl/mediaquery"
)

// Parser parses CSS stylesheets into structured rules.
type Parser struct {
	log *zap.Logger
}

// NewParser creates a new CSS parser.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log.Named("css-parser")}
}

// Parse parses CSS text into a Stylesheet.
// The optional source parameter identifies what's being parsed (for debug logging).
func (p *Parser) Parse(data []byte, source ...string) *Stylesheet {
	sheet := &Stylesheet{
		Items:    make([]StylesheetItem, 0),
		Warnings: make([]string, 0),
	}

	if len(source) > 0 && source[0] != "" {
		p.log.Debug("Parsing CSS", zap.String("source", source[0]), zap.Int("bytes", len(data)))
	}

	parser := css.NewParser(parse.NewInput(bytes.NewReader(data)), false)
	for {
		gt, _, data := parser.Next()

		switch gt {
		case css.ErrorGrammar:
			if atEOF(parser) {
				return sheet
			}
			p.log.Debug("CSS parse error", zap.Error(parser.Err()))

		case css.BeginAtRuleGrammar:
			atRule := strings.ToLower(string(data))
			if atRule != "@media" {
				p.skipAtRuleBlock(parser)
				p.log.Debug("Skipping @-rule", zap.String("rule", atRule))
				continue
			}
			mb := p.parseMediaPrelude(parser.Values(), sheet)
			mb.Rules = p.parseMediaBlockRules(parser, sheet)
			p.log.Debug("Parsed @media block", zap.String("query", mb.Media), zap.Int("rules", len(mb.Rules)))
			sheet.AddMediaBlock(mb)

		case css.AtRuleGrammar:
			p.log.Debug("Skipping @-rule", zap.String("rule", string(data)))

		case css.BeginRulesetGrammar:
			for _, rule := range p.parseRuleset(parser, data, sheet) {
				sheet.AddRule(rule)
			}
		}
	}
}

// ParseDeclarations parses the content of a style attribute. Declaration
// order is preserved, later duplicates replace earlier ones in place.
func (p *Parser) ParseDeclarations(text string) []Declaration {
	parser := css.NewParser(parse.NewInputString(text), true)

	var decls []Declaration
	for {
		gt, _, data := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			if atEOF(parser) {
				return decls
			}
		case css.DeclarationGrammar:
			name := strings.ToLower(string(data))
			values := parser.Values()
			if len(values) == 0 {
				continue
			}
			val := p.parsePropertyValue(values)
			replaced := false
			for i := range decls {
				if decls[i].Name == name {
					decls[i].Value = val
					replaced = true
					break
				}
			}
			if !replaced {
				decls = append(decls, Declaration{Name: name, Value: val})
			}
		}
	}
}

// Declaration is a single property of a declaration list.
type Declaration struct {
	Name  string
	Value Value
}

func (p *Parser) parseRuleset(parser *css.Parser, data []byte, sheet *Stylesheet) []Rule {
	selectors := p.parseSelectors(data, parser.Values())
	props := p.parseDeclarationBlock(parser)

	var rules []Rule
	for _, selStr := range selectors {
		sel := p.parseSelector(selStr, sheet)
		if !sel.IsSimple() {
			continue
		}
		rules = append(rules, Rule{Selector: sel, Properties: maps.Clone(props)})
	}
	return rules
}

// parseSelectors extracts selector strings from token data.
func (p *Parser) parseSelectors(data []byte, values []css.Token) []string {
	var sb strings.Builder
	sb.Write(data)
	for _, v := range values {
		sb.Write(v.Data)
	}

	var selectors []string
	for s := range strings.SplitSeq(sb.String(), ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			selectors = append(selectors, s)
		}
	}
	return selectors
}

// parseDeclarationBlock parses property declarations until EndRulesetGrammar.
func (p *Parser) parseDeclarationBlock(parser *css.Parser) map[string]Value {
	props := make(map[string]Value)
	for {
		gt, _, data := parser.Next()

		switch gt {
		case css.ErrorGrammar:
			if atEOF(parser) {
				return props
			}
			p.log.Debug("Skipping malformed declaration", zap.Error(parser.Err()))

		case css.EndRulesetGrammar:
			return props

		case css.DeclarationGrammar:
			values := parser.Values()
			if len(values) > 0 {
				props[strings.ToLower(string(data))] = p.parsePropertyValue(values)
			}

		case css.CustomPropertyGrammar:
			// custom properties (--var) are not resolved
			continue
		}
	}
}

// parsePropertyValue converts CSS tokens to a Value.
func (p *Parser) parsePropertyValue(tokens []css.Token) Value {
	var val Value

	// trailing "! important"
	end := len(tokens)
	for end > 0 && tokens[end-1].TokenType == css.WhitespaceToken {
		end--
	}
	if end >= 2 && tokens[end-1].TokenType == css.IdentToken &&
		strings.EqualFold(string(tokens[end-1].Data), "important") {
		bang := end - 2
		for bang > 0 && tokens[bang].TokenType == css.WhitespaceToken {
			bang--
		}
		if tokens[bang].TokenType == css.DelimToken && string(tokens[bang].Data) == "!" {
			val.Important = true
			end = bang
		}
	}

	var rawParts []string
	for _, t := range tokens[:end] {
		if t.TokenType != css.WhitespaceToken {
			rawParts = append(rawParts, string(t.Data))
		} else if len(rawParts) > 0 {
			rawParts = append(rawParts, " ")
		}
	}
	val.Raw = strings.TrimSpace(strings.Join(rawParts, ""))
	return val
}

// parseSelector parses a single selector string into a Selector.
func (p *Parser) parseSelector(selStr string, sheet *Stylesheet) Selector {
	selStr = strings.TrimSpace(selStr)

	if strings.ContainsAny(selStr, "+~>") {
		sheet.Warnings = append(sheet.Warnings, "unsupported combinator selector: "+selStr)
		p.log.Debug("Skipping combinator selector", zap.String("selector", selStr))
		return Selector{Raw: selStr}
	}
	if strings.ContainsAny(selStr, "[:") {
		sheet.Warnings = append(sheet.Warnings, "unsupported selector: "+selStr)
		p.log.Debug("Skipping attribute or pseudo selector", zap.String("selector", selStr))
		return Selector{Raw: selStr}
	}

	parts := strings.Fields(selStr)
	if len(parts) == 0 {
		return Selector{Raw: selStr}
	}

	// rightmost compound is the subject, everything to the left are ancestors
	var sel *Selector
	for i, part := range parts {
		compound := parseCompound(part)
		if !compound.IsSimple() {
			sheet.Warnings = append(sheet.Warnings, "unsupported selector: "+selStr)
			return Selector{Raw: selStr}
		}
		compound.Ancestor = sel
		compound.Raw = strings.Join(parts[:i+1], " ")
		sel = &compound
	}
	return *sel
}

// parseCompound parses "div.row.wide#main" style compound selectors.
func parseCompound(s string) Selector {
	sel := Selector{Raw: s}
	i := 0
	for i < len(s) && s[i] != '.' && s[i] != '#' {
		i++
	}
	sel.Element = strings.ToLower(s[:i])
	for i < len(s) {
		kind := s[i]
		j := i + 1
		for j < len(s) && s[j] != '.' && s[j] != '#' {
			j++
		}
		name := s[i+1 : j]
		if name == "" {
			return Selector{Raw: s}
		}
		if kind == '.' {
			sel.Classes = append(sel.Classes, name)
		} else {
			sel.ID = name
		}
		i = j
	}
	return sel
}

func atEOF(parser *css.Parser) bool {
	err := parser.Err()
	return err == nil || errors.Is(err, io.EOF)
}

// skipAtRuleBlock skips tokens until the matching end of an @-rule block.
func (p *Parser) skipAtRuleBlock(parser *css.Parser) {
	depth := 1
	for depth > 0 {
		gt, _, _ := parser.Next()
		switch gt {
		case css.ErrorGrammar:
			if atEOF(parser) {
				return
			}
		case css.BeginAtRuleGrammar, css.BeginRulesetGrammar:
			depth++
		case css.EndAtRuleGrammar, css.EndRulesetGrammar:
			depth--
		}
	}
}

func (p *Parser) parseMediaPrelude(tokens []css.Token, sheet *Stylesheet) MediaBlock {
	var sb strings.Builder
	for _, t := range tokens {
		sb.Write(t.Data)
	}
	mb := MediaBlock{Media: strings.TrimSpace(sb.String())}

	q, err := mediaquery.Parse(mb.Media)
	if err != nil {
		sheet.Warnings = append(sheet.Warnings, "unsupported media query: "+mb.Media)
		p.log.Debug("Unable to parse media query", zap.String("query", mb.Media), zap.Error(err))
		return mb
	}
	mb.Query, mb.Valid = q, true
	return mb
}

// parseMediaBlockRules parses rules inside an @media block.
func (p *Parser) parseMediaBlockRules(parser *css.Parser, sheet *Stylesheet) []Rule {
	var rules []Rule
	for {
		gt, _, data := parser.Next()

		switch gt {
		case css.ErrorGrammar:
			if atEOF(parser) {
				return rules
			}
		case css.EndAtRuleGrammar:
			return rules
		case css.BeginRulesetGrammar:
			rules = append(rules, p.parseRuleset(parser, data, sheet)...)
		}
	}
}
