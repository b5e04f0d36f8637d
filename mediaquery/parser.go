package mediaquery

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"strconv"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
)

type token struct {
	tt   css.TokenType
	data string
}

func (t token) is(tt css.TokenType, data string) bool {
	return t.tt == tt && strings.EqualFold(t.data, data)
}

// Parse parses a media query list such as
// "screen and (min-width: 600px), print".
func Parse(text string) (List, error) {
	list := List{Raw: strings.TrimSpace(text)}

	tokens, err := tokenize(text)
	if err != nil {
		return List{}, err
	}
	if len(tokens) == 0 {
		return list, nil
	}

	for part := range splitTopLevel(tokens) {
		q, err := parseQuery(part)
		if err != nil {
			return List{}, fmt.Errorf("%w: %q: %w", ErrSyntax, list.Raw, err)
		}
		list.Queries = append(list.Queries, q)
	}
	return list, nil
}

// MustParse is like Parse but panics on error. Intended for built-in tables.
func MustParse(text string) List {
	l, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return l
}

// Valid reports whether text can be parsed.
func Valid(text string) bool {
	_, err := Parse(text)
	return err == nil
}

func tokenize(text string) ([]token, error) {
	lexer := css.NewLexer(parse.NewInputString(text))

	var tokens []token
	for {
		tt, data := lexer.Next()
		switch tt {
		case css.ErrorToken:
			if err := lexer.Err(); err != nil && !errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("%w: %w", ErrSyntax, err)
			}
			return tokens, nil
		case css.WhitespaceToken, css.CommentToken:
			continue
		case css.FunctionToken:
			// "and(" is lexed as a function
			name := strings.TrimSuffix(string(data), "(")
			tokens = append(tokens, token{css.IdentToken, name}, token{css.LeftParenthesisToken, "("})
		case css.BadStringToken, css.BadURLToken:
			return nil, fmt.Errorf("%w: unexpected %q", ErrSyntax, string(data))
		default:
			tokens = append(tokens, token{tt, string(data)})
		}
	}
}

// splitTopLevel yields comma separated parts of the token stream. Empty parts
// are yielded too, so the caller reports them.
func splitTopLevel(tokens []token) iter.Seq[[]token] {
	return func(yield func([]token) bool) {
		depth, start := 0, 0
		for i, t := range tokens {
			switch t.tt {
			case css.LeftParenthesisToken:
				depth++
			case css.RightParenthesisToken:
				depth--
			case css.CommaToken:
				if depth == 0 {
					if !yield(tokens[start:i]) {
						return
					}
					start = i + 1
				}
			}
		}
		yield(tokens[start:])
	}
}

func parseQuery(tokens []token) (Query, error) {
	var q Query
	if len(tokens) == 0 {
		return q, fmt.Errorf("empty query")
	}
	q.Raw = joinTokens(tokens)

	i := 0
	if tokens[i].tt == css.IdentToken {
		switch strings.ToLower(tokens[i].data) {
		case "not":
			q.Not = true
			i++
		case "only":
			q.Only = true
			i++
		}
	}

	expectAnd := false
	if i < len(tokens) && tokens[i].tt == css.IdentToken {
		q.Type = strings.ToLower(tokens[i].data)
		if q.Type == "and" || q.Type == "not" || q.Type == "only" || q.Type == "or" {
			return q, fmt.Errorf("unexpected keyword %q", q.Type)
		}
		i++
		expectAnd = true
	} else if q.Only {
		return q, fmt.Errorf("'only' requires media type")
	}

	for i < len(tokens) {
		if expectAnd {
			if !tokens[i].is(css.IdentToken, "and") {
				return q, fmt.Errorf("expected 'and', got %q", tokens[i].data)
			}
			i++
			if i >= len(tokens) {
				return q, fmt.Errorf("dangling 'and'")
			}
		}
		if tokens[i].tt != css.LeftParenthesisToken {
			return q, fmt.Errorf("expected '(', got %q", tokens[i].data)
		}
		end := matchingParen(tokens, i)
		if end < 0 {
			return q, fmt.Errorf("unbalanced parenthesis")
		}
		c, err := parseCondition(tokens[i+1 : end])
		if err != nil {
			return q, err
		}
		q.Conditions = append(q.Conditions, c)
		i = end + 1
		expectAnd = true
	}
	return q, nil
}

func matchingParen(tokens []token, open int) int {
	depth := 0
	for i := open; i < len(tokens); i++ {
		switch tokens[i].tt {
		case css.LeftParenthesisToken:
			depth++
		case css.RightParenthesisToken:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func parseCondition(tokens []token) (Condition, error) {
	if len(tokens) == 0 {
		return Condition{}, fmt.Errorf("empty condition")
	}

	// (feature)
	if len(tokens) == 1 {
		if tokens[0].tt != css.IdentToken {
			return Condition{}, fmt.Errorf("unexpected %q in condition", tokens[0].data)
		}
		return Condition{Feature: strings.ToLower(tokens[0].data), Op: OpBool}, nil
	}

	// (feature: value)
	if tokens[0].tt == css.IdentToken && tokens[1].tt == css.ColonToken {
		name := strings.ToLower(tokens[0].data)
		c := Condition{Feature: name, Op: OpEq}
		switch {
		case strings.HasPrefix(name, "min-"):
			c.Feature, c.Op = strings.TrimPrefix(name, "min-"), OpGE
		case strings.HasPrefix(name, "max-"):
			c.Feature, c.Op = strings.TrimPrefix(name, "max-"), OpLE
		}
		if err := parseValue(&c, tokens[2:]); err != nil {
			return Condition{}, err
		}
		return c, nil
	}

	return parseRange(tokens)
}

// parseRange handles level 4 range syntax with the feature on either side.
// Double ranges "(600px <= width < 960px)" are not representable as a single
// condition and are rejected.
func parseRange(tokens []token) (Condition, error) {
	opAt := -1
	for i, t := range tokens {
		if t.tt == css.DelimToken && strings.ContainsAny(t.data, "<>=") {
			opAt = i
			break
		}
	}
	if opAt <= 0 {
		return Condition{}, fmt.Errorf("malformed condition %q", joinTokens(tokens))
	}

	op, width := parseOp(tokens[opAt:])
	if width == 0 {
		return Condition{}, fmt.Errorf("malformed operator in %q", joinTokens(tokens))
	}
	left, right := tokens[:opAt], tokens[opAt+width:]
	for _, t := range right {
		if t.tt == css.DelimToken && strings.ContainsAny(t.data, "<>") {
			return Condition{}, fmt.Errorf("double range is not supported: %q", joinTokens(tokens))
		}
	}

	var c Condition
	switch {
	case len(left) == 1 && left[0].tt == css.IdentToken:
		c = Condition{Feature: strings.ToLower(left[0].data), Op: op}
		if err := parseValue(&c, right); err != nil {
			return Condition{}, err
		}
	case len(right) == 1 && right[0].tt == css.IdentToken:
		c = Condition{Feature: strings.ToLower(right[0].data), Op: flip(op)}
		if err := parseValue(&c, left); err != nil {
			return Condition{}, err
		}
	default:
		return Condition{}, fmt.Errorf("malformed range %q", joinTokens(tokens))
	}
	return c, nil
}

func parseOp(tokens []token) (Op, int) {
	first := tokens[0].data
	hasEq := len(tokens) > 1 && tokens[1].is(css.DelimToken, "=")
	switch first {
	case "=":
		return OpEq, 1
	case "<":
		if hasEq {
			return OpLE, 2
		}
		return OpLT, 1
	case ">":
		if hasEq {
			return OpGE, 2
		}
		return OpGT, 1
	}
	return OpBool, 0
}

func flip(op Op) Op {
	switch op {
	case OpGE:
		return OpLE
	case OpLE:
		return OpGE
	case OpGT:
		return OpLT
	case OpLT:
		return OpGT
	}
	return op
}

func parseValue(c *Condition, tokens []token) error {
	if len(tokens) == 0 {
		return fmt.Errorf("missing value for %q", c.Feature)
	}

	switch c.Feature {
	case "orientation":
		if len(tokens) != 1 || tokens[0].tt != css.IdentToken || c.Op != OpEq {
			return fmt.Errorf("bad orientation %q", joinTokens(tokens))
		}
		c.Keyword = strings.ToLower(tokens[0].data)
		if c.Keyword != "portrait" && c.Keyword != "landscape" {
			return fmt.Errorf("bad orientation %q", c.Keyword)
		}
		return nil
	case "aspect-ratio":
		return parseRatio(c, tokens)
	}

	if len(tokens) != 1 {
		return fmt.Errorf("unexpected value %q for %q", joinTokens(tokens), c.Feature)
	}
	t := tokens[0]
	switch t.tt {
	case css.DimensionToken:
		if c.Feature != "width" && c.Feature != "height" {
			// resolution and friends: keep the number, condition never matches
			v, _ := splitNumber(t.data)
			c.Value = v
			return nil
		}
		v, err := parseLength(t.data)
		if err != nil {
			return err
		}
		c.Value = v
	case css.NumberToken:
		v, err := strconv.ParseFloat(t.data, 64)
		if err != nil {
			return fmt.Errorf("bad number %q: %w", t.data, err)
		}
		if v != 0 && (c.Feature == "width" || c.Feature == "height") {
			return fmt.Errorf("length %q requires unit", t.data)
		}
		c.Value = v
	case css.IdentToken:
		c.Keyword = strings.ToLower(t.data)
	default:
		return fmt.Errorf("unexpected value %q for %q", t.data, c.Feature)
	}
	return nil
}

func parseRatio(c *Condition, tokens []token) error {
	num := func(t token) (float64, error) {
		if t.tt != css.NumberToken {
			return 0, fmt.Errorf("bad ratio component %q", t.data)
		}
		return strconv.ParseFloat(t.data, 64)
	}
	switch len(tokens) {
	case 1:
		v, err := num(tokens[0])
		if err != nil {
			return err
		}
		c.Value = v
	case 3:
		if !tokens[1].is(css.DelimToken, "/") {
			return fmt.Errorf("bad ratio %q", joinTokens(tokens))
		}
		w, err := num(tokens[0])
		if err != nil {
			return err
		}
		h, err := num(tokens[2])
		if err != nil {
			return err
		}
		if h == 0 {
			return fmt.Errorf("bad ratio %q", joinTokens(tokens))
		}
		c.Value = w / h
	default:
		return fmt.Errorf("bad ratio %q", joinTokens(tokens))
	}
	return nil
}

func splitNumber(s string) (float64, string) {
	end := 0
	for end < len(s) && (s[end] == '.' || s[end] == '-' || s[end] == '+' || (s[end] >= '0' && s[end] <= '9')) {
		end++
	}
	v, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0, ""
	}
	return v, strings.ToLower(s[end:])
}

func parseLength(s string) (float64, error) {
	v, unit := splitNumber(s)
	if unit == "" {
		return 0, fmt.Errorf("bad length %q", s)
	}
	switch unit {
	case "px":
		return v, nil
	case "em", "rem":
		return v * remPixels, nil
	default:
		return 0, fmt.Errorf("unsupported unit in %q", s)
	}
}

func joinTokens(tokens []token) string {
	var sb strings.Builder
	for i, t := range tokens {
		if i > 0 && t.tt != css.RightParenthesisToken && t.tt != css.ColonToken &&
			tokens[i-1].tt != css.LeftParenthesisToken {
			sb.WriteByte(' ')
		}
		sb.WriteString(t.data)
	}
	return sb.String()
}
