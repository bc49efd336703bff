package expr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/zipang/temples/pkg/lookup"
)

// Guard is a compiled render-if expression.
//
// Supported forms:
// - truthiness of a path: `article.resume`
// - negation: `!draft`
// - comparisons: `type == "quote"`, `count != 0`, `owner == null`
// - boolean composition with parentheses: `a && (b || !c)`
//
// Paths resolve through lookup, so loop scopes and methods work the same way
// they do in bindings.
type Guard struct {
	Raw  string
	root guardNode
}

// ParseGuard compiles raw. An empty expression yields a guard that always
// passes.
func ParseGuard(raw string) (*Guard, error) {
	trimmed := strings.TrimSpace(raw)
	guard := &Guard{Raw: trimmed}
	if trimmed == "" {
		return guard, nil
	}

	tokens, err := tokenize(trimmed)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return guard, nil
	}

	root, err := parseGuardExpression(tokens)
	if err != nil {
		return nil, err
	}
	guard.root = root
	return guard, nil
}

// Eval evaluates the guard against data.
func (g *Guard) Eval(data any, node *html.Node) (bool, error) {
	if g == nil || g.root == nil {
		return true, nil
	}
	return g.root.eval(evalContext{data: data, node: node})
}

func (g *Guard) String() string {
	if g == nil {
		return ""
	}
	return g.Raw
}

type evalContext struct {
	data any
	node *html.Node
}

type tokenKind int

const (
	tokenIdentifier tokenKind = iota
	tokenString
	tokenNumber
	tokenBool
	tokenNull
	tokenEq
	tokenNeq
	tokenAnd
	tokenOr
	tokenNot
	tokenLParen
	tokenRParen
)

type token struct {
	kind tokenKind
	raw  string
}

func tokenize(input string) ([]token, error) {
	var tokens []token
	i := 0

	next := func() byte {
		if i >= len(input) {
			return 0
		}
		return input[i]
	}

	consume := func() byte {
		if i >= len(input) {
			return 0
		}
		ch := input[i]
		i++
		return ch
	}

	for i < len(input) {
		ch := next()
		if ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r' {
			i++
			continue
		}

		switch ch {
		case '(':
			consume()
			tokens = append(tokens, token{kind: tokenLParen, raw: "("})
			continue
		case ')':
			consume()
			tokens = append(tokens, token{kind: tokenRParen, raw: ")"})
			continue
		case '!':
			consume()
			if next() == '=' {
				consume()
				tokens = append(tokens, token{kind: tokenNeq, raw: "!="})
				continue
			}
			tokens = append(tokens, token{kind: tokenNot, raw: "!"})
			continue
		case '=':
			consume()
			if next() != '=' {
				return nil, fmt.Errorf("expr: unexpected '=' in guard; use '=='")
			}
			consume()
			tokens = append(tokens, token{kind: tokenEq, raw: "=="})
			continue
		case '&':
			consume()
			if next() != '&' {
				return nil, fmt.Errorf("expr: unexpected '&' in guard; use '&&'")
			}
			consume()
			tokens = append(tokens, token{kind: tokenAnd, raw: "&&"})
			continue
		case '|':
			consume()
			if next() != '|' {
				return nil, fmt.Errorf("expr: unexpected '|' in guard; use '||'")
			}
			consume()
			tokens = append(tokens, token{kind: tokenOr, raw: "||"})
			continue
		case '"', '\'':
			quote := consume()
			start := i
			escaped := false
			closed := false
			for i < len(input) {
				c := consume()
				if escaped {
					escaped = false
					continue
				}
				if c == '\\' {
					escaped = true
					continue
				}
				if c == quote {
					closed = true
					break
				}
			}
			if !closed {
				return nil, errors.New("expr: unterminated string literal in guard")
			}
			body := input[start : i-1]
			if quote == '\'' {
				body = strings.ReplaceAll(strings.ReplaceAll(body, `\'`, `'`), `"`, `\"`)
			}
			value, err := strconv.Unquote(`"` + body + `"`)
			if err != nil {
				return nil, fmt.Errorf("expr: invalid string literal in guard: %w", err)
			}
			tokens = append(tokens, token{kind: tokenString, raw: value})
			continue
		}

		start := i
		for i < len(input) {
			c := input[i]
			if c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '(' || c == ')' || c == '!' || c == '=' || c == '&' || c == '|' {
				break
			}
			i++
		}
		raw := input[start:i]
		switch strings.ToLower(raw) {
		case "true", "false":
			tokens = append(tokens, token{kind: tokenBool, raw: strings.ToLower(raw)})
		case "null", "nil":
			tokens = append(tokens, token{kind: tokenNull, raw: "null"})
		default:
			if looksLikeNumber(raw) {
				tokens = append(tokens, token{kind: tokenNumber, raw: raw})
			} else {
				tokens = append(tokens, token{kind: tokenIdentifier, raw: raw})
			}
		}
	}

	return tokens, nil
}

func looksLikeNumber(raw string) bool {
	if raw == "" {
		return false
	}
	ch := raw[0]
	return (ch >= '0' && ch <= '9') || ch == '-' || ch == '+'
}

type guardNode interface {
	eval(ctx evalContext) (bool, error)
}

type guardOr struct {
	left  guardNode
	right guardNode
}

func (n guardOr) eval(ctx evalContext) (bool, error) {
	ok, err := n.left.eval(ctx)
	if err != nil {
		return false, err
	}
	if ok {
		return true, nil
	}
	return n.right.eval(ctx)
}

type guardAnd struct {
	left  guardNode
	right guardNode
}

func (n guardAnd) eval(ctx evalContext) (bool, error) {
	ok, err := n.left.eval(ctx)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	return n.right.eval(ctx)
}

type guardNot struct {
	inner guardNode
}

func (n guardNot) eval(ctx evalContext) (bool, error) {
	ok, err := n.inner.eval(ctx)
	if err != nil {
		return false, err
	}
	return !ok, nil
}

type literalKind int

const (
	litString literalKind = iota
	litNumber
	litBool
	litNull
)

type literal struct {
	kind   literalKind
	raw    string
	number float64
}

type guardCompare struct {
	path    Path
	op      tokenKind
	literal literal
}

func (n guardCompare) eval(ctx evalContext) (bool, error) {
	value, ok := n.path.Lookup(ctx.data, ctx.node)
	if !ok {
		value = nil
	}

	var equal bool
	switch n.literal.kind {
	case litNull:
		equal = value == nil
	case litBool:
		equal = lookup.Truthy(value) == (n.literal.raw == "true")
	case litNumber:
		got, ok := coerceNumber(value)
		equal = ok && got == n.literal.number
	case litString:
		equal = lookup.String(value) == n.literal.raw
	default:
		return false, fmt.Errorf("expr: unsupported literal in guard")
	}

	if n.op == tokenNeq {
		return !equal, nil
	}
	return equal, nil
}

type guardTruthy struct {
	path Path
}

func (n guardTruthy) eval(ctx evalContext) (bool, error) {
	value, ok := n.path.Lookup(ctx.data, ctx.node)
	if !ok {
		return false, nil
	}
	return lookup.Truthy(value), nil
}

type tokenStream struct {
	tokens []token
	pos    int
}

func parseGuardExpression(tokens []token) (guardNode, error) {
	stream := &tokenStream{tokens: tokens}
	node, err := parseOr(stream)
	if err != nil {
		return nil, err
	}
	if stream.pos < len(stream.tokens) {
		return nil, fmt.Errorf("expr: unexpected token %q in guard", stream.tokens[stream.pos].raw)
	}
	return node, nil
}

func parseOr(stream *tokenStream) (guardNode, error) {
	left, err := parseAnd(stream)
	if err != nil {
		return nil, err
	}
	for stream.match(tokenOr) {
		right, err := parseAnd(stream)
		if err != nil {
			return nil, err
		}
		left = guardOr{left: left, right: right}
	}
	return left, nil
}

func parseAnd(stream *tokenStream) (guardNode, error) {
	left, err := parseUnary(stream)
	if err != nil {
		return nil, err
	}
	for stream.match(tokenAnd) {
		right, err := parseUnary(stream)
		if err != nil {
			return nil, err
		}
		left = guardAnd{left: left, right: right}
	}
	return left, nil
}

func parseUnary(stream *tokenStream) (guardNode, error) {
	if stream.match(tokenNot) {
		inner, err := parseUnary(stream)
		if err != nil {
			return nil, err
		}
		return guardNot{inner: inner}, nil
	}
	return parsePrimary(stream)
}

func parsePrimary(stream *tokenStream) (guardNode, error) {
	if stream.match(tokenLParen) {
		inner, err := parseOr(stream)
		if err != nil {
			return nil, err
		}
		if !stream.match(tokenRParen) {
			return nil, errors.New("expr: missing closing ')' in guard")
		}
		return inner, nil
	}

	ident, ok := stream.consume(tokenIdentifier)
	if !ok {
		if stream.pos >= len(stream.tokens) {
			return nil, errors.New("expr: incomplete guard expression")
		}
		return nil, fmt.Errorf("expr: expected path in guard, got %q", stream.tokens[stream.pos].raw)
	}
	path := ParsePath(ident.raw)

	for _, op := range []tokenKind{tokenEq, tokenNeq} {
		if stream.match(op) {
			lit, err := stream.consumeLiteral()
			if err != nil {
				return nil, err
			}
			return guardCompare{path: path, op: op, literal: lit}, nil
		}
	}

	return guardTruthy{path: path}, nil
}

func (s *tokenStream) match(kind tokenKind) bool {
	if s.pos >= len(s.tokens) {
		return false
	}
	if s.tokens[s.pos].kind != kind {
		return false
	}
	s.pos++
	return true
}

func (s *tokenStream) consume(kind tokenKind) (token, bool) {
	if s.pos >= len(s.tokens) {
		return token{}, false
	}
	if s.tokens[s.pos].kind != kind {
		return token{}, false
	}
	out := s.tokens[s.pos]
	s.pos++
	return out, true
}

func (s *tokenStream) consumeLiteral() (literal, error) {
	if s.pos >= len(s.tokens) {
		return literal{}, errors.New("expr: missing literal in guard")
	}
	tok := s.tokens[s.pos]
	s.pos++
	switch tok.kind {
	case tokenString:
		return literal{kind: litString, raw: tok.raw}, nil
	case tokenNumber:
		number, err := strconv.ParseFloat(tok.raw, 64)
		if err != nil {
			return literal{}, fmt.Errorf("expr: invalid number literal %q in guard", tok.raw)
		}
		return literal{kind: litNumber, raw: tok.raw, number: number}, nil
	case tokenBool:
		return literal{kind: litBool, raw: tok.raw}, nil
	case tokenNull:
		return literal{kind: litNull, raw: "null"}, nil
	case tokenIdentifier:
		// Bare words compare as strings: `type == quote`.
		return literal{kind: litString, raw: tok.raw}, nil
	default:
		return literal{}, fmt.Errorf("expr: expected literal in guard, got %q", tok.raw)
	}
}

func coerceNumber(value any) (float64, bool) {
	switch v := value.(type) {
	case nil:
		return 0, false
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case uint:
		return float64(v), true
	case uint64:
		return float64(v), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
