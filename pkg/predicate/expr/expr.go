// Package expr compiles the small boolean expression language used by
// computed field predicates (hidden, readOnly) into reusable programs.
//
// Supported forms:
//   - truthiness: `enabled`, `!archived`
//   - comparisons: `status == "draft"`, `count >= 3`, `owner != null`
//   - composition: `a && (b || !c)`
//
// Identifiers are read from Scope.Values using dot-path traversal; the
// `extras.` prefix reads from Scope.Extras instead.
package expr

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrEmpty is returned when compiling a blank expression.
var ErrEmpty = errors.New("expr: empty expression")

// Scope holds the inputs a Program is evaluated against.
type Scope struct {
	Values map[string]any
	Extras map[string]any
}

// Program is a compiled expression. Programs are immutable and safe for
// concurrent use.
type Program struct {
	source string
	root   node
	idents []string
}

// Compile parses source into a Program.
func Compile(source string) (*Program, error) {
	trimmed := strings.TrimSpace(source)
	if trimmed == "" {
		return nil, ErrEmpty
	}

	tokens, err := tokenize(trimmed)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, ErrEmpty
	}

	p := &parser{tokens: tokens}
	root, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.tokens) {
		return nil, fmt.Errorf("expr: unexpected token %q", p.tokens[p.pos].raw)
	}
	return &Program{source: trimmed, root: root, idents: p.idents}, nil
}

// MustCompile is like Compile but panics on error. Intended for package level
// fixtures and tests.
func MustCompile(source string) *Program {
	prog, err := Compile(source)
	if err != nil {
		panic(err)
	}
	return prog
}

// Source returns the trimmed expression text.
func (p *Program) Source() string {
	if p == nil {
		return ""
	}
	return p.source
}

// Identifiers lists the identifiers referenced by the program in order of
// first appearance.
func (p *Program) Identifiers() []string {
	if p == nil {
		return nil
	}
	out := make([]string, len(p.idents))
	copy(out, p.idents)
	return out
}

// Eval runs the program. A nil program evaluates to false.
func (p *Program) Eval(scope Scope) (bool, error) {
	if p == nil || p.root == nil {
		return false, nil
	}
	return p.root.eval(scope)
}

type tokenKind int

const (
	tokIdent tokenKind = iota
	tokString
	tokNumber
	tokBool
	tokNull
	tokEq
	tokNeq
	tokLt
	tokLte
	tokGt
	tokGte
	tokAnd
	tokOr
	tokNot
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	raw  string
}

func isSpace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

func isDelimiter(ch byte) bool {
	if isSpace(ch) {
		return true
	}
	switch ch {
	case '(', ')', '!', '=', '&', '|', '<', '>':
		return true
	}
	return false
}

func tokenize(input string) ([]token, error) {
	var tokens []token
	i := 0
	peek := func(offset int) byte {
		if i+offset >= len(input) {
			return 0
		}
		return input[i+offset]
	}
	emit := func(kind tokenKind, raw string) {
		tokens = append(tokens, token{kind: kind, raw: raw})
		i += len(raw)
	}

	for i < len(input) {
		ch := input[i]
		switch {
		case isSpace(ch):
			i++
		case ch == '(':
			emit(tokLParen, "(")
		case ch == ')':
			emit(tokRParen, ")")
		case ch == '!' && peek(1) == '=':
			emit(tokNeq, "!=")
		case ch == '!':
			emit(tokNot, "!")
		case ch == '=' && peek(1) == '=':
			emit(tokEq, "==")
		case ch == '=':
			return nil, errors.New("expr: unexpected '='; use '=='")
		case ch == '<' && peek(1) == '=':
			emit(tokLte, "<=")
		case ch == '<':
			emit(tokLt, "<")
		case ch == '>' && peek(1) == '=':
			emit(tokGte, ">=")
		case ch == '>':
			emit(tokGt, ">")
		case ch == '&' && peek(1) == '&':
			emit(tokAnd, "&&")
		case ch == '&':
			return nil, errors.New("expr: unexpected '&'; use '&&'")
		case ch == '|' && peek(1) == '|':
			emit(tokOr, "||")
		case ch == '|':
			return nil, errors.New("expr: unexpected '|'; use '||'")
		case ch == '"' || ch == '\'':
			value, width, err := scanString(input[i:])
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, token{kind: tokString, raw: value})
			i += width
		default:
			start := i
			for i < len(input) && !isDelimiter(input[i]) {
				i++
			}
			raw := input[start:i]
			switch strings.ToLower(raw) {
			case "true", "false":
				tokens = append(tokens, token{kind: tokBool, raw: strings.ToLower(raw)})
			case "null", "nil", "undefined":
				tokens = append(tokens, token{kind: tokNull, raw: "null"})
			default:
				if looksNumeric(raw) {
					tokens = append(tokens, token{kind: tokNumber, raw: raw})
				} else {
					tokens = append(tokens, token{kind: tokIdent, raw: raw})
				}
			}
		}
	}
	return tokens, nil
}

// scanString reads a quoted literal from the start of input and returns the
// unquoted value plus the number of bytes consumed.
func scanString(input string) (string, int, error) {
	quote := input[0]
	escaped := false
	for j := 1; j < len(input); j++ {
		c := input[j]
		if escaped {
			escaped = false
			continue
		}
		if c == '\\' {
			escaped = true
			continue
		}
		if c != quote {
			continue
		}
		body := input[1:j]
		if quote == '\'' {
			body = strings.ReplaceAll(body, `\'`, `'`)
			body = strings.ReplaceAll(body, `"`, `\"`)
		}
		value, err := strconv.Unquote(`"` + body + `"`)
		if err != nil {
			return "", 0, fmt.Errorf("expr: invalid string literal: %w", err)
		}
		return value, j + 1, nil
	}
	return "", 0, errors.New("expr: unterminated string literal")
}

func looksNumeric(raw string) bool {
	if raw == "" {
		return false
	}
	ch := raw[0]
	if ch == '-' || ch == '+' {
		if len(raw) == 1 {
			return false
		}
		ch = raw[1]
	}
	return ch >= '0' && ch <= '9'
}

type parser struct {
	tokens []token
	pos    int
	idents []string
}

func (p *parser) match(kind tokenKind) bool {
	if p.pos >= len(p.tokens) || p.tokens[p.pos].kind != kind {
		return false
	}
	p.pos++
	return true
}

func (p *parser) parseOr() (node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.match(tokOr) {
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = orNode{left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.match(tokAnd) {
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = andNode{left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (node, error) {
	if p.match(tokNot) {
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return notNode{inner: inner}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (node, error) {
	if p.match(tokLParen) {
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if !p.match(tokRParen) {
			return nil, errors.New("expr: missing closing ')'")
		}
		return inner, nil
	}

	if p.pos >= len(p.tokens) {
		return nil, errors.New("expr: unexpected end of expression")
	}
	tok := p.tokens[p.pos]
	if tok.kind != tokIdent {
		return nil, fmt.Errorf("expr: expected identifier, got %q", tok.raw)
	}
	p.pos++
	p.track(tok.raw)

	if p.pos < len(p.tokens) {
		switch op := p.tokens[p.pos].kind; op {
		case tokEq, tokNeq, tokLt, tokLte, tokGt, tokGte:
			p.pos++
			lit, err := p.parseLiteral()
			if err != nil {
				return nil, err
			}
			if op != tokEq && op != tokNeq && (lit.kind == tokBool || lit.kind == tokNull) {
				return nil, fmt.Errorf("expr: operator %q needs a number or string operand", opSymbol(op))
			}
			return compareNode{ident: tok.raw, op: op, lit: lit}, nil
		}
	}
	return truthyNode{ident: tok.raw}, nil
}

func (p *parser) parseLiteral() (token, error) {
	if p.pos >= len(p.tokens) {
		return token{}, errors.New("expr: missing literal")
	}
	tok := p.tokens[p.pos]
	p.pos++
	switch tok.kind {
	case tokString, tokNumber, tokBool, tokNull:
		return tok, nil
	case tokIdent:
		// bare words compare as strings
		return token{kind: tokString, raw: tok.raw}, nil
	default:
		return token{}, fmt.Errorf("expr: expected literal, got %q", tok.raw)
	}
}

func (p *parser) track(ident string) {
	for _, existing := range p.idents {
		if existing == ident {
			return
		}
	}
	p.idents = append(p.idents, ident)
}

func opSymbol(op tokenKind) string {
	switch op {
	case tokEq:
		return "=="
	case tokNeq:
		return "!="
	case tokLt:
		return "<"
	case tokLte:
		return "<="
	case tokGt:
		return ">"
	case tokGte:
		return ">="
	default:
		return "?"
	}
}
