// Package rule has the condition language and the rule engine that adjusts
// a weighted score after category scoring.
package rule

import (
	"fmt"
	"strings"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokNumber
	tokString
	tokTrue
	tokFalse
	tokCmp
	tokAnd
	tokOr
	tokNot
	tokLParen
	tokRParen
)

type token struct {
	kind tokenKind
	text string
	pos  int
}

// ParseError reports where a condition stopped making sense.
type ParseError struct {
	Pos int
	Msg string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("at offset %d: %s", e.Pos, e.Msg)
}

var keywords = map[string]tokenKind{
	"and":   tokAnd,
	"or":    tokOr,
	"not":   tokNot,
	"true":  tokTrue,
	"false": tokFalse,
}

// lex splits a condition into tokens.
func lex(src string) ([]token, error) {
	var tokens []token
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++

		case c == '(':
			tokens = append(tokens, token{tokLParen, "(", i})
			i++
		case c == ')':
			tokens = append(tokens, token{tokRParen, ")", i})
			i++

		case c == '&' || c == '|':
			if i+1 >= len(src) || src[i+1] != c {
				return nil, &ParseError{i, fmt.Sprintf("unexpected %q, did you mean %q", string(c), string([]byte{c, c}))}
			}
			kind := tokAnd
			if c == '|' {
				kind = tokOr
			}
			tokens = append(tokens, token{kind, src[i : i+2], i})
			i += 2

		case c == '<' || c == '>' || c == '=' || c == '!':
			start := i
			i++
			if i < len(src) && src[i] == '=' {
				i++
			}
			op := src[start:i]
			switch op {
			case "!":
				tokens = append(tokens, token{tokNot, op, start})
			case "=":
				// A lone "=" is accepted as equality.
				tokens = append(tokens, token{tokCmp, "==", start})
			default:
				tokens = append(tokens, token{tokCmp, op, start})
			}

		case c == '"' || c == '\'':
			start := i
			i++
			var sb strings.Builder
			for i < len(src) && src[i] != c {
				sb.WriteByte(src[i])
				i++
			}
			if i >= len(src) {
				return nil, &ParseError{start, "unterminated string"}
			}
			i++
			tokens = append(tokens, token{tokString, sb.String(), start})

		case isDigit(c) || (c == '-' || c == '.') && i+1 < len(src) && (isDigit(src[i+1]) || src[i+1] == '.'):
			start := i
			i++
			for i < len(src) && (isDigit(src[i]) || src[i] == '.' || src[i] == 'e' || src[i] == 'E' ||
				((src[i] == '-' || src[i] == '+') && (src[i-1] == 'e' || src[i-1] == 'E'))) {
				i++
			}
			tokens = append(tokens, token{tokNumber, src[start:i], start})

		case isIdentStart(c):
			start := i
			for i < len(src) && isIdentPart(src[i]) {
				i++
			}
			word := src[start:i]
			if kind, ok := keywords[strings.ToLower(word)]; ok {
				tokens = append(tokens, token{kind, word, start})
			} else {
				tokens = append(tokens, token{tokIdent, word, start})
			}

		default:
			return nil, &ParseError{i, fmt.Sprintf("unexpected character %q", string(c))}
		}
	}
	tokens = append(tokens, token{tokEOF, "", len(src)})
	return tokens, nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c) || c == '.'
}
