package rule

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/huangsam/scorecard/schema"
)

// maxDepth bounds nesting so hostile input cannot blow the stack.
const maxDepth = 64

// Parse turns a condition such as "credit_score < 500 AND dti > 0.6" into an
// Expr. Grammar, loosest binding first:
//
//	or      = and { ("OR" | "||") and }
//	and     = unary { ("AND" | "&&") unary }
//	unary   = ("NOT" | "!") unary | primary
//	primary = "(" or ")" | operand [ cmp operand ]
func Parse(src string) (Expr, error) {
	if strings.TrimSpace(src) == "" {
		return nil, &ParseError{0, "empty condition"}
	}
	tokens, err := lex(src)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	expr, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.kind != tokEOF {
		return nil, &ParseError{tok.pos, fmt.Sprintf("unexpected %q", tok.text)}
	}
	return expr, nil
}

type parser struct {
	tokens []token
	pos    int
	depth  int
}

func (p *parser) peek() token { return p.tokens[p.pos] }

func (p *parser) next() token {
	tok := p.tokens[p.pos]
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *parser) enter() error {
	p.depth++
	if p.depth > maxDepth {
		return &ParseError{p.peek().pos, "condition nested too deeply"}
	}
	return nil
}

func (p *parser) parseOr() (Expr, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer func() { p.depth-- }()

	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokOr {
		p.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = &logicExpr{and: false, left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseAnd() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.peek().kind == tokAnd {
		p.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = &logicExpr{and: true, left: left, right: right}
	}
	return left, nil
}

func (p *parser) parseUnary() (Expr, error) {
	if p.peek().kind == tokNot {
		p.next()
		if err := p.enter(); err != nil {
			return nil, err
		}
		defer func() { p.depth-- }()
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &notExpr{inner: inner}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (Expr, error) {
	if p.peek().kind == tokLParen {
		open := p.next()
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if tok := p.next(); tok.kind != tokRParen {
			return nil, &ParseError{open.pos, "missing closing parenthesis"}
		}
		return inner, nil
	}

	left, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	if p.peek().kind != tokCmp {
		return &truthExpr{operand: left}, nil
	}
	op := p.next().text
	right, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	return &compareExpr{op: op, left: left, right: right}, nil
}

func (p *parser) parseOperand() (operand, error) {
	tok := p.next()
	switch tok.kind {
	case tokIdent:
		return operand{kind: fieldOperand, name: tok.text}, nil
	case tokNumber:
		f, err := strconv.ParseFloat(tok.text, 64)
		if err != nil {
			return operand{}, &ParseError{tok.pos, fmt.Sprintf("bad number %q", tok.text)}
		}
		return operand{kind: numberOperand, value: schema.NumberValue(f)}, nil
	case tokString:
		return operand{kind: textOperand, value: schema.TextValue(tok.text)}, nil
	case tokTrue:
		return operand{kind: numberOperand, value: schema.NumberValue(1)}, nil
	case tokFalse:
		return operand{kind: numberOperand, value: schema.NumberValue(0)}, nil
	case tokEOF:
		return operand{}, &ParseError{tok.pos, "unexpected end of condition"}
	default:
		return operand{}, &ParseError{tok.pos, fmt.Sprintf("expected a field or literal, got %q", tok.text)}
	}
}
