package condition

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/nexsupply/nexi/pkg/domain"
)

type tokKind int

const (
	tokIdent tokKind = iota
	tokString
	tokNumber
	tokOp
	tokLParen
	tokRParen
)

type token struct {
	kind tokKind
	text string
	pos  int
}

var operators = []string{"||", "&&", "==", "!=", ">=", "<=", ">", "<", "!"}

func lex(src string) ([]token, error) {
	var toks []token
	i := 0
	for i < len(src) {
		c := rune(src[i])
		switch {
		case unicode.IsSpace(c):
			i++
		case c == '(':
			toks = append(toks, token{tokLParen, "(", i})
			i++
		case c == ')':
			toks = append(toks, token{tokRParen, ")", i})
			i++
		case c == '\'' || c == '"':
			end := strings.IndexRune(src[i+1:], c)
			if end < 0 {
				return nil, fmt.Errorf("unterminated string at %d", i)
			}
			toks = append(toks, token{tokString, src[i+1 : i+1+end], i})
			i += end + 2
		case unicode.IsDigit(c) || (c == '-' && i+1 < len(src) && unicode.IsDigit(rune(src[i+1]))):
			j := i + 1
			for j < len(src) && (unicode.IsDigit(rune(src[j])) || src[j] == '.') {
				j++
			}
			toks = append(toks, token{tokNumber, src[i:j], i})
			i = j
		case unicode.IsLetter(c) || c == '_':
			j := i + 1
			for j < len(src) && (unicode.IsLetter(rune(src[j])) || unicode.IsDigit(rune(src[j])) || src[j] == '_' || src[j] == '.') {
				j++
			}
			toks = append(toks, token{tokIdent, src[i:j], i})
			i = j
		default:
			matched := false
			for _, op := range operators {
				if strings.HasPrefix(src[i:], op) {
					toks = append(toks, token{tokOp, op, i})
					i += len(op)
					matched = true
					break
				}
			}
			if !matched {
				return nil, fmt.Errorf("unexpected character %q at %d", c, i)
			}
		}
	}
	return toks, nil
}

type parser struct {
	toks []token
	pos  int
}

// Parse compiles expression. An empty expression is an error; callers
// treat a missing condition as "always".
func Parse(expression string) (Expr, error) {
	toks, err := lex(expression)
	if err != nil {
		return nil, fmt.Errorf("condition %q: %w", expression, err)
	}
	if len(toks) == 0 {
		return nil, fmt.Errorf("condition is empty")
	}
	p := &parser{toks: toks}
	e, err := p.parseOr()
	if err != nil {
		return nil, fmt.Errorf("condition %q: %w", expression, err)
	}
	if p.pos != len(p.toks) {
		return nil, fmt.Errorf("condition %q: unexpected %q at %d", expression, p.toks[p.pos].text, p.toks[p.pos].pos)
	}
	return e, nil
}

func (p *parser) peek() (token, bool) {
	if p.pos >= len(p.toks) {
		return token{}, false
	}
	return p.toks[p.pos], true
}

func (p *parser) acceptOp(ops ...string) (string, bool) {
	t, ok := p.peek()
	if !ok || t.kind != tokOp {
		return "", false
	}
	for _, op := range ops {
		if t.text == op {
			p.pos++
			return op, true
		}
	}
	return "", false
}

func (p *parser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for {
		if _, ok := p.acceptOp("||"); !ok {
			return left, nil
		}
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = orExpr{left, right}
	}
}

func (p *parser) parseAnd() (Expr, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		if _, ok := p.acceptOp("&&"); !ok {
			return left, nil
		}
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = andExpr{left, right}
	}
}

func (p *parser) parseUnary() (Expr, error) {
	if _, ok := p.acceptOp("!"); ok {
		inner, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return notExpr{inner}, nil
	}
	if t, ok := p.peek(); ok && t.kind == tokLParen {
		p.pos++
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if t, ok := p.peek(); !ok || t.kind != tokRParen {
			return nil, fmt.Errorf("missing closing parenthesis")
		}
		p.pos++
		return inner, nil
	}
	return p.parseCompare()
}

func (p *parser) parseCompare() (Expr, error) {
	left, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	op, ok := p.acceptOp("==", "!=", ">=", "<=", ">", "<")
	if !ok {
		return truthyExpr{left}, nil
	}
	right, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	return compareExpr{op: op, left: left, right: right}, nil
}

func (p *parser) parseOperand() (operand, error) {
	t, ok := p.peek()
	if !ok {
		return operand{}, fmt.Errorf("unexpected end of expression")
	}
	p.pos++
	switch t.kind {
	case tokString:
		return operand{literal: t.text}, nil
	case tokNumber:
		f, err := strconv.ParseFloat(t.text, 64)
		if err != nil {
			return operand{}, fmt.Errorf("invalid number %q", t.text)
		}
		return operand{literal: f}, nil
	case tokIdent:
		switch {
		case t.text == "input":
			return operand{isInput: true}, nil
		case strings.HasPrefix(t.text, answersPrefix):
			id := strings.TrimPrefix(t.text, answersPrefix)
			if id == "" {
				return operand{}, fmt.Errorf("missing answer id at %d", t.pos)
			}
			return operand{ref: id}, nil
		case t.text == "true":
			return operand{literal: true}, nil
		case t.text == "false":
			return operand{literal: false}, nil
		case t.text == domain.SentinelSkipped || t.text == domain.SentinelNotSure:
			return operand{literal: t.text}, nil
		}
		return operand{}, fmt.Errorf("unknown identifier %q at %d", t.text, t.pos)
	}
	return operand{}, fmt.Errorf("unexpected %q at %d", t.text, t.pos)
}
