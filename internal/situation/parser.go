package situation

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Expr is a parsed arithmetic expression. The node set is closed: numbers,
// the four operators, unary minus, abs, and the account and indicator lookups.
type Expr interface {
	eval(e *env) (decimal.Decimal, error)
}

type (
	numberLit struct{ v decimal.Decimal }
	negExpr   struct{ x Expr }
	absExpr   struct{ x Expr }

	binaryExpr struct {
		op   tokenKind
		l, r Expr
	}

	// period is nil when the lookup inherits the enclosing period.
	accountRef struct {
		code   string
		period Expr
	}
	indicatorRef struct {
		name   string
		period Expr
	}
)

// Parse parses an arithmetic expression such as
// "conta('1.01.00.00', 1) / conta('2.01.00.00', 1)".
func Parse(src string) (Expr, error) {
	p, err := newParser(src)
	if err != nil {
		return nil, err
	}
	x, err := p.expr()
	if err != nil {
		return nil, err
	}
	if err := p.expect(tokEOF); err != nil {
		return nil, err
	}
	return x, nil
}

type parser struct {
	src  string
	toks []token
	i    int
}

func newParser(src string) (*parser, error) {
	toks, err := lex(src)
	if err != nil {
		return nil, err
	}
	return &parser{src: src, toks: toks}, nil
}

func (p *parser) peek() token { return p.toks[p.i] }

func (p *parser) next() token {
	t := p.toks[p.i]
	if t.kind != tokEOF {
		p.i++
	}
	return t
}

func (p *parser) errorf(t token, format string, args ...any) error {
	return &SyntaxError{Source: p.src, Pos: t.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) expect(kind tokenKind) error {
	t := p.next()
	if t.kind != kind {
		return p.errorf(t, "unexpected %s", t)
	}
	return nil
}

func (p *parser) expr() (Expr, error) {
	l, err := p.term()
	if err != nil {
		return nil, err
	}
	for k := p.peek().kind; k == tokPlus || k == tokMinus; k = p.peek().kind {
		p.next()
		r, err := p.term()
		if err != nil {
			return nil, err
		}
		l = binaryExpr{op: k, l: l, r: r}
	}
	return l, nil
}

func (p *parser) term() (Expr, error) {
	l, err := p.unary()
	if err != nil {
		return nil, err
	}
	for k := p.peek().kind; k == tokStar || k == tokSlash; k = p.peek().kind {
		p.next()
		r, err := p.unary()
		if err != nil {
			return nil, err
		}
		l = binaryExpr{op: k, l: l, r: r}
	}
	return l, nil
}

func (p *parser) unary() (Expr, error) {
	switch p.peek().kind {
	case tokMinus:
		p.next()
		x, err := p.unary()
		if err != nil {
			return nil, err
		}
		return negExpr{x}, nil
	case tokPlus:
		p.next()
		return p.unary()
	}
	return p.primary()
}

func (p *parser) primary() (Expr, error) {
	t := p.next()
	switch t.kind {
	case tokNumber:
		v, err := decimal.NewFromString(t.text)
		if err != nil {
			return nil, p.errorf(t, "invalid number %q", t.text)
		}
		return numberLit{v}, nil
	case tokLParen:
		x, err := p.expr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(tokRParen); err != nil {
			return nil, err
		}
		return x, nil
	case tokIdent:
		return p.call(t)
	}
	return nil, p.errorf(t, "unexpected %s", t)
}

func (p *parser) call(name token) (Expr, error) {
	if err := p.expect(tokLParen); err != nil {
		return nil, err
	}
	switch strings.ToLower(name.text) {
	case "conta", "account":
		code, period, err := p.lookupArgs()
		if err != nil {
			return nil, err
		}
		return accountRef{code: code, period: period}, nil
	case "indicador", "indicator":
		ind, period, err := p.lookupArgs()
		if err != nil {
			return nil, err
		}
		return indicatorRef{name: ind, period: period}, nil
	case "abs":
		x, err := p.expr()
		if err != nil {
			return nil, err
		}
		if err := p.expect(tokRParen); err != nil {
			return nil, err
		}
		return absExpr{x}, nil
	}
	return nil, p.errorf(name, "unknown function %q", name.text)
}

// lookupArgs parses "'<key>' [, <period>] )".
func (p *parser) lookupArgs() (string, Expr, error) {
	t := p.next()
	if t.kind != tokString {
		return "", nil, p.errorf(t, "expected quoted name, got %s", t)
	}
	var period Expr
	if p.peek().kind == tokComma {
		p.next()
		x, err := p.expr()
		if err != nil {
			return "", nil, err
		}
		period = x
	}
	if err := p.expect(tokRParen); err != nil {
		return "", nil, err
	}
	return t.text, period, nil
}
