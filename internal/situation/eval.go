package situation

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidPeriod    = errors.New("invalid period")
	ErrUnknownAccount   = errors.New("unknown account")
	ErrUnknownIndicator = errors.New("unknown indicator")
	ErrDivisionByZero   = errors.New("division by zero")
	ErrRecursion        = errors.New("indicator nesting too deep")
)

// Source resolves the two lookups an expression may perform. Periods are
// 1-based positions in the analysed series.
type Source interface {
	Account(code string, period int) (decimal.Decimal, error)
	Indicator(name string, period int) (decimal.Decimal, error)
}

// Eval evaluates x against src. period is inherited by lookups that do not
// name one; zero means none.
func Eval(x Expr, src Source, period int) (decimal.Decimal, error) {
	return x.eval(&env{src: src, period: period})
}

type env struct {
	src    Source
	period int
}

func (e *env) resolvePeriod(x Expr) (int, error) {
	if x == nil {
		if e.period < 1 {
			return 0, ErrInvalidPeriod
		}
		return e.period, nil
	}
	v, err := x.eval(e)
	if err != nil {
		return 0, err
	}
	if !v.IsInteger() || v.Sign() <= 0 {
		return 0, fmt.Errorf("%w: %s", ErrInvalidPeriod, v)
	}
	return int(v.IntPart()), nil
}

func (n numberLit) eval(*env) (decimal.Decimal, error) { return n.v, nil }

func (n negExpr) eval(e *env) (decimal.Decimal, error) {
	v, err := n.x.eval(e)
	return v.Neg(), err
}

func (n absExpr) eval(e *env) (decimal.Decimal, error) {
	v, err := n.x.eval(e)
	return v.Abs(), err
}

func (n binaryExpr) eval(e *env) (decimal.Decimal, error) {
	l, err := n.l.eval(e)
	if err != nil {
		return decimal.Zero, err
	}
	r, err := n.r.eval(e)
	if err != nil {
		return decimal.Zero, err
	}
	switch n.op {
	case tokPlus:
		return l.Add(r), nil
	case tokMinus:
		return l.Sub(r), nil
	case tokStar:
		return l.Mul(r), nil
	case tokSlash:
		if r.IsZero() {
			return decimal.Zero, ErrDivisionByZero
		}
		return l.Div(r), nil
	}
	return decimal.Zero, fmt.Errorf("unknown operator %d", n.op)
}

func (n accountRef) eval(e *env) (decimal.Decimal, error) {
	p, err := e.resolvePeriod(n.period)
	if err != nil {
		return decimal.Zero, fmt.Errorf("account %s: %w", n.code, err)
	}
	return e.src.Account(n.code, p)
}

func (n indicatorRef) eval(e *env) (decimal.Decimal, error) {
	p, err := e.resolvePeriod(n.period)
	if err != nil {
		return decimal.Zero, fmt.Errorf("indicator %s: %w", n.name, err)
	}
	return e.src.Indicator(n.name, p)
}

// Operator compares two evaluated sides of a Formula.
type Operator string

var operators = map[Operator]func(int) bool{
	">":   func(c int) bool { return c > 0 },
	">=":  func(c int) bool { return c >= 0 },
	"<":   func(c int) bool { return c < 0 },
	"<=":  func(c int) bool { return c <= 0 },
	"==":  func(c int) bool { return c == 0 },
	"===": func(c int) bool { return c == 0 },
	"!=":  func(c int) bool { return c != 0 },
	"!==": func(c int) bool { return c != 0 },
}

// Formula is a single comparison "expression operator value".
type Formula struct {
	Expression string   `yaml:"expression" json:"expression"`
	Operator   Operator `yaml:"operator" json:"operator"`
	Value      string   `yaml:"value" json:"value"`
}

type compiledFormula struct {
	l, r Expr
	cmp  func(int) bool
}

func (f Formula) compile() (compiledFormula, error) {
	cmp, ok := operators[f.Operator]
	if !ok {
		return compiledFormula{}, fmt.Errorf("unknown operator %q", f.Operator)
	}
	l, err := Parse(f.Expression)
	if err != nil {
		return compiledFormula{}, err
	}
	r, err := Parse(f.Value)
	if err != nil {
		return compiledFormula{}, err
	}
	return compiledFormula{l: l, r: r, cmp: cmp}, nil
}

func (f compiledFormula) holds(src Source) (bool, error) {
	l, err := Eval(f.l, src, 0)
	if err != nil {
		return false, err
	}
	r, err := Eval(f.r, src, 0)
	if err != nil {
		return false, err
	}
	return f.cmp(l.Cmp(r)), nil
}
