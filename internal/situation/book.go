package situation

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/finspect-dev/finspect/internal/analytics"
	"github.com/finspect-dev/finspect/internal/model"
)

const maxIndicatorDepth = 8

// Indicator is a named formula over account lookups. Lookups inside the
// formula that name no period inherit the period the indicator is asked for.
type Indicator struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Formula     string `yaml:"formula" json:"formula"`
}

// Book serves account and indicator lookups over an ordered series of
// standardized sheets. Period 1 is the first sheet.
type Book struct {
	sheets   []model.BalanceSheet
	accounts []map[string]decimal.Decimal
	formulas map[string]Expr
	builtins []map[string]decimal.Decimal
	depth    int
	parent   *Book
}

// NewBook compiles the indicator formulas. Names are matched case-insensitively.
func NewBook(sheets []model.BalanceSheet, indicators []Indicator) (*Book, error) {
	b := &Book{
		sheets:   sheets,
		accounts: make([]map[string]decimal.Decimal, len(sheets)),
		formulas: make(map[string]Expr, len(indicators)),
		builtins: make([]map[string]decimal.Decimal, len(sheets)),
	}
	for i, s := range sheets {
		b.accounts[i] = s.AccountMap()
	}
	for _, ind := range indicators {
		x, err := Parse(ind.Formula)
		if err != nil {
			return nil, fmt.Errorf("indicator %q: %w", ind.Name, err)
		}
		b.formulas[strings.ToLower(ind.Name)] = x
	}
	return b, nil
}

// Len returns the number of periods in the book.
func (b *Book) Len() int { return len(b.accounts) }

func (b *Book) root() *Book {
	if b.parent != nil {
		return b.parent
	}
	return b
}

// Account returns the current balance of code in period.
func (b *Book) Account(code string, period int) (decimal.Decimal, error) {
	r := b.root()
	if period < 1 || period > len(r.accounts) {
		return decimal.Zero, fmt.Errorf("%w: %d", ErrInvalidPeriod, period)
	}
	v, ok := r.accounts[period-1][code]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrUnknownAccount, code)
	}
	return v, nil
}

// Indicator evaluates a user formula, or failing that a built-in dashboard
// indicator addressed by dotted name such as "liquidity.current".
func (b *Book) Indicator(name string, period int) (decimal.Decimal, error) {
	r := b.root()
	if period < 1 || period > len(r.accounts) {
		return decimal.Zero, fmt.Errorf("%w: %d", ErrInvalidPeriod, period)
	}
	key := strings.ToLower(name)
	if x, ok := r.formulas[key]; ok {
		if b.depth >= maxIndicatorDepth {
			return decimal.Zero, fmt.Errorf("%w: %s", ErrRecursion, name)
		}
		nested := &Book{parent: r, depth: b.depth + 1}
		return Eval(x, nested, period)
	}
	if v, ok := r.builtin(period)[key]; ok {
		return v, nil
	}
	return decimal.Zero, fmt.Errorf("%w: %s", ErrUnknownIndicator, name)
}

func (b *Book) builtin(period int) map[string]decimal.Decimal {
	i := period - 1
	if b.builtins[i] == nil {
		m := analytics.Derive(analytics.Book(b.accounts[i]), b.sheets[i].Period)
		flat := m.Indicators.Flatten()
		lower := make(map[string]decimal.Decimal, len(flat))
		for k, v := range flat {
			lower[strings.ToLower(k)] = v
		}
		b.builtins[i] = lower
	}
	return b.builtins[i]
}
