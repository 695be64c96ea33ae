package analytics

import (
	"time"

	"github.com/shopspring/decimal"
)

// window is a chunk and the neighbours its flows are measured against.
type window struct {
	cur          []Metrics
	previous     []Metrics
	previousYear []Metrics
	january      []Metrics
	size         int
	first        bool
	closedMonth  int
}

func newWindow(groups [][]Metrics, i, size int, now time.Time) window {
	w := window{cur: groups[i], size: size, closedMonth: -1}
	start := w.cur[0].Period
	month0 := start.Month - 1

	if i > 0 {
		w.previous = groups[i-1]
	}
	if back := i - 12/size; back >= 0 && groups[back][0].Period.Month == start.Month {
		w.previousYear = groups[back]
	}
	if size == 1 && month0 != 0 && i-month0 >= 0 {
		w.january = groups[i-month0]
	}
	w.first = size == 12 || month0 < size || w.previous == nil
	if size == 12 && start.Year == now.Year() {
		w.closedMonth = int(now.Month()) - 2
	}
	return w
}

// pick returns the month a flow is read from: the last closed month when
// the yearly chunk covers the running year, otherwise the chunk's last month.
func (w window) pick(ms []Metrics) Metrics {
	if w.closedMonth >= 0 && w.closedMonth < len(ms) {
		return ms[w.closedMonth]
	}
	return ms[len(ms)-1]
}

func last(ms []Metrics) Metrics {
	return ms[len(ms)-1]
}

// flow reads a cumulative value as the amount that accrued within the chunk.
func (w window) flow(get func(Metrics) decimal.Decimal, abs bool) decimal.Decimal {
	v := get(w.pick(w.cur))
	if abs {
		v = v.Abs()
	}
	if w.first {
		return v
	}
	p := get(w.pick(w.previous))
	if abs {
		p = p.Abs()
	}
	return v.Sub(p)
}

func combine(groups [][]Metrics, i, size int, now time.Time) Metrics {
	w := newWindow(groups, i, size, now)
	end := last(w.cur)
	start := w.cur[0]

	return Metrics{
		Date:        start.Date,
		Period:      start.Period,
		Summary:     w.summary(end),
		Revenue:     RevenueEvolution{Revenue: w.flow(func(m Metrics) decimal.Decimal { return m.Revenue.Revenue }, false)},
		Costs:       w.costs(),
		Expenses:    w.expenses(),
		Result:      w.result(),
		Treasury:    w.treasury(end),
		Assets:      assetsAbs(end.Assets),
		Liabilities: liabilitiesAbs(end.Liabilities),
		Indicators:  end.Indicators,
	}
}

func (w window) summary(end Metrics) Summary {
	s := end.Summary
	s.Result.Spending = s.Result.Spending.Abs()
	if w.january != nil {
		cash := last(w.january).Summary.Cash
		s.PreviousCash = &cash
	}
	return s
}

func (w window) costs() CostsEvolution {
	abs := func(get func(Metrics) decimal.Decimal) decimal.Decimal { return w.flow(get, true) }
	return CostsEvolution{
		Costs: abs(func(m Metrics) decimal.Decimal { return m.Costs.Costs }),
		Expenses: ExpenseBreakdown{
			Operating: abs(func(m Metrics) decimal.Decimal { return m.Costs.Expenses.Operating }),
			Taxes:     abs(func(m Metrics) decimal.Decimal { return m.Costs.Expenses.Taxes }),
			Financial: abs(func(m Metrics) decimal.Decimal { return m.Costs.Expenses.Financial }),
		},
	}
}

func (w window) expenses() ExpensesComposition {
	abs := func(get func(Metrics) decimal.Decimal) decimal.Decimal { return w.flow(get, true) }
	return ExpensesComposition{
		Payroll: PayrollExpenses{
			Total:      abs(func(m Metrics) decimal.Decimal { return m.Expenses.Payroll.Total }),
			Salaries:   abs(func(m Metrics) decimal.Decimal { return m.Expenses.Payroll.Salaries }),
			Benefits:   abs(func(m Metrics) decimal.Decimal { return m.Expenses.Payroll.Benefits }),
			Charges:    abs(func(m Metrics) decimal.Decimal { return m.Expenses.Payroll.Charges }),
			Provisions: abs(func(m Metrics) decimal.Decimal { return m.Expenses.Payroll.Provisions }),
		},
		MarketingSales: abs(func(m Metrics) decimal.Decimal { return m.Expenses.MarketingSales }),
		AdminAndOther: AdminExpenses{
			Total:          abs(func(m Metrics) decimal.Decimal { return m.Expenses.AdminAndOther.Total }),
			Administrative: abs(func(m Metrics) decimal.Decimal { return m.Expenses.AdminAndOther.Administrative }),
			Depreciation:   abs(func(m Metrics) decimal.Decimal { return m.Expenses.AdminAndOther.Depreciation }),
			Services:       abs(func(m Metrics) decimal.Decimal { return m.Expenses.AdminAndOther.Services }),
			Other:          abs(func(m Metrics) decimal.Decimal { return m.Expenses.AdminAndOther.Other }),
			NonOperating:   abs(func(m Metrics) decimal.Decimal { return m.Expenses.AdminAndOther.NonOperating }),
		},
		Taxes: TaxExpenses{
			Total:        abs(func(m Metrics) decimal.Decimal { return m.Expenses.Taxes.Total }),
			Fees:         abs(func(m Metrics) decimal.Decimal { return m.Expenses.Taxes.Fees }),
			IncomeTaxes:  abs(func(m Metrics) decimal.Decimal { return m.Expenses.Taxes.IncomeTaxes }),
			Returns:      abs(func(m Metrics) decimal.Decimal { return m.Expenses.Taxes.Returns }),
			RevenueTaxes: abs(func(m Metrics) decimal.Decimal { return m.Expenses.Taxes.RevenueTaxes }),
		},
		FinancialInterest: abs(func(m Metrics) decimal.Decimal { return m.Expenses.FinancialInterest }),
	}
}

func (w window) result() Result {
	r := Result{
		Revenue:    w.flow(func(m Metrics) decimal.Decimal { return m.Result.Revenue }, true),
		NetRevenue: w.flow(func(m Metrics) decimal.Decimal { return m.Result.NetRevenue }, true),
		Cost:       w.flow(func(m Metrics) decimal.Decimal { return m.Result.Cost }, true),
		Expense:    w.flow(func(m Metrics) decimal.Decimal { return m.Result.Expense }, true),
		Profit:     w.flow(func(m Metrics) decimal.Decimal { return m.Result.Profit }, false),
	}
	if !r.NetRevenue.IsZero() {
		r.GrossMargin = r.NetRevenue.Sub(r.Cost).Div(r.NetRevenue).Mul(hundred)
		r.NetMargin = r.Profit.Div(r.NetRevenue).Mul(hundred)
	}
	return r
}

func (w window) treasury(end Metrics) Treasury {
	t := end.Treasury
	ref := w.previous
	if w.size == 12 {
		ref = w.previousYear
	}
	if ref != nil {
		cash := last(ref).Treasury.Cash
		t.PreviousCash = &cash
	}
	return t
}

func assetsAbs(a AssetComposition) AssetComposition {
	a.NonCurrent = NonCurrentAssets{
		LongTerm:    a.NonCurrent.LongTerm.Abs(),
		Investments: a.NonCurrent.Investments.Abs(),
		FixedAssets: a.NonCurrent.FixedAssets.Abs(),
	}
	return a
}

func liabilitiesAbs(l LiabilityComposition) LiabilityComposition {
	l.NonCurrent = NonCurrentLiabilities{
		Financing: l.NonCurrent.Financing.Abs(),
		Equity:    l.NonCurrent.Equity.Abs(),
		Other:     l.NonCurrent.Other.Abs(),
	}
	return l
}
