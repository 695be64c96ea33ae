package analytics

import (
	"github.com/shopspring/decimal"

	"github.com/finspect-dev/finspect/internal/period"
)

// Book is a balance sheet reduced to current balance by canonical code.
// Missing codes read as zero.
type Book map[string]decimal.Decimal

func (b Book) get(code string) decimal.Decimal {
	return b[code]
}

func (b Book) sum(codes ...string) decimal.Decimal {
	total := decimal.Zero
	for _, c := range codes {
		total = total.Add(b[c])
	}
	return total
}

// ratio divides n by d, yielding zero when d is zero.
func ratio(n, d decimal.Decimal) decimal.Decimal {
	if d.IsZero() {
		return decimal.Zero
	}
	return n.Div(d)
}

var hundred = decimal.NewFromInt(100)

// Derive computes the month-level metrics of a single book.
func Derive(b Book, p period.Period) Metrics {
	m := Metrics{Date: p.Slash(), Period: p}
	m.Indicators = indicators(b)
	m.Costs = costsEvolution(b)
	m.Treasury = treasury(b, m.Indicators)
	m.Assets = assetComposition(b)
	m.Liabilities = liabilityComposition(b)
	m.Revenue = RevenueEvolution{Revenue: b.get("3.01.01.01")}
	m.Expenses = expensesComposition(b)
	m.Result = result(b, m.Costs)
	m.Summary = summary(b, m)
	return m
}

func summary(b Book, m Metrics) Summary {
	revenue := b.get("3.01.00.00")
	profit := b.sum("3.01.00.00", "3.02.00.00")
	return Summary{
		Result: SummaryResult{
			Revenue:  revenue,
			Spending: revenue.Sub(profit),
			Profit:   profit,
		},
		Cash: m.Treasury.Cash,
		Profitability: ReturnRates{
			ROE: ratio(b.get("3.00.00.00"), b.get("2.03.00.00")),
			ROA: ratio(b.get("3.00.00.00"), b.get("1.00.00.00")),
		},
		WorkingCapitalNeed: b.get("1.01.02.00").Sub(b.get("2.01.02.00")),
		Composition: CurrentCompositions{
			Assets:      m.Assets.Current,
			Liabilities: m.Liabilities.Current,
		},
	}
}

func costsEvolution(b Book) CostsEvolution {
	return CostsEvolution{
		Costs: b.get("3.02.01.00"),
		Expenses: ExpenseBreakdown{
			Operating: b.sum("3.02.03.00",
				"3.02.02.01", "3.02.02.02", "3.02.02.03", "3.02.02.04", "3.02.02.05",
				"3.02.02.06", "3.02.02.07", "3.02.02.09", "3.02.02.10"),
			Taxes:     b.sum("3.02.02.08", "3.02.05.00", "3.01.01.02", "3.01.01.03"),
			Financial: b.get("3.02.04.00"),
		},
	}
}

func expensesComposition(b Book) ExpensesComposition {
	payroll := PayrollExpenses{
		Salaries:   b.get("3.02.02.01"),
		Benefits:   b.get("3.02.02.02"),
		Charges:    b.get("3.02.02.03"),
		Provisions: b.get("3.02.02.04"),
	}
	payroll.Total = payroll.Salaries.Add(payroll.Benefits).Add(payroll.Charges).Add(payroll.Provisions)

	admin := AdminExpenses{
		Administrative: b.get("3.02.02.06"),
		Depreciation:   b.get("3.02.02.10"),
		Services:       b.get("3.02.02.07"),
		Other:          b.get("3.02.02.09"),
		NonOperating:   b.get("3.02.03.01"),
	}
	admin.Total = admin.Administrative.Add(admin.Depreciation).Add(admin.Services).Add(admin.Other).Add(admin.NonOperating)

	taxes := TaxExpenses{
		Fees:         b.get("3.02.02.08"),
		IncomeTaxes:  b.get("3.02.05.00"),
		Returns:      b.get("3.01.01.02"),
		RevenueTaxes: b.get("3.01.01.03"),
	}
	taxes.Total = taxes.Fees.Add(taxes.IncomeTaxes).Add(taxes.Returns).Add(taxes.RevenueTaxes)

	return ExpensesComposition{
		Payroll:           payroll,
		MarketingSales:    b.get("3.02.02.05"),
		AdminAndOther:     admin,
		Taxes:             taxes,
		FinancialInterest: b.get("3.02.04.01"),
	}
}

func result(b Book, costs CostsEvolution) Result {
	revenue := b.sum("3.01.01.01", "3.01.02.00", "3.01.03.01", "3.01.04.00")
	profit := b.get("3.00.00.00")
	return Result{
		Revenue:    revenue,
		NetRevenue: b.get("3.01.01.00"),
		Cost:       costs.Costs,
		Expense:    profit.Sub(revenue).Sub(costs.Costs),
		Profit:     profit,
	}
}

func treasury(b Book, ind MainIndicators) Treasury {
	return Treasury{
		Cash:               b.sum("1.01.01.01", "1.01.01.02"),
		CurrentLiquidity:   ind.Liquidity.Current,
		QuickLiquidity:     ind.Liquidity.Quick,
		ImmediateLiquidity: ind.Liquidity.Immediate,
	}
}

func assetComposition(b Book) AssetComposition {
	cur := CurrentAssets{
		CashEquivalents: b.get("1.01.01.00"),
		Receivables:     b.get("1.01.02.01"),
		Inventory:       b.get("1.01.02.02"),
	}
	cur.OtherCredits = b.get("1.01.00.00").Sub(cur.CashEquivalents).Sub(cur.Receivables).Sub(cur.Inventory)
	return AssetComposition{
		Current: cur,
		NonCurrent: NonCurrentAssets{
			LongTerm:    b.get("1.02.01.00"),
			Investments: b.get("1.02.02.00"),
			FixedAssets: b.get("1.02.03.00"),
		},
	}
}

func liabilityComposition(b Book) LiabilityComposition {
	cur := CurrentLiabilities{
		Suppliers:   b.sum("2.01.02.03", "2.01.02.04"),
		Loans:       b.get("2.01.01.01"),
		LaborAndTax: b.sum("2.01.02.01", "2.01.02.02", "2.01.02.05", "2.01.02.06"),
	}
	cur.Other = b.get("2.01.00.00").Sub(cur.Suppliers).Sub(cur.Loans).Sub(cur.LaborAndTax)
	financing := b.get("2.02.01.01")
	return LiabilityComposition{
		Current: cur,
		NonCurrent: NonCurrentLiabilities{
			Financing: financing,
			Equity:    b.get("2.03.00.00"),
			Other:     b.get("2.02.00.00").Sub(financing),
		},
	}
}

func indicators(b Book) MainIndicators {
	currentAssets := b.get("1.01.00.00")
	currentLiabilities := b.get("2.01.00.00")
	longTermDebt := b.get("2.02.01.00")
	equity := b.get("2.03.00.00")
	netProfit := b.get("3.00.00.00")
	grossRevenue := b.get("3.01.01.00")
	cash := b.sum("1.01.01.01", "1.01.01.02")
	grossDebt := b.sum("2.01.01.01", "2.02.01.01")
	netDebt := grossDebt.Sub(cash)
	thirdParty := currentLiabilities.Add(longTermDebt)

	ebitda := b.sum("3.01.01.00", "3.02.01.00", "3.02.02.00", "3.01.03.01").
		Sub(b.get("3.02.01.02")).
		Sub(b.get("3.02.02.10"))
	workingCapitalNeed := b.get("1.01.02.00").Sub(b.get("2.01.02.00"))

	return MainIndicators{
		Liquidity: Liquidity{
			General:   ratio(currentAssets.Add(b.get("1.02.01.00")), thirdParty),
			Current:   ratio(currentAssets, currentLiabilities),
			Quick:     ratio(currentAssets.Sub(b.get("1.01.02.02")), currentLiabilities),
			Immediate: ratio(cash, currentLiabilities),
		},
		Structure: Structure{
			FixedAssetsToEquity:    ratio(b.get("1.02.03.00"), equity),
			ThirdPartyCapitalShare: ratio(thirdParty, equity),
			BankDebt:               ratio(grossDebt, equity),
			DebtComposition:        ratio(currentLiabilities, thirdParty),
			ThirdPartyCapital:      thirdParty,
			EquityCoverage:         ratio(equity, thirdParty),
			CapitalComposition:     ratio(equity, b.get("1.00.00.00")),
			Solvency:               ratio(b.get("1.00.00.00"), thirdParty),
			NetDebtToEquity:        ratio(netDebt, equity),
		},
		Profitability: Profitability{
			GrossOperatingMargin: ratio(b.sum("3.01.01.00", "3.02.01.00"), grossRevenue),
			NetOperatingMargin: ratio(b.sum("3.01.01.00", "3.02.01.00", "3.02.02.00",
				"3.02.04.00", "3.01.03.00", "3.01.02.00"), grossRevenue),
			NetMargin:       ratio(netProfit, grossRevenue),
			OperatingReturn: ratio(netProfit, b.get("1.00.00.00")),
			ReturnOnEquity:  ratio(netProfit, equity),
		},
		FinancialNeed: FinancialNeed{
			WorkingCapitalNeed:          workingCapitalNeed,
			Treasury:                    b.get("1.01.01.00").Sub(b.get("2.01.01.00")),
			NetWorkingCapital:           currentAssets.Sub(currentLiabilities),
			LongTermFlow:                b.get("1.02.01.00").Sub(longTermDebt),
			OwnWorkingCapital:           equity.Sub(b.get("1.02.03.00")),
			WorkingCapitalNeedToRevenue: ratio(workingCapitalNeed, grossRevenue),
		},
		Coverage: Coverage{
			InterestCoverage:  ratio(ebitda, b.sum("3.01.02.00", "3.02.04.00")),
			NetDebtToEBITDA:   ratio(netDebt, ebitda),
			EBITDA:            ebitda,
			EBITDAToGrossDebt: ratio(ebitda, grossDebt),
			EBITDAToNetDebt:   ratio(ebitda, netDebt),
		},
	}
}
