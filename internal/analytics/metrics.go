// Package analytics derives dashboard metrics from standardized balance sheets.
package analytics

import (
	"github.com/shopspring/decimal"

	"github.com/finspect-dev/finspect/internal/period"
)

// Metrics holds every metric group for one month or one chunk.
type Metrics struct {
	Date        string               `json:"date"`
	Summary     Summary              `json:"summary"`
	Revenue     RevenueEvolution     `json:"revenueEvolution"`
	Costs       CostsEvolution       `json:"costsEvolution"`
	Expenses    ExpensesComposition  `json:"expensesComposition"`
	Result      Result               `json:"result"`
	Treasury    Treasury             `json:"simpleTreasury"`
	Assets      AssetComposition     `json:"assetComposition"`
	Liabilities LiabilityComposition `json:"liabilityComposition"`
	Indicators  MainIndicators       `json:"indicators"`

	Period period.Period `json:"-"`
}

type Summary struct {
	Result             SummaryResult       `json:"result"`
	Cash               decimal.Decimal     `json:"cash"`
	PreviousCash       *decimal.Decimal    `json:"previousCash,omitempty"`
	Profitability      ReturnRates         `json:"profitability"`
	WorkingCapitalNeed decimal.Decimal     `json:"workingCapitalNeed"`
	Composition        CurrentCompositions `json:"composition"`
}

type SummaryResult struct {
	Revenue  decimal.Decimal `json:"revenue"`
	Spending decimal.Decimal `json:"spending"`
	Profit   decimal.Decimal `json:"profit"`
}

type ReturnRates struct {
	ROE decimal.Decimal `json:"roe"`
	ROA decimal.Decimal `json:"roa"`
}

type CurrentCompositions struct {
	Assets      CurrentAssets      `json:"assets"`
	Liabilities CurrentLiabilities `json:"liabilities"`
}

type RevenueEvolution struct {
	Revenue decimal.Decimal `json:"revenue"`
}

type CostsEvolution struct {
	Costs    decimal.Decimal  `json:"costs"`
	Expenses ExpenseBreakdown `json:"expenses"`
}

type ExpenseBreakdown struct {
	Operating decimal.Decimal `json:"operating"`
	Taxes     decimal.Decimal `json:"taxes"`
	Financial decimal.Decimal `json:"financial"`
}

type ExpensesComposition struct {
	Payroll           PayrollExpenses `json:"payroll"`
	MarketingSales    decimal.Decimal `json:"marketingSales"`
	AdminAndOther     AdminExpenses   `json:"adminAndOther"`
	Taxes             TaxExpenses     `json:"taxes"`
	FinancialInterest decimal.Decimal `json:"financialInterest"`
}

type PayrollExpenses struct {
	Total      decimal.Decimal `json:"total"`
	Salaries   decimal.Decimal `json:"salaries"`
	Benefits   decimal.Decimal `json:"benefits"`
	Charges    decimal.Decimal `json:"charges"`
	Provisions decimal.Decimal `json:"provisions"`
}

type AdminExpenses struct {
	Total          decimal.Decimal `json:"total"`
	Administrative decimal.Decimal `json:"administrative"`
	Depreciation   decimal.Decimal `json:"depreciation"`
	Services       decimal.Decimal `json:"services"`
	Other          decimal.Decimal `json:"other"`
	NonOperating   decimal.Decimal `json:"nonOperating"`
}

type TaxExpenses struct {
	Total        decimal.Decimal `json:"total"`
	Fees         decimal.Decimal `json:"fees"`
	IncomeTaxes  decimal.Decimal `json:"incomeTaxes"`
	Returns      decimal.Decimal `json:"returns"`
	RevenueTaxes decimal.Decimal `json:"revenueTaxes"`
}

type Result struct {
	Revenue     decimal.Decimal `json:"revenue"`
	NetRevenue  decimal.Decimal `json:"netRevenue"`
	Cost        decimal.Decimal `json:"cost"`
	Expense     decimal.Decimal `json:"expense"`
	Profit      decimal.Decimal `json:"profit"`
	GrossMargin decimal.Decimal `json:"grossMargin"`
	NetMargin   decimal.Decimal `json:"netMargin"`
}

type Treasury struct {
	Cash               decimal.Decimal  `json:"cash"`
	PreviousCash       *decimal.Decimal `json:"previousCash,omitempty"`
	CurrentLiquidity   decimal.Decimal  `json:"currentLiquidity"`
	QuickLiquidity     decimal.Decimal  `json:"quickLiquidity"`
	ImmediateLiquidity decimal.Decimal  `json:"immediateLiquidity"`
}

type AssetComposition struct {
	Current    CurrentAssets    `json:"current"`
	NonCurrent NonCurrentAssets `json:"nonCurrent"`
}

type CurrentAssets struct {
	CashEquivalents decimal.Decimal `json:"cashEquivalents"`
	Receivables     decimal.Decimal `json:"receivables"`
	Inventory       decimal.Decimal `json:"inventory"`
	OtherCredits    decimal.Decimal `json:"otherCredits"`
}

type NonCurrentAssets struct {
	LongTerm    decimal.Decimal `json:"longTerm"`
	Investments decimal.Decimal `json:"investments"`
	FixedAssets decimal.Decimal `json:"fixedAssets"`
}

type LiabilityComposition struct {
	Current    CurrentLiabilities    `json:"current"`
	NonCurrent NonCurrentLiabilities `json:"nonCurrent"`
}

type CurrentLiabilities struct {
	Suppliers   decimal.Decimal `json:"suppliers"`
	Loans       decimal.Decimal `json:"loans"`
	LaborAndTax decimal.Decimal `json:"laborAndTax"`
	Other       decimal.Decimal `json:"other"`
}

type NonCurrentLiabilities struct {
	Financing decimal.Decimal `json:"financing"`
	Equity    decimal.Decimal `json:"equity"`
	Other     decimal.Decimal `json:"other"`
}

type MainIndicators struct {
	Liquidity     Liquidity     `json:"liquidity"`
	Structure     Structure     `json:"structure"`
	Profitability Profitability `json:"profitability"`
	FinancialNeed FinancialNeed `json:"financialNeed"`
	Cycle         Cycle         `json:"cycle"`
	Coverage      Coverage      `json:"coverage"`
	CashFlow      CashFlow      `json:"cashFlow"`
}

type Liquidity struct {
	General   decimal.Decimal `json:"general"`
	Current   decimal.Decimal `json:"current"`
	Quick     decimal.Decimal `json:"quick"`
	Immediate decimal.Decimal `json:"immediate"`
}

type Structure struct {
	FixedAssetsToEquity    decimal.Decimal `json:"fixedAssetsToEquity"`
	ThirdPartyCapitalShare decimal.Decimal `json:"thirdPartyCapitalShare"`
	BankDebt               decimal.Decimal `json:"bankDebt"`
	DebtComposition        decimal.Decimal `json:"debtComposition"`
	ThirdPartyCapital      decimal.Decimal `json:"thirdPartyCapital"`
	EquityCoverage         decimal.Decimal `json:"equityCoverage"`
	CapitalComposition     decimal.Decimal `json:"capitalComposition"`
	Solvency               decimal.Decimal `json:"solvency"`
	NetDebtToEquity        decimal.Decimal `json:"netDebtToEquity"`
}

type Profitability struct {
	GrossOperatingMargin    decimal.Decimal `json:"grossOperatingMargin"`
	NetOperatingMargin      decimal.Decimal `json:"netOperatingMargin"`
	NetMargin               decimal.Decimal `json:"netMargin"`
	OperatingAssetTurnover  decimal.Decimal `json:"operatingAssetTurnover"`
	ReturnOnOperatingAssets decimal.Decimal `json:"returnOnOperatingAssets"`
	OperatingReturn         decimal.Decimal `json:"operatingReturn"`
	ReturnOnEquity          decimal.Decimal `json:"returnOnEquity"`
}

type FinancialNeed struct {
	WorkingCapitalNeed          decimal.Decimal `json:"workingCapitalNeed"`
	Treasury                    decimal.Decimal `json:"treasury"`
	NetWorkingCapital           decimal.Decimal `json:"netWorkingCapital"`
	LongTermFlow                decimal.Decimal `json:"longTermFlow"`
	OwnWorkingCapital           decimal.Decimal `json:"ownWorkingCapital"`
	WorkingCapitalNeedToRevenue decimal.Decimal `json:"workingCapitalNeedToRevenue"`
}

// Cycle and CashFlow need turnover data the balance sheet does not carry;
// they are reported as zero.
type Cycle struct {
	Receivables    decimal.Decimal `json:"receivables"`
	Inventory      decimal.Decimal `json:"inventory"`
	Suppliers      decimal.Decimal `json:"suppliers"`
	OperatingCycle decimal.Decimal `json:"operatingCycle"`
	FinancialCycle decimal.Decimal `json:"financialCycle"`
}

type Coverage struct {
	InterestCoverage  decimal.Decimal `json:"interestCoverage"`
	NetDebtToEBITDA   decimal.Decimal `json:"netDebtToEbitda"`
	EBITDA            decimal.Decimal `json:"ebitda"`
	EBITDAToGrossDebt decimal.Decimal `json:"ebitdaToGrossDebt"`
	EBITDAToNetDebt   decimal.Decimal `json:"ebitdaToNetDebt"`
}

type CashFlow struct {
	Operating            decimal.Decimal `json:"operating"`
	OperatingToGrossDebt decimal.Decimal `json:"operatingToGrossDebt"`
}

// Flatten returns the indicators keyed by dotted name, e.g. "liquidity.current".
func (m MainIndicators) Flatten() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		"liquidity.general":                         m.Liquidity.General,
		"liquidity.current":                         m.Liquidity.Current,
		"liquidity.quick":                           m.Liquidity.Quick,
		"liquidity.immediate":                       m.Liquidity.Immediate,
		"structure.fixedAssetsToEquity":             m.Structure.FixedAssetsToEquity,
		"structure.thirdPartyCapitalShare":          m.Structure.ThirdPartyCapitalShare,
		"structure.bankDebt":                        m.Structure.BankDebt,
		"structure.debtComposition":                 m.Structure.DebtComposition,
		"structure.thirdPartyCapital":               m.Structure.ThirdPartyCapital,
		"structure.equityCoverage":                  m.Structure.EquityCoverage,
		"structure.capitalComposition":              m.Structure.CapitalComposition,
		"structure.solvency":                        m.Structure.Solvency,
		"structure.netDebtToEquity":                 m.Structure.NetDebtToEquity,
		"profitability.grossOperatingMargin":        m.Profitability.GrossOperatingMargin,
		"profitability.netOperatingMargin":          m.Profitability.NetOperatingMargin,
		"profitability.netMargin":                   m.Profitability.NetMargin,
		"profitability.operatingAssetTurnover":      m.Profitability.OperatingAssetTurnover,
		"profitability.returnOnOperatingAssets":     m.Profitability.ReturnOnOperatingAssets,
		"profitability.operatingReturn":             m.Profitability.OperatingReturn,
		"profitability.returnOnEquity":              m.Profitability.ReturnOnEquity,
		"financialNeed.workingCapitalNeed":          m.FinancialNeed.WorkingCapitalNeed,
		"financialNeed.treasury":                    m.FinancialNeed.Treasury,
		"financialNeed.netWorkingCapital":           m.FinancialNeed.NetWorkingCapital,
		"financialNeed.longTermFlow":                m.FinancialNeed.LongTermFlow,
		"financialNeed.ownWorkingCapital":           m.FinancialNeed.OwnWorkingCapital,
		"financialNeed.workingCapitalNeedToRevenue": m.FinancialNeed.WorkingCapitalNeedToRevenue,
		"cycle.receivables":                         m.Cycle.Receivables,
		"cycle.inventory":                           m.Cycle.Inventory,
		"cycle.suppliers":                           m.Cycle.Suppliers,
		"cycle.operatingCycle":                      m.Cycle.OperatingCycle,
		"cycle.financialCycle":                      m.Cycle.FinancialCycle,
		"coverage.interestCoverage":                 m.Coverage.InterestCoverage,
		"coverage.netDebtToEbitda":                  m.Coverage.NetDebtToEBITDA,
		"coverage.ebitda":                           m.Coverage.EBITDA,
		"coverage.ebitdaToGrossDebt":                m.Coverage.EBITDAToGrossDebt,
		"coverage.ebitdaToNetDebt":                  m.Coverage.EBITDAToNetDebt,
		"cashFlow.operating":                        m.CashFlow.Operating,
		"cashFlow.operatingToGrossDebt":             m.CashFlow.OperatingToGrossDebt,
	}
}
