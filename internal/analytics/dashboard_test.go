package analytics

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finspect-dev/finspect/internal/model"
	"github.com/finspect-dev/finspect/internal/period"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sheet(month, year int, balances map[string]string) model.BalanceSheet {
	s := model.BalanceSheet{CompanyID: "acme", Period: period.Period{Month: month, Year: year}}
	for code, v := range balances {
		acc := model.BalanceSheetAccount{}
		acc.Code = code
		acc.CurrentBalance = dec(v)
		s.Accounts = append(s.Accounts, acc)
	}
	return s
}

// Mid-October 2026: September is the last closed month.
var now = time.Date(2026, time.October, 15, 0, 0, 0, 0, time.UTC)

func chunk(t *testing.T, chunks []Chunk, size int) []Metrics {
	t.Helper()
	for _, c := range chunks {
		if c.Size == size {
			return c.Data
		}
	}
	t.Fatalf("no chunk of size %d", size)
	return nil
}

func TestBuild_ChunkLayout(t *testing.T) {
	chunks := Build(nil, 2024, 2024, now)
	require.Len(t, chunks, 3)

	assert.Len(t, chunk(t, chunks, 1), 24)
	assert.Len(t, chunk(t, chunks, 3), 8)
	assert.Len(t, chunk(t, chunks, 12), 2)

	yearly := chunk(t, chunks, 12)
	assert.Equal(t, "01/2023", yearly[0].Date)
	assert.Equal(t, "01/2024", yearly[1].Date)
	assert.Equal(t, "04/2023", chunk(t, chunks, 3)[1].Date)
}

func TestBuild_QuarterlyRevenueIsDifferenced(t *testing.T) {
	sheets := []model.BalanceSheet{
		sheet(1, 2024, map[string]string{"3.01.01.01": "100"}),
		sheet(2, 2024, map[string]string{"3.01.01.01": "250"}),
		sheet(3, 2024, map[string]string{"3.01.01.01": "400"}),
		sheet(6, 2024, map[string]string{"3.01.01.01": "700"}),
	}
	quarters := chunk(t, Build(sheets, 2024, 2024, now), 3)

	// 2023 fills the first four quarters.
	q1, q2 := quarters[4], quarters[5]
	assert.Equal(t, "01/2024", q1.Date)
	assert.True(t, dec("400").Equal(q1.Revenue.Revenue), q1.Revenue.Revenue.String())
	assert.True(t, dec("300").Equal(q2.Revenue.Revenue), q2.Revenue.Revenue.String())
}

func TestBuild_MonthlyFlowsResetInJanuary(t *testing.T) {
	sheets := []model.BalanceSheet{
		sheet(12, 2023, map[string]string{"3.02.01.00": "-900"}),
		sheet(1, 2024, map[string]string{"3.02.01.00": "-50"}),
		sheet(2, 2024, map[string]string{"3.02.01.00": "-130"}),
	}
	months := chunk(t, Build(sheets, 2024, 2024, now), 1)

	jan, feb := months[12], months[13]
	assert.True(t, dec("50").Equal(jan.Costs.Costs), jan.Costs.Costs.String())
	assert.True(t, dec("80").Equal(feb.Costs.Costs), feb.Costs.Costs.String())
}

func TestBuild_PlaceholderMonthsZeroResults(t *testing.T) {
	sheets := []model.BalanceSheet{
		sheet(3, 2024, map[string]string{"1.01.01.01": "10", "3.01.01.01": "500"}),
		sheet(5, 2024, map[string]string{"1.01.01.01": "30", "3.01.01.01": "900"}),
	}
	books, periods := Books(sheets, 2024, 2024)
	require.Len(t, books, 24)

	// 2023 has no sheet at all.
	assert.Empty(t, books[0])

	// January and February 2024 borrow March, April borrows March, June borrows May.
	jan := books[12]
	assert.Equal(t, period.Period{Month: 1, Year: 2024}, periods[12])
	assert.True(t, dec("10").Equal(jan["1.01.01.01"]))
	assert.True(t, jan["3.01.01.01"].IsZero())

	apr := books[15]
	assert.True(t, dec("10").Equal(apr["1.01.01.01"]))
	assert.True(t, apr["3.01.01.01"].IsZero())

	jun := books[17]
	assert.True(t, dec("30").Equal(jun["1.01.01.01"]))
	assert.True(t, jun["3.01.01.01"].IsZero())

	assert.True(t, dec("900").Equal(books[16]["3.01.01.01"]))
}

func TestBuild_YearlyUsesLastClosedMonthOfRunningYear(t *testing.T) {
	sheets := []model.BalanceSheet{
		sheet(9, 2026, map[string]string{"3.01.01.01": "900"}),
		sheet(10, 2026, map[string]string{"3.01.01.01": "1000"}),
	}
	yearly := chunk(t, Build(sheets, 2026, 2026, now), 12)

	// October is open; September is read. November and December borrow October.
	assert.True(t, dec("900").Equal(yearly[1].Revenue.Revenue), yearly[1].Revenue.Revenue.String())
}

func TestBuild_PreviousCash(t *testing.T) {
	sheets := []model.BalanceSheet{
		sheet(12, 2023, map[string]string{"1.01.01.01": "70"}),
		sheet(1, 2024, map[string]string{"1.01.01.01": "100"}),
		sheet(2, 2024, map[string]string{"1.01.01.01": "120", "1.01.01.02": "5"}),
	}
	chunks := Build(sheets, 2024, 2024, now)

	months := chunk(t, chunks, 1)
	feb := months[13]
	assert.True(t, dec("125").Equal(feb.Treasury.Cash))
	require.NotNil(t, feb.Treasury.PreviousCash)
	assert.True(t, dec("100").Equal(*feb.Treasury.PreviousCash))
	require.NotNil(t, feb.Summary.PreviousCash)
	assert.True(t, dec("100").Equal(*feb.Summary.PreviousCash))

	jan := months[12]
	assert.Nil(t, jan.Summary.PreviousCash)
	require.NotNil(t, jan.Treasury.PreviousCash)
	assert.True(t, dec("70").Equal(*jan.Treasury.PreviousCash))

	yearly := chunk(t, chunks, 12)
	assert.Nil(t, yearly[0].Treasury.PreviousCash)
	require.NotNil(t, yearly[1].Treasury.PreviousCash)
	assert.True(t, dec("70").Equal(*yearly[1].Treasury.PreviousCash))
}

func TestBuild_ResultMargins(t *testing.T) {
	sheets := []model.BalanceSheet{
		sheet(1, 2024, map[string]string{
			"3.01.01.00": "1000",
			"3.02.01.00": "-400",
			"3.00.00.00": "250",
		}),
	}
	jan := chunk(t, Build(sheets, 2024, 2024, now), 1)[12]

	assert.True(t, dec("1000").Equal(jan.Result.NetRevenue))
	assert.True(t, dec("400").Equal(jan.Result.Cost))
	assert.True(t, dec("60").Equal(jan.Result.GrossMargin), jan.Result.GrossMargin.String())
	assert.True(t, dec("25").Equal(jan.Result.NetMargin), jan.Result.NetMargin.String())
}
