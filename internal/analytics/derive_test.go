package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/finspect-dev/finspect/internal/period"
)

func TestDerive_Indicators(t *testing.T) {
	b := Book{
		"1.00.00.00": dec("1000"),
		"1.01.00.00": dec("600"),
		"1.01.01.01": dec("50"),
		"1.01.01.02": dec("50"),
		"1.01.02.02": dec("200"),
		"2.01.00.00": dec("300"),
		"2.03.00.00": dec("500"),
		"3.00.00.00": dec("100"),
	}
	m := Derive(b, period.Period{Month: 4, Year: 2024})

	assert.Equal(t, "04/2024", m.Date)
	assert.True(t, dec("2").Equal(m.Indicators.Liquidity.Current))
	assert.True(t, dec("1.3333333333333333").Equal(m.Indicators.Liquidity.Quick), m.Indicators.Liquidity.Quick.String())
	assert.True(t, dec("0.2").Equal(m.Indicators.Profitability.ReturnOnEquity))
	assert.True(t, dec("0.1").Equal(m.Summary.Profitability.ROA))
	assert.True(t, dec("100").Equal(m.Treasury.Cash))
}

func TestDerive_ZeroDenominators(t *testing.T) {
	m := Derive(Book{"1.01.00.00": dec("600")}, period.Period{Month: 1, Year: 2024})

	assert.True(t, m.Indicators.Liquidity.Current.IsZero())
	assert.True(t, m.Indicators.Structure.Solvency.IsZero())
	assert.True(t, m.Indicators.Coverage.InterestCoverage.IsZero())
}

func TestDerive_Compositions(t *testing.T) {
	b := Book{
		"1.01.00.00": dec("1000"),
		"1.01.01.00": dec("100"),
		"1.01.02.01": dec("300"),
		"1.01.02.02": dec("200"),
		"2.01.00.00": dec("800"),
		"2.01.01.01": dec("100"),
		"2.01.02.03": dec("50"),
		"2.01.02.04": dec("25"),
		"2.02.00.00": dec("90"),
		"2.02.01.01": dec("60"),
	}
	m := Derive(b, period.Period{Month: 1, Year: 2024})

	assert.True(t, dec("400").Equal(m.Assets.Current.OtherCredits))
	assert.True(t, dec("75").Equal(m.Liabilities.Current.Suppliers))
	assert.True(t, dec("625").Equal(m.Liabilities.Current.Other))
	assert.True(t, dec("30").Equal(m.Liabilities.NonCurrent.Other))
}

func TestFlatten(t *testing.T) {
	m := Derive(Book{"1.01.00.00": dec("10"), "2.01.00.00": dec("5")}, period.Period{Month: 1, Year: 2024})
	flat := m.Indicators.Flatten()

	assert.True(t, dec("2").Equal(flat["liquidity.current"]))
	assert.Contains(t, flat, "coverage.ebitda")
	assert.Contains(t, flat, "cashFlow.operatingToGrossDebt")
}
