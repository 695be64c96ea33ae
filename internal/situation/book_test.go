package situation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finspect-dev/finspect/internal/model"
	"github.com/finspect-dev/finspect/internal/period"
)

func sheet(month, year int, balances map[string]string) model.BalanceSheet {
	s := model.BalanceSheet{Period: period.Period{Month: month, Year: year}}
	for code, v := range balances {
		var a model.BalanceSheetAccount
		a.Code = code
		a.CurrentBalance = dec(v)
		s.Accounts = append(s.Accounts, a)
	}
	return s
}

func TestBook_Lookups(t *testing.T) {
	sheets := []model.BalanceSheet{
		sheet(3, 2024, map[string]string{"1.01.00.00": "600", "2.01.00.00": "300"}),
		sheet(6, 2024, map[string]string{"1.01.00.00": "500", "2.01.00.00": "1000"}),
	}
	book, err := NewBook(sheets, []Indicator{
		{Name: "Liquidez Corrente", Formula: "conta('1.01.00.00') / conta('2.01.00.00')"},
		{Name: "dobro", Formula: "indicador('liquidez corrente') * 2"},
		{Name: "loop", Formula: "indicador('loop') + 1"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, book.Len())

	v, err := book.Account("1.01.00.00", 2)
	require.NoError(t, err)
	assert.True(t, dec("500").Equal(v))

	_, err = book.Account("1.01.00.00", 3)
	assert.ErrorIs(t, err, ErrInvalidPeriod)
	_, err = book.Account("9.99.99.99", 1)
	assert.ErrorIs(t, err, ErrUnknownAccount)

	v, err = book.Indicator("LIQUIDEZ CORRENTE", 1)
	require.NoError(t, err)
	assert.True(t, dec("2").Equal(v))

	v, err = book.Indicator("dobro", 2)
	require.NoError(t, err)
	assert.True(t, dec("1").Equal(v), v.String())

	v, err = book.Indicator("liquidity.current", 2)
	require.NoError(t, err)
	assert.True(t, dec("0.5").Equal(v))

	_, err = book.Indicator("loop", 1)
	assert.ErrorIs(t, err, ErrRecursion)
	_, err = book.Indicator("nada", 1)
	assert.ErrorIs(t, err, ErrUnknownIndicator)
}

func TestNewBook_BadFormula(t *testing.T) {
	_, err := NewBook(nil, []Indicator{{Name: "x", Formula: "conta("}})
	assert.Error(t, err)
}
