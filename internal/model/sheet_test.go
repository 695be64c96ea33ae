package model

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finspect-dev/finspect/internal/period"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestBalancesAdd_DoesNotMutate(t *testing.T) {
	a := Balances{PreviousBalance: d("1"), Debit: d("2"), Credit: d("3"), CurrentBalance: d("4")}
	b := Balances{PreviousBalance: d("10"), Debit: d("20"), Credit: d("30"), CurrentBalance: d("40")}
	sum := a.Add(b)

	assert.True(t, sum.Equal(Balances{PreviousBalance: d("11"), Debit: d("22"), Credit: d("33"), CurrentBalance: d("44")}))
	assert.True(t, a.CurrentBalance.Equal(d("4")))
	assert.False(t, sum.IsZero())
	assert.True(t, Balances{}.IsZero())
}

func TestBalanceSheet_AccountMapAndFind(t *testing.T) {
	s := BalanceSheet{
		CompanyID: "c1",
		Period:    period.Period{Month: 1, Year: 2024},
		Accounts: []BalanceSheetAccount{
			{StandardAccount: StandardAccount{Code: "1", Level: 1}, Balances: Balances{CurrentBalance: d("100")}},
			{StandardAccount: StandardAccount{Code: "2", Level: 1}, Balances: Balances{CurrentBalance: d("-40")}},
		},
	}
	m := s.AccountMap()
	assert.True(t, m["2"].Equal(d("-40")))

	a, ok := s.Find("1")
	require.True(t, ok)
	assert.True(t, a.CurrentBalance.Equal(d("100")))
	_, ok = s.Find("9")
	assert.False(t, ok)
}

func TestRawAccount_JSONFlattensBalances(t *testing.T) {
	raw := RawAccount{Code: "1.01", Name: "Caixa", Level: 2, Balances: Balances{CurrentBalance: d("12.5")}}
	data, err := json.Marshal(raw)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"currentBalance":"12.5"`)

	var back RawAccount
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, "Caixa", back.Name)
	assert.True(t, back.CurrentBalance.Equal(d("12.5")))
}

func TestAccountLink_Resolved(t *testing.T) {
	assert.False(t, AccountLink{ExternalCode: "1"}.Resolved())
	assert.True(t, AccountLink{ExternalCode: "1", InternalCode: "1.01"}.Resolved())
}
