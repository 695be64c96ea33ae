package model

import "github.com/shopspring/decimal"

// Balances holds the four money fields of a balance-sheet line.
type Balances struct {
	PreviousBalance decimal.Decimal `json:"previousBalance"`
	Debit           decimal.Decimal `json:"debit"`
	Credit          decimal.Decimal `json:"credit"`
	CurrentBalance  decimal.Decimal `json:"currentBalance"`
}

// Add returns the field-wise sum of b and o.
func (b Balances) Add(o Balances) Balances {
	return Balances{
		PreviousBalance: b.PreviousBalance.Add(o.PreviousBalance),
		Debit:           b.Debit.Add(o.Debit),
		Credit:          b.Credit.Add(o.Credit),
		CurrentBalance:  b.CurrentBalance.Add(o.CurrentBalance),
	}
}

// IsZero reports whether every field is zero.
func (b Balances) IsZero() bool {
	return b.PreviousBalance.IsZero() && b.Debit.IsZero() && b.Credit.IsZero() && b.CurrentBalance.IsZero()
}

// Equal compares field-wise by value.
func (b Balances) Equal(o Balances) bool {
	return b.PreviousBalance.Equal(o.PreviousBalance) &&
		b.Debit.Equal(o.Debit) &&
		b.Credit.Equal(o.Credit) &&
		b.CurrentBalance.Equal(o.CurrentBalance)
}
