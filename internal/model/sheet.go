package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/finspect-dev/finspect/internal/period"
)

// RawAccount is one line of a vendor balance sheet, as parsed.
type RawAccount struct {
	Code  string `json:"code"`
	Name  string `json:"name"`
	Level int    `json:"level"`
	Balances
}

// RawBalanceSheet is the parsed upload for one company and month.
type RawBalanceSheet struct {
	CompanyID  string        `json:"companyId"`
	Period     period.Period `json:"period"`
	Filename   string        `json:"filename,omitempty"`
	Software   string        `json:"software,omitempty"`
	BatchID    string        `json:"batchId,omitempty"`
	ImportedAt time.Time     `json:"importedAt"`
	Accounts   []RawAccount  `json:"accounts"`
}

// BalanceSheetAccount is a canonical account with its aggregated balances.
type BalanceSheetAccount struct {
	StandardAccount
	Balances
}

// BalanceSheet is the standardized sheet derived from a raw sheet and the link table.
type BalanceSheet struct {
	CompanyID string                `json:"companyId"`
	Period    period.Period         `json:"period"`
	BuiltAt   time.Time             `json:"builtAt"`
	Accounts  []BalanceSheetAccount `json:"accounts"`
}

// AccountMap returns current balances keyed by canonical code.
func (s BalanceSheet) AccountMap() map[string]decimal.Decimal {
	m := make(map[string]decimal.Decimal, len(s.Accounts))
	for _, a := range s.Accounts {
		m[a.Code] = a.CurrentBalance
	}
	return m
}

// Find returns the account with the given canonical code.
func (s BalanceSheet) Find(code string) (BalanceSheetAccount, bool) {
	for _, a := range s.Accounts {
		if a.Code == code {
			return a, true
		}
	}
	return BalanceSheetAccount{}, false
}
