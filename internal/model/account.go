package model

import "github.com/finspect-dev/finspect/internal/code"

// StandardAccount is a node of the canonical chart of accounts.
type StandardAccount struct {
	Code  string `json:"code"`
	Name  string `json:"name"`
	Level int    `json:"level"`
}

// ParsedCode returns the account code in structured form.
func (a StandardAccount) ParsedCode() (code.Code, error) {
	return code.Parse(a.Code)
}

// AccountLink maps a company's external account code to a canonical code.
// An empty InternalCode means the link is unresolved.
type AccountLink struct {
	AccountantID string `json:"accountantId"`
	CompanyID    string `json:"companyId"`
	ExternalCode string `json:"externalCode"`
	Name         string `json:"name"`
	Level        int    `json:"level"`
	InternalCode string `json:"internalCode,omitempty"`
}

// Resolved reports whether the link points at a canonical account.
func (l AccountLink) Resolved() bool { return l.InternalCode != "" }

// Company is a client company whose balance sheets are imported.
type Company struct {
	ID           string `json:"id"`
	AccountantID string `json:"accountantId"`
	Name         string `json:"name,omitempty"`
	Software     string `json:"software"`
	// LastBalanceSheet is the newest imported period as "YYYY-MM", empty before the first import.
	LastBalanceSheet string `json:"lastBalanceSheet,omitempty"`
}
