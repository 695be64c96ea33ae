package accounts

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/finspect-dev/finspect/internal/code"
	"github.com/finspect-dev/finspect/internal/model"
)

const (
	numFields = 2
	colCode   = 0
	colName   = 1
)

// ReadAccounts reads a chart-of-accounts CSV with a code,name header.
func ReadAccounts(r io.Reader) ([]model.StandardAccount, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading accounts CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	var accounts []model.StandardAccount
	for i, rec := range records[1:] {
		acct, err := UnmarshalAccount(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		accounts = append(accounts, acct)
	}
	return accounts, nil
}

// WriteAccounts writes a chart-of-accounts CSV.
func WriteAccounts(w io.Writer, accounts []model.StandardAccount) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write([]string{"code", "name"}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, acct := range accounts {
		if err := cw.Write(MarshalAccount(acct)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// MarshalAccount converts a StandardAccount to a CSV row.
func MarshalAccount(acct model.StandardAccount) []string {
	row := make([]string, numFields)
	row[colCode] = acct.Code
	row[colName] = acct.Name
	return row
}

// UnmarshalAccount converts a CSV row to a StandardAccount. The level is derived from the code.
func UnmarshalAccount(record []string) (model.StandardAccount, error) {
	if len(record) != numFields {
		return model.StandardAccount{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	c, err := code.Parse(record[colCode])
	if err != nil {
		return model.StandardAccount{}, fmt.Errorf("parsing code: %w", err)
	}

	return model.StandardAccount{
		Code:  c.String(),
		Name:  record[colName],
		Level: c.Level(),
	}, nil
}
