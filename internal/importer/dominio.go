package importer

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/finspect-dev/finspect/internal/model"
)

// DominioParser parses Dominio workbooks. The balance sheet sits in a sheet
// named "Preamble"; other sheets are searched when it is absent.
type DominioParser struct{}

const (
	dominioPreferredSheet = "Preamble"
	dominioNumFields      = 7
	dominioColExternal    = 0
	dominioColCode        = 1
	dominioColName        = 2
	dominioColPrevious    = 3
	dominioColDebit       = 4
	dominioColCredit      = 5
	dominioColCurrent     = 6
)

// Format returns the parser name.
func (p *DominioParser) Format() string { return "dominio" }

// Parse reads a Dominio XLSX workbook.
func (p *DominioParser) Parse(r io.Reader) ([]model.RawAccount, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, UnrecognizedFormatError{Format: p.Format(), Reason: "not an xlsx workbook: " + err.Error()}
	}
	defer f.Close()

	for _, sheet := range dominioSheetOrder(f.GetSheetList()) {
		rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("reading sheet %q: %w", sheet, err)
		}
		accounts, err := parseDominioRows(rows)
		if err != nil {
			return nil, fmt.Errorf("sheet %q: %w", sheet, err)
		}
		if len(accounts) > 0 {
			return accounts, nil
		}
	}
	return nil, UnrecognizedFormatError{Format: p.Format(), Reason: "no sheet has account rows"}
}

// dominioSheetOrder puts the preamble sheet first.
func dominioSheetOrder(sheets []string) []string {
	out := make([]string, 0, len(sheets))
	for _, s := range sheets {
		if strings.EqualFold(s, dominioPreferredSheet) {
			out = append(out, s)
		}
	}
	for _, s := range sheets {
		if !strings.EqualFold(s, dominioPreferredSheet) {
			out = append(out, s)
		}
	}
	return out
}

// parseDominioRows keeps rows whose first non-empty cell is numeric.
// Empty cells are dropped before columns are read by position.
func parseDominioRows(rows [][]string) ([]model.RawAccount, error) {
	var accounts []model.RawAccount
	for i, row := range rows {
		cells := make([]string, 0, len(row))
		for _, c := range row {
			if c = strings.TrimSpace(c); c != "" {
				cells = append(cells, c)
			}
		}
		if len(cells) < dominioNumFields {
			continue
		}
		if _, err := decimal.NewFromString(cells[dominioColExternal]); err != nil {
			continue
		}

		acct, err := parseDominioRow(cells)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		accounts = append(accounts, acct)
	}
	return accounts, nil
}

func parseDominioRow(cells []string) (model.RawAccount, error) {
	nf := Spreadsheet
	prev, err := nf.Amount(cells[dominioColPrevious])
	if err != nil {
		return model.RawAccount{}, fmt.Errorf("previous balance: %w", err)
	}
	debit, err := nf.Amount(cells[dominioColDebit])
	if err != nil {
		return model.RawAccount{}, fmt.Errorf("debit: %w", err)
	}
	credit, err := nf.Amount(cells[dominioColCredit])
	if err != nil {
		return model.RawAccount{}, fmt.Errorf("credit: %w", err)
	}
	cur, err := nf.Amount(cells[dominioColCurrent])
	if err != nil {
		return model.RawAccount{}, fmt.Errorf("current balance: %w", err)
	}
	return rawAccount(cells[dominioColCode], cells[dominioColName], model.Balances{
		PreviousBalance: prev,
		Debit:           debit,
		Credit:          credit,
		CurrentBalance:  cur,
	})
}
