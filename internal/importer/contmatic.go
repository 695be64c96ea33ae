package importer

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/finspect-dev/finspect/internal/code"
	"github.com/finspect-dev/finspect/internal/model"
)

// ContmaticParser parses Contmatic balance sheets, either pipe-delimited
// with D/C suffixes or tab-delimited with plain amounts.
type ContmaticParser struct{}

const (
	contmaticNumFields   = 6
	contmaticMinLines    = 5
	contmaticMaxLines    = 10000
	contmaticMinLineLen  = 23
	contmaticColCode     = 0
	contmaticColName     = 1
	contmaticColPrevious = 2
	contmaticColDebit    = 3
	contmaticColCredit   = 4
	contmaticColCurrent  = 5
)

// Format returns the parser name.
func (p *ContmaticParser) Format() string { return "contmatic" }

// Parse reads a Contmatic export.
func (p *ContmaticParser) Parse(r io.Reader) ([]model.RawAccount, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, err
	}
	// The export ends with a short trailer line.
	if n := len(lines); n > 0 && len(lines[n-1]) < contmaticMinLineLen {
		lines = lines[:n-1]
	}

	nf, rows := ContmaticPipe, contmaticRows(lines, "|")
	if !contmaticCountOK(len(rows)) {
		nf, rows = ContmaticTab, contmaticRows(lines, "\t")
	}
	if !contmaticCountOK(len(rows)) {
		return nil, UnrecognizedFormatError{
			Format: p.Format(),
			Reason: fmt.Sprintf("need %d to %d lines of %d pipe- or tab-separated fields", contmaticMinLines, contmaticMaxLines, contmaticNumFields),
		}
	}

	accounts := make([]model.RawAccount, 0, len(rows))
	for _, row := range rows {
		acct, err := parseContmaticRow(row.fields, nf)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", row.line, err)
		}
		accounts = append(accounts, acct)
	}
	return accounts, nil
}

type contmaticRow struct {
	line   int
	fields []string
}

// contmaticRows keeps lines with exactly six fields whose first field is an account code.
func contmaticRows(lines []string, delim string) []contmaticRow {
	var rows []contmaticRow
	for i, l := range lines {
		fields := strings.Split(l, delim)
		if len(fields) != contmaticNumFields {
			continue
		}
		for j := range fields {
			fields[j] = strings.TrimSpace(fields[j])
		}
		if _, err := code.Parse(fields[contmaticColCode]); err != nil {
			continue
		}
		rows = append(rows, contmaticRow{line: i + 1, fields: fields})
	}
	return rows
}

func contmaticCountOK(n int) bool {
	return n >= contmaticMinLines && n <= contmaticMaxLines
}

// debitNormal reports whether balances of the account read D as positive:
// assets and costs/expenses.
func debitNormal(accountCode string) bool {
	return strings.HasPrefix(accountCode, "1") || strings.HasPrefix(accountCode, "3.02")
}

func parseContmaticRow(rec []string, nf NumberFormat) (model.RawAccount, error) {
	c := rec[contmaticColCode]
	flip := debitNormal(c)

	parse := func(col int, positiveDebit bool) (decimal.Decimal, error) {
		d, side, err := nf.Parse(rec[col])
		if err != nil {
			return decimal.Zero, err
		}
		return Signed(d, side, positiveDebit), nil
	}

	prev, err := parse(contmaticColPrevious, flip)
	if err != nil {
		return model.RawAccount{}, fmt.Errorf("previous balance: %w", err)
	}
	// Movement columns always use the default convention.
	debit, err := parse(contmaticColDebit, false)
	if err != nil {
		return model.RawAccount{}, fmt.Errorf("debit: %w", err)
	}
	credit, err := parse(contmaticColCredit, false)
	if err != nil {
		return model.RawAccount{}, fmt.Errorf("credit: %w", err)
	}
	cur, err := parse(contmaticColCurrent, flip)
	if err != nil {
		return model.RawAccount{}, fmt.Errorf("current balance: %w", err)
	}

	return rawAccount(c, rec[contmaticColName], model.Balances{
		PreviousBalance: prev,
		Debit:           debit,
		Credit:          credit,
		CurrentBalance:  cur,
	})
}
