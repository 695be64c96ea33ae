package importer

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
)

// Side is the debit/credit marker that may trail an amount.
type Side int

const (
	SideNone Side = iota
	SideDebit
	SideCredit
)

// NumberFormat describes how one vendor writes amounts.
type NumberFormat struct {
	Name string
	// DecimalSep is rewritten to '.' before parsing. Zero means '.' already.
	DecimalSep rune
	// ThousandsSep is removed before parsing. Zero means none.
	ThousandsSep rune
	// Strip lists characters dropped outright.
	Strip string
	// RemoveSpaces drops every whitespace rune.
	RemoveSpaces bool
	// SignSuffix accepts a trailing " D" or " C".
	SignSuffix bool
	// PlainFirst accepts a value already written as a plain decimal before applying separators.
	PlainFirst bool
}

var (
	// ContmaticPipe: "1.234,56 D".
	ContmaticPipe = NumberFormat{Name: "contmatic-pipe", DecimalSep: ',', ThousandsSep: '.', SignSuffix: true}
	// ContmaticTab: "1234,56", whitespace anywhere.
	ContmaticTab = NumberFormat{Name: "contmatic-tab", DecimalSep: ',', RemoveSpaces: true}
	// BrazilianParens: "(1.234,56)". Parentheses are stripped and do not negate.
	BrazilianParens = NumberFormat{Name: "ptbr-parens", DecimalSep: ',', ThousandsSep: '.', Strip: "()"}
	// Spreadsheet accepts raw cell values and falls back to Brazilian notation.
	Spreadsheet = NumberFormat{Name: "spreadsheet", DecimalSep: ',', ThousandsSep: '.', PlainFirst: true}
)

// Parse converts s into an amount and any trailing side marker.
// An empty value is zero.
func (f NumberFormat) Parse(s string) (decimal.Decimal, Side, error) {
	v := strings.TrimSpace(s)
	side := SideNone

	if f.SignSuffix {
		if fields := strings.Fields(v); len(fields) == 2 {
			switch strings.ToUpper(fields[1]) {
			case "D":
				side = SideDebit
			case "C":
				side = SideCredit
			default:
				return decimal.Zero, SideNone, fmt.Errorf("%s: unknown side %q in %q", f.Name, fields[1], s)
			}
			v = fields[0]
		}
	}

	if v == "" {
		return decimal.Zero, side, nil
	}

	if f.PlainFirst {
		if d, err := decimal.NewFromString(v); err == nil {
			return d, side, nil
		}
	}

	v = strings.Map(func(r rune) rune {
		switch {
		case f.RemoveSpaces && unicode.IsSpace(r):
			return -1
		case strings.ContainsRune(f.Strip, r):
			return -1
		case f.ThousandsSep != 0 && r == f.ThousandsSep:
			return -1
		case f.DecimalSep != 0 && r == f.DecimalSep:
			return '.'
		}
		return r
	}, v)

	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, SideNone, fmt.Errorf("%s: parsing amount %q: %w", f.Name, s, err)
	}
	return d, side, nil
}

// Amount parses s and ignores any side marker.
func (f NumberFormat) Amount(s string) (decimal.Decimal, error) {
	d, _, err := f.Parse(s)
	return d, err
}

// Signed applies the debit/credit convention to an amount.
// By default credits are positive and debits negative; debitNormal reverses that.
func Signed(amount decimal.Decimal, side Side, debitNormal bool) decimal.Decimal {
	switch side {
	case SideDebit:
		if debitNormal {
			return amount
		}
		return amount.Neg()
	case SideCredit:
		if debitNormal {
			return amount.Neg()
		}
		return amount
	}
	return amount
}
