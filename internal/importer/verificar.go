package importer

import (
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/shopspring/decimal"

	"github.com/finspect-dev/finspect/internal/model"
)

// TextExtractor turns a PDF document into text lines, top to bottom.
type TextExtractor interface {
	Lines(data []byte) ([]string, error)
}

// PDFText extracts lines with github.com/ledongthuc/pdf. Text runs on the
// same row are joined without separators.
type PDFText struct{}

// Lines implements TextExtractor.
func (PDFText) Lines(data []byte) ([]string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening pdf: %w", err)
	}
	var lines []string
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		for _, row := range rows {
			var sb strings.Builder
			for _, t := range row.Content {
				sb.WriteString(t.S)
			}
			lines = append(lines, sb.String())
		}
	}
	return lines, nil
}

// VerificarParser parses Verificar balance sheets printed to PDF.
type VerificarParser struct {
	Extractor TextExtractor
}

const (
	verificarHeader        = "Conta"
	verificarGrandTotal    = "Total Geral"
	verificarSubgroupTotal = "Total do Grupo"
	verificarCodeWidth     = 13
	verificarAmounts       = 4
	verificarSubgroupTrim  = 5
)

var verificarAmount = regexp.MustCompile(`[\d.]+,\d\d`)

// Format returns the parser name.
func (p *VerificarParser) Format() string { return "verificar" }

// Parse extracts the PDF text and parses it with ParseLines.
func (p *VerificarParser) Parse(r io.Reader) ([]model.RawAccount, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading pdf: %w", err)
	}
	ex := p.Extractor
	if ex == nil {
		ex = PDFText{}
	}
	lines, err := ex.Lines(data)
	if err != nil {
		return nil, UnrecognizedFormatError{Format: p.Format(), Reason: err.Error()}
	}
	return p.ParseLines(lines)
}

// ParseLines parses the text of a Verificar report.
//
// The table starts after the first "Conta" header and ends at the last
// "Total Geral" line. Each group ends with a "Total Geral" line; its first
// line names the group. Inside a group a line either names a subgroup, is a
// leaf account, or closes the subgroup with "Total do Grupo".
func (p *VerificarParser) ParseLines(lines []string) ([]model.RawAccount, error) {
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}

	start, end := -1, -1
	for i, l := range lines {
		if start < 0 && strings.HasPrefix(l, verificarHeader) {
			start = i + 1
		}
		if strings.HasPrefix(l, verificarGrandTotal) {
			end = i + 1
		}
	}
	if start < 0 || end <= start {
		return nil, UnrecognizedFormatError{Format: p.Format(), Reason: "account table not found"}
	}

	var accounts []model.RawAccount
	for _, g := range verificarGroups(lines[start:end]) {
		accts, err := p.parseGroup(g)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, accts...)
	}
	return accounts, nil
}

// verificarGroups splits the table after every grand-total line.
func verificarGroups(lines []string) [][]string {
	var groups [][]string
	var cur []string
	for _, l := range lines {
		if l == "" {
			continue
		}
		cur = append(cur, l)
		if strings.HasPrefix(l, verificarGrandTotal) {
			groups = append(groups, cur)
			cur = nil
		}
	}
	return groups
}

type verificarState int

const (
	expectingSubgroupName verificarState = iota
	inSubgroup
)

func (p *VerificarParser) parseGroup(group []string) ([]model.RawAccount, error) {
	if len(group) < 2 {
		return nil, UnrecognizedFormatError{Format: p.Format(), Reason: fmt.Sprintf("group %q has no accounts", group[0])}
	}
	name, body, total := group[0], group[1:len(group)-1], group[len(group)-1]

	var (
		accounts     []model.RawAccount
		lastLeafCode string
		subgroupName string
		state        = expectingSubgroupName
	)
	for _, line := range body {
		switch state {
		case expectingSubgroupName:
			subgroupName = line
			state = inSubgroup

		case inSubgroup:
			if rest, ok := strings.CutPrefix(line, verificarSubgroupTotal); ok {
				if lastLeafCode == "" {
					return nil, UnrecognizedFormatError{Format: p.Format(), Reason: fmt.Sprintf("subgroup %q closes before any account", subgroupName)}
				}
				c := strings.TrimRight(lastLeafCode[:max(len(lastLeafCode)-verificarSubgroupTrim, 0)], ".")
				acct, err := p.account(c, subgroupName, rest)
				if err != nil {
					return nil, err
				}
				accounts = append(accounts, acct)
				state = expectingSubgroupName
				continue
			}
			acct, err := p.leaf(line)
			if err != nil {
				return nil, err
			}
			accounts = append(accounts, acct)
			lastLeafCode = acct.Code
		}
	}

	if len(accounts) == 0 {
		return nil, UnrecognizedFormatError{Format: p.Format(), Reason: fmt.Sprintf("group %q has no accounts", name)}
	}
	groupCode := accounts[len(accounts)-1].Code[:1]
	acct, err := p.account(groupCode, name, strings.TrimPrefix(total, verificarGrandTotal))
	if err != nil {
		return nil, err
	}
	return append(accounts, acct), nil
}

// leaf parses "<13-char code><name><prev><debit><credit><current>".
func (p *VerificarParser) leaf(line string) (model.RawAccount, error) {
	if len(line) <= verificarCodeWidth {
		return model.RawAccount{}, UnrecognizedFormatError{Format: p.Format(), Reason: fmt.Sprintf("short account line %q", line)}
	}
	c, rest := line[:verificarCodeWidth], line[verificarCodeWidth:]
	loc := verificarAmount.FindStringIndex(rest)
	if loc == nil {
		return model.RawAccount{}, UnrecognizedFormatError{Format: p.Format(), Reason: fmt.Sprintf("no amounts in line %q", line)}
	}
	return p.account(c, rest[:loc[0]], rest)
}

func (p *VerificarParser) account(c, name, amounts string) (model.RawAccount, error) {
	found := verificarAmount.FindAllString(amounts, -1)
	if len(found) < verificarAmounts {
		return model.RawAccount{}, UnrecognizedFormatError{
			Format: p.Format(),
			Reason: fmt.Sprintf("account %s: expected %d amounts, found %d", strings.TrimSpace(c), verificarAmounts, len(found)),
		}
	}
	var vals [verificarAmounts]decimal.Decimal
	for i := range vals {
		d, err := BrazilianParens.Amount(found[i])
		if err != nil {
			return model.RawAccount{}, fmt.Errorf("account %s: %w", strings.TrimSpace(c), err)
		}
		vals[i] = d
	}
	return rawAccount(c, name, model.Balances{
		PreviousBalance: vals[0],
		Debit:           vals[1],
		Credit:          vals[2],
		CurrentBalance:  vals[3],
	})
}
