package importer

import (
	"fmt"
	"io"
	"regexp"

	"github.com/finspect-dev/finspect/internal/model"
)

// FerreiraDePaulaParser parses FerreiraDePaula exports: a numeric row id
// followed by six semicolon- or tab-separated fields.
type FerreiraDePaulaParser struct{}

var (
	ferreiraCSV = ferreiraLineRegexp(";")
	ferreiraTXT = ferreiraLineRegexp(`\t`)
)

// ferreiraLineRegexp matches "<id>D<code>D<name>D<prev>D<debit>D<credit>D<current>D"
// where each D is one or more delimiters.
func ferreiraLineRegexp(d string) *regexp.Regexp {
	field := fmt.Sprintf("%s+([^%s]+)", d, d)
	pattern := `^\d+`
	for i := 0; i < 6; i++ {
		pattern += field
	}
	return regexp.MustCompile(pattern + d + "+")
}

const (
	ferreiraGroupCode = iota + 1
	ferreiraGroupName
	ferreiraGroupPrevious
	ferreiraGroupDebit
	ferreiraGroupCredit
	ferreiraGroupCurrent
)

// Format returns the parser name.
func (p *FerreiraDePaulaParser) Format() string { return "ferreiradepaula" }

// Parse reads a FerreiraDePaula export. Semicolon lines win over tab lines.
func (p *FerreiraDePaulaParser) Parse(r io.Reader) ([]model.RawAccount, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, err
	}

	re := ferreiraCSV
	matches := ferreiraMatches(lines, re)
	if len(matches) == 0 {
		re = ferreiraTXT
		matches = ferreiraMatches(lines, re)
	}
	if len(matches) == 0 {
		return nil, UnrecognizedFormatError{Format: p.Format(), Reason: "no line has a row id and six delimited fields"}
	}

	accounts := make([]model.RawAccount, 0, len(matches))
	for _, m := range matches {
		acct, err := parseFerreiraMatch(m.groups)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", m.line, err)
		}
		accounts = append(accounts, acct)
	}
	return accounts, nil
}

type ferreiraMatch struct {
	line   int
	groups []string
}

func ferreiraMatches(lines []string, re *regexp.Regexp) []ferreiraMatch {
	var out []ferreiraMatch
	for i, l := range lines {
		if g := re.FindStringSubmatch(l); g != nil {
			out = append(out, ferreiraMatch{line: i + 1, groups: g})
		}
	}
	return out
}

func parseFerreiraMatch(g []string) (model.RawAccount, error) {
	nf := BrazilianParens
	prev, err := nf.Amount(g[ferreiraGroupPrevious])
	if err != nil {
		return model.RawAccount{}, fmt.Errorf("previous balance: %w", err)
	}
	debit, err := nf.Amount(g[ferreiraGroupDebit])
	if err != nil {
		return model.RawAccount{}, fmt.Errorf("debit: %w", err)
	}
	credit, err := nf.Amount(g[ferreiraGroupCredit])
	if err != nil {
		return model.RawAccount{}, fmt.Errorf("credit: %w", err)
	}
	cur, err := nf.Amount(g[ferreiraGroupCurrent])
	if err != nil {
		return model.RawAccount{}, fmt.Errorf("current balance: %w", err)
	}
	return rawAccount(g[ferreiraGroupCode], g[ferreiraGroupName], model.Balances{
		PreviousBalance: prev,
		Debit:           debit,
		Credit:          credit,
		CurrentBalance:  cur,
	})
}
