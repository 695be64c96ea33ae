// Package period identifies monthly balance-sheet periods.
package period

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// Period is a calendar month.
type Period struct {
	Month int `json:"month" yaml:"month"`
	Year  int `json:"year" yaml:"year"`
}

// New returns a Period and validates the month.
func New(month, year int) (Period, error) {
	p := Period{Month: month, Year: year}
	if err := p.Validate(); err != nil {
		return Period{}, err
	}
	return p, nil
}

// Validate checks the month range and a positive year.
func (p Period) Validate() error {
	if p.Month < 1 || p.Month > 12 {
		return fmt.Errorf("invalid month %d", p.Month)
	}
	if p.Year < 1 {
		return fmt.Errorf("invalid year %d", p.Year)
	}
	return nil
}

// Key returns the external key like "03-2024".
func (p Period) Key() string {
	return fmt.Sprintf("%02d-%04d", p.Month, p.Year)
}

// SortKey returns a lexically sortable key like "2024-03".
func (p Period) SortKey() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

// Slash returns the display form like "03/2024".
func (p Period) Slash() string {
	return fmt.Sprintf("%02d/%04d", p.Month, p.Year)
}

func (p Period) String() string { return p.Key() }

// Before reports whether p is strictly earlier than o.
func (p Period) Before(o Period) bool {
	if p.Year != o.Year {
		return p.Year < o.Year
	}
	return p.Month < o.Month
}

// ParseKey parses "MM-YYYY".
func ParseKey(s string) (Period, error) {
	return parsePair(s, "-", false)
}

// ParseSortKey parses "YYYY-MM".
func ParseSortKey(s string) (Period, error) {
	return parsePair(s, "-", true)
}

// ParseSlash parses "MM/YYYY".
func ParseSlash(s string) (Period, error) {
	return parsePair(s, "/", false)
}

// FromFilename reads the period from a batch filename like "03-2024.txt".
func FromFilename(name string) (Period, error) {
	base := filepath.Base(name)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	p, err := ParseKey(base)
	if err != nil {
		return Period{}, fmt.Errorf("filename %q does not name a period: %w", name, err)
	}
	return p, nil
}

func parsePair(s, sep string, yearFirst bool) (Period, error) {
	parts := strings.Split(strings.TrimSpace(s), sep)
	if len(parts) != 2 {
		return Period{}, fmt.Errorf("invalid period %q", s)
	}
	mi, yi := 0, 1
	if yearFirst {
		mi, yi = 1, 0
	}
	month, err := strconv.Atoi(parts[mi])
	if err != nil {
		return Period{}, fmt.Errorf("invalid month in period %q: %w", s, err)
	}
	year, err := strconv.Atoi(parts[yi])
	if err != nil {
		return Period{}, fmt.Errorf("invalid year in period %q: %w", s, err)
	}
	p := Period{Month: month, Year: year}
	if err := p.Validate(); err != nil {
		return Period{}, fmt.Errorf("period %q: %w", s, err)
	}
	return p, nil
}
