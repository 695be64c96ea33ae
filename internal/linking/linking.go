// Package linking decides when a company's accounts are fully mapped to the
// canonical chart and reuses an accountant's existing mappings.
package linking

import (
	"sort"

	"github.com/finspect-dev/finspect/internal/model"
)

// IsStandardized reports whether every link at the deepest observed level
// has an internal code. An empty link set is not standardized.
func IsStandardized(links []model.AccountLink) bool {
	if len(links) == 0 {
		return false
	}
	deepest := 0
	for _, l := range links {
		if l.Level > deepest {
			deepest = l.Level
		}
	}
	for _, l := range links {
		if l.Level == deepest && !l.Resolved() {
			return false
		}
	}
	return true
}

// Unresolved returns the deepest-level links still missing an internal code.
func Unresolved(links []model.AccountLink) []model.AccountLink {
	deepest := 0
	for _, l := range links {
		if l.Level > deepest {
			deepest = l.Level
		}
	}
	var out []model.AccountLink
	for _, l := range links {
		if l.Level == deepest && !l.Resolved() {
			out = append(out, l)
		}
	}
	return out
}

// UniqueAccounts collapses raw accounts from several sheets to one entry per
// code, keeping the first name seen, ordered by code.
func UniqueAccounts(sheets ...[]model.RawAccount) []model.RawAccount {
	seen := make(map[string]bool)
	var out []model.RawAccount
	for _, accts := range sheets {
		for _, a := range accts {
			if seen[a.Code] {
				continue
			}
			seen[a.Code] = true
			out = append(out, model.RawAccount{Code: a.Code, Name: a.Name, Level: a.Level})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Resolution is an internal code to copy onto a company link.
type Resolution struct {
	ExternalCode string
	InternalCode string
	// SourceCompanyID is the company whose link was copied.
	SourceCompanyID string
}

// Plan finds, for every unresolved company link, a resolved link of the same
// accountant with exactly the same code and name. Names must match byte for
// byte; accounts whose names differ stay unresolved.
func Plan(company []model.AccountLink, accountant []model.AccountLink) []Resolution {
	type key struct{ code, name string }
	known := make(map[key]model.AccountLink)
	for _, l := range accountant {
		if !l.Resolved() {
			continue
		}
		k := key{l.ExternalCode, l.Name}
		if _, ok := known[k]; !ok {
			known[k] = l
		}
	}

	var out []Resolution
	for _, l := range company {
		if l.Resolved() {
			continue
		}
		src, ok := known[key{l.ExternalCode, l.Name}]
		if !ok {
			continue
		}
		out = append(out, Resolution{
			ExternalCode:    l.ExternalCode,
			InternalCode:    src.InternalCode,
			SourceCompanyID: src.CompanyID,
		})
	}
	return out
}

// Apply returns links with resolutions applied to unresolved entries only.
func Apply(links []model.AccountLink, res []Resolution) []model.AccountLink {
	byCode := make(map[string]string, len(res))
	for _, r := range res {
		byCode[r.ExternalCode] = r.InternalCode
	}
	out := make([]model.AccountLink, len(links))
	for i, l := range links {
		if ic, ok := byCode[l.ExternalCode]; ok && !l.Resolved() {
			l.InternalCode = ic
		}
		out[i] = l
	}
	return out
}

// Table maps external codes to internal codes for resolved links.
func Table(links []model.AccountLink) map[string]string {
	t := make(map[string]string, len(links))
	for _, l := range links {
		if l.Resolved() {
			t[l.ExternalCode] = l.InternalCode
		}
	}
	return t
}
