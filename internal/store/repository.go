package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/finspect-dev/finspect/internal/model"
	"github.com/finspect-dev/finspect/internal/period"
)

// Repository stores pipeline records as JSON documents in a KV:
//
//	company/{company}
//	link/{accountant}/{company}/{externalCode}
//	raw/{company}/{YYYY-MM}
//	sheet/{company}/{YYYY-MM}
//
// Path segments are escaped so identifiers may contain "/".
type Repository struct {
	kv KV
}

// NewRepository returns a Repository over kv.
func NewRepository(kv KV) *Repository {
	return &Repository{kv: kv}
}

// KV returns the underlying store.
func (r *Repository) KV() KV { return r.kv }

func key(parts ...string) string {
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.Join(parts, "/")
}

func prefix(parts ...string) string {
	return key(parts...) + "/"
}

func (r *Repository) get(ctx context.Context, k string, v any) error {
	data, err := r.kv.Get(ctx, k)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decoding %s: %w", k, err)
	}
	return nil
}

func (r *Repository) put(ctx context.Context, k string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", k, err)
	}
	return r.kv.Put(ctx, k, data)
}

func list[T any](ctx context.Context, kv KV, p string) ([]T, error) {
	entries, err := kv.List(ctx, p)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(entries))
	for _, e := range entries {
		var v T
		if err := json.Unmarshal(e.Value, &v); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", e.Key, err)
		}
		out = append(out, v)
	}
	return out, nil
}

var errUnchanged = errors.New("unchanged")

// update decodes the current document (zero value when missing), lets fn
// modify it, and writes it back. fn returning false skips the write.
func update[T any](ctx context.Context, kv KV, k string, fn func(v *T, exists bool) (bool, error)) error {
	err := kv.Update(ctx, k, func(old []byte, exists bool) ([]byte, error) {
		var v T
		if exists {
			if err := json.Unmarshal(old, &v); err != nil {
				return nil, fmt.Errorf("decoding %s: %w", k, err)
			}
		}
		changed, err := fn(&v, exists)
		if err != nil {
			return nil, err
		}
		if !changed {
			return nil, errUnchanged
		}
		return json.Marshal(v)
	})
	if errors.Is(err, errUnchanged) {
		return nil
	}
	return err
}

// Company returns the company or ErrNotFound.
func (r *Repository) Company(ctx context.Context, id string) (model.Company, error) {
	var c model.Company
	if err := r.get(ctx, key("company", id), &c); err != nil {
		return model.Company{}, fmt.Errorf("company %s: %w", id, err)
	}
	return c, nil
}

// SaveCompany creates or replaces a company, keeping LastBalanceSheet when
// the stored one is newer.
func (r *Repository) SaveCompany(ctx context.Context, c model.Company) error {
	if c.ID == "" {
		return errors.New("company id is required")
	}
	return update(ctx, r.kv, key("company", c.ID), func(cur *model.Company, exists bool) (bool, error) {
		last := c.LastBalanceSheet
		if exists && cur.LastBalanceSheet > last {
			last = cur.LastBalanceSheet
		}
		*cur = c
		cur.LastBalanceSheet = last
		return true, nil
	})
}

// Companies returns every company sorted by id.
func (r *Repository) Companies(ctx context.Context) ([]model.Company, error) {
	return list[model.Company](ctx, r.kv, "company/")
}

// AdvanceLastSheet moves the company's LastBalanceSheet forward to p. It
// never moves it backwards.
func (r *Repository) AdvanceLastSheet(ctx context.Context, companyID string, p period.Period) error {
	return update(ctx, r.kv, key("company", companyID), func(c *model.Company, exists bool) (bool, error) {
		if !exists {
			return false, fmt.Errorf("company %s: %w", companyID, ErrNotFound)
		}
		if p.SortKey() <= c.LastBalanceSheet {
			return false, nil
		}
		c.LastBalanceSheet = p.SortKey()
		return true, nil
	})
}

func linkKey(accountantID, companyID, external string) string {
	return key("link", accountantID, companyID, external)
}

// UpsertUniqueAccount records an external account seen in an import. Name
// and level are refreshed; an existing resolution is kept.
func (r *Repository) UpsertUniqueAccount(ctx context.Context, l model.AccountLink) error {
	k := linkKey(l.AccountantID, l.CompanyID, l.ExternalCode)
	return update(ctx, r.kv, k, func(cur *model.AccountLink, exists bool) (bool, error) {
		internal := l.InternalCode
		if exists && cur.Resolved() {
			internal = cur.InternalCode
		}
		*cur = l
		cur.InternalCode = internal
		return true, nil
	})
}

// ResolveLinkIfUnset sets the link's internal code unless it already has
// one. It reports whether the link changed.
func (r *Repository) ResolveLinkIfUnset(ctx context.Context, accountantID, companyID, external, internal string) (bool, error) {
	changed := false
	err := update(ctx, r.kv, linkKey(accountantID, companyID, external), func(l *model.AccountLink, exists bool) (bool, error) {
		if !exists {
			return false, fmt.Errorf("link %s: %w", external, ErrNotFound)
		}
		if l.Resolved() {
			return false, nil
		}
		l.InternalCode = internal
		changed = true
		return true, nil
	})
	return changed, err
}

// SetLink points an existing link at internal, replacing any previous
// resolution.
func (r *Repository) SetLink(ctx context.Context, accountantID, companyID, external, internal string) error {
	return update(ctx, r.kv, linkKey(accountantID, companyID, external), func(l *model.AccountLink, exists bool) (bool, error) {
		if !exists {
			return false, fmt.Errorf("link %s: %w", external, ErrNotFound)
		}
		l.InternalCode = internal
		return true, nil
	})
}

// CompanyLinks returns the company's links sorted by external code key.
func (r *Repository) CompanyLinks(ctx context.Context, accountantID, companyID string) ([]model.AccountLink, error) {
	return list[model.AccountLink](ctx, r.kv, prefix("link", accountantID, companyID))
}

// AccountantLinks returns the links of every company of the accountant.
func (r *Repository) AccountantLinks(ctx context.Context, accountantID string) ([]model.AccountLink, error) {
	return list[model.AccountLink](ctx, r.kv, prefix("link", accountantID))
}

// PutRawSheet stores a raw sheet, replacing any sheet of the same period.
func (r *Repository) PutRawSheet(ctx context.Context, s model.RawBalanceSheet) error {
	return r.put(ctx, key("raw", s.CompanyID, s.Period.SortKey()), s)
}

// RawSheet returns the raw sheet of a period or ErrNotFound.
func (r *Repository) RawSheet(ctx context.Context, companyID string, p period.Period) (model.RawBalanceSheet, error) {
	var s model.RawBalanceSheet
	if err := r.get(ctx, key("raw", companyID, p.SortKey()), &s); err != nil {
		return model.RawBalanceSheet{}, fmt.Errorf("raw sheet %s %s: %w", companyID, p, err)
	}
	return s, nil
}

// RawSheets returns every raw sheet of a company in chronological order.
func (r *Repository) RawSheets(ctx context.Context, companyID string) ([]model.RawBalanceSheet, error) {
	return list[model.RawBalanceSheet](ctx, r.kv, prefix("raw", companyID))
}

// PutSheet stores a standardized sheet, replacing any sheet of the same period.
func (r *Repository) PutSheet(ctx context.Context, s model.BalanceSheet) error {
	return r.put(ctx, key("sheet", s.CompanyID, s.Period.SortKey()), s)
}

// Sheet returns the standardized sheet of a period or ErrNotFound.
func (r *Repository) Sheet(ctx context.Context, companyID string, p period.Period) (model.BalanceSheet, error) {
	var s model.BalanceSheet
	if err := r.get(ctx, key("sheet", companyID, p.SortKey()), &s); err != nil {
		return model.BalanceSheet{}, fmt.Errorf("sheet %s %s: %w", companyID, p, err)
	}
	return s, nil
}

// Sheets returns every standardized sheet of a company in chronological order.
func (r *Repository) Sheets(ctx context.Context, companyID string) ([]model.BalanceSheet, error) {
	return list[model.BalanceSheet](ctx, r.kv, prefix("sheet", companyID))
}

// DeleteSheet removes the raw and standardized sheets of a period. When the
// period was the company's newest, LastBalanceSheet falls back to the newest
// remaining raw sheet.
func (r *Repository) DeleteSheet(ctx context.Context, companyID string, p period.Period) error {
	if _, err := r.RawSheet(ctx, companyID, p); err != nil {
		return err
	}
	if err := r.kv.Delete(ctx, key("raw", companyID, p.SortKey())); err != nil {
		return err
	}
	if err := r.kv.Delete(ctx, key("sheet", companyID, p.SortKey())); err != nil {
		return err
	}

	remaining, err := r.RawSheets(ctx, companyID)
	if err != nil {
		return err
	}
	last := ""
	if n := len(remaining); n > 0 {
		last = remaining[n-1].Period.SortKey()
	}
	return update(ctx, r.kv, key("company", companyID), func(c *model.Company, exists bool) (bool, error) {
		if !exists || c.LastBalanceSheet != p.SortKey() {
			return false, nil
		}
		c.LastBalanceSheet = last
		return true, nil
	})
}
