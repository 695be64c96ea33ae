package balancesheet

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/finspect-dev/finspect/internal/importer"
	"github.com/finspect-dev/finspect/internal/importlog"
	"github.com/finspect-dev/finspect/internal/linking"
	"github.com/finspect-dev/finspect/internal/model"
	"github.com/finspect-dev/finspect/internal/period"
)

// Upload is one balance-sheet file of an import batch. A zero Period is
// read from a filename like "03-2024.txt".
type Upload struct {
	Filename string
	Data     []byte
	Period   period.Period
}

// FileResult is the outcome of one upload.
type FileResult struct {
	Filename string
	Period   period.Period
	Accounts int
	Outcome  importlog.Outcome
	Err      error
}

// ImportResult summarizes a batch.
type ImportResult struct {
	BatchID      string
	Files        []FileResult
	AutoLinked   int
	Standardized bool
}

// Imported counts the files that were stored.
func (r ImportResult) Imported() int {
	n := 0
	for _, f := range r.Files {
		if f.Outcome == importlog.Imported {
			n++
		}
	}
	return n
}

type parsed struct {
	upload   Upload
	accounts []model.RawAccount
	err      error
}

// Import parses a batch of uploads with the company's parser and stores
// the raw sheets in chronological order. Rejected files do not abort the
// batch. Unique accounts are recorded as links, resolved from the
// accountant's other companies where names match, and when the company is
// standardized each stored period also gets its standardized sheet.
//
// Import fails as a whole only when the company or its parser cannot be
// found, the store fails, or ctx is cancelled; files not yet stored at
// cancellation are reported as skipped.
func (s *Service) Import(ctx context.Context, accountantID, companyID string, uploads []Upload) (ImportResult, error) {
	company, err := s.company(ctx, accountantID, companyID)
	if err != nil {
		return ImportResult{}, err
	}
	parser, err := s.parsers.Lookup(company.Software)
	if err != nil {
		return ImportResult{}, err
	}

	res := ImportResult{BatchID: uuid.NewString()}
	log := s.logger.With(zap.String("batch", res.BatchID), zap.String("company", companyID))

	var rejected []FileResult
	var batch []parsed
	for _, u := range uploads {
		if size := int64(len(u.Data)); size > s.opts.MaxFileSize {
			rejected = append(rejected, reject(u, FileTooLargeError{Filename: u.Filename, Size: size, Limit: s.opts.MaxFileSize}))
			continue
		}
		if u.Period == (period.Period{}) {
			p, err := period.FromFilename(u.Filename)
			if err != nil {
				rejected = append(rejected, reject(u, err))
				continue
			}
			u.Period = p
		} else if err := u.Period.Validate(); err != nil {
			rejected = append(rejected, reject(u, err))
			continue
		}
		batch = append(batch, parsed{upload: u})
	}
	sort.SliceStable(batch, func(i, j int) bool { return batch[i].upload.Period.Before(batch[j].upload.Period) })

	if err := s.parse(ctx, parser, batch); err != nil {
		return res, err
	}

	var ok [][]model.RawAccount
	for _, p := range batch {
		if p.err == nil {
			ok = append(ok, p.accounts)
		}
	}
	for _, a := range linking.UniqueAccounts(ok...) {
		err := s.repo.UpsertUniqueAccount(ctx, model.AccountLink{
			AccountantID: accountantID,
			CompanyID:    companyID,
			ExternalCode: a.Code,
			Name:         a.Name,
			Level:        a.Level,
		})
		if err != nil {
			return res, fmt.Errorf("recording account %s: %w", a.Code, err)
		}
	}
	if res.AutoLinked, err = s.autoLink(ctx, accountantID, companyID); err != nil {
		return res, err
	}

	links, err := s.repo.CompanyLinks(ctx, accountantID, companyID)
	if err != nil {
		return res, err
	}
	res.Standardized = linking.IsStandardized(links)
	table := linking.Table(links)

	var stopped error
	for _, p := range batch {
		fr := FileResult{Filename: p.upload.Filename, Period: p.upload.Period, Accounts: len(p.accounts)}
		switch {
		case stopped != nil:
			fr.Outcome, fr.Err = importlog.Skipped, stopped
		case p.err != nil:
			fr.Outcome, fr.Err = importlog.Rejected, p.err
		default:
			if stopped = ctx.Err(); stopped != nil {
				fr.Outcome, fr.Err = importlog.Skipped, stopped
				break
			}
			if err := s.persist(ctx, company, p, res, table); err != nil {
				if isStoreFailure(err) {
					return res, err
				}
				fr.Outcome, fr.Err = importlog.Rejected, err
				break
			}
			fr.Outcome = importlog.Imported
		}
		res.Files = append(res.Files, fr)
	}
	res.Files = append(res.Files, rejected...)

	for _, f := range res.Files {
		fields := []zap.Field{zap.String("file", f.Filename), zap.Stringer("period", f.Period), zap.Int("accounts", f.Accounts)}
		if f.Err != nil {
			log.Info("balance sheet "+string(f.Outcome), append(fields, zap.Error(f.Err))...)
			continue
		}
		log.Info("balance sheet imported", fields...)
	}
	log.Info("import finished",
		zap.Int("files", len(res.Files)),
		zap.Int("imported", res.Imported()),
		zap.Int("autoLinked", res.AutoLinked),
		zap.Bool("standardized", res.Standardized))

	s.appendLog(companyID, res)
	return res, stopped
}

func reject(u Upload, err error) FileResult {
	return FileResult{Filename: u.Filename, Period: u.Period, Outcome: importlog.Rejected, Err: err}
}

// parse runs the parser over batch in parallel, recording per-file errors in place.
func (s *Service) parse(ctx context.Context, parser importer.Parser, batch []parsed) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Concurrency)
	for i := range batch {
		p := &batch[i]
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			p.accounts, p.err = parser.Parse(bytes.NewReader(p.upload.Data))
			if p.err == nil && len(p.accounts) == 0 {
				p.err = importer.UnrecognizedFormatError{Format: parser.Format(), Reason: "no accounts found"}
			}
			return nil
		})
	}
	return g.Wait()
}

// autoLink copies resolutions from the accountant's other companies.
func (s *Service) autoLink(ctx context.Context, accountantID, companyID string) (int, error) {
	companyLinks, err := s.repo.CompanyLinks(ctx, accountantID, companyID)
	if err != nil {
		return 0, err
	}
	if len(linking.Unresolved(companyLinks)) == 0 {
		return 0, nil
	}
	accountantLinks, err := s.repo.AccountantLinks(ctx, accountantID)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, r := range linking.Plan(companyLinks, accountantLinks) {
		changed, err := s.repo.ResolveLinkIfUnset(ctx, accountantID, companyID, r.ExternalCode, r.InternalCode)
		if err != nil {
			return n, fmt.Errorf("auto-linking %s: %w", r.ExternalCode, err)
		}
		if changed {
			n++
			s.logger.Debug("account auto-linked",
				zap.String("company", companyID),
				zap.String("external", r.ExternalCode),
				zap.String("internal", r.InternalCode),
				zap.String("source", r.SourceCompanyID))
		}
	}
	return n, nil
}

type storeFailure struct{ err error }

func (e storeFailure) Error() string { return e.err.Error() }
func (e storeFailure) Unwrap() error { return e.err }

func isStoreFailure(err error) bool {
	var sf storeFailure
	return errors.As(err, &sf)
}

// persist stores one parsed file. The standardized sheet is computed before
// anything is written so a failed rollup leaves no trace of the period.
func (s *Service) persist(ctx context.Context, company model.Company, p parsed, res ImportResult, table map[string]string) error {
	raw := model.RawBalanceSheet{
		CompanyID:  company.ID,
		Period:     p.upload.Period,
		Filename:   p.upload.Filename,
		Software:   company.Software,
		BatchID:    res.BatchID,
		ImportedAt: s.opts.Now().UTC(),
		Accounts:   p.accounts,
	}
	var sheet *model.BalanceSheet
	if res.Standardized {
		st, err := s.standardize(raw, table)
		if err != nil {
			return err
		}
		sheet = &st
	}

	if err := s.repo.PutRawSheet(ctx, raw); err != nil {
		return storeFailure{err}
	}
	if sheet != nil {
		if err := s.repo.PutSheet(ctx, *sheet); err != nil {
			return storeFailure{err}
		}
	}
	if err := s.repo.AdvanceLastSheet(ctx, company.ID, raw.Period); err != nil {
		return storeFailure{err}
	}
	return nil
}

func (s *Service) appendLog(companyID string, res ImportResult) {
	if s.opts.LogRoot == "" || len(res.Files) == 0 {
		return
	}
	now := s.opts.Now().UTC()
	entries := make([]importlog.Entry, len(res.Files))
	for i, f := range res.Files {
		e := importlog.Entry{
			Timestamp: now,
			BatchID:   res.BatchID,
			CompanyID: companyID,
			File:      f.Filename,
			Accounts:  f.Accounts,
			Outcome:   f.Outcome,
		}
		if f.Period != (period.Period{}) {
			e.Period = f.Period.Key()
		}
		if f.Err != nil {
			e.Error = f.Err.Error()
		}
		entries[i] = e
	}
	if err := importlog.Append(s.opts.LogRoot, entries); err != nil {
		s.logger.Warn("failed to write import log", zap.Error(err))
	}
}
