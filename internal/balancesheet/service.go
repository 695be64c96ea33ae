// Package balancesheet runs the balance-sheet pipeline for a company:
// import, link, standardize and the read-side reports built on top.
package balancesheet

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/finspect-dev/finspect/internal/accounts"
	"github.com/finspect-dev/finspect/internal/aggregate"
	"github.com/finspect-dev/finspect/internal/importer"
	"github.com/finspect-dev/finspect/internal/linking"
	"github.com/finspect-dev/finspect/internal/model"
	"github.com/finspect-dev/finspect/internal/situation"
	"github.com/finspect-dev/finspect/internal/store"
)

var (
	// ErrCompanyNotFound is returned for unknown companies or companies of
	// another accountant.
	ErrCompanyNotFound = errors.New("company not found")
	// ErrNotStandardized is returned when a report needs every deepest-level
	// account linked and some are not.
	ErrNotStandardized = errors.New("company balance sheets are not standardized")
	// ErrUnknownInternalCode is returned when a link targets an account
	// missing from the chart.
	ErrUnknownInternalCode = errors.New("account is not in the chart of accounts")
)

// FileTooLargeError rejects an upload above the configured size limit.
type FileTooLargeError struct {
	Filename string
	Size     int64
	Limit    int64
}

func (e FileTooLargeError) Error() string {
	return fmt.Sprintf("%s is %d bytes, larger than the %d byte limit", e.Filename, e.Size, e.Limit)
}

// Options configures a Service. Zero values select defaults.
type Options struct {
	MaxFileSize     int64
	Concurrency     int
	StrictAmbiguity bool
	Parsers         *importer.Registry
	Analyzer        *situation.Analyzer
	Logger          *zap.Logger
	// LogRoot is the directory holding logs/import-log.csv. Empty disables
	// the import log.
	LogRoot string
	Now     func() time.Time
}

// Service orchestrates the pipeline over a Repository.
type Service struct {
	repo     *store.Repository
	chart    *accounts.Service
	parsers  *importer.Registry
	analyzer *situation.Analyzer
	logger   *zap.Logger
	opts     Options
}

// NewService creates a Service.
func NewService(repo *store.Repository, chart *accounts.Service, opts Options) *Service {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.MaxFileSize <= 0 {
		opts.MaxFileSize = 1 << 20
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 4
	}
	if opts.Parsers == nil {
		opts.Parsers = importer.DefaultRegistry()
	}
	if opts.Analyzer == nil {
		opts.Analyzer = situation.NewAnalyzer(situation.DefaultRules(), opts.Logger)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		repo:     repo,
		chart:    chart,
		parsers:  opts.Parsers,
		analyzer: opts.Analyzer,
		logger:   opts.Logger,
		opts:     opts,
	}
}

// company loads a company owned by accountantID.
func (s *Service) company(ctx context.Context, accountantID, companyID string) (model.Company, error) {
	c, err := s.repo.Company(ctx, companyID)
	if errors.Is(err, store.ErrNotFound) || (err == nil && c.AccountantID != accountantID) {
		return model.Company{}, fmt.Errorf("%s: %w", companyID, ErrCompanyNotFound)
	}
	if err != nil {
		return model.Company{}, err
	}
	return c, nil
}

// AddCompany registers a company, checking that its accounting software has
// a parser.
func (s *Service) AddCompany(ctx context.Context, c model.Company) error {
	if c.AccountantID == "" {
		return errors.New("accountant id is required")
	}
	if _, err := s.parsers.Lookup(c.Software); err != nil {
		return err
	}
	if existing, err := s.repo.Company(ctx, c.ID); err == nil && existing.AccountantID != c.AccountantID {
		return fmt.Errorf("company %s belongs to another accountant", c.ID)
	}
	return s.repo.SaveCompany(ctx, c)
}

// Company returns a company owned by accountantID.
func (s *Service) Company(ctx context.Context, accountantID, companyID string) (model.Company, error) {
	return s.company(ctx, accountantID, companyID)
}

// Links returns the company's unique accounts with their resolution state.
func (s *Service) Links(ctx context.Context, accountantID, companyID string) ([]model.AccountLink, error) {
	if _, err := s.company(ctx, accountantID, companyID); err != nil {
		return nil, err
	}
	return s.repo.CompanyLinks(ctx, accountantID, companyID)
}

// IsStandardized reports whether every deepest-level account of the company
// is linked to the chart.
func (s *Service) IsStandardized(ctx context.Context, accountantID, companyID string) (bool, error) {
	links, err := s.Links(ctx, accountantID, companyID)
	if err != nil {
		return false, err
	}
	return linking.IsStandardized(links), nil
}

// Link points external account codes at chart accounts. When the company
// becomes standardized every raw sheet is rebuilt.
func (s *Service) Link(ctx context.Context, accountantID, companyID string, links map[string]string) (bool, error) {
	if _, err := s.company(ctx, accountantID, companyID); err != nil {
		return false, err
	}
	for external, internal := range links {
		if !s.chart.Exists(internal) {
			return false, fmt.Errorf("linking %s to %s: %w", external, internal, ErrUnknownInternalCode)
		}
	}
	for external, internal := range links {
		if err := s.repo.SetLink(ctx, accountantID, companyID, external, internal); err != nil {
			return false, fmt.Errorf("linking %s: %w", external, err)
		}
		s.logger.Info("account linked",
			zap.String("company", companyID),
			zap.String("external", external),
			zap.String("internal", internal))
	}

	standardized, err := s.IsStandardized(ctx, accountantID, companyID)
	if err != nil || !standardized {
		return false, err
	}
	if _, err := s.Rebuild(ctx, accountantID, companyID); err != nil {
		return true, err
	}
	return true, nil
}

// Rebuild recomputes every standardized sheet of the company from its raw
// sheets. It returns the number of sheets written.
func (s *Service) Rebuild(ctx context.Context, accountantID, companyID string) (int, error) {
	links, err := s.Links(ctx, accountantID, companyID)
	if err != nil {
		return 0, err
	}
	if !linking.IsStandardized(links) {
		return 0, fmt.Errorf("%s: %w", companyID, ErrNotStandardized)
	}
	raws, err := s.repo.RawSheets(ctx, companyID)
	if err != nil {
		return 0, err
	}
	table := linking.Table(links)
	for i, raw := range raws {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		sheet, err := s.standardize(raw, table)
		if err != nil {
			return i, err
		}
		if err := s.repo.PutSheet(ctx, sheet); err != nil {
			return i, err
		}
	}
	s.logger.Info("balance sheets rebuilt", zap.String("company", companyID), zap.Int("sheets", len(raws)))
	return len(raws), nil
}

func (s *Service) standardize(raw model.RawBalanceSheet, table map[string]string) (model.BalanceSheet, error) {
	res, err := aggregate.Aggregate(raw.Accounts, table, s.chart.All(), aggregate.Options{
		Strict: s.opts.StrictAmbiguity,
		Logger: s.logger.With(zap.String("company", raw.CompanyID), zap.Stringer("period", raw.Period)),
	})
	if err != nil {
		return model.BalanceSheet{}, fmt.Errorf("standardizing %s: %w", raw.Period, err)
	}
	return model.BalanceSheet{
		CompanyID: raw.CompanyID,
		Period:    raw.Period,
		BuiltAt:   s.opts.Now().UTC(),
		Accounts:  res.Accounts,
	}, nil
}

// Companies lists companies, optionally only those of accountantID.
func (s *Service) Companies(ctx context.Context, accountantID string) ([]model.Company, error) {
	all, err := s.repo.Companies(ctx)
	if err != nil || accountantID == "" {
		return all, err
	}
	var out []model.Company
	for _, c := range all {
		if c.AccountantID == accountantID {
			out = append(out, c)
		}
	}
	return out, nil
}
