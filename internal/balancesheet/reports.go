package balancesheet

import (
	"context"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/finspect-dev/finspect/internal/analytics"
	"github.com/finspect-dev/finspect/internal/export"
	"github.com/finspect-dev/finspect/internal/model"
	"github.com/finspect-dev/finspect/internal/period"
	"github.com/finspect-dev/finspect/internal/situation"
)

// standardizedSheets returns the company's standardized sheets, refusing
// companies with unlinked accounts.
func (s *Service) standardizedSheets(ctx context.Context, accountantID, companyID string) ([]model.BalanceSheet, error) {
	ok, err := s.IsStandardized(ctx, accountantID, companyID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", companyID, ErrNotStandardized)
	}
	return s.repo.Sheets(ctx, companyID)
}

// Dashboard builds the monthly, quarterly and yearly metric series for the
// years of from (MM/YYYY) through to, plus the year before from.
func (s *Service) Dashboard(ctx context.Context, accountantID, companyID, from, to string) ([]analytics.Chunk, error) {
	start, err := period.ParseSlash(from)
	if err != nil {
		return nil, err
	}
	end, err := period.ParseSlash(to)
	if err != nil {
		return nil, err
	}
	if end.Before(start) {
		return nil, fmt.Errorf("dashboard range %s to %s ends before it starts", from, to)
	}
	sheets, err := s.standardizedSheets(ctx, accountantID, companyID)
	if err != nil {
		return nil, err
	}
	return analytics.Build(sheets, start.Year, end.Year, s.opts.Now()), nil
}

// Analysis evaluates the situations of freq against the company's sheets and
// returns the messages of those that hold. Monthly uses every sheet of year,
// quarterly the quarter-end months and yearly December of the last three years.
func (s *Service) Analysis(ctx context.Context, accountantID, companyID string, freq situation.Frequency, year int) ([]string, error) {
	sheets, err := s.standardizedSheets(ctx, accountantID, companyID)
	if err != nil {
		return nil, err
	}
	selected := selectSheets(sheets, freq, year)
	book, err := situation.NewBook(selected, s.analyzer.Rules().Indicators)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("running analysis",
		zap.String("company", companyID),
		zap.String("frequency", string(freq)),
		zap.Int("year", year),
		zap.Int("sheets", len(selected)))
	return s.analyzer.Run(book, freq, year), nil
}

// selectSheets expects sheets in chronological order.
func selectSheets(sheets []model.BalanceSheet, freq situation.Frequency, year int) []model.BalanceSheet {
	var out []model.BalanceSheet
	for _, sh := range sheets {
		p := sh.Period
		switch freq {
		case situation.Monthly:
			if p.Year == year {
				out = append(out, sh)
			}
		case situation.Quarterly:
			if p.Year == year && p.Month%3 == 0 {
				out = append(out, sh)
			}
		case situation.Yearly:
			if p.Month == 12 && p.Year >= year-2 && p.Year <= year {
				out = append(out, sh)
			}
		}
	}
	return out
}

// FinancialStatements returns the account balances of from, from+1 and
// from+2, keyed by year. Each year uses its December sheet, or for the
// current year its latest sheet. Years without a sheet map to nil.
func (s *Service) FinancialStatements(ctx context.Context, accountantID, companyID string, from int) (map[int]map[string]decimal.Decimal, error) {
	if _, err := s.company(ctx, accountantID, companyID); err != nil {
		return nil, err
	}
	sheets, err := s.repo.Sheets(ctx, companyID)
	if err != nil {
		return nil, err
	}
	current := s.opts.Now().Year()
	out := make(map[int]map[string]decimal.Decimal, 3)
	for y := from; y < from+3; y++ {
		out[y] = nil
		for _, sh := range sheets {
			if sh.Period.Year != y {
				continue
			}
			if sh.Period.Month == 12 || y == current {
				// Sheets are chronological, so the last match is the latest.
				out[y] = sh.AccountMap()
			}
		}
	}
	return out, nil
}

// RawSheet returns a stored raw sheet.
func (s *Service) RawSheet(ctx context.Context, accountantID, companyID string, p period.Period) (model.RawBalanceSheet, error) {
	if _, err := s.company(ctx, accountantID, companyID); err != nil {
		return model.RawBalanceSheet{}, err
	}
	return s.repo.RawSheet(ctx, companyID, p)
}

// Export writes the raw sheet of p as an xlsx workbook.
func (s *Service) Export(ctx context.Context, accountantID, companyID string, p period.Period, w io.Writer) error {
	raw, err := s.RawSheet(ctx, accountantID, companyID, p)
	if err != nil {
		return err
	}
	return export.WriteXLSX(w, raw)
}

// DeleteSheet removes the raw and standardized sheets of p.
func (s *Service) DeleteSheet(ctx context.Context, accountantID, companyID string, p period.Period) error {
	if _, err := s.company(ctx, accountantID, companyID); err != nil {
		return err
	}
	if err := s.repo.DeleteSheet(ctx, companyID, p); err != nil {
		return err
	}
	s.logger.Info("balance sheet deleted", zap.String("company", companyID), zap.Stringer("period", p))
	return nil
}
