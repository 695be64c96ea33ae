package accounts

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/finspect-dev/finspect/internal/model"
)

// ChartFile is the chart location relative to a data directory.
const ChartFile = "accounts/chart-of-accounts.csv"

// Service provides in-memory lookup over the canonical chart of accounts.
type Service struct {
	accounts []model.StandardAccount
	byCode   map[string]model.StandardAccount
}

// NewService creates a Service from a slice of accounts.
func NewService(accounts []model.StandardAccount) *Service {
	byCode := make(map[string]model.StandardAccount, len(accounts))
	for _, a := range accounts {
		byCode[a.Code] = a
	}
	return &Service{accounts: accounts, byCode: byCode}
}

// Load reads the chart from path. An empty path yields the default chart.
func Load(path string) (*Service, error) {
	if path == "" {
		return NewService(DefaultChart()), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening chart of accounts: %w", err)
	}
	defer f.Close()

	accts, err := ReadAccounts(f)
	if err != nil {
		return nil, fmt.Errorf("reading chart of accounts: %w", err)
	}
	if errs := Validate(accts); len(errs) > 0 {
		return nil, fmt.Errorf("invalid chart of accounts: %w", errs[0])
	}
	return NewService(accts), nil
}

// All returns all accounts.
func (s *Service) All() []model.StandardAccount {
	return s.accounts
}

// Get returns an account by code.
func (s *Service) Get(code string) (model.StandardAccount, bool) {
	a, ok := s.byCode[code]
	return a, ok
}

// Exists reports whether a code exists.
func (s *Service) Exists(code string) bool {
	_, ok := s.byCode[code]
	return ok
}

// ByLevel returns all accounts of the given level, ordered by code.
func (s *Service) ByLevel(level int) []model.StandardAccount {
	var result []model.StandardAccount
	for _, a := range s.accounts {
		if a.Level == level {
			result = append(result, a)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Code < result[j].Code })
	return result
}

// MaxLevel returns the deepest level in the chart.
func (s *Service) MaxLevel() int {
	max := 0
	for _, a := range s.accounts {
		if a.Level > max {
			max = a.Level
		}
	}
	return max
}

// Save writes the chart of accounts under dir.
func (s *Service) Save(dir string) error {
	path := filepath.Join(dir, ChartFile)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating accounts dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating chart of accounts file: %w", err)
	}
	defer f.Close()

	if err := WriteAccounts(f, s.accounts); err != nil {
		return fmt.Errorf("writing chart of accounts: %w", err)
	}
	return nil
}
