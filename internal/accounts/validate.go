package accounts

import (
	"fmt"
	"strings"

	"github.com/finspect-dev/finspect/internal/code"
	"github.com/finspect-dev/finspect/internal/model"
)

// ValidationError describes a single problem in a chart of accounts.
type ValidationError struct {
	Code        string
	Description string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("account %s: %s", e.Code, e.Description)
}

// Validate checks that codes parse, are unique, and that every account below
// level 1 has its parent in the chart.
func Validate(accts []model.StandardAccount) []ValidationError {
	var errs []ValidationError

	seen := make(map[string]bool, len(accts))
	parsed := make([]code.Code, 0, len(accts))
	for _, a := range accts {
		c, err := code.Parse(a.Code)
		if err != nil {
			errs = append(errs, ValidationError{Code: a.Code, Description: err.Error()})
			continue
		}
		if c.Level() == 0 {
			errs = append(errs, ValidationError{Code: a.Code, Description: "code has no non-zero segment"})
			continue
		}
		if seen[a.Code] {
			errs = append(errs, ValidationError{Code: a.Code, Description: "duplicate code"})
			continue
		}
		if strings.TrimSpace(a.Name) == "" {
			errs = append(errs, ValidationError{Code: a.Code, Description: "missing name"})
		}
		seen[a.Code] = true
		parsed = append(parsed, c)
	}

	for _, child := range parsed {
		if child.Level() == 1 {
			continue
		}
		found := false
		for _, parent := range parsed {
			if code.IsDirectChild(parent, child) {
				found = true
				break
			}
		}
		if !found {
			errs = append(errs, ValidationError{Code: child.String(), Description: "parent account not in chart"})
		}
	}

	return errs
}
