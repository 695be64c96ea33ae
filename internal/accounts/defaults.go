package accounts

import (
	"bytes"
	_ "embed"

	"github.com/finspect-dev/finspect/internal/model"
)

//go:embed chart.csv
var defaultChartCSV []byte

// DefaultChart returns the canonical chart shipped with the binary.
func DefaultChart() []model.StandardAccount {
	accts, err := ReadAccounts(bytes.NewReader(defaultChartCSV))
	if err != nil {
		panic("embedded chart of accounts: " + err.Error())
	}
	return accts
}
