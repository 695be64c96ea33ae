package export

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/finspect-dev/finspect/internal/model"
	"github.com/finspect-dev/finspect/internal/period"
)

func rawSheet() model.RawBalanceSheet {
	return model.RawBalanceSheet{
		CompanyID: "c1",
		Period:    period.Period{Month: 3, Year: 2024},
		Accounts: []model.RawAccount{
			{Code: "1", Name: "ATIVO", Level: 1, Balances: model.Balances{
				PreviousBalance: decimal.RequireFromString("100.5"),
				Debit:           decimal.RequireFromString("20"),
				Credit:          decimal.RequireFromString("10"),
				CurrentBalance:  decimal.RequireFromString("110.5"),
			}},
			{Code: "1.1", Name: "CIRCULANTE", Level: 2},
		},
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, rawSheet()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Headers, rows[0])
	assert.Equal(t, []string{"1", "ATIVO", "100.5", "20", "10", "110.5"}, rows[1])
	assert.Equal(t, []string{"1.1", "CIRCULANTE", "0", "0", "0", "0"}, rows[2])
}

func TestSaveXLSX(t *testing.T) {
	dir := t.TempDir()
	path, err := SaveXLSX(dir, "Padaria/Centro", rawSheet())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "2024_03_Padaria_Centro.xlsx"), path)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	v, err := f.GetCellValue(SheetName, "F2")
	require.NoError(t, err)
	assert.Equal(t, "110.5", v)
}

func TestFilename_FallsBackToCompanyID(t *testing.T) {
	assert.Equal(t, "2024_03_c1.xlsx", Filename(rawSheet(), " "))
}
