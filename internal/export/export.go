// Package export renders raw balance sheets as spreadsheets.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/finspect-dev/finspect/internal/model"
)

// SheetName is the worksheet holding the account rows.
const SheetName = "Plano de Contas"

// Headers are the column titles of the exported worksheet.
var Headers = []string{"Código", "Descrição", "Saldo Inicial", "Débito", "Crédito", "Saldo Final"}

// Filename returns the export name for a raw sheet, e.g. "2024_03_Padaria.xlsx".
func Filename(raw model.RawBalanceSheet, companyName string) string {
	name := strings.TrimSpace(companyName)
	if name == "" {
		name = raw.CompanyID
	}
	name = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == os.PathSeparator {
			return '_'
		}
		return r
	}, name)
	return fmt.Sprintf("%04d_%02d_%s.xlsx", raw.Period.Year, raw.Period.Month, name)
}

// WriteXLSX writes raw as an xlsx workbook to w.
func WriteXLSX(w io.Writer, raw model.RawBalanceSheet) error {
	f, err := workbook(raw)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

// SaveXLSX writes raw into dir and returns the file path.
func SaveXLSX(dir, companyName string, raw model.RawBalanceSheet) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating export directory: %w", err)
	}
	f, err := workbook(raw)
	if err != nil {
		return "", err
	}
	defer f.Close()

	path := filepath.Join(dir, Filename(raw, companyName))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("saving %s: %w", path, err)
	}
	return path, nil
}

func workbook(raw model.RawBalanceSheet) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		f.Close()
		return nil, fmt.Errorf("naming worksheet: %w", err)
	}

	header := make([]any, len(Headers))
	for i, h := range Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		f.Close()
		return nil, fmt.Errorf("writing header: %w", err)
	}

	for i, a := range raw.Accounts {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, err
		}
		row := []any{
			a.Code,
			a.Name,
			a.PreviousBalance.InexactFloat64(),
			a.Debit.InexactFloat64(),
			a.Credit.InexactFloat64(),
			a.CurrentBalance.InexactFloat64(),
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			f.Close()
			return nil, fmt.Errorf("writing account %s: %w", a.Code, err)
		}
	}
	return f, nil
}
