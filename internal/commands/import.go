package commands

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/finspect-dev/finspect/internal/balancesheet"
	"github.com/finspect-dev/finspect/internal/importer"
	"github.com/finspect-dev/finspect/internal/importlog"
	"github.com/finspect-dev/finspect/internal/period"
)

func newImportCommand(g *globalFlags) *cobra.Command {
	var o owner
	var month, year int

	cmd := &cobra.Command{
		Use:   "import [file...]",
		Short: "Import balance-sheet files",
		Long: "Import balance-sheet files for a company. Files are named MM-YYYY.ext unless\n" +
			"--month and --year are given for a single file. Without arguments every file in\n" +
			"<dir>/import is imported and moved to <dir>/import/processed.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if (month == 0) != (year == 0) {
				return errors.New("--month and --year must be given together")
			}
			if month != 0 && len(args) != 1 {
				return errors.New("--month and --year need exactly one file")
			}
			return withApp(cmd, g, func(a *app) error {
				return runImport(cmd, a, o, args, period.Period{Month: month, Year: year})
			})
		},
	}

	o.register(cmd)
	cmd.Flags().IntVar(&month, "month", 0, "period month for a single file")
	cmd.Flags().IntVar(&year, "year", 0, "period year for a single file")

	return cmd
}

func runImport(cmd *cobra.Command, a *app, o owner, paths []string, p period.Period) error {
	scanned := len(paths) == 0
	if scanned {
		files, err := importer.Scan(a.dir)
		if err != nil {
			return err
		}
		for _, f := range files {
			paths = append(paths, f.Path)
		}
		if len(paths) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No files to import.")
			return nil
		}
	}

	uploads := make([]balancesheet.Upload, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		uploads = append(uploads, balancesheet.Upload{Filename: filepath.Base(path), Data: data, Period: p})
	}

	res, err := a.svc.Import(cmd.Context(), o.accountant, o.company, uploads)
	for _, f := range res.Files {
		switch f.Outcome {
		case importlog.Imported:
			fmt.Fprintf(cmd.OutOrStdout(), "imported %s (%s, %d accounts)\n", f.Filename, f.Period, f.Accounts)
			if scanned {
				if err := importer.MarkProcessed(a.dir, f.Filename); err != nil {
					return err
				}
			}
		default:
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %v\n", f.Outcome, f.Filename, f.Err)
		}
	}
	if err != nil {
		return err
	}

	state := "no"
	if res.Standardized {
		state = "yes"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%d of %d files imported, %d accounts auto-linked, standardized: %s\n",
		res.Imported(), len(res.Files), res.AutoLinked, state)
	return nil
}
