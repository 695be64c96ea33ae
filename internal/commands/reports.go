package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/finspect-dev/finspect/internal/export"
	"github.com/finspect-dev/finspect/internal/period"
	"github.com/finspect-dev/finspect/internal/situation"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newDashboardCommand(g *globalFlags) *cobra.Command {
	var o owner
	var from, to string

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Print monthly, quarterly and yearly metrics as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, g, func(a *app) error {
				chunks, err := a.svc.Dashboard(cmd.Context(), o.accountant, o.company, from, to)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), chunks)
			})
		},
	}

	o.register(cmd)
	cmd.Flags().StringVar(&from, "from", "", "first period, MM/YYYY (required)")
	cmd.Flags().StringVar(&to, "to", "", "last period, MM/YYYY (required)")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

func newAnalyzeCommand(g *globalFlags) *cobra.Command {
	var o owner
	var frequency string
	var year int

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Evaluate situation rules and print the messages that apply",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			freq, err := situation.ParseFrequency(frequency)
			if err != nil {
				return err
			}
			return withApp(cmd, g, func(a *app) error {
				msgs, err := a.svc.Analysis(cmd.Context(), o.accountant, o.company, freq, year)
				if err != nil {
					return err
				}
				for _, m := range msgs {
					fmt.Fprintln(cmd.OutOrStdout(), m)
				}
				return nil
			})
		},
	}

	o.register(cmd)
	cmd.Flags().StringVar(&frequency, "frequency", "monthly", "monthly, quarterly or yearly")
	cmd.Flags().IntVar(&year, "year", 0, "analysis year (required)")
	_ = cmd.MarkFlagRequired("year")
	return cmd
}

func newStatementsCommand(g *globalFlags) *cobra.Command {
	var o owner
	var from int

	cmd := &cobra.Command{
		Use:   "statements",
		Short: "Print account balances for three consecutive years as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, g, func(a *app) error {
				st, err := a.svc.FinancialStatements(cmd.Context(), o.accountant, o.company, from)
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), st)
			})
		},
	}

	o.register(cmd)
	cmd.Flags().IntVar(&from, "from", 0, "first year (required)")
	_ = cmd.MarkFlagRequired("from")
	return cmd
}

func newExportCommand(g *globalFlags) *cobra.Command {
	var o owner
	var out string

	cmd := &cobra.Command{
		Use:   "export <MM-YYYY>",
		Short: "Write a raw balance sheet as an xlsx workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := period.ParseKey(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, g, func(a *app) error {
				if out == "" {
					c, err := a.svc.Company(cmd.Context(), o.accountant, o.company)
					if err != nil {
						return err
					}
					raw, err := a.svc.RawSheet(cmd.Context(), o.accountant, o.company, p)
					if err != nil {
						return err
					}
					name := c.Name
					if name == "" {
						name = c.ID
					}
					out = filepath.Join(a.dir, "exports", export.Filename(raw, name))
				}

				if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
					return fmt.Errorf("creating export directory: %w", err)
				}
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("creating %s: %w", out, err)
				}
				if err := a.svc.Export(cmd.Context(), o.accountant, o.company, p, f); err != nil {
					f.Close()
					os.Remove(out)
					return err
				}
				if err := f.Close(); err != nil {
					return fmt.Errorf("writing %s: %w", out, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Exported %s to %s\n", p, out)
				return nil
			})
		},
	}

	o.register(cmd)
	cmd.Flags().StringVar(&out, "out", "", "output file (default <dir>/exports/YYYY_MM_<company>.xlsx)")
	return cmd
}

func newDeleteCommand(g *globalFlags) *cobra.Command {
	var o owner

	cmd := &cobra.Command{
		Use:   "delete <MM-YYYY>",
		Short: "Delete the balance sheets of a period",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := period.ParseKey(args[0])
			if err != nil {
				return err
			}
			return withApp(cmd, g, func(a *app) error {
				if err := a.svc.DeleteSheet(cmd.Context(), o.accountant, o.company, p); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted balance sheets of %s\n", p)
				return nil
			})
		},
	}

	o.register(cmd)
	return cmd
}
