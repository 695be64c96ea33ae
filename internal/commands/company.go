package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/finspect-dev/finspect/internal/model"
)

func newCompanyCommand(g *globalFlags) *cobra.Command {
	companyCmd := &cobra.Command{
		Use:   "company",
		Short: "Manage client companies",
	}
	companyCmd.AddCommand(newCompanyAddCommand(g))
	companyCmd.AddCommand(newCompanyListCommand(g))
	return companyCmd
}

func newCompanyAddCommand(g *globalFlags) *cobra.Command {
	var c model.Company

	cmd := &cobra.Command{
		Use:   "add <companyID>",
		Short: "Register a company and its accounting software",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c.ID = args[0]
			return withApp(cmd, g, func(a *app) error {
				if err := a.svc.AddCompany(cmd.Context(), c); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Company %s registered (%s)\n", c.ID, c.Software)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&c.AccountantID, "accountant", "", "accountant id (required)")
	cmd.Flags().StringVar(&c.Software, "software", "", "accounting software, e.g. \"Modelo 2 Contmat.bv\" (required)")
	cmd.Flags().StringVar(&c.Name, "name", "", "company display name")
	_ = cmd.MarkFlagRequired("accountant")
	_ = cmd.MarkFlagRequired("software")

	return cmd
}

func newCompanyListCommand(g *globalFlags) *cobra.Command {
	var accountant string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List companies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, g, func(a *app) error {
				companies, err := a.svc.Companies(cmd.Context(), accountant)
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tACCOUNTANT\tNAME\tSOFTWARE\tLAST SHEET")
				for _, c := range companies {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", c.ID, c.AccountantID, c.Name, c.Software, c.LastBalanceSheet)
				}
				return tw.Flush()
			})
		},
	}

	cmd.Flags().StringVar(&accountant, "accountant", "", "only companies of this accountant")
	return cmd
}
