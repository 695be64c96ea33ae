package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/finspect-dev/finspect/internal/linking"
)

func newLinksCommand(g *globalFlags) *cobra.Command {
	var o owner
	var unresolved bool

	cmd := &cobra.Command{
		Use:   "links",
		Short: "List a company's accounts and their chart links",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, g, func(a *app) error {
				links, err := a.svc.Links(cmd.Context(), o.accountant, o.company)
				if err != nil {
					return err
				}
				standardized := linking.IsStandardized(links)
				if unresolved {
					links = linking.Unresolved(links)
				}

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "CODE\tNAME\tLEVEL\tLINKED TO")
				for _, l := range links {
					target := l.InternalCode
					if target == "" {
						target = "-"
					}
					fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", l.ExternalCode, l.Name, l.Level, target)
				}
				if err := tw.Flush(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "standardized: %t\n", standardized)
				return nil
			})
		},
	}

	o.register(cmd)
	cmd.Flags().BoolVar(&unresolved, "unresolved", false, "only deepest-level accounts still unlinked")
	return cmd
}

func newLinkCommand(g *globalFlags) *cobra.Command {
	var o owner

	cmd := &cobra.Command{
		Use:   "link <external>=<internal>...",
		Short: "Link company accounts to the chart of accounts",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pairs := make(map[string]string, len(args))
			for _, arg := range args {
				ext, internal, ok := strings.Cut(arg, "=")
				if !ok || ext == "" || internal == "" {
					return fmt.Errorf("invalid link %q: want <external>=<internal>", arg)
				}
				pairs[ext] = internal
			}
			return withApp(cmd, g, func(a *app) error {
				standardized, err := a.svc.Link(cmd.Context(), o.accountant, o.company, pairs)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d accounts linked, standardized: %t\n", len(pairs), standardized)
				return nil
			})
		},
	}

	o.register(cmd)
	return cmd
}

func newRebuildCommand(g *globalFlags) *cobra.Command {
	var o owner

	cmd := &cobra.Command{
		Use:   "rebuild",
		Short: "Recompute every standardized balance sheet of a company",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, g, func(a *app) error {
				n, err := a.svc.Rebuild(cmd.Context(), o.accountant, o.company)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%d balance sheets rebuilt\n", n)
				return nil
			})
		},
	}

	o.register(cmd)
	return cmd
}
