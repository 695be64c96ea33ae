package commands

import (
	"github.com/spf13/cobra"

	"github.com/finspect-dev/finspect/internal/buildinfo"
)

// globalFlags are shared by every subcommand.
type globalFlags struct {
	dir    string
	config string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	var g globalFlags

	rootCmd := &cobra.Command{
		Use:     "finspect",
		Short:   "Balance-sheet standardization and financial analysis",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&g.dir, "dir", ".", "data directory")
	rootCmd.PersistentFlags().StringVar(&g.config, "config", "", "config file (default <dir>/finspect.yaml)")

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newCompanyCommand(&g))
	rootCmd.AddCommand(newImportCommand(&g))
	rootCmd.AddCommand(newLinksCommand(&g))
	rootCmd.AddCommand(newLinkCommand(&g))
	rootCmd.AddCommand(newRebuildCommand(&g))
	rootCmd.AddCommand(newDashboardCommand(&g))
	rootCmd.AddCommand(newAnalyzeCommand(&g))
	rootCmd.AddCommand(newStatementsCommand(&g))
	rootCmd.AddCommand(newExportCommand(&g))
	rootCmd.AddCommand(newDeleteCommand(&g))

	return rootCmd
}
