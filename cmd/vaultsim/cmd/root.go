package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "vaultsim",
	Short: "An off-chain vault and strategy accounting simulator",
	Long: `Vaultsim simulates share-issuing vaults, yield strategies and the
token accounting between them.

It provides tools for:
  - Running deposit/withdraw scenarios against fresh vaults and strategies
  - Managing protocol fee configuration through a vault factory
  - Recording every transfer and contract event to an auditable ledger
  - Generating and validating run configurations`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}
