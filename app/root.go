// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "policyhub",
	Short: "PolicyHub is a governance, risk and compliance back office",
	Long: `PolicyHub is a governance, risk and compliance back office that
provides a REST API for regulatory catalogues, policy documents, coverage
mappings, risk registers, findings and audits.`,
	Args: cobra.OnlyValidArgs,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
