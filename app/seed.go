package app

import (
	"github.com/spf13/cobra"

	"github.com/plantr/policyhub/internal/config"
	"github.com/plantr/policyhub/internal/daemon"
)

func init() { //nolint: gochecknoinits
	seedCmd.Flags().StringVar(&configPath, "config", "", "Path to the etc/ config directory")

	rootCmd.AddCommand(seedCmd)
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the starter catalogue into the database",
	Long: `Seed opens the configured database, runs migrations and loads a
starter catalogue: a sample regulatory source with requirements, business
units, default roles and permissions, and an admin user.`,
	PreRun: func(_ *cobra.Command, _ []string) {
		if cfg, err = config.ReadConfig(configPath); err != nil {
			panic(err)
		}
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return daemon.SeedCatalogue(&cfg)
	},
}
