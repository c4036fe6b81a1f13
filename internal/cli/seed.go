package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pkanalytics/pkcurve/internal/app"
)

var seedCmd = &cobra.Command{
	Use:   "seed-db",
	Short: "Load a dataset into the configured database",
	Long: `Copy a CSV dataset (or the bundled theophylline study when no path
is given) into the observations table of the database configured by
PKCURVE_DATABASE_URL.`,
	RunE: runSeed,
}

var seedDatasetPath string

func init() {
	rootCmd.AddCommand(seedCmd)

	seedCmd.Flags().StringVarP(&seedDatasetPath, "dataset", "d", "", "CSV dataset path; empty uses the bundled dataset")
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := app.NewConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	return app.SeedDatabase(context.Background(), cfg, seedDatasetPath)
}
