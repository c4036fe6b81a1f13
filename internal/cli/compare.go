package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/pkanalytics/pkcurve/internal/analysis"
	"github.com/pkanalytics/pkcurve/internal/app"
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Render prior vs posterior densities for chosen coefficients",
	Long: `Fit the model and render only the prior/posterior density overlays
for the chosen coefficients.

Examples:
  pkcurve compare -c Time -c TimeAfterKnot
  pkcurve compare -c Wt --samples 2000 --seed 42`,
	RunE: runCompare,
}

// Flags
var (
	compareCoefficients []string
	compareSamples      int
	compareAnalysisPath string
	compareDatasetPath  string
	compareOutDir       string
	compareSeed         uint64
	compareVerbose      bool
)

func init() {
	rootCmd.AddCommand(compareCmd)

	compareCmd.Flags().StringArrayVarP(&compareCoefficients, "coefficient", "c", nil, "Coefficient to compare (repeatable)")
	compareCmd.Flags().IntVar(&compareSamples, "samples", 1000, "Prior samples to draw per coefficient")
	compareCmd.Flags().StringVarP(&compareAnalysisPath, "analysis", "a", "", "YAML analysis spec file")
	compareCmd.Flags().StringVarP(&compareDatasetPath, "dataset", "d", "", "CSV dataset path (overrides PKCURVE_DATASET)")
	compareCmd.Flags().StringVarP(&compareOutDir, "out", "o", "", "Output directory (overrides PKCURVE_OUT)")
	compareCmd.Flags().Uint64Var(&compareSeed, "seed", 0, "Sampler seed; 0 picks a fresh one")
	compareCmd.Flags().BoolVarP(&compareVerbose, "verbose", "v", false, "Enable debug logging")
}

func runCompare(cmd *cobra.Command, args []string) error {
	cfg, spec, err := loadConfigAndSpec(compareAnalysisPath, compareDatasetPath, compareOutDir, compareVerbose)
	if err != nil {
		return err
	}
	if compareSeed != 0 {
		spec.Model.Sampler.Seed = compareSeed
	}
	if len(compareCoefficients) > 0 {
		spec.Compare = nil
		for _, c := range compareCoefficients {
			spec.Compare = append(spec.Compare, analysis.ComparisonSpec{Coefficient: c, Samples: compareSamples})
		}
	}

	return app.Run(context.Background(), cfg, spec, app.Options{ComparisonsOnly: true})
}
