package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pkcurve",
	Short: "Bayesian spline analysis of pharmacokinetic curves",
	Long: `pkcurve fits a Bayesian hierarchical spline regression to a
pharmacokinetic concentration dataset, smooths the fitted curve with LOESS,
and renders fitted curves, prior/posterior density overlays and a textual
model report.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
