package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/pkanalytics/pkcurve/internal/analysis"
)

var specCmd = &cobra.Command{
	Use:   "spec",
	Short: "Print the default analysis spec as YAML",
	Long: `Print the default analysis spec as YAML, as a starting point for a
custom --analysis file.`,
	RunE: runSpec,
}

func init() {
	rootCmd.AddCommand(specCmd)
}

func runSpec(cmd *cobra.Command, args []string) error {
	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	defer enc.Close()

	if err := enc.Encode(analysis.Default()); err != nil {
		return fmt.Errorf("encode spec: %w", err)
	}
	return nil
}
