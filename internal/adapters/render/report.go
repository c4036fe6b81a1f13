package render

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/pkanalytics/pkcurve/internal/domain"
	"github.com/pkanalytics/pkcurve/internal/util"
)

const timeRounding = time.Millisecond

// WriteReport writes the textual model summary to report.txt in the output
// directory.
func (r *PlotRenderer) WriteReport(ctx context.Context, run domain.FitRun) error {
	path := filepath.Join(r.outDir, "report.txt")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer f.Close()

	if err := writeReport(f, run); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	r.logger.Debug(fmt.Sprintf("Wrote %s", path))
	return nil
}

func writeReport(w io.Writer, run domain.FitRun) error {
	model := run.Model
	s := model.Spec.Sampler

	fmt.Fprintf(w, "Fit run %s (%s)\n", run.ID, util.FormatDateISO(run.CreatedAt))
	fmt.Fprintf(w, "Observations: %d   Knot: %v h\n", run.Observations, model.Spec.Knot)
	fmt.Fprintf(w, "Sampler: %d chains x %s iterations (%s warmup), %s kept draws, seed %d\n",
		s.Chains,
		util.FormatNumber(int64(s.Iterations)),
		util.FormatNumber(int64(s.Warmup)),
		util.FormatNumber(int64(s.KeptDraws())),
		s.Seed)
	fmt.Fprintf(w, "Duration: %s\n\n", run.Duration.Round(timeRounding))

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Coefficient\tMean\tSD\t2.5%\t50%\t97.5%\tR-hat\tESS")
	for _, c := range model.Summaries {
		fmt.Fprintf(tw, "%s\t%.3f\t%.3f\t%.3f\t%.3f\t%.3f\t%.3f\t%.0f\n",
			c.Name, c.Mean, c.SD, c.Q2_5, c.Median, c.Q97_5, c.RHat, c.ESS)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(model.Warnings) == 0 {
		fmt.Fprintln(w, "\nNo warnings.")
		return nil
	}
	fmt.Fprintf(w, "\nWarnings (%d):\n", len(model.Warnings))
	for _, warn := range model.Warnings {
		fmt.Fprintf(w, "  %s\n", warn)
	}
	return nil
}
