// Package render draws analysis figures with gonum/plot and writes the
// textual model report.
package render

import (
	"context"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/pkanalytics/pkcurve/internal/domain"
)

const densityGridSize = 256

// PlotRenderer writes figures and the report into an output directory.
type PlotRenderer struct {
	outDir string
	logger domain.Logger
}

// NewPlotRenderer creates a renderer writing into outDir, creating it if
// needed.
func NewPlotRenderer(outDir string, logger domain.Logger) (*PlotRenderer, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	return &PlotRenderer{outDir: outDir, logger: logger}, nil
}

// RenderFit draws the raw observations, the fitted posterior-mean curve and
// the LOESS-smoothed curve in one figure.
func (r *PlotRenderer) RenderFit(ctx context.Context, obs []domain.Observation, model *domain.FittedModel, smoothed []domain.CurvePoint) error {
	p := plot.New()
	p.Title.Text = "Concentration over time"
	p.X.Label.Text = "Time (h)"
	p.Y.Label.Text = "Concentration (mg/L)"

	raw := make(plotter.XYs, len(obs))
	for i, o := range obs {
		raw[i] = plotter.XY{X: o.Time, Y: o.Conc}
	}
	scatter, err := plotter.NewScatter(raw)
	if err != nil {
		return fmt.Errorf("scatter: %w", err)
	}
	scatter.GlyphStyle.Radius = vg.Points(2)
	scatter.GlyphStyle.Color = color.RGBA{R: 90, G: 90, B: 90, A: 255}

	fittedLine, err := plotter.NewLine(curveXYs(sortedByTime(domain.FittedCurve(model.Fitted))))
	if err != nil {
		return fmt.Errorf("fitted line: %w", err)
	}
	fittedLine.Color = color.RGBA{R: 31, G: 119, B: 180, A: 255}

	smoothedLine, err := plotter.NewLine(curveXYs(smoothed))
	if err != nil {
		return fmt.Errorf("smoothed line: %w", err)
	}
	smoothedLine.Color = color.RGBA{R: 214, G: 39, B: 40, A: 255}
	smoothedLine.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}

	p.Add(scatter, fittedLine, smoothedLine)
	p.Legend.Add("observed", scatter)
	p.Legend.Add("fitted", fittedLine)
	p.Legend.Add("smoothed", smoothedLine)
	p.Legend.Top = true

	path := filepath.Join(r.outDir, "fit.png")
	if err := p.Save(7*vg.Inch, 4.5*vg.Inch, path); err != nil {
		return fmt.Errorf("save fit plot: %w", err)
	}
	r.logger.Debug(fmt.Sprintf("Wrote %s", path))
	return nil
}

// RenderComparison draws prior and posterior densities for one coefficient.
func (r *PlotRenderer) RenderComparison(ctx context.Context, cmp domain.Comparison) error {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Prior vs posterior: %s", cmp.Coefficient)
	p.X.Label.Text = cmp.Coefficient
	p.Y.Label.Text = "Density"

	priorLine, err := densityLine(cmp.Values(domain.OriginPrior))
	if err != nil {
		return fmt.Errorf("prior density: %w", err)
	}
	priorLine.Color = color.RGBA{R: 140, G: 140, B: 140, A: 255}

	postLine, err := densityLine(cmp.Values(domain.OriginPosterior))
	if err != nil {
		return fmt.Errorf("posterior density: %w", err)
	}
	postLine.Color = color.RGBA{R: 31, G: 119, B: 180, A: 255}

	p.Add(priorLine, postLine)
	p.Legend.Add("prior", priorLine)
	p.Legend.Add("posterior", postLine)
	p.Legend.Top = true

	path := filepath.Join(r.outDir, fmt.Sprintf("density_%s.png", fileSafe(cmp.Coefficient)))
	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("save density plot: %w", err)
	}
	r.logger.Debug(fmt.Sprintf("Wrote %s", path))
	return nil
}

func densityLine(samples []float64) (*plotter.Line, error) {
	xs, ys := densityCurve(samples, densityGridSize)
	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i] = plotter.XY{X: xs[i], Y: ys[i]}
	}
	return plotter.NewLine(pts)
}

func curveXYs(points []domain.CurvePoint) plotter.XYs {
	xys := make(plotter.XYs, len(points))
	for i, pt := range points {
		xys[i] = plotter.XY{X: pt.Time, Y: pt.Value}
	}
	return xys
}

func sortedByTime(points []domain.CurvePoint) []domain.CurvePoint {
	out := append([]domain.CurvePoint{}, points...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time < out[j].Time })
	return out
}

// fileSafe keeps coefficient names usable as file name fragments.
func fileSafe(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		default:
			return '_'
		}
	}, name)
}
