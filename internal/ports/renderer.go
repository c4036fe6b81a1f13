package ports

import (
	"context"

	"github.com/pkanalytics/pkcurve/internal/domain"
)

// Renderer turns pipeline results into plots and a textual report.
type Renderer interface {
	// RenderFit draws the raw observations, the fitted mean curve and the
	// smoothed curve in a single figure.
	RenderFit(ctx context.Context, obs []domain.Observation, model *domain.FittedModel, smoothed []domain.CurvePoint) error
	// RenderComparison draws prior and posterior densities for one
	// coefficient in one figure.
	RenderComparison(ctx context.Context, cmp domain.Comparison) error
	// WriteReport emits the textual model summary.
	WriteReport(ctx context.Context, run domain.FitRun) error
}
