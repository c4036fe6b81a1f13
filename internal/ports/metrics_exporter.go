package ports

import (
	"context"
	"time"
)

// MetricsExporter exports fit metrics to an external observability system.
type MetricsExporter interface {
	// ExportFitMetrics exports metrics for a completed fit run.
	ExportFitMetrics(ctx context.Context, m *FitMetrics) error
	// Close shuts down the exporter and flushes any pending metrics.
	Close(ctx context.Context) error
}

// FitMetrics describes one completed fit run.
type FitMetrics struct {
	RunID        string
	Chains       int64
	KeptDraws    int64
	Observations int64
	Warnings     int64
	Converged    bool
	Duration     time.Duration
}
