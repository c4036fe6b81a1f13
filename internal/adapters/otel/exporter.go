package otel

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/pkanalytics/pkcurve/internal/ports"
)

const (
	serviceName    = "pkcurve"
	serviceVersion = "1.0.0"
)

// Exporter exports fit metrics to an OTEL Collector.
type Exporter struct {
	provider      *sdkmetric.MeterProvider
	meter         metric.Meter
	drawsTotal    metric.Int64Counter
	warningsTotal metric.Int64Counter
	durationHist  metric.Float64Histogram
	fitsTotal     metric.Int64Counter
}

// NewExporter creates a new OTEL metrics exporter.
func NewExporter(ctx context.Context, cfg Config) (*Exporter, error) {
	if !cfg.Enabled || cfg.Endpoint == "" {
		return nil, fmt.Errorf("OTEL exporter is disabled or endpoint not configured")
	}

	opts := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())))
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}

	exp, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(serviceVersion),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exp)),
		sdkmetric.WithResource(res),
	)
	meter := provider.Meter(serviceName)

	drawsTotal, err := meter.Int64Counter(
		"pkcurve_posterior_draws_total",
		metric.WithDescription("Total posterior draws kept across fits"),
		metric.WithUnit("{draw}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating draws counter: %w", err)
	}

	warningsTotal, err := meter.Int64Counter(
		"pkcurve_fit_warnings_total",
		metric.WithDescription("Total advisory warnings attached to fits"),
		metric.WithUnit("{warning}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating warnings counter: %w", err)
	}

	durationHist, err := meter.Float64Histogram(
		"pkcurve_fit_duration_seconds",
		metric.WithDescription("Fit duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating duration histogram: %w", err)
	}

	fitsTotal, err := meter.Int64Counter(
		"pkcurve_fits_total",
		metric.WithDescription("Total number of fit runs"),
		metric.WithUnit("{fit}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating fits counter: %w", err)
	}

	return &Exporter{
		provider:      provider,
		meter:         meter,
		drawsTotal:    drawsTotal,
		warningsTotal: warningsTotal,
		durationHist:  durationHist,
		fitsTotal:     fitsTotal,
	}, nil
}

// ExportFitMetrics exports metrics for a completed fit run.
func (e *Exporter) ExportFitMetrics(ctx context.Context, m *ports.FitMetrics) error {
	opt := metric.WithAttributes(
		attribute.String("run_id", m.RunID),
		attribute.Bool("converged", m.Converged),
		attribute.Int64("chains", m.Chains),
	)

	e.drawsTotal.Add(ctx, m.KeptDraws, opt)
	e.warningsTotal.Add(ctx, m.Warnings, opt)
	e.durationHist.Record(ctx, m.Duration.Seconds(), opt)
	e.fitsTotal.Add(ctx, 1, opt)
	return nil
}

// Close flushes pending metrics and shuts down the provider.
func (e *Exporter) Close(ctx context.Context) error {
	if err := e.provider.ForceFlush(ctx); err != nil {
		return fmt.Errorf("flushing metrics: %w", err)
	}
	return e.provider.Shutdown(ctx)
}
