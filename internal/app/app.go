// Package app wires the analysis pipeline: load observations, fit the
// model, smooth the fitted curve, compare priors against posteriors, and
// render everything.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/rand"

	"github.com/pkanalytics/pkcurve/internal/adapters/logger"
	otelexport "github.com/pkanalytics/pkcurve/internal/adapters/otel"
	"github.com/pkanalytics/pkcurve/internal/adapters/render"
	"github.com/pkanalytics/pkcurve/internal/adapters/repository"
	"github.com/pkanalytics/pkcurve/internal/analysis"
	"github.com/pkanalytics/pkcurve/internal/compare"
	"github.com/pkanalytics/pkcurve/internal/database"
	"github.com/pkanalytics/pkcurve/internal/domain"
	"github.com/pkanalytics/pkcurve/internal/fitter"
	"github.com/pkanalytics/pkcurve/internal/ports"
	"github.com/pkanalytics/pkcurve/internal/smoother"
)

// Options select which pipeline outputs to produce.
type Options struct {
	// ComparisonsOnly skips the curve figure, the report and persistence,
	// rendering only the prior/posterior density figures.
	ComparisonsOnly bool
}

// Run executes the pipeline once. The fitter is invoked exactly once;
// smoothing and comparison both read from its result.
func Run(ctx context.Context, cfg *Config, spec analysis.Spec, opts Options) error {
	log := logger.NewStdLogger(cfg.Verbose)

	obsRepo, fitRepo, cleanup, err := buildRepositories(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	obs, err := obsRepo.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("load observations: %w", err)
	}
	log.Debug(fmt.Sprintf("Loaded %d observations from %d subjects", len(obs), len(domain.Subjects(obs))))

	modelSpec, err := spec.ModelSpec()
	if err != nil {
		return fmt.Errorf("analysis spec: %w", err)
	}

	start := time.Now()
	model, err := fitter.New(log).Fit(ctx, obs, modelSpec)
	if err != nil {
		return fmt.Errorf("fit model: %w", err)
	}
	run := domain.NewFitRun(uuid.New().String(), len(obs), model, time.Since(start))

	var renderer ports.Renderer
	renderer, err = render.NewPlotRenderer(cfg.OutputDir, log)
	if err != nil {
		return err
	}

	if !opts.ComparisonsOnly {
		smoothed, err := smoother.Smooth(domain.FittedCurve(model.Fitted), spec.Smoother.Span)
		if err != nil {
			return fmt.Errorf("smooth fitted curve: %w", err)
		}
		for _, w := range smoothed.Warnings {
			log.Error(fmt.Sprintf("smoother warning: %s", w))
		}
		if err := renderer.RenderFit(ctx, obs, model, smoothed.Points); err != nil {
			return err
		}
		if err := renderer.WriteReport(ctx, run); err != nil {
			return err
		}
	}

	// Comparison draws use their own stream so the fit's reproducibility
	// does not depend on how many comparisons are configured.
	src := rand.NewSource(modelSpec.Sampler.Seed + 1)
	for _, c := range spec.Compare {
		cmp, err := compare.Compare(model, c.Coefficient, spec.Priors(c.Coefficient), c.Samples, src)
		if err != nil {
			return fmt.Errorf("compare %s: %w", c.Coefficient, err)
		}
		if err := renderer.RenderComparison(ctx, cmp); err != nil {
			return err
		}
	}

	if fitRepo != nil && !opts.ComparisonsOnly {
		if err := fitRepo.SaveRun(ctx, run); err != nil {
			return fmt.Errorf("save fit run: %w", err)
		}
		log.Debug(fmt.Sprintf("Saved fit run %s", run.ID))
	}

	exportMetrics(ctx, log, run)
	return nil
}

// SeedDatabase copies a CSV dataset (or the bundled one when path is empty)
// into the configured database's observations table.
func SeedDatabase(ctx context.Context, cfg *Config, path string) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("no database configured: set PKCURVE_DATABASE_URL")
	}

	var src ports.ObservationRepository
	if path != "" {
		src = repository.NewCSVRepository(path)
	} else {
		src = repository.NewEmbeddedRepository()
	}
	obs, err := src.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("load observations: %w", err)
	}

	db, err := database.NewLibsql(cfg.DatabaseURL, cfg.DatabaseToken)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	repo := repository.NewLibsqlRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return err
	}
	if err := repo.SaveObservations(ctx, obs); err != nil {
		return err
	}
	return nil
}

// buildRepositories picks the observation source: the database when
// configured, a CSV file when given, the bundled dataset otherwise. Fit
// runs are only persisted when a database is configured.
func buildRepositories(ctx context.Context, cfg *Config) (ports.ObservationRepository, ports.FitRepository, func(), error) {
	noop := func() {}
	if cfg.DatabaseURL != "" {
		db, err := database.NewLibsql(cfg.DatabaseURL, cfg.DatabaseToken)
		if err != nil {
			return nil, nil, noop, fmt.Errorf("connect to database: %w", err)
		}
		repo := repository.NewLibsqlRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			db.Close()
			return nil, nil, noop, err
		}
		return repo, repo, func() { db.Close() }, nil
	}
	if cfg.DatasetPath != "" {
		return repository.NewCSVRepository(cfg.DatasetPath), nil, noop, nil
	}
	return repository.NewEmbeddedRepository(), nil, noop, nil
}

// exportMetrics sends fit metrics to the configured OTEL collector, falling
// back to a no-op when disabled. Export failures are logged, never fatal.
func exportMetrics(ctx context.Context, log domain.Logger, run domain.FitRun) {
	var exporter ports.MetricsExporter
	exporter, err := otelexport.NewExporter(ctx, otelexport.LoadConfig())
	if err != nil {
		exporter = otelexport.NewNoOpExporter()
	}
	defer exporter.Close(ctx)

	m := &ports.FitMetrics{
		RunID:        run.ID,
		Chains:       int64(run.Model.Spec.Sampler.Chains),
		KeptDraws:    int64(run.Model.Samples.Rows()),
		Observations: int64(run.Observations),
		Warnings:     int64(len(run.Model.Warnings)),
		Converged:    run.Model.Converged(),
		Duration:     run.Duration,
	}
	if err := exporter.ExportFitMetrics(ctx, m); err != nil {
		log.Error(fmt.Sprintf("export metrics: %v", err))
	}
}
