// Package fitter fits the Bayesian hierarchical spline regression.
//
// The model is conjugate throughout, so sampling is a Gibbs scheme in which
// every step is a closed-form conditional draw delegated to gonum: Cholesky
// solves for the fixed effects, normal and gamma draws for everything else.
// Chains run in parallel with independent RNG streams derived from the
// master seed, and their post-warmup draws are concatenated in chain order,
// so the result does not depend on scheduling.
package fitter

import (
	"context"
	"fmt"
	"sort"
	"time"

	"golang.org/x/exp/rand"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/pkanalytics/pkcurve/internal/domain"
)

// Thresholds for attaching convergence warnings.
const (
	rHatThreshold = 1.05
	essThreshold  = 100
)

// Fitter runs MCMC fits.
type Fitter struct {
	logger domain.Logger
}

// New creates a Fitter.
func New(logger domain.Logger) *Fitter {
	return &Fitter{logger: logger}
}

// Fit validates the specification, samples the posterior and returns the
// fitted model. The returned model's fitted-value table aligns row-for-row
// with obs; the sample table has exactly chains x (iterations - warmup)
// rows. Convergence problems attach warnings, they do not fail the fit.
func (f *Fitter) Fit(ctx context.Context, obs []domain.Observation, spec domain.ModelSpec) (*domain.FittedModel, error) {
	if err := spec.Validate(obs); err != nil {
		return nil, fmt.Errorf("invalid model specification: %w", err)
	}

	if spec.Sampler.Budget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, spec.Sampler.Budget)
		defer cancel()
	}

	X, names := BuildDesign(obs, spec)
	group, nGroups := groupIndex(obs)
	y := make([]float64, len(obs))
	for i, o := range obs {
		y[i] = o.Conc
	}

	f.logger.Debug(fmt.Sprintf("Fitting %d observations, %d subjects, %d chains x %d iterations (%d warmup)",
		len(obs), nGroups, spec.Sampler.Chains, spec.Sampler.Iterations, spec.Sampler.Warmup))

	// Per-chain seeds come from the master seed so a fixed seed reproduces
	// the full run regardless of chain interleaving.
	masterRng := rand.New(rand.NewSource(spec.Sampler.Seed))
	seeds := make([]uint64, spec.Sampler.Chains)
	for i := range seeds {
		seeds[i] = masterRng.Uint64()
	}

	start := time.Now()
	results := make([]chainResult, spec.Sampler.Chains)
	g, gctx := errgroup.WithContext(ctx)
	for c := 0; c < spec.Sampler.Chains; c++ {
		g.Go(func() error {
			res, err := runChain(gctx, X, y, group, nGroups, spec, seeds[c])
			if err != nil {
				return fmt.Errorf("chain %d: %w", c, err)
			}
			results[c] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("fit did not complete in budget: %w", err)
		}
		return nil, err
	}
	f.logger.Debug(fmt.Sprintf("Sampling finished in %s", time.Since(start).Round(time.Millisecond)))

	coefNames := append(append([]string{}, names...), CoefSigma, CoefSDSubject)
	model := &domain.FittedModel{
		Spec:    spec,
		Samples: combineDraws(results, coefNames),
	}
	model.Summaries = summarize(results, coefNames, model.Samples)
	model.Fitted = fittedValues(results, obs)
	model.Warnings = convergenceWarnings(model.Summaries)

	if len(model.Fitted) != len(obs) {
		return nil, fmt.Errorf("fitted-value table has %d rows for %d observations", len(model.Fitted), len(obs))
	}
	for _, w := range model.Warnings {
		f.logger.Error(fmt.Sprintf("fit warning: %s", w))
	}
	return model, nil
}

// combineDraws concatenates the chains' kept draws in chain order.
func combineDraws(results []chainResult, coefNames []string) domain.SampleTable {
	var rows [][]float64
	for _, res := range results {
		r, c := res.draws.Dims()
		for i := 0; i < r; i++ {
			row := make([]float64, c)
			for j := 0; j < c; j++ {
				row[j] = res.draws.At(i, j)
			}
			rows = append(rows, row)
		}
	}
	return domain.SampleTable{Coefficients: coefNames, Draws: rows}
}

// summarize computes per-coefficient point estimates, credible intervals and
// convergence diagnostics.
func summarize(results []chainResult, coefNames []string, table domain.SampleTable) []domain.CoefficientSummary {
	summaries := make([]domain.CoefficientSummary, len(coefNames))
	for k, name := range coefNames {
		all := make([]float64, 0, table.Rows())
		chains := make([][]float64, len(results))
		for c, res := range results {
			r, _ := res.draws.Dims()
			col := make([]float64, r)
			for i := 0; i < r; i++ {
				col[i] = res.draws.At(i, k)
			}
			chains[c] = col
			all = append(all, col...)
		}

		sorted := append([]float64{}, all...)
		sort.Float64s(sorted)
		summaries[k] = domain.CoefficientSummary{
			Name:   name,
			Mean:   stat.Mean(all, nil),
			SD:     stat.StdDev(all, nil),
			Q2_5:   stat.Quantile(0.025, stat.Empirical, sorted, nil),
			Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
			Q97_5:  stat.Quantile(0.975, stat.Empirical, sorted, nil),
			RHat:   splitRHat(chains),
			ESS:    effectiveSampleSize(chains),
		}
	}
	return summaries
}

// fittedValues computes the posterior mean and 95% credible bounds of the
// linear predictor for every observation, preserving input order.
func fittedValues(results []chainResult, obs []domain.Observation) []domain.FittedValue {
	fitted := make([]domain.FittedValue, len(obs))
	for i := range obs {
		var draws []float64
		for _, res := range results {
			r, _ := res.mu.Dims()
			for row := 0; row < r; row++ {
				draws = append(draws, res.mu.At(row, i))
			}
		}
		sorted := append([]float64{}, draws...)
		sort.Float64s(sorted)
		fitted[i] = domain.FittedValue{
			Time:  obs[i].Time,
			Mean:  stat.Mean(draws, nil),
			Lower: stat.Quantile(0.025, stat.Empirical, sorted, nil),
			Upper: stat.Quantile(0.975, stat.Empirical, sorted, nil),
		}
	}
	return fitted
}

// convergenceWarnings inspects the diagnostics and attaches advisory
// warnings for coefficients that did not mix well.
func convergenceWarnings(summaries []domain.CoefficientSummary) []domain.Warning {
	var warnings []domain.Warning
	for _, s := range summaries {
		if s.RHat > rHatThreshold {
			warnings = append(warnings, domain.Warning{
				Code:    domain.WarnNonConvergence,
				Message: fmt.Sprintf("coefficient %s: R-hat %.3f exceeds %.2f", s.Name, s.RHat, rHatThreshold),
			})
		}
		if s.ESS < essThreshold {
			warnings = append(warnings, domain.Warning{
				Code:    domain.WarnLowESS,
				Message: fmt.Sprintf("coefficient %s: effective sample size %.0f below %d", s.Name, s.ESS, essThreshold),
			})
		}
	}
	return warnings
}
