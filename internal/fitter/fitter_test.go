package fitter

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/pkanalytics/pkcurve/internal/domain"
)

type nopLogger struct{}

func (nopLogger) Debug(string) {}
func (nopLogger) Error(string) {}

func kneeObservations() []domain.Observation {
	times := []float64{0, 1, 2, 4, 6, 8, 10}
	concs := []float64{0, 5, 8, 7, 6, 5, 4}
	obs := make([]domain.Observation, len(times))
	for i := range times {
		obs[i] = domain.Observation{Subject: "1", Time: times[i], Conc: concs[i], Wt: 70, Dose: 4}
	}
	return obs
}

func testSpec(chains, iterations, warmup int, seed uint64) domain.ModelSpec {
	return domain.ModelSpec{
		Response:       "conc",
		Knot:           1,
		InterceptPrior: domain.Prior{Family: domain.PriorNormal, Location: 0, Scale: 10},
		SlopePrior:     domain.Prior{Family: domain.PriorNormal, Location: 0, Scale: 10},
		ErrorVariance:  domain.VariancePrior{Shape: 0.01, Rate: 0.01},
		GroupVariance:  domain.VariancePrior{Shape: 0.01, Rate: 0.01},
		Sampler: domain.SamplerSettings{
			Chains:       chains,
			Iterations:   iterations,
			Warmup:       warmup,
			TargetAccept: 0.8,
			Seed:         seed,
		},
	}
}

func TestFit_SampleTableShape(t *testing.T) {
	obs := kneeObservations()
	spec := testSpec(3, 400, 150, 11)

	model, err := New(nopLogger{}).Fit(context.Background(), obs, spec)
	if err != nil {
		t.Fatalf("Fit() error: %v", err)
	}

	wantRows := 3 * (400 - 150)
	if got := model.Samples.Rows(); got != wantRows {
		t.Errorf("sample rows = %d, want %d", got, wantRows)
	}
	// Fixed effects plus the two scale parameters.
	wantCols := []string{"Intercept", "Time", "TimeAfterKnot", "sigma", "sd_Subject"}
	if len(model.Samples.Coefficients) != len(wantCols) {
		t.Fatalf("coefficients = %v, want %v", model.Samples.Coefficients, wantCols)
	}
	for i, w := range wantCols {
		if model.Samples.Coefficients[i] != w {
			t.Errorf("coefficient %d = %q, want %q", i, model.Samples.Coefficients[i], w)
		}
	}
}

func TestFit_FittedAlignsWithInput(t *testing.T) {
	obs := []domain.Observation{
		{Subject: "2", Time: 4, Conc: 6, Wt: 60, Dose: 5},
		{Subject: "1", Time: 0, Conc: 0.5, Wt: 70, Dose: 4},
		{Subject: "1", Time: 8, Conc: 4, Wt: 70, Dose: 4},
		{Subject: "2", Time: 1.5, Conc: 7, Wt: 60, Dose: 5},
		{Subject: "3", Time: 2.5, Conc: 8, Wt: 80, Dose: 3.5},
	}
	spec := testSpec(2, 300, 100, 5)

	model, err := New(nopLogger{}).Fit(context.Background(), obs, spec)
	if err != nil {
		t.Fatalf("Fit() error: %v", err)
	}

	if len(model.Fitted) != len(obs) {
		t.Fatalf("fitted rows = %d, want %d", len(model.Fitted), len(obs))
	}
	for i, f := range model.Fitted {
		if f.Time != obs[i].Time {
			t.Errorf("fitted[%d].Time = %v, want %v (input order must be preserved)", i, f.Time, obs[i].Time)
		}
		if f.Lower > f.Mean || f.Mean > f.Upper {
			t.Errorf("fitted[%d] bounds not ordered: %v <= %v <= %v", i, f.Lower, f.Mean, f.Upper)
		}
	}
}

func TestFit_DeterministicWithSeed(t *testing.T) {
	obs := kneeObservations()
	spec := testSpec(2, 200, 80, 42)

	a, err := New(nopLogger{}).Fit(context.Background(), obs, spec)
	if err != nil {
		t.Fatalf("first Fit() error: %v", err)
	}
	b, err := New(nopLogger{}).Fit(context.Background(), obs, spec)
	if err != nil {
		t.Fatalf("second Fit() error: %v", err)
	}

	for _, row := range []int{0, a.Samples.Rows() - 1} {
		for col := range a.Samples.Coefficients {
			if a.Samples.Draws[row][col] != b.Samples.Draws[row][col] {
				t.Fatalf("draw[%d][%d] differs between identically seeded fits: %v vs %v",
					row, col, a.Samples.Draws[row][col], b.Samples.Draws[row][col])
			}
		}
	}
}

func TestFit_KnotSeparatesSlopes(t *testing.T) {
	// Concentration rises steeply to the knot at one hour and declines
	// slowly after it; the hinge coefficient must capture the change.
	obs := kneeObservations()
	spec := testSpec(2, 800, 300, 7)

	model, err := New(nopLogger{}).Fit(context.Background(), obs, spec)
	if err != nil {
		t.Fatalf("Fit() error: %v", err)
	}

	timeCoef, ok := model.Summary("Time")
	if !ok {
		t.Fatal("no summary for Time")
	}
	hinge, ok := model.Summary("TimeAfterKnot")
	if !ok {
		t.Fatal("no summary for TimeAfterKnot")
	}

	if timeCoef.Mean <= 1 {
		t.Errorf("pre-knot slope = %v, want clearly positive", timeCoef.Mean)
	}
	post := timeCoef.Mean + hinge.Mean
	if post >= 0 {
		t.Errorf("post-knot slope = %v, want negative", post)
	}
	if timeCoef.Mean-post < 2 {
		t.Errorf("slopes %v and %v are not distinct", timeCoef.Mean, post)
	}
}

func TestFit_InvalidSpecRejectedBeforeSampling(t *testing.T) {
	obs := kneeObservations()
	spec := testSpec(2, 300, 100, 1)
	spec.Knot = 99 // outside the observed range

	_, err := New(nopLogger{}).Fit(context.Background(), obs, spec)
	if err == nil || !strings.Contains(err.Error(), "knot") {
		t.Errorf("Fit() = %v, want knot placement error", err)
	}
}

func TestFit_BudgetExceeded(t *testing.T) {
	obs := kneeObservations()
	spec := testSpec(2, 50000, 100, 1)
	spec.Sampler.Budget = time.Nanosecond

	_, err := New(nopLogger{}).Fit(context.Background(), obs, spec)
	if err == nil || !strings.Contains(err.Error(), "budget") {
		t.Errorf("Fit() = %v, want budget error", err)
	}
}

func TestFit_StudentTPriors(t *testing.T) {
	obs := kneeObservations()
	spec := testSpec(2, 300, 100, 3)
	spec.InterceptPrior = domain.Prior{Family: domain.PriorStudentT, Location: 0, Scale: 10, DF: 3}

	model, err := New(nopLogger{}).Fit(context.Background(), obs, spec)
	if err != nil {
		t.Fatalf("Fit() error: %v", err)
	}
	if model.Samples.Rows() != 2*(300-100) {
		t.Errorf("sample rows = %d, want %d", model.Samples.Rows(), 2*(300-100))
	}
}
