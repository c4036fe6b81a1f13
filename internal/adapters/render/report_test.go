package render

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/pkanalytics/pkcurve/internal/domain"
)

func sampleRun() domain.FitRun {
	model := &domain.FittedModel{
		Spec: domain.ModelSpec{
			Knot: 1,
			Sampler: domain.SamplerSettings{
				Chains:     4,
				Iterations: 2000,
				Warmup:     1000,
				Seed:       42,
			},
		},
		Summaries: []domain.CoefficientSummary{
			{Name: "Intercept", Mean: 0.8, SD: 0.3, Q2_5: 0.2, Median: 0.8, Q97_5: 1.4, RHat: 1.01, ESS: 3200},
			{Name: "Time", Mean: 4.9, SD: 0.4, Q2_5: 4.1, Median: 4.9, Q97_5: 5.7, RHat: 1.00, ESS: 3500},
		},
	}
	return domain.FitRun{
		ID:           "run-1",
		CreatedAt:    time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC),
		Observations: 132,
		Model:        model,
		Duration:     1530 * time.Millisecond,
	}
}

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer
	if err := writeReport(&buf, sampleRun()); err != nil {
		t.Fatalf("writeReport() error: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"run-1",
		"2026-03-14",
		"Observations: 132",
		"4 chains x 2.0K iterations",
		"seed 42",
		"Duration: 1.53s",
		"Intercept",
		"Time",
		"No warnings.",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("report missing %q:\n%s", want, out)
		}
	}
}

func TestWriteReport_Warnings(t *testing.T) {
	run := sampleRun()
	run.Model.Warnings = []domain.Warning{
		{Code: domain.WarnNonConvergence, Message: "Time: R-hat 1.21 above 1.05"},
		{Code: domain.WarnLowESS, Message: "Time: ESS 40 below 100"},
	}

	var buf bytes.Buffer
	if err := writeReport(&buf, run); err != nil {
		t.Fatalf("writeReport() error: %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, "Warnings (2):") {
		t.Errorf("report missing warning count:\n%s", out)
	}
	if !strings.Contains(out, "[non-convergence] Time: R-hat 1.21 above 1.05") {
		t.Errorf("report missing warning line:\n%s", out)
	}
	if strings.Contains(out, "No warnings.") {
		t.Error("report claims no warnings despite two")
	}
}
