package domain

import (
	"errors"
	"testing"
)

func TestSampleTable_Column(t *testing.T) {
	table := SampleTable{
		Coefficients: []string{"Intercept", "Time"},
		Draws: [][]float64{
			{1.0, 0.5},
			{1.1, 0.6},
			{0.9, 0.4},
		},
	}

	col, err := table.Column("Time")
	if err != nil {
		t.Fatalf("Column(Time) error: %v", err)
	}
	want := []float64{0.5, 0.6, 0.4}
	for i, v := range want {
		if col[i] != v {
			t.Errorf("Column(Time)[%d] = %v, want %v", i, col[i], v)
		}
	}

	_, err = table.Column("nonexistent_param")
	if !errors.Is(err, ErrUnknownCoefficient) {
		t.Errorf("Column(nonexistent_param) = %v, want ErrUnknownCoefficient", err)
	}
}

func TestFittedModel_Converged(t *testing.T) {
	model := FittedModel{}
	if !model.Converged() {
		t.Error("model without warnings should be converged")
	}

	model.Warnings = []Warning{{Code: WarnLowESS, Message: "ess"}}
	if !model.Converged() {
		t.Error("low ESS alone should not flag non-convergence")
	}

	model.Warnings = append(model.Warnings, Warning{Code: WarnNonConvergence, Message: "rhat"})
	if model.Converged() {
		t.Error("non-convergence warning should flag the model")
	}
}

func TestComparison_Counts(t *testing.T) {
	cmp := Comparison{
		Coefficient: "Time",
		Samples: []LabeledSample{
			{Value: 1, Origin: OriginPrior},
			{Value: 2, Origin: OriginPosterior},
			{Value: 3, Origin: OriginPrior},
		},
	}
	if got := cmp.Count(OriginPrior); got != 2 {
		t.Errorf("Count(prior) = %d, want 2", got)
	}
	if got := cmp.Count(OriginPosterior); got != 1 {
		t.Errorf("Count(posterior) = %d, want 1", got)
	}
	vals := cmp.Values(OriginPrior)
	if len(vals) != 2 || vals[0] != 1 || vals[1] != 3 {
		t.Errorf("Values(prior) = %v, want [1 3]", vals)
	}
}
