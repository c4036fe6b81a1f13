package analysis

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pkanalytics/pkcurve/internal/domain"
)

func TestDefault(t *testing.T) {
	spec := Default()

	model, err := spec.ModelSpec()
	if err != nil {
		t.Fatalf("ModelSpec() error: %v", err)
	}
	if model.Knot != 1 {
		t.Errorf("knot = %v, want 1", model.Knot)
	}
	if model.Sampler.Chains != 4 || model.Sampler.Iterations != 2000 || model.Sampler.Warmup != 1000 {
		t.Errorf("sampler = %+v, want 4 chains of 2000/1000", model.Sampler)
	}
	if model.Sampler.Budget != 5*time.Minute {
		t.Errorf("budget = %v, want 5m", model.Sampler.Budget)
	}
	if model.InterceptPrior.Family != domain.PriorStudentT {
		t.Errorf("intercept prior family = %q, want student-t", model.InterceptPrior.Family)
	}
	if spec.Smoother.Span != 0.75 {
		t.Errorf("span = %v, want 0.75", spec.Smoother.Span)
	}
	if len(spec.Compare) != 2 {
		t.Errorf("comparisons = %d, want 2", len(spec.Compare))
	}
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "analysis.yaml")
	content := `model:
  knot: 1.5
  sampler:
    chains: 2
    iterations: 500
    warmup: 200
    target_accept: 0.9
    seed: 42
    budget: 30s
smoother:
  span: 0.5
compare:
  - coefficient: Wt
    samples: 250
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write spec: %v", err)
	}

	spec, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	model, err := spec.ModelSpec()
	if err != nil {
		t.Fatalf("ModelSpec() error: %v", err)
	}
	if model.Knot != 1.5 {
		t.Errorf("knot = %v, want 1.5", model.Knot)
	}
	if model.Sampler.Seed != 42 {
		t.Errorf("seed = %v, want 42", model.Sampler.Seed)
	}
	if model.Sampler.Budget != 30*time.Second {
		t.Errorf("budget = %v, want 30s", model.Sampler.Budget)
	}
	// Untouched sections keep their defaults.
	if model.InterceptPrior.Scale != 10 {
		t.Errorf("intercept scale = %v, want default 10", model.InterceptPrior.Scale)
	}
	if len(spec.Compare) != 1 || spec.Compare[0].Coefficient != "Wt" {
		t.Errorf("compare = %+v, want single Wt entry", spec.Compare)
	}
}

func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load(missing) = nil error, want error")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("model: ["), 0o644); err != nil {
		t.Fatalf("write spec: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load(malformed yaml) = nil error, want error")
	}
}

func TestModelSpec_BadBudget(t *testing.T) {
	spec := Default()
	spec.Model.Sampler.Budget = "forever"
	if _, err := spec.ModelSpec(); err == nil {
		t.Error("ModelSpec(bad budget) = nil error, want error")
	}
}

func TestModelSpec_ZeroSeedDerived(t *testing.T) {
	spec := Default()
	spec.Model.Sampler.Seed = 0
	model, err := spec.ModelSpec()
	if err != nil {
		t.Fatalf("ModelSpec() error: %v", err)
	}
	if model.Sampler.Seed == 0 {
		t.Error("zero seed should be replaced with a derived one")
	}
}

func TestPriors_ByCoefficientClass(t *testing.T) {
	spec := Default()
	if got := spec.Priors("Intercept"); got.Family != domain.PriorStudentT {
		t.Errorf("Priors(Intercept) = %+v, want intercept class", got)
	}
	if got := spec.Priors("TimeAfterKnot"); got.Family != domain.PriorNormal || got.Scale != 5 {
		t.Errorf("Priors(TimeAfterKnot) = %+v, want slope class", got)
	}
}
