// Package analysis loads the analysis specification: model formula
// constants, priors, sampler settings, smoothing span and the coefficient
// comparisons to render.
package analysis

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pkanalytics/pkcurve/internal/domain"
)

// PriorSpec mirrors domain.Prior in the YAML file.
type PriorSpec struct {
	Family   string  `yaml:"family"`
	Location float64 `yaml:"location"`
	Scale    float64 `yaml:"scale"`
	DF       float64 `yaml:"df"`
}

// VarianceSpec mirrors domain.VariancePrior in the YAML file.
type VarianceSpec struct {
	Shape float64 `yaml:"shape"`
	Rate  float64 `yaml:"rate"`
}

// SamplerSpec configures the MCMC run in the YAML file. Budget is a Go
// duration string such as "5m".
type SamplerSpec struct {
	Chains       int     `yaml:"chains"`
	Iterations   int     `yaml:"iterations"`
	Warmup       int     `yaml:"warmup"`
	TargetAccept float64 `yaml:"target_accept"`
	Seed         uint64  `yaml:"seed"`
	Budget       string  `yaml:"budget"`
}

// ModelSection declares the regression.
type ModelSection struct {
	Response       string       `yaml:"response"`
	Knot           float64      `yaml:"knot"`
	UseWeight      bool         `yaml:"use_weight"`
	UseDose        bool         `yaml:"use_dose"`
	InterceptPrior PriorSpec    `yaml:"intercept_prior"`
	SlopePrior     PriorSpec    `yaml:"slope_prior"`
	ErrorVariance  VarianceSpec `yaml:"error_variance"`
	GroupVariance  VarianceSpec `yaml:"group_variance"`
	Sampler        SamplerSpec  `yaml:"sampler"`
}

// SmootherSection configures the LOESS pass.
type SmootherSection struct {
	Span float64 `yaml:"span"`
}

// ComparisonSpec selects one coefficient for prior/posterior comparison.
type ComparisonSpec struct {
	Coefficient string `yaml:"coefficient"`
	Samples     int    `yaml:"samples"`
}

// Spec is the full analysis configuration.
type Spec struct {
	Model    ModelSection     `yaml:"model"`
	Smoother SmootherSection  `yaml:"smoother"`
	Compare  []ComparisonSpec `yaml:"compare"`
}

// Default returns the canonical theophylline analysis: spline knot one hour
// after dosing, weakly informative priors, four chains.
func Default() Spec {
	return Spec{
		Model: ModelSection{
			Response:       "conc",
			Knot:           1,
			UseWeight:      true,
			UseDose:        true,
			InterceptPrior: PriorSpec{Family: "student-t", Location: 0, Scale: 10, DF: 3},
			SlopePrior:     PriorSpec{Family: "normal", Location: 0, Scale: 5},
			ErrorVariance:  VarianceSpec{Shape: 0.01, Rate: 0.01},
			GroupVariance:  VarianceSpec{Shape: 0.01, Rate: 0.01},
			Sampler: SamplerSpec{
				Chains:       4,
				Iterations:   2000,
				Warmup:       1000,
				TargetAccept: 0.8,
				Budget:       "5m",
			},
		},
		Smoother: SmootherSection{Span: 0.75},
		Compare: []ComparisonSpec{
			{Coefficient: "Time", Samples: 1000},
			{Coefficient: "TimeAfterKnot", Samples: 1000},
		},
	}
}

// Load reads a YAML spec file over the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (Spec, error) {
	spec := Default()
	if path == "" {
		return spec, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Spec{}, fmt.Errorf("read analysis spec: %w", err)
	}
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return Spec{}, fmt.Errorf("parse analysis spec %s: %w", path, err)
	}
	return spec, nil
}

// ModelSpec converts the model section to its domain form. A zero seed is
// replaced with a time-derived one, so determinism is opt-in.
func (s Spec) ModelSpec() (domain.ModelSpec, error) {
	var budget time.Duration
	if s.Model.Sampler.Budget != "" {
		var err error
		budget, err = time.ParseDuration(s.Model.Sampler.Budget)
		if err != nil {
			return domain.ModelSpec{}, fmt.Errorf("sampler budget: %w", err)
		}
	}
	seed := s.Model.Sampler.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	return domain.ModelSpec{
		Response:       s.Model.Response,
		Knot:           s.Model.Knot,
		UseWeight:      s.Model.UseWeight,
		UseDose:        s.Model.UseDose,
		InterceptPrior: toPrior(s.Model.InterceptPrior),
		SlopePrior:     toPrior(s.Model.SlopePrior),
		ErrorVariance:  domain.VariancePrior{Shape: s.Model.ErrorVariance.Shape, Rate: s.Model.ErrorVariance.Rate},
		GroupVariance:  domain.VariancePrior{Shape: s.Model.GroupVariance.Shape, Rate: s.Model.GroupVariance.Rate},
		Sampler: domain.SamplerSettings{
			Chains:       s.Model.Sampler.Chains,
			Iterations:   s.Model.Sampler.Iterations,
			Warmup:       s.Model.Sampler.Warmup,
			TargetAccept: s.Model.Sampler.TargetAccept,
			Seed:         seed,
			Budget:       budget,
		},
	}, nil
}

// Priors returns the declared prior for a coefficient name, for comparison
// draws: the intercept class for the intercept, the slope class otherwise.
func (s Spec) Priors(coefficient string) domain.Prior {
	if coefficient == "Intercept" {
		return toPrior(s.Model.InterceptPrior)
	}
	return toPrior(s.Model.SlopePrior)
}

func toPrior(p PriorSpec) domain.Prior {
	return domain.Prior{
		Family:   domain.PriorFamily(p.Family),
		Location: p.Location,
		Scale:    p.Scale,
		DF:       p.DF,
	}
}
