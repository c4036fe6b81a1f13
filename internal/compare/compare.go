// Package compare pairs fresh prior draws against posterior draw columns
// for density comparison.
package compare

import (
	"fmt"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/pkanalytics/pkcurve/internal/domain"
)

// Compare draws n independent samples from the declared prior, slices the
// posterior column for the coefficient, and returns both labeled by origin.
// The prior draws are pure random generation, independent of the fitted
// model. An unknown coefficient name is a configuration error.
func Compare(model *domain.FittedModel, coefficient string, prior domain.Prior, n int, src rand.Source) (domain.Comparison, error) {
	if n <= 0 {
		return domain.Comparison{}, fmt.Errorf("prior sample count must be positive, got %d", n)
	}
	if err := prior.Validate(); err != nil {
		return domain.Comparison{}, fmt.Errorf("prior for %s: %w", coefficient, err)
	}

	posterior, err := model.Samples.Column(coefficient)
	if err != nil {
		return domain.Comparison{}, err
	}

	sampler, err := priorSampler(prior, src)
	if err != nil {
		return domain.Comparison{}, err
	}

	samples := make([]domain.LabeledSample, 0, n+len(posterior))
	for i := 0; i < n; i++ {
		samples = append(samples, domain.LabeledSample{Value: sampler.Rand(), Origin: domain.OriginPrior})
	}
	for _, v := range posterior {
		samples = append(samples, domain.LabeledSample{Value: v, Origin: domain.OriginPosterior})
	}

	return domain.Comparison{Coefficient: coefficient, Samples: samples}, nil
}

// priorSampler maps a prior descriptor onto its distuv distribution.
func priorSampler(prior domain.Prior, src rand.Source) (distuv.Rander, error) {
	switch prior.Family {
	case domain.PriorNormal:
		return distuv.Normal{Mu: prior.Location, Sigma: prior.Scale, Src: src}, nil
	case domain.PriorStudentT:
		return distuv.StudentsT{Mu: prior.Location, Sigma: prior.Scale, Nu: prior.DF, Src: src}, nil
	default:
		return nil, fmt.Errorf("unknown prior family %q", prior.Family)
	}
}
