package domain

import (
	"fmt"
	"time"
)

// PriorFamily names a supported prior distribution family.
type PriorFamily string

const (
	PriorNormal   PriorFamily = "normal"
	PriorStudentT PriorFamily = "student-t"
)

// Prior describes the prior distribution for a coefficient class.
// DF is only meaningful for the student-t family.
type Prior struct {
	Family   PriorFamily
	Location float64
	Scale    float64
	DF       float64
}

// Validate rejects improper (non-normalizable) priors.
func (p Prior) Validate() error {
	switch p.Family {
	case PriorNormal:
		if p.Scale <= 0 {
			return fmt.Errorf("normal prior: scale must be positive, got %v", p.Scale)
		}
	case PriorStudentT:
		if p.Scale <= 0 {
			return fmt.Errorf("student-t prior: scale must be positive, got %v", p.Scale)
		}
		if p.DF <= 0 {
			return fmt.Errorf("student-t prior: degrees of freedom must be positive, got %v", p.DF)
		}
	default:
		return fmt.Errorf("unknown prior family %q", p.Family)
	}
	return nil
}

// VariancePrior is an inverse-gamma prior on a variance component.
type VariancePrior struct {
	Shape float64
	Rate  float64
}

// Validate rejects improper variance priors.
func (p VariancePrior) Validate() error {
	if p.Shape <= 0 || p.Rate <= 0 {
		return fmt.Errorf("variance prior: shape and rate must be positive, got shape=%v rate=%v", p.Shape, p.Rate)
	}
	return nil
}

// SamplerSettings configures the MCMC run.
type SamplerSettings struct {
	Chains     int
	Iterations int // total iterations per chain, including warmup
	Warmup     int // iterations discarded from the start of each chain
	// TargetAccept is the target acceptance rate for samplers with an
	// accept/reject step. The conjugate sampler accepts every draw and
	// only validates the value.
	TargetAccept float64
	Seed         uint64
	// Budget caps the wall-clock time of a fit. Zero means no cap.
	Budget time.Duration
}

// KeptDraws is the number of post-warmup draws across all chains.
func (s SamplerSettings) KeptDraws() int {
	return s.Chains * (s.Iterations - s.Warmup)
}

// ModelSpec declares the hierarchical spline regression to fit:
// a fixed-effect spline of time with one interior knot, optional weight and
// dose covariates, and a per-subject random intercept.
type ModelSpec struct {
	Response string // response column name, informational
	Knot     float64

	UseWeight bool
	UseDose   bool

	InterceptPrior Prior
	SlopePrior     Prior
	ErrorVariance  VariancePrior
	GroupVariance  VariancePrior

	Sampler SamplerSettings
}

// Validate checks the specification against the observed data.
// All violations here are configuration errors and abort before sampling.
func (s ModelSpec) Validate(obs []Observation) error {
	if err := ValidateObservations(obs); err != nil {
		return err
	}
	lo, hi := TimeRange(obs)
	if s.Knot <= lo || s.Knot >= hi {
		return fmt.Errorf("knot %v must lie strictly inside the observed time range [%v, %v]", s.Knot, lo, hi)
	}
	if err := s.InterceptPrior.Validate(); err != nil {
		return fmt.Errorf("intercept prior: %w", err)
	}
	if err := s.SlopePrior.Validate(); err != nil {
		return fmt.Errorf("slope prior: %w", err)
	}
	if err := s.ErrorVariance.Validate(); err != nil {
		return fmt.Errorf("error variance: %w", err)
	}
	if err := s.GroupVariance.Validate(); err != nil {
		return fmt.Errorf("group variance: %w", err)
	}
	if s.Sampler.Chains < 1 {
		return fmt.Errorf("sampler: need at least one chain, got %d", s.Sampler.Chains)
	}
	if s.Sampler.Warmup < 0 {
		return fmt.Errorf("sampler: negative warmup %d", s.Sampler.Warmup)
	}
	if s.Sampler.Iterations <= s.Sampler.Warmup {
		return fmt.Errorf("sampler: iterations (%d) must exceed warmup (%d)", s.Sampler.Iterations, s.Sampler.Warmup)
	}
	if s.Sampler.TargetAccept <= 0 || s.Sampler.TargetAccept >= 1 {
		return fmt.Errorf("sampler: target accept must be in (0, 1), got %v", s.Sampler.TargetAccept)
	}
	return nil
}
