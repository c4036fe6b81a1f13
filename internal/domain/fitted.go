package domain

import (
	"errors"
	"fmt"
)

// ErrUnknownCoefficient is returned when a coefficient name is not present
// in a posterior sample table. Requesting a missing coefficient is a
// configuration error, never an empty result.
var ErrUnknownCoefficient = errors.New("unknown coefficient")

// WarningCode classifies an advisory condition attached to a result.
type WarningCode string

const (
	WarnNonConvergence   WarningCode = "non-convergence"
	WarnLowESS           WarningCode = "low-ess"
	WarnThinNeighborhood WarningCode = "insufficient-neighborhood"
)

// Warning is an advisory condition. Warnings never halt the pipeline; they
// travel with the result so the caller can surface them.
type Warning struct {
	Code    WarningCode
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("[%s] %s", w.Code, w.Message)
}

// CoefficientSummary is the deterministic summary of one model coefficient.
type CoefficientSummary struct {
	Name   string
	Mean   float64
	SD     float64
	Q2_5   float64
	Median float64
	Q97_5  float64
	RHat   float64
	ESS    float64
}

// FittedValue is the posterior mean concentration and 95% credible bounds
// for one input observation.
type FittedValue struct {
	Time  float64
	Mean  float64
	Lower float64
	Upper float64
}

// SampleTable holds posterior draws: one row per kept draw, one column per
// coefficient. Rows are concatenated in chain order.
type SampleTable struct {
	Coefficients []string
	Draws        [][]float64
}

// Column returns the draw column for the named coefficient.
func (t SampleTable) Column(name string) ([]float64, error) {
	idx := -1
	for i, c := range t.Coefficients {
		if c == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCoefficient, name)
	}
	col := make([]float64, len(t.Draws))
	for i, row := range t.Draws {
		col[i] = row[idx]
	}
	return col, nil
}

// Rows returns the number of kept draws.
func (t SampleTable) Rows() int { return len(t.Draws) }

// FittedModel is the read-only result of a fit.
type FittedModel struct {
	Spec      ModelSpec
	Summaries []CoefficientSummary
	// Fitted aligns row-for-row, in original order, with the input
	// observations.
	Fitted   []FittedValue
	Samples  SampleTable
	Warnings []Warning
}

// Summary looks up the summary for a named coefficient.
func (m *FittedModel) Summary(name string) (CoefficientSummary, bool) {
	for _, s := range m.Summaries {
		if s.Name == name {
			return s, true
		}
	}
	return CoefficientSummary{}, false
}

// Converged reports whether the fit carries no convergence warnings.
func (m *FittedModel) Converged() bool {
	for _, w := range m.Warnings {
		if w.Code == WarnNonConvergence {
			return false
		}
	}
	return true
}
