package fitter

import (
	"gonum.org/v1/gonum/mat"

	"github.com/pkanalytics/pkcurve/internal/domain"
)

// Fixed-effect coefficient names. The spline of time is a truncated linear
// basis: a global slope plus a hinge term that activates past the knot, so
// the fitted curve can change slope there.
const (
	CoefIntercept     = "Intercept"
	CoefTime          = "Time"
	CoefTimeAfterKnot = "TimeAfterKnot"
	CoefWt            = "Wt"
	CoefDose          = "Dose"

	CoefSigma     = "sigma"
	CoefSDSubject = "sd_Subject"
)

// BuildDesign constructs the fixed-effect design matrix for the observations
// under the given specification, one row per observation in input order.
// Returns the matrix and the coefficient name per column.
func BuildDesign(obs []domain.Observation, spec domain.ModelSpec) (*mat.Dense, []string) {
	names := []string{CoefIntercept, CoefTime, CoefTimeAfterKnot}
	if spec.UseWeight {
		names = append(names, CoefWt)
	}
	if spec.UseDose {
		names = append(names, CoefDose)
	}

	n, p := len(obs), len(names)
	X := mat.NewDense(n, p, nil)
	for i, o := range obs {
		X.Set(i, 0, 1)
		X.Set(i, 1, o.Time)
		hinge := o.Time - spec.Knot
		if hinge < 0 {
			hinge = 0
		}
		X.Set(i, 2, hinge)
		col := 3
		if spec.UseWeight {
			X.Set(i, col, o.Wt)
			col++
		}
		if spec.UseDose {
			X.Set(i, col, o.Dose)
		}
	}
	return X, names
}

// groupIndex assigns each observation the index of its subject, in
// first-appearance order, and returns the number of distinct subjects.
func groupIndex(obs []domain.Observation) ([]int, int) {
	byID := make(map[string]int)
	idx := make([]int, len(obs))
	for i, o := range obs {
		j, ok := byID[o.Subject]
		if !ok {
			j = len(byID)
			byID[o.Subject] = j
		}
		idx[i] = j
	}
	return idx, len(byID)
}
