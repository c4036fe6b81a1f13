// Package smoother implements LOESS local regression for fitted
// concentration curves.
package smoother

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/pkanalytics/pkcurve/internal/domain"
)

// Neighborhood size cutoffs for the degradation ladder: a quadratic local
// fit needs a reasonably populated window, a linear fit a smaller one, and
// below that the smoother falls back to a weighted mean. Degradation is
// advisory, not fatal.
const (
	minQuadraticPoints = 6
	minLinearPoints    = 3
)

// Result is a smoothed curve plus any advisory warnings raised while
// smoothing.
type Result struct {
	Points   []domain.CurvePoint
	Warnings []domain.Warning
}

// Smooth runs LOESS over the curve. Input need not be sorted; points are
// sorted by time internally, so smoothing a shuffled copy yields the same
// output. Span in (0, 1] is the fraction of points in each local
// neighborhood; every input point gets one smoothed value, weighted by
// tricube distance within its neighborhood.
func Smooth(points []domain.CurvePoint, span float64) (Result, error) {
	if span <= 0 || span > 1 {
		return Result{}, fmt.Errorf("span must be in (0, 1], got %v", span)
	}
	if len(points) == 0 {
		return Result{}, fmt.Errorf("no points to smooth")
	}

	sorted := append([]domain.CurvePoint{}, points...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time < sorted[j].Time })

	n := len(sorted)
	window := int(math.Ceil(span * float64(n)))
	if window < 2 {
		window = 2
	}
	if window > n {
		window = n
	}

	out := make([]domain.CurvePoint, n)
	degraded := 0
	for i := range sorted {
		lo, hi := neighborhood(sorted, i, window)
		value, fellBack := localFit(sorted[lo:hi], sorted[i].Time)
		if fellBack {
			degraded++
		}
		out[i] = domain.CurvePoint{Time: sorted[i].Time, Value: value}
	}

	res := Result{Points: out}
	if degraded > 0 {
		res.Warnings = append(res.Warnings, domain.Warning{
			Code: domain.WarnThinNeighborhood,
			Message: fmt.Sprintf("%d of %d neighborhoods had too few points for a quadratic fit; degraded to a simpler local model",
				degraded, n),
		})
	}
	return res, nil
}

// neighborhood returns the half-open index range of the window nearest
// points around index i in the sorted slice.
func neighborhood(sorted []domain.CurvePoint, i, window int) (lo, hi int) {
	lo, hi = i, i+1
	for hi-lo < window {
		switch {
		case lo == 0:
			hi++
		case hi == len(sorted):
			lo--
		case sorted[i].Time-sorted[lo-1].Time <= sorted[hi].Time-sorted[i].Time:
			lo--
		default:
			hi++
		}
	}
	return lo, hi
}

// localFit fits a tricube-weighted polynomial to the neighborhood and
// evaluates it at t. Reports whether it degraded below a quadratic fit.
func localFit(nbh []domain.CurvePoint, t float64) (value float64, degraded bool) {
	dmax := 0.0
	for _, p := range nbh {
		if d := math.Abs(p.Time - t); d > dmax {
			dmax = d
		}
	}

	weights := make([]float64, len(nbh))
	for i, p := range nbh {
		if dmax == 0 {
			weights[i] = 1
			continue
		}
		weights[i] = tricube(math.Abs(p.Time-t) / dmax)
	}

	// Count points with usable weight; boundary points weigh zero.
	usable := 0
	for _, w := range weights {
		if w > 0 {
			usable++
		}
	}

	degree := 2
	switch {
	case usable < minLinearPoints:
		return weightedMean(nbh, weights), true
	case usable < minQuadraticPoints:
		degree = 1
		degraded = true
	}

	coefs, err := weightedPolyFit(nbh, weights, t, degree)
	if err != nil {
		// Collinear neighborhood (e.g. duplicated times); the mean is
		// still well defined.
		return weightedMean(nbh, weights), true
	}
	return coefs, degraded
}

// weightedPolyFit solves the weighted least-squares polynomial of the given
// degree in (time - t) and returns its value at t, which is the constant
// term.
func weightedPolyFit(nbh []domain.CurvePoint, weights []float64, t float64, degree int) (float64, error) {
	rows := len(nbh)
	cols := degree + 1
	A := mat.NewDense(rows, cols, nil)
	b := mat.NewVecDense(rows, nil)
	for i, p := range nbh {
		sw := math.Sqrt(weights[i])
		x := p.Time - t
		pow := 1.0
		for j := 0; j < cols; j++ {
			A.Set(i, j, sw*pow)
			pow *= x
		}
		b.SetVec(i, sw*p.Value)
	}

	coef := mat.NewVecDense(cols, nil)
	if err := coef.SolveVec(A, b); err != nil {
		return 0, fmt.Errorf("local fit: %w", err)
	}
	return coef.AtVec(0), nil
}

func weightedMean(nbh []domain.CurvePoint, weights []float64) float64 {
	num, den := 0.0, 0.0
	for i, p := range nbh {
		num += weights[i] * p.Value
		den += weights[i]
	}
	if den == 0 {
		// All weights on the boundary; plain mean.
		for _, p := range nbh {
			num += p.Value
		}
		return num / float64(len(nbh))
	}
	return num / den
}

// tricube is the LOESS kernel: (1-u^3)^3 on [0, 1), zero beyond.
func tricube(u float64) float64 {
	if u >= 1 {
		return 0
	}
	c := 1 - u*u*u
	return c * c * c
}
