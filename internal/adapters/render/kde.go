package render

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// densityCurve evaluates a Gaussian kernel density estimate of the samples
// over an evenly spaced grid covering the data range padded by three
// bandwidths.
func densityCurve(samples []float64, gridSize int) (xs, ys []float64) {
	if len(samples) == 0 || gridSize < 2 {
		return nil, nil
	}

	h := silvermanBandwidth(samples)
	lo, hi := samples[0], samples[0]
	for _, v := range samples {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	lo -= 3 * h
	hi += 3 * h

	kernel := distuv.Normal{Mu: 0, Sigma: 1}
	xs = make([]float64, gridSize)
	ys = make([]float64, gridSize)
	step := (hi - lo) / float64(gridSize-1)
	for i := range xs {
		x := lo + float64(i)*step
		acc := 0.0
		for _, v := range samples {
			acc += kernel.Prob((x - v) / h)
		}
		xs[i] = x
		ys[i] = acc / (float64(len(samples)) * h)
	}
	return xs, ys
}

// silvermanBandwidth is Silverman's rule of thumb:
// 0.9 * min(sd, iqr/1.34) * n^(-1/5).
func silvermanBandwidth(samples []float64) float64 {
	sd := stat.StdDev(samples, nil)

	sorted := append([]float64{}, samples...)
	sort.Float64s(sorted)
	iqr := stat.Quantile(0.75, stat.Empirical, sorted, nil) - stat.Quantile(0.25, stat.Empirical, sorted, nil)

	spread := sd
	if alt := iqr / 1.34; alt > 0 && alt < spread {
		spread = alt
	}
	if spread <= 0 {
		spread = 1
	}
	return 0.9 * spread * math.Pow(float64(len(samples)), -0.2)
}
