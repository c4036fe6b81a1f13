package fitter

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// splitRHat computes the split potential-scale-reduction statistic for one
// coefficient across chains. Each chain is split in half so within-chain
// trends inflate the statistic. Values near 1 indicate the chains mixed.
func splitRHat(chains [][]float64) float64 {
	seqs := splitHalves(chains)
	if len(seqs) < 2 {
		return 1
	}
	n := len(seqs[0])
	if n < 2 {
		return 1
	}

	means := make([]float64, len(seqs))
	vars := make([]float64, len(seqs))
	for i, s := range seqs {
		means[i] = stat.Mean(s, nil)
		vars[i] = stat.Variance(s, nil)
	}

	w := stat.Mean(vars, nil)
	b := float64(n) * stat.Variance(means, nil)
	if w <= 0 {
		return 1
	}
	varPlus := float64(n-1)/float64(n)*w + b/float64(n)
	return math.Sqrt(varPlus / w)
}

// effectiveSampleSize estimates the number of independent draws behind the
// combined chains for one coefficient, using within-chain autocovariances
// truncated at the first non-positive paired sum.
func effectiveSampleSize(chains [][]float64) float64 {
	seqs := splitHalves(chains)
	m := len(seqs)
	if m == 0 {
		return 0
	}
	n := len(seqs[0])
	if n < 4 {
		return float64(m * n)
	}

	vars := make([]float64, m)
	for i, s := range seqs {
		vars[i] = stat.Variance(s, nil)
	}
	w := stat.Mean(vars, nil)
	means := make([]float64, m)
	for i, s := range seqs {
		means[i] = stat.Mean(s, nil)
	}
	b := float64(n) * stat.Variance(means, nil)
	varPlus := float64(n-1)/float64(n)*w + b/float64(n)
	if varPlus <= 0 {
		return float64(m * n)
	}

	// rho_t averaged over sequences, Geyer initial-positive truncation on
	// paired sums.
	sum := 0.0
	for t := 1; t < n-2; t += 2 {
		rhoA := 1 - (w-meanAutocov(seqs, means, t))/varPlus
		rhoB := 1 - (w-meanAutocov(seqs, means, t+1))/varPlus
		if rhoA+rhoB <= 0 {
			break
		}
		sum += rhoA + rhoB
	}

	ess := float64(m*n) / (1 + 2*sum)
	if ess > float64(m*n) {
		ess = float64(m * n)
	}
	return ess
}

// meanAutocov averages the lag-t autocovariance over sequences.
func meanAutocov(seqs [][]float64, means []float64, t int) float64 {
	total := 0.0
	for i, s := range seqs {
		n := len(s)
		acc := 0.0
		for j := 0; j+t < n; j++ {
			acc += (s[j] - means[i]) * (s[j+t] - means[i])
		}
		total += acc / float64(n-t)
	}
	return total / float64(len(seqs))
}

// splitHalves splits every chain into two equal-length sequences, dropping a
// trailing odd draw.
func splitHalves(chains [][]float64) [][]float64 {
	var seqs [][]float64
	for _, c := range chains {
		half := len(c) / 2
		if half < 1 {
			continue
		}
		seqs = append(seqs, c[:half], c[half:2*half])
	}
	return seqs
}
