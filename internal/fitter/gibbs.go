package fitter

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/pkanalytics/pkcurve/internal/domain"
)

// chainResult holds one chain's kept draws: coefficient rows (fixed effects
// plus the two scale parameters) and the per-observation linear predictor.
type chainResult struct {
	draws *mat.Dense // kept x (p+2)
	mu    *mat.Dense // kept x n
}

// chainState carries the sampler's current position.
type chainState struct {
	beta   *mat.VecDense // fixed effects, length p
	lambda []float64     // latent precisions for student-t coefficient priors
	b      []float64     // random intercepts, length nGroups
	sigma2 float64       // error variance
	tau2   float64       // random-intercept variance
}

// coefPrior resolves the prior for a design column: the first column is the
// intercept class, everything else is the slope class.
func coefPrior(spec domain.ModelSpec, col int) domain.Prior {
	if col == 0 {
		return spec.InterceptPrior
	}
	return spec.SlopePrior
}

// runChain runs one Gibbs chain over the conjugate hierarchical model and
// returns the post-warmup draws. Every step is a closed-form conditional
// draw; student-t coefficient priors are handled by scale-mixture
// augmentation, which keeps the beta update Gaussian.
func runChain(
	ctx context.Context,
	X *mat.Dense,
	y []float64,
	group []int,
	nGroups int,
	spec domain.ModelSpec,
	seed uint64,
) (chainResult, error) {
	n, p := X.Dims()
	rng := rand.New(rand.NewSource(seed))
	norm := distuv.Normal{Mu: 0, Sigma: 1, Src: rng}

	st := chainState{
		beta:   mat.NewVecDense(p, nil),
		lambda: make([]float64, p),
		b:      make([]float64, nGroups),
		sigma2: initialVariance(y),
		tau2:   1,
	}
	for k := range st.lambda {
		st.lambda[k] = 1
	}

	// XtX and Xty are fixed across iterations.
	var xtx mat.Dense
	xtx.Mul(X.T(), X)
	groupSize := make([]float64, nGroups)
	for _, g := range group {
		groupSize[g]++
	}

	kept := spec.Sampler.Iterations - spec.Sampler.Warmup
	draws := mat.NewDense(kept, p+2, nil)
	muOut := mat.NewDense(kept, n, nil)

	resid := make([]float64, n)
	xb := mat.NewVecDense(n, nil)

	for iter := 0; iter < spec.Sampler.Iterations; iter++ {
		if iter%64 == 0 {
			select {
			case <-ctx.Done():
				return chainResult{}, ctx.Err()
			default:
			}
		}

		updateLambda(&st, spec, rng)
		if err := updateBeta(&st, X, &xtx, y, group, spec, norm); err != nil {
			return chainResult{}, err
		}

		xb.MulVec(X, st.beta)
		updateRandomIntercepts(&st, xb, y, group, groupSize, norm)
		updateVariances(&st, xb, y, group, groupSize, spec, rng, resid)

		if iter < spec.Sampler.Warmup {
			continue
		}
		row := iter - spec.Sampler.Warmup
		for k := 0; k < p; k++ {
			draws.Set(row, k, st.beta.AtVec(k))
		}
		draws.Set(row, p, math.Sqrt(st.sigma2))
		draws.Set(row, p+1, math.Sqrt(st.tau2))
		for i := 0; i < n; i++ {
			muOut.Set(row, i, xb.AtVec(i)+st.b[group[i]])
		}
		for k := 0; k < p+2; k++ {
			if v := draws.At(row, k); math.IsNaN(v) || math.IsInf(v, 0) {
				return chainResult{}, fmt.Errorf("non-finite draw at iteration %d, column %d", iter, k)
			}
		}
	}

	return chainResult{draws: draws, mu: muOut}, nil
}

// updateLambda refreshes the latent scale-mixture precisions for columns with
// a student-t prior. Normal-prior columns keep lambda fixed at one.
func updateLambda(st *chainState, spec domain.ModelSpec, rng *rand.Rand) {
	for k := range st.lambda {
		prior := coefPrior(spec, k)
		if prior.Family != domain.PriorStudentT {
			st.lambda[k] = 1
			continue
		}
		z := (st.beta.AtVec(k) - prior.Location) / prior.Scale
		g := distuv.Gamma{
			Alpha: (prior.DF + 1) / 2,
			Beta:  (prior.DF + z*z) / 2,
			Src:   rng,
		}
		st.lambda[k] = g.Rand()
	}
}

// updateBeta draws the fixed effects from their Gaussian full conditional.
// The precision is XtX/sigma2 plus the prior precision; the draw uses the
// Cholesky factor of the precision matrix.
func updateBeta(
	st *chainState,
	X *mat.Dense,
	xtx *mat.Dense,
	y []float64,
	group []int,
	spec domain.ModelSpec,
	norm distuv.Normal,
) error {
	n, p := X.Dims()

	// Partial residual: response minus random intercepts.
	r := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		r.SetVec(i, y[i]-st.b[group[i]])
	}
	rhs := mat.NewVecDense(p, nil)
	rhs.MulVec(X.T(), r)
	rhs.ScaleVec(1/st.sigma2, rhs)

	prec := mat.NewSymDense(p, nil)
	for i := 0; i < p; i++ {
		for j := i; j < p; j++ {
			prec.SetSym(i, j, xtx.At(i, j)/st.sigma2)
		}
	}
	for k := 0; k < p; k++ {
		prior := coefPrior(spec, k)
		pk := st.lambda[k] / (prior.Scale * prior.Scale)
		prec.SetSym(k, k, prec.At(k, k)+pk)
		rhs.SetVec(k, rhs.AtVec(k)+pk*prior.Location)
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(prec); !ok {
		return fmt.Errorf("conditional precision for beta is not positive definite")
	}

	mean := mat.NewVecDense(p, nil)
	if err := chol.SolveVecTo(mean, rhs); err != nil {
		return fmt.Errorf("solving beta mean: %w", err)
	}

	// Draw: mean + solve(L^T, z) with z standard normal.
	z := mat.NewVecDense(p, nil)
	for k := 0; k < p; k++ {
		z.SetVec(k, norm.Rand())
	}
	var l mat.TriDense
	chol.LTo(&l)
	u := mat.NewVecDense(p, nil)
	if err := u.SolveVec(l.T(), z); err != nil {
		return fmt.Errorf("sampling beta: %w", err)
	}
	st.beta.AddVec(mean, u)
	return nil
}

// updateRandomIntercepts draws each subject's intercept from its Gaussian
// full conditional.
func updateRandomIntercepts(
	st *chainState,
	xb *mat.VecDense,
	y []float64,
	group []int,
	groupSize []float64,
	norm distuv.Normal,
) {
	sums := make([]float64, len(st.b))
	for i, g := range group {
		sums[g] += y[i] - xb.AtVec(i)
	}
	for j := range st.b {
		prec := groupSize[j]/st.sigma2 + 1/st.tau2
		mean := sums[j] / st.sigma2 / prec
		st.b[j] = mean + norm.Rand()/math.Sqrt(prec)
	}
}

// updateVariances draws the error variance and the random-intercept variance
// from their inverse-gamma full conditionals.
func updateVariances(
	st *chainState,
	xb *mat.VecDense,
	y []float64,
	group []int,
	groupSize []float64,
	spec domain.ModelSpec,
	rng *rand.Rand,
	resid []float64,
) {
	sse := 0.0
	for i := range y {
		resid[i] = y[i] - xb.AtVec(i) - st.b[group[i]]
		sse += resid[i] * resid[i]
	}
	st.sigma2 = invGamma(
		spec.ErrorVariance.Shape+float64(len(y))/2,
		spec.ErrorVariance.Rate+sse/2,
		rng,
	)

	ssb := 0.0
	for _, bj := range st.b {
		ssb += bj * bj
	}
	st.tau2 = invGamma(
		spec.GroupVariance.Shape+float64(len(st.b))/2,
		spec.GroupVariance.Rate+ssb/2,
		rng,
	)
}

// invGamma draws from an inverse-gamma distribution with the given shape and
// rate by inverting a gamma draw.
func invGamma(shape, rate float64, rng *rand.Rand) float64 {
	g := distuv.Gamma{Alpha: shape, Beta: rate, Src: rng}
	return 1 / g.Rand()
}

func initialVariance(y []float64) float64 {
	if len(y) < 2 {
		return 1
	}
	mean := 0.0
	for _, v := range y {
		mean += v
	}
	mean /= float64(len(y))
	ss := 0.0
	for _, v := range y {
		d := v - mean
		ss += d * d
	}
	v := ss / float64(len(y)-1)
	if v <= 0 {
		return 1
	}
	return v
}
