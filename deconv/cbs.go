package deconv

import (
	"fmt"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/methkit/celldecon/mixture"
)

// cbsRidgeRel sizes the ridge added to each weighted normal system relative
// to the mean Gram diagonal; it only conditions the solve, it is not the
// regularization the nu candidates control.
const cbsRidgeRel = 1e-6

// cbsRidgeFloor is the absolute lower bound on that ridge.
const cbsRidgeFloor = 1e-12

// EstimateCBS — support-vector calibration ensemble.
//
// Description:
//
//	For each sample independently, one linear support-vector regression of
//	the sample's feature vector against the reference columns is fitted per
//	nu candidate. The SVR is solved in the primal with a squared
//	epsilon-insensitive loss: features whose residual falls inside the
//	epsilon tube contribute nothing, features outside it are refit by
//	weighted ridge least squares. The tube half-width is re-estimated each
//	sweep as the (1−nu) quantile of the absolute residuals, preserving the
//	defining nu-SVR property that nu bounds the fraction of features
//	outside the tube.
//
//	Each candidate's fit is scored by the Pearson correlation between its
//	fitted values X·β and the observed sample vector; the best-scoring
//	candidate wins, with ties broken by first-seen order in
//	opts.NuCandidates. The winner's coefficients are clamped to zero and
//	rescaled to sum to 1.
//
// Samples are fitted in parallel on a worker pool bounded by opts.Workers
// (GOMAXPROCS when 0); each worker writes only its own output row, and rows
// are assembled in input order, so the result is independent of scheduling.
//
// Errors:
//   - ErrInvalidConfiguration — empty candidate list or a nu ∉ (0, 1).
//   - ErrIncompatibleReference — empty (or underdetermined) feature overlap.
//   - ErrEstimationFailed — every candidate was numerically degenerate for
//     some sample (solver failure or an undefined fit score); the message
//     identifies the sample. Zeros are never silently substituted.
//
// Complexity: O(samples · |nu| · sweeps · features · cellTypes²).
func EstimateCBS(m *mixture.Measurement, r *mixture.Reference, opts Options) (*mixture.Fractions, error) {
	if err := validateNuCandidates(opts.NuCandidates); err != nil {
		return nil, opErrorf("EstimateCBS", err)
	}
	am, ar, err := alignInputs("EstimateCBS", m, r)
	if err != nil {
		return nil, err
	}

	x := ar.Matrix()
	k := ar.NumCellTypes()
	samples := am.Samples()
	data := make([]float64, am.NumSamples()*k)

	var g errgroup.Group
	g.SetLimit(opts.workerLimit())
	for j := 0; j < am.NumSamples(); j++ {
		g.Go(func() error {
			y := am.SampleVector(j)
			var best []float64
			bestScore := math.Inf(-1)
			for _, nu := range opts.NuCandidates { // candidate order == tie-break order
				beta, ok := svrFit(x, y, nu)
				if !ok {
					continue
				}
				score := stat.Correlation(fittedValues(x, beta), y, nil)
				if math.IsNaN(score) || math.IsInf(score, 0) {
					continue // undefined fit quality counts as degenerate
				}
				if score > bestScore { // strict: first-seen candidate wins ties
					best, bestScore = beta, score
				}
			}
			if best == nil {
				return fmt.Errorf("EstimateCBS: sample %d (%s): %w", j, samples[j], ErrEstimationFailed)
			}
			mixture.ClampNonNegative(best)
			mixture.NormalizeToOne(best)
			copy(data[j*k:(j+1)*k], best)

			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return mixture.NewFractions(samples, ar.CellTypes(), data)
}

// svrFit runs the primal SVR sweeps for one (sample, nu) pair. It returns
// ok=false when a weighted system cannot be factorized — the candidate is
// degenerate and the caller moves on.
func svrFit(x mat.Matrix, y []float64, nu float64) ([]float64, bool) {
	n, k := x.Dims()
	w := make([]float64, n)
	for i := range w {
		w[i] = 1.0 // warm start: plain (ridge-conditioned) least squares
	}
	beta, ok := solveWeightedRidge(x, y, w)
	if !ok {
		return nil, false
	}
	prev := make([]float64, len(beta))
	for sweep := 0; sweep < DefaultMaxIterations; sweep++ {
		res := residuals(y, fittedValues(x, beta))
		eps := absQuantile(res, 1-nu)
		active := 0
		for i, ri := range res {
			a := math.Abs(ri)
			if a <= eps || a == 0 {
				w[i] = 0 // inside the tube: no loss, no pull
			} else {
				w[i] = (a - eps) / a // IRLS weight of the squared hinge
				active++
			}
		}
		if active < k {
			break // a refit on fewer features than coefficients is underdetermined
		}
		copy(prev, beta)
		beta, ok = solveWeightedRidge(x, y, w)
		if !ok {
			return nil, false
		}
		if maxAbsDelta(beta, prev) < convergenceTol {
			break
		}
	}

	return beta, true
}

// solveWeightedRidge solves (XᵀWX + λI)β = XᵀWy with a Cholesky
// factorization; λ is a tiny conditioning ridge scaled to the Gram
// diagonal. Returns ok=false when the system is not positive definite.
func solveWeightedRidge(x mat.Matrix, y, w []float64) ([]float64, bool) {
	n, k := x.Dims()
	a := mat.NewSymDense(k, nil)
	b := mat.NewVecDense(k, nil)
	for p := 0; p < k; p++ {
		for q := p; q < k; q++ {
			var acc float64
			for i := 0; i < n; i++ {
				acc += w[i] * x.At(i, p) * x.At(i, q)
			}
			a.SetSym(p, q, acc)
		}
		var acc float64
		for i := 0; i < n; i++ {
			acc += w[i] * x.At(i, p) * y[i]
		}
		b.SetVec(p, acc)
	}
	var trace float64
	for p := 0; p < k; p++ {
		trace += a.At(p, p)
	}
	lambda := cbsRidgeRel * trace / float64(k)
	if lambda < cbsRidgeFloor {
		lambda = cbsRidgeFloor
	}
	for p := 0; p < k; p++ {
		a.SetSym(p, p, a.At(p, p)+lambda)
	}

	var ch mat.Cholesky
	if !ch.Factorize(a) {
		return nil, false
	}
	var sol mat.VecDense
	if err := ch.SolveVecTo(&sol, b); err != nil {
		return nil, false
	}
	out := make([]float64, k)
	for p := 0; p < k; p++ {
		out[p] = sol.AtVec(p)
	}

	return out, true
}

// absQuantile returns the p-quantile of |res| (empirical, sorted copy).
func absQuantile(res []float64, p float64) float64 {
	abs := make([]float64, len(res))
	for i, v := range res {
		abs[i] = math.Abs(v)
	}
	sort.Float64s(abs)

	return stat.Quantile(p, stat.Empirical, abs, nil)
}
