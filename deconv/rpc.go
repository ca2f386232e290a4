package deconv

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/methkit/celldecon/mixture"
)

// Huber IRLS constants.
const (
	// huberTuning is the classic 95%-efficiency tuning constant for Huber
	// weights on Gaussian residuals.
	huberTuning = 1.345

	// madToSigma rescales the median absolute deviation to a consistent
	// estimate of the residual standard deviation.
	madToSigma = 0.6745

	// minScale is the residual scale below which a fit counts as exact;
	// reweighting would divide by ~zero and cannot improve anything.
	minScale = 1e-12
)

// EstimateRPC — robust partial correlations.
//
// Description:
//
//	For each sample independently, the sample's feature vector is regressed
//	on the reference's cell-type columns by iteratively reweighted least
//	squares: residuals from the current fit are turned into Huber weights
//	(features with large residuals are down-weighted), and a weighted
//	least-squares refit follows. The loop stops when the maximum absolute
//	coefficient change drops below the convergence tolerance or after
//	opts.MaxIterations sweeps, whichever comes first — running out of
//	iterations is NOT an error; the latest estimate is used. Negative
//	coefficients are then clamped to zero and the vector is rescaled to
//	sum to 1.
//
// Algorithm outline (per sample):
//  1. β⁰ ← ordinary least squares (all weights 1).
//  2. r ← y − X·β; s ← MAD(r)/0.6745.
//  3. wᵢ ← 1 if |rᵢ| ≤ c·s, else c·s/|rᵢ|  (Huber, c = 1.345).
//  4. β ← argmin Σ wᵢ (yᵢ − (X·β)ᵢ)²  (weighted LS via QR).
//  5. Repeat 2–4 until max|Δβ| < 1e-6 or MaxIterations.
//  6. clamp(β, ≥0); rescale to Σβ = 1.
//
// A reference with a single cell-type column degenerates to a ratio of
// weighted means; a sample identical to one centroid yields a unit vector
// on that column.
//
// Samples are processed sequentially in input order: one IRLS fit is a
// handful of small QR solves and does not pay for fan-out.
//
// Errors:
//   - ErrInvalidConfiguration — MaxIterations < 1.
//   - ErrIncompatibleReference — empty (or underdetermined) feature overlap.
//   - ErrEstimationFailed — a weighted solve failed outright (degenerate
//     reference columns); the message names the sample.
//
// Complexity: O(samples · MaxIterations · features · cellTypes²).
func EstimateRPC(m *mixture.Measurement, r *mixture.Reference, opts Options) (*mixture.Fractions, error) {
	if err := validateIterations(opts.MaxIterations); err != nil {
		return nil, opErrorf("EstimateRPC", err)
	}
	am, ar, err := alignInputs("EstimateRPC", m, r)
	if err != nil {
		return nil, err
	}

	x := ar.Matrix()
	k := ar.NumCellTypes()
	samples := am.Samples()
	data := make([]float64, am.NumSamples()*k)
	for j := 0; j < am.NumSamples(); j++ { // fixed sample order
		y := am.SampleVector(j)
		beta, fitErr := irlsHuber(x, y, opts.MaxIterations)
		if fitErr != nil {
			return nil, fmt.Errorf("EstimateRPC: sample %d (%s): %w", j, samples[j], ErrEstimationFailed)
		}
		mixture.ClampNonNegative(beta)
		mixture.NormalizeToOne(beta)
		copy(data[j*k:(j+1)*k], beta)
	}

	return mixture.NewFractions(samples, ar.CellTypes(), data)
}

// irlsHuber runs the reweighting loop for one sample and returns the latest
// coefficient vector (converged or not).
func irlsHuber(x mat.Matrix, y []float64, maxIter int) ([]float64, error) {
	n, k := x.Dims()
	w := make([]float64, n)
	for i := range w {
		w[i] = 1.0 // first sweep is ordinary least squares
	}
	beta := make([]float64, k)
	prev := make([]float64, k)
	for iter := 0; iter < maxIter; iter++ {
		copy(prev, beta)
		if err := solveWeightedLS(x, y, w, beta); err != nil {
			return nil, err
		}
		// Convergence on the coefficient change between consecutive sweeps.
		if iter > 0 && maxAbsDelta(beta, prev) < convergenceTol {
			break
		}
		res := residuals(y, fittedValues(x, beta))
		s := madScale(res)
		if s < minScale {
			break // (numerically) exact reconstruction; weights are moot
		}
		bound := huberTuning * s
		for i, ri := range res {
			a := math.Abs(ri)
			if a <= bound {
				w[i] = 1.0
			} else {
				w[i] = bound / a
			}
		}
	}

	return beta, nil
}

// solveWeightedLS solves min_β Σ wᵢ (yᵢ − (X·β)ᵢ)² by scaling rows with √wᵢ
// and running a QR least-squares solve. The solution is written into beta.
// gonum reports an ill-conditioned (but solved) system via mat.Condition;
// that is accepted, any other failure propagates.
func solveWeightedLS(x mat.Matrix, y, w []float64, beta []float64) error {
	n, k := x.Dims()
	xw := mat.NewDense(n, k, nil)
	yw := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		sw := math.Sqrt(w[i])
		yw.SetVec(i, sw*y[i])
		for j := 0; j < k; j++ {
			xw.Set(i, j, sw*x.At(i, j))
		}
	}
	var qr mat.QR
	qr.Factorize(xw)
	var sol mat.VecDense
	if err := qr.SolveVecTo(&sol, false, yw); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return err
		}
	}
	for j := 0; j < k; j++ {
		beta[j] = sol.AtVec(j)
	}

	return nil
}

// madScale estimates the residual scale as MAD about the median, rescaled
// to be consistent with the standard deviation under Gaussian residuals.
func madScale(res []float64) float64 {
	med := median(res)
	abs := make([]float64, len(res))
	for i, v := range res {
		abs[i] = math.Abs(v - med)
	}

	return median(abs) / madToSigma
}

// median returns the sample median without mutating its input.
func median(v []float64) float64 {
	s := append([]float64(nil), v...)
	sort.Float64s(s)
	n := len(s)
	if n%2 == 1 {
		return s[n/2]
	}

	return 0.5 * (s[n/2-1] + s[n/2])
}
