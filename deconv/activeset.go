// Package deconv: active-set machinery for the constrained projection
// estimator. Two solvers live here:
//
//   - nnls      — min ‖X·f − y‖² s.t. f ≥ 0 (Lawson–Hanson active set)
//   - simplexQP — min ‖X·f − y‖² s.t. f ≥ 0, Σf = 1 (primal active set
//     with a bordered KKT system per sweep)
//
// Both are deterministic: fixed index-selection order, no randomness, and
// bounded sweeps — exceeding a bound means the solver cannot certify an
// optimum and surfaces errActiveSetStalled for the caller to translate.

package deconv

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/mat"
)

const (
	// activeSetZeroTol is the threshold below which a coefficient counts as
	// sitting on its zero bound.
	activeSetZeroTol = 1e-10

	// dualTol is the optimality slack on the dual (gradient) conditions.
	dualTol = 1e-10
)

// errActiveSetStalled reports an exceeded sweep bound or a singular
// subproblem; EstimateCP maps it onto ErrInfeasibleConstraint.
var errActiveSetStalled = errors.New("deconv: active-set solver stalled")

// nnls solves the non-negative least-squares problem min ‖X·f − y‖² subject
// to f ≥ 0 with the Lawson–Hanson active-set method.
//
// Outline:
//  1. Start from f = 0 with every index in the active (zero) set.
//  2. Compute the dual w = Xᵀ(y − X·f); if no active index has w > 0 the
//     Kuhn–Tucker conditions hold and f is optimal.
//  3. Otherwise free the index with the largest dual, solve the
//     unconstrained least squares on the free columns, and — if any freed
//     coefficient went non-positive — step back along the segment to the
//     feasible boundary, returning offending indices to the active set.
//
// Index selection is deterministic (largest dual, lowest index on ties), so
// identical inputs give identical solutions.
func nnls(x mat.Matrix, y []float64) ([]float64, error) {
	_, k := x.Dims()
	f := make([]float64, k)
	free := make([]bool, k)
	maxOuter := 3*k + 10
	for outer := 0; ; outer++ {
		if outer > maxOuter {
			return nil, errActiveSetStalled
		}
		// Dual vector on the active set: w = Xᵀ(y − X·f).
		res := residuals(y, fittedValues(x, f))
		wBest, jBest := dualTol, -1
		for j := 0; j < k; j++ {
			if free[j] {
				continue
			}
			wj := colDot(x, j, res)
			if wj > wBest {
				wBest, jBest = wj, j
			}
		}
		if jBest < 0 {
			return f, nil // KKT: no active constraint worth relaxing
		}
		free[jBest] = true

		// Inner loop: restore primal feasibility of the free coefficients.
		for inner := 0; ; inner++ {
			if inner > k+5 {
				return nil, errActiveSetStalled
			}
			s, err := lsOnFree(x, y, free)
			if err != nil {
				return nil, err
			}
			// Step length toward s; 1 when s is already feasible.
			alpha, blocked := 1.0, false
			for j := 0; j < k; j++ {
				if free[j] && s[j] <= activeSetZeroTol {
					blocked = true
					if t := f[j] / (f[j] - s[j]); t < alpha {
						alpha = t
					}
				}
			}
			if !blocked {
				copy(f, s)
				break
			}
			for j := 0; j < k; j++ {
				if free[j] {
					f[j] += alpha * (s[j] - f[j])
					if f[j] <= activeSetZeroTol {
						f[j] = 0
						free[j] = false
					}
				}
			}
		}
	}
}

// simplexQP solves min ‖X·f − y‖² subject to f ≥ 0 and Σf = 1 with a primal
// active-set method. gram = XᵀX and lin = Xᵀy are passed in precomputed (the
// gram is shared across all samples of one estimator call).
//
// Outline:
//  1. Start from the feasible uniform vector f = 1/k with every index free.
//  2. Solve the equality-constrained subproblem on the free set via the
//     bordered KKT system [2G −1; 1ᵀ 0]·[g μ] = [2c; 1].
//  3. If g is feasible, check the bound multipliers η_j = 2(G·f − c)_j − μ
//     of the zero-fixed indices; release the most negative, or stop when
//     all are ≥ 0 (global optimum of the convex program).
//  4. If g is infeasible, step to the boundary (both f and g sum to one, so
//     every interpolate stays on the simplex) and fix the blocking indices
//     at zero.
func simplexQP(gram *mat.Dense, lin []float64, maxSweeps int) ([]float64, error) {
	k := len(lin)
	f := make([]float64, k)
	free := make([]bool, k)
	for j := 0; j < k; j++ {
		f[j] = 1.0 / float64(k)
		free[j] = true
	}
	for sweep := 0; ; sweep++ {
		if sweep > maxSweeps {
			return nil, errActiveSetStalled
		}
		g, mu, err := kktSolve(gram, lin, free)
		if err != nil {
			return nil, err
		}

		// Feasibility of the subproblem solution on the free set.
		feasible := true
		for j := 0; j < k; j++ {
			if free[j] && g[j] < -activeSetZeroTol {
				feasible = false
				break
			}
		}
		if feasible {
			for j := 0; j < k; j++ {
				if free[j] {
					f[j] = math.Max(g[j], 0) // shave KKT round-off
				} else {
					f[j] = 0
				}
			}
			// Dual feasibility of the zero-fixed coefficients.
			grad := gradQP(gram, lin, f)
			worst, worstJ := -dualTol, -1
			for j := 0; j < k; j++ {
				if free[j] {
					continue
				}
				if eta := 2*grad[j] - mu; eta < worst {
					worst, worstJ = eta, j
				}
			}
			if worstJ < 0 {
				return f, nil // KKT conditions hold; convex ⇒ global optimum
			}
			free[worstJ] = true

			continue
		}

		// Step from f toward g until the first coefficient hits zero.
		alpha := 1.0
		for j := 0; j < k; j++ {
			if free[j] && g[j] < f[j] && g[j] < activeSetZeroTol {
				if t := f[j] / (f[j] - g[j]); t < alpha {
					alpha = t
				}
			}
		}
		for j := 0; j < k; j++ {
			if free[j] {
				f[j] += alpha * (g[j] - f[j])
				if f[j] <= activeSetZeroTol {
					f[j] = 0
					free[j] = false
				}
			}
		}
	}
}

// kktSolve solves the equality-constrained subproblem on the free index set
// via the bordered system [2G_FF −1; 1ᵀ 0]·[g_F μ] = [2c_F; 1]. The
// returned g is full length with zeros on fixed indices.
func kktSolve(gram *mat.Dense, lin []float64, free []bool) ([]float64, float64, error) {
	idx := make([]int, 0, len(free))
	for j, fj := range free {
		if fj {
			idx = append(idx, j)
		}
	}
	p := len(idx)
	if p == 0 {
		return nil, 0, errActiveSetStalled // Σf = 1 needs a free coefficient
	}
	kkt := mat.NewDense(p+1, p+1, nil)
	rhs := mat.NewVecDense(p+1, nil)
	for a, ja := range idx {
		for b, jb := range idx {
			kkt.Set(a, b, 2*gram.At(ja, jb))
		}
		kkt.Set(a, p, -1)
		kkt.Set(p, a, 1)
		rhs.SetVec(a, 2*lin[ja])
	}
	rhs.SetVec(p, 1)

	var sol mat.VecDense
	if err := solveSquare(&sol, kkt, rhs); err != nil {
		return nil, 0, err
	}
	g := make([]float64, len(free))
	for a, ja := range idx {
		g[ja] = sol.AtVec(a)
	}

	return g, sol.AtVec(p), nil
}

// gradQP computes G·f − c, the (half) gradient of ½‖X·f − y‖².
func gradQP(gram *mat.Dense, lin, f []float64) []float64 {
	k := len(lin)
	out := make([]float64, k)
	for i := 0; i < k; i++ {
		var acc float64
		for j := 0; j < k; j++ {
			acc += gram.At(i, j) * f[j]
		}
		out[i] = acc - lin[i]
	}

	return out
}

// lsOnFree solves the unconstrained least squares min ‖X_F·s − y‖² on the
// free columns via QR and scatters the solution into a full-length vector.
func lsOnFree(x mat.Matrix, y []float64, free []bool) ([]float64, error) {
	n, k := x.Dims()
	idx := make([]int, 0, k)
	for j, fj := range free {
		if fj {
			idx = append(idx, j)
		}
	}
	sub := mat.NewDense(n, len(idx), nil)
	for c, j := range idx {
		for i := 0; i < n; i++ {
			sub.Set(i, c, x.At(i, j))
		}
	}
	var qr mat.QR
	qr.Factorize(sub)
	var sol mat.VecDense
	if err := qr.SolveVecTo(&sol, false, mat.NewVecDense(n, y)); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) || math.IsInf(float64(cond), 1) {
			return nil, errActiveSetStalled
		}
	}
	s := make([]float64, k)
	for c, j := range idx {
		s[j] = sol.AtVec(c)
	}

	return s, nil
}

// solveSquare solves a·x = b for a square dense system, accepting gonum's
// finite-condition warnings and failing on a genuinely singular system.
func solveSquare(dst *mat.VecDense, a *mat.Dense, b *mat.VecDense) error {
	if err := dst.SolveVec(a, b); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) || math.IsInf(float64(cond), 1) {
			return errActiveSetStalled
		}
	}

	return nil
}

// colDot computes ⟨X[:,j], v⟩ for one column of X.
func colDot(x mat.Matrix, j int, v []float64) float64 {
	n, _ := x.Dims()
	var acc float64
	for i := 0; i < n; i++ {
		acc += x.At(i, j) * v[i]
	}

	return acc
}
