package deconv

import (
	"fmt"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"

	"github.com/methkit/celldecon/mixture"
)

// cpSumTol is the slack on the Σf ≤ 1 budget before the inequality mode
// escalates to the equality solver.
const cpSumTol = 1e-9

// EstimateCP — constrained projection.
//
// Description:
//
//	For each sample independently, solve the quadratic program
//
//	    min ‖R·f − y‖²   s.t.  f ≥ 0  and  Σf ≤ 1 (Inequality)
//	                                   or  Σf = 1 (Equality)
//
//	The quadratic term is the reference cross-product RᵀR (computed once
//	per call) and the linear term derives from Rᵀy per sample.
//
//	Inequality mode first solves the plain non-negative least squares: if
//	that optimum already satisfies Σf ≤ 1 the budget constraint is
//	inactive and the solution is optimal; otherwise, by convexity, the
//	budget binds at the optimum and the equality solver finishes the job.
//
// The constraint mode is validated against the enumerated set before any
// solving begins. Samples are solved in parallel (worker pool bounded by
// opts.Workers, GOMAXPROCS when 0) and gathered in input order; there is no
// shared mutable state between samples.
//
// No renormalization is applied: Equality rows sum to 1 by construction
// (the KKT system carries the Σf = 1 row), Inequality rows may legitimately
// sum to less than 1. Sub-tolerance negative round-off is clamped.
//
// Errors:
//   - ErrInvalidConfiguration — unrecognized constraint mode (fail fast,
//     never a silent default).
//   - ErrIncompatibleReference — empty (or underdetermined) feature overlap.
//   - ErrInfeasibleConstraint — the active-set solver could not certify an
//     optimum (sweep bound exceeded or a singular subproblem). The feasible
//     set always contains the origin, so this is defensive, not expected.
//
// Complexity: O(features·cellTypes² + samples · sweeps · cellTypes³).
func EstimateCP(m *mixture.Measurement, r *mixture.Reference, opts Options) (*mixture.Fractions, error) {
	if err := validateConstraintMode(opts.ConstraintMode); err != nil {
		return nil, opErrorf("EstimateCP", err)
	}
	am, ar, err := alignInputs("EstimateCP", m, r)
	if err != nil {
		return nil, err
	}

	x := ar.Matrix()
	k := ar.NumCellTypes()
	samples := am.Samples()
	gram := mixture.CrossProduct(x) // shared, read-only across workers
	maxSweeps := 4*k + 10
	data := make([]float64, am.NumSamples()*k)

	var g errgroup.Group
	g.SetLimit(opts.workerLimit())
	for j := 0; j < am.NumSamples(); j++ {
		g.Go(func() error {
			y := am.SampleVector(j)
			lin, linErr := mixture.CrossProductVec(x, y)
			if linErr != nil {
				return opErrorf("EstimateCP", linErr)
			}

			var f []float64
			var solveErr error
			switch opts.ConstraintMode {
			case Inequality:
				f, solveErr = nnls(x, y)
				if solveErr == nil && floats.Sum(f) > 1+cpSumTol {
					// Budget binds at the optimum; resolve on the simplex.
					f, solveErr = simplexQP(gram, lin, maxSweeps)
				}
			case Equality:
				f, solveErr = simplexQP(gram, lin, maxSweeps)
			}
			if solveErr != nil {
				return fmt.Errorf("EstimateCP: sample %d (%s): %w", j, samples[j], ErrInfeasibleConstraint)
			}
			mixture.ClampNonNegative(f) // round-off shavings only
			copy(data[j*k:(j+1)*k], f)

			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return mixture.NewFractions(samples, ar.CellTypes(), data)
}
