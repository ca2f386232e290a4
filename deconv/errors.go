// Package deconv: sentinel error set. All estimators and the composer MUST
// return these sentinels and tests MUST check them via errors.Is. Call sites
// add context (operation tag, sample index, triggering reference) with
// fmt.Errorf("...: %w", ErrX).

package deconv

import "errors"

var (
	// ErrInvalidConfiguration is returned for an unrecognized method, an
	// unrecognized constraint mode, an out-of-range aggregate index, or
	// unusable option values — always detected before any numeric work.
	ErrInvalidConfiguration = errors.New("deconv: invalid configuration")

	// ErrIncompatibleReference indicates zero feature-label overlap between
	// the measurement and a reference matrix.
	ErrIncompatibleReference = errors.New("deconv: no feature overlap with reference")

	// ErrEstimationFailed indicates a per-sample numeric fit could not be
	// produced (e.g. every SVR candidate was degenerate). The wrapping
	// message identifies the sample.
	ErrEstimationFailed = errors.New("deconv: estimation failed")

	// ErrInfeasibleConstraint indicates the quadratic-programming solver
	// could not certify a feasible optimum. The constraint set always
	// contains the origin, so this is a defensive guard (iteration cap or a
	// singular subproblem), not an expected outcome.
	ErrInfeasibleConstraint = errors.New("deconv: constraint set infeasible")
)
