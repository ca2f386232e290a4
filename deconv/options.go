// Package deconv: method/mode enums, option defaults and fail-fast option
// validation. Defaults live in constants (single source of truth) and
// DefaultOptions mirrors them exactly.

package deconv

import (
	"math"
	"runtime"
)

// Method selects which estimator Compose (and callers generally) should use.
type Method int

const (
	// RPC — robust partial correlations (iteratively reweighted least
	// squares with Huber weights).
	RPC Method = iota

	// CBS — support-vector calibration ensemble over nu candidates.
	CBS

	// CP — constrained projection (per-sample quadratic program).
	CP
)

// String implements fmt.Stringer for diagnostics and error messages.
func (m Method) String() string {
	switch m {
	case RPC:
		return "RPC"
	case CBS:
		return "CBS"
	case CP:
		return "CP"
	default:
		return "unknown"
	}
}

// ConstraintMode selects the budget constraint of the CP estimator.
type ConstraintMode int

const (
	// Inequality constrains fractions to sum(f) ≤ 1.
	Inequality ConstraintMode = iota

	// Equality constrains fractions to sum(f) = 1.
	Equality
)

// String implements fmt.Stringer for diagnostics and error messages.
func (c ConstraintMode) String() string {
	switch c {
	case Inequality:
		return "inequality"
	case Equality:
		return "equality"
	default:
		return "unknown"
	}
}

// DEFAULTS — single source of truth for zero-value behavior. DefaultOptions
// MUST reflect these constants.
const (
	// DefaultMaxIterations bounds RPC's reweighting loop (and the SVR
	// sweeps inside CBS). Reaching the bound is not an error; the latest
	// estimate is returned.
	DefaultMaxIterations = 50

	// DefaultConstraintMode is CP's budget constraint when unspecified.
	DefaultConstraintMode = Inequality

	// convergenceTol is the maximum absolute coefficient change below which
	// an iterative fit is considered converged.
	convergenceTol = 1e-6
)

// DefaultNuCandidates returns the default SVR regularization trade-off
// candidates, in selection (tie-break) order.
func DefaultNuCandidates() []float64 {
	return []float64{0.25, 0.5, 0.75}
}

// Options configures the estimators. The zero value is NOT valid; start from
// DefaultOptions and override fields as needed.
//
// Fields:
//   - MaxIterations  — RPC only: bound on the reweighting loop (≥ 1).
//   - NuCandidates   — CBS only: ordered nu values, each in (0, 1);
//     ties in fit quality resolve to the first-seen candidate.
//   - ConstraintMode — CP only: Inequality (sum ≤ 1) or Equality (sum = 1).
//   - Workers        — CBS/CP: bound on concurrent per-sample fits;
//     0 means GOMAXPROCS. Results are always gathered in input order, so
//     Workers never affects the output, only wall-clock time.
type Options struct {
	MaxIterations  int
	NuCandidates   []float64
	ConstraintMode ConstraintMode
	Workers        int
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		MaxIterations:  DefaultMaxIterations,
		NuCandidates:   DefaultNuCandidates(),
		ConstraintMode: DefaultConstraintMode,
		Workers:        0, // resolved to GOMAXPROCS at use
	}
}

// workerLimit resolves the effective worker-pool size.
func (o Options) workerLimit() int {
	if o.Workers > 0 {
		return o.Workers
	}

	return runtime.GOMAXPROCS(0)
}

// validateMethod checks the method tag against the enumerated set.
// Unrecognized methods fail fast with ErrInvalidConfiguration; nothing
// numeric may run before this check.
func validateMethod(m Method) error {
	switch m {
	case RPC, CBS, CP:
		return nil
	default:
		return wrapConfigf("method %q", m.String())
	}
}

// validateConstraintMode checks the CP mode against the enumerated set.
func validateConstraintMode(c ConstraintMode) error {
	switch c {
	case Inequality, Equality:
		return nil
	default:
		return wrapConfigf("constraint mode %q", c.String())
	}
}

// validateIterations checks the RPC iteration bound.
func validateIterations(n int) error {
	if n < 1 {
		return wrapConfigf("max iterations %d", n)
	}

	return nil
}

// validateNuCandidates checks the CBS candidate list: non-empty, every value
// finite and strictly inside (0, 1).
func validateNuCandidates(nus []float64) error {
	if len(nus) == 0 {
		return wrapConfigf("empty nu candidate list")
	}
	for _, nu := range nus {
		if math.IsNaN(nu) || nu <= 0 || nu >= 1 {
			return wrapConfigf("nu candidate %v", nu)
		}
	}

	return nil
}
