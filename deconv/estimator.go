// Package deconv: the shared estimator capability and the helpers every
// estimator file leans on (error wrapping, label alignment, fitted values).

package deconv

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/methkit/celldecon/mixture"
)

// Estimator is the capability all three methods expose: reduce measurement
// and reference to their shared features, fit every sample independently,
// and return a samples × cellTypes fraction matrix. Compose is written once
// against this signature and parametrized by Options, not by type switches.
type Estimator func(m *mixture.Measurement, r *mixture.Reference, opts Options) (*mixture.Fractions, error)

// estimatorFor dispatches a validated method tag to its implementation.
// Callers MUST run validateMethod first; an unknown tag here is a programmer
// error and panics.
func estimatorFor(method Method) Estimator {
	switch method {
	case RPC:
		return EstimateRPC
	case CBS:
		return EstimateCBS
	case CP:
		return EstimateCP
	default:
		panic("deconv: estimatorFor called with unvalidated method")
	}
}

// wrapConfigf annotates ErrInvalidConfiguration with the offending field.
func wrapConfigf(format string, args ...any) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvalidConfiguration)
}

// opErrorf wraps err with an operation tag, preserving the sentinel for
// errors.Is at the caller. Use only with err != nil.
func opErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// alignInputs reduces (m, r) to shared feature labels, translating an empty
// intersection into the package's ErrIncompatibleReference sentinel. An
// overlap smaller than the number of cell types leaves every per-sample
// system underdetermined, so it is rejected the same way.
func alignInputs(tag string, m *mixture.Measurement, r *mixture.Reference) (*mixture.Measurement, *mixture.Reference, error) {
	am, ar, err := mixture.Align(m, r)
	if err != nil {
		if errors.Is(err, mixture.ErrNoSharedFeatures) {
			return nil, nil, opErrorf(tag, ErrIncompatibleReference)
		}

		return nil, nil, opErrorf(tag, err)
	}
	if am.NumFeatures() < ar.NumCellTypes() {
		return nil, nil, opErrorf(tag+": fewer shared features than cell types", ErrIncompatibleReference)
	}

	return am, ar, nil
}

// fittedValues computes X·β into a fresh slice of length rows(X).
// Fixed i→j order; skipping zero β entries saves work on sparse solutions.
func fittedValues(x mat.Matrix, beta []float64) []float64 {
	n, k := x.Dims()
	out := make([]float64, n)
	for j := 0; j < k; j++ {
		bj := beta[j]
		if bj == 0 {
			continue
		}
		for i := 0; i < n; i++ {
			out[i] += x.At(i, j) * bj
		}
	}

	return out
}

// residuals computes y − fitted into a fresh slice.
func residuals(y, fitted []float64) []float64 {
	out := make([]float64, len(y))
	floats.SubTo(out, y, fitted)

	return out
}

// maxAbsDelta returns max_i |a[i] − b[i]| (convergence criterion).
func maxAbsDelta(a, b []float64) float64 {
	return floats.Distance(a, b, math.Inf(1))
}
