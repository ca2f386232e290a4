// SPDX-License-Identifier: MIT
// Package mixture: shared numeric primitives.
//
// Purpose:
//   - Keep the handful of vector/matrix helpers every estimator needs in one
//     place: non-negativity clamping, unit-sum renormalization, and the
//     reference cross-products (RᵀR, Rᵀy) that seed quadratic programs.
//
// Determinism & Performance:
//   - All helpers use fixed index order and allocate at most one result.
//   - Cross-products delegate to gonum's dense kernels.

package mixture

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// normalizeEps is the smallest coefficient mass NormalizeToOne will divide
// by; anything at or below it is treated as an all-zero vector.
const normalizeEps = 1e-12

// ClampNonNegative zeroes every negative entry of v in place and reports how
// many entries were clamped. Negative coefficients have no physical meaning
// as proportions; estimators clamp after their unconstrained solves.
// Complexity: O(n).
func ClampNonNegative(v []float64) int {
	clamped := 0
	for i, x := range v {
		if x < 0 {
			v[i] = 0
			clamped++
		}
	}

	return clamped
}

// NormalizeToOne rescales v in place so its entries sum to 1.
//
// Behavior highlights:
//   - An (effectively) all-zero vector cannot be rescaled; its mass is
//     redistributed uniformly (1/n per entry) so the unit-sum invariant
//     holds for every produced row. This only arises for samples orthogonal
//     to every centroid after clamping.
//
// Complexity: O(n).
func NormalizeToOne(v []float64) {
	sum := floats.Sum(v)
	if sum <= normalizeEps {
		uniform := 1.0 / float64(len(v))
		for i := range v {
			v[i] = uniform
		}

		return
	}
	inv := 1.0 / sum
	for i := range v {
		v[i] *= inv
	}
}

// CrossProduct returns RᵀR for a features × cellTypes reference matrix.
// The result is the quadratic term of the constrained projection's
// per-sample program. Complexity: O(f*k²), Space O(k²).
func CrossProduct(r mat.Matrix) *mat.Dense {
	_, k := r.Dims()
	out := mat.NewDense(k, k, nil)
	out.Mul(r.T(), r)

	return out
}

// CrossProductVec returns Rᵀy for a features × cellTypes reference and a
// sample vector y of length features. This is (up to sign and scale) the
// linear term of the per-sample program.
//
// Errors:
//   - ErrDimensionMismatch — len(y) differs from the reference row count.
//
// Complexity: O(f*k), Space O(k).
func CrossProductVec(r mat.Matrix, y []float64) ([]float64, error) {
	f, k := r.Dims()
	if len(y) != f {
		return nil, validatorErrorf("CrossProductVec", ErrDimensionMismatch)
	}
	out := make([]float64, k)
	for j := 0; j < k; j++ {
		var acc float64
		for i := 0; i < f; i++ {
			acc += r.At(i, j) * y[i]
		}
		out[j] = acc
	}

	return out, nil
}
