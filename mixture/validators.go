// SPDX-License-Identifier: MIT
// Package mixture: canonical validation helpers.
//
// Purpose:
//   - Provide a single source of truth for the ingestion checks every
//     constructor performs: shape, label consistency, finite values,
//     non-negativity.
//   - Return plain sentinels (wrapped only with a validator tag) so call
//     sites can match via errors.Is.
//
// Determinism & Performance:
//   - All checks are pure, deterministic, and scan in fixed index order.
//   - Value scans are O(r*c); label scans are O(n) with one map allocation.

package mixture

import (
	"fmt"
	"math"
)

// validatorErrorf wraps an underlying sentinel with the given validator tag.
// Keeps a stable "tag: underlying" shape for uniform reporting.
func validatorErrorf(tag string, err error) error {
	return fmt.Errorf("%s: %w", tag, err)
}

// validateShape ensures rows > 0, cols > 0 and len(data) == rows*cols.
// Returns ErrBadShape on violation. Complexity: O(1).
func validateShape(rows, cols int, data []float64) error {
	if rows <= 0 || cols <= 0 {
		return validatorErrorf("validateShape", ErrBadShape)
	}
	if len(data) != rows*cols {
		return validatorErrorf("validateShape", ErrBadShape)
	}

	return nil
}

// validateLabels ensures the label axis matches dim and contains no
// duplicates. Empty strings count as labels; uniqueness is what alignment
// and column addressing require. Complexity: O(n) time, O(n) space.
func validateLabels(tag string, labels []string, dim int) error {
	if len(labels) != dim {
		return validatorErrorf(tag, ErrLabelMismatch)
	}
	seen := make(map[string]struct{}, len(labels))
	for _, l := range labels {
		if _, dup := seen[l]; dup {
			return validatorErrorf(tag, ErrDuplicateLabel)
		}
		seen[l] = struct{}{}
	}

	return nil
}

// validateValues ensures every entry is finite and ≥ 0.
// Returns ErrNaNInf or ErrNegativeValue on the first violation in fixed
// scan order (flat 0..n-1). Complexity: O(n).
func validateValues(tag string, data []float64) error {
	for _, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return validatorErrorf(tag, ErrNaNInf)
		}
		if v < 0 {
			return validatorErrorf(tag, ErrNegativeValue)
		}
	}

	return nil
}

// validateFractionValues ensures every entry is finite (fraction matrices
// are solver outputs; range checks beyond finiteness belong to the solver
// contracts, not ingestion). Complexity: O(n).
func validateFractionValues(tag string, data []float64) error {
	for _, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return validatorErrorf(tag, ErrNaNInf)
		}
	}

	return nil
}
