// SPDX-License-Identifier: MIT
// Package mixture: sentinel error set.
// This file defines ONLY package-level sentinel errors used across the
// mixture package. Constructors and utilities MUST return these sentinels and
// tests MUST check them via errors.Is. No function panics on user-triggered
// error conditions; panics are reserved for programmer errors.

package mixture

import "errors"

// NOTE ON NAMING & PREFIXING
// --------------------------
// Every message is prefixed with "mixture: ..." for consistency and to allow
// easy grepping across logs. Do not %w wrap these sentinels when returning
// directly; if context is essential, wrap with fmt.Errorf("ctx: %w", ErrX) at
// the outer boundary — callers still match with errors.Is.

var (
	// ErrNilMatrix indicates that a nil Measurement/Reference/Fractions
	// (receiver or argument) was used.
	ErrNilMatrix = errors.New("mixture: nil matrix")

	// ErrBadShape is returned when a requested shape is invalid (zero rows
	// or columns) or the backing data length does not equal rows*cols.
	ErrBadShape = errors.New("mixture: invalid shape")

	// ErrLabelMismatch indicates that a label axis does not match the
	// corresponding matrix dimension.
	ErrLabelMismatch = errors.New("mixture: label count does not match dimension")

	// ErrDuplicateLabel indicates a repeated identifier on a label axis.
	// Feature labels must be unique for label-based alignment to be
	// well defined; cell-type and sample labels must be unique so output
	// columns are addressable by name.
	ErrDuplicateLabel = errors.New("mixture: duplicate label")

	// ErrNaNInf signals a NaN or ±Inf value where finite values are
	// required (all ingestion points).
	ErrNaNInf = errors.New("mixture: NaN or Inf encountered")

	// ErrNegativeValue signals a negative entry; measurements and
	// references are non-negative by contract (no missing values either —
	// encode absence by dropping the feature row, not by sentinels).
	ErrNegativeValue = errors.New("mixture: negative value encountered")

	// ErrNoSharedFeatures indicates zero feature-label overlap between a
	// measurement and a reference.
	ErrNoSharedFeatures = errors.New("mixture: no shared feature labels")

	// ErrDimensionMismatch indicates incompatible dimensions between
	// operands (e.g. a vector length not matching a matrix axis).
	ErrDimensionMismatch = errors.New("mixture: dimension mismatch")
)
