// SPDX-License-Identifier: MIT

// Package mixture defines the labeled data model shared by every estimator:
//
//   - Measurement — features (rows) × samples (columns), non-negative,
//     finite, with mandatory feature and sample labels.
//   - Reference   — features (rows) × cell types (columns), the centroid
//     profiles a mixed sample is decomposed against.
//   - Fractions   — samples (rows) × cell types (columns), the estimated
//     proportions produced by an estimator.
//
// Alignment between a measurement and a reference is always performed by
// feature LABEL, never by position: only the shared labels participate in an
// estimation, in the measurement's row order (deterministic).
//
// The package also hosts the small numeric utilities every estimator relies
// on: non-negativity clamping, unit-sum renormalization, and reference
// cross-products (RᵀR, Rᵀy) on gonum dense matrices.
//
// All matrices are immutable by convention once constructed; constructors
// copy their inputs and validate labels and values fail-fast with the
// package sentinel errors (match with errors.Is).
package mixture
