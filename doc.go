// Package celldecon is an in-memory toolkit for reference-based cell-type
// deconvolution of mixed biological profiles (e.g. DNA methylation).
//
// 🚀 What is methkit/celldecon?
//
//	A small, deterministic library that estimates, for each sample in a
//	mixed measurement, the fractional contribution of each known
//	constituent cell type against one or more reference centroid matrices:
//		• RPC — robust partial correlations via iteratively reweighted
//		  least squares (Huber weights)
//		• CBS — a support-vector calibration ensemble over a set of nu
//		  candidates, scored by reconstruction fit
//		• CP  — constrained projection: per-sample quadratic programs
//		  under non-negativity and a unit-sum (or ≤ 1) budget
//		• Hierarchical composition — chain a coarse and a fine reference
//		  into one consistent fraction matrix
//
// ✨ Why choose methkit/celldecon?
//
//   - Deterministic – fixed loop orders, no hidden randomness; identical
//     inputs always produce identical fractions
//   - Fail-fast – configuration and data-model errors surface as sentinel
//     errors before any numeric work starts
//   - Parallel where it is free – per-sample fits are independent and run
//     on a bounded worker pool, gathered in input order
//
// Everything is organized under two subpackages:
//
//	mixture/ — labeled measurement/reference/fraction matrices, feature
//	           alignment by label, clamping and renormalization utilities
//	deconv/  — the three estimators and the hierarchical composer
//
// Loading matrices from files, bundled reference datasets, plotting and
// downstream statistics are intentionally out of scope; this library is the
// estimation core only.
package celldecon
