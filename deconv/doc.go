// Package deconv implements reference-based cell-type deconvolution:
// three constrained estimators plus a hierarchical composer.
//
// The deconv package provides:
//
//   - EstimateRPC — robust partial correlations: per-sample iteratively
//     reweighted least squares with Huber down-weighting of outlier
//     features, then non-negativity clamping and unit-sum renormalization.
//   - EstimateCBS — a support-vector calibration ensemble: one linear SVR
//     fit per nu candidate, the winner chosen by reconstruction fit
//     (Pearson correlation of fitted vs observed), then clamp + renormalize.
//   - EstimateCP — constrained projection: a per-sample quadratic program
//     minimizing reconstruction error under fractions ≥ 0 and a sum ≤ 1
//     (inequality) or sum = 1 (equality) budget.
//   - Compose — runs one of the three estimators against a coarse and a
//     fine reference and merges the results, replacing the aggregate cell
//     type's column by the fine fractions rescaled by the aggregate's
//     estimated fraction.
//
// Every estimator aligns measurement and reference by feature label first
// (see mixture.Align), treats each sample independently, and returns a
// freshly allocated mixture.Fractions. Per-sample fits in CBS and CP run on
// a bounded worker pool and are gathered in input order; all results are
// deterministic for identical inputs.
//
// Errors are package sentinels (match with errors.Is): configuration
// problems surface before any numeric work starts, and a failure in either
// half of a composition aborts the whole call — no partial fraction matrix
// is ever returned.
package deconv
