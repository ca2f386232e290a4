package deconv_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/methkit/celldecon/deconv"
)

// TestEstimateCBS_RecoversExactMixture: on noiseless data every nu candidate
// converges near the truth, so the ensemble winner must too.
func TestEstimateCBS_RecoversExactMixture(t *testing.T) {
	ref := twoTypeReference(t)
	m := measurementOf(t, sixFeatures, combine([]float64{0.3, 0.7}, colT, colB))

	f, err := deconv.EstimateCBS(m, ref, deconv.DefaultOptions())
	require.NoError(t, err)

	assert.InDelta(t, 0.3, f.At(0, 0), 1e-3)
	assert.InDelta(t, 0.7, f.At(0, 1), 1e-3)
}

// TestEstimateCBS_UnitVectorOnCentroid: a pure-population sample stays a unit
// vector through the SVR ensemble.
func TestEstimateCBS_UnitVectorOnCentroid(t *testing.T) {
	ref := twoTypeReference(t)
	m := measurementOf(t, sixFeatures, colT)

	f, err := deconv.EstimateCBS(m, ref, deconv.DefaultOptions())
	require.NoError(t, err)

	assert.InDelta(t, 1, f.At(0, 0), 1e-3)
	assert.InDelta(t, 0, f.At(0, 1), 1e-3)
}

// TestEstimateCBS_RowsSumToOneInRange checks the output contract on a batch.
func TestEstimateCBS_RowsSumToOneInRange(t *testing.T) {
	ref := twoTypeReference(t)
	m := measurementOf(t, sixFeatures,
		combine([]float64{0.2, 0.8}, colT, colB),
		combine([]float64{0.5, 0.5}, colT, colB),
		combine([]float64{0.9, 0.1}, colT, colB))

	f, err := deconv.EstimateCBS(m, ref, deconv.DefaultOptions())
	require.NoError(t, err)

	for i := 0; i < f.NumSamples(); i++ {
		assert.InDelta(t, 1, f.RowSum(i), 1e-6, "row %d must sum to 1", i)
		for _, v := range f.Row(i) {
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 1.0+1e-9)
		}
	}
}

// TestEstimateCBS_DeterministicUnderParallelism: worker count changes
// scheduling only, never the result.
func TestEstimateCBS_DeterministicUnderParallelism(t *testing.T) {
	ref := twoTypeReference(t)
	m := measurementOf(t, sixFeatures,
		combine([]float64{0.3, 0.7}, colT, colB),
		combine([]float64{0.6, 0.4}, colT, colB),
		combine([]float64{0.8, 0.2}, colT, colB))

	serial := deconv.DefaultOptions()
	serial.Workers = 1
	parallel := deconv.DefaultOptions()
	parallel.Workers = 4

	f1, err := deconv.EstimateCBS(m, ref, serial)
	require.NoError(t, err)
	f2, err := deconv.EstimateCBS(m, ref, parallel)
	require.NoError(t, err)

	for i := 0; i < f1.NumSamples(); i++ {
		assert.Equal(t, f1.Row(i), f2.Row(i), "row %d", i)
	}
}

// TestEstimateCBS_ConstantSampleFails: a flat sample has no defined fit
// quality (zero variance kills the correlation score) for any candidate, and
// the estimator must say so rather than emit zeros.
func TestEstimateCBS_ConstantSampleFails(t *testing.T) {
	ref := twoTypeReference(t)
	m := measurementOf(t, sixFeatures, []float64{0.5, 0.5, 0.5, 0.5, 0.5, 0.5})

	_, err := deconv.EstimateCBS(m, ref, deconv.DefaultOptions())

	assert.ErrorIs(t, err, deconv.ErrEstimationFailed)
	assert.Contains(t, err.Error(), "s1", "the failing sample must be named")
}

// TestEstimateCBS_InvalidNuCandidates: empty lists and out-of-range values
// are configuration errors.
func TestEstimateCBS_InvalidNuCandidates(t *testing.T) {
	ref := twoTypeReference(t)
	m := measurementOf(t, sixFeatures, colT)

	opts := deconv.DefaultOptions()
	opts.NuCandidates = nil
	_, err := deconv.EstimateCBS(m, ref, opts)
	assert.ErrorIs(t, err, deconv.ErrInvalidConfiguration, "empty candidate list")

	opts.NuCandidates = []float64{0.5, 1.5}
	_, err = deconv.EstimateCBS(m, ref, opts)
	assert.ErrorIs(t, err, deconv.ErrInvalidConfiguration, "nu outside (0,1)")

	opts.NuCandidates = []float64{0}
	_, err = deconv.EstimateCBS(m, ref, opts)
	assert.ErrorIs(t, err, deconv.ErrInvalidConfiguration, "nu = 0 is not a valid trade-off")
}

// TestEstimateCBS_NoSharedFeatures mirrors the RPC incompatibility contract.
func TestEstimateCBS_NoSharedFeatures(t *testing.T) {
	m := measurementOf(t, sixFeatures, colT)

	_, err := deconv.EstimateCBS(m, disjointReference(t), deconv.DefaultOptions())

	assert.ErrorIs(t, err, deconv.ErrIncompatibleReference)
}
