package deconv_test

// Shared fixtures for the estimator tests. The small two-type reference is a
// methylation-flavored 6×2 design whose columns average to 0.5 everywhere;
// the wide variant generates 20 features for the robustness scenarios.

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/methkit/celldecon/mixture"
)

var (
	sixFeatures = []string{"cg1", "cg2", "cg3", "cg4", "cg5", "cg6"}
	colT        = []float64{0.9, 0.1, 0.8, 0.2, 0.7, 0.3}
	colB        = []float64{0.1, 0.9, 0.2, 0.8, 0.3, 0.7}
)

// twoTypeReference builds the canonical 6-feature T/B reference.
func twoTypeReference(t *testing.T) *mixture.Reference {
	t.Helper()
	data := make([]float64, 0, 12)
	for i := range sixFeatures {
		data = append(data, colT[i], colB[i])
	}
	r, err := mixture.NewReference(sixFeatures, []string{"T", "B"}, data)
	require.NoError(t, err)

	return r
}

// wideTwoTypeReference builds a 20-feature T/B reference with complementary
// linear profiles (columns sum to 1 per feature, so simplex mixtures stay in
// the unit interval).
func wideTwoTypeReference(t *testing.T) (*mixture.Reference, []string, [][]float64) {
	t.Helper()
	const n = 20
	features := make([]string, n)
	tc := make([]float64, n)
	bc := make([]float64, n)
	data := make([]float64, 0, 2*n)
	for i := 0; i < n; i++ {
		features[i] = "cg" + string(rune('a'+i))
		tc[i] = float64(i+1) / float64(n+1)
		bc[i] = float64(n-i) / float64(n+1)
		data = append(data, tc[i], bc[i])
	}
	r, err := mixture.NewReference(features, []string{"T", "B"}, data)
	require.NoError(t, err)

	return r, features, [][]float64{tc, bc}
}

// combine returns Σ weights[c]·cols[c] elementwise.
func combine(weights []float64, cols ...[]float64) []float64 {
	out := make([]float64, len(cols[0]))
	for c, w := range weights {
		for i, v := range cols[c] {
			out[i] += w * v
		}
	}

	return out
}

// measurementOf assembles per-sample feature vectors into a Measurement.
func measurementOf(t *testing.T, features []string, vectors ...[]float64) *mixture.Measurement {
	t.Helper()
	names := make([]string, len(vectors))
	data := make([]float64, len(features)*len(vectors))
	for j, v := range vectors {
		names[j] = "s" + string(rune('1'+j))
		for i, x := range v {
			data[i*len(vectors)+j] = x
		}
	}
	m, err := mixture.NewMeasurement(features, names, data)
	require.NoError(t, err)

	return m
}

// disjointReference is a reference sharing no feature labels with the
// canonical fixtures, for the incompatibility scenarios.
func disjointReference(t *testing.T) *mixture.Reference {
	t.Helper()
	r, err := mixture.NewReference(
		[]string{"xx1", "xx2"}, []string{"T", "B"},
		[]float64{0.9, 0.1, 0.1, 0.9})
	require.NoError(t, err)

	return r
}
