package mixture_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/methkit/celldecon/mixture"
)

// TestAlign_ByLabelNotPosition verifies intersection is driven purely by
// feature identifiers: the reference stores its rows in a different order
// and with an extra feature, yet the reduced pair lines up row for row.
func TestAlign_ByLabelNotPosition(t *testing.T) {
	m, err := mixture.NewMeasurement(
		[]string{"cg1", "cg2", "cg3"},
		[]string{"s1"},
		[]float64{0.1, 0.2, 0.3})
	require.NoError(t, err)

	// Reference rows deliberately shuffled: cg3 first, cg1 last, plus a
	// cg9 row the measurement does not carry.
	r, err := mixture.NewReference(
		[]string{"cg3", "cg9", "cg1"},
		[]string{"T"},
		[]float64{0.33, 0.99, 0.11})
	require.NoError(t, err)

	am, ar, err := mixture.Align(m, r)
	require.NoError(t, err)

	// Shared labels in measurement order: cg1 then cg3.
	assert.Equal(t, []string{"cg1", "cg3"}, am.Features())
	assert.Equal(t, []string{"cg1", "cg3"}, ar.Features())
	assert.Equal(t, []float64{0.1, 0.3}, am.SampleVector(0))
	assert.Equal(t, 0.11, ar.Matrix().At(0, 0), "cg1 row of the reference")
	assert.Equal(t, 0.33, ar.Matrix().At(1, 0), "cg3 row of the reference")
}

// TestAlign_NoOverlap verifies the empty-intersection sentinel.
func TestAlign_NoOverlap(t *testing.T) {
	m, err := mixture.NewMeasurement([]string{"cg1"}, []string{"s1"}, []float64{0.5})
	require.NoError(t, err)
	r, err := mixture.NewReference([]string{"cg2"}, []string{"T"}, []float64{0.5})
	require.NoError(t, err)

	_, _, err = mixture.Align(m, r)
	assert.ErrorIs(t, err, mixture.ErrNoSharedFeatures)
}

// TestAlign_NilInputs verifies the nil guard.
func TestAlign_NilInputs(t *testing.T) {
	m, err := mixture.NewMeasurement([]string{"cg1"}, []string{"s1"}, []float64{0.5})
	require.NoError(t, err)

	_, _, err2 := mixture.Align(nil, nil)
	assert.ErrorIs(t, err2, mixture.ErrNilMatrix)
	_, _, err2 = mixture.Align(m, nil)
	assert.ErrorIs(t, err2, mixture.ErrNilMatrix)
}

// TestAlign_DoesNotMutateInputs confirms the originals keep their full
// feature axes after a reducing alignment.
func TestAlign_DoesNotMutateInputs(t *testing.T) {
	m, err := mixture.NewMeasurement(
		[]string{"cg1", "cg2"}, []string{"s1"}, []float64{0.1, 0.2})
	require.NoError(t, err)
	r, err := mixture.NewReference(
		[]string{"cg2"}, []string{"T"}, []float64{0.9})
	require.NoError(t, err)

	_, _, err = mixture.Align(m, r)
	require.NoError(t, err)

	assert.Equal(t, []string{"cg1", "cg2"}, m.Features())
	assert.Equal(t, []string{"cg2"}, r.Features())
}
