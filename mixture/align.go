// SPDX-License-Identifier: MIT

package mixture

import "gonum.org/v1/gonum/mat"

// Align reduces a measurement and a reference to their shared feature
// labels. Intersection is by LABEL, never by position: a feature row of the
// measurement participates iff the reference carries a row with the same
// identifier, regardless of where it sits in either matrix.
//
// Implementation:
//   - Stage 1: validate both inputs non-nil.
//   - Stage 2: index reference features (label → row), walk measurement
//     features in their original order and collect the shared ones.
//   - Stage 3: materialize reduced copies of both matrices; inputs are
//     never mutated.
//
// Behavior highlights:
//   - Deterministic: shared features keep the measurement's row order, so
//     repeated calls produce identical reductions.
//   - Column axes (samples, cell types) pass through untouched.
//
// Errors:
//   - ErrNilMatrix        — nil measurement or reference.
//   - ErrNoSharedFeatures — empty label intersection.
//
// Complexity:
//   - Time O(fm + fr + shared*(samples+cellTypes)), Space for the copies.
func Align(m *Measurement, r *Reference) (*Measurement, *Reference, error) {
	if m == nil || r == nil {
		return nil, nil, validatorErrorf("Align", ErrNilMatrix)
	}

	// Index reference rows by feature label.
	refRow := make(map[string]int, len(r.features))
	for i, label := range r.features {
		refRow[label] = i
	}

	// Collect shared labels in measurement order.
	shared := make([]string, 0, len(m.features))
	mRows := make([]int, 0, len(m.features))
	rRows := make([]int, 0, len(m.features))
	for i, label := range m.features {
		if ri, ok := refRow[label]; ok {
			shared = append(shared, label)
			mRows = append(mRows, i)
			rRows = append(rRows, ri)
		}
	}
	if len(shared) == 0 {
		return nil, nil, validatorErrorf("Align", ErrNoSharedFeatures)
	}

	// Materialize the reduced measurement.
	nm := &Measurement{
		features: shared,
		samples:  copyLabels(m.samples),
		data:     selectRows(m.data, mRows),
	}
	// Materialize the reduced reference.
	nr := &Reference{
		features:  copyLabels(shared),
		cellTypes: copyLabels(r.cellTypes),
		data:      selectRows(r.data, rRows),
	}

	return nm, nr, nil
}

// selectRows copies the given rows of src (in the given order) into a fresh
// dense matrix. Fixed row-then-column order keeps the copy deterministic.
func selectRows(src *mat.Dense, rows []int) *mat.Dense {
	_, cols := src.Dims()
	dst := mat.NewDense(len(rows), cols, nil)
	for i, ri := range rows {
		for j := 0; j < cols; j++ {
			dst.Set(i, j, src.At(ri, j))
		}
	}

	return dst
}
