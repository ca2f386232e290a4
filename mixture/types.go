// SPDX-License-Identifier: MIT
// Package mixture: labeled matrix types.
//
// Measurement, Reference and Fractions are thin labeled wrappers around a
// row-major gonum *mat.Dense. Constructors copy their inputs; accessors hand
// out copies or read-only views, so values are immutable by convention after
// construction and safe to share across goroutines.

package mixture

import "gonum.org/v1/gonum/mat"

// Measurement holds a features × samples matrix of non-negative, finite
// values. Feature identifiers label rows; sample identifiers label columns.
// Labels are mandatory metadata, not positional hints: estimators align a
// measurement to a reference by feature label only.
type Measurement struct {
	features []string
	samples  []string
	data     *mat.Dense // features × samples, row-major
}

// NewMeasurement builds a Measurement from row-major data.
// Implementation:
//   - Stage 1: validate shape, label axes (count + uniqueness) and values
//     (finite, ≥ 0) via the central validators.
//   - Stage 2: copy labels and data into fresh backing storage.
//
// Inputs:
//   - features: row labels, one per feature, unique.
//   - samples:  column labels, one per sample, unique.
//   - data:     row-major values, len == len(features)*len(samples).
//
// Errors:
//   - ErrBadShape, ErrLabelMismatch, ErrDuplicateLabel, ErrNaNInf,
//     ErrNegativeValue.
//
// Complexity:
//   - Time O(r*c), Space O(r*c) for the copy.
func NewMeasurement(features, samples []string, data []float64) (*Measurement, error) {
	if err := validateShape(len(features), len(samples), data); err != nil {
		return nil, err
	}
	if err := validateLabels("NewMeasurement: features", features, len(features)); err != nil {
		return nil, err
	}
	if err := validateLabels("NewMeasurement: samples", samples, len(samples)); err != nil {
		return nil, err
	}
	if err := validateValues("NewMeasurement", data); err != nil {
		return nil, err
	}

	return &Measurement{
		features: copyLabels(features),
		samples:  copyLabels(samples),
		data:     mat.NewDense(len(features), len(samples), copyValues(data)),
	}, nil
}

// Features returns a copy of the feature labels (row axis).
func (m *Measurement) Features() []string { return copyLabels(m.features) }

// Samples returns a copy of the sample labels (column axis).
func (m *Measurement) Samples() []string { return copyLabels(m.samples) }

// NumFeatures reports the number of rows.
func (m *Measurement) NumFeatures() int { return len(m.features) }

// NumSamples reports the number of columns.
func (m *Measurement) NumSamples() int { return len(m.samples) }

// SampleVector returns a fresh copy of sample column j.
// Panics on an out-of-range index (programmer error, mirroring gonum).
func (m *Measurement) SampleVector(j int) []float64 {
	return mat.Col(nil, j, m.data)
}

// Matrix exposes the backing storage as a read-only mat.Matrix view.
// Callers must not type-assert and mutate; the view exists so estimators can
// feed gonum solvers without copying.
func (m *Measurement) Matrix() mat.Matrix { return m.data }

// Reference holds a features × cell-types matrix of centroid profiles, with
// the same value contract as Measurement (finite, ≥ 0) and the same
// label-based alignment semantics on the feature axis.
type Reference struct {
	features  []string
	cellTypes []string
	data      *mat.Dense // features × cellTypes, row-major
}

// NewReference builds a Reference from row-major data.
// Validation and complexity mirror NewMeasurement; the column axis carries
// cell-type names instead of sample identifiers.
func NewReference(features, cellTypes []string, data []float64) (*Reference, error) {
	if err := validateShape(len(features), len(cellTypes), data); err != nil {
		return nil, err
	}
	if err := validateLabels("NewReference: features", features, len(features)); err != nil {
		return nil, err
	}
	if err := validateLabels("NewReference: cellTypes", cellTypes, len(cellTypes)); err != nil {
		return nil, err
	}
	if err := validateValues("NewReference", data); err != nil {
		return nil, err
	}

	return &Reference{
		features:  copyLabels(features),
		cellTypes: copyLabels(cellTypes),
		data:      mat.NewDense(len(features), len(cellTypes), copyValues(data)),
	}, nil
}

// Features returns a copy of the feature labels (row axis).
func (r *Reference) Features() []string { return copyLabels(r.features) }

// CellTypes returns a copy of the cell-type labels (column axis).
func (r *Reference) CellTypes() []string { return copyLabels(r.cellTypes) }

// NumFeatures reports the number of rows.
func (r *Reference) NumFeatures() int { return len(r.features) }

// NumCellTypes reports the number of centroid columns.
func (r *Reference) NumCellTypes() int { return len(r.cellTypes) }

// Matrix exposes the backing storage as a read-only mat.Matrix view.
func (r *Reference) Matrix() mat.Matrix { return r.data }

// Fractions holds a samples × cell-types matrix of estimated proportions.
// Under unit-sum normalization every row sums to 1; under the constrained
// projection's inequality mode row sums may be ≤ 1. Entries are finite and,
// for every estimator in this module, lie in [0, 1].
type Fractions struct {
	samples   []string
	cellTypes []string
	data      *mat.Dense // samples × cellTypes, row-major
}

// NewFractions builds a Fractions matrix from row-major data.
// Values must be finite; range invariants ([0,1], row sums) are the
// producing estimator's contract and are deliberately not re-checked here.
//
// Errors:
//   - ErrBadShape, ErrLabelMismatch, ErrDuplicateLabel, ErrNaNInf.
func NewFractions(samples, cellTypes []string, data []float64) (*Fractions, error) {
	if err := validateShape(len(samples), len(cellTypes), data); err != nil {
		return nil, err
	}
	if err := validateLabels("NewFractions: samples", samples, len(samples)); err != nil {
		return nil, err
	}
	if err := validateLabels("NewFractions: cellTypes", cellTypes, len(cellTypes)); err != nil {
		return nil, err
	}
	if err := validateFractionValues("NewFractions", data); err != nil {
		return nil, err
	}

	return &Fractions{
		samples:   copyLabels(samples),
		cellTypes: copyLabels(cellTypes),
		data:      mat.NewDense(len(samples), len(cellTypes), copyValues(data)),
	}, nil
}

// Samples returns a copy of the sample labels (row axis).
func (f *Fractions) Samples() []string { return copyLabels(f.samples) }

// CellTypes returns a copy of the cell-type labels (column axis).
func (f *Fractions) CellTypes() []string { return copyLabels(f.cellTypes) }

// NumSamples reports the number of rows.
func (f *Fractions) NumSamples() int { return len(f.samples) }

// NumCellTypes reports the number of columns.
func (f *Fractions) NumCellTypes() int { return len(f.cellTypes) }

// At returns the fraction of cell type j in sample i.
// Panics on out-of-range indices (programmer error, mirroring gonum).
func (f *Fractions) At(i, j int) float64 { return f.data.At(i, j) }

// Row returns a fresh copy of sample row i.
func (f *Fractions) Row(i int) []float64 {
	return mat.Row(nil, i, f.data)
}

// RowSum returns the total estimated fraction mass of sample row i.
func (f *Fractions) RowSum(i int) float64 {
	var sum float64
	for j := 0; j < f.data.RawMatrix().Cols; j++ {
		sum += f.data.At(i, j)
	}

	return sum
}

// copyLabels returns a fresh copy of a label axis.
func copyLabels(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)

	return out
}

// copyValues returns a fresh copy of row-major backing data.
func copyValues(in []float64) []float64 {
	out := make([]float64, len(in))
	copy(out, in)

	return out
}
