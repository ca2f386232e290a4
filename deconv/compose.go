package deconv

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/methkit/celldecon/mixture"
)

// Compose — hierarchical composition of two deconvolutions.
//
// Description:
//
//	The chosen estimator runs twice, independently: once against the
//	coarse reference (ref1) and once against the fine sub-type reference
//	(ref2) whose columns subdivide the single aggregate cell type found at
//	ref1 column aggregateIndex. The two fraction matrices merge into one:
//
//	    columns = ref1 columns without the aggregate (original order)
//	            ++ ref2 columns, each scaled elementwise by the sample's
//	               aggregate fraction (original order)
//
//	Mass is redistributed, never created: when ref2's fractions are
//	unit-sum, every output row sums to exactly what ref1 alone would have
//	produced.
//
// Configuration is validated before any numeric work: an unrecognized
// method, an unrecognized constraint mode (CP only), unusable method
// parameters, or an out-of-range aggregate index fail fast with
// ErrInvalidConfiguration and no estimator is invoked. aggregateIndex is
// 0-based.
//
// The two estimator runs share no state and execute concurrently. There is
// no retry logic and no partial output: any estimator failure aborts the
// whole composition, annotated with the triggering reference
// ("reference1: ..." / "reference2: ...").
//
// The composer deliberately does NOT check that ref2's columns are disjoint
// from ref1's non-aggregate columns — callers own that semantic contract.
// Structurally, a name collision between the merged column axes surfaces as
// a label error from the data model.
func Compose(m *mixture.Measurement, ref1, ref2 *mixture.Reference, aggregateIndex int, method Method, opts Options) (*mixture.Fractions, error) {
	// Stage 1: configuration checks — nothing numeric may run before these.
	if err := validateMethod(method); err != nil {
		return nil, opErrorf("Compose", err)
	}
	switch method {
	case RPC:
		if err := validateIterations(opts.MaxIterations); err != nil {
			return nil, opErrorf("Compose", err)
		}
	case CBS:
		if err := validateNuCandidates(opts.NuCandidates); err != nil {
			return nil, opErrorf("Compose", err)
		}
	case CP:
		if err := validateConstraintMode(opts.ConstraintMode); err != nil {
			return nil, opErrorf("Compose", err)
		}
	}
	if m == nil || ref1 == nil || ref2 == nil {
		return nil, opErrorf("Compose", mixture.ErrNilMatrix)
	}
	if aggregateIndex < 0 || aggregateIndex >= ref1.NumCellTypes() {
		return nil, opErrorf("Compose",
			wrapConfigf("aggregate index %d outside [0,%d)", aggregateIndex, ref1.NumCellTypes()))
	}

	// Stage 2: the two independent estimations, concurrently.
	est := estimatorFor(method)
	var f1, f2 *mixture.Fractions
	var g errgroup.Group
	g.Go(func() error {
		var err error
		if f1, err = est(m, ref1, opts); err != nil {
			return fmt.Errorf("reference1: %w", err)
		}

		return nil
	})
	g.Go(func() error {
		var err error
		if f2, err = est(m, ref2, opts); err != nil {
			return fmt.Errorf("reference2: %w", err)
		}

		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, opErrorf("Compose", err)
	}

	// Stage 3: deterministic merge.
	k1, k2 := f1.NumCellTypes(), f2.NumCellTypes()
	outCols := k1 - 1 + k2
	labels := make([]string, 0, outCols)
	for c, name := range f1.CellTypes() {
		if c != aggregateIndex {
			labels = append(labels, name)
		}
	}
	labels = append(labels, f2.CellTypes()...)

	n := f1.NumSamples()
	data := make([]float64, n*outCols)
	for i := 0; i < n; i++ {
		col := 0
		for c := 0; c < k1; c++ {
			if c == aggregateIndex {
				continue
			}
			data[i*outCols+col] = f1.At(i, c)
			col++
		}
		p := f1.At(i, aggregateIndex) // the mass being subdivided
		for c := 0; c < k2; c++ {
			data[i*outCols+col] = p * f2.At(i, c)
			col++
		}
	}

	out, err := mixture.NewFractions(f1.Samples(), labels, data)
	if err != nil {
		return nil, opErrorf("Compose", err)
	}

	return out, nil
}
