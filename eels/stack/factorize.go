package stack

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/spectralab/algo-eels/eels/factor"
	"github.com/spectralab/algo-eels/eels/spectrum"
)

// Factorize unmixes the stack into cfg.Components spectral components.
// Each spectrum becomes one row of a non-negative intensity matrix
// (absolute values), which is decomposed per cfg. Per-component weights
// and basis curves are stored on the stack; all spectra must share one
// sample count, which Align guarantees.
func (st *Stack) Factorize(cfg factor.Config) error {
	if len(st.elements) == 0 {
		return ErrEmpty
	}

	cols := st.elements[0].Len()

	for i := range st.elements[1:] {
		if st.elements[i+1].Len() != cols {
			return fmt.Errorf("%w: %q has %d samples, %q has %d",
				ErrShapeMismatch,
				st.elements[0].Label(), cols,
				st.elements[i+1].Label(), st.elements[i+1].Len())
		}
	}

	data := mat.NewDense(len(st.elements), cols, nil)

	for i := range st.elements {
		for j, v := range st.elements[i].Y() {
			data.Set(i, j, math.Abs(v))
		}
	}

	res, err := factor.Decompose(data, cfg)
	if err != nil {
		return fmt.Errorf("stack: factorize: %w", err)
	}

	_, k := res.Coefficients.Dims()
	axis := append([]float64(nil), st.elements[0].X()...)

	st.coeffs = make([][]float64, k)
	st.components = make([]spectrum.Curve, k)

	for comp := 0; comp < k; comp++ {
		weights := make([]float64, len(st.elements))
		for i := range weights {
			weights[i] = res.Coefficients.At(i, comp)
		}

		st.coeffs[comp] = weights
		st.components[comp] = spectrum.Curve{
			X: axis,
			Y: res.Components.RawRowView(comp),
		}
	}

	return nil
}

// Coefficients returns the per-component weight vectors from the last
// Factorize, or nil before it. coeffs[k][i] weights component k in
// element i.
func (st *Stack) Coefficients() [][]float64 {
	return st.coeffs
}

// Components returns the basis curves from the last Factorize, or nil
// before it.
func (st *Stack) Components() []spectrum.Curve {
	return st.components
}
