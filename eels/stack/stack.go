package stack

import (
	"errors"
	"fmt"

	"github.com/spectralab/algo-eels/eels/spectrum"
)

// Stack errors.
var (
	ErrEmpty         = errors.New("stack: no spectra")
	ErrIndexRange    = errors.New("stack: index out of range")
	ErrNotAligned    = errors.New("stack: spectra not aligned")
	ErrShapeMismatch = errors.New("stack: spectra differ in sample count")
	ErrCountMismatch = errors.New("stack: substrate count must be 1 or match the stack")
	ErrNoOverlap     = errors.New("stack: aligned spectra share no energy range")
)

// Stack is an ordered collection of spectra processed together. All
// spectra are owned by the stack: constructors and Add take deep copies.
type Stack struct {
	elements []spectrum.Spectrum

	// heights holds the zero-loss peak height per element after Align;
	// nil until then.
	heights []float64

	// coeffs[k][i] weights component k in element i; components[k] is the
	// basis curve on the shared energy axis. Both nil until Factorize.
	coeffs     [][]float64
	components []spectrum.Curve
}

// New builds a stack over copies of the given spectra.
func New(elements ...spectrum.Spectrum) *Stack {
	st := &Stack{}
	for i := range elements {
		st.elements = append(st.elements, elements[i].Clone())
	}

	return st
}

// Len returns the number of spectra.
func (st *Stack) Len() int { return len(st.elements) }

// At returns the i-th spectrum. The pointer addresses the stack's own
// copy, so mutations through it are visible to later stack operations.
func (st *Stack) At(i int) (*spectrum.Spectrum, error) {
	if i < 0 || i >= len(st.elements) {
		return nil, fmt.Errorf("%w: %d of %d", ErrIndexRange, i, len(st.elements))
	}

	return &st.elements[i], nil
}

// Labels returns the element labels in order.
func (st *Stack) Labels() []string {
	out := make([]string, len(st.elements))
	for i := range st.elements {
		out[i] = st.elements[i].Label()
	}

	return out
}

// Add appends a copy of s. A spectrum equal in samples and label to an
// existing element is skipped, and false is returned.
func (st *Stack) Add(s spectrum.Spectrum) bool {
	for i := range st.elements {
		if st.elements[i].Equal(&s) {
			return false
		}
	}

	st.elements = append(st.elements, s.Clone())
	st.invalidate()

	return true
}

// Delete removes every element equal in samples and label to s and
// returns the number removed.
func (st *Stack) Delete(s *spectrum.Spectrum) int {
	kept := st.elements[:0]

	for i := range st.elements {
		if !st.elements[i].Equal(s) {
			kept = append(kept, st.elements[i])
		}
	}

	removed := len(st.elements) - len(kept)
	st.elements = kept

	if removed > 0 {
		st.invalidate()
	}

	return removed
}

// invalidate drops derived state after the element set or axes change.
func (st *Stack) invalidate() {
	st.heights = nil
	st.coeffs = nil
	st.components = nil
}

// Slice restricts every spectrum to [lo, hi].
func (st *Stack) Slice(lo, hi float64) error {
	if len(st.elements) == 0 {
		return ErrEmpty
	}

	for i := range st.elements {
		if err := st.elements[i].Slice(lo, hi); err != nil {
			return fmt.Errorf("stack: element %q: %w", st.elements[i].Label(), err)
		}
	}

	st.coeffs = nil
	st.components = nil

	return nil
}

// Align shifts each spectrum's zero-loss peak to x = 0 and trims all of
// them to the shared overlapping energy range, so the stack ends up on
// comparable axes. Peak heights are recorded for Normalize.
func (st *Stack) Align() error {
	if len(st.elements) == 0 {
		return ErrEmpty
	}

	heights := make([]float64, len(st.elements))

	for i := range st.elements {
		if err := st.elements[i].Align(); err != nil {
			return fmt.Errorf("stack: element %q: %w", st.elements[i].Label(), err)
		}

		heights[i] = st.elements[i].ZLPHeight()
	}

	lo, hi := st.elements[0].XRange()

	for i := range st.elements[1:] {
		elo, ehi := st.elements[i+1].XRange()
		if elo > lo {
			lo = elo
		}

		if ehi < hi {
			hi = ehi
		}
	}

	if lo >= hi {
		return ErrNoOverlap
	}

	for i := range st.elements {
		if err := st.elements[i].Slice(lo, hi); err != nil {
			return fmt.Errorf("stack: element %q: %w", st.elements[i].Label(), err)
		}
	}

	st.invalidate()
	st.heights = heights

	return nil
}

// Normalize scales each spectrum by the reciprocal of its zero-loss peak
// height. Align must have run first.
func (st *Stack) Normalize() error {
	if len(st.heights) != len(st.elements) || len(st.elements) == 0 {
		return ErrNotAligned
	}

	for i := range st.elements {
		if st.heights[i] == 0 {
			return fmt.Errorf("stack: element %q: %w", st.elements[i].Label(), spectrum.ErrZeroHeight)
		}

		st.elements[i].ScaleY(1 / st.heights[i])
		st.heights[i] = 1
	}

	return nil
}

// InitialProcess runs the standard acquisition pipeline: Align, then
// Normalize.
func (st *Stack) InitialProcess() error {
	if err := st.Align(); err != nil {
		return err
	}

	return st.Normalize()
}

// ScaleAll multiplies every spectrum, and any recorded peak heights, by
// f. Used for normalizing a whole collection against a shared reference
// instead of per-element peaks.
func (st *Stack) ScaleAll(f float64) {
	for i := range st.elements {
		st.elements[i].ScaleY(f)
	}

	for i := range st.heights {
		st.heights[i] *= f
	}
}

// Heights returns the recorded zero-loss peak heights, or nil before
// Align.
func (st *Stack) Heights() []float64 {
	return append([]float64(nil), st.heights...)
}

// Subtract removes substrate signal from every spectrum over [lo, hi].
// One substrate is broadcast to all elements; otherwise subs must match
// the stack one-to-one.
func (st *Stack) Subtract(subs []spectrum.Spectrum, lo, hi float64) error {
	if len(st.elements) == 0 {
		return ErrEmpty
	}

	if len(subs) != 1 && len(subs) != len(st.elements) {
		return fmt.Errorf("%w: got %d for %d spectra", ErrCountMismatch, len(subs), len(st.elements))
	}

	for i := range st.elements {
		sub := &subs[0]
		if len(subs) > 1 {
			sub = &subs[i]
		}

		if err := st.elements[i].SubtractSubstrate(sub, lo, hi); err != nil {
			return fmt.Errorf("stack: element %q: %w", st.elements[i].Label(), err)
		}
	}

	st.invalidate()

	return nil
}

// DenoiseLLR denoises every spectrum in place.
func (st *Stack) DenoiseLLR(cfg spectrum.LLRConfig) error {
	if len(st.elements) == 0 {
		return ErrEmpty
	}

	for i := range st.elements {
		if err := st.elements[i].DenoiseLLR(cfg); err != nil {
			return fmt.Errorf("stack: element %q: %w", st.elements[i].Label(), err)
		}
	}

	st.coeffs = nil
	st.components = nil

	return nil
}

// SliceIntegrate returns the integral of every spectrum over [lo, hi].
// Elements keep their full data; use Slice to restrict them.
func (st *Stack) SliceIntegrate(lo, hi float64) ([]float64, error) {
	if len(st.elements) == 0 {
		return nil, ErrEmpty
	}

	out := make([]float64, len(st.elements))

	for i := range st.elements {
		v, err := st.elements[i].Integrate(lo, hi)
		if err != nil {
			return nil, fmt.Errorf("stack: element %q: %w", st.elements[i].Label(), err)
		}

		out[i] = v
	}

	return out, nil
}

// FindPeaks runs the two-pass peak search on every spectrum over
// [lo, hi] and returns one curve per element: X holds peak positions, Y
// their heights. Elements stay sliced to the range.
func (st *Stack) FindPeaks(lo, hi float64, cfg spectrum.PeakConfig) ([]spectrum.Curve, error) {
	if len(st.elements) == 0 {
		return nil, ErrEmpty
	}

	out := make([]spectrum.Curve, len(st.elements))

	for i := range st.elements {
		positions, heights, err := st.elements[i].FindPeaks(lo, hi, cfg)
		if err != nil {
			return nil, fmt.Errorf("stack: element %q: %w", st.elements[i].Label(), err)
		}

		out[i] = spectrum.Curve{X: positions, Y: heights}
	}

	return out, nil
}

// Curves returns every spectrum as a plain curve for rendering.
func (st *Stack) Curves() []spectrum.Curve {
	out := make([]spectrum.Curve, len(st.elements))
	for i := range st.elements {
		out[i] = st.elements[i].Curve()
	}

	return out
}
