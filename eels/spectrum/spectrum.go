package spectrum

import (
	"fmt"
	"sort"

	"github.com/cwbudde/algo-vecmath"

	"github.com/spectralab/algo-eels/eels/spline"
)

// Curve is a plain (x, y) pair handed to the presentation layer.
type Curve struct {
	X []float64
	Y []float64
}

// Spectrum is one intensity-vs-energy curve. The zero value is empty;
// use New.
type Spectrum struct {
	x         []float64
	y         []float64
	label     string
	zlpHeight float64
}

// New builds a spectrum from raw samples. x must be strictly increasing
// and match y in length; both slices are copied.
func New(x, y []float64, label string) (Spectrum, error) {
	if len(x) != len(y) {
		return Spectrum{}, fmt.Errorf("%w: %d != %d", ErrLengthMismatch, len(x), len(y))
	}

	for i := 1; i < len(x); i++ {
		if x[i] <= x[i-1] {
			return Spectrum{}, fmt.Errorf("%w: at index %d", ErrNotIncreasing, i)
		}
	}

	return Spectrum{
		x:     append([]float64(nil), x...),
		y:     append([]float64(nil), y...),
		label: label,
	}, nil
}

// Clone returns an independent deep copy.
func (s *Spectrum) Clone() Spectrum {
	return Spectrum{
		x:         append([]float64(nil), s.x...),
		y:         append([]float64(nil), s.y...),
		label:     s.label,
		zlpHeight: s.zlpHeight,
	}
}

// Equal reports value equality of samples and label. The cached zero-loss
// height does not participate.
func (s *Spectrum) Equal(o *Spectrum) bool {
	if s.label != o.label || len(s.x) != len(o.x) {
		return false
	}

	for i := range s.x {
		if s.x[i] != o.x[i] || s.y[i] != o.y[i] {
			return false
		}
	}

	return true
}

// Len returns the sample count.
func (s *Spectrum) Len() int { return len(s.x) }

// X returns the energy axis. The slice is a view; treat it as read-only.
func (s *Spectrum) X() []float64 { return s.x }

// Y returns the intensities. The slice is a view; treat it as read-only.
func (s *Spectrum) Y() []float64 { return s.y }

// Label returns the display label.
func (s *Spectrum) Label() string { return s.label }

// SetLabel replaces the display label.
func (s *Spectrum) SetLabel(label string) { s.label = label }

// ZLPHeight returns the interpolated zero-loss peak height, or 0 before
// the first FindZLPMax/Align call.
func (s *Spectrum) ZLPHeight() float64 { return s.zlpHeight }

// XRange returns the first and last energy positions.
func (s *Spectrum) XRange() (lo, hi float64) {
	if len(s.x) == 0 {
		return 0, 0
	}

	return s.x[0], s.x[len(s.x)-1]
}

// Curve returns the spectrum as a plain curve for rendering. The slices
// are views; treat them as read-only.
func (s *Spectrum) Curve() Curve {
	return Curve{X: s.x, Y: s.y}
}

// Slice restricts the spectrum in place to samples with lo <= x <= hi
// (bounds in either order). It fails with ErrEmptyRange when no samples
// fall inside, leaving the spectrum unchanged.
func (s *Spectrum) Slice(lo, hi float64) error {
	if lo > hi {
		lo, hi = hi, lo
	}

	if len(s.x) == 0 {
		return fmt.Errorf("%w: spectrum is empty", ErrEmptyRange)
	}

	i0 := sort.SearchFloat64s(s.x, lo)
	i1 := sort.SearchFloat64s(s.x, hi)

	// SearchFloat64s returns the first index >= hi; include an exact hit.
	if i1 < len(s.x) && s.x[i1] == hi {
		i1++
	}

	if i0 >= i1 {
		return fmt.Errorf("%w: [%g, %g] against domain [%g, %g]", ErrEmptyRange, lo, hi, s.x[0], s.x[len(s.x)-1])
	}

	s.x = append([]float64(nil), s.x[i0:i1]...)
	s.y = append([]float64(nil), s.y[i0:i1]...)

	return nil
}

// ShiftY offsets every intensity by dy. Display helper; the energy axis
// is untouched.
func (s *Spectrum) ShiftY(dy float64) {
	for i := range s.y {
		s.y[i] += dy
	}
}

// ScaleY multiplies every intensity by f.
func (s *Spectrum) ScaleY(f float64) {
	if len(s.y) == 0 {
		return
	}

	vecmath.ScaleBlock(s.y, s.y, f)
}

// Integrate computes the definite integral of the spline interpolant over
// [min(lo,hi), max(lo,hi)].
func (s *Spectrum) Integrate(lo, hi float64) (float64, error) {
	est, err := s.estimator()
	if err != nil {
		return 0, err
	}

	return est.Integrate(lo, hi), nil
}

// estimator fits the sub-sample interpolant to the current data.
func (s *Spectrum) estimator() (*spline.Estimator, error) {
	est, err := spline.New(s.x, s.y)
	if err != nil {
		return nil, fmt.Errorf("spectrum %q: %w", s.label, err)
	}

	return est, nil
}

// rawMax returns the largest raw intensity.
func (s *Spectrum) rawMax() float64 {
	m := s.y[0]
	for _, v := range s.y[1:] {
		if v > m {
			m = v
		}
	}

	return m
}
