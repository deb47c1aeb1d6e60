package spectrum

import (
	"errors"
	"math"
	"testing"

	"github.com/spectralab/algo-eels/internal/testutil"
)

func mustNew(t *testing.T, x, y []float64, label string) Spectrum {
	t.Helper()

	s, err := New(x, y, label)
	if err != nil {
		t.Fatalf("new: %v", err)
	}

	return s
}

func TestNewValidation(t *testing.T) {
	if _, err := New([]float64{0, 1}, []float64{0}, ""); !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("length mismatch: got %v", err)
	}

	if _, err := New([]float64{0, 1, 1}, []float64{0, 1, 2}, ""); !errors.Is(err, ErrNotIncreasing) {
		t.Fatalf("duplicate x: got %v", err)
	}
}

func TestNewCopiesInput(t *testing.T) {
	x := []float64{0, 1, 2}
	y := []float64{5, 6, 7}

	s := mustNew(t, x, y, "a")

	x[0] = 99
	y[0] = 99

	if s.X()[0] != 0 || s.Y()[0] != 5 {
		t.Fatal("spectrum aliases caller slices")
	}
}

func TestSliceFullRangeRoundTrip(t *testing.T) {
	x := []float64{0, 0.5, 1, 1.5, 2}
	y := []float64{1, 2, 3, 4, 5}

	s := mustNew(t, x, y, "")
	if err := s.Slice(0, 2); err != nil {
		t.Fatalf("slice: %v", err)
	}

	if s.Len() != 5 {
		t.Fatalf("len got %d want 5", s.Len())
	}

	for i := range x {
		if s.X()[i] != x[i] || s.Y()[i] != y[i] {
			t.Fatalf("sample %d changed: got (%v, %v)", i, s.X()[i], s.Y()[i])
		}
	}
}

func TestSliceBounds(t *testing.T) {
	x := []float64{0, 1, 2, 3, 4}
	y := []float64{10, 11, 12, 13, 14}

	s := mustNew(t, x, y, "")
	if err := s.Slice(1, 3); err != nil {
		t.Fatalf("slice: %v", err)
	}

	if s.Len() != 3 || s.X()[0] != 1 || s.X()[2] != 3 {
		t.Fatalf("got x=%v", s.X())
	}

	// Reversed bounds behave identically.
	s2 := mustNew(t, x, y, "")
	if err := s2.Slice(3, 1); err != nil {
		t.Fatalf("reversed slice: %v", err)
	}

	if s2.Len() != 3 {
		t.Fatalf("reversed len got %d want 3", s2.Len())
	}
}

func TestSliceEmptyRange(t *testing.T) {
	s := mustNew(t, []float64{0, 1, 2}, []float64{5, 6, 7}, "")

	err := s.Slice(10, 20)
	if !errors.Is(err, ErrEmptyRange) {
		t.Fatalf("got %v want ErrEmptyRange", err)
	}

	// A failed slice leaves the data untouched.
	if s.Len() != 3 {
		t.Fatalf("len after failed slice got %d want 3", s.Len())
	}
}

func TestEqualAndClone(t *testing.T) {
	x := []float64{0, 1, 2}
	y := []float64{5, 6, 7}

	a := mustNew(t, x, y, "a")
	b := mustNew(t, x, y, "a")
	c := mustNew(t, x, y, "c")

	if !a.Equal(&b) {
		t.Fatal("identical spectra compare unequal")
	}

	if a.Equal(&c) {
		t.Fatal("different labels compare equal")
	}

	cl := a.Clone()
	cl.ShiftY(1)

	if a.Y()[0] != 5 {
		t.Fatal("clone shares backing array")
	}
}

func TestShiftAndScaleY(t *testing.T) {
	s := mustNew(t, []float64{0, 1, 2}, []float64{1, 2, 3}, "")

	s.ShiftY(10)
	if s.Y()[2] != 13 {
		t.Fatalf("shift got %v want 13", s.Y()[2])
	}

	s.ScaleY(0.5)
	if s.Y()[2] != 6.5 {
		t.Fatalf("scale got %v want 6.5", s.Y()[2])
	}
}

func TestHalfMaxSpan(t *testing.T) {
	// Triangle peaking at x=2 with height 8: half max 4 is exceeded
	// strictly between x=1 and x=3, i.e. at samples 1.5..2.5.
	x := []float64{0, 0.5, 1, 1.5, 2, 2.5, 3, 3.5, 4}
	y := []float64{0, 2, 4, 6, 8, 6, 4, 2, 0}

	s := mustNew(t, x, y, "")
	if got := s.HalfMaxSpan(); got != 1 {
		t.Fatalf("span got %v want 1", got)
	}
}

func TestFindZLPMaxGaussian(t *testing.T) {
	x, y := testutil.GaussianPeak(-2, 2, 0.01, 0.05, 0.3, 10)
	s := mustNew(t, x, y, "zlp")

	shift, height, err := s.FindZLPMax(ZLPConfig{})
	if err != nil {
		t.Fatalf("find: %v", err)
	}

	if math.Abs(shift-0.05) > 1e-3 {
		t.Fatalf("shift got %v want 0.05 +/- 1e-3", shift)
	}

	if math.Abs(height-10) > 0.01 {
		t.Fatalf("height got %v want ~10", height)
	}

	if s.ZLPHeight() != height {
		t.Fatalf("stored height %v != returned %v", s.ZLPHeight(), height)
	}
}

func TestAlignCentersGaussian(t *testing.T) {
	x, y := testutil.GaussianPeak(-2, 2, 0.01, 0.05, 0.3, 10)
	s := mustNew(t, x, y, "zlp")

	if err := s.Align(); err != nil {
		t.Fatalf("align: %v", err)
	}

	// The domain shrinks at the trailing edge by the applied shift.
	_, hi := s.XRange()
	if hi > 1.96 {
		t.Fatalf("domain not truncated: hi = %v", hi)
	}

	shift, _, err := s.FindZLPMax(ZLPConfig{})
	if err != nil {
		t.Fatalf("re-find: %v", err)
	}

	if math.Abs(shift) > 1e-3 {
		t.Fatalf("aligned peak at %v want 0 +/- 1e-3", shift)
	}
}

func TestAlignIdempotent(t *testing.T) {
	x, y := testutil.GaussianPeak(-2, 2, 0.01, 0.05, 0.3, 10)
	s := mustNew(t, x, y, "zlp")

	if err := s.Align(); err != nil {
		t.Fatalf("first align: %v", err)
	}

	if err := s.Align(); err != nil {
		t.Fatalf("second align: %v", err)
	}

	shift, _, err := s.FindZLPMax(ZLPConfig{})
	if err != nil {
		t.Fatalf("find: %v", err)
	}

	if math.Abs(shift) > 2e-3 {
		t.Fatalf("peak after double align at %v want ~0", shift)
	}
}

func TestSubtractSubstrateIdentical(t *testing.T) {
	x, y := testutil.GaussianPeak(-2, 2, 0.01, 0.05, 0.3, 10)

	s := mustNew(t, x, y, "Si")
	sub := mustNew(t, x, y, "substrate")

	if err := s.SubtractSubstrate(&sub, 0.5, 1.5); err != nil {
		t.Fatalf("subtract: %v", err)
	}

	// Identical curves cancel exactly on the shared grid.
	for i, v := range s.Y() {
		if math.Abs(v) > 1e-9 {
			t.Fatalf("sample %d: residual %v", i, v)
		}
	}

	if got := s.Label(); got != "Si Subtracted" {
		t.Fatalf("label got %q", got)
	}

	lo, hi := s.XRange()
	if lo != 0.5 || hi != 1.5 {
		t.Fatalf("range got [%v, %v] want [0.5, 1.5]", lo, hi)
	}
}

func TestSubtractSubstrateLeavesSubstrate(t *testing.T) {
	x, y := testutil.GaussianPeak(-2, 2, 0.01, 0.05, 0.3, 10)

	s := mustNew(t, x, y, "Si")
	sub := mustNew(t, x, y, "substrate")

	if err := s.SubtractSubstrate(&sub, 0.5, 1.5); err != nil {
		t.Fatalf("subtract: %v", err)
	}

	if sub.Len() != len(x) || sub.Y()[0] != y[0] {
		t.Fatal("substrate mutated")
	}

	if sub.ZLPHeight() != 0 {
		t.Fatalf("substrate peak height set to %v", sub.ZLPHeight())
	}
}

func TestSubtractSubstrateZeroHeight(t *testing.T) {
	x, y := testutil.GaussianPeak(-2, 2, 0.01, 0.05, 0.3, 10)

	s := mustNew(t, x, y, "Si")
	sub := mustNew(t, []float64{0, 1, 2, 3, 4}, []float64{0, 0, 0, 0, 0}, "flat")

	if err := s.SubtractSubstrate(&sub, 0.5, 1.5); !errors.Is(err, ErrZeroHeight) {
		t.Fatalf("got %v want ErrZeroHeight", err)
	}
}

func TestIntegrateLinear(t *testing.T) {
	x := []float64{0, 0.25, 0.5, 0.75, 1}
	y := []float64{0, 0.5, 1, 1.5, 2}

	s := mustNew(t, x, y, "")

	got, err := s.Integrate(0, 1)
	if err != nil {
		t.Fatalf("integrate: %v", err)
	}

	if math.Abs(got-1) > 1e-9 {
		t.Fatalf("integral got %v want 1", got)
	}
}
