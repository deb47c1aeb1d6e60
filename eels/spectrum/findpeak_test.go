package spectrum

import (
	"errors"
	"math"
	"testing"
)

// doubleGaussian samples two Gaussian peaks on a shared axis.
func doubleGaussian(lo, hi, step float64) (x, y []float64) {
	for v := lo; v <= hi+step/2; v += step {
		x = append(x, v)

		d1 := (v - 1.0) / 0.1
		d2 := (v - 2.0) / 0.15
		y = append(y, 5*math.Exp(-d1*d1/2)+3*math.Exp(-d2*d2/2))
	}

	return x, y
}

func TestFindPeaksDoubleGaussian(t *testing.T) {
	x, y := doubleGaussian(0, 3, 0.005)
	s := mustNew(t, x, y, "")

	cfg := DefaultPeakConfig()
	cfg.Prominence = 0.02

	positions, heights, err := s.FindPeaks(0.2, 2.8, cfg)
	if err != nil {
		t.Fatalf("find peaks: %v", err)
	}

	if len(positions) != 2 {
		t.Fatalf("got %d peaks at %v, want 2", len(positions), positions)
	}

	if math.Abs(positions[0]-1.0) > 0.02 {
		t.Fatalf("first peak at %v want ~1.0", positions[0])
	}

	if math.Abs(positions[1]-2.0) > 0.02 {
		t.Fatalf("second peak at %v want ~2.0", positions[1])
	}

	if heights[0] <= heights[1] {
		t.Fatalf("peak heights %v not in expected order", heights)
	}
}

func TestFindPeaksSlicesReceiver(t *testing.T) {
	x, y := doubleGaussian(0, 3, 0.005)
	s := mustNew(t, x, y, "")

	if _, _, err := s.FindPeaks(0.2, 2.8, DefaultPeakConfig()); err != nil {
		t.Fatalf("find peaks: %v", err)
	}

	lo, hi := s.XRange()
	if lo < 0.2 || hi > 2.8 {
		t.Fatalf("receiver not sliced: range [%v, %v]", lo, hi)
	}
}

func TestFindPeaksNone(t *testing.T) {
	x := make([]float64, 300)
	y := make([]float64, 300)

	for i := range x {
		x[i] = float64(i) * 0.01
		y[i] = 1
	}

	s := mustNew(t, x, y, "")

	positions, heights, err := s.FindPeaks(0.2, 2.5, DefaultPeakConfig())
	if err != nil {
		t.Fatalf("find peaks: %v", err)
	}

	if len(positions) != 0 || len(heights) != 0 {
		t.Fatalf("flat signal yielded peaks at %v", positions)
	}
}

func TestFindPeaksZeroHeightFloor(t *testing.T) {
	// A curve that stays well below zero everywhere. Denoising works on
	// intensity magnitudes, so the dip at 1.5 becomes an interior
	// maximum of the denoised curve, still below zero. The NaN sentinel
	// floors at the curve minimum and finds it; an explicit floor of 0
	// excludes it.
	x := make([]float64, 601)
	y := make([]float64, 601)

	for i := range x {
		x[i] = float64(i) * 0.005

		d := (x[i] - 1.5) / 0.2
		y[i] = -10 - 2*math.Exp(-d*d/2)
	}

	cfg := DefaultPeakConfig()
	cfg.Height = math.NaN()

	s := mustNew(t, x, y, "")

	positions, _, err := s.FindPeaks(0.2, 2.8, cfg)
	if err != nil {
		t.Fatalf("find peaks: %v", err)
	}

	if len(positions) == 0 {
		t.Fatalf("sentinel floor found no peaks")
	}

	cfg.Height = 0

	s = mustNew(t, x, y, "")

	positions, _, err = s.FindPeaks(0.2, 2.8, cfg)
	if err != nil {
		t.Fatalf("find peaks: %v", err)
	}

	if len(positions) != 0 {
		t.Fatalf("zero floor admitted sub-zero peaks at %v", positions)
	}
}

func TestFindPeaksRangeOutsideDomain(t *testing.T) {
	x, y := doubleGaussian(0, 3, 0.005)
	s := mustNew(t, x, y, "")

	if _, _, err := s.FindPeaks(10, 20, DefaultPeakConfig()); !errors.Is(err, ErrEmptyRange) {
		t.Fatalf("got %v want ErrEmptyRange", err)
	}
}
