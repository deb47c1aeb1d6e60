package factor

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// rankTwoMatrix builds a strictly non-negative 8x12 matrix as the sum of
// two rank-1 terms plus a small deterministic ripple.
func rankTwoMatrix() *mat.Dense {
	rng := rand.New(rand.NewSource(7))
	a := mat.NewDense(8, 12, nil)

	u1 := make([]float64, 8)
	u2 := make([]float64, 8)
	v1 := make([]float64, 12)
	v2 := make([]float64, 12)

	for i := range u1 {
		u1[i] = 1 + rng.Float64()
		u2[i] = rng.Float64()
	}

	for j := range v1 {
		v1[j] = 1 + rng.Float64()
		v2[j] = rng.Float64()
	}

	for i := 0; i < 8; i++ {
		for j := 0; j < 12; j++ {
			a.Set(i, j, u1[i]*v1[j]+u2[i]*v2[j]+0.01*rng.Float64())
		}
	}

	return a
}

func TestDecomposeValidation(t *testing.T) {
	a := rankTwoMatrix()

	if _, err := Decompose(a, Config{Components: 9}); !errors.Is(err, ErrInvalidComponents) {
		t.Fatalf("oversized components: got %v", err)
	}

	neg := mat.NewDense(2, 3, []float64{1, 2, 3, 4, -5, 6})
	if _, err := Decompose(neg, Config{Method: MethodNMF, Components: 1}); !errors.Is(err, ErrNegativeInput) {
		t.Fatalf("negative NMF input: got %v", err)
	}

	if _, err := Decompose(&mat.Dense{}, Config{Components: 1}); !errors.Is(err, ErrEmptyMatrix) {
		t.Fatalf("empty matrix: got %v", err)
	}
}

func TestPCADimensionsAndCentering(t *testing.T) {
	a := rankTwoMatrix()

	res, err := Decompose(a, Config{Method: MethodPCA, Components: 3})
	if err != nil {
		t.Fatalf("decompose: %v", err)
	}

	if r, c := res.Coefficients.Dims(); r != 8 || c != 3 {
		t.Fatalf("W dims got %dx%d want 8x3", r, c)
	}

	if r, c := res.Components.Dims(); r != 3 || c != 12 {
		t.Fatalf("H dims got %dx%d want 3x12", r, c)
	}

	if len(res.Means) != 12 {
		t.Fatalf("means len got %d want 12", len(res.Means))
	}
}

func TestPCAReconstructsLowRankData(t *testing.T) {
	a := rankTwoMatrix()

	// Rank <= 3 after centering, so 3 components reconstruct to
	// numerical noise (the ripple term is full rank, hence the slack).
	res, err := Decompose(a, Config{Method: MethodPCA, Components: 3})
	if err != nil {
		t.Fatalf("decompose: %v", err)
	}

	if got := ReconstructionError(a, res); got > 0.1 {
		t.Fatalf("reconstruction error got %v want < 0.1", got)
	}
}

func TestPCAErrorNonIncreasing(t *testing.T) {
	a := rankTwoMatrix()

	prev := math.Inf(1)

	for k := 1; k <= 5; k++ {
		res, err := Decompose(a, Config{Method: MethodPCA, Components: k})
		if err != nil {
			t.Fatalf("k=%d: %v", k, err)
		}

		got := ReconstructionError(a, res)
		if got > prev+1e-9 {
			t.Fatalf("k=%d: error %v exceeds previous %v", k, got, prev)
		}

		prev = got
	}
}

func TestNMFDeterministicForSeed(t *testing.T) {
	a := rankTwoMatrix()
	cfg := Config{Method: MethodNMF, Components: 2, Seed: 42, MaxIter: 50}

	first, err := Decompose(a, cfg)
	if err != nil {
		t.Fatalf("decompose: %v", err)
	}

	second, err := Decompose(a, cfg)
	if err != nil {
		t.Fatalf("decompose: %v", err)
	}

	if !mat.Equal(first.Coefficients, second.Coefficients) {
		t.Fatal("coefficients differ between identical runs")
	}

	if !mat.Equal(first.Components, second.Components) {
		t.Fatal("components differ between identical runs")
	}
}

func TestNMFOutputNonNegative(t *testing.T) {
	a := rankTwoMatrix()

	res, err := Decompose(a, Config{Method: MethodNMF, Components: 2, Seed: 1})
	if err != nil {
		t.Fatalf("decompose: %v", err)
	}

	check := func(name string, m *mat.Dense) {
		r, c := m.Dims()
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				if m.At(i, j) < 0 {
					t.Fatalf("%s(%d,%d) = %v is negative", name, i, j, m.At(i, j))
				}
			}
		}
	}

	check("W", res.Coefficients)
	check("H", res.Components)
}

func TestNMFErrorNonIncreasingInComponents(t *testing.T) {
	a := rankTwoMatrix()

	prev := math.Inf(1)

	for k := 1; k <= 3; k++ {
		res, err := Decompose(a, Config{Method: MethodNMF, Components: k, Seed: 3, MaxIter: 500})
		if err != nil {
			t.Fatalf("k=%d: %v", k, err)
		}

		got := ReconstructionError(a, res)

		// Multiplicative updates converge to local minima; allow a small
		// slack on top of strict monotonicity.
		if got > prev*1.05+1e-9 {
			t.Fatalf("k=%d: error %v exceeds previous %v", k, got, prev)
		}

		prev = got
	}
}

func TestNMFApproximatesRankTwoData(t *testing.T) {
	a := rankTwoMatrix()

	res, err := Decompose(a, Config{Method: MethodNMF, Components: 2, Seed: 5, MaxIter: 500})
	if err != nil {
		t.Fatalf("decompose: %v", err)
	}

	norm := mat.Norm(a, 2)
	if rel := ReconstructionError(a, res) / norm; rel > 0.05 {
		t.Fatalf("relative error got %v want < 0.05", rel)
	}
}
