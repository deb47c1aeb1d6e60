package factor

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

// Decomposition errors.
var (
	ErrEmptyMatrix       = errors.New("factor: matrix must not be empty")
	ErrInvalidComponents = errors.New("factor: components must be in [1, min(rows, cols)]")
	ErrNegativeInput     = errors.New("factor: NMF input must be non-negative")
	ErrSVDFailed         = errors.New("factor: SVD failed to converge")
)

// Method selects the factorization strategy.
type Method int

const (
	// MethodPCA performs principal component analysis: columns are mean
	// centered and the centered matrix is factored by thin SVD.
	MethodPCA Method = iota

	// MethodNMF performs non-negative matrix factorization by
	// multiplicative updates under the Frobenius objective.
	MethodNMF
)

const (
	defaultComponents = 6
	defaultMaxIter    = 200
	defaultTolerance  = 1e-6

	// nmfEps keeps multiplicative-update denominators away from zero.
	nmfEps = 1e-12
)

// Config holds decomposition parameters.
type Config struct {
	Method     Method
	Components int

	// Seed drives the NMF random initialization. Equal seeds give
	// bit-identical results. Ignored by PCA.
	Seed int64

	// MaxIter bounds the NMF update loop. Ignored by PCA.
	MaxIter int

	// Tolerance stops NMF early when the relative improvement of the
	// reconstruction error drops below it. Ignored by PCA.
	Tolerance float64
}

// DefaultConfig returns the parameters used for spectral unmixing.
func DefaultConfig() Config {
	return Config{
		Method:     MethodNMF,
		Components: defaultComponents,
		MaxIter:    defaultMaxIter,
		Tolerance:  defaultTolerance,
	}
}

func normalizeConfig(cfg Config) Config {
	if cfg.Components <= 0 {
		cfg.Components = defaultComponents
	}

	if cfg.MaxIter <= 0 {
		cfg.MaxIter = defaultMaxIter
	}

	if cfg.Tolerance <= 0 {
		cfg.Tolerance = defaultTolerance
	}

	return cfg
}

// Result holds a decomposition A ~ W*H.
type Result struct {
	// Coefficients is the rows x components weight matrix W.
	Coefficients *mat.Dense

	// Components is the components x cols basis matrix H.
	Components *mat.Dense

	// Means holds the per-column means removed before a PCA fit; nil for
	// NMF. Coefficients*Components approximates the centered matrix, so a
	// full reconstruction must add Means back per column.
	Means []float64
}

// Decompose factors data according to cfg.
func Decompose(data mat.Matrix, cfg Config) (Result, error) {
	cfg = normalizeConfig(cfg)

	r, c := data.Dims()
	if r == 0 || c == 0 {
		return Result{}, ErrEmptyMatrix
	}

	limit := min(r, c)
	if cfg.Components > limit {
		return Result{}, fmt.Errorf("%w: got %d with %dx%d matrix", ErrInvalidComponents, cfg.Components, r, c)
	}

	switch cfg.Method {
	case MethodNMF:
		return decomposeNMF(data, cfg)
	default:
		return decomposePCA(data, cfg.Components)
	}
}

// Reconstruct returns W*H, with per-column means added back for PCA
// results.
func Reconstruct(res Result) *mat.Dense {
	var out mat.Dense
	out.Mul(res.Coefficients, res.Components)

	if res.Means != nil {
		r, c := out.Dims()
		for i := 0; i < r; i++ {
			for j := 0; j < c; j++ {
				out.Set(i, j, out.At(i, j)+res.Means[j])
			}
		}
	}

	return &out
}

// ReconstructionError returns the Frobenius norm of data - Reconstruct(res).
func ReconstructionError(data mat.Matrix, res Result) float64 {
	var diff mat.Dense
	diff.Sub(data, Reconstruct(res))

	return mat.Norm(&diff, 2)
}

func decomposePCA(data mat.Matrix, k int) (Result, error) {
	r, c := data.Dims()

	means := make([]float64, c)
	for j := 0; j < c; j++ {
		sum := 0.0
		for i := 0; i < r; i++ {
			sum += data.At(i, j)
		}

		means[j] = sum / float64(r)
	}

	centered := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			centered.Set(i, j, data.At(i, j)-means[j])
		}
	}

	var svd mat.SVD
	if !svd.Factorize(centered, mat.SVDThin) {
		return Result{}, ErrSVDFailed
	}

	var u, v mat.Dense
	svd.UTo(&u)
	svd.VTo(&v)
	sigma := svd.Values(nil)

	w := mat.NewDense(r, k, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < k; j++ {
			w.Set(i, j, u.At(i, j)*sigma[j])
		}
	}

	h := mat.NewDense(k, c, nil)
	for j := 0; j < k; j++ {
		for i := 0; i < c; i++ {
			h.Set(j, i, v.At(i, j))
		}
	}

	return Result{Coefficients: w, Components: h, Means: means}, nil
}

//nolint:cyclop
func decomposeNMF(data mat.Matrix, cfg Config) (Result, error) {
	r, c := data.Dims()
	k := cfg.Components

	total := 0.0

	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := data.At(i, j)
			if v < 0 {
				return Result{}, fmt.Errorf("%w: element (%d,%d) = %g", ErrNegativeInput, i, j, v)
			}

			total += v
		}
	}

	// Scaled |N(0,1)| init so W*H starts near the data magnitude.
	scale := math.Sqrt(total / float64(r*c) / float64(k))
	rng := rand.New(rand.NewSource(cfg.Seed))

	w := mat.NewDense(r, k, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < k; j++ {
			w.Set(i, j, scale*math.Abs(rng.NormFloat64()))
		}
	}

	h := mat.NewDense(k, c, nil)
	for i := 0; i < k; i++ {
		for j := 0; j < c; j++ {
			h.Set(i, j, scale*math.Abs(rng.NormFloat64()))
		}
	}

	res := Result{Coefficients: w, Components: h}
	prevErr := ReconstructionError(data, res)
	initErr := prevErr

	var wta, wtw, hDen, aht, hht, wDen mat.Dense

	for iter := 1; iter <= cfg.MaxIter; iter++ {
		// H <- H .* (Wt*A) ./ (Wt*W*H + eps)
		wta.Mul(w.T(), data)
		wtw.Mul(w.T(), w)
		hDen.Mul(&wtw, h)

		for i := 0; i < k; i++ {
			for j := 0; j < c; j++ {
				h.Set(i, j, h.At(i, j)*wta.At(i, j)/(hDen.At(i, j)+nmfEps))
			}
		}

		// W <- W .* (A*Ht) ./ (W*H*Ht + eps)
		aht.Mul(data, h.T())
		hht.Mul(h, h.T())
		wDen.Mul(w, &hht)

		for i := 0; i < r; i++ {
			for j := 0; j < k; j++ {
				w.Set(i, j, w.At(i, j)*aht.At(i, j)/(wDen.At(i, j)+nmfEps))
			}
		}

		if iter%10 != 0 {
			continue
		}

		err := ReconstructionError(data, res)
		if prevErr-err < cfg.Tolerance*initErr {
			break
		}

		prevErr = err
	}

	return res, nil
}
