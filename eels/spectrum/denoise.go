package spectrum

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/spectralab/algo-eels/eels/factor"
)

// LLRConfig controls local low-rank denoising.
type LLRConfig struct {
	// WindowWidth is the energy width of one sliding window. Zero means
	// 0.02.
	WindowWidth float64

	// Components is the rank of the local model. Zero means 1. The
	// reconstruction always uses the first component only.
	Components int

	// Method selects the factorization backend. Defaults to PCA.
	Method factor.Method

	// Seed drives the NMF initialization; ignored by PCA.
	Seed int64
}

func normalizeLLRConfig(cfg LLRConfig) LLRConfig {
	if cfg.WindowWidth <= 0 {
		cfg.WindowWidth = 0.02
	}

	if cfg.Components <= 0 {
		cfg.Components = 1
	}

	return cfg
}

// DenoiseLLR suppresses noise by local low-rank reconstruction: stride-1
// sliding windows of absolute intensities are stacked into a matrix, a
// rank-limited decomposition is fitted across all windows, and each
// denoised sample is the center of its window reconstructed from the
// first component, plus a bias constant (the mean of the first numWindows
// raw samples). The domain shrinks by half a window on each side.
//
// The data must not contain the zero-loss peak: its magnitude dominates
// the low-rank model and biases every window. This is a caller contract,
// not a runtime check.
func (s *Spectrum) DenoiseLLR(cfg LLRConfig) error {
	cfg = normalizeLLRConfig(cfg)

	if len(s.x) < 2 {
		return fmt.Errorf("%w: need at least 2 samples", ErrTooFewSamples)
	}

	spacing := math.Abs(s.x[1] - s.x[0])

	size := int(math.Floor(cfg.WindowWidth / spacing))
	if size <= 0 {
		return fmt.Errorf("%w: width %g against spacing %g", ErrWindowTooNarrow, cfg.WindowWidth, spacing)
	}

	// Odd size gives each window a well-defined center sample.
	if size%2 == 0 {
		size++
	}

	numWindows := len(s.y) - size + 1
	if numWindows <= 0 {
		return fmt.Errorf("%w: window %d against %d samples", ErrWindowTooWide, size, len(s.y))
	}

	blocks := mat.NewDense(numWindows, size, nil)
	for i := 0; i < numWindows; i++ {
		for j := 0; j < size; j++ {
			blocks.Set(i, j, math.Abs(s.y[i+j]))
		}
	}

	res, err := factor.Decompose(blocks, factor.Config{
		Method:     cfg.Method,
		Components: cfg.Components,
		Seed:       cfg.Seed,
	})
	if err != nil {
		return fmt.Errorf("spectrum: denoise: %w", err)
	}

	// Bias constant: mean of the first numWindows raw samples, not a
	// per-sample local mean. Exact for constant signals, a small fixed
	// offset otherwise.
	bias := 0.0
	for _, v := range s.y[:numWindows] {
		bias += v
	}

	bias /= float64(numWindows)

	mid := size / 2
	out := make([]float64, numWindows)

	for i := range out {
		out[i] = res.Coefficients.At(i, 0)*res.Components.At(0, mid) + bias
	}

	s.x = append([]float64(nil), s.x[mid:numWindows+mid]...)
	s.y = out

	return nil
}
