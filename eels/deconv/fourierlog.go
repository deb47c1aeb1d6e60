package deconv

import (
	"errors"
	"fmt"
	"math/cmplx"

	algofft "github.com/MeKo-Christian/algo-fft"
)

// Deconvolution errors.
var (
	ErrEmptyInput         = errors.New("deconv: input must not be empty")
	ErrLengthMismatch     = errors.New("deconv: spectrum and zero-loss peak must have same length")
	ErrNonPositiveElastic = errors.New("deconv: zero-loss peak must have positive total intensity")
)

// Options configures Fourier-log deconvolution.
type Options struct {
	// Epsilon regularizes the spectral division, keeping near-zero
	// zero-loss bins from blowing up the ratio. Typical values: 1e-10 to
	// 1e-6 depending on SNR.
	Epsilon float64
}

// DefaultOptions returns the regularization used for typical acquisitions.
func DefaultOptions() Options {
	return Options{Epsilon: 1e-8}
}

// FourierLog recovers the single-scattering distribution from a measured
// spectrum and its zero-loss peak, both sampled on the same axis:
//
//	s = IFFT(I0 * Log(J * conj(Z) / (|Z|^2 + epsilon)))
//
// where J and Z are the transforms of spectrum and zlp and I0 is the
// total elastic intensity. Bins where the regularized ratio vanishes
// contribute nothing.
func FourierLog(spectrum, zlp []float64, opts Options) ([]float64, error) {
	if len(spectrum) == 0 {
		return nil, ErrEmptyInput
	}

	if len(spectrum) != len(zlp) {
		return nil, fmt.Errorf("%w: %d != %d", ErrLengthMismatch, len(spectrum), len(zlp))
	}

	if opts.Epsilon <= 0 {
		opts.Epsilon = DefaultOptions().Epsilon
	}

	total := 0.0
	for _, v := range zlp {
		total += v
	}

	if total <= 0 {
		return nil, fmt.Errorf("%w: got %g", ErrNonPositiveElastic, total)
	}

	n := len(spectrum)
	fftSize := nextPowerOf2(n)

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return nil, fmt.Errorf("deconv: failed to create FFT plan: %w", err)
	}

	specPadded := make([]complex128, fftSize)
	zlpPadded := make([]complex128, fftSize)

	for i := range n {
		specPadded[i] = complex(spectrum[i], 0)
		zlpPadded[i] = complex(zlp[i], 0)
	}

	specFreq := make([]complex128, fftSize)
	zlpFreq := make([]complex128, fftSize)

	if err := plan.Forward(specFreq, specPadded); err != nil {
		return nil, err
	}

	if err := plan.Forward(zlpFreq, zlpPadded); err != nil {
		return nil, err
	}

	// Regularized ratio, then the log spectrum scaled by the elastic
	// intensity: s = I0 * Log(J * conj(Z) / (|Z|^2 + epsilon)).
	logFreq := make([]complex128, fftSize)

	for i := range logFreq {
		zConj := cmplx.Conj(zlpFreq[i])
		zMagSq := real(zlpFreq[i])*real(zlpFreq[i]) + imag(zlpFreq[i])*imag(zlpFreq[i])

		ratio := specFreq[i] * zConj / complex(zMagSq+opts.Epsilon, 0)
		if ratio == 0 {
			continue
		}

		logFreq[i] = complex(total, 0) * cmplx.Log(ratio)
	}

	resultTime := make([]complex128, fftSize)
	if err := plan.Inverse(resultTime, logFreq); err != nil {
		return nil, err
	}

	result := make([]float64, n)
	for i := range result {
		result[i] = real(resultTime[i])
	}

	return result, nil
}

// nextPowerOf2 returns the next power of 2 >= n.
func nextPowerOf2(n int) int {
	size := 1
	for size < n {
		size *= 2
	}

	return size
}
