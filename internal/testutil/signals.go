// Package testutil provides synthetic spectra and comparison helpers
// shared by the package tests.
package testutil

import (
	"math"
	"math/rand"
)

// GaussianPeak samples a Gaussian of the given center, width, and height
// over [lo, hi] with the given step. The last sample may overshoot hi by
// less than half a step.
func GaussianPeak(lo, hi, step, center, sigma, height float64) (x, y []float64) {
	for v := lo; v <= hi+step/2; v += step {
		x = append(x, v)

		d := (v - center) / sigma
		y = append(y, height*math.Exp(-d*d/2))
	}

	return x, y
}

// DC returns a constant-valued signal.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}

	return out
}

// DeterministicNoise returns seeded white noise in [-amplitude, amplitude].
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))

	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}

	return out
}
