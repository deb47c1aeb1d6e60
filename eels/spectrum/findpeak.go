package spectrum

import (
	"math"

	"github.com/spectralab/algo-eels/eels/peak"
	"github.com/spectralab/algo-eels/eels/spline"
)

// PeakConfig tunes the two-pass peak search.
type PeakConfig struct {
	// Height is the absolute intensity floor. NaN selects the minimum of
	// the densely sampled curve; any finite value, including zero, is
	// used as given.
	Height float64

	// Distance is the minimum peak separation as a fraction of the dense
	// sample count. Zero means 1/100.
	Distance float64

	// Prominence is the minimum prominence as a fraction of the tallest
	// first-pass peak. Zero means 1/10000.
	Prominence float64

	// Samples is the dense grid size. Zero means spline.DefaultSamples.
	Samples int
}

// DefaultPeakConfig returns the documented defaults.
func DefaultPeakConfig() PeakConfig {
	return PeakConfig{
		Height:     math.NaN(),
		Distance:   1.0 / 100,
		Prominence: 1.0 / 10000,
		Samples:    spline.DefaultSamples,
	}
}

func normalizePeakConfig(cfg PeakConfig) PeakConfig {
	if cfg.Distance <= 0 {
		cfg.Distance = 1.0 / 100
	}

	if cfg.Prominence <= 0 {
		cfg.Prominence = 1.0 / 10000
	}

	if cfg.Samples <= 0 {
		cfg.Samples = spline.DefaultSamples
	}

	return cfg
}

// FindPeaks locates peaks inside [lo, hi]: the spectrum is sliced to the
// range (and stays sliced), a denoised copy is splined and densely
// sampled, and a two-pass detection runs on the samples. Pass 1 collects
// the candidate population with minimal constraints; pass 2 applies the
// configured height, distance, and prominence thresholds, the latter
// scaled by the tallest pass-1 peak.
//
// The range must exclude the zero-loss peak (see DenoiseLLR).
func (s *Spectrum) FindPeaks(lo, hi float64, cfg PeakConfig) (positions, heights []float64, err error) {
	cfg = normalizePeakConfig(cfg)

	if err := s.Slice(lo, hi); err != nil {
		return nil, nil, err
	}

	den := s.Clone()
	if err := den.DenoiseLLR(LLRConfig{}); err != nil {
		return nil, nil, err
	}

	est, err := den.estimator()
	if err != nil {
		return nil, nil, err
	}

	if lo > hi {
		lo, hi = hi, lo
	}

	grid := spline.Linspace(lo, hi, cfg.Samples)

	sampled := make([]float64, len(grid))
	minY := math.Inf(1)

	for i, g := range grid {
		sampled[i] = est.At(g)
		if sampled[i] < minY {
			minY = sampled[i]
		}
	}

	first := peak.Find(sampled, peak.Options{
		Height:   minY,
		Distance: len(grid) / 100,
	})

	if len(first.Indices) == 0 {
		return nil, nil, nil
	}

	floor := cfg.Height
	if math.IsNaN(floor) {
		floor = minY
	}

	tallest := first.Heights[0]
	for _, h := range first.Heights[1:] {
		if h > tallest {
			tallest = h
		}
	}

	final := peak.Find(sampled, peak.Options{
		Height:     floor,
		Distance:   int(float64(len(grid)) * cfg.Distance),
		Prominence: tallest * cfg.Prominence,
	})

	positions = make([]float64, len(final.Indices))
	for i, idx := range final.Indices {
		positions[i] = grid[idx]
	}

	return positions, final.Heights, nil
}
