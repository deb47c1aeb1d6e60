package peak

import (
	"math"
	"sort"
)

// Options controls which candidate maxima are retained.
type Options struct {
	// Height is the minimum absolute peak value. NaN disables the filter.
	Height float64

	// Distance is the minimum sample separation between retained peaks.
	// When two peaks are closer, the lower one is dropped. Values below 2
	// disable the filter.
	Distance int

	// Prominence is the minimum peak prominence: the height of the peak
	// above the higher of the two valley minima separating it from the
	// nearest taller samples (or the signal boundary). Values that are
	// non-positive or NaN disable the filter.
	Prominence float64
}

// Result lists the retained peaks in ascending index order.
type Result struct {
	Indices     []int
	Heights     []float64
	Prominences []float64
}

// Find returns all local maxima of y that satisfy opts.
func Find(y []float64, opts Options) Result {
	idx := localMaxima(y)

	if !math.IsNaN(opts.Height) {
		kept := idx[:0]

		for _, p := range idx {
			if y[p] >= opts.Height {
				kept = append(kept, p)
			}
		}

		idx = kept
	}

	if opts.Distance >= 2 {
		idx = filterByDistance(y, idx, opts.Distance)
	}

	proms := prominences(y, idx)

	if opts.Prominence > 0 && !math.IsNaN(opts.Prominence) {
		keptIdx := idx[:0]
		keptProms := proms[:0]

		for i, p := range idx {
			if proms[i] >= opts.Prominence {
				keptIdx = append(keptIdx, p)
				keptProms = append(keptProms, proms[i])
			}
		}

		idx = keptIdx
		proms = keptProms
	}

	heights := make([]float64, len(idx))
	for i, p := range idx {
		heights[i] = y[p]
	}

	return Result{Indices: idx, Heights: heights, Prominences: proms}
}

// localMaxima returns the indices of strict local maxima. A plateau
// bounded by lower samples on both sides counts once, at its midpoint.
// Boundary samples never count.
func localMaxima(y []float64) []int {
	var out []int

	i := 1
	last := len(y) - 1

	for i < last {
		if y[i] <= y[i-1] {
			i++
			continue
		}

		// Walk the plateau to its right edge.
		ahead := i + 1
		for ahead < last && y[ahead] == y[i] {
			ahead++
		}

		if y[ahead] < y[i] {
			out = append(out, (i+ahead-1)/2)
		}

		i = ahead
	}

	return out
}

// filterByDistance greedily keeps the tallest peaks, dropping any peak
// within fewer than distance samples of a kept taller one.
func filterByDistance(y []float64, idx []int, distance int) []int {
	order := make([]int, len(idx))
	for i := range order {
		order[i] = i
	}

	// Tallest first; ties resolve to the earlier peak.
	sort.SliceStable(order, func(a, b int) bool {
		return y[idx[order[a]]] > y[idx[order[b]]]
	})

	removed := make([]bool, len(idx))

	for _, oi := range order {
		if removed[oi] {
			continue
		}

		// Drop lower neighbours in both directions.
		for j := oi - 1; j >= 0 && idx[oi]-idx[j] < distance; j-- {
			removed[j] = true
		}

		for j := oi + 1; j < len(idx) && idx[j]-idx[oi] < distance; j++ {
			removed[j] = true
		}
	}

	kept := idx[:0]

	for i, p := range idx {
		if !removed[i] {
			kept = append(kept, p)
		}
	}

	return kept
}

// prominences computes the prominence of each peak: walk away from the
// peak on both sides until a higher sample or the boundary, take the
// minimum on each side, and subtract the higher of the two minima.
func prominences(y []float64, idx []int) []float64 {
	out := make([]float64, len(idx))

	for i, p := range idx {
		leftMin := y[p]
		for j := p - 1; j >= 0; j-- {
			if y[j] > y[p] {
				break
			}

			if y[j] < leftMin {
				leftMin = y[j]
			}
		}

		rightMin := y[p]
		for j := p + 1; j < len(y); j++ {
			if y[j] > y[p] {
				break
			}

			if y[j] < rightMin {
				rightMin = y[j]
			}
		}

		base := leftMin
		if rightMin > base {
			base = rightMin
		}

		out[i] = y[p] - base
	}

	return out
}
