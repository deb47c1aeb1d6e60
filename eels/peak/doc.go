// Package peak locates local maxima in densely sampled 1-D curves and
// filters them by height, inter-peak distance, and prominence. Plateaus
// resolve to their midpoint sample. The filters apply in order: height,
// then distance (greedy, tallest peak wins), then prominence.
package peak
