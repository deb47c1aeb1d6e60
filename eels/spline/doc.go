// Package spline provides an exact cubic interpolant for sampled
// energy-loss curves, plus dense sampling grids and quadrature over the
// interpolant. Every sub-sample operation in this module (zero-loss peak
// localization, alignment resampling, integration, peak search) goes
// through this package.
package spline
