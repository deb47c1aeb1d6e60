// Package stack groups spectra acquired under one experiment and applies
// whole-collection operations: zero-loss alignment onto a shared energy
// axis, peak-height normalization, substrate subtraction, and spectral
// unmixing into coefficient/component pairs.
package stack
