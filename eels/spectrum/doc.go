// Package spectrum owns a single energy-loss curve: an intensity sample
// per strictly increasing energy position. It provides slicing, zero-loss
// peak localization and alignment, integration, local low-rank denoising,
// peak finding, and substrate subtraction.
//
// A Spectrum is a value: Clone gives an independent deep copy, and
// collections copy on insertion, so no two owners ever share backing
// arrays.
package spectrum
