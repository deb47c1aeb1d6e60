// Package deconv removes plural scattering from energy-loss spectra by
// Fourier-log deconvolution. A measured spectrum is modeled as the
// zero-loss peak convolved with the exponential of the single-scattering
// distribution; dividing in the frequency domain and taking the complex
// logarithm recovers that distribution.
package deconv
