// Package factor decomposes a non-negative spectra matrix A (rows are
// spectra, columns are energy channels) into a coefficient matrix W and a
// basis matrix H with A ~ W*H. Two strategies are available: principal
// component analysis (centered, SVD-based, deterministic) and non-negative
// matrix factorization (seeded random init, multiplicative updates,
// deterministic for a fixed seed).
package factor
