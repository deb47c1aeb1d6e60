package spectrum

import "errors"

var (
	ErrLengthMismatch  = errors.New("spectrum: x and y must have same length")
	ErrNotIncreasing   = errors.New("spectrum: x must be strictly increasing")
	ErrEmptyRange      = errors.New("spectrum: no samples in requested range")
	ErrTooFewSamples   = errors.New("spectrum: too few samples")
	ErrZeroHeight      = errors.New("spectrum: zero-loss peak height is zero")
	ErrWindowTooNarrow = errors.New("spectrum: denoise window narrower than sample spacing")
	ErrWindowTooWide   = errors.New("spectrum: denoise window wider than data")
)
