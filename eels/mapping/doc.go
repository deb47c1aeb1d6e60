// Package mapping arranges spectra on a 2-D scan grid. A Map wraps a
// spectrum stack in row-major order and adds spatial operations: region
// averaging, global normalization, and per-component intensity maps for
// rendering unmixing results over the scanned area.
package mapping
