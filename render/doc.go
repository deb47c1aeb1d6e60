// Package render draws processed spectra to image files: overlaid
// intensity curves, peak markers, and per-component heat maps of a
// scanned grid. Output format follows the file extension (png, svg,
// pdf, ...).
package render
