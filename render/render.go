package render

import (
	"errors"
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/spectralab/algo-eels/eels/spectrum"
)

// Rendering errors.
var (
	ErrNoData        = errors.New("render: nothing to draw")
	ErrLabelMismatch = errors.New("render: label count does not match curve count")
	ErrRaggedGrid    = errors.New("render: grid rows differ in length")
)

// Config holds shared figure settings. Zero values pick the defaults
// below.
type Config struct {
	Title  string
	XLabel string // default "Energy loss (eV)"
	YLabel string // default "Counts"

	Width  vg.Length // default 6 inches
	Height vg.Length // default 4 inches
}

func normalizeConfig(cfg Config) Config {
	if cfg.XLabel == "" {
		cfg.XLabel = "Energy loss (eV)"
	}

	if cfg.YLabel == "" {
		cfg.YLabel = "Counts"
	}

	if cfg.Width <= 0 {
		cfg.Width = 6 * vg.Inch
	}

	if cfg.Height <= 0 {
		cfg.Height = 4 * vg.Inch
	}

	return cfg
}

func newPlot(cfg Config) *plot.Plot {
	p := plot.New()
	p.Title.Text = cfg.Title
	p.X.Label.Text = cfg.XLabel
	p.Y.Label.Text = cfg.YLabel

	return p
}

func xysFrom(c spectrum.Curve) plotter.XYs {
	n := len(c.X)
	if len(c.Y) < n {
		n = len(c.Y)
	}

	xys := make(plotter.XYs, n)
	for i := range xys {
		xys[i].X = c.X[i]
		xys[i].Y = c.Y[i]
	}

	return xys
}

// Curves draws one line per curve and writes the figure to path. labels
// may be nil to skip the legend, otherwise one label per curve.
func Curves(path string, cfg Config, curves []spectrum.Curve, labels []string) error {
	if len(curves) == 0 {
		return ErrNoData
	}

	if labels != nil && len(labels) != len(curves) {
		return fmt.Errorf("%w: %d labels for %d curves", ErrLabelMismatch, len(labels), len(curves))
	}

	cfg = normalizeConfig(cfg)
	p := newPlot(cfg)

	for i, c := range curves {
		line, err := plotter.NewLine(xysFrom(c))
		if err != nil {
			return fmt.Errorf("render: curve %d: %w", i, err)
		}

		line.LineStyle.Color = plotutil.Color(i)
		p.Add(line)

		if labels != nil {
			p.Legend.Add(labels[i], line)
		}
	}

	if err := p.Save(cfg.Width, cfg.Height, path); err != nil {
		return fmt.Errorf("render: save %s: %w", path, err)
	}

	return nil
}

// Peaks draws a spectrum with cross markers at the detected peaks and
// writes the figure to path. peaks.X holds positions, peaks.Y heights.
func Peaks(path string, cfg Config, curve, peaks spectrum.Curve) error {
	if len(curve.X) == 0 {
		return ErrNoData
	}

	cfg = normalizeConfig(cfg)
	p := newPlot(cfg)

	line, err := plotter.NewLine(xysFrom(curve))
	if err != nil {
		return fmt.Errorf("render: curve: %w", err)
	}

	line.LineStyle.Color = plotutil.Color(0)
	p.Add(line)

	if len(peaks.X) > 0 {
		markers, err := plotter.NewScatter(xysFrom(peaks))
		if err != nil {
			return fmt.Errorf("render: peaks: %w", err)
		}

		markers.GlyphStyle.Shape = draw.CrossGlyph{}
		markers.GlyphStyle.Color = plotutil.Color(1)
		markers.GlyphStyle.Radius = vg.Points(4)
		p.Add(markers)
	}

	if err := p.Save(cfg.Width, cfg.Height, path); err != nil {
		return fmt.Errorf("render: save %s: %w", path, err)
	}

	return nil
}

// ComponentMap draws one unmixing component's spatial weights as a heat
// map and writes the figure to path. grid is indexed [row][col].
func ComponentMap(path string, cfg Config, grid [][]float64) error {
	if len(grid) == 0 || len(grid[0]) == 0 {
		return ErrNoData
	}

	for r, row := range grid {
		if len(row) != len(grid[0]) {
			return fmt.Errorf("%w: row %d has %d cells, row 0 has %d", ErrRaggedGrid, r, len(row), len(grid[0]))
		}
	}

	cfg.XLabel = "Column"
	cfg.YLabel = "Row"
	cfg = normalizeConfig(cfg)
	p := newPlot(cfg)

	heat := plotter.NewHeatMap(denseGrid{cells: grid}, palette.Heat(12, 1))
	p.Add(heat)

	if err := p.Save(cfg.Width, cfg.Height, path); err != nil {
		return fmt.Errorf("render: save %s: %w", path, err)
	}

	return nil
}

// ComponentMaps writes one heat map per component. pattern must contain
// a single %d verb, which receives the component number.
func ComponentMaps(pattern string, cfg Config, maps [][][]float64) error {
	if len(maps) == 0 {
		return ErrNoData
	}

	title := cfg.Title

	for k, grid := range maps {
		if title == "" {
			cfg.Title = fmt.Sprintf("Component %d", k)
		}

		if err := ComponentMap(fmt.Sprintf(pattern, k), cfg, grid); err != nil {
			return err
		}
	}

	return nil
}

// denseGrid adapts a [row][col] matrix to plotter.GridXYZ with unit
// cell spacing.
type denseGrid struct {
	cells [][]float64
}

func (g denseGrid) Dims() (c, r int)   { return len(g.cells[0]), len(g.cells) }
func (g denseGrid) Z(c, r int) float64 { return g.cells[r][c] }
func (g denseGrid) X(c int) float64    { return float64(c) }
func (g denseGrid) Y(r int) float64    { return float64(r) }
