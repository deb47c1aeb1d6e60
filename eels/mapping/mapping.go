package mapping

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-vecmath"

	"github.com/spectralab/algo-eels/eels/factor"
	"github.com/spectralab/algo-eels/eels/spectrum"
	"github.com/spectralab/algo-eels/eels/stack"
)

// Map errors.
var (
	ErrEmptyCube       = errors.New("mapping: cube must have at least one row and column")
	ErrRaggedCube      = errors.New("mapping: cube rows differ in length")
	ErrChannelMismatch = errors.New("mapping: pixel channel count does not match the energy axis")
	ErrCoordRange      = errors.New("mapping: coordinate outside the grid")
	ErrNoCoords        = errors.New("mapping: no coordinates given")
	ErrNotFactorized   = errors.New("mapping: factorize the map first")
)

// Coord addresses one scan pixel.
type Coord struct {
	Row, Col int
}

// Map is a spectrum image: one spectrum per scan pixel, stored row-major
// in an embedded stack. Stack-wide operations (alignment, normalization,
// unmixing) apply to every pixel at once.
type Map struct {
	st         *stack.Stack
	xAxis      []float64
	rows, cols int
}

// FromCube builds a map from a rows x cols x channels intensity cube
// sharing one energy axis. Every pixel row must have cols entries and
// every pixel len(x) channels.
func FromCube(x []float64, cube [][][]float64) (*Map, error) {
	if len(cube) == 0 || len(cube[0]) == 0 {
		return nil, ErrEmptyCube
	}

	cols := len(cube[0])
	elements := make([]spectrum.Spectrum, 0, len(cube)*cols)

	for r, row := range cube {
		if len(row) != cols {
			return nil, fmt.Errorf("%w: row %d has %d pixels, row 0 has %d", ErrRaggedCube, r, len(row), cols)
		}

		for c, channels := range row {
			if len(channels) != len(x) {
				return nil, fmt.Errorf("%w: pixel (%d,%d) has %d channels for %d energies",
					ErrChannelMismatch, r, c, len(channels), len(x))
			}

			s, err := spectrum.New(x, channels, fmt.Sprintf("(%d,%d)", r, c))
			if err != nil {
				return nil, fmt.Errorf("mapping: pixel (%d,%d): %w", r, c, err)
			}

			elements = append(elements, s)
		}
	}

	return &Map{
		st:    stack.New(elements...),
		xAxis: append([]float64(nil), x...),
		rows:  len(cube),
		cols:  cols,
	}, nil
}

// Rows returns the scan grid height.
func (m *Map) Rows() int { return m.rows }

// Cols returns the scan grid width.
func (m *Map) Cols() int { return m.cols }

// Stack exposes the underlying spectrum stack.
func (m *Map) Stack() *stack.Stack { return m.st }

// Channels returns the acquisition channel count per pixel. Processing
// that trims pixels (Slice, Align, DenoiseLLR) does not change it; read
// individual pixels for their current lengths.
func (m *Map) Channels() int { return len(m.xAxis) }

// XAxis returns the energy axis the cube was acquired on. The slice is
// a view; treat it as read-only.
func (m *Map) XAxis() []float64 { return m.xAxis }

// CoordToIndex maps a grid coordinate to its row-major stack index.
func (m *Map) CoordToIndex(p Coord) (int, error) {
	if p.Row < 0 || p.Row >= m.rows || p.Col < 0 || p.Col >= m.cols {
		return 0, fmt.Errorf("%w: (%d,%d) on %dx%d grid", ErrCoordRange, p.Row, p.Col, m.rows, m.cols)
	}

	return p.Row*m.cols + p.Col, nil
}

// At returns the spectrum at a grid coordinate. The pointer addresses
// the map's own copy.
func (m *Map) At(p Coord) (*spectrum.Spectrum, error) {
	i, err := m.CoordToIndex(p)
	if err != nil {
		return nil, err
	}

	return m.st.At(i)
}

// RegionSum returns the mean spectrum over the given pixels. All pixels
// share the energy axis of the first coordinate.
func (m *Map) RegionSum(coords []Coord) (spectrum.Spectrum, error) {
	if len(coords) == 0 {
		return spectrum.Spectrum{}, ErrNoCoords
	}

	first, err := m.At(coords[0])
	if err != nil {
		return spectrum.Spectrum{}, err
	}

	acc := append([]float64(nil), first.Y()...)

	for _, p := range coords[1:] {
		el, err := m.At(p)
		if err != nil {
			return spectrum.Spectrum{}, err
		}

		if el.Len() != len(acc) {
			return spectrum.Spectrum{}, fmt.Errorf("mapping: pixel (%d,%d): %w", p.Row, p.Col, stack.ErrShapeMismatch)
		}

		vecmath.AddBlockInPlace(acc, el.Y())
	}

	vecmath.ScaleBlock(acc, acc, 1/float64(len(coords)))

	return spectrum.New(first.X(), acc, fmt.Sprintf("mean of %d pixels", len(coords)))
}

// SumAll returns the mean spectrum over the whole grid.
func (m *Map) SumAll() (spectrum.Spectrum, error) {
	coords := make([]Coord, 0, m.rows*m.cols)

	for r := 0; r < m.rows; r++ {
		for c := 0; c < m.cols; c++ {
			coords = append(coords, Coord{Row: r, Col: c})
		}
	}

	return m.RegionSum(coords)
}

// NormalizeByGlobalMax scales every pixel by the reciprocal of the
// largest zero-loss peak height on the grid, preserving relative pixel
// intensities. Align must have run first.
func (m *Map) NormalizeByGlobalMax() error {
	heights := m.st.Heights()
	if len(heights) == 0 {
		return stack.ErrNotAligned
	}

	gmax := heights[0]
	for _, h := range heights[1:] {
		if h > gmax {
			gmax = h
		}
	}

	if gmax == 0 {
		return fmt.Errorf("mapping: %w", spectrum.ErrZeroHeight)
	}

	m.st.ScaleAll(1 / gmax)

	return nil
}

// ComponentMaps reshapes the unmixing weights into one rows x cols
// intensity grid per component. Factorize must have run first.
func (m *Map) ComponentMaps() ([][][]float64, error) {
	coeffs := m.st.Coefficients()
	if coeffs == nil {
		return nil, ErrNotFactorized
	}

	maps := make([][][]float64, len(coeffs))

	for k, weights := range coeffs {
		grid := make([][]float64, m.rows)
		for r := 0; r < m.rows; r++ {
			grid[r] = append([]float64(nil), weights[r*m.cols:(r+1)*m.cols]...)
		}

		maps[k] = grid
	}

	return maps, nil
}

// Align shifts every pixel's zero-loss peak to x = 0 on a shared axis.
func (m *Map) Align() error { return m.st.Align() }

// Normalize scales every pixel by its own zero-loss peak height.
func (m *Map) Normalize() error { return m.st.Normalize() }

// InitialProcess aligns and per-pixel normalizes the grid.
func (m *Map) InitialProcess() error { return m.st.InitialProcess() }

// Slice restricts every pixel to [lo, hi].
func (m *Map) Slice(lo, hi float64) error { return m.st.Slice(lo, hi) }

// SliceIntegrate integrates every pixel over [lo, hi] without
// restricting the grid.
func (m *Map) SliceIntegrate(lo, hi float64) ([]float64, error) {
	return m.st.SliceIntegrate(lo, hi)
}

// Subtract removes substrate signal from every pixel over [lo, hi].
func (m *Map) Subtract(subs []spectrum.Spectrum, lo, hi float64) error {
	return m.st.Subtract(subs, lo, hi)
}

// Factorize unmixes the grid into spectral components.
func (m *Map) Factorize(cfg factor.Config) error { return m.st.Factorize(cfg) }
