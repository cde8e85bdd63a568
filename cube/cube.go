// Package cube holds hyperspectral Raman data cubes: a 2-D spatial grid in
// which every pixel carries a full spectral intensity curve.
//
// A cube is indexed (row, column, spectral index) and is read-only once it
// has been loaded or synthesized.
package cube

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ErrNotCube is returned when an array is not three dimensional or has an
// empty dimension.
var ErrNotCube = errors.New("cube: array is not a non-empty 3-D array")

// Cube is a 3-D array of spectral intensities.
type Cube struct {
	rows, cols, depth int
	// data is row-major with the spectral index varying fastest, so that
	// the spectrum of one pixel is contiguous.
	data []float64
}

// New returns a zero-filled cube of the given shape.
func New(rows, cols, depth int) (*Cube, error) {
	if rows <= 0 || cols <= 0 || depth <= 0 {
		return nil, fmt.Errorf("%w: shape (%d, %d, %d)", ErrNotCube, rows, cols, depth)
	}
	return &Cube{
		rows:  rows,
		cols:  cols,
		depth: depth,
		data:  make([]float64, rows*cols*depth),
	}, nil
}

// FromColumnMajor builds a cube from a MATLAB-ordered array with dims
// (rows, cols, depth), where element (r, c, s) is at r + c*rows + s*rows*cols.
func FromColumnMajor(dims []int, data []float64) (*Cube, error) {
	if len(dims) != 3 {
		return nil, fmt.Errorf("%w: got %d dimensions %v", ErrNotCube, len(dims), dims)
	}
	c, err := New(dims[0], dims[1], dims[2])
	if err != nil {
		return nil, err
	}
	if len(data) != len(c.data) {
		return nil, fmt.Errorf("cube: %d values for shape %v", len(data), dims)
	}
	plane := c.rows * c.cols
	for s := 0; s < c.depth; s++ {
		for col := 0; col < c.cols; col++ {
			for r := 0; r < c.rows; r++ {
				c.data[c.offset(r, col)+s] = data[r+col*c.rows+s*plane]
			}
		}
	}
	return c, nil
}

// ColumnMajor returns the cube's values in MATLAB order, the inverse of
// FromColumnMajor.
func (c *Cube) ColumnMajor() []float64 {
	out := make([]float64, len(c.data))
	plane := c.rows * c.cols
	for s := 0; s < c.depth; s++ {
		for col := 0; col < c.cols; col++ {
			for r := 0; r < c.rows; r++ {
				out[r+col*c.rows+s*plane] = c.data[c.offset(r, col)+s]
			}
		}
	}
	return out
}

// Dims returns the number of rows, columns and spectral samples.
func (c *Cube) Dims() (rows, cols, depth int) {
	return c.rows, c.cols, c.depth
}

func (c *Cube) offset(r, col int) int {
	return (r*c.cols + col) * c.depth
}

// At returns the intensity at (row, col, s).
func (c *Cube) At(r, col, s int) float64 {
	c.check(r, col)
	if s < 0 || s >= c.depth {
		panic(fmt.Sprintf("cube: spectral index %d out of range [0,%d)", s, c.depth))
	}
	return c.data[c.offset(r, col)+s]
}

// Set stores v at (row, col, s). It is used while building a cube.
func (c *Cube) Set(r, col, s int, v float64) {
	c.check(r, col)
	if s < 0 || s >= c.depth {
		panic(fmt.Sprintf("cube: spectral index %d out of range [0,%d)", s, c.depth))
	}
	c.data[c.offset(r, col)+s] = v
}

func (c *Cube) check(r, col int) {
	if r < 0 || r >= c.rows {
		panic(fmt.Sprintf("cube: row %d out of range [0,%d)", r, c.rows))
	}
	if col < 0 || col >= c.cols {
		panic(fmt.Sprintf("cube: column %d out of range [0,%d)", col, c.cols))
	}
}

// Slice returns the rows x cols intensity map at spectral index.
func (c *Cube) Slice(index int) (*mat.Dense, error) {
	if index < 0 || index >= c.depth {
		return nil, fmt.Errorf("cube: spectral index %d out of range [0,%d)", index, c.depth)
	}
	m := mat.NewDense(c.rows, c.cols, nil)
	for r := 0; r < c.rows; r++ {
		for col := 0; col < c.cols; col++ {
			m.Set(r, col, c.data[c.offset(r, col)+index])
		}
	}
	return m, nil
}

// Spectrum returns a copy of the spectrum at pixel (x, y), that is
// cube[y, x, :].
func (c *Cube) Spectrum(x, y int) ([]float64, error) {
	if x < 0 || x >= c.cols || y < 0 || y >= c.rows {
		return nil, fmt.Errorf("cube: pixel (%d, %d) outside %dx%d grid", x, y, c.cols, c.rows)
	}
	off := c.offset(y, x)
	out := make([]float64, c.depth)
	copy(out, c.data[off:off+c.depth])
	return out, nil
}

// Range returns the minimum and maximum finite intensity in the cube, or
// NaN twice when there is none.
func (c *Cube) Range() (lo, hi float64) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range c.data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo > hi {
		return math.NaN(), math.NaN()
	}
	return lo, hi
}

// ShiftAxis returns n Raman shift values linearly spaced from lo to hi
// inclusive.
func ShiftAxis(lo, hi float64, n int) []float64 {
	switch {
	case n <= 0:
		return nil
	case n == 1:
		return []float64{lo}
	}
	return floats.Span(make([]float64, n), lo, hi)
}
