package cube

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"gonum.org/v1/gonum/stat/distuv"
)

// Peak is a Gaussian band of the synthetic spectrum.
type Peak struct {
	Center float64 // cm⁻¹
	Width  float64 // standard deviation, cm⁻¹
}

// SyntheticOptions describes a generated cube.
type SyntheticOptions struct {
	Rows, Cols, Shifts int
	ShiftMin, ShiftMax float64
	Peaks              []Peak

	// Each peak of each pixel is scaled by a factor drawn uniformly from
	// [JitterMin, JitterMax].
	JitterMin, JitterMax float64
	// NoiseSigma is the standard deviation of the additive Gaussian noise.
	NoiseSigma float64

	// Seed fixes the random source; zero seeds from the clock.
	Seed uint64
}

// DefaultSynthetic returns the built-in simulated sample: 65x65 pixels with
// 500 shifts between 400 and 1800 cm⁻¹ and bands near the nucleic acid,
// protein and lipid markers.
func DefaultSynthetic() SyntheticOptions {
	return SyntheticOptions{
		Rows:     65,
		Cols:     65,
		Shifts:   500,
		ShiftMin: 400,
		ShiftMax: 1800,
		Peaks: []Peak{
			{Center: 780, Width: 10},
			{Center: 1005, Width: 15},
			{Center: 1445, Width: 12},
		},
		JitterMin:  0.8,
		JitterMax:  1.2,
		NoiseSigma: 0.02,
	}
}

// Synthesize generates a cube and its shift axis.
func Synthesize(opts SyntheticOptions) (*Cube, []float64, error) {
	c, err := New(opts.Rows, opts.Cols, opts.Shifts)
	if err != nil {
		return nil, nil, err
	}
	if opts.JitterMax < opts.JitterMin {
		return nil, nil, fmt.Errorf("cube: jitter range [%g, %g] is empty", opts.JitterMin, opts.JitterMax)
	}
	if opts.NoiseSigma < 0 {
		return nil, nil, fmt.Errorf("cube: negative noise sigma %g", opts.NoiseSigma)
	}
	for _, p := range opts.Peaks {
		if p.Width <= 0 {
			return nil, nil, fmt.Errorf("cube: peak at %g has non-positive width %g", p.Center, p.Width)
		}
	}

	seed := opts.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	src := rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
	jitter := distuv.Uniform{Min: opts.JitterMin, Max: opts.JitterMax, Src: src}
	noise := distuv.Normal{Mu: 0, Sigma: opts.NoiseSigma, Src: src}

	x := ShiftAxis(opts.ShiftMin, opts.ShiftMax, opts.Shifts)

	// Peak shapes do not depend on the pixel.
	shapes := make([][]float64, len(opts.Peaks))
	for k, p := range opts.Peaks {
		shapes[k] = make([]float64, len(x))
		for i, v := range x {
			z := (v - p.Center) / p.Width
			shapes[k][i] = math.Exp(-0.5 * z * z)
		}
	}

	amp := make([]float64, len(opts.Peaks))
	for r := 0; r < c.rows; r++ {
		for col := 0; col < c.cols; col++ {
			for k := range amp {
				amp[k] = jitter.Rand()
			}
			sp := c.data[c.offset(r, col) : c.offset(r, col)+c.depth]
			for i := range sp {
				v := 0.0
				for k, a := range amp {
					v += a * shapes[k][i]
				}
				if opts.NoiseSigma > 0 {
					v += noise.Rand()
				}
				sp[i] = v
			}
		}
	}
	return c, x, nil
}
