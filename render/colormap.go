package render

import (
	"fmt"
	"image/color"
	"math"
	"strings"

	"gonum.org/v1/plot/palette"
)

// ColorMap maps intensities in [Min, Max] to colors. It satisfies
// palette.ColorMap so it can drive gonum/plot heat maps and color bars.
type ColorMap struct {
	name     string
	ramp     func(t float64) color.NRGBA
	min, max float64
	alpha    float64
}

var _ palette.ColorMap = (*ColorMap)(nil)

// Hot is the black, red, yellow, white ramp.
func Hot() *ColorMap {
	return &ColorMap{name: "hot", ramp: hot, max: 1, alpha: 1}
}

// Gray is the black to white ramp.
func Gray() *ColorMap {
	return &ColorMap{name: "gray", ramp: gray, max: 1, alpha: 1}
}

// ColorMapByName returns "hot" or "gray".
func ColorMapByName(name string) (*ColorMap, error) {
	switch strings.ToLower(name) {
	case "", "hot":
		return Hot(), nil
	case "gray", "grey":
		return Gray(), nil
	}
	return nil, fmt.Errorf("render: unknown color map %q", name)
}

func (c *ColorMap) Name() string { return c.name }

// Normalized returns the ramp color for t in [0, 1], clamping t.
func (c *ColorMap) Normalized(t float64) color.NRGBA {
	out := c.ramp(clip(t))
	out.A = uint8(math.Round(255 * clip(c.alpha)))
	return out
}

// At implements palette.ColorMap.
func (c *ColorMap) At(v float64) (color.Color, error) {
	switch {
	case math.IsNaN(v):
		return nil, palette.ErrNaN
	case c.max <= c.min:
		return nil, fmt.Errorf("render: color map range [%g, %g] is empty", c.min, c.max)
	case v < c.min:
		return c.Normalized(0), palette.ErrUnderflow
	case v > c.max:
		return c.Normalized(1), palette.ErrOverflow
	}
	return c.Normalized((v - c.min) / (c.max - c.min)), nil
}

func (c *ColorMap) Max() float64       { return c.max }
func (c *ColorMap) SetMax(v float64)   { c.max = v }
func (c *ColorMap) Min() float64       { return c.min }
func (c *ColorMap) SetMin(v float64)   { c.min = v }
func (c *ColorMap) Alpha() float64     { return c.alpha }
func (c *ColorMap) SetAlpha(a float64) { c.alpha = a }

// SetRange sets both bounds. An empty range is widened to [lo, lo+1].
func (c *ColorMap) SetRange(lo, hi float64) {
	if !(hi > lo) {
		hi = lo + 1
	}
	c.min, c.max = lo, hi
}

// Palette implements palette.ColorMap with n evenly spaced colors.
func (c *ColorMap) Palette(n int) palette.Palette {
	if n < 2 {
		n = 2
	}
	s := make(swatch, n)
	for i := range s {
		s[i] = c.Normalized(float64(i) / float64(n-1))
	}
	return s
}

type swatch []color.Color

func (s swatch) Colors() []color.Color { return s }

func hot(t float64) color.NRGBA {
	return color.NRGBA{
		R: channel(8.0 / 3 * t),
		G: channel(8.0/3*t - 1),
		B: channel(4*t - 3),
		A: 255,
	}
}

func gray(t float64) color.NRGBA {
	v := channel(t)
	return color.NRGBA{R: v, G: v, B: v, A: 255}
}

func channel(v float64) uint8 {
	return uint8(math.Round(255 * clip(v)))
}

func clip(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
