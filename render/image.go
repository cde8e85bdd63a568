package render

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// PercentileRange returns the pLow and pHigh percentiles of the finite
// values of m, linearly interpolated between ranks. With 0 and 100 this is
// the min/max stretch.
func PercentileRange(m mat.Matrix, pLow, pHigh float64) (lo, hi float64, err error) {
	if !(0 <= pLow && pLow < pHigh && pHigh <= 100) {
		return 0, 0, errors.New("percentiles must satisfy 0 <= pLow < pHigh <= 100")
	}
	h, w := m.Dims()

	vals := make([]float64, 0, h*w)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := m.At(y, x)
			if !math.IsNaN(v) && !math.IsInf(v, 0) {
				vals = append(vals, v)
			}
		}
	}
	if len(vals) == 0 {
		return 0, 0, errors.New("matrix has no finite values")
	}

	sort.Float64s(vals)
	lo, hi = rankPercentile(vals, pLow), rankPercentile(vals, pHigh)
	if hi == lo {
		hi = lo + 1
	}
	return lo, hi, nil
}

// rankPercentile interpolates linearly between the ranks of sorted that
// bracket p percent of the way from the first to the last.
func rankPercentile(sorted []float64, p float64) float64 {
	pos := p / 100 * float64(len(sorted)-1)
	i, frac := math.Modf(pos)
	k := int(i)
	if k+1 >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	return sorted[k] + frac*(sorted[k+1]-sorted[k])
}

// FalseColor renders m with one image pixel per matrix element, row 0 at
// the top. Values are mapped through cmap's current range; non-finite
// values are drawn black.
func FalseColor(m mat.Matrix, cmap *ColorMap) *image.NRGBA {
	h, w := m.Dims()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	lo, hi := cmap.Min(), cmap.Max()
	if !(hi > lo) {
		hi = lo + 1
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := m.At(y, x)
			if math.IsNaN(v) || math.IsInf(v, 0) {
				img.SetNRGBA(x, y, color.NRGBA{A: 255})
				continue
			}
			img.SetNRGBA(x, y, cmap.Normalized((v-lo)/(hi-lo)))
		}
	}
	return img
}

// DrawCrosshair draws a one pixel wide horizontal and vertical line through
// (x, y), skipping the selected pixel itself so its value stays visible.
func DrawCrosshair(img draw.Image, x, y int, c color.Color) {
	b := img.Bounds()
	if !(image.Point{X: x, Y: y}).In(b) {
		return
	}
	for i := b.Min.X; i < b.Max.X; i++ {
		if i != x {
			img.Set(i, y, c)
		}
	}
	for j := b.Min.Y; j < b.Max.Y; j++ {
		if j != y {
			img.Set(x, j, c)
		}
	}
}

// Scale enlarges img by an integer factor with nearest-neighbour sampling,
// so small maps stay crisp when displayed.
func Scale(img image.Image, factor int) *image.NRGBA {
	if factor < 1 {
		factor = 1
	}
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c := img.At(b.Min.X+x, b.Min.Y+y)
			draw.Draw(out, image.Rect(x*factor, y*factor, (x+1)*factor, (y+1)*factor),
				image.NewUniform(c), image.Point{}, draw.Src)
		}
	}
	return out
}

// SavePNG writes img to filename.
func SavePNG(filename string, img image.Image) (err error) {
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encode %s: %w", filename, err)
	}
	return nil
}
