package render

import (
	"image"
	"image/color"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"

	"github.com/shreya-3-4/Spectroscopy-viewer/biomarker"
)

func TestHotRamp(t *testing.T) {
	c := Hot()
	assert.Equal(t, color.NRGBA{0, 0, 0, 255}, c.Normalized(0))
	assert.Equal(t, color.NRGBA{255, 255, 255, 255}, c.Normalized(1))
	assert.Equal(t, color.NRGBA{255, 0, 0, 255}, c.Normalized(0.375))
	assert.Equal(t, color.NRGBA{255, 255, 0, 255}, c.Normalized(0.75))
	// Clamped outside [0, 1].
	assert.Equal(t, c.Normalized(1), c.Normalized(3))
}

func TestColorMapAt(t *testing.T) {
	c := Gray()
	c.SetRange(10, 20)
	got, err := c.At(15)
	require.NoError(t, err)
	assert.Equal(t, color.NRGBA{128, 128, 128, 255}, got)

	_, err = c.At(9)
	assert.ErrorIs(t, err, palette.ErrUnderflow)
	_, err = c.At(21)
	assert.ErrorIs(t, err, palette.ErrOverflow)
	_, err = c.At(math.NaN())
	assert.ErrorIs(t, err, palette.ErrNaN)

	c.SetRange(5, 5)
	assert.Equal(t, 6.0, c.Max())

	assert.Len(t, c.Palette(7).Colors(), 7)
}

func TestColorMapByName(t *testing.T) {
	c, err := ColorMapByName("HOT")
	require.NoError(t, err)
	assert.Equal(t, "hot", c.Name())
	c, err = ColorMapByName("grey")
	require.NoError(t, err)
	assert.Equal(t, "gray", c.Name())
	_, err = ColorMapByName("viridis")
	assert.Error(t, err)
}

func TestPercentileRange(t *testing.T) {
	m := mat.NewDense(2, 3, []float64{5, 1, 3, math.NaN(), 2, 4})
	lo, hi, err := PercentileRange(m, 0, 100)
	require.NoError(t, err)
	assert.Equal(t, 1.0, lo)
	assert.Equal(t, 5.0, hi)

	lo, hi, err = PercentileRange(m, 25, 75)
	require.NoError(t, err)
	assert.Equal(t, 2.0, lo)
	assert.Equal(t, 4.0, hi)

	lo, _, err = PercentileRange(m, 10, 100)
	require.NoError(t, err)
	assert.InDelta(t, 1.4, lo, 1e-12)

	lo, hi, err = PercentileRange(mat.NewDense(1, 2, []float64{7, 7}), 0, 100)
	require.NoError(t, err)
	assert.Equal(t, 7.0, lo)
	assert.Equal(t, 8.0, hi)

	_, _, err = PercentileRange(m, 50, 50)
	assert.Error(t, err)
	_, _, err = PercentileRange(mat.NewDense(1, 1, []float64{math.Inf(1)}), 0, 100)
	assert.Error(t, err)
}

func TestFalseColorOrientation(t *testing.T) {
	// Row 0 is the top image row; column 0 the left image column.
	m := mat.NewDense(2, 3, []float64{
		0, 0, 10,
		5, 0, 0,
	})
	c := Gray()
	c.SetRange(0, 10)
	img := FalseColor(m, c)
	assert.Equal(t, image.Rect(0, 0, 3, 2), img.Bounds())
	assert.Equal(t, color.NRGBA{255, 255, 255, 255}, img.NRGBAAt(2, 0))
	assert.Equal(t, color.NRGBA{128, 128, 128, 255}, img.NRGBAAt(0, 1))
	assert.Equal(t, color.NRGBA{0, 0, 0, 255}, img.NRGBAAt(1, 1))
}

func TestDrawCrosshair(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 5, 4))
	DrawCrosshair(img, 2, 1, color.White)
	white := color.NRGBA{255, 255, 255, 255}
	assert.Equal(t, white, img.NRGBAAt(0, 1))
	assert.Equal(t, white, img.NRGBAAt(4, 1))
	assert.Equal(t, white, img.NRGBAAt(2, 3))
	assert.Equal(t, color.NRGBA{}, img.NRGBAAt(2, 1))
	assert.Equal(t, color.NRGBA{}, img.NRGBAAt(0, 0))

	// Out of bounds is ignored.
	DrawCrosshair(img, 9, 9, color.White)
}

func TestScale(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(1, 0, color.NRGBA{1, 2, 3, 255})
	out := Scale(img, 3)
	assert.Equal(t, image.Rect(0, 0, 6, 3), out.Bounds())
	assert.Equal(t, color.NRGBA{1, 2, 3, 255}, out.NRGBAAt(5, 2))
	assert.Equal(t, color.NRGBA{}, out.NRGBAAt(2, 2))
}

func TestStepTicks(t *testing.T) {
	ticks := StepTicks{Step: 200, Format: "%.0f"}.Ticks(400, 1800)
	require.Len(t, ticks, 8)
	assert.Equal(t, 400.0, ticks[0].Value)
	assert.Equal(t, "1800", ticks[7].Label)
	assert.Nil(t, StepTicks{}.Ticks(0, 1))
	assert.Nil(t, StepTicks{Step: 1}.Ticks(math.NaN(), math.NaN()))
	assert.Nil(t, StepTicks{Step: 1}.Ticks(0, math.Inf(1)))
	assert.Nil(t, StepTicks{Step: math.Inf(1)}.Ticks(0, 1))
}

func TestRowTicksCountFromTop(t *testing.T) {
	ticks := rowTicks{rows: 65, step: 10}.Ticks(-0.5, 64.5)
	require.NotEmpty(t, ticks)
	assert.Equal(t, "0", ticks[0].Label)
	assert.Equal(t, 64.0, ticks[0].Value)
	assert.Equal(t, "60", ticks[6].Label)
	assert.Equal(t, 4.0, ticks[6].Value)
}

func TestSliceGrid(t *testing.T) {
	m := mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})
	g := sliceGrid{m: m}
	c, r := g.Dims()
	assert.Equal(t, 3, c)
	assert.Equal(t, 2, r)
	// Grid row 0 is the bottom of the plot, i.e. the last matrix row.
	assert.Equal(t, 4.0, g.Z(0, 0))
	assert.Equal(t, 3.0, g.Z(2, 1))
}

func TestMapFigure(t *testing.T) {
	m := mat.NewDense(8, 10, nil)
	for i := 0; i < 8; i++ {
		for j := 0; j < 10; j++ {
			m.Set(i, j, float64(i*j))
		}
	}
	opts := DefaultMapOptions()
	opts.Width, opts.Height = 320, 240
	opts.Cursor = &image.Point{X: 3, Y: 4}
	img, err := MapFigure(m, 100, opts)
	require.NoError(t, err)
	assert.Equal(t, 320, img.Bounds().Dx())
	assert.Equal(t, 240, img.Bounds().Dy())
	assert.Equal(t, 0.0, opts.ColorMap.Min())
	assert.Equal(t, 63.0, opts.ColorMap.Max())

	assert.Equal(t, "Intensity Map (Shift Index: 100)", MapTitle("Intensity Map", 100))
}

func TestColorBarImage(t *testing.T) {
	c := Hot()
	c.SetRange(-1, 1)
	img, err := ColorBarImage(c, 90, 300)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 90, 300), img.Bounds())

	c.SetMax(-1)
	_, err = ColorBarImage(c, 90, 300)
	assert.Error(t, err)
}

func TestSpectrumLegendHasOneEntryPerLabel(t *testing.T) {
	shifts := []float64{400, 800, 1200, 1600, 1800}
	values := []float64{0.1, 0.9, 0.4, 0.7, 0.2}
	opts := DefaultSpectrumOptions()
	opts.Regions = append(opts.Regions,
		biomarker.Region{Label: "Proteins", Low: 1650, High: 1660, Color: color.NRGBA{255, 0, 0, 255}},
		biomarker.Region{Label: "Lipids", Low: 1300, High: 1310, Color: color.NRGBA{0, 255, 0, 255}},
	)
	opts.CurveLabel = "Denoised Spectrum"

	f, err := NewSpectrumFigure(shifts, values, opts)
	require.NoError(t, err)
	assert.Equal(t, []string{"Denoised Spectrum", "Nucleic Acids", "Proteins", "Lipids"}, f.Legend())

	xmin, xmax := f.XRange()
	assert.Equal(t, 400.0, xmin)
	assert.Equal(t, 1800.0, xmax)
	ymin, ymax := f.YRange()
	assert.Equal(t, 0.1, ymin)
	assert.InDelta(t, 0.99, ymax, 1e-12)

	img, err := f.Image(400, 300)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 400, 300), img.Bounds())
}

func TestSpectrumFigureValidation(t *testing.T) {
	_, err := NewSpectrumFigure([]float64{1, 2}, []float64{1}, DefaultSpectrumOptions())
	assert.Error(t, err)
	_, err = NewSpectrumFigure(nil, nil, DefaultSpectrumOptions())
	assert.Error(t, err)

	f := EmptySpectrumFigure(DefaultSpectrumOptions())
	assert.Equal(t, "Denoised Spectrum at Selected Pixel", f.Title())
	assert.Empty(t, f.Legend())
	_, err = f.Image(0, 10)
	assert.Error(t, err)
}

func TestSpectrumYRangeNonPositive(t *testing.T) {
	lo, hi, ok := spectrumYRange([]float64{-3, -2})
	require.True(t, ok)
	assert.Equal(t, -3.0, lo)
	assert.InDelta(t, -2.2, hi, 1e-12)

	lo, hi, ok = spectrumYRange([]float64{0, 0})
	require.True(t, ok)
	assert.Equal(t, 0.0, lo)
	assert.Equal(t, 1.0, hi)

	_, _, ok = spectrumYRange([]float64{math.NaN(), math.Inf(1)})
	assert.False(t, ok)
}

func TestSpectrumWithGaps(t *testing.T) {
	shifts := []float64{400, 500, 600, 700, 800, 900}
	values := []float64{0.2, math.NaN(), 0.5, 0.8, math.Inf(-1), 0.3}

	runs := finiteRuns(shifts, values)
	require.Len(t, runs, 3)
	assert.Len(t, runs[0], 1)
	assert.Equal(t, plotter.XYs{{X: 600, Y: 0.5}, {X: 700, Y: 0.8}}, runs[1])
	assert.Equal(t, 900.0, runs[2][0].X)

	opts := DefaultSpectrumOptions()
	opts.CurveLabel = "Denoised Spectrum"
	f, err := NewSpectrumFigure(shifts, values, opts)
	require.NoError(t, err)
	ymin, ymax := f.YRange()
	assert.Equal(t, 0.2, ymin)
	assert.InDelta(t, 0.88, ymax, 1e-12)
	assert.Equal(t, "Denoised Spectrum", f.Legend()[0])

	img, err := f.Image(400, 300)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 400, 300), img.Bounds())

	nan := math.NaN()
	_, err = NewSpectrumFigure(shifts[:3], []float64{nan, nan, nan}, opts)
	assert.Error(t, err)
}

func TestSavePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.png")
	require.NoError(t, SavePNG(path, image.NewNRGBA(image.Rect(0, 0, 2, 2))))
	assert.FileExists(t, path)
	assert.Error(t, SavePNG(filepath.Join(t.TempDir(), "missing", "x.png"), image.NewNRGBA(image.Rect(0, 0, 1, 1))))
}
