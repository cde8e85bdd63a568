// Package render draws intensity maps and spectrum plots as images.
package render

import (
	"fmt"
	"image"
	"math"

	"gonum.org/v1/plot"

	// Liberation fonts register automatically on import
	_ "gonum.org/v1/plot/font/liberation"

	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// DPI maps pixel sizes to plot lengths.
const DPI = 96

// newPlot returns a plot with Liberation Sans titles, labels and ticks.
func newPlot() *plot.Plot {
	p := plot.New()

	// Modify the font fields directly on existing styles
	p.Title.TextStyle.Font.Typeface = "Liberation"
	p.Title.TextStyle.Font.Variant = "Sans"
	p.Title.TextStyle.Font.Size = vg.Points(12)

	p.X.Label.TextStyle.Font.Typeface = "Liberation"
	p.X.Label.TextStyle.Font.Variant = "Sans"
	p.X.Label.TextStyle.Font.Size = vg.Points(12)

	p.Y.Label.TextStyle.Font.Typeface = "Liberation"
	p.Y.Label.TextStyle.Font.Variant = "Sans"
	p.Y.Label.TextStyle.Font.Size = vg.Points(12)

	p.X.Tick.Label.Font.Typeface = "Liberation"
	p.X.Tick.Label.Font.Variant = "Sans"
	p.X.Tick.Label.Font.Size = vg.Points(10)

	p.Y.Tick.Label.Font.Typeface = "Liberation"
	p.Y.Tick.Label.Font.Variant = "Sans"
	p.Y.Tick.Label.Font.Size = vg.Points(10)

	p.Legend.TextStyle.Font.Typeface = "Liberation"
	p.Legend.TextStyle.Font.Variant = "Sans"
	p.Legend.TextStyle.Font.Size = vg.Points(10)

	return p
}

// StepTicks places a labelled tick at every multiple of Step.
type StepTicks struct {
	Step   float64
	Format string
}

func (t StepTicks) Ticks(min, max float64) []plot.Tick {
	if !(t.Step > 0) || math.IsInf(t.Step, 0) {
		return nil
	}
	if math.IsNaN(min) || math.IsNaN(max) || math.IsInf(min, 0) || math.IsInf(max, 0) {
		return nil
	}
	var ticks []plot.Tick
	first := math.Ceil(min / t.Step)
	for i := 0; ; i++ {
		v := (first + float64(i)) * t.Step
		if v > max+t.Step*1e-9 {
			break
		}
		ticks = append(ticks, plot.Tick{
			Value: v,
			Label: fmt.Sprintf(t.Format, v),
		})
	}
	return ticks
}

// niceStep returns a 1, 2 or 5 times power of ten step giving roughly n
// intervals over span.
func niceStep(span float64, n int) float64 {
	if !(span > 0) || n <= 0 {
		return 1
	}
	raw := span / float64(n)
	mag := math.Pow(10, math.Floor(math.Log10(raw)))
	for _, m := range []float64{1, 2, 5, 10} {
		if raw <= m*mag {
			return m * mag
		}
	}
	return 10 * mag
}

// canvasSize converts a pixel size to plot lengths.
func canvasSize(wPx, hPx int) (vg.Length, vg.Length) {
	width := vg.Length(wPx) * vg.Inch / DPI
	height := vg.Length(hPx) * vg.Inch / DPI
	return width, height
}

// drawImage renders fn onto an in-memory canvas of wPx by hPx pixels.
func drawImage(wPx, hPx int, fn func(dc draw.Canvas)) (image.Image, error) {
	if wPx <= 0 || hPx <= 0 {
		return nil, fmt.Errorf("render: invalid image size %dx%d", wPx, hPx)
	}
	width, height := canvasSize(wPx, hPx)
	c := vgimg.NewWith(vgimg.UseWH(width, height), vgimg.UseDPI(DPI))
	fn(draw.New(c))
	return c.Image(), nil
}
