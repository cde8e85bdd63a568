package render

import (
	"fmt"
	"image"
	"image/color"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// MapOptions controls the intensity map figure.
type MapOptions struct {
	// Title is followed by " (Shift Index: i)".
	Title    string
	ColorMap *ColorMap
	// Color range percentiles; 0 and 100 use the slice minimum and maximum.
	PercentileLow, PercentileHigh float64
	Width, Height                 int // pixels
	// Cursor, when set, draws a crosshair through that pixel.
	Cursor *image.Point
}

// DefaultMapOptions returns a 640x520 "Intensity Map" with the hot ramp.
func DefaultMapOptions() MapOptions {
	return MapOptions{
		Title:          "Intensity Map",
		ColorMap:       Hot(),
		PercentileHigh: 100,
		Width:          640,
		Height:         520,
	}
}

// MapTitle formats the figure title for a shift index.
func MapTitle(prefix string, index int) string {
	return fmt.Sprintf("%s (Shift Index: %d)", prefix, index)
}

// FitColorMap sets cmap's range from the percentiles of slice.
func FitColorMap(cmap *ColorMap, slice mat.Matrix, pLow, pHigh float64) error {
	lo, hi, err := PercentileRange(slice, pLow, pHigh)
	if err != nil {
		return err
	}
	cmap.SetRange(lo, hi)
	return nil
}

// sliceGrid adapts a matrix to plotter.GridXYZ with row 0 drawn at the top.
type sliceGrid struct {
	m mat.Matrix
}

func (g sliceGrid) Dims() (c, r int) {
	rows, cols := g.m.Dims()
	return cols, rows
}

func (g sliceGrid) Z(c, r int) float64 {
	rows, _ := g.m.Dims()
	return g.m.At(rows-1-r, c)
}

func (g sliceGrid) X(c int) float64 { return float64(c) }
func (g sliceGrid) Y(r int) float64 { return float64(r) }

// rowTicks labels grid rows with matrix row numbers, counting from the top.
type rowTicks struct {
	rows int
	step float64
}

func (t rowTicks) Ticks(min, max float64) []plot.Tick {
	ticks := StepTicks{Step: t.step, Format: "%.0f"}.Ticks(0, float64(t.rows-1))
	for i := range ticks {
		ticks[i].Value = float64(t.rows-1) - ticks[i].Value
	}
	return ticks
}

// MapFigure renders slice, the cube plane at shift index index, as a heat
// map with a vertical color bar labelled "Intensity".
func MapFigure(slice mat.Matrix, index int, opts MapOptions) (image.Image, error) {
	rows, cols := slice.Dims()
	if rows == 0 || cols == 0 {
		return nil, fmt.Errorf("render: empty map")
	}
	cmap := opts.ColorMap
	if cmap == nil {
		cmap = Hot()
	}
	pHigh := opts.PercentileHigh
	if pHigh == 0 {
		pHigh = 100
	}
	if err := FitColorMap(cmap, slice, opts.PercentileLow, pHigh); err != nil {
		return nil, err
	}

	const paletteSize = 256
	pal := cmap.Palette(paletteSize)
	hm := plotter.NewHeatMap(sliceGrid{m: slice}, pal)
	hm.Min, hm.Max = cmap.Min(), cmap.Max()
	hm.Underflow = pal.Colors()[0]
	hm.Overflow = pal.Colors()[paletteSize-1]
	hm.NaN = color.Black
	hm.Rasterized = true

	p := newPlot()
	p.Title.Text = MapTitle(opts.Title, index)
	p.X.Label.Text = "X Pixel"
	p.Y.Label.Text = "Y Pixel"
	p.Add(hm)
	p.X.Min, p.X.Max = -0.5, float64(cols)-0.5
	p.Y.Min, p.Y.Max = -0.5, float64(rows)-0.5
	p.X.Tick.Marker = StepTicks{Step: niceStep(float64(cols), 6), Format: "%.0f"}
	p.Y.Tick.Marker = rowTicks{rows: rows, step: niceStep(float64(rows), 6)}

	if opts.Cursor != nil {
		cx, cy := float64(opts.Cursor.X), float64(rows-1-opts.Cursor.Y)
		for _, seg := range []plotter.XYs{
			{{X: p.X.Min, Y: cy}, {X: p.X.Max, Y: cy}},
			{{X: cx, Y: p.Y.Min}, {X: cx, Y: p.Y.Max}},
		} {
			l, err := plotter.NewLine(seg)
			if err != nil {
				return nil, err
			}
			l.Color = color.White
			l.Width = vg.Points(1)
			p.Add(l)
		}
	}

	bar := colorBarPlot(cmap)

	w, h := opts.Width, opts.Height
	if w == 0 || h == 0 {
		d := DefaultMapOptions()
		w, h = d.Width, d.Height
	}
	return drawImage(w, h, func(dc draw.Canvas) {
		barWidth := dc.Max.X - dc.Min.X
		barWidth /= 6
		if barWidth > vg.Inch {
			barWidth = vg.Inch
		}
		p.Draw(draw.Crop(dc, 0, -barWidth, 0, 0))
		// Keep the bar clear of the title.
		bar.Draw(draw.Crop(dc, dc.Max.X-dc.Min.X-barWidth, 0, 0, -vg.Points(20)))
	})
}

func colorBarPlot(cmap *ColorMap) *plot.Plot {
	bar := newPlot()
	bar.Add(&plotter.ColorBar{ColorMap: cmap, Vertical: true})
	bar.HideX()
	bar.Y.Label.Text = "Intensity"
	bar.Y.Tick.Marker = StepTicks{Step: niceStep(cmap.Max()-cmap.Min(), 5), Format: tickFormat(cmap.Max() - cmap.Min())}
	return bar
}

// ColorBarImage renders cmap's current range as a standalone vertical
// color bar labelled "Intensity".
func ColorBarImage(cmap *ColorMap, wPx, hPx int) (image.Image, error) {
	if !(cmap.Max() > cmap.Min()) {
		return nil, fmt.Errorf("render: color map range [%g, %g] is empty", cmap.Min(), cmap.Max())
	}
	bar := colorBarPlot(cmap)
	return drawImage(wPx, hPx, bar.Draw)
}

// tickFormat picks enough decimals for ticks spanning span.
func tickFormat(span float64) string {
	step := niceStep(span, 5)
	switch {
	case step >= 1:
		return "%.0f"
	case step >= 0.1:
		return "%.1f"
	case step >= 0.01:
		return "%.2f"
	}
	return "%.3g"
}
