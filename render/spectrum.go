package render

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/shreya-3-4/Spectroscopy-viewer/biomarker"
)

// SpectrumOptions controls the spectrum plot.
type SpectrumOptions struct {
	Title  string
	XLabel string
	// CurveLabel, when set, gives the curve its own legend entry.
	CurveLabel string
	Regions    []biomarker.Region
}

// DefaultSpectrumOptions returns the labels used for a smoothed spectrum
// with the default biomarker bands.
func DefaultSpectrumOptions() SpectrumOptions {
	return SpectrumOptions{
		Title:   "Denoised Spectrum at Selected Pixel",
		XLabel:  "Shift (cm⁻¹)",
		Regions: biomarker.Defaults(),
	}
}

// SpectrumFigure is a spectrum plot ready to be rendered.
type SpectrumFigure struct {
	plot   *plot.Plot
	legend []string
}

var curveColor = color.RGBA{R: 31, G: 119, B: 180, A: 255}

// NewSpectrumFigure plots values against shifts with a 2pt line, shades
// every region and adds one legend entry per distinct label in the upper
// right corner. The x range is the shift range and the y range runs from
// the smallest value to 1.1 times the largest. Non-finite values leave gaps
// in the curve; a spectrum with no finite value is an error.
func NewSpectrumFigure(shifts, values []float64, opts SpectrumOptions) (*SpectrumFigure, error) {
	if len(shifts) != len(values) {
		return nil, fmt.Errorf("render: %d shifts for %d values", len(shifts), len(values))
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("render: empty spectrum")
	}

	f := newSpectrumPlot(opts)
	p := f.plot

	xmin, xmax := shifts[0], shifts[len(shifts)-1]
	if !(xmax > xmin) {
		xmax = xmin + 1
	}
	ymin, ymax, ok := spectrumYRange(values)
	if !ok {
		return nil, fmt.Errorf("render: spectrum has no finite values")
	}

	// Bands first so the curve is drawn on top.
	bands := make(map[string]*plotter.Polygon)
	for _, r := range opts.Regions {
		poly, err := plotter.NewPolygon(plotter.XYs{
			{X: r.Low, Y: ymin}, {X: r.High, Y: ymin},
			{X: r.High, Y: ymax}, {X: r.Low, Y: ymax},
		})
		if err != nil {
			return nil, err
		}
		poly.Color = r.Fill()
		poly.LineStyle.Width = 0
		p.Add(poly)
		if _, ok := bands[r.Label]; !ok {
			bands[r.Label] = poly
		}
	}

	var first *plotter.Line
	for _, pts := range finiteRuns(shifts, values) {
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, err
		}
		line.Color = curveColor
		line.Width = vg.Points(2)
		p.Add(line)
		if first == nil {
			first = line
		}
	}
	if first == nil {
		return nil, fmt.Errorf("render: spectrum has no finite points")
	}

	if opts.CurveLabel != "" {
		p.Legend.Add(opts.CurveLabel, first)
		f.legend = append(f.legend, opts.CurveLabel)
	}
	for _, label := range biomarker.Labels(opts.Regions) {
		if label == opts.CurveLabel {
			continue
		}
		p.Legend.Add(label, bands[label])
		f.legend = append(f.legend, label)
	}

	p.X.Min, p.X.Max = xmin, xmax
	p.Y.Min, p.Y.Max = ymin, ymax
	p.X.Tick.Marker = StepTicks{Step: niceStep(xmax-xmin, 7), Format: "%.0f"}
	p.Y.Tick.Marker = StepTicks{Step: niceStep(ymax-ymin, 6), Format: tickFormat(ymax - ymin)}
	return f, nil
}

// EmptySpectrumFigure returns the titled, unpopulated axes shown before any
// pixel has been selected.
func EmptySpectrumFigure(opts SpectrumOptions) *SpectrumFigure {
	f := newSpectrumPlot(opts)
	f.plot.X.Min, f.plot.X.Max = 0, 1
	f.plot.Y.Min, f.plot.Y.Max = 0, 1
	return f
}

func newSpectrumPlot(opts SpectrumOptions) *SpectrumFigure {
	p := newPlot()
	p.Title.Text = opts.Title
	p.X.Label.Text = opts.XLabel
	p.Y.Label.Text = "Intensity"
	p.Legend.Top = true
	p.Add(plotter.NewGrid())
	return &SpectrumFigure{plot: p}
}

// finiteRuns splits the curve into runs of consecutive finite samples.
func finiteRuns(shifts, values []float64) []plotter.XYs {
	var runs []plotter.XYs
	var run plotter.XYs
	for i, v := range values {
		if !isFinite(v) || !isFinite(shifts[i]) {
			if len(run) > 0 {
				runs = append(runs, run)
				run = nil
			}
			continue
		}
		run = append(run, plotter.XY{X: shifts[i], Y: v})
	}
	if len(run) > 0 {
		runs = append(runs, run)
	}
	return runs
}

func isFinite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// spectrumYRange returns [min, 1.1*max] over the finite values, widened
// when that is empty. ok is false when no value is finite.
func spectrumYRange(values []float64) (lo, hi float64, ok bool) {
	lo, hi = math.Inf(1), math.Inf(-1)
	for _, v := range values {
		if isFinite(v) {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if lo > hi {
		return 0, 0, false
	}
	top := hi * 1.1
	if !(top > lo) {
		top = hi + 0.1*math.Abs(hi)
	}
	if !(top > lo) {
		top = lo + 1
	}
	return lo, top, true
}

// Legend returns the legend labels in display order.
func (f *SpectrumFigure) Legend() []string {
	return append([]string(nil), f.legend...)
}

// Title returns the plot title.
func (f *SpectrumFigure) Title() string { return f.plot.Title.Text }

// XRange and YRange return the axis limits.
func (f *SpectrumFigure) XRange() (min, max float64) { return f.plot.X.Min, f.plot.X.Max }
func (f *SpectrumFigure) YRange() (min, max float64) { return f.plot.Y.Min, f.plot.Y.Max }

// Image renders the figure at wPx by hPx pixels.
func (f *SpectrumFigure) Image(wPx, hPx int) (image.Image, error) {
	return drawImage(wPx, hPx, f.plot.Draw)
}
