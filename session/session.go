// Package session holds the state behind one viewer window: the loaded
// dataset, the selected shift index and the selected pixel.
package session

import (
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/shreya-3-4/Spectroscopy-viewer/biomarker"
	"github.com/shreya-3-4/Spectroscopy-viewer/cube"
	"github.com/shreya-3-4/Spectroscopy-viewer/render"
	"github.com/shreya-3-4/Spectroscopy-viewer/savgol"
)

// Config holds the per-viewer labels and defaults.
type Config struct {
	Window, Order int
	Regions       []biomarker.Region

	MapTitle string
	// SpectrumTitle is a format taking the pixel x and y.
	SpectrumTitle string
	// PlaceholderTitle is shown before any spectrum has been requested.
	PlaceholderTitle string
	XLabel           string
	CurveLabel       string

	DefaultShiftIndex  int
	DefaultX, DefaultY int
}

// DefaultConfig returns the Spectroscopy Viewer configuration.
func DefaultConfig() Config {
	return Config{
		Window:            savgol.DefaultWindow,
		Order:             savgol.DefaultOrder,
		Regions:           biomarker.Defaults(),
		MapTitle:          "Intensity Map",
		SpectrumTitle:     "Smoothed Spectrum at (%d, %d)",
		PlaceholderTitle:  "Denoised Spectrum at Selected Pixel",
		XLabel:            "Shift (cm⁻¹)",
		DefaultShiftIndex: 100,
		DefaultX:          32,
		DefaultY:          32,
	}
}

// RamanConfig returns the Raman Spectrum Viewer configuration.
func RamanConfig() Config {
	c := DefaultConfig()
	c.MapTitle = "Raman Map"
	c.SpectrumTitle = "Spectrum at Pixel (%d, %d)"
	c.PlaceholderTitle = "Select a pixel to view its spectrum"
	c.XLabel = "Raman Shift (cm⁻¹)"
	c.CurveLabel = "Denoised Spectrum"
	return c
}

// Session is not safe for concurrent use.
type Session struct {
	ds     cube.Dataset
	cfg    Config
	filter *savgol.Filter

	index int
	x, y  int
}

// New starts a session on ds with the index and pixel set to the
// configured defaults, clamped to the cube bounds.
func New(ds cube.Dataset, cfg Config) (*Session, error) {
	if ds.Cube == nil {
		return nil, fmt.Errorf("session: dataset has no cube")
	}
	_, _, depth := ds.Cube.Dims()
	if len(ds.Shifts) != depth {
		return nil, fmt.Errorf("session: %d shift values for %d spectral samples", len(ds.Shifts), depth)
	}
	filter, err := savgol.New(cfg.Window, cfg.Order)
	if err != nil {
		return nil, err
	}
	if err := biomarker.Validate(cfg.Regions); err != nil {
		return nil, err
	}
	s := &Session{ds: ds, cfg: cfg, filter: filter}
	s.SetShiftIndex(cfg.DefaultShiftIndex)
	s.SetPixel(cfg.DefaultX, cfg.DefaultY)
	return s, nil
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (s *Session) Dataset() cube.Dataset { return s.ds }

// Dims returns the cube's rows, columns and spectral depth.
func (s *Session) Dims() (rows, cols, depth int) { return s.ds.Cube.Dims() }

func (s *Session) ShiftIndex() int { return s.index }

// SetShiftIndex selects the map plane, clamped to [0, depth), and returns
// the index actually used.
func (s *Session) SetShiftIndex(i int) int {
	_, _, depth := s.Dims()
	s.index = Clamp(i, 0, depth-1)
	slog.Debug("shift index selected", "index", s.index, "shift", s.ds.Shifts[s.index])
	return s.index
}

// Pixel returns the selected column x and row y.
func (s *Session) Pixel() (x, y int) { return s.x, s.y }

// SetPixel selects a pixel, clamping x to [0, cols) and y to [0, rows), and
// returns the pixel actually used.
func (s *Session) SetPixel(x, y int) (int, int) {
	rows, cols, _ := s.Dims()
	s.x = Clamp(x, 0, cols-1)
	s.y = Clamp(y, 0, rows-1)
	slog.Debug("pixel selected", "x", s.x, "y", s.y)
	return s.x, s.y
}

// Map returns the intensity plane cube[:, :, index].
func (s *Session) Map() *mat.Dense {
	m, err := s.ds.Cube.Slice(s.index)
	if err != nil {
		// index is kept in range by SetShiftIndex
		panic(err)
	}
	return m
}

func (s *Session) MapTitle() string {
	return render.MapTitle(s.cfg.MapTitle, s.index)
}

// MapOptions returns render options for the current map with the given
// color map and percentile stretch.
func (s *Session) MapOptions(cmap *render.ColorMap, pLow, pHigh float64) render.MapOptions {
	opts := render.DefaultMapOptions()
	opts.Title = s.cfg.MapTitle
	opts.ColorMap = cmap
	opts.PercentileLow, opts.PercentileHigh = pLow, pHigh
	return opts
}

// Spectrum is the raw and smoothed intensity curve of one pixel.
type Spectrum struct {
	X, Y     int
	Shifts   []float64
	Raw      []float64
	Smoothed []float64
	Title    string
}

// Spectrum extracts cube[y, x, :] for the selected pixel and smooths it.
func (s *Session) Spectrum() (Spectrum, error) {
	raw, err := s.ds.Cube.Spectrum(s.x, s.y)
	if err != nil {
		return Spectrum{}, err
	}
	smoothed, err := s.filter.Apply(raw)
	if err != nil {
		return Spectrum{}, fmt.Errorf("smoothing spectrum at (%d, %d): %w", s.x, s.y, err)
	}
	return Spectrum{
		X:        s.x,
		Y:        s.y,
		Shifts:   s.ds.Shifts,
		Raw:      raw,
		Smoothed: smoothed,
		Title:    fmt.Sprintf(s.cfg.SpectrumTitle, s.x, s.y),
	}, nil
}

// Peak returns the shift and smoothed intensity of the strongest finite
// sample of sp. ok is false when no sample is finite.
func (sp Spectrum) Peak() (shift, intensity float64, ok bool) {
	for i, v := range sp.Smoothed {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if !ok || v > intensity {
			shift, intensity, ok = sp.Shifts[i], v, true
		}
	}
	return shift, intensity, ok
}

// Bands returns the labels of the biomarker regions containing shift.
func (s *Session) Bands(shift float64) []string {
	return biomarker.Matching(s.cfg.Regions, shift)
}

// SpectrumOptions returns the plot options for a spectrum titled title.
func (s *Session) SpectrumOptions(title string) render.SpectrumOptions {
	return render.SpectrumOptions{
		Title:      title,
		XLabel:     s.cfg.XLabel,
		CurveLabel: s.cfg.CurveLabel,
		Regions:    s.cfg.Regions,
	}
}

// SpectrumFigure plots the smoothed curve of sp with the biomarker bands.
func (s *Session) SpectrumFigure(sp Spectrum) (*render.SpectrumFigure, error) {
	return render.NewSpectrumFigure(sp.Shifts, sp.Smoothed, s.SpectrumOptions(sp.Title))
}

// Placeholder returns the empty spectrum axes.
func (s *Session) Placeholder() *render.SpectrumFigure {
	return render.EmptySpectrumFigure(s.SpectrumOptions(s.cfg.PlaceholderTitle))
}
