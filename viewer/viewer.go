// Package viewer is the Fyne window shared by the Raman viewers: a file
// chooser, a shift index slider, the false-color intensity map and the
// smoothed spectrum of the selected pixel.
package viewer

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"log/slog"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/shreya-3-4/Spectroscopy-viewer/cube"
	"github.com/shreya-3-4/Spectroscopy-viewer/params"
	"github.com/shreya-3-4/Spectroscopy-viewer/render"
	"github.com/shreya-3-4/Spectroscopy-viewer/session"
)

const (
	prefLastDir = "lastDir"

	mapDisplayPixels = 520
	colorBarWidth    = 110
	spectrumWidth    = 720
	spectrumHeight   = 440
)

// Options configures a viewer window.
type Options struct {
	Params params.Params

	// Strict viewers require a file and never fall back to simulated data.
	Strict bool
	// ClickToSelect picks the pixel under a tap on the map.
	ClickToSelect bool
	// Crosshair marks the selected pixel on the map.
	Crosshair bool

	OpenLabel    string
	MapHeading   string
	PixelHeading string
	XLabel       string
	YLabel       string
	ActionLabel  string
}

// SpectroscopyOptions configures the Spectroscopy Viewer.
func SpectroscopyOptions(p params.Params) Options {
	return Options{
		Params:        p,
		ClickToSelect: true,
		Crosshair:     true,
		OpenLabel:     "Upload a .mat file",
		MapHeading:    "Intensity Map",
		PixelHeading:  "Select a Pixel",
		XLabel:        "X Pixel",
		YLabel:        "Y Pixel",
		ActionLabel:   "View Spectrum at Pixel",
	}
}

// RamanOptions configures the Raman Spectrum Viewer.
func RamanOptions(p params.Params) Options {
	return Options{
		Params:       p,
		Strict:       true,
		OpenLabel:    "Upload a .mat file",
		MapHeading:   "Raman Map",
		PixelHeading: "Select Pixel to View Spectrum",
		XLabel:       "X coordinate",
		YLabel:       "Y coordinate",
		ActionLabel:  "Show Spectrum",
	}
}

// Viewer is one viewer window. All methods must run on the Fyne main
// goroutine.
type Viewer struct {
	app  fyne.App
	win  fyne.Window
	opts Options
	cmap *render.ColorMap

	sess *session.Session

	status      *widget.Label
	slider      *widget.Slider
	sliderValue *widget.Label
	mapTitle    *widget.Label
	mapImage    *mapImage
	colorBar    *canvas.Image
	xLabel      *widget.Label
	yLabel      *widget.Label
	xEntry      *widget.Entry
	yEntry      *widget.Entry
	spectrum    *canvas.Image
	body        *fyne.Container
}

// New creates the window. Call Load or SetDataset to give it data.
func New(a fyne.App, opts Options) (*Viewer, error) {
	cmap, err := render.ColorMapByName(opts.Params.ColorMap)
	if err != nil {
		return nil, err
	}
	v := &Viewer{
		app:  a,
		win:  a.NewWindow(opts.Params.Title),
		opts: opts,
		cmap: cmap,
	}
	v.build()
	return v, nil
}

func (v *Viewer) Window() fyne.Window { return v.win }

// Session returns the current session, nil before any data is shown.
func (v *Viewer) Session() *session.Session { return v.sess }

func (v *Viewer) ShowAndRun() { v.win.ShowAndRun() }

func (v *Viewer) build() {
	v.status = widget.NewLabel("")
	v.status.Wrapping = fyne.TextWrapWord
	open := widget.NewButtonWithIcon(v.opts.OpenLabel, theme.FolderOpenIcon(), v.showOpenDialog)

	v.sliderValue = widget.NewLabel("")
	v.slider = widget.NewSlider(0, 1)
	v.slider.Step = 1
	v.slider.OnChanged = func(f float64) {
		v.selectShiftIndex(int(math.Round(f)))
	}

	v.mapTitle = widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{Bold: true})
	v.mapImage = newMapImage(mapDisplayPixels, v.mapTapped)
	v.colorBar = canvas.NewImageFromImage(nil)
	v.colorBar.FillMode = canvas.ImageFillContain
	v.colorBar.SetMinSize(fyne.NewSize(colorBarWidth, mapDisplayPixels))

	v.xLabel = widget.NewLabel(v.opts.XLabel)
	v.yLabel = widget.NewLabel(v.opts.YLabel)
	v.xEntry = widget.NewEntry()
	v.yEntry = widget.NewEntry()
	v.xEntry.OnSubmitted = func(string) { v.ShowSpectrum() }
	v.yEntry.OnSubmitted = func(string) { v.ShowSpectrum() }
	action := widget.NewButton(v.opts.ActionLabel, v.ShowSpectrum)
	action.Importance = widget.HighImportance

	v.spectrum = canvas.NewImageFromImage(nil)
	v.spectrum.FillMode = canvas.ImageFillContain
	v.spectrum.SetMinSize(fyne.NewSize(spectrumWidth, spectrumHeight))

	heading := func(text string) *widget.Label {
		return widget.NewLabelWithStyle(text, fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	}

	mapPane := container.NewVBox(
		heading(v.opts.MapHeading),
		container.NewBorder(nil, nil, widget.NewLabel("Choose Shift Index"), v.sliderValue, v.slider),
		v.mapTitle,
		container.NewBorder(nil, nil, nil, v.colorBar, v.mapImage),
	)
	pixelPane := container.NewVBox(
		heading(v.opts.PixelHeading),
		container.New(layout.NewFormLayout(), v.xLabel, v.xEntry, v.yLabel, v.yEntry),
		action,
		v.spectrum,
	)
	v.body = container.NewHBox(mapPane, pixelPane)
	v.body.Hide()

	v.win.SetContent(container.NewBorder(
		container.NewVBox(open, v.status), nil, nil, nil,
		container.NewScroll(v.body),
	))

	width := float32(v.opts.Params.WindowSizePixels)
	if width == 0 {
		width = 1400
	}
	v.win.Resize(fyne.NewSize(width, width*0.65))
}

// Load shows the cube in the file at path. An empty path means no file:
// the Spectroscopy Viewer then shows simulated data and the Raman Spectrum
// Viewer waits for a file.
func (v *Viewer) Load(path string) error {
	if path == "" {
		if v.opts.Strict {
			v.setStatus(cube.Status{Level: cube.LevelInfo, Message: "Upload a .mat file to view its Raman map."})
			return nil
		}
		ds, err := cube.Load(nil, v.opts.Params.Source)
		if err != nil {
			return err
		}
		return v.SetDataset(ds)
	}

	if v.opts.Strict {
		c, shifts, err := cube.DecodeFile(path, v.opts.Params.Source)
		if err != nil {
			return v.loadFailed(err)
		}
		return v.SetDataset(loaded(c, shifts))
	}
	ds, err := cube.LoadFile(path, v.opts.Params.Source)
	if err != nil {
		return err
	}
	return v.SetDataset(ds)
}

func (v *Viewer) loadReader(r io.Reader) error {
	if v.opts.Strict {
		c, shifts, err := cube.Decode(r, v.opts.Params.Source)
		if err != nil {
			return v.loadFailed(err)
		}
		return v.SetDataset(loaded(c, shifts))
	}
	ds, err := cube.Load(r, v.opts.Params.Source)
	if err != nil {
		return err
	}
	return v.SetDataset(ds)
}

func loaded(c *cube.Cube, shifts []float64) cube.Dataset {
	return cube.Dataset{
		Cube:   c,
		Shifts: shifts,
		Status: cube.Status{Level: cube.LevelSuccess, Message: "File loaded successfully!"},
	}
}

// loadFailed reports a strict load failure and keeps the current data.
func (v *Viewer) loadFailed(err error) error {
	slog.Error("cube load failed", "err", err)
	v.setStatus(cube.Status{Level: cube.LevelError, Message: fmt.Sprintf("Error loading file: %v", err)})
	return fmt.Errorf("loading file: %w", err)
}

// SetDataset replaces the displayed data and resets the selection to the
// configured defaults.
func (v *Viewer) SetDataset(ds cube.Dataset) error {
	sess, err := session.New(ds, v.opts.Params.Session)
	if err != nil {
		return err
	}
	v.sess = sess
	v.setStatus(ds.Status)

	rows, cols, depth := sess.Dims()
	v.xLabel.SetText(fmt.Sprintf("%s (0-%d)", v.opts.XLabel, cols-1))
	v.yLabel.SetText(fmt.Sprintf("%s (0-%d)", v.opts.YLabel, rows-1))
	v.showPixel()

	onChanged := v.slider.OnChanged
	v.slider.OnChanged = nil
	v.slider.Max = math.Max(float64(depth-1), 1)
	v.slider.SetValue(float64(sess.ShiftIndex()))
	v.slider.OnChanged = onChanged
	v.sliderValue.SetText(strconv.Itoa(sess.ShiftIndex()))

	placeholder, err := sess.Placeholder().Image(spectrumWidth, spectrumHeight)
	if err != nil {
		return err
	}
	v.spectrum.Image = placeholder
	v.spectrum.Refresh()

	v.renderMap()
	v.body.Show()
	return nil
}

func (v *Viewer) setStatus(st cube.Status) {
	v.status.Importance = statusImportance(st.Level)
	v.status.SetText(st.Message)
}

func statusImportance(l cube.Level) widget.Importance {
	switch l {
	case cube.LevelSuccess:
		return widget.SuccessImportance
	case cube.LevelError:
		return widget.DangerImportance
	}
	return widget.MediumImportance
}

func (v *Viewer) selectShiftIndex(i int) {
	if v.sess == nil || i == v.sess.ShiftIndex() {
		return
	}
	i = v.sess.SetShiftIndex(i)
	v.sliderValue.SetText(strconv.Itoa(i))
	v.renderMap()
}

// displayScale is the integer magnification that fits the map in the
// display area.
func displayScale(rows, cols int) int {
	f := mapDisplayPixels / max(rows, cols)
	return max(f, 1)
}

func (v *Viewer) renderMap() {
	m := v.sess.Map()
	p := v.opts.Params
	if err := render.FitColorMap(v.cmap, m, p.PercentileLow, p.PercentileHigh); err != nil {
		v.showError(err)
		return
	}

	rows, cols, _ := v.sess.Dims()
	f := displayScale(rows, cols)
	img := render.Scale(render.FalseColor(m, v.cmap), f)
	if v.opts.Crosshair {
		x, y := v.sess.Pixel()
		render.DrawCrosshair(img, x*f+f/2, y*f+f/2, color.White)
	}
	v.mapImage.SetImage(img)
	v.mapTitle.SetText(v.sess.MapTitle())

	bar, err := render.ColorBarImage(v.cmap, colorBarWidth, mapDisplayPixels)
	if err != nil {
		v.showError(err)
		return
	}
	v.colorBar.Image = bar
	v.colorBar.Refresh()
}

func (v *Viewer) showPixel() {
	x, y := v.sess.Pixel()
	v.xEntry.SetText(strconv.Itoa(x))
	v.yEntry.SetText(strconv.Itoa(y))
}

// ParseCoordinate reads a pixel coordinate typed by the user.
func ParseCoordinate(name, text string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not a whole number", name, text)
	}
	return n, nil
}

// ShowSpectrum plots the spectrum at the pixel typed into the inputs,
// clamped to the map bounds.
func (v *Viewer) ShowSpectrum() {
	if v.sess == nil {
		return
	}
	x, errX := ParseCoordinate(v.opts.XLabel, v.xEntry.Text)
	y, errY := ParseCoordinate(v.opts.YLabel, v.yEntry.Text)
	if err := errors.Join(errX, errY); err != nil {
		v.showError(err)
		return
	}
	v.sess.SetPixel(x, y)
	v.showPixel()
	v.plotSpectrum()
}

func (v *Viewer) mapTapped(pos fyne.Position, size fyne.Size) {
	if v.sess == nil || !v.opts.ClickToSelect {
		return
	}
	rows, cols, _ := v.sess.Dims()
	x, y, ok := PixelAt(pos, size, cols, rows)
	if !ok {
		return
	}
	v.sess.SetPixel(x, y)
	v.showPixel()
	v.plotSpectrum()
}

func (v *Viewer) plotSpectrum() {
	sp, err := v.sess.Spectrum()
	if err != nil {
		v.showError(err)
		return
	}
	fig, err := v.sess.SpectrumFigure(sp)
	if err != nil {
		v.showError(err)
		return
	}
	img, err := fig.Image(spectrumWidth, spectrumHeight)
	if err != nil {
		v.showError(err)
		return
	}
	slog.Info("spectrum shown", "x", sp.X, "y", sp.Y, "legend", fig.Legend())
	if shift, peak, ok := sp.Peak(); ok {
		slog.Debug("spectrum peak", "shift", shift, "intensity", peak, "bands", v.sess.Bands(shift))
	}
	v.spectrum.Image = img
	v.spectrum.Refresh()

	if v.opts.Crosshair {
		v.renderMap()
	}
}

func (v *Viewer) showError(err error) {
	slog.Error("viewer", "err", err)
	dialog.ShowError(err, v.win)
}

func (v *Viewer) showOpenDialog() {
	d := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil {
			v.showError(err)
			return
		}
		if rc == nil {
			return // cancelled
		}
		defer rc.Close()

		if p := rc.URI().Path(); p != "" {
			v.app.Preferences().SetString(prefLastDir, filepath.Dir(p))
		}
		slog.Info("loading cube", "uri", rc.URI().String())
		if err := v.loadReader(rc); err != nil {
			v.showError(err)
		}
	}, v.win)
	d.SetFilter(storage.NewExtensionFileFilter([]string{".mat"}))

	if dir := v.app.Preferences().String(prefLastDir); dir != "" {
		if lister, err := storage.ListerForURI(storage.NewFileURI(dir)); err == nil {
			d.SetLocation(lister)
		}
	}
	d.Show()
}
