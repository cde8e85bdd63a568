package viewer

import (
	"image"
	"math"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
)

// mapImage is a false-color map that reports where it was tapped.
type mapImage struct {
	widget.BaseWidget
	image    *canvas.Image
	onTapped func(pos fyne.Position, size fyne.Size)
}

var _ fyne.Tappable = (*mapImage)(nil)

func newMapImage(minSize float32, onTapped func(fyne.Position, fyne.Size)) *mapImage {
	img := canvas.NewImageFromImage(nil)
	img.FillMode = canvas.ImageFillContain
	img.ScaleMode = canvas.ImageScalePixels
	img.SetMinSize(fyne.NewSize(minSize, minSize))

	m := &mapImage{image: img, onTapped: onTapped}
	m.ExtendBaseWidget(m)
	return m
}

func (m *mapImage) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(m.image)
}

func (m *mapImage) SetImage(img image.Image) {
	m.image.Image = img
	m.image.Refresh()
}

func (m *mapImage) Tapped(ev *fyne.PointEvent) {
	if m.onTapped != nil {
		m.onTapped(ev.Position, m.Size())
	}
}

// PixelAt converts a position inside a widget of the given size to the map
// pixel under it, for a cols by rows map drawn centered with its aspect ratio
// preserved. ok is false for positions in the letterbox margins.
func PixelAt(pos fyne.Position, size fyne.Size, cols, rows int) (x, y int, ok bool) {
	if cols <= 0 || rows <= 0 || size.Width <= 0 || size.Height <= 0 {
		return 0, 0, false
	}
	scale := math.Min(float64(size.Width)/float64(cols), float64(size.Height)/float64(rows))
	offX := (float64(size.Width) - scale*float64(cols)) / 2
	offY := (float64(size.Height) - scale*float64(rows)) / 2

	fx := (float64(pos.X) - offX) / scale
	fy := (float64(pos.Y) - offY) / scale
	if fx < 0 || fy < 0 || fx >= float64(cols) || fy >= float64(rows) {
		return 0, 0, false
	}
	return int(fx), int(fy), true
}
