package main

import (
	"fmt"
	"image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"

	mandel "github.com/marben/mandel_bench"
	"github.com/marben/mandel_bench/loop"
)

// zoomStep is the zoom factor applied per scroll notch or key press.
const zoomStep = 1.1

// camera is the part of the rendering loop the view steers.
type camera interface {
	mandel.Controls
	Camera() mandel.Camera
}

// mandelView shows loop frames and turns scroll and drag gestures into
// camera changes. It is the loop's display surface.
type mandelView struct {
	widget.BaseWidget

	img    *canvas.Image
	status *widget.Label
	cam    camera

	// frame size in pixels, used to convert drag distances
	width, height int
}

func newMandelView(width, height int, status *widget.Label) *mandelView {
	v := &mandelView{
		img:    canvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, width, height))),
		status: status,
		width:  width,
		height: height,
	}
	v.img.FillMode = canvas.ImageFillStretch
	v.img.ScaleMode = canvas.ImageScaleFastest
	v.img.SetMinSize(fyne.NewSize(float32(width)/2, float32(height)/2))
	v.ExtendBaseWidget(v)
	return v
}

// steer connects the gestures to the loop. It is called once the loop
// exists, since the loop needs the view as its surface first.
func (v *mandelView) steer(cam camera) {
	v.cam = cam
}

func (v *mandelView) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(v.img)
}

// Blit implements loop.Surface.
func (v *mandelView) Blit(f loop.Frame) error {
	if len(f.Buffer) != f.Width*f.Height*4 {
		return fmt.Errorf("blit: buffer of %d bytes for %dx%d frame", len(f.Buffer), f.Width, f.Height)
	}
	img := &image.RGBA{
		Pix:    f.Buffer,
		Stride: f.Width * 4,
		Rect:   image.Rect(0, 0, f.Width, f.Height),
	}
	text := fmt.Sprintf("Render time: %.2fms", float64(f.RenderTime.Microseconds())/1000)

	fyne.Do(func() {
		v.img.Image = img
		v.img.Refresh()
		v.status.SetText(text)
	})
	return nil
}

// Scrolled zooms in on scroll up and out on scroll down.
func (v *mandelView) Scrolled(ev *fyne.ScrollEvent) {
	switch {
	case v.cam == nil || ev.Scrolled.DY == 0:
	case ev.Scrolled.DY > 0:
		v.zoom(zoomStep)
	default:
		v.zoom(1 / zoomStep)
	}
}

// Dragged pans so the point under the pointer follows it.
func (v *mandelView) Dragged(ev *fyne.DragEvent) {
	if v.cam == nil {
		return
	}
	size := v.Size()
	if size.Width <= 0 {
		return
	}
	vp := v.cam.Camera().Viewport(v.width, v.height)
	k := vp.Scale * float64(v.width) / float64(size.Width)
	dx, dy := float64(ev.Dragged.DX)*k, float64(ev.Dragged.DY)*k
	v.cam.SetPosition(func(p mandel.Position) mandel.Position {
		return mandel.Position{X: p.X - dx, Y: p.Y - dy}
	})
}

func (v *mandelView) DragEnd() {}

// typedKey handles +/- for zoom and the arrow keys for panning by a tenth
// of the view.
func (v *mandelView) typedKey(ev *fyne.KeyEvent) {
	if v.cam == nil {
		return
	}
	step := 0.1 * v.cam.Camera().Viewport(v.width, v.height).Scale * float64(min(v.width, v.height))
	switch ev.Name {
	case fyne.KeyPlus, fyne.KeyEqual:
		v.zoom(zoomStep)
	case fyne.KeyMinus:
		v.zoom(1 / zoomStep)
	case fyne.KeyLeft:
		v.pan(-step, 0)
	case fyne.KeyRight:
		v.pan(step, 0)
	case fyne.KeyUp:
		v.pan(0, -step)
	case fyne.KeyDown:
		v.pan(0, step)
	}
}

func (v *mandelView) zoom(factor float64) {
	v.cam.SetZoom(func(z float64) float64 { return z * factor })
}

func (v *mandelView) pan(dx, dy float64) {
	v.cam.SetPosition(func(p mandel.Position) mandel.Position {
		return mandel.Position{X: p.X + dx, Y: p.Y + dy}
	})
}

var (
	_ fyne.Scrollable = (*mandelView)(nil)
	_ fyne.Draggable  = (*mandelView)(nil)
	_ loop.Surface    = (*mandelView)(nil)
)
