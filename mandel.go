package mandel

import (
	"fmt"
	"math"
	"time"
)

const (
	// MaxIterations is the escape-time iteration cap.
	MaxIterations = 500

	// MaxPixels caps PixelWidth*PixelHeight: a 4096×4096 frame.
	MaxPixels = 4096 * 4096
)

// Viewport maps a pixel grid onto the complex plane for one render request.
type Viewport struct {
	PixelWidth, PixelHeight int
	// Scale is the plane distance covered by one pixel.
	Scale            float64
	OffsetX, OffsetY float64
}

// Validate reports ErrInvalidViewport for non-positive dimensions, frames
// larger than MaxPixels, or a non-positive or non-finite scale/offset.
func (vp Viewport) Validate() error {
	if vp.PixelWidth <= 0 || vp.PixelHeight <= 0 {
		return fmt.Errorf("%w: dimensions %dx%d", ErrInvalidViewport, vp.PixelWidth, vp.PixelHeight)
	}
	// divide rather than multiply so huge dimensions cannot overflow
	if vp.PixelWidth > MaxPixels/vp.PixelHeight {
		return fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrInvalidViewport, vp.PixelWidth, vp.PixelHeight, MaxPixels)
	}
	if !isFinite(vp.Scale) || vp.Scale <= 0 {
		return fmt.Errorf("%w: scale %v", ErrInvalidViewport, vp.Scale)
	}
	if !isFinite(vp.OffsetX) || !isFinite(vp.OffsetY) {
		return fmt.Errorf("%w: offset (%v, %v)", ErrInvalidViewport, vp.OffsetX, vp.OffsetY)
	}
	return nil
}

// BufferLen is the size in bytes of the RGBA buffer for vp.
func (vp Viewport) BufferLen() int {
	return vp.PixelWidth * vp.PixelHeight * 4
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

// Position is a point on the complex plane.
type Position struct {
	X, Y float64
}

// Camera is the user-facing view state: a zoom factor around a centre point.
type Camera struct {
	Zoom   float64
	Center Position
}

// DefaultCamera shows the whole set.
var DefaultCamera = Camera{Zoom: 0.5, Center: Position{X: -0.5, Y: 0}}

// Viewport converts the camera into a Viewport for a w×h pixel surface.
// At zoom 1 the shorter side spans 4 units of the plane.
func (c Camera) Viewport(w, h int) Viewport {
	return Viewport{
		PixelWidth:  w,
		PixelHeight: h,
		Scale:       4 / float64(min(w, h)) / c.Zoom,
		OffsetX:     c.Center.X,
		OffsetY:     c.Center.Y,
	}
}

// Controls is the narrow handle a benchmark driver gets on a live view.
type Controls interface {
	SetZoom(fn func(zoom float64) float64)
	SetPosition(fn func(p Position) Position)
	RenderTime() time.Duration
}

// Region within the Mandelbrot set
type Region struct {
	Xmin, Xmax float64
	Ymin, Ymax float64
}

// Camera returns the camera that fits r into a w×h surface.
func (r Region) Camera(w, h int) Camera {
	scale := max((r.Xmax-r.Xmin)/float64(w), (r.Ymax-r.Ymin)/float64(h))
	return Camera{
		Zoom: 4 / float64(min(w, h)) / scale,
		Center: Position{
			X: (r.Xmin + r.Xmax) / 2,
			Y: (r.Ymin + r.Ymax) / 2,
		},
	}
}

// Classic regions / landmarks in the Mandelbrot set
var (
	// Seahorse Valley – dense filaments and repeating “seahorse” curls
	SeahorseValley = Region{
		Xmin: -0.8,
		Xmax: -0.7,
		Ymin: 0.05,
		Ymax: 0.15,
	}

	// Elephant Valley – large bulb with trunk-like tendrils
	ElephantValley = Region{
		Xmin: -1.85,
		Xmax: -1.75,
		Ymin: -0.10,
		Ymax: -0.02,
	}

	// Spiral Minibrot – small Mandelbrot copy with tight spiral arms
	SpiralMinibrot = Region{
		Xmin: -0.7435,
		Xmax: -0.7420,
		Ymin: 0.1310,
		Ymax: 0.1325,
	}

	// Valley of the Dragon – deep, highly detailed spiral filaments
	ValleyOfTheDragon = Region{
		Xmin: -0.7400,
		Xmax: -0.7350,
		Ymin: 0.1800,
		Ymax: 0.1850,
	}
)

// Regions indexes the landmarks by the names accepted on command lines.
var Regions = map[string]Region{
	"seahorse": SeahorseValley,
	"elephant": ElephantValley,
	"spiral":   SpiralMinibrot,
	"dragon":   ValleyOfTheDragon,
}
