// Package render is the Mandelbrot computation engine. Every function here
// is pure: it reads a viewport and returns a freshly allocated buffer, so
// callers may run any number of them concurrently.
package render

import (
	"image"
	"math"

	mandel "github.com/marben/mandel_bench"
)

const (
	saturation = 0.8
	lightness  = 0.5
)

// Compute fills a W*H*4 RGBA buffer for vp, row-major, top to bottom.
func Compute(vp mandel.Viewport) ([]byte, error) {
	if err := vp.Validate(); err != nil {
		return nil, err
	}
	buf := make([]byte, vp.BufferLen())
	fillRect(buf, vp, image.Rect(0, 0, vp.PixelWidth, vp.PixelHeight))
	return buf, nil
}

// fillRect writes the pixels of tile into the full-frame buffer buf.
func fillRect(buf []byte, vp mandel.Viewport, tile image.Rectangle) {
	halfW := float64(vp.PixelWidth) / 2
	halfH := float64(vp.PixelHeight) / 2

	for py := tile.Min.Y; py < tile.Max.Y; py++ {
		y0 := (float64(py)-halfH)*vp.Scale + vp.OffsetY
		for px := tile.Min.X; px < tile.Max.X; px++ {
			x0 := (float64(px)-halfW)*vp.Scale + vp.OffsetX

			i := (py*vp.PixelWidth + px) * 4
			if InSet(x0, y0) {
				buf[i], buf[i+1], buf[i+2] = 0, 0, 0
			} else {
				buf[i], buf[i+1], buf[i+2] = HSLToRGB((x0+y0)*180, saturation, lightness)
			}
			buf[i+3] = 255
		}
	}
}

// InSet reports whether (x0, y0) survives MaxIterations steps of
// z = z² + c without leaving the radius-2 disc.
func InSet(x0, y0 float64) bool {
	var x, y float64
	iter := 0
	for x*x+y*y <= 4 && iter < mandel.MaxIterations {
		x, y = x*x-y*y+x0, 2*x*y+y0
		iter++
	}
	return iter == mandel.MaxIterations
}

// HSLToRGB converts hue in degrees (any value, wrapped into [0,360)),
// saturation and lightness in [0,1] to 8-bit RGB.
func HSLToRGB(h, s, l float64) (r, g, b uint8) {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	c := (1 - math.Abs(2*l-1)) * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := l - c/2

	var rf, gf, bf float64
	switch {
	case h < 60:
		rf, gf, bf = c, x, 0
	case h < 120:
		rf, gf, bf = x, c, 0
	case h < 180:
		rf, gf, bf = 0, c, x
	case h < 240:
		rf, gf, bf = 0, x, c
	case h < 300:
		rf, gf, bf = x, 0, c
	default:
		rf, gf, bf = c, 0, x
	}
	return to8(rf + m), to8(gf + m), to8(bf + m)
}

func to8(v float64) uint8 {
	return uint8(math.Round(min(max(v, 0), 1) * 255))
}

// Image wraps a buffer produced for vp as an *image.RGBA without copying.
func Image(vp mandel.Viewport, buf []byte) *image.RGBA {
	return &image.RGBA{
		Pix:    buf,
		Stride: vp.PixelWidth * 4,
		Rect:   image.Rect(0, 0, vp.PixelWidth, vp.PixelHeight),
	}
}
