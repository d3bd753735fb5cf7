package loop

import (
	"fmt"
	"image"
	"image/color"
	"sync"
	"time"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Frame is one computed buffer on its way to a display surface.
type Frame struct {
	Buffer        []byte
	Width, Height int
	RenderTime    time.Duration
}

// Surface displays frames. Blit takes ownership of f.Buffer.
type Surface interface {
	Blit(f Frame) error
}

// ImageSurface displays frames on an in-memory RGBA image, scaling when
// the frame and surface sizes differ.
type ImageSurface struct {
	mu  sync.Mutex
	dst *image.RGBA
	hud bool
}

// NewImageSurface creates a w × h surface. With hud set, each frame is
// overlaid with its render time in the top-left corner.
func NewImageSurface(w, h int, hud bool) *ImageSurface {
	return &ImageSurface{
		dst: image.NewRGBA(image.Rect(0, 0, w, h)),
		hud: hud,
	}
}

func (s *ImageSurface) Blit(f Frame) error {
	if f.Width <= 0 || f.Height <= 0 || len(f.Buffer) != f.Width*f.Height*4 {
		return fmt.Errorf("blit: buffer of %d bytes for %dx%d frame", len(f.Buffer), f.Width, f.Height)
	}
	src := &image.RGBA{
		Pix:    f.Buffer,
		Stride: f.Width * 4,
		Rect:   image.Rect(0, 0, f.Width, f.Height),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if src.Rect == s.dst.Rect {
		draw.Draw(s.dst, s.dst.Rect, src, image.Point{}, draw.Src)
	} else {
		draw.ApproxBiLinear.Scale(s.dst, s.dst.Rect, src, src.Rect, draw.Src, nil)
	}
	if s.hud {
		drawHUD(s.dst, fmt.Sprintf("Render time: %.2fms", float64(f.RenderTime.Microseconds())/1000))
	}
	return nil
}

// Snapshot returns a copy of the current surface contents.
func (s *ImageSurface) Snapshot() *image.RGBA {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := image.NewRGBA(s.dst.Rect)
	copy(out.Pix, s.dst.Pix)
	return out
}

var hudBackground = image.NewUniform(color.RGBA{A: 178})

const hudPad = 5

func drawHUD(dst draw.Image, text string) {
	face := basicfont.Face7x13
	width := font.MeasureString(face, text).Ceil()
	height := face.Metrics().Height.Ceil()

	box := image.Rect(10, 10, 10+width+2*hudPad, 10+height+2*hudPad).Intersect(dst.Bounds())
	draw.Draw(dst, box, hudBackground, image.Point{}, draw.Over)

	d := font.Drawer{
		Dst:  dst,
		Src:  image.White,
		Face: face,
		Dot:  fixed.P(box.Min.X+hudPad, box.Min.Y+hudPad+face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(text)
}
