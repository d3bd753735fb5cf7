//go:build js && wasm

package main

import (
	"fmt"
	"syscall/js"

	"github.com/marben/mandel_bench/loop"
)

// canvasSurface displays loop frames on a 2d canvas element.
type canvasSurface struct {
	ctx    js.Value
	hud    js.Value
	width  int
	height int
}

func newCanvasSurface(canvas js.Value, width, height int) *canvasSurface {
	doc := js.Global().Get("document")
	return &canvasSurface{
		ctx:    canvas.Call("getContext", "2d"),
		hud:    doc.Call("getElementById", "renderTime"),
		width:  width,
		height: height,
	}
}

// Blit implements loop.Surface.
func (s *canvasSurface) Blit(f loop.Frame) error {
	if len(f.Buffer) != f.Width*f.Height*4 {
		return fmt.Errorf("blit: buffer of %d bytes for %dx%d frame", len(f.Buffer), f.Width, f.Height)
	}

	// ImageData wants a Uint8ClampedArray of width * height * 4 bytes
	jsData := js.Global().Get("Uint8ClampedArray").New(len(f.Buffer))
	js.CopyBytesToJS(jsData, f.Buffer)

	imageData := js.Global().Get("ImageData").New(jsData, f.Width, f.Height)
	s.ctx.Call("putImageData", imageData, 0, 0)

	if s.hud.Truthy() {
		s.hud.Set("textContent", fmt.Sprintf("Render time: %.2fms", float64(f.RenderTime.Microseconds())/1000))
	}
	return nil
}

// initCanvas sizes the canvas and paints it with color until the first
// frame arrives.
func initCanvas(canvas js.Value, width, height int, color string) {
	canvas.Set("width", width)
	canvas.Set("height", height)

	ctx := canvas.Call("getContext", "2d")
	ctx.Set("fillStyle", color)
	ctx.Call("fillRect", 0, 0, width, height)
}
