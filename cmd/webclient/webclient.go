//go:build js && wasm

// webclient is a WASM client for the mandelbrot view. Frames are computed
// by the server's websocket worker when it is reachable and inside the page
// otherwise; requestAnimationFrame paces the rendering loop.
// Add ?bench to the page url to measure the view once it is ready.

package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"strings"
	"syscall/js"
	"time"

	mandel "github.com/marben/mandel_bench"
	"github.com/marben/mandel_bench/bench"
	"github.com/marben/mandel_bench/config"
	"github.com/marben/mandel_bench/frame"
	"github.com/marben/mandel_bench/loop"
	"github.com/marben/mandel_bench/worker"
)

const zoomStep = 1.1

func main() {
	logScreenf("Starting WASM web client...")
	ctx := context.Background()
	cfg := config.Default()
	logger := slog.New(slog.NewTextHandler(screenWriter{}, nil))

	// Step 1: Determine server address for WebSocket connection
	loc := js.Global().Get("window").Get("location")
	proto := "ws"
	if loc.Get("protocol").String() == "https:" {
		proto = "wss"
	}
	cfg.Worker.Mode = config.ModeRemote
	cfg.Worker.URL = proto + "://" + loc.Get("host").String() + "/ws"

	// Step 2: Connect to the worker; falls back to in-page computation
	logScreenf("Connecting to mandelbrot worker at %s...", cfg.Worker.URL)
	primary, fallback, err := worker.Open(ctx, cfg.Worker, logger)
	if err != nil {
		logFatalf("Failed to open worker: %v", err)
	}

	// Step 3: Prepare the canvas and the rendering loop
	canvas := js.Global().Get("document").Call("getElementById", "myCanvas")
	width, height := cfg.View.Width, cfg.View.Height
	initCanvas(canvas, width, height, "#3a3a6e")

	frames := frame.NewManual()
	opts := []loop.Option{
		loop.WithFrames(frames),
		loop.WithCamera(cfg.View.Camera()),
		loop.WithLogger(logger),
	}
	if fallback != nil {
		opts = append(opts, loop.WithFallback(fallback))
	}
	l := loop.New(primary, newCanvasSurface(canvas, width, height), width, height, opts...)
	go func() {
		if err := l.Run(ctx); err != nil {
			logScreenf("render loop: %v", err)
		}
	}()

	// Step 4: Wire input and vsync
	registerInput(canvas, l, width, height)
	startAnimationFrames(frames)
	logScreenf("Canvas initialized to dimensions %dx%d", width, height)

	if strings.Contains(loc.Get("search").String(), "bench") {
		go runBench(ctx, l, cfg, logger)
	}

	// Block main goroutine to keep WASM running
	select {}
}

// startAnimationFrames offers the loop one tick per browser frame. Ticks
// that arrive while the loop is busy are dropped.
func startAnimationFrames(frames *frame.Manual) {
	var onFrame js.Func
	onFrame = js.FuncOf(func(this js.Value, args []js.Value) any {
		frames.TryTick(time.Now())
		js.Global().Call("requestAnimationFrame", onFrame)
		return nil
	})
	js.Global().Call("requestAnimationFrame", onFrame)
}

// registerInput zooms on wheel and pans while the primary button is held.
func registerInput(canvas js.Value, l *loop.Loop, width, height int) {
	canvas.Call("addEventListener", "wheel", js.FuncOf(func(this js.Value, args []js.Value) any {
		ev := args[0]
		ev.Call("preventDefault")
		factor := zoomStep
		if ev.Get("deltaY").Float() > 0 {
			factor = 1 / zoomStep
		}
		l.SetZoom(func(z float64) float64 { return z * factor })
		return nil
	}))

	canvas.Call("addEventListener", "mousemove", js.FuncOf(func(this js.Value, args []js.Value) any {
		ev := args[0]
		if ev.Get("buttons").Int()&1 == 0 {
			return nil
		}
		scale := l.Camera().Viewport(width, height).Scale
		dx := ev.Get("movementX").Float() * scale
		dy := ev.Get("movementY").Float() * scale
		l.SetPosition(func(p mandel.Position) mandel.Position {
			return mandel.Position{X: p.X - dx, Y: p.Y - dy}
		})
		return nil
	}))
}

func runBench(ctx context.Context, l *loop.Loop, cfg config.Config, logger *slog.Logger) {
	logScreenf("Benchmark starts with the first frame...")
	res, err := bench.RunMandelbrot(ctx, l, l.Ready(),
		bench.WithDuration(cfg.Bench.Duration),
		bench.WithInterval(cfg.Bench.Interval),
		bench.WithFailure(l.Failed()),
		bench.WithLogger(logger),
	)
	if err != nil {
		logScreenf("benchmark: %v", err)
		return
	}
	logScreenf("FPS: %.1f, avg render time: %s, avg heap: %.1f MiB, frames: %d",
		res.FPS, res.AverageRenderTime, res.AverageMemoryUsage/(1<<20), res.Frames)
}

// logScreenf appends a formatted message to the log element in the DOM,
func logScreenf(format string, a ...any) {
	msg := fmt.Sprintf(format, a...)

	doc := js.Global().Get("document")
	logElem := doc.Call("getElementById", "log")
	logElem.Set("textContent", logElem.Get("textContent").String()+msg+"\n")
}

// logFatalf logs a fatal error to the log window and terminates the program.
func logFatalf(format string, a ...any) {
	logScreenf("FATAL: "+format, a...)
	log.Fatalf(format, a...)
}

// screenWriter sends slog output to the log element.
type screenWriter struct{}

func (screenWriter) Write(p []byte) (int, error) {
	logScreenf("%s", strings.TrimRight(string(p), "\n"))
	return len(p), nil
}
