// Package loop drives the per-frame refresh of a Mandelbrot view: one
// buffer request per frame, blitted onto a display surface.
package loop

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	mandel "github.com/marben/mandel_bench"
	"github.com/marben/mandel_bench/frame"
)

var (
	framesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "mandel_loop_frames_total",
		Help: "Frame ticks by outcome: rendered, skipped (request in flight) or failed",
	}, []string{"outcome"})

	fallbackTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "mandel_loop_fallback_total",
		Help: "Switches from an isolated execution context to in-process computation",
	})

	renderSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "mandel_loop_render_seconds",
		Help:    "Time from buffer request to blit",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
	})
)

// Loop is a rendering loop. It implements mandel.Controls.
type Loop struct {
	surface Surface
	frames  frame.Source
	width   int
	height  int
	logger  *slog.Logger

	mu            sync.Mutex
	camera        mandel.Camera
	computer      mandel.Computer
	fallback      mandel.Computer
	usingFallback bool

	inFlight   atomic.Bool
	renderTime atomic.Int64
	rendered   atomic.Uint64
	skipped    atomic.Uint64

	ready     chan struct{}
	readyOnce sync.Once
	failed    chan error
	wg        sync.WaitGroup
}

type Option func(*Loop)

// WithFallback sets the in-process computer used once the primary one
// fails with mandel.ErrComputationContext.
func WithFallback(c mandel.Computer) Option {
	return func(l *Loop) { l.fallback = c }
}

// WithFrames replaces the default 60 Hz ticker.
func WithFrames(src frame.Source) Option {
	return func(l *Loop) { l.frames = src }
}

func WithCamera(c mandel.Camera) Option {
	return func(l *Loop) { l.camera = c }
}

func WithLogger(logger *slog.Logger) Option {
	return func(l *Loop) { l.logger = logger }
}

// New creates a loop rendering width × height frames with computer onto
// surface. The loop owns computer, the fallback and surface: each one that
// is an io.Closer is closed on teardown.
func New(computer mandel.Computer, surface Surface, width, height int, opts ...Option) *Loop {
	l := &Loop{
		computer: computer,
		surface:  surface,
		width:    width,
		height:   height,
		camera:   mandel.DefaultCamera,
		logger:   slog.Default(),
		ready:    make(chan struct{}),
		failed:   make(chan error, 1),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.frames == nil {
		l.frames = frame.NewTicker(frame.DefaultRate)
	}
	l.logger = l.logger.With("component", "loop")
	return l
}

// Run refreshes the surface on every frame tick until ctx is done, then
// tears the loop down: the frame source stops, the in-flight request is
// awaited and the computers and surface are released.
func (l *Loop) Run(ctx context.Context) error {
	defer l.teardown()

	l.logger.Info("render loop started", "width", l.width, "height", l.height)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-l.frames.C():
			l.tick(ctx)
		}
	}
}

func (l *Loop) tick(ctx context.Context) {
	if !l.inFlight.CompareAndSwap(false, true) {
		l.skipped.Add(1)
		framesTotal.WithLabelValues("skipped").Inc()
		return
	}

	l.mu.Lock()
	vp := l.camera.Viewport(l.width, l.height)
	l.mu.Unlock()

	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		ok := l.render(ctx, vp)
		l.inFlight.Store(false)
		if ok {
			l.rendered.Add(1)
			l.readyOnce.Do(func() { close(l.ready) })
		}
	}()
}

func (l *Loop) render(ctx context.Context, vp mandel.Viewport) bool {
	start := time.Now()

	buf, err := l.active().Compute(ctx, vp)
	if err != nil && ctx.Err() == nil && errors.Is(err, mandel.ErrComputationContext) {
		if c, switched := l.switchToFallback(err); switched {
			buf, err = c.Compute(ctx, vp)
		}
	}
	if err != nil {
		if ctx.Err() == nil {
			l.logger.Error("render frame", "err", err)
			framesTotal.WithLabelValues("failed").Inc()
			l.fail(err)
		}
		return false
	}

	elapsed := time.Since(start)
	if err := l.surface.Blit(Frame{Buffer: buf, Width: vp.PixelWidth, Height: vp.PixelHeight, RenderTime: elapsed}); err != nil {
		l.logger.Error("blit frame", "err", err)
		framesTotal.WithLabelValues("failed").Inc()
		l.fail(err)
		return false
	}

	l.renderTime.Store(int64(elapsed))
	renderSeconds.Observe(elapsed.Seconds())
	framesTotal.WithLabelValues("rendered").Inc()
	return true
}

// fail reports err on Failed while no frame has been shown yet.
func (l *Loop) fail(err error) {
	select {
	case <-l.ready:
		return
	default:
	}
	select {
	case l.failed <- err:
	default:
	}
}

func (l *Loop) active() mandel.Computer {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.usingFallback {
		return l.fallback
	}
	return l.computer
}

// switchToFallback retires the primary computer for good.
func (l *Loop) switchToFallback(cause error) (mandel.Computer, bool) {
	l.mu.Lock()
	if l.fallback == nil || l.usingFallback {
		l.mu.Unlock()
		return nil, false
	}
	l.usingFallback = true
	primary := l.computer
	l.mu.Unlock()

	l.logger.Warn("isolated computation failed, falling back to in-process", "err", cause)
	fallbackTotal.Inc()
	closeIfCloser(l.logger, "computer", primary)
	return l.fallback, true
}

func (l *Loop) teardown() {
	l.frames.Stop()
	l.wg.Wait()

	l.mu.Lock()
	if !l.usingFallback {
		closeIfCloser(l.logger, "computer", l.computer)
	}
	if l.fallback != nil {
		closeIfCloser(l.logger, "fallback", l.fallback)
	}
	l.mu.Unlock()
	closeIfCloser(l.logger, "surface", l.surface)

	l.logger.Info("render loop stopped", "rendered", l.rendered.Load(), "skipped", l.skipped.Load())
}

func closeIfCloser(logger *slog.Logger, what string, v any) {
	c, ok := v.(io.Closer)
	if !ok {
		return
	}
	if err := c.Close(); err != nil {
		logger.Warn("close "+what, "err", err)
	}
}

// Ready is closed once the first frame has been blitted.
func (l *Loop) Ready() <-chan struct{} {
	return l.ready
}

// Failed receives the error of a frame that failed before the first frame
// was shown, after the fallback (if any) was tried. A loop in that state
// may never become ready.
func (l *Loop) Failed() <-chan error {
	return l.failed
}

// SetZoom applies fn to the zoom factor. Results that are not positive and
// finite are ignored. The change is picked up by the next frame request.
func (l *Loop) SetZoom(fn func(zoom float64) float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	z := fn(l.camera.Zoom)
	if z <= 0 || math.IsInf(z, 0) || math.IsNaN(z) {
		return
	}
	l.camera.Zoom = z
}

// SetPosition applies fn to the view centre.
func (l *Loop) SetPosition(fn func(p mandel.Position) mandel.Position) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.camera.Center = fn(l.camera.Center)
}

// RenderTime is the duration of the last completed frame.
func (l *Loop) RenderTime() time.Duration {
	return time.Duration(l.renderTime.Load())
}

// Camera returns the current view state.
func (l *Loop) Camera() mandel.Camera {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.camera
}

// Stats reports how many ticks produced a frame and how many were skipped
// because a request was still in flight.
func (l *Loop) Stats() (rendered, skipped uint64) {
	return l.rendered.Load(), l.skipped.Load()
}

var _ mandel.Controls = (*Loop)(nil)
