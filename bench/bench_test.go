package bench

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mandel "github.com/marben/mandel_bench"
	"github.com/marben/mandel_bench/frame"
	"github.com/marben/mandel_bench/scenario"
)

func noop() (func(), error) { return func() {}, nil }

// burst is a frame source with n ticks already queued.
type burst struct{ ch chan time.Time }

func newBurst(n int) frame.NewSourceFunc {
	return func() frame.Source {
		b := burst{ch: make(chan time.Time, n)}
		for range n {
			b.ch <- time.Now()
		}
		return b
	}
}

func (b burst) C() <-chan time.Time { return b.ch }
func (b burst) Stop()               {}

func TestMeasureZeroDuration(t *testing.T) {
	res, err := Measure(context.Background(), noop, WithDuration(0))
	require.NoError(t, err)
	assert.Zero(t, res.FPS)
	assert.Zero(t, res.AverageRenderTime)
	assert.Zero(t, res.Frames)
}

func TestMeasureOneSecond(t *testing.T) {
	res, err := Measure(context.Background(), noop, WithDuration(time.Second))
	require.NoError(t, err)
	assert.Greater(t, res.Frames, 0)
	assert.Greater(t, res.FPS, 0.0)
	assert.GreaterOrEqual(t, res.AverageMemoryUsage, 0.0)
	assert.Greater(t, res.AverageRenderTime, time.Duration(0))
	assert.Zero(t, res.InteractionLatency)
}

func TestMeasureCountsEveryTick(t *testing.T) {
	res, err := Measure(context.Background(), noop,
		WithDuration(200*time.Millisecond),
		WithFrames(newBurst(12)),
		WithMemorySampler(func() (uint64, bool) { return 1000, true }),
	)
	require.NoError(t, err)
	assert.Equal(t, 12, res.Frames)
	assert.InDelta(t, 60.0, res.FPS, 1e-9)
	assert.Equal(t, 1000.0, res.AverageMemoryUsage)
}

func TestMeasureWithoutMemoryIntrospection(t *testing.T) {
	res, err := Measure(context.Background(), noop,
		WithDuration(50*time.Millisecond),
		WithFrames(newBurst(3)),
		WithMemorySampler(func() (uint64, bool) { return 0, false }),
	)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Frames)
	assert.Zero(t, res.AverageMemoryUsage)
}

func TestMeasureInteractionFailure(t *testing.T) {
	tests := map[string]Interaction{
		"error": func() (func(), error) { return nil, errors.New("no controls") },
		"panic": func() (func(), error) { panic("controls missing") },
	}

	for name, start := range tests {
		t.Run(name, func(t *testing.T) {
			res, err := Measure(context.Background(), start, WithDuration(time.Second))
			require.ErrorIs(t, err, mandel.ErrHarnessInteraction)
			assert.Equal(t, Result{}, res)
		})
	}
}

func TestMeasureRunsTeardownOnce(t *testing.T) {
	var started, stopped atomic.Int32
	start := func() (func(), error) {
		started.Add(1)
		return func() { stopped.Add(1) }, nil
	}

	_, err := Measure(context.Background(), start, WithDuration(20*time.Millisecond))
	require.NoError(t, err)
	assert.EqualValues(t, 1, started.Load())
	assert.EqualValues(t, 1, stopped.Load())
}

func TestMeasureCancelled(t *testing.T) {
	var stopped atomic.Bool
	start := func() (func(), error) {
		return func() { stopped.Store(true) }, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	res, err := Measure(ctx, start, WithDuration(time.Hour))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, Result{}, res)
	assert.True(t, stopped.Load())
}

func TestMeasureFinalizesWithoutTicks(t *testing.T) {
	res, err := Measure(context.Background(), noop,
		WithDuration(30*time.Millisecond),
		WithFrames(func() frame.Source { return frame.NewManual() }),
	)
	require.NoError(t, err)
	assert.Zero(t, res.Frames)
	assert.Zero(t, res.FPS)
}

func TestMetricsResult(t *testing.T) {
	start := time.Now()
	m := Metrics{
		StartTime:     start,
		EndTime:       start.Add(2 * time.Second),
		FrameCount:    100,
		MemorySamples: []uint64{10, 20, 30},
	}

	res := m.Result(2 * time.Second)
	assert.Equal(t, 50.0, res.FPS)
	assert.Equal(t, 20.0, res.AverageMemoryUsage)
	assert.Equal(t, 20*time.Millisecond, res.AverageRenderTime)

	assert.Equal(t, Result{Duration: time.Second}, Metrics{}.Result(time.Second))
}

func TestCycleRunsActionsInOrder(t *testing.T) {
	var mu sync.Mutex
	var seen []int
	record := func(i int) func() {
		return func() {
			mu.Lock()
			seen = append(seen, i)
			mu.Unlock()
		}
	}

	teardown, err := Cycle(2*time.Millisecond, record(0), record(1), record(2))()
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) >= 7
	}, 5*time.Second, time.Millisecond)
	teardown()

	mu.Lock()
	got := append([]int(nil), seen...)
	mu.Unlock()
	for i, v := range got {
		assert.Equal(t, i%3, v)
	}

	time.Sleep(10 * time.Millisecond)
	mu.Lock()
	assert.Len(t, seen, len(got), "no actions after teardown")
	mu.Unlock()
}

func TestCycleRejectsBadInput(t *testing.T) {
	_, err := Cycle(time.Millisecond)()
	assert.Error(t, err)

	_, err = Cycle(0, func() {})()
	assert.Error(t, err)

	_, err = Measure(context.Background(), Cycle(time.Millisecond), WithDuration(time.Second))
	assert.ErrorIs(t, err, mandel.ErrHarnessInteraction)
}

type fakeControls struct {
	mu     sync.Mutex
	camera mandel.Camera
}

func (f *fakeControls) SetZoom(fn func(float64) float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.camera.Zoom = fn(f.camera.Zoom)
}

func (f *fakeControls) SetPosition(fn func(mandel.Position) mandel.Position) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.camera.Center = fn(f.camera.Center)
}

func (f *fakeControls) RenderTime() time.Duration { return time.Millisecond }

func TestMandelbrotInteractions(t *testing.T) {
	c := &fakeControls{camera: mandel.DefaultCamera}
	for _, act := range MandelbrotInteractions(c) {
		act()
	}
	assert.InDelta(t, 0.5*1.1*0.9, c.camera.Zoom, 1e-12)
	assert.InDelta(t, -0.4, c.camera.Center.X, 1e-12)
	assert.InDelta(t, 0.1, c.camera.Center.Y, 1e-12)
}

func TestRunMandelbrot(t *testing.T) {
	c := &fakeControls{camera: mandel.DefaultCamera}
	ready := make(chan struct{})
	close(ready)

	res, err := RunMandelbrot(context.Background(), c, ready,
		WithDuration(200*time.Millisecond),
		WithInterval(5*time.Millisecond),
	)
	require.NoError(t, err)
	assert.Greater(t, res.Frames, 0)
	assert.Equal(t, 200*time.Millisecond, res.Duration)

	c.mu.Lock()
	defer c.mu.Unlock()
	assert.NotEqual(t, mandel.DefaultCamera, c.camera)
}

func TestRunMandelbrotWaitsForReady(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := RunMandelbrot(ctx, &fakeControls{}, make(chan struct{}))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRunMandelbrotViewFailure(t *testing.T) {
	failed := make(chan error, 1)
	failed <- errors.New("no frame")

	_, err := RunMandelbrot(context.Background(), &fakeControls{}, make(chan struct{}),
		WithFailure(failed),
		WithDuration(time.Hour),
	)
	assert.ErrorIs(t, err, mandel.ErrHarnessInteraction)
	assert.ErrorContains(t, err, "no frame")
}

func TestTreePatterns(t *testing.T) {
	tree := scenario.NewTree(4, nil)
	patterns := TreePatterns(tree)
	require.Len(t, patterns, 3)

	root := tree.Root()
	patterns[0]()
	assert.Equal(t, 1, tree.Metrics().NodesUpdated, "root only")
	assert.NotSame(t, root, tree.Root())

	patterns[1]()
	assert.Equal(t, tree.Metrics().MaxDepth, tree.Metrics().NodesUpdated, "root to leaf")

	patterns[2]()
	assert.Equal(t, 5, tree.Metrics().Updates, "three more updates")
}

func TestRunTree(t *testing.T) {
	tree := scenario.NewTree(4, nil)
	res, err := RunTree(context.Background(), tree,
		WithDuration(150*time.Millisecond),
		WithInterval(5*time.Millisecond),
	)
	require.NoError(t, err)
	assert.Greater(t, res.Frames, 0)
	// 1 + 1 + 3 updates once every pattern has run
	assert.GreaterOrEqual(t, tree.Metrics().Updates, 5)
}

func TestRunFeed(t *testing.T) {
	cfg := scenario.DefaultFeedConfig()
	cfg.Latency = time.Millisecond
	feed := scenario.NewFeed(cfg, nil)

	_, err := RunFeed(context.Background(), feed,
		WithDuration(150*time.Millisecond),
		WithInterval(5*time.Millisecond),
	)
	require.NoError(t, err)
	assert.Greater(t, feed.Len(), cfg.PageSize)
}
