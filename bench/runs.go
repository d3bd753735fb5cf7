package bench

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	mandel "github.com/marben/mandel_bench"
	"github.com/marben/mandel_bench/scenario"
)

var (
	resultFPS = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "mandel_bench_fps",
		Help: "Frames per second of the last benchmark run",
	}, []string{"scenario"})

	resultMemory = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "mandel_bench_memory_bytes",
		Help: "Average heap usage during the last benchmark run",
	}, []string{"scenario"})

	resultRenderTime = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "mandel_bench_render_time_seconds",
		Help: "Average frame time of the last benchmark run",
	}, []string{"scenario"})
)

// Scenario names as reported in logs and metrics.
const (
	ScenarioMandelbrot = "mandelbrot"
	ScenarioTree       = "component_tree"
	ScenarioFeed       = "infinite_scroll"
)

// MandelbrotDuration is the sampling window of RunMandelbrot.
const MandelbrotDuration = 10 * time.Second

// MandelbrotInteractions zooms in, zooms out, pans right and pans down.
func MandelbrotInteractions(c mandel.Controls) []func() {
	return []func(){
		func() { c.SetZoom(func(z float64) float64 { return z * 1.1 }) },
		func() { c.SetZoom(func(z float64) float64 { return z * 0.9 }) },
		func() {
			c.SetPosition(func(p mandel.Position) mandel.Position { return mandel.Position{X: p.X + 0.1, Y: p.Y} })
		},
		func() {
			c.SetPosition(func(p mandel.Position) mandel.Position { return mandel.Position{X: p.X, Y: p.Y + 0.1} })
		},
	}
}

// RunMandelbrot waits until the view signals ready, then measures it while
// cycling through MandelbrotInteractions. It also reports the view's last
// render time. A view that fails first, see WithFailure, yields
// mandel.ErrHarnessInteraction.
func RunMandelbrot(ctx context.Context, controls mandel.Controls, ready <-chan struct{}, opts ...Option) (Result, error) {
	opts = append([]Option{WithDuration(MandelbrotDuration)}, opts...)
	s := resolve(opts)

	select {
	case <-ready:
	case err := <-s.failed:
		return Result{}, fmt.Errorf("%w: view never rendered: %w", mandel.ErrHarnessInteraction, err)
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}

	res, err := Measure(ctx, Cycle(s.interval, MandelbrotInteractions(controls)...), opts...)
	if err != nil {
		return Result{}, err
	}
	report(s.logger, ScenarioMandelbrot, res, "last_render_time", controls.RenderTime())
	return res, nil
}

// TreeInterval is the pause between tree update patterns.
const TreeInterval = 200 * time.Millisecond

// TreeDuration is the sampling window of RunTree.
const TreeDuration = 10 * time.Second

// TreePatterns updates the root, a random leaf, and three random nodes in
// sequence.
func TreePatterns(tree *scenario.Tree) []func() {
	return []func(){
		func() { tree.UpdateRoot() },
		func() { tree.UpdateRandomLeaf() },
		func() { tree.UpdateRandomPaths(3) },
	}
}

// RunTree measures the component tree while TreePatterns take turns.
func RunTree(ctx context.Context, tree *scenario.Tree, opts ...Option) (Result, error) {
	opts = append([]Option{WithDuration(TreeDuration), WithInterval(TreeInterval)}, opts...)
	s := resolve(opts)

	res, err := Measure(ctx, Cycle(s.interval, TreePatterns(tree)...), opts...)
	if err != nil {
		return Result{}, err
	}
	m := tree.Metrics()
	report(s.logger, ScenarioTree, res,
		"nodes", m.TotalNodes,
		"depth", m.MaxDepth,
		"last_update", m.UpdateTime,
		"last_nodes_updated", m.NodesUpdated,
	)
	return res, nil
}

// FeedStep is how far each scripted scroll moves the feed, in pixels.
const FeedStep = 250

// RunFeed measures the feed while it is scrolled down step by step.
func RunFeed(ctx context.Context, feed *scenario.Feed, opts ...Option) (Result, error) {
	s := resolve(opts)

	scrollCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	scroll := func() {
		if err := feed.ScrollBy(scrollCtx, FeedStep); err != nil && scrollCtx.Err() == nil {
			s.logger.Warn("feed scroll", "err", err)
		}
	}

	res, err := Measure(ctx, Cycle(s.interval, scroll), opts...)
	if err != nil {
		return Result{}, err
	}
	m := feed.Metrics()
	report(s.logger, ScenarioFeed, res,
		"items", m.TotalItems,
		"scroll_position", m.ScrollPosition,
		"last_load", m.RenderTime,
	)
	return res, nil
}

func resolve(opts []Option) settings {
	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

func report(logger *slog.Logger, name string, res Result, extra ...any) {
	resultFPS.WithLabelValues(name).Set(res.FPS)
	resultMemory.WithLabelValues(name).Set(res.AverageMemoryUsage)
	resultRenderTime.WithLabelValues(name).Set(res.AverageRenderTime.Seconds())

	args := append([]any{
		"scenario", name,
		"fps", res.FPS,
		"avg_memory_bytes", res.AverageMemoryUsage,
		"avg_render_time", res.AverageRenderTime,
		"frames", res.Frames,
		"duration", res.Duration,
	}, extra...)
	logger.Info("benchmark results", args...)
}
