package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/marben/mandel_bench/bench"
	"github.com/marben/mandel_bench/config"
	"github.com/marben/mandel_bench/frame"
	"github.com/marben/mandel_bench/loop"
	"github.com/marben/mandel_bench/render"
	"github.com/marben/mandel_bench/scenario"
	"github.com/marben/mandel_bench/worker"
)

// row is one scenario in the results table.
type row struct {
	Scenario string
	Result   bench.Result
	Notes    []string
}

func harnessOptions(cfg config.Config, logger *slog.Logger) []bench.Option {
	return []bench.Option{
		bench.WithDuration(cfg.Bench.Duration),
		bench.WithFrames(frame.Rate(cfg.View.FrameRate)),
		bench.WithLogger(logger),
	}
}

// runMandelbrot renders the view headless onto an image surface while the
// harness zooms and pans it.
func runMandelbrot(ctx context.Context, cfg config.Config, snapshot string) (row, error) {
	logger := cfg.Log.Logger(os.Stderr)

	primary, fallback, err := worker.Open(ctx, cfg.Worker, logger)
	if err != nil {
		return row{}, err
	}

	surface := loop.NewImageSurface(cfg.View.Width, cfg.View.Height, cfg.View.HUD)
	opts := []loop.Option{
		loop.WithCamera(cfg.View.Camera()),
		loop.WithFrames(frame.NewTicker(cfg.View.FrameRate)),
		loop.WithLogger(logger),
	}
	if fallback != nil {
		opts = append(opts, loop.WithFallback(fallback))
	}
	view := loop.New(primary, surface, cfg.View.Width, cfg.View.Height, opts...)

	loopCtx, stopLoop := context.WithCancel(ctx)
	defer stopLoop()
	var g errgroup.Group
	g.Go(func() error { return view.Run(loopCtx) })

	hopts := append(harnessOptions(cfg, logger),
		bench.WithInterval(cfg.Bench.Interval),
		bench.WithFailure(view.Failed()),
	)
	res, err := bench.RunMandelbrot(ctx, view, view.Ready(), hopts...)
	stopLoop()
	if werr := g.Wait(); err == nil {
		err = werr
	}
	if err != nil {
		return row{}, err
	}

	if snapshot != "" {
		if err := render.Save(snapshot, surface.Snapshot()); err != nil {
			return row{}, err
		}
		logger.Info("saved last frame", "path", snapshot)
	}

	rendered, skipped := view.Stats()
	cam := view.Camera()
	return row{
		Scenario: bench.ScenarioMandelbrot,
		Result:   res,
		Notes: []string{
			fmt.Sprintf("execution context: %s", cfg.Worker.Mode),
			fmt.Sprintf("last render: %s", view.RenderTime().Round(time.Microsecond)),
			fmt.Sprintf("loop frames: %d rendered, %d skipped", rendered, skipped),
			fmt.Sprintf("final camera: zoom %.4g at (%.4g, %.4g)", cam.Zoom, cam.Center.X, cam.Center.Y),
		},
	}, nil
}

func runTree(ctx context.Context, cfg config.Config) (row, error) {
	logger := cfg.Log.Logger(os.Stderr)
	tree := scenario.NewTree(cfg.Bench.TreeDepth, nil)

	res, err := bench.RunTree(ctx, tree, harnessOptions(cfg, logger)...)
	if err != nil {
		return row{}, err
	}
	m := tree.Metrics()
	return row{
		Scenario: bench.ScenarioTree,
		Result:   res,
		Notes: []string{
			fmt.Sprintf("tree: %d nodes, %d levels", m.TotalNodes, m.MaxDepth),
			fmt.Sprintf("last update: %d nodes in %s", m.NodesUpdated, m.UpdateTime),
		},
	}, nil
}

func runFeed(ctx context.Context, cfg config.Config) (row, error) {
	logger := cfg.Log.Logger(os.Stderr)
	feed := scenario.NewFeed(scenario.DefaultFeedConfig(), nil)

	hopts := append(harnessOptions(cfg, logger), bench.WithInterval(cfg.Bench.Interval))
	res, err := bench.RunFeed(ctx, feed, hopts...)
	if err != nil {
		return row{}, err
	}
	m := feed.Metrics()
	return row{
		Scenario: bench.ScenarioFeed,
		Result:   res,
		Notes: []string{
			fmt.Sprintf("feed: %d items, scrolled to %.0fpx", m.TotalItems, m.ScrollPosition),
			fmt.Sprintf("last page load: %s", m.RenderTime),
		},
	}, nil
}
