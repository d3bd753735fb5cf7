// viewer is a desktop window onto the mandelbrot rendering loop. Scroll to
// zoom, drag or use the arrow keys to pan. With --bench it measures itself
// once the first frame is shown.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/spf13/cobra"

	"github.com/marben/mandel_bench/bench"
	"github.com/marben/mandel_bench/config"
	"github.com/marben/mandel_bench/frame"
	"github.com/marben/mandel_bench/loop"
	"github.com/marben/mandel_bench/worker"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		log.Fatalf("run: %+v", err)
	}
}

func rootCmd() *cobra.Command {
	var (
		configPath string
		mode       string
		measure    bool
	)
	cmd := &cobra.Command{
		Use:   "viewer",
		Short: "Explore the mandelbrot set in a desktop window",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("mode") {
				cfg.Worker.Mode = mode
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cmd.Context(), cfg, measure)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	cmd.Flags().StringVar(&mode, "mode", "", "execution context: local, remote or sync (overrides worker.mode)")
	cmd.Flags().BoolVar(&measure, "bench", false, "run the mandelbrot benchmark once the view is ready")
	return cmd
}

func run(ctx context.Context, cfg config.Config, measure bool) error {
	logger := cfg.Log.Logger(os.Stderr)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	primary, fallback, err := worker.Open(ctx, cfg.Worker, logger)
	if err != nil {
		return err
	}

	a := app.NewWithID("com.github.marben.mandel_bench.viewer")
	w := a.NewWindow("Mandelbrot")
	w.Resize(fyne.NewSize(float32(cfg.View.Width), float32(cfg.View.Height)))

	status := widget.NewLabel("Rendering...")
	view := newMandelView(cfg.View.Width, cfg.View.Height, status)

	opts := []loop.Option{
		loop.WithCamera(cfg.View.Camera()),
		loop.WithFrames(frame.NewTicker(cfg.View.FrameRate)),
		loop.WithLogger(logger),
	}
	if fallback != nil {
		opts = append(opts, loop.WithFallback(fallback))
	}
	l := loop.New(primary, view, cfg.View.Width, cfg.View.Height, opts...)
	view.steer(l)

	w.SetContent(container.NewBorder(nil, status, nil, nil, view))
	w.Canvas().SetOnTypedKey(view.typedKey)
	w.SetOnClosed(cancel)

	loopDone := make(chan error, 1)
	go func() { loopDone <- l.Run(ctx) }()

	if measure {
		go func() {
			res, err := bench.RunMandelbrot(ctx, l, l.Ready(),
				bench.WithDuration(cfg.Bench.Duration),
				bench.WithInterval(cfg.Bench.Interval),
				bench.WithFrames(frame.Rate(cfg.View.FrameRate)),
				bench.WithFailure(l.Failed()),
				bench.WithLogger(logger),
			)
			if err != nil {
				if ctx.Err() == nil {
					logger.Error("benchmark", "err", err)
				}
				return
			}
			text := fmt.Sprintf("%.1f fps, avg render %s, avg heap %.1f MiB",
				res.FPS, res.AverageRenderTime, res.AverageMemoryUsage/(1<<20))
			fyne.Do(func() { w.SetTitle("Mandelbrot: " + text) })
		}()
	}

	w.ShowAndRun()
	cancel()
	return <-loopDone
}
