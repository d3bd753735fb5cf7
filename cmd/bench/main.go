// bench measures frame rate, heap usage and frame time of the mandelbrot
// view and of the two synthetic UI scenarios.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/marben/mandel_bench/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd().ExecuteContext(ctx); err != nil {
		log.Fatalf("run: %+v", err)
	}
}

// flags shared by every subcommand. Each one overrides its config field
// only when given on the command line.
type flags struct {
	configPath string
	duration   time.Duration
	mode       string
	url        string
	tiled      bool
	snapshot   string
}

func rootCmd() *cobra.Command {
	var f flags
	root := &cobra.Command{
		Use:          "bench",
		Short:        "Benchmark the mandelbrot view and synthetic UI scenarios",
		SilenceUsage: true,
	}
	f.register(root)

	mandelbrot := &cobra.Command{
		Use:   "mandelbrot",
		Short: "Measure the rendering loop while zooming and panning",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.load(cmd)
			if err != nil {
				return err
			}
			res, err := runMandelbrot(cmd.Context(), cfg, f.snapshot)
			if err != nil {
				return err
			}
			printResults(cmd.OutOrStdout(), res)
			return nil
		},
	}
	mandelbrot.Flags().StringVar(&f.snapshot, "snapshot", "", "save the last displayed frame to this file (.png, .bmp, .tiff)")

	tree := &cobra.Command{
		Use:   "tree",
		Short: "Measure the component tree under random updates",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.load(cmd)
			if err != nil {
				return err
			}
			res, err := runTree(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			printResults(cmd.OutOrStdout(), res)
			return nil
		},
	}

	feed := &cobra.Command{
		Use:   "scroll",
		Short: "Measure the infinite-scroll feed while it is scrolled",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.load(cmd)
			if err != nil {
				return err
			}
			res, err := runFeed(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			printResults(cmd.OutOrStdout(), res)
			return nil
		},
	}

	all := &cobra.Command{
		Use:   "all",
		Short: "Run every scenario one after another",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := f.load(cmd)
			if err != nil {
				return err
			}
			m, err := runMandelbrot(cmd.Context(), cfg, "")
			if err != nil {
				return err
			}
			t, err := runTree(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			s, err := runFeed(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			printResults(cmd.OutOrStdout(), m, t, s)
			return nil
		},
	}

	root.AddCommand(mandelbrot, tree, feed, all)
	return root
}

func (f *flags) register(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.StringVarP(&f.configPath, "config", "c", "", "YAML config file")
	pf.DurationVarP(&f.duration, "duration", "d", 0, "sampling window (overrides bench.duration)")
	pf.StringVar(&f.mode, "mode", "", "execution context: local, remote or sync (overrides worker.mode)")
	pf.StringVar(&f.url, "url", "", "remote worker websocket url (overrides worker.url)")
	pf.BoolVar(&f.tiled, "tiled", false, "compute frames with the tiled engine")
}

func (f *flags) load(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return config.Config{}, err
	}
	flags := cmd.Flags()
	if flags.Changed("duration") {
		cfg.Bench.Duration = f.duration
	}
	if flags.Changed("mode") {
		cfg.Worker.Mode = f.mode
	}
	if flags.Changed("url") {
		cfg.Worker.URL = f.url
	}
	if flags.Changed("tiled") {
		cfg.Worker.Tiled = f.tiled
	}
	return cfg, cfg.Validate()
}
