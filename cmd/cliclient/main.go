// cliclient renders a single mandelbrot frame and saves it to a file.
// The frame is computed by a remote worker when one is reachable and
// in-process otherwise.

package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	mandel "github.com/marben/mandel_bench"
	"github.com/marben/mandel_bench/config"
	"github.com/marben/mandel_bench/render"
	"github.com/marben/mandel_bench/worker"
)

// main is the entry point for the CLI client.
func main() {
	log.Printf("Starting CLI client...")
	if err := rootCmd().Execute(); err != nil {
		log.Fatalf("FATAL: %v", err)
	}
}

type options struct {
	configPath string
	mode       string
	url        string
	region     string
	width      int
	height     int
	out        string
	timeout    time.Duration
}

func rootCmd() *cobra.Command {
	var o options
	cmd := &cobra.Command{
		Use:   "cliclient",
		Short: "Render one mandelbrot frame to a png, bmp or tiff file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := o.load(cmd)
			if err != nil {
				return err
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), o.timeout)
			defer cancel()
			return run(ctx, cfg, o.out)
		},
	}
	o.register(cmd)
	return cmd
}

func (o *options) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVarP(&o.configPath, "config", "c", "", "YAML config file")
	f.StringVar(&o.mode, "mode", "", "execution context: local, remote or sync (overrides worker.mode)")
	f.StringVar(&o.url, "url", "", "remote worker websocket url (overrides worker.url)")
	f.StringVarP(&o.region, "region", "r", "", "landmark to render, one of "+regionNames()+" (overrides view.region)")
	f.IntVar(&o.width, "width", 0, "image width in pixels (overrides view.width)")
	f.IntVar(&o.height, "height", 0, "image height in pixels (overrides view.height)")
	f.StringVarP(&o.out, "out", "o", "mandel.png", "output file; the extension selects png, bmp or tiff")
	f.DurationVar(&o.timeout, "timeout", time.Minute, "give up after this long")
}

// load reads the config file and overrides the fields whose flags were
// given on the command line.
func (o *options) load(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return config.Config{}, err
	}
	flags := cmd.Flags()
	if flags.Changed("mode") {
		cfg.Worker.Mode = o.mode
	}
	if flags.Changed("url") {
		cfg.Worker.URL = o.url
	}
	if flags.Changed("region") {
		cfg.View.Region = o.region
	}
	if flags.Changed("width") {
		cfg.View.Width = o.width
	}
	if flags.Changed("height") {
		cfg.View.Height = o.height
	}
	return cfg, cfg.Validate()
}

// run computes the configured view and saves it to out.
func run(ctx context.Context, cfg config.Config, out string) error {
	logger := cfg.Log.Logger(os.Stderr)

	// Step 1: Open the execution context; a remote worker that cannot be
	// reached degrades to in-process computation
	log.Printf("Opening %s execution context...", cfg.Worker.Mode)
	computer, _, err := worker.Open(ctx, cfg.Worker, logger)
	if err != nil {
		return fmt.Errorf("open worker: %w", err)
	}
	if c, ok := computer.(io.Closer); ok {
		defer c.Close()
	}

	// Step 2: Compute the frame
	vp := cfg.View.Camera().Viewport(cfg.View.Width, cfg.View.Height)
	log.Printf("Rendering %dx%d frame...", vp.PixelWidth, vp.PixelHeight)
	start := time.Now()
	buf, err := computer.Compute(ctx, vp)
	if err != nil {
		return fmt.Errorf("compute: %w", err)
	}
	log.Printf("Frame rendered in %s", time.Since(start))

	// Step 3: Save the frame
	log.Printf("Saving rendered image to %q...", out)
	if err := render.Save(out, render.Image(vp, buf)); err != nil {
		return err
	}

	log.Printf("Fully rendered image saved to %q", out)
	return nil
}

func regionNames() string {
	names := make([]string, 0, len(mandel.Regions))
	for name := range mandel.Regions {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
