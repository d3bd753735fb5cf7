// server is the remote execution context for mandelbrot frames.
// Clients (bench, viewer, cliclient, webclient) call mandel.Computer over
// irpc on a websocket and receive the computed RGBA buffers back.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/marben/mandel_bench/config"
	"github.com/marben/mandel_bench/render"
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
		addr       string
		tiled      bool
	)
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Serve mandelbrot computations over websocket",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("tiled") {
				cfg.Worker.Tiled = tiled
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	cmd.Flags().BoolVar(&tiled, "tiled", false, "compute frames with the tiled engine")
	return cmd
}

func run(ctx context.Context, cfg config.Config) error {
	logger := cfg.Log.Logger(os.Stderr)

	// irpc server backed by the engine; every websocket client gets its own endpoint
	irpcServer := worker.NewServer(render.Engine(cfg.Worker.Tiled), logger)
	// the listener is closed by irpcServer.Close, not by ctx
	websocketListener, httpServer := webServer(context.Background(), cfg, logger)

	g, gctx := errgroup.WithContext(ctx)
	// httpServer provides index.html, main.wasm along with websocket endpoint
	g.Go(func() error {
		log.Printf("listening on http://localhost%s", cfg.Server.Addr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("httpServer: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := irpcServer.Serve(websocketListener); err != nil {
			return fmt.Errorf("server.Serve ws: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Printf("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := irpcServer.Close(); err != nil {
			logger.Warn("closing irpc server", "err", err)
		}
		return httpServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
