package worker

import (
	"context"
	"fmt"
	"log/slog"

	mandel "github.com/marben/mandel_bench"
	"github.com/marben/mandel_bench/config"
	"github.com/marben/mandel_bench/render"
)

// Open builds the computer selected by cfg together with the in-process
// fallback that produces identical buffers. When a remote worker cannot be
// reached the fallback is returned as the primary computer.
func Open(ctx context.Context, cfg config.WorkerConfig, logger *slog.Logger) (primary, fallback mandel.Computer, err error) {
	if logger == nil {
		logger = slog.Default()
	}

	engine := render.Engine(cfg.Tiled)
	fallback = engine
	if cfg.Tiled {
		fallback = render.Tiled{}
	}

	switch cfg.Mode {
	case config.ModeSync:
		return fallback, nil, nil
	case config.ModeLocal, "":
		return Start(engine, logger), fallback, nil
	case config.ModeRemote:
		remote, err := Dial(ctx, cfg.URL)
		if err != nil {
			logger.Warn("remote worker unavailable, computing in-process", "url", cfg.URL, "err", err)
			return fallback, nil, nil
		}
		logger.Info("connected to remote worker", "url", cfg.URL)
		return remote, fallback, nil
	default:
		return nil, nil, fmt.Errorf("unknown worker mode %q", cfg.Mode)
	}
}
