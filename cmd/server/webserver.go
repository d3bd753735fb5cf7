package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/marben/mandel_bench/config"
	"github.com/marben/mandel_bench/worker"
)

// webServer creates server serving files in the static folder (index.html,
// main.wasm) and prometheus metrics. It returns the listener accepting
// websocket connections on /ws; the irpc server serves them.
func webServer(ctx context.Context, cfg config.Config, logger *slog.Logger) (*worker.Listener, *http.Server) {
	l := worker.NewListener(ctx, cfg.Server.Addr+"/ws", logger, cfg.Server.OriginPatterns...)
	mux := http.NewServeMux()
	mux.Handle("/ws", l)
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/", http.FileServer(http.Dir(cfg.Server.StaticDir)))

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return l, srv
}
