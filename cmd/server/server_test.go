package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mandel "github.com/marben/mandel_bench"
	"github.com/marben/mandel_bench/config"
	"github.com/marben/mandel_bench/render"
	"github.com/marben/mandel_bench/worker"
)

func TestWebServerRoutes(t *testing.T) {
	cfg := config.Default()
	cfg.Log.Level = "error"
	cfg.Server.StaticDir = t.TempDir()
	logger := cfg.Log.Logger(io.Discard)

	l, httpServer := webServer(context.Background(), cfg, logger)
	irpcServer := worker.NewServer(render.Compute, logger)
	go irpcServer.Serve(l)
	defer irpcServer.Close()

	srv := httptest.NewServer(httpServer.Handler)
	defer srv.Close()

	remote, err := worker.Dial(context.Background(), "ws"+strings.TrimPrefix(srv.URL, "http")+"/ws")
	require.NoError(t, err)
	defer remote.Close()

	vp := mandel.ValleyOfTheDragon.Camera(32, 24).Viewport(32, 24)
	want, err := render.Compute(vp)
	require.NoError(t, err)
	got, err := remote.Compute(context.Background(), vp)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "mandel_worker_compute_total")
}
