package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mandel "github.com/marben/mandel_bench"
	"github.com/marben/mandel_bench/bench"
	"github.com/marben/mandel_bench/config"
)

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.5 KiB", formatBytes(1536))
	assert.Equal(t, "3.0 MiB", formatBytes(3*1024*1024))
}

func TestPrintResults(t *testing.T) {
	var buf bytes.Buffer
	printResults(&buf, row{
		Scenario: bench.ScenarioTree,
		Result:   bench.Result{FPS: 59.94, Frames: 300, Duration: 5 * time.Second},
		Notes:    []string{"tree: 89 nodes, 6 levels"},
	})

	out := buf.String()
	assert.Contains(t, out, bench.ScenarioTree)
	assert.Contains(t, out, "59.9")
	assert.Contains(t, out, "300 in 5s")
	assert.Contains(t, out, "89 nodes")
}

func TestFlagsOverrideConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bench.yaml")
	require.NoError(t, os.WriteFile(path, []byte("worker:\n  mode: remote\n  url: ws://example:1/ws\nbench:\n  tree_depth: 3\n"), 0o600))

	var f flags
	cmd := &cobra.Command{Use: "bench"}
	f.register(cmd)
	require.NoError(t, cmd.ParseFlags([]string{"--config", path, "--mode", "sync", "--duration", "2s"}))

	cfg, err := f.load(cmd)
	require.NoError(t, err)
	assert.Equal(t, config.ModeSync, cfg.Worker.Mode)
	assert.Equal(t, "ws://example:1/ws", cfg.Worker.URL)
	assert.Equal(t, 2*time.Second, cfg.Bench.Duration)
	assert.Equal(t, 3, cfg.Bench.TreeDepth)
	assert.False(t, cfg.Worker.Tiled)

	require.NoError(t, cmd.ParseFlags([]string{"--mode", "quantum"}))
	_, err = f.load(cmd)
	assert.Error(t, err)
}

func TestRunMandelbrotHeadless(t *testing.T) {
	cfg := config.Default()
	cfg.View.Width, cfg.View.Height = 64, 48
	cfg.Worker.Mode = config.ModeSync
	cfg.Bench.Duration = 300 * time.Millisecond
	cfg.Bench.Interval = 10 * time.Millisecond
	cfg.Log.Level = "error"
	snapshot := filepath.Join(t.TempDir(), "last.png")

	r, err := runMandelbrot(context.Background(), cfg, snapshot)
	require.NoError(t, err)
	assert.Equal(t, bench.ScenarioMandelbrot, r.Scenario)
	assert.Greater(t, r.Result.Frames, 0)
	assert.FileExists(t, snapshot)
}

func TestRunMandelbrotUnrenderableView(t *testing.T) {
	cfg := config.Default()
	cfg.View.Width, cfg.View.Height = 64, 48
	cfg.View.Zoom = 1e-310
	cfg.Worker.Mode = config.ModeSync
	cfg.Bench.Duration = time.Hour
	cfg.Log.Level = "error"

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err := runMandelbrot(ctx, cfg, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, mandel.ErrHarnessInteraction)
	assert.ErrorIs(t, err, mandel.ErrInvalidViewport)
	assert.NoError(t, ctx.Err(), "gave up before the timeout")
}
