package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mandel "github.com/marben/mandel_bench"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bench.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, mandel.DefaultCamera, cfg.View.Camera())
}

func TestLoadOverrides(t *testing.T) {
	path := writeConfig(t, `
view:
  width: 320
  height: 200
  region: seahorse
bench:
  duration: 3s
  interval: 50ms
worker:
  mode: remote
  url: ws://example:9000/ws
log:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 320, cfg.View.Width)
	assert.Equal(t, 200, cfg.View.Height)
	assert.Equal(t, 60, cfg.View.FrameRate, "unset fields keep defaults")
	assert.Equal(t, 3*time.Second, cfg.Bench.Duration)
	assert.Equal(t, 50*time.Millisecond, cfg.Bench.Interval)
	assert.Equal(t, ModeRemote, cfg.Worker.Mode)
	assert.Equal(t, "ws://example:9000/ws", cfg.Worker.URL)
	assert.Equal(t, mandel.SeahorseValley.Camera(320, 200), cfg.View.Camera())
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"bad size":     "view:\n  width: 0\n",
		"too large":    "view:\n  width: 65536\n  height: 65536\n",
		"bad region":   "view:\n  region: atlantis\n",
		"bad mode":     "worker:\n  mode: gpu\n",
		"no url":       "worker:\n  mode: remote\n  url: \"\"\n",
		"bad interval": "bench:\n  interval: 0s\n",
		"bad yaml":     "view: [",
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := LogConfig{Level: "warn", Format: "json"}.Logger(&buf)

	logger.Info("hidden")
	logger.Warn("shown", "k", 1)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
}
