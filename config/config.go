// Package config loads the benchmark configuration from YAML.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	mandel "github.com/marben/mandel_bench"
)

// Config is the top-level configuration shared by the binaries.
type Config struct {
	View   ViewConfig   `yaml:"view"`
	Bench  BenchConfig  `yaml:"bench"`
	Worker WorkerConfig `yaml:"worker"`
	Server ServerConfig `yaml:"server"`
	Log    LogConfig    `yaml:"log"`
}

// ViewConfig describes the rendered surface and the initial camera.
type ViewConfig struct {
	Width     int     `yaml:"width"`
	Height    int     `yaml:"height"`
	FrameRate int     `yaml:"frame_rate"`
	Zoom      float64 `yaml:"zoom"`
	CenterX   float64 `yaml:"center_x"`
	CenterY   float64 `yaml:"center_y"`
	// Region, when set, names a landmark from mandel.Regions and overrides
	// zoom and centre.
	Region string `yaml:"region"`
	HUD    bool   `yaml:"hud"`
}

// BenchConfig tunes the measurement harness.
type BenchConfig struct {
	Duration time.Duration `yaml:"duration"`
	Interval time.Duration `yaml:"interval"`
	TreeDepth int          `yaml:"tree_depth"`
}

// WorkerConfig selects the isolated execution context.
type WorkerConfig struct {
	// Mode is "local" (goroutine worker), "remote" (websocket) or "sync"
	// (in-process, on the loop's goroutine).
	Mode string `yaml:"mode"`
	URL  string `yaml:"url"`
	// Tiled fills frames with the concurrent tiled engine.
	Tiled bool `yaml:"tiled"`
}

// ServerConfig configures cmd/server.
type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	StaticDir      string   `yaml:"static_dir"`
	OriginPatterns []string `yaml:"origin_patterns"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Worker modes.
const (
	ModeLocal  = "local"
	ModeRemote = "remote"
	ModeSync   = "sync"
)

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		View: ViewConfig{
			Width:     800,
			Height:    600,
			FrameRate: 60,
			Zoom:      mandel.DefaultCamera.Zoom,
			CenterX:   mandel.DefaultCamera.Center.X,
			CenterY:   mandel.DefaultCamera.Center.Y,
			HUD:       true,
		},
		Bench: BenchConfig{
			Duration:  10 * time.Second,
			Interval:  100 * time.Millisecond,
			TreeDepth: 5,
		},
		Worker: WorkerConfig{
			Mode: ModeLocal,
			URL:  "ws://localhost:8080/ws",
		},
		Server: ServerConfig{
			Addr:      ":8080",
			StaticDir: "./static",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the fields that would otherwise fail deep inside a run.
func (c Config) Validate() error {
	var errs []error
	if c.View.Width <= 0 || c.View.Height <= 0 {
		errs = append(errs, fmt.Errorf("view: size %dx%d must be positive", c.View.Width, c.View.Height))
	} else if c.View.Width > mandel.MaxPixels/c.View.Height {
		errs = append(errs, fmt.Errorf("view: size %dx%d exceeds %d pixels", c.View.Width, c.View.Height, mandel.MaxPixels))
	}
	if c.View.Zoom <= 0 {
		errs = append(errs, fmt.Errorf("view: zoom %v must be positive", c.View.Zoom))
	}
	if c.View.Region != "" {
		if _, ok := mandel.Regions[c.View.Region]; !ok {
			errs = append(errs, fmt.Errorf("view: unknown region %q", c.View.Region))
		}
	}
	if c.Bench.Duration < 0 {
		errs = append(errs, errors.New("bench: duration must not be negative"))
	}
	if c.Bench.Interval <= 0 {
		errs = append(errs, errors.New("bench: interval must be positive"))
	}
	switch c.Worker.Mode {
	case ModeLocal, ModeSync:
	case ModeRemote:
		if c.Worker.URL == "" {
			errs = append(errs, errors.New("worker: remote mode needs a url"))
		}
	default:
		errs = append(errs, fmt.Errorf("worker: unknown mode %q", c.Worker.Mode))
	}
	return errors.Join(errs...)
}

// Camera returns the initial camera of the view.
func (v ViewConfig) Camera() mandel.Camera {
	if r, ok := mandel.Regions[v.Region]; ok {
		return r.Camera(v.Width, v.Height)
	}
	return mandel.Camera{Zoom: v.Zoom, Center: mandel.Position{X: v.CenterX, Y: v.CenterY}}
}
