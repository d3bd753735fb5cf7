// Package bench measures interactive workloads: it runs a scripted
// interaction while sampling frame arrivals and memory for a fixed
// duration, then reduces the samples to a Result.
package bench

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	mandel "github.com/marben/mandel_bench"
	"github.com/marben/mandel_bench/frame"
)

// DefaultDuration is the sampling window of Measure.
const DefaultDuration = 5 * time.Second

// Interaction starts a workload and returns the func that stops it.
type Interaction func() (teardown func(), err error)

// Metrics are the raw samples of one run.
type Metrics struct {
	StartTime  time.Time
	EndTime    time.Time
	FrameCount int
	// MemorySamples holds one heap reading per sampled frame.
	MemorySamples []uint64
	// RenderTimeSamples holds the interval preceding each sampled frame.
	RenderTimeSamples []time.Duration
}

// Result summarizes a run.
type Result struct {
	FPS                float64
	AverageMemoryUsage float64
	AverageRenderTime  time.Duration
	// InteractionLatency is reserved and always zero.
	InteractionLatency time.Duration

	Frames   int
	Duration time.Duration
}

// Result reduces m over the configured duration. Rates are zero when no
// frame was sampled.
func (m Metrics) Result(duration time.Duration) Result {
	res := Result{Frames: m.FrameCount, Duration: duration}
	if m.FrameCount > 0 && duration > 0 {
		res.FPS = float64(m.FrameCount) / duration.Seconds()
		res.AverageRenderTime = m.EndTime.Sub(m.StartTime) / time.Duration(m.FrameCount)
	}
	if len(m.MemorySamples) > 0 {
		var sum float64
		for _, s := range m.MemorySamples {
			sum += float64(s)
		}
		res.AverageMemoryUsage = sum / float64(len(m.MemorySamples))
	}
	return res
}

type settings struct {
	duration time.Duration
	interval time.Duration
	frames   frame.NewSourceFunc
	memory   MemorySampler
	logger   *slog.Logger
	failed   <-chan error
}

func defaultSettings() settings {
	return settings{
		duration: DefaultDuration,
		interval: DefaultInterval,
		frames:   frame.Rate(frame.DefaultRate),
		memory:   HeapInUse,
		logger:   slog.Default(),
	}
}

type Option func(*settings)

// WithDuration sets the sampling window. Negative values count as zero.
func WithDuration(d time.Duration) Option {
	return func(s *settings) { s.duration = max(d, 0) }
}

// WithInterval sets the pause between scripted interactions.
func WithInterval(d time.Duration) Option {
	return func(s *settings) { s.interval = d }
}

// WithFrames sets the per-frame scheduling primitive.
func WithFrames(fn frame.NewSourceFunc) Option {
	return func(s *settings) { s.frames = fn }
}

// WithMemorySampler replaces the heap reader; nil disables memory sampling.
func WithMemorySampler(m MemorySampler) Option {
	return func(s *settings) { s.memory = m }
}

// WithFailure makes RunMandelbrot give up when failed delivers an error
// before the view is ready.
func WithFailure(failed <-chan error) Option {
	return func(s *settings) { s.failed = failed }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// Measure starts the interaction, samples frames and memory until the
// duration has elapsed, stops the interaction and reduces the samples.
//
// Elapsed time is checked on every frame tick; a timer finalizes the run
// as well in case ticks stop arriving. If start fails or panics the error
// wraps mandel.ErrHarnessInteraction and no Result is produced. Cancelling
// ctx aborts the run the same way, returning ctx.Err().
func Measure(ctx context.Context, start Interaction, opts ...Option) (Result, error) {
	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}

	m := Metrics{StartTime: time.Now()}

	teardown, err := startInteraction(start)
	if err != nil {
		return Result{}, err
	}
	defer teardown()

	frames := s.frames()
	defer frames.Stop()
	timer := time.NewTimer(s.duration)
	defer timer.Stop()

	last := m.StartTime
sampling:
	for {
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		case <-frames.C():
			now := time.Now()
			if now.Sub(m.StartTime) >= s.duration {
				m.EndTime = now
				break sampling
			}
			m.FrameCount++
			m.RenderTimeSamples = append(m.RenderTimeSamples, now.Sub(last))
			last = now
			if s.memory != nil {
				if v, ok := s.memory(); ok {
					m.MemorySamples = append(m.MemorySamples, v)
				}
			}
		case <-timer.C:
			m.EndTime = time.Now()
			break sampling
		}
	}

	return m.Result(s.duration), nil
}

func startInteraction(start Interaction) (teardown func(), err error) {
	defer func() {
		if p := recover(); p != nil {
			teardown, err = nil, fmt.Errorf("%w: panic: %v", mandel.ErrHarnessInteraction, p)
		}
	}()

	teardown, err = start()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", mandel.ErrHarnessInteraction, err)
	}
	if teardown == nil {
		teardown = func() {}
	}
	return teardown, nil
}
