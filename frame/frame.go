// Package frame provides the per-frame scheduling primitive shared by the
// rendering loop and the measurement harness.
package frame

import "time"

// DefaultRate is the display refresh cadence in frames per second.
const DefaultRate = 60

// Source delivers one tick per display frame.
type Source interface {
	C() <-chan time.Time
	Stop()
}

// NewSourceFunc builds a fresh Source; each run owns its own.
type NewSourceFunc func() Source

// Ticker is a Source driven by a time.Ticker at a fixed rate.
type Ticker struct {
	t *time.Ticker
}

// NewTicker ticks rate times per second. rate <= 0 selects DefaultRate.
func NewTicker(rate int) *Ticker {
	if rate <= 0 {
		rate = DefaultRate
	}
	return &Ticker{t: time.NewTicker(time.Second / time.Duration(rate))}
}

func (t *Ticker) C() <-chan time.Time { return t.t.C }

func (t *Ticker) Stop() { t.t.Stop() }

// Rate returns a NewSourceFunc producing Tickers at rate.
func Rate(rate int) NewSourceFunc {
	return func() Source { return NewTicker(rate) }
}

// Manual is a Source driven by the caller, for tests and for hosts that
// already own a vsync callback.
type Manual struct {
	ch chan time.Time
}

func NewManual() *Manual {
	return &Manual{ch: make(chan time.Time)}
}

func (m *Manual) C() <-chan time.Time { return m.ch }

// Tick delivers one frame at now, blocking until it is received.
func (m *Manual) Tick(now time.Time) { m.ch <- now }

func (m *Manual) Stop() {}

// TryTick delivers a frame only if the consumer is waiting for one and
// reports whether it did.
func (m *Manual) TryTick(now time.Time) bool {
	select {
	case m.ch <- now:
		return true
	default:
		return false
	}
}
