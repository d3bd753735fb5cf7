package mandel

import (
	"context"
	"errors"
)

//go:generate go run github.com/marben/irpc/cmd/irpc

var (
	// ErrInvalidViewport is returned before any allocation when a Viewport
	// has non-positive dimensions, too many pixels, or a non-finite scale
	// or offset.
	ErrInvalidViewport = errors.New("invalid viewport")

	// ErrComputationContext marks failures of an isolated execution context:
	// it could not start, it was terminated, or it failed internally.
	ErrComputationContext = errors.New("computation context error")

	// ErrHarnessInteraction marks a benchmark interaction that failed to start.
	ErrHarnessInteraction = errors.New("harness interaction error")
)

// Computer produces the RGBA buffer for a viewport. Remote workers serve
// it over irpc, see api_irpc.go.
type Computer interface {
	Compute(ctx context.Context, vp Viewport) ([]byte, error)
}

// ComputeFunc adapts a pure engine function to Computer.
type ComputeFunc func(vp Viewport) ([]byte, error)

func (f ComputeFunc) Compute(ctx context.Context, vp Viewport) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f(vp)
}
