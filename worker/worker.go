// Package worker runs the computation engine in an isolated execution
// context: a goroutine owning its own request queue, or a remote process
// reached over irpc on a websocket. Both return buffers identical to
// calling the engine directly.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	mandel "github.com/marben/mandel_bench"
)

type job struct {
	id    uuid.UUID
	vp    mandel.Viewport
	reply chan result
}

type result struct {
	buf []byte
	err error
}

// Worker is an in-process isolated execution context. A single goroutine
// takes requests off an unbuffered channel, so at most one computation runs
// at a time and responses come back in request order.
type Worker struct {
	svc    service
	logger *slog.Logger

	requests chan job
	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// Start launches a worker goroutine running fn.
func Start(fn mandel.ComputeFunc, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "worker")
	w := &Worker{
		svc:      service{compute: fn, logger: logger, transport: "local"},
		logger:   logger,
		requests: make(chan job),
		done:     make(chan struct{}),
	}
	w.wg.Add(1)
	go w.run()
	return w
}

func (w *Worker) run() {
	defer w.wg.Done()
	for {
		select {
		case j := <-w.requests:
			w.logger.Debug("compute", "job", j.id, "width", j.vp.PixelWidth, "height", j.vp.PixelHeight)
			buf, err := w.svc.Compute(context.Background(), j.vp)
			j.reply <- result{buf: buf, err: err}
		case <-w.done:
			return
		}
	}
}

// Compute posts vp to the worker and waits for its buffer. The buffer is
// handed over without copying. After Close it fails with
// mandel.ErrComputationContext.
func (w *Worker) Compute(ctx context.Context, vp mandel.Viewport) ([]byte, error) {
	if err := vp.Validate(); err != nil {
		return nil, err
	}

	j := job{
		id:    uuid.New(),
		vp:    vp,
		reply: make(chan result, 1),
	}

	select {
	case w.requests <- j:
	case <-w.done:
		return nil, fmt.Errorf("%w: worker terminated", mandel.ErrComputationContext)
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case res := <-j.reply:
		return res.buf, res.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close terminates the worker. A computation already running finishes, but
// its result is dropped if the caller has gone. Close is idempotent.
func (w *Worker) Close() error {
	w.stopOnce.Do(func() {
		close(w.done)
	})
	w.wg.Wait()
	return nil
}

var _ mandel.Computer = (*Worker)(nil)
