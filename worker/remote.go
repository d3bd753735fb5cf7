package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/coder/websocket"
	"github.com/marben/irpc"

	mandel "github.com/marben/mandel_bench"
)

// MaxMessageSize bounds a single websocket message: the largest buffer a
// valid viewport produces plus framing.
const MaxMessageSize = mandel.MaxPixels*4 + 1024

// Remote is a worker in another process, reached with irpc over a
// websocket.
type Remote struct {
	ep     *irpc.Endpoint
	client *mandel.ComputerIrpcClient
}

// Dial connects to a worker server, e.g. "ws://localhost:8080/ws".
func Dial(ctx context.Context, url string) (*Remote, error) {
	c, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %w", mandel.ErrComputationContext, url, err)
	}
	c.SetReadLimit(MaxMessageSize)

	// the connection outlives ctx; Close ends it
	conn := websocket.NetConn(context.WithoutCancel(ctx), c, websocket.MessageBinary)
	ep := irpc.NewEndpoint(conn,
		irpc.WithLocalAddress(conn.LocalAddr()),
		irpc.WithRemoteAddress(conn.RemoteAddr()),
	)
	client, err := mandel.NewComputerIrpcClient(ep)
	if err != nil {
		ep.Close()
		return nil, fmt.Errorf("%w: %w", mandel.ErrComputationContext, err)
	}
	return &Remote{ep: ep, client: client}, nil
}

// Compute validates vp locally, so ErrInvalidViewport keeps its identity.
// Every other failure, including errors reported by the server, wraps
// mandel.ErrComputationContext.
func (r *Remote) Compute(ctx context.Context, vp mandel.Viewport) (buf []byte, err error) {
	if err := vp.Validate(); err != nil {
		return nil, err
	}

	ctx, finish := observe(ctx, "remote", vp)
	defer func() { finish(err) }()

	buf, err = r.client.Compute(ctx, vp)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", mandel.ErrComputationContext, err)
	}
	if len(buf) != vp.BufferLen() {
		return nil, fmt.Errorf("%w: result of %d bytes, want %d", mandel.ErrComputationContext, len(buf), vp.BufferLen())
	}
	return buf, nil
}

// Close ends the connection. It is idempotent.
func (r *Remote) Close() error {
	err := r.ep.Close()
	if errors.Is(err, irpc.ErrEndpointClosed) || errors.Is(err, irpc.ErrEndpointClosedByCounterpart) {
		return nil
	}
	return err
}

var _ mandel.Computer = (*Remote)(nil)
