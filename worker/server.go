package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"

	"github.com/google/uuid"
	"github.com/marben/irpc"

	mandel "github.com/marben/mandel_bench"
)

// Server answers mandel.Computer calls from remote clients over irpc.
// One Server can serve several listeners at once.
type Server struct {
	rpc    *irpc.Server
	logger *slog.Logger
}

// NewServer returns a Server computing with fn.
func NewServer(fn mandel.ComputeFunc, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "worker_server")

	svc := mandel.NewComputerIrpcService(service{compute: fn, logger: logger, transport: "serve"})
	s := &Server{logger: logger}
	s.rpc = irpc.NewServer(
		irpc.WithServices(svc),
		irpc.WithOnConnect(func(ep *irpc.Endpoint) {
			log := logger.With("conn", uuid.New(), "remote", ep.RemoteAddr())
			log.Info("worker client connected")
			<-ep.Context().Done()
			log.Info("worker client disconnected", "cause", context.Cause(ep.Context()))
		}),
	)
	return s
}

// Serve accepts connections on l until the server is closed. It returns
// nil after Close.
func (s *Server) Serve(l net.Listener) error {
	s.logger.Info("serving", "network", l.Addr().Network(), "addr", l.Addr())
	if err := s.rpc.Serve(l); !errors.Is(err, irpc.ErrServerClosed) {
		return err
	}
	return nil
}

// Close closes every listener and client connection.
func (s *Server) Close() error {
	return s.rpc.Close()
}

// service runs an engine function on behalf of a caller. It rejects
// invalid viewports before computing and reports a panic in the engine
// as mandel.ErrComputationContext.
type service struct {
	compute   mandel.ComputeFunc
	logger    *slog.Logger
	transport string
}

func (s service) Compute(ctx context.Context, vp mandel.Viewport) (buf []byte, err error) {
	if err := vp.Validate(); err != nil {
		s.logger.Warn("rejected viewport", "err", err)
		return nil, err
	}

	ctx, finish := observe(ctx, s.transport, vp)
	defer func() { finish(err) }()
	defer func() {
		if p := recover(); p != nil {
			buf, err = nil, fmt.Errorf("%w: panic: %v", mandel.ErrComputationContext, p)
			s.logger.Error("compute panicked", "panic", p)
		}
	}()

	buf, err = s.compute.Compute(ctx, vp)
	switch {
	case err == nil:
		return buf, nil
	case errors.Is(err, mandel.ErrInvalidViewport), errors.Is(err, mandel.ErrComputationContext), ctx.Err() != nil:
	default:
		err = fmt.Errorf("%w: %w", mandel.ErrComputationContext, err)
	}
	s.logger.Warn("compute failed", "err", err)
	return nil, err
}

var _ mandel.Computer = service{}
