package worker

import (
	"context"
	"log/slog"
	"net"
	"net/http"

	"github.com/coder/websocket"
)

// Listener implements net.Listener on top of an http endpoint: every
// websocket upgrade it serves is handed to Accept as a binary net.Conn.
type Listener struct {
	ch     chan *websocket.Conn
	ctx    context.Context
	cancel context.CancelFunc
	addr   wsAddr

	originPatterns []string
	logger         *slog.Logger
}

// NewListener returns a Listener reporting addr from Addr. originPatterns
// is passed to websocket.Accept; nil allows same-origin requests only.
// Canceling ctx closes the listener and every connection it accepted.
func NewListener(ctx context.Context, addr string, logger *slog.Logger, originPatterns ...string) *Listener {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(ctx)
	return &Listener{
		ch:             make(chan *websocket.Conn),
		ctx:            ctx,
		cancel:         cancel,
		addr:           wsAddr{addr: addr},
		originPatterns: originPatterns,
		logger:         logger.With("component", "ws_listener"),
	}
}

// ServeHTTP upgrades the request and waits for Accept to take the
// connection.
func (l *Listener) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: l.originPatterns,
	})
	if err != nil {
		l.logger.Warn("websocket accept", "remote", r.RemoteAddr, "err", err)
		return
	}

	select {
	case l.ch <- c:
	case <-l.ctx.Done():
		c.Close(websocket.StatusGoingAway, "listener closed")
	case <-r.Context().Done():
		c.CloseNow()
	}
}

func (l *Listener) Accept() (net.Conn, error) {
	select {
	case c := <-l.ch:
		return websocket.NetConn(l.ctx, c, websocket.MessageBinary), nil
	case <-l.ctx.Done():
		return nil, net.ErrClosed
	}
}

func (l *Listener) Addr() net.Addr {
	return l.addr
}

func (l *Listener) Close() error {
	l.cancel()
	return nil
}

// wsAddr implements net.Addr
type wsAddr struct {
	addr string
}

func (a wsAddr) Network() string {
	return "ws"
}

func (a wsAddr) String() string {
	return a.addr
}

var (
	_ net.Listener = (*Listener)(nil)
	_ http.Handler = (*Listener)(nil)
)
