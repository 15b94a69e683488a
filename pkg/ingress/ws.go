package ingress

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"

	"github.com/mileusna/useragent"
	"github.com/rs/zerolog/log"
	"nhooyr.io/websocket"
)

type wsAddr string

func (a wsAddr) Network() string {
	return "websocket"
}

func (a wsAddr) String() string {
	return string(a)
}

// websocket.NetConn does not know who is on the other end.
type wsConn struct {
	net.Conn
	remote net.Addr
}

func (c *wsConn) RemoteAddr() net.Addr {
	return c.remote
}

// WSListener accepts relay clients over WebSocket. Each binary message
// carries protocol bytes; the connection is exposed as a net.Conn.
type WSListener struct {
	listener net.Listener
	server   *http.Server
	conns    chan net.Conn

	ctx       context.Context
	cancel    context.CancelFunc
	closeOnce sync.Once
}

func ListenWS(address string) (*WSListener, error) {
	listener, err := net.Listen("tcp", address)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	w := &WSListener{
		listener: listener,
		conns:    make(chan net.Conn),
		ctx:      ctx,
		cancel:   cancel,
	}
	w.server = &http.Server{Handler: w}

	go func() {
		err := w.server.Serve(listener)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("websocket ingress stopped")
		}
		w.Close()
	}()

	return w, nil
}

func (w *WSListener) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	c, err := websocket.Accept(rw, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		log.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("websocket upgrade failed")
		return
	}

	agent := useragent.Parse(r.UserAgent())
	log.Debug().
		Str("remote", r.RemoteAddr).
		Str("agent", agent.Name).
		Str("os", agent.OS).
		Msg("websocket client connected")

	conn := &wsConn{
		Conn:   websocket.NetConn(w.ctx, c, websocket.MessageBinary),
		remote: wsAddr(r.RemoteAddr),
	}

	// Held here until the relay is ready for another player
	select {
	case w.conns <- conn:
	case <-w.ctx.Done():
		c.Close(websocket.StatusGoingAway, "relay shutting down")
	}
}

func (w *WSListener) Accept() (net.Conn, error) {
	select {
	case conn := <-w.conns:
		return conn, nil
	case <-w.ctx.Done():
		return nil, net.ErrClosed
	}
}

func (w *WSListener) Close() error {
	var err error
	w.closeOnce.Do(func() {
		w.cancel()
		err = w.server.Close()
	})
	return err
}

func (w *WSListener) Addr() net.Addr {
	return w.listener.Addr()
}

func DialWS(ctx context.Context, address string) (net.Conn, error) {
	c, _, err := websocket.Dial(ctx, fmt.Sprintf("ws://%s/", address), &websocket.DialOptions{
		HTTPHeader: http.Header{
			"User-Agent": []string{"raingame"},
		},
	})
	if err != nil {
		return nil, err
	}

	return &wsConn{
		Conn:   websocket.NetConn(context.Background(), c, websocket.MessageBinary),
		remote: wsAddr(address),
	}, nil
}
