package relay

import (
	"context"
	"errors"
	"net"

	"github.com/cfoust/raingame/pkg/ingress"
	P "github.com/cfoust/raingame/pkg/protocol"
	"github.com/cfoust/raingame/pkg/utils"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Exit records why a handler stopped.
type Exit uint8

const (
	ExitNone Exit = iota
	// Our client sent GameOver and it was passed on
	ExitLocalGameOver
	// The opponent's GameOver was delivered to our client
	ExitPeerGameOver
	// The opponent's handler went away
	ExitPeerClosed
	// Reading from or writing to our client failed
	ExitConnection
	// Our client sent a byte that is not a message
	ExitProtocol
	ExitShutdown
)

func (e Exit) String() string {
	switch e {
	case ExitNone:
		return "none"
	case ExitLocalGameOver:
		return "local-game-over"
	case ExitPeerGameOver:
		return "peer-game-over"
	case ExitPeerClosed:
		return "peer-closed"
	case ExitConnection:
		return "connection"
	case ExitProtocol:
		return "protocol"
	case ExitShutdown:
		return "shutdown"
	}
	return "unknown"
}

// A handler owns one client's socket for the duration of a match. inbound
// is written by the opponent's handler; outbound is read by it.
type handler struct {
	conn     net.Conn
	inbound  *utils.Queue[P.Message]
	outbound *utils.Queue[P.Message]
	limiter  *rate.Limiter
	logger   zerolog.Logger

	relayed int
	exit    Exit
}

func (h *handler) run(ctx context.Context) {
	done := make(chan struct{})
	defer h.teardown(ctx, done)

	if err := P.WriteMessage(h.conn, P.GameStart); err != nil {
		h.logger.Warn().Err(err).Msg("failed to send GameStart")
		h.exit = ExitConnection
		return
	}
	h.logger.Debug().Msg("sent GameStart")

	reads := P.Reads(h.conn, done)
	for h.exit == ExitNone {
		select {
		case read := <-reads:
			h.fromClient(ctx, read)
		case message, ok := <-h.inbound.Receive():
			if !ok {
				h.logger.Info().Msg("opponent handler closed")
				h.exit = ExitPeerClosed
				continue
			}
			h.toClient(message)
		}
	}
}

// fromClient relays a message from our client to the opponent's handler.
func (h *handler) fromClient(ctx context.Context, read P.Read) {
	if read.Err != nil {
		if errors.Is(read.Err, P.ErrUnknownMessage) {
			h.logger.Warn().Err(read.Err).Msg("protocol violation")
			h.exit = ExitProtocol
			return
		}
		h.logger.Info().Err(read.Err).Msg("read from client failed")
		h.exit = ExitConnection
		return
	}

	message := read.Message
	if message != P.Attacked && message != P.GameOver {
		h.logger.Debug().Stringer("message", message).Msg("ignoring message from client")
		return
	}

	if h.limiter != nil {
		if err := h.limiter.Wait(ctx); err != nil {
			h.exit = ExitShutdown
			return
		}
	}

	h.logger.Debug().Stringer("message", message).Msg("relaying to opponent")
	if err := h.outbound.Send(message); err != nil {
		h.logger.Info().Stringer("message", message).Msg("opponent handler is gone")
		h.exit = ExitPeerClosed
		return
	}
	h.relayed++

	if message == P.GameOver {
		h.exit = ExitLocalGameOver
	}
}

// toClient delivers a message from the opponent's handler to our client.
func (h *handler) toClient(message P.Message) {
	if message != P.Attacked && message != P.GameOver {
		return
	}

	h.logger.Debug().Stringer("message", message).Msg("got message from opponent")
	if err := P.WriteMessage(h.conn, message); err != nil {
		h.logger.Info().Err(err).Msg("write to client failed")
		h.exit = ExitConnection
		return
	}

	if message == P.GameOver {
		h.exit = ExitPeerGameOver
	}
}

func (h *handler) teardown(ctx context.Context, done chan struct{}) {
	close(done)

	h.inbound.Close()
	drained := h.inbound.Drain()
	h.outbound.Finish()
	ingress.Shutdown(h.conn)

	if h.exit == ExitConnection && ctx.Err() != nil {
		h.exit = ExitShutdown
	}

	h.logger.Info().
		Stringer("exit", h.exit).
		Int("relayed", h.relayed).
		Int("drained", drained).
		Msg("handler closed")
}
