package client

import (
	"net"

	"github.com/cfoust/raingame/pkg/ingress"
	P "github.com/cfoust/raingame/pkg/protocol"
	"github.com/cfoust/raingame/pkg/utils"

	"github.com/rs/zerolog"
)

type ManagerExit uint8

const (
	ManagerPeerGameOver ManagerExit = iota
	ManagerLocalGameOver
	ManagerConnection
	ManagerEngineClosed
)

func (e ManagerExit) String() string {
	switch e {
	case ManagerPeerGameOver:
		return "peer-game-over"
	case ManagerLocalGameOver:
		return "local-game-over"
	case ManagerConnection:
		return "connection"
	case ManagerEngineClosed:
		return "engine-closed"
	}
	return "unknown"
}

// Manager owns the socket for the duration of a match and moves messages
// between it and the engine loop.
type Manager struct {
	conn       net.Conn
	fromEngine *utils.Queue[P.Message]
	toEngine   *utils.Queue[P.Message]
	logger     zerolog.Logger
}

func NewManager(
	conn net.Conn,
	fromEngine, toEngine *utils.Queue[P.Message],
	logger zerolog.Logger,
) *Manager {
	return &Manager{
		conn:       conn,
		fromEngine: fromEngine,
		toEngine:   toEngine,
		logger:     logger,
	}
}

func (m *Manager) Run() ManagerExit {
	done := make(chan struct{})
	reads := P.Reads(m.conn, done)

	exit := m.loop(reads)

	close(done)
	m.fromEngine.Close()
	drained := m.fromEngine.Drain()
	m.toEngine.Finish()
	ingress.Shutdown(m.conn)

	m.logger.Debug().
		Stringer("exit", exit).
		Int("drained", drained).
		Msg("manager closed")
	return exit
}

func (m *Manager) loop(reads <-chan P.Read) ManagerExit {
	for {
		select {
		case read := <-reads:
			if read.Err != nil {
				m.logger.Info().Err(read.Err).Msg("lost connection to server")
				return ManagerConnection
			}

			switch read.Message {
			case P.Attacked, P.GameOver:
				m.logger.Debug().Stringer("message", read.Message).Msg("got message from server")
				if err := m.toEngine.Send(read.Message); err != nil {
					return ManagerEngineClosed
				}
				if read.Message == P.GameOver {
					return ManagerPeerGameOver
				}
			default:
				m.logger.Debug().Stringer("message", read.Message).Msg("ignoring message from server")
			}
		case message, ok := <-m.fromEngine.Receive():
			if !ok {
				return ManagerEngineClosed
			}

			if message != P.Attacked && message != P.GameOver {
				continue
			}

			m.logger.Debug().Stringer("message", message).Msg("sending message to server")
			if err := P.WriteMessage(m.conn, message); err != nil {
				m.logger.Info().Err(err).Msg("lost connection to server")
				return ManagerConnection
			}
			if message == P.GameOver {
				return ManagerLocalGameOver
			}
		}
	}
}
