package relay

import (
	"context"
	"errors"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cfoust/raingame/pkg/ingress"
	P "github.com/cfoust/raingame/pkg/protocol"
	"github.com/cfoust/raingame/pkg/utils"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/sasha-s/go-deadlock"
	"golang.org/x/time/rate"
)

const MaxClients = 2

type Config struct {
	// How many messages may be buffered between the two handlers
	QueueCapacity int
	// Limits how many messages per second one client may relay. Zero means
	// no limit.
	MessagesPerSecond float64
}

func DefaultConfig() Config {
	return Config{
		QueueCapacity: 8,
	}
}

type Summary struct {
	ID      uint64
	Started time.Time
	Ended   time.Time
	Peers   [MaxClients]string
	Exits   [MaxClients]Exit
	Relayed [MaxClients]int
}

// Winner returns the index of the client that received the opponent's
// GameOver, if any.
func (s Summary) Winner() int {
	for i, exit := range s.Exits {
		if exit == ExitPeerGameOver {
			return i
		}
	}

	for i, exit := range s.Exits {
		if exit == ExitLocalGameOver {
			return (i + 1) % MaxClients
		}
	}

	return -1
}

func (s Summary) Duration() time.Duration {
	return s.Ended.Sub(s.Started)
}

type Phase uint8

const (
	PhaseIdle Phase = iota
	PhaseWaiting
	PhasePlaying
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseWaiting:
		return "waiting"
	case PhasePlaying:
		return "playing"
	}
	return "unknown"
}

type Status struct {
	Phase     Phase
	Connected int
	Completed uint64
}

// Supervisor accepts clients in pairs and relays messages between them
// until one side's game ends. Only one match runs at a time; a third client
// stays in the listen backlog until the current match is over.
type Supervisor struct {
	// Every finished match is published here
	Matches *utils.Topic[Summary]

	listener net.Listener
	config   Config
	nextID   atomic.Uint64

	statusMutex deadlock.RWMutex
	status      Status
}

func NewSupervisor(listener net.Listener, config Config) *Supervisor {
	if config.QueueCapacity < 1 {
		config.QueueCapacity = DefaultConfig().QueueCapacity
	}

	return &Supervisor{
		Matches:  utils.NewTopic[Summary](),
		listener: listener,
		config:   config,
	}
}

func (s *Supervisor) Addr() net.Addr {
	return s.listener.Addr()
}

func (s *Supervisor) Status() Status {
	s.statusMutex.RLock()
	defer s.statusMutex.RUnlock()
	return s.status
}

func (s *Supervisor) setPhase(phase Phase, connected int) {
	s.statusMutex.Lock()
	s.status.Phase = phase
	s.status.Connected = connected
	s.statusMutex.Unlock()
}

func (s *Supervisor) completed() {
	s.statusMutex.Lock()
	s.status.Completed++
	s.statusMutex.Unlock()
}

// Run serves matches until the context is cancelled or the listener fails.
// Cancellation closes the listener and any clients that are connected.
func (s *Supervisor) Run(ctx context.Context) error {
	stop := context.AfterFunc(ctx, func() {
		s.listener.Close()
	})
	defer stop()
	defer s.setPhase(PhaseIdle, 0)

	log.Info().Msgf("relay listening on %s", s.listener.Addr())

	for {
		summary, err := s.runMatch(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info().Msg("relay shutting down")
				return nil
			}
			return err
		}

		s.completed()
		s.Matches.Publish(summary)
	}
}

func (s *Supervisor) accept(ctx context.Context, logger zerolog.Logger) ([]net.Conn, error) {
	var mutex deadlock.Mutex
	conns := make([]net.Conn, 0, MaxClients)
	closeAll := func() {
		mutex.Lock()
		defer mutex.Unlock()
		for _, conn := range conns {
			conn.Close()
		}
	}

	// The listener is closed on cancellation, which unblocks Accept, but
	// clients that already connected need to be let go as well
	stop := context.AfterFunc(ctx, closeAll)
	defer stop()

	for {
		mutex.Lock()
		count := len(conns)
		mutex.Unlock()
		if count == MaxClients {
			break
		}

		s.setPhase(PhaseWaiting, count)

		conn, err := s.listener.Accept()
		if err != nil {
			closeAll()
			return nil, err
		}

		logger.Info().
			Str("peer", conn.RemoteAddr().String()).
			Msgf("client %d connected", count+1)

		if err := P.WriteMessage(conn, P.Waiting); err != nil {
			logger.Warn().Err(err).Msg("client left before the match started")
			conn.Close()
			continue
		}

		mutex.Lock()
		waiting := conns[:0]
		for _, other := range conns {
			if ingress.Alive(other) {
				waiting = append(waiting, other)
				continue
			}
			logger.Info().
				Str("peer", other.RemoteAddr().String()).
				Msg("client left before the match started")
			other.Close()
		}
		conns = append(waiting, conn)
		mutex.Unlock()
	}

	return conns, nil
}

func (s *Supervisor) runMatch(ctx context.Context) (Summary, error) {
	id := s.nextID.Add(1)
	logger := log.With().Uint64("match", id).Logger()

	logger.Info().Msg("setting up a new game")
	logger.Info().Msg("waiting for clients")
	conns, err := s.accept(ctx, logger)
	if err != nil {
		if errors.Is(err, net.ErrClosed) && ctx.Err() != nil {
			return Summary{}, ctx.Err()
		}
		return Summary{}, err
	}

	summary := Summary{
		ID:      id,
		Started: time.Now(),
	}
	for i, conn := range conns {
		summary.Peers[i] = conn.RemoteAddr().String()
	}

	s.setPhase(PhasePlaying, MaxClients)
	logger.Info().
		Str("first", summary.Peers[0]).
		Str("second", summary.Peers[1]).
		Msg("all clients connected")

	toFirst := utils.NewQueue[P.Message](s.config.QueueCapacity)
	toSecond := utils.NewQueue[P.Message](s.config.QueueCapacity)

	handlers := [MaxClients]*handler{
		s.newHandler(conns[0], toFirst, toSecond, logger, 0),
		s.newHandler(conns[1], toSecond, toFirst, logger, 1),
	}

	stop := context.AfterFunc(ctx, func() {
		for _, conn := range conns {
			conn.Close()
		}
	})
	defer stop()

	var wait sync.WaitGroup
	for _, h := range handlers {
		wait.Add(1)
		go func(h *handler) {
			defer wait.Done()
			h.run(ctx)
		}(h)
	}
	wait.Wait()

	summary.Ended = time.Now()
	for i, h := range handlers {
		summary.Exits[i] = h.exit
		summary.Relayed[i] = h.relayed
	}

	logger.Info().
		Dur("duration", summary.Duration()).
		Int("winner", summary.Winner()).
		Msg("game finished")

	return summary, nil
}

func (s *Supervisor) newHandler(
	conn net.Conn,
	inbound, outbound *utils.Queue[P.Message],
	logger zerolog.Logger,
	index int,
) *handler {
	var limiter *rate.Limiter
	if s.config.MessagesPerSecond > 0 {
		burst := int(s.config.MessagesPerSecond)
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(s.config.MessagesPerSecond), burst)
	}

	return &handler{
		conn:     conn,
		inbound:  inbound,
		outbound: outbound,
		limiter:  limiter,
		logger: logger.With().
			Int("client", index+1).
			Str("peer", conn.RemoteAddr().String()).
			Logger(),
	}
}
