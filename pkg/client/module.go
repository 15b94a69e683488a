package client

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net"
	"sync"
	"time"

	"github.com/cfoust/raingame/pkg/game"
	P "github.com/cfoust/raingame/pkg/protocol"
	"github.com/cfoust/raingame/pkg/terminal"
	"github.com/cfoust/raingame/pkg/utils"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var ErrNotStarted = errors.New("disconnected before the game started")

type Config struct {
	Game          game.Config
	QueueCapacity int
	// Where result files are written. Empty disables them.
	LogDirectory string
	// How long the final score is shown before asking for a key
	ResultDelay time.Duration
}

func DefaultConfig() Config {
	return Config{
		Game:          game.DefaultConfig(),
		QueueCapacity: 10,
		LogDirectory:  "log",
		ResultDelay:   time.Second,
	}
}

type Outcome struct {
	Result  Result
	Score   int
	Exit    ManagerExit
	Attacks int
	// Empty if no result file was written
	File string
}

// WaitForStart reads from the server until it announces GameStart.
func WaitForStart(conn net.Conn) error {
	for {
		message, err := P.ReadMessage(conn)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrNotStarted, err)
		}

		switch message {
		case P.GameStart:
			return nil
		case P.Waiting:
			log.Debug().Msg("waiting for opponent")
		default:
			log.Debug().Stringer("message", message).Msg("ignoring message before start")
		}
	}
}

type Coordinator struct {
	conn   net.Conn
	device terminal.Device
	words  game.Vocabulary
	rng    *rand.Rand
	config Config
	logger zerolog.Logger
}

func NewCoordinator(
	conn net.Conn,
	device terminal.Device,
	words game.Vocabulary,
	rng *rand.Rand,
	config Config,
) *Coordinator {
	if config.QueueCapacity < 1 {
		config.QueueCapacity = DefaultConfig().QueueCapacity
	}

	return &Coordinator{
		conn:   conn,
		device: device,
		words:  words,
		rng:    rng,
		config: config,
		logger: log.With().Str("server", conn.RemoteAddr().String()).Logger(),
	}
}

// Play waits for the match to start, plays it to the end and shows the
// result. The connection is closed when Play returns.
func (c *Coordinator) Play(ctx context.Context) (Outcome, error) {
	stop := context.AfterFunc(ctx, func() {
		c.conn.Close()
	})
	defer stop()

	engine, err := game.NewEngine(c.config.Game, c.words, c.rng)
	if err != nil {
		c.conn.Close()
		return Outcome{}, err
	}

	c.device.Clear()
	c.device.Draw(0, 0, "Waiting for an opponent...", terminal.ColorDefault)
	c.device.Flip()

	if err := WaitForStart(c.conn); err != nil {
		c.conn.Close()
		return Outcome{}, err
	}
	c.logger.Info().Msg("game started")

	toManager := utils.NewQueue[P.Message](c.config.QueueCapacity)
	toEngine := utils.NewQueue[P.Message](c.config.QueueCapacity)

	manager := NewManager(c.conn, toManager, toEngine, c.logger.With().Str("role", "manager").Logger())
	runner := NewRunner(engine, c.device, toManager, toEngine, c.logger.With().Str("role", "engine").Logger())

	var (
		outcome Outcome
		wait    sync.WaitGroup
	)
	wait.Add(2)
	go func() {
		defer wait.Done()
		outcome.Exit = manager.Run()
	}()
	go func() {
		defer wait.Done()
		outcome.Result = runner.Run(ctx)
	}()
	wait.Wait()

	outcome.Score = engine.Score()
	outcome.Attacks = runner.Attacks()

	if c.config.LogDirectory != "" {
		file, err := WriteResult(c.config.LogDirectory, outcome.Result, outcome.Score, time.Now())
		if err != nil {
			c.logger.Warn().Err(err).Msg("could not save result")
		} else {
			outcome.File = file
		}
	}

	runner.ShowResult(ctx, outcome.Result, c.config.ResultDelay)
	return outcome, nil
}
