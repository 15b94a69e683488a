package client

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cfoust/raingame/pkg/game"
	P "github.com/cfoust/raingame/pkg/protocol"
	"github.com/cfoust/raingame/pkg/relay"
	"github.com/cfoust/raingame/pkg/terminal"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitForStart(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	go func() {
		P.WriteMessage(server, P.Waiting)
		P.WriteMessage(server, P.Waiting)
		P.WriteMessage(server, P.GameStart)
	}()

	require.NoError(t, WaitForStart(client))
}

func TestWaitForStartDisconnect(t *testing.T) {
	server, client := net.Pipe()
	defer client.Close()

	go func() {
		P.WriteMessage(server, P.Waiting)
		server.Close()
	}()

	require.ErrorIs(t, WaitForStart(client), ErrNotStarted)
}

func TestPlayNotStarted(t *testing.T) {
	server, client := net.Pipe()
	server.Close()

	config := DefaultConfig()
	config.LogDirectory = ""
	coordinator := NewCoordinator(client, newDevice(), fixed("cat"), nil, config)

	_, err := coordinator.Play(context.Background())
	require.ErrorIs(t, err, ErrNotStarted)
}

func TestWriteResult(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "log")
	now := time.Date(2024, 3, 1, 12, 30, 5, 0, time.Local)

	path, err := WriteResult(dir, ResultLose, -3, now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "2024-03-01_12-30-05.log"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "YOU LOSE! with a score of -3\n", string(data))
}

type played struct {
	outcome Outcome
	err     error
}

// startRelay runs a relay for the rest of the test.
func startRelay(t *testing.T) (*relay.Supervisor, context.Context) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	supervisor := relay.NewSupervisor(listener, relay.DefaultConfig())
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan error, 1)
	go func() {
		stopped <- supervisor.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-stopped
	})

	return supervisor, ctx
}

func join(
	t *testing.T,
	ctx context.Context,
	supervisor *relay.Supervisor,
	config Config,
	device *fakeDevice,
) <-chan played {
	conn, err := net.Dial("tcp", supervisor.Addr().String())
	require.NoError(t, err)

	result := make(chan played, 1)
	go func() {
		outcome, err := NewCoordinator(conn, device, fixed("rain"), nil, config).Play(ctx)
		result <- played{outcome, err}
	}()
	return result
}

func collect(t *testing.T, results <-chan played) Outcome {
	select {
	case r := <-results:
		require.NoError(t, r.err)
		return r.outcome
	case <-time.After(5 * time.Second):
		require.FailNow(t, "client did not finish")
	}
	return Outcome{}
}

func TestPlayOverRelay(t *testing.T) {
	supervisor, ctx := startRelay(t)

	// The loser fills up on its first word
	loser := DefaultConfig()
	loser.LogDirectory = t.TempDir()
	loser.ResultDelay = 0
	loser.Game = game.DefaultConfig()
	loser.Game.TickInterval = time.Millisecond
	loser.Game.SpawnInterval = time.Millisecond
	loser.Game.Life = 1
	loser.Game.Height = 5

	winner := DefaultConfig()
	winner.LogDirectory = t.TempDir()
	winner.ResultDelay = 0
	winner.Game = quietConfig()

	first := join(t, ctx, supervisor, loser, newDevice())
	second := join(t, ctx, supervisor, winner, newDevice())

	lost := collect(t, first)
	won := collect(t, second)

	assert.Equal(t, ResultLose, lost.Result)
	assert.Equal(t, ManagerLocalGameOver, lost.Exit)
	assert.Equal(t, -len("rain"), lost.Score)

	assert.Equal(t, ResultWin, won.Result)
	assert.Equal(t, ManagerPeerGameOver, won.Exit)
	assert.Equal(t, 0, won.Score)

	data, err := os.ReadFile(lost.File)
	require.NoError(t, err)
	assert.Equal(t, "YOU LOSE! with a score of -4\n", string(data))

	data, err = os.ReadFile(won.File)
	require.NoError(t, err)
	assert.Equal(t, "YOU WIN! with a score of 0\n", string(data))
}

func TestAttackOverRelay(t *testing.T) {
	supervisor, ctx := startRelay(t)

	// Types the attack word once and then idles
	attacker := DefaultConfig()
	attacker.LogDirectory = ""
	attacker.ResultDelay = 0
	attacker.Game = quietConfig()

	// Only ever gets words from the attacker, and the first one that
	// reaches the deadline ends the game
	target := DefaultConfig()
	target.LogDirectory = ""
	target.ResultDelay = 0
	target.Game = quietConfig()
	target.Game.Life = 1
	target.Game.Height = 5

	first := join(t, ctx, supervisor, attacker, newDevice(
		terminal.Rune('r'),
		terminal.Rune('a'),
		terminal.Rune('i'),
		terminal.Rune('n'),
		terminal.KeyEvent{Key: terminal.KeyEnter},
	))
	second := join(t, ctx, supervisor, target, newDevice())

	won := collect(t, first)
	lost := collect(t, second)

	assert.Equal(t, ResultWin, won.Result)
	assert.Equal(t, len("rain"), won.Score)
	assert.Equal(t, 0, won.Attacks)

	assert.Equal(t, ResultLose, lost.Result)
	assert.Equal(t, 1, lost.Attacks)
	assert.Equal(t, -len("rain"), lost.Score)
}
