package client

import (
	"net"
	"testing"
	"time"

	P "github.com/cfoust/raingame/pkg/protocol"
	"github.com/cfoust/raingame/pkg/utils"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type managerHarness struct {
	server     net.Conn
	fromEngine *utils.Queue[P.Message]
	toEngine   *utils.Queue[P.Message]
	exit       chan ManagerExit
}

func startManager(t *testing.T) *managerHarness {
	server, client := net.Pipe()
	t.Cleanup(func() { server.Close() })

	h := &managerHarness{
		server:     server,
		fromEngine: utils.NewQueue[P.Message](10),
		toEngine:   utils.NewQueue[P.Message](10),
		exit:       make(chan ManagerExit, 1),
	}

	manager := NewManager(client, h.fromEngine, h.toEngine, zerolog.Nop())
	go func() {
		h.exit <- manager.Run()
	}()
	return h
}

func (h *managerHarness) wait(t *testing.T) ManagerExit {
	select {
	case exit := <-h.exit:
		return exit
	case <-time.After(timeout):
		require.FailNow(t, "manager did not finish")
	}
	return 0
}

func (h *managerHarness) forwarded(t *testing.T) (P.Message, bool) {
	select {
	case message, ok := <-h.toEngine.Receive():
		return message, ok
	case <-time.After(timeout):
		require.FailNow(t, "manager forwarded nothing")
	}
	return 0, false
}

// read fails once the manager has hung up; a pipe refuses deadlines after
// either end is closed.
func (h *managerHarness) read(t *testing.T) (P.Message, error) {
	if err := h.server.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return 0, err
	}
	return P.ReadMessage(h.server)
}

func TestManagerRelays(t *testing.T) {
	h := startManager(t)

	require.NoError(t, P.WriteMessage(h.server, P.Attacked))
	message, ok := h.forwarded(t)
	require.True(t, ok)
	require.Equal(t, P.Attacked, message)

	require.NoError(t, h.fromEngine.Send(P.Attacked))
	message, err := h.read(t)
	require.NoError(t, err)
	require.Equal(t, P.Attacked, message)

	require.NoError(t, P.WriteMessage(h.server, P.GameOver))
	message, ok = h.forwarded(t)
	require.True(t, ok)
	require.Equal(t, P.GameOver, message)

	require.Equal(t, ManagerPeerGameOver, h.wait(t))

	_, ok = h.forwarded(t)
	assert.False(t, ok)
	_, err = h.read(t)
	assert.Error(t, err)
}

func TestManagerLocalGameOver(t *testing.T) {
	h := startManager(t)

	require.NoError(t, h.fromEngine.Send(P.GameOver))
	message, err := h.read(t)
	require.NoError(t, err)
	require.Equal(t, P.GameOver, message)

	require.Equal(t, ManagerLocalGameOver, h.wait(t))
	_, ok := h.forwarded(t)
	assert.False(t, ok)
}

func TestManagerConnectionLost(t *testing.T) {
	h := startManager(t)

	require.NoError(t, h.server.Close())
	require.Equal(t, ManagerConnection, h.wait(t))

	_, ok := h.forwarded(t)
	assert.False(t, ok)
	assert.ErrorIs(t, h.fromEngine.Send(P.Attacked), utils.ErrQueueClosed)
}

func TestManagerEngineClosed(t *testing.T) {
	h := startManager(t)

	h.fromEngine.Finish()
	require.Equal(t, ManagerEngineClosed, h.wait(t))

	_, err := h.read(t)
	assert.Error(t, err)
}

func TestManagerIgnoresControlMessages(t *testing.T) {
	h := startManager(t)

	require.NoError(t, P.WriteMessage(h.server, P.Waiting))
	require.NoError(t, P.WriteMessage(h.server, P.GameStart))
	require.NoError(t, P.WriteMessage(h.server, P.Attacked))

	message, ok := h.forwarded(t)
	require.True(t, ok)
	assert.Equal(t, P.Attacked, message)

	h.fromEngine.Finish()
	h.wait(t)
}
