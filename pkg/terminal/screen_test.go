package terminal

import (
	"testing"

	"github.com/gdamore/tcell/v2"
	opt "github.com/repeale/fp-go/option"
	"github.com/stretchr/testify/assert"
)

func TestTranslate(t *testing.T) {
	cases := []struct {
		event *tcell.EventKey
		want  KeyEvent
	}{
		{tcell.NewEventKey(tcell.KeyRune, 'a', tcell.ModNone), Rune('a')},
		{tcell.NewEventKey(tcell.KeyEnter, 0, tcell.ModNone), KeyEvent{Key: KeyEnter}},
		{tcell.NewEventKey(tcell.KeyBackspace2, 0, tcell.ModNone), KeyEvent{Key: KeyBackspace}},
		{tcell.NewEventKey(tcell.KeyDelete, 0, tcell.ModNone), KeyEvent{Key: KeyBackspace}},
		{tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone), KeyEvent{Key: KeyEscape}},
		{tcell.NewEventKey(tcell.KeyCtrlC, 0, tcell.ModCtrl), KeyEvent{Key: KeyInterrupt}},
	}

	for _, c := range cases {
		got, ok := translate(c.event)
		assert.True(t, ok)
		assert.Equal(t, c.want, got)
	}

	_, ok := translate(tcell.NewEventKey(tcell.KeyF1, 0, tcell.ModNone))
	assert.False(t, ok)
}

func TestScreenOnSimulation(t *testing.T) {
	sim := tcell.NewSimulationScreen("UTF-8")
	assert.NoError(t, sim.Init())
	sim.SetSize(20, 5)

	s := &Screen{screen: sim, keys: make(chan KeyEvent, keyBuffer)}
	go s.poll()
	defer s.Close()

	s.Clear()
	s.Draw(1, 2, "cat", ColorRed)
	s.Flip()

	for i, want := range "cat" {
		got, _, st, _ := sim.GetContent(2+i, 1)
		assert.Equal(t, want, got)
		assert.Equal(t, style(ColorRed), st)
	}

	s.keys <- Rune('x')
	key := s.PollKey()
	assert.Equal(t, Rune('x'), key.Value)
	assert.Equal(t, opt.None[KeyEvent](), s.PollKey())
}

func TestDeliverDropsWhenFull(t *testing.T) {
	s := &Screen{keys: make(chan KeyEvent, 1)}

	assert.True(t, s.deliver(Rune('a')))
	assert.False(t, s.deliver(Rune('b')))

	key := s.PollKey()
	assert.True(t, opt.IsSome(key))
	assert.Equal(t, Rune('a'), key.Value)
	assert.True(t, opt.IsNone(s.PollKey()))
}
