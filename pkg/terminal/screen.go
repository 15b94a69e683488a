package terminal

import (
	"github.com/gdamore/tcell/v2"
	opt "github.com/repeale/fp-go/option"
	"github.com/rs/zerolog/log"
)

const keyBuffer = 64

// Screen is a Device backed by tcell.
type Screen struct {
	screen tcell.Screen
	keys   chan KeyEvent
}

func NewScreen() (*Screen, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}

	if err := screen.Init(); err != nil {
		return nil, err
	}
	screen.HideCursor()

	s := &Screen{
		screen: screen,
		keys:   make(chan KeyEvent, keyBuffer),
	}
	go s.poll()

	return s, nil
}

func (s *Screen) poll() {
	for {
		event := s.screen.PollEvent()
		if event == nil {
			// Fini was called
			return
		}

		key, ok := event.(*tcell.EventKey)
		if !ok {
			continue
		}

		translated, ok := translate(key)
		if !ok {
			continue
		}

		s.deliver(translated)
	}
}

// deliver never blocks the event loop. A key that does not fit is lost.
func (s *Screen) deliver(key KeyEvent) bool {
	select {
	case s.keys <- key:
		return true
	default:
		log.Debug().
			Uint8("key", uint8(key.Key)).
			Str("rune", string(key.Rune)).
			Msg("key buffer full, dropping keystroke")
		return false
	}
}

func translate(event *tcell.EventKey) (KeyEvent, bool) {
	switch event.Key() {
	case tcell.KeyEnter:
		return KeyEvent{Key: KeyEnter}, true
	case tcell.KeyBackspace, tcell.KeyBackspace2, tcell.KeyDelete:
		return KeyEvent{Key: KeyBackspace}, true
	case tcell.KeyEscape:
		return KeyEvent{Key: KeyEscape}, true
	case tcell.KeyCtrlC:
		return KeyEvent{Key: KeyInterrupt}, true
	case tcell.KeyRune:
		return Rune(event.Rune()), true
	}
	return KeyEvent{}, false
}

func (s *Screen) PollKey() opt.Option[KeyEvent] {
	select {
	case key := <-s.keys:
		return opt.Some(key)
	default:
		return opt.None[KeyEvent]()
	}
}

func style(color Color) tcell.Style {
	switch color {
	case ColorWhite:
		return tcell.StyleDefault.Foreground(tcell.ColorWhite)
	case ColorRed:
		return tcell.StyleDefault.Foreground(tcell.ColorRed)
	case ColorGreen:
		return tcell.StyleDefault.Foreground(tcell.ColorGreen)
	case ColorYellow:
		return tcell.StyleDefault.Foreground(tcell.ColorYellow)
	}
	return tcell.StyleDefault
}

func (s *Screen) Draw(row, col int, text string, color Color) {
	st := style(color)
	for _, char := range text {
		s.screen.SetContent(col, row, char, nil, st)
		col++
	}
}

func (s *Screen) Clear() {
	s.screen.Clear()
}

func (s *Screen) Flip() {
	s.screen.Show()
}

func (s *Screen) Size() (int, int) {
	return s.screen.Size()
}

// Close restores the terminal.
func (s *Screen) Close() {
	s.screen.Fini()
}
