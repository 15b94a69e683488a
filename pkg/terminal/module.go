package terminal

import (
	opt "github.com/repeale/fp-go/option"
)

type Key uint8

const (
	KeyRune Key = iota
	KeyBackspace
	KeyEnter
	KeyEscape
	KeyInterrupt
)

type KeyEvent struct {
	Key  Key
	Rune rune
}

func Rune(r rune) KeyEvent {
	return KeyEvent{Key: KeyRune, Rune: r}
}

type Color uint8

const (
	ColorDefault Color = iota
	ColorWhite
	ColorRed
	ColorGreen
	ColorYellow
)

// Device is everything the game needs from a terminal. Rows and columns
// are zero-based cells. Drawing goes to a back buffer that Flip presents.
type Device interface {
	// PollKey never blocks.
	PollKey() opt.Option[KeyEvent]
	Draw(row, col int, text string, color Color)
	Clear()
	Flip()
}
