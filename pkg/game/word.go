package game

import (
	"math"
	"unicode/utf8"
)

type Kind uint8

const (
	KindNormal Kind = iota
	// Spawned because the opponent completed their attack word.
	KindAttack
)

func (k Kind) String() string {
	switch k {
	case KindNormal:
		return "normal"
	case KindAttack:
		return "attack"
	}
	return "unknown"
}

// A Word falls from row 0 towards the deadline row. X and Y are in
// terminal cells.
type Word struct {
	X    float64
	Y    float64
	Text string
	Kind Kind
}

func (w *Word) Len() int {
	return utf8.RuneCountInString(w.Text)
}

func (w *Word) Row() int {
	return int(math.Floor(w.Y))
}

func (w *Word) Column() int {
	return int(math.Floor(w.X))
}

// span is the horizontal interval [x, x+length) a spawned word occupies.
type span struct {
	x      float64
	length int
}

// overlaps reports whether a word of the given length at x would touch s,
// counting one cell of padding on either side.
func (s span) overlaps(x float64, length int) bool {
	return x < s.x+float64(s.length)+1 && x+float64(length)+1 > s.x
}

// avoidable reports whether any x in [0, limit) clears s.
func (s span) avoidable(length int, limit float64) bool {
	left := s.x - float64(length) - 1
	right := s.x + float64(s.length) + 1
	return left > 0 || right < limit
}
