package protocol

import (
	"errors"
	"fmt"
	"io"
)

// Message is a single-byte control message. The encoding is the same in
// both directions between the relay and its clients.
type Message byte

const (
	// Sent by the relay while the opponent has not joined yet.
	Waiting Message = iota
	// Sent by the relay to both clients once they are paired.
	GameStart
	// A player's life reached zero. Ends the match on both sides.
	GameOver
	// A player completed the attack word. The opponent spawns an extra word.
	Attacked
)

var ErrUnknownMessage = errors.New("unknown message")

func (m Message) String() string {
	switch m {
	case Waiting:
		return "Waiting"
	case GameStart:
		return "GameStart"
	case GameOver:
		return "GameOver"
	case Attacked:
		return "Attacked"
	}
	return fmt.Sprintf("Message(%d)", byte(m))
}

func (m Message) Valid() bool {
	return m <= Attacked
}

// Parse converts a byte read off the wire into a Message.
func Parse(b byte) (Message, error) {
	message := Message(b)
	if !message.Valid() {
		return message, fmt.Errorf("%w: %d", ErrUnknownMessage, b)
	}
	return message, nil
}

// ReadMessage blocks until exactly one byte is available. I/O errors are
// returned as-is so callers can tell a closed connection apart from a
// protocol violation.
func ReadMessage(r io.Reader) (Message, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return Parse(buf[0])
}

func WriteMessage(w io.Writer, message Message) error {
	if !message.Valid() {
		return fmt.Errorf("%w: %d", ErrUnknownMessage, byte(message))
	}
	_, err := w.Write([]byte{byte(message)})
	return err
}
