package protocol

import "io"

type Read struct {
	Message Message
	Err     error
}

// Reads pumps messages from r onto the returned channel so a reader can
// select on the socket alongside other sources. The first error is
// delivered and ends the stream. Closing done abandons the stream; the
// goroutine itself only exits once the blocked read returns, so callers
// should close r as well.
func Reads(r io.Reader, done <-chan struct{}) <-chan Read {
	reads := make(chan Read)

	go func() {
		for {
			message, err := ReadMessage(r)

			select {
			case reads <- Read{Message: message, Err: err}:
			case <-done:
				return
			}

			if err != nil {
				return
			}
		}
	}()

	return reads
}
