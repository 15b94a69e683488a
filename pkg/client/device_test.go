package client

import (
	"strings"
	"sync"

	"github.com/cfoust/raingame/pkg/terminal"

	opt "github.com/repeale/fp-go/option"
)

const prompt = "Press any key to exit..."

type cell struct {
	row, col int
	text     string
	color    terminal.Color
}

// fakeDevice replays scripted keys and keeps every flipped frame. Once the
// exit prompt has been drawn it answers every poll with a key.
type fakeDevice struct {
	mutex    sync.Mutex
	keys     []terminal.KeyEvent
	buffer   []cell
	frames   [][]cell
	prompted bool
}

func newDevice(keys ...terminal.KeyEvent) *fakeDevice {
	return &fakeDevice{keys: keys}
}

func (d *fakeDevice) PollKey() opt.Option[terminal.KeyEvent] {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if len(d.keys) > 0 {
		key := d.keys[0]
		d.keys = d.keys[1:]
		return opt.Some(key)
	}

	if d.prompted {
		return opt.Some(terminal.Rune('q'))
	}

	return opt.None[terminal.KeyEvent]()
}

func (d *fakeDevice) Draw(row, col int, text string, color terminal.Color) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.buffer = append(d.buffer, cell{row, col, text, color})
	if text == prompt {
		d.prompted = true
	}
}

func (d *fakeDevice) Clear() {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.buffer = nil
}

func (d *fakeDevice) Flip() {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	frame := make([]cell, len(d.buffer))
	copy(frame, d.buffer)
	d.frames = append(d.frames, frame)
}

func (d *fakeDevice) lastFrame() []cell {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if len(d.frames) == 0 {
		return nil
	}
	return d.frames[len(d.frames)-1]
}

// find looks for text in the most recent frame.
func (d *fakeDevice) find(text string) (cell, bool) {
	for _, c := range d.lastFrame() {
		if strings.Contains(c.text, text) {
			return c, true
		}
	}
	return cell{}, false
}

func (d *fakeDevice) keysLeft() int {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	return len(d.keys)
}
