package protocol

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWireValues(t *testing.T) {
	assert.Equal(t, byte(0), byte(Waiting))
	assert.Equal(t, byte(1), byte(GameStart))
	assert.Equal(t, byte(2), byte(GameOver))
	assert.Equal(t, byte(3), byte(Attacked))
}

func TestParse(t *testing.T) {
	for b := byte(0); b <= 3; b++ {
		message, err := Parse(b)
		require.NoError(t, err)
		assert.Equal(t, Message(b), message)
	}

	for _, b := range []byte{4, 42, 255} {
		_, err := Parse(b)
		assert.ErrorIs(t, err, ErrUnknownMessage)
	}
}

func TestReadWrite(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMessage(&buf, GameStart))
	require.NoError(t, WriteMessage(&buf, Attacked))
	assert.Equal(t, []byte{1, 3}, buf.Bytes())

	message, err := ReadMessage(&buf)
	require.NoError(t, err)
	assert.Equal(t, GameStart, message)

	message, err = ReadMessage(&buf)
	require.NoError(t, err)
	assert.Equal(t, Attacked, message)

	_, err = ReadMessage(&buf)
	assert.True(t, errors.Is(err, io.EOF))
}

func TestRejectsGarbage(t *testing.T) {
	_, err := ReadMessage(bytes.NewReader([]byte{9}))
	assert.ErrorIs(t, err, ErrUnknownMessage)

	var buf bytes.Buffer
	assert.ErrorIs(t, WriteMessage(&buf, Message(7)), ErrUnknownMessage)
	assert.Zero(t, buf.Len())
}
