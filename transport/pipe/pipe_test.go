package pipe

import (
	"io"
	"os"
	"testing"
	"time"

	"urifetch/transport"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadWrite(t *testing.T) {
	c1, c2 := New(clock.New())
	defer c1.Close()
	defer c2.Close()

	go func() {
		_, _ = c1.Write([]byte("ping"))
	}()

	buf := make([]byte, 16)
	n, err := c2.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "ping", string(buf[:n]))
}

func TestShortReadKeepsLeftover(t *testing.T) {
	c1, c2 := New(clock.New())
	defer c1.Close()
	defer c2.Close()

	_, err := c1.Write([]byte("abcdef"))
	require.NoError(t, err)

	buf := make([]byte, 2)
	n, err := c2.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "ab", string(buf[:n]))

	n, err = c2.Read(buf)
	require.NoError(t, err)
	assert.Equal(t, "cd", string(buf[:n]))
}

func TestCounterpartCloseIsEOF(t *testing.T) {
	c1, c2 := New(clock.New())
	defer c2.Close()

	require.NoError(t, c1.Close())

	_, err := c2.Read(make([]byte, 1))
	assert.ErrorIs(t, err, io.EOF)

	_, err = c2.Write([]byte("x"))
	assert.ErrorIs(t, err, transport.ErrConnClosed)
}

func TestReadDeadline(t *testing.T) {
	clk := clock.NewMock()
	c1, c2 := New(clk)
	defer c1.Close()
	defer c2.Close()

	require.NoError(t, c2.SetReadDeadline(clk.Now().Add(time.Second)))

	done := make(chan error, 1)
	go func() {
		_, err := c2.Read(make([]byte, 1))
		done <- err
	}()

	// Let the reader arm its timer before firing it.
	time.Sleep(10 * time.Millisecond)
	clk.Add(2 * time.Second)

	assert.ErrorIs(t, <-done, os.ErrDeadlineExceeded)
}
