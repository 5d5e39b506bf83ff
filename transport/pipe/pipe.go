// Package pipe provides an in-memory connection pair for wire-level tests.
package pipe

import (
	"bytes"
	"io"
	"os"
	"sync"
	"time"

	"urifetch/transport"

	"github.com/benbjohnson/clock"
)

// Conn is one end of an in-memory connection. Bytes written on one end
// become readable on the counterpart.
type Conn struct {
	stream chan []byte
	closed chan struct{}

	once sync.Once
	buf  *bytes.Buffer

	clock    clock.Clock
	deadline time.Time

	counterpart *Conn
}

var _ transport.Conn = (*Conn)(nil)

// New creates a connected pair. clk drives read deadlines, so tests can
// use a mock clock.
func New(clk clock.Clock) (c1, c2 *Conn) {
	c1 = &Conn{
		stream: make(chan []byte, 16),
		closed: make(chan struct{}),
		buf:    bytes.NewBuffer(nil),
		clock:  clk,
	}
	c2 = &Conn{
		stream: make(chan []byte, 16),
		closed: make(chan struct{}),
		buf:    bytes.NewBuffer(nil),
		clock:  clk,
	}
	c1.counterpart, c2.counterpart = c2, c1
	return c1, c2
}

func (c *Conn) Read(p []byte) (n int, err error) {
	if c.buf.Len() > 0 {
		// Leftovers from a previous partial copy.
		return c.buf.Read(p)
	}

	var expire <-chan time.Time
	if !c.deadline.IsZero() {
		d := c.deadline.Sub(c.clock.Now())
		if d <= 0 {
			return 0, os.ErrDeadlineExceeded
		}
		timer := c.clock.Timer(d)
		defer timer.Stop()
		expire = timer.C
	}

	select {
	case <-c.closed:
		return 0, transport.ErrConnClosed
	case <-expire:
		return 0, os.ErrDeadlineExceeded
	case b, ok := <-c.stream:
		if !ok {
			// Counterpart closed: clean EOF for the reader.
			return 0, io.EOF
		}
		n = copy(p, b)
		if n < len(b) {
			c.buf.Write(b[n:])
		}
		return n, nil
	}
}

func (c *Conn) Write(p []byte) (n int, err error) {
	b := make([]byte, len(p))
	copy(b, p)

	select {
	case <-c.closed:
		return 0, transport.ErrConnClosed
	case <-c.counterpart.closed:
		return 0, transport.ErrConnClosed
	case c.counterpart.stream <- b:
		return len(b), nil
	}
}

func (c *Conn) Close() error {
	c.once.Do(func() {
		close(c.closed)
		close(c.counterpart.stream)
	})
	return nil
}

func (c *Conn) SetReadDeadline(t time.Time) error {
	c.deadline = t
	return nil
}
