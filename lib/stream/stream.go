// Package stream implements a push-back buffered reader over a transport
// connection. HTTP framing parses variable-length tokens (a header line of
// unknown length) out of a stream that delivers arbitrary byte boundaries;
// pushing unconsumed bytes back avoids both over-reading into the next
// logical element and single-byte reads.
package stream

import (
	"io"
	"sync"
	"time"

	"urifetch/transport"

	"github.com/pkg/errors"
)

// Buffered wraps one connection with an internal buffer of
// previously-read-but-unconsumed bytes.
type Buffered struct {
	conn transport.Conn

	buf []byte

	closeOnce sync.Once
	closed    bool
}

func New(conn transport.Conn) *Buffered {
	return &Buffered{conn: conn}
}

// Read returns up to n bytes, draining the internal buffer before touching
// the connection. With partial set, it returns as soon as at least one byte
// is available; otherwise it blocks until exactly n bytes are collected or
// the stream is exhausted. A read satisfied in full reports no error even
// when the connection delivered the final bytes together with its EOF.
// Exhaustion with zero bytes collected yields io.EOF; exhaustion after a
// partial collection returns what was read together with io.EOF.
func (b *Buffered) Read(n int, partial bool) ([]byte, error) {
	if n <= 0 {
		return nil, nil
	}

	out := make([]byte, 0, n)

	if len(b.buf) > 0 {
		take := min(n, len(b.buf))
		out = append(out, b.buf[:take]...)
		b.buf = b.buf[take:]

		if len(out) == n || partial {
			return out, nil
		}
	}

	chunk := make([]byte, n-len(out))
	for len(out) < n {
		nn, err := b.conn.Read(chunk[:n-len(out)])
		out = append(out, chunk[:nn]...)

		if err != nil {
			if isClosed(err) {
				switch {
				case len(out) == n:
					// The connection handed over the last bytes and its
					// EOF in one call; the read is still complete.
					return out, nil
				case len(out) == 0:
					return nil, io.EOF
				default:
					return out, io.EOF
				}
			}
			return out, errors.Wrap(err, "reading from connection")
		}

		if partial && len(out) > 0 {
			return out, nil
		}
	}

	return out, nil
}

// Push returns bytes not consumed by the last parse attempt to the buffer;
// they are replayed on the next Read.
func (b *Buffered) Push(p []byte) {
	if len(p) == 0 {
		return
	}
	next := make([]byte, 0, len(p)+len(b.buf))
	next = append(next, p...)
	next = append(next, b.buf...)
	b.buf = next
}

// Buffered reports how many pushed-back bytes are pending.
func (b *Buffered) Buffered() int { return len(b.buf) }

func (b *Buffered) Write(p []byte) error {
	for written := 0; written < len(p); {
		n, err := b.conn.Write(p[written:])
		written += n
		if err != nil {
			return errors.Wrap(err, "writing to connection")
		}
	}
	return nil
}

// Flush is a pass-through hook; the connection itself is unbuffered.
func (b *Buffered) Flush() error { return nil }

// Close closes the underlying connection. It is idempotent and swallows
// secondary close errors.
func (b *Buffered) Close() error {
	var err error
	b.closeOnce.Do(func() {
		err = b.conn.Close()
		b.closed = true
	})
	return err
}

func (b *Buffered) Closed() bool { return b.closed }

// SetReadDeadline forwards to the connection.
func (b *Buffered) SetReadDeadline(t time.Time) error {
	return b.conn.SetReadDeadline(t)
}

func isClosed(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, transport.ErrConnClosed)
}
