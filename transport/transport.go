// Package transport abstracts the byte-stream connection the HTTP engine
// runs on, so the protocol code never touches the net package directly.
package transport

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var ErrConnClosed = errors.New("connection is closed")

// Conn is a raw, bidirectional byte stream.
type Conn interface {
	Read(p []byte) (n int, err error)
	Write(p []byte) (n int, err error)
	Close() error

	// SetReadDeadline bounds future Read calls. The zero time clears it.
	SetReadDeadline(t time.Time) error
}

// Dialer opens a connection to host:port.
type Dialer interface {
	Dial(ctx context.Context, host string, port uint16) (Conn, error)
}
