// Package tcp provides the net-based TCP dialer used for real connections.
package tcp

import (
	"context"
	"net"
	"strconv"

	"urifetch/transport"

	"github.com/pkg/errors"
)

type Dialer struct {
	inner net.Dialer
}

var _ transport.Dialer = (*Dialer)(nil)

func NewDialer() *Dialer { return &Dialer{} }

func (d *Dialer) Dial(ctx context.Context, host string, port uint16) (transport.Conn, error) {
	addr := net.JoinHostPort(host, strconv.FormatUint(uint64(port), 10))

	conn, err := d.inner.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "dialing %s", addr)
	}

	return conn.(*net.TCPConn), nil
}
