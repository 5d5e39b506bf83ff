// Package file implements the file scheme: a thin wrapper over local file
// I/O with no protocol logic.
package file

import (
	"context"
	"io"
	"os"

	"urifetch/resource"

	"github.com/pkg/errors"
)

const Scheme = "file"

type Client struct {
	f      *os.File
	opened bool
	closed bool
}

var _ resource.Client = (*Client)(nil)

func New() *Client { return &Client{} }

func Factory() resource.Constructor {
	return func() resource.Client { return New() }
}

func (c *Client) Open(_ context.Context, res *resource.Resource, _ resource.Options) error {
	path := res.URI().Path

	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "opening %q", path)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return errors.Wrapf(err, "stating %q", path)
	}

	res.SetMeta("size", info.Size())
	res.SetMeta("mode", info.Mode().String())
	res.SetMeta("mod_time", info.ModTime())

	c.f = f
	c.opened = true
	return nil
}

func (c *Client) Read(n int) ([]byte, error) {
	if !c.opened {
		return nil, errors.Wrap(resource.ErrNotOpen, "read")
	}
	if c.closed {
		return nil, errors.Wrap(resource.ErrAlreadyClosed, "read")
	}

	if n <= 0 {
		b, err := io.ReadAll(c.f)
		return b, errors.Wrap(err, "reading file")
	}

	b := make([]byte, n)
	nn, err := c.f.Read(b)
	if err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "reading file")
	}
	return b[:nn], nil
}

func (c *Client) Close() error {
	if !c.opened {
		return errors.Wrap(resource.ErrNotOpen, "close")
	}
	if c.closed {
		return errors.Wrap(resource.ErrAlreadyClosed, "close")
	}
	c.closed = true
	return c.f.Close()
}
