package resource

import (
	"context"

	"urifetch/uri"

	"github.com/pkg/errors"
)

// Options carries per-open configuration. Keys and value types are
// client-specific; clients validate them on Open and report wrong types
// as ErrBadOption.
type Options map[string]any

// Client is what a scheme implementation must provide. A negative or zero
// n on Read means "everything remaining".
type Client interface {
	Open(ctx context.Context, res *Resource, opts Options) error
	Read(n int) ([]byte, error)
	Close() error
}

// Writer is the optional write capability a client may also support.
type Writer interface {
	Write(p []byte) (int, error)
}

type state int

const (
	stateOpen state = iota
	stateClosed
)

// Resource is a caller-facing handle bound to a URI and exactly one client
// for its lifetime. Its identity is the current URI, which mutates on
// redirect; the permanent URI is the durable identity, advanced only by an
// unbroken leading run of permanent redirects. Metadata is written only by
// the bound client acting on the resource's behalf.
type Resource struct {
	uri       uri.URI
	permanent uri.URI

	meta map[string]any

	client Client
	state  state
}

// Open parses rawuri, resolves its scheme through the registry, constructs
// a client bound to a fresh Resource and drives the client's open.
func (r *Registry) Open(ctx context.Context, rawuri string, opts Options) (*Resource, error) {
	u, err := uri.Parse(rawuri)
	if err != nil {
		return nil, errors.Wrapf(ErrNotURI, "%q: %v", rawuri, err)
	}

	ctor, err := r.Resolve(u.Scheme)
	if err != nil {
		return nil, err
	}

	res := &Resource{
		uri:       u,
		permanent: u,
		meta:      make(map[string]any),
		client:    ctor(),
	}

	if err := res.client.Open(ctx, res, opts); err != nil {
		return nil, err
	}

	return res, nil
}

// Open opens rawuri through the default registry.
func Open(ctx context.Context, rawuri string, opts Options) (*Resource, error) {
	return DefaultRegistry.Open(ctx, rawuri, opts)
}

func (res *Resource) URI() uri.URI          { return res.uri }
func (res *Resource) PermanentURI() uri.URI { return res.permanent }

// Meta returns one metadata value populated by the client.
func (res *Resource) Meta(key string) (any, bool) {
	v, ok := res.meta[key]
	return v, ok
}

// Read returns up to n bytes of the resource's content, or everything
// remaining when n <= 0.
func (res *Resource) Read(n int) ([]byte, error) {
	if res.state != stateOpen {
		return nil, errors.Wrap(ErrAlreadyClosed, "read")
	}
	return res.client.Read(n)
}

// Write forwards to the bound client's write capability if it has one.
func (res *Resource) Write(p []byte) (int, error) {
	if res.state != stateOpen {
		return 0, errors.Wrap(ErrAlreadyClosed, "write")
	}
	w, ok := res.client.(Writer)
	if !ok {
		return 0, errors.Wrap(ErrUnsupportedOperation, "write")
	}
	return w.Write(p)
}

// Close detaches the client and releases whatever it holds. Closing twice
// is a usage error.
func (res *Resource) Close() error {
	if res.state != stateOpen {
		return errors.Wrap(ErrAlreadyClosed, "close")
	}
	res.state = stateClosed
	return res.client.Close()
}

// The methods below are the client-facing mutation surface. Callers never
// write these directly.

func (res *Resource) SetURI(u uri.URI)          { res.uri = u }
func (res *Resource) SetPermanentURI(u uri.URI) { res.permanent = u }
func (res *Resource) SetMeta(key string, v any) { res.meta[key] = v }
