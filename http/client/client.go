// Package client implements the http scheme: a synchronous, blocking
// HTTP/1.1 engine speaking the wire protocol directly over a raw byte
// stream, with connection reuse and redirect-chain following.
package client

import (
	"context"
	"log/slog"
	"os"
	"sort"
	"time"

	"urifetch/http"
	"urifetch/lib/stream"
	"urifetch/resource"
	"urifetch/transport"
	"urifetch/uri"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
)

const Scheme = "http"

const defaultPort uint16 = 80

var (
	ErrTooManyRedirects = errors.New("redirect chain exceeds bound")
	ErrReadTimeout      = errors.New("timed out waiting for response data")
	ErrMissingLocation  = errors.New("redirect response carries no Location")
)

// Client services exactly one Resource for its lifetime. It is not safe
// for concurrent use; parallelism is the caller running independent
// Resources.
type Client struct {
	dialer transport.Dialer
	logger *slog.Logger
	clock  clock.Clock

	pool    *Pool
	private bool

	body   []byte
	offset int

	opened bool
	closed bool
}

var _ resource.Client = (*Client)(nil)

func New(d transport.Dialer, logger *slog.Logger, clk clock.Clock) *Client {
	return &Client{dialer: d, logger: logger, clock: clk}
}

// Factory adapts New into a registry constructor.
func Factory(d transport.Dialer, logger *slog.Logger, clk clock.Clock) resource.Constructor {
	return func() resource.Client { return New(d, logger, clk) }
}

// hop is one entry of the redirect chain: the URI the request was issued
// against, paired with the 3xx response it produced.
type hop struct {
	u   uri.URI
	res *http.Response
}

// Open performs the full request: obtain a stream, write the request,
// parse the response, recurse through redirects, then attach response
// metadata to the resource. Nothing in here retries; every failure aborts
// the current open and propagates.
func (c *Client) Open(ctx context.Context, res *resource.Resource, ropts resource.Options) error {
	parsed, err := optionsFrom(ropts)
	if err != nil {
		return err
	}
	opts := parsed.withDefaults()

	c.pool = opts.Connections
	if c.pool == nil {
		c.pool = NewPool()
		c.private = true
	}
	if c.private {
		// A private pool lives for exactly one top-level request,
		// including any redirect recursion.
		defer c.pool.CloseAll()
	}

	current := res.URI()
	method := opts.Method
	body := opts.Body
	var chain []hop

	for {
		if len(chain) > opts.MaxRedirects {
			return errors.Wrapf(ErrTooManyRedirects, "after %d hops", len(chain))
		}

		response, err := c.roundTrip(ctx, current, method, body, opts)
		if err != nil {
			return err
		}

		next, follow, err := c.redirectTarget(current, response, opts)
		if err != nil {
			return err
		}
		if follow {
			c.logger.Debug("following redirect",
				slog.String("status", response.Status),
				slog.String("to", next.String()))

			chain = append(chain, hop{u: current, res: response})
			current = next
			if response.Status == "303" {
				// 303 re-issues as GET regardless of the original method.
				method = http.MethodGet
				body = nil
			}
			continue
		}

		if response.IsSuccess() {
			res.SetPermanentURI(permanentURI(res.PermanentURI(), chain, current))
		}
		res.SetURI(current)

		res.SetMeta("http_version", response.Version)
		res.SetMeta("status", response.Status)
		res.SetMeta("reason", response.Reason)
		res.SetMeta("headers", response.Headers)

		c.body = response.Body
		c.opened = true
		return nil
	}
}

// roundTrip sends one request against u and parses its response. The
// stream comes from the pool when a live entry exists for u's endpoint.
func (c *Client) roundTrip(
	ctx context.Context, u uri.URI, method string, body []byte, opts Options,
) (*http.Response, error) {
	host, port := u.HostPort(defaultPort)
	key := poolKey(host, port)

	s, err := c.getConn(ctx, key, host, port)
	if err != nil {
		return nil, errors.Wrap(err, "getting connection")
	}

	req := &http.Request{
		Method:  method,
		Target:  u.RequestTarget(),
		Host:    hostHeader(host, port),
		Headers: headersFrom(opts.Headers),
		Cookies: cookieLines(opts.Cookies),
		Body:    body,
	}

	if err := s.Write(req.Encode()); err != nil {
		s.Close()
		c.pool.evict(key)
		return nil, errors.Wrap(err, "writing request")
	}
	if err := s.Flush(); err != nil {
		return nil, errors.Wrap(err, "flushing request")
	}

	// Wait up to the configured timeout for response data.
	if err := s.SetReadDeadline(c.clock.Now().Add(opts.Timeout)); err != nil {
		s.Close()
		c.pool.evict(key)
		return nil, errors.Wrap(err, "arming read deadline")
	}

	response, err := http.NewResponseParser(s).Parse()
	if err != nil {
		s.Close()
		c.pool.evict(key)
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return nil, errors.Wrapf(ErrReadTimeout, "after %v", opts.Timeout)
		}
		return nil, errors.Wrap(err, "parsing response")
	}

	if err := s.SetReadDeadline(time.Time{}); err != nil {
		// A stream that cannot disarm its deadline is unsafe to reuse.
		s.Close()
		c.pool.evict(key)
		return nil, errors.Wrap(err, "clearing read deadline")
	}

	if response.WantsClose() {
		// The server is done with this stream; evict it no matter how
		// pooling is configured.
		s.Close()
		c.pool.evict(key)
	}

	return response, nil
}

func (c *Client) getConn(ctx context.Context, key, host string, port uint16) (*stream.Buffered, error) {
	if s, ok := c.pool.get(key); ok {
		c.logger.Debug("reusing pooled connection", slog.String("endpoint", key))
		return s, nil
	}

	conn, err := c.dialer.Dial(ctx, host, port)
	if err != nil {
		return nil, errors.Wrapf(err, "dialing %s", key)
	}

	c.logger.Debug("opened connection", slog.String("endpoint", key))

	s := stream.New(conn)
	c.pool.put(key, s)
	return s, nil
}

// redirectTarget decides whether the response triggers another hop and
// where it points. 300 (multiple choices) and 305 (proxy required) are
// never automated.
func (c *Client) redirectTarget(
	current uri.URI, response *http.Response, opts Options,
) (uri.URI, bool, error) {
	if !response.IsRedirect() {
		return uri.URI{}, false, nil
	}

	switch response.Status {
	case "301", "302", "303", "307":
	default:
		return uri.URI{}, false, nil
	}

	if !opts.Redirect(response) {
		return uri.URI{}, false, nil
	}

	location, ok := response.Headers.Get("Location")
	if !ok {
		return uri.URI{}, false, errors.Wrapf(ErrMissingLocation, "status %s", response.Status)
	}

	ref, err := uri.Parse(location)
	if err != nil {
		return uri.URI{}, false, errors.Wrapf(err, "parsing Location %q", location)
	}

	next, err := uri.Resolve(current, ref)
	if err != nil {
		return uri.URI{}, false, errors.Wrap(err, "resolving Location against current URI")
	}

	return next, true, nil
}

// permanentURI advances the durable identity through the unbroken leading
// run of permanent (301) redirects. The first non-301 entry stops the
// scan; temporary redirects after it never move the permanent URI.
func permanentURI(orig uri.URI, chain []hop, final uri.URI) uri.URI {
	perm := orig
	for i, h := range chain {
		if h.res.Status != "301" {
			break
		}
		if i+1 < len(chain) {
			perm = chain[i+1].u
		} else {
			perm = final
		}
	}
	return perm
}

// Read serves the assembled body. n <= 0 means everything remaining.
func (c *Client) Read(n int) ([]byte, error) {
	if !c.opened {
		return nil, errors.Wrap(resource.ErrNotOpen, "read")
	}
	if c.closed {
		return nil, errors.Wrap(resource.ErrAlreadyClosed, "read")
	}

	remaining := c.body[c.offset:]
	if n <= 0 || n > len(remaining) {
		n = len(remaining)
	}
	out := remaining[:n]
	c.offset += n
	return out, nil
}

func (c *Client) Close() error {
	if !c.opened {
		return errors.Wrap(resource.ErrNotOpen, "close")
	}
	if c.closed {
		return errors.Wrap(resource.ErrAlreadyClosed, "close")
	}
	c.closed = true
	return nil
}

func hostHeader(host string, port uint16) string {
	if port == defaultPort {
		return host
	}
	return poolKey(host, port)
}

func headersFrom(m map[string]string) *http.Headers {
	h := http.NewHeaders()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		h.Add(k, m[k])
	}
	return h
}

func cookieLines(m map[string][]string) []http.Cookie {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	var out []http.Cookie
	for _, name := range names {
		for _, value := range m[name] {
			out = append(out, http.Cookie{Name: name, Value: value})
		}
	}
	return out
}
