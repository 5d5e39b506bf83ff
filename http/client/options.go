package client

import (
	"time"

	"urifetch/http"
	"urifetch/resource"

	"github.com/pkg/errors"
)

// RedirectPolicy decides per response whether a 3xx should be followed.
type RedirectPolicy func(res *http.Response) bool

func FollowAlways(*http.Response) bool { return true }
func FollowNever(*http.Response) bool  { return false }

const (
	DefaultTimeout      = 20 * time.Second
	DefaultMaxRedirects = 10
)

type Options struct {
	// Method defaults to GET.
	Method string

	// Headers are merged over the codec's defaults.
	Headers map[string]string

	// Cookies map names to one or more values; each pair becomes its own
	// Cookie line.
	Cookies map[string][]string

	// Jar is accepted but not yet consulted for outgoing requests beyond
	// Cookies.
	Jar any

	// Redirect defaults to FollowAlways.
	Redirect RedirectPolicy

	// MaxRedirects bounds the redirect chain; zero means DefaultMaxRedirects.
	MaxRedirects int

	// Connections is a caller-owned pool persisting connections across
	// independent opens. When nil, a private pool is opened and torn down
	// once the top-level request (including redirect recursion) completes.
	Connections *Pool

	// Timeout bounds the wait for response data; zero means DefaultTimeout.
	Timeout time.Duration

	// Body is the raw request entity.
	Body []byte
}

func (o *Options) withDefaults() Options {
	out := *o
	if out.Method == "" {
		out.Method = http.MethodGet
	}
	if out.Redirect == nil {
		out.Redirect = FollowAlways
	}
	if out.MaxRedirects == 0 {
		out.MaxRedirects = DefaultMaxRedirects
	}
	if out.Timeout == 0 {
		out.Timeout = DefaultTimeout
	}
	return out
}

// optionsFrom validates the scheme-agnostic option map into typed Options.
// A wrong value type is an input error, surfaced immediately.
func optionsFrom(opts resource.Options) (Options, error) {
	var out Options

	for key, v := range opts {
		var ok bool
		switch key {
		case "method":
			out.Method, ok = v.(string)
		case "headers":
			out.Headers, ok = v.(map[string]string)
		case "cookies":
			out.Cookies, ok = coerceCookies(v)
		case "cookie_store":
			out.Jar, ok = v, true
		case "redirect":
			out.Redirect, ok = coerceRedirect(v)
		case "max_redirects":
			out.MaxRedirects, ok = v.(int)
		case "connections":
			out.Connections, ok = v.(*Pool)
		case "timeout":
			out.Timeout, ok = coerceTimeout(v)
		case "body":
			out.Body, ok = v.([]byte)
		default:
			return Options{}, errors.Wrapf(resource.ErrBadOption, "unknown option %q", key)
		}
		if !ok {
			return Options{}, errors.Wrapf(resource.ErrBadOption, "%q has type %T", key, v)
		}
	}

	return out, nil
}

// coerceCookies accepts name→value and name→list-of-values shapes.
func coerceCookies(v any) (map[string][]string, bool) {
	switch m := v.(type) {
	case map[string][]string:
		return m, true
	case map[string]string:
		out := make(map[string][]string, len(m))
		for k, val := range m {
			out[k] = []string{val}
		}
		return out, true
	case map[string]any:
		out := make(map[string][]string, len(m))
		for k, val := range m {
			switch vv := val.(type) {
			case string:
				out[k] = []string{vv}
			case []string:
				out[k] = vv
			default:
				return nil, false
			}
		}
		return out, true
	}
	return nil, false
}

// coerceRedirect accepts a boolean or a predicate.
func coerceRedirect(v any) (RedirectPolicy, bool) {
	switch r := v.(type) {
	case bool:
		if r {
			return FollowAlways, true
		}
		return FollowNever, true
	case func(res *http.Response) bool:
		return r, true
	case RedirectPolicy:
		return r, true
	}
	return nil, false
}

func coerceTimeout(v any) (time.Duration, bool) {
	switch t := v.(type) {
	case time.Duration:
		return t, true
	case int:
		return time.Duration(t) * time.Second, true
	case float64:
		return time.Duration(t * float64(time.Second)), true
	}
	return 0, false
}
