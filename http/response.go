package http

import "strings"

// Response is one fully parsed HTTP/1.1 message. Status is kept in its
// literal textual form: every decision downstream compares against string
// prefixes, never numeric ranges.
type Response struct {
	Version string
	Status  string
	Reason  string

	Headers *Headers

	Body []byte
}

// StatusHasPrefix reports whether the literal status code starts with
// prefix (e.g. "2" for any success, "301" for a permanent redirect).
func (r *Response) StatusHasPrefix(prefix string) bool {
	return strings.HasPrefix(r.Status, prefix)
}

func (r *Response) IsSuccess() bool  { return r.StatusHasPrefix("2") }
func (r *Response) IsRedirect() bool { return r.StatusHasPrefix("3") }

// WantsClose reports whether the response carries Connection: close,
// which forces the owning stream out of any pool.
func (r *Response) WantsClose() bool {
	v, ok := r.Headers.Get("Connection")
	return ok && strings.EqualFold(strings.TrimSpace(v), "close")
}
