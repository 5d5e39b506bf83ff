package http

import (
	"bytes"
	"strconv"

	"urifetch/uri"
)

// Request is one outgoing HTTP/1.1 message. Target must already be in
// origin-form (scheme, authority and fragment stripped).
type Request struct {
	Method string
	Target string

	Host string

	// Headers are the caller-supplied lines; defaults and cookies are
	// merged in by Encode in the order defaults, caller, cookies.
	Headers *Headers

	// Cookies are serialized as one Cookie line per name/value pair,
	// values percent-escaped with space encoded as '+'.
	Cookies []Cookie

	Body []byte
}

type Cookie struct{ Name, Value string }

// Encode renders the full request: request line, header block (defaults
// first, then caller headers, then synthesized Cookie lines), a blank line
// and the body. Later writers of a key already present add lines rather
// than overwrite; multiple lines per key are legal per the header grammar.
// Bodyless requests still carry Content-Length: 0.
func (r *Request) Encode() []byte {
	buf := bytes.NewBuffer(nil)

	buf.WriteString(r.Method)
	buf.WriteByte(SP)
	buf.WriteString(r.Target)
	buf.WriteByte(SP)
	buf.WriteString(Version)
	buf.Write(CRLF)

	merged := NewHeaders()
	merged.Set("Host", r.Host)
	merged.Set("Content-Length", strconv.Itoa(len(r.Body)))

	if r.Headers != nil {
		for _, f := range r.Headers.Fields() {
			merged.Add(f[0], f[1])
		}
	}

	for _, c := range r.Cookies {
		merged.Add("Cookie", uri.QueryEscape(c.Name)+"="+uri.QueryEscape(c.Value))
	}

	for _, f := range merged.Fields() {
		buf.WriteString(f[0])
		buf.WriteString(": ")
		buf.WriteString(f[1])
		buf.Write(CRLF)
	}
	buf.Write(CRLF)

	buf.Write(r.Body)

	return buf.Bytes()
}
