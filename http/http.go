// Package http implements the HTTP/1.1 wire codec: request construction,
// incremental response parsing and chunked-transfer decoding, directly on
// top of a raw byte stream.
//
// Reference: https://datatracker.ietf.org/doc/html/rfc9112
package http

const (
	CR byte = '\r'
	LF byte = '\n'
	SP byte = ' '
)

var (
	// Version is the only protocol version this codec speaks on the wire.
	Version = "HTTP/1.1"

	CRLF = []byte{CR, LF}
	OWS  = []byte{SP, '\t'}
)

const (
	MethodGet  = "GET"
	MethodHead = "HEAD"
	MethodPost = "POST"
	MethodPut  = "PUT"
)

// IsValidToken reports whether s matches the RFC 9110 token rule.
// Reference: https://datatracker.ietf.org/doc/html/rfc9110#section-5.6.2-2
func IsValidToken(s string) bool {
	if len(s) == 0 {
		return false
	}
	for _, c := range s {
		if ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') {
			continue
		}
		if '0' <= c && c <= '9' {
			continue
		}
		switch c {
		case '!', '#', '$', '%', '&', '\'', '*', '+',
			'-', '.', '^', '_', '`', '|', '~':
			continue
		}
		return false
	}
	return true
}

func isOWS(c byte) bool { return c == SP || c == '\t' }

func trimOWS(b []byte) []byte {
	for len(b) > 0 && isOWS(b[0]) {
		b = b[1:]
	}
	for len(b) > 0 && isOWS(b[len(b)-1]) {
		b = b[:len(b)-1]
	}
	return b
}
