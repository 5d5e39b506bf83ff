package uri

import (
	"strings"

	"github.com/pkg/errors"
)

// Each URI component keeps a different subset of the reserved characters
// literal; every other byte outside the unreserved set is percent-coded
// on output.
type encodeMode uint

const (
	encodeUserInfo encodeMode = iota
	encodeHost
	encodePath
	encodeQuery
	encodeFragment
)

const subDelims = "!$&'()*+,;="

// keepLiteral lists, per component, the reserved bytes that stay
// unescaped. Reference:
// https://datatracker.ietf.org/doc/html/rfc3986#section-3.2.1 .. 3.5
var keepLiteral = [...]string{
	encodeUserInfo: subDelims + ":",
	encodeHost:     subDelims + ":[]",
	encodePath:     subDelims + ":@/",
	encodeQuery:    subDelims + ":@/?",
	encodeFragment: subDelims + ":@/?",
}

const upperhex = "0123456789ABCDEF"

// Reference: https://datatracker.ietf.org/doc/html/rfc3986#section-2.3
func isUnreserved(c byte) bool {
	return isAlpha(c) || isDigit(c) || strings.IndexByte("-._~", c) >= 0
}

func escape(s string, mode encodeMode) string {
	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) || strings.IndexByte(keepLiteral[mode], c) >= 0 {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&0xF])
	}

	return b.String()
}

// unescape decodes percent-coded bytes anywhere in s. A '%' not followed
// by two hex digits is a malformed input.
func unescape(s string) (string, error) {
	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); i++ {
		if s[i] != '%' {
			b.WriteByte(s[i])
			continue
		}
		if i+2 >= len(s) {
			return "", errors.Errorf("truncated percent coding %q", s[i:])
		}
		hi, okHi := unhex(s[i+1])
		lo, okLo := unhex(s[i+2])
		if !okHi || !okLo {
			return "", errors.Errorf("percent coding %q is not two hex digits", s[i:i+3])
		}
		b.WriteByte(hi<<4 | lo)
		i += 2
	}

	return b.String(), nil
}

func unhex(c byte) (byte, bool) {
	switch {
	case '0' <= c && c <= '9':
		return c - '0', true
	case 'a' <= c && c <= 'f':
		return c - 'a' + 10, true
	case 'A' <= c && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// QueryEscape percent-escapes s in form-encoding style: unreserved bytes
// pass through, space becomes '+', everything else is percent-coded.
// Used for cookie name/value serialization.
func QueryEscape(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == ' ':
			b.WriteByte('+')
		case isUnreserved(c):
			b.WriteByte(c)
		default:
			b.WriteByte('%')
			b.WriteByte(upperhex[c>>4])
			b.WriteByte(upperhex[c&0xF])
		}
	}

	return b.String()
}
