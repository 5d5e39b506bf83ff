// Package uri implements the subset of RFC 3986 needed to identify and
// resolve resources: parsing, serialization, reference resolution and
// percent-coding.
package uri

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// URI is a parsed URI reference. Components are stored unescaped;
// String re-applies percent-coding per component.
type URI struct {
	Scheme    string
	Authority *Authority
	Path      string
	Query     *string
	Fragment  *string
}

type Authority struct {
	UserInfo string
	Host     string

	// Port is practically bounded to 0 ~ 65535 even though
	// the RFC allows digits of any length.
	Port *uint16
}

// Reference: https://datatracker.ietf.org/doc/html/rfc3986#section-4.2
func (u *URI) IsRelativeRef() bool { return u.Scheme == "" }

// Reference: https://datatracker.ietf.org/doc/html/rfc3986#section-4.3
func (u *URI) IsAbsoluteURI() bool { return u.Scheme != "" && u.Fragment == nil }

// HostPort returns the authority's host and port, falling back to
// defaultPort when the authority carries none.
func (u *URI) HostPort(defaultPort uint16) (host string, port uint16) {
	if u.Authority == nil {
		return "", defaultPort
	}
	port = defaultPort
	if u.Authority.Port != nil {
		port = *u.Authority.Port
	}
	return u.Authority.Host, port
}

// RequestTarget renders the URI in origin-form: path and query only,
// scheme, authority and fragment stripped.
// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-3.2.1
func (u *URI) RequestTarget() string {
	b := new(strings.Builder)

	path := u.Path
	if path == "" {
		path = "/"
	}
	b.WriteString(escape(path, encodePath))

	if u.Query != nil {
		b.WriteByte('?')
		b.WriteString(escape(*u.Query, encodeQuery))
	}

	return b.String()
}

// Reference: https://datatracker.ietf.org/doc/html/rfc3986#section-5.3
func (u URI) String() string {
	b := new(strings.Builder)
	if u.Scheme != "" {
		b.WriteString(u.Scheme)
		b.WriteByte(':')
	}

	if u.Authority != nil {
		b.WriteString("//")
		if u.Authority.UserInfo != "" {
			b.WriteString(escape(u.Authority.UserInfo, encodeUserInfo))
			b.WriteByte('@')
		}
		b.WriteString(escape(u.Authority.Host, encodeHost))
		if u.Authority.Port != nil {
			b.WriteByte(':')
			b.WriteString(strconv.FormatUint(uint64(*u.Authority.Port), 10))
		}
	}

	b.WriteString(escape(u.Path, encodePath))

	if u.Query != nil {
		b.WriteByte('?')
		b.WriteString(escape(*u.Query, encodeQuery))
	}

	if u.Fragment != nil {
		b.WriteByte('#')
		b.WriteString(escape(*u.Fragment, encodeFragment))
	}

	return b.String()
}

// Parse parses a raw URI reference. Components are unescaped on the way in.
func Parse(raw string) (URI, error) {
	if containsCTL(raw) {
		return URI{}, errors.New("URI should not contain CTL bytes")
	}

	var u URI

	scheme, rest, err := cutScheme(raw)
	if err != nil {
		return URI{}, errors.Wrap(err, "cutting scheme")
	}
	// Scheme is case-insensitive; normalize to lowercase.
	u.Scheme = strings.ToLower(scheme)

	if strings.HasPrefix(rest, "//") {
		authorityRaw := rest[2:]
		rest = ""
		if i := strings.IndexAny(authorityRaw, "/?#"); i >= 0 {
			authorityRaw, rest = authorityRaw[:i], authorityRaw[i:]
		}

		authority, err := parseAuthority(authorityRaw)
		if err != nil {
			return URI{}, errors.Wrap(err, "parsing authority")
		}
		u.Authority = &authority
	}

	path, query, frag := splitPathQueryFrag(rest)

	if u.Authority != nil && path != "" && !strings.HasPrefix(path, "/") {
		return URI{}, errors.New("path after authority should be empty or absolute")
	}
	if u.Path, err = unescape(path); err != nil {
		return URI{}, errors.Wrap(err, "unescaping path")
	}

	if query != "" {
		q, err := unescape(query[1:]) // strip '?'
		if err != nil {
			return URI{}, errors.Wrap(err, "unescaping query")
		}
		u.Query = &q
	}

	if frag != "" {
		f, err := unescape(frag[1:]) // strip '#'
		if err != nil {
			return URI{}, errors.Wrap(err, "unescaping fragment")
		}
		u.Fragment = &f
	}

	return u, nil
}

// cutScheme cuts a leading scheme off raw. A colon that appears after
// a '/' belongs to the path, not the scheme.
func cutScheme(raw string) (scheme, rest string, err error) {
	idx := strings.IndexByte(raw, ':')
	if idx < 0 || strings.IndexByte(raw[:idx], '/') >= 0 {
		return "", raw, nil
	}

	scheme, rest = raw[:idx], raw[idx+1:]
	if err := assertValidScheme(scheme); err != nil {
		return "", "", err
	}

	return scheme, rest, nil
}

func parseAuthority(raw string) (authority Authority, err error) {
	host := raw
	if i := strings.Index(raw, "@"); i >= 0 {
		userInfo := raw[:i]
		host = raw[i+1:]

		if authority.UserInfo, err = unescape(userInfo); err != nil {
			return Authority{}, errors.Wrap(err, "unescaping userinfo")
		}
	}

	host, portPart, err := splitHostPort(host)
	if err != nil {
		return Authority{}, err
	}

	port, hasPort, err := parsePort(portPart)
	if err != nil {
		return Authority{}, errors.Wrap(err, "parsing port")
	}
	if hasPort {
		authority.Port = &port
	}

	if authority.Host, err = unescape(host); err != nil {
		return Authority{}, errors.Wrap(err, "unescaping host")
	}
	// Host is case-insensitive; normalize to lowercase.
	authority.Host = strings.ToLower(authority.Host)

	return authority, nil
}

func splitHostPort(raw string) (host, portPart string, err error) {
	if strings.HasPrefix(raw, "[") {
		// IP literal.
		idx := strings.LastIndexByte(raw, ']')
		if idx < 0 {
			return "", "", errors.New("missing ']' in IP literal")
		}
		return raw[:idx+1], raw[idx+1:], nil
	}

	host = raw
	if idx := strings.LastIndexByte(raw, ':'); idx >= 0 {
		host, portPart = raw[:idx], raw[idx:]
	}
	return host, portPart, nil
}

func parsePort(s string) (port uint16, hasPort bool, err error) {
	if s == "" {
		return 0, false, nil
	}
	if s[0] != ':' {
		return 0, false, errors.New("colon delimiter not found on port")
	}
	s = s[1:]
	if s == "" {
		// Authority like "host:" carries an empty port; treat as absent.
		return 0, false, nil
	}

	n, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, false, errors.Wrap(err, "parsing port digits")
	}

	return uint16(n), true, nil
}

func splitPathQueryFrag(raw string) (path, query, frag string) {
	if idx := strings.IndexByte(raw, '#'); idx >= 0 {
		frag = raw[idx:]
		raw = raw[:idx]
	}
	if idx := strings.IndexByte(raw, '?'); idx >= 0 {
		query = raw[idx:]
		raw = raw[:idx]
	}
	return raw, query, frag
}

func assertValidScheme(scheme string) error {
	if len(scheme) == 0 {
		return errors.New("scheme is empty")
	}
	if !isAlpha(scheme[0]) {
		return errors.New("scheme doesn't start with ALPHA")
	}
	for idx := 1; idx < len(scheme); idx++ {
		c := scheme[idx]
		switch {
		case isAlpha(c) || isDigit(c):
		case c == '+' || c == '-' || c == '.':
		default:
			return errors.New("scheme contains invalid byte")
		}
	}
	return nil
}

func containsCTL(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < ' ' || s[i] == 0x7f {
			return true
		}
	}
	return false
}

func isAlpha(c byte) bool { return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z') }
func isDigit(c byte) bool { return '0' <= c && c <= '9' }
