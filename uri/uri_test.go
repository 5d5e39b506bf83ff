package uri

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func portPtr(p uint16) *uint16 { return &p }

func TestParse(t *testing.T) {
	testcases := []struct {
		desc     string
		input    string
		expected URI
		wantErr  bool
	}{
		{
			desc:  "full http URI",
			input: "http://user@example.com:8080/a/b?q=1#frag",
			expected: URI{
				Scheme: "http",
				Authority: &Authority{
					UserInfo: "user",
					Host:     "example.com",
					Port:     portPtr(8080),
				},
				Path:     "/a/b",
				Query:    strPtr("q=1"),
				Fragment: strPtr("frag"),
			},
		},
		{
			desc:  "no port, no path",
			input: "http://example.com",
			expected: URI{
				Scheme:    "http",
				Authority: &Authority{Host: "example.com"},
			},
		},
		{
			desc:  "scheme is lowercased",
			input: "HTTP://EXAMPLE.com/x",
			expected: URI{
				Scheme:    "http",
				Authority: &Authority{Host: "example.com"},
				Path:      "/x",
			},
		},
		{
			desc:  "relative reference",
			input: "/just/a/path",
			expected: URI{
				Path: "/just/a/path",
			},
		},
		{
			desc:  "file URI",
			input: "file:///tmp/data.txt",
			expected: URI{
				Scheme:    "file",
				Authority: &Authority{},
				Path:      "/tmp/data.txt",
			},
		},
		{
			desc:  "percent-encoded path is unescaped",
			input: "http://example.com/a%20b",
			expected: URI{
				Scheme:    "http",
				Authority: &Authority{Host: "example.com"},
				Path:      "/a b",
			},
		},
		{
			desc:  "ipv6 literal with port",
			input: "http://[::1]:8080/",
			expected: URI{
				Scheme:    "http",
				Authority: &Authority{Host: "[::1]", Port: portPtr(8080)},
				Path:      "/",
			},
		},
		{
			desc:    "control bytes rejected",
			input:   "http://exam\x00ple.com",
			wantErr: true,
		},
		{
			desc:    "bad percent encoding",
			input:   "http://example.com/a%2",
			wantErr: true,
		},
		{
			desc:    "port out of range",
			input:   "http://example.com:99999/",
			wantErr: true,
		},
		{
			desc:    "scheme starting with digit",
			input:   "1http://example.com",
			wantErr: true,
		},
	}
	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			u, err := Parse(tc.input)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, u)
		})
	}
}

func TestString(t *testing.T) {
	testcases := []struct {
		desc     string
		input    URI
		expected string
	}{
		{
			desc: "round trip with escaping",
			input: URI{
				Scheme:    "http",
				Authority: &Authority{Host: "example.com", Port: portPtr(81)},
				Path:      "/a b",
				Query:     strPtr("q=1"),
			},
			expected: "http://example.com:81/a%20b?q=1",
		},
		{
			desc:     "relative path only",
			input:    URI{Path: "x/y"},
			expected: "x/y",
		},
	}
	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.input.String())
		})
	}
}

func TestRequestTarget(t *testing.T) {
	u, err := Parse("http://example.com:8080/a/b?q=1#frag")
	require.NoError(t, err)

	// Scheme, authority and fragment are stripped.
	assert.Equal(t, "/a/b?q=1", u.RequestTarget())

	empty, err := Parse("http://example.com")
	require.NoError(t, err)
	assert.Equal(t, "/", empty.RequestTarget())
}

func TestHostPort(t *testing.T) {
	u, err := Parse("http://example.com/")
	require.NoError(t, err)

	host, port := u.HostPort(80)
	assert.Equal(t, "example.com", host)
	assert.Equal(t, uint16(80), port)

	u, err = Parse("http://example.com:8080/")
	require.NoError(t, err)

	host, port = u.HostPort(80)
	assert.Equal(t, "example.com", host)
	assert.Equal(t, uint16(8080), port)
}
