package uri

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Reference: https://datatracker.ietf.org/doc/html/rfc3986#section-5.4.1
func TestResolve(t *testing.T) {
	base, err := Parse("http://a/b/c/d;p?q")
	require.NoError(t, err)

	testcases := []struct {
		ref      string
		expected string
	}{
		{ref: "g", expected: "http://a/b/c/g"},
		{ref: "./g", expected: "http://a/b/c/g"},
		{ref: "g/", expected: "http://a/b/c/g/"},
		{ref: "/g", expected: "http://a/g"},
		{ref: "//g", expected: "http://g"},
		{ref: "?y", expected: "http://a/b/c/d;p?y"},
		{ref: "g?y", expected: "http://a/b/c/g?y"},
		{ref: "", expected: "http://a/b/c/d;p?q"},
		{ref: ".", expected: "http://a/b/c/"},
		{ref: "..", expected: "http://a/b/"},
		{ref: "../g", expected: "http://a/b/g"},
		{ref: "../../g", expected: "http://a/g"},
		{ref: "../../../g", expected: "http://a/g"},
		{ref: "http://x/y", expected: "http://x/y"},
	}
	for _, tc := range testcases {
		t.Run(tc.ref, func(t *testing.T) {
			ref, err := Parse(tc.ref)
			require.NoError(t, err)

			out, err := Resolve(base, ref)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, out.String())
		})
	}
}

func TestResolveRelativeBase(t *testing.T) {
	base := URI{Path: "relative"}
	_, err := Resolve(base, URI{Path: "g"})
	assert.Error(t, err)
}

func TestRemoveDotSegments(t *testing.T) {
	testcases := []struct {
		input    string
		expected string
	}{
		{input: "/a/b/c/./../../g", expected: "/a/g"},
		{input: "mid/content=5/../6", expected: "mid/6"},
		{input: "/a/.", expected: "/a/"},
		{input: "/a/..", expected: "/"},
		{input: "a/b/", expected: "a/b/"},
		{input: ".", expected: ""},
		{input: "..", expected: ""},
		{input: "", expected: ""},
	}
	for _, tc := range testcases {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expected, removeDotSegments(tc.input))
		})
	}
}
