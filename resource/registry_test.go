package resource

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noopConstructor() Client { return &stubClient{} }

func TestRegisterSchemeValidation(t *testing.T) {
	testcases := []struct {
		desc    string
		scheme  string
		ctor    Constructor
		wantErr bool
	}{
		{desc: "plain scheme", scheme: "http", ctor: noopConstructor},
		{desc: "scheme with plus", scheme: "git+ssh", ctor: noopConstructor},
		{desc: "colon rejected", scheme: "ht:tp", ctor: noopConstructor, wantErr: true},
		{desc: "slash rejected", scheme: "ht/tp", ctor: noopConstructor, wantErr: true},
		{desc: "question mark rejected", scheme: "ht?tp", ctor: noopConstructor, wantErr: true},
		{desc: "hash rejected", scheme: "ht#tp", ctor: noopConstructor, wantErr: true},
		{desc: "empty rejected", scheme: "", ctor: noopConstructor, wantErr: true},
		{desc: "nil constructor rejected", scheme: "ok", ctor: nil, wantErr: true},
	}
	for _, tc := range testcases {
		t.Run(tc.desc, func(t *testing.T) {
			reg := NewRegistry()
			err := reg.Register(tc.scheme, tc.ctor)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrBadScheme)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestResolve(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register("http", noopConstructor))
	require.NoError(t, reg.Register("file", noopConstructor))

	_, err := reg.Resolve("file")
	assert.NoError(t, err)

	_, err = reg.Resolve("gopher")
	assert.ErrorIs(t, err, ErrSchemeNotRegistered)
}

func TestOpenInputErrors(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register("stub", noopConstructor))

	_, err := reg.Open(context.Background(), "http://bad uri\x00", nil)
	assert.ErrorIs(t, err, ErrNotURI)

	_, err = reg.Open(context.Background(), "gopher://example.com/", nil)
	assert.ErrorIs(t, err, ErrSchemeNotRegistered)
}
