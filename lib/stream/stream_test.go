package stream

import (
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// connStub delivers its content in fixed-size slices to exercise parsing
// over arbitrary byte boundaries.
type connStub struct {
	data      []byte
	chunkSize int
	closed    bool

	// eagerEOF reports io.EOF together with the final bytes, as the
	// io.Reader contract permits.
	eagerEOF bool
}

func (c *connStub) Read(p []byte) (int, error) {
	if len(c.data) == 0 {
		return 0, io.EOF
	}
	n := min(len(p), len(c.data))
	if c.chunkSize > 0 {
		n = min(n, c.chunkSize)
	}
	copy(p, c.data[:n])
	c.data = c.data[n:]
	if c.eagerEOF && len(c.data) == 0 {
		return n, io.EOF
	}
	return n, nil
}

func (c *connStub) Write(p []byte) (int, error)     { return len(p), nil }
func (c *connStub) Close() error                    { c.closed = true; return nil }
func (c *connStub) SetReadDeadline(time.Time) error { return nil }

type BufferedTestSuite struct {
	suite.Suite
}

func TestBufferedTestSuite(t *testing.T) {
	suite.Run(t, new(BufferedTestSuite))
}

func (s *BufferedTestSuite) TestReadExact() {
	// The stub delivers 3 bytes at a time; an exact read must block
	// through multiple underlying reads.
	b := New(&connStub{data: []byte("abcdefgh"), chunkSize: 3})

	out, err := b.Read(7, false)
	s.Require().NoError(err)
	s.Equal([]byte("abcdefg"), out)

	out, err = b.Read(1, false)
	s.Require().NoError(err)
	s.Equal([]byte("h"), out)
}

func (s *BufferedTestSuite) TestReadPartial() {
	b := New(&connStub{data: []byte("abcdefgh"), chunkSize: 3})

	out, err := b.Read(8, true)
	s.Require().NoError(err)
	s.Equal([]byte("abc"), out)
}

func (s *BufferedTestSuite) TestReadExhausted() {
	b := New(&connStub{data: nil})

	_, err := b.Read(1, true)
	s.Require().ErrorIs(err, io.EOF)

	_, err = b.Read(1, false)
	s.Require().ErrorIs(err, io.EOF)
}

func (s *BufferedTestSuite) TestReadExactWithEagerEOF() {
	// The final bytes and the EOF arrive in one call; a read that was
	// satisfied in full must not surface the EOF.
	b := New(&connStub{data: []byte("abcde"), eagerEOF: true})

	out, err := b.Read(5, false)
	s.Require().NoError(err)
	s.Equal([]byte("abcde"), out)

	// The exhaustion shows up on the next read.
	_, err = b.Read(1, false)
	s.Require().ErrorIs(err, io.EOF)
}

func (s *BufferedTestSuite) TestReadShortThenEOF() {
	b := New(&connStub{data: []byte("ab")})

	out, err := b.Read(5, false)
	s.Require().ErrorIs(err, io.EOF)
	s.Equal([]byte("ab"), out)
}

func (s *BufferedTestSuite) TestPushReplay() {
	b := New(&connStub{data: []byte("ghij"), chunkSize: 2})

	b.Push([]byte("def"))
	b.Push([]byte("abc"))

	// Pushed bytes replay first, most recent push first.
	out, err := b.Read(6, false)
	s.Require().NoError(err)
	s.Equal([]byte("abcdef"), out)

	out, err = b.Read(4, false)
	s.Require().NoError(err)
	s.Equal([]byte("ghij"), out)
}

func (s *BufferedTestSuite) TestPartialDrainsBufferOnly() {
	b := New(&connStub{data: []byte("xyz")})
	b.Push([]byte("ab"))

	// A partial read returns buffered bytes without touching the stream.
	out, err := b.Read(5, true)
	s.Require().NoError(err)
	s.Equal([]byte("ab"), out)
}

func (s *BufferedTestSuite) TestCloseIdempotent() {
	stub := &connStub{}
	b := New(stub)

	s.Require().NoError(b.Close())
	s.True(stub.closed)
	s.True(b.Closed())

	// Second close swallows secondary errors.
	s.Require().NoError(b.Close())
}

func TestBufferedCount(t *testing.T) {
	b := New(&connStub{})
	require.Equal(t, 0, b.Buffered())

	b.Push([]byte("abc"))
	assert.Equal(t, 3, b.Buffered())
}
