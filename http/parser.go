package http

import (
	"bytes"
	"io"
	"strconv"

	"urifetch/lib/stream"

	"github.com/pkg/errors"
)

// Protocol parse errors. All are fatal for the current request; nothing
// here retries.
var (
	ErrInvalidStartLine       = errors.New("missing or invalid start line")
	ErrStartLineWrongPosition = errors.New("start line in wrong position")
	ErrMalformedHeader        = errors.New("expected header, got something else")
	ErrChunkSize              = errors.New("could not determine chunk size")
	ErrChunkTerminator        = errors.New("missing chunk terminator")
	ErrUnexpectedEnd          = errors.New("unexpected end of response")
)

// readSize is the increment the parser pulls from the stream while hunting
// for line boundaries. Purely an implementation detail: unconsumed bytes
// are pushed back after every match.
const readSize = 4096

type parsePhase int

const (
	phaseStatusLine parsePhase = iota
	phaseHeaders
	phaseBody
	phaseDone
)

// ResponseParser incrementally parses one response off a buffered stream.
// Each phase is re-entered until it signals completion, since the
// underlying bytes arrive at arbitrary boundaries.
type ResponseParser struct {
	s     *stream.Buffered
	phase parsePhase
	res   *Response
}

func NewResponseParser(s *stream.Buffered) *ResponseParser {
	return &ResponseParser{s: s, res: &Response{Headers: NewHeaders()}}
}

// Parse drives the phases in strict order. It blocks until the response is
// complete or a fatal protocol, transport or timeout error occurs.
func (p *ResponseParser) Parse() (*Response, error) {
	for p.phase != phaseDone {
		var err error
		switch p.phase {
		case phaseStatusLine:
			err = p.parseStatusLine()
		case phaseHeaders:
			err = p.parseHeaders()
		case phaseBody:
			err = p.parseBody()
		}
		if err != nil {
			return nil, err
		}
		p.phase++
	}

	return p.res, nil
}

// readLine accumulates stream bytes until CRLF, pushing everything after
// the terminator back for the next token. A stream that runs out mid-line
// is a broken connection, not a clean EOF.
func (p *ResponseParser) readLine() ([]byte, error) {
	var acc []byte
	for {
		if idx := bytes.Index(acc, CRLF); idx >= 0 {
			p.s.Push(acc[idx+2:])
			return acc[:idx], nil
		}

		b, err := p.s.Read(readSize, true)
		acc = append(acc, b...)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				return nil, err
			}
			if !bytes.Contains(acc, CRLF) {
				return nil, errors.Wrapf(ErrUnexpectedEnd, "%d bytes into a line", len(acc))
			}
			// The terminator arrived together with the EOF; the scan at
			// the top of the loop claims it.
		}
	}
}

func (p *ResponseParser) parseStatusLine() error {
	sawBlank := false
	for {
		line, err := p.readLine()
		if err != nil {
			return errors.Wrap(err, "reading status line")
		}

		if len(line) == 0 {
			// Blank line where the start line belongs. If a valid start
			// line follows, it is merely in the wrong position.
			sawBlank = true
			continue
		}

		version, status, reason, ok := matchStatusLine(line)
		if !ok {
			if bytes.Index(line, []byte("HTTP/")) > 0 {
				return ErrStartLineWrongPosition
			}
			return ErrInvalidStartLine
		}
		if sawBlank {
			return ErrStartLineWrongPosition
		}

		p.res.Version = version
		p.res.Status = status
		p.res.Reason = reason
		return nil
	}
}

// matchStatusLine matches `HTTP/<digit>.<digit> SP <3-digit> SP <reason>`
// anchored at the start of line.
func matchStatusLine(line []byte) (version, status, reason string, ok bool) {
	const verLen = len("HTTP/x.y")
	if len(line) < verLen+1+3+1 {
		return "", "", "", false
	}

	v := line[:verLen]
	if !bytes.HasPrefix(v, []byte("HTTP/")) ||
		!isDigit(v[5]) || v[6] != '.' || !isDigit(v[7]) {
		return "", "", "", false
	}

	rest := line[verLen:]
	if rest[0] != SP {
		return "", "", "", false
	}
	rest = rest[1:]

	if len(rest) < 4 || !isDigit(rest[0]) || !isDigit(rest[1]) || !isDigit(rest[2]) || rest[3] != SP {
		return "", "", "", false
	}

	return string(v), string(rest[:3]), string(rest[4:]), true
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }

func (p *ResponseParser) parseHeaders() error {
	for {
		line, err := p.readLine()
		if err != nil {
			return errors.Wrap(err, "reading header line")
		}

		if len(line) == 0 {
			// Bare CRLF terminates the header section.
			return nil
		}

		key, value, err := parseFieldLine(line)
		if err != nil {
			return err
		}
		p.res.Headers.Add(key, value)
	}
}

// parseFieldLine matches `token ":" OWS value`. No whitespace is allowed
// between the field name and the colon.
// Reference: https://datatracker.ietf.org/doc/html/rfc9112#section-5.1
func parseFieldLine(line []byte) (key, value string, err error) {
	name, rest, found := bytes.Cut(line, []byte{':'})
	if !found {
		return "", "", errors.Wrapf(ErrMalformedHeader, "no colon in %q", string(line))
	}

	if !IsValidToken(string(name)) {
		return "", "", errors.Wrapf(ErrMalformedHeader, "field name %q is not a token", string(name))
	}

	return string(name), string(trimOWS(rest)), nil
}

// parseBody picks exactly one framing strategy, in priority order:
// chunked transfer coding, then Content-Length, then drain-until-EOF.
func (p *ResponseParser) parseBody() error {
	if p.isChunked() {
		return p.readChunkedBody()
	}

	if v, ok := p.res.Headers.Get("Content-Length"); ok {
		n, err := strconv.ParseUint(v, 10, 63)
		if err != nil {
			return errors.Wrapf(ErrMalformedHeader, "content length %q", v)
		}
		return p.readFixedBody(int(n))
	}

	return p.drainBody()
}

func (p *ResponseParser) isChunked() bool {
	values, ok := p.res.Headers.Values("Transfer-Encoding")
	if !ok {
		return false
	}
	for _, v := range values {
		for _, coding := range bytes.Split([]byte(v), []byte{','}) {
			if bytes.EqualFold(trimOWS(coding), []byte("chunked")) {
				return true
			}
		}
	}
	return false
}

func (p *ResponseParser) readChunkedBody() error {
	body := bytes.NewBuffer(nil)

	for {
		size, err := p.readChunkSize()
		if err != nil {
			return err
		}

		if size == 0 {
			// Terminal chunk carries its own trailing CRLF.
			line, err := p.readLine()
			if err != nil {
				return errors.Wrap(err, "reading final chunk terminator")
			}
			if len(line) != 0 {
				return errors.Wrapf(ErrChunkTerminator, "got %q", string(line))
			}
			break
		}

		data, err := p.s.Read(size, false)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return errors.Wrap(ErrUnexpectedEnd, "inside chunk data")
			}
			return err
		}
		body.Write(data)

		// The 2-byte CRLF must immediately follow the chunk payload.
		term, err := p.s.Read(2, false)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return errors.Wrap(ErrChunkTerminator, "stream ended")
			}
			return err
		}
		if !bytes.Equal(term, CRLF) {
			return errors.Wrapf(ErrChunkTerminator, "got %q", string(term))
		}
	}

	p.res.Body = body.Bytes()
	return nil
}

// readChunkSize reads and parses one `<hex-size> [OWS] CRLF` line.
// Chunk extensions after ';' are tolerated and discarded.
func (p *ResponseParser) readChunkSize() (int, error) {
	line, err := p.readLine()
	if err != nil {
		return 0, errors.Wrap(err, "reading chunk-size line")
	}

	sizeRaw := line
	if idx := bytes.IndexByte(line, ';'); idx >= 0 {
		sizeRaw = line[:idx]
	}
	sizeRaw = trimOWS(sizeRaw)

	size, err := strconv.ParseUint(string(sizeRaw), 16, 63)
	if err != nil {
		return 0, errors.Wrapf(ErrChunkSize, "from line %q", string(line))
	}

	return int(size), nil
}

func (p *ResponseParser) readFixedBody(n int) error {
	body := make([]byte, 0, n)

	for len(body) < n {
		inc := min(readSize, n-len(body))
		b, err := p.s.Read(inc, false)
		body = append(body, b...)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return errors.Wrapf(ErrUnexpectedEnd,
					"got %d of %d body bytes", len(body), n)
			}
			return err
		}
	}

	p.res.Body = body
	return nil
}

// drainBody handles responses with no length indicator: consume until the
// stream is exhausted. A connection-closed signal is a normal terminator
// here and only here, since nothing else marks the body's end.
func (p *ResponseParser) drainBody() error {
	body := bytes.NewBuffer(nil)

	for {
		b, err := p.s.Read(readSize, true)
		body.Write(b)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return err
		}
	}

	p.res.Body = body.Bytes()
	return nil
}
