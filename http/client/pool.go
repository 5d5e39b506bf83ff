package client

import (
	"strconv"

	"urifetch/lib/stream"
)

// Pool maps host:port to a live, reusable stream. It carries no internal
// locking: sharing one pool across goroutines is the caller's contract,
// not a guarantee of this type.
type Pool struct {
	conns map[string]*stream.Buffered
}

func NewPool() *Pool {
	return &Pool{conns: make(map[string]*stream.Buffered)}
}

func poolKey(host string, port uint16) string {
	return host + ":" + strconv.FormatUint(uint64(port), 10)
}

// get returns the pooled entry for key. A closed entry is evicted on the
// spot and reported as absent, so the caller reopens and replaces it.
func (p *Pool) get(key string) (*stream.Buffered, bool) {
	s, ok := p.conns[key]
	if !ok {
		return nil, false
	}
	if s.Closed() {
		delete(p.conns, key)
		return nil, false
	}
	return s, true
}

func (p *Pool) put(key string, s *stream.Buffered) {
	p.conns[key] = s
}

func (p *Pool) evict(key string) {
	delete(p.conns, key)
}

// CloseAll closes every pooled connection. Private per-request pools are
// torn down with this once the top-level request completes.
func (p *Pool) CloseAll() error {
	var first error
	for key, s := range p.conns {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
		delete(p.conns, key)
	}
	return first
}

// Len reports how many connections are currently pooled.
func (p *Pool) Len() int { return len(p.conns) }
