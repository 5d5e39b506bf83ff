package http

import "strings"

// Headers is an ordered, case-insensitive header multimap. Lookup ignores
// case; the original casing of the last-written occurrence of a key is what
// round-trips through serialization. Iteration follows first-insertion order.
type Headers struct {
	entries []*headerEntry
	index   map[string]*headerEntry
}

type headerEntry struct {
	key    string // display casing: last writer wins
	values []string
}

func NewHeaders() *Headers {
	return &Headers{index: make(map[string]*headerEntry)}
}

func normalizeKey(key string) string { return strings.ToLower(key) }

// Get returns the first value stored under key.
func (h *Headers) Get(key string) (value string, ok bool) {
	e, ok := h.index[normalizeKey(key)]
	if !ok || len(e.values) == 0 {
		return "", false
	}
	return e.values[0], true
}

// Values returns all values stored under key, in insertion order.
func (h *Headers) Values(key string) (values []string, ok bool) {
	e, ok := h.index[normalizeKey(key)]
	if !ok {
		return nil, false
	}
	out := make([]string, len(e.values))
	copy(out, e.values)
	return out, true
}

// Set replaces all values under key with value.
func (h *Headers) Set(key, value string) {
	if e, ok := h.index[normalizeKey(key)]; ok {
		e.key = key
		e.values = []string{value}
		return
	}
	h.insert(key, value)
}

// Add appends value under key without disturbing earlier values.
// Multiple lines for the same key are legal per the header grammar.
func (h *Headers) Add(key, value string) {
	if e, ok := h.index[normalizeKey(key)]; ok {
		e.key = key
		e.values = append(e.values, value)
		return
	}
	h.insert(key, value)
}

func (h *Headers) insert(key, value string) {
	e := &headerEntry{key: key, values: []string{value}}
	h.entries = append(h.entries, e)
	h.index[normalizeKey(key)] = e
}

func (h *Headers) Del(key string) {
	norm := normalizeKey(key)
	e, ok := h.index[norm]
	if !ok {
		return
	}
	delete(h.index, norm)
	for i, cur := range h.entries {
		if cur == e {
			h.entries = append(h.entries[:i], h.entries[i+1:]...)
			break
		}
	}
}

func (h *Headers) Has(key string) bool {
	_, ok := h.index[normalizeKey(key)]
	return ok
}

func (h *Headers) Len() int { return len(h.entries) }

// Fields yields one (key, value) pair per header line, in insertion order,
// keys in their display casing.
func (h *Headers) Fields() [][2]string {
	fields := make([][2]string, 0, len(h.entries))
	for _, e := range h.entries {
		for _, v := range e.values {
			fields = append(fields, [2]string{e.key, v})
		}
	}
	return fields
}

// Map flattens the headers into a plain map, joining repeated values with
// ", ". Used to surface response headers as resource metadata.
func (h *Headers) Map() map[string]string {
	out := make(map[string]string, len(h.entries))
	for _, e := range h.entries {
		out[e.key] = strings.Join(e.values, ", ")
	}
	return out
}
