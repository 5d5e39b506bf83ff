// Package resource maps URI schemes to client implementations and exposes
// a uniform open/read/close surface over whatever client a scheme resolves
// to. Anything past that closed set is forwarded to the bound client's
// matching capability, when it has one.
package resource

import (
	"regexp"

	"github.com/pkg/errors"
)

// Input errors.
var (
	ErrNotURI              = errors.New("input is not a URI")
	ErrSchemeNotRegistered = errors.New("scheme is not registered")
	ErrBadOption           = errors.New("option has wrong type")
	ErrBadScheme           = errors.New("scheme declaration is not valid")
)

// Usage errors: state-machine discipline, not protocol failures.
var (
	ErrNotOpen              = errors.New("resource is not open")
	ErrAlreadyClosed        = errors.New("resource is already closed")
	ErrUnsupportedOperation = errors.New("operation is not supported by the client")
)

// Constructor builds a fresh, unbound client instance for one Resource.
type Constructor func() Client

// schemePattern is what a client may declare as its scheme.
var schemePattern = regexp.MustCompile(`^[^:/?#]+$`)

type registration struct {
	scheme string
	ctor   Constructor
}

// Registry holds scheme → constructor entries. It is append-only and meant
// to be populated once, by explicit registration calls at program
// initialization.
type Registry struct {
	entries []registration
}

func NewRegistry() *Registry { return &Registry{} }

// Register validates the declaration shape up front: a bad scheme or nil
// constructor is a registration-time error, never a runtime one.
func (r *Registry) Register(scheme string, ctor Constructor) error {
	if !schemePattern.MatchString(scheme) {
		return errors.Wrapf(ErrBadScheme, "%q", scheme)
	}
	if ctor == nil {
		return errors.Wrapf(ErrBadScheme, "%q has nil constructor", scheme)
	}

	r.entries = append(r.entries, registration{scheme: scheme, ctor: ctor})
	return nil
}

// Resolve scans the declared schemes in registration order.
func (r *Registry) Resolve(scheme string) (Constructor, error) {
	for _, e := range r.entries {
		if e.scheme == scheme {
			return e.ctor, nil
		}
	}
	return nil, errors.Wrapf(ErrSchemeNotRegistered, "%q", scheme)
}

// DefaultRegistry serves the package-level Open.
var DefaultRegistry = NewRegistry()

func Register(scheme string, ctor Constructor) error {
	return DefaultRegistry.Register(scheme, ctor)
}
