package apistore

import (
	"sync"

	"github.com/pkg/errors"
)

type registration struct {
	id      string
	factory Factory
}

var (
	defaultMu       sync.RWMutex
	defaultRegistry *Registry

	deferredMu sync.Mutex
	deferred   []registration
)

// SetDefault installs reg as the process wide registry. Passing nil
// removes it, after which RegisterOrDefer buffers registrations again.
func SetDefault(reg *Registry) {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	defaultRegistry = reg
}

// Default returns the process wide registry, if the host installed one.
func Default() (*Registry, bool) {
	defaultMu.RLock()
	defer defaultMu.RUnlock()

	return defaultRegistry, defaultRegistry != nil
}

// RegisterOrDefer registers factory under id with the default registry. If
// no default registry has been installed yet the registration is buffered
// until the host calls DrainDeferred.
//
// Calling it twice for the same id registers (or buffers) twice.
func RegisterOrDefer(id string, factory Factory) error {
	if reg, ok := Default(); ok {
		return reg.Register(id, factory)
	}

	if id == "" {
		return ErrEmptyID
	}

	if factory == nil {
		return errors.Wrap(ErrNilFactory, id)
	}

	deferredMu.Lock()
	defer deferredMu.Unlock()

	deferred = append(deferred, registration{id: id, factory: factory})
	return nil
}

// Deferred returns the ids waiting for DrainDeferred, in the order they
// were buffered.
func Deferred() []string {
	deferredMu.Lock()
	defer deferredMu.Unlock()

	ids := make([]string, len(deferred))
	for i, d := range deferred {
		ids[i] = d.id
	}
	return ids
}

// DrainDeferred registers every buffered registration with reg, in the
// order they were buffered, and empties the buffer. It returns the number
// of registrations applied. A nil reg leaves the buffer untouched.
func DrainDeferred(reg *Registry) int {
	if reg == nil {
		return 0
	}

	deferredMu.Lock()
	defer deferredMu.Unlock()

	for _, d := range deferred {
		// id and factory were validated by RegisterOrDefer
		_ = reg.Register(d.id, d.factory)
	}

	n := len(deferred)
	deferred = nil
	return n
}
