package apistore

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// Sentinel errors for the storage registry.
var (
	ErrEmptyID        = errors.New("storage id is empty")
	ErrNilFactory     = errors.New("storage factory is nil")
	ErrUnknownStorage = errors.New("unknown storage")
)

// Factory creates a Storage. A Registry calls it every time a storage is
// requested with New.
type Factory func() (Storage, error)

// Registry maps storage identifiers such as "cookie" or "file" to the
// factories creating them. The host picks a backend by id at composition
// time.
type Registry struct {
	factories map[string]Factory
	mu        sync.RWMutex
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register adds a factory under id. Registering an id a second time
// replaces the previous factory.
func (r *Registry) Register(id string, factory Factory) error {
	if id == "" {
		return ErrEmptyID
	}

	if factory == nil {
		return errors.Wrap(ErrNilFactory, id)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.factories[id] = factory
	return nil
}

// Lookup returns the factory registered under id.
func (r *Registry) Lookup(id string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.factories[id]
	return f, ok
}

// New creates the storage registered under id.
func (r *Registry) New(id string) (Storage, error) {
	f, ok := r.Lookup(id)
	if !ok {
		return nil, errors.Wrap(ErrUnknownStorage, id)
	}

	s, err := f()
	if err != nil {
		return nil, errors.Wrapf(err, "create storage %s", id)
	}
	return s, nil
}

// IDs returns the registered ids in lexical order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.factories))
	for id := range r.factories {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
