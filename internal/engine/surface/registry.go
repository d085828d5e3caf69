package surface

import (
	"errors"

	"github.com/google/uuid"

	"github.com/loomdoc/loom/internal/engine/doc"
)

// ErrDecoratorNotFound is returned when a registry call references a key
// with no live decorator.
var ErrDecoratorNotFound = errors.New("decorator not found")

// MemRegistry is an in-memory decorator registry. Each created decorator
// gets a fresh opaque handle (a UUID string); Redecorate bumps a per-key
// revision counter so tests and frontends can observe update calls.
type MemRegistry struct {
	handles   map[doc.NodeKey]Handle
	revisions map[doc.NodeKey]int
}

// NewMemRegistry creates an empty registry.
func NewMemRegistry() *MemRegistry {
	return &MemRegistry{
		handles:   make(map[doc.NodeKey]Handle),
		revisions: make(map[doc.NodeKey]int),
	}
}

// Create implements Registry.
func (r *MemRegistry) Create(key doc.NodeKey) (Handle, error) {
	h := uuid.NewString()
	r.handles[key] = h
	r.revisions[key] = 0
	return h, nil
}

// Remove implements Registry.
func (r *MemRegistry) Remove(key doc.NodeKey) error {
	if _, ok := r.handles[key]; !ok {
		return ErrDecoratorNotFound
	}
	delete(r.handles, key)
	delete(r.revisions, key)
	return nil
}

// Redecorate implements Registry.
func (r *MemRegistry) Redecorate(key doc.NodeKey) error {
	if _, ok := r.handles[key]; !ok {
		return ErrDecoratorNotFound
	}
	r.revisions[key]++
	return nil
}

// Handle returns the live handle for a decorator key.
func (r *MemRegistry) Handle(key doc.NodeKey) (Handle, bool) {
	h, ok := r.handles[key]
	return h, ok
}

// Revision returns how many redecorate calls a decorator has received.
func (r *MemRegistry) Revision(key doc.NodeKey) (int, bool) {
	rev, ok := r.revisions[key]
	return rev, ok
}

// Count returns the number of live decorators.
func (r *MemRegistry) Count() int { return len(r.handles) }
