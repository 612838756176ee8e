package registry

import (
	"cmp"
	"errors"
	"fmt"
	"iter"
	"maps"
	"slices"
	"sync"
)

var (
	// ErrDuplicateKey is returned by Add when the key is already registered.
	ErrDuplicateKey = errors.New("registry: key already registered")

	// ErrNotFound is the sentinel behind Lookup failures.
	ErrNotFound = errors.New("registry: key not found")
)

// Registry maps ordered keys to values. The zero value is not usable;
// construct one with New.
type Registry[K cmp.Ordered, V any] struct {
	mu sync.RWMutex
	m  map[K]V
}

// New returns an empty registry.
func New[K cmp.Ordered, V any]() *Registry[K, V] {
	return &Registry[K, V]{m: map[K]V{}}
}

// Add stores value under key unless the key is taken.
func (r *Registry[K, V]) Add(key K, value V) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.m[key]; taken {
		return fmt.Errorf("%w: %v", ErrDuplicateKey, key)
	}
	r.m[key] = value
	return nil
}

// Get reports the value under key and whether it was present.
func (r *Registry[K, V]) Get(key K) (V, bool) {
	r.mu.RLock()
	v, ok := r.m[key]
	r.mu.RUnlock()
	return v, ok
}

// Lookup is Get with an error wrapping ErrNotFound that lists the known keys.
func (r *Registry[K, V]) Lookup(key K) (V, error) {
	v, ok := r.Get(key)
	if !ok {
		return v, fmt.Errorf("%w: %v (known: %v)", ErrNotFound, key, r.Keys())
	}
	return v, nil
}

// snapshot copies the entries so callers can iterate without the lock.
func (r *Registry[K, V]) snapshot() map[K]V {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return maps.Clone(r.m)
}

// Keys returns the registered keys in ascending order.
func (r *Registry[K, V]) Keys() []K {
	return slices.Sorted(maps.Keys(r.snapshot()))
}

// All yields the entries of a snapshot in ascending key order. The
// registry may be modified while iterating.
func (r *Registry[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		snap := r.snapshot()
		for _, k := range slices.Sorted(maps.Keys(snap)) {
			if !yield(k, snap[k]) {
				return
			}
		}
	}
}
