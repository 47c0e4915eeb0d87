// Package kv provides the raw key-value storage port, its local adapters, and
// the versioned envelope repository built on top of it.
package kv

import (
	"context"
	"sort"
	"sync"
)

// DataStore is raw string storage addressed by key. Implementations give no
// transactional guarantees beyond a single call.
type DataStore interface {
	// Get returns the value and true, or false when the key is absent.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(ctx context.Context, key string) error
}

// MemoryStore is a DataStore held in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]string)}
}

// Get implements DataStore.
func (s *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.data[key]
	return v, ok, nil
}

// Set implements DataStore.
func (s *MemoryStore) Set(_ context.Context, key, value string) error {
	s.mu.Lock()
	s.data[key] = value
	s.mu.Unlock()
	return nil
}

// Remove implements DataStore.
func (s *MemoryStore) Remove(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.data, key)
	s.mu.Unlock()
	return nil
}

// Keys returns the stored keys in order.
func (s *MemoryStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
