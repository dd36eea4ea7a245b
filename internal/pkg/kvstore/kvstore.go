package kvstore

import (
	"sync"
)

type KVStore[K comparable, V any] struct {
	data map[K]V
	mu   sync.RWMutex
}

// New creates new KVStore instance.
func New[K comparable, V any]() *KVStore[K, V] {
	return &KVStore[K, V]{data: make(map[K]V)}
}

// Get returns value by key.
func (s *KVStore[K, V]) Get(key K) (V, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.data[key]
	return item, ok
}

// Set stores value in storage making it accessible by key.
func (s *KVStore[K, V]) Set(key K, data V) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = data
}

// GetOrSet returns the value stored under key, constructing and storing
// it with create when absent. Check and insert run under one write lock,
// so two callers racing on the same key observe the same value.
func (s *KVStore[K, V]) GetOrSet(key K, create func() V) V {
	s.mu.Lock()
	defer s.mu.Unlock()

	if item, ok := s.data[key]; ok {
		return item
	}
	item := create()
	s.data[key] = item
	return item
}

// Remove entry by key.
func (s *KVStore[K, V]) Remove(key K) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.data[key]
	delete(s.data, key)
	return ok
}

// Drain empties the storage and returns every value it held.
func (s *KVStore[K, V]) Drain() []V {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]V, 0, len(s.data))
	for _, item := range s.data {
		items = append(items, item)
	}
	s.data = make(map[K]V)
	return items
}

// Len returns the number of stored entries.
func (s *KVStore[K, V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
