// Package mocks provides shared in-memory test doubles.
package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/fundcircle/fundcircle/internal/cache"
)

// MockCache is an in-memory implementation of the cache.Cache interface.
// Used for testing without requiring a real Redis instance. Entries never
// expire; the most recent TTL is kept for assertions.
type MockCache struct {
	data    map[string]string
	lastTTL time.Duration
	mu      sync.RWMutex
}

// NewMockCache creates a new mock cache instance.
func NewMockCache() *MockCache {
	return &MockCache{
		data: make(map[string]string),
	}
}

// Get retrieves a value; absent keys return cache.ErrMiss like the real
// implementation.
func (m *MockCache) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	val, exists := m.data[key]
	if !exists {
		return "", cache.ErrMiss
	}
	return val, nil
}

// Set stores a value. The entry never expires; the TTL is recorded.
func (m *MockCache) Set(_ context.Context, key string, value string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = value
	m.lastTTL = ttl
	return nil
}

// Del deletes keys.
func (m *MockCache) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

// LastTTL returns the TTL passed to the most recent Set.
func (m *MockCache) LastTTL() time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastTTL
}

// Len returns the number of stored keys.
func (m *MockCache) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
