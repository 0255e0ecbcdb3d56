package storage

import (
	"context"
	"sync"

	"github.com/jerseyshop/storefront/pkg/errors"
)

// MemoryStore keeps values in process memory; nothing survives a restart
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
	watchers
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (m *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, &errors.ErrNotFound{Resource: "storage key", ID: key}
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryStore) Set(ctx context.Context, key string, value []byte) error {
	m.mu.Lock()
	m.data[key] = append([]byte(nil), value...)
	m.mu.Unlock()
	m.notify(key, value)
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()
	m.notify(key, nil)
	return nil
}

func (m *MemoryStore) Subscribe(key string, fn func(value []byte)) func() {
	return m.subscribe(key, fn)
}
