package kv

import (
	"context"
	"sync"
)

// MemStore implements Store in memory.
type MemStore struct {
	mu     sync.Mutex
	values map[string][]byte

	// FailPuts makes every Put fail when set
	FailPuts error
}

var _ Store = (*MemStore)(nil)

// NewMemStore creates an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{values: make(map[string][]byte)}
}

// Get returns a copy of the value at key.
func (m *MemStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	v, ok := m.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

// Put stores a copy of value at key.
func (m *MemStore) Put(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := ValidateKey(key); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailPuts != nil {
		return m.FailPuts
	}
	m.values[key] = append([]byte(nil), value...)
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (m *MemStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.values, key)
	return nil
}

// Close is a no-op.
func (m *MemStore) Close() error {
	return nil
}

// SetFailPuts toggles Put failures under the store lock.
func (m *MemStore) SetFailPuts(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FailPuts = err
}
