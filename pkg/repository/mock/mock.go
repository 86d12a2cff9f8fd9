package mock

import (
	"context"
	"sync"

	"github.com/garnizeh/rozgar/pkg/repository"
)

var _ repository.KVStore = (*KVStore)(nil)

// KVStore is an in-memory repository.KVStore for tests. Setting GetErr,
// PutErr or DeleteErr makes the matching call fail.
type KVStore struct {
	mu   sync.Mutex
	data map[string]string

	GetErr    error
	PutErr    error
	DeleteErr error

	Puts int
}

func NewKVStore() *KVStore {
	return &KVStore{data: make(map[string]string)}
}

func (m *KVStore) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return "", false, m.GetErr
	}
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *KVStore) Put(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PutErr != nil {
		return m.PutErr
	}
	m.data[key] = value
	m.Puts++
	return nil
}

func (m *KVStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	delete(m.data, key)
	return nil
}

// Raw returns the stored value without error injection.
func (m *KVStore) Raw(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok
}

// Set stores a value without error injection, e.g. to plant corrupt data.
func (m *KVStore) Set(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
}
