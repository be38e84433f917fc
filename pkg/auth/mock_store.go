package auth

import "sync"

// MockStore is an in-memory KeyStore with error injection, for tests
type MockStore struct {
	name     string
	key      string
	readOnly bool
	mu       sync.Mutex

	GetError    error
	SetError    error
	DeleteError error
}

// NewMockStore creates a writable mock store holding key (which may be empty)
func NewMockStore(name, key string) *MockStore {
	return &MockStore{name: name, key: key}
}

// NewReadOnlyMockStore creates a mock store that rejects writes
func NewReadOnlyMockStore(name, key string) *MockStore {
	return &MockStore{name: name, key: key, readOnly: true}
}

func (m *MockStore) Name() string { return m.name }

func (m *MockStore) Get() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.GetError != nil {
		return "", m.GetError
	}
	if m.key == "" {
		return "", ErrKeyNotFound
	}
	return m.key, nil
}

func (m *MockStore) Set(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.readOnly {
		return ErrStoreReadOnly
	}
	if m.SetError != nil {
		return m.SetError
	}
	m.key = key
	return nil
}

func (m *MockStore) Delete() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.readOnly {
		return ErrStoreReadOnly
	}
	if m.DeleteError != nil {
		return m.DeleteError
	}
	if m.key == "" {
		return ErrKeyNotFound
	}
	m.key = ""
	return nil
}
