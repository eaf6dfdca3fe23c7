package credstore

import (
	"context"
	"sync"
)

// MemoryStore is an in-process Store. Error fields inject failures in tests.
type MemoryStore struct {
	mu    sync.Mutex
	creds Credentials

	LoadErr  error
	SaveErr  error
	ClearErr error
}

func NewMemoryStore(creds Credentials) *MemoryStore {
	return &MemoryStore{creds: creds}
}

func (m *MemoryStore) Path() string { return "" }

func (m *MemoryStore) Load(ctx context.Context) (Credentials, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return Credentials{}, m.LoadErr
	}
	return m.creds, nil
}

func (m *MemoryStore) AccessToken(ctx context.Context) (string, error) {
	creds, err := m.Load(ctx)
	return creds.AccessToken, err
}

func (m *MemoryStore) Save(ctx context.Context, creds Credentials) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.creds = creds
	return nil
}

func (m *MemoryStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ClearErr != nil {
		return m.ClearErr
	}
	m.creds = Credentials{}
	return nil
}
