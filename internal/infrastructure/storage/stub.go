package storage

import (
	"context"
	"sync"
)

// StubMediaStorage keeps uploads in memory. References are served under BaseURL.
type StubMediaStorage struct {
	BaseURL string

	mu      sync.RWMutex
	objects map[string][]byte
}

// NewStubMediaStorage creates an empty stub storage
func NewStubMediaStorage() *StubMediaStorage {
	return &StubMediaStorage{
		BaseURL: "https://media.invalid",
		objects: make(map[string][]byte),
	}
}

// Put implements MediaStorage
func (s *StubMediaStorage) Put(_ context.Context, folder string, data []byte, contentType string) (string, error) {
	key := objectKey(folder, contentType)
	s.mu.Lock()
	s.objects[key] = append([]byte(nil), data...)
	s.mu.Unlock()
	return key, nil
}

// URL implements MediaStorage
func (s *StubMediaStorage) URL(_ context.Context, ref string) (string, error) {
	if ref == "" {
		return "", ErrEmptyReference
	}
	return s.BaseURL + "/" + ref, nil
}

// Delete implements MediaStorage
func (s *StubMediaStorage) Delete(_ context.Context, ref string) error {
	if ref == "" {
		return ErrEmptyReference
	}
	s.mu.Lock()
	delete(s.objects, ref)
	s.mu.Unlock()
	return nil
}

// Has reports whether ref is stored
func (s *StubMediaStorage) Has(ref string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[ref]
	return ok
}

var _ MediaStorage = (*StubMediaStorage)(nil)
