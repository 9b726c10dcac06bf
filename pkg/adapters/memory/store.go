package memory

import (
	"context"
	"sync"

	"github.com/aretw0/dsg/pkg/domain"
)

// Store implements ports.FingerprintStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]string
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]string),
	}
}

// Lookup returns the digest last stored for key.
func (s *Store) Lookup(ctx context.Context, key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	digest, ok := s.data[key]
	if !ok {
		return "", domain.ErrFingerprintNotFound
	}
	return digest, nil
}

// Store records digest under key.
func (s *Store) Store(ctx context.Context, key, digest string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = digest
	return nil
}

// Forget drops every fingerprint.
func (s *Store) Forget(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = make(map[string]string)
	return nil
}

// Len returns the number of stored fingerprints.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}
