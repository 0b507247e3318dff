package store

import (
	"context"
	"sync"
	"time"

	"github.com/layer-3/freelance/ports"
)

// MemoryStore is an in-memory revocation list for refresh token ids
type MemoryStore struct {
	revoked map[string]time.Time
	mu      sync.Mutex
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() ports.RevocationStore {
	return &MemoryStore{
		revoked: make(map[string]time.Time),
	}
}

// Revoke marks a token id as revoked until ttl elapses
func (s *MemoryStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if expiry, exists := s.revoked[tokenID]; exists && now.Before(expiry) {
		return false, nil
	}

	expiry := now.Add(ttl)
	s.revoked[tokenID] = expiry

	// Drop the entry once the token could not be presented anyway
	time.AfterFunc(ttl, func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		if stored, exists := s.revoked[tokenID]; exists && !stored.After(expiry) {
			delete(s.revoked, tokenID)
		}
	})

	return true, nil
}
