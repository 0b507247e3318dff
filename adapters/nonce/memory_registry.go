package nonce

import (
	"context"
	"sync"
	"time"

	"github.com/layer-3/freelance/core"
)

// MemoryRegistry is an in-process nonce registry. Expired entries are
// rejected on consumption and dropped by Sweep.
type MemoryRegistry struct {
	pending map[string]time.Time
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryRegistry creates a registry whose nonces live for ttl
func NewMemoryRegistry(ttl time.Duration) *MemoryRegistry {
	return &MemoryRegistry{
		pending: make(map[string]time.Time),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Issue creates and registers a fresh nonce
func (r *MemoryRegistry) Issue(ctx context.Context) (core.Nonce, error) {
	value, err := generateValue()
	if err != nil {
		return core.Nonce{}, err
	}

	now := r.now()
	n := core.Nonce{
		Value:     value,
		IssuedAt:  now,
		ExpiresAt: now.Add(r.ttl),
	}

	r.mu.Lock()
	r.pending[value] = n.ExpiresAt
	r.mu.Unlock()

	return n, nil
}

// Consume removes the nonce. Removal happens before the expiry check so an
// expired nonce is gone after the first attempt too.
func (r *MemoryRegistry) Consume(ctx context.Context, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	expiresAt, ok := r.pending[value]
	if !ok {
		return core.ErrNonceInvalid
	}
	delete(r.pending, value)

	if !r.now().Before(expiresAt) {
		return core.ErrNonceInvalid
	}
	return nil
}

// Sweep drops expired nonces and returns how many were removed
func (r *MemoryRegistry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	removed := 0
	for value, expiresAt := range r.pending {
		if !now.Before(expiresAt) {
			delete(r.pending, value)
			removed++
		}
	}
	return removed
}

// Run sweeps every interval until ctx is done
func (r *MemoryRegistry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// Len returns the number of outstanding nonces
func (r *MemoryRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pending)
}
