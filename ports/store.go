package ports

import (
	"context"
	"time"
)

// RevocationStore tracks refresh token identifiers that may no longer be redeemed
type RevocationStore interface {
	// Revoke marks tokenID as revoked for ttl. It reports false when the
	// token had already been revoked, which signals token reuse.
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) (bool, error)
}
