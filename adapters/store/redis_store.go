package store

import (
	"context"
	"fmt"
	"time"

	"github.com/layer-3/freelance/ports"
	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the revocation list in Redis so every instance sees it
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a new Redis store
func NewRedisStore(client *redis.Client) ports.RevocationStore {
	return &RedisStore{
		client: client,
		prefix: "freelance:revoked:",
	}
}

// Revoke marks a token id as revoked. SETNX makes concurrent revocations of the same id race-free.
func (s *RedisStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) (bool, error) {
	key := s.prefix + tokenID

	ok, err := s.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to revoke token: %w", err)
	}

	return ok, nil
}
