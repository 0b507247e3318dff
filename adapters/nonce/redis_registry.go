package nonce

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/layer-3/freelance/core"
	"github.com/redis/go-redis/v9"
)

// RedisRegistry shares nonces between instances. Expiry is delegated to key TTLs.
type RedisRegistry struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisRegistry creates a Redis backed registry
func NewRedisRegistry(client *redis.Client, ttl time.Duration) *RedisRegistry {
	return &RedisRegistry{
		client: client,
		prefix: "freelance:nonce:",
		ttl:    ttl,
	}
}

// Issue creates a nonce and stores it with the registry TTL
func (r *RedisRegistry) Issue(ctx context.Context) (core.Nonce, error) {
	value, err := generateValue()
	if err != nil {
		return core.Nonce{}, err
	}

	now := time.Now()
	ok, err := r.client.SetNX(ctx, r.prefix+value, now.Unix(), r.ttl).Result()
	if err != nil {
		return core.Nonce{}, fmt.Errorf("failed to store nonce: %w", err)
	}
	if !ok {
		return core.Nonce{}, errors.New("nonce collision")
	}

	return core.Nonce{
		Value:     value,
		IssuedAt:  now,
		ExpiresAt: now.Add(r.ttl),
	}, nil
}

// Consume deletes the nonce key. Only the caller whose DEL removed the key succeeds.
func (r *RedisRegistry) Consume(ctx context.Context, value string) error {
	if value == "" {
		return core.ErrNonceInvalid
	}

	removed, err := r.client.Del(ctx, r.prefix+value).Result()
	if err != nil {
		return fmt.Errorf("failed to consume nonce: %w", err)
	}
	if removed == 0 {
		return core.ErrNonceInvalid
	}
	return nil
}
