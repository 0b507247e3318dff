package store

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/layer-3/freelance/ports"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stores(t *testing.T) map[string]ports.RevocationStore {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return map[string]ports.RevocationStore{
		"memory": NewMemoryStore(),
		"redis":  NewRedisStore(client),
	}
}

func TestRevoke_FirstCallWins(t *testing.T) {
	ctx := context.Background()

	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			fresh, err := s.Revoke(ctx, "jti-1", time.Hour)
			require.NoError(t, err)
			assert.True(t, fresh)

			fresh, err = s.Revoke(ctx, "jti-1", time.Hour)
			require.NoError(t, err)
			assert.False(t, fresh)

			fresh, err = s.Revoke(ctx, "jti-2", time.Hour)
			require.NoError(t, err)
			assert.True(t, fresh)
		})
	}
}

func TestRevoke_Concurrent(t *testing.T) {
	ctx := context.Background()

	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			var wins atomic.Int32
			var wg sync.WaitGroup
			for i := 0; i < 16; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if ok, err := s.Revoke(ctx, "shared", time.Hour); err == nil && ok {
						wins.Add(1)
					}
				}()
			}
			wg.Wait()
			assert.Equal(t, int32(1), wins.Load())
		})
	}
}

func TestMemoryStore_EntriesExpire(t *testing.T) {
	s := NewMemoryStore().(*MemoryStore)

	_, err := s.Revoke(context.Background(), "short", 10*time.Millisecond)
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		s.mu.Lock()
		defer s.mu.Unlock()
		return len(s.revoked) == 0
	}, time.Second, 5*time.Millisecond)
}

func TestRedisStore_KeyHasTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	s := NewRedisStore(client)
	_, err := s.Revoke(context.Background(), "jti", time.Minute)
	require.NoError(t, err)

	assert.Equal(t, time.Minute, mr.TTL("freelance:revoked:jti"))
	mr.FastForward(2 * time.Minute)
	assert.False(t, mr.Exists("freelance:revoked:jti"))
}
