package nonce

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/layer-3/freelance/core"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisRegistry(t *testing.T, ttl time.Duration) (*RedisRegistry, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisRegistry(client, ttl), mr
}

func TestRedisRegistry_ConsumeOnce(t *testing.T) {
	ctx := context.Background()
	r, mr := newRedisRegistry(t, time.Minute)

	n, err := r.Issue(ctx)
	require.NoError(t, err)
	assert.True(t, mr.Exists("freelance:nonce:"+n.Value))
	assert.Equal(t, time.Minute, mr.TTL("freelance:nonce:"+n.Value))

	require.NoError(t, r.Consume(ctx, n.Value))
	assert.ErrorIs(t, r.Consume(ctx, n.Value), core.ErrNonceInvalid)
}

func TestRedisRegistry_Expired(t *testing.T) {
	ctx := context.Background()
	r, mr := newRedisRegistry(t, time.Minute)

	n, err := r.Issue(ctx)
	require.NoError(t, err)

	mr.FastForward(time.Minute + time.Second)
	assert.ErrorIs(t, r.Consume(ctx, n.Value), core.ErrNonceInvalid)
}

func TestRedisRegistry_Unknown(t *testing.T) {
	r, _ := newRedisRegistry(t, time.Minute)

	assert.ErrorIs(t, r.Consume(context.Background(), "missing"), core.ErrNonceInvalid)
	assert.ErrorIs(t, r.Consume(context.Background(), ""), core.ErrNonceInvalid)
}

func TestRedisRegistry_ConcurrentConsume(t *testing.T) {
	ctx := context.Background()
	r, _ := newRedisRegistry(t, time.Minute)

	n, err := r.Issue(ctx)
	require.NoError(t, err)

	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if r.Consume(ctx, n.Value) == nil {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
}

func TestRedisRegistry_Unavailable(t *testing.T) {
	r, mr := newRedisRegistry(t, time.Minute)
	mr.Close()

	_, err := r.Issue(context.Background())
	assert.Error(t, err)

	err = r.Consume(context.Background(), "abc")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, core.ErrNonceInvalid)
}
