package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/dsg/pkg/adapters/redis"
	"github.com/aretw0/dsg/pkg/domain"
	"github.com/aretw0/dsg/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { client.Close() })
	return mr, client
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := setup(t)
	store := redis.NewFromClient(client)
	ports.RunFingerprintStoreContract(t, store)
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, client := setup(t)
	store := redis.NewFromClient(client, redis.WithTTL(1*time.Second), redis.WithPrefix("test:"))
	ctx := context.Background()

	require.NoError(t, store.Store(ctx, "part-1", "abc"))
	assert.True(t, mr.Exists("test:fingerprints"))

	got, err := store.Lookup(ctx, "part-1")
	require.NoError(t, err)
	assert.Equal(t, "abc", got)

	mr.FastForward(2 * time.Second)

	_, err = store.Lookup(ctx, "part-1")
	assert.ErrorIs(t, err, domain.ErrFingerprintNotFound)
}

func TestStatusPublisher(t *testing.T) {
	mr, client := setup(t)
	pub := redis.NewStatusPublisher(client)
	ctx := context.Background()

	idle, err := pub.ReadStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusIdle, idle.Status)

	sub := client.Subscribe(ctx, pub.Channel())
	defer sub.Close()
	_, err = sub.Receive(ctx)
	require.NoError(t, err)

	want := domain.Progress{Status: domain.StatusWorking, StartTime: 12.5, ProcessedBuffers: 4, TotalBuffers: 9}
	require.NoError(t, pub.WriteStatus(ctx, want))

	got, err := pub.ReadStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	raw, err := mr.Get("dsg:status")
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"working","start_time":12.5,"processed_buffers":4,"total_buffers":9}`, raw)

	select {
	case msg := <-sub.Channel():
		assert.JSONEq(t, raw, msg.Payload)
	case <-time.After(time.Second):
		t.Fatal("status was not published")
	}
}

func TestLocker(t *testing.T) {
	_, client := setup(t)
	locker := redis.NewLocker(client, "dsg:")
	ctx := context.Background()

	unlock, err := locker.Lock(ctx, "localhost:12345", time.Minute)
	require.NoError(t, err)

	t.Run("Second Holder Times Out", func(t *testing.T) {
		tctx, cancel := context.WithTimeout(ctx, 250*time.Millisecond)
		defer cancel()
		_, err := locker.Lock(tctx, "localhost:12345", time.Minute)
		assert.ErrorIs(t, err, redis.ErrLockAcquire)
	})

	t.Run("Released Lock Can Be Taken", func(t *testing.T) {
		require.NoError(t, unlock(ctx))
		again, err := locker.Lock(ctx, "localhost:12345", time.Minute)
		require.NoError(t, err)
		assert.NoError(t, again(ctx))
	})
}
