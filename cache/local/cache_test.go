package local

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *LocalCache {
	c, err := NewCache(Config{GCInterval: time.Minute})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestGetSet(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "profile:default", `{"version":3}`, 0))

	v, err := c.Get(ctx, "profile:default")
	require.NoError(t, err)
	assert.Equal(t, `{"version":3}`, v)

	require.NoError(t, c.Set(ctx, "profile:default", `{"version":4}`, 0))
	v, _ = c.Get(ctx, "profile:default")
	assert.Equal(t, `{"version":4}`, v)
}

func TestGetMissing(t *testing.T) {
	c := newTestCache(t)
	_, err := c.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTTLExpiry(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "ttl_key", "val", 10*time.Millisecond))

	time.Sleep(20 * time.Millisecond)
	_, err := c.Get(ctx, "ttl_key")
	assert.ErrorIs(t, err, ErrNotFound)
	ok, _ := c.Exists(ctx, "ttl_key")
	assert.False(t, ok)
}

func TestGCSweepsExpired(t *testing.T) {
	c, err := NewCache(Config{GCInterval: 5 * time.Millisecond})
	require.NoError(t, err)
	defer c.Close()

	require.NoError(t, c.Set(context.Background(), "k", "v", time.Millisecond))
	assert.Eventually(t, func() bool {
		c.mu.RLock()
		defer c.mu.RUnlock()
		return len(c.kv) == 0
	}, time.Second, 5*time.Millisecond)
}

func TestDelAndExists(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()
	_ = c.Set(ctx, "k", "v", 0)

	exists, err := c.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, exists)

	_ = c.Del(ctx, "k")
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCloseTwice(t *testing.T) {
	c := newTestCache(t)
	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close())
}
