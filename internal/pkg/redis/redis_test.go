package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := Connect("redis://" + mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestConnectRejectsBadURL(t *testing.T) {
	_, err := Connect("://nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid redis url")
}

func TestConnectRejectsUnreachableServer(t *testing.T) {
	_, err := Connect("redis://127.0.0.1:1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ping failed")
}

func TestSetGetDel(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "greeting", "hello", 0))

	val, err := c.Get(ctx, "greeting")
	require.NoError(t, err)
	assert.Equal(t, "hello", val)

	ok, err := c.Exists(ctx, "greeting")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, c.Del(ctx, "greeting"))

	ok, err = c.Exists(ctx, "greeting")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestGetMissingKeyIsNotAnError(t *testing.T) {
	c := newTestClient(t)

	val, err := c.Get(context.Background(), "nothing-here")
	require.NoError(t, err)
	assert.Empty(t, val)
}

func TestSetWithTTL(t *testing.T) {
	mr := miniredis.RunT(t)
	c, err := Connect("redis://" + mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "temp", "v", time.Minute))
	assert.Greater(t, mr.TTL("temp"), time.Duration(0))

	mr.FastForward(2 * time.Minute)

	val, err := c.Get(ctx, "temp")
	require.NoError(t, err)
	assert.Empty(t, val)
}
