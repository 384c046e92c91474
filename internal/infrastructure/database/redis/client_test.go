package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/mhtech-dashboard/internal/config"
	"github.com/turtacn/mhtech-dashboard/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/mhtech-dashboard/pkg/errors"
)

func newMiniClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	cfg := config.Default().Redis
	cfg.Addr = mr.Addr()
	client, err := NewClient(cfg, logging.NewNopLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client, mr
}

func TestNewClient_Success(t *testing.T) {
	client, _ := newMiniClient(t)
	assert.NoError(t, client.GetUnderlyingClient().Ping(context.Background()).Err())
}

func TestNewClient_ConnectionFailed(t *testing.T) {
	cfg := config.Default().Redis
	cfg.Addr = "localhost:99999"

	client, err := NewClient(cfg, logging.NewNopLogger())
	assert.Error(t, err)
	assert.Nil(t, client)
	assert.True(t, errors.IsCode(err, errors.ErrCodeCacheError))
}

func TestClient_Operations(t *testing.T) {
	client, _ := newMiniClient(t)
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "foo", "bar", 0).Err())
	val, err := client.Get(ctx, "foo").Result()
	require.NoError(t, err)
	assert.Equal(t, "bar", val)

	exists, err := client.Exists(ctx, "foo").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), exists)

	deleted, err := client.Del(ctx, "foo").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
}

func TestClient_Close(t *testing.T) {
	client, _ := newMiniClient(t)

	assert.NoError(t, client.Close())
	assert.NoError(t, client.Close())

	assert.Equal(t, ErrClientClosed, client.Get(context.Background(), "foo").Err())
	assert.Equal(t, ErrClientClosed, client.Ping(context.Background()))
	assert.Equal(t, ErrClientClosed, client.Del(context.Background(), "foo").Err())
}
