package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/screener/pkg/config"
)

func TestNewClient_Disabled(t *testing.T) {
	client, err := New(&config.Config{Redis: config.RedisConfig{Enabled: false}})
	require.NoError(t, err)
	assert.False(t, client.Enabled())
	assert.NoError(t, client.Close())
}

func TestCache_DisabledIsNoop(t *testing.T) {
	cache := NewCache(Disabled(), "screener")
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", map[string]int{"a": 1}, time.Minute))

	var dest map[string]int
	found, err := cache.Get(ctx, "k", &dest)
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, cache.Delete(ctx, "k"))
}

func TestCache_FullKey(t *testing.T) {
	cache := NewCache(Disabled(), "screener")
	assert.Equal(t, "screener:cache:snapshot:AAPL:2024-03-01", cache.fullKey(SnapshotKey("aapl", time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))))
}

func TestKeys(t *testing.T) {
	day := time.Date(2024, 3, 1, 15, 0, 0, 0, time.UTC)
	assert.Equal(t, "snapshot:BRK-B:2024-03-01", SnapshotKey("brk-b", day))
	assert.Equal(t, "universe:primary:2024-03-01", UniverseKey("primary", day))
}

func TestNilClientIsDisabled(t *testing.T) {
	var c *Client
	assert.False(t, c.Enabled())
}
