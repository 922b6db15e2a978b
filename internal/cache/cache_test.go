package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCacheRoundtrip(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	type profile struct {
		Name string `json:"name"`
	}

	require.NoError(t, c.Set(ctx, ProfileKey("vendor-1"), profile{Name: "Acme Supplies"}))

	var got profile
	require.NoError(t, c.Get(ctx, ProfileKey("vendor-1"), &got))
	assert.Equal(t, "Acme Supplies", got.Name)
}

func TestMemoryCacheMiss(t *testing.T) {
	c := NewMemoryCache()

	var out map[string]string
	err := c.Get(context.Background(), ConversationsKey("vendor-1"), &out)
	assert.ErrorIs(t, err, ErrMiss)
}

func TestMemoryCacheOverwrite(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()
	key := ProfileKey("vendor-1")

	require.NoError(t, c.Set(ctx, key, "first"))
	require.NoError(t, c.Set(ctx, key, "second"))

	var got string
	require.NoError(t, c.Get(ctx, key, &got))
	assert.Equal(t, "second", got)
}

func TestNewWithoutRedisFallsBackToMemory(t *testing.T) {
	c, err := New("")
	require.NoError(t, err)
	assert.IsType(t, &MemoryCache{}, c)
}

func TestNewRejectsBadRedisURL(t *testing.T) {
	_, err := New("not a url")
	assert.Error(t, err)
}

func TestCacheKeys(t *testing.T) {
	assert.Equal(t, "vendorchat:profile:v1", ProfileKey("v1"))
	assert.Equal(t, "vendorchat:conversations:v1", ConversationsKey("v1"))
}
