package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedProfile struct {
	Name string `json:"name"`
	Age  int    `json:"age"`
}

func TestMemoryCache_SetGetDelete(t *testing.T) {
	c := NewMemoryCache(time.Hour)
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", cachedProfile{Name: "Mali", Age: 17}, time.Minute))

	var got cachedProfile
	ok, err := c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, cachedProfile{Name: "Mali", Age: 17}, got)

	require.NoError(t, c.Delete(ctx, "k"))
	ok, err = c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache(time.Hour)
	defer c.Close()
	ctx := context.Background()

	now := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "short", 1, time.Second))
	require.NoError(t, c.Set(ctx, "forever", 2, 0))

	now = now.Add(2 * time.Second)

	var v int
	ok, _ := c.Get(ctx, "short", &v)
	assert.False(t, ok)
	ok, _ = c.Get(ctx, "forever", &v)
	assert.True(t, ok)
	assert.Equal(t, 2, v)
}

func TestMemoryCache_CloseTwice(t *testing.T) {
	c := NewMemoryCache(time.Hour)
	assert.NoError(t, c.Close())
	assert.NoError(t, c.Close())
}
