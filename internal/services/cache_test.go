package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(time.Hour)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	var got []string
	hit, err := c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, c.Set(ctx, "k", []string{"a", "b"}))
	hit, err = c.Get(ctx, "k", &got)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []string{"a", "b"}, got)

	require.NoError(t, c.Delete(ctx, "k", "missing"))
	hit, _ = c.Get(ctx, "k", &got)
	assert.False(t, hit)

	require.NoError(t, c.Set(ctx, "k", 1))
	now = now.Add(2 * time.Hour)
	var n int
	hit, _ = c.Get(ctx, "k", &n)
	assert.False(t, hit, "expired")
}

func TestClampTTL(t *testing.T) {
	assert.Equal(t, MinCacheTTL, clampTTL(time.Second))
	assert.Equal(t, MaxCacheTTL, clampTTL(48*time.Hour))
	assert.Equal(t, DefaultCacheTTL, clampTTL(DefaultCacheTTL))
}

func TestCacheKeys(t *testing.T) {
	assert.Equal(t, "emotions:month:7:2024-03", monthKey(7, 2024, 3))
	assert.Equal(t, "emotions:year:7:2024", yearKey(7, 2024))
}
