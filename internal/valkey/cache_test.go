package valkey

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheRoundTrip(t *testing.T) {
	addr := os.Getenv("ROADTRIP_TEST_VALKEY_ADDR")
	if addr == "" {
		t.Skip("Skipping: ROADTRIP_TEST_VALKEY_ADDR not set")
	}

	cache, err := New(addr)
	require.NoError(t, err)
	defer cache.Close()

	ctx := context.Background()
	require.NoError(t, cache.Ping(ctx))

	key := "test:" + uuid.NewString()

	_, found, err := cache.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, cache.Set(ctx, key, []byte(`{"places":[]}`), time.Minute))

	value, found, err := cache.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `{"places":[]}`, string(value))
}
