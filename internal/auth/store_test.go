package auth

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, store TokenStore) {
	ctx := context.Background()
	key := "api://smartspace/.default test-" + time.Now().Format(time.RFC3339Nano)

	_, ok, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	token := azcore.AccessToken{Token: "abc", ExpiresOn: time.Now().Add(time.Hour).UTC().Truncate(time.Second)}
	require.NoError(t, store.Set(ctx, key, token))

	got, ok, err := store.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, token.Token, got.Token)
	assert.True(t, token.ExpiresOn.Equal(got.ExpiresOn))

	require.NoError(t, store.Delete(ctx, key))
	_, ok, err = store.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMemoryTokenStore(t *testing.T) {
	exerciseStore(t, NewMemoryTokenStore())
}

func TestRedisTokenStore(t *testing.T) {
	redisURL := os.Getenv("SMARTSPACE_TEST_REDIS_URL")
	if redisURL == "" {
		t.Skip("SMARTSPACE_TEST_REDIS_URL not set")
	}

	store, err := NewRedisTokenStore(context.Background(), redisURL)
	require.NoError(t, err)
	defer store.Close()

	exerciseStore(t, store)
}

func TestRedisTokenStore_CloseReleasesClient(t *testing.T) {
	store := NewRedisTokenStoreWithClient(redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"}))

	require.NoError(t, store.Close())

	_, _, err := store.Get(context.Background(), "a")
	assert.ErrorIs(t, err, redis.ErrClosed)
}

func TestRedisKeyHidesScopes(t *testing.T) {
	key := redisKey("api://smartspace/.default")
	assert.Len(t, key, len(redisKeyPrefix)+64)
	assert.NotContains(t, key, "smartspace/.default")
}
