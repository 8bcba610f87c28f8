package data

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thankyoudoc/thankyoudoc-api/internal/testutil"
)

func TestRedisCacheRepo_Set_Get_Delete(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	client := testutil.SetupTestRedis(t)
	repo := NewRedisCacheRepo(client, "")
	ctx := context.Background()

	t.Run("set and get", func(t *testing.T) {
		ttl := 5 * time.Minute
		require.NoError(t, repo.Set(ctx, "role:user:u1", []byte("admin"), ttl))

		got, err := repo.Get(ctx, "role:user:u1")
		require.NoError(t, err)
		assert.Equal(t, []byte("admin"), got)

		actualTTL := client.TTL(ctx, DefaultCacheKeyPrefix+"role:user:u1").Val()
		assert.True(t, actualTTL > 0 && actualTTL <= ttl)
	})

	t.Run("missing key", func(t *testing.T) {
		got, err := repo.Get(ctx, "role:user:nobody")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Set(ctx, "k", []byte("v"), time.Minute))
		deleted, err := repo.Delete(ctx, "k")
		require.NoError(t, err)
		assert.True(t, deleted)

		deleted, err = repo.Delete(ctx, "k")
		require.NoError(t, err)
		assert.False(t, deleted)
	})

	t.Run("prefix isolates namespaces", func(t *testing.T) {
		other := NewRedisCacheRepo(client, "other:")
		require.NoError(t, other.Set(ctx, "shared", []byte("x"), time.Minute))
		got, err := repo.Get(ctx, "shared")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("health", func(t *testing.T) {
		assert.NoError(t, repo.Health(ctx))
	})
}

func TestRedisCacheRepo_EmptyKey(t *testing.T) {
	repo := NewRedisCacheRepo(nil, "")
	ctx := context.Background()

	require.Error(t, repo.Set(ctx, "", nil, 0))
	_, err := repo.Get(ctx, "")
	require.Error(t, err)
	_, err = repo.Delete(ctx, "")
	require.Error(t, err)
}
