package tokenstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	gwerrors "github.com/jrsteele09/go-session-gateway/internal/errors"
	"github.com/jrsteele09/go-session-gateway/tokenstore"
)

func setupRedisRepo(t *testing.T, maxAge time.Duration) (*tokenstore.RedisRepo, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return tokenstore.NewRedisRepo(client, testKeySecret, maxAge), mr
}

func TestRedisRepoPutGetDelete(t *testing.T) {
	repo, _ := setupRedisRepo(t, 8*time.Hour)
	ctx := context.Background()

	record := testRecord("1", time.Now().Add(time.Hour).UTC().Truncate(time.Second))
	require.NoError(t, repo.Put(ctx, "session-1", record))

	got, err := repo.Get(ctx, "session-1")
	require.NoError(t, err)
	require.Equal(t, record.AccessToken, got.AccessToken)
	require.Equal(t, record.RefreshToken, got.RefreshToken)
	require.True(t, record.AccessExpiry.Equal(got.AccessExpiry))

	require.NoError(t, repo.Delete(ctx, "session-1"))

	_, err = repo.Get(ctx, "session-1")
	require.ErrorIs(t, err, gwerrors.ErrSessionNotFound)

	require.NoError(t, repo.Delete(ctx, "session-1"))
}

func TestRedisRepoGetMissing(t *testing.T) {
	repo, _ := setupRedisRepo(t, 8*time.Hour)

	_, err := repo.Get(context.Background(), "never-stored")
	require.ErrorIs(t, err, gwerrors.ErrSessionNotFound)
}

func TestRedisRepoKeysAreHashed(t *testing.T) {
	repo, mr := setupRedisRepo(t, 8*time.Hour)
	ctx := context.Background()

	sessionID := "plain-session-id"
	require.NoError(t, repo.Put(ctx, sessionID, testRecord("1", time.Now().Add(time.Hour))))

	// The raw session ID must never appear as a store key: a dump of the
	// store cannot be replayed as cookies.
	for _, key := range mr.Keys() {
		require.NotContains(t, key, sessionID)
	}
}

func TestRedisRepoTTLFollowsRefreshExpiry(t *testing.T) {
	repo, mr := setupRedisRepo(t, 8*time.Hour)
	ctx := context.Background()

	record := testRecord("1", time.Now().Add(time.Hour))
	record.RefreshExpiry = time.Now().Add(2 * time.Hour)
	require.NoError(t, repo.Put(ctx, "session-1", record))

	keys := mr.Keys()
	require.Len(t, keys, 1)
	ttl := mr.TTL(keys[0])
	require.Greater(t, ttl, time.Hour)
	require.LessOrEqual(t, ttl, 2*time.Hour)
}

func TestRedisRepoTTLFallsBackToMaxAge(t *testing.T) {
	repo, mr := setupRedisRepo(t, 8*time.Hour)
	ctx := context.Background()

	require.NoError(t, repo.Put(ctx, "session-1", testRecord("1", time.Now().Add(time.Hour))))

	keys := mr.Keys()
	require.Len(t, keys, 1)
	require.Equal(t, 8*time.Hour, mr.TTL(keys[0]))
}
