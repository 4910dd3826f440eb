package tokenstore_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	gwerrors "github.com/jrsteele09/go-session-gateway/internal/errors"
	"github.com/jrsteele09/go-session-gateway/tokenstore"
)

const testKeySecret = "test-store-secret"

func testRecord(suffix string, expiry time.Time) tokenstore.TokenRecord {
	return tokenstore.TokenRecord{
		AccessToken:  "access-" + suffix,
		RefreshToken: "refresh-" + suffix,
		AccessExpiry: expiry,
	}
}

func TestInMemoryRepoPutGetDelete(t *testing.T) {
	repo := tokenstore.NewInMemoryRepo(testKeySecret)
	ctx := context.Background()

	record := testRecord("1", time.Now().Add(time.Hour))
	require.NoError(t, repo.Put(ctx, "session-1", record))

	got, err := repo.Get(ctx, "session-1")
	require.NoError(t, err)
	require.Equal(t, record, got)

	require.NoError(t, repo.Delete(ctx, "session-1"))

	_, err = repo.Get(ctx, "session-1")
	require.ErrorIs(t, err, gwerrors.ErrSessionNotFound)

	// Deleting an absent session is a no-op
	require.NoError(t, repo.Delete(ctx, "session-1"))
}

func TestInMemoryRepoGetMissing(t *testing.T) {
	repo := tokenstore.NewInMemoryRepo(testKeySecret)

	_, err := repo.Get(context.Background(), "never-stored")
	require.ErrorIs(t, err, gwerrors.ErrSessionNotFound)
}

func TestInMemoryRepoPutReplacesWholeRecord(t *testing.T) {
	repo := tokenstore.NewInMemoryRepo(testKeySecret)
	ctx := context.Background()

	first := testRecord("1", time.Now().Add(time.Hour))
	first.RefreshExpiry = time.Now().Add(24 * time.Hour)
	require.NoError(t, repo.Put(ctx, "session-1", first))

	// Second record has no refresh expiry. It must not be merged with the
	// first record's fields.
	second := testRecord("2", time.Now().Add(2*time.Hour))
	require.NoError(t, repo.Put(ctx, "session-1", second))

	got, err := repo.Get(ctx, "session-1")
	require.NoError(t, err)
	require.Equal(t, second, got)
	require.True(t, got.RefreshExpiry.IsZero())
}

func TestInMemoryRepoConcurrentSwapIsAtomic(t *testing.T) {
	repo := tokenstore.NewInMemoryRepo(testKeySecret)
	ctx := context.Background()

	expiry := time.Now().Add(time.Hour)
	a := testRecord("a", expiry)
	b := testRecord("b", expiry)
	require.NoError(t, repo.Put(ctx, "session-1", a))

	var wg sync.WaitGroup
	stop := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
			}
			if i%2 == 0 {
				_ = repo.Put(ctx, "session-1", a)
			} else {
				_ = repo.Put(ctx, "session-1", b)
			}
		}
	}()

	// Readers must always see a complete record: the access and refresh
	// tokens of the same Put, never a mix.
	for i := 0; i < 1000; i++ {
		got, err := repo.Get(ctx, "session-1")
		require.NoError(t, err)
		require.Contains(t, []tokenstore.TokenRecord{a, b}, got)
	}

	close(stop)
	wg.Wait()
}

func TestInMemoryRepoEmptySessionID(t *testing.T) {
	repo := tokenstore.NewInMemoryRepo(testKeySecret)
	ctx := context.Background()

	_, err := repo.Get(ctx, "")
	require.ErrorIs(t, err, gwerrors.ErrSessionNotFound)
	require.ErrorIs(t, repo.Put(ctx, "", tokenstore.TokenRecord{}), gwerrors.ErrSessionNotFound)
	require.NoError(t, repo.Delete(ctx, ""))
}

func TestTokenRecordFresh(t *testing.T) {
	now := time.Now()
	margin := 30 * time.Second

	tests := []struct {
		name   string
		expiry time.Time
		fresh  bool
	}{
		{"well before margin", now.Add(time.Hour), true},
		{"just outside margin", now.Add(margin + time.Second), true},
		{"exactly at margin", now.Add(margin), false},
		{"inside margin", now.Add(10 * time.Second), false},
		{"already expired", now.Add(-time.Minute), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := tokenstore.TokenRecord{AccessExpiry: tt.expiry}
			require.Equal(t, tt.fresh, record.Fresh(now, margin))
		})
	}
}
