package tokenstore

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	gwerrors "github.com/jrsteele09/go-session-gateway/internal/errors"
)

const redisKeyPrefix = "sg:token:"

// RedisRepo stores token records as JSON blobs in Redis. SET is atomic, so
// readers see either the previous blob or the new one. Key TTL follows the
// refresh-token expiry when the provider advertises one, otherwise maxAge.
type RedisRepo struct {
	client    *redis.Client
	keySecret string
	maxAge    time.Duration
}

func NewRedisRepo(client *redis.Client, keySecret string, maxAge time.Duration) *RedisRepo {
	return &RedisRepo{
		client:    client,
		keySecret: keySecret,
		maxAge:    maxAge,
	}
}

func (r *RedisRepo) Get(ctx context.Context, sessionID string) (TokenRecord, error) {
	if sessionID == "" {
		return TokenRecord{}, gwerrors.ErrSessionNotFound
	}

	data, err := r.client.Get(ctx, r.key(sessionID)).Bytes()
	if err == redis.Nil {
		return TokenRecord{}, gwerrors.ErrSessionNotFound
	}
	if err != nil {
		return TokenRecord{}, errors.Wrap(err, "[RedisRepo.Get] redis GET")
	}

	var record TokenRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return TokenRecord{}, errors.Wrap(err, "[RedisRepo.Get] unmarshal record")
	}
	return record, nil
}

func (r *RedisRepo) Put(ctx context.Context, sessionID string, record TokenRecord) error {
	if sessionID == "" {
		return gwerrors.ErrSessionNotFound
	}

	data, err := json.Marshal(record)
	if err != nil {
		return errors.Wrap(err, "[RedisRepo.Put] marshal record")
	}

	if err := r.client.Set(ctx, r.key(sessionID), data, r.ttl(record)).Err(); err != nil {
		return errors.Wrap(err, "[RedisRepo.Put] redis SET")
	}
	return nil
}

func (r *RedisRepo) Delete(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}

	if err := r.client.Del(ctx, r.key(sessionID)).Err(); err != nil {
		return errors.Wrap(err, "[RedisRepo.Delete] redis DEL")
	}
	return nil
}

func (r *RedisRepo) key(sessionID string) string {
	return redisKeyPrefix + storeKey(r.keySecret, sessionID)
}

func (r *RedisRepo) ttl(record TokenRecord) time.Duration {
	ttl := r.maxAge
	if !record.RefreshExpiry.IsZero() {
		ttl = time.Until(record.RefreshExpiry)
	}
	if ttl < time.Minute {
		ttl = time.Minute
	}
	return ttl
}

var _ Repo = (*RedisRepo)(nil)
