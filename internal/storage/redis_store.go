package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore caches prompt token counts in Redis
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis and verifies the connection
func NewRedisStore(ctx context.Context, addr, password string) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{client: rdb}, nil
}

// Close closes the Redis connection
func (r *RedisStore) Close() error {
	return r.client.Close()
}

// GetTokenCount retrieves cached token count for messages
func (r *RedisStore) GetTokenCount(ctx context.Context, messages []Message) (int, bool, error) {
	val, err := r.client.Get(ctx, cacheKey(messages)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	var count int
	if err := json.Unmarshal([]byte(val), &count); err != nil {
		return 0, false, err
	}

	return count, true, nil
}

// SetTokenCount caches token count for messages
func (r *RedisStore) SetTokenCount(ctx context.Context, messages []Message, count int, ttl time.Duration) error {
	data, err := json.Marshal(count)
	if err != nil {
		return err
	}

	return r.client.Set(ctx, cacheKey(messages), data, ttl).Err()
}

// cacheKey hashes the messages into a stable key
func cacheKey(messages []Message) string {
	data, _ := json.Marshal(messages)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("token_count:%s", hex.EncodeToString(hash[:]))
}
