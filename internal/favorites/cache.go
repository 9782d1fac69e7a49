package favorites

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
)

type Cache interface {
	Get(ctx context.Context, sessionID string) ([]string, error)
	Set(ctx context.Context, sessionID string, productIDs []string) error
	Delete(ctx context.Context, sessionID string) error
}

var ErrCacheMiss = errors.New("cache miss")

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{
		client:  client,
		baseTTL: 15 * time.Minute,
	}
}

type RedisCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

func (r RedisCache) Get(ctx context.Context, sessionID string) ([]string, error) {
	data, err := r.client.Get(ctx, cacheKey(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var ids []string
	if err2 := json.Unmarshal(data, &ids); err2 != nil {
		return nil, fmt.Errorf("unmarshal favorites failed: %w", err2)
	}
	return ids, nil
}

func (r RedisCache) Set(ctx context.Context, sessionID string, productIDs []string) error {
	data, err := json.Marshal(productIDs)
	if err != nil {
		return fmt.Errorf("marshal favorites failed: %w", err)
	}

	jitter := time.Duration(rand.Intn(5)) * time.Minute
	if ret := r.client.Set(ctx, cacheKey(sessionID), string(data), r.baseTTL+jitter); ret.Err() != nil {
		return fmt.Errorf("redis set failed: %w", ret.Err())
	}
	return nil
}

func (r RedisCache) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, cacheKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func cacheKey(sessionID string) string {
	return fmt.Sprintf("favorites:%s", sessionID)
}
