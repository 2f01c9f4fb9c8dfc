package service

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisMenuCacheStore struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisMenuCacheStore(client redis.UniversalClient, prefix string) *RedisMenuCacheStore {
	if prefix == "" {
		prefix = "public_menu"
	}
	return &RedisMenuCacheStore{client: client, prefix: prefix}
}

func (s *RedisMenuCacheStore) Get(ctx context.Context, publicID string) ([]byte, bool, error) {
	if s.client == nil {
		return nil, false, nil
	}
	value, err := s.client.Get(ctx, s.key(publicID)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (s *RedisMenuCacheStore) Set(ctx context.Context, publicID string, payload []byte, ttl time.Duration) error {
	if s.client == nil || ttl <= 0 {
		return nil
	}
	return s.client.Set(ctx, s.key(publicID), payload, ttl).Err()
}

func (s *RedisMenuCacheStore) Invalidate(ctx context.Context, publicID string) error {
	if s.client == nil {
		return nil
	}
	return s.client.Del(ctx, s.key(publicID)).Err()
}

func (s *RedisMenuCacheStore) key(publicID string) string {
	return fmt.Sprintf("%s:%s", s.prefix, publicID)
}
