package otp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to redis by URL. Returns nil when the URL is empty so
// callers can fall back to the in-memory store.
func NewRedisStore(url string) (*RedisStore, error) {
	if url == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(context.Background()).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &RedisStore{client: client}, nil
}

func (s *RedisStore) Put(ctx context.Context, email, purpose, code string, ttl time.Duration) error {
	return s.client.Set(ctx, key(email, purpose), code, ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, email, purpose string) (string, error) {
	code, err := s.client.Get(ctx, key(email, purpose)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return code, nil
}

func (s *RedisStore) Delete(ctx context.Context, email, purpose string) error {
	return s.client.Del(ctx, key(email, purpose)).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
