// Package ratestore provides a Redis-backed fiber.Storage so rate-limit
// counters are shared across instances.
package ratestore

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const opTimeout = 2 * time.Second

// RedisStorage implements fiber.Storage on top of a go-redis client
type RedisStorage struct {
	client *redis.Client
	prefix string
}

// New connects to url (redis://...) and pings it
func New(url, password, prefix string) (*RedisStorage, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	if password != "" {
		opts.Password = password
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	return NewWithClient(client, prefix), nil
}

// NewWithClient wraps an existing client
func NewWithClient(client *redis.Client, prefix string) *RedisStorage {
	if prefix == "" {
		prefix = "ratelimit:"
	}
	return &RedisStorage{client: client, prefix: prefix}
}

// Get returns nil, nil for a missing key as fiber.Storage requires
func (s *RedisStorage) Get(key string) ([]byte, error) {
	if key == "" {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	val, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return val, err
}

// Set stores val; exp 0 means no expiration
func (s *RedisStorage) Set(key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	return s.client.Set(ctx, s.prefix+key, val, exp).Err()
}

// Delete removes key
func (s *RedisStorage) Delete(key string) error {
	if key == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()
	return s.client.Del(ctx, s.prefix+key).Err()
}

// Reset removes every key under the prefix
func (s *RedisStorage) Reset() error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	iter := s.client.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// Close closes the client
func (s *RedisStorage) Close() error {
	return s.client.Close()
}
