package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// CodeStore keeps short-lived one-time codes. Get returns "" for a missing or
// expired key. Incr bumps a counter that expires ttl after its last bump.
type CodeStore interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
	Delete(ctx context.Context, key string, more ...string) error
}

// NewCodeStore uses Redis when a URL is given and falls back to process memory.
func NewCodeStore(redisURL string) (CodeStore, error) {
	if redisURL == "" {
		return NewMemoryCodeStore(), nil
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	return NewRedisCodeStore(redis.NewClient(opts)), nil
}

type RedisCodeStore struct {
	client *redis.Client
}

func NewRedisCodeStore(client *redis.Client) *RedisCodeStore {
	return &RedisCodeStore{client: client}
}

func (s *RedisCodeStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := s.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set code: %w", err)
	}
	return nil
}

func (s *RedisCodeStore) Get(ctx context.Context, key string) (string, error) {
	v, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get code: %w", err)
	}
	return v, nil
}

func (s *RedisCodeStore) Incr(ctx context.Context, key string, ttl time.Duration) (int64, error) {
	var incr *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, key)
		pipe.Expire(ctx, key, ttl)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to increment counter: %w", err)
	}
	return incr.Val(), nil
}

func (s *RedisCodeStore) Delete(ctx context.Context, key string, more ...string) error {
	return s.client.Del(ctx, append([]string{key}, more...)...).Err()
}

func (s *RedisCodeStore) Close() error {
	return s.client.Close()
}

type memoryCode struct {
	value     string
	expiresAt time.Time
}

// MemoryCodeStore is a single-process CodeStore.
type MemoryCodeStore struct {
	mu    sync.Mutex
	codes map[string]memoryCode
	now   func() time.Time
}

func NewMemoryCodeStore() *MemoryCodeStore {
	return &MemoryCodeStore{codes: make(map[string]memoryCode), now: time.Now}
}

func (s *MemoryCodeStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purgeLocked()
	s.codes[key] = memoryCode{value: value, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *MemoryCodeStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.codes[key]
	if !ok {
		return "", nil
	}
	if !s.now().Before(c.expiresAt) {
		delete(s.codes, key)
		return "", nil
	}
	return c.value, nil
}

func (s *MemoryCodeStore) Incr(_ context.Context, key string, ttl time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	if c, ok := s.codes[key]; ok && s.now().Before(c.expiresAt) {
		parsed, err := strconv.ParseInt(c.value, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("key %q does not hold a counter", key)
		}
		n = parsed
	}
	n++
	s.codes[key] = memoryCode{value: strconv.FormatInt(n, 10), expiresAt: s.now().Add(ttl)}
	return n, nil
}

func (s *MemoryCodeStore) Delete(_ context.Context, key string, more ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.codes, key)
	for _, k := range more {
		delete(s.codes, k)
	}
	return nil
}

func (s *MemoryCodeStore) purgeLocked() {
	now := s.now()
	for k, c := range s.codes {
		if !now.Before(c.expiresAt) {
			delete(s.codes, k)
		}
	}
}
