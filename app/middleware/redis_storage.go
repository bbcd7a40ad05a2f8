package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStorage keeps limiter counters in redis so every instance shares them
type RedisStorage struct {
	rc     *redis.Client
	prefix string
}

// NewRedisStorage creates a fiber storage backed by rc. Keys are namespaced by prefix.
func NewRedisStorage(rc *redis.Client, prefix string) *RedisStorage {
	return &RedisStorage{rc: rc, prefix: prefix + "limiter:"}
}

func (s *RedisStorage) GetWithContext(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, nil
	}
	val, err := s.rc.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return val, err
}

func (s *RedisStorage) Get(key string) ([]byte, error) {
	return s.GetWithContext(context.Background(), key)
}

func (s *RedisStorage) SetWithContext(ctx context.Context, key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}
	return s.rc.Set(ctx, s.prefix+key, val, exp).Err()
}

func (s *RedisStorage) Set(key string, val []byte, exp time.Duration) error {
	return s.SetWithContext(context.Background(), key, val, exp)
}

func (s *RedisStorage) DeleteWithContext(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	return s.rc.Del(ctx, s.prefix+key).Err()
}

func (s *RedisStorage) Delete(key string) error {
	return s.DeleteWithContext(context.Background(), key)
}

// ResetWithContext removes every key under the storage prefix
func (s *RedisStorage) ResetWithContext(ctx context.Context) error {
	iter := s.rc.Scan(ctx, 0, s.prefix+"*", 200).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 200 {
			if err := s.rc.Del(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return s.rc.Del(ctx, batch...).Err()
	}
	return nil
}

func (s *RedisStorage) Reset() error {
	return s.ResetWithContext(context.Background())
}

// Close is a no-op; the client is owned by the application
func (s *RedisStorage) Close() error {
	return nil
}
