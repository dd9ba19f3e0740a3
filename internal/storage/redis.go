package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"
)

// RedisStorage implements Storage on a Redis server, one string value per key.
type RedisStorage struct {
	client *redis.Client
}

// RedisOptions configures the Redis backend
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisStorage connects to Redis and verifies the connection with PING.
func NewRedisStorage(ctx context.Context, opts RedisOptions) (*RedisStorage, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.Addr, err)
	}

	return &RedisStorage{client: client}, nil
}

func (rs *RedisStorage) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := rs.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, &StorageError{Op: "get", Key: key, Err: err}
	}
	return val, nil
}

func (rs *RedisStorage) Set(ctx context.Context, key string, value []byte) error {
	if err := rs.client.Set(ctx, key, value, 0).Err(); err != nil {
		return &StorageError{Op: "set", Key: key, Err: err}
	}
	return nil
}

func (rs *RedisStorage) Delete(ctx context.Context, key string) error {
	if err := rs.client.Del(ctx, key).Err(); err != nil {
		return &StorageError{Op: "delete", Key: key, Err: err}
	}
	return nil
}

func (rs *RedisStorage) Has(ctx context.Context, key string) (bool, error) {
	n, err := rs.client.Exists(ctx, key).Result()
	if err != nil {
		return false, &StorageError{Op: "has", Key: key, Err: err}
	}
	return n > 0, nil
}

func (rs *RedisStorage) Keys(ctx context.Context, prefix string) ([]string, error) {
	var keys []string

	iter := rs.client.Scan(ctx, 0, prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, &StorageError{Op: "scan", Key: prefix, Err: err}
	}

	sort.Strings(keys)
	return keys, nil
}

func (rs *RedisStorage) Close() error {
	return rs.client.Close()
}
