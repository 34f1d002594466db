package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/apex/log"
	"github.com/go-redis/redis/v8"
)

// StorageRedisClient struct holds the Redis client and context
type StorageRedisClient struct {
	client *redis.Client
	ctx    context.Context
}

// NewStorageRedisClient wraps an initialized go-redis client
func NewStorageRedisClient(ctx context.Context, client *redis.Client) *StorageRedisClient {
	return &StorageRedisClient{
		client: client,
		ctx:    ctx,
	}
}

// Set sets a key-value pair in Redis
func (r *StorageRedisClient) Set(key, value string) error {
	return r.client.Set(r.ctx, key, value, 0).Err()
}

// Get retrieves the value for a given key from Redis
func (r *StorageRedisClient) Get(key string) (string, error) {
	val, err := r.client.Get(r.ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	return val, err
}

// Del removes a key; deleting a missing key is not an error
func (r *StorageRedisClient) Del(key string) error {
	return r.client.Del(r.ctx, key).Err()
}

// Keys lists the keys matching a glob pattern
func (r *StorageRedisClient) Keys(pattern string) ([]string, error) {
	return r.client.Keys(r.ctx, pattern).Result()
}

func (r *StorageRedisClient) GetContext() context.Context {
	return r.ctx
}

func (r *StorageRedisClient) Ping() error {
	_, err := r.client.Ping(r.ctx).Result()
	if err == nil {
		log.Debug("[StorageRedisClient] ping ok")
	}
	return err
}
