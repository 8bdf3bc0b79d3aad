package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"sjsage522/menufinder/internal/crawler"
	crawlerrors "sjsage522/menufinder/pkg/errors"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the recipe collection as one JSON value in Redis
type RedisStore struct {
	client *redis.Client
	key    string
}

// NewRedisStore connects to Redis and returns a store writing under key
func NewRedisStore(addr string, db int, key string) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	ctx := context.Background()
	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{client: client, key: key}, nil
}

// Load reads the stored collection
func (s *RedisStore) Load(ctx context.Context) ([]crawler.Recipe, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, crawlerrors.NewStore("redis", "failed to read "+s.key, err)
	}

	var recipes []crawler.Recipe
	if err := json.Unmarshal(data, &recipes); err != nil {
		return nil, crawlerrors.NewStore("redis", "failed to decode "+s.key, err)
	}
	if len(recipes) == 0 {
		return nil, ErrNotFound
	}
	return recipes, nil
}

// Save replaces the stored collection
func (s *RedisStore) Save(ctx context.Context, recipes []crawler.Recipe) error {
	data, err := json.Marshal(recipes)
	if err != nil {
		return crawlerrors.NewStore("redis", "failed to encode recipes", err)
	}
	if err := s.client.Set(ctx, s.key, data, 0).Err(); err != nil {
		return crawlerrors.NewStore("redis", "failed to write "+s.key, err)
	}
	return nil
}

// Clear deletes the stored collection
func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return crawlerrors.NewStore("redis", "failed to delete "+s.key, err)
	}
	return nil
}

// Close closes the Redis client
func (s *RedisStore) Close() error {
	return s.client.Close()
}
