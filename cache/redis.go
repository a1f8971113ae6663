// Package cache keeps hot tournament snapshots in Redis so viewers reloading a
// bracket do not hit Postgres.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Dosada05/goldsprint/models"
	"github.com/Dosada05/goldsprint/repositories"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix  = "tournament:"
	DefaultTTL = 6 * time.Hour
)

var ErrCacheMiss = errors.New("tournament not cached")

type RedisTournamentCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisTournamentCache connects to redisURL and verifies the connection.
func NewRedisTournamentCache(redisURL string, ttl time.Duration) (*RedisTournamentCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewRedisTournamentCacheWithClient(client, ttl), nil
}

func NewRedisTournamentCacheWithClient(client *redis.Client, ttl time.Duration) *RedisTournamentCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisTournamentCache{client: client, prefix: keyPrefix, ttl: ttl}
}

func (c *RedisTournamentCache) key(id string) string {
	return c.prefix + id
}

func (c *RedisTournamentCache) Get(ctx context.Context, id string) (*models.Tournament, error) {
	data, err := c.client.Get(ctx, c.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("lookup cached tournament: %w", err)
	}
	return repositories.DecodeSnapshot(data)
}

func (c *RedisTournamentCache) Set(ctx context.Context, t *models.Tournament) error {
	data, err := repositories.EncodeSnapshot(t)
	if err != nil {
		return err
	}
	if err := c.client.Set(ctx, c.key(t.ID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache tournament: %w", err)
	}
	return nil
}

func (c *RedisTournamentCache) Delete(ctx context.Context, id string) error {
	if err := c.client.Del(ctx, c.key(id)).Err(); err != nil {
		return fmt.Errorf("evict tournament: %w", err)
	}
	return nil
}

func (c *RedisTournamentCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *RedisTournamentCache) Close() error {
	return c.client.Close()
}
