// Package redis dials the shared Redis instance that backs the access and
// report stores. An empty URL means Redis is not configured and the server
// falls back to in-memory stores.
package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"bandcheck/internal/platform/config"
)

// Client embeds the go-redis client so stores can use it directly.
type Client struct {
	*redis.Client
}

// New connects to Redis and verifies the connection with a ping. It returns
// nil when cfg.URL is empty.
func New(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	if cfg.URL == "" {
		return nil, nil
	}

	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns
	opts.DialTimeout = cfg.DialTimeout
	opts.ReadTimeout = cfg.ReadTimeout
	opts.WriteTimeout = cfg.WriteTimeout

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{Client: client}, nil
}
