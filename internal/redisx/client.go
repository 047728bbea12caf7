package redisx

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

func New(ctx context.Context, addr string) (*redis.Client, error) {
	r := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
	if err := r.Ping(ctx).Err(); err != nil {
		_ = r.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return r, nil
}

// Exists works on a client or inside a WATCH transaction.
func Exists(ctx context.Context, r interface {
	Exists(ctx context.Context, keys ...string) *redis.IntCmd
}, key string) (bool, error) {
	n, err := r.Exists(ctx, key).Result()
	return n > 0, err
}

// Mark queues a marker key on pipe, for use with Exists under WATCH.
func Mark(ctx context.Context, pipe redis.Pipeliner, key string, ttl time.Duration) {
	pipe.Set(ctx, key, "1", ttl)
}
