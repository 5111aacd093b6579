// Package cache keeps the approved review listing in Redis so repeated page
// loads skip the database.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ahmetcoskunkizilkaya/review-relay/internal/models"
	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

const (
	approvedKey = "reviews:approved"
	genKey      = "reviews:approved:gen"
)

// errStaleFill aborts a fill that lost the race with an Invalidate.
var errStaleFill = errors.New("listing changed while it was being read")

type ReviewCache struct {
	client *redis.Client
	ttl    time.Duration
}

// Connect parses a redis:// URL and verifies the server answers.
func Connect(ctx context.Context, redisURL string, ttl time.Duration) (*ReviewCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	slog.Info("redis connected", "addr", opts.Addr)
	return NewReviewCache(client, ttl), nil
}

func NewReviewCache(client *redis.Client, ttl time.Duration) *ReviewCache {
	return &ReviewCache{client: client, ttl: ttl}
}

// Get returns the cached listing. On a miss it returns the generation to
// pass to Set, or -1 when Redis could not be read. Any Redis or decode
// failure is a miss.
func (c *ReviewCache) Get(ctx context.Context) ([]models.Review, int64, bool) {
	gen, err := c.generation(ctx, c.client)
	if err != nil {
		slog.Warn("review cache read failed", "error", err)
		return nil, -1, false
	}

	data, err := c.client.Get(ctx, approvedKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, gen, false
	}
	if err != nil {
		slog.Warn("review cache read failed", "error", err)
		return nil, -1, false
	}

	var reviews []models.Review
	if err := json.Unmarshal(data, &reviews); err != nil {
		slog.Warn("review cache entry corrupt", "error", err)
		return nil, gen, false
	}
	return reviews, gen, true
}

// getter is the part of *redis.Client and *redis.Tx used to read the
// generation.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (c *ReviewCache) generation(ctx context.Context, cmd getter) (int64, error) {
	gen, err := cmd.Get(ctx, genKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// Set stores the listing if the generation still equals gen. The check and
// the write run under WATCH, so an Invalidate landing in between aborts it.
func (c *ReviewCache) Set(ctx context.Context, gen int64, reviews []models.Review) {
	if gen < 0 {
		return
	}
	data, err := json.Marshal(reviews)
	if err != nil {
		slog.Warn("review cache encode failed", "error", err)
		return
	}

	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := c.generation(ctx, tx)
		if err != nil {
			return err
		}
		if current != gen {
			return errStaleFill
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, approvedKey, data, c.ttl)
			return nil
		})
		return err
	}, genKey)

	switch {
	case err == nil:
	case errors.Is(err, errStaleFill), errors.Is(err, redis.TxFailedErr):
		slog.Debug("skipped stale review cache fill", "generation", gen)
	default:
		slog.Warn("review cache write failed", "error", err)
	}
}

// Invalidate bumps the generation before dropping the entry so fills started
// earlier are rejected.
func (c *ReviewCache) Invalidate(ctx context.Context) {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey)
		pipe.Del(ctx, approvedKey)
		return nil
	})
	if err != nil {
		slog.Warn("review cache invalidation failed", "error", err)
	}
}

func (c *ReviewCache) Close() error {
	return c.client.Close()
}
