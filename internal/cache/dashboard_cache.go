package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"clipper/internal/model"

	"github.com/redis/go-redis/v9"
)

// DashboardCache holds the rendered dashboard listing per user.
//
// Every Invalidate bumps a per-user generation. Readers take the generation
// before loading from the database and pass it to Set, which stores nothing
// when an invalidation happened in between.
type DashboardCache interface {
	Get(ctx context.Context, userID string) (*model.Dashboard, error)
	Generation(ctx context.Context, userID string) (int64, error)
	Set(ctx context.Context, userID string, generation int64, d *model.Dashboard) (bool, error)
	Invalidate(ctx context.Context, userID string) error
}

// RedisDashboardCache stores dashboards as JSON under dashboard:<userID> and
// the generation counter under dashboard:gen:<userID>.
type RedisDashboardCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisDashboardCache(client *redis.Client, ttl time.Duration) *RedisDashboardCache {
	return &RedisDashboardCache{client: client, ttl: ttl}
}

// NewRedisClient parses a redis:// URL and verifies the connection.
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

func dashboardKey(userID string) string {
	return "dashboard:" + userID
}

func generationKey(userID string) string {
	return "dashboard:gen:" + userID
}

// getter is satisfied by both *redis.Client and *redis.Tx.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func readGeneration(ctx context.Context, cmd getter, userID string) (int64, error) {
	gen, err := cmd.Get(ctx, generationKey(userID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// Get returns nil without error on a cache miss.
func (c *RedisDashboardCache) Get(ctx context.Context, userID string) (*model.Dashboard, error) {
	raw, err := c.client.Get(ctx, dashboardKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read dashboard cache: %w", err)
	}
	var d model.Dashboard
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("failed to decode cached dashboard: %w", err)
	}
	return &d, nil
}

func (c *RedisDashboardCache) Generation(ctx context.Context, userID string) (int64, error) {
	gen, err := readGeneration(ctx, c.client, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to read dashboard generation: %w", err)
	}
	return gen, nil
}

// Set stores d only if the generation still equals generation. It reports
// whether the value was written.
func (c *RedisDashboardCache) Set(ctx context.Context, userID string, generation int64, d *model.Dashboard) (bool, error) {
	raw, err := json.Marshal(d)
	if err != nil {
		return false, fmt.Errorf("failed to encode dashboard: %w", err)
	}

	stored := false
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := readGeneration(ctx, tx, userID)
		if err != nil {
			return err
		}
		if current != generation {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, dashboardKey(userID), raw, c.ttl)
			return nil
		})
		if err == nil {
			stored = true
		}
		return err
	}, generationKey(userID))
	if errors.Is(err, redis.TxFailedErr) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to write dashboard cache: %w", err)
	}
	return stored, nil
}

func (c *RedisDashboardCache) Invalidate(ctx context.Context, userID string) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, generationKey(userID))
		pipe.Del(ctx, dashboardKey(userID))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to invalidate dashboard cache: %w", err)
	}
	return nil
}

// NoopDashboardCache is used when no Redis is configured; every Get misses.
type NoopDashboardCache struct{}

func (NoopDashboardCache) Get(context.Context, string) (*model.Dashboard, error) { return nil, nil }

func (NoopDashboardCache) Generation(context.Context, string) (int64, error) { return 0, nil }

func (NoopDashboardCache) Set(context.Context, string, int64, *model.Dashboard) (bool, error) {
	return false, nil
}

func (NoopDashboardCache) Invalidate(context.Context, string) error { return nil }
