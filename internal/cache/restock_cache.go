package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/andresuchdata/restock-forecast/internal/config"
	"github.com/andresuchdata/restock-forecast/internal/domain"
	"github.com/redis/go-redis/v9"
)

const restockReportKey = "restock:report:latest"

// RestockCache holds the report resolved from the latest prediction
// snapshot. It must be invalidated whenever a new snapshot is published.
type RestockCache interface {
	GetReport(ctx context.Context) (*domain.RestockReport, bool, error)
	SetReport(ctx context.Context, report *domain.RestockReport) error
	Invalidate(ctx context.Context) error
}

type redisRestockCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopRestockCache struct{}

func NewRestockCache(cfg config.CacheConfig) (RestockCache, error) {
	if !cfg.Enabled {
		return &noopRestockCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return NewRedisRestockCache(client, ttl), nil
}

// NewRedisRestockCache wraps an existing client.
func NewRedisRestockCache(client *redis.Client, ttl time.Duration) RestockCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &redisRestockCache{client: client, ttl: ttl}
}

func NewNoopRestockCache() RestockCache {
	return &noopRestockCache{}
}

func (c *redisRestockCache) GetReport(ctx context.Context) (*domain.RestockReport, bool, error) {
	payload, err := c.client.Get(ctx, restockReportKey).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var report domain.RestockReport
	if err := json.Unmarshal(payload, &report); err != nil {
		return nil, false, fmt.Errorf("decode restock report cache: %w", err)
	}

	return &report, true, nil
}

func (c *redisRestockCache) SetReport(ctx context.Context, report *domain.RestockReport) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode restock report cache: %w", err)
	}

	if err := c.client.Set(ctx, restockReportKey, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisRestockCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, restockReportKey).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func (n *noopRestockCache) GetReport(ctx context.Context) (*domain.RestockReport, bool, error) {
	return nil, false, nil
}

func (n *noopRestockCache) SetReport(ctx context.Context, report *domain.RestockReport) error {
	return nil
}

func (n *noopRestockCache) Invalidate(ctx context.Context) error {
	return nil
}
