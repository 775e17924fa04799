package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/tgibson/stock-tracker/internal/models"
)

// SnapshotCache stores price snapshots in Redis, keyed by symbol.
// The handle is passed explicitly to every collaborator that reads or
// invalidates it; there is no package-level instance.
type SnapshotCache struct {
	client *redis.Client
	ttl    time.Duration
}

// New creates a snapshot cache backed by Redis
func New(addr, password string, db int, ttl time.Duration) (*SnapshotCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &SnapshotCache{client: client, ttl: ttl}, nil
}

func snapshotKey(symbol string) string {
	return "snapshot:" + symbol
}

// Get returns the cached snapshot for a symbol, or nil on a miss
func (c *SnapshotCache) Get(ctx context.Context, symbol string) (*models.PriceSnapshot, error) {
	data, err := c.client.Get(ctx, snapshotKey(symbol)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cached snapshot: %w", err)
	}

	var snapshot models.PriceSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to decode cached snapshot: %w", err)
	}
	return &snapshot, nil
}

// Set stores a snapshot with the configured TTL
func (c *SnapshotCache) Set(ctx context.Context, snapshot *models.PriceSnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}

	if err := c.client.Set(ctx, snapshotKey(snapshot.Symbol), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache snapshot: %w", err)
	}
	return nil
}

// Invalidate removes the cached snapshot for a symbol. Called after a
// successful mutation so the next read sees fresh data.
func (c *SnapshotCache) Invalidate(ctx context.Context, symbol string) error {
	if err := c.client.Del(ctx, snapshotKey(symbol)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate snapshot: %w", err)
	}
	return nil
}

// Close closes the underlying Redis client
func (c *SnapshotCache) Close() error {
	return c.client.Close()
}
