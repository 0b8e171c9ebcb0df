package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/gnezdo/gnezdo/internal/booking"
)

// DefaultTTL bounds how stale a snapshot may get when an invalidation is
// missed, for example a mutation applied by another replica.
const DefaultTTL = 5 * time.Minute

// Snapshot is the cached result of one availability query.
type Snapshot struct {
	Horizon        booking.Horizon `json:"horizon"`
	Gaps           []booking.Gap   `json:"gaps"`
	NightsOccupied int             `json:"nights_occupied"`
}

// Cache stores availability snapshots in Redis. It is best-effort:
// callers log and ignore cache errors, the database stays authoritative.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCache creates an availability cache with the given TTL.
func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{client: client, ttl: ttl}
}

// Get retrieves a cached snapshot. A miss returns (nil, nil).
func (c *Cache) Get(ctx context.Context, tenantID, propertyID string, h booking.Horizon) (*Snapshot, error) {
	key := AvailabilityKey(tenantID, propertyID, h)
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // cache miss
		}
		return nil, fmt.Errorf("failed to get availability snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal availability snapshot: %w", err)
	}
	return &snap, nil
}

// Set stores a snapshot under its horizon key.
func (c *Cache) Set(ctx context.Context, tenantID, propertyID string, snap Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal availability snapshot: %w", err)
	}

	key := AvailabilityKey(tenantID, propertyID, snap.Horizon)
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache availability snapshot: %w", err)
	}
	return nil
}

// InvalidateProperty removes every cached horizon for one property. Called
// after each booking mutation so stale gaps never outlive a write.
func (c *Cache) InvalidateProperty(ctx context.Context, tenantID, propertyID string) error {
	iter := c.client.Scan(ctx, 0, PropertyPattern(tenantID, propertyID), 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("failed to delete snapshot key: %w", err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to invalidate property snapshots: %w", err)
	}
	return nil
}

// Ping verifies the Redis connection, for readiness checks.
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
