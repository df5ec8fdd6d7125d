package share

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const snapshotTTL = 5 * time.Minute

// Cache keeps public snapshots in Redis so viewer traffic does not hammer
// the database. A nil client disables caching entirely; every method is
// safe to call either way, and cache errors are swallowed because the
// database remains the source of truth.
type Cache struct {
	client *redis.Client
}

// NewCache wraps a Redis client; pass nil to run without a cache
func NewCache(client *redis.Client) *Cache {
	return &Cache{client: client}
}

// GetSnapshot returns the cached snapshot for a token, or nil on miss
func (c *Cache) GetSnapshot(ctx context.Context, token string) *PublicSnapshot {
	if c == nil || c.client == nil {
		return nil
	}

	data, err := c.client.Get(ctx, snapshotKey(token)).Bytes()
	if err != nil {
		return nil
	}

	var snapshot PublicSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil
	}
	return &snapshot
}

// SetSnapshot caches a snapshot under its token
func (c *Cache) SetSnapshot(ctx context.Context, token string, snapshot *PublicSnapshot) {
	if c == nil || c.client == nil {
		return
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		return
	}
	c.client.Set(ctx, snapshotKey(token), data, snapshotTTL)
}

// DeleteSnapshot drops a cached snapshot, used on revocation
func (c *Cache) DeleteSnapshot(ctx context.Context, token string) {
	if c == nil || c.client == nil {
		return
	}
	c.client.Del(ctx, snapshotKey(token))
}

func snapshotKey(token string) string {
	return "share:snapshot:" + token
}
