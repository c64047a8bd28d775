// Package cache provides an optional Redis-backed metadata cache for
// resolved video records. A nil cache disables caching entirely.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"

	"github.com/manmohanbh/tubestream-pwa-v2/pkg/models"
)

// DefaultTTL bounds how long a resolved record is reused before the
// generator is consulted again.
const DefaultTTL = 15 * time.Minute

const opTimeout = 2 * time.Second

// MetadataCache stores VideoRecords keyed by video id
type MetadataCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewClient constructs a go-redis client, or nil when no address is configured
func NewClient(addr, password string, db int) *redis.Client {
	if addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
}

// New wraps a redis client in a MetadataCache. Returns nil for a nil
// client so callers can pass the result around unconditionally.
func New(client *redis.Client) *MetadataCache {
	if client == nil {
		return nil
	}
	return &MetadataCache{client: client, ttl: DefaultTTL}
}

// Ping validates the connection. Nil-safe.
func (c *MetadataCache) Ping(ctx context.Context) error {
	if c == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	return c.client.Ping(ctx).Err()
}

func recordKey(videoID string) string {
	return fmt.Sprintf("video:%s", videoID)
}

// Get returns the cached record for a video id, if present. Nil-safe.
func (c *MetadataCache) Get(ctx context.Context, videoID string) (*models.VideoRecord, bool) {
	if c == nil || videoID == "" {
		return nil, false
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	val, err := c.client.Get(ctx, recordKey(videoID)).Bytes()
	if err != nil {
		return nil, false
	}

	var record models.VideoRecord
	if err := json.Unmarshal(val, &record); err != nil {
		return nil, false
	}
	return &record, true
}

// Set stores a resolved record under its video id. Nil-safe; failures
// are returned for logging but never block resolution.
func (c *MetadataCache) Set(ctx context.Context, record *models.VideoRecord) error {
	if c == nil || record == nil || record.ID == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	b, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}
	return c.client.Set(ctx, recordKey(record.ID), b, c.ttl).Err()
}

// Close releases the underlying connection. Nil-safe.
func (c *MetadataCache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
