// Package cache provides an optional read-through Redis cache for computed
// snapshots. Correctness never depends on it: every failure is a miss and
// the caller recomputes.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wellfield/rigops/internal/domain"
	"github.com/wellfield/rigops/internal/logger"
	"github.com/wellfield/rigops/internal/metrics"
)

const keyPrefix = "rigops:snapshot:"

const connectTimeout = 5 * time.Second

// Connect creates a Redis client and verifies the connection.
func Connect(address, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return client, nil
}

// SnapshotCache caches whole snapshots keyed by filter fingerprint and
// anchor day. Keys include the anchor day because every preset window moves
// with the calendar; a short TTL bounds staleness within the day.
type SnapshotCache struct {
	client *redis.Client
	ttl    time.Duration
	log    logger.Logger
	met    *metrics.Metrics
}

// New creates a snapshot cache. met may be nil.
func New(client *redis.Client, ttl time.Duration, log logger.Logger, met *metrics.Metrics) *SnapshotCache {
	return &SnapshotCache{client: client, ttl: ttl, log: log, met: met}
}

// Get returns the cached snapshot for the filter and anchor, if present.
func (c *SnapshotCache) Get(ctx context.Context, f domain.FilterContext, anchor time.Time) (*domain.StatsSnapshot, bool) {
	data, err := c.client.Get(ctx, c.key(f, anchor)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.log.Debug("Snapshot cache read failed", logger.Error(err))
		}
		c.miss()
		return nil, false
	}

	var snap domain.StatsSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		c.log.Warn("Snapshot cache entry corrupt", logger.Error(err))
		c.miss()
		return nil, false
	}

	if c.met != nil {
		c.met.CacheHits.Inc()
	}
	return &snap, true
}

// Put stores a snapshot. Degraded snapshots are never cached so a transient
// query failure can't pin zeroed buckets for the TTL.
func (c *SnapshotCache) Put(ctx context.Context, snap *domain.StatsSnapshot) {
	if snap.Degraded() {
		return
	}

	data, err := json.Marshal(snap)
	if err != nil {
		c.log.Warn("Snapshot cache encode failed", logger.Error(err))
		return
	}

	if err := c.client.Set(ctx, c.key(snap.Filter, snap.AnchorDate), data, c.ttl).Err(); err != nil {
		c.log.Debug("Snapshot cache write failed", logger.Error(err))
	}
}

func (c *SnapshotCache) key(f domain.FilterContext, anchor time.Time) string {
	return keyPrefix + anchor.Format(domain.DateLayout) + ":" + f.Fingerprint()
}

func (c *SnapshotCache) miss() {
	if c.met != nil {
		c.met.CacheMisses.Inc()
	}
}
