// Package repo implements the data persistence layer for domain entities.
// This file keeps the per-day usage counters in a Redis hash so several API
// replicas share one count.
package repo

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tbourn/campus-mood-backend/internal/domain"
)

const (
	usageFieldReads  = "reads"
	usageFieldWrites = "writes"
	usageKeyTTL      = 48 * time.Hour
)

// RedisUsageStore keeps usage counters in Redis, one hash per day.
type RedisUsageStore struct {
	client   redis.UniversalClient
	prefix   string
	warning  float64
	critical float64
}

// NewRedisUsageStore builds a Redis-backed usage store. Keys are
// "<prefix><day>".
func NewRedisUsageStore(client redis.UniversalClient, prefix string, warning, critical float64) *RedisUsageStore {
	if prefix == "" {
		prefix = "mood:usage:"
	}
	return &RedisUsageStore{client: client, prefix: prefix, warning: warning, critical: critical}
}

func (s *RedisUsageStore) key(day string) string { return s.prefix + day }

// Increment bumps both counters and refreshes the key expiry in one
// MULTI/EXEC round trip.
func (s *RedisUsageStore) Increment(ctx context.Context, day string, reads, writes int64) (*domain.UsageStats, error) {
	k := s.key(day)
	var r, w *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		r = p.HIncrBy(ctx, k, usageFieldReads, reads)
		w = p.HIncrBy(ctx, k, usageFieldWrites, writes)
		p.Expire(ctx, k, usageKeyTTL)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.row(day, r.Val(), w.Val()), nil
}

// Get returns day's counters or ErrNotFound when the hash does not exist.
func (s *RedisUsageStore) Get(ctx context.Context, day string) (*domain.UsageStats, error) {
	vals, err := s.client.HGetAll(ctx, s.key(day)).Result()
	if err != nil {
		return nil, err
	}
	if len(vals) == 0 {
		return nil, ErrNotFound
	}
	reads, _ := strconv.ParseInt(vals[usageFieldReads], 10, 64)
	writes, _ := strconv.ParseInt(vals[usageFieldWrites], 10, 64)
	return s.row(day, reads, writes), nil
}

func (s *RedisUsageStore) row(day string, reads, writes int64) *domain.UsageStats {
	return &domain.UsageStats{
		Date:              day,
		DailyReads:        reads,
		DailyWrites:       writes,
		WarningThreshold:  s.warning,
		CriticalThreshold: s.critical,
		UpdatedAt:         time.Now().UTC(),
	}
}
