// Package services – RetentionSweeper
//
// RetentionSweeper deletes posts past their expiry in fixed-size batches and
// purges stale idempotency records. Daily statistics are kept.
package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/tbourn/campus-mood-backend/internal/clock"
	"github.com/tbourn/campus-mood-backend/internal/repo"
)

// Sweeper defaults.
const (
	DefaultSweepBatch    = 100
	DefaultSweepInterval = time.Hour
)

// RetentionSweeper runs periodic cleanup.
type RetentionSweeper struct {
	DB       *gorm.DB
	Clock    clock.Clock
	Interval time.Duration
	Batch    int
	Meter    *UsageMeter
	Feed     Publisher
	Log      zerolog.Logger
}

// SweepOnce deletes expired posts batch by batch until none remain and
// returns the number deleted.
func (r *RetentionSweeper) SweepOnce(ctx context.Context) (int64, error) {
	batch := r.Batch
	if batch <= 0 {
		batch = DefaultSweepBatch
	}
	now := r.Clock.Now()
	var total int64
	for {
		n, err := repo.DeleteExpiredPosts(ctx, r.DB, now, batch)
		r.Meter.Observe(ctx, int(n)+1, int(n))
		if err != nil {
			return total, err
		}
		total += n
		if n < int64(batch) {
			break
		}
	}
	if _, err := repo.DeleteExpiredIdempotency(ctx, r.DB, now); err != nil {
		r.Log.Warn().Err(err).Msg("idempotency cleanup failed")
	}
	if total > 0 {
		r.Log.Info().Int64("deleted", total).Msg("expired posts removed")
		if r.Feed != nil {
			_ = r.Feed.Publish(ctx)
		}
	}
	return total, nil
}

// Run sweeps immediately and then every Interval on r.Clock until ctx ends.
func (r *RetentionSweeper) Run(ctx context.Context) {
	interval := r.Interval
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	sweep := func() {
		if _, err := r.SweepOnce(ctx); err != nil && ctx.Err() == nil {
			r.Log.Error().Err(err).Msg("retention sweep failed")
		}
	}
	tick := make(chan struct{}, 1)
	arm := func() clock.Timer {
		return r.Clock.AfterFunc(interval, func() {
			select {
			case tick <- struct{}{}:
			default:
			}
		})
	}
	sweep()
	t := arm()
	for {
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case <-tick:
			sweep()
			t = arm()
		}
	}
}
