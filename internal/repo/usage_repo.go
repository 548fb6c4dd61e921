// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the per-day store usage counters kept in
// the usage_stats table.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/campus-mood-backend/internal/domain"
)

// UsageTable stores usage counters in the relational database. It is the
// single-replica backend.
type UsageTable struct {
	DB       *gorm.DB
	Warning  float64
	Critical float64
}

// Increment adds reads and writes to day's counters, creating the row on
// first use, and returns the updated row.
func (u UsageTable) Increment(ctx context.Context, day string, reads, writes int64) (*domain.UsageStats, error) {
	return IncrementUsage(ctx, u.DB, day, reads, writes, u.Warning, u.Critical)
}

// Get returns day's counters or ErrNotFound.
func (u UsageTable) Get(ctx context.Context, day string) (*domain.UsageStats, error) {
	return GetUsage(ctx, u.DB, day)
}

// IncrementUsage upserts the usage row for day with an atomic column
// increment.
func IncrementUsage(ctx context.Context, db *gorm.DB, day string, reads, writes int64, warning, critical float64) (*domain.UsageStats, error) {
	row := &domain.UsageStats{
		Date:              day,
		DailyReads:        reads,
		DailyWrites:       writes,
		WarningThreshold:  warning,
		CriticalThreshold: critical,
		UpdatedAt:         time.Now().UTC(),
	}
	err := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "date"}},
		DoUpdates: clause.Assignments(map[string]any{
			"daily_reads":  gorm.Expr("daily_reads + ?", reads),
			"daily_writes": gorm.Expr("daily_writes + ?", writes),
			"updated_at":   row.UpdatedAt,
		}),
	}).Create(row).Error
	if err != nil {
		return nil, err
	}
	return GetUsage(ctx, db, day)
}

// GetUsage returns the usage row for day or ErrNotFound.
func GetUsage(ctx context.Context, db *gorm.DB, day string) (*domain.UsageStats, error) {
	var u domain.UsageStats
	if err := db.WithContext(ctx).Where("date = ?", day).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}
