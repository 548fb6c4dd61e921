// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for DailyStats.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/campus-mood-backend/internal/domain"
)

// GetDailyStats returns the rollup for day or ErrNotFound.
func GetDailyStats(ctx context.Context, db *gorm.DB, day string) (*domain.DailyStats, error) {
	var d domain.DailyStats
	if err := db.WithContext(ctx).Where("date = ?", day).First(&d).Error; err != nil {
		return nil, err
	}
	return &d, nil
}

// SaveDailyStats inserts or fully rewrites d.
func SaveDailyStats(ctx context.Context, db *gorm.DB, d *domain.DailyStats) error {
	return db.WithContext(ctx).Save(d).Error
}

// ListDailyStats returns the rollups whose day key lies in [from, to],
// most recent first. Day keys sort lexicographically.
func ListDailyStats(ctx context.Context, db *gorm.DB, from, to string) ([]domain.DailyStats, error) {
	var out []domain.DailyStats
	err := db.WithContext(ctx).
		Where("date >= ? AND date <= ?", from, to).
		Order("date DESC").
		Find(&out).Error
	return out, err
}

// SetActiveUsers overwrites the active user count of an existing rollup.
func SetActiveUsers(ctx context.Context, db *gorm.DB, day string, n int) error {
	res := db.WithContext(ctx).Model(&domain.DailyStats{}).Where("date = ?", day).Update("active_users", n)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
