// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the User model.
package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/campus-mood-backend/internal/domain"
)

// GetUser fetches a user by ID or returns ErrNotFound.
func GetUser(ctx context.Context, db *gorm.DB, id string) (*domain.User, error) {
	var u domain.User
	if err := db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return nil, err
	}
	return &u, nil
}

// EnsureUser inserts u unless a row with the same ID already exists, then
// returns the stored row. Concurrent callers converge on one record.
func EnsureUser(ctx context.Context, db *gorm.DB, u *domain.User) (*domain.User, error) {
	if u.DisplayName == "" {
		u.DisplayName = domain.DefaultDisplayName
	}
	if err := db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(u).Error; err != nil {
		return nil, err
	}
	return GetUser(ctx, db, u.ID)
}

// UpdateUser writes the given columns of user id. A map is used so zero
// values (a reset daily count, IsActive=false) are persisted.
func UpdateUser(ctx context.Context, db *gorm.DB, id string, fields map[string]any) error {
	res := db.WithContext(ctx).Model(&domain.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
