package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/campus-mood-backend/internal/domain"
)

// liveIdempotency restricts a query to one user's unexpired record for key.
func liveIdempotency(userID, key string, now time.Time) func(*gorm.DB) *gorm.DB {
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Where("user_id = ? AND key = ? AND expires_at > ?", userID, key, now.UTC())
	}
}

// GetIdempotency returns the unexpired record for (userID, key) or
// ErrNotFound. A blank key never matches.
func GetIdempotency(ctx context.Context, db *gorm.DB, userID, key string, now time.Time) (*domain.Idempotency, error) {
	if strings.TrimSpace(key) == "" {
		return nil, ErrNotFound
	}
	var rec domain.Idempotency
	err := db.WithContext(ctx).Scopes(liveIdempotency(userID, key, now)).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// GetIdempotentPost resolves (userID, key) straight to the post it created.
// ErrNotFound covers both a missing record and a post the sweeper removed.
func GetIdempotentPost(ctx context.Context, db *gorm.DB, userID, key string, now time.Time) (*domain.Post, error) {
	if strings.TrimSpace(key) == "" {
		return nil, ErrNotFound
	}
	var p domain.Post
	err := db.WithContext(ctx).
		Where("id = (?)", db.Model(&domain.Idempotency{}).
			Select("post_id").
			Scopes(liveIdempotency(userID, key, now)).
			Limit(1)).
		First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateIdempotency stores the outcome of a creation under (userID, key),
// valid until now+ttl. A second record for the same pair yields ErrDuplicate.
func CreateIdempotency(ctx context.Context, db *gorm.DB, userID, key, postID string, status int, now time.Time, ttl time.Duration) (*domain.Idempotency, error) {
	now = now.UTC()
	rec := &domain.Idempotency{
		ID:        uuid.NewString(),
		UserID:    userID,
		Key:       key,
		PostID:    postID,
		Status:    status,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
	if err := db.WithContext(ctx).Create(rec).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return rec, nil
}

// DeleteExpiredIdempotency removes records whose window has closed.
func DeleteExpiredIdempotency(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	res := db.WithContext(ctx).Where("expires_at <= ?", now.UTC()).Delete(&domain.Idempotency{})
	return res.RowsAffected, res.Error
}
