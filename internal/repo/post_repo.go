// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Post model:
// creation, cursor pagination of the feed, atomic reaction batches and the
// retention sweep.
//
// Error semantics follow the rest of the package: a missing post surfaces as
// ErrNotFound and every other DB error is propagated unchanged.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/campus-mood-backend/internal/domain"
	"github.com/tbourn/campus-mood-backend/internal/utils"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = gorm.ErrRecordNotFound

// CreatePost inserts p. A missing ID is filled with a UUID and a nil reaction
// set is replaced with every kind at zero. Timestamps are stored in UTC.
func CreatePost(ctx context.Context, db *gorm.DB, p *domain.Post) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Reactions.Data() == nil {
		p.SetReactions(domain.NewReactionSet())
	}
	p.CreatedAt = p.CreatedAt.UTC()
	p.ExpiresAt = p.ExpiresAt.UTC()
	p.UpdatedAt = p.CreatedAt
	return db.WithContext(ctx).Create(p).Error
}

// GetPost fetches a post by ID.
func GetPost(ctx context.Context, db *gorm.DB, id string) (*domain.Post, error) {
	var p domain.Post
	if err := db.WithContext(ctx).Where("id = ?", id).First(&p).Error; err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPostsPage returns up to size posts ordered (CreatedAt DESC, ID DESC),
// starting strictly after the cursor when one is given. It reads size+1 rows
// so callers learn whether another page exists without a count query.
func ListPostsPage(ctx context.Context, db *gorm.DB, after *utils.Cursor, size int) ([]domain.Post, bool, error) {
	if size <= 0 {
		return nil, false, nil
	}
	q := db.WithContext(ctx).Model(&domain.Post{}).Order("created_at DESC, id DESC")
	if after != nil {
		at := after.CreatedAt.UTC()
		q = q.Where("created_at < ? OR (created_at = ? AND id < ?)", at, at, after.ID)
	}
	var out []domain.Post
	if err := q.Limit(size + 1).Find(&out).Error; err != nil {
		return nil, false, err
	}
	hasMore := len(out) > size
	if hasMore {
		out = out[:size]
	}
	return out, hasMore, nil
}

// ListRecentPosts returns the newest posts, newest first.
func ListRecentPosts(ctx context.Context, db *gorm.DB, limit int) ([]domain.Post, error) {
	var out []domain.Post
	err := db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

// BatchResult reports what ApplyReactionBatch touched.
type BatchResult struct {
	Written int // posts read and rewritten
	Skipped int // posts that no longer exist
}

// ApplyReactionBatch folds every group into its post inside one transaction:
// each post is read once, its entries are applied in order and the reaction
// set is written once. Missing posts are skipped. Any other error rolls the
// whole batch back.
func ApplyReactionBatch(ctx context.Context, db *gorm.DB, groups []domain.ReactionGroup, now time.Time) (BatchResult, error) {
	var res BatchResult
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res = BatchResult{}
		for _, g := range groups {
			var p domain.Post
			err := tx.Where("id = ?", g.PostID).First(&p).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				res.Skipped++
				continue
			}
			if err != nil {
				return err
			}
			rs := p.ReactionsData()
			if rs == nil {
				rs = domain.NewReactionSet()
			}
			for _, e := range g.Entries {
				rs.Apply(e)
			}
			p.SetReactions(rs)
			if err := tx.Model(&domain.Post{}).
				Where("id = ?", p.ID).
				Updates(map[string]any{"reactions": p.Reactions, "updated_at": now.UTC()}).Error; err != nil {
				return err
			}
			res.Written++
		}
		return nil
	})
	if err != nil {
		return BatchResult{}, err
	}
	return res, nil
}

// DeleteExpiredPosts removes at most batch posts whose ExpiresAt is before
// now and returns how many rows were deleted.
func DeleteExpiredPosts(ctx context.Context, db *gorm.DB, now time.Time, batch int) (int64, error) {
	var ids []string
	if err := db.WithContext(ctx).
		Model(&domain.Post{}).
		Where("expires_at < ?", now.UTC()).
		Order("expires_at ASC").
		Limit(batch).
		Pluck("id", &ids).Error; err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}
	res := db.WithContext(ctx).Where("id IN ?", ids).Delete(&domain.Post{})
	return res.RowsAffected, res.Error
}

// CountDistinctAuthors counts authors with at least one post created in
// [from, to).
func CountDistinctAuthors(ctx context.Context, db *gorm.DB, from, to time.Time) (int64, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Post{}).
		Where("created_at >= ? AND created_at < ?", from.UTC(), to.UTC()).
		Distinct("author_id").
		Count(&n).Error
	return n, err
}
