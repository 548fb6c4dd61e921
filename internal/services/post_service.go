// Package services – PostService
//
// PostService owns the post lifecycle: validation, quota enforcement, atomic
// persistence together with the author's counters, statistics updates and
// live feed notification. Reads render viewer-specific views in which the
// viewer's not yet flushed reaction toggles are already visible.
//
// Observability: public methods are OpenTelemetry-instrumented and every
// store access is reported to the UsageMeter.
package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/unicode/norm"
	"gorm.io/gorm"

	"github.com/tbourn/campus-mood-backend/internal/batcher"
	"github.com/tbourn/campus-mood-backend/internal/clock"
	"github.com/tbourn/campus-mood-backend/internal/domain"
	"github.com/tbourn/campus-mood-backend/internal/repo"
	"github.com/tbourn/campus-mood-backend/internal/utils"
)

// Defaults for feed paging and retention.
const (
	DefaultPageSize  = 20
	MaxPageSize      = 50
	DefaultRetention = 7 * 24 * time.Hour
)

// Publisher is notified whenever the feed content changes.
type Publisher interface {
	Publish(ctx context.Context) error
}

// PendingSource exposes queued, not yet persisted reaction toggles.
type PendingSource interface {
	Pending(postIDs ...string) []domain.ReactionBatchEntry
}

// CreatePostInput is the client-supplied part of a post.
type CreatePostInput struct {
	Mood        string
	Text        string
	ChallengeID *int
}

// ReactionView is one reaction kind as seen by a viewer.
type ReactionView struct {
	Count       int  `json:"count"`
	UserReacted bool `json:"user_reacted"`
}

// PostView is a post rendered for one viewer. It never carries author or
// voter ids.
type PostView struct {
	ID          string                  `json:"id"`
	Mood        string                  `json:"mood"`
	Text        string                  `json:"text"`
	CreatedAt   time.Time               `json:"created_at"`
	ExpiresAt   time.Time               `json:"expires_at"`
	IsChallenge bool                    `json:"is_challenge"`
	ChallengeID *int                    `json:"challenge_id,omitempty"`
	Reactions   map[string]ReactionView `json:"reactions"`
}

// Page is one page of the feed.
type Page struct {
	Posts      []PostView `json:"posts"`
	NextCursor string     `json:"next_cursor,omitempty"`
	HasMore    bool       `json:"has_more"`
}

// PostService coordinates post creation and feed reads.
type PostService struct {
	DB        *gorm.DB
	Clock     clock.Clock
	Gate      *QuotaGate
	Stats     *StatsService
	Meter     *UsageMeter
	Feed      Publisher
	Pending   PendingSource
	Retention time.Duration
	PageSize  int
	Log       zerolog.Logger

	// IdempotencyTTL bounds how long a retried creation replays the
	// original post.
	IdempotencyTTL time.Duration
}

// Create validates in, enforces the author's daily allowance and persists
// the post together with the author's counters in one transaction. Statistics
// and the live feed are updated afterwards on a best-effort basis.
func (s *PostService) Create(ctx context.Context, userID string, in CreatePostInput) (*domain.Post, error) {
	tr := otel.Tracer("services/PostService")
	ctx, span := tr.Start(ctx, "Create",
		trace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.String("mood", in.Mood),
		),
	)
	defer span.End()

	p, err := s.validate(in)
	if err != nil {
		return nil, err
	}

	allow, err := s.Gate.CheckDailyLimit(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("create post: check limit: %w", err)
	}
	if !allow.CanPost {
		return nil, ErrDailyLimitReached
	}

	now := s.Clock.Now()
	p.AuthorID = userID
	p.CreatedAt = now
	p.ExpiresAt = now.Add(s.retention())

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := repo.CreatePost(ctx, tx, p); err != nil {
			return err
		}
		return s.Gate.WithDB(tx).RecordPost(ctx, userID)
	})
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	// post insert + user read/update
	s.Meter.Observe(ctx, 1, 2)

	s.afterCreate(ctx, p)
	return p, nil
}

// CreateIdempotent behaves like Create but replays the post created earlier
// with the same key for the same user. replayed reports a replay.
func (s *PostService) CreateIdempotent(ctx context.Context, userID, key string, in CreatePostInput) (p *domain.Post, replayed bool, err error) {
	key = strings.TrimSpace(key)
	if key == "" {
		p, err = s.Create(ctx, userID, in)
		return p, false, err
	}

	if prev, err := s.replay(ctx, userID, key); err == nil {
		return prev, true, nil
	} else if !isNotFound(err) {
		return nil, false, err
	}

	p, err = s.Create(ctx, userID, in)
	if err != nil {
		return nil, false, err
	}
	if _, ierr := repo.CreateIdempotency(ctx, s.DB, userID, key, p.ID, http.StatusCreated, s.Clock.Now(), s.idempotencyTTL()); ierr != nil && !isDuplicate(ierr) {
		s.Log.Warn().Err(ierr).Str("user_id", userID).Msg("idempotency record not stored")
	}
	s.Meter.Observe(ctx, 1, 1)
	return p, false, nil
}

// LookupIdempotent returns the post previously created for (userID, key).
func (s *PostService) LookupIdempotent(ctx context.Context, userID, key string) (*domain.Post, error) {
	return s.replay(ctx, userID, key)
}

func (s *PostService) replay(ctx context.Context, userID, key string) (*domain.Post, error) {
	p, err := repo.GetIdempotentPost(ctx, s.DB, userID, key, s.Clock.Now())
	s.Meter.Observe(ctx, 1, 0)
	if isNotFound(err) {
		return nil, repo.ErrNotFound
	}
	return p, err
}

func (s *PostService) afterCreate(ctx context.Context, p *domain.Post) {
	ctx = context.WithoutCancel(ctx)
	if s.Stats != nil {
		day := clock.DayKey(s.Clock, p.CreatedAt)
		if err := s.Stats.RecordPost(ctx, p.Mood, p.IsChallenge); err != nil {
			s.Log.Error().Err(err).Str("post_id", p.ID).Msg("daily stats not updated")
		} else if _, err := s.Stats.RefreshActiveUsers(ctx, day); err != nil {
			s.Log.Warn().Err(err).Str("day", day).Msg("active users not refreshed")
		}
	}
	if s.Feed != nil {
		_ = s.Feed.Publish(ctx)
	}
}

func (s *PostService) validate(in CreatePostInput) (*domain.Post, error) {
	mood := strings.TrimSpace(in.Mood)
	if mood == "" {
		return nil, ErrMoodRequired
	}
	if !domain.IsMood(mood) {
		return nil, ErrUnknownMood
	}
	text := norm.NFC.String(strings.TrimSpace(in.Text))
	if utf8.RuneCountInString(text) > domain.MaxTextRunes {
		return nil, ErrTextTooLong
	}
	p := &domain.Post{Mood: mood, Text: text}
	if in.ChallengeID != nil {
		if !domain.IsChallengeIndex(*in.ChallengeID) {
			return nil, ErrInvalidChallenge
		}
		id := *in.ChallengeID
		p.IsChallenge = true
		p.ChallengeID = &id
	}
	return p, nil
}

// Get returns a single post rendered for viewerID.
func (s *PostService) Get(ctx context.Context, viewerID, postID string) (*PostView, error) {
	p, err := repo.GetPost(ctx, s.DB, postID)
	s.Meter.Observe(ctx, 1, 0)
	if isNotFound(err) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, err
	}
	v := s.Views(viewerID, []domain.Post{*p})
	return &v[0], nil
}

// LoadPosts returns one page of the feed, newest first. cursor is the
// NextCursor of the previous page or "" for the first page; pageSize is
// clamped to [1, MaxPageSize] with DefaultPageSize for non-positive values.
func (s *PostService) LoadPosts(ctx context.Context, viewerID, cursor string, pageSize int) (*Page, error) {
	tr := otel.Tracer("services/PostService")
	ctx, span := tr.Start(ctx, "LoadPosts",
		trace.WithAttributes(
			attribute.String("user.id", viewerID),
			attribute.Int("page_size", pageSize),
			attribute.Bool("has_cursor", cursor != ""),
		),
	)
	defer span.End()

	after, err := utils.DecodeCursor(cursor)
	if err != nil {
		return nil, ErrInvalidCursor
	}
	size := utils.ClampPageSize(pageSize, s.defaultPageSize(), MaxPageSize)

	posts, hasMore, err := repo.ListPostsPage(ctx, s.DB, after, size)
	s.Meter.Observe(ctx, len(posts)+1, 0)
	if err != nil {
		return nil, err
	}

	page := &Page{Posts: s.Views(viewerID, posts), HasMore: hasMore}
	if hasMore && len(posts) > 0 {
		last := posts[len(posts)-1]
		page.NextCursor = utils.EncodeCursor(utils.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return page, nil
}

// Recent returns the newest posts. It backs the live feed snapshots.
func (s *PostService) Recent(ctx context.Context, limit int) ([]domain.Post, error) {
	posts, err := repo.ListRecentPosts(ctx, s.DB, limit)
	s.Meter.Observe(ctx, len(posts)+1, 0)
	return posts, err
}

// Views renders posts for viewerID, overlaying queued reaction toggles in
// sequence order on the persisted reaction sets.
func (s *PostService) Views(viewerID string, posts []domain.Post) []PostView {
	out := make([]PostView, 0, len(posts))
	var pending []domain.ReactionBatchEntry
	if s.Pending != nil && len(posts) > 0 {
		ids := make([]string, len(posts))
		for i := range posts {
			ids[i] = posts[i].ID
		}
		pending = s.Pending.Pending(ids...)
	}
	for i := range posts {
		p := &posts[i]
		rs := batcher.Overlay(p.ReactionsData(), p.ID, pending)
		reactions := make(map[string]ReactionView, len(domain.Reactions))
		for _, r := range domain.Reactions {
			reactions[r.ID] = ReactionView{Count: rs[r.ID].Count, UserReacted: viewerID != "" && rs.Has(r.ID, viewerID)}
		}
		out = append(out, PostView{
			ID:          p.ID,
			Mood:        p.Mood,
			Text:        p.Text,
			CreatedAt:   p.CreatedAt,
			ExpiresAt:   p.ExpiresAt,
			IsChallenge: p.IsChallenge,
			ChallengeID: p.ChallengeID,
			Reactions:   reactions,
		})
	}
	return out
}

// FeedVersion summarizes the feed state for conditional requests: the number
// of posts, the latest change and the sequence number of the newest queued
// toggle (0 when the queue is empty).
func (s *PostService) FeedVersion(ctx context.Context) (count int64, latest *time.Time, queueSeq uint64, err error) {
	count, latest, err = repo.PostsStats(ctx, s.DB)
	s.Meter.Observe(ctx, 1, 0)
	if err != nil {
		return 0, nil, 0, err
	}
	if s.Pending != nil {
		if entries := s.Pending.Pending(); len(entries) > 0 {
			queueSeq = entries[len(entries)-1].Seq
		}
	}
	return count, latest, queueSeq, nil
}

func (s *PostService) retention() time.Duration {
	if s.Retention > 0 {
		return s.Retention
	}
	return DefaultRetention
}

func (s *PostService) defaultPageSize() int {
	if s.PageSize > 0 && s.PageSize <= MaxPageSize {
		return s.PageSize
	}
	return DefaultPageSize
}

func (s *PostService) idempotencyTTL() time.Duration {
	if s.IdempotencyTTL > 0 {
		return s.IdempotencyTTL
	}
	return 24 * time.Hour
}
