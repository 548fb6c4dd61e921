// Package handlers exposes the REST endpoints of the mood feed.
//
// Handlers are transport-thin: they bind and validate input, call the
// application services through the narrow contracts below and translate
// results and service errors into HTTP responses (including conditional
// responses and idempotent replays).
package handlers

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/campus-mood-backend/internal/auth"
	"github.com/tbourn/campus-mood-backend/internal/domain"
	"github.com/tbourn/campus-mood-backend/internal/feed"
	"github.com/tbourn/campus-mood-backend/internal/http/middleware"
	"github.com/tbourn/campus-mood-backend/internal/services"
)

//
// Service contracts (context-aware)
//

// PostService creates posts and reads the feed.
type PostService interface {
	// CreateIdempotent creates a post, replaying the earlier result when
	// key was already used by userID. An empty key disables replay.
	CreateIdempotent(ctx context.Context, userID, key string, in services.CreatePostInput) (*domain.Post, bool, error)
	// LookupIdempotent returns the post created earlier for (userID, key).
	LookupIdempotent(ctx context.Context, userID, key string) (*domain.Post, error)
	// LoadPosts returns one page of the feed rendered for viewerID.
	LoadPosts(ctx context.Context, viewerID, cursor string, pageSize int) (*services.Page, error)
	// Get returns a single post rendered for viewerID.
	Get(ctx context.Context, viewerID, postID string) (*services.PostView, error)
	// Views renders posts for viewerID with queued toggles overlaid.
	Views(viewerID string, posts []domain.Post) []services.PostView
	// FeedVersion summarizes the feed for ETag generation.
	FeedVersion(ctx context.Context) (count int64, latest *time.Time, queueSeq uint64, err error)
}

// ReactionQueue accepts reaction toggles for batched persistence.
type ReactionQueue interface {
	Add(postID, kind, userID string) (domain.ReactionBatchEntry, error)
	Remove(postID, kind, userID string) (domain.ReactionBatchEntry, error)
}

// SessionService signs users in and out and reads their profile.
type SessionService interface {
	SignIn(ctx context.Context, id auth.Identity) (*services.Profile, error)
	SignOut(ctx context.Context) error
	Profile(ctx context.Context, userID string) (*services.Profile, error)
}

// QuotaService answers whether a user may post today.
type QuotaService interface {
	CheckDailyLimit(ctx context.Context, userID string) (services.Allowance, error)
}

// StatsService reads the daily mood rollups.
type StatsService interface {
	GetDailyStats(ctx context.Context, day string) (*domain.DailyStats, error)
	GetRecentStats(ctx context.Context, days int) ([]domain.DailyStats, error)
	Summary(ctx context.Context, days int) (*services.StatsSummary, error)
}

// UsageService reads today's store usage.
type UsageService interface {
	GetCurrentUsage(ctx context.Context) (*domain.UsageStats, error)
	Report(row *domain.UsageStats) *services.UsageReport
}

// LiveFeed delivers feed snapshots as they change.
type LiveFeed interface {
	Subscribe(ctx context.Context) (<-chan feed.Snapshot, func(), error)
}

// ChallengeSource returns today's challenge.
type ChallengeSource interface {
	Today() services.TodayChallenge
}

//
// Handler wiring
//

// Deps are the services the handlers depend on. All fields are required
// except Live, which disables GET /posts/live when nil.
type Deps struct {
	Posts      PostService
	Reactions  ReactionQueue
	Sessions   SessionService
	Quota      QuotaService
	Stats      StatsService
	Usage      UsageService
	Live       LiveFeed
	Challenges ChallengeSource

	// KeepAlive is the comment interval on idle live streams.
	KeepAlive time.Duration
}

// Handlers groups the HTTP endpoints.
type Handlers struct {
	posts      PostService
	reactions  ReactionQueue
	sessions   SessionService
	quota      QuotaService
	stats      StatsService
	usage      UsageService
	live       LiveFeed
	challenges ChallengeSource
	keepAlive  time.Duration
}

// New constructs Handlers bound to d.
func New(d Deps) *Handlers {
	ka := d.KeepAlive
	if ka <= 0 {
		ka = 25 * time.Second
	}
	return &Handlers{
		posts:      d.Posts,
		reactions:  d.Reactions,
		sessions:   d.Sessions,
		quota:      d.Quota,
		stats:      d.Stats,
		usage:      d.Usage,
		live:       d.Live,
		challenges: d.Challenges,
		keepAlive:  ka,
	}
}

// userID returns the authenticated caller. Routes that need a caller sit
// behind middleware.RequireUser, so "" only reaches anonymous routes.
func userID(c *gin.Context) string {
	return middleware.UserID(c)
}
