// Package services – QuotaGate
//
// QuotaGate enforces the per-user daily post allowance. The daily counter
// belongs to a calendar day in the clock's location: when today's key differs
// from the user's LastPostDate the count is treated as zero, and
// CheckDailyLimit persists that reset.
package services

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/campus-mood-backend/internal/clock"
	"github.com/tbourn/campus-mood-backend/internal/domain"
	"github.com/tbourn/campus-mood-backend/internal/repo"
)

// DefaultDailyPostLimit applies when no limit is configured.
const DefaultDailyPostLimit = 10

// InactiveAfter is the inactivity window after which a user is no longer
// counted as active.
const InactiveAfter = 7 * 24 * time.Hour

// Allowance is the outcome of a quota check.
type Allowance struct {
	CanPost   bool `json:"can_post"`
	Remaining int  `json:"remaining"`
	Limit     int  `json:"limit"`
}

// QuotaGate reads and updates the per-user counters.
type QuotaGate struct {
	DB         *gorm.DB
	Clock      clock.Clock
	DailyLimit int
	Meter      *UsageMeter
}

// WithDB returns a copy of g bound to db, typically a transaction handle.
// The copy does not meter; SQLite allows one writer, so the caller records
// usage after commit.
func (g *QuotaGate) WithDB(db *gorm.DB) *QuotaGate {
	cp := *g
	cp.DB = db
	cp.Meter = nil
	return &cp
}

// Limit returns the effective daily limit.
func (g *QuotaGate) Limit() int {
	if g.DailyLimit > 0 {
		return g.DailyLimit
	}
	return DefaultDailyPostLimit
}

// CheckDailyLimit reports whether userID may post today. The user record is
// created on first sight and a stale daily counter is reset in storage, so a
// repeated call with no post in between returns the same result and writes
// nothing.
func (g *QuotaGate) CheckDailyLimit(ctx context.Context, userID string) (Allowance, error) {
	tr := otel.Tracer("services/QuotaGate")
	ctx, span := tr.Start(ctx, "CheckDailyLimit", trace.WithAttributes(attribute.String("user.id", userID)))
	defer span.End()

	u, err := g.ensureFresh(ctx, userID)
	if err != nil {
		return Allowance{}, err
	}
	return g.allowance(u.DailyPostCount), nil
}

// RecordPost bumps the lifetime and daily counters of userID. It is not
// idempotent: every call counts one post.
func (g *QuotaGate) RecordPost(ctx context.Context, userID string) error {
	tr := otel.Tracer("services/QuotaGate")
	ctx, span := tr.Start(ctx, "RecordPost", trace.WithAttributes(attribute.String("user.id", userID)))
	defer span.End()

	now := g.Clock.Now()
	today := clock.DayKey(g.Clock, now)

	u, err := repo.GetUser(ctx, g.DB, userID)
	if err != nil {
		return fmt.Errorf("record post: load user: %w", err)
	}
	err = repo.UpdateUser(ctx, g.DB, userID, map[string]any{
		"total_posts":      u.TotalPosts + 1,
		"daily_post_count": EffectiveDailyCount(u, today) + 1,
		"last_post_date":   today,
		"last_active":      now.UTC(),
		"is_active":        true,
	})
	g.Meter.Observe(ctx, 1, 1)
	if err != nil {
		return fmt.Errorf("record post: update user: %w", err)
	}
	return nil
}

// Status returns the user (created if missing, reset applied) together with
// the current allowance.
func (g *QuotaGate) Status(ctx context.Context, userID string) (*domain.User, Allowance, error) {
	u, err := g.ensureFresh(ctx, userID)
	if err != nil {
		return nil, Allowance{}, err
	}
	return u, g.allowance(u.DailyPostCount), nil
}

func (g *QuotaGate) ensureFresh(ctx context.Context, userID string) (*domain.User, error) {
	now := g.Clock.Now()
	today := clock.DayKey(g.Clock, now)

	u, err := repo.GetUser(ctx, g.DB, userID)
	reads, writes := 1, 0
	defer func() { g.Meter.Observe(ctx, reads, writes) }()

	switch {
	case err == nil:
	case isNotFound(err):
		writes++
		u, err = repo.EnsureUser(ctx, g.DB, &domain.User{
			ID:           userID,
			DisplayName:  domain.DefaultDisplayName,
			CreatedAt:    now.UTC(),
			LastActive:   now.UTC(),
			LastPostDate: today,
			IsActive:     true,
		})
		if err != nil {
			return nil, fmt.Errorf("quota: create user: %w", err)
		}
	default:
		return nil, fmt.Errorf("quota: load user: %w", err)
	}

	if u.LastPostDate != today {
		writes++
		if err := repo.UpdateUser(ctx, g.DB, userID, map[string]any{
			"daily_post_count": 0,
			"last_post_date":   today,
		}); err != nil {
			return nil, fmt.Errorf("quota: reset daily count: %w", err)
		}
		u.DailyPostCount = 0
		u.LastPostDate = today
	}
	return u, nil
}

func (g *QuotaGate) allowance(used int) Allowance {
	limit := g.Limit()
	remaining := limit - used
	if remaining < 0 {
		remaining = 0
	}
	return Allowance{CanPost: used < limit, Remaining: remaining, Limit: limit}
}

// EffectiveDailyCount is the user's post count for today: the stored
// counter when it belongs to today, zero otherwise.
func EffectiveDailyCount(u *domain.User, today string) int {
	if u == nil || u.LastPostDate != today {
		return 0
	}
	return u.DailyPostCount
}

// IsRecentlyActive reports whether lastActive lies within InactiveAfter of
// now.
func IsRecentlyActive(lastActive, now time.Time) bool {
	return !lastActive.IsZero() && now.Sub(lastActive) < InactiveAfter
}
