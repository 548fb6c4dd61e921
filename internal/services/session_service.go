// Package services – SessionService
//
// SessionService admits verified institutional users, keeps their profile
// current and force-flushes queued reactions on sign-out.
package services

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/campus-mood-backend/internal/auth"
	"github.com/tbourn/campus-mood-backend/internal/clock"
	"github.com/tbourn/campus-mood-backend/internal/domain"
	"github.com/tbourn/campus-mood-backend/internal/repo"
)

// DomainChecker decides whether an email may sign in.
type DomainChecker interface {
	Allowed(email string) bool
}

// Flusher drains queued work.
type Flusher interface {
	FlushNow(ctx context.Context) error
}

// Profile is the signed-in user as shown to themselves.
type Profile struct {
	User           *domain.User `json:"user"`
	DailyPostCount int          `json:"daily_post_count"`
	Remaining      int          `json:"remaining"`
	DailyLimit     int          `json:"daily_limit"`
	IsActive       bool         `json:"is_active"`
}

// SessionService implements sign-in, sign-out and profile reads.
type SessionService struct {
	DB      *gorm.DB
	Clock   clock.Clock
	Gate    *QuotaGate
	Policy  DomainChecker
	Flusher Flusher
	Meter   *UsageMeter
}

// SignIn admits id when its email is verified and allowed, creates or
// refreshes the user record and applies the daily counter reset.
func (s *SessionService) SignIn(ctx context.Context, id auth.Identity) (*Profile, error) {
	tr := otel.Tracer("services/SessionService")
	ctx, span := tr.Start(ctx, "SignIn", trace.WithAttributes(attribute.String("user.id", id.UserID)))
	defer span.End()

	if !id.EmailVerified {
		return nil, ErrEmailUnverified
	}
	if s.Policy != nil && !s.Policy.Allowed(id.Email) {
		return nil, ErrEmailNotAllowed
	}

	now := s.Clock.Now().UTC()
	name := strings.TrimSpace(id.Name)
	if name == "" {
		name = domain.DefaultDisplayName
	}

	if _, err := repo.EnsureUser(ctx, s.DB, &domain.User{
		ID:          id.UserID,
		Email:       id.Email,
		DisplayName: name,
		CreatedAt:   now,
		LastActive:  now,
		IsActive:    true,
	}); err != nil {
		return nil, fmt.Errorf("sign in: ensure user: %w", err)
	}
	if err := repo.UpdateUser(ctx, s.DB, id.UserID, map[string]any{
		"email":        id.Email,
		"display_name": name,
		"last_active":  now,
		"is_active":    true,
	}); err != nil {
		return nil, fmt.Errorf("sign in: update user: %w", err)
	}
	s.Meter.Observe(ctx, 1, 2)

	return s.Profile(ctx, id.UserID)
}

// SignOut drains the reaction queue so the caller's toggles are persisted.
func (s *SessionService) SignOut(ctx context.Context) error {
	if s.Flusher == nil {
		return nil
	}
	return s.Flusher.FlushNow(ctx)
}

// Profile returns userID's record with today's effective counters. The user
// is created on first sight.
func (s *SessionService) Profile(ctx context.Context, userID string) (*Profile, error) {
	u, allow, err := s.Gate.Status(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.Clock.Now()
	today := clock.DayKey(s.Clock, now)
	active := IsRecentlyActive(u.LastActive, now)
	u.IsActive = active
	return &Profile{
		User:           u,
		DailyPostCount: EffectiveDailyCount(u, today),
		Remaining:      allow.Remaining,
		DailyLimit:     allow.Limit,
		IsActive:       active,
	}, nil
}
