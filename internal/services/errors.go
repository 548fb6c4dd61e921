// Package services defines the business logic for posts, reactions, quotas,
// statistics and sessions. This file centralizes the service-level error
// values so that they can be returned consistently by service methods and
// checked by callers with errors.Is.
//
// Translation into user-facing messages or HTTP status codes is performed at
// the handler layer.
package services

import (
	"errors"

	"github.com/tbourn/campus-mood-backend/internal/batcher"
)

// Post validation errors.
var (
	// ErrMoodRequired is returned when a post carries no mood.
	ErrMoodRequired = errors.New("mood is required")

	// ErrUnknownMood is returned for moods outside the vocabulary.
	ErrUnknownMood = errors.New("unknown mood")

	// ErrTextTooLong is returned when the post text exceeds the rune limit
	// after normalization.
	ErrTextTooLong = errors.New("text too long")

	// ErrInvalidChallenge is returned when a post references a challenge
	// that does not exist.
	ErrInvalidChallenge = errors.New("invalid challenge reference")

	// ErrDailyLimitReached is returned when the author has used today's
	// post allowance.
	ErrDailyLimitReached = errors.New("daily post limit reached")

	// ErrPostNotFound indicates that the requested post does not exist.
	ErrPostNotFound = errors.New("post not found")

	// ErrInvalidCursor is returned for page cursors that cannot be decoded.
	ErrInvalidCursor = errors.New("invalid cursor")
)

// Reaction errors.
var (
	// ErrUnknownReaction is returned for reaction kinds outside the
	// vocabulary.
	ErrUnknownReaction = batcher.ErrUnknownKind
)

// Session errors.
var (
	// ErrEmailNotAllowed is returned when the sign-in email is outside the
	// allowed institutional domains.
	ErrEmailNotAllowed = errors.New("email domain not allowed")

	// ErrEmailUnverified is returned when the identity provider has not
	// verified the email address.
	ErrEmailUnverified = errors.New("email not verified")
)

// Statistics errors.
var (
	// ErrNoStats indicates that no rollup exists for the requested day.
	ErrNoStats = errors.New("no stats for day")

	// ErrInvalidDate is returned for day keys that are not YYYY-MM-DD.
	ErrInvalidDate = errors.New("invalid date")
)
