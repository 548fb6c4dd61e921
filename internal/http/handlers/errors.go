// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// Codes are stable, lowercase snake_case strings returned in the `code` field
// of ErrorResponse. Generic codes mirror HTTP status semantics; domain codes
// name business outcomes clients branch on (e.g. daily_limit_reached).
//
// Example response:
//
//	{
//	  "request_id": "e1b9be03-4999-4289-9f03-999b042d65d6",
//	  "code": "daily_limit_reached",
//	  "message": "You've reached today's post limit. Come back tomorrow!"
//	}
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/campus-mood-backend/internal/batcher"
	"github.com/tbourn/campus-mood-backend/internal/services"
)

const (
	ErrCodeBadRequest   = "bad_request"
	ErrCodeUnauthorized = "unauthorized"
	ErrCodeForbidden    = "forbidden"
	ErrCodeNotFound     = "not_found"
	ErrCodeConflict     = "conflict"
	ErrCodeRateLimited  = "too_many_requests"
	ErrCodeInternal     = "internal_error"

	// Domain-specific:
	ErrCodeDailyLimit       = "daily_limit_reached"
	ErrCodeCreateFailed     = "create_failed"
	ErrCodeListFailed       = "list_failed"
	ErrCodeReactFailed      = "react_failed"
	ErrCodeNoStats          = "no_stats"
	ErrCodeStreamFailed     = "stream_failed"
	ErrCodeMethodNotAllowed = "method_not_allowed"
)

// User-facing messages.
const (
	MsgDailyLimit   = "You've reached today's post limit. Come back tomorrow!"
	MsgCreateFailed = "Failed to create post. Please try again."
)

// failService maps a service error onto the error envelope. Errors that are
// not domain sentinels become a 500 with fallbackCode and fallbackMsg.
func failService(c *gin.Context, err error, fallbackCode, fallbackMsg string) {
	switch {
	case errors.Is(err, services.ErrMoodRequired),
		errors.Is(err, services.ErrUnknownMood),
		errors.Is(err, services.ErrTextTooLong),
		errors.Is(err, services.ErrInvalidChallenge),
		errors.Is(err, services.ErrInvalidCursor),
		errors.Is(err, services.ErrUnknownReaction),
		errors.Is(err, batcher.ErrInvalidEntry),
		errors.Is(err, services.ErrInvalidDate),
		errors.Is(err, services.ErrEmailUnverified):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
	case errors.Is(err, services.ErrEmailNotAllowed):
		fail(c, http.StatusForbidden, ErrCodeForbidden, "sign-in is limited to college email addresses")
	case errors.Is(err, services.ErrDailyLimitReached):
		fail(c, http.StatusTooManyRequests, ErrCodeDailyLimit, MsgDailyLimit)
	case errors.Is(err, services.ErrPostNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "post not found")
	case errors.Is(err, services.ErrNoStats):
		fail(c, http.StatusNotFound, ErrCodeNoStats, "no stats for this day")
	default:
		_ = c.Error(err)
		fail(c, http.StatusInternalServerError, fallbackCode, fallbackMsg)
	}
}
