// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file resolves the caller's identity. A bearer token is verified with
// the configured Verifier; in development mode the X-User-ID and
// X-User-Email headers are trusted instead. The resolved user id is stored
// under the "userID" context key, which the rate limiter, the idempotency
// validator and the access log read.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/campus-mood-backend/internal/auth"
)

const (
	ctxKeyUserID   = "userID"
	ctxKeyIdentity = "identity"

	// HeaderUserID and HeaderUserEmail carry the caller identity in dev mode.
	HeaderUserID    = "X-User-ID"
	HeaderUserEmail = "X-User-Email"
)

// TokenVerifier turns a bearer token into an identity.
type TokenVerifier interface {
	Verify(token string) (auth.Identity, error)
}

// AuthOptions configures Authenticate.
type AuthOptions struct {
	// Verifier checks bearer tokens. Nil disables token auth.
	Verifier TokenVerifier
	// DevHeaders trusts X-User-ID / X-User-Email when no token is sent.
	// Never enable in release mode.
	DevHeaders bool
}

// Authenticate resolves the caller identity, if any, and stashes it in the
// Gin context. Requests without credentials pass through anonymously; an
// invalid token is rejected with 401. Use RequireUser on routes that need a
// signed-in caller.
func Authenticate(opts AuthOptions) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tok, ok := bearerToken(c.GetHeader("Authorization")); ok {
			if opts.Verifier == nil {
				abortUnauthorized(c, "token authentication is not configured")
				return
			}
			id, err := opts.Verifier.Verify(tok)
			if err != nil {
				abortUnauthorized(c, "invalid or expired token")
				return
			}
			setIdentity(c, id)
			c.Next()
			return
		}

		if opts.DevHeaders {
			if uid := strings.TrimSpace(c.GetHeader(HeaderUserID)); uid != "" {
				setIdentity(c, auth.Identity{
					UserID:        uid,
					Email:         strings.TrimSpace(c.GetHeader(HeaderUserEmail)),
					EmailVerified: true,
				})
			}
		}
		c.Next()
	}
}

// RequireUser aborts with 401 unless Authenticate resolved a user.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if UserID(c) == "" {
			abortUnauthorized(c, "sign in required")
			return
		}
		c.Next()
	}
}

// EmailPolicy decides which email addresses may use the signed-in API.
type EmailPolicy interface {
	Allowed(email string) bool
}

// Error codes written by RequireAdmitted.
const (
	CodeEmailUnverified = "email_unverified"
	CodeEmailNotAllowed = "email_not_allowed"
)

// RequireAdmitted aborts with 403 unless the caller's email is verified and
// allowed by policy. A nil policy only checks verification. Mount it after
// RequireUser on every route that may create or change user data.
func RequireAdmitted(policy EmailPolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := IdentityFrom(c)
		if !ok {
			abortUnauthorized(c, "sign in required")
			return
		}
		if !id.EmailVerified {
			abortForbidden(c, CodeEmailUnverified, "email address is not verified")
			return
		}
		if policy != nil && !policy.Allowed(id.Email) {
			abortForbidden(c, CodeEmailNotAllowed, "sign-in is limited to college email addresses")
			return
		}
		c.Next()
	}
}

// UserID returns the authenticated user id or "".
func UserID(c *gin.Context) string {
	if v, ok := c.Get(ctxKeyUserID); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// IdentityFrom returns the identity resolved by Authenticate.
func IdentityFrom(c *gin.Context) (auth.Identity, bool) {
	v, ok := c.Get(ctxKeyIdentity)
	if !ok {
		return auth.Identity{}, false
	}
	id, ok := v.(auth.Identity)
	return id, ok
}

func setIdentity(c *gin.Context, id auth.Identity) {
	c.Set(ctxKeyUserID, id.UserID)
	c.Set(ctxKeyIdentity, id)
}

func bearerToken(h string) (string, bool) {
	const prefix = "bearer "
	if len(h) <= len(prefix) || !strings.EqualFold(h[:len(prefix)], prefix) {
		return "", false
	}
	tok := strings.TrimSpace(h[len(prefix):])
	return tok, tok != ""
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"request_id": c.Writer.Header().Get(HeaderRequestID),
		"code":       "unauthorized",
		"message":    msg,
	})
}

func abortForbidden(c *gin.Context, code, msg string) {
	c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
		"request_id": c.Writer.Header().Get(HeaderRequestID),
		"code":       code,
		"message":    msg,
	})
}
